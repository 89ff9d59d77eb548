package main

import (
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

const version = "1.0.0"

type config struct {
	port                 int
	env                  string
	baseURL              string
	confirmationRequired bool
	db                   struct {
		driver             string
		dsn                string
		maxOpenConnections int
		maxIdleConnections int
		maxIdleTime        time.Duration
	}
	smtp struct {
		host     string
		port     int
		username string
		password string
		sender   string
	}
	jwtSecret string
	limiter   struct {
		enabled              bool
		maxRequestsPerSecond float64
		burst                int
	}
	cors struct {
		trustedOrigins []string
	}
}

type application struct {
	config      config
	logger      *slog.Logger
	storage     *storage
	deliverer   confirmationDeliverer
	revocations *revocationList
}

func main() {
	var cfg config
	flag.IntVar(&cfg.port, "port", 3000, "Server port")
	flag.StringVar(&cfg.env, "env", "development", "Environment [development|production]")
	flag.StringVar(&cfg.baseURL, "base-url", "http://localhost:3000", "Public base URL used in confirmation links")
	flag.BoolVar(&cfg.confirmationRequired, "confirmation-required", true, "Require email confirmation before login")

	flag.StringVar(&cfg.db.driver, "db-driver", "sqlite", "Database driver [sqlite|postgres]")
	flag.StringVar(&cfg.db.dsn, "db-dsn", envOr("DB_DSN", "tasks.db"), "Database DSN (file path for sqlite)")
	flag.IntVar(&cfg.db.maxOpenConnections, "db-max-open-conns", 25, "Database max open connections (postgres)")
	flag.IntVar(&cfg.db.maxIdleConnections, "db-max-idle-conns", 25, "Database max idle connections (postgres)")
	var maxIdleTime string
	flag.StringVar(&maxIdleTime, "db-max-idle-time", "15m", "Database max connection idle time (postgres)")

	flag.StringVar(&cfg.smtp.host, "smtp-host", os.Getenv("SMTP_HOST"), "SMTP host (empty: log confirmation links instead)")
	flag.IntVar(&cfg.smtp.port, "smtp-port", envIntOr("SMTP_PORT", 25), "SMTP port")
	flag.StringVar(&cfg.smtp.username, "smtp-username", os.Getenv("SMTP_USERNAME"), "SMTP username")
	flag.StringVar(&cfg.smtp.password, "smtp-password", os.Getenv("SMTP_PASSWORD"), "SMTP password")
	flag.StringVar(&cfg.smtp.sender, "smtp-sender", os.Getenv("SMTP_SENDER"), "SMTP sender")

	flag.StringVar(&cfg.jwtSecret, "jwt-secret", os.Getenv("JWT_SECRET"), "JWT signing secret (random if empty)")

	flag.BoolVar(&cfg.limiter.enabled, "limiter-enabled", true, "Enable per-IP rate limiting")
	flag.Float64Var(&cfg.limiter.maxRequestsPerSecond, "limiter-rps", 2, "Rate limiter max requests per second")
	flag.IntVar(&cfg.limiter.burst, "limiter-burst", 4, "Rate limiter burst size")

	var trustedOrigins string
	flag.StringVar(&trustedOrigins, "cors-trusted-origins", "", "Trusted CORS origins (space separated)")
	flag.Parse()

	logger := newLogger(cfg.env)
	slog.SetDefault(logger)

	d, err := time.ParseDuration(maxIdleTime)
	if err != nil {
		cfg.db.maxIdleTime = 15 * time.Minute
		logger.Warn("invalid db-max-idle-time, using default", "value", maxIdleTime, "default", cfg.db.maxIdleTime)
	} else {
		cfg.db.maxIdleTime = d
	}
	cfg.cors.trustedOrigins = strings.Fields(trustedOrigins)

	if cfg.jwtSecret == "" {
		secret := make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			logger.Error("generating jwt secret", "error", err)
			os.Exit(1)
		}
		cfg.jwtSecret = hex.EncodeToString(secret)
		logger.Warn("no jwt secret configured, generated a random one; sessions will not survive a restart")
	}

	db, err := openDB(cfg)
	if err != nil {
		logger.Error("opening database", "driver", cfg.db.driver, "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := migrate(db, cfg.db.driver); err != nil {
		logger.Error("migrating database", "error", err)
		os.Exit(1)
	}
	logger.Info("established a connection with database", "driver", cfg.db.driver)

	var deliverer confirmationDeliverer
	if cfg.smtp.host != "" {
		deliverer = newMailer(cfg.smtp.host, cfg.smtp.port, cfg.smtp.username, cfg.smtp.password, cfg.smtp.sender)
	} else {
		logger.Info("no smtp host configured, confirmation links will be logged")
		deliverer = &logDeliverer{logger: logger}
	}

	app := &application{
		config:      cfg,
		logger:      logger,
		storage:     newStorage(db),
		deliverer:   deliverer,
		revocations: newRevocationList(),
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.port),
		Handler:      composeRoutes(app),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	logger.Info("starting server", "env", cfg.env, "port", cfg.port)
	err = srv.ListenAndServe()
	logger.Error("server stopped", "error", err)
	os.Exit(1)
}

func newLogger(env string) *slog.Logger {
	if env == "production" {
		return slog.New(slog.NewJSONHandler(os.Stdout, nil))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
