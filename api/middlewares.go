package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const sessionCookieName = "session"

type contextKey string

const (
	sessionContextKey contextKey = "sessionContextKey"
	userContextKey    contextKey = "userContextKey"
)

func getSessionFromRequest(r *http.Request) *session {
	s, _ := r.Context().Value(sessionContextKey).(*session)
	return s
}

func getUserFromRequest(r *http.Request) *user {
	u, _ := r.Context().Value(userContextKey).(*user)
	return u
}

// wantsStructuredResponse reports whether the caller expects a machine
// readable failure instead of an interactive redirect.
func wantsStructuredResponse(r *http.Request) bool {
	if r.Header.Get("X-Requested-With") == "XMLHttpRequest" {
		return true
	}
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	return strings.Contains(r.Header.Get("Content-Type"), "application/json")
}

// unauthenticated reports an AuthenticationRequired failure honoring the
// dual contract: structured callers get a 401 body, interactive callers are
// redirected to the login page.
func (app *application) unauthenticated(w http.ResponseWriter, r *http.Request) {
	if wantsStructuredResponse(r) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{
			"success":        false,
			"error":          errAuthenticationRequired.Error(),
			"login_required": true,
		})
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func sessionTokenFromRequest(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.Fields(authHeader)
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
		return ""
	}
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

func (app *application) requireAuthenticatedUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Vary", "Authorization")
		tokenStr := sessionTokenFromRequest(r)
		if tokenStr == "" {
			app.unauthenticated(w, r)
			return
		}
		s, err := app.parseSessionToken(tokenStr)
		if err != nil {
			app.unauthenticated(w, r)
			return
		}
		u, err := app.storage.getUserByID(s.UserID)
		if err != nil {
			app.logger.Error("loading session user", "error", err)
			writeError(w, errors.New("internal server error"), http.StatusInternalServerError)
			return
		}
		if u == nil {
			app.unauthenticated(w, r)
			return
		}
		ctx := context.WithValue(r.Context(), sessionContextKey, s)
		ctx = context.WithValue(ctx, userContextKey, u)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

func (app *application) requireConfirmedUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u := getUserFromRequest(r)
		if app.config.confirmationRequired && !u.EmailConfirmed {
			writeError(w, errUnconfirmedAccount, http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	}
}

func (app *application) rateLimit(next http.Handler) http.HandlerFunc {
	type client struct {
		limiter  *rate.Limiter
		lastSeen time.Time
	}
	var (
		mu      sync.Mutex
		clients = make(map[string]client)
	)
	go func() {
		for {
			time.Sleep(time.Minute)
			func() {
				mu.Lock()
				defer mu.Unlock()
				for ip, client := range clients {
					if time.Since(client.lastSeen) >= time.Minute*3 {
						delete(clients, ip)
					}
				}
			}()
		}
	}()
	return func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			app.logger.Error("parsing remote address", "addr", r.RemoteAddr, "error", err)
			writeError(w, errors.New("internal server error"), http.StatusInternalServerError)
			return
		}
		mu.Lock()
		c, ok := clients[ip]
		if !ok {
			c = client{
				limiter: rate.NewLimiter(rate.Limit(app.config.limiter.maxRequestsPerSecond), app.config.limiter.burst),
			}
		}
		c.lastSeen = time.Now()
		clients[ip] = c
		if !c.limiter.Allow() {
			mu.Unlock()
			writeError(w, errors.New("rate limit exceeded"), http.StatusTooManyRequests)
			return
		}
		mu.Unlock()
		next.ServeHTTP(w, r)
	}
}

func (app *application) enableCORS(next http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Vary", "Origin")
		w.Header().Add("Vary", "Access-Control-Request-Method")

		origin := r.Header.Get("Origin")
		if origin != "" {
			for _, o := range app.config.cors.trustedOrigins {
				if origin == o || o == "*" {
					w.Header().Set("Access-Control-Allow-Origin", origin)
					// preflight request
					if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
						w.Header().Set("Access-Control-Allow-Methods", "OPTIONS, POST, PUT, DELETE")
						w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Requested-With")
						w.WriteHeader(http.StatusOK)
						return
					}
					break
				}
			}
		}
		next.ServeHTTP(w, r)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// instrument counts and logs every request.
func (app *application) instrument(next http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		httpRequestsTotal.WithLabelValues(r.Method, strconv.Itoa(rec.status)).Inc()
		app.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	}
}
