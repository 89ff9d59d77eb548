package main

import (
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type delivery struct {
	email      string
	confirmURL string
}

// testDeliverer records confirmation deliveries instead of sending them.
type testDeliverer struct {
	mu         sync.Mutex
	deliveries []delivery
}

func (d *testDeliverer) DeliverConfirmation(email, confirmURL string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.deliveries = append(d.deliveries, delivery{email: email, confirmURL: confirmURL})
	return nil
}

func (d *testDeliverer) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.deliveries)
}

func (d *testDeliverer) last() delivery {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.deliveries) == 0 {
		return delivery{}
	}
	return d.deliveries[len(d.deliveries)-1]
}

func newTestStorage(t *testing.T) *storage {
	t.Helper()
	var cfg config
	cfg.db.driver = "sqlite"
	cfg.db.dsn = ":memory:"
	db, err := openDB(cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("closing test database: %v", err)
		}
	})
	require.NoError(t, migrate(db, "sqlite"))
	return newStorage(db)
}

func newTestApplication(t *testing.T) (*application, *testDeliverer) {
	t.Helper()
	var cfg config
	cfg.env = "test"
	cfg.baseURL = "http://localhost:4000"
	cfg.confirmationRequired = true
	cfg.jwtSecret = "test-secret-not-for-production"

	deliverer := &testDeliverer{}
	app := &application{
		config:      cfg,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		storage:     newTestStorage(t),
		deliverer:   deliverer,
		revocations: newRevocationList(),
	}
	return app, deliverer
}

// registerConfirmedUser registers an account and walks it through
// confirmation so it can log in.
func registerConfirmedUser(t *testing.T, app *application, email, password string) *user {
	t.Helper()
	u, err := app.registerAccount(email, password)
	require.NoError(t, err)
	confirmed, err := app.confirmAccount(u.ConfirmationToken)
	require.NoError(t, err)
	return confirmed
}
