//go:build integration

// Package testdb provides helpers for tests that run against a real
// PostgreSQL database. Tests using it are built with the integration tag
// and skipped when no database URL is configured.
package testdb

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/repetix/repetix-api/internal/config"
	"github.com/repetix/repetix-api/internal/platform/postgres"
)

var (
	migrateOnce sync.Once
	migrateErr  error
)

// DatabaseURL returns the test database URL from DATABASE_URL, falling back
// to REPETIX_DATABASE_URL.
func DatabaseURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}
	return os.Getenv("REPETIX_DATABASE_URL")
}

// Open connects to the test database, applies all migrations once per test
// binary and registers the connection for cleanup.
func Open(t *testing.T) *sql.DB {
	t.Helper()

	url := DatabaseURL()
	if url == "" {
		t.Skip("DATABASE_URL not set; skipping database test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := postgres.Open(ctx, config.DatabaseConfig{URL: url, MaxOpenConns: 10, MaxIdleConns: 5})
	require.NoError(t, err, "failed to connect to test database")
	t.Cleanup(func() { _ = db.Close() })

	migrateOnce.Do(func() {
		migrateErr = postgres.Migrate(ctx, db, postgres.MigrateUp, postgres.MigrateOptions{
			Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		})
	})
	require.NoError(t, migrateErr, "failed to migrate test database")

	return db
}

// WithTx runs fn inside a transaction that is always rolled back, so tests
// never see each other's rows.
func WithTx(t *testing.T, db *sql.DB, fn func(t *testing.T, tx *sql.Tx)) {
	t.Helper()

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err, "failed to begin transaction")
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			t.Logf("rollback failed: %v", err)
		}
	}()

	fn(t, tx)
}
