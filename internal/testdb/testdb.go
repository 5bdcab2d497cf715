// Package testdb provides utilities for database integration tests.
// Tests that need a live PostgreSQL instance call Pool or Skip helpers;
// when no test database is configured the tests skip rather than fail,
// so the unit suite stays runnable without infrastructure.
package testdb

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/duvethq/duvet-api/internal/migrations"
)

// URLEnvVar names the environment variable carrying the test database
// connection string. The role it authenticates must own the schema.
const URLEnvVar = "DUVET_TEST_DATABASE_URL"

// setupTimeout bounds migration and pool setup for a test database.
const setupTimeout = 30 * time.Second

// URL returns the configured test database URL, or "" if integration
// tests are not enabled.
func URL() string {
	return os.Getenv(URLEnvVar)
}

// Pool opens a connection pool against the test database with the
// schema migrated to head, skipping the test when no test database is
// configured. Tables are truncated first so each test starts clean.
// The pool is closed automatically when the test finishes.
func Pool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	url := URL()
	if url == "" {
		t.Skipf("integration test: set %s to run", URLEnvVar)
	}

	ctx, cancel := context.WithTimeout(context.Background(), setupTimeout)
	defer cancel()

	require.NoError(t, migrations.Up(ctx, url), "failed to migrate test database")

	pool, err := pgxpool.New(ctx, url)
	require.NoError(t, err, "failed to open test database pool")
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, "TRUNCATE tasks, app_users RESTART IDENTITY CASCADE")
	require.NoError(t, err, "failed to reset test database")

	return pool
}
