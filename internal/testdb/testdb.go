// Package testdb opens throwaway databases for tests. SQLite databases live
// in memory; PostgreSQL databases are created on the server named by
// INVENTORY_TEST_POSTGRES_URL and dropped on cleanup.
package testdb

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/eleven-am/inventory/internal/database"
)

// PostgresURLEnv names the admin connection used to create test databases
const PostgresURLEnv = "INVENTORY_TEST_POSTGRES_URL"

// NewSQLite returns a fresh in-memory database with foreign keys enforced
func NewSQLite(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := database.NewDBConfig(database.DriverSQLite, ":memory:").Connect(context.Background())
	if err != nil {
		t.Fatalf("Failed to open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return db
}

// NewPostgres creates a uniquely named database and returns a handle to it.
// The test is skipped when PostgresURLEnv is unset.
func NewPostgres(t *testing.T) *sqlx.DB {
	t.Helper()

	baseConnStr := os.Getenv(PostgresURLEnv)
	if baseConnStr == "" {
		t.Skipf("%s not set", PostgresURLEnv)
	}

	ctx := context.Background()
	admin, err := database.NewDBConfig(database.DriverPostgres, baseConnStr).Connect(ctx)
	if err != nil {
		t.Fatalf("Failed to connect to postgres: %v", err)
	}

	dbName := fmt.Sprintf("test_inventory_%d", time.Now().UnixNano())
	if _, err := admin.ExecContext(ctx, "CREATE DATABASE "+dbName); err != nil {
		admin.Close()
		t.Fatalf("Failed to create test database: %v", err)
	}

	testConnStr, err := withDatabase(baseConnStr, dbName)
	if err != nil {
		admin.Close()
		t.Fatalf("Failed to build test connection string: %v", err)
	}

	db, err := database.NewDBConfig(database.DriverPostgres, testConnStr).Connect(ctx)
	if err != nil {
		admin.Close()
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
		defer admin.Close()

		_, err := admin.ExecContext(ctx, `
			SELECT pg_terminate_backend(pid)
			FROM pg_stat_activity
			WHERE datname = $1 AND pid <> pg_backend_pid()`, dbName)
		if err != nil {
			t.Logf("Failed to terminate connections: %v", err)
		}

		if _, err := admin.ExecContext(ctx, "DROP DATABASE IF EXISTS "+dbName); err != nil {
			t.Logf("Failed to drop test database: %v", err)
		}
	})

	return db
}

// withDatabase swaps the database name in a postgres URL
func withDatabase(connStr, dbName string) (string, error) {
	u, err := url.Parse(connStr)
	if err != nil {
		return "", err
	}
	u.Path = "/" + dbName
	return u.String(), nil
}

// TableExists checks if a table exists
func TableExists(db *sqlx.DB, tableName string) (bool, error) {
	var count int
	var err error

	switch db.DriverName() {
	case database.DriverPostgres:
		err = db.Get(&count, `
			SELECT COUNT(*)
			FROM information_schema.tables
			WHERE table_schema = 'public'
			AND table_name = $1`, tableName)
	default:
		err = db.Get(&count, `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, tableName)
	}

	return count > 0, err
}

// IndexExists checks if an index exists
func IndexExists(db *sqlx.DB, indexName string) (bool, error) {
	var count int
	var err error

	switch db.DriverName() {
	case database.DriverPostgres:
		err = db.Get(&count, `SELECT COUNT(*) FROM pg_indexes WHERE schemaname = 'public' AND indexname = $1`, indexName)
	default:
		err = db.Get(&count, `SELECT COUNT(*) FROM sqlite_master WHERE type = 'index' AND name = ?`, indexName)
	}

	return count > 0, err
}
