// Package database opens the sqlx handle the inventory store runs on.
package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/eleven-am/inventory/internal/logger"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	DefaultSQLiteURL = "inventory.db"
)

type DBConfig struct {
	Driver string
	URL    string
}

func NewDBConfig(driver, url string) *DBConfig {
	if driver == "" {
		driver = DriverSQLite
	}
	if url == "" && driver == DriverSQLite {
		url = DefaultSQLiteURL
	}
	return &DBConfig{
		Driver: driver,
		URL:    url,
	}
}

// DSN returns the data source name handed to the driver. SQLite connections
// always enforce foreign keys, which Tag rows rely on, and store timestamps in
// a format SQLite's own date functions understand.
func (cfg *DBConfig) DSN() string {
	if cfg.Driver != DriverSQLite {
		return cfg.URL
	}

	url := cfg.URL
	if url == ":memory:" {
		url = "file::memory:"
	}

	// settings already present in the URL win
	var params []string
	if !strings.Contains(url, "foreign_keys") {
		params = append(params, "_pragma=foreign_keys(1)")
	}
	if !strings.Contains(url, "_time_format=") {
		params = append(params, "_time_format=sqlite")
	}
	if len(params) == 0 {
		return url
	}

	sep := "?"
	if strings.Contains(url, "?") {
		sep = "&"
	}
	return url + sep + strings.Join(params, "&")
}

// Connect opens and pings the database. SQLite is pinned to one connection:
// an in-memory database exists per connection, and the store serialises all
// access anyway.
func (cfg *DBConfig) Connect(ctx context.Context) (*sqlx.DB, error) {
	switch cfg.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := sqlx.Open(cfg.Driver, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if cfg.Driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.DB().Info("database connected", "driver", cfg.Driver)

	return db, nil
}
