package db

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/denisenkom/go-mssqldb" // SQL Server driver
	_ "github.com/go-sql-driver/mysql"   // MySQL driver
	_ "github.com/lib/pq"                // PostgreSQL driver
	_ "github.com/marcboeker/go-duckdb"  // DuckDB driver
	_ "modernc.org/sqlite"               // SQLite driver (pure Go)

	"github.com/sqlpilot/sqlpilot/internal/config"
	"github.com/sqlpilot/sqlpilot/internal/errors"
	"github.com/sqlpilot/sqlpilot/internal/schema"
)

// driverNames maps configuration driver names onto database/sql driver names.
var driverNames = map[string]string{
	"sqlite":    "sqlite",
	"mysql":     "mysql",
	"postgres":  "postgres",
	"duckdb":    "duckdb",
	"sqlserver": "sqlserver",
}

// Open opens a pooled connection for the configured driver and verifies it
// with a ping.
func Open(cfg config.DatabaseConfig) (*sql.DB, error) {
	driver, ok := driverNames[strings.ToLower(cfg.Driver)]
	if !ok {
		return nil, errors.Newf(errors.ErrTypeConfig, "unsupported database driver: %s", cfg.Driver)
	}

	// File-backed engines need their parent directory to exist.
	if driver == "sqlite" || driver == "duckdb" {
		if dir := filepath.Dir(cfg.DSN); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, errors.Wrap(err, errors.ErrTypeDatabase, "failed to create database directory")
			}
		}
	}

	db, err := sql.Open(driver, cfg.DSN)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrTypeDatabase, "failed to open database")
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdleConns)

	if lifetime, err := time.ParseDuration(cfg.ConnMaxLifetime); err == nil {
		db.SetConnMaxLifetime(lifetime)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, errors.ErrTypeDatabase, "failed to ping database")
	}

	return db, nil
}

// Introspector reads column metadata for every user table in a database.
// One implementation is registered per supported driver.
type Introspector interface {
	Columns(ctx context.Context, db *sql.DB) ([]schema.Column, error)
}

var introspectors = map[string]Introspector{}

// RegisterIntrospector registers the introspector for a driver name.
// Called from init functions of the per-driver files.
func RegisterIntrospector(driver string, in Introspector) {
	introspectors[driver] = in
}

// IntrospectColumns returns the column metadata for the given driver.
func IntrospectColumns(ctx context.Context, driver string, db *sql.DB) ([]schema.Column, error) {
	in, ok := introspectors[strings.ToLower(driver)]
	if !ok {
		return nil, errors.Newf(
			errors.ErrTypeConfig,
			"no schema introspector registered for driver %s", driver,
		)
	}

	cols, err := in.Columns(ctx, db)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrTypeDatabase, "schema introspection failed for %s", driver)
	}

	return cols, nil
}
