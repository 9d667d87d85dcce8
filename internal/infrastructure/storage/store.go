// Package storage implements the device catalog on SQLite or PostgreSQL.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Supported database drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds database connection configuration
type Config struct {
	Driver string
	Path   string // SQLite file path
	DSN    string // PostgreSQL connection string
}

// Store is a device catalog backed by database/sql
type Store struct {
	db     *sql.DB
	driver string
}

// Open connects to the configured database and creates the schema if needed
func Open(ctx context.Context, config Config) (*Store, error) {
	var (
		db  *sql.DB
		err error
	)

	switch config.Driver {
	case DriverSQLite, "":
		if config.Path == "" {
			return nil, fmt.Errorf("sqlite path is required")
		}
		db, err = sql.Open("sqlite", config.Path)
		if err != nil {
			return nil, fmt.Errorf("open sqlite db: %w", err)
		}
		// SQLite allows one writer; a single connection avoids SQLITE_BUSY under load
		db.SetMaxOpenConns(1)
		config.Driver = DriverSQLite
	case DriverPostgres:
		if config.DSN == "" {
			return nil, fmt.Errorf("postgres dsn is required")
		}
		db, err = sql.Open("postgres", config.DSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres db: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", config.Driver)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", config.Driver, err)
	}

	store := &Store{db: db, driver: config.Driver}
	if err := store.applySchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Driver returns the name of the database driver in use
func (s *Store) Driver() string {
	return s.driver
}

func (s *Store) applySchema(ctx context.Context) error {
	statements := sqliteSchema
	if s.driver == DriverPostgres {
		statements = postgresSchema
	} else {
		pragmas := []string{
			"PRAGMA journal_mode=WAL",
			"PRAGMA foreign_keys = ON",
			"PRAGMA busy_timeout = 5000",
		}
		for _, pragma := range pragmas {
			if _, err := s.db.ExecContext(ctx, pragma); err != nil {
				return fmt.Errorf("apply pragma %q: %w", pragma, err)
			}
		}
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

// rebind rewrites ? placeholders to $n for PostgreSQL
func (s *Store) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS devices (
  id                INTEGER PRIMARY KEY,
  slug              TEXT NOT NULL UNIQUE,
  model_name        TEXT NOT NULL,
  brand             TEXT,
  image_url         TEXT,
  camera_score      REAL NOT NULL DEFAULT 0,
  battery_score     REAL NOT NULL DEFAULT 0,
  performance_score REAL NOT NULL DEFAULT 0,
  value_score       REAL NOT NULL DEFAULT 0,
  created_at        TEXT NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_devices_model_name ON devices(model_name)`,
	`CREATE TABLE IF NOT EXISTS spec_definitions (
  spec_key         TEXT PRIMARY KEY,
  display_label    TEXT,
  category         TEXT,
  unit             TEXT,
  higher_is_better INTEGER CHECK (higher_is_better IN (0,1))
)`,
	`CREATE TABLE IF NOT EXISTS device_specs (
  device_id INTEGER NOT NULL REFERENCES devices(id) ON DELETE CASCADE,
  spec_key  TEXT NOT NULL,
  raw_value TEXT NOT NULL,
  PRIMARY KEY (device_id, spec_key)
)`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS devices (
  id                BIGSERIAL PRIMARY KEY,
  slug              TEXT NOT NULL UNIQUE,
  model_name        TEXT NOT NULL,
  brand             TEXT,
  image_url         TEXT,
  camera_score      DOUBLE PRECISION NOT NULL DEFAULT 0,
  battery_score     DOUBLE PRECISION NOT NULL DEFAULT 0,
  performance_score DOUBLE PRECISION NOT NULL DEFAULT 0,
  value_score       DOUBLE PRECISION NOT NULL DEFAULT 0,
  created_at        TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
	`CREATE INDEX IF NOT EXISTS idx_devices_model_name ON devices(model_name)`,
	`CREATE TABLE IF NOT EXISTS spec_definitions (
  spec_key         TEXT PRIMARY KEY,
  display_label    TEXT,
  category         TEXT,
  unit             TEXT,
  higher_is_better BOOLEAN
)`,
	`CREATE TABLE IF NOT EXISTS device_specs (
  device_id BIGINT NOT NULL REFERENCES devices(id) ON DELETE CASCADE,
  spec_key  TEXT NOT NULL,
  raw_value TEXT NOT NULL,
  PRIMARY KEY (device_id, spec_key)
)`,
}
