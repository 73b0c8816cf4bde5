// Package sqlite provides embedded sqlite database utilities: opening the
// single-file store and applying schema migrations.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3" // sqlite driver
)

// Config contains sqlite connection configuration.
type Config struct {
	// Filename is the path of the database file. ":memory:" opens a
	// transient in-memory database (used by tests).
	Filename string
}

// Open opens the embedded database. The connection pool is capped at a
// single connection: each service serializes all database access, which
// avoids concurrent-write corruption on a single-file store.
func Open(cfg Config) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=on", cfg.Filename)

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database %q: %w", cfg.Filename, err)
	}

	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database %q: %w", cfg.Filename, err)
	}

	slog.Info("opened database", "filename", cfg.Filename)
	return db, nil
}

// Migrate applies all pending schema migrations from the given filesystem
// (embedded .up.sql/.down.sql files under dir).
func Migrate(db *sql.DB, migrationsFS fs.FS, dir string) error {
	source, err := iofs.New(migrationsFS, dir)
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}

	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}

	return nil
}
