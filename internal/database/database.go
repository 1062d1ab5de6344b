// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package database handles SQL connection management and migration
// execution using goose. It supports PostgreSQL (through pgx) and SQLite
// (through the pure-Go modernc driver); each dialect has its own embedded
// migration directory.
package database

import (
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

//go:embed migrations
var embedMigrations embed.FS

// Dialect names accepted by Connect and Migrate.
const (
	Postgres = "postgres"
	SQLite   = "sqlite"
)

// driverName maps a dialect to its registered database/sql driver.
func driverName(dialect string) (string, error) {
	switch dialect {
	case Postgres:
		return "pgx", nil
	case SQLite:
		return "sqlite", nil
	default:
		return "", fmt.Errorf("unsupported sql dialect %q (supported: postgres, sqlite)", dialect)
	}
}

// SQLiteDSN builds a modernc DSN for a file path (or ":memory:") with
// foreign keys enforced and a busy timeout set on every connection.
func SQLiteDSN(path string) string {
	const pragmas = "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	if strings.Contains(path, "?") {
		return "file:" + path + "&" + pragmas
	}
	return "file:" + path + "?" + pragmas
}

// Connect opens a connection pool for the given dialect and verifies it with
// a ping before returning. SQLite pools are limited to one connection so
// writers serialize instead of failing with SQLITE_BUSY, and so an in-memory
// database is shared by every query.
func Connect(dialect, dsn string) (*sql.DB, error) {
	driver, err := driverName(dialect)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("database open: %w", err)
	}

	if dialect == SQLite {
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
	}

	// Verify the connection is alive.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database ping: %w", err)
	}

	slog.Info("database connected", "dialect", dialect)
	return db, nil
}

// Migrate runs all pending goose migrations for the dialect from the
// embedded SQL files.
func Migrate(db *sql.DB, dialect string) error {
	if _, err := driverName(dialect); err != nil {
		return err
	}

	goose.SetBaseFS(embedMigrations)

	gooseDialect := dialect
	if dialect == SQLite {
		gooseDialect = "sqlite3"
	}
	if err := goose.SetDialect(gooseDialect); err != nil {
		return fmt.Errorf("goose set dialect: %w", err)
	}

	if err := goose.Up(db, "migrations/"+dialect); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}

	slog.Info("database migrations applied", "dialect", dialect)
	return nil
}
