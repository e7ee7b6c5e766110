// Package migration applies versioned SQL migrations with golang-migrate.
//
// The service schema ships embedded (see Schema). Files follow
// VERSION_name.up.sql / VERSION_name.down.sql.
package migration

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/kbukum/scribe/database"
	"github.com/kbukum/scribe/logger"
)

//go:embed sql/*.sql
var schemaFS embed.FS

// Schema is the embedded service schema.
var Schema, _ = fs.Sub(schemaFS, "sql")

// DriverFunc creates a migrate database driver from sql.DB.
type DriverFunc func(*sql.DB) (migratedb.Driver, error)

// PostgresDriver builds the golang-migrate PostgreSQL driver.
func PostgresDriver(db *sql.DB) (migratedb.Driver, error) {
	return migratepg.WithInstance(db, &migratepg.Config{})
}

// Up applies all pending migrations from source. No pending migrations is
// not an error.
func Up(db *sql.DB, source fs.FS, driverFunc DriverFunc) error {
	m, err := newMigrator(db, source, driverFunc)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}

// Down rolls back all applied migrations.
func Down(db *sql.DB, source fs.FS, driverFunc DriverFunc) error {
	m, err := newMigrator(db, source, driverFunc)
	if err != nil {
		return err
	}
	if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate down: %w", err)
	}
	return nil
}

// Version returns the current migration version and dirty flag.
func Version(db *sql.DB, source fs.FS, driverFunc DriverFunc) (version uint, dirty bool, err error) {
	m, err := newMigrator(db, source, driverFunc)
	if err != nil {
		return 0, false, err
	}
	version, dirty, err = m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

// Postgres is a database.Migrator that applies Schema.
func Postgres(_ context.Context, db *database.DB) error {
	sqlDB, err := db.GormDB.DB()
	if err != nil {
		return fmt.Errorf("get sql.DB: %w", err)
	}
	if err := Up(sqlDB, Schema, PostgresDriver); err != nil {
		return err
	}
	version, _, err := Version(sqlDB, Schema, PostgresDriver)
	if err == nil {
		logger.Info("Schema up to date", logger.Fields("version", version))
	}
	return nil
}

// newMigrator creates a golang-migrate instance over source. The migrator
// is never closed: that would close the shared sql.DB.
func newMigrator(db *sql.DB, source fs.FS, driverFunc DriverFunc) (*migrate.Migrate, error) {
	driver, err := driverFunc(db)
	if err != nil {
		return nil, fmt.Errorf("create database driver: %w", err)
	}
	src, err := iofs.New(source, ".")
	if err != nil {
		return nil, fmt.Errorf("create iofs source: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("create migrator: %w", err)
	}
	return m, nil
}
