package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/udisondev/textrsa/internal/config"
	"github.com/udisondev/textrsa/internal/db/migrations"
)

// RunMigrations runs goose migrations for driver (config.DriverPostgres or
// config.DriverSQLite) on the given DSN.
func RunMigrations(ctx context.Context, driver, dsn string) error {
	sqlDriver, _, err := dialectFor(driver)
	if err != nil {
		return err
	}

	sqlDB, err := sql.Open(sqlDriver, dsn)
	if err != nil {
		return fmt.Errorf("opening sql connection for migrations: %w", err)
	}
	defer sqlDB.Close()

	return Migrate(ctx, sqlDB, driver)
}

// Migrate applies the embedded migrations for driver on an open *sql.DB.
func Migrate(ctx context.Context, sqlDB *sql.DB, driver string) error {
	_, dialect, err := dialectFor(driver)
	if err != nil {
		return err
	}

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("setting goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, sqlDB, driver); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

// dialectFor returns the database/sql driver name and goose dialect.
func dialectFor(driver string) (sqlDriver, dialect string, err error) {
	switch driver {
	case config.DriverPostgres:
		return "pgx", "postgres", nil
	case config.DriverSQLite:
		return "sqlite3", "sqlite3", nil
	default:
		return "", "", fmt.Errorf("unsupported store driver %q", driver)
	}
}
