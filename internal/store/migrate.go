package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"sync"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*/*.sql
var migrationsFS embed.FS

// goose keeps its dialect, filesystem and logger in package globals.
var gooseMu sync.Mutex

// Migrate applies every pending schema migration for the engine's driver.
func (e *Engine) Migrate(ctx context.Context) error {
	return e.runMigrations(ctx, "up", goose.UpContext)
}

// MigrateDown rolls back the most recent schema migration.
func (e *Engine) MigrateDown(ctx context.Context) error {
	return e.runMigrations(ctx, "down", goose.DownContext)
}

// SchemaVersion reports the current migration version.
func (e *Engine) SchemaVersion(ctx context.Context) (int64, error) {
	var version int64
	err := e.withGoose(func(sqlDB *sql.DB) error {
		var err error
		version, err = goose.GetDBVersionContext(ctx, sqlDB)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return version, nil
}

type migrateFunc func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error

func (e *Engine) runMigrations(ctx context.Context, direction string, fn migrateFunc) error {
	err := e.withGoose(func(sqlDB *sql.DB) error {
		return fn(ctx, sqlDB, e.migrationsDir())
	})
	if err != nil {
		return fmt.Errorf("migrate %s: %w", direction, err)
	}
	return nil
}

func (e *Engine) withGoose(fn func(*sql.DB) error) error {
	sqlDB, err := e.db.DB()
	if err != nil {
		return err
	}

	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(gooseLogger{sugar: e.logger.Named("migrate").Sugar()})
	if err := goose.SetDialect(e.driver.gooseDialect()); err != nil {
		return err
	}
	return classifyAcquire(fn(sqlDB))
}

func (e *Engine) migrationsDir() string {
	return "migrations/" + string(e.driver)
}
