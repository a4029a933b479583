package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"sync"

	"alumnet/internal/middleware"

	"github.com/pressly/goose/v3"
	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

const migrationsDir = "migrations"

var gooseInit sync.Once
var gooseInitErr error

func setupGoose() error {
	gooseInit.Do(func() {
		goose.SetBaseFS(migrationFS)
		goose.SetLogger(goose.NopLogger())
		gooseInitErr = goose.SetDialect("postgres")
	})
	return gooseInitErr
}

func sqlDB(db *gorm.DB) (*sql.DB, error) {
	raw, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}
	return raw, nil
}

// RunMigrations applies every pending embedded SQL migration.
func RunMigrations(ctx context.Context, db *gorm.DB) error {
	if err := setupGoose(); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	raw, err := sqlDB(db)
	if err != nil {
		return err
	}

	before, _ := goose.GetDBVersionContext(ctx, raw)
	if err := goose.UpContext(ctx, raw, migrationsDir); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	after, err := goose.GetDBVersionContext(ctx, raw)
	if err != nil {
		return fmt.Errorf("get version: %w", err)
	}
	if after != before {
		middleware.Logger.Info("Migrations applied", "from_version", before, "to_version", after)
	}
	return nil
}

// RollbackMigration reverts the most recently applied migration.
func RollbackMigration(ctx context.Context, db *gorm.DB) error {
	if err := setupGoose(); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	raw, err := sqlDB(db)
	if err != nil {
		return err
	}
	if err := goose.DownContext(ctx, raw, migrationsDir); err != nil {
		return fmt.Errorf("rollback migration: %w", err)
	}
	return nil
}

// MigrationVersion returns the version of the last applied migration.
func MigrationVersion(ctx context.Context, db *gorm.DB) (int64, error) {
	if err := setupGoose(); err != nil {
		return 0, fmt.Errorf("set goose dialect: %w", err)
	}
	raw, err := sqlDB(db)
	if err != nil {
		return 0, err
	}
	version, err := goose.GetDBVersionContext(ctx, raw)
	if err != nil {
		return 0, fmt.Errorf("get version: %w", err)
	}
	return version, nil
}

// PendingMigrations lists embedded migrations newer than current.
func PendingMigrations(current int64) (goose.Migrations, error) {
	if err := setupGoose(); err != nil {
		return nil, fmt.Errorf("set goose dialect: %w", err)
	}
	migrations, err := goose.CollectMigrations(migrationsDir, current, goose.MaxVersion)
	if err != nil {
		return nil, fmt.Errorf("collect migrations: %w", err)
	}
	return migrations, nil
}
