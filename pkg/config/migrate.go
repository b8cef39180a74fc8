package config

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/sirupsen/logrus"
)

func newMigrator(dir string) (*migrate.Migrate, error) {
	db, err := DB.DB()
	if err != nil {
		return nil, fmt.Errorf("get database connection: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("create postgres driver: %w", err)
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve migrations dir: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+filepath.ToSlash(abs), "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("create migrate instance: %w", err)
	}
	return m, nil
}

// ExecuteMigrations runs all pending database migrations
func ExecuteMigrations(dir string) error {
	m, err := newMigrator(dir)
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}

	version, dirty, _ := m.Version()
	logrus.WithFields(logrus.Fields{"version": version, "dirty": dirty}).Info("Database migrations completed")
	return nil
}

// RollbackMigration rolls back the last migration
func RollbackMigration(dir string) error {
	m, err := newMigrator(dir)
	if err != nil {
		return err
	}

	if err := m.Steps(-1); err != nil {
		return fmt.Errorf("rollback migration: %w", err)
	}

	logrus.Info("Migration rolled back successfully")
	return nil
}
