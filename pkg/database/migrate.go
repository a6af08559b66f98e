package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrDirtySchema a previous migration stopped half way.
var ErrDirtySchema = errors.New("database schema is dirty")

// RunMigrations applies every pending PostgreSQL migration. A dirty schema
// is refused rather than migrated over.
func RunMigrations(db *sql.DB, logger *zap.Logger) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}
	latest, count, err := checkMigrations(src)
	if err != nil {
		return err
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migrate driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return fmt.Errorf("init migrate: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		var dirty migrate.ErrDirty
		if errors.As(err, &dirty) {
			return fmt.Errorf("%w at version %d", ErrDirtySchema, dirty.Version)
		}
		return fmt.Errorf("apply migrations: %w", err)
	}

	version, _, err := m.Version()
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	logger.Info("database migrations applied",
		zap.Uint("version", version),
		zap.Uint("latest", latest),
		zap.Int("migrations", count),
	)
	return nil
}

// checkMigrations walks the source in version order and requires a down
// script for every up script. It returns the newest version and the count.
func checkMigrations(src source.Driver) (latest uint, count int, err error) {
	v, err := src.First()
	if err != nil {
		return 0, 0, fmt.Errorf("no migrations: %w", err)
	}
	for {
		if err := readable(src.ReadUp, v); err != nil {
			return 0, 0, fmt.Errorf("migration %d up: %w", v, err)
		}
		if err := readable(src.ReadDown, v); err != nil {
			return 0, 0, fmt.Errorf("migration %d down: %w", v, err)
		}
		latest, count = v, count+1

		next, err := src.Next(v)
		if errors.Is(err, fs.ErrNotExist) {
			return latest, count, nil
		}
		if err != nil {
			return 0, 0, fmt.Errorf("migration after %d: %w", v, err)
		}
		v = next
	}
}

func readable(read func(uint) (io.ReadCloser, string, error), v uint) error {
	r, _, err := read(v)
	if err != nil {
		return err
	}
	return r.Close()
}
