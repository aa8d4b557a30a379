// Package db opens the orchestrator's sqlite-backed Job Store and runs its
// embedded migrations, adapted from the teacher's internal/db/db.go.
package db

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
	"gorm.io/gorm"

	gormsqlite "gorm.io/driver/sqlite"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Config configures the connection.
type Config struct {
	DSN    string
	Logger *zap.Logger
}

// New opens the sqlite database at cfg.DSN, runs pending migrations, and
// returns a *gorm.DB ready for repository use.
func New(cfg Config) (*gorm.DB, error) {
	sqlDB, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("db: opening %s: %w", cfg.DSN, err)
	}
	// A single connection serializes writers, matching the teacher's
	// sqlite wiring (modernc.org/sqlite has no internal connection pool
	// locking strong enough for concurrent writers).
	sqlDB.SetMaxOpenConns(1)

	if err := runMigrations(sqlDB, cfg.Logger); err != nil {
		return nil, err
	}

	gdb, err := gorm.Open(gormsqlite.Dialector{Conn: sqlDB}, &gorm.Config{
		Logger: newZapGORMLogger(cfg.Logger),
	})
	if err != nil {
		return nil, fmt.Errorf("db: gorm.Open: %w", err)
	}
	return gdb, nil
}

func runMigrations(sqlDB *sql.DB, logger *zap.Logger) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("db: loading embedded migrations: %w", err)
	}

	driver, err := sqlite.WithInstance(sqlDB, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("db: migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("db: migrate.NewWithInstance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("db: running migrations: %w", err)
	}
	logger.Info("migrations applied")
	return nil
}
