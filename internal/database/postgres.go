package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"
	log "github.com/sirupsen/logrus"
)

// ErrNoChange is returned by Migrate when the schema is already at the target version.
var ErrNoChange = migrate.ErrNoChange

// ConnectPostgres opens the pool, pings it and applies pending migrations.
func ConnectPostgres(postgresURI string) (*DB, error) {
	sqlDB, err := sql.Open("postgres", postgresURI)
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	if err = sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	log.Info("✅ Connected to PostgreSQL")

	if err = Migrate(postgresURI, "up"); err != nil && !errors.Is(err, ErrNoChange) {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	log.Info("✅ PostgreSQL schema up to date")

	return &DB{DB: sqlDB, Driver: DriverPostgres}, nil
}

// Migrate applies the embedded migrations in the given direction ("up" or "down").
func Migrate(postgresURI, direction string) error {
	if postgresURI == "" {
		return errors.New("POSTGRES_URI is not set")
	}
	source, err := iofs.New(MigrationFS, "migrations")
	if err != nil {
		return fmt.Errorf("migration source: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", source, postgresURI)
	if err != nil {
		return err
	}
	defer func() { _, _ = m.Close() }()

	switch direction {
	case "up":
		return m.Up()
	case "down":
		return m.Down()
	}
	return fmt.Errorf("direction must be up or down, got %q", direction)
}
