// Command migrate applies or rolls back the PostgreSQL schema migrations.
//
//	migrate [up|down]
package main

import (
	"errors"
	"flag"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/AnshRaj112/therapeutes-vaud/internal/config"
	"github.com/AnshRaj112/therapeutes-vaud/internal/database"
)

func main() {
	flag.Parse()
	direction := flag.Arg(0)
	if direction == "" {
		direction = "up"
	}

	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found")
	}
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Invalid configuration")
	}
	if cfg.DatabaseDriver != database.DriverPostgres {
		log.Fatal("Migrations only apply to PostgreSQL; SQLite creates its schema on open")
	}

	err = database.Migrate(cfg.PostgresURI, direction)
	switch {
	case errors.Is(err, database.ErrNoChange):
		log.Info("Schema already up to date")
	case err != nil:
		log.WithError(err).Fatal("Migration failed")
	default:
		log.WithField("direction", direction).Info("✅ Migrations applied")
	}
}
