// Command create-admin creates an admin account, or promotes and resets the
// password of an existing account with the same email.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/AnshRaj112/therapeutes-vaud/internal/config"
	"github.com/AnshRaj112/therapeutes-vaud/internal/database"
	"github.com/AnshRaj112/therapeutes-vaud/internal/models"
	"github.com/AnshRaj112/therapeutes-vaud/internal/repository"
	"github.com/AnshRaj112/therapeutes-vaud/pkg/utils"
)

func main() {
	email := flag.String("email", "", "admin email address")
	name := flag.String("name", "Administrator", "display name")
	password := flag.String("password", os.Getenv("ADMIN_PASSWORD"), "password (defaults to $ADMIN_PASSWORD)")
	flag.Parse()

	if err := models.ValidateEmail(*email); err != nil {
		log.WithError(err).Fatal("Invalid -email")
	}
	if err := models.ValidatePassword(*password); err != nil {
		log.WithError(err).Fatal("Invalid -password")
	}

	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found")
	}
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Invalid configuration")
	}

	dsn := cfg.PostgresURI
	if cfg.DatabaseDriver == database.DriverSQLite {
		dsn = cfg.SQLiteDSN
	}
	db, err := database.Open(cfg.DatabaseDriver, dsn)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}
	store := repository.NewStore(db)
	defer store.Close()

	hash, err := utils.HashPassword(*password)
	if err != nil {
		log.WithError(err).Fatal("Failed to hash password")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	id, created, err := store.UpsertAdmin(ctx, *email, *name, hash)
	if err != nil {
		log.WithError(err).Fatal("Failed to create admin")
	}
	if created {
		log.WithField("account", id).Info("✅ Admin account created")
	} else {
		log.WithField("account", id).Info("✅ Existing account promoted to admin")
	}
}
