package database

import "embed"

// MigrationFS holds the Postgres migrations applied by Migrate.
//
//go:embed migrations/*.sql
var MigrationFS embed.FS
