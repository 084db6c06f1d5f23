package database

import (
	"database/sql"
	"fmt"
	"regexp"
)

// Driver names the SQL engine behind a DB handle.
type Driver string

const (
	DriverPostgres Driver = "postgres"
	DriverSQLite   Driver = "sqlite"
)

// DB is a *sql.DB tagged with its driver so queries written with Postgres
// placeholders can run on SQLite too.
type DB struct {
	*sql.DB
	Driver Driver
}

var placeholderRe = regexp.MustCompile(`\$\d+`)

// Rebind rewrites $1, $2 ... placeholders for the underlying driver. Queries
// must number their placeholders in argument order without reuse.
func (db *DB) Rebind(query string) string {
	if db.Driver == DriverSQLite {
		return placeholderRe.ReplaceAllString(query, "?")
	}
	return query
}

// ForUpdate returns the row-locking suffix for SELECTs inside a transaction.
// SQLite serialises writers, so it needs none.
func (db *DB) ForUpdate() string {
	if db.Driver == DriverPostgres {
		return " FOR UPDATE"
	}
	return ""
}

// Open connects to the configured driver and brings the schema up to date.
func Open(driver Driver, dsn string) (*DB, error) {
	switch driver {
	case DriverPostgres:
		return ConnectPostgres(dsn)
	case DriverSQLite:
		return OpenSQLite(dsn)
	}
	return nil, fmt.Errorf("unsupported database driver %q", driver)
}
