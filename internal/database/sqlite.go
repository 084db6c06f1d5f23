package database

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// OpenSQLite opens an embedded database, e.g. ":memory:" or "file:dev.db".
// The pool is held to one connection so an in-memory database survives
// between queries and writers never contend.
func OpenSQLite(dsn string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := sqlDB.Exec(p); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("%s: %w", p, err)
		}
	}

	if _, err := sqlDB.Exec(sqliteSchema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("sqlite schema: %w", err)
	}
	return &DB{DB: sqlDB, Driver: DriverSQLite}, nil
}

// sqliteSchema mirrors the Postgres migrations at their latest version.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS accounts (
    id TEXT PRIMARY KEY,
    created_at DATETIME NOT NULL,
    updated_at DATETIME NOT NULL,
    email TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    name TEXT NOT NULL,
    phone TEXT NOT NULL DEFAULT '',
    role TEXT NOT NULL DEFAULT 'therapist' CHECK (role IN ('admin', 'therapist')),
    subscription_tier TEXT NOT NULL DEFAULT 'free' CHECK (subscription_tier IN ('free', 'premium')),
    verified BOOLEAN NOT NULL DEFAULT 0,
    verification_status TEXT NOT NULL DEFAULT 'pending' CHECK (verification_status IN ('pending', 'approved', 'rejected')),
    CHECK (verified = (verification_status = 'approved'))
);

CREATE UNIQUE INDEX IF NOT EXISTS accounts_email_key ON accounts (email COLLATE NOCASE);
CREATE INDEX IF NOT EXISTS idx_accounts_status ON accounts (verification_status);
CREATE INDEX IF NOT EXISTS idx_accounts_role ON accounts (role);

CREATE TABLE IF NOT EXISTS profiles (
    account_id TEXT PRIMARY KEY REFERENCES accounts(id) ON DELETE CASCADE,
    practitioner_type TEXT NOT NULL,
    specializations TEXT NOT NULL DEFAULT '[]',
    languages TEXT NOT NULL DEFAULT '[]',
    years_experience INTEGER,
    description TEXT NOT NULL DEFAULT '',
    street TEXT NOT NULL DEFAULT '',
    postal_code TEXT NOT NULL DEFAULT '',
    city TEXT NOT NULL DEFAULT '',
    latitude REAL,
    longitude REAL,
    rate_individual REAL,
    rate_couple REAL,
    photo_url TEXT NOT NULL DEFAULT '',
    professional_number TEXT NOT NULL DEFAULT ''
);
`
