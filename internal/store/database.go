package store

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// Connect opens and pings a Postgres connection.
func Connect(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	return db, nil
}

// Migrate applies the schema. Statements are idempotent so this is safe to
// run on every start.
func Migrate(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS identities (
		uid        VARCHAR(64) PRIMARY KEY,
		email      VARCHAR(255) UNIQUE NOT NULL,
		password   VARCHAR(255) NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_identities_email ON identities(email);

	CREATE TABLE IF NOT EXISTS users (
		uid        VARCHAR(64) PRIMARY KEY,
		username   VARCHAR(50) UNIQUE NOT NULL,
		name       VARCHAR(255) NOT NULL,
		email      VARCHAR(255) NOT NULL,
		apikey     VARCHAR(255) NOT NULL DEFAULT '',
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_users_username ON users(username);

	CREATE TABLE IF NOT EXISTS usernames (
		username   VARCHAR(50) PRIMARY KEY,
		user_id    VARCHAR(64) NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS prompt_history (
		id         BIGSERIAL PRIMARY KEY,
		user_id    VARCHAR(64) NOT NULL,
		prompt     TEXT NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_prompt_history_user ON prompt_history(user_id, created_at DESC);
	`

	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	return nil
}
