package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // Postgres driver
)

func Connect(dsn string, timeout time.Duration) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create database handle: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err = db.PingContext(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to ping database within %v: %w (close also failed: %v)", timeout, err, closeErr)
		}
		return nil, fmt.Errorf("failed to ping database within %v: %w", timeout, err)
	}

	return db, nil
}

// Migrate creates the schema if it does not exist yet. Groups are never
// deleted while submissions reference them, which ON DELETE RESTRICT
// enforces at the database level.
func Migrate(ctx context.Context, db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS groups (
			id SERIAL PRIMARY KEY,
			name VARCHAR(50) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			CONSTRAINT groups_name_key UNIQUE (name)
		)`,

		`CREATE UNIQUE INDEX IF NOT EXISTS groups_name_lower_key ON groups (LOWER(name))`,

		`CREATE TABLE IF NOT EXISTS submissions (
			id SERIAL PRIMARY KEY,
			group_id INTEGER NOT NULL REFERENCES groups(id) ON DELETE RESTRICT,
			right_predictions INTEGER NOT NULL CHECK (right_predictions >= 0),
			wrong_predictions INTEGER NOT NULL CHECK (wrong_predictions >= 0),
			cce DOUBLE PRECISION NOT NULL CHECK (cce >= 0),
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,

		`CREATE INDEX IF NOT EXISTS submissions_group_id_idx ON submissions (group_id)`,
	}

	for _, query := range queries {
		if _, err := db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute migration: %w", err)
		}
	}
	return nil
}
