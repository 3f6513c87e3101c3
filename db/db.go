package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // Import postgres driver
)

// Connect opens a pooled postgres handle and pings it within timeout.
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
		db.Close()
		return nil, fmt.Errorf("failed to ping database within %v: %w", timeout, err)
	}

	return db, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS participants (
	id                         TEXT PRIMARY KEY,
	tournament_id              TEXT NOT NULL,
	participant_name           TEXT NOT NULL,
	participant_type           TEXT NOT NULL DEFAULT 'INDIVIDUAL',
	nationality                TEXT NOT NULL DEFAULT '',
	club_code                  TEXT NOT NULL DEFAULT '',
	individual_participant_ids TEXT[] NOT NULL DEFAULT '{}',
	created_at                 TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS draws (
	id         TEXT PRIMARY KEY,
	event_id   TEXT NOT NULL,
	draw_name  TEXT NOT NULL DEFAULT '',
	draw_type  TEXT NOT NULL,
	definition JSONB NOT NULL,
	version    INTEGER NOT NULL DEFAULT 1,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS draws_event_id_idx ON draws (event_id);
`

// Migrate creates the draw tables when they are missing.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
