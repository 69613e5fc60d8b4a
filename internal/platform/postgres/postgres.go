// Package postgres opens the shared database handle and keeps the schema in
// step with the stores that use it.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

const schema = `
	CREATE TABLE IF NOT EXISTS identities (
		id            UUID PRIMARY KEY,
		email         TEXT NOT NULL UNIQUE,
		full_name     TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		role          TEXT NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL
	);

	CREATE TABLE IF NOT EXISTS products (
		id          UUID PRIMARY KEY,
		name        TEXT NOT NULL,
		slug        TEXT NOT NULL UNIQUE,
		description TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS credentials (
		id              UUID PRIMARY KEY,
		key_string      TEXT NOT NULL UNIQUE,
		secret_hash     TEXT NOT NULL,
		owner_id        UUID NOT NULL REFERENCES identities(id),
		product_id      UUID NOT NULL REFERENCES products(id),
		status          TEXT NOT NULL,
		expires_at      TIMESTAMPTZ,
		allowed_domains TEXT[] NOT NULL DEFAULT '{}',
		created_at      TIMESTAMPTZ NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_credentials_owner
		ON credentials(owner_id);

	CREATE TABLE IF NOT EXISTS validation_events (
		id            UUID PRIMARY KEY,
		credential_id UUID,
		key_string    TEXT NOT NULL,
		ip_address    TEXT NOT NULL DEFAULT '',
		domain        TEXT NOT NULL DEFAULT '',
		user_agent    TEXT NOT NULL DEFAULT '',
		result        TEXT NOT NULL,
		error_code    TEXT NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_validation_events_created
		ON validation_events(created_at DESC, id DESC);
`

// Open connects, verifies the connection, and ensures the schema exists.
func Open(ctx context.Context, url string) (*sql.DB, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return db, nil
}
