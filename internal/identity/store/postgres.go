package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"licensio/internal/identity"
	id "licensio/pkg/domain"
	"licensio/pkg/platform/sentinel"
)

// uniqueViolation is the postgres error code for unique constraint violations.
const uniqueViolation = "23505"

// Postgres persists identities in the identities table.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Create(ctx context.Context, ident identity.Identity) error {
	query := `
		INSERT INTO identities (id, email, full_name, password_hash, role, created_at)
		VALUES ($1, lower($2), $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(ctx, query,
		ident.ID.String(),
		ident.Email,
		ident.FullName,
		ident.PasswordHash,
		string(ident.Role),
		ident.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert identity: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, userID id.UserID) (identity.Identity, error) {
	query := `
		SELECT id, email, full_name, password_hash, role, created_at
		FROM identities WHERE id = $1
	`
	return s.scanOne(s.db.QueryRowContext(ctx, query, userID.String()))
}

func (s *Postgres) FindByEmail(ctx context.Context, email string) (identity.Identity, error) {
	query := `
		SELECT id, email, full_name, password_hash, role, created_at
		FROM identities WHERE email = lower($1)
	`
	return s.scanOne(s.db.QueryRowContext(ctx, query, email))
}

func (s *Postgres) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM identities`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count identities: %w", err)
	}
	return count, nil
}

func (s *Postgres) scanOne(row *sql.Row) (identity.Identity, error) {
	var (
		ident identity.Identity
		rawID string
		role  string
	)
	err := row.Scan(&rawID, &ident.Email, &ident.FullName, &ident.PasswordHash, &role, &ident.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return identity.Identity{}, sentinel.ErrNotFound
		}
		return identity.Identity{}, fmt.Errorf("scan identity: %w", err)
	}
	parsed, err := id.ParseUserID(rawID)
	if err != nil {
		return identity.Identity{}, fmt.Errorf("stored identity id invalid: %w", err)
	}
	ident.ID = parsed
	ident.Role = id.Role(role)
	return ident, nil
}
