package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"licensio/internal/audit"
	id "licensio/pkg/domain"

	"github.com/google/uuid"
)

// Postgres persists validation events in the validation_events table.
// Inserts are idempotent on event ID so the retry path in the worker cannot
// duplicate rows.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Append(ctx context.Context, event audit.Event) error {
	query := `
		INSERT INTO validation_events
			(id, credential_id, key_string, ip_address, domain, user_agent, result, error_code, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO NOTHING
	`
	var credentialID any
	if !event.CredentialID.IsNil() {
		credentialID = event.CredentialID.String()
	}
	_, err := s.db.ExecContext(ctx, query,
		event.ID.String(),
		credentialID,
		event.KeyString,
		event.IPAddress,
		event.Domain,
		event.UserAgent,
		string(event.Result),
		string(event.ErrorCode),
		event.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert validation event: %w", err)
	}
	return nil
}

func (s *Postgres) ListRecent(ctx context.Context, limit int) ([]audit.Event, error) {
	if limit <= 0 {
		limit = audit.SnapshotSize
	}
	query := `
		SELECT id, credential_id, key_string, ip_address, domain, user_agent, result, error_code, created_at
		FROM validation_events
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list validation events: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var (
			event         audit.Event
			rawID         string
			rawCredential sql.NullString
			result        string
			errorCode     string
		)
		err := rows.Scan(&rawID, &rawCredential, &event.KeyString, &event.IPAddress,
			&event.Domain, &event.UserAgent, &result, &errorCode, &event.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("scan validation event: %w", err)
		}
		eventID, err := uuid.Parse(rawID)
		if err != nil {
			return nil, fmt.Errorf("stored event id invalid: %w", err)
		}
		event.ID = id.EventID(eventID)
		if rawCredential.Valid {
			credentialID, err := uuid.Parse(rawCredential.String)
			if err != nil {
				return nil, fmt.Errorf("stored credential id invalid: %w", err)
			}
			event.CredentialID = id.CredentialID(credentialID)
		}
		event.Result = audit.Result(result)
		event.ErrorCode = audit.Code(errorCode)
		events = append(events, event)
	}
	return events, rows.Err()
}

func (s *Postgres) CountSince(ctx context.Context, since time.Time) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT count(*) FROM validation_events WHERE created_at >= $1`, since).Scan(&count)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("count validation events: %w", err)
	}
	return count, nil
}
