package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"licensio/internal/credential"
	id "licensio/pkg/domain"
	"licensio/pkg/platform/sentinel"
)

const uniqueViolation = "23505"

// Postgres persists credentials. key_string carries a unique index, which is
// what makes concurrent issuance safe: a collision surfaces as a unique
// violation and the service retries with fresh key material.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const credentialColumns = `id, key_string, secret_hash, owner_id, product_id, status, expires_at, allowed_domains, created_at`

func (s *Postgres) Create(ctx context.Context, c credential.Credential) error {
	query := `
		INSERT INTO credentials (` + credentialColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(ctx, query,
		c.ID.String(),
		c.KeyString,
		c.SecretHash,
		c.OwnerID.String(),
		c.ProductID.String(),
		string(c.Status),
		nullableTime(c.ExpiresAt),
		pq.Array(c.AllowedDomains),
		c.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert credential: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, credentialID id.CredentialID) (credential.Credential, error) {
	query := `SELECT ` + credentialColumns + ` FROM credentials WHERE id = $1`
	return scanCredential(s.db.QueryRowContext(ctx, query, credentialID.String()))
}

func (s *Postgres) FindByKey(ctx context.Context, keyString string) (credential.Credential, error) {
	query := `SELECT ` + credentialColumns + ` FROM credentials WHERE key_string = $1`
	return scanCredential(s.db.QueryRowContext(ctx, query, keyString))
}

func (s *Postgres) ListByOwner(ctx context.Context, ownerID id.UserID) ([]credential.Credential, error) {
	query := `SELECT ` + credentialColumns + ` FROM credentials WHERE owner_id = $1 ORDER BY created_at DESC`
	return s.list(ctx, query, ownerID.String())
}

func (s *Postgres) ListAll(ctx context.Context) ([]credential.Credential, error) {
	query := `SELECT ` + credentialColumns + ` FROM credentials ORDER BY created_at DESC`
	return s.list(ctx, query)
}

func (s *Postgres) UpdateDomains(ctx context.Context, credentialID id.CredentialID, domains []string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE credentials SET allowed_domains = $2 WHERE id = $1`,
		credentialID.String(), pq.Array(domains))
	if err != nil {
		return fmt.Errorf("update credential domains: %w", err)
	}
	return requireRow(result)
}

func (s *Postgres) Revoke(ctx context.Context, credentialID id.CredentialID) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE credentials SET status = $2 WHERE id = $1`,
		credentialID.String(), string(credential.StatusRevoked))
	if err != nil {
		return fmt.Errorf("revoke credential: %w", err)
	}
	return requireRow(result)
}

func (s *Postgres) CountActive(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT count(*) FROM credentials WHERE status = $1`,
		string(credential.StatusActive)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count active credentials: %w", err)
	}
	return count, nil
}

func (s *Postgres) list(ctx context.Context, query string, args ...any) ([]credential.Credential, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list credentials: %w", err)
	}
	defer rows.Close()

	var credentials []credential.Credential
	for rows.Next() {
		c, err := scanCredentialRows(rows)
		if err != nil {
			return nil, err
		}
		credentials = append(credentials, c)
	}
	return credentials, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCredential(row *sql.Row) (credential.Credential, error) {
	c, err := scanFrom(row)
	if err != nil && errors.Is(err, sql.ErrNoRows) {
		return credential.Credential{}, sentinel.ErrNotFound
	}
	return c, err
}

func scanCredentialRows(rows *sql.Rows) (credential.Credential, error) {
	return scanFrom(rows)
}

func scanFrom(scanner rowScanner) (credential.Credential, error) {
	var (
		c         credential.Credential
		rawID     string
		rawOwner  string
		rawProd   string
		status    string
		expiresAt sql.NullTime
		domains   pq.StringArray
	)
	err := scanner.Scan(&rawID, &c.KeyString, &c.SecretHash, &rawOwner, &rawProd,
		&status, &expiresAt, &domains, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return credential.Credential{}, err
		}
		return credential.Credential{}, fmt.Errorf("scan credential: %w", err)
	}

	credID, err := id.ParseCredentialID(rawID)
	if err != nil {
		return credential.Credential{}, fmt.Errorf("stored credential id invalid: %w", err)
	}
	ownerID, err := id.ParseUserID(rawOwner)
	if err != nil {
		return credential.Credential{}, fmt.Errorf("stored owner id invalid: %w", err)
	}
	productID, err := id.ParseProductID(rawProd)
	if err != nil {
		return credential.Credential{}, fmt.Errorf("stored product id invalid: %w", err)
	}

	c.ID = credID
	c.OwnerID = ownerID
	c.ProductID = productID
	c.Status = credential.Status(status)
	if expiresAt.Valid {
		t := expiresAt.Time
		c.ExpiresAt = &t
	}
	c.AllowedDomains = []string(domains)
	return c, nil
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

func requireRow(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
