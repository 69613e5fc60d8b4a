package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"licensio/internal/catalog"
	id "licensio/pkg/domain"
	"licensio/pkg/platform/sentinel"
)

const uniqueViolation = "23505"

// Postgres persists products in the products table.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Create(ctx context.Context, product catalog.Product) error {
	query := `
		INSERT INTO products (id, name, slug, description)
		VALUES ($1, $2, $3, $4)
	`
	_, err := s.db.ExecContext(ctx, query,
		product.ID.String(), product.Name, product.Slug, product.Description)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, productID id.ProductID) (catalog.Product, error) {
	query := `SELECT id, name, slug, description FROM products WHERE id = $1`

	var (
		product catalog.Product
		rawID   string
	)
	err := s.db.QueryRowContext(ctx, query, productID.String()).
		Scan(&rawID, &product.Name, &product.Slug, &product.Description)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return catalog.Product{}, sentinel.ErrNotFound
		}
		return catalog.Product{}, fmt.Errorf("scan product: %w", err)
	}
	parsed, err := id.ParseProductID(rawID)
	if err != nil {
		return catalog.Product{}, fmt.Errorf("stored product id invalid: %w", err)
	}
	product.ID = parsed
	return product, nil
}

func (s *Postgres) List(ctx context.Context) ([]catalog.Product, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, slug, description FROM products ORDER BY slug`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []catalog.Product
	for rows.Next() {
		var (
			product catalog.Product
			rawID   string
		)
		if err := rows.Scan(&rawID, &product.Name, &product.Slug, &product.Description); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		parsed, err := id.ParseProductID(rawID)
		if err != nil {
			return nil, fmt.Errorf("stored product id invalid: %w", err)
		}
		product.ID = parsed
		products = append(products, product)
	}
	return products, rows.Err()
}
