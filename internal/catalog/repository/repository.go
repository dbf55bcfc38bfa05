// Package repository provides data access for products and their reviews.
// Products are keyed by barcode; each product owns a set of reviews keyed
// by a store-assigned UUID.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrProductNotFound is returned when no product exists for a barcode.
	ErrProductNotFound = errors.New("product not found")
	// ErrReviewNotFound is returned when a review ref does not resolve.
	ErrReviewNotFound = errors.New("review not found")
)

// Product is a consumer product identified by its barcode.
type Product struct {
	Barcode   string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Review is one user's rating of a product. UpdatedAt is the
// server-assigned write timestamp; overwriting a review bumps it.
type Review struct {
	ID        uuid.UUID
	Barcode   string
	UserID    int64
	Rating    int
	Text      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Repository provides data access for the catalog bounded context.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new catalog repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetProduct retrieves a product by barcode.
func (r *Repository) GetProduct(ctx context.Context, barcode string) (Product, error) {
	var p Product
	err := r.pool.QueryRow(ctx, `
		SELECT barcode, name, created_at, updated_at
		FROM products
		WHERE barcode = $1
	`, barcode).Scan(&p.Barcode, &p.Name, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrProductNotFound
	}
	return p, err
}

// UpsertProductName creates the product row if needed and sets its name.
// Only the name column is merged; other columns are never erased.
func (r *Repository) UpsertProductName(ctx context.Context, barcode string, name string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO products (barcode, name)
		VALUES ($1, $2)
		ON CONFLICT (barcode) DO UPDATE
		SET name = EXCLUDED.name, updated_at = now()
	`, barcode, name)
	return err
}

// ListReviews returns every review of a product, oldest first.
func (r *Repository) ListReviews(ctx context.Context, barcode string) ([]Review, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, product_barcode, user_id, rating, review_text, created_at, updated_at
		FROM reviews
		WHERE product_barcode = $1
		ORDER BY created_at
	`, barcode)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []Review
	for rows.Next() {
		var rev Review
		if err := rows.Scan(
			&rev.ID, &rev.Barcode, &rev.UserID, &rev.Rating, &rev.Text,
			&rev.CreatedAt, &rev.UpdatedAt,
		); err != nil {
			return nil, err
		}
		reviews = append(reviews, rev)
	}
	return reviews, rows.Err()
}

// CreateReview inserts a new review with a fresh identifier.
func (r *Repository) CreateReview(ctx context.Context, barcode string, userID int64, rating int, text string) (Review, error) {
	var rev Review
	err := r.pool.QueryRow(ctx, `
		INSERT INTO reviews (id, product_barcode, user_id, rating, review_text)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, product_barcode, user_id, rating, review_text, created_at, updated_at
	`, uuid.New(), barcode, userID, rating, text).Scan(
		&rev.ID, &rev.Barcode, &rev.UserID, &rev.Rating, &rev.Text,
		&rev.CreatedAt, &rev.UpdatedAt,
	)
	return rev, err
}

// UpdateReview overwrites an existing review's rating and text in place,
// preserving its identity so "one review per user" holds.
func (r *Repository) UpdateReview(ctx context.Context, id uuid.UUID, userID int64, rating int, text string) (Review, error) {
	var rev Review
	err := r.pool.QueryRow(ctx, `
		UPDATE reviews
		SET rating = $3, review_text = $4, updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING id, product_barcode, user_id, rating, review_text, created_at, updated_at
	`, id, userID, rating, text).Scan(
		&rev.ID, &rev.Barcode, &rev.UserID, &rev.Rating, &rev.Text,
		&rev.CreatedAt, &rev.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Review{}, ErrReviewNotFound
	}
	return rev, err
}
