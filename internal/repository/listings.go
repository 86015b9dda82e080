package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrListingNotFound = errors.New("listing not found")

type ListingRepo struct {
	pool *pgxpool.Pool
}

func NewListingRepo(pool *pgxpool.Pool) *ListingRepo {
	return &ListingRepo{pool: pool}
}

func NewPgxPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	return pgxpool.New(ctx, dsn)
}

// GetImages reads the listing's image URL list as stored, in display order.
func (r *ListingRepo) GetImages(ctx context.Context, id int64) ([]string, error) {
	query := `
		SELECT COALESCE(images, '{}')
		FROM listings
		WHERE id = $1
	`
	var images []string
	if err := r.pool.QueryRow(ctx, query, id).Scan(&images); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrListingNotFound
		}
		return nil, fmt.Errorf("get listing images: %w", err)
	}
	return images, nil
}

// UpdateImages persists the new image list for the listing.
func (r *ListingRepo) UpdateImages(ctx context.Context, id int64, images []string) error {
	query := `
		UPDATE listings
		SET images = $1, updated_at = now()
		WHERE id = $2
	`
	tag, err := r.pool.Exec(ctx, query, images, id)
	if err != nil {
		return fmt.Errorf("update listing images: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrListingNotFound
	}
	return nil
}

// Delete removes the listing row and hands back its image list so the caller
// can reconcile storage afterwards.
func (r *ListingRepo) Delete(ctx context.Context, id int64) ([]string, error) {
	query := `
		DELETE FROM listings
		WHERE id = $1
		RETURNING COALESCE(images, '{}')
	`
	var images []string
	if err := r.pool.QueryRow(ctx, query, id).Scan(&images); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrListingNotFound
		}
		return nil, fmt.Errorf("delete listing: %w", err)
	}
	return images, nil
}
