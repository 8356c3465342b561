package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mreynaud/go-storefront/internal/entity"
	"github.com/mreynaud/go-storefront/internal/repository"
)

type reviewRepository struct {
	db *sql.DB
}

// NewReviewRepository creates a new ReviewRepository backed by Postgres.
func NewReviewRepository(db *sql.DB) repository.ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) Create(ctx context.Context, rev *entity.Review) error {
	err := r.db.QueryRowContext(ctx,
		"INSERT INTO reviews (product_id, user_id, rating, comment, created_at) VALUES ($1, $2, $3, $4, $5) RETURNING id",
		rev.ProductID, rev.UserID, rev.Rating, rev.Comment, rev.CreatedAt,
	).Scan(&rev.ID)
	if err != nil {
		return fmt.Errorf("failed to insert review: %w", err)
	}
	return nil
}

func (r *reviewRepository) FindByProduct(ctx context.Context, productID string) ([]entity.Review, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT r.id, r.product_id, r.user_id, u.username, r.rating, r.comment, r.created_at
		FROM reviews r
		JOIN users u ON u.id = r.user_id
		WHERE r.product_id = $1
		ORDER BY r.created_at DESC`,
		productID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query reviews: %w", err)
	}
	defer rows.Close()

	var reviews []entity.Review
	for rows.Next() {
		var rev entity.Review
		if err := rows.Scan(&rev.ID, &rev.ProductID, &rev.UserID, &rev.Username, &rev.Rating, &rev.Comment, &rev.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, rev)
	}
	return reviews, rows.Err()
}
