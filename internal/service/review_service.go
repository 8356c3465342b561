package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/mreynaud/go-storefront/internal/entity"
	"github.com/mreynaud/go-storefront/internal/repository"
)

// ReviewService attaches ratings to products.
type ReviewService struct {
	reviews  repository.ReviewRepository
	products repository.ProductRepository
}

func NewReviewService(reviews repository.ReviewRepository, products repository.ProductRepository) *ReviewService {
	return &ReviewService{reviews: reviews, products: products}
}

// Add records a review from an authenticated user. Ratings outside [1,5]
// are rejected.
func (s *ReviewService) Add(ctx context.Context, user *entity.User, productID string, rating int, comment string) (*entity.Review, error) {
	if user == nil {
		return nil, entity.ErrUnauthenticated
	}
	if rating < 1 || rating > 5 {
		return nil, entity.ErrInvalidRating
	}
	if _, err := s.products.FindByID(ctx, productID); err != nil {
		return nil, err
	}

	review := &entity.Review{
		ProductID: productID,
		UserID:    user.ID,
		Username:  user.Username,
		Rating:    rating,
		Comment:   comment,
		CreatedAt: time.Now(),
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, err
	}

	slog.Info("Review added", "product_id", productID, "user_id", user.ID, "rating", rating)
	return review, nil
}

// ForProduct lists a product's reviews, newest first.
func (s *ReviewService) ForProduct(ctx context.Context, productID string) ([]entity.Review, error) {
	if _, err := s.products.FindByID(ctx, productID); err != nil {
		return nil, err
	}
	return s.reviews.FindByProduct(ctx, productID)
}
