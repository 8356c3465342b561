package repository

import (
	"context"

	"github.com/mreynaud/go-storefront/internal/entity"
)

// ProductRepository handles persistence for Products.
type ProductRepository interface {
	FindAll(ctx context.Context) ([]entity.Product, error)
	FindByID(ctx context.Context, id string) (*entity.Product, error)
	FindByIDs(ctx context.Context, ids []string) ([]entity.Product, error)
	Create(ctx context.Context, p *entity.Product) error
	Update(ctx context.Context, p *entity.Product) error
	Delete(ctx context.Context, id string) error
	// Seed inserts initial products if none exist.
	Seed(ctx context.Context, products []entity.Product) error
}

// UserRepository handles persistence for Users.
type UserRepository interface {
	// Create returns entity.ErrUsernameTaken on a duplicate username.
	Create(ctx context.Context, u *entity.User) error
	FindByID(ctx context.Context, id string) (*entity.User, error)
	FindByUsername(ctx context.Context, username string) (*entity.User, error)
}

// ReviewRepository handles persistence for Reviews.
type ReviewRepository interface {
	Create(ctx context.Context, r *entity.Review) error
	// FindByProduct returns the product's reviews, newest first, with
	// usernames resolved.
	FindByProduct(ctx context.Context, productID string) ([]entity.Review, error)
}

// OrderRepository reads completed orders. Orders are only ever written by
// the CheckoutStore, inside the reconciliation transaction.
type OrderRepository interface {
	FindByUser(ctx context.Context, userID string) ([]entity.Order, error)
}

// CheckoutStore applies a checkout atomically: every stock decrement is a
// single conditional update (never read-then-write) and the order row, when
// one is due, commits in the same transaction. A non-nil error means the
// whole checkout was rolled back; per-line anomalies are reported in the
// result, not as errors.
type CheckoutStore interface {
	Reconcile(ctx context.Context, userID string, lines []entity.Line) (*entity.CheckoutResult, error)
}
