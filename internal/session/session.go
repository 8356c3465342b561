// Package session stores per-visitor state: the cart, the authenticated
// user binding, and pending checkout stashes awaiting the payment gateway's
// success callback. Carts are value objects; callers mutate a copy and
// persist it back with SetCart.
package session

import (
	"context"
	"time"

	"github.com/mreynaud/go-storefront/internal/entity"
)

// TTL is how long idle session state survives.
const TTL = 24 * time.Hour

// CheckoutMode distinguishes the two reconciliation entry points.
type CheckoutMode string

const (
	CheckoutCart   CheckoutMode = "cart"
	CheckoutDirect CheckoutMode = "direct"
)

// PendingCheckout is stashed when a payment session is created and resolved
// exactly once by the success callback. ProductID and Quantity are only set
// in direct mode.
type PendingCheckout struct {
	Mode      CheckoutMode `json:"mode"`
	ProductID string       `json:"product_id,omitempty"`
	Quantity  int          `json:"quantity,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}

// Store is the session state backend.
type Store interface {
	// Cart returns the session's cart; an absent cart is an empty one.
	Cart(ctx context.Context, sid string) (entity.Cart, error)
	SetCart(ctx context.Context, sid string, cart entity.Cart) error
	ClearCart(ctx context.Context, sid string) error

	// UserID returns the authenticated user bound to the session, or ""
	// when the visitor is a guest.
	UserID(ctx context.Context, sid string) (string, error)
	BindUser(ctx context.Context, sid, userID string) error
	UnbindUser(ctx context.Context, sid string) error

	StashCheckout(ctx context.Context, sid, token string, pc PendingCheckout) error
	// TakeCheckout resolves and deletes the stash in one step. Unknown or
	// already-consumed tokens return entity.ErrNotFound.
	TakeCheckout(ctx context.Context, sid, token string) (*PendingCheckout, error)
}
