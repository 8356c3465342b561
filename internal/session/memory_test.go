package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mreynaud/go-storefront/internal/entity"
)

func TestMemoryStoreCartRoundTrip(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	cart, err := s.Cart(ctx, "sid")
	require.NoError(t, err)
	assert.Empty(t, cart, "absent cart reads as empty")

	require.NoError(t, s.SetCart(ctx, "sid", entity.Cart{"a", "b", "a"}))
	cart, err = s.Cart(ctx, "sid")
	require.NoError(t, err)
	assert.Equal(t, entity.Cart{"a", "b", "a"}, cart)

	// Callers get a copy; mutating it must not leak into the store.
	cart[0] = "z"
	again, err := s.Cart(ctx, "sid")
	require.NoError(t, err)
	assert.Equal(t, entity.Cart{"a", "b", "a"}, again)

	require.NoError(t, s.ClearCart(ctx, "sid"))
	cart, err = s.Cart(ctx, "sid")
	require.NoError(t, err)
	assert.Empty(t, cart)
}

func TestMemoryStoreUserBinding(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	id, err := s.UserID(ctx, "sid")
	require.NoError(t, err)
	assert.Empty(t, id)

	require.NoError(t, s.BindUser(ctx, "sid", "u1"))
	id, err = s.UserID(ctx, "sid")
	require.NoError(t, err)
	assert.Equal(t, "u1", id)

	require.NoError(t, s.UnbindUser(ctx, "sid"))
	id, err = s.UserID(ctx, "sid")
	require.NoError(t, err)
	assert.Empty(t, id)
}

func TestMemoryStoreCheckoutStashIsSingleUse(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	pc := PendingCheckout{Mode: CheckoutDirect, ProductID: "p1", Quantity: 2, CreatedAt: time.Now()}
	require.NoError(t, s.StashCheckout(ctx, "sid", "tok", pc))

	got, err := s.TakeCheckout(ctx, "sid", "tok")
	require.NoError(t, err)
	assert.Equal(t, CheckoutDirect, got.Mode)
	assert.Equal(t, "p1", got.ProductID)
	assert.Equal(t, 2, got.Quantity)

	_, err = s.TakeCheckout(ctx, "sid", "tok")
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestMemoryStoreCheckoutStashScopedToSession(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.StashCheckout(ctx, "sid-a", "tok", PendingCheckout{Mode: CheckoutCart}))

	_, err := s.TakeCheckout(ctx, "sid-b", "tok")
	assert.ErrorIs(t, err, entity.ErrNotFound)

	_, err = s.TakeCheckout(ctx, "sid-a", "tok")
	assert.NoError(t, err)
}
