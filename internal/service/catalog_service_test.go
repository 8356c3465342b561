package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mreynaud/go-storefront/internal/entity"
	"github.com/mreynaud/go-storefront/internal/repository/memory"
)

var (
	admin   = &entity.User{ID: "admin", Username: "admin", IsAdmin: true}
	shopper = &entity.User{ID: "u1", Username: "alice"}
)

func TestCatalogAdminGating(t *testing.T) {
	svc := NewCatalogService(memory.NewStore().Products())
	ctx := context.Background()
	p := &entity.Product{Name: "Thing", Price: 1.00}

	_, err := svc.CreateProduct(ctx, nil, p)
	assert.ErrorIs(t, err, entity.ErrUnauthenticated)

	_, err = svc.CreateProduct(ctx, shopper, p)
	assert.ErrorIs(t, err, entity.ErrForbidden)

	assert.ErrorIs(t, svc.UpdateProduct(ctx, shopper, p), entity.ErrForbidden)
	assert.ErrorIs(t, svc.DeleteProduct(ctx, nil, "x"), entity.ErrUnauthenticated)
}

func TestCatalogCRUD(t *testing.T) {
	svc := NewCatalogService(memory.NewStore().Products())
	ctx := context.Background()

	created, err := svc.CreateProduct(ctx, admin, &entity.Product{Name: "Thing", Price: 3.50, Stock: 10})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	got, err := svc.Product(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Thing", got.Name)

	got.Price = 4.00
	require.NoError(t, svc.UpdateProduct(ctx, admin, got))

	got, err = svc.Product(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 4.00, got.Price)

	require.NoError(t, svc.DeleteProduct(ctx, admin, created.ID))
	_, err = svc.Product(ctx, created.ID)
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestCatalogValidation(t *testing.T) {
	svc := NewCatalogService(memory.NewStore().Products())
	ctx := context.Background()

	tests := []struct {
		name    string
		product entity.Product
	}{
		{"blank name", entity.Product{Name: "  ", Price: 1}},
		{"negative price", entity.Product{Name: "Thing", Price: -1}},
		{"negative stock", entity.Product{Name: "Thing", Price: 1, Stock: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.product
			_, err := svc.CreateProduct(ctx, admin, &p)
			assert.ErrorIs(t, err, entity.ErrInvalidInput)
		})
	}
}

func TestLinesForCart(t *testing.T) {
	store := memory.NewStore()
	svc := NewCatalogService(store.Products())
	ctx := context.Background()

	require.NoError(t, store.Products().Create(ctx, &entity.Product{ID: "p1", Name: "A", Price: 2.50, Stock: 9}))
	require.NoError(t, store.Products().Create(ctx, &entity.Product{ID: "p2", Name: "B", Price: 1.00, Stock: 9}))

	lines, total, err := svc.LinesForCart(ctx, entity.Cart{"p1", "p2", "p1", "ghost"})
	require.NoError(t, err)

	// Stale entries are dropped from the view rather than erroring.
	require.Len(t, lines, 2)
	assert.Equal(t, 6.00, total)

	byID := map[string]entity.CartLine{}
	for _, l := range lines {
		byID[l.Product.ID] = l
	}
	assert.Equal(t, 2, byID["p1"].Quantity)
	assert.Equal(t, 5.00, byID["p1"].Subtotal)
	assert.Equal(t, 1, byID["p2"].Quantity)
}

func TestLinesForCartEmpty(t *testing.T) {
	svc := NewCatalogService(memory.NewStore().Products())

	lines, total, err := svc.LinesForCart(context.Background(), entity.Cart{})
	require.NoError(t, err)
	assert.Empty(t, lines)
	assert.Zero(t, total)
}

func TestSeedIdempotent(t *testing.T) {
	store := memory.NewStore()
	svc := NewCatalogService(store.Products())
	ctx := context.Background()

	require.NoError(t, svc.Seed(ctx))
	products, err := svc.Products(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, products)

	require.NoError(t, svc.Seed(ctx))
	again, err := svc.Products(ctx)
	require.NoError(t, err)
	assert.Len(t, again, len(products))
}
