package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mreynaud/go-storefront/internal/entity"
	"github.com/mreynaud/go-storefront/internal/repository"
)

// CatalogService serves product browsing and the admin-only CRUD operations.
// It never touches stock; that belongs to the checkout reconciliation.
type CatalogService struct {
	products repository.ProductRepository
}

func NewCatalogService(products repository.ProductRepository) *CatalogService {
	return &CatalogService{products: products}
}

func (s *CatalogService) Products(ctx context.Context) ([]entity.Product, error) {
	return s.products.FindAll(ctx)
}

func (s *CatalogService) Product(ctx context.Context, id string) (*entity.Product, error) {
	return s.products.FindByID(ctx, id)
}

// LinesForCart resolves a session cart into display lines priced at the
// current catalog prices. Entries referencing deleted products are dropped,
// matching the reconciler's permissive stale-reference policy.
func (s *CatalogService) LinesForCart(ctx context.Context, cart entity.Cart) ([]entity.CartLine, float64, error) {
	counts := cart.Aggregate()
	if len(counts) == 0 {
		return nil, 0, nil
	}

	ids := make([]string, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, 0, err
	}

	var lines []entity.CartLine
	total := decimal.Zero
	for _, p := range products {
		subtotal := entity.Subtotal(p.Price, counts[p.ID])
		total = total.Add(subtotal)
		lines = append(lines, entity.CartLine{
			Product:  p,
			Quantity: counts[p.ID],
			Subtotal: entity.RoundPrice(subtotal),
		})
	}
	return lines, entity.RoundPrice(total), nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, actor *entity.User, p *entity.Product) (*entity.Product, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if err := validateProduct(p); err != nil {
		return nil, err
	}

	p.ID = uuid.NewString()
	if err := s.products.Create(ctx, p); err != nil {
		return nil, err
	}

	slog.Info("Product created", "product_id", p.ID, "name", p.Name, "admin", actor.Username)
	return p, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, actor *entity.User, p *entity.Product) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if err := validateProduct(p); err != nil {
		return err
	}

	if err := s.products.Update(ctx, p); err != nil {
		return err
	}

	slog.Info("Product updated", "product_id", p.ID, "admin", actor.Username)
	return nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, actor *entity.User, id string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}

	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}

	slog.Info("Product deleted", "product_id", id, "admin", actor.Username)
	return nil
}

// Seed inserts the default catalog into an empty store.
func (s *CatalogService) Seed(ctx context.Context) error {
	products := []entity.Product{
		{ID: "prod-001", Name: "Smoothing Shampoo", Description: "Gentle daily shampoo for sleek, soft hair.", Price: 12.99, ImageURL: "/static/img/shampoo.webp", Stock: 50},
		{ID: "prod-002", Name: "Hydrating Conditioner", Description: "Moisturizes and detangles dry hair.", Price: 14.99, ImageURL: "/static/img/conditioner.webp", Stock: 50},
		{ID: "prod-003", Name: "Anti-Breakage Serum", Description: "Repairs fragile, brittle hair.", Price: 19.99, ImageURL: "/static/img/serum.webp", Stock: 50},
		{ID: "prod-004", Name: "Repairing Hair Mask", Description: "Restores vitality to damaged hair.", Price: 18.50, ImageURL: "/static/img/mask.webp", Stock: 50},
		{ID: "prod-005", Name: "Nourishing Hair Oil", Description: "For shiny, nourished hair.", Price: 16.75, ImageURL: "/static/img/oil.webp", Stock: 50},
		{ID: "prod-006", Name: "Shine Spray", Description: "Instant gloss and softness.", Price: 13.50, ImageURL: "/static/img/spray.webp", Stock: 50},
	}
	return s.products.Seed(ctx, products)
}

func requireAdmin(actor *entity.User) error {
	if actor == nil {
		return entity.ErrUnauthenticated
	}
	if !actor.IsAdmin {
		return entity.ErrForbidden
	}
	return nil
}

func validateProduct(p *entity.Product) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: product name is required", entity.ErrInvalidInput)
	}
	if p.Price < 0 {
		return fmt.Errorf("%w: price must not be negative", entity.ErrInvalidInput)
	}
	if p.Stock < 0 {
		return fmt.Errorf("%w: stock must not be negative", entity.ErrInvalidInput)
	}
	return nil
}
