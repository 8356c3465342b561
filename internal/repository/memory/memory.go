// Package memory provides mutex-guarded in-memory implementations of the
// repository interfaces. They back the test suite and the STORE=memory
// development mode.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mreynaud/go-storefront/internal/entity"
	"github.com/mreynaud/go-storefront/internal/repository"
)

// Store holds every record in process memory behind one lock. The
// per-repository views returned by Products, Users, Reviews, Orders and
// Checkout all share it, so a reconciliation is one critical section with
// the same all-or-nothing and no-negative-stock guarantees as the Postgres
// transaction.
type Store struct {
	mu sync.RWMutex

	products map[string]entity.Product
	users    map[string]entity.User
	orders   map[string]entity.Order
	reviews  []entity.Review

	nextReviewID int64
}

func NewStore() *Store {
	return &Store{
		products:     make(map[string]entity.Product),
		users:        make(map[string]entity.User),
		orders:       make(map[string]entity.Order),
		nextReviewID: 1,
	}
}

func (s *Store) Products() repository.ProductRepository { return productRepo{s} }
func (s *Store) Users() repository.UserRepository       { return userRepo{s} }
func (s *Store) Reviews() repository.ReviewRepository   { return reviewRepo{s} }
func (s *Store) Orders() repository.OrderRepository     { return orderRepo{s} }
func (s *Store) Checkout() repository.CheckoutStore     { return checkoutStore{s} }

// --- ProductRepository ---

type productRepo struct{ s *Store }

func (r productRepo) FindAll(ctx context.Context) ([]entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	products := make([]entity.Product, 0, len(r.s.products))
	for _, p := range r.s.products {
		products = append(products, p)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].Name < products[j].Name })
	return products, nil
}

func (r productRepo) FindByID(ctx context.Context, id string) (*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.products[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	return &p, nil
}

func (r productRepo) FindByIDs(ctx context.Context, ids []string) ([]entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var products []entity.Product
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if p, ok := r.s.products[id]; ok {
			products = append(products, p)
		}
	}
	return products, nil
}

func (r productRepo) Create(ctx context.Context, p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.products[p.ID] = *p
	return nil
}

func (r productRepo) Update(ctx context.Context, p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.products[p.ID]; !ok {
		return entity.ErrNotFound
	}
	r.s.products[p.ID] = *p
	return nil
}

func (r productRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.products[id]; !ok {
		return entity.ErrNotFound
	}
	delete(r.s.products, id)
	return nil
}

func (r productRepo) Seed(ctx context.Context, products []entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if len(r.s.products) > 0 {
		return nil // already seeded
	}
	for _, p := range products {
		r.s.products[p.ID] = p
	}
	return nil
}

// --- UserRepository ---

type userRepo struct{ s *Store }

func (r userRepo) Create(ctx context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.users {
		if existing.Username == u.Username {
			return entity.ErrUsernameTaken
		}
	}
	r.s.users[u.ID] = *u
	return nil
}

func (r userRepo) FindByID(ctx context.Context, id string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	return &u, nil
}

func (r userRepo) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, entity.ErrNotFound
}

// --- ReviewRepository ---

type reviewRepo struct{ s *Store }

func (r reviewRepo) Create(ctx context.Context, rev *entity.Review) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rev.ID = r.s.nextReviewID
	r.s.nextReviewID++
	r.s.reviews = append(r.s.reviews, *rev)
	return nil
}

func (r reviewRepo) FindByProduct(ctx context.Context, productID string) ([]entity.Review, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var reviews []entity.Review
	for _, rev := range r.s.reviews {
		if rev.ProductID != productID {
			continue
		}
		if u, ok := r.s.users[rev.UserID]; ok {
			rev.Username = u.Username
		}
		reviews = append(reviews, rev)
	}
	sort.Slice(reviews, func(i, j int) bool { return reviews[i].CreatedAt.After(reviews[j].CreatedAt) })
	return reviews, nil
}

// --- OrderRepository ---

type orderRepo struct{ s *Store }

func (r orderRepo) FindByUser(ctx context.Context, userID string) ([]entity.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var orders []entity.Order
	for _, o := range r.s.orders {
		if o.UserID == userID {
			orders = append(orders, o)
		}
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].CreatedAt.After(orders[j].CreatedAt) })
	return orders, nil
}

// --- CheckoutStore ---

type checkoutStore struct{ s *Store }

// Reconcile mirrors the Postgres reconciliation: per-line skip on missing
// product or insufficient stock, conditional decrement, order persisted only
// for authenticated checkouts with at least one accepted line.
func (c checkoutStore) Reconcile(ctx context.Context, userID string, lines []entity.Line) (*entity.CheckoutResult, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	result := &entity.CheckoutResult{}
	total := decimal.Zero

	for _, line := range lines {
		p, ok := c.s.products[line.ProductID]
		if !ok {
			result.Lines = append(result.Lines, entity.LineResult{
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
				Status:    entity.LineSkippedMissingProduct,
			})
			continue
		}
		if p.Stock < line.Quantity {
			result.Lines = append(result.Lines, entity.LineResult{
				ProductID: line.ProductID,
				Name:      p.Name,
				Quantity:  line.Quantity,
				Status:    entity.LineSkippedInsufficientStock,
			})
			continue
		}

		p.Stock -= line.Quantity
		c.s.products[line.ProductID] = p

		subtotal := entity.Subtotal(p.Price, line.Quantity)
		total = total.Add(subtotal)
		result.Lines = append(result.Lines, entity.LineResult{
			ProductID: line.ProductID,
			Name:      p.Name,
			Quantity:  line.Quantity,
			Status:    entity.LineAccepted,
			UnitPrice: p.Price,
			Subtotal:  entity.RoundPrice(subtotal),
			Remaining: p.Stock,
		})
	}

	items := result.AcceptedItems()
	if userID != "" && len(items) > 0 {
		order := entity.Order{
			ID:         uuid.NewString(),
			UserID:     userID,
			Items:      items,
			TotalPrice: entity.RoundPrice(total),
			CreatedAt:  time.Now(),
		}
		c.s.orders[order.ID] = order
		result.Order = &order
	}

	return result, nil
}
