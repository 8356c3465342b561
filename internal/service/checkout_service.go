package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mreynaud/go-storefront/internal/entity"
	"github.com/mreynaud/go-storefront/internal/messaging"
	"github.com/mreynaud/go-storefront/internal/payment"
	"github.com/mreynaud/go-storefront/internal/repository"
	"github.com/mreynaud/go-storefront/internal/session"
)

const (
	// TopicOrdersPlaced receives one event per checkout with accepted lines.
	TopicOrdersPlaced = "orders.placed"
	// TopicStockDepleted receives one event per product a checkout drained.
	TopicStockDepleted = "inventory.depleted"
)

// CheckoutService owns the purchase flow: payment-session initiation and the
// reconciliation that runs on the gateway's success callback.
type CheckoutService struct {
	products  repository.ProductRepository
	checkout  repository.CheckoutStore
	sessions  session.Store
	gateway   payment.Gateway
	publisher messaging.Publisher
	publicURL string
}

func NewCheckoutService(
	products repository.ProductRepository,
	checkout repository.CheckoutStore,
	sessions session.Store,
	gateway payment.Gateway,
	publisher messaging.Publisher,
	publicURL string,
) *CheckoutService {
	return &CheckoutService{
		products:  products,
		checkout:  checkout,
		sessions:  sessions,
		gateway:   gateway,
		publisher: publisher,
		publicURL: publicURL,
	}
}

// BeginCartCheckout creates a payment session for the visitor's whole cart
// and returns the gateway redirect URL. Stale cart entries are priced out of
// the session; a cart with nothing billable is refused.
func (s *CheckoutService) BeginCartCheckout(ctx context.Context, sid string) (string, error) {
	cart, err := s.sessions.Cart(ctx, sid)
	if err != nil {
		return "", fmt.Errorf("failed to load session cart: %w", err)
	}

	counts := cart.Aggregate()
	if len(counts) == 0 {
		return "", entity.ErrEmptyCart
	}

	ids := sortedKeys(counts)
	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return "", fmt.Errorf("failed to load cart products: %w", err)
	}

	var items []payment.LineItem
	for _, p := range products {
		items = append(items, payment.LineItem{
			Name:       p.Name,
			UnitAmount: entity.MinorUnits(p.Price),
			Quantity:   counts[p.ID],
		})
	}
	if len(items) == 0 {
		// Every entry referenced a deleted product.
		return "", entity.ErrEmptyCart
	}

	return s.beginSession(ctx, sid, items, session.PendingCheckout{
		Mode:      session.CheckoutCart,
		CreatedAt: time.Now(),
	})
}

// BeginDirectCheckout creates a payment session for a single product with an
// explicit quantity, bypassing cart aggregation.
func (s *CheckoutService) BeginDirectCheckout(ctx context.Context, sid, productID string, quantity int) (string, error) {
	if quantity < 1 {
		return "", entity.ErrInvalidQuantity
	}

	p, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return "", err
	}

	items := []payment.LineItem{{
		Name:       p.Name,
		UnitAmount: entity.MinorUnits(p.Price),
		Quantity:   quantity,
	}}

	return s.beginSession(ctx, sid, items, session.PendingCheckout{
		Mode:      session.CheckoutDirect,
		ProductID: productID,
		Quantity:  quantity,
		CreatedAt: time.Now(),
	})
}

func (s *CheckoutService) beginSession(ctx context.Context, sid string, items []payment.LineItem, pc session.PendingCheckout) (string, error) {
	token := uuid.NewString()
	if err := s.sessions.StashCheckout(ctx, sid, token, pc); err != nil {
		return "", fmt.Errorf("failed to stash pending checkout: %w", err)
	}

	successURL := fmt.Sprintf("%s/api/checkout/success?token=%s", s.publicURL, token)
	cancelURL := fmt.Sprintf("%s/api/checkout/cancel?token=%s", s.publicURL, token)

	redirectURL, err := s.gateway.CreateSession(ctx, items, successURL, cancelURL)
	if err != nil {
		return "", fmt.Errorf("failed to create payment session: %w", err)
	}

	slog.Info("Payment session created", "mode", pc.Mode, "items", len(items))
	return redirectURL, nil
}

// CompleteCheckout runs the reconciliation after the gateway confirmed
// payment. The token is single-use. Per-line anomalies (stale product,
// insufficient stock) skip the line and show up in the result; only a
// persistence failure aborts the checkout, with no partial stock mutation.
func (s *CheckoutService) CompleteCheckout(ctx context.Context, sid, token string) (*entity.CheckoutResult, error) {
	pc, err := s.sessions.TakeCheckout(ctx, sid, token)
	if err != nil {
		return nil, err
	}

	userID, err := s.sessions.UserID(ctx, sid)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve session user: %w", err)
	}

	cart, err := s.sessions.Cart(ctx, sid)
	if err != nil {
		return nil, fmt.Errorf("failed to load session cart: %w", err)
	}

	var lines []entity.Line
	switch pc.Mode {
	case session.CheckoutDirect:
		lines = []entity.Line{{ProductID: pc.ProductID, Quantity: pc.Quantity}}
	default:
		counts := cart.Aggregate()
		for _, id := range sortedKeys(counts) {
			lines = append(lines, entity.Line{ProductID: id, Quantity: counts[id]})
		}
	}

	result, err := s.checkout.Reconcile(ctx, userID, lines)
	if err != nil {
		return nil, fmt.Errorf("failed to reconcile checkout: %w", err)
	}

	// Sync the session cart with what was processed: the cart path clears
	// everything; the direct path removes exactly the purchased quantity.
	switch pc.Mode {
	case session.CheckoutDirect:
		if err := s.sessions.SetCart(ctx, sid, cart.RemoveN(pc.ProductID, pc.Quantity)); err != nil {
			slog.Error("Failed to sync session cart", "err", err)
		}
	default:
		if err := s.sessions.ClearCart(ctx, sid); err != nil {
			slog.Error("Failed to clear session cart", "err", err)
		}
	}

	s.publishEvents(ctx, result)

	accepted := len(result.AcceptedItems())
	slog.Info("Checkout reconciled",
		"mode", pc.Mode,
		"lines", len(result.Lines),
		"accepted", accepted,
		"guest", userID == "",
	)
	return result, nil
}

// CancelCheckout discards the pending checkout. The cart and stock stay
// untouched. Cancelling an unknown token is a no-op.
func (s *CheckoutService) CancelCheckout(ctx context.Context, sid, token string) error {
	_, err := s.sessions.TakeCheckout(ctx, sid, token)
	if err == entity.ErrNotFound {
		return nil
	}
	return err
}

// publishEvents emits OrderPlaced and stock-depletion events after a commit.
// The payment already succeeded, so broker failures are logged, never
// surfaced to the buyer.
func (s *CheckoutService) publishEvents(ctx context.Context, result *entity.CheckoutResult) {
	items := result.AcceptedItems()
	if len(items) == 0 {
		return
	}

	placed := entity.OrderPlaced{
		Items:    items,
		PlacedAt: time.Now(),
	}
	if result.Order != nil {
		placed.OrderID = result.Order.ID
		placed.UserID = result.Order.UserID
		placed.TotalPrice = result.Order.TotalPrice
		placed.PlacedAt = result.Order.CreatedAt
	} else {
		total := decimal.Zero
		for _, item := range items {
			total = total.Add(entity.Subtotal(item.Price, item.Quantity))
		}
		placed.TotalPrice = entity.RoundPrice(total)
	}

	if err := s.publisher.PublishEvent(ctx, TopicOrdersPlaced, placed.OrderID, placed); err != nil {
		slog.Error("Failed to publish OrderPlaced", "err", err)
	}

	for _, line := range result.Lines {
		if line.Status != entity.LineAccepted || line.Remaining > 0 {
			continue
		}
		depleted := entity.ProductStockDepleted{
			ProductID:  line.ProductID,
			Name:       line.Name,
			DepletedAt: time.Now(),
		}
		if err := s.publisher.PublishEvent(ctx, TopicStockDepleted, line.ProductID, depleted); err != nil {
			slog.Error("Failed to publish ProductStockDepleted", "product_id", line.ProductID, "err", err)
		}
	}
}

func sortedKeys(counts map[string]int) []string {
	keys := make([]string, 0, len(counts))
	for id := range counts {
		keys = append(keys, id)
	}
	sort.Strings(keys)
	return keys
}
