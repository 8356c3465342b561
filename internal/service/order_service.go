package service

import (
	"context"
	"log/slog"

	"github.com/mreynaud/go-storefront/internal/entity"
	"github.com/mreynaud/go-storefront/internal/repository"
)

// lowStockThreshold triggers a restock alert when a placed order leaves a
// product at or below this many units.
const lowStockThreshold = 5

// OrderService serves order history and consumes placed-order events.
type OrderService struct {
	orders   repository.OrderRepository
	products repository.ProductRepository
}

func NewOrderService(orders repository.OrderRepository, products repository.ProductRepository) *OrderService {
	return &OrderService{orders: orders, products: products}
}

// OrdersForUser returns the user's orders, newest first.
func (s *OrderService) OrdersForUser(ctx context.Context, userID string) ([]entity.Order, error) {
	if userID == "" {
		return nil, entity.ErrUnauthenticated
	}
	return s.orders.FindByUser(ctx, userID)
}

// HandleOrderPlaced is triggered by the message broker when an order is
// placed. It checks the remaining stock of every purchased product and logs
// restock alerts.
func (s *OrderService) HandleOrderPlaced(ctx context.Context, event *entity.OrderPlaced) error {
	slog.Info("Order placed event received",
		"order_id", event.OrderID,
		"total_price", event.TotalPrice,
		"items_count", len(event.Items),
	)

	for _, item := range event.Items {
		p, err := s.products.FindByID(ctx, item.ProductID)
		if err == entity.ErrNotFound {
			continue
		}
		if err != nil {
			return err
		}
		if p.Stock <= lowStockThreshold {
			slog.Warn("Product needs restocking", "product_id", p.ID, "name", p.Name, "stock", p.Stock)
		}
	}
	return nil
}
