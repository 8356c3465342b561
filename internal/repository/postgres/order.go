package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mreynaud/go-storefront/internal/entity"
	"github.com/mreynaud/go-storefront/internal/repository"
)

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates a new OrderRepository backed by Postgres.
func NewOrderRepository(db *sql.DB) repository.OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) FindByUser(ctx context.Context, userID string) ([]entity.Order, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, user_id, total_price, created_at FROM orders WHERE user_id = $1 ORDER BY created_at DESC",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []entity.Order
	for rows.Next() {
		var o entity.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.TotalPrice, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order rows: %w", err)
	}

	// Fetch items for each order
	for i := range orders {
		if err := r.loadItems(ctx, &orders[i]); err != nil {
			return nil, err
		}
	}

	return orders, nil
}

func (r *orderRepository) loadItems(ctx context.Context, o *entity.Order) error {
	rows, err := r.db.QueryContext(ctx,
		"SELECT product_id, name, price, quantity FROM order_items WHERE order_id = $1 ORDER BY id",
		o.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item entity.OrderItem
		if err := rows.Scan(&item.ProductID, &item.Name, &item.Price, &item.Quantity); err != nil {
			return fmt.Errorf("failed to scan order item: %w", err)
		}
		o.Items = append(o.Items, item)
	}
	return rows.Err()
}
