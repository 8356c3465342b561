package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mreynaud/go-storefront/internal/entity"
	"github.com/mreynaud/go-storefront/internal/repository"
)

type checkoutStore struct {
	db *sql.DB
}

// NewCheckoutStore creates a CheckoutStore backed by Postgres.
func NewCheckoutStore(db *sql.DB) repository.CheckoutStore {
	return &checkoutStore{db: db}
}

// Reconcile processes the lines in the order given. Missing products and
// insufficient stock skip the line; everything that survives commits in one
// transaction together with the order row (when a user is present). The
// decrement is a single conditional UPDATE, so concurrent checkouts can
// never drive stock negative.
func (s *checkoutStore) Reconcile(ctx context.Context, userID string, lines []entity.Line) (*entity.CheckoutResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result := &entity.CheckoutResult{}
	total := decimal.Zero

	for _, line := range lines {
		var name string
		var price float64
		err := tx.QueryRowContext(ctx,
			"SELECT name, price FROM products WHERE id = $1",
			line.ProductID,
		).Scan(&name, &price)
		if err == sql.ErrNoRows {
			result.Lines = append(result.Lines, entity.LineResult{
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
				Status:    entity.LineSkippedMissingProduct,
			})
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to look up product %s: %w", line.ProductID, err)
		}

		var remaining int
		err = tx.QueryRowContext(ctx,
			"UPDATE products SET stock = stock - $1 WHERE id = $2 AND stock >= $1 RETURNING stock",
			line.Quantity, line.ProductID,
		).Scan(&remaining)
		if err == sql.ErrNoRows {
			result.Lines = append(result.Lines, entity.LineResult{
				ProductID: line.ProductID,
				Name:      name,
				Quantity:  line.Quantity,
				Status:    entity.LineSkippedInsufficientStock,
			})
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to decrement stock for product %s: %w", line.ProductID, err)
		}

		subtotal := entity.Subtotal(price, line.Quantity)
		total = total.Add(subtotal)
		result.Lines = append(result.Lines, entity.LineResult{
			ProductID: line.ProductID,
			Name:      name,
			Quantity:  line.Quantity,
			Status:    entity.LineAccepted,
			UnitPrice: price,
			Subtotal:  entity.RoundPrice(subtotal),
			Remaining: remaining,
		})
	}

	items := result.AcceptedItems()

	// Guest checkouts consume stock without an order record.
	if userID != "" && len(items) > 0 {
		order := &entity.Order{
			ID:         uuid.NewString(),
			UserID:     userID,
			Items:      items,
			TotalPrice: entity.RoundPrice(total),
			CreatedAt:  time.Now(),
		}

		_, err = tx.ExecContext(ctx,
			"INSERT INTO orders (id, user_id, total_price, created_at) VALUES ($1, $2, $3, $4)",
			order.ID, order.UserID, order.TotalPrice, order.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to insert order: %w", err)
		}

		for _, item := range items {
			_, err = tx.ExecContext(ctx,
				"INSERT INTO order_items (order_id, product_id, name, price, quantity) VALUES ($1, $2, $3, $4, $5)",
				order.ID, item.ProductID, item.Name, item.Price, item.Quantity,
			)
			if err != nil {
				return nil, fmt.Errorf("failed to insert order item: %w", err)
			}
		}

		result.Order = order
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return result, nil
}
