package entity

import (
	"github.com/shopspring/decimal"
)

// Line is one (product, quantity) pair under consideration during checkout.
type Line struct {
	ProductID string
	Quantity  int
}

// LineStatus tells what the reconciler did with a line. Anomalies degrade to
// a skip instead of failing the checkout, so callers can distinguish full
// from partial success without inferring it from side effects.
type LineStatus string

const (
	LineAccepted                 LineStatus = "accepted"
	LineSkippedMissingProduct    LineStatus = "skipped_missing_product"
	LineSkippedInsufficientStock LineStatus = "skipped_insufficient_stock"
)

// LineResult is the per-line outcome of a checkout. UnitPrice, Subtotal and
// Remaining are only meaningful for accepted lines.
type LineResult struct {
	ProductID string     `json:"product_id"`
	Name      string     `json:"name,omitempty"`
	Quantity  int        `json:"quantity"`
	Status    LineStatus `json:"status"`
	UnitPrice float64    `json:"unit_price,omitempty"`
	Subtotal  float64    `json:"subtotal,omitempty"`
	Remaining int        `json:"-"`
}

// CheckoutResult aggregates the outcome of one reconciliation. Order is nil
// for guest checkouts and when every line was skipped.
type CheckoutResult struct {
	Order *Order       `json:"order,omitempty"`
	Lines []LineResult `json:"lines"`
}

// AcceptedItems returns the accepted lines as order items, price-at-purchase
// included. Used both for order persistence and for the OrderPlaced event.
func (r *CheckoutResult) AcceptedItems() []OrderItem {
	var items []OrderItem
	for _, l := range r.Lines {
		if l.Status != LineAccepted {
			continue
		}
		items = append(items, OrderItem{
			ProductID: l.ProductID,
			Name:      l.Name,
			Price:     l.UnitPrice,
			Quantity:  l.Quantity,
		})
	}
	return items
}

// Subtotal computes price × quantity without float drift.
func Subtotal(price float64, quantity int) decimal.Decimal {
	return decimal.NewFromFloat(price).Mul(decimal.NewFromInt(int64(quantity)))
}

// RoundPrice rounds a monetary amount to 2 decimal places.
func RoundPrice(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}

// MinorUnits converts a price to the smallest currency unit (cents), as
// payment gateways expect.
func MinorUnits(price float64) int64 {
	return decimal.NewFromFloat(price).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
