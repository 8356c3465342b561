// Package payment abstracts the payment-session provider. The storefront
// only hands over line items and receives a redirect URL; card data never
// touches this process.
package payment

import "context"

// LineItem is one billable position of a payment session. UnitAmount is in
// the smallest currency unit (cents).
type LineItem struct {
	Name       string
	UnitAmount int64
	Quantity   int
}

// Gateway converts line items into a redirectable payment session.
type Gateway interface {
	CreateSession(ctx context.Context, items []LineItem, successURL, cancelURL string) (redirectURL string, err error)
}
