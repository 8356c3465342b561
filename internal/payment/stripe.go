package payment

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
)

type stripeGateway struct {
	currency string
}

// NewStripeGateway creates a Gateway on Stripe Checkout. secretKey is the
// account's API key; currency is an ISO code such as "eur".
func NewStripeGateway(secretKey, currency string) Gateway {
	stripe.Key = secretKey
	return &stripeGateway{currency: currency}
}

func (g *stripeGateway) CreateSession(ctx context.Context, items []LineItem, successURL, cancelURL string) (string, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		SuccessURL:         stripe.String(successURL),
		CancelURL:          stripe.String(cancelURL),
	}
	params.Context = ctx

	for _, item := range items {
		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(g.currency),
				UnitAmount: stripe.Int64(item.UnitAmount),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(item.Name),
				},
			},
			Quantity: stripe.Int64(int64(item.Quantity)),
		})
	}

	sess, err := session.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create checkout session: %w", err)
	}
	return sess.URL, nil
}
