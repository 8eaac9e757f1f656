// Package payment opens hosted checkout sessions with Stripe.
package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"

	"github.com/iliyamo/hotel-reservation/internal/service"
)

// StripeGateway implements service.PaymentGateway with Stripe Checkout.
type StripeGateway struct {
	api      *client.API
	currency string
}

// NewStripeGateway builds a gateway for secretKey.  backends may be nil to
// use Stripe's default endpoints.
func NewStripeGateway(secretKey, currency string, backends *stripe.Backends) *StripeGateway {
	if currency == "" {
		currency = string(stripe.CurrencyUSD)
	}
	return &StripeGateway{api: client.New(secretKey, backends), currency: currency}
}

// CreateCheckout opens a Checkout Session for one reservation and returns its URL.
func (g *StripeGateway) CreateCheckout(ctx context.Context, req service.CheckoutRequest) (string, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(g.currency),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name:        stripe.String(req.Name),
					Description: stripe.String(req.Description),
				},
				UnitAmount: stripe.Int64(req.AmountMinor),
			},
			Quantity: stripe.Int64(1),
		}},
		SuccessURL: stripe.String(req.SuccessURL),
		CancelURL:  stripe.String(req.CancelURL),
	}
	params.Context = ctx

	s, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe checkout: %w", err)
	}
	if s.URL == "" {
		return "", errors.New("stripe checkout: session has no url")
	}
	return s.URL, nil
}
