package utils

import (
	"context"
	"errors"
	"math"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// ErrPaymentsDisabled is returned when no Stripe key is configured.
var ErrPaymentsDisabled = errors.New("payments are not configured")

// StripeGateway creates card payment intents in USD.
type StripeGateway struct {
	api *client.API
}

// NewStripeGateway returns a gateway for secretKey. An empty key yields a
// gateway whose every call fails with ErrPaymentsDisabled.
func NewStripeGateway(secretKey string) *StripeGateway {
	if secretKey == "" {
		return &StripeGateway{}
	}
	return &StripeGateway{api: client.New(secretKey, nil)}
}

// CreateIntent creates a payment intent for price dollars and returns its client secret.
func (g *StripeGateway) CreateIntent(ctx context.Context, price float64) (string, error) {
	if g.api == nil {
		return "", ErrPaymentsDisabled
	}
	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(ToCents(price)),
		Currency:           stripe.String(string(stripe.CurrencyUSD)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	params.Context = ctx
	intent, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return "", err
	}
	return intent.ClientSecret, nil
}

// ToCents converts a dollar amount to whole cents.
func ToCents(price float64) int64 {
	return int64(math.Round(price * 100))
}
