package billing

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/charge"
	"github.com/stripe/stripe-go/v72/refund"
)

// ChargeProvider collects money from an external payment source before
// the bill is credited. Charge returns the provider's charge id, which
// becomes the payment reference; Refund returns the collected money
// when the bill credit cannot be recorded.
type ChargeProvider interface {
	Charge(amount decimal.Decimal, cardToken string) (string, error)
	Refund(chargeID string) error
}

type stripeProvider struct {
	currency string
}

// NewStripeProvider configures the stripe client and returns a
// ChargeProvider backed by it.
func NewStripeProvider(apiKey, currency string) ChargeProvider {
	stripe.Key = apiKey
	return &stripeProvider{currency: currency}
}

func (p *stripeProvider) Charge(amount decimal.Decimal, cardToken string) (string, error) {
	// Stripe amounts are integer minor units.
	params := &stripe.ChargeParams{
		Amount:   stripe.Int64(amount.Shift(2).IntPart()),
		Currency: stripe.String(p.currency),
	}
	if err := params.SetSource(cardToken); err != nil {
		return "", fmt.Errorf("invalid card token: %w", err)
	}

	ch, err := charge.New(params)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrChargeFailed, err)
	}
	return ch.ID, nil
}

func (p *stripeProvider) Refund(chargeID string) error {
	_, err := refund.New(&stripe.RefundParams{
		Charge: stripe.String(chargeID),
	})
	if err != nil {
		return fmt.Errorf("failed to refund charge %s: %w", chargeID, err)
	}
	return nil
}
