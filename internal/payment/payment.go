// Package payment charges donations through Stripe when a secret key is
// configured.
package payment

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"ngolib/pkg/types"

	"github.com/stripe/stripe-go/v84"
)

var ErrNotChargeable = errors.New("amount cannot be charged")

type Intent struct {
	ID           string `json:"payment_intent_id"`
	ClientSecret string `json:"client_secret"`
}

type Processor interface {
	Charge(ctx context.Context, userID, ngoID int64, amount types.Amount) (*Intent, error)
}

type intentCreator interface {
	Create(ctx context.Context, params *stripe.PaymentIntentCreateParams) (*stripe.PaymentIntent, error)
}

type StripeProcessor struct {
	intents  intentCreator
	currency string
}

func NewStripeProcessor(config *types.Config) *StripeProcessor {
	sc := stripe.NewClient(config.StripeSecretKey)
	return &StripeProcessor{
		intents:  sc.V1PaymentIntents,
		currency: config.StripeCurrency,
	}
}

// Charge creates a PaymentIntent for the donation. Stripe only takes
// positive amounts in minor units, so anything that rounds to zero or below
// is refused before calling out.
func (p *StripeProcessor) Charge(ctx context.Context, userID, ngoID int64, amount types.Amount) (*Intent, error) {
	cents, err := amount.Cents()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotChargeable, err)
	}
	if cents <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotChargeable, amount)
	}

	params := &stripe.PaymentIntentCreateParams{
		Amount:   stripe.Int64(cents),
		Currency: stripe.String(p.currency),
	}
	params.AddMetadata("user_id", strconv.FormatInt(userID, 10))
	params.AddMetadata("ngo_id", strconv.FormatInt(ngoID, 10))

	pi, err := p.intents.Create(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	return &Intent{ID: pi.ID, ClientSecret: pi.ClientSecret}, nil
}
