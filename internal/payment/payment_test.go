package payment

import (
	"context"
	"errors"
	"testing"

	"ngolib/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v84"
)

type fakeIntents struct {
	got *stripe.PaymentIntentCreateParams
	err error
}

func (f *fakeIntents) Create(_ context.Context, params *stripe.PaymentIntentCreateParams) (*stripe.PaymentIntent, error) {
	f.got = params
	if f.err != nil {
		return nil, f.err
	}
	return &stripe.PaymentIntent{ID: "pi_123", ClientSecret: "pi_123_secret"}, nil
}

func TestChargeCreatesIntentInMinorUnits(t *testing.T) {
	fake := &fakeIntents{}
	p := &StripeProcessor{intents: fake, currency: "eur"}

	intent, err := p.Charge(context.Background(), 1, 2, "12.5")
	require.NoError(t, err)

	assert.Equal(t, "pi_123", intent.ID)
	assert.Equal(t, "pi_123_secret", intent.ClientSecret)
	require.NotNil(t, fake.got)
	assert.Equal(t, int64(1250), *fake.got.Amount)
	assert.Equal(t, "eur", *fake.got.Currency)
}

func TestChargeRefusesNonPositiveAmounts(t *testing.T) {
	fake := &fakeIntents{}
	p := &StripeProcessor{intents: fake, currency: "eur"}

	for _, amount := range []string{"0", "-5", "0.001", "ten"} {
		_, err := p.Charge(context.Background(), 1, 2, types.Amount(amount))
		assert.ErrorIs(t, err, ErrNotChargeable, amount)
	}
	assert.Nil(t, fake.got)
}

func TestChargeRefusesAmountsPastInt64(t *testing.T) {
	fake := &fakeIntents{}
	p := &StripeProcessor{intents: fake, currency: "eur"}

	for _, amount := range []string{"184467440737095516.17", "92233720368547758.08", "99999999999999999999999"} {
		_, err := p.Charge(context.Background(), 1, 2, types.Amount(amount))
		assert.ErrorIs(t, err, ErrNotChargeable, amount)
		assert.ErrorIs(t, err, types.ErrAmountOutOfRange, amount)
	}
	assert.Nil(t, fake.got)

	_, err := p.Charge(context.Background(), 1, 2, "92233720368547758.07")
	require.NoError(t, err)
	assert.Equal(t, int64(9223372036854775807), *fake.got.Amount)
}

func TestChargeWrapsStripeErrors(t *testing.T) {
	p := &StripeProcessor{intents: &fakeIntents{err: errors.New("card_declined")}, currency: "eur"}

	_, err := p.Charge(context.Background(), 1, 2, "10")
	assert.ErrorContains(t, err, "card_declined")
}
