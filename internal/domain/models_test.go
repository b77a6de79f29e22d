package domain

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentityAuthenticated(t *testing.T) {
	var nilIdentity *Identity
	assert.False(t, nilIdentity.Authenticated())
	assert.False(t, (&Identity{ID: "u1"}).Authenticated())
	assert.False(t, (&Identity{Credential: "t"}).Authenticated())
	assert.True(t, (&Identity{ID: "u1", Credential: "t"}).Authenticated())
	assert.True(t, (&Identity{Role: RoleAdmin}).IsAdmin())
}

func TestIdentityExpiresAt(t *testing.T) {
	exp := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":  "u1",
		"exp": exp.Unix(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	got, ok := Identity{Credential: token}.ExpiresAt()
	require.True(t, ok)
	assert.True(t, exp.Equal(got))

	_, ok = Identity{Credential: "opaque-token"}.ExpiresAt()
	assert.False(t, ok)

	_, ok = Identity{}.ExpiresAt()
	assert.False(t, ok)
}

func TestCartCloneIsDeep(t *testing.T) {
	stock := 3
	cart := Cart{{ProductRef: "p1", Quantity: 1, Product: &ProductSnapshot{ID: "p1", Stock: &stock}}}

	clone := cart.Clone()
	clone[0].Quantity = 9
	*clone[0].Product.Stock = 0

	assert.Equal(t, 1, cart[0].Quantity)
	assert.Equal(t, 3, *cart[0].Product.Stock)
	assert.NotNil(t, Cart(nil).Clone())
}

func TestCheckoutTransitions(t *testing.T) {
	allowed := map[CheckoutState][]CheckoutState{
		CheckoutEditing:        {CheckoutValidating},
		CheckoutValidating:     {CheckoutEditing, CheckoutSubmittingCOD, CheckoutSubmittingCard, CheckoutFailed},
		CheckoutSubmittingCOD:  {CheckoutSucceeded, CheckoutFailed},
		CheckoutSubmittingCard: {CheckoutRedirecting, CheckoutFailed},
		CheckoutFailed:         {CheckoutEditing},
	}
	all := []CheckoutState{CheckoutEditing, CheckoutValidating, CheckoutSubmittingCOD, CheckoutSubmittingCard, CheckoutRedirecting, CheckoutSucceeded, CheckoutFailed}

	for _, from := range all {
		for _, to := range all {
			want := false
			for _, s := range allowed[from] {
				if s == to {
					want = true
				}
			}
			assert.Equal(t, want, from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
	assert.True(t, CheckoutRedirecting.IsTerminal())
	assert.True(t, CheckoutSucceeded.IsTerminal())
	assert.False(t, CheckoutFailed.IsTerminal())
}

func TestOutcomeFromProviderStatus(t *testing.T) {
	assert.Equal(t, PaymentPaid, OutcomeFromProviderStatus("paid"))
	assert.Equal(t, PaymentUnpaid, OutcomeFromProviderStatus("unpaid"))
	assert.Equal(t, PaymentCanceled, OutcomeFromProviderStatus("canceled"))
	assert.Equal(t, PaymentUnknown, OutcomeFromProviderStatus("weird"))
}

func TestParsePaymentMethod(t *testing.T) {
	m, ok := ParsePaymentMethod("card")
	assert.True(t, ok)
	assert.Equal(t, PaymentCard, m)
	m, ok = ParsePaymentMethod("COD")
	assert.True(t, ok)
	assert.Equal(t, PaymentCOD, m)
	_, ok = ParsePaymentMethod("bitcoin")
	assert.False(t, ok)
	assert.Equal(t, RoleUser, ParseRole("editor"))
	assert.Equal(t, RoleAdmin, ParseRole("Admin"))
}
