package repository

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jafarshop/storefront/internal/domain"
)

func TestCartRecordRoundTrip(t *testing.T) {
	stock := 3
	cart := domain.Cart{
		{
			ProductRef: "p1",
			Quantity:   2,
			UnitPrice:  decimal.NewNullDecimal(decimal.RequireFromString("12.50")),
			Product:    &domain.ProductSnapshot{ID: "p1", Name: "Mug", Stock: &stock},
		},
		{ProductRef: "p2", Quantity: 1},
	}

	raw, err := EncodeCart(cart)
	require.NoError(t, err)
	decoded, err := DecodeCart(raw)
	require.NoError(t, err)

	require.Len(t, decoded, 2)
	assert.Equal(t, "p1", decoded[0].ProductRef)
	assert.Equal(t, 2, decoded[0].Quantity)
	assert.Equal(t, 3, decoded[0].Product.StockOrZero())
	assert.Equal(t, "Mug", decoded[0].Product.Name)
	assert.True(t, decoded[0].EffectivePrice().Equal(decimal.RequireFromString("12.5")))
	assert.Equal(t, "p2", decoded[1].ProductRef)
	assert.Equal(t, cart.TotalItems(), decoded.TotalItems())
}

func TestEmptyCartRecord(t *testing.T) {
	raw, err := EncodeCart(nil)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(raw))

	decoded, err := DecodeCart(raw)
	require.NoError(t, err)
	assert.NotNil(t, decoded)
	assert.Empty(t, decoded)
}

func TestIdentityRecordRoundTrip(t *testing.T) {
	identity := domain.Identity{ID: "u1", Name: "Ada", Email: "ada@example.com", Phone: "03001234567", Role: domain.RoleAdmin, Credential: "tok"}

	raw, err := EncodeIdentity(identity)
	require.NoError(t, err)
	decoded, err := DecodeIdentity(raw)
	require.NoError(t, err)
	assert.Equal(t, identity, *decoded)
}

func TestDecodeRejectsCorruptRecords(t *testing.T) {
	_, err := DecodeCart([]byte(`{"cart":`))
	assert.Error(t, err)
	_, err = DecodeIdentity([]byte(`[1,2`))
	assert.Error(t, err)
}

func TestRecordKeys(t *testing.T) {
	assert.Equal(t, "user:u1", UserCartKey("u1"))
	assert.NotEqual(t, GuestCartKey, UserCartKey(""))
	assert.Equal(t, "identity", IdentityKey())
}
