package checkout

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/pkg/errors"
)

func stocked(ref string, qty, stock int, price string) domain.CartLine {
	s := stock
	return domain.CartLine{
		ProductRef: ref,
		Quantity:   qty,
		Product: &domain.ProductSnapshot{
			ID:    ref,
			Price: decimal.NewNullDecimal(decimal.RequireFromString(price)),
			Stock: &s,
		},
	}
}

func TestBuildOrderClampsToStock(t *testing.T) {
	cart := domain.Cart{
		stocked("p1", 5, 2, "100"),
		stocked("p2", 1, 0, "50"),
		stocked("p3", 1, 10, "25"),
	}
	identity := domain.Identity{ID: "u1", Credential: "t"}

	req, err := BuildOrder(identity, cart, validForm(), DefaultShippingFee)
	require.NoError(t, err)

	require.Len(t, req.Products, 2)
	assert.Equal(t, "p1", req.Products[0].ProductRef)
	assert.Equal(t, 2, req.Products[0].Quantity)
	assert.Equal(t, "p3", req.Products[1].ProductRef)
	assert.Equal(t, "u1", req.User)
	assert.Equal(t, domain.PaymentCOD, req.PaymentMethod)
	// 2*100 + 1*25 + 150 shipping
	assert.Equal(t, "375", req.Total.String())
}

func TestBuildOrderAllOutOfStock(t *testing.T) {
	cart := domain.Cart{
		stocked("p1", 2, 0, "10"),
		{ProductRef: "p2", Quantity: 1},
	}
	_, err := BuildOrder(domain.Identity{ID: "u1"}, cart, validForm(), DefaultShippingFee)

	var oos *errors.ErrOutOfStock
	assert.ErrorAs(t, err, &oos)
}

func TestBuildOrderEmptyCart(t *testing.T) {
	_, err := BuildOrder(domain.Identity{ID: "u1"}, domain.Cart{}, validForm(), DefaultShippingFee)
	var oos *errors.ErrOutOfStock
	assert.ErrorAs(t, err, &oos)
}

func TestBuildOrderPrefersSnapshotPrice(t *testing.T) {
	l := stocked("p1", 1, 3, "80")
	l.UnitPrice = decimal.NewNullDecimal(decimal.RequireFromString("70"))

	req, err := BuildOrder(domain.Identity{ID: "u1"}, domain.Cart{l}, validForm(), decimal.Zero)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(80).Equal(req.Products[0].Price))
	assert.Equal(t, "80", req.Total.String())
}
