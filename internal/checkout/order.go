package checkout

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/storeapi"
	"github.com/jafarshop/storefront/pkg/errors"
)

// DefaultShippingFee is charged on every non-empty order
var DefaultShippingFee = decimal.NewFromInt(150)

// BuildOrder turns the cart into an order submission. Each line is clamped to
// max(1, min(quantity, stock)); lines whose stock snapshot is below 1 (or
// missing) are dropped. The shipping fee is added when the subtotal is positive.
func BuildOrder(identity domain.Identity, cart domain.Cart, form domain.CheckoutForm, shippingFee decimal.Decimal) (storeapi.OrderRequest, error) {
	lines := make([]domain.OrderLine, 0, len(cart))
	subtotal := decimal.Zero
	for _, l := range cart {
		stock := l.Product.StockOrZero()
		if stock < 1 {
			continue
		}
		ref := l.ProductRef
		if ref == "" && l.Product != nil {
			ref = l.Product.ID
		}
		qty := l.Quantity
		if stock < qty {
			qty = stock
		}
		if qty < 1 {
			qty = 1
		}
		price := l.EffectivePrice()
		lines = append(lines, domain.OrderLine{ProductRef: ref, Quantity: qty, Price: price})
		subtotal = subtotal.Add(price.Mul(decimal.NewFromInt(int64(qty))))
	}
	if len(lines) == 0 {
		return storeapi.OrderRequest{}, &errors.ErrOutOfStock{}
	}

	total := subtotal
	if subtotal.IsPositive() {
		total = total.Add(shippingFee)
	}

	return storeapi.OrderRequest{
		User:          identity.ID,
		Products:      lines,
		Total:         json.Number(total.String()),
		Address:       form.Address,
		City:          form.City,
		Phone:         form.Phone,
		PaymentMethod: form.PaymentMethod,
		Name:          form.Name,
		Email:         form.Email,
	}, nil
}
