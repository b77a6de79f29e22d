package domain

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
)

// Identity is the authenticated user's normalized profile plus bearer credential.
// ID and Credential are independently optional; an empty string means absent.
type Identity struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone,omitempty"`
	Role       Role   `json:"role"`
	Credential string `json:"token"`
}

// Authenticated reports whether the identity can issue authenticated calls
func (i *Identity) Authenticated() bool {
	return i != nil && i.ID != "" && i.Credential != ""
}

// IsAdmin reports whether the identity carries the admin role
func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == RoleAdmin
}

// Fields returns the identity in the raw payload shape accepted by normalization
func (i Identity) Fields() map[string]interface{} {
	m := map[string]interface{}{
		"id":    i.ID,
		"name":  i.Name,
		"email": i.Email,
		"role":  string(i.Role),
		"token": i.Credential,
	}
	if i.Phone != "" {
		m["phone"] = i.Phone
	}
	return m
}

// ExpiresAt decodes the exp claim of a JWT credential without verifying it.
// Returns false when the credential is not a JWT or carries no expiry.
func (i Identity) ExpiresAt() (time.Time, bool) {
	if i.Credential == "" {
		return time.Time{}, false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(i.Credential, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// ProductSnapshot is the last-known product detail returned with a cart line
type ProductSnapshot struct {
	ID    string
	Name  string
	Image string
	Price decimal.NullDecimal
	// Stock is nil when the server did not report stock
	Stock *int
}

// StockOrZero returns the stock snapshot, treating an unknown stock as zero
func (p *ProductSnapshot) StockOrZero() int {
	if p == nil || p.Stock == nil {
		return 0
	}
	return *p.Stock
}

// CartLine is one product/quantity pairing within a cart
type CartLine struct {
	ProductRef string
	Quantity   int
	UnitPrice  decimal.NullDecimal
	Product    *ProductSnapshot
}

// EffectivePrice is the snapshot price when present, else the line's own price
func (l CartLine) EffectivePrice() decimal.Decimal {
	if l.Product != nil && l.Product.Price.Valid {
		return l.Product.Price.Decimal
	}
	if l.UnitPrice.Valid {
		return l.UnitPrice.Decimal
	}
	return decimal.Zero
}

// Cart is an ordered sequence of cart lines
type Cart []CartLine

// TotalItems is the sum of line quantities
func (c Cart) TotalItems() int {
	total := 0
	for _, l := range c {
		total += l.Quantity
	}
	return total
}

// Subtotal is the sum of quantity times effective unit price
func (c Cart) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, l := range c {
		sum = sum.Add(l.EffectivePrice().Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return sum
}

// Clone returns a deep copy so callers cannot mutate store-owned lines
func (c Cart) Clone() Cart {
	if c == nil {
		return Cart{}
	}
	out := make(Cart, len(c))
	for i, l := range c {
		if l.Product != nil {
			p := *l.Product
			if l.Product.Stock != nil {
				s := *l.Product.Stock
				p.Stock = &s
			}
			l.Product = &p
		}
		out[i] = l
	}
	return out
}

// CheckoutForm holds shipping/payment input. Card fields matter only for PaymentCard.
type CheckoutForm struct {
	Name          string
	Email         string
	Address       string
	City          string
	Phone         string
	PaymentMethod PaymentMethod
	CardNumber    string
	CardExpiry    string
	CardCVV       string
}

// OrderLine is one submitted line of an order
type OrderLine struct {
	ProductRef string          `json:"productId"`
	Quantity   int             `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
}

// Order is the server-side order; the client mostly needs its ID
type Order struct {
	ID              string
	BuyerRef        string
	Lines           []OrderLine
	Total           decimal.Decimal
	ShippingAddress string
	ShippingCity    string
	ContactPhone    string
	PaymentMethod   PaymentMethod
	Status          OrderStatus
	PaymentStatus   string
	CreatedAt       time.Time
}

// PaymentSession exists between order creation and the provider redirect
type PaymentSession struct {
	OrderRef          string
	ProviderSessionID string
	RedirectURL       string
}

// Product is a catalog entry as returned by the product endpoints
type Product struct {
	ID          string
	Title       string
	Description string
	Category    string
	Image       string
	Price       decimal.Decimal
	Stock       *int
}
