package domain

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// FlexString decodes a JSON string or number into a string. The API returns
// identifiers as either, depending on the backing store.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}

// first returns the first non-empty of the given values
func first(values ...FlexString) string {
	for _, v := range values {
		if v != "" {
			return string(v)
		}
	}
	return ""
}

type productWire struct {
	UnderscoreID FlexString          `json:"_id"`
	ID           FlexString          `json:"id"`
	Name         string              `json:"name"`
	Title        string              `json:"title"`
	Image        string              `json:"image"`
	Images       []string            `json:"images"`
	Description  string              `json:"description"`
	Category     string              `json:"category"`
	Price        decimal.NullDecimal `json:"price"`
	Stock        *int                `json:"stock"`
}

func (w productWire) snapshot() ProductSnapshot {
	p := ProductSnapshot{
		ID:    first(w.UnderscoreID, w.ID),
		Name:  w.Name,
		Image: w.Image,
		Price: w.Price,
		Stock: w.Stock,
	}
	if p.Name == "" {
		p.Name = w.Title
	}
	if p.Image == "" && len(w.Images) > 0 {
		p.Image = w.Images[0]
	}
	return p
}

func (p *ProductSnapshot) UnmarshalJSON(data []byte) error {
	var w productWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*p = w.snapshot()
	return nil
}

func (p ProductSnapshot) MarshalJSON() ([]byte, error) {
	return json.Marshal(productWire{
		UnderscoreID: FlexString(p.ID),
		Name:         p.Name,
		Image:        p.Image,
		Price:        p.Price,
		Stock:        p.Stock,
	})
}

func (p *Product) UnmarshalJSON(data []byte) error {
	var w productWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	s := w.snapshot()
	*p = Product{
		ID:          s.ID,
		Title:       w.Title,
		Description: w.Description,
		Category:    w.Category,
		Image:       s.Image,
		Price:       w.Price.Decimal,
		Stock:       w.Stock,
	}
	if p.Title == "" {
		p.Title = w.Name
	}
	return nil
}

type cartLineWire struct {
	UnderscoreID FlexString          `json:"_id,omitempty"`
	ProductID    FlexString          `json:"productId,omitempty"`
	Quantity     int                 `json:"quantity"`
	Qty          *int                `json:"qty,omitempty"`
	Price        decimal.NullDecimal `json:"price"`
	Product      json.RawMessage     `json:"product,omitempty"`
}

// UnmarshalJSON accepts the server's cart line shapes: product may be a
// populated object or a bare id string.
func (l *CartLine) UnmarshalJSON(data []byte) error {
	var w cartLineWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	line := CartLine{
		Quantity:  w.Quantity,
		UnitPrice: w.Price,
	}
	if w.Qty != nil && line.Quantity == 0 {
		line.Quantity = *w.Qty
	}

	var nestedRef string
	raw := bytes.TrimSpace(w.Product)
	if len(raw) > 0 && !bytes.Equal(raw, []byte("null")) {
		if raw[0] == '{' {
			var snap ProductSnapshot
			if err := json.Unmarshal(raw, &snap); err != nil {
				return err
			}
			line.Product = &snap
			nestedRef = snap.ID
		} else {
			var ref FlexString
			if err := json.Unmarshal(raw, &ref); err != nil {
				return err
			}
			nestedRef = string(ref)
		}
	}

	line.ProductRef = first(FlexString(nestedRef), w.ProductID, w.UnderscoreID)
	*l = line
	return nil
}

func (l CartLine) MarshalJSON() ([]byte, error) {
	w := cartLineWire{
		ProductID: FlexString(l.ProductRef),
		Quantity:  l.Quantity,
		Price:     l.UnitPrice,
	}
	if l.Product != nil {
		raw, err := json.Marshal(l.Product)
		if err != nil {
			return nil, err
		}
		w.Product = raw
	}
	return json.Marshal(w)
}

type orderWire struct {
	UnderscoreID  FlexString      `json:"_id"`
	ID            FlexString      `json:"id"`
	User          json.RawMessage `json:"user"`
	Products      []OrderLine     `json:"products"`
	Total         decimal.Decimal `json:"total"`
	Address       string          `json:"address"`
	City          string          `json:"city"`
	Phone         string          `json:"phone"`
	PaymentMethod PaymentMethod   `json:"paymentMethod"`
	Status        OrderStatus     `json:"status"`
	PaymentStatus string          `json:"paymentStatus"`
	CreatedAt     string          `json:"createdAt"`
}

func (o *Order) UnmarshalJSON(data []byte) error {
	var w orderWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*o = Order{
		ID:              first(w.UnderscoreID, w.ID),
		BuyerRef:        buyerRef(w.User),
		Lines:           w.Products,
		Total:           w.Total,
		ShippingAddress: w.Address,
		ShippingCity:    w.City,
		ContactPhone:    w.Phone,
		PaymentMethod:   w.PaymentMethod,
		Status:          w.Status,
		PaymentStatus:   w.PaymentStatus,
	}
	if t, err := parseTimestamp(w.CreatedAt); err == nil {
		o.CreatedAt = t
	}
	return nil
}

// buyerRef reads the order's user field, which is either an id or a populated user
func buyerRef(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}
	if raw[0] == '{' {
		var u struct {
			UnderscoreID FlexString `json:"_id"`
			ID           FlexString `json:"id"`
		}
		if err := json.Unmarshal(raw, &u); err != nil {
			return ""
		}
		return first(u.UnderscoreID, u.ID)
	}
	var ref FlexString
	if err := json.Unmarshal(raw, &ref); err != nil {
		return ""
	}
	return string(ref)
}

// UnmarshalJSON accepts the product id under productId, product or _id
func (ol *OrderLine) UnmarshalJSON(data []byte) error {
	var w struct {
		ProductID    FlexString      `json:"productId"`
		Product      json.RawMessage `json:"product"`
		UnderscoreID FlexString      `json:"_id"`
		Quantity     int             `json:"quantity"`
		Price        decimal.Decimal `json:"price"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*ol = OrderLine{
		ProductRef: first(w.ProductID, FlexString(buyerRef(w.Product)), w.UnderscoreID),
		Quantity:   w.Quantity,
		Price:      w.Price,
	}
	return nil
}

// MarshalJSON emits price as a JSON number, which the orders endpoint expects
func (ol OrderLine) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ProductID string      `json:"productId"`
		Quantity  int         `json:"quantity"`
		Price     json.Number `json:"price"`
	}{
		ProductID: ol.ProductRef,
		Quantity:  ol.Quantity,
		Price:     json.Number(ol.Price.String()),
	})
}

func parseTimestamp(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}
