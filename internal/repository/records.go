package repository

import (
	"encoding/json"
	"fmt"

	"github.com/jafarshop/storefront/internal/domain"
)

// The backends store every record as a JSON document; these helpers keep the
// encoding identical across them.

func EncodeIdentity(identity domain.Identity) ([]byte, error) {
	return json.Marshal(identity)
}

func DecodeIdentity(raw []byte) (*domain.Identity, error) {
	var identity domain.Identity
	if err := json.Unmarshal(raw, &identity); err != nil {
		return nil, fmt.Errorf("failed to decode identity record: %w", err)
	}
	return &identity, nil
}

func EncodeCart(cart domain.Cart) ([]byte, error) {
	if cart == nil {
		cart = domain.Cart{}
	}
	return json.Marshal(cart)
}

func DecodeCart(raw []byte) (domain.Cart, error) {
	cart := domain.Cart{}
	if err := json.Unmarshal(raw, &cart); err != nil {
		return nil, fmt.Errorf("failed to decode cart record: %w", err)
	}
	return cart, nil
}
