package repository

import (
	"context"

	"github.com/jafarshop/storefront/internal/domain"
)

const (
	// GuestCartKey is the record key of the cart kept for an unauthenticated session
	GuestCartKey = "guest"
	identityKey  = "identity"
)

// UserCartKey is the record key of the cart owned by a user id
func UserCartKey(userID string) string {
	return "user:" + userID
}

// IdentityKey is the record key of the current identity
func IdentityKey() string {
	return identityKey
}

// StateRepository persists the client-side records: the current identity and
// one raw cart per owning key. Missing records come back as (nil, nil).
type StateRepository interface {
	LoadIdentity(ctx context.Context) (*domain.Identity, error)
	SaveIdentity(ctx context.Context, identity domain.Identity) error
	DeleteIdentity(ctx context.Context) error

	LoadCart(ctx context.Context, key string) (domain.Cart, error)
	SaveCart(ctx context.Context, key string, cart domain.Cart) error
	DeleteCart(ctx context.Context, key string) error

	Close() error
}
