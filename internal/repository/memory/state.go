package memory

import (
	"context"
	"sync"

	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/repository"
)

// StateRepository keeps records in process memory. Used by tests and by
// callers that do not want anything written to disk.
type StateRepository struct {
	mu       sync.Mutex
	identity *domain.Identity
	carts    map[string]domain.Cart
}

// NewStateRepository creates an empty in-memory state repository
func NewStateRepository() *StateRepository {
	return &StateRepository{carts: map[string]domain.Cart{}}
}

var _ repository.StateRepository = (*StateRepository)(nil)

func (r *StateRepository) LoadIdentity(ctx context.Context) (*domain.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.identity == nil {
		return nil, nil
	}
	identity := *r.identity
	return &identity, nil
}

func (r *StateRepository) SaveIdentity(ctx context.Context, identity domain.Identity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.identity = &identity
	return nil
}

func (r *StateRepository) DeleteIdentity(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.identity = nil
	return nil
}

func (r *StateRepository) LoadCart(ctx context.Context, key string) (domain.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cart, ok := r.carts[key]
	if !ok {
		return nil, nil
	}
	return cart.Clone(), nil
}

func (r *StateRepository) SaveCart(ctx context.Context, key string, cart domain.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.carts[key] = cart.Clone()
	return nil
}

func (r *StateRepository) DeleteCart(ctx context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.carts, key)
	return nil
}

func (r *StateRepository) Close() error {
	return nil
}
