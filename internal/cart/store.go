package cart

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/repository"
	"github.com/jafarshop/storefront/internal/session"
	"github.com/jafarshop/storefront/internal/ui"
	"github.com/jafarshop/storefront/pkg/errors"
)

// API is the remote cart resource
type API interface {
	GetCart(ctx context.Context, userID string) (domain.Cart, error)
	AddCartItem(ctx context.Context, userID, productID string, delta int) (domain.Cart, bool, error)
	RemoveCartItem(ctx context.Context, userID, productID string) (domain.Cart, error)
	ClearCart(ctx context.Context, userID string) error
}

// Sessions is the identity source the cart follows
type Sessions interface {
	Current() *domain.Identity
	Subscribe(listener session.Listener) func()
}

// Store holds the visible cart of the current identity. Every change of
// identity starts a new generation; results that belong to an older
// generation are discarded.
type Store struct {
	api      API
	repo     repository.StateRepository
	notifier ui.Notifier
	logger   *zap.Logger

	baseCtx     context.Context
	unsubscribe func()
	wg          sync.WaitGroup

	mu         sync.Mutex
	owner      *domain.Identity
	lines      domain.Cart
	generation uint64
	cancel     context.CancelFunc
}

// NewStore creates the cart store, subscribes it to sessions and starts the
// first fetch when an identity is already active
func NewStore(ctx context.Context, api API, sessions Sessions, repo repository.StateRepository, notifier ui.Notifier, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	if notifier == nil {
		notifier = ui.Discard
	}
	s := &Store{
		api:      api,
		repo:     repo,
		notifier: notifier,
		logger:   logger,
		baseCtx:  ctx,
		lines:    domain.Cart{},
	}
	s.unsubscribe = sessions.Subscribe(func(prev, next *domain.Identity) {
		s.onIdentityChange(prev, next, prev == nil)
	})
	// A rehydrated identity is not a login, so the guest cart stays put
	if current := sessions.Current(); current != nil {
		s.onIdentityChange(nil, current, false)
	}
	return s
}

// Close stops following the session and cancels any in-flight fetch
func (s *Store) Close() {
	s.unsubscribe()
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()
	s.wg.Wait()
}

// Wait blocks until the background fetches started by identity changes finish
func (s *Store) Wait() {
	s.wg.Wait()
}

// onIdentityChange empties the visible cart before anything else so a
// previous user's lines are never shown under the new identity. migrate is
// set only for a login out of the anonymous state.
func (s *Store) onIdentityChange(prev, next *domain.Identity, migrate bool) {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.generation++
	gen := s.generation
	s.lines = domain.Cart{}
	s.owner = nil
	if next == nil || next.ID == "" {
		s.mu.Unlock()
		s.logger.Debug("Cart cleared for anonymous session")
		return
	}
	owner := *next
	s.owner = &owner
	ctx, cancel := context.WithCancel(s.baseCtx)
	s.cancel = cancel
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.fetch(ctx, gen, owner, migrate); err != nil {
			s.logger.Warn("Background cart fetch failed", zap.String("user_id", owner.ID), zap.Error(err))
		}
	}()
}

// Fetch re-reads the remote cart for the current identity. Any failure
// empties the visible cart.
func (s *Store) Fetch(ctx context.Context) error {
	gen, owner := s.snapshot()
	if owner == nil {
		return nil
	}
	return s.fetch(ctx, gen, *owner, false)
}

func (s *Store) fetch(ctx context.Context, gen uint64, owner domain.Identity, migrate bool) error {
	cart, err := s.api.GetCart(ctx, owner.ID)
	if err != nil {
		if s.commit(ctx, gen, owner, domain.Cart{}, false) {
			s.logger.Warn("Failed to fetch cart", zap.String("user_id", owner.ID), zap.Error(err))
		}
		return err
	}
	if migrate && len(cart) == 0 && !s.stale(gen) {
		cart = s.migrateGuest(ctx, gen, owner, cart)
	}
	if !s.commit(ctx, gen, owner, cart, true) {
		s.logger.Debug("Discarded stale cart response", zap.String("user_id", owner.ID))
	}
	return nil
}

// migrateGuest replays the guest cart onto an empty user cart as signed
// deltas. Best-effort: on failure the last server cart is kept. The guest
// record is consumed either way.
func (s *Store) migrateGuest(ctx context.Context, gen uint64, owner domain.Identity, cart domain.Cart) domain.Cart {
	guest, err := s.repo.LoadCart(ctx, repository.GuestCartKey)
	if err != nil {
		s.logger.Warn("Failed to load guest cart", zap.Error(err))
		return cart
	}
	if len(guest) == 0 {
		return cart
	}
	defer func() {
		if err := s.repo.DeleteCart(ctx, repository.GuestCartKey); err != nil {
			s.logger.Warn("Failed to delete guest cart", zap.Error(err))
		}
	}()

	migrated := 0
	for _, line := range guest {
		if s.stale(gen) {
			return cart
		}
		ref := lineRef(line)
		if ref == "" || line.Quantity < 1 {
			continue
		}
		updated, ok, err := s.api.AddCartItem(ctx, owner.ID, ref, line.Quantity)
		if err != nil {
			s.logger.Warn("Guest cart migration failed",
				zap.String("user_id", owner.ID),
				zap.String("product_id", ref),
				zap.Error(err),
			)
			return cart
		}
		if ok {
			cart = updated
		}
		migrated++
	}
	s.logger.Info("Migrated guest cart", zap.String("user_id", owner.ID), zap.Int("lines", migrated))
	return cart
}

// AddToCart applies a signed quantity delta to a product's line; a delta of
// 0 adds one. The cart is replaced with the server's response.
func (s *Store) AddToCart(ctx context.Context, ref interface{}, delta int) error {
	productID := ResolveProductRef(ref)
	if productID == "" {
		err := &errors.ErrMissingProductRef{}
		s.notifier.Error(err.Error())
		return err
	}
	gen, owner := s.snapshot()
	if owner == nil {
		err := &errors.ErrSignInRequired{}
		s.notifier.Error(err.Error())
		return err
	}
	if delta == 0 {
		delta = 1
	}

	cart, ok, err := s.api.AddCartItem(ctx, owner.ID, productID, delta)
	if err != nil {
		s.logger.Warn("Failed to update cart",
			zap.String("user_id", owner.ID),
			zap.String("product_id", productID),
			zap.Int("delta", delta),
			zap.Error(err),
		)
		s.notifier.Error(errors.UserMessage(err))
		return err
	}
	if ok {
		s.commit(ctx, gen, *owner, cart, true)
	}
	if delta > 0 {
		s.notifier.Info("Added to cart")
	}
	return nil
}

// Decrement lowers a line by one; a line at quantity 1 is removed instead
func (s *Store) Decrement(ctx context.Context, ref interface{}) error {
	productID := ResolveProductRef(ref)
	if productID != "" {
		for _, line := range s.Lines() {
			if line.ProductRef == productID && line.Quantity <= 1 {
				return s.RemoveFromCart(ctx, productID)
			}
		}
	}
	return s.AddToCart(ctx, ref, -1)
}

// RemoveFromCart deletes a product's line. On failure the displayed cart is kept.
func (s *Store) RemoveFromCart(ctx context.Context, ref interface{}) error {
	productID := ResolveProductRef(ref)
	if productID == "" {
		err := &errors.ErrMissingProductRef{}
		s.notifier.Error(err.Error())
		return err
	}
	gen, owner := s.snapshot()
	if owner == nil {
		err := &errors.ErrSignInRequired{}
		s.notifier.Error(err.Error())
		return err
	}

	cart, err := s.api.RemoveCartItem(ctx, owner.ID, productID)
	if err != nil {
		s.logger.Warn("Failed to remove cart item",
			zap.String("user_id", owner.ID),
			zap.String("product_id", productID),
			zap.Error(err),
		)
		s.notifier.Error(errors.UserMessage(err))
		return err
	}
	s.commit(ctx, gen, *owner, cart, true)
	return nil
}

// ClearCart empties the remote cart; the visible cart empties only after the server confirms
func (s *Store) ClearCart(ctx context.Context) error {
	gen, owner := s.snapshot()
	if owner == nil {
		err := &errors.ErrSignInRequired{}
		s.notifier.Error(err.Error())
		return err
	}
	if err := s.api.ClearCart(ctx, owner.ID); err != nil {
		s.logger.Warn("Failed to clear cart", zap.String("user_id", owner.ID), zap.Error(err))
		s.notifier.Error(errors.UserMessage(err))
		return err
	}
	s.commit(ctx, gen, *owner, domain.Cart{}, true)
	return nil
}

// AddGuestLine records a line in the guest cart kept for the next login
func (s *Store) AddGuestLine(ctx context.Context, ref interface{}, quantity int) error {
	productID := ResolveProductRef(ref)
	if productID == "" {
		return &errors.ErrMissingProductRef{}
	}
	if quantity < 1 {
		quantity = 1
	}
	guest, err := s.repo.LoadCart(ctx, repository.GuestCartKey)
	if err != nil {
		return err
	}
	found := false
	for i := range guest {
		if lineRef(guest[i]) == productID {
			guest[i].Quantity += quantity
			found = true
			break
		}
	}
	if !found {
		guest = append(guest, domain.CartLine{ProductRef: productID, Quantity: quantity})
	}
	return s.repo.SaveCart(ctx, repository.GuestCartKey, guest)
}

// Lines returns a copy of the visible cart
func (s *Store) Lines() domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lines.Clone()
}

// TotalItems is recomputed from the visible cart on every call
func (s *Store) TotalItems() int {
	return s.Lines().TotalItems()
}

// Subtotal is recomputed from the visible cart on every call
func (s *Store) Subtotal() decimal.Decimal {
	return s.Lines().Subtotal()
}

// Key is the record key of the visible cart, "" when no identity is active
func (s *Store) Key() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.owner == nil {
		return ""
	}
	return repository.UserCartKey(s.owner.ID)
}

func (s *Store) snapshot() (uint64, *domain.Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.owner == nil {
		return s.generation, nil
	}
	owner := *s.owner
	return s.generation, &owner
}

func (s *Store) stale(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return gen != s.generation
}

// commit replaces the visible cart when gen is still current and reports
// whether it did. Lines with a non-positive quantity are dropped.
func (s *Store) commit(ctx context.Context, gen uint64, owner domain.Identity, cart domain.Cart, persist bool) bool {
	lines := make(domain.Cart, 0, len(cart))
	for _, l := range cart {
		if l.Quantity >= 1 {
			lines = append(lines, l)
		}
	}

	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		return false
	}
	s.lines = lines
	s.mu.Unlock()

	if persist {
		if err := s.repo.SaveCart(ctx, repository.UserCartKey(owner.ID), lines); err != nil {
			s.logger.Warn("Failed to persist cart", zap.String("user_id", owner.ID), zap.Error(err))
		}
	}
	return true
}
