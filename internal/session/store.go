package session

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/repository"
	"github.com/jafarshop/storefront/internal/storeapi"
	"github.com/jafarshop/storefront/internal/ui"
	"github.com/jafarshop/storefront/pkg/errors"
)

// API is the part of the storefront API the session store uses
type API interface {
	SignIn(ctx context.Context, email, password string) (map[string]interface{}, error)
	SignUp(ctx context.Context, req storeapi.SignUpRequest) (map[string]interface{}, error)
	ListUsers(ctx context.Context) ([]map[string]interface{}, error)
	SetCredential(token string)
}

// Listener is called after every identity transition; either side may be nil
type Listener func(prev, next *domain.Identity)

// Store owns the current identity and the credential attached to API calls
type Store struct {
	api       API
	repo      repository.StateRepository
	navigator ui.Navigator
	notifier  ui.Notifier
	logger    *zap.Logger

	mu        sync.RWMutex
	current   *domain.Identity
	listeners map[int]Listener
	nextID    int
}

// NewStore creates the session store and rehydrates the persisted identity
// before returning, so the first call made afterwards already carries the credential.
func NewStore(ctx context.Context, api API, repo repository.StateRepository, navigator ui.Navigator, notifier ui.Notifier, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	if navigator == nil {
		navigator = ui.Discard
	}
	if notifier == nil {
		notifier = ui.Discard
	}
	s := &Store{
		api:       api,
		repo:      repo,
		navigator: navigator,
		notifier:  notifier,
		logger:    logger,
		listeners: make(map[int]Listener),
	}
	s.rehydrate(ctx)
	return s
}

func (s *Store) rehydrate(ctx context.Context) {
	stored, err := s.repo.LoadIdentity(ctx)
	if err != nil {
		s.logger.Warn("Failed to load persisted identity", zap.Error(err))
		return
	}
	if stored == nil {
		return
	}
	identity := Normalize(stored.Fields())
	if !Recognizable(identity) {
		return
	}

	s.api.SetCredential(identity.Credential)
	s.current = &identity

	fields := []zap.Field{zap.String("user_id", identity.ID), zap.Bool("has_credential", identity.Credential != "")}
	if exp, ok := identity.ExpiresAt(); ok {
		fields = append(fields, zap.Time("credential_expires_at", exp))
	}
	s.logger.Info("Rehydrated identity", fields...)
}

// Current returns a copy of the current identity, or nil when logged out
func (s *Store) Current() *domain.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	identity := *s.current
	return &identity
}

// Subscribe registers a listener for identity transitions and returns its cancel func
func (s *Store) Subscribe(listener Listener) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = listener
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// Login signs in and adopts the returned identity. Failures surface the
// server message through the notifier and leave the previous identity untouched.
func (s *Store) Login(ctx context.Context, email, password string) bool {
	body, err := s.api.SignIn(ctx, email, password)
	if err != nil {
		s.logger.Warn("Login failed", zap.String("email", email), zap.Error(err))
		s.notifier.Error(failureMessage(err, "Login failed"))
		return false
	}
	identity := FromAuthResponse(body)
	if !Recognizable(identity) {
		s.logger.Warn("Login response carried no user or token", zap.String("email", email))
		s.notifier.Error("Login failed")
		return false
	}

	s.adopt(ctx, identity)
	s.notifier.Info("Login successful")
	return true
}

// Register creates an account and adopts the returned identity; nil on failure
func (s *Store) Register(ctx context.Context, req storeapi.SignUpRequest) *domain.Identity {
	body, err := s.api.SignUp(ctx, req)
	if err != nil {
		s.logger.Warn("Registration failed", zap.String("email", req.Email), zap.Error(err))
		s.notifier.Error(failureMessage(err, "Registration failed"))
		return nil
	}
	identity := FromAuthResponse(body)
	if !Recognizable(identity) {
		s.logger.Warn("Registration response carried no user or token", zap.String("email", req.Email))
		s.notifier.Error("Registration failed")
		return nil
	}

	s.adopt(ctx, identity)
	s.notifier.Info("Registration successful")
	out := identity
	return &out
}

// Logout drops the identity and credential and returns to the storefront root.
// Safe to call when already logged out.
func (s *Store) Logout(ctx context.Context) {
	s.api.SetCredential("")

	s.mu.Lock()
	prev := s.current
	s.current = nil
	s.mu.Unlock()

	if err := s.repo.DeleteIdentity(ctx); err != nil {
		s.logger.Warn("Failed to delete persisted identity", zap.Error(err))
	}
	if prev != nil {
		s.logger.Info("Logged out", zap.String("user_id", prev.ID))
		s.emit(prev, nil)
	}
	s.navigator.Navigate("/")
}

// ListUsers returns every registered user (admin only); empty on failure
func (s *Store) ListUsers(ctx context.Context) []domain.Identity {
	raw, err := s.api.ListUsers(ctx)
	if err != nil {
		s.logger.Warn("Failed to list users", zap.Error(err))
		s.notifier.Error(failureMessage(err, "Failed to load users"))
		return []domain.Identity{}
	}
	users := make([]domain.Identity, 0, len(raw))
	for _, r := range raw {
		users = append(users, Normalize(r))
	}
	return users
}

// adopt installs identity as current: credential first, then state, then persistence
func (s *Store) adopt(ctx context.Context, identity domain.Identity) {
	s.api.SetCredential(identity.Credential)

	s.mu.Lock()
	prev := s.current
	next := identity
	s.current = &next
	s.mu.Unlock()

	if err := s.repo.SaveIdentity(ctx, identity); err != nil {
		s.logger.Warn("Failed to persist identity", zap.String("user_id", identity.ID), zap.Error(err))
	}
	s.logger.Info("Identity adopted", zap.String("user_id", identity.ID), zap.String("role", string(identity.Role)))

	var prevCopy *domain.Identity
	if prev != nil {
		p := *prev
		prevCopy = &p
	}
	n := identity
	s.emit(prevCopy, &n)
}

func (s *Store) emit(prev, next *domain.Identity) {
	s.mu.RLock()
	ids := make([]int, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	s.mu.RUnlock()
	sort.Ints(ids)

	for _, id := range ids {
		s.mu.RLock()
		listener, ok := s.listeners[id]
		s.mu.RUnlock()
		if ok {
			listener(prev, next)
		}
	}
}

func failureMessage(err error, fallback string) string {
	if msg := errors.UserMessage(err); msg != "" {
		return msg
	}
	return fallback
}
