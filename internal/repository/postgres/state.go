package postgres

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/repository"
)

type stateRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewStateRepository creates a client_state-backed repository
func NewStateRepository(db *sql.DB, logger *zap.Logger) *stateRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &stateRepository{
		db:     db,
		logger: logger,
	}
}

var _ repository.StateRepository = (*stateRepository)(nil)

func (r *stateRepository) get(ctx context.Context, key string) ([]byte, error) {
	query := `
		SELECT payload
		FROM client_state
		WHERE key = $1
	`

	var payload []byte
	err := r.db.QueryRowContext(ctx, query, key).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get client state", zap.String("key", key), zap.Error(err))
		return nil, err
	}
	return payload, nil
}

func (r *stateRepository) put(ctx context.Context, key string, payload []byte) error {
	query := `
		INSERT INTO client_state (key, payload, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at
	`

	if _, err := r.db.ExecContext(ctx, query, key, payload, time.Now()); err != nil {
		r.logger.Error("Failed to save client state", zap.String("key", key), zap.Error(err))
		return err
	}
	return nil
}

func (r *stateRepository) delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM client_state WHERE key = $1`, key); err != nil {
		r.logger.Error("Failed to delete client state", zap.String("key", key), zap.Error(err))
		return err
	}
	return nil
}

func (r *stateRepository) LoadIdentity(ctx context.Context) (*domain.Identity, error) {
	payload, err := r.get(ctx, repository.IdentityKey())
	if err != nil || payload == nil {
		return nil, err
	}
	return repository.DecodeIdentity(payload)
}

func (r *stateRepository) SaveIdentity(ctx context.Context, identity domain.Identity) error {
	payload, err := repository.EncodeIdentity(identity)
	if err != nil {
		return err
	}
	return r.put(ctx, repository.IdentityKey(), payload)
}

func (r *stateRepository) DeleteIdentity(ctx context.Context) error {
	return r.delete(ctx, repository.IdentityKey())
}

func (r *stateRepository) LoadCart(ctx context.Context, key string) (domain.Cart, error) {
	payload, err := r.get(ctx, key)
	if err != nil || payload == nil {
		return nil, err
	}
	return repository.DecodeCart(payload)
}

func (r *stateRepository) SaveCart(ctx context.Context, key string, cart domain.Cart) error {
	payload, err := repository.EncodeCart(cart)
	if err != nil {
		return err
	}
	return r.put(ctx, key, payload)
}

func (r *stateRepository) DeleteCart(ctx context.Context, key string) error {
	return r.delete(ctx, key)
}

func (r *stateRepository) Close() error {
	return r.db.Close()
}
