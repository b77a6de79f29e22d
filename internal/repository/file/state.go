package file

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/repository"
)

// StateRepository stores each record as a JSON file under dir
type StateRepository struct {
	dir    string
	logger *zap.Logger
}

// NewStateRepository creates dir if needed and returns a file-backed repository
func NewStateRepository(dir string, logger *zap.Logger) (*StateRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create state dir: %w", err)
	}
	return &StateRepository{dir: dir, logger: logger}, nil
}

var _ repository.StateRepository = (*StateRepository)(nil)

// path maps a record key to a file name; keys may contain ':' or user-supplied ids
func (r *StateRepository) path(key string) string {
	return filepath.Join(r.dir, url.PathEscape(key)+".json")
}

func (r *StateRepository) read(key string) ([]byte, error) {
	raw, err := os.ReadFile(r.path(key))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to read state record", zap.String("key", key), zap.Error(err))
		return nil, err
	}
	return raw, nil
}

// write replaces the record atomically via rename
func (r *StateRepository) write(key string, raw []byte) error {
	tmp, err := os.CreateTemp(r.dir, ".record-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), r.path(key)); err != nil {
		os.Remove(tmp.Name())
		r.logger.Error("Failed to write state record", zap.String("key", key), zap.Error(err))
		return err
	}
	return nil
}

func (r *StateRepository) remove(key string) error {
	err := os.Remove(r.path(key))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (r *StateRepository) LoadIdentity(ctx context.Context) (*domain.Identity, error) {
	raw, err := r.read(repository.IdentityKey())
	if err != nil || raw == nil {
		return nil, err
	}
	return repository.DecodeIdentity(raw)
}

func (r *StateRepository) SaveIdentity(ctx context.Context, identity domain.Identity) error {
	raw, err := repository.EncodeIdentity(identity)
	if err != nil {
		return err
	}
	return r.write(repository.IdentityKey(), raw)
}

func (r *StateRepository) DeleteIdentity(ctx context.Context) error {
	return r.remove(repository.IdentityKey())
}

func (r *StateRepository) LoadCart(ctx context.Context, key string) (domain.Cart, error) {
	raw, err := r.read(key)
	if err != nil || raw == nil {
		return nil, err
	}
	return repository.DecodeCart(raw)
}

func (r *StateRepository) SaveCart(ctx context.Context, key string, cart domain.Cart) error {
	raw, err := repository.EncodeCart(cart)
	if err != nil {
		return err
	}
	return r.write(key, raw)
}

func (r *StateRepository) DeleteCart(ctx context.Context, key string) error {
	return r.remove(key)
}

func (r *StateRepository) Close() error {
	return nil
}
