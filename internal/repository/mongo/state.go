package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/config"
	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/repository"
)

const collectionName = "client_state"

// stateDocument is one record; Payload holds the same JSON the other backends store
type stateDocument struct {
	Key       string    `bson:"_id"`
	Payload   string    `bson:"payload"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

// StateRepository stores records in the client_state collection
type StateRepository struct {
	client     *mongo.Client
	collection *mongo.Collection
	logger     *zap.Logger
}

// Connect dials MongoDB, pings it and returns a repository over cfg.Database
func Connect(ctx context.Context, cfg config.MongoConfig, logger *zap.Logger) (*StateRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	logger.Info("Connected to MongoDB", zap.String("database", cfg.Database))
	return &StateRepository{
		client:     client,
		collection: client.Database(cfg.Database).Collection(collectionName),
		logger:     logger,
	}, nil
}

var _ repository.StateRepository = (*StateRepository)(nil)

func (r *StateRepository) get(ctx context.Context, key string) ([]byte, error) {
	var doc stateDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get client state", zap.String("key", key), zap.Error(err))
		return nil, err
	}
	return []byte(doc.Payload), nil
}

func (r *StateRepository) put(ctx context.Context, key string, payload []byte) error {
	doc := stateDocument{Key: key, Payload: string(payload), UpdatedAt: time.Now()}
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": key}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		r.logger.Error("Failed to save client state", zap.String("key", key), zap.Error(err))
		return err
	}
	return nil
}

func (r *StateRepository) delete(ctx context.Context, key string) error {
	if _, err := r.collection.DeleteOne(ctx, bson.M{"_id": key}); err != nil {
		r.logger.Error("Failed to delete client state", zap.String("key", key), zap.Error(err))
		return err
	}
	return nil
}

func (r *StateRepository) LoadIdentity(ctx context.Context) (*domain.Identity, error) {
	payload, err := r.get(ctx, repository.IdentityKey())
	if err != nil || payload == nil {
		return nil, err
	}
	return repository.DecodeIdentity(payload)
}

func (r *StateRepository) SaveIdentity(ctx context.Context, identity domain.Identity) error {
	payload, err := repository.EncodeIdentity(identity)
	if err != nil {
		return err
	}
	return r.put(ctx, repository.IdentityKey(), payload)
}

func (r *StateRepository) DeleteIdentity(ctx context.Context) error {
	return r.delete(ctx, repository.IdentityKey())
}

func (r *StateRepository) LoadCart(ctx context.Context, key string) (domain.Cart, error) {
	payload, err := r.get(ctx, key)
	if err != nil || payload == nil {
		return nil, err
	}
	return repository.DecodeCart(payload)
}

func (r *StateRepository) SaveCart(ctx context.Context, key string, cart domain.Cart) error {
	payload, err := repository.EncodeCart(cart)
	if err != nil {
		return err
	}
	return r.put(ctx, key, payload)
}

func (r *StateRepository) DeleteCart(ctx context.Context, key string) error {
	return r.delete(ctx, key)
}

func (r *StateRepository) Close() error {
	return r.client.Disconnect(context.Background())
}
