package postgres

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/jafarshop/storefront/internal/config"
	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/repository"
)

func TestDSN(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{
		Host:     "db",
		Port:     "5433",
		User:     "shop",
		Password: "pw",
		DBName:   "storefront",
		SSLMode:  "disable",
	})
	assert.Equal(t, "host=db port=5433 user=shop password=pw dbname=storefront sslmode=disable", dsn)
}

// Runs against a live database when STATE_TEST_POSTGRES_DSN is set
func TestStateRepository(t *testing.T) {
	dsn := os.Getenv("STATE_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("STATE_TEST_POSTGRES_DSN not set")
	}
	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	_, err = db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS client_state (
			key        TEXT PRIMARY KEY,
			payload    JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	require.NoError(t, err)

	key := repository.UserCartKey("state-test")
	repo := NewStateRepository(db, zaptest.NewLogger(t))
	t.Cleanup(func() { _ = repo.DeleteCart(ctx, key) })

	missing, err := repo.LoadCart(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, repo.SaveCart(ctx, key, domain.Cart{{ProductRef: "p1", Quantity: 1}}))
	require.NoError(t, repo.SaveCart(ctx, key, domain.Cart{{ProductRef: "p1", Quantity: 3}}))

	loaded, err := repo.LoadCart(ctx, key)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, 3, loaded[0].Quantity)

	require.NoError(t, repo.DeleteCart(ctx, key))
	loaded, err = repo.LoadCart(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, loaded)
}
