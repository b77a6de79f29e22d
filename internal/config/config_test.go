package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"STOREFRONT_API_URL", "HTTP_TIMEOUT", "STATE_DRIVER", "SHIPPING_FEE", "PORT", "RETURN_BASE_URL"} {
		t.Setenv(key, "")
	}
	t.Setenv("STATE_DIR", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:5000", cfg.API.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.API.Timeout)
	assert.Equal(t, StateDriverFile, cfg.State.Driver)
	assert.Equal(t, "150", cfg.Checkout.ShippingFee.String())
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "http://localhost:8080", cfg.ReturnBaseURL)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("STOREFRONT_API_URL", " https://api.example.com ")
	t.Setenv("HTTP_TIMEOUT", "5s")
	t.Setenv("SHIPPING_FEE", "99.5")
	t.Setenv("STATE_DRIVER", "Postgres")
	t.Setenv("PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com", cfg.API.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.API.Timeout)
	assert.Equal(t, "99.5", cfg.Checkout.ShippingFee.String())
	assert.Equal(t, StateDriverPostgres, cfg.State.Driver)
	assert.Equal(t, "http://localhost:9090", cfg.ReturnBaseURL)
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"bad timeout", map[string]string{"HTTP_TIMEOUT": "soon"}},
		{"bad shipping fee", map[string]string{"SHIPPING_FEE": "free"}},
		{"unknown driver", map[string]string{"STATE_DRIVER": "redis"}},
		{"mongo without uri", map[string]string{"STATE_DRIVER": "mongo"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
