package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type Config struct {
	Port        string
	Environment string
	API         APIConfig
	State       StateConfig
	Database    DatabaseConfig
	Mongo       MongoConfig
	Checkout    CheckoutConfig
	LogLevel    string
	// ReturnBaseURL is where the payment provider sends the buyer back (RETURN_BASE_URL)
	ReturnBaseURL string
}

// APIConfig is used to call the storefront REST API
type APIConfig struct {
	BaseURL string        // e.g. http://localhost:5000
	Timeout time.Duration // HTTP_TIMEOUT
}

// StateConfig selects where the identity and cart records are persisted
type StateConfig struct {
	Driver string // file, postgres or mongo
	Dir    string // directory for the file driver
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type MongoConfig struct {
	URI      string
	Database string
}

type CheckoutConfig struct {
	ShippingFee decimal.Decimal
}

const (
	StateDriverFile     = "file"
	StateDriverPostgres = "postgres"
	StateDriverMongo    = "mongo"
)

func Load() (*Config, error) {
	viper.SetConfigType("env")
	viper.SetConfigName(".env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("STATE_DRIVER", StateDriverFile)

	// Read from environment variables
	viper.AutomaticEnv()

	// Try to read .env file (optional)
	if err := viper.ReadInConfig(); err != nil {
		// It's okay if .env doesn't exist, we'll use env vars
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	timeout, err := time.ParseDuration(getEnvOrViper("HTTP_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("HTTP_TIMEOUT: %w", err)
	}
	shippingFee, err := decimal.NewFromString(getEnvOrViper("SHIPPING_FEE", "150"))
	if err != nil {
		return nil, fmt.Errorf("SHIPPING_FEE: %w", err)
	}

	port := getEnvOrViper("PORT", "8080")
	cfg := &Config{
		Port:        port,
		Environment: getEnvOrViper("ENVIRONMENT", "development"),
		API: APIConfig{
			BaseURL: strings.TrimSpace(getEnvOrViper("STOREFRONT_API_URL", "http://localhost:5000")),
			Timeout: timeout,
		},
		State: StateConfig{
			Driver: strings.ToLower(strings.TrimSpace(getEnvOrViper("STATE_DRIVER", StateDriverFile))),
			Dir:    strings.TrimSpace(getEnvOrViper("STATE_DIR", defaultStateDir())),
		},
		Database: DatabaseConfig{
			Host:     getEnvOrViper("DB_HOST", "localhost"),
			Port:     getEnvOrViper("DB_PORT", "5432"),
			User:     getEnvOrViper("DB_USER", "postgres"),
			Password: getEnvOrViper("DB_PASSWORD", "postgres"),
			DBName:   getEnvOrViper("DB_NAME", "storefront"),
			SSLMode:  getEnvOrViper("DB_SSLMODE", "disable"),
		},
		Mongo: MongoConfig{
			URI:      strings.TrimSpace(getEnvOrViper("MONGODB_URI", "")),
			Database: getEnvOrViper("MONGODB_DATABASE", "storefront"),
		},
		Checkout: CheckoutConfig{
			ShippingFee: shippingFee,
		},
		LogLevel:      getEnvOrViper("LOG_LEVEL", "info"),
		ReturnBaseURL: strings.TrimSpace(getEnvOrViper("RETURN_BASE_URL", "http://localhost:"+port)),
	}

	// Validate required fields
	if cfg.API.BaseURL == "" {
		return nil, fmt.Errorf("STOREFRONT_API_URL is required")
	}
	switch cfg.State.Driver {
	case StateDriverFile:
		if cfg.State.Dir == "" {
			return nil, fmt.Errorf("STATE_DIR is required for the file state driver")
		}
	case StateDriverPostgres:
	case StateDriverMongo:
		if cfg.Mongo.URI == "" {
			return nil, fmt.Errorf("MONGODB_URI is required for the mongo state driver")
		}
	default:
		return nil, fmt.Errorf("unknown STATE_DRIVER %q", cfg.State.Driver)
	}

	return cfg, nil
}

func getEnvOrViper(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	return defaultValue
}

func defaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".storefront"
	}
	return filepath.Join(home, ".storefront")
}
