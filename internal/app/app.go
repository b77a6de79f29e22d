package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/jafarshop/storefront/internal/cart"
	"github.com/jafarshop/storefront/internal/checkout"
	"github.com/jafarshop/storefront/internal/config"
	"github.com/jafarshop/storefront/internal/payment"
	"github.com/jafarshop/storefront/internal/repository"
	"github.com/jafarshop/storefront/internal/repository/file"
	"github.com/jafarshop/storefront/internal/repository/mongo"
	"github.com/jafarshop/storefront/internal/repository/postgres"
	"github.com/jafarshop/storefront/internal/session"
	"github.com/jafarshop/storefront/internal/storeapi"
	"github.com/jafarshop/storefront/internal/ui"
)

// NewLogger builds the process logger: production config in production,
// development config otherwise, at LOG_LEVEL
func NewLogger(cfg *config.Config) (*zap.Logger, error) {
	var zcfg zap.Config
	if cfg.Environment == "production" {
		zcfg = zap.NewProductionConfig()
	} else {
		zcfg = zap.NewDevelopmentConfig()
	}
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	return zcfg.Build()
}

// OpenState opens the state repository selected by STATE_DRIVER
func OpenState(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.StateRepository, error) {
	switch cfg.State.Driver {
	case config.StateDriverPostgres:
		db, err := postgres.NewConnection(cfg.Database)
		if err != nil {
			return nil, err
		}
		return postgres.NewStateRepository(db, logger), nil
	case config.StateDriverMongo:
		return mongo.Connect(ctx, cfg.Mongo, logger)
	case config.StateDriverFile, "":
		return file.NewStateRepository(cfg.State.Dir, logger)
	default:
		return nil, fmt.Errorf("unknown state driver %q", cfg.State.Driver)
	}
}

// App is the wired storefront client
type App struct {
	Config   *config.Config
	Logger   *zap.Logger
	State    repository.StateRepository
	API      *storeapi.Client
	Sessions *session.Store
	Cart     *cart.Store
	Verifier *payment.Verifier

	navigator ui.Navigator
	notifier  ui.Notifier
}

// New wires the stores in dependency order: the session store rehydrates
// (and installs the credential) before the cart store starts following it
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger, navigator ui.Navigator, notifier ui.Notifier) (*App, error) {
	state, err := OpenState(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open state: %w", err)
	}

	client := storeapi.NewClient(cfg.API.BaseURL, cfg.API.Timeout, logger.Named("storeapi"))
	sessions := session.NewStore(ctx, client, state, navigator, notifier, logger.Named("session"))
	carts := cart.NewStore(ctx, client, sessions, state, notifier, logger.Named("cart"))

	return &App{
		Config:    cfg,
		Logger:    logger,
		State:     state,
		API:       client,
		Sessions:  sessions,
		Cart:      carts,
		Verifier:  payment.NewVerifier(client, carts, logger.Named("payment")),
		navigator: navigator,
		notifier:  notifier,
	}, nil
}

// NewCheckout starts a checkout attempt over the current cart
func (a *App) NewCheckout() *checkout.Orchestrator {
	return checkout.NewOrchestrator(a.API, a.Cart, a.Sessions, a.navigator, a.notifier, a.Config.Checkout.ShippingFee, a.Logger.Named("checkout"))
}

// Close stops background work and releases the state backend
func (a *App) Close() error {
	a.Cart.Close()
	return a.State.Close()
}
