package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/api"
	"github.com/jafarshop/storefront/internal/app"
	"github.com/jafarshop/storefront/internal/config"
	"github.com/jafarshop/storefront/internal/ui"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := app.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("Starting payment return server",
		zap.String("port", cfg.Port),
		zap.String("environment", cfg.Environment),
		zap.String("api_url", cfg.API.BaseURL),
		zap.String("state_driver", cfg.State.Driver),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The server shares the client's state, so a confirmed payment clears the buyer's cart
	storefront, err := app.New(ctx, cfg, logger, ui.Discard, ui.NewLogNotifier(logger.Named("notify")))
	if err != nil {
		logger.Fatal("Failed to initialize storefront client", zap.Error(err))
	}
	defer storefront.Close()

	router := api.NewRouter(cfg, storefront.Verifier, logger)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	logger.Info("Server started successfully",
		zap.String("address", srv.Addr),
		zap.String("return_url", cfg.ReturnBaseURL+"/success"),
	)

	// Wait for interrupt signal to gracefully shutdown the server
	<-ctx.Done()

	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

