package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/app"
	"github.com/jafarshop/storefront/internal/config"
)

// terminal prints notifications and navigation targets for the CLI user
type terminal struct{}

func (terminal) Info(message string) {
	fmt.Printf("✅ %s\n", message)
}

func (terminal) Error(message string) {
	fmt.Fprintf(os.Stderr, "❌ %s\n", message)
}

func (terminal) Navigate(target string) {
	switch {
	case strings.HasPrefix(target, "http://"), strings.HasPrefix(target, "https://"):
		fmt.Printf("💳 Continue to payment: %s\n", target)
	case target == "/signin":
		fmt.Println("🔑 Please sign in first: storefront login <email> <password>")
	default:
		fmt.Printf("→ %s\n", target)
	}
}

type cli struct {
	app    *app.App
	logger *zap.Logger
}

func main() {
	c := &cli{}

	root := &cobra.Command{
		Use:           "storefront",
		Short:         "Storefront client: session, cart, checkout and payment verification",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			logger, err := app.NewLogger(cfg)
			if err != nil {
				return err
			}
			c.logger = logger
			c.app, err = app.New(cmd.Context(), cfg, logger, terminal{}, terminal{})
			if err != nil {
				return err
			}
			// Let the startup fetch land before any command reads the cart
			c.app.Cart.Wait()
			return nil
		},
	}

	root.AddCommand(
		c.loginCmd(),
		c.registerCmd(),
		c.logoutCmd(),
		c.whoamiCmd(),
		c.cartCmd(),
		c.addCmd(),
		c.decCmd(),
		c.removeCmd(),
		c.clearCmd(),
		c.guestAddCmd(),
		c.checkoutCmd(),
		c.verifyCmd(),
		c.productsCmd(),
		c.productCmd(),
		c.usersCmd(),
		c.ordersCmd(),
		c.orderStatusCmd(),
	)

	err := root.ExecuteContext(context.Background())
	if c.app != nil {
		if cerr := c.app.Close(); cerr != nil {
			c.logger.Warn("Failed to close state", zap.Error(cerr))
		}
		_ = c.logger.Sync()
	}
	if err != nil {
		// errCommandFailed has already been reported through the terminal
		if !errors.Is(err, errCommandFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
