package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jafarshop/storefront/internal/domain"
)

func printCart(cart domain.Cart) {
	if len(cart) == 0 {
		fmt.Println("🛒 Your cart is empty")
		return
	}
	fmt.Println("🛒 Cart:")
	for _, line := range cart {
		name := line.ProductRef
		stock := "?"
		if line.Product != nil {
			if line.Product.Name != "" {
				name = line.Product.Name
			}
			if line.Product.Stock != nil {
				stock = strconv.Itoa(*line.Product.Stock)
			}
		}
		fmt.Printf("  %-24s x%-3d @ %s  (stock %s, id %s)\n", name, line.Quantity, line.EffectivePrice().StringFixed(2), stock, line.ProductRef)
	}
	fmt.Printf("Items: %d   Subtotal: %s\n", cart.TotalItems(), cart.Subtotal().StringFixed(2))
}

func parseQuantity(args []string, at int) (int, error) {
	if len(args) <= at {
		return 1, nil
	}
	qty, err := strconv.Atoi(args[at])
	if err != nil {
		return 0, fmt.Errorf("invalid quantity %q", args[at])
	}
	return qty, nil
}

func (c *cli) cartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cart",
		Short: "Show the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.app.Sessions.Current() != nil {
				if err := c.app.Cart.Fetch(cmd.Context()); err != nil {
					return err
				}
			}
			printCart(c.app.Cart.Lines())
			return nil
		},
	}
}

func (c *cli) addCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <productId> [quantity]",
		Short: "Add a product to the cart (negative quantity decrements)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			qty, err := parseQuantity(args, 1)
			if err != nil {
				return err
			}
			if err := c.app.Cart.AddToCart(cmd.Context(), args[0], qty); err != nil {
				return errCommandFailed
			}
			printCart(c.app.Cart.Lines())
			return nil
		},
	}
}

func (c *cli) decCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dec <productId>",
		Short: "Lower a line by one; a line at one is removed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.app.Cart.Decrement(cmd.Context(), args[0]); err != nil {
				return errCommandFailed
			}
			printCart(c.app.Cart.Lines())
			return nil
		},
	}
}

func (c *cli) removeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <productId>",
		Short: "Remove a product from the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.app.Cart.RemoveFromCart(cmd.Context(), args[0]); err != nil {
				return errCommandFailed
			}
			printCart(c.app.Cart.Lines())
			return nil
		},
	}
}

func (c *cli) clearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.app.Cart.ClearCart(cmd.Context()); err != nil {
				return errCommandFailed
			}
			fmt.Println("🧹 Cart cleared")
			return nil
		},
	}
}

func (c *cli) guestAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "guest-add <productId> [quantity]",
		Short: "Keep a product in the guest cart, adopted at the next login into an empty cart",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			qty, err := parseQuantity(args, 1)
			if err != nil {
				return err
			}
			if err := c.app.Cart.AddGuestLine(cmd.Context(), args[0], qty); err != nil {
				return err
			}
			fmt.Printf("📝 Saved %s x%d to the guest cart\n", args[0], qty)
			return nil
		},
	}
}
