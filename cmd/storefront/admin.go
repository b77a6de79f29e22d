package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/pkg/errors"
)

func (c *cli) productsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "products",
		Short: "List the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			products, err := c.app.API.ListProducts(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list products: %s", errors.UserMessage(err))
			}
			fmt.Printf("📋 %d product(s):\n", len(products))
			for _, p := range products {
				fmt.Printf("  %-26s %-30s %10s  %s\n", p.ID, p.Title, p.Price.StringFixed(2), stockLabel(p.Stock))
			}
			return nil
		},
	}
}

func stockLabel(stock *int) string {
	switch {
	case stock == nil:
		return ""
	case *stock < 1:
		return "out of stock"
	default:
		return fmt.Sprintf("%d in stock", *stock)
	}
}

func (c *cli) productCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "product <id>",
		Short: "Show one product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := c.app.API.GetProduct(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to get product: %s", errors.UserMessage(err))
			}
			fmt.Printf("ID:          %s\n", p.ID)
			fmt.Printf("Title:       %s\n", p.Title)
			fmt.Printf("Category:    %s\n", p.Category)
			fmt.Printf("Price:       %s\n", p.Price.StringFixed(2))
			fmt.Printf("Stock:       %s\n", stockLabel(p.Stock))
			fmt.Printf("Description: %s\n", p.Description)
			return nil
		},
	}
}

func (c *cli) requireAdmin() error {
	if identity := c.app.Sessions.Current(); !identity.IsAdmin() {
		return fmt.Errorf("admin access required")
	}
	return nil
}

func (c *cli) usersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List registered users (admin)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireAdmin(); err != nil {
				return err
			}
			users := c.app.Sessions.ListUsers(cmd.Context())
			fmt.Printf("👥 %d user(s):\n", len(users))
			for _, u := range users {
				fmt.Printf("  %-26s %-24s %-30s %s\n", u.ID, u.Name, u.Email, u.Role)
			}
			return nil
		},
	}
}

func (c *cli) ordersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "orders",
		Short: "List orders (admin)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireAdmin(); err != nil {
				return err
			}
			orders, err := c.app.API.ListOrders(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list orders: %s", errors.UserMessage(err))
			}
			fmt.Printf("📋 %d order(s):\n", len(orders))
			for _, o := range orders {
				created := ""
				if !o.CreatedAt.IsZero() {
					created = o.CreatedAt.Format("2006-01-02 15:04")
				}
				fmt.Printf("  %-26s %-10s %-5s %10s  %-12s %s\n", o.ID, o.Status, o.PaymentMethod, o.Total.StringFixed(2), o.ShippingCity, created)
			}
			return nil
		},
	}
}

func (c *cli) orderStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "order-status <orderId> <status>",
		Short: "Set an order's status (admin)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireAdmin(); err != nil {
				return err
			}
			status := domain.OrderStatus(args[1])
			if err := c.app.API.UpdateOrderStatus(cmd.Context(), args[0], status); err != nil {
				return fmt.Errorf("failed to update order: %s", errors.UserMessage(err))
			}
			fmt.Printf("✅ Order %s is now %s\n", args[0], status)
			return nil
		},
	}
}
