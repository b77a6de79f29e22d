package main

import (
	stderrors "errors"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jafarshop/storefront/internal/checkout"
	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/payment"
	"github.com/jafarshop/storefront/pkg/errors"
)

func (c *cli) checkoutCmd() *cobra.Command {
	values := map[string]*string{}
	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Place an order for the current cart (COD or card)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.app.Cart.Fetch(cmd.Context()); err != nil {
				return err
			}
			co := c.app.NewCheckout()
			for _, field := range []string{
				checkout.FieldName, checkout.FieldEmail, checkout.FieldAddress, checkout.FieldCity,
				checkout.FieldPhone, checkout.FieldPaymentMethod, checkout.FieldCardNumber,
				checkout.FieldCardExpiry, checkout.FieldCardCVV,
			} {
				if !cmd.Flags().Changed(field) {
					continue
				}
				if err := co.SetField(field, *values[field]); err != nil {
					return err
				}
			}

			err := co.PlaceOrder(cmd.Context())
			var verr *errors.ErrValidation
			if stderrors.As(err, &verr) {
				printFieldErrors(verr.Fields)
				return errCommandFailed
			}
			if err != nil {
				return errCommandFailed
			}

			switch co.State() {
			case domain.CheckoutSucceeded:
				if order := co.Order(); order != nil && order.ID != "" {
					fmt.Printf("📦 Order %s placed (cash on delivery)\n", order.ID)
				}
			case domain.CheckoutRedirecting:
				fmt.Printf("📦 Order %s awaiting payment\n", co.Order().ID)
			}
			return nil
		},
	}

	flags := []struct{ name, usage string }{
		{checkout.FieldName, "full name"},
		{checkout.FieldEmail, "email address"},
		{checkout.FieldAddress, "shipping address"},
		{checkout.FieldCity, "shipping city"},
		{checkout.FieldPhone, "mobile number (03XXXXXXXXX)"},
		{checkout.FieldPaymentMethod, "cod or card"},
		{checkout.FieldCardNumber, "card number (card payments)"},
		{checkout.FieldCardExpiry, "card expiry MM/YY"},
		{checkout.FieldCardCVV, "card CVV"},
	}
	for _, f := range flags {
		values[f.name] = cmd.Flags().String(f.name, "", f.usage)
	}
	return cmd
}

func printFieldErrors(fields map[string]string) {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Println("⚠️  Please fix the following:")
	for _, name := range names {
		fmt.Printf("  --%s: %s\n", name, fields[name])
	}
}

func (c *cli) verifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <session_id | return URL>",
		Short: "Verify a hosted payment; the cart is cleared only when paid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			returnURL := args[0]
			if !strings.Contains(returnURL, payment.SessionIDParam+"=") {
				returnURL = "?" + payment.SessionIDParam + "=" + url.QueryEscape(returnURL)
			}
			result := c.app.Verifier.CompleteReturn(cmd.Context(), returnURL)
			icon := "❌"
			if result.Outcome == domain.PaymentPaid {
				icon = "✅"
			}
			fmt.Printf("%s %s\n", icon, result.Message)
			if result.Outcome != domain.PaymentPaid {
				return errCommandFailed
			}
			return nil
		},
	}
}
