package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jafarshop/storefront/internal/storeapi"
)

var errCommandFailed = errors.New("command failed")

func (c *cli) loginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login <email> <password>",
		Short: "Sign in and keep the session",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !c.app.Sessions.Login(cmd.Context(), args[0], args[1]) {
				return errCommandFailed
			}
			c.app.Cart.Wait()
			fmt.Printf("🛒 Cart: %d item(s)\n", c.app.Cart.TotalItems())
			return nil
		},
	}
}

func (c *cli) registerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "register <name> <email> <phone> <password>",
		Short: "Create an account and sign in",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			identity := c.app.Sessions.Register(cmd.Context(), storeapi.SignUpRequest{
				Name:     args[0],
				Email:    args[1],
				Phone:    args[2],
				Password: args[3],
			})
			if identity == nil {
				return errCommandFailed
			}
			c.app.Cart.Wait()
			fmt.Printf("👤 Signed in as %s (%s)\n", identity.Name, identity.Email)
			return nil
		},
	}
}

func (c *cli) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c.app.Sessions.Logout(cmd.Context())
			fmt.Println("👋 Signed out")
			return nil
		},
	}
}

func (c *cli) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current identity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			identity := c.app.Sessions.Current()
			if identity == nil {
				fmt.Println("Not signed in")
				return nil
			}
			fmt.Printf("ID:    %s\n", identity.ID)
			fmt.Printf("Name:  %s\n", identity.Name)
			fmt.Printf("Email: %s\n", identity.Email)
			fmt.Printf("Role:  %s\n", identity.Role)
			if !identity.Authenticated() {
				fmt.Println("⚠️  No credential stored; sign in again")
			} else if exp, ok := identity.ExpiresAt(); ok {
				state := "valid"
				if time.Now().After(exp) {
					state = "expired"
				}
				fmt.Printf("Token: %s until %s\n", state, exp.Local().Format(time.RFC1123))
			}
			return nil
		},
	}
}
