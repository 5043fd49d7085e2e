package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tair/mediops/internal/schema"
)

func (a *App) loginCommand() *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Start an operator session and remember it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.demo {
				return a.notify("Login", errors.New("demo mode needs no login"))
			}
			if password == "" {
				password = os.Getenv("MEDIOPS_PASSWORD")
			}

			op, err := a.client.Login(cmd.Context(), username, password)
			if err != nil {
				return a.notify("Login", err)
			}

			a.state.Server = a.server
			a.state.Token = a.client.Token()
			if err := a.saveState(); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Signed in as %s (%s)\n", op.Username, op.Role)
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "operator username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "operator password (env MEDIOPS_PASSWORD)")
	cmd.MarkFlagRequired("username")
	return cmd
}

func (a *App) logoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session and forget its token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.demo {
				if err := a.client.Logout(cmd.Context()); err != nil {
					return a.notify("Logout", err)
				}
			}
			a.state.Token = ""
			if err := a.saveState(); err != nil {
				return err
			}
			return a.notify("Logout", nil)
		},
	}
}

func (a *App) whoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in operator",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			op, err := a.source.CurrentUser(cmd.Context())
			if err != nil {
				return err
			}
			return a.printer().print(op, func() *Table {
				t := &Table{Headers: []string{"USERNAME", "NAME", "EMAIL", "ROLE"}}
				t.AddRow(op.Username, fullName(op), deref(op.Email), op.Role)
				return t
			})
		},
	}
}

func fullName(op schema.Operator) string {
	first, last := deref(op.FirstName), deref(op.LastName)
	switch {
	case op.FirstName == nil && op.LastName == nil:
		return "-"
	case op.LastName == nil:
		return first
	case op.FirstName == nil:
		return last
	}
	return first + " " + last
}
