package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

func CreateAdminCmd() *cobra.Command {
	var email, password string
	var welcome bool

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an administrator or reset their password",
		Long:  "Create an administrator or reset their password.\nThe password is read from --password or ADMIN_PASSWORD.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv("ADMIN_PASSWORD")
			}
			if email == "" || password == "" {
				return fmt.Errorf("--email and a password are required")
			}

			a, err := openApp(cmd.Context(), os.Stderr)
			if err != nil {
				return err
			}
			defer closeApp(a)

			user, err := a.AuthService.CreateAdmin(cmd.Context(), email, password)
			if err != nil {
				return err
			}

			if welcome {
				err = a.EmailService.SendAdminWelcome(cmd.Context(), user.Email)
				if err != nil {
					slog.Warn("failed to send welcome email", "email", user.Email, "error", err)
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "admin ready: %s (%s)\n", user.Email, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Administrator email")
	cmd.Flags().StringVar(&password, "password", "", "Administrator password")
	cmd.Flags().BoolVar(&welcome, "welcome", true, "Send a welcome email")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}
