package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func credentialsFlags(cmd *cobra.Command, user, pass *string) {
	cmd.Flags().StringVar(user, "user", "", "Handle (required)")
	cmd.Flags().StringVar(pass, "pass", "", "Password (required)")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("pass")
}

func newRegisterCmd() *cobra.Command {
	var user, pass string
	var andLogin bool

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a new account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if user == "" || pass == "" {
				return fmt.Errorf("--user and --pass are required")
			}

			req := map[string]string{"handle": user, "password": pass}
			var result MessageResult

			if err := client.Post(cmd.Context(), "/register", req, &result); err != nil {
				return err
			}

			out := NewOutput(cmd.OutOrStdout(), cfg.Output)
			if !andLogin {
				out.Print(result)
				return nil
			}
			return login(cmd.Context(), out, user, pass)
		},
	}

	credentialsFlags(cmd, &user, &pass)
	cmd.Flags().BoolVar(&andLogin, "login", false, "Log in after registering")

	return cmd
}

func newLoginCmd() *cobra.Command {
	var user, pass string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if user == "" || pass == "" {
				return fmt.Errorf("--user and --pass are required")
			}
			return login(cmd.Context(), NewOutput(cmd.OutOrStdout(), cfg.Output), user, pass)
		},
	}

	credentialsFlags(cmd, &user, &pass)

	return cmd
}

func login(ctx context.Context, out *Output, user, pass string) error {
	req := map[string]string{"handle": user, "password": pass}
	var result LoginResult

	if err := client.Post(ctx, "/login", req, &result); err != nil {
		return err
	}

	// Save token
	if err := cfg.SaveToken(result.Token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	client.SetToken(result.Token)

	out.Print(result)
	return nil
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the account the stored token belongs to",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result MeResult

			if err := client.Get(cmd.Context(), "/me", &result); err != nil {
				return err
			}

			out := NewOutput(cmd.OutOrStdout(), cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
