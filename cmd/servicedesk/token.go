package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/spec-kit/servicedesk/internal/auth"
	"github.com/spec-kit/servicedesk/internal/config"
)

func newTokenCommand() *cobra.Command {
	var (
		role    string
		subject string
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a Bearer token carrying a role",
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := auth.ParseRole(role)
			if err != nil {
				return fmt.Errorf("%w: %q", err, role)
			}
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL())
			token, expires, err := tokens.GenerateToken(subject, parsed)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires %s\n", expires.Format(time.RFC3339))
			return nil
		},
	}

	cmd.Flags().StringVar(&role, "role", "", "Role claim: User, Support-Agent or Engineer")
	cmd.Flags().StringVar(&subject, "subject", "cli", "Subject recorded in the token")
	_ = cmd.MarkFlagRequired("role")
	return cmd
}
