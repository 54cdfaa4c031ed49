package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/wekeepgrowing/ticket-payment/internal/middleware/auth"
)

func newTokenCommand() *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an operator token for the refund and settings API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if cfg.Service.JWTSecret == "" {
				return fmt.Errorf("service.jwt_secret is empty, operator routes are disabled")
			}
			if subject == "" {
				return fmt.Errorf("--subject is required")
			}

			token, err := auth.IssueOperatorToken(cfg.Service.JWTSecret, subject, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "", "Operator identifier stored in the token")
	cmd.Flags().DurationVar(&ttl, "ttl", 8*time.Hour, "Token lifetime")

	return cmd
}
