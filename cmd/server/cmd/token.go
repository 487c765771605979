package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/vapeshop/catalog-server/internal/auth"
	"github.com/vapeshop/catalog-server/internal/domain/ids"
)

// newTokenCommand signs a bearer token with the configured secret. It is an
// operator tool for smoke-testing admin routes without a login round trip.
func newTokenCommand(root *rootOptions) *cobra.Command {
	var (
		subject string
		email   string
		roles   []string
		expiry  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a signed access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(root)
			if err != nil {
				return fmt.Errorf("config error: %w", err)
			}
			// Subjects are user ids, so /api/users/me can resolve the token.
			if subject == "" {
				if subject, err = ids.NewULID(); err != nil {
					return fmt.Errorf("generate subject: %w", err)
				}
			} else if err := ids.ValidateULID(subject); err != nil {
				return fmt.Errorf("subject %q: %w", subject, err)
			}
			subject = ids.Normalize(subject)
			lifetime := cfg.Auth.JWTExpiry()
			if expiry > 0 {
				lifetime = expiry
			}

			manager := auth.NewJWTManager(cfg.Auth.JWTSecret, lifetime, cfg.Auth.JWTIssuer, cfg.Auth.JWTAudience)
			token, expires, err := manager.Generate(subject, strings.ToLower(strings.TrimSpace(email)), roles)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, token)
			fmt.Fprintf(out, "# subject=%s roles=%s expires=%s\n", subject, strings.Join(roles, ","), expires.UTC().Format(time.RFC3339))
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "", "user id to embed (default: random ULID)")
	cmd.Flags().StringVar(&email, "email", "ops@vapeshop.local", "email claim")
	cmd.Flags().StringSliceVar(&roles, "role", []string{auth.RoleAdmin}, "role claim (repeatable)")
	cmd.Flags().DurationVar(&expiry, "expiry", 0, "token lifetime (default: JWT_EXPIRE_DAYS)")
	return cmd
}
