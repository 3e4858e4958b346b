package cli

import (
	"errors"
	"time"

	"github.com/book-catalog/backend/internal/auth"
	"github.com/book-catalog/backend/internal/config"
	"github.com/spf13/cobra"
)

type tokenOutput struct {
	Token     string    `json:"token"`
	Subject   string    `json:"subject"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// NewTokenCommand mints an HS256 token accepted by the API when JWT_SECRET is shared.
func NewTokenCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		subject string
		email   string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a signed token for local development",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if cfg.JWTSecret == "" {
				return errors.New("JWT_SECRET is not set")
			}
			if ttl <= 0 {
				ttl = cfg.JWTExpiration
			}

			tok, err := auth.GenerateJWT(cfg.JWTSecret, subject, email, cfg.JWTIssuer, ttl)
			if err != nil {
				return err
			}

			out := newOutput(rootOpts, cmd)
			if out.json() {
				return out.writeJSON(tokenOutput{Token: tok, Subject: subject, ExpiresAt: time.Now().Add(ttl).UTC()})
			}
			out.printf("%s\n", tok)
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "sub", "", "user id placed in the sub claim (required)")
	cmd.Flags().StringVar(&email, "email", "", "email claim")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (defaults to JWT_EXPIRATION_HOURS)")
	_ = cmd.MarkFlagRequired("sub")

	return cmd
}
