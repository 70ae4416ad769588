package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sagarc03/s3manager/auth"
	"github.com/sagarc03/s3manager/config"
)

var tokenCmd = &cobra.Command{
	Use:   "token <user-id>",
	Short: "Issue a bearer token for local development",
	Long: `Sign an HS256 token for user-id with the configured jwt secret.
Only available when auth.mode is jwt.

Examples:
  s3manager token alice
  s3manager token alice --ttl 24h`,
	Args: cobra.ExactArgs(1),
	RunE: runToken,
}

func init() {
	tokenCmd.Flags().Duration("ttl", time.Hour, "token lifetime")

	rootCmd.AddCommand(tokenCmd)
}

func runToken(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	if cfg.Auth.Mode != "jwt" {
		return errors.New("token: auth.mode must be jwt")
	}

	ttl, _ := cmd.Flags().GetDuration("ttl")

	token, err := auth.SignJWT(jwtConfig(cfg.Auth), args[0], ttl)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
