package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sagarc03/s3manager"
	"github.com/sagarc03/s3manager/config"
	"github.com/sagarc03/s3manager/database"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check connectivity to the configuration store and buckets",
	Long: `Ping the configuration store. With --user, also load that user's
bucket configuration and verify the bucket is reachable with it.

Examples:
  s3manager check
  s3manager check --user 0b5c6f0e-auth0-subject`,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().String("user", "", "user ID whose bucket to check")

	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := config.FromContext(ctx)
	if err != nil {
		return err
	}

	store := database.NewLazy(cfg.Database)
	defer func() { _ = store.Close() }()

	if err := store.Ping(ctx); err != nil {
		return fmt.Errorf("check configuration store: %w", err)
	}
	slog.Info("configuration store reachable", "type", cfg.Database.Type)

	userID, _ := cmd.Flags().GetString("user")
	if userID == "" {
		return nil
	}

	userCfg, err := s3manager.NewCredentialStore(store).Get(ctx, userID)
	if err != nil {
		return fmt.Errorf("check user %s: %w", userID, err)
	}

	open, err := newOpener(cfg.Storage)
	if err != nil {
		return err
	}

	bucket, err := open(ctx, userCfg)
	if err != nil {
		return fmt.Errorf("check bucket: %w", err)
	}
	if err := bucket.Check(ctx); err != nil {
		return fmt.Errorf("check bucket %s: %s", userCfg.BucketName, s3manager.Redact(err.Error(), userCfg.SecretKey))
	}

	slog.Info("bucket reachable", "user", userID, "bucket", userCfg.BucketName, "region", userCfg.Region)
	return nil
}
