package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sagarc03/s3manager/config"
	"github.com/sagarc03/s3manager/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or verify the configuration store schema",
	Long: `Connect to the configuration store, create the user configuration
table if it is missing and validate its schema.`,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := config.FromContext(ctx)
	if err != nil {
		return err
	}

	dbCfg := cfg.Database
	dbCfg.AutoMigrate = true

	db, err := database.Open(ctx, dbCfg)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	defer func() { _ = db.Close() }()

	slog.Info("database migration complete",
		"type", dbCfg.Type,
		"table", dbCfg.Tables.UserConfigs,
	)
	return nil
}
