package main

import (
	"fmt"
	"os"

	"github.com/sagarc03/s3manager/config"
	"github.com/spf13/cobra"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Version: version,
	Use:     "s3manager",
	Short:   "Multi-tenant S3 bucket manager",
	Long: `s3manager stores per-user S3 credentials and serves a JSON API for
browsing buckets, creating folders, deleting objects and issuing
presigned upload and download URLs.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		envFile, _ := cmd.Flags().GetString("env-file")
		if err := config.LoadEnvFile(envFile); err != nil {
			return err
		}

		files, _ := cmd.Flags().GetStringSlice("config")
		cfg, err := config.Load(files, cmd.Flags())
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		setupLogging(cfg.Env, cfg.Log.Level)
		cmd.SetContext(config.WithContext(cmd.Context(), cfg))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringSlice("config", nil, "config file paths, later files override earlier ones (default: ./config.yaml)")
	rootCmd.PersistentFlags().String("env-file", ".env", "dotenv file loaded before reading config")
	rootCmd.PersistentFlags().String("env", "", "environment: dev, prod (env: S3MANAGER_ENV)")
	rootCmd.PersistentFlags().String("db-type", "", "database type: sqlite, postgres (default: sqlite, env: S3MANAGER_DATABASE_TYPE)")
	rootCmd.PersistentFlags().String("db-dsn", "", "database connection string (default: s3manager.db, env: S3MANAGER_DATABASE_DSN)")
	rootCmd.PersistentFlags().String("storage-driver", "", "object storage driver: aws, minio (env: S3MANAGER_STORAGE_DRIVER)")
	rootCmd.PersistentFlags().String("storage-endpoint", "", "custom S3 endpoint URL (env: S3MANAGER_STORAGE_ENDPOINT)")
	rootCmd.PersistentFlags().Bool("path-style", false, "use path-style bucket addressing (env: S3MANAGER_STORAGE_USE_PATH_STYLE)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error (env: S3MANAGER_LOG_LEVEL)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
