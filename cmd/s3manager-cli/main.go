package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sagarc03/s3manager/clientcli"
	"github.com/sagarc03/s3manager/objectstore"
	"github.com/spf13/cobra"
)

var (
	version = "dev"

	cfgFile     string
	profileName string
	server      string
	token       string
	jsonOutput  bool
	quiet       bool
)

var rootCmd = &cobra.Command{
	Use:     "s3manager-cli",
	Version: version,
	Short:   "Client for the s3manager bucket manager",
	Long: `s3manager CLI - Client for the s3manager bucket manager

Bucket credentials are stored on the server per user. When the server
reports its configuration store as unavailable, the CLI keeps working from a
local fallback file and talks to the bucket directly. Run
'config push' once the server recovers to move that record back.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: ~/.s3manager/config.yaml, env: S3MANAGER_CONFIG)")
	rootCmd.PersistentFlags().StringVarP(&profileName, "profile", "p", "", "profile to use (env: S3MANAGER_PROFILE)")
	rootCmd.PersistentFlags().StringVarP(&server, "server", "s", "", "server URL (default: http://localhost:5780, env: S3MANAGER_SERVER)")
	rootCmd.PersistentFlags().StringVarP(&token, "token", "t", "", "bearer token (env: S3MANAGER_TOKEN)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-essential output")

	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(catCmd)
	rootCmd.AddCommand(mkdirCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(urlCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.code)
		}
		_ = getFormatter().FormatError(os.Stderr, err)
		os.Exit(1)
	}
}

// getConfigPath returns the config file path from the flag, the
// environment or the default location.
func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	if p := clientcli.ConfigPathFromEnv(); p != "" {
		return p
	}
	return clientcli.DefaultConfigPath()
}

// buildConfig merges the selected profile, env vars and flags (flags take precedence).
func buildConfig() (*clientcli.Config, error) {
	var configs []*clientcli.Config

	name := profileName
	if name == "" {
		name = clientcli.ProfileFromEnv()
	}

	configPath := getConfigPath()
	file, err := clientcli.LoadConfigFile(configPath)
	switch {
	case err == nil:
		p, profileErr := file.GetProfile(name)
		if profileErr != nil && (name != "" || !errors.Is(profileErr, clientcli.ErrNoProfiles)) {
			return nil, profileErr
		}
		configs = append(configs, clientcli.ConfigFromProfile(p))
	case errors.Is(err, os.ErrNotExist):
		// Only an explicitly requested file or profile must exist
		if cfgFile != "" || name != "" {
			return nil, err
		}
	default:
		return nil, err
	}

	configs = append(configs, clientcli.ConfigFromEnv())
	configs = append(configs, &clientcli.Config{
		Server: server,
		Token:  token,
	})

	return clientcli.MergeConfig(configs...).WithDefaults(), nil
}

// getFormatter returns the appropriate formatter based on flags.
func getFormatter() clientcli.Formatter {
	return clientcli.NewFormatter(jsonOutput, quiet)
}

// getClient creates a client for the resolved profile.
func getClient() (*clientcli.Client, *clientcli.Config, error) {
	cfg, err := buildConfig()
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.ValidateWithAuth(); err != nil {
		return nil, nil, fmt.Errorf("%w: set it with --token, S3MANAGER_TOKEN or a profile", err)
	}

	client, err := clientcli.New(cfg)
	if err != nil {
		return nil, nil, err
	}
	return client, cfg, nil
}

// getSession creates a session that falls back to the local file and a
// direct bucket connection when the server's store is unavailable.
func getSession() (*clientcli.Session, error) {
	client, cfg, err := getClient()
	if err != nil {
		return nil, err
	}

	open, err := objectstore.NewOpener(objectstore.Options{
		Driver:       cfg.StorageDriver,
		Endpoint:     cfg.StorageEndpoint,
		UsePathStyle: cfg.UsePathStyle,
	})
	if err != nil {
		return nil, err
	}

	return clientcli.NewSession(client, clientcli.NewLocalCache(cfg.FallbackPath), open), nil
}

// getTransfer creates a Transfer running on top of a session.
func getTransfer() (*clientcli.Transfer, error) {
	session, err := getSession()
	if err != nil {
		return nil, err
	}
	return clientcli.NewTransfer(session, nil), nil
}

// printSource warns when an operation was served from the fallback file.
func printSource(w io.Writer, source string) {
	if source == clientcli.SourceFallback {
		_, _ = fmt.Fprintln(w, "Configuration store unavailable; using local fallback file.")
	}
}

// exitError is returned when we want to exit with a specific code
// but don't want an error message printed.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return ""
}
