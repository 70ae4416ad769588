package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/sagarc03/s3manager"
	"github.com/sagarc03/s3manager/clientcli"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the bucket configuration stored for you",
	Long: `Manage the S3 bucket configuration the server stores for your account.

When the server reports its configuration store as unavailable, set writes
the record to a local fallback file instead and show reads it from there.
The fallback file is never synced automatically; run 'config push' once the
server is healthy again.`,
}

var configSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Save your bucket configuration",
	Long: `Save the access key, secret key, bucket and region used for your bucket.

Values not given as flags are prompted for. The secret key is never echoed.
When a configuration is already saved the secret may be left empty to keep
the stored one.

Examples:
  s3manager-cli config set
  s3manager-cli config set --bucket my-bucket --region eu-west-1 --access-key AKIA...`,
	Args: cobra.NoArgs,
	RunE: runConfigSet,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show your bucket configuration",
	Long:  `Show the stored configuration. The secret key is never displayed.`,
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete your bucket configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigDelete,
}

var configPushCmd = &cobra.Command{
	Use:   "push",
	Short: "Move the local fallback record to the server",
	Long: `Save the record kept in the local fallback file to the server and
remove the file once the server accepted it.`,
	Args: cobra.NoArgs,
	RunE: runConfigPush,
}

var (
	configAccessKey string
	configSecretKey string
	configBucket    string
	configRegion    string
	configYes       bool
)

func init() {
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configDeleteCmd)
	configCmd.AddCommand(configPushCmd)

	configSetCmd.Flags().StringVar(&configAccessKey, "access-key", "", "access key ID")
	configSetCmd.Flags().StringVar(&configSecretKey, "secret-key", "", "secret access key (prompted if omitted)")
	configSetCmd.Flags().StringVar(&configBucket, "bucket", "", "bucket name")
	configSetCmd.Flags().StringVar(&configRegion, "region", "", "bucket region")

	configDeleteCmd.Flags().BoolVarP(&configYes, "yes", "y", false, "skip confirmation")
}

func runConfigSet(cmd *cobra.Command, _ []string) error {
	session, err := getSession()
	if err != nil {
		return err
	}

	in := s3manager.ConfigInput{
		AccessKeyID: configAccessKey,
		SecretKey:   configSecretKey,
		BucketName:  configBucket,
		Region:      configRegion,
	}

	secretLabel := "Secret Access Key"
	secretValidate := requiredField(secretLabel)
	if in.SecretKey == "" && hasStoredSecret(cmd.Context(), session) {
		secretLabel = "Secret Access Key (leave empty to keep)"
		secretValidate = nil
	}

	fields := []struct {
		label    string
		target   *string
		mask     rune
		validate promptui.ValidateFunc
	}{
		{"Access Key ID", &in.AccessKeyID, 0, requiredField("Access Key ID")},
		{secretLabel, &in.SecretKey, '*', secretValidate},
		{"Bucket Name", &in.BucketName, 0, requiredField("Bucket Name")},
		{"Region", &in.Region, 0, requiredField("Region")},
	}
	for _, f := range fields {
		if *f.target != "" {
			continue
		}
		prompt := promptui.Prompt{
			Label:    f.label,
			Mask:     f.mask,
			Validate: f.validate,
		}
		value, promptErr := prompt.Run()
		if promptErr != nil {
			return handlePromptError(promptErr)
		}
		*f.target = strings.TrimSpace(value)
	}

	source, err := session.SaveConfig(cmd.Context(), in)
	if err != nil {
		return err
	}

	printSource(os.Stderr, source)
	return getFormatter().FormatMessage(os.Stdout, "Configuration saved successfully")
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	session, err := getSession()
	if err != nil {
		return err
	}

	cfg, source, err := session.ShowConfig(cmd.Context())
	if err != nil {
		if errors.Is(err, clientcli.ErrConfigMissing) {
			return errors.New("no bucket configuration saved; run 's3manager-cli config set'")
		}
		return err
	}

	return getFormatter().FormatConfig(os.Stdout, cfg, source)
}

func runConfigDelete(cmd *cobra.Command, _ []string) error {
	if !configYes {
		prompt := promptui.Prompt{
			Label:     "Delete your bucket configuration",
			IsConfirm: true,
		}
		if _, promptErr := prompt.Run(); promptErr != nil {
			fmt.Println("Cancelled.")
			return nil //nolint:nilerr // User cancelled, not an error
		}
	}

	session, err := getSession()
	if err != nil {
		return err
	}

	source, err := session.DeleteConfig(cmd.Context())
	if err != nil {
		return err
	}

	printSource(os.Stderr, source)
	return getFormatter().FormatMessage(os.Stdout, "Configuration deleted successfully")
}

func runConfigPush(cmd *cobra.Command, _ []string) error {
	session, err := getSession()
	if err != nil {
		return err
	}

	if err := session.Push(cmd.Context()); err != nil {
		if errors.Is(err, clientcli.ErrNoFallback) {
			return getFormatter().FormatMessage(os.Stdout, "Nothing to push: no local fallback record.")
		}
		return err
	}

	return getFormatter().FormatMessage(os.Stdout, "Fallback record saved to server and removed locally")
}

// hasStoredSecret reports whether a saved configuration, on the server or in
// the fallback file, already holds a secret key.
func hasStoredSecret(ctx context.Context, session *clientcli.Session) bool {
	cfg, _, err := session.ShowConfig(ctx)
	return err == nil && cfg.HasSecretKey
}

func requiredField(label string) promptui.ValidateFunc {
	return func(input string) error {
		if strings.TrimSpace(input) == "" {
			return fmt.Errorf("%s is required", label)
		}
		return nil
	}
}
