package main

import (
	"os"

	"github.com/spf13/cobra"
)

var mkdirPrefix string

var mkdirCmd = &cobra.Command{
	Use:   "mkdir <name>",
	Short: "Create a folder",
	Long: `Create a folder marker. The name is sanitized: spaces become dashes and
characters outside letters, digits, dash, underscore and dot are dropped.

Examples:
  s3manager-cli mkdir reports
  s3manager-cli mkdir "Q1 Results" --in reports/`,
	Args: cobra.ExactArgs(1),
	RunE: runMkdir,
}

func init() {
	mkdirCmd.Flags().StringVar(&mkdirPrefix, "in", "", "parent folder")
}

func runMkdir(cmd *cobra.Command, args []string) error {
	session, err := getSession()
	if err != nil {
		return err
	}

	folder, err := session.CreateFolder(cmd.Context(), folderPrefix(mkdirPrefix), args[0])
	if err != nil {
		return err
	}

	return getFormatter().FormatFolder(os.Stdout, folder)
}
