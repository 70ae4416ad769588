package main

import (
	"os"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "ls [prefix]",
	Aliases: []string{"list"},
	Short:   "List a folder of your bucket",
	Long: `List the immediate children of a folder. Folders are shown with a
trailing slash.

Examples:
  s3manager-cli ls
  s3manager-cli ls photos/
  s3manager-cli ls photos/2024/ --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runList,
}

func runList(cmd *cobra.Command, args []string) error {
	prefix := ""
	if len(args) > 0 {
		prefix = folderPrefix(args[0])
	}

	session, err := getSession()
	if err != nil {
		return err
	}

	items, err := session.List(cmd.Context(), prefix)
	if err != nil {
		return err
	}

	return getFormatter().FormatList(os.Stdout, items)
}
