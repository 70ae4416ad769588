package main

import (
	"os"

	"github.com/sagarc03/s3manager/clientcli"
	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:     "rm <key> [key...]",
	Aliases: []string{"delete"},
	Short:   "Delete objects from your bucket",
	Long: `Delete one or more objects. Deleting a key that does not exist is not
an error. A folder is removed by deleting its marker key (ending in "/").

Examples:
  s3manager-cli rm path/file.txt
  s3manager-cli rm old/a.txt old/b.txt old/c.txt
  s3manager-cli rm -q temp/file.txt`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDelete,
}

func runDelete(cmd *cobra.Command, args []string) error {
	transfer, err := getTransfer()
	if err != nil {
		return err
	}

	results, err := transfer.Delete(cmd.Context(), clientcli.DeleteOptions{Keys: args})
	if err != nil {
		return err
	}

	if err := getFormatter().FormatDelete(os.Stdout, results); err != nil {
		return err
	}

	if clientcli.HasDeleteErrors(results) {
		return &exitError{code: 1}
	}

	return nil
}
