package main

import (
	"os"

	"github.com/spf13/cobra"
)

var catCmd = &cobra.Command{
	Use:   "cat <key>",
	Short: "Print an object as text",
	Long: `Print the content of a text object. Large objects are refused by the
server; use download for those.

Examples:
  s3manager-cli cat notes/todo.md
  s3manager-cli cat config.json --json`,
	Args: cobra.ExactArgs(1),
	RunE: runCat,
}

func runCat(cmd *cobra.Command, args []string) error {
	session, err := getSession()
	if err != nil {
		return err
	}

	content, err := session.GetContent(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	return getFormatter().FormatContent(os.Stdout, content)
}
