package main

import (
	"os"

	"github.com/sagarc03/s3manager/clientcli"
	"github.com/spf13/cobra"
)

var (
	uploadRecursive   bool
	uploadContentType string
	uploadName        string
)

var uploadCmd = &cobra.Command{
	Use:   "upload <local-path> [folder]",
	Short: "Upload files to your bucket",
	Long: `Upload files straight to the bucket through presigned URLs. The file
body never passes through the s3manager server.

Examples:
  s3manager-cli upload ./file.txt
  s3manager-cli upload ./file.txt docs/
  s3manager-cli upload ./file.txt docs/ --name renamed.txt
  s3manager-cli upload -r ./images/ media/images/
  s3manager-cli upload --content-type application/json ./data config/`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().BoolVarP(&uploadRecursive, "recursive", "r", false, "upload directory recursively")
	uploadCmd.Flags().StringVar(&uploadContentType, "content-type", "", "override content-type")
	uploadCmd.Flags().StringVar(&uploadName, "name", "", "remote file name (default: local base name)")
}

func runUpload(cmd *cobra.Command, args []string) error {
	prefix := ""
	if len(args) > 1 {
		prefix = folderPrefix(args[1])
	}

	transfer, err := getTransfer()
	if err != nil {
		return err
	}

	results, err := transfer.Upload(cmd.Context(), clientcli.UploadOptions{
		LocalPath:   args[0],
		Prefix:      prefix,
		FileName:    uploadName,
		ContentType: uploadContentType,
		Recursive:   uploadRecursive,
	})
	if err != nil {
		return err
	}

	if err := getFormatter().FormatUpload(os.Stdout, results); err != nil {
		return err
	}

	if clientcli.HasUploadErrors(results) {
		return &exitError{code: 1}
	}

	return nil
}
