package main

import (
	"errors"
	"os"
	"strings"

	"github.com/sagarc03/s3manager"
	"github.com/sagarc03/s3manager/clientcli"
	"github.com/spf13/cobra"
)

var (
	urlPut         bool
	urlContentType string
)

var urlCmd = &cobra.Command{
	Use:   "url <key>",
	Short: "Print a presigned URL for an object",
	Long: `Print a presigned URL that grants temporary access to one object.
By default the URL allows GET; with --put it allows one upload instead.

Examples:
  s3manager-cli url reports/q1.pdf
  s3manager-cli url -q reports/q1.pdf | xargs curl -O
  s3manager-cli url --put --content-type text/csv exports/data.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runURL,
}

func init() {
	urlCmd.Flags().BoolVar(&urlPut, "put", false, "presign an upload instead of a download")
	urlCmd.Flags().StringVar(&urlContentType, "content-type", "", "content-type the upload must use")
}

func runURL(cmd *cobra.Command, args []string) error {
	key := args[0]

	session, err := getSession()
	if err != nil {
		return err
	}

	var signed s3manager.PresignedURL
	if urlPut {
		dir, name := splitKey(key)
		if name == "" {
			return errors.New("url: upload key must name a file")
		}
		signed, err = session.PresignUpload(cmd.Context(), s3manager.PresignRequest{
			Prefix:      dir,
			FileName:    name,
			ContentType: urlContentType,
		})
	} else {
		signed, err = session.PresignDownload(cmd.Context(), s3manager.PresignRequest{Key: key})
	}
	if err != nil {
		return err
	}

	return getFormatter().FormatURL(os.Stdout, signed)
}

// splitKey splits key into its folder prefix and file name.
func splitKey(key string) (string, string) {
	i := strings.LastIndex(key, s3manager.Delimiter)
	if i < 0 {
		return "", key
	}
	return key[:i+1], key[i+1:]
}

// folderPrefix normalizes a user-typed folder into a key prefix ending in
// the delimiter. The bucket root is the empty prefix.
func folderPrefix(folder string) string {
	p := clientcli.NormalizeLocalToRemotePath(folder)
	if p == "" {
		return ""
	}
	if !strings.HasSuffix(p, s3manager.Delimiter) {
		p += s3manager.Delimiter
	}
	return p
}
