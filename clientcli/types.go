package clientcli

import (
	"context"

	"github.com/sagarc03/s3manager"
)

// Backend is the set of bucket operations the CLI performs. Client runs them
// through the server; LocalBackend runs them in-process from a cached record.
type Backend interface {
	List(ctx context.Context, prefix string) ([]s3manager.StorageItem, error)
	GetContent(ctx context.Context, key string) (s3manager.ObjectContent, error)
	CreateFolder(ctx context.Context, prefix, name string) (s3manager.FolderResult, error)
	DeleteObject(ctx context.Context, key string) error
	PresignUpload(ctx context.Context, req s3manager.PresignRequest) (s3manager.PresignedURL, error)
	PresignDownload(ctx context.Context, req s3manager.PresignRequest) (s3manager.PresignedURL, error)
}

// UploadOptions configures an upload operation.
type UploadOptions struct {
	LocalPath   string
	Prefix      string // remote folder, e.g. "docs/"
	FileName    string // optional, defaults to the local base name
	ContentType string // optional, auto-detect if empty
	Recursive   bool
}

// UploadResult represents the result of uploading a single file.
type UploadResult struct {
	LocalPath   string `json:"local_path"`
	Key         string `json:"key"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size_bytes"`
	Err         error  `json:"-"` // nil on success
}

// DownloadOptions configures a download operation.
type DownloadOptions struct {
	Key       string
	LocalPath string // empty = derive from key, "-" = stdout
}

// DownloadResult represents the result of downloading a file.
type DownloadResult struct {
	Key         string `json:"key"`
	LocalPath   string `json:"local_path"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size_bytes"`
}

// DeleteOptions configures a delete operation.
type DeleteOptions struct {
	Keys []string
}

// DeleteResult represents the result of deleting a single object.
type DeleteResult struct {
	Key     string `json:"key"`
	Deleted bool   `json:"deleted"`
	Err     error  `json:"-"` // nil on success
}

// HasDeleteErrors returns true if any delete operation failed.
func HasDeleteErrors(results []DeleteResult) bool {
	for _, r := range results {
		if r.Err != nil {
			return true
		}
	}
	return false
}

// HasUploadErrors returns true if any upload failed.
func HasUploadErrors(results []UploadResult) bool {
	for _, r := range results {
		if r.Err != nil {
			return true
		}
	}
	return false
}

var (
	_ Backend = (*Client)(nil)
	_ Backend = (*LocalBackend)(nil)
	_ Backend = (*Session)(nil)
)
