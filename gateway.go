package s3manager

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// FolderContentType is the content type of zero-length folder marker objects.
const FolderContentType = "application/x-directory"

// DefaultMaxContentBytes caps GetContent reads.
const DefaultMaxContentBytes = 10 << 20

// GatewayConfig holds configuration options for ObjectGateway.
type GatewayConfig struct {
	MaxContentBytes int64 // Largest object GetContent reads (default: 10 MiB)
}

// ObjectGateway performs folder-style operations on a user's bucket.
// Each call opens a fresh Bucket from the given configuration.
type ObjectGateway struct {
	open            Opener
	maxContentBytes int64
}

// NewObjectGateway creates an ObjectGateway that opens buckets with open.
func NewObjectGateway(open Opener, cfg GatewayConfig) (*ObjectGateway, error) {
	if open == nil {
		return nil, errors.New("new object gateway: opener cannot be nil")
	}
	maxBytes := cfg.MaxContentBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxContentBytes
	}
	return &ObjectGateway{open: open, maxContentBytes: maxBytes}, nil
}

// List returns the immediate children of prefix.
//
// Common prefixes become folder items named by their last non-empty segment.
// Leaf objects become file items named by their last segment; keys ending in
// the delimiter are folder markers and are skipped. Entries whose name would
// be empty are dropped.
func (g *ObjectGateway) List(ctx context.Context, cfg UserConfig, prefix string) ([]StorageItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("list objects: %w", err)
	}

	bucket, err := g.open(ctx, cfg)
	if err != nil {
		return nil, upstreamError("list objects", cfg, err)
	}

	out, err := bucket.List(ctx, prefix, Delimiter)
	if err != nil {
		return nil, upstreamError("list objects", cfg, err)
	}

	items := make([]StorageItem, 0, len(out.CommonPrefixes)+len(out.Objects))

	for _, p := range out.CommonPrefixes {
		name := FolderName(p)
		if name == "" {
			continue
		}
		items = append(items, StorageItem{Key: p, Type: ItemFolder, Name: name})
	}

	for _, obj := range out.Objects {
		if strings.HasSuffix(obj.Key, Delimiter) {
			continue
		}
		name := FileName(obj.Key)
		if name == "" {
			continue
		}
		size := obj.Size
		modified := obj.LastModified
		items = append(items, StorageItem{
			Key:          obj.Key,
			Type:         ItemFile,
			Name:         name,
			Size:         &size,
			LastModified: &modified,
		})
	}

	return items, nil
}

// CreateFolder writes a zero-length marker object at prefix + sanitized name + "/".
// Returns ErrInvalidName if nothing is left after sanitization.
func (g *ObjectGateway) CreateFolder(ctx context.Context, cfg UserConfig, prefix, name string) (FolderResult, error) {
	if err := ctx.Err(); err != nil {
		return FolderResult{}, fmt.Errorf("create folder: %w", err)
	}

	sanitized := SanitizeFolderName(name)
	if sanitized == "" {
		return FolderResult{}, fmt.Errorf("create folder %q: %w", name, ErrInvalidName)
	}

	key := prefix + sanitized + Delimiter

	bucket, err := g.open(ctx, cfg)
	if err != nil {
		return FolderResult{}, upstreamError("create folder", cfg, err)
	}

	if err := bucket.Put(ctx, key, FolderContentType, bytes.NewReader(nil), 0); err != nil {
		return FolderResult{}, upstreamError("create folder", cfg, err)
	}

	return FolderResult{Key: key, FolderName: sanitized}, nil
}

// DeleteObject removes key. Deleting a key that does not exist is not an error.
func (g *ObjectGateway) DeleteObject(ctx context.Context, cfg UserConfig, key string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("delete object: %w", err)
	}

	if key == "" {
		return fmt.Errorf("delete object: %w", ErrMissingKey)
	}

	bucket, err := g.open(ctx, cfg)
	if err != nil {
		return upstreamError("delete object", cfg, err)
	}

	if err := bucket.Delete(ctx, key); err != nil && !errors.Is(err, ErrNotFound) {
		return upstreamError("delete object", cfg, err)
	}

	return nil
}

// GetContent reads the object at key as text.
// Returns ErrNotFound if the object is missing or its body is empty, and
// ErrInvalidInput if it is larger than the configured limit.
func (g *ObjectGateway) GetContent(ctx context.Context, cfg UserConfig, key string) (ObjectContent, error) {
	if err := ctx.Err(); err != nil {
		return ObjectContent{}, fmt.Errorf("get content: %w", err)
	}

	if key == "" {
		return ObjectContent{}, fmt.Errorf("get content: %w", ErrMissingKey)
	}

	bucket, err := g.open(ctx, cfg)
	if err != nil {
		return ObjectContent{}, upstreamError("get content", cfg, err)
	}

	obj, err := bucket.Get(ctx, key)
	if err != nil {
		return ObjectContent{}, upstreamError("get content", cfg, err)
	}
	if obj.Body == nil {
		return ObjectContent{}, fmt.Errorf("get content %s: %w", key, ErrNotFound)
	}
	defer func() { _ = obj.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(obj.Body, g.maxContentBytes+1))
	if err != nil {
		return ObjectContent{}, upstreamError("get content", cfg, err)
	}

	if int64(len(data)) > g.maxContentBytes {
		return ObjectContent{}, fmt.Errorf("get content %s: %w: object exceeds %d bytes", key, ErrInvalidInput, g.maxContentBytes)
	}

	if len(data) == 0 {
		return ObjectContent{}, fmt.Errorf("get content %s: %w", key, ErrNotFound)
	}

	return ObjectContent{
		Content:      string(data),
		ContentType:  obj.ContentType,
		LastModified: obj.LastModified,
	}, nil
}

// upstreamError classifies a bucket failure. Missing objects keep ErrNotFound,
// cancellations pass through, everything else becomes ErrUpstream with the
// secret key scrubbed from the message.
func upstreamError(op string, cfg UserConfig, err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %s", op, ErrUpstream, Redact(err.Error(), cfg.SecretKey))
}
