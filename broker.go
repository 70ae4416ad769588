package s3manager

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

const (
	// DefaultUploadTTL is how long a presigned upload URL stays valid.
	DefaultUploadTTL = 5 * time.Minute
	// DefaultDownloadTTL is how long a presigned download URL stays valid.
	DefaultDownloadTTL = time.Hour
)

// BrokerConfig holds configuration options for UploadBroker.
type BrokerConfig struct {
	UploadTTL   time.Duration // default: 5m
	DownloadTTL time.Duration // default: 1h
}

// UploadBroker issues presigned URLs so object bodies travel directly between
// the client and the storage service. Expiry is enforced by the service.
type UploadBroker struct {
	open        Opener
	uploadTTL   time.Duration
	downloadTTL time.Duration
	now         func() time.Time
}

// NewUploadBroker creates an UploadBroker. The upload window must be shorter
// than the download window.
func NewUploadBroker(open Opener, cfg BrokerConfig) (*UploadBroker, error) {
	if open == nil {
		return nil, errors.New("new upload broker: opener cannot be nil")
	}

	uploadTTL := cfg.UploadTTL
	if uploadTTL <= 0 {
		uploadTTL = DefaultUploadTTL
	}
	downloadTTL := cfg.DownloadTTL
	if downloadTTL <= 0 {
		downloadTTL = DefaultDownloadTTL
	}

	if uploadTTL >= downloadTTL {
		return nil, fmt.Errorf("new upload broker: upload ttl %s must be shorter than download ttl %s", uploadTTL, downloadTTL)
	}

	return &UploadBroker{
		open:        open,
		uploadTTL:   uploadTTL,
		downloadTTL: downloadTTL,
		now:         time.Now,
	}, nil
}

// UploadTTL returns the validity window of upload URLs.
func (b *UploadBroker) UploadTTL() time.Duration { return b.uploadTTL }

// DownloadTTL returns the validity window of download URLs.
func (b *UploadBroker) DownloadTTL() time.Duration { return b.downloadTTL }

// PresignUpload returns a PUT URL for the key resolved from req.
// Returns ErrInvalidInput if no key can be resolved.
func (b *UploadBroker) PresignUpload(ctx context.Context, cfg UserConfig, req PresignRequest) (PresignedURL, error) {
	if err := ctx.Err(); err != nil {
		return PresignedURL{}, fmt.Errorf("presign upload: %w", err)
	}

	key, ok := ResolveKey(req)
	if !ok {
		return PresignedURL{}, fmt.Errorf("presign upload: %w: file name is required", ErrInvalidInput)
	}

	bucket, err := b.open(ctx, cfg)
	if err != nil {
		return PresignedURL{}, upstreamError("presign upload", cfg, err)
	}

	issued := b.now()
	url, err := bucket.PresignPut(ctx, key, req.ContentType, b.uploadTTL)
	if err != nil {
		return PresignedURL{}, upstreamError("presign upload", cfg, err)
	}

	return PresignedURL{
		URL:       url,
		Key:       key,
		Method:    http.MethodPut,
		ExpiresAt: issued.Add(b.uploadTTL),
	}, nil
}

// PresignDownload returns a GET URL for the key resolved from req.
// Returns ErrInvalidInput if no key can be resolved.
func (b *UploadBroker) PresignDownload(ctx context.Context, cfg UserConfig, req PresignRequest) (PresignedURL, error) {
	if err := ctx.Err(); err != nil {
		return PresignedURL{}, fmt.Errorf("presign download: %w", err)
	}

	key, ok := ResolveKey(req)
	if !ok {
		return PresignedURL{}, fmt.Errorf("presign download: %w: key or file name is required", ErrInvalidInput)
	}

	bucket, err := b.open(ctx, cfg)
	if err != nil {
		return PresignedURL{}, upstreamError("presign download", cfg, err)
	}

	issued := b.now()
	url, err := bucket.PresignGet(ctx, key, b.downloadTTL)
	if err != nil {
		return PresignedURL{}, upstreamError("presign download", cfg, err)
	}

	return PresignedURL{
		URL:       url,
		Key:       key,
		Method:    http.MethodGet,
		ExpiresAt: issued.Add(b.downloadTTL),
	}, nil
}
