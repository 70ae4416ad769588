// Package miniostore implements s3manager.Bucket with minio-go for
// S3-compatible services.
package miniostore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/sagarc03/s3manager"
	"github.com/sagarc03/s3manager/metrics"
)

const driver = "minio"

// Options configures the service endpoint.
type Options struct {
	// Endpoint is the service URL, e.g. "https://minio.example.com". An empty
	// endpoint targets the regional AWS host.
	Endpoint string
	// UsePathStyle addresses buckets as /bucket/key.
	UsePathStyle bool
	// Transport overrides the HTTP transport.
	Transport http.RoundTripper
}

// Bucket is one user's bucket on an S3-compatible service.
type Bucket struct {
	client *minio.Client
	bucket string
}

// Open builds a client from the user's credentials. The region is pinned so
// no bucket location lookup is made.
func Open(_ context.Context, cfg s3manager.UserConfig, opts Options) (*Bucket, error) {
	if cfg.BucketName == "" {
		return nil, fmt.Errorf("open bucket: %w: bucket name is required", s3manager.ErrInvalidInput)
	}

	host, secure, err := parseEndpoint(opts.Endpoint, cfg.Region)
	if err != nil {
		return nil, fmt.Errorf("open bucket: %w", err)
	}

	options := &minio.Options{
		Creds:     credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretKey, ""),
		Secure:    secure,
		Region:    cfg.Region,
		Transport: opts.Transport,
	}
	if opts.UsePathStyle {
		options.BucketLookup = minio.BucketLookupPath
	}

	client, err := minio.New(host, options)
	if err != nil {
		return nil, fmt.Errorf("open bucket: create client: %w", err)
	}

	return &Bucket{client: client, bucket: cfg.BucketName}, nil
}

// Opener returns an s3manager.Opener using opts for every user.
func Opener(opts Options) s3manager.Opener {
	return func(ctx context.Context, cfg s3manager.UserConfig) (s3manager.Bucket, error) {
		return Open(ctx, cfg, opts)
	}
}

func parseEndpoint(endpoint, region string) (string, bool, error) {
	if endpoint == "" {
		if region != "" {
			return fmt.Sprintf("s3.%s.amazonaws.com", region), true, nil
		}
		return "s3.amazonaws.com", true, nil
	}

	if !strings.Contains(endpoint, "://") {
		return endpoint, true, nil
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return "", false, fmt.Errorf("parse endpoint %q: %w", endpoint, err)
	}
	if u.Host == "" {
		return "", false, fmt.Errorf("parse endpoint %q: missing host", endpoint)
	}

	return u.Host, u.Scheme == "https", nil
}

func (b *Bucket) List(ctx context.Context, prefix, delimiter string) (s3manager.ListOutput, error) {
	start := time.Now()

	var out s3manager.ListOutput
	for obj := range b.client.ListObjects(ctx, b.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: false,
	}) {
		if obj.Err != nil {
			metrics.RecordStorageOperation(driver, "list_objects", time.Since(start), false)
			return s3manager.ListOutput{}, fmt.Errorf("list %s: %w", prefix, obj.Err)
		}

		// Non-recursive listings report common prefixes as bare keys ending in
		// the delimiter. The marker of prefix itself is a real object.
		if strings.HasSuffix(obj.Key, delimiter) && obj.Key != prefix && obj.LastModified.IsZero() {
			out.CommonPrefixes = append(out.CommonPrefixes, obj.Key)
			continue
		}

		out.Objects = append(out.Objects, s3manager.ObjectEntry{
			Key:          obj.Key,
			Size:         obj.Size,
			LastModified: obj.LastModified,
		})
	}

	metrics.RecordStorageOperation(driver, "list_objects", time.Since(start), true)
	return out, nil
}

func (b *Bucket) Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error {
	start := time.Now()

	_, err := b.client.PutObject(ctx, b.bucket, key, body, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		metrics.RecordStorageOperation(driver, "put_object", time.Since(start), false)
		return fmt.Errorf("put object %s: %w", key, err)
	}

	metrics.RecordStorageOperation(driver, "put_object", time.Since(start), true)
	return nil
}

func (b *Bucket) Get(ctx context.Context, key string) (s3manager.Object, error) {
	start := time.Now()

	obj, err := b.client.GetObject(ctx, b.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		metrics.RecordStorageOperation(driver, "get_object", time.Since(start), false)
		return s3manager.Object{}, fmt.Errorf("get object %s: %w", key, mapError(err))
	}

	info, err := obj.Stat()
	if err != nil {
		_ = obj.Close()
		err = mapError(err)
		metrics.RecordStorageOperation(driver, "get_object", time.Since(start), errors.Is(err, s3manager.ErrNotFound))
		return s3manager.Object{}, fmt.Errorf("get object %s: %w", key, err)
	}

	metrics.RecordStorageOperation(driver, "get_object", time.Since(start), true)
	return s3manager.Object{
		Body:         obj,
		ContentType:  info.ContentType,
		LastModified: info.LastModified,
		Size:         info.Size,
	}, nil
}

func (b *Bucket) Delete(ctx context.Context, key string) error {
	start := time.Now()

	err := b.client.RemoveObject(ctx, b.bucket, key, minio.RemoveObjectOptions{})
	if err != nil && !errors.Is(mapError(err), s3manager.ErrNotFound) {
		metrics.RecordStorageOperation(driver, "delete_object", time.Since(start), false)
		return fmt.Errorf("delete object %s: %w", key, err)
	}

	metrics.RecordStorageOperation(driver, "delete_object", time.Since(start), true)
	return nil
}

func (b *Bucket) PresignPut(ctx context.Context, key, contentType string, ttl time.Duration) (string, error) {
	var u *url.URL
	var err error

	if contentType != "" {
		u, err = b.client.PresignHeader(ctx, http.MethodPut, b.bucket, key, ttl, nil,
			http.Header{"Content-Type": []string{contentType}})
	} else {
		u, err = b.client.PresignedPutObject(ctx, b.bucket, key, ttl)
	}
	if err != nil {
		return "", fmt.Errorf("presign put %s: %w", key, err)
	}

	return u.String(), nil
}

func (b *Bucket) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	u, err := b.client.PresignedGetObject(ctx, b.bucket, key, ttl, nil)
	if err != nil {
		return "", fmt.Errorf("presign get %s: %w", key, err)
	}

	return u.String(), nil
}

// Check verifies the bucket exists and the credentials can reach it.
func (b *Bucket) Check(ctx context.Context) error {
	start := time.Now()

	exists, err := b.client.BucketExists(ctx, b.bucket)
	if err != nil {
		metrics.RecordStorageOperation(driver, "head_bucket", time.Since(start), false)
		return fmt.Errorf("check bucket %s: %w", b.bucket, err)
	}

	metrics.RecordStorageOperation(driver, "head_bucket", time.Since(start), exists)
	if !exists {
		return fmt.Errorf("check bucket %s: %w", b.bucket, s3manager.ErrNotFound)
	}
	return nil
}

func mapError(err error) error {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NotFound":
		return s3manager.ErrNotFound
	}
	return err
}
