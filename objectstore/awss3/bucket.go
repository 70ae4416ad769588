// Package awss3 implements s3manager.Bucket with aws-sdk-go-v2.
package awss3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/sagarc03/s3manager"
	"github.com/sagarc03/s3manager/metrics"
)

const driver = "aws"

// Options configures the service endpoint. The zero value targets AWS.
type Options struct {
	// Endpoint overrides the service URL, e.g. "http://localhost:9000".
	Endpoint string
	// UsePathStyle addresses buckets as /bucket/key instead of bucket.host/key.
	UsePathStyle bool
}

// Bucket is one user's bucket on an S3 API.
type Bucket struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
}

// Open builds a client from the user's credentials. No request is made.
func Open(ctx context.Context, cfg s3manager.UserConfig, opts Options) (*Bucket, error) {
	if cfg.BucketName == "" {
		return nil, fmt.Errorf("open bucket: %w: bucket name is required", s3manager.ErrInvalidInput)
	}

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("open bucket: load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
		o.UsePathStyle = opts.UsePathStyle
		// Presigned PUTs must not carry a checksum the browser or CLI cannot reproduce.
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
	})

	return &Bucket{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  cfg.BucketName,
	}, nil
}

// Opener returns an s3manager.Opener using opts for every user.
func Opener(opts Options) s3manager.Opener {
	return func(ctx context.Context, cfg s3manager.UserConfig) (s3manager.Bucket, error) {
		return Open(ctx, cfg, opts)
	}
}

func (b *Bucket) List(ctx context.Context, prefix, delimiter string) (s3manager.ListOutput, error) {
	start := time.Now()

	input := &s3.ListObjectsV2Input{
		Bucket:    aws.String(b.bucket),
		Delimiter: aws.String(delimiter),
	}
	if prefix != "" {
		input.Prefix = aws.String(prefix)
	}

	var out s3manager.ListOutput
	paginator := s3.NewListObjectsV2Paginator(b.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			metrics.RecordStorageOperation(driver, "list_objects", time.Since(start), false)
			return s3manager.ListOutput{}, fmt.Errorf("list %s: %w", prefix, err)
		}

		for _, p := range page.CommonPrefixes {
			out.CommonPrefixes = append(out.CommonPrefixes, aws.ToString(p.Prefix))
		}
		for _, obj := range page.Contents {
			out.Objects = append(out.Objects, s3manager.ObjectEntry{
				Key:          aws.ToString(obj.Key),
				Size:         aws.ToInt64(obj.Size),
				LastModified: aws.ToTime(obj.LastModified),
			})
		}
	}

	metrics.RecordStorageOperation(driver, "list_objects", time.Since(start), true)
	return out, nil
}

func (b *Bucket) Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error {
	start := time.Now()

	input := &s3.PutObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
		Body:   body,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if size >= 0 {
		input.ContentLength = aws.Int64(size)
	}

	if _, err := b.client.PutObject(ctx, input); err != nil {
		metrics.RecordStorageOperation(driver, "put_object", time.Since(start), false)
		return fmt.Errorf("put object %s: %w", key, err)
	}

	metrics.RecordStorageOperation(driver, "put_object", time.Since(start), true)
	return nil
}

func (b *Bucket) Get(ctx context.Context, key string) (s3manager.Object, error) {
	start := time.Now()

	result, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			metrics.RecordStorageOperation(driver, "get_object", time.Since(start), true)
			return s3manager.Object{}, fmt.Errorf("get object %s: %w", key, s3manager.ErrNotFound)
		}
		metrics.RecordStorageOperation(driver, "get_object", time.Since(start), false)
		return s3manager.Object{}, fmt.Errorf("get object %s: %w", key, err)
	}

	metrics.RecordStorageOperation(driver, "get_object", time.Since(start), true)
	return s3manager.Object{
		Body:         result.Body,
		ContentType:  aws.ToString(result.ContentType),
		LastModified: aws.ToTime(result.LastModified),
		Size:         aws.ToInt64(result.ContentLength),
	}, nil
}

func (b *Bucket) Delete(ctx context.Context, key string) error {
	start := time.Now()

	_, err := b.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	if err != nil && !isNotFound(err) {
		metrics.RecordStorageOperation(driver, "delete_object", time.Since(start), false)
		return fmt.Errorf("delete object %s: %w", key, err)
	}

	metrics.RecordStorageOperation(driver, "delete_object", time.Since(start), true)
	return nil
}

func (b *Bucket) PresignPut(ctx context.Context, key, contentType string, ttl time.Duration) (string, error) {
	input := &s3.PutObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	req, err := b.presign.PresignPutObject(ctx, input, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("presign put %s: %w", key, err)
	}

	return req.URL, nil
}

func (b *Bucket) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	req, err := b.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("presign get %s: %w", key, err)
	}

	return req.URL, nil
}

// Check verifies the bucket exists and the credentials can reach it.
func (b *Bucket) Check(ctx context.Context) error {
	start := time.Now()

	_, err := b.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(b.bucket)})
	if err != nil {
		metrics.RecordStorageOperation(driver, "head_bucket", time.Since(start), false)
		if isMissingBucket(err) {
			return fmt.Errorf("check bucket %s: %w", b.bucket, s3manager.ErrNotFound)
		}
		return fmt.Errorf("check bucket %s: %w", b.bucket, err)
	}

	metrics.RecordStorageOperation(driver, "head_bucket", time.Since(start), true)
	return nil
}

// isNotFound reports a missing key. A missing bucket is an upstream
// failure, not a missing object.
func isNotFound(err error) bool {
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}
	return false
}

// isMissingBucket reports a HeadBucket or bucket-level NoSuchBucket answer.
func isMissingBucket(err error) bool {
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return true
	}
	var noSuchBucket *types.NoSuchBucket
	if errors.As(err, &noSuchBucket) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchBucket":
			return true
		}
	}
	return false
}
