package s3manager

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// UserConfig is the stored bucket configuration of one user.
// SecretKey is excluded from JSON encoding; use Safe for anything that is
// returned to a caller.
type UserConfig struct {
	ID          uuid.UUID `json:"id"`
	UserID      string    `json:"user_id"`
	AccessKeyID string    `json:"access_key_id"`
	SecretKey   string    `json:"-"`
	BucketName  string    `json:"bucket_name"`
	Region      string    `json:"region"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Safe returns the read projection of the configuration.
func (c UserConfig) Safe() SafeConfig {
	return SafeConfig{
		AccessKeyID:  c.AccessKeyID,
		BucketName:   c.BucketName,
		Region:       c.Region,
		HasSecretKey: c.SecretKey != "",
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

// SafeConfig is the caller-visible view of a UserConfig. It has no secret field.
type SafeConfig struct {
	AccessKeyID  string    `json:"accessKeyId"`
	BucketName   string    `json:"bucketName"`
	Region       string    `json:"region"`
	HasSecretKey bool      `json:"hasSecretKey"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ConfigInput is a configuration write request. An empty SecretKey on update
// keeps the stored secret.
type ConfigInput struct {
	AccessKeyID string `json:"accessKeyId"`
	SecretKey   string `json:"secretKey"`
	BucketName  string `json:"bucketName"`
	Region      string `json:"region"`
}

func (in ConfigInput) normalized() ConfigInput {
	return ConfigInput{
		AccessKeyID: strings.TrimSpace(in.AccessKeyID),
		SecretKey:   strings.TrimSpace(in.SecretKey),
		BucketName:  strings.TrimSpace(in.BucketName),
		Region:      strings.TrimSpace(in.Region),
	}
}

// missingFields reports required fields that are empty, excluding the secret.
func (in ConfigInput) missingFields() []string {
	var missing []string
	if in.AccessKeyID == "" {
		missing = append(missing, "accessKeyId")
	}
	if in.BucketName == "" {
		missing = append(missing, "bucketName")
	}
	if in.Region == "" {
		missing = append(missing, "region")
	}
	return missing
}

type ItemType string

const (
	ItemFolder ItemType = "folder"
	ItemFile   ItemType = "file"
)

// StorageItem is one entry of a folder listing. Folders carry no size or
// modification time.
type StorageItem struct {
	Key          string     `json:"key"`
	Type         ItemType   `json:"type"`
	Name         string     `json:"name"`
	Size         *int64     `json:"size,omitempty"`
	LastModified *time.Time `json:"lastModified,omitempty"`
}

// ObjectEntry is a leaf object returned by a bucket listing.
type ObjectEntry struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// ListOutput is the result of a delimited bucket listing.
type ListOutput struct {
	CommonPrefixes []string
	Objects        []ObjectEntry
}

// Object is an open object body. The caller must close Body.
type Object struct {
	Body         io.ReadCloser
	ContentType  string
	LastModified time.Time
	Size         int64
}

// ObjectContent is an object read fully as text.
type ObjectContent struct {
	Content      string    `json:"content"`
	ContentType  string    `json:"contentType"`
	LastModified time.Time `json:"lastModified"`
}

// FolderResult describes a created folder marker.
type FolderResult struct {
	Key        string `json:"key"`
	FolderName string `json:"folderName"`
}

// PresignRequest names the object a presigned URL is issued for.
// Key takes precedence over Prefix+FileName.
type PresignRequest struct {
	Key         string
	Prefix      string
	FileName    string
	ContentType string
}

// PresignedURL is a time-limited URL scoped to one key and one method.
type PresignedURL struct {
	URL       string    `json:"url"`
	Key       string    `json:"key"`
	Method    string    `json:"method"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Tables holds configurable table names for configuration storage.
// This allows multi-tenant deployments to use different table names.
type Tables struct {
	UserConfigs string `mapstructure:"user_configs"`
}

var validTableNameRegex = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// IsValidTableName checks if a table name is valid (lowercase, alphanumeric with underscores, max 63 chars).
func IsValidTableName(name string) bool {
	return validTableNameRegex.MatchString(name) && len(name) <= 63
}

// Validate checks that all required table names are set and valid.
func (t Tables) Validate() error {
	if t.UserConfigs == "" {
		return errors.New("validate tables: user configs table name cannot be empty")
	}

	if !IsValidTableName(t.UserConfigs) {
		return fmt.Errorf("validate tables: invalid user configs table name: %s (must match ^[a-z_][a-z0-9_]*$ and be <= 63 chars)", t.UserConfigs)
	}

	return nil
}
