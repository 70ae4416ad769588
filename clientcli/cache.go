package clientcli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sagarc03/s3manager"
)

// CachedConfig is the configuration record kept in the fallback file.
// Unlike s3manager.UserConfig it serializes the secret, so the file is
// written with owner-only permissions.
type CachedConfig struct {
	AccessKeyID string    `json:"accessKeyId"`
	SecretKey   string    `json:"secretKey"`
	BucketName  string    `json:"bucketName"`
	Region      string    `json:"region"`
	SavedAt     time.Time `json:"savedAt"`
}

// CachedConfigFromInput builds a cache record from a configuration write.
func CachedConfigFromInput(in s3manager.ConfigInput) CachedConfig {
	return CachedConfig{
		AccessKeyID: strings.TrimSpace(in.AccessKeyID),
		SecretKey:   strings.TrimSpace(in.SecretKey),
		BucketName:  strings.TrimSpace(in.BucketName),
		Region:      strings.TrimSpace(in.Region),
		SavedAt:     time.Now().UTC(),
	}
}

// Input returns the record as a configuration write, for pushing it back to
// the server.
func (c CachedConfig) Input() s3manager.ConfigInput {
	return s3manager.ConfigInput{
		AccessKeyID: c.AccessKeyID,
		SecretKey:   c.SecretKey,
		BucketName:  c.BucketName,
		Region:      c.Region,
	}
}

// UserConfig returns the record as a resolved configuration.
func (c CachedConfig) UserConfig() s3manager.UserConfig {
	return s3manager.UserConfig{
		AccessKeyID: c.AccessKeyID,
		SecretKey:   c.SecretKey,
		BucketName:  c.BucketName,
		Region:      c.Region,
		CreatedAt:   c.SavedAt,
		UpdatedAt:   c.SavedAt,
	}
}

// missingFields reports which of the four required fields are empty.
func (c CachedConfig) missingFields() []string {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"accessKeyId", c.AccessKeyID},
		{"secretKey", c.SecretKey},
		{"bucketName", c.BucketName},
		{"region", c.Region},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

// Safe returns the caller-visible view of the record.
func (c CachedConfig) Safe() s3manager.SafeConfig {
	return c.UserConfig().Safe()
}

// LocalCache is a single-slot fallback file holding one configuration
// record. It is written only when the server reports its store as
// unavailable and is never reconciled automatically.
type LocalCache struct {
	path string
}

// NewLocalCache returns a cache stored at path.
// An empty path uses DefaultFallbackPath.
func NewLocalCache(path string) *LocalCache {
	if path == "" {
		path = DefaultFallbackPath()
	}
	return &LocalCache{path: filepath.Clean(path)}
}

// DefaultFallbackPath returns the default fallback file path (~/.s3manager/fallback.json).
func DefaultFallbackPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "fallback.json"
	}
	return filepath.Join(home, ".s3manager", "fallback.json")
}

// Path returns the file backing the cache.
func (c *LocalCache) Path() string {
	return c.path
}

// Save replaces the cached record. The file is replaced atomically.
// A record with any required field empty is rejected with
// s3manager.ErrInvalidInput and the existing file is left untouched.
func (c *LocalCache) Save(cfg CachedConfig) error {
	if missing := cfg.missingFields(); len(missing) > 0 {
		return fmt.Errorf("save cache: %w: missing %s", s3manager.ErrInvalidInput, strings.Join(missing, ", "))
	}

	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".fallback-*.json")
	if err != nil {
		return fmt.Errorf("create cache file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod cache file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close cache file: %w", err)
	}

	if err := os.Rename(tmpName, c.path); err != nil {
		return fmt.Errorf("replace cache file: %w", err)
	}

	return nil
}

// Get returns the cached record, or nil if there is none.
// A corrupt or incomplete file reads as no record.
func (c *LocalCache) Get() (*CachedConfig, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read cache file: %w", err)
	}

	var cfg CachedConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, nil
	}
	if len(cfg.missingFields()) > 0 {
		return nil, nil
	}

	return &cfg, nil
}

// Has reports whether a usable record is cached.
func (c *LocalCache) Has() bool {
	cfg, err := c.Get()
	return err == nil && cfg != nil
}

// Delete removes the cached record. Deleting an empty cache is not an error.
func (c *LocalCache) Delete() error {
	if err := os.Remove(c.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete cache file: %w", err)
	}
	return nil
}
