package clientcli

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sagarc03/s3manager"
)

// Source names where a configuration or operation was served from.
const (
	SourceServer   = "server"
	SourceFallback = "fallback"
)

// Session combines the server client with the fallback file. Only
// ErrStoreUnavailable from the server switches it to the fallback; every
// other error, including a missing configuration, is returned as-is.
type Session struct {
	client *Client
	cache  *LocalCache
	open   s3manager.Opener

	mu    sync.Mutex
	local *LocalBackend
}

// NewSession creates a Session. open is used to reach the bucket directly
// while in fallback mode.
func NewSession(client *Client, cache *LocalCache, open s3manager.Opener) *Session {
	return &Session{client: client, cache: cache, open: open}
}

// SaveConfig stores in on the server, or in the fallback file when the
// server's store is unavailable. Returns the source that took the write.
func (s *Session) SaveConfig(ctx context.Context, in s3manager.ConfigInput) (string, error) {
	err := s.client.SaveConfig(ctx, in)
	if err == nil {
		return SourceServer, nil
	}
	if !errors.Is(err, ErrStoreUnavailable) {
		return "", err
	}

	record, err := s.fallbackRecord(in)
	if err != nil {
		return "", fmt.Errorf("save fallback: %w", err)
	}
	if saveErr := s.cache.Save(record); saveErr != nil {
		return "", fmt.Errorf("save fallback: %w", saveErr)
	}

	s.mu.Lock()
	s.local = nil
	s.mu.Unlock()

	return SourceFallback, nil
}

// fallbackRecord builds the record written to the fallback file. An empty
// secret keeps the one already cached; without a cached secret the write is
// rejected with s3manager.ErrInvalidInput.
func (s *Session) fallbackRecord(in s3manager.ConfigInput) (CachedConfig, error) {
	record := CachedConfigFromInput(in)
	if record.SecretKey != "" {
		return record, nil
	}

	cached, err := s.cache.Get()
	if err != nil {
		return CachedConfig{}, err
	}
	if cached == nil {
		return CachedConfig{}, fmt.Errorf("%w: missing secretKey", s3manager.ErrInvalidInput)
	}

	record.SecretKey = cached.SecretKey
	return record, nil
}

// ShowConfig returns the stored configuration and where it came from.
func (s *Session) ShowConfig(ctx context.Context) (s3manager.SafeConfig, string, error) {
	cfg, err := s.client.GetConfig(ctx)
	if err == nil {
		return cfg, SourceServer, nil
	}
	if !errors.Is(err, ErrStoreUnavailable) {
		return s3manager.SafeConfig{}, "", err
	}

	cached, cacheErr := s.cache.Get()
	if cacheErr != nil {
		return s3manager.SafeConfig{}, "", fmt.Errorf("read fallback: %w", cacheErr)
	}
	if cached == nil {
		return s3manager.SafeConfig{}, "", fmt.Errorf("%w: %w", ErrNoFallback, err)
	}
	return cached.Safe(), SourceFallback, nil
}

// DeleteConfig removes the server configuration. When the server's store is
// unavailable the fallback file is cleared instead.
func (s *Session) DeleteConfig(ctx context.Context) (string, error) {
	err := s.client.DeleteConfig(ctx)
	if err == nil {
		return SourceServer, nil
	}
	if !errors.Is(err, ErrStoreUnavailable) {
		return "", err
	}
	if delErr := s.cache.Delete(); delErr != nil {
		return "", delErr
	}
	return SourceFallback, nil
}

// Push re-saves the fallback record to the server and clears the file once
// the server accepted it.
func (s *Session) Push(ctx context.Context) error {
	cached, err := s.cache.Get()
	if err != nil {
		return fmt.Errorf("push: read fallback: %w", err)
	}
	if cached == nil {
		return fmt.Errorf("push: %w", ErrNoFallback)
	}

	if err := s.client.SaveConfig(ctx, cached.Input()); err != nil {
		return fmt.Errorf("push: %w", err)
	}

	if err := s.cache.Delete(); err != nil {
		return fmt.Errorf("push: %w", err)
	}
	return nil
}

// localBackend builds the in-process backend from the fallback file.
func (s *Session) localBackend() (*LocalBackend, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.local != nil {
		return s.local, nil
	}

	cached, err := s.cache.Get()
	if err != nil {
		return nil, fmt.Errorf("read fallback: %w", err)
	}
	if cached == nil {
		return nil, ErrNoFallback
	}

	local, err := NewLocalBackend(*cached, s.open)
	if err != nil {
		return nil, err
	}
	s.local = local
	return local, nil
}

// fallback runs remote, and local in its place when the server reports its
// store as unavailable.
func fallback[T any](s *Session, remote func() (T, error), local func(*LocalBackend) (T, error)) (T, error) {
	out, err := remote()
	if err == nil || !errors.Is(err, ErrStoreUnavailable) {
		return out, err
	}

	lb, lbErr := s.localBackend()
	if lbErr != nil {
		var zero T
		return zero, fmt.Errorf("%w: %w", lbErr, err)
	}
	return local(lb)
}

func (s *Session) List(ctx context.Context, prefix string) ([]s3manager.StorageItem, error) {
	return fallback(s,
		func() ([]s3manager.StorageItem, error) { return s.client.List(ctx, prefix) },
		func(lb *LocalBackend) ([]s3manager.StorageItem, error) { return lb.List(ctx, prefix) })
}

func (s *Session) GetContent(ctx context.Context, key string) (s3manager.ObjectContent, error) {
	return fallback(s,
		func() (s3manager.ObjectContent, error) { return s.client.GetContent(ctx, key) },
		func(lb *LocalBackend) (s3manager.ObjectContent, error) { return lb.GetContent(ctx, key) })
}

func (s *Session) CreateFolder(ctx context.Context, prefix, name string) (s3manager.FolderResult, error) {
	return fallback(s,
		func() (s3manager.FolderResult, error) { return s.client.CreateFolder(ctx, prefix, name) },
		func(lb *LocalBackend) (s3manager.FolderResult, error) { return lb.CreateFolder(ctx, prefix, name) })
}

func (s *Session) DeleteObject(ctx context.Context, key string) error {
	_, err := fallback(s,
		func() (struct{}, error) { return struct{}{}, s.client.DeleteObject(ctx, key) },
		func(lb *LocalBackend) (struct{}, error) { return struct{}{}, lb.DeleteObject(ctx, key) })
	return err
}

func (s *Session) PresignUpload(ctx context.Context, req s3manager.PresignRequest) (s3manager.PresignedURL, error) {
	return fallback(s,
		func() (s3manager.PresignedURL, error) { return s.client.PresignUpload(ctx, req) },
		func(lb *LocalBackend) (s3manager.PresignedURL, error) { return lb.PresignUpload(ctx, req) })
}

func (s *Session) PresignDownload(ctx context.Context, req s3manager.PresignRequest) (s3manager.PresignedURL, error) {
	return fallback(s,
		func() (s3manager.PresignedURL, error) { return s.client.PresignDownload(ctx, req) },
		func(lb *LocalBackend) (s3manager.PresignedURL, error) { return lb.PresignDownload(ctx, req) })
}
