package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sagarc03/s3manager"
	"golang.org/x/sync/singleflight"
)

// Lazy is a ConfigRepo that connects on first use.
//
// A server can start while the datastore is down; requests fail with
// ErrStoreUnavailable until a connection attempt succeeds. Concurrent first
// calls share one attempt. Failed attempts are not cached.
type Lazy struct {
	cfg  Config
	open func(ctx context.Context, cfg Config) (Database, error)

	mu    sync.RWMutex
	db    Database
	group singleflight.Group
}

// NewLazy creates a Lazy handle. Nothing is dialed until the first call.
func NewLazy(cfg Config) *Lazy {
	return &Lazy{cfg: cfg, open: Open}
}

// NewLazyWithOpener is NewLazy with a custom open function.
func NewLazyWithOpener(cfg Config, open func(ctx context.Context, cfg Config) (Database, error)) *Lazy {
	return &Lazy{cfg: cfg, open: open}
}

func (l *Lazy) current() Database {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.db
}

// ConnectTimeout bounds one shared connection attempt.
const ConnectTimeout = 10 * time.Second

func (l *Lazy) repo(ctx context.Context) (s3manager.ConfigRepo, error) {
	if db := l.current(); db != nil {
		return db.GetRepo(), nil
	}

	// The shared attempt outlives the caller that started it; each caller
	// stops waiting when its own context ends.
	ch := l.group.DoChan("connect", func() (any, error) {
		connectCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ConnectTimeout)
		defer cancel()

		if db := l.current(); db != nil {
			return db, nil
		}

		db, err := l.open(connectCtx, l.cfg)
		if err != nil {
			slog.Warn("configuration store unavailable", "type", l.cfg.Type, "error", err)
			return nil, fmt.Errorf("%w: %w", s3manager.ErrStoreUnavailable, err)
		}

		l.mu.Lock()
		l.db = db
		l.mu.Unlock()

		slog.Info("configuration store connected", "type", l.cfg.Type)
		return db, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(Database).GetRepo(), nil
	}
}

func (l *Lazy) Get(ctx context.Context, userID string) (s3manager.UserConfig, error) {
	r, err := l.repo(ctx)
	if err != nil {
		return s3manager.UserConfig{}, fmt.Errorf("get: %w", err)
	}
	return r.Get(ctx, userID)
}

func (l *Lazy) Upsert(ctx context.Context, cfg s3manager.UserConfig) (s3manager.UserConfig, bool, error) {
	r, err := l.repo(ctx)
	if err != nil {
		return s3manager.UserConfig{}, false, fmt.Errorf("upsert: %w", err)
	}
	return r.Upsert(ctx, cfg)
}

func (l *Lazy) Delete(ctx context.Context, userID string) error {
	r, err := l.repo(ctx)
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	return r.Delete(ctx, userID)
}

func (l *Lazy) Exists(ctx context.Context, userID string) (bool, error) {
	r, err := l.repo(ctx)
	if err != nil {
		return false, fmt.Errorf("exists: %w", err)
	}
	return r.Exists(ctx, userID)
}

// Ping connects if needed and pings the datastore.
func (l *Lazy) Ping(ctx context.Context) error {
	r, err := l.repo(ctx)
	if err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	if err := r.Ping(ctx); err != nil {
		if errors.Is(err, s3manager.ErrStoreUnavailable) {
			return err
		}
		return fmt.Errorf("ping: %w: %w", s3manager.ErrStoreUnavailable, err)
	}
	return nil
}

// Close closes the underlying connection if one was opened.
func (l *Lazy) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.db == nil {
		return nil
	}
	err := l.db.Close()
	l.db = nil
	return err
}
