// Package sqlite implements s3manager.ConfigRepo using SQLite
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sagarc03/s3manager"
)

type repo struct {
	db        *sql.DB
	tableName string
}

// NewRepo creates a ConfigRepo on an open database handle.
func NewRepo(db *sql.DB, tables s3manager.Tables) (s3manager.ConfigRepo, error) {
	if err := tables.Validate(); err != nil {
		return nil, fmt.Errorf("new repo: %w", err)
	}
	return &repo{db: db, tableName: tables.UserConfigs}, nil
}

func (r *repo) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping: %w: %w", s3manager.ErrStoreUnavailable, err)
	}
	return nil
}

func (r *repo) Get(ctx context.Context, userID string) (s3manager.UserConfig, error) {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`SELECT id, user_id, access_key_id, secret_key, bucket_name, region, created_at, updated_at
		FROM %s
		WHERE user_id = ?`, quoteIdentifier(r.tableName))

	var c s3manager.UserConfig
	var idStr string
	var createdAt, updatedAt string

	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&idStr, &c.UserID, &c.AccessKeyID, &c.SecretKey, &c.BucketName, &c.Region, &createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return s3manager.UserConfig{}, s3manager.ErrNotFound
		}
		return s3manager.UserConfig{}, fmt.Errorf("get: %w: %w", s3manager.ErrStoreUnavailable, err)
	}

	c.ID, err = uuid.Parse(idStr)
	if err != nil {
		return s3manager.UserConfig{}, fmt.Errorf("get: parse uuid: %w", err)
	}

	c.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return s3manager.UserConfig{}, fmt.Errorf("get: parse created_at: %w", err)
	}

	c.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt)
	if err != nil {
		return s3manager.UserConfig{}, fmt.Errorf("get: parse updated_at: %w", err)
	}

	return c, nil
}

func (r *repo) Upsert(ctx context.Context, cfg s3manager.UserConfig) (s3manager.UserConfig, bool, error) {
	exists, err := r.Exists(ctx, cfg.UserID)
	if err != nil {
		return s3manager.UserConfig{}, false, fmt.Errorf("upsert: %w", err)
	}

	now := cfg.UpdatedAt
	if now.IsZero() {
		now = time.Now()
	}
	ts := now.UTC().Format(time.RFC3339Nano)

	// ON CONFLICT keeps the row unique when two writers race past the check above.
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`INSERT INTO %s (id, user_id, access_key_id, secret_key, bucket_name, region, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE
		SET access_key_id = excluded.access_key_id,
			secret_key = excluded.secret_key,
			bucket_name = excluded.bucket_name,
			region = excluded.region,
			updated_at = excluded.updated_at`, quoteIdentifier(r.tableName))

	_, err = r.db.ExecContext(ctx, query,
		uuid.New().String(), cfg.UserID, cfg.AccessKeyID, cfg.SecretKey, cfg.BucketName, cfg.Region, ts, ts,
	)
	if err != nil {
		return s3manager.UserConfig{}, false, fmt.Errorf("upsert: %w: %w", s3manager.ErrStoreUnavailable, err)
	}

	saved, err := r.Get(ctx, cfg.UserID)
	if err != nil {
		return s3manager.UserConfig{}, false, fmt.Errorf("upsert: read back: %w", err)
	}

	return saved, !exists, nil
}

func (r *repo) Delete(ctx context.Context, userID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE user_id = ?`, quoteIdentifier(r.tableName)) //nolint:gosec // table name is validated

	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("delete: %w: %w", s3manager.ErrStoreUnavailable, err)
	}

	return nil
}

func (r *repo) Exists(ctx context.Context, userID string) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE user_id = ?)`, quoteIdentifier(r.tableName)) //nolint:gosec // table name is validated

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("exists: %w: %w", s3manager.ErrStoreUnavailable, err)
	}

	return exists, nil
}
