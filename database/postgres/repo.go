// Package postgres implements s3manager.ConfigRepo on PostgreSQL using pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sagarc03/s3manager"
)

// Tables is an alias for s3manager.Tables for package compatibility.
type Tables = s3manager.Tables

type Repo struct {
	pool      *pgxpool.Pool
	tableName string
}

func NewRepo(pool *pgxpool.Pool, tables Tables) (*Repo, error) {
	if err := tables.Validate(); err != nil {
		return nil, fmt.Errorf("new repo: %w", err)
	}

	return &Repo{pool: pool, tableName: tables.UserConfigs}, nil
}

// Ping verifies database connectivity
func (r *Repo) Ping(ctx context.Context) error {
	if err := r.pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w: %w", s3manager.ErrStoreUnavailable, err)
	}
	return nil
}

func (r *Repo) Get(ctx context.Context, userID string) (s3manager.UserConfig, error) {
	query := fmt.Sprintf(`
		SELECT id, user_id, access_key_id, secret_key, bucket_name, region, created_at, updated_at
		FROM %s
		WHERE user_id = $1
	`, r.tableName)

	var c s3manager.UserConfig
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&c.ID, &c.UserID, &c.AccessKeyID, &c.SecretKey, &c.BucketName, &c.Region, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return s3manager.UserConfig{}, s3manager.ErrNotFound
		}
		return s3manager.UserConfig{}, fmt.Errorf("get: %w: %w", s3manager.ErrStoreUnavailable, err)
	}

	c.CreatedAt = c.CreatedAt.UTC()
	c.UpdatedAt = c.UpdatedAt.UTC()

	return c, nil
}

func (r *Repo) Upsert(ctx context.Context, cfg s3manager.UserConfig) (s3manager.UserConfig, bool, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (user_id, access_key_id, secret_key, bucket_name, region, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (user_id) DO UPDATE
		SET access_key_id = EXCLUDED.access_key_id,
			secret_key = EXCLUDED.secret_key,
			bucket_name = EXCLUDED.bucket_name,
			region = EXCLUDED.region,
			updated_at = EXCLUDED.updated_at
		RETURNING id, user_id, access_key_id, secret_key, bucket_name, region, created_at, updated_at,
			(xmax = 0) AS inserted
	`, r.tableName)

	now := cfg.UpdatedAt
	if now.IsZero() {
		now = time.Now()
	}

	var c s3manager.UserConfig
	var inserted bool

	err := r.pool.QueryRow(ctx, query,
		cfg.UserID, cfg.AccessKeyID, cfg.SecretKey, cfg.BucketName, cfg.Region, now.UTC(),
	).Scan(
		&c.ID, &c.UserID, &c.AccessKeyID, &c.SecretKey, &c.BucketName, &c.Region, &c.CreatedAt, &c.UpdatedAt, &inserted,
	)
	if err != nil {
		return s3manager.UserConfig{}, false, fmt.Errorf("upsert: %w: %w", s3manager.ErrStoreUnavailable, err)
	}

	c.CreatedAt = c.CreatedAt.UTC()
	c.UpdatedAt = c.UpdatedAt.UTC()

	return c, inserted, nil
}

func (r *Repo) Delete(ctx context.Context, userID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE user_id = $1`, r.tableName)

	if _, err := r.pool.Exec(ctx, query, userID); err != nil {
		return fmt.Errorf("delete: %w: %w", s3manager.ErrStoreUnavailable, err)
	}

	return nil
}

func (r *Repo) Exists(ctx context.Context, userID string) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE user_id = $1)`, r.tableName)

	var exists bool
	if err := r.pool.QueryRow(ctx, query, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("exists: %w: %w", s3manager.ErrStoreUnavailable, err)
	}

	return exists, nil
}
