package s3manager

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// CredentialStore keeps one bucket configuration per user on top of a ConfigRepo.
//
// Writes are full replaces with one exception: an empty secret on update keeps
// the previously stored secret. Concurrent writes for the same user are
// last-write-wins.
type CredentialStore struct {
	repo ConfigRepo
	now  func() time.Time
}

// NewCredentialStore creates a CredentialStore backed by repo.
func NewCredentialStore(repo ConfigRepo) *CredentialStore {
	return &CredentialStore{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// Save validates in and upserts it as the configuration of userID.
//
// The method performs the following steps:
//  1. Rejects an empty userID with ErrUnauthenticated
//  2. Rejects missing access key, bucket or region with ErrInvalidInput
//  3. Resolves an empty secret from the stored record, if any
//  4. Rejects the write with ErrInvalidInput if no secret can be resolved
//  5. Upserts the record with UpdatedAt set to now
//
// Returns ErrStoreUnavailable (wrapped) if the datastore cannot be reached.
func (s *CredentialStore) Save(ctx context.Context, userID string, in ConfigInput) (UserConfig, error) {
	if err := ctx.Err(); err != nil {
		return UserConfig{}, fmt.Errorf("save config: %w", err)
	}

	if userID == "" {
		return UserConfig{}, fmt.Errorf("save config: %w", ErrUnauthenticated)
	}

	in = in.normalized()
	if missing := in.missingFields(); len(missing) > 0 {
		return UserConfig{}, fmt.Errorf("save config: %w: missing %s", ErrInvalidInput, strings.Join(missing, ", "))
	}

	secret := in.SecretKey
	if secret == "" {
		existing, err := s.repo.Get(ctx, userID)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return UserConfig{}, fmt.Errorf("save config: %w", err)
		}
		secret = existing.SecretKey
	}

	if secret == "" {
		return UserConfig{}, fmt.Errorf("save config: %w: missing secretKey", ErrInvalidInput)
	}

	cfg := UserConfig{
		UserID:      userID,
		AccessKeyID: in.AccessKeyID,
		SecretKey:   secret,
		BucketName:  in.BucketName,
		Region:      in.Region,
		UpdatedAt:   s.now(),
	}

	saved, _, err := s.repo.Upsert(ctx, cfg)
	if err != nil {
		return UserConfig{}, fmt.Errorf("save config: %w", err)
	}

	return saved, nil
}

// Get returns the full configuration of userID, secret included.
// It is meant for building storage clients and must never be encoded for a caller.
func (s *CredentialStore) Get(ctx context.Context, userID string) (UserConfig, error) {
	if err := ctx.Err(); err != nil {
		return UserConfig{}, fmt.Errorf("get config: %w", err)
	}

	if userID == "" {
		return UserConfig{}, fmt.Errorf("get config: %w", ErrUnauthenticated)
	}

	cfg, err := s.repo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return UserConfig{}, fmt.Errorf("get config: %w", ErrConfigMissing)
		}
		return UserConfig{}, fmt.Errorf("get config: %w", err)
	}

	return cfg, nil
}

// GetSafe returns the read projection of the configuration of userID.
func (s *CredentialStore) GetSafe(ctx context.Context, userID string) (SafeConfig, error) {
	cfg, err := s.Get(ctx, userID)
	if err != nil {
		return SafeConfig{}, err
	}
	return cfg.Safe(), nil
}

// Delete removes the configuration of userID. It is idempotent.
func (s *CredentialStore) Delete(ctx context.Context, userID string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("delete config: %w", err)
	}

	if userID == "" {
		return fmt.Errorf("delete config: %w", ErrUnauthenticated)
	}

	if err := s.repo.Delete(ctx, userID); err != nil {
		return fmt.Errorf("delete config: %w", err)
	}

	return nil
}

// Exists reports whether userID has a stored configuration.
func (s *CredentialStore) Exists(ctx context.Context, userID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("exists config: %w", err)
	}

	if userID == "" {
		return false, fmt.Errorf("exists config: %w", ErrUnauthenticated)
	}

	ok, err := s.repo.Exists(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("exists config: %w", err)
	}

	return ok, nil
}

// Ping checks that the underlying datastore is reachable.
func (s *CredentialStore) Ping(ctx context.Context) error {
	if err := s.repo.Ping(ctx); err != nil {
		return fmt.Errorf("ping store: %w", err)
	}
	return nil
}
