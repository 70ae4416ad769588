package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/sagarc03/s3manager"
	"github.com/sagarc03/s3manager/database/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(userID string) s3manager.UserConfig {
	return s3manager.UserConfig{
		UserID:      userID,
		AccessKeyID: "AKIAEXAMPLE",
		SecretKey:   "secret",
		BucketName:  "bucket",
		Region:      "us-east-1",
		UpdatedAt:   time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestRepo_Upsert(t *testing.T) {
	t.Run("insert then update keeps created_at", func(t *testing.T) {
		repo := setupTestRepo(t)
		ctx := context.Background()

		first := testConfig("alice")
		created, inserted, err := repo.Upsert(ctx, first)
		require.NoError(t, err)
		assert.True(t, inserted)
		assert.NotEmpty(t, created.ID)
		assert.Equal(t, first.UpdatedAt, created.CreatedAt)
		assert.Equal(t, first.UpdatedAt, created.UpdatedAt)

		second := testConfig("alice")
		second.Region = "eu-west-1"
		second.UpdatedAt = first.UpdatedAt.Add(time.Hour)

		updated, inserted, err := repo.Upsert(ctx, second)
		require.NoError(t, err)
		assert.False(t, inserted)
		assert.Equal(t, created.ID, updated.ID)
		assert.Equal(t, "eu-west-1", updated.Region)
		assert.Equal(t, created.CreatedAt, updated.CreatedAt)
		assert.Equal(t, second.UpdatedAt, updated.UpdatedAt)
	})

	t.Run("users are isolated", func(t *testing.T) {
		repo := setupTestRepo(t)
		ctx := context.Background()

		a := testConfig("a")
		a.BucketName = "bucket-a"
		b := testConfig("b")
		b.BucketName = "bucket-b"

		_, _, err := repo.Upsert(ctx, a)
		require.NoError(t, err)
		_, _, err = repo.Upsert(ctx, b)
		require.NoError(t, err)

		got, err := repo.Get(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, "bucket-a", got.BucketName)

		got, err = repo.Get(ctx, "b")
		require.NoError(t, err)
		assert.Equal(t, "bucket-b", got.BucketName)
	})
}

func TestRepo_Get(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	_, err := repo.Get(ctx, "missing")
	assert.ErrorIs(t, err, s3manager.ErrNotFound)

	in := testConfig("bob")
	_, _, err = repo.Upsert(ctx, in)
	require.NoError(t, err)

	got, err := repo.Get(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, in.SecretKey, got.SecretKey)
	assert.Equal(t, in.AccessKeyID, got.AccessKeyID)
}

func TestRepo_DeleteAndExists(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	ok, err := repo.Exists(ctx, "carol")
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = repo.Upsert(ctx, testConfig("carol"))
	require.NoError(t, err)

	ok, err = repo.Exists(ctx, "carol")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, repo.Delete(ctx, "carol"))
	require.NoError(t, repo.Delete(ctx, "carol"))

	_, err = repo.Get(ctx, "carol")
	assert.ErrorIs(t, err, s3manager.ErrNotFound)
}

func TestRepo_StoreUnavailable(t *testing.T) {
	ctx := context.Background()
	tables := s3manager.Tables{UserConfigs: "user_configs"}

	db, err := sqlite.Connect(ctx, filepath.Join(t.TempDir(), "closed.db"), tables)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(ctx))
	repo := db.GetRepo()
	require.NoError(t, db.Close())

	_, err = repo.Get(ctx, "x")
	assert.ErrorIs(t, err, s3manager.ErrStoreUnavailable)

	_, _, err = repo.Upsert(ctx, testConfig("x"))
	assert.ErrorIs(t, err, s3manager.ErrStoreUnavailable)

	assert.ErrorIs(t, repo.Ping(ctx), s3manager.ErrStoreUnavailable)
}

func TestNewRepo_InvalidTables(t *testing.T) {
	_, err := sqlite.NewRepo(nil, s3manager.Tables{UserConfigs: "DROP TABLE"})
	assert.Error(t, err)
}
