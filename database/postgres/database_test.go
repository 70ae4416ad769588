package postgres_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/sagarc03/s3manager"
	"github.com/sagarc03/s3manager/database/postgres"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatabase_Ping(t *testing.T) {
	pool := getSharedTestDatabase(t)
	ctx := context.Background()

	db, err := postgres.Connect(ctx, getDSN(pool), s3manager.Tables{UserConfigs: "ping_test"})
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	assert.NoError(t, db.Ping(ctx))
}

func TestDatabase_Migrate(t *testing.T) {
	pool := getSharedTestDatabase(t)
	ctx := context.Background()

	tableName := "migrate_" + getRandomString(t)
	db, err := postgres.Connect(ctx, getDSN(pool), s3manager.Tables{UserConfigs: tableName})
	require.NoError(t, err)
	defer func() {
		_ = db.Close()
		_ = dropTable(ctx, pool, tableName)
	}()

	require.NoError(t, db.Migrate(ctx), "first migrate")
	require.NoError(t, db.Migrate(ctx), "second migrate")
	assert.NoError(t, db.Validate(ctx))
}

func TestDatabase_Validate(t *testing.T) {
	pool := getSharedTestDatabase(t)
	ctx := context.Background()

	t.Run("table does not exist", func(t *testing.T) {
		db, err := postgres.Connect(ctx, getDSN(pool), s3manager.Tables{UserConfigs: "nonexistent_table"})
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		assert.Error(t, db.Validate(ctx))
	})

	t.Run("missing columns", func(t *testing.T) {
		tableName := "incomplete_" + getRandomString(t)
		_, err := pool.Exec(ctx, fmt.Sprintf(`CREATE TABLE %s (id UUID PRIMARY KEY, user_id TEXT NOT NULL)`, tableName))
		require.NoError(t, err)
		defer func() { _ = dropTable(ctx, pool, tableName) }()

		db, err := postgres.Connect(ctx, getDSN(pool), s3manager.Tables{UserConfigs: tableName})
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		err = db.Validate(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "secret_key")
	})

	t.Run("wrong column type", func(t *testing.T) {
		tableName := "wrongtype_" + getRandomString(t)
		_, err := pool.Exec(ctx, fmt.Sprintf(`
			CREATE TABLE %s (
				id UUID PRIMARY KEY,
				user_id TEXT NOT NULL,
				access_key_id TEXT NOT NULL,
				secret_key TEXT NOT NULL,
				bucket_name TEXT NOT NULL,
				region TEXT NOT NULL,
				created_at TEXT NOT NULL,
				updated_at TIMESTAMPTZ NOT NULL
			)`, tableName))
		require.NoError(t, err)
		defer func() { _ = dropTable(ctx, pool, tableName) }()

		db, err := postgres.Connect(ctx, getDSN(pool), s3manager.Tables{UserConfigs: tableName})
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		err = db.Validate(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "created_at")
	})
}

func TestDropTables(t *testing.T) {
	pool := getSharedTestDatabase(t)
	ctx := context.Background()
	tables := s3manager.Tables{UserConfigs: "drop_" + getRandomString(t)}

	require.NoError(t, postgres.Migrate(ctx, pool, tables))
	require.NoError(t, postgres.ValidateSchema(ctx, pool, tables))
	require.NoError(t, postgres.DropTables(ctx, pool, tables))
	assert.Error(t, postgres.ValidateSchema(ctx, pool, tables))
}
