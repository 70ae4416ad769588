package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sagarc03/s3manager"
	"github.com/sagarc03/s3manager/database/schema"
)

func userConfigsTable(name string) schema.Table {
	return schema.Table{
		Name: name,
		Columns: []schema.Column{
			{Name: "id", Type: "uuid"},
			{Name: "user_id", Type: "text"},
			{Name: "access_key_id", Type: "text"},
			{Name: "secret_key", Type: "text"},
			{Name: "bucket_name", Type: "text"},
			{Name: "region", Type: "text"},
			{Name: "created_at", Type: "timestamp with time zone"},
			{Name: "updated_at", Type: "timestamp with time zone"},
		},
	}
}

// tableColumns lists the columns of a table in the current schema.
// A missing table yields no columns.
func tableColumns(ctx context.Context, pool *pgxpool.Pool, tableName string) ([]schema.Column, error) {
	rows, err := pool.Query(ctx, `
		SELECT column_name, data_type, is_nullable = 'YES'
		FROM information_schema.columns
		WHERE table_schema = current_schema() AND table_name = $1
		ORDER BY ordinal_position
	`, tableName)
	if err != nil {
		return nil, fmt.Errorf("query columns: %w", err)
	}

	cols, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (schema.Column, error) {
		var c schema.Column
		err := row.Scan(&c.Name, &c.Type, &c.Nullable)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan columns: %w", err)
	}
	return cols, nil
}

// ValidateSchema checks that every table has the expected columns, types and nullability.
func ValidateSchema(ctx context.Context, pool *pgxpool.Pool, tables s3manager.Tables) error {
	for _, want := range []schema.Table{userConfigsTable(tables.UserConfigs)} {
		if !s3manager.IsValidTableName(want.Name) {
			return fmt.Errorf("validate schema: invalid table name: %s", want.Name)
		}

		cols, err := tableColumns(ctx, pool, want.Name)
		if err != nil {
			return fmt.Errorf("validate schema %s: %w", want.Name, err)
		}
		if err := schema.Compare(want, cols); err != nil {
			return fmt.Errorf("validate schema %s: %w", want.Name, err)
		}
	}
	return nil
}
