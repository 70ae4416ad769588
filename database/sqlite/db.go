package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sagarc03/s3manager"
	"github.com/sagarc03/s3manager/database/schema"
)

// Timestamps are stored as RFC3339 text and ids as their string form.
func userConfigsTable(name string) schema.Table {
	return schema.Table{
		Name: name,
		Columns: []schema.Column{
			{Name: "id", Type: "text"},
			{Name: "user_id", Type: "text"},
			{Name: "access_key_id", Type: "text"},
			{Name: "secret_key", Type: "text"},
			{Name: "bucket_name", Type: "text"},
			{Name: "region", Type: "text"},
			{Name: "created_at", Type: "text"},
			{Name: "updated_at", Type: "text"},
		},
	}
}

// tableColumns reads PRAGMA table_info. A missing table yields no columns.
func tableColumns(ctx context.Context, db *sql.DB, tableName string) ([]schema.Column, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf(`PRAGMA table_info(%s)`, quoteIdentifier(tableName)))
	if err != nil {
		return nil, fmt.Errorf("query columns: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var cols []schema.Column
	for rows.Next() {
		var (
			cid, notNull, pk int
			c                schema.Column
			dflt             sql.NullString
		)
		if err := rows.Scan(&cid, &c.Name, &c.Type, &notNull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		c.Nullable = notNull == 0
		cols = append(cols, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return cols, nil
}

// ValidateSchema checks that every table has the expected columns, types and nullability.
func ValidateSchema(ctx context.Context, db *sql.DB, tables s3manager.Tables) error {
	for _, want := range []schema.Table{userConfigsTable(tables.UserConfigs)} {
		if !s3manager.IsValidTableName(want.Name) {
			return fmt.Errorf("validate schema: invalid table name: %s", want.Name)
		}

		cols, err := tableColumns(ctx, db, want.Name)
		if err != nil {
			return fmt.Errorf("validate schema %s: %w", want.Name, err)
		}
		if err := schema.Compare(want, cols); err != nil {
			return fmt.Errorf("validate schema %s: %w", want.Name, err)
		}
	}
	return nil
}
