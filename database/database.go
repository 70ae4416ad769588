package database

import (
	"context"
	"fmt"

	"github.com/sagarc03/s3manager"
	"github.com/sagarc03/s3manager/database/postgres"
	"github.com/sagarc03/s3manager/database/sqlite"
)

// Config holds the configuration for connecting to a configuration store.
type Config struct {
	// Type specifies the database type: "sqlite" or "postgres"
	Type string `mapstructure:"type" validate:"required,oneof=sqlite postgres"`
	// DSN is the data source name (connection string)
	DSN string `mapstructure:"dsn" validate:"required"`
	// AutoMigrate creates missing tables on first connect
	AutoMigrate bool `mapstructure:"auto_migrate"`
	// Tables holds the table names
	Tables s3manager.Tables `mapstructure:"tables"`
}

// Database is an open configuration store.
type Database interface {
	Ping(ctx context.Context) error
	Migrate(ctx context.Context) error
	Validate(ctx context.Context) error
	GetRepo() s3manager.ConfigRepo
	Close() error
}

// Connect opens the configured backend. It does not migrate or validate;
// see Open for that.
func Connect(ctx context.Context, cfg Config) (Database, error) {
	if err := cfg.Tables.Validate(); err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	switch cfg.Type {
	case "sqlite":
		return sqlite.Connect(ctx, cfg.DSN, cfg.Tables)
	case "postgres":
		return postgres.Connect(ctx, cfg.DSN, cfg.Tables)
	default:
		return nil, fmt.Errorf("connect: unsupported database type: %s", cfg.Type)
	}
}

// Open connects, pings, optionally migrates and validates the schema.
// The returned Database is ready to serve requests.
func Open(ctx context.Context, cfg Config) (Database, error) {
	db, err := Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open %s: ping: %w", cfg.Type, err)
	}

	if cfg.AutoMigrate {
		if err := db.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("open %s: %w", cfg.Type, err)
		}
	}

	if err := db.Validate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open %s: %w", cfg.Type, err)
	}

	return db, nil
}
