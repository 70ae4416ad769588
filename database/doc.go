// Package database provides a unified interface for connecting to the
// configuration store.
//
// The package supports PostgreSQL and SQLite and handles connection
// management, migrations, and schema validation.
//
// # Supported Backends
//
//   - PostgreSQL: Production-ready backend using pgx connection pool
//   - SQLite: Lightweight backend suitable for development and single-node deployments
//
// # Usage
//
//	cfg := database.Config{
//	    Type:        "sqlite",
//	    DSN:         "s3manager.db",
//	    AutoMigrate: true,
//	    Tables:      s3manager.Tables{UserConfigs: "user_configs"},
//	}
//
//	db, err := database.Open(ctx, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	store := s3manager.NewCredentialStore(db.GetRepo())
//
// Servers that must start while the datastore is down use Lazy instead.
// Lazy implements s3manager.ConfigRepo and reports s3manager.ErrStoreUnavailable
// until a connection succeeds.
//
// # Subpackages
//
//   - database/postgres: PostgreSQL implementation using pgx
//   - database/sqlite: SQLite implementation using modernc.org/sqlite
package database
