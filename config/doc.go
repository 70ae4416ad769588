// Package config provides configuration loading and validation for the
// s3manager server.
//
// The package handles YAML configuration files, .env files, environment
// variables, and CLI flags with automatic merging and validation using
// go-playground/validator.
//
// # Configuration Precedence
//
// Values are loaded in this order (later sources override earlier ones):
//
//  1. Default values
//  2. Configuration file(s) - multiple files merged left-to-right
//  3. Environment variables (S3MANAGER_ prefix), including those from a .env file
//  4. CLI flags
//
// # Usage
//
//	if err := config.LoadEnvFile(".env"); err != nil {
//	    log.Fatal(err)
//	}
//	cfg, err := config.Load([]string{"config.yaml"}, cmd.Flags())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Store in context for subcommands
//	ctx = config.WithContext(ctx, cfg)
//
// # Environment Variables
//
// All config keys map to environment variables with S3MANAGER_ prefix:
//   - server.port → S3MANAGER_SERVER_PORT
//   - database.dsn → S3MANAGER_DATABASE_DSN
//   - auth.jwt_secret → S3MANAGER_AUTH_JWT_SECRET
//
// # Configuration Structure
//
// The Config struct contains:
//   - Env: dev (colored text logs) or prod (JSON logs)
//   - Server: port, max_body_bytes and timeouts
//   - Database: type, DSN, auto_migrate and table names
//   - Storage: driver (aws/minio), endpoint, path style, presign TTLs
//   - Auth: mode (oidc/jwt) with issuer, client_id, audience or jwt_secret
//   - CORS: cross-origin resource sharing settings
//   - Log: logging level
//
// # Validation
//
// Configuration is validated using struct tags:
//   - Port must be 1-65535
//   - Storage driver must be aws or minio
//   - upload_ttl must be shorter than download_ttl
//   - oidc mode needs issuer and client_id; jwt mode needs a secret of 16+ bytes
//   - Log level must be debug, info, warn, or error
package config
