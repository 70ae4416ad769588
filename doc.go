// Package s3manager provides a multi-tenant front-end layer for browsing and
// organizing objects in user-owned S3 buckets.
//
// Every user stores one bucket configuration (access key, secret, bucket,
// region). Requests resolve the caller's configuration from the credential
// store and then operate on the bucket through a short-lived client scoped to
// that configuration.
//
// # Key Components
//
//   - CredentialStore: per-user configuration records on top of a ConfigRepo
//   - ConfigRepo: interface for configuration persistence (PostgreSQL, SQLite)
//   - ObjectGateway: folder/file listing, folder markers, object reads and deletes
//   - UploadBroker: presigned upload and download URLs for direct transfers
//   - Bucket: interface for object-storage backends (AWS SDK, MinIO)
//
// # Secrets
//
// UserConfig carries the secret key for internal use only and never encodes
// it. Anything that leaves the process goes through SafeConfig, which has no
// secret field.
//
// # Example Usage
//
//	store := s3manager.NewCredentialStore(repo)
//	gateway, err := s3manager.NewObjectGateway(opener, s3manager.GatewayConfig{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	cfg, err := store.Get(ctx, userID)
//	if err != nil {
//	    return err
//	}
//
//	items, err := gateway.List(ctx, cfg, "docs/")
//
// See the http package for the REST API and the database package for the
// configuration backends.
package s3manager
