package s3manager

import (
	"context"
	"io"
	"time"
)

// ConfigRepo defines the interface for per-user configuration persistence.
// Implementations must be safe for concurrent use.
//
// Failures to reach the datastore must wrap ErrStoreUnavailable so callers can
// tell an outage apart from a missing record (ErrNotFound).
type ConfigRepo interface {
	// Get retrieves the configuration stored for userID.
	//
	// Returns:
	//   - UserConfig: The stored record, secret included
	//   - error: ErrNotFound if no record exists, ErrStoreUnavailable on datastore failure
	Get(ctx context.Context, userID string) (UserConfig, error)

	// Upsert creates or replaces the configuration of cfg.UserID.
	// cfg.UpdatedAt is written as updated_at, and as created_at on insert only.
	//
	// Returns:
	//   - UserConfig: The stored record with ID and timestamps
	//   - bool: true if a new record was created
	//   - error: ErrStoreUnavailable on datastore failure
	Upsert(ctx context.Context, cfg UserConfig) (UserConfig, bool, error)

	// Delete removes the configuration of userID. Deleting a missing record is not an error.
	Delete(ctx context.Context, userID string) error

	// Exists reports whether userID has a stored configuration without reading the secret.
	Exists(ctx context.Context, userID string) (bool, error)

	// Ping verifies the datastore is reachable.
	Ping(ctx context.Context) error
}

// Bucket is one bucket of an object-storage service, opened with a single
// user's credentials. Implementations wrap the service SDK and map a missing
// object to ErrNotFound.
type Bucket interface {
	// List returns the immediate children of prefix, grouped by delimiter.
	// Implementations page through the full result.
	List(ctx context.Context, prefix, delimiter string) (ListOutput, error)

	// Put writes body under key. size may be -1 when unknown.
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error

	// Get opens the object at key. The caller closes Object.Body.
	Get(ctx context.Context, key string) (Object, error)

	// Delete removes key. A missing key is not an error.
	Delete(ctx context.Context, key string) error

	// PresignPut returns a URL allowing one PUT of key until ttl elapses.
	PresignPut(ctx context.Context, key, contentType string, ttl time.Duration) (string, error)

	// PresignGet returns a URL allowing GET of key until ttl elapses.
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)

	// Check verifies the bucket exists and the credentials can reach it.
	Check(ctx context.Context) error
}

// Opener opens a Bucket for a resolved user configuration. A new client is
// built per call; nothing is shared between users.
type Opener func(ctx context.Context, cfg UserConfig) (Bucket, error)
