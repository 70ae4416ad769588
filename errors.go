package s3manager

import "errors"

var (
	// ErrNotFound is returned when a resource is not found
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnauthenticated is returned when no verified caller identity is present
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrConfigMissing is returned when the caller has no stored bucket configuration
	ErrConfigMissing = errors.New("configuration not found")
	// ErrStoreUnavailable is returned when the configuration datastore cannot be reached
	ErrStoreUnavailable = errors.New("credential store unavailable")
	// ErrInvalidName is returned when a folder name is empty after sanitization
	ErrInvalidName = errors.New("invalid folder name")
	// ErrMissingKey is returned when an object operation has no key
	ErrMissingKey = errors.New("object key is required")
	// ErrUpstream is returned when the object-storage service rejects or fails a call
	ErrUpstream = errors.New("upstream failure")
)
