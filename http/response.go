package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sagarc03/s3manager"
)

// ErrorResponse represents a JSON error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// MessageResponse is the body of mutations that return only a confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}

// WriteError writes a JSON error response
func WriteError(w http.ResponseWriter, code int, errCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Error:   errCode,
		Message: message,
	}); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// HandleError writes appropriate error response based on error type.
// Upstream messages reach the caller; they are redacted before they get here.
func HandleError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError

	switch {
	case errors.Is(err, s3manager.ErrUnauthenticated):
		slog.Warn("request error", "error", err)
		WriteError(w, http.StatusUnauthorized, "unauthenticated", "Authentication required")
	case errors.Is(err, s3manager.ErrStoreUnavailable):
		slog.Error("request error", "error", err)
		WriteError(w, http.StatusServiceUnavailable, "store_unavailable", "Configuration store is unavailable")
	case errors.Is(err, s3manager.ErrConfigMissing):
		slog.Warn("request error", "error", err)
		WriteError(w, http.StatusBadRequest, "config_missing", "No S3 configuration found. Please configure your S3 settings first.")
	case errors.Is(err, s3manager.ErrInvalidName):
		slog.Warn("request error", "error", err)
		WriteError(w, http.StatusBadRequest, "invalid_name", "Invalid folder name")
	case errors.Is(err, s3manager.ErrMissingKey):
		slog.Warn("request error", "error", err)
		WriteError(w, http.StatusBadRequest, "missing_key", "Object key is required")
	case errors.As(err, &tooLarge):
		slog.Warn("request error", "error", err)
		WriteError(w, http.StatusRequestEntityTooLarge, "request_too_large", "Request body too large")
	case errors.Is(err, s3manager.ErrInvalidInput):
		slog.Warn("request error", "error", err)
		WriteError(w, http.StatusBadRequest, "invalid_input", err.Error())
	case errors.Is(err, s3manager.ErrNotFound):
		slog.Warn("request error", "error", err)
		WriteError(w, http.StatusNotFound, "not_found", "Object not found")
	case errors.Is(err, s3manager.ErrUpstream):
		slog.Error("request error", "error", err)
		WriteError(w, http.StatusInternalServerError, "upstream_error", err.Error())
	default:
		slog.Error("request error", "error", err)
		WriteError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
	}
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, code int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(data)
}
