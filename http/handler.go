package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/sagarc03/s3manager"
	"github.com/sagarc03/s3manager/auth"
	"github.com/sagarc03/s3manager/metrics"
)

// CredentialService stores per-user bucket configurations.
type CredentialService interface {
	Save(ctx context.Context, userID string, in s3manager.ConfigInput) (s3manager.UserConfig, error)
	Get(ctx context.Context, userID string) (s3manager.UserConfig, error)
	GetSafe(ctx context.Context, userID string) (s3manager.SafeConfig, error)
	Delete(ctx context.Context, userID string) error
	Ping(ctx context.Context) error
}

// ObjectService performs folder-style operations on a user's bucket.
type ObjectService interface {
	List(ctx context.Context, cfg s3manager.UserConfig, prefix string) ([]s3manager.StorageItem, error)
	CreateFolder(ctx context.Context, cfg s3manager.UserConfig, prefix, name string) (s3manager.FolderResult, error)
	DeleteObject(ctx context.Context, cfg s3manager.UserConfig, key string) error
	GetContent(ctx context.Context, cfg s3manager.UserConfig, key string) (s3manager.ObjectContent, error)
}

// PresignService issues presigned transfer URLs.
type PresignService interface {
	PresignUpload(ctx context.Context, cfg s3manager.UserConfig, req s3manager.PresignRequest) (s3manager.PresignedURL, error)
	PresignDownload(ctx context.Context, cfg s3manager.UserConfig, req s3manager.PresignRequest) (s3manager.PresignedURL, error)
}

type CORSConfig struct {
	Enabled          bool     `mapstructure:"enabled"`
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type HandlerConfig struct {
	Verifier     auth.Verifier
	CORS         CORSConfig
	MaxBodyBytes int64
}

// Handler provides the JSON API of the bucket manager.
type Handler struct {
	config  HandlerConfig
	creds   CredentialService
	objects ObjectService
	presign PresignService
}

// NewHandler creates a new Handler with the given configuration and services.
func NewHandler(config *HandlerConfig, creds CredentialService, objects ObjectService, presign PresignService) *Handler {
	return &Handler{
		config:  *config,
		creds:   creds,
		objects: objects,
		presign: presign,
	}
}

// Router returns an http.Handler with all routes configured.
// Health endpoints and /metrics are public; everything under /api needs a bearer token.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(metrics.Middleware)

	if h.config.CORS.Enabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   h.config.CORS.AllowedOrigins,
			AllowedMethods:   h.config.CORS.AllowedMethods,
			AllowedHeaders:   h.config.CORS.AllowedHeaders,
			ExposedHeaders:   h.config.CORS.ExposedHeaders,
			AllowCredentials: h.config.CORS.AllowCredentials,
			MaxAge:           h.config.CORS.MaxAge,
		}))
	}

	r.Get("/healthz", h.handleHealth)
	r.Get("/readyz", h.handleReady)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(AuthMiddleware(h.config.Verifier))
		r.Use(BodyLimitMiddleware(h.config.MaxBodyBytes))

		r.Get("/config", h.handleGetConfig)
		r.Get("/user-config", h.handleGetUserConfig)
		r.Post("/user-config", h.handleSaveUserConfig)
		r.Delete("/user-config", h.handleDeleteUserConfig)

		r.Get("/objects", h.handleList)
		r.Post("/objects", h.handleObjectAction)
		r.Post("/create-folder", h.handleCreateFolder)
		r.Delete("/delete", h.handleDelete)
		r.Post("/presigned-url", h.handlePresign)
	})

	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	_ = WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := h.creds.Ping(r.Context()); err != nil {
		slog.Error("readiness check failed", "error", err)
		WriteError(w, http.StatusServiceUnavailable, "store_unavailable", "Configuration store is unavailable")
		return
	}
	_ = WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

type configResponse struct {
	BucketName  string `json:"bucketName"`
	Region      string `json:"region"`
	AccessKeyID string `json:"accessKeyId"`
}

func (h *Handler) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	safe, err := h.creds.GetSafe(r.Context(), auth.UserIDFromContext(r.Context()))
	metrics.RecordCredentialStore("get", outcome(err))
	if err != nil {
		handleConfigReadError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, configResponse{
		BucketName:  safe.BucketName,
		Region:      safe.Region,
		AccessKeyID: safe.AccessKeyID,
	})
}

func (h *Handler) handleGetUserConfig(w http.ResponseWriter, r *http.Request) {
	safe, err := h.creds.GetSafe(r.Context(), auth.UserIDFromContext(r.Context()))
	metrics.RecordCredentialStore("get", outcome(err))
	if err != nil {
		handleConfigReadError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, safe)
}

func (h *Handler) handleSaveUserConfig(w http.ResponseWriter, r *http.Request) {
	var in s3manager.ConfigInput
	if err := decodeJSON(r, &in); err != nil {
		HandleError(w, err)
		return
	}

	_, err := h.creds.Save(r.Context(), auth.UserIDFromContext(r.Context()), in)
	metrics.RecordCredentialStore("save", outcome(err))
	if err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, MessageResponse{Message: "Configuration saved successfully"})
}

func (h *Handler) handleDeleteUserConfig(w http.ResponseWriter, r *http.Request) {
	err := h.creds.Delete(r.Context(), auth.UserIDFromContext(r.Context()))
	metrics.RecordCredentialStore("delete", outcome(err))
	if err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, MessageResponse{Message: "Configuration deleted successfully"})
}

type listResponse struct {
	Items []s3manager.StorageItem `json:"items"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	cfg, ok := h.resolveConfig(w, r)
	if !ok {
		return
	}

	items, err := h.objects.List(r.Context(), cfg, r.URL.Query().Get("prefix"))
	if err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, listResponse{Items: items})
}

type objectActionRequest struct {
	Key    string `json:"key"`
	Action string `json:"action"`
}

func (h *Handler) handleObjectAction(w http.ResponseWriter, r *http.Request) {
	var req objectActionRequest
	if err := decodeJSON(r, &req); err != nil {
		HandleError(w, err)
		return
	}

	if req.Action != "getContent" {
		WriteError(w, http.StatusBadRequest, "invalid_input", "Invalid action")
		return
	}

	cfg, ok := h.resolveConfig(w, r)
	if !ok {
		return
	}

	content, err := h.objects.GetContent(r.Context(), cfg, req.Key)
	if err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, content)
}

type createFolderRequest struct {
	FolderName string `json:"folderName"`
	Prefix     string `json:"prefix"`
}

type createFolderResponse struct {
	Message    string `json:"message"`
	Key        string `json:"key"`
	FolderName string `json:"folderName"`
}

func (h *Handler) handleCreateFolder(w http.ResponseWriter, r *http.Request) {
	var req createFolderRequest
	if err := decodeJSON(r, &req); err != nil {
		HandleError(w, err)
		return
	}

	if req.FolderName == "" {
		WriteError(w, http.StatusBadRequest, "invalid_name", "Folder name is required")
		return
	}

	cfg, ok := h.resolveConfig(w, r)
	if !ok {
		return
	}

	res, err := h.objects.CreateFolder(r.Context(), cfg, req.Prefix, req.FolderName)
	if err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, createFolderResponse{
		Message:    "Folder created successfully",
		Key:        res.Key,
		FolderName: res.FolderName,
	})
}

type deleteRequest struct {
	Key string `json:"key"`
}

type deleteResponse struct {
	Message string `json:"message"`
	Key     string `json:"key"`
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	var req deleteRequest
	if err := decodeJSON(r, &req); err != nil {
		HandleError(w, err)
		return
	}

	if req.Key == "" {
		HandleError(w, s3manager.ErrMissingKey)
		return
	}

	cfg, ok := h.resolveConfig(w, r)
	if !ok {
		return
	}

	if err := h.objects.DeleteObject(r.Context(), cfg, req.Key); err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, deleteResponse{Message: "Object deleted successfully", Key: req.Key})
}

type presignRequest struct {
	Key       string `json:"key"`
	FileName  string `json:"fileName"`
	FileType  string `json:"fileType"`
	Prefix    string `json:"prefix"`
	Operation string `json:"operation"`
}

type uploadURLResponse struct {
	PresignedURL string    `json:"presignedUrl"`
	Key          string    `json:"key"`
	FileName     string    `json:"fileName"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

type downloadURLResponse struct {
	URL       string    `json:"url"`
	Key       string    `json:"key"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (h *Handler) handlePresign(w http.ResponseWriter, r *http.Request) {
	var req presignRequest
	if err := decodeJSON(r, &req); err != nil {
		HandleError(w, err)
		return
	}

	download := req.Operation == "getObject"

	if download && req.Key == "" && req.FileName == "" {
		WriteError(w, http.StatusBadRequest, "missing_key", "Key or fileName is required")
		return
	}
	if !download && req.FileName == "" {
		WriteError(w, http.StatusBadRequest, "invalid_input", "fileName is required")
		return
	}

	cfg, ok := h.resolveConfig(w, r)
	if !ok {
		return
	}

	if download {
		signed, err := h.presign.PresignDownload(r.Context(), cfg, s3manager.PresignRequest{
			Key:      req.Key,
			Prefix:   req.Prefix,
			FileName: req.FileName,
		})
		if err != nil {
			HandleError(w, err)
			return
		}
		metrics.RecordPresign(signed.Method)
		_ = WriteJSON(w, http.StatusOK, downloadURLResponse{URL: signed.URL, Key: signed.Key, ExpiresAt: signed.ExpiresAt})
		return
	}

	signed, err := h.presign.PresignUpload(r.Context(), cfg, s3manager.PresignRequest{
		Prefix:      req.Prefix,
		FileName:    req.FileName,
		ContentType: req.FileType,
	})
	if err != nil {
		HandleError(w, err)
		return
	}
	metrics.RecordPresign(signed.Method)
	_ = WriteJSON(w, http.StatusOK, uploadURLResponse{
		PresignedURL: signed.URL,
		Key:          signed.Key,
		FileName:     req.FileName,
		ExpiresAt:    signed.ExpiresAt,
	})
}

// resolveConfig loads the caller's full configuration, writing the error
// response itself when it cannot.
func (h *Handler) resolveConfig(w http.ResponseWriter, r *http.Request) (s3manager.UserConfig, bool) {
	cfg, err := h.creds.Get(r.Context(), auth.UserIDFromContext(r.Context()))
	metrics.RecordCredentialStore("get", outcome(err))
	if err != nil {
		HandleError(w, err)
		return s3manager.UserConfig{}, false
	}
	return cfg, true
}

// handleConfigReadError answers a missing configuration with 404 on the
// endpoints that read the configuration itself.
func handleConfigReadError(w http.ResponseWriter, err error) {
	if errors.Is(err, s3manager.ErrConfigMissing) {
		WriteError(w, http.StatusNotFound, "config_missing", "No S3 configuration found")
		return
	}
	HandleError(w, err)
}

func decodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return fmt.Errorf("decode body: %w: empty body", s3manager.ErrInvalidInput)
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("decode body: %w: %w", s3manager.ErrInvalidInput, err)
	}
	return nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, s3manager.ErrConfigMissing):
		return "missing"
	case errors.Is(err, s3manager.ErrStoreUnavailable):
		return "unavailable"
	case errors.Is(err, s3manager.ErrInvalidInput):
		return "invalid"
	default:
		return "error"
	}
}
