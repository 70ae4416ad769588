package clientcli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sagarc03/s3manager"
)

// DefaultTimeout is the default HTTP client timeout.
const DefaultTimeout = 30 * time.Second

// Client talks to an s3manager server with a bearer token.
type Client struct {
	server     string
	token      string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// New creates a new Client with the given config and options.
func New(cfg *Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, ErrConfigRequired
	}

	cfg = cfg.WithDefaults()

	c := &Client{
		server:     strings.TrimSuffix(cfg.Server, "/"),
		token:      cfg.Token,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// GetConfig returns the safe view of the caller's stored configuration.
func (c *Client) GetConfig(ctx context.Context) (s3manager.SafeConfig, error) {
	var out s3manager.SafeConfig
	if err := c.do(ctx, http.MethodGet, "/api/user-config", nil, &out); err != nil {
		return s3manager.SafeConfig{}, fmt.Errorf("get config: %w", err)
	}
	return out, nil
}

// SaveConfig stores the caller's configuration on the server.
func (c *Client) SaveConfig(ctx context.Context, in s3manager.ConfigInput) error {
	if err := c.do(ctx, http.MethodPost, "/api/user-config", in, nil); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	return nil
}

// DeleteConfig removes the caller's configuration from the server.
func (c *Client) DeleteConfig(ctx context.Context) error {
	if err := c.do(ctx, http.MethodDelete, "/api/user-config", nil, nil); err != nil {
		return fmt.Errorf("delete config: %w", err)
	}
	return nil
}

// List returns the immediate children of prefix.
func (c *Client) List(ctx context.Context, prefix string) ([]s3manager.StorageItem, error) {
	path := "/api/objects"
	if prefix != "" {
		path += "?" + url.Values{"prefix": {prefix}}.Encode()
	}

	var out struct {
		Items []s3manager.StorageItem `json:"items"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	return out.Items, nil
}

// GetContent reads an object as text.
func (c *Client) GetContent(ctx context.Context, key string) (s3manager.ObjectContent, error) {
	body := map[string]string{"key": key, "action": "getContent"}

	var out s3manager.ObjectContent
	if err := c.do(ctx, http.MethodPost, "/api/objects", body, &out); err != nil {
		return s3manager.ObjectContent{}, fmt.Errorf("get content: %w", err)
	}
	return out, nil
}

// CreateFolder creates a folder marker under prefix.
func (c *Client) CreateFolder(ctx context.Context, prefix, name string) (s3manager.FolderResult, error) {
	body := map[string]string{"folderName": name, "prefix": prefix}

	var out s3manager.FolderResult
	if err := c.do(ctx, http.MethodPost, "/api/create-folder", body, &out); err != nil {
		return s3manager.FolderResult{}, fmt.Errorf("create folder: %w", err)
	}
	return out, nil
}

// DeleteObject removes one object.
func (c *Client) DeleteObject(ctx context.Context, key string) error {
	if err := c.do(ctx, http.MethodDelete, "/api/delete", map[string]string{"key": key}, nil); err != nil {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}

// PresignUpload asks the server for a presigned PUT URL.
func (c *Client) PresignUpload(ctx context.Context, req s3manager.PresignRequest) (s3manager.PresignedURL, error) {
	body := map[string]string{
		"fileName": req.FileName,
		"fileType": req.ContentType,
		"prefix":   req.Prefix,
	}

	var out struct {
		PresignedURL string    `json:"presignedUrl"`
		Key          string    `json:"key"`
		ExpiresAt    time.Time `json:"expiresAt"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/presigned-url", body, &out); err != nil {
		return s3manager.PresignedURL{}, fmt.Errorf("presign upload: %w", err)
	}

	return s3manager.PresignedURL{
		URL:       out.PresignedURL,
		Key:       out.Key,
		Method:    http.MethodPut,
		ExpiresAt: out.ExpiresAt,
	}, nil
}

// PresignDownload asks the server for a presigned GET URL.
func (c *Client) PresignDownload(ctx context.Context, req s3manager.PresignRequest) (s3manager.PresignedURL, error) {
	body := map[string]string{
		"key":       req.Key,
		"fileName":  req.FileName,
		"prefix":    req.Prefix,
		"operation": "getObject",
	}

	var out struct {
		URL       string    `json:"url"`
		Key       string    `json:"key"`
		ExpiresAt time.Time `json:"expiresAt"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/presigned-url", body, &out); err != nil {
		return s3manager.PresignedURL{}, fmt.Errorf("presign download: %w", err)
	}

	return s3manager.PresignedURL{
		URL:       out.URL,
		Key:       out.Key,
		Method:    http.MethodGet,
		ExpiresAt: out.ExpiresAt,
	}, nil
}

// do sends a JSON request and decodes a JSON response into out when non-nil.
// Non-2xx responses become *APIError.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader = http.NoBody
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.server+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return parseServerError(resp.StatusCode, data)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

// parseServerError extracts the error envelope from a server response.
// Bodies that are not an envelope are kept verbatim as the message.
func parseServerError(statusCode int, body []byte) error {
	apiErr := &APIError{StatusCode: statusCode}

	var envelope struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != "" {
		apiErr.Code = envelope.Error
		apiErr.Message = envelope.Message
		return apiErr
	}

	apiErr.Message = strings.TrimSpace(string(body))
	return apiErr
}
