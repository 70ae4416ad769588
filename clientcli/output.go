package clientcli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sagarc03/s3manager"
)

// Formatter formats results for output.
type Formatter interface {
	FormatUpload(w io.Writer, results []UploadResult) error
	FormatDownload(w io.Writer, result *DownloadResult) error
	FormatDelete(w io.Writer, results []DeleteResult) error
	FormatList(w io.Writer, items []s3manager.StorageItem) error
	FormatContent(w io.Writer, content s3manager.ObjectContent) error
	FormatFolder(w io.Writer, folder s3manager.FolderResult) error
	FormatURL(w io.Writer, signed s3manager.PresignedURL) error
	FormatConfig(w io.Writer, cfg s3manager.SafeConfig, source string) error
	FormatMessage(w io.Writer, message string) error
	FormatError(w io.Writer, err error) error
	FormatProfileList(w io.Writer, profiles []Profile, defaultName string, showSecrets bool) error
	FormatProfileShow(w io.Writer, profile Profile, isDefault, showSecrets bool) error
}

// NewFormatter returns the appropriate formatter based on flags.
func NewFormatter(jsonOutput, quiet bool) Formatter {
	if jsonOutput {
		return &JSONFormatter{}
	}
	return &HumanFormatter{Quiet: quiet}
}

// HumanFormatter outputs human-readable text.
type HumanFormatter struct {
	Quiet bool
}

// FormatUpload formats upload results as human-readable text.
func (f *HumanFormatter) FormatUpload(w io.Writer, results []UploadResult) error {
	for i := range results {
		r := &results[i]
		if r.Err != nil {
			_, _ = fmt.Fprintf(w, "Error: %s - %v\n", r.LocalPath, r.Err)
			continue
		}
		if !f.Quiet {
			_, _ = fmt.Fprintf(w, "Uploaded: %s -> %s (%s)\n", r.LocalPath, r.Key, formatSize(r.Size))
		}
	}
	return nil
}

// FormatDownload formats download result as human-readable text.
func (f *HumanFormatter) FormatDownload(w io.Writer, result *DownloadResult) error {
	if f.Quiet {
		return nil
	}
	if result.LocalPath == "-" {
		_, _ = fmt.Fprintf(w, "Downloaded: %s (%s)\n", result.Key, formatSize(result.Size))
	} else {
		_, _ = fmt.Fprintf(w, "Downloaded: %s -> %s (%s)\n", result.Key, result.LocalPath, formatSize(result.Size))
	}
	return nil
}

// FormatDelete formats delete results as human-readable text.
func (f *HumanFormatter) FormatDelete(w io.Writer, results []DeleteResult) error {
	for i := range results {
		r := &results[i]
		if r.Err != nil {
			_, _ = fmt.Fprintf(w, "Error: %s - %v\n", r.Key, r.Err)
			continue
		}
		if !f.Quiet {
			_, _ = fmt.Fprintf(w, "Deleted: %s\n", r.Key)
		}
	}
	return nil
}

// FormatList formats a folder listing as human-readable text.
// Folders are listed first with a trailing slash.
func (f *HumanFormatter) FormatList(w io.Writer, items []s3manager.StorageItem) error {
	if len(items) == 0 {
		_, _ = fmt.Fprintln(w, "No objects found")
		return nil
	}

	maxNameLen := 4 // "NAME"
	for i := range items {
		if n := len(displayName(items[i])); n > maxNameLen {
			maxNameLen = n
		}
	}
	if maxNameLen > 60 {
		maxNameLen = 60
	}

	_, _ = fmt.Fprintf(w, "%-*s  %10s  %s\n", maxNameLen, "NAME", "SIZE", "MODIFIED")
	_, _ = fmt.Fprintf(w, "%s  %s  %s\n", strings.Repeat("-", maxNameLen), strings.Repeat("-", 10), strings.Repeat("-", 19))

	var files, folders int
	var total int64
	for i := range items {
		item := &items[i]
		name := displayName(*item)
		if len(name) > maxNameLen {
			name = name[:maxNameLen-3] + "..."
		}

		size, modified := "-", "-"
		if item.Type == s3manager.ItemFolder {
			folders++
		} else {
			files++
		}
		if item.Size != nil {
			size = formatSize(*item.Size)
			total += *item.Size
		}
		if item.LastModified != nil {
			modified = item.LastModified.Format("2006-01-02 15:04:05")
		}

		_, _ = fmt.Fprintf(w, "%-*s  %10s  %s\n", maxNameLen, name, size, modified)
	}

	_, _ = fmt.Fprintf(w, "\n%d folder(s), %d file(s) (%s total)\n", folders, files, formatSize(total))
	return nil
}

func displayName(item s3manager.StorageItem) string {
	if item.Type == s3manager.ItemFolder {
		return item.Name + s3manager.Delimiter
	}
	return item.Name
}

// FormatContent writes the object text as-is.
func (f *HumanFormatter) FormatContent(w io.Writer, content s3manager.ObjectContent) error {
	_, err := io.WriteString(w, content.Content)
	return err
}

// FormatFolder formats a created folder as human-readable text.
func (f *HumanFormatter) FormatFolder(w io.Writer, folder s3manager.FolderResult) error {
	if !f.Quiet {
		_, _ = fmt.Fprintf(w, "Created folder: %s\n", folder.Key)
	}
	return nil
}

// FormatURL formats a presigned URL. Quiet mode prints the bare URL.
func (f *HumanFormatter) FormatURL(w io.Writer, signed s3manager.PresignedURL) error {
	if f.Quiet {
		_, _ = fmt.Fprintln(w, signed.URL)
		return nil
	}
	_, _ = fmt.Fprintf(w, "%s %s\n", signed.Method, signed.URL)
	_, _ = fmt.Fprintf(w, "  Key:     %s\n", signed.Key)
	_, _ = fmt.Fprintf(w, "  Expires: %s\n", signed.ExpiresAt.Local().Format(time.RFC3339))
	return nil
}

// FormatConfig formats a stored configuration. source names where it came from.
func (f *HumanFormatter) FormatConfig(w io.Writer, cfg s3manager.SafeConfig, source string) error {
	_, _ = fmt.Fprintf(w, "Source:     %s\n", source)
	_, _ = fmt.Fprintf(w, "Bucket:     %s\n", cfg.BucketName)
	_, _ = fmt.Fprintf(w, "Region:     %s\n", cfg.Region)
	_, _ = fmt.Fprintf(w, "Access Key: %s\n", cfg.AccessKeyID)
	secret := "(not set)"
	if cfg.HasSecretKey {
		secret = "********"
	}
	_, _ = fmt.Fprintf(w, "Secret Key: %s\n", secret)
	if !cfg.UpdatedAt.IsZero() {
		_, _ = fmt.Fprintf(w, "Updated:    %s\n", cfg.UpdatedAt.Local().Format("2006-01-02 15:04:05"))
	}
	return nil
}

// FormatMessage writes a one-line status message.
func (f *HumanFormatter) FormatMessage(w io.Writer, message string) error {
	if !f.Quiet {
		_, _ = fmt.Fprintln(w, message)
	}
	return nil
}

// FormatError formats an error as human-readable text.
func (f *HumanFormatter) FormatError(w io.Writer, err error) error {
	_, _ = fmt.Fprintf(w, "Error: %v\n", err)
	return nil
}

// JSONFormatter outputs JSON.
type JSONFormatter struct{}

// FormatUpload formats upload results as JSON.
func (f *JSONFormatter) FormatUpload(w io.Writer, results []UploadResult) error {
	type jsonResult struct {
		LocalPath   string `json:"local_path"`
		Key         string `json:"key,omitempty"`
		ContentType string `json:"content_type,omitempty"`
		Size        int64  `json:"size_bytes,omitempty"`
		Error       string `json:"error,omitempty"`
	}

	output := make([]jsonResult, len(results))
	for i := range results {
		r := &results[i]
		jr := jsonResult{
			LocalPath: r.LocalPath,
			Key:       r.Key,
		}
		if r.Err != nil {
			jr.Error = r.Err.Error()
		} else {
			jr.ContentType = r.ContentType
			jr.Size = r.Size
		}
		output[i] = jr
	}

	return writeJSON(w, output)
}

// FormatDownload formats download result as JSON.
func (f *JSONFormatter) FormatDownload(w io.Writer, result *DownloadResult) error {
	return writeJSON(w, result)
}

// FormatDelete formats delete results as JSON.
func (f *JSONFormatter) FormatDelete(w io.Writer, results []DeleteResult) error {
	type jsonResult struct {
		Key     string `json:"key"`
		Deleted bool   `json:"deleted"`
		Error   string `json:"error,omitempty"`
	}

	output := struct {
		Results []jsonResult `json:"results"`
	}{
		Results: make([]jsonResult, len(results)),
	}

	for i, r := range results {
		jr := jsonResult{
			Key:     r.Key,
			Deleted: r.Deleted,
		}
		if r.Err != nil {
			jr.Error = r.Err.Error()
		}
		output.Results[i] = jr
	}

	return writeJSON(w, output)
}

// FormatList formats a folder listing as JSON.
func (f *JSONFormatter) FormatList(w io.Writer, items []s3manager.StorageItem) error {
	if items == nil {
		items = []s3manager.StorageItem{}
	}
	return writeJSON(w, struct {
		Items []s3manager.StorageItem `json:"items"`
	}{Items: items})
}

// FormatContent formats object text as JSON.
func (f *JSONFormatter) FormatContent(w io.Writer, content s3manager.ObjectContent) error {
	return writeJSON(w, content)
}

// FormatFolder formats a created folder as JSON.
func (f *JSONFormatter) FormatFolder(w io.Writer, folder s3manager.FolderResult) error {
	return writeJSON(w, folder)
}

// FormatURL formats a presigned URL as JSON.
func (f *JSONFormatter) FormatURL(w io.Writer, signed s3manager.PresignedURL) error {
	return writeJSON(w, signed)
}

// FormatConfig formats a stored configuration as JSON.
func (f *JSONFormatter) FormatConfig(w io.Writer, cfg s3manager.SafeConfig, source string) error {
	return writeJSON(w, struct {
		Source string `json:"source"`
		s3manager.SafeConfig
	}{Source: source, SafeConfig: cfg})
}

// FormatMessage formats a status message as JSON.
func (f *JSONFormatter) FormatMessage(w io.Writer, message string) error {
	return writeJSON(w, struct {
		Message string `json:"message"`
	}{Message: message})
}

// FormatError formats an error as JSON.
func (f *JSONFormatter) FormatError(w io.Writer, err error) error {
	output := struct {
		Error string `json:"error"`
	}{
		Error: err.Error(),
	}
	return writeJSON(w, output)
}

// writeJSON writes a value as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// formatSize formats bytes as human-readable size.
func formatSize(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
		TB = GB * 1024
	)

	switch {
	case bytes >= TB:
		return fmt.Sprintf("%.1f TB", float64(bytes)/TB)
	case bytes >= GB:
		return fmt.Sprintf("%.1f GB", float64(bytes)/GB)
	case bytes >= MB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/MB)
	case bytes >= KB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/KB)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

// FormatProfileList formats a list of profiles as human-readable text.
func (f *HumanFormatter) FormatProfileList(w io.Writer, profiles []Profile, defaultName string, showSecrets bool) error {
	maxNameLen := 4   // "NAME"
	maxServerLen := 6 // "SERVER"
	for i := range profiles {
		if len(profiles[i].Name) > maxNameLen {
			maxNameLen = len(profiles[i].Name)
		}
		if len(profiles[i].Server) > maxServerLen {
			maxServerLen = len(profiles[i].Server)
		}
	}
	if maxNameLen > 20 {
		maxNameLen = 20
	}
	if maxServerLen > 50 {
		maxServerLen = 50
	}

	_, _ = fmt.Fprintf(w, "  %-*s  %-*s  %s\n", maxNameLen, "NAME", maxServerLen, "SERVER", "TOKEN")
	_, _ = fmt.Fprintf(w, "  %s  %s  %s\n", strings.Repeat("-", maxNameLen), strings.Repeat("-", maxServerLen), strings.Repeat("-", 20))

	for i := range profiles {
		p := &profiles[i]
		marker := " "
		if p.Name == defaultName {
			marker = "*"
		}

		name := p.Name
		if len(name) > maxNameLen {
			name = name[:maxNameLen-3] + "..."
		}

		server := p.Server
		if len(server) > maxServerLen {
			server = server[:maxServerLen-3] + "..."
		}

		_, _ = fmt.Fprintf(w, "%s %-*s  %-*s  %s\n", marker, maxNameLen, name, maxServerLen, server, maskSecret(p.Token, showSecrets))
	}

	return nil
}

// FormatProfileShow formats a single profile as human-readable text.
func (f *HumanFormatter) FormatProfileShow(w io.Writer, profile Profile, isDefault, showSecrets bool) error {
	_, _ = fmt.Fprintf(w, "Name:     %s", profile.Name)
	if isDefault {
		_, _ = fmt.Fprintf(w, " (default)")
	}
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintf(w, "Server:   %s\n", profile.Server)
	_, _ = fmt.Fprintf(w, "Token:    %s\n", maskSecret(profile.Token, showSecrets))
	if profile.StorageDriver != "" {
		_, _ = fmt.Fprintf(w, "Storage:  %s %s\n", profile.StorageDriver, profile.StorageEndpoint)
	}
	if profile.FallbackPath != "" {
		_, _ = fmt.Fprintf(w, "Fallback: %s\n", profile.FallbackPath)
	}
	return nil
}

// FormatProfileList formats a list of profiles as JSON.
func (f *JSONFormatter) FormatProfileList(w io.Writer, profiles []Profile, defaultName string, showSecrets bool) error {
	type jsonProfile struct {
		Name    string `json:"name"`
		Server  string `json:"server"`
		Token   string `json:"token,omitempty"`
		Default bool   `json:"default,omitempty"`
	}

	output := struct {
		Profiles []jsonProfile `json:"profiles"`
	}{
		Profiles: make([]jsonProfile, len(profiles)),
	}

	for i := range profiles {
		p := &profiles[i]
		output.Profiles[i] = jsonProfile{
			Name:    p.Name,
			Server:  p.Server,
			Token:   maskSecret(p.Token, showSecrets),
			Default: p.Name == defaultName,
		}
	}

	return writeJSON(w, output)
}

// FormatProfileShow formats a single profile as JSON.
func (f *JSONFormatter) FormatProfileShow(w io.Writer, profile Profile, isDefault, showSecrets bool) error {
	output := struct {
		Name            string `json:"name"`
		Server          string `json:"server"`
		Token           string `json:"token"`
		StorageDriver   string `json:"storage_driver,omitempty"`
		StorageEndpoint string `json:"storage_endpoint,omitempty"`
		FallbackPath    string `json:"fallback_path,omitempty"`
		Default         bool   `json:"default"`
	}{
		Name:            profile.Name,
		Server:          profile.Server,
		Token:           maskSecret(profile.Token, showSecrets),
		StorageDriver:   profile.StorageDriver,
		StorageEndpoint: profile.StorageEndpoint,
		FallbackPath:    profile.FallbackPath,
		Default:         isDefault,
	}

	return writeJSON(w, output)
}

// maskSecret masks a secret string, showing only first 4 and last 4 characters.
// If showSecrets is true, returns the original value.
// If the secret is too short, returns all asterisks.
func maskSecret(secret string, showSecrets bool) string {
	if showSecrets {
		return secret
	}
	if secret == "" {
		return "(not set)"
	}
	if len(secret) <= 8 {
		return "********"
	}
	return secret[:4] + "..." + secret[len(secret)-4:]
}
