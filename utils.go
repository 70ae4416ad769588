package s3manager

import (
	"regexp"
	"strings"
)

// Delimiter separates path segments in object keys.
const Delimiter = "/"

var invalidFolderChars = regexp.MustCompile(`[^\w\s-]`)

// SanitizeFolderName strips every character that is not a word character,
// whitespace or hyphen, then trims surrounding whitespace.
// An empty result means the name is unusable.
func SanitizeFolderName(name string) string {
	return strings.TrimSpace(invalidFolderChars.ReplaceAllString(name, ""))
}

// FolderName returns the display name of a common prefix: a single trailing
// delimiter is trimmed and the last non-empty segment is returned.
// Returns "" when the prefix has no non-empty segment.
func FolderName(prefix string) string {
	return lastSegment(strings.TrimSuffix(prefix, Delimiter))
}

// FileName returns the last path segment of an object key.
func FileName(key string) string {
	return lastSegment(key)
}

func lastSegment(p string) string {
	segments := strings.Split(p, Delimiter)
	for i := len(segments) - 1; i >= 0; i-- {
		if segments[i] != "" {
			return segments[i]
		}
	}
	return ""
}

// ResolveKey picks the object key of a presign request.
// An explicit key wins; otherwise the key is prefix+fileName.
// Returns false if neither is present.
func ResolveKey(req PresignRequest) (string, bool) {
	if req.Key != "" {
		return req.Key, true
	}
	if req.FileName != "" {
		return req.Prefix + req.FileName, true
	}
	return "", false
}

// Redact replaces every occurrence of secret in s.
func Redact(s, secret string) string {
	if secret == "" {
		return s
	}
	return strings.ReplaceAll(s, secret, "[REDACTED]")
}
