package errors

import (
	"strings"
	"unicode"
)

// ValidateDocumentPath validates a vault-relative document path for safety.
// It rejects paths that could escape the vault root or embed control bytes.
//
// The validation rules are intentionally conservative:
//   - No empty paths
//   - No absolute paths
//   - No control characters or null bytes
//   - No path traversal sequences (.., //)
//   - Maximum length of 500 characters
func ValidateDocumentPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "document path cannot be empty")
	}

	if len(path) > 500 {
		return New(ErrCodeInvalidPath, "document path too long (max 500 characters)")
	}

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "document path must be vault-relative")
	}

	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "document path contains invalid control characters")
		}
	}

	dangerousPatterns := []string{
		"..",   // Parent directory
		"//",   // Double slash
		"\x00", // Null byte
		"\\",   // Backslash (Windows path)
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(path, pattern) {
			return New(ErrCodeInvalidPath, "document path contains invalid sequence: %q", pattern)
		}
	}

	return nil
}

// ValidateShortID validates a dependency identifier token.
// Short IDs are exactly six lowercase base36 characters.
func ValidateShortID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidTaskID, "task id cannot be empty")
	}
	if len(id) != 6 {
		return New(ErrCodeInvalidTaskID, "task id must be 6 characters, got %d", len(id))
	}
	for _, r := range id {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return New(ErrCodeInvalidTaskID, "task id must be lowercase base36: %q", id)
		}
	}
	return nil
}

// ValidateTag validates a tag token for inline use.
// Tags cannot be empty or contain whitespace, and must not carry the leading #.
func ValidateTag(tag string) error {
	if tag == "" {
		return New(ErrCodeInvalidInput, "tag cannot be empty")
	}
	if strings.HasPrefix(tag, "#") {
		return New(ErrCodeInvalidInput, "tag must not include the leading #")
	}
	for _, r := range tag {
		if unicode.IsSpace(r) {
			return New(ErrCodeInvalidInput, "tag cannot contain whitespace: %q", tag)
		}
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "tag contains invalid control characters")
		}
	}
	return nil
}
