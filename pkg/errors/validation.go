package errors

import (
	"strings"
	"unicode"
)

// maxContainerIDLength bounds container identifiers read from config files.
const maxContainerIDLength = 128

// ValidateBatchSize checks that a batch size is usable for incremental
// placement. Zero means "no batches" and is rejected as well.
func ValidateBatchSize(n int) error {
	if n <= 0 {
		return New(ErrCodeInvalidConfig, "batch size must be positive, got %d", n)
	}
	return nil
}

// ValidateContainerID validates the identifier of a layout surface.
//
// Rules:
//   - not empty
//   - at most 128 characters
//   - no whitespace or control characters
func ValidateContainerID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidConfig, "container id cannot be empty")
	}
	if len(id) > maxContainerIDLength {
		return New(ErrCodeInvalidConfig, "container id too long (max %d characters)", maxContainerIDLength)
	}
	for _, r := range id {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidConfig, "container id contains invalid characters: %q", id)
		}
	}
	return nil
}

// ValidatePath validates a user-supplied file path for item manifests and
// snapshots. It rejects empty paths, null bytes and control characters, and
// traversal sequences.
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	for _, part := range strings.Split(path, "/") {
		if part == ".." {
			return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
		}
	}

	return nil
}
