package errors

import (
	"strings"
	"unicode"
)

// MaxLayer is the largest layer or datatype number accepted. GDSII stores both
// as 16-bit signed integers, but mask writers commonly stop at 255.
const MaxLayer = 255

// ValidateTag validates a (layer, datatype) pair for a fabrication mask layer.
func ValidateTag(layer, datatype int) error {
	if layer < 0 || layer > MaxLayer {
		return New(ErrCodeConfiguration, "layer %d out of range [0, %d]", layer, MaxLayer)
	}
	if datatype < 0 || datatype > MaxLayer {
		return New(ErrCodeConfiguration, "datatype %d out of range [0, %d]", datatype, MaxLayer)
	}
	return nil
}

// ValidatePath validates an output path or base path for safety.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No backslashes (Windows-style paths)
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

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}

// ValidateCacheURL validates a remote cache URL. Only Redis and MongoDB
// connection strings are accepted.
func ValidateCacheURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "cache URL cannot be empty")
	}

	for _, scheme := range []string{"redis://", "rediss://", "mongodb://", "mongodb+srv://"} {
		if strings.HasPrefix(rawURL, scheme) {
			return nil
		}
	}
	return New(ErrCodeInvalidInput, "cache URL must use redis://, rediss://, mongodb:// or mongodb+srv://")
}
