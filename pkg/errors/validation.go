package errors

import (
	"path/filepath"
	"strings"
	"unicode"
)

// Formats lists the output formats a figure can be encoded to.
var Formats = []string{"pdf", "svg", "eps", "png", "jpg", "jpeg", "tif", "tiff"}

// ValidateOutputPath validates a figure output path.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 1024 characters
//   - No null bytes or control characters
//   - Path cannot name a directory (trailing separator)
func ValidateOutputPath(path string) error {
	if strings.TrimSpace(path) == "" {
		return New(ErrCodeInvalidPath, "output path cannot be empty")
	}

	const maxPathLength = 1024
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "output path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "output path contains invalid characters")
		}
	}

	if strings.HasSuffix(path, "/") || strings.HasSuffix(path, string(filepath.Separator)) {
		return New(ErrCodeInvalidPath, "output path %q names a directory", path)
	}

	return nil
}

// ValidateFormat checks that format is one of Formats.
func ValidateFormat(format string) error {
	if format == "" {
		return New(ErrCodeInvalidFormat, "output format cannot be empty")
	}
	f := strings.ToLower(format)
	for _, known := range Formats {
		if f == known {
			return nil
		}
	}
	return New(ErrCodeInvalidFormat, "unsupported output format %q (want one of %s)",
		format, strings.Join(Formats, ", "))
}

// ValidateName validates a figure or series name used in URLs and file names.
// It rejects names that could be used for path traversal.
func ValidateName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "name cannot be empty")
	}
	if len(name) > 128 {
		return New(ErrCodeInvalidInput, "name too long (max 128 characters)")
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "name contains invalid control characters")
		}
	}
	for _, pattern := range []string{"..", "/", "\\", "\x00"} {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidInput, "name contains invalid characters: %q", pattern)
		}
	}
	return nil
}
