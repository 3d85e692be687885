package errors

import (
	"path/filepath"
	"strings"
	"unicode"
)

// ValidateRange checks that a feature range lies on a sequence of length n.
// Both ends are 1-based and inclusive; start > stop denotes a range that
// wraps through the origin, which is only legal on circular sequences.
func ValidateRange(start, stop, n int, linear bool) error {
	if n <= 0 {
		return New(ErrCodeInvalidScene, "sequence length must be positive, got %d", n)
	}
	if start < 1 || start > n {
		return New(ErrCodeInvalidRange, "start %d outside 1..%d", start, n)
	}
	if stop < 1 || stop > n {
		return New(ErrCodeInvalidRange, "stop %d outside 1..%d", stop, n)
	}
	if linear && start > stop {
		return New(ErrCodeInvalidRange, "range %d..%d wraps the origin of a linear sequence", start, stop)
	}
	return nil
}

// ValidateOutputPath validates a user supplied output path.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
func ValidateOutputPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "output path cannot be empty")
	}
	if len(path) > 500 {
		return New(ErrCodeInvalidPath, "output path too long (max 500 characters)")
	}
	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "output path contains invalid control characters")
		}
	}
	if strings.HasSuffix(path, string(filepath.Separator)) {
		return New(ErrCodeInvalidPath, "output path %q is a directory", path)
	}
	return nil
}

// ValidateSessionID validates a view-session identifier received over HTTP.
// IDs are canonical UUID strings; anything else is rejected before it
// reaches a store.
func ValidateSessionID(id string) error {
	if len(id) != 36 {
		return New(ErrCodeInvalidInput, "invalid session id")
	}
	for i, r := range id {
		switch i {
		case 8, 13, 18, 23:
			if r != '-' {
				return New(ErrCodeInvalidInput, "invalid session id")
			}
		default:
			if !unicode.Is(unicode.ASCII_Hex_Digit, r) {
				return New(ErrCodeInvalidInput, "invalid session id")
			}
		}
	}
	return nil
}
