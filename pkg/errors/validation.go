package errors

import (
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxCityNameLength bounds city names accepted from files and requests.
const MaxCityNameLength = 128

// ValidateCityName rejects names that would break the delimited output or
// the route dump:
//   - No empty names
//   - No control characters
//   - No arrow sequence "->"
//   - At most [MaxCityNameLength] characters
func ValidateCityName(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidInput, "city name cannot be empty")
	}
	if utf8.RuneCountInString(name) > MaxCityNameLength {
		return New(ErrCodeInvalidInput, "city name too long (max %d characters)", MaxCityNameLength)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "city name contains invalid control characters")
		}
	}
	if strings.Contains(name, "->") {
		return New(ErrCodeInvalidInput, "city name cannot contain %q", "->")
	}
	return nil
}

// ValidateDelimiter checks that s is a single printable character usable as
// a cell separator. Quotes, line breaks and the Unicode replacement character
// are rejected.
func ValidateDelimiter(s string) (rune, error) {
	if utf8.RuneCountInString(s) != 1 {
		return 0, New(ErrCodeInvalidInput, "delimiter must be exactly one character, got %q", s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	if r == '"' || r == '\r' || r == '\n' || r == utf8.RuneError {
		return 0, New(ErrCodeInvalidInput, "delimiter %q is not allowed", s)
	}
	if r != '\t' && !unicode.IsPrint(r) {
		return 0, New(ErrCodeInvalidInput, "delimiter %q is not printable", s)
	}
	return r, nil
}

// ValidatePath validates a matrix file path given on the command line or in
// the config file.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - Must not name a directory by its trailing separator
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

	if strings.HasSuffix(path, "/") || strings.HasSuffix(path, string(filepath.Separator)) {
		return New(ErrCodeInvalidPath, "path %q names a directory", path)
	}
	return nil
}
