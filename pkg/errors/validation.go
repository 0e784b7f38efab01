package errors

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// ValidatePartName validates a container part name for safety and correctness.
// It rejects names that could escape the container's namespace.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters or null bytes
//   - No path traversal sequences (.., //)
//   - No backslashes (Windows-style paths)
//   - Maximum length of 500 characters
//
// A single leading slash is permitted; part names are normalized by the
// package layer before storage.
func ValidatePartName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidPart, "part name cannot be empty")
	}

	const maxPartNameLength = 500
	if len(name) > maxPartNameLength {
		return New(ErrCodeInvalidPart, "part name too long (max %d characters)", maxPartNameLength)
	}

	for _, r := range name {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPart, "part name contains invalid characters")
		}
	}

	if strings.Contains(name, "..") {
		return New(ErrCodeInvalidPart, "part name cannot contain path traversal sequences (..)")
	}

	if strings.Contains(name, "//") {
		return New(ErrCodeInvalidPart, "part name cannot contain double slashes")
	}

	if strings.Contains(name, "\\") {
		return New(ErrCodeInvalidPart, "part name cannot contain backslashes")
	}

	return nil
}

// hexColorRegex matches a six-digit hex color, without the leading '#'.
var hexColorRegex = regexp.MustCompile(`^[0-9a-fA-F]{6}$`)

// NormalizeHexColor validates value as a hex color ("#RRGGBB" or "RRGGBB",
// case-insensitive) and returns the canonical uppercase form without the
// leading '#'.
func NormalizeHexColor(value string) (string, error) {
	v := strings.TrimPrefix(strings.TrimSpace(value), "#")
	if !hexColorRegex.MatchString(v) {
		return "", New(ErrCodeInvalidColor, "invalid hex color: %q", value)
	}
	return strings.ToUpper(v), nil
}

// ParseSlideNumbers parses a slide selection expression like "1,3-5,9" into
// a set of 1-based slide numbers. An empty expression yields an empty set.
func ParseSlideNumbers(value string) (map[int]bool, error) {
	selected := make(map[int]bool)
	if value == "" {
		return selected, nil
	}
	for _, token := range strings.Split(value, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		if start, end, ok := strings.Cut(token, "-"); ok {
			lo, err := parsePositive(start)
			if err != nil {
				return nil, err
			}
			hi, err := parsePositive(end)
			if err != nil {
				return nil, err
			}
			if hi < lo {
				lo, hi = hi, lo
			}
			for n := lo; n <= hi; n++ {
				selected[n] = true
			}
			continue
		}
		n, err := parsePositive(token)
		if err != nil {
			return nil, err
		}
		selected[n] = true
	}
	return selected, nil
}

func parsePositive(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, New(ErrCodeInvalidSelector, "invalid slide number: %q", s)
	}
	if n <= 0 {
		return 0, New(ErrCodeInvalidSelector, "slide numbers must be positive")
	}
	return n, nil
}
