package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidateMemberName validates a member's display name.
//
// The validation rules are intentionally conservative:
//   - No empty names (after trimming whitespace)
//   - No control characters
//   - Maximum length of 256 characters
func ValidateMemberName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return New(ErrCodeValidation, "member name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeValidation, "member name too long (max 256 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeValidation, "member name contains invalid control characters")
		}
	}

	return nil
}

// ValidateRegionName validates a region's display name.
// Names that are empty after trimming whitespace are rejected.
func ValidateRegionName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return New(ErrCodeValidation, "region name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeValidation, "region name too long (max 256 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeValidation, "region name contains invalid control characters")
		}
	}

	return nil
}

// Recognized gender values, matching the record format of imported trees.
var validGenders = map[string]bool{
	"male":   true,
	"female": true,
}

// ValidateGender validates a member's gender value.
func ValidateGender(gender string) error {
	if gender == "" {
		return New(ErrCodeValidation, "gender cannot be empty")
	}
	if !validGenders[gender] {
		return New(ErrCodeValidation, "invalid gender: %q (must be male or female)", gender)
	}
	return nil
}

// hexColorRegex matches #RGB and #RRGGBB color values.
var hexColorRegex = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// ValidateColor validates a region color. An empty color is valid and means
// the default color applies.
func ValidateColor(color string) error {
	if color == "" {
		return nil
	}
	if !hexColorRegex.MatchString(color) {
		return New(ErrCodeValidation, "invalid color: %q (expected #RGB or #RRGGBB)", color)
	}
	return nil
}

// dateRegex matches the YYYY, YYYY-MM, and YYYY-MM-DD forms accepted for
// birth and death dates. Genealogical records are often imprecise, so
// partial dates are allowed.
var dateRegex = regexp.MustCompile(`^\d{1,4}(?:-\d{2}(?:-\d{2})?)?$`)

// ValidateDate validates a birth or death date string. Empty dates are valid
// (the date is unknown).
func ValidateDate(date string) error {
	if date == "" {
		return nil
	}
	if len(date) > 32 {
		return New(ErrCodeValidation, "date too long (max 32 characters)")
	}
	if !dateRegex.MatchString(date) {
		return New(ErrCodeValidation, "invalid date: %q (expected YYYY, YYYY-MM, or YYYY-MM-DD)", date)
	}
	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeValidation, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeValidation, "URL must use http or https scheme")
	}

	return nil
}
