package errors

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxLabelLength is the longest tag label accepted from external input.
const MaxLabelLength = 256

// ValidateLabel validates a tag label received from an untrusted source
// (HTTP request bodies, tag files written by other tools).
//
// The rules are intentionally conservative:
//   - No empty or whitespace-only labels
//   - Valid UTF-8 only
//   - No control characters or null bytes
//   - Maximum length of MaxLabelLength runes
func ValidateLabel(label string) error {
	if strings.TrimSpace(label) == "" {
		return New(ErrCodeInvalidLabel, "tag label cannot be empty")
	}

	if !utf8.ValidString(label) {
		return New(ErrCodeInvalidLabel, "tag label is not valid UTF-8")
	}

	if utf8.RuneCountInString(label) > MaxLabelLength {
		return New(ErrCodeInvalidLabel, "tag label too long (max %d characters)", MaxLabelLength)
	}

	for _, r := range label {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidLabel, "tag label contains invalid control characters")
		}
	}

	return nil
}
