package fetcher

import (
	"errors"
	"strings"
)

// Validation failures for backend results. A failed validation means the
// result is discarded and the next backend (or tier) gets its chance; none of
// these reach the user.
var (
	// ErrEmptyTranslation means the backend returned no usable text.
	ErrEmptyTranslation = errors.New("fetcher: empty translation")

	// ErrEchoedInput means the backend returned the input unchanged.
	ErrEchoedInput = errors.New("fetcher: translation equals input")

	// ErrErrorSentinel means the backend smuggled an error message into the
	// result body instead of failing properly.
	ErrErrorSentinel = errors.New("fetcher: translation contains error marker")

	// ErrForeignScript means the result is written in Kannada script rather
	// than romanized Tulu.
	ErrForeignScript = errors.New("fetcher: translation in non-roman script")
)

// errorMarkers are substrings that indicate a backend returned an error
// message as its translation body.
var errorMarkers = []string{
	"error",
	"sorry",
	"cannot translate",
	"unable to",
	"i don't",
	"as an ai",
}

// ContainsKannada reports whether s contains any rune in the Kannada Unicode
// block (U+0C80–U+0CFF). The bot serves romanized Tulu only.
func ContainsKannada(s string) bool {
	for _, r := range s {
		if r >= 0x0C80 && r <= 0x0CFF {
			return true
		}
	}
	return false
}

// ValidateTranslation checks a backend result against the input it was
// produced for. It returns nil only for a non-empty romanized result that is
// not an echo of the input and carries no error marker.
func ValidateTranslation(input, result string) error {
	trimmed := strings.TrimSpace(result)
	if trimmed == "" {
		return ErrEmptyTranslation
	}
	if strings.EqualFold(trimmed, strings.TrimSpace(input)) {
		return ErrEchoedInput
	}
	lower := strings.ToLower(trimmed)
	for _, marker := range errorMarkers {
		if strings.Contains(lower, marker) {
			return ErrErrorSentinel
		}
	}
	if ContainsKannada(trimmed) {
		return ErrForeignScript
	}
	return nil
}
