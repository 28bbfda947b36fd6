package validator

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strictPolicy = bluemonday.StrictPolicy()

// SanitizeText strips any markup from free text typed by end clients and
// admins, keeping line breaks.
func SanitizeText(s string) string {
	sanitized := strictPolicy.Sanitize(s)
	return strings.TrimSpace(html.UnescapeString(sanitized))
}

// SanitizeOptional is SanitizeText for nullable fields. An input that is empty
// after cleaning becomes nil.
func SanitizeOptional(s *string) *string {
	if s == nil {
		return nil
	}
	clean := SanitizeText(*s)
	if clean == "" {
		return nil
	}
	return &clean
}
