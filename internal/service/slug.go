package service

import (
	"regexp"
	"strings"
)

var nonSlugRunes = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// Slugify turns free text into a URL-safe slug: lowercase, every run of
// non-alphanumeric characters collapsed into a single hyphen, leading and
// trailing hyphens stripped.
func Slugify(text string) string {
	lowered := strings.ToLower(strings.TrimSpace(text))
	slug := nonSlugRunes.ReplaceAllString(lowered, "-")
	return strings.Trim(slug, "-")
}

// IsValidSlug reports whether s is already in canonical slug form.
func IsValidSlug(s string) bool {
	return s != "" && Slugify(s) == s
}
