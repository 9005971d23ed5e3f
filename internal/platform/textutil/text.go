package textutil

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	localeTagPattern = regexp.MustCompile(`\[.+\]\s?`)
	slugPattern      = regexp.MustCompile(`[^a-z0-9]+`)
)

// StripLocaleTag removes the bracketed locale hint the catalog embeds in
// free-text fields ("Zapatilla urbana [CL]" -> "Zapatilla urbana").
func StripLocaleTag(s string) string {
	return strings.TrimSpace(localeTagPattern.ReplaceAllString(s, ""))
}

var deaccent = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slugify lowercases, strips accents, and collapses runs of non-alphanumeric
// characters into single dashes.
func Slugify(s string) string {
	if cleaned, _, err := transform.String(deaccent, s); err == nil {
		s = cleaned
	}
	s = strings.ToLower(strings.TrimSpace(s))
	s = slugPattern.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Truncate shortens s to at most limit characters including the omission
// marker, appended only when truncation happened. Limits count runes so
// accented text is not cut mid-character.
func Truncate(s string, limit int, omission string) string {
	r := []rune(s)
	if limit <= 0 || len(r) <= limit {
		return s
	}
	cut := limit - len([]rune(omission))
	if cut < 0 {
		cut = 0
	}
	return string(r[:cut]) + omission
}
