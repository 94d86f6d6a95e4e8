package report

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	disallowedChars = regexp.MustCompile(`[^a-z0-9/_\-\s]`)
	whitespaceRun   = regexp.MustCompile(`\s+`)
)

// Normalize lowercases text, strips diacritics, drops anything outside
// [a-z0-9/_-] and whitespace, and collapses whitespace runs. It is idempotent.
func Normalize(text string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, strings.ToLower(text))
	if err != nil {
		folded = strings.ToLower(text)
	}
	folded = disallowedChars.ReplaceAllString(folded, " ")
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(folded, " "))
}

// Tokens splits normalized text on whitespace.
func Tokens(text string) []string {
	return strings.Fields(Normalize(text))
}
