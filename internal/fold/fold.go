// Package fold normalizes text for case- and accent-insensitive matching.
package fold

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Upper upper-cases s and strips diacritics so "Educación" and "EDUCACION"
// compare equal.
func Upper(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}

	return strings.ToUpper(folded)
}

// Contains reports whether substr occurs in s after folding both.
func Contains(s, substr string) bool {
	return strings.Contains(Upper(s), Upper(substr))
}
