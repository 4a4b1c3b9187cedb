package helpers

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// FoldText lower-cases s, strips diacritics and collapses runs of whitespace,
// so "Segunda  Mão" and "segunda mao" compare equal.
func FoldText(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.Join(strings.Fields(strings.ToLower(folded)), " ")
}

// CollapseSpace trims s and collapses internal whitespace runs to a single space.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
