package crawler

import (
	"regexp"
	"strings"
)

var (
	// PricePattern matches a Brazilian real amount: the currency symbol, optional
	// (also non-breaking) spaces, then digits with thousand and decimal separators.
	PricePattern = regexp.MustCompile(`R\$[\s\x{00A0}]*\d[\d.,]*`)

	// priceDigits keeps the characters of a bare price fraction
	priceDigits = regexp.MustCompile(`[^\d,.]`)
)

// FindPrice returns the first currency amount in text, verbatim
func FindPrice(text string) (string, bool) {
	m := PricePattern.FindString(text)
	if m == "" {
		return "", false
	}
	return strings.TrimRight(m, ".,"), true
}

// PriceFromFraction turns a bare amount such as "1.299" into "R$ 1.299"
func PriceFromFraction(text string) (string, bool) {
	clean := priceDigits.ReplaceAllString(text, "")
	if clean == "" {
		return "", false
	}
	return "R$ " + clean, true
}
