package utils

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	alphaRun   = regexp.MustCompile(`[a-z]+`)
	numericRun = regexp.MustCompile(`[0-9]+`)
)

// Normalize prepares an address for comparison: trims, lowercases and
// collapses every run of whitespace into a single space.
// Empty input returns "".
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

// WhitespaceTokens splits already-normalized text on spaces.
func WhitespaceTokens(text string) []string {
	return strings.Fields(text)
}

// AlnumTokens splits text on runs of anything that is not a letter or digit.
// Letters outside ASCII count, so "straße 12" yields ["straße", "12"].
func AlnumTokens(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// AlphaTokens returns the ASCII letter runs of lowercased text.
func AlphaTokens(text string) []string {
	return alphaRun.FindAllString(text, -1)
}

// NumericTokens returns the ASCII digit runs of text (house numbers, postcodes).
func NumericTokens(text string) []string {
	return numericRun.FindAllString(text, -1)
}
