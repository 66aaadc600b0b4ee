// Package analyzer normalises and tokenises catalog text. Indexing and
// querying share it, so identical input always maps to identical terms.
package analyzer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes text (NFD) and drops combining marks, so "Café"
// normalises to the same term as "Cafe".
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))

// Normalize lowercases text, strips diacritics, replaces every rune that is
// not a letter, digit, underscore, or whitespace with a space, and collapses
// whitespace runs. Empty input yields "".
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	text = strings.ToLower(text)
	if stripped, _, err := transform.String(stripMarks, text); err == nil {
		text = stripped
	}
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_':
			b.WriteRune(r)
		default:
			// Whitespace and punctuation both end up as separators;
			// strings.Fields collapses the runs below.
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Tokenize splits normalised text into terms, discarding single-rune tokens.
// It never fails; empty input yields an empty slice.
func Tokenize(text string) []string {
	fields := strings.Fields(Normalize(text))
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		if utf8.RuneCountInString(f) > 1 {
			terms = append(terms, f)
		}
	}
	return terms
}
