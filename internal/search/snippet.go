package search

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/oooAHOYooo/ahoy-search/internal/index"
)

// snippetRadius is the window extracted on each side of the first matched
// query term.
const snippetRadius = 60

const snippetFallbackMax = 120

// buildSnippet picks the document field containing the most distinct query
// terms (case-insensitive substring; earlier fields win ties) and extracts a
// bounded window around the first match. When no field contains any query
// term it falls back to the document summary.
func buildSnippet(doc *index.Document, queryTerms []string) string {
	var bestText string
	bestScore := 0
	for _, field := range doc.Fields {
		if field.Text == "" {
			continue
		}
		lowered := strings.ToLower(field.Text)
		score := 0
		for _, term := range queryTerms {
			if strings.Contains(lowered, term) {
				score++
			}
		}
		if score > bestScore {
			bestScore = score
			bestText = field.Text
		}
	}

	if bestText == "" {
		return truncateRunes(doc.Summary, snippetFallbackMax)
	}

	start, end := 0, len(bestText)
	for _, term := range queryTerms {
		matchStart, matchEnd := foldIndex(bestText, term)
		if matchStart == -1 {
			continue
		}
		start = matchStart - snippetRadius
		if start < 0 {
			start = 0
		}
		end = matchEnd + snippetRadius
		if end > len(bestText) {
			end = len(bestText)
		}
		break
	}

	// Snap the window to rune boundaries so a multi-byte rune at either
	// edge is never split.
	for start > 0 && !utf8.RuneStart(bestText[start]) {
		start--
	}
	for end < len(bestText) && !utf8.RuneStart(bestText[end]) {
		end++
	}

	snippet := bestText[start:end]
	if start > 0 {
		snippet = "..." + snippet
	}
	if end < len(bestText) {
		snippet = snippet + "..."
	}
	return snippet
}

// foldIndex returns the byte range [start, end) in s of the first occurrence
// of term under rune-wise case folding, or (-1, -1). Offsets index into s
// itself, not into a lowered copy, so they stay valid when a rune's lowercase
// form has a different UTF-8 length.
func foldIndex(s, term string) (int, int) {
	if term == "" {
		return -1, -1
	}
	target := []rune(term)
	runes := make([]rune, 0, len(s))
	offsets := make([]int, 0, len(s)+1)
	for i, r := range s {
		runes = append(runes, unicode.ToLower(r))
		offsets = append(offsets, i)
	}
	offsets = append(offsets, len(s))

	for i := 0; i+len(target) <= len(runes); i++ {
		matched := true
		for j, tr := range target {
			if runes[i+j] != tr {
				matched = false
				break
			}
		}
		if matched {
			return offsets[i], offsets[i+len(target)]
		}
	}
	return -1, -1
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
