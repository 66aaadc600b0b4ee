// Package fuzzy implements bounded edit-distance matching for query terms.
package fuzzy

import "unicode/utf8"

// MaxDistance is the edit-distance bound for a fuzzy match.
const MaxDistance = 1

// minMatchLen excludes short, high-frequency tokens from fuzzy matching;
// "to" must not match "do" even though their distance is 1.
const minMatchLen = 3

// Distance returns the Levenshtein edit distance between a and b: the
// minimum number of single-rune insertions, deletions, and substitutions
// needed to transform one into the other. Rolling single-row DP.
func Distance(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) < len(rb) {
		ra, rb = rb, ra
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i, ca := range ra {
		curr[0] = i + 1
		for j, cb := range rb {
			insertion := prev[j+1] + 1
			deletion := curr[j] + 1
			substitution := prev[j]
			if ca != cb {
				substitution++
			}
			curr[j+1] = min(insertion, deletion, substitution)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

// Match reports whether two terms are considered equivalent. Exact equality
// always matches without computing a distance; otherwise both terms must be
// longer than two runes and within MaxDistance edits.
func Match(a, b string) bool {
	if a == b {
		return true
	}
	if utf8.RuneCountInString(a) < minMatchLen || utf8.RuneCountInString(b) < minMatchLen {
		return false
	}
	return Distance(a, b) <= MaxDistance
}
