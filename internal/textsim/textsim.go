// Package textsim compares short strings by edit distance.
package textsim

import (
	"strings"
	"unicode"
)

// Similarity returns a ratio (0.0 to 1.0) using Levenshtein distance over runes
func Similarity(s1, s2 string) float64 {
	if s1 == s2 {
		return 1.0
	}

	r1, r2 := []rune(s1), []rune(s2)
	if len(r1) == 0 || len(r2) == 0 {
		return 0.0
	}

	maxLen := max(len(r1), len(r2))
	return 1.0 - float64(Levenshtein(r1, r2))/float64(maxLen)
}

// Levenshtein calculates the edit distance between two rune slices
func Levenshtein(s1, s2 []rune) int {
	if len(s1) == 0 {
		return len(s2)
	}
	if len(s2) == 0 {
		return len(s1)
	}

	// Two rows of the dynamic programming matrix are enough
	prev := make([]int, len(s2)+1)
	curr := make([]int, len(s2)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(s1); i++ {
		curr[0] = i
		for j := 1; j <= len(s2); j++ {
			cost := 1
			if s1[i-1] == s2[j-1] {
				cost = 0
			}

			deletion := prev[j] + 1
			insertion := curr[j-1] + 1
			substitution := prev[j-1] + cost

			curr[j] = min(deletion, insertion, substitution)
		}
		prev, curr = curr, prev
	}

	return prev[len(s2)]
}

// Normalize lowercases text, drops punctuation and collapses whitespace.
func Normalize(text string) string {
	text = strings.Map(func(r rune) rune {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, text)
	return strings.Join(strings.Fields(text), " ")
}
