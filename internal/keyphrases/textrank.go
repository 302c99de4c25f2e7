package keyphrases

import (
	"context"

	"github.com/DavidBelicza/TextRank/v2"
)

// extractTextRank ranks word pairs first, then single words.
func extractTextRank(ctx context.Context, text string, count int) ([]string, error) {
	tr := textrank.NewTextRank()
	tr.Populate(text, textrank.NewDefaultLanguage(), textrank.NewDefaultRule())
	tr.Ranking(textrank.NewDefaultAlgorithm())

	seen := make(map[string]bool)
	var phrases []string
	add := func(p string) {
		if len(phrases) < count && !seen[p] {
			seen[p] = true
			phrases = append(phrases, p)
		}
	}

	for _, p := range textrank.FindPhrases(tr) {
		add(p.Left + " " + p.Right)
	}
	for _, w := range textrank.FindSingleWords(tr) {
		add(w.Word)
	}
	return phrases, nil
}
