package keyphrases

import (
	"context"

	rake "github.com/afjoseph/RAKE.Go"
)

func extractRake(ctx context.Context, text string, count int) ([]string, error) {
	candidates := rake.RunRake(text)

	phrases := make([]string, 0, min(count, len(candidates)))
	for _, c := range candidates {
		if len(phrases) == count {
			break
		}
		phrases = append(phrases, c.Key)
	}
	return phrases, nil
}
