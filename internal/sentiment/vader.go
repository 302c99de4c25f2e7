package sentiment

import (
	"context"

	"github.com/jonreiter/govader"
)

type vader struct {
	compound func(text string) float64
}

func newVader() *vader {
	analyzer := govader.NewSentimentIntensityAnalyzer()
	return &vader{compound: func(text string) float64 {
		return analyzer.PolarityScores(text).Compound
	}}
}

func (v *vader) analyze(ctx context.Context, text string) (string, float64, error) {
	compound := v.compound(text)
	return ClassifyCompound(compound), compound, nil
}
