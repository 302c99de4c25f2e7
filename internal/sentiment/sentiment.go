// Package sentiment classifies the sentiment of a text with one of several
// backends.
package sentiment

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/lehigh-university-libraries/nlpkit/internal/analysis"
	"github.com/lehigh-university-libraries/nlpkit/internal/config"
	"github.com/lehigh-university-libraries/nlpkit/internal/llm"
)

// Method selects a sentiment backend.
type Method string

const (
	MethodNaiveBayes   Method = "naivebayes"
	MethodVader        Method = "vader"
	MethodTransformers Method = "transformers"
	MethodLLM          Method = "llm"
)

// Methods in menu order.
var Methods = []Method{MethodNaiveBayes, MethodVader, MethodTransformers, MethodLLM}

const (
	labelTransformers   = "Transformers (DistilBERT)"
	labelHuggingFaceAPI = "Transformers (Hugging Face API)"
)

const (
	Positive = "Positive"
	Negative = "Negative"
	Neutral  = "Neutral"
)

// Result is a sentiment category with the backend's score.
type Result struct {
	Method    string   `json:"method" yaml:"method"`
	Sentiment string   `json:"sentiment" yaml:"sentiment"`
	Score     *float64 `json:"score,omitempty" yaml:"score,omitempty"`
}

func (r Result) MethodLabel() string { return r.Method }

func (r Result) Labels() []string { return []string{r.Sentiment} }

func (r Result) Render(w io.Writer) {
	fmt.Fprintf(w, "\nMethod used: %s\n", r.Method)
	fmt.Fprintf(w, "Sentiment: %s\n", r.Sentiment)
	if r.Score != nil {
		fmt.Fprintf(w, "Score/Confidence: %s\n", strconv.FormatFloat(*r.Score, 'f', -1, 64))
	}
}

// ClassifyPolarity maps a polarity in [-1, 1]: any positive value is
// Positive and any negative value Negative.
func ClassifyPolarity(polarity float64) string {
	switch {
	case polarity > 0:
		return Positive
	case polarity < 0:
		return Negative
	default:
		return Neutral
	}
}

// ClassifyCompound maps a VADER compound score with the usual ±0.05 bounds.
func ClassifyCompound(compound float64) string {
	switch {
	case compound >= 0.05:
		return Positive
	case compound <= -0.05:
		return Negative
	default:
		return Neutral
	}
}

// classifyLabel maps a POSITIVE/NEGATIVE classifier label; anything else is
// Neutral.
func classifyLabel(label string) string {
	switch strings.ToUpper(label) {
	case "POSITIVE":
		return Positive
	case "NEGATIVE":
		return Negative
	default:
		return Neutral
	}
}

// Task is the sentiment analysis task.
type Task struct {
	*analysis.Base[Result]
}

type analyzeFunc func(ctx context.Context, text string) (string, float64, error)

// New registers every sentiment backend.
func New(cfg *config.Config, chat llm.Chatter) *Task {
	t := &Task{Base: analysis.NewBase[Result](analysis.TaskInfo{
		Name:    "sentiment",
		Subject: "sentiment analysis",
		Default: string(MethodNaiveBayes),
	})}

	vader := newVader()

	if nb, err := newNaiveBayes(vader.compound); err != nil {
		t.unavailable(MethodNaiveBayes, "Naive Bayes", err)
	} else {
		t.register(MethodNaiveBayes, "Naive Bayes", nb.analyze)
	}

	t.register(MethodVader, "VADER", vader.analyze)

	// The hosted inference API stands in for the local model when a token is
	// configured.
	local, err := newTransformers()
	switch {
	case err == nil:
		t.OnClose(local.Close)
		t.register(MethodTransformers, labelTransformers, local.analyze)
	case cfg.HuggingFace.Token != "":
		slog.Debug("Local transformers model unavailable, using the Hugging Face API", "err", err)
		hf := newHuggingFace(cfg.HuggingFace.BaseURL, cfg.HuggingFace.SentimentModel, cfg.HuggingFace.Token)
		t.register(MethodTransformers, labelHuggingFaceAPI, hf.analyze)
	default:
		t.unavailable(MethodTransformers, labelTransformers, err)
	}

	t.register(MethodLLM, llmLabel(cfg), newLLM(chat).analyze)

	return t
}

func (t *Task) register(m Method, label string, fn analyzeFunc) {
	t.Registry.Register(analysis.Backend[Result]{
		Key:   string(m),
		Label: label,
		Adapter: func(ctx context.Context, req analysis.Request) (Result, error) {
			sentiment, score, err := fn(ctx, req.Text)
			if err != nil {
				return Result{}, err
			}
			return Result{Method: label, Sentiment: sentiment, Score: &score}, nil
		},
	})
}

func (t *Task) unavailable(m Method, label string, err error) {
	t.Registry.Register(analysis.Backend[Result]{Key: string(m), Label: label, Err: err})
}

func llmLabel(cfg *config.Config) string {
	if model := cfg.LLM.ModelFor(cfg.LLM.Provider); model != "" {
		return fmt.Sprintf("LLM (%s)", model)
	}
	return "LLM"
}
