// Package keyphrases ranks the key phrases of a text with one of several
// backends.
package keyphrases

import (
	"context"
	"fmt"
	"io"

	"github.com/lehigh-university-libraries/nlpkit/internal/analysis"
	"github.com/lehigh-university-libraries/nlpkit/internal/config"
	"github.com/lehigh-university-libraries/nlpkit/internal/llm"
)

// Method selects a key phrase extraction backend.
type Method string

const (
	MethodRake     Method = "rake"
	MethodTextRank Method = "textrank"
	MethodYake     Method = "yake"
	MethodLLM      Method = "llm"
)

// Methods in menu order.
var Methods = []Method{MethodRake, MethodTextRank, MethodYake, MethodLLM}

// DefaultCount is the number of phrases returned when none is requested.
const DefaultCount = 5

// Result lists the top phrases, best first.
type Result struct {
	Method  string   `json:"method" yaml:"method"`
	Phrases []string `json:"phrases" yaml:"phrases"`
}

func (r Result) MethodLabel() string { return r.Method }

func (r Result) Labels() []string { return r.Phrases }

func (r Result) Render(w io.Writer) {
	fmt.Fprintf(w, "\nMethod used: %s\n", r.Method)
	fmt.Fprintln(w, "Key phrases extracted:")
	for i, p := range r.Phrases {
		fmt.Fprintf(w, "%d. %s\n", i+1, p)
	}
}

// Task is the key phrase extraction task.
type Task struct {
	*analysis.Base[Result]
}

type extractFunc func(ctx context.Context, text string, count int) ([]string, error)

// New registers every key phrase backend.
func New(cfg *config.Config, chat llm.Chatter) *Task {
	t := &Task{Base: analysis.NewBase[Result](analysis.TaskInfo{
		Name:    "keyphrases",
		Subject: "key phrase extraction",
		Default: string(MethodRake),
	})}

	t.register(MethodRake, "RAKE (Rapid Automatic Keyword Extraction)", extractRake)
	t.register(MethodTextRank, "TextRank", extractTextRank)
	t.register(MethodYake, "YAKE (Yet Another Keyword Extractor)", extractYake)
	t.register(MethodLLM, llmLabel(cfg), newLLM(chat).extract)

	return t
}

func (t *Task) register(m Method, label string, fn extractFunc) {
	t.Registry.Register(analysis.Backend[Result]{
		Key:   string(m),
		Label: label,
		Adapter: func(ctx context.Context, req analysis.Request) (Result, error) {
			phrases, err := fn(ctx, req.Text, req.Count)
			if err != nil {
				return Result{}, err
			}
			return Result{Method: label, Phrases: truncate(phrases, req.Count)}, nil
		},
	})
}

// Analyze fills in the default count before dispatching.
func (t *Task) Analyze(ctx context.Context, req analysis.Request) (analysis.Result, error) {
	if req.Count == 0 {
		req.Count = DefaultCount
	}
	if req.Count < 0 {
		return nil, fmt.Errorf("the number of key phrases must be positive, got %d", req.Count)
	}
	return t.Base.Analyze(ctx, req)
}

func (t *Task) CountPrompt() string { return "Enter the number of key phrases to extract: " }
func (t *Task) DefaultCount() int   { return DefaultCount }

func truncate(phrases []string, count int) []string {
	if phrases == nil {
		return []string{}
	}
	if len(phrases) > count {
		return phrases[:count]
	}
	return phrases
}

func llmLabel(cfg *config.Config) string {
	if model := cfg.LLM.ModelFor(cfg.LLM.Provider); model != "" {
		return fmt.Sprintf("LLM (%s)", model)
	}
	return "LLM"
}
