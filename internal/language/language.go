// Package language identifies the language of a text with one of several
// backends.
package language

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/lehigh-university-libraries/nlpkit/internal/analysis"
	"github.com/lehigh-university-libraries/nlpkit/internal/config"
	"github.com/lehigh-university-libraries/nlpkit/internal/llm"
	"github.com/lehigh-university-libraries/nlpkit/internal/modelcache"
)

// Method selects a language detection backend.
type Method string

const (
	MethodSimple   Method = "simple"
	MethodLangid   Method = "langid"
	MethodFastText Method = "fasttext"
	MethodLLM      Method = "llm"
)

// Methods in menu order.
var Methods = []Method{MethodSimple, MethodLangid, MethodFastText, MethodLLM}

// Undetected is reported when a backend cannot decide.
const Undetected = "Unable to detect language"

// Result is a language code with an optional confidence.
type Result struct {
	Method     string   `json:"method" yaml:"method"`
	Language   string   `json:"language" yaml:"language"`
	Confidence *float64 `json:"confidence,omitempty" yaml:"confidence,omitempty"`
}

func (r Result) MethodLabel() string { return r.Method }

// Labels is empty when no language was detected.
func (r Result) Labels() []string {
	if r.Language == "" || r.Language == Undetected {
		return nil
	}
	return []string{r.Language}
}

func (r Result) Render(w io.Writer) {
	fmt.Fprintf(w, "\nMethod used: %s\n", r.Method)
	fmt.Fprintf(w, "Detected Language: %s\n", r.Language)
	if r.Confidence != nil {
		fmt.Fprintf(w, "Confidence: %s\n", strconv.FormatFloat(*r.Confidence, 'f', -1, 64))
	}
}

// Task is the language detection task.
type Task struct {
	*analysis.Base[Result]
}

type detectFunc func(ctx context.Context, text string) (string, *float64, error)

// New registers every language backend.
func New(cfg *config.Config, chat llm.Chatter) *Task {
	t := &Task{Base: analysis.NewBase[Result](analysis.TaskInfo{
		Name:    "language",
		Subject: "language detection",
		Default: string(MethodSimple),
	})}

	t.register(MethodSimple, "Simple (whatlanggo)", detectSimple)
	t.register(MethodLangid, "Langid (lingua)", newLingua(buildAllLanguages).detect)

	if cfg.Models.FastTextURL == "" {
		t.Registry.Register(analysis.Backend[Result]{
			Key:   string(MethodFastText),
			Label: "FastText",
			Err:   fmt.Errorf("no fastText model url configured"),
		})
	} else {
		cache := modelcache.New(modelcache.Config{CacheDir: cfg.Models.CacheDir})
		t.register(MethodFastText, "FastText", newFastText(cache, cfg.Models.FastTextURL, loadFastText).detect)
	}

	t.register(MethodLLM, llmLabel(cfg), newLLM(chat).detect)

	return t
}

func (t *Task) register(m Method, label string, fn detectFunc) {
	t.Registry.Register(analysis.Backend[Result]{
		Key:   string(m),
		Label: label,
		Adapter: func(ctx context.Context, req analysis.Request) (Result, error) {
			lang, confidence, err := fn(ctx, req.Text)
			if err != nil {
				return Result{}, err
			}
			return Result{Method: label, Language: lang, Confidence: confidence}, nil
		},
	})
}

func llmLabel(cfg *config.Config) string {
	if model := cfg.LLM.ModelFor(cfg.LLM.Provider); model != "" {
		return fmt.Sprintf("LLM (%s)", model)
	}
	return "LLM"
}
