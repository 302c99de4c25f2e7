// Package entities extracts named entities with one of several backends.
package entities

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/lehigh-university-libraries/nlpkit/internal/analysis"
	"github.com/lehigh-university-libraries/nlpkit/internal/config"
	"github.com/lehigh-university-libraries/nlpkit/internal/llm"
)

// Method selects an entity recognition backend.
type Method string

const (
	MethodSpacy        Method = "spacy"
	MethodProse        Method = "prose"
	MethodTransformers Method = "transformers"
	MethodGliner       Method = "gliner"
	MethodLLM          Method = "llm"
)

// Methods in menu order.
var Methods = []Method{MethodSpacy, MethodProse, MethodTransformers, MethodGliner, MethodLLM}

const (
	labelBERT   = "Transformers (BERT)"
	labelGliner = "GLiNER"
)

// Entity is a span of text and its category.
type Entity struct {
	Text string `json:"text" yaml:"text"`
	Type string `json:"type" yaml:"type"`
}

// Result lists the entities one backend found.
type Result struct {
	Method   string   `json:"method" yaml:"method"`
	Entities []Entity `json:"entities" yaml:"entities"`
}

func (r Result) MethodLabel() string { return r.Method }

func (r Result) Labels() []string {
	labels := make([]string, len(r.Entities))
	for i, e := range r.Entities {
		labels[i] = e.Text
	}
	return labels
}

func (r Result) Render(w io.Writer) {
	fmt.Fprintf(w, "\nMethod used: %s\n", r.Method)
	fmt.Fprintln(w, "Entities found:")
	for _, e := range r.Entities {
		fmt.Fprintf(w, "- %s: %s\n", e.Text, e.Type)
	}
}

// Task is the entity recognition task.
type Task struct {
	*analysis.Base[Result]
}

// New registers every entity backend. Backends that cannot be initialized
// are registered as unavailable.
func New(cfg *config.Config, chat llm.Chatter) *Task {
	t := &Task{Base: analysis.NewBase[Result](analysis.TaskInfo{
		Name:    "entities",
		Subject: "entity recognition",
		Default: string(MethodProse),
	})}

	if spacy, err := newSpacy(cfg.Models.SpacyModel); err != nil {
		t.unavailable(MethodSpacy, "spaCy", err)
	} else {
		t.OnClose(spacy.Close)
		t.register(MethodSpacy, "spaCy", spacy.extract)
	}

	t.register(MethodProse, "Prose", extractProse)

	if bert, err := newBERT(cfg.Models.NERModelID); err != nil {
		t.unavailable(MethodTransformers, labelBERT, err)
	} else {
		t.OnClose(bert.Close)
		t.register(MethodTransformers, labelBERT, bert.extract)
	}

	if gliner, err := newGliner(cfg.Models.GlinerModel, cfg.Models.GlinerLabels); err != nil {
		t.unavailable(MethodGliner, labelGliner, err)
	} else {
		t.OnClose(gliner.Close)
		t.register(MethodGliner, labelGliner, gliner.extract)
	}

	t.register(MethodLLM, llmLabel(cfg), newLLM(chat).extract)

	return t
}

type extractFunc func(ctx context.Context, text string) ([]Entity, error)

func (t *Task) register(m Method, label string, fn extractFunc) {
	t.Registry.Register(analysis.Backend[Result]{
		Key:   string(m),
		Label: label,
		Adapter: func(ctx context.Context, req analysis.Request) (Result, error) {
			entities, err := fn(ctx, req.Text)
			if err != nil {
				return Result{}, err
			}
			if entities == nil {
				entities = []Entity{}
			}
			return Result{Method: label, Entities: entities}, nil
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

var errModelNotConfigured = errors.New("no model configured")
