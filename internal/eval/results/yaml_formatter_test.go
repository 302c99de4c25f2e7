package results

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lehigh-university-libraries/nlpkit/internal/eval/metrics"
	"gopkg.in/yaml.v3"
)

func TestSaveToYAML(t *testing.T) {
	agg := metrics.AggregateEvaluationResults([]metrics.EvaluationResult{
		{
			ID:             "1",
			Text:           "Bonjour tout le monde",
			Expected:       []string{"fr"},
			Actual:         []string{"fr"},
			Comparison:     metrics.CompareLabels([]string{"fr"}, []string{"fr"}),
			ProcessingTime: 2 * time.Millisecond,
		},
		{ID: "2", Text: "Hallo", Expected: []string{"de"}, Error: "backend failed"},
	}, "language", "simple")

	dir := filepath.Join(t.TempDir(), "evals")
	cfg := EvalConfig{Task: "language", Method: "simple", DatasetPath: "langs.jsonl", SampleSize: 2, Timestamp: "2025-01-02_03-04-05"}

	path, err := SaveToYAML(dir, cfg, agg)
	if err != nil {
		t.Fatalf("SaveToYAML failed: %v", err)
	}
	if filepath.Base(path) != "language-simple-2025-01-02_03-04-05.yaml" {
		t.Errorf("Unexpected file name: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read YAML: %v", err)
	}

	var spec EvalSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		t.Fatalf("Invalid YAML: %v", err)
	}

	if spec.Config != cfg {
		t.Errorf("Expected config %+v, got %+v", cfg, spec.Config)
	}
	if spec.Summary.Total != 2 || spec.Summary.Succeeded != 1 || spec.Summary.Failed != 1 {
		t.Errorf("Unexpected summary: %+v", spec.Summary)
	}
	if spec.Summary.Labels.ExactMatches != 1 {
		t.Errorf("Expected one exact match, got %+v", spec.Summary.Labels)
	}
	if len(spec.Results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(spec.Results))
	}
	if spec.Results[0].F1 != 1 || len(spec.Results[0].Matches) != 1 {
		t.Errorf("Unexpected first result: %+v", spec.Results[0])
	}
	if spec.Results[1].Error != "backend failed" {
		t.Errorf("Expected failed result to keep its error, got %+v", spec.Results[1])
	}
}

func TestSaveToYAMLDefaultTimestamp(t *testing.T) {
	agg := metrics.AggregateEvaluationResults(nil, "sentiment", "llm")

	path, err := SaveToYAML(t.TempDir(), EvalConfig{Task: "sentiment", Method: "llm"}, agg)
	if err != nil {
		t.Fatalf("SaveToYAML failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("Expected file at %s: %v", path, err)
	}
}

func TestSanitize(t *testing.T) {
	if got := sanitize("a/b c:d"); got != "a_b_c_d" {
		t.Errorf("sanitize = %q", got)
	}
}
