package results

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/nlpkit/internal/eval/metrics"
	"gopkg.in/yaml.v3"
)

// EvalConfig represents the configuration section of the eval YAML
type EvalConfig struct {
	Task        string `yaml:"task"`
	Method      string `yaml:"method"`
	Provider    string `yaml:"provider,omitempty"`
	Model       string `yaml:"model,omitempty"`
	DatasetPath string `yaml:"datasetpath"`
	SampleSize  int    `yaml:"samplesize"`
	Timestamp   string `yaml:"timestamp"`
}

// EvalSummary is the aggregate section of the eval YAML
type EvalSummary struct {
	Total        int                `yaml:"total"`
	Succeeded    int                `yaml:"succeeded"`
	Failed       int                `yaml:"failed"`
	Precision    float64            `yaml:"precision"`
	Recall       float64            `yaml:"recall"`
	F1           float64            `yaml:"f1"`
	Accuracy     float64            `yaml:"accuracy"`
	AverageScore float64            `yaml:"averagescore"`
	Labels       metrics.LabelStats `yaml:"labels"`
	AverageTime  string             `yaml:"averagetime"`
}

// EvalResult represents a single evaluation result
type EvalResult struct {
	Identifier string               `yaml:"identifier"`
	Text       string               `yaml:"text"`
	Expected   []string             `yaml:"expected"`
	Actual     []string             `yaml:"actual"`
	Precision  float64              `yaml:"precision"`
	Recall     float64              `yaml:"recall"`
	F1         float64              `yaml:"f1"`
	Matches    []metrics.LabelMatch `yaml:"matches,omitempty"`
	Error      string               `yaml:"error,omitempty"`
}

// EvalSpec represents the complete evaluation specification
type EvalSpec struct {
	Config  EvalConfig   `yaml:"config"`
	Summary EvalSummary  `yaml:"summary"`
	Results []EvalResult `yaml:"results"`
}

// NewEvalSpec builds the YAML document for one evaluated method.
func NewEvalSpec(cfg EvalConfig, agg *metrics.AggregateResults) EvalSpec {
	spec := EvalSpec{
		Config: cfg,
		Summary: EvalSummary{
			Total:        agg.TotalRecords,
			Succeeded:    agg.SuccessCount,
			Failed:       agg.FailureCount,
			Precision:    agg.Precision,
			Recall:       agg.Recall,
			F1:           agg.F1,
			Accuracy:     agg.Accuracy,
			AverageScore: agg.AverageScore,
			Labels:       agg.Labels,
			AverageTime:  agg.AverageProcessingTime.String(),
		},
		Results: make([]EvalResult, 0, len(agg.Results)),
	}

	for _, r := range agg.Results {
		evalResult := EvalResult{
			Identifier: r.ID,
			Text:       r.Text,
			Expected:   r.Expected,
			Actual:     r.Actual,
			Error:      r.Error,
		}
		if r.Comparison != nil {
			evalResult.Precision = r.Comparison.Precision
			evalResult.Recall = r.Comparison.Recall
			evalResult.F1 = r.Comparison.F1
			evalResult.Matches = r.Comparison.Matches
		}
		spec.Results = append(spec.Results, evalResult)
	}

	return spec
}

// SaveToYAML writes the evaluation to <dir>/<task>-<method>-<timestamp>.yaml
// and returns the file's absolute path.
func SaveToYAML(dir string, cfg EvalConfig, agg *metrics.AggregateResults) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create %s directory: %w", dir, err)
	}

	if cfg.Timestamp == "" {
		cfg.Timestamp = time.Now().Format("2006-01-02_15-04-05")
	}

	data, err := yaml.Marshal(NewEvalSpec(cfg, agg))
	if err != nil {
		return "", fmt.Errorf("failed to marshal YAML: %w", err)
	}

	filename := filepath.Join(dir, fmt.Sprintf("%s-%s-%s.yaml", cfg.Task, sanitize(cfg.Method), cfg.Timestamp))
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write YAML file: %w", err)
	}

	absPath, err := filepath.Abs(filename)
	if err != nil {
		return filename, nil
	}
	return absPath, nil
}

// sanitize keeps a method key usable as part of a file name.
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == ':' || r == ' ' {
			return '_'
		}
		return r
	}, s)
}
