package metrics

import (
	"bytes"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestAggregateEvaluationResults(t *testing.T) {
	results := []EvaluationResult{
		{
			ID:             "1",
			Expected:       []string{"Apple", "Paris"},
			Actual:         []string{"Apple", "Paris"},
			Comparison:     CompareLabels([]string{"Apple", "Paris"}, []string{"Apple", "Paris"}),
			ProcessingTime: 5 * time.Second,
		},
		{
			ID:             "2",
			Expected:       []string{"Ada Lovelace", "London"},
			Actual:         []string{"Lovelace", "Berlin"},
			Comparison:     CompareLabels([]string{"Ada Lovelace", "London"}, []string{"Lovelace", "Berlin"}),
			ProcessingTime: 3 * time.Second,
		},
		{
			ID:             "3",
			Expected:       []string{"Tokyo"},
			Error:          "backend failed",
			ProcessingTime: 1 * time.Second,
		},
	}

	agg := AggregateEvaluationResults(results, "entities", "prose")

	// Check basic stats
	if agg.TotalRecords != 3 {
		t.Errorf("Expected TotalRecords=3, got %d", agg.TotalRecords)
	}
	if agg.SuccessCount != 2 {
		t.Errorf("Expected SuccessCount=2, got %d", agg.SuccessCount)
	}
	if agg.FailureCount != 1 {
		t.Errorf("Expected FailureCount=1, got %d", agg.FailureCount)
	}
	if agg.Task != "entities" || agg.Method != "prose" {
		t.Errorf("Unexpected task/method: %s/%s", agg.Task, agg.Method)
	}

	// Check label stats
	want := LabelStats{ExactMatches: 2, FuzzyMatches: 1, NoMatches: 1, ExtraLabels: 1}
	if agg.Labels != want {
		t.Errorf("Expected Labels=%+v, got %+v", want, agg.Labels)
	}

	// Example 2 has one substring hit out of two on both sides
	if math.Abs(agg.Precision-0.75) > 1e-9 {
		t.Errorf("Expected Precision=0.75, got %.3f", agg.Precision)
	}
	if math.Abs(agg.Recall-0.75) > 1e-9 {
		t.Errorf("Expected Recall=0.75, got %.3f", agg.Recall)
	}
	if agg.Accuracy != 0.5 {
		t.Errorf("Expected Accuracy=0.5, got %.3f", agg.Accuracy)
	}

	// Check timing
	if agg.TotalProcessingTime != 9*time.Second {
		t.Errorf("Expected TotalProcessingTime=9s, got %s", agg.TotalProcessingTime)
	}
	if agg.AverageProcessingTime != 4*time.Second {
		t.Errorf("Expected AverageProcessingTime=4s, got %s", agg.AverageProcessingTime)
	}
}

func TestAggregateAllFailed(t *testing.T) {
	agg := AggregateEvaluationResults([]EvaluationResult{{ID: "1", Error: "boom"}}, "language", "llm")

	if agg.SuccessCount != 0 || agg.F1 != 0 || agg.AverageProcessingTime != 0 {
		t.Errorf("Unexpected aggregate for failed run: %+v", agg)
	}

	var buf bytes.Buffer
	agg.PrintSummary(&buf)
	if !strings.Contains(buf.String(), "Failed: 1 (100.0%)") {
		t.Errorf("Summary missing failure line:\n%s", buf.String())
	}
}

func TestAggregateLabelStats(t *testing.T) {
	stats := LabelStats{}

	for _, method := range []string{"exact", "substring", "fuzzy_high", "fuzzy_medium", "no_match", "actual_missing", "expected_missing"} {
		aggregateLabelStats(&stats, LabelMatch{Method: method})
	}

	want := LabelStats{ExactMatches: 1, FuzzyMatches: 2, NoMatches: 2, MissingLabels: 1, ExtraLabels: 1}
	if stats != want {
		t.Errorf("Expected %+v, got %+v", want, stats)
	}
}

func TestPrintSummary(t *testing.T) {
	agg := AggregateEvaluationResults([]EvaluationResult{
		{ID: "1", Comparison: CompareLabels([]string{"en"}, []string{"en"}), ProcessingTime: time.Second},
	}, "language", "simple")

	var buf bytes.Buffer
	agg.PrintSummary(&buf)
	output := buf.String()

	for _, want := range []string{"NLPKIT EVALUATION SUMMARY", "Task: language", "Method: simple", "Exact Matches: 1", "F1: 1.000", "Accuracy: 100.00% (1.000)"} {
		if !strings.Contains(output, want) {
			t.Errorf("Summary missing %q:\n%s", want, output)
		}
	}
}

func TestSaveToJSON(t *testing.T) {
	agg := AggregateEvaluationResults([]EvaluationResult{
		{ID: "1", Comparison: CompareLabels([]string{"Positive"}, []string{"Negative"})},
	}, "sentiment", "vader")

	path := filepath.Join(t.TempDir(), "results.json")
	if err := agg.SaveToJSON(path); err != nil {
		t.Fatalf("SaveToJSON failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read JSON: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if decoded["method"] != "vader" || decoded["accuracy"] != 0.0 {
		t.Errorf("Unexpected JSON: %s", data)
	}
}
