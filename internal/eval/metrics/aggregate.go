package metrics

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// EvaluationResult represents the results for a single example
type EvaluationResult struct {
	ID             string        `json:"id"`
	Text           string        `json:"text"`
	Expected       []string      `json:"expected"`
	Actual         []string      `json:"actual"`
	Comparison     *Comparison   `json:"comparison,omitempty"`
	ProcessingTime time.Duration `json:"processing_time"`
	Error          string        `json:"error,omitempty"` // If the method failed
}

// AggregateResults represents aggregated evaluation metrics for one method
type AggregateResults struct {
	TotalRecords int `json:"total_records"`
	SuccessCount int `json:"success_count"`
	FailureCount int `json:"failure_count"`

	// Label-level statistics
	Labels LabelStats `json:"labels"`

	// Example-level means over successful examples
	Precision    float64 `json:"precision"`
	Recall       float64 `json:"recall"`
	F1           float64 `json:"f1"`
	AverageScore float64 `json:"average_score"`
	// Accuracy is the fraction of successful examples whose labels all matched.
	Accuracy float64 `json:"accuracy"`

	// Timing
	AverageProcessingTime time.Duration `json:"average_processing_time"`
	TotalProcessingTime   time.Duration `json:"total_processing_time"`

	// Detailed results
	Results []EvaluationResult `json:"results"`

	// Metadata
	EvaluationDate time.Time `json:"evaluation_date"`
	Task           string    `json:"task"`
	Method         string    `json:"method"`
}

// LabelStats counts label comparisons by outcome
type LabelStats struct {
	ExactMatches  int `json:"exact_matches"`
	FuzzyMatches  int `json:"fuzzy_matches"`
	NoMatches     int `json:"no_matches"`
	MissingLabels int `json:"missing_labels"` // expected but not predicted
	ExtraLabels   int `json:"extra_labels"`   // predicted but not expected
}

// AggregateEvaluationResults aggregates multiple evaluation results
func AggregateEvaluationResults(results []EvaluationResult, task, method string) *AggregateResults {
	agg := &AggregateResults{
		TotalRecords:   len(results),
		Results:        results,
		EvaluationDate: time.Now(),
		Task:           task,
		Method:         method,
	}

	var totalDuration time.Duration
	var successDuration time.Duration
	var precision, recall, f1, score float64
	perfect := 0

	for _, result := range results {
		totalDuration += result.ProcessingTime

		if result.Error != "" {
			agg.FailureCount++
			continue
		}

		agg.SuccessCount++
		successDuration += result.ProcessingTime

		if result.Comparison == nil {
			continue
		}

		for _, m := range result.Comparison.Matches {
			aggregateLabelStats(&agg.Labels, m)
		}
		precision += result.Comparison.Precision
		recall += result.Comparison.Recall
		f1 += result.Comparison.F1
		score += result.Comparison.Score
		if result.Comparison.F1 == 1.0 {
			perfect++
		}
	}

	// Calculate averages
	if agg.SuccessCount > 0 {
		n := float64(agg.SuccessCount)
		agg.Precision = precision / n
		agg.Recall = recall / n
		agg.F1 = f1 / n
		agg.AverageScore = score / n
		agg.Accuracy = float64(perfect) / n
		agg.AverageProcessingTime = successDuration / time.Duration(agg.SuccessCount)
	}

	agg.TotalProcessingTime = totalDuration

	return agg
}

// aggregateLabelStats updates label statistics
func aggregateLabelStats(stats *LabelStats, match LabelMatch) {
	switch match.Method {
	case "exact":
		stats.ExactMatches++
	case "fuzzy_high", "substring":
		stats.FuzzyMatches++
	case "fuzzy_medium", "no_match":
		stats.NoMatches++
	case "actual_missing":
		stats.MissingLabels++
	case "expected_missing":
		stats.ExtraLabels++
	}
}

// PrintSummary prints a human-readable summary of the evaluation
func (a *AggregateResults) PrintSummary(w io.Writer) {
	fmt.Fprintln(w, "\n"+strings.Repeat("=", 70))
	fmt.Fprintln(w, "NLPKIT EVALUATION SUMMARY")
	fmt.Fprintln(w, strings.Repeat("=", 70))
	fmt.Fprintf(w, "Evaluation Date: %s\n", a.EvaluationDate.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "Task: %s\n", a.Task)
	fmt.Fprintf(w, "Method: %s\n", a.Method)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "PROCESSING STATISTICS")
	fmt.Fprintln(w, strings.Repeat("-", 70))
	fmt.Fprintf(w, "Total Examples: %d\n", a.TotalRecords)
	fmt.Fprintf(w, "Successful: %d (%.1f%%)\n", a.SuccessCount, percent(a.SuccessCount, a.TotalRecords))
	fmt.Fprintf(w, "Failed: %d (%.1f%%)\n", a.FailureCount, percent(a.FailureCount, a.TotalRecords))
	fmt.Fprintf(w, "Average Processing Time: %s\n", a.AverageProcessingTime)
	fmt.Fprintf(w, "Total Processing Time: %s\n", a.TotalProcessingTime)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "LABEL-LEVEL RESULTS")
	fmt.Fprintln(w, strings.Repeat("-", 70))
	fmt.Fprintf(w, "Exact Matches: %d\n", a.Labels.ExactMatches)
	fmt.Fprintf(w, "Fuzzy Matches: %d\n", a.Labels.FuzzyMatches)
	fmt.Fprintf(w, "No Matches: %d\n", a.Labels.NoMatches)
	fmt.Fprintf(w, "Missing Labels: %d\n", a.Labels.MissingLabels)
	fmt.Fprintf(w, "Extra Labels: %d\n", a.Labels.ExtraLabels)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "OVERALL SCORE")
	fmt.Fprintln(w, strings.Repeat("-", 70))
	fmt.Fprintf(w, "Precision: %.3f\n", a.Precision)
	fmt.Fprintf(w, "Recall: %.3f\n", a.Recall)
	fmt.Fprintf(w, "F1: %.3f\n", a.F1)
	fmt.Fprintf(w, "Accuracy: %.2f%% (%.3f)\n", a.Accuracy*100, a.Accuracy)
	fmt.Fprintln(w, strings.Repeat("=", 70))
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}

// SaveToJSON saves the aggregate results to a JSON file
func (a *AggregateResults) SaveToJSON(filepath string) error {
	file, err := os.Create(filepath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(a); err != nil {
		return fmt.Errorf("failed to encode results to JSON: %w", err)
	}

	return nil
}
