package metrics

import (
	"fmt"
	"strings"

	"github.com/lehigh-university-libraries/nlpkit/internal/textsim"
)

// LabelMatch represents the comparison of one expected label with the closest
// predicted label
type LabelMatch struct {
	Expected string  `json:"expected,omitempty" yaml:"expected,omitempty"`
	Actual   string  `json:"actual,omitempty" yaml:"actual,omitempty"`
	Score    float64 `json:"score" yaml:"score"`   // 0.0 to 1.0
	Method   string  `json:"method" yaml:"method"` // "exact", "substring", "fuzzy_high", "fuzzy_medium", "no_match", "actual_missing", "expected_missing"
	Notes    string  `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// Matched reports whether the match counts as a correct prediction.
func (m LabelMatch) Matched() bool {
	switch m.Method {
	case "exact", "substring", "fuzzy_high":
		return true
	}
	return false
}

// Comparison holds the label-level comparison of one example
type Comparison struct {
	Matches   []LabelMatch `json:"matches" yaml:"matches"`
	Precision float64      `json:"precision" yaml:"precision"`
	Recall    float64      `json:"recall" yaml:"recall"`
	F1        float64      `json:"f1" yaml:"f1"`
	// Score is the mean match score over the expected labels.
	Score float64 `json:"score" yaml:"score"`
}

// CompareLabel performs detailed label comparison with fuzzy matching
func CompareLabel(expected, actual string) LabelMatch {
	match := LabelMatch{
		Expected: expected,
		Actual:   actual,
	}

	// Normalize for comparison
	expNorm := textsim.Normalize(expected)
	actNorm := textsim.Normalize(actual)

	if expNorm == "" {
		match.Method = "expected_missing"
		match.Notes = "Predicted label has no reference"
		return match
	}

	if actNorm == "" {
		match.Method = "actual_missing"
		match.Notes = "No predicted label"
		return match
	}

	// Exact match
	if expNorm == actNorm {
		match.Score = 1.0
		match.Method = "exact"
		return match
	}

	// Fuzzy match - check for substring containment
	if strings.Contains(actNorm, expNorm) || strings.Contains(expNorm, actNorm) {
		match.Score = 0.8
		match.Method = "substring"
		match.Notes = "Partial match (substring found)"
		return match
	}

	// Levenshtein-based similarity
	similarity := textsim.Similarity(expNorm, actNorm)
	match.Score = similarity
	if similarity > 0.7 {
		match.Method = "fuzzy_high"
		match.Notes = fmt.Sprintf("High similarity (%.2f)", similarity)
	} else if similarity > 0.4 {
		match.Method = "fuzzy_medium"
		match.Notes = fmt.Sprintf("Medium similarity (%.2f)", similarity)
	} else {
		match.Method = "no_match"
		match.Notes = fmt.Sprintf("Low similarity (%.2f)", similarity)
	}

	return match
}

// CompareLabels pairs each expected label with its best unused prediction.
// Predictions left over are recorded as "expected_missing". An empty
// reference and an empty prediction agree perfectly.
func CompareLabels(expected, actual []string) *Comparison {
	c := &Comparison{}
	used := make([]bool, len(actual))
	truePositives := 0
	scoreSum := 0.0

	for _, exp := range expected {
		best := LabelMatch{Expected: exp, Method: "actual_missing", Notes: "No predicted label"}
		bestIdx := -1
		for i, act := range actual {
			if used[i] {
				continue
			}
			m := CompareLabel(exp, act)
			if bestIdx == -1 || m.Score > best.Score {
				best, bestIdx = m, i
			}
		}

		if best.Matched() {
			used[bestIdx] = true
			truePositives++
		}
		scoreSum += best.Score
		c.Matches = append(c.Matches, best)
	}

	for i, act := range actual {
		if !used[i] {
			c.Matches = append(c.Matches, CompareLabel("", act))
		}
	}

	c.Precision = ratio(truePositives, len(actual))
	c.Recall = ratio(truePositives, len(expected))
	if c.Precision+c.Recall > 0 {
		c.F1 = 2 * c.Precision * c.Recall / (c.Precision + c.Recall)
	}

	switch {
	case len(expected) > 0:
		c.Score = scoreSum / float64(len(expected))
	case len(actual) == 0:
		c.Score = 1.0
	}

	return c
}

// ratio is n/total, or 1.0 when there is nothing to divide by.
func ratio(n, total int) float64 {
	if total == 0 {
		return 1.0
	}
	return float64(n) / float64(total)
}
