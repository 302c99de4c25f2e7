package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lehigh-university-libraries/nlpkit/internal/analysis"
)

// Analysis is one completed request, kept by the HTTP server and written by
// batch runs.
type Analysis struct {
	ID          string          `json:"id" yaml:"id"`
	Task        string          `json:"task" yaml:"task"`
	Method      string          `json:"method" yaml:"method"`
	Text        string          `json:"text" yaml:"text"`
	Count       int             `json:"count,omitempty" yaml:"count,omitempty"`
	Result      analysis.Result `json:"result,omitempty" yaml:"result,omitempty"`
	Error       string          `json:"error,omitempty" yaml:"error,omitempty"`
	Unavailable bool            `json:"unavailable,omitempty" yaml:"unavailable,omitempty"`
	DurationMS  int64           `json:"duration_ms" yaml:"duration_ms"`
	CreatedAt   time.Time       `json:"created_at" yaml:"created_at"`
}

// NewAnalysis records the outcome of running req on task. An empty id gets a
// fresh UUID.
func NewAnalysis(id, task string, req analysis.Request, res analysis.Result, err error, elapsed time.Duration) *Analysis {
	if id == "" {
		id = uuid.NewString()
	}
	a := &Analysis{
		ID:         id,
		Task:       task,
		Method:     req.Method,
		Text:       req.Text,
		Count:      req.Count,
		DurationMS: elapsed.Milliseconds(),
		CreatedAt:  time.Now().UTC(),
	}

	if err != nil {
		a.Error = err.Error()
		var unavailable *analysis.UnavailableError
		a.Unavailable = errors.As(err, &unavailable)
		return a
	}
	a.Result = res
	return a
}
