package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/nlpkit/internal/analysis"
	"github.com/lehigh-university-libraries/nlpkit/internal/models"
)

// AnalyzeRequest is the body of POST /api/analyze.
type AnalyzeRequest struct {
	Task   string `json:"task"`
	Method string `json:"method"`
	Text   string `json:"text"`
	Count  int    `json:"count"`
}

// maxBodyBytes bounds the request body of /api/analyze.
const maxBodyBytes = 1 << 20

func (h *Handler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var body AnalyzeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&body); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	task, ok := h.tasks[body.Task]
	if !ok {
		h.writeError(w, fmt.Sprintf("invalid task %q. Choose from: %s", body.Task, strings.Join(h.taskNames(), ", ")), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(body.Text) == "" {
		h.writeError(w, "text is required", http.StatusBadRequest)
		return
	}
	if body.Count < 0 {
		h.writeError(w, "count must not be negative", http.StatusBadRequest)
		return
	}

	req := analysis.Request{Text: body.Text, Method: body.Method, Count: body.Count}
	if req.Method == "" {
		req.Method = task.DefaultMethod()
	}

	start := time.Now()
	result, err := task.Analyze(r.Context(), req)
	if err != nil {
		h.writeError(w, err.Error(), statusFor(err))
		return
	}

	record := models.NewAnalysis("", task.Name(), req, result, nil, time.Since(start))
	h.store.Set(record)
	slog.Info("Analysis complete", "id", record.ID, "task", record.Task, "method", record.Method, "duration_ms", record.DurationMS)

	h.writeJSON(w, record)
}

// statusFor maps a dispatch error to an HTTP status code.
func statusFor(err error) int {
	var invalid *analysis.InvalidMethodError
	var unavailable *analysis.UnavailableError
	switch {
	case errors.As(err, &invalid):
		return http.StatusBadRequest
	case errors.As(err, &unavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}
