package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/lehigh-university-libraries/nlpkit/internal/analysis"
	"github.com/lehigh-university-libraries/nlpkit/internal/storage"
)

type Handler struct {
	store *storage.AnalysisStore
	tasks map[string]analysis.Task
	order []string
}

type errorResponse struct {
	Error string `json:"error"`
}

func New(store *storage.AnalysisStore, tasks ...analysis.Task) *Handler {
	h := &Handler{
		store: store,
		tasks: make(map[string]analysis.Task, len(tasks)),
	}
	for _, t := range tasks {
		h.tasks[t.Name()] = t
		h.order = append(h.order, t.Name())
	}
	return h
}

// Routes registers every API endpoint on mux.
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/api/analyze", h.HandleAnalyze)
	mux.HandleFunc("/api/methods", h.HandleMethods)
	mux.HandleFunc("/api/analyses", h.HandleAnalyses)
	mux.HandleFunc("/api/analyses/", h.HandleAnalysisDetail)
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	if code >= http.StatusInternalServerError {
		slog.Error(message, "status", code)
	} else {
		slog.Warn(message, "status", code)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(errorResponse{Error: message}); err != nil {
		slog.Error("Unable to encode error response", "err", err)
	}
}

func (h *Handler) taskNames() []string {
	return append([]string(nil), h.order...)
}
