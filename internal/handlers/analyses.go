package handlers

import (
	"net/http"
	"strings"

	"github.com/lehigh-university-libraries/nlpkit/internal/models"
)

func (h *Handler) HandleAnalyses(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.writeJSON(w, h.store.List())
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) HandleAnalysisDetail(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/analyses/")

	a, ok := h.getAnalysisOrError(w, id)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.writeJSON(w, a)
	case http.MethodDelete:
		h.store.Delete(id)
		w.WriteHeader(http.StatusNoContent)
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) getAnalysisOrError(w http.ResponseWriter, id string) (*models.Analysis, bool) {
	a, exists := h.store.Get(id)
	if !exists {
		h.writeError(w, "Analysis not found", http.StatusNotFound)
		return nil, false
	}
	return a, true
}
