package handlers

import (
	"net/http"

	"github.com/lehigh-university-libraries/nlpkit/internal/analysis"
)

// TaskMethods lists the methods of one task.
type TaskMethods struct {
	Task    string                `json:"task"`
	Default string                `json:"default"`
	Methods []analysis.MethodInfo `json:"methods"`
}

func (h *Handler) HandleMethods(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	list := make([]TaskMethods, 0, len(h.order))
	for _, name := range h.order {
		task := h.tasks[name]
		list = append(list, TaskMethods{
			Task:    name,
			Default: task.DefaultMethod(),
			Methods: task.Methods(),
		})
	}
	h.writeJSON(w, list)
}
