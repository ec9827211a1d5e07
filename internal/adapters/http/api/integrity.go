package api

import (
	"net/http"
)

// IntegrityHandler exposes review integrity analysis runs and flags.
type IntegrityHandler struct {
	deps Dependencies
}

// NewIntegrityHandler creates a new integrity handler.
func NewIntegrityHandler(deps Dependencies) *IntegrityHandler {
	return &IntegrityHandler{deps: deps}
}

// HandleAnalyze handles POST /events/{id}/integrity/analyze.
func (h *IntegrityHandler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	flags, err := h.deps.AnalyzeIntegrity(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"flagged": len(flags),
		"flags":   flags,
	})
}

// HandleGetFlags handles GET /events/{id}/integrity, returning flags
// joined with their reviews.
func (h *IntegrityHandler) HandleGetFlags(w http.ResponseWriter, r *http.Request) {
	flagged, err := h.deps.IntegrityFlags(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"flags": flagged})
}
