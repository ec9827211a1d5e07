package api

import (
	"net/http"
)

// SimilarityHandler exposes plagiarism analysis runs and their
// results.
type SimilarityHandler struct {
	deps Dependencies
}

// NewSimilarityHandler creates a new similarity handler.
func NewSimilarityHandler(deps Dependencies) *SimilarityHandler {
	return &SimilarityHandler{deps: deps}
}

// HandleAnalyze handles POST /events/{id}/similarity/analyze. The run
// is synchronous; concurrent runs for the same event serialize.
func (h *SimilarityHandler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	report, err := h.deps.AnalyzeSimilarity(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// HandleGetPairs handles GET /events/{id}/similarity.
func (h *SimilarityHandler) HandleGetPairs(w http.ResponseWriter, r *http.Request) {
	pairs, err := h.deps.SimilarityPairs(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"pairs": pairs})
}

type markReviewedRequest struct {
	Submission1ID string `json:"submission1_id" validate:"required"`
	Submission2ID string `json:"submission2_id" validate:"required"`
	ReviewerID    string `json:"reviewer_id" validate:"required"`
	Notes         string `json:"notes"`
}

// HandleMarkReviewed handles POST /events/{id}/similarity/review.
// Submission ids may arrive in either order.
func (h *SimilarityHandler) HandleMarkReviewed(w http.ResponseWriter, r *http.Request) {
	var req markReviewedRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	pair, err := h.deps.MarkPairReviewed(r.Context(), r.PathValue("id"),
		req.Submission1ID, req.Submission2ID, req.ReviewerID, req.Notes)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pair)
}
