package api

import (
	"net/http"

	"github.com/rajstories/Nexus-hackathon-platform-sub001/internal/domain/model"
)

// ScoresHandler accepts judge score sheets.
type ScoresHandler struct {
	deps Dependencies
}

// NewScoresHandler creates a new scores handler.
func NewScoresHandler(deps Dependencies) *ScoresHandler {
	return &ScoresHandler{deps: deps}
}

type scoreRequest struct {
	SubmissionID   string             `json:"submission_id" validate:"required"`
	JudgeID        string             `json:"judge_id" validate:"required"`
	CriteriaScores map[string]float64 `json:"criteria_scores"`
	TotalScore     float64            `json:"total_score"`
}

// HandlePostScore handles POST /events/{id}/rounds/{round}/scores.
// Writes to a finalized round are rejected with 409.
func (h *ScoresHandler) HandlePostScore(w http.ResponseWriter, r *http.Request) {
	round, err := roundParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req scoreRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	score := model.EvaluationScore{
		EventID:        r.PathValue("id"),
		SubmissionID:   req.SubmissionID,
		JudgeID:        req.JudgeID,
		Round:          round,
		CriteriaScores: req.CriteriaScores,
		TotalScore:     req.TotalScore,
	}
	if err := h.deps.SubmitScore(r.Context(), score); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}
