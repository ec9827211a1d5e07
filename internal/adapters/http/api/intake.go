package api

import (
	"net/http"
	"time"

	"github.com/rajstories/Nexus-hackathon-platform-sub001/internal/domain/model"
)

// IntakeHandler accepts the write-side records the engines consume:
// submissions, reviews, participant registrations and panel setup.
type IntakeHandler struct {
	deps Dependencies
}

// NewIntakeHandler creates a new intake handler.
func NewIntakeHandler(deps Dependencies) *IntakeHandler {
	return &IntakeHandler{deps: deps}
}

type submissionRequest struct {
	ID          string    `json:"id" validate:"required"`
	TeamID      string    `json:"team_id" validate:"required"`
	TrackID     string    `json:"track_id"`
	Title       string    `json:"title" validate:"required"`
	CorpusText  string    `json:"corpus_text"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// HandlePostSubmission handles POST /events/{id}/submissions.
func (h *IntakeHandler) HandlePostSubmission(w http.ResponseWriter, r *http.Request) {
	var req submissionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	sub := model.Submission{
		ID:          req.ID,
		EventID:     r.PathValue("id"),
		TeamID:      req.TeamID,
		TrackID:     req.TrackID,
		Title:       req.Title,
		CorpusText:  req.CorpusText,
		SubmittedAt: req.SubmittedAt,
	}
	if err := h.deps.IngestSubmission(r.Context(), sub); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

type reviewRequest struct {
	ID       string `json:"id" validate:"required"`
	AuthorID string `json:"author_id" validate:"required"`
	Role     string `json:"role" validate:"required,oneof=participant judge organizer"`
	Rating   int    `json:"rating" validate:"min=1,max=5"`
	Body     string `json:"body"`
}

// HandlePostReview handles POST /events/{id}/reviews. The same review
// id posted twice is an update and is broadcast as such.
func (h *IntakeHandler) HandlePostReview(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	rev := model.Review{
		ID:       req.ID,
		EventID:  r.PathValue("id"),
		AuthorID: req.AuthorID,
		Role:     model.Role(req.Role),
		Rating:   req.Rating,
		Body:     req.Body,
	}
	isUpdate, err := h.deps.IngestReview(r.Context(), rev)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{
		"status":    "accepted",
		"is_update": isUpdate,
	})
}

// HandleDeleteReview handles DELETE /events/{id}/reviews/{reviewId}.
func (h *IntakeHandler) HandleDeleteReview(w http.ResponseWriter, r *http.Request) {
	err := h.deps.DeleteReview(r.Context(), r.PathValue("id"), r.PathValue("reviewId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type participantRequest struct {
	AccountID string `json:"account_id" validate:"required"`
	Role      string `json:"role" validate:"required,oneof=participant judge organizer"`
}

// HandlePostParticipant handles POST /events/{id}/participants.
func (h *IntakeHandler) HandlePostParticipant(w http.ResponseWriter, r *http.Request) {
	var req participantRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	h.deps.RegisterParticipant(r.Context(), r.PathValue("id"), req.AccountID, model.Role(req.Role))
	writeJSON(w, http.StatusOK, map[string]string{"status": "registered"})
}

type panelRequest struct {
	Weights     map[string]float64 `json:"weights" validate:"required,min=1"`
	TotalJudges int                `json:"total_judges" validate:"min=1"`

	// Optional per-submission judge count overrides.
	Assignments map[string]int `json:"assignments"`
}

// HandlePostPanel handles POST /events/{id}/rounds/{round}/panel.
func (h *IntakeHandler) HandlePostPanel(w http.ResponseWriter, r *http.Request) {
	round, err := roundParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req panelRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	eventID := r.PathValue("id")
	h.deps.ConfigurePanel(r.Context(), eventID, round, req.Weights, req.TotalJudges)
	for submissionID, judges := range req.Assignments {
		h.deps.AssignJudges(r.Context(), eventID, round, submissionID, judges)
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "configured"})
}
