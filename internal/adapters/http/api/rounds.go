package api

import (
	"errors"
	"net/http"

	"github.com/rajstories/Nexus-hackathon-platform-sub001/internal/domain/rounds"
)

// RoundsHandler serves round lifecycle operations.
type RoundsHandler struct {
	deps Dependencies
}

// NewRoundsHandler creates a new rounds handler.
func NewRoundsHandler(deps Dependencies) *RoundsHandler {
	return &RoundsHandler{deps: deps}
}

// HandleGetStatus handles GET /events/{id}/rounds/{round}/status.
func (h *RoundsHandler) HandleGetStatus(w http.ResponseWriter, r *http.Request) {
	round, err := roundParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	status, err := h.deps.RoundStatus(r.Context(), r.PathValue("id"), round)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

type finalizeRequest struct {
	ActorID string `json:"actor_id" validate:"required"`
}

// HandleFinalize handles POST /events/{id}/rounds/{round}/finalize.
// Repeat calls return the already-finalized status with 200 so the
// operation stays idempotent for clients.
func (h *RoundsHandler) HandleFinalize(w http.ResponseWriter, r *http.Request) {
	round, err := roundParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req finalizeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	status, err := h.deps.Finalize(r.Context(), r.PathValue("id"), round, req.ActorID)
	if err != nil && !errors.Is(err, rounds.ErrAlreadyFinalized) {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}
