// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/rajstories/Nexus-hackathon-platform-sub001/internal/adapters/broadcast"
	"github.com/rajstories/Nexus-hackathon-platform-sub001/internal/adapters/repository"
	"github.com/rajstories/Nexus-hackathon-platform-sub001/internal/domain/model"
	"github.com/rajstories/Nexus-hackathon-platform-sub001/internal/domain/rounds"
	"github.com/rajstories/Nexus-hackathon-platform-sub001/internal/domain/similarity"
)

// Dependencies required by HTTP handlers. Using an interface bundle
// keeps the handler layer loosely coupled to implementations in other
// packages.
type Dependencies interface {
	IngestSubmission(ctx context.Context, sub model.Submission) error
	IngestReview(ctx context.Context, rev model.Review) (bool, error)
	DeleteReview(ctx context.Context, eventID, reviewID string) error
	RegisterParticipant(ctx context.Context, eventID, accountID string, role model.Role)
	ConfigurePanel(ctx context.Context, eventID string, round int, weights map[string]float64, totalJudges int)
	AssignJudges(ctx context.Context, eventID string, round int, submissionID string, judges int)

	AnalyzeSimilarity(ctx context.Context, eventID string) (similarity.Report, error)
	SimilarityPairs(ctx context.Context, eventID string) ([]model.SimilarityPair, error)
	MarkPairReviewed(ctx context.Context, eventID, sub1ID, sub2ID, reviewerID, notes string) (model.SimilarityPair, error)

	AnalyzeIntegrity(ctx context.Context, eventID string) ([]model.ReviewFlag, error)
	IntegrityFlags(ctx context.Context, eventID string) ([]model.FlaggedReview, error)

	SubmitScore(ctx context.Context, score model.EvaluationScore) error
	Finalize(ctx context.Context, eventID string, round int, actorID string) (model.RoundStatus, error)
	Leaderboard(ctx context.Context, eventID string, round int) ([]model.LeaderboardEntry, error)
	RoundStatus(ctx context.Context, eventID string, round int) (model.RoundStatus, error)

	Subscribe(ctx context.Context, eventID, clientID string) <-chan broadcast.Message
	Unsubscribe(ctx context.Context, eventID, clientID string)
}

// validate checks request DTOs against their struct tags.
var validate = validator.New()

// Server wires HTTP routes for the scoring API.
type Server struct {
	healthHandler      *HealthHandler
	intakeHandler      *IntakeHandler
	similarityHandler  *SimilarityHandler
	integrityHandler   *IntegrityHandler
	scoresHandler      *ScoresHandler
	leaderboardHandler *LeaderboardHandler
	roundsHandler      *RoundsHandler
	liveHandler        *LiveHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(),
		intakeHandler:      NewIntakeHandler(deps),
		similarityHandler:  NewSimilarityHandler(deps),
		integrityHandler:   NewIntegrityHandler(deps),
		scoresHandler:      NewScoresHandler(deps),
		leaderboardHandler: NewLeaderboardHandler(deps),
		roundsHandler:      NewRoundsHandler(deps),
		liveHandler:        NewLiveHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))

	mux.HandleFunc("POST /events/{id}/submissions", MetricsMiddleware(s.intakeHandler.HandlePostSubmission, "submissions"))
	mux.HandleFunc("POST /events/{id}/reviews", MetricsMiddleware(s.intakeHandler.HandlePostReview, "reviews"))
	mux.HandleFunc("DELETE /events/{id}/reviews/{reviewId}", MetricsMiddleware(s.intakeHandler.HandleDeleteReview, "reviews"))
	mux.HandleFunc("POST /events/{id}/participants", MetricsMiddleware(s.intakeHandler.HandlePostParticipant, "participants"))
	mux.HandleFunc("POST /events/{id}/rounds/{round}/panel", MetricsMiddleware(s.intakeHandler.HandlePostPanel, "panel"))

	mux.HandleFunc("POST /events/{id}/similarity/analyze", MetricsMiddleware(s.similarityHandler.HandleAnalyze, "similarity_analyze"))
	mux.HandleFunc("GET /events/{id}/similarity", MetricsMiddleware(s.similarityHandler.HandleGetPairs, "similarity"))
	mux.HandleFunc("POST /events/{id}/similarity/review", MetricsMiddleware(s.similarityHandler.HandleMarkReviewed, "similarity_review"))

	mux.HandleFunc("POST /events/{id}/integrity/analyze", MetricsMiddleware(s.integrityHandler.HandleAnalyze, "integrity_analyze"))
	mux.HandleFunc("GET /events/{id}/integrity", MetricsMiddleware(s.integrityHandler.HandleGetFlags, "integrity"))

	mux.HandleFunc("POST /events/{id}/rounds/{round}/scores", MetricsMiddleware(s.scoresHandler.HandlePostScore, "scores"))
	mux.HandleFunc("GET /events/{id}/rounds/{round}/leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
	mux.HandleFunc("GET /events/{id}/rounds/{round}/status", MetricsMiddleware(s.roundsHandler.HandleGetStatus, "round_status"))
	mux.HandleFunc("POST /events/{id}/rounds/{round}/finalize", MetricsMiddleware(s.roundsHandler.HandleFinalize, "finalize"))

	mux.HandleFunc("GET /events/{id}/live", s.liveHandler.HandleLive)
}

// writeJSON serializes a response body with the given status.
func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// errorBody is the wire shape for error responses.
type errorBody struct {
	Error string `json:"error"`
}

// writeError maps domain errors to HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, rounds.ErrAlreadyFinalized):
		writeJSON(w, http.StatusConflict, errorBody{Error: err.Error()})
	case errors.Is(err, rounds.ErrInvalidRound),
		errors.Is(err, ErrBadRequest):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	case errors.Is(err, similarity.ErrPairNotFound),
		errors.Is(err, repository.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: err.Error()})
	}
}

// roundParam parses the {round} path segment.
func roundParam(r *http.Request) (int, error) {
	round, err := strconv.Atoi(r.PathValue("round"))
	if err != nil || round < 1 {
		return 0, ErrBadRequest
	}
	return round, nil
}

// decodeBody parses and validates a JSON request body.
func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return ErrBadRequest
	}
	if err := validate.Struct(dst); err != nil {
		return ErrBadRequest
	}
	return nil
}
