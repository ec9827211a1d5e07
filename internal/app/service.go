// Package app wires the domain engines, storage and the broadcast
// gateway into one service facade consumed by the HTTP layer.
package app

import (
	"context"
	"time"

	"github.com/rajstories/Nexus-hackathon-platform-sub001/internal/adapters/broadcast"
	"github.com/rajstories/Nexus-hackathon-platform-sub001/internal/adapters/repository"
	"github.com/rajstories/Nexus-hackathon-platform-sub001/internal/config"
	"github.com/rajstories/Nexus-hackathon-platform-sub001/internal/domain/corpus"
	"github.com/rajstories/Nexus-hackathon-platform-sub001/internal/domain/integrity"
	"github.com/rajstories/Nexus-hackathon-platform-sub001/internal/domain/judging"
	"github.com/rajstories/Nexus-hackathon-platform-sub001/internal/domain/model"
	"github.com/rajstories/Nexus-hackathon-platform-sub001/internal/domain/participation"
	"github.com/rajstories/Nexus-hackathon-platform-sub001/internal/domain/rounds"
	"github.com/rajstories/Nexus-hackathon-platform-sub001/internal/domain/similarity"
	"github.com/rajstories/Nexus-hackathon-platform-sub001/pkg/logger"
)

// Service is the engine facade. One instance serves all events.
type Service struct {
	store    repository.Store
	verifier *participation.StaticVerifier
	panel    *judging.StaticPanel

	similarity *similarity.Engine
	integrity  *integrity.Analyzer
	rounds     *rounds.Aggregator
	gateway    *broadcast.Gateway

	log logger.Logger
}

// New builds a Service from configuration. Options override the
// default in-memory wiring.
func New(cfg *config.Config, opts ...Option) *Service {
	s := &Service{
		log: logger.Get().Named("app"),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.store == nil {
		s.store = repository.NewMemStore()
	}
	if s.verifier == nil {
		s.verifier = participation.NewStaticVerifier()
	}
	if s.panel == nil {
		s.panel = judging.NewStaticPanel()
	}
	if s.gateway == nil {
		s.gateway = broadcast.New(
			broadcast.WithDebounce(cfg.Broadcast.Debounce()),
			broadcast.WithQueueSize(cfg.Broadcast.QueueSize),
			broadcast.WithFanoutWorkers(cfg.Broadcast.FanoutWorkers),
			broadcast.WithClientBuffer(cfg.Broadcast.ClientBuffer),
		)
	}

	s.similarity = similarity.NewEngine(s.store, s.store,
		similarity.WithThreshold(cfg.Similarity.Threshold),
		similarity.WithMinTokenCount(cfg.Similarity.MinTokenCount),
		similarity.WithParallelism(cfg.Similarity.Parallelism),
		similarity.WithBuilder(corpus.NewBuilder(corpus.WithTopTerms(cfg.Similarity.DocTopTerms))),
	)
	s.integrity = integrity.NewAnalyzer(s.store, s.store, s.verifier,
		integrity.WithZThreshold(cfg.Integrity.MADZThreshold),
		integrity.WithHeuristics(
			integrity.NewBurstHeuristic(cfg.Integrity.BurstWindow, cfg.Integrity.BurstCount),
			integrity.NewDuplicateBodyHeuristic(cfg.Integrity.DuplicateBodyThreshold),
		),
	)
	s.rounds = rounds.NewAggregator(s.store, s.store, s.panel,
		rounds.WithNotifier(s.gateway),
	)

	return s
}

// Start brings up the broadcast pipeline.
func (s *Service) Start(ctx context.Context) {
	s.gateway.Start(ctx)
	s.log.Info(ctx, "service started")
}

// Stop shuts the broadcast pipeline down.
func (s *Service) Stop(ctx context.Context) {
	s.gateway.Stop()
	s.log.Info(ctx, "service stopped")
}

// IngestSubmission stores a project entry so it joins future
// similarity analyses.
func (s *Service) IngestSubmission(ctx context.Context, sub model.Submission) error {
	if sub.SubmittedAt.IsZero() {
		sub.SubmittedAt = time.Now().UTC()
	}
	return s.store.PutSubmission(ctx, sub)
}

// IngestReview stores a review and pushes a review:new message to the
// event's subscribers. Returns whether the write replaced an existing
// review by the same id.
func (s *Service) IngestReview(ctx context.Context, rev model.Review) (bool, error) {
	if rev.CreatedAt.IsZero() {
		rev.CreatedAt = time.Now().UTC()
	}
	created, err := s.store.PutReview(ctx, rev)
	if err != nil {
		return false, err
	}

	s.gateway.Publish(ctx, rev.EventID, broadcast.TypeReviewNew, broadcast.ReviewNew{
		Review:   rev,
		IsUpdate: !created,
	})
	return !created, nil
}

// DeleteReview removes a review and pushes a review:deleted message
// carrying the id and rating so clients can adjust running averages.
func (s *Service) DeleteReview(ctx context.Context, eventID, reviewID string) error {
	rev, err := s.store.DeleteReview(ctx, eventID, reviewID)
	if err != nil {
		return err
	}

	s.gateway.Publish(ctx, eventID, broadcast.TypeReviewDeleted, broadcast.ReviewDeleted{
		ReviewID: rev.ID,
		Rating:   rev.Rating,
	})
	return nil
}

// RegisterParticipant records an account's role in an event for
// review validity checks.
func (s *Service) RegisterParticipant(ctx context.Context, eventID, accountID string, role model.Role) {
	s.verifier.Register(ctx, eventID, accountID, role)
}

// ConfigurePanel sets criteria weights and expected judge count for a
// round.
func (s *Service) ConfigurePanel(ctx context.Context, eventID string, round int, weights map[string]float64, totalJudges int) {
	s.panel.Configure(ctx, eventID, round, weights, totalJudges)
}

// AssignJudges overrides the expected judge count for one submission.
func (s *Service) AssignJudges(ctx context.Context, eventID string, round int, submissionID string, judges int) {
	s.panel.AssignJudges(ctx, eventID, round, submissionID, judges)
}

// AnalyzeSimilarity recomputes pairwise similarity for an event.
func (s *Service) AnalyzeSimilarity(ctx context.Context, eventID string) (similarity.Report, error) {
	return s.similarity.Analyze(ctx, eventID)
}

// SimilarityPairs returns the event's flagged pairs.
func (s *Service) SimilarityPairs(ctx context.Context, eventID string) ([]model.SimilarityPair, error) {
	return s.similarity.Pairs(ctx, eventID)
}

// MarkPairReviewed records an organizer's dismissal of a flagged pair.
func (s *Service) MarkPairReviewed(ctx context.Context, eventID, sub1ID, sub2ID, reviewerID, notes string) (model.SimilarityPair, error) {
	return s.similarity.MarkReviewed(ctx, eventID, sub1ID, sub2ID, reviewerID, notes)
}

// AnalyzeIntegrity recomputes review flags for an event.
func (s *Service) AnalyzeIntegrity(ctx context.Context, eventID string) ([]model.ReviewFlag, error) {
	return s.integrity.Analyze(ctx, eventID)
}

// IntegrityFlags returns the event's flags joined with their reviews.
func (s *Service) IntegrityFlags(ctx context.Context, eventID string) ([]model.FlaggedReview, error) {
	return s.integrity.Flags(ctx, eventID)
}

// SubmitScore accepts a judge's score sheet, recomputes the round's
// leaderboard and notifies subscribers.
func (s *Service) SubmitScore(ctx context.Context, score model.EvaluationScore) error {
	return s.rounds.SubmitScore(ctx, score)
}

// Finalize closes a round to further score writes.
func (s *Service) Finalize(ctx context.Context, eventID string, round int, actorID string) (model.RoundStatus, error) {
	return s.rounds.Finalize(ctx, eventID, round, actorID)
}

// Leaderboard returns the round's current standings.
func (s *Service) Leaderboard(ctx context.Context, eventID string, round int) ([]model.LeaderboardEntry, error) {
	return s.rounds.Snapshot(ctx, eventID, round)
}

// RoundStatus reports whether a round has been finalized.
func (s *Service) RoundStatus(ctx context.Context, eventID string, round int) (model.RoundStatus, error) {
	return s.rounds.Status(ctx, eventID, round)
}

// Subscribe attaches a live client to an event's message stream.
func (s *Service) Subscribe(ctx context.Context, eventID, clientID string) <-chan broadcast.Message {
	return s.gateway.Subscribe(ctx, eventID, clientID)
}

// Unsubscribe detaches a live client.
func (s *Service) Unsubscribe(ctx context.Context, eventID, clientID string) {
	s.gateway.Unsubscribe(ctx, eventID, clientID)
}
