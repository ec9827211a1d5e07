// Package repository defines the engine's storage interfaces and errors.
//
// The interfaces fix data shapes and ordering invariants, not a
// persistence engine; MemStore is the reference implementation and any
// backend honoring these contracts can replace it.
package repository

import (
	"context"

	"github.com/rajstories/Nexus-hackathon-platform-sub001/internal/domain/model"
)

// SubmissionStore provides access to submission records.
type SubmissionStore interface {
	// PutSubmission inserts or replaces a submission by id.
	PutSubmission(ctx context.Context, sub model.Submission) error

	// Submission returns one submission. Returns ErrNotFound if unknown.
	Submission(ctx context.Context, eventID, id string) (model.Submission, error)

	// SubmissionsByEvent returns an event's submissions ordered by id.
	SubmissionsByEvent(ctx context.Context, eventID string) ([]model.Submission, error)
}

// ReviewStore provides access to review records.
type ReviewStore interface {
	// PutReview inserts or replaces a review by id. Returns true when
	// the review was newly created, false when it replaced an existing one.
	PutReview(ctx context.Context, rev model.Review) (bool, error)

	// DeleteReview removes a review and returns the deleted record.
	// Returns ErrNotFound if unknown. Flags referencing the review are
	// retained (the join in FlagStore yields a nil review).
	DeleteReview(ctx context.Context, eventID, id string) (model.Review, error)

	// Review returns one review. Returns ErrNotFound if unknown.
	Review(ctx context.Context, eventID, id string) (model.Review, error)

	// ReviewsByEvent returns an event's reviews ordered by creation time, then id.
	ReviewsByEvent(ctx context.Context, eventID string) ([]model.Review, error)
}

// PairStore provides access to similarity pair records.
type PairStore interface {
	// ReplacePairs atomically swaps the event's pair set for the result
	// of an analysis run. Review-state preservation is the caller's job.
	ReplacePairs(ctx context.Context, eventID string, pairs []model.SimilarityPair) error

	// PutPair inserts or replaces a single canonical pair.
	PutPair(ctx context.Context, pair model.SimilarityPair) error

	// Pair returns the canonical pair record for an unordered id pair.
	// Returns ErrNotFound if unknown.
	Pair(ctx context.Context, eventID, id1, id2 string) (model.SimilarityPair, error)

	// PairsByEvent returns an event's pairs ordered by score descending,
	// then canonical ids.
	PairsByEvent(ctx context.Context, eventID string) ([]model.SimilarityPair, error)
}

// FlagStore provides access to review flag records.
type FlagStore interface {
	// ReplaceFlags atomically swaps the event's flag set for the result
	// of an analysis run.
	ReplaceFlags(ctx context.Context, eventID string, flags []model.ReviewFlag) error

	// FlagsByEvent returns an event's flags ordered by flag time, then
	// review id and reason.
	FlagsByEvent(ctx context.Context, eventID string) ([]model.ReviewFlag, error)
}

// ScoreStore provides access to evaluation scores and round status.
// It is the single source of truth for both; the aggregator re-reads
// it on every recompute.
type ScoreStore interface {
	// UpsertScore writes a score keyed by (submissionID, judgeID, round).
	UpsertScore(ctx context.Context, score model.EvaluationScore) error

	// ScoresByRound snapshots all scores for an (event, round), ordered
	// by submission id then judge id.
	ScoresByRound(ctx context.Context, eventID string, round int) ([]model.EvaluationScore, error)

	// RoundStatus returns the status for an (event, round). Rounds with
	// no recorded transition report as OPEN.
	RoundStatus(ctx context.Context, eventID string, round int) (model.RoundStatus, error)

	// SetRoundStatus records a status transition.
	SetRoundStatus(ctx context.Context, status model.RoundStatus) error
}

// Store bundles every storage concern the engine needs.
type Store interface {
	SubmissionStore
	ReviewStore
	PairStore
	FlagStore
	ScoreStore
}
