// Package integrity detects statistically anomalous or manipulated
// reviews: MAD-based rating outliers, unverifiable authors and
// pluggable suspicious-pattern heuristics.
package integrity

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rajstories/Nexus-hackathon-platform-sub001/internal/adapters/repository"
	"github.com/rajstories/Nexus-hackathon-platform-sub001/internal/domain/model"
	"github.com/rajstories/Nexus-hackathon-platform-sub001/internal/domain/participation"
	"github.com/rajstories/Nexus-hackathon-platform-sub001/pkg/logger"
	"github.com/rajstories/Nexus-hackathon-platform-sub001/pkg/metrics"
)

// Default analyzer configuration constants.
const (
	defaultZThreshold = 3.5
)

// Detection method names recorded in flag metadata.
const (
	methodModifiedZ  = "modified_zscore_mad"
	methodMembership = "participation_lookup"
)

// Analyzer runs batch integrity analysis over an event's reviews.
// Runs are serialized per event, idempotent, and never touch round
// aggregation state.
type Analyzer struct {
	reviews  repository.ReviewStore
	flags    repository.FlagStore
	verifier participation.Verifier

	zThreshold float64
	heuristics []Heuristic

	mu       sync.Mutex
	inflight map[string]*sync.Mutex

	log logger.Logger
}

// NewAnalyzer constructs an Analyzer with configuration options.
func NewAnalyzer(reviews repository.ReviewStore, flags repository.FlagStore, verifier participation.Verifier, opts ...Option) *Analyzer {
	a := &Analyzer{
		reviews:    reviews,
		flags:      flags,
		verifier:   verifier,
		zThreshold: defaultZThreshold,
		heuristics: []Heuristic{
			NewBurstHeuristic(0, 0),
			NewDuplicateBodyHeuristic(0),
		},
		inflight: make(map[string]*sync.Mutex),
		log:      logger.Get().Named("integrity"),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

func (a *Analyzer) eventLock(eventID string) *sync.Mutex {
	a.mu.Lock()
	defer a.mu.Unlock()

	l, ok := a.inflight[eventID]
	if !ok {
		l = &sync.Mutex{}
		a.inflight[eventID] = l
	}
	return l
}

// Analyze recomputes the event's flag set and persists it atomically.
// Flags not reconfirmed by this run are removed; reconfirmed flags keep
// their original FlaggedAt. A failed lookup for one review is absorbed
// and logged, never aborting the run.
func (a *Analyzer) Analyze(ctx context.Context, eventID string) ([]model.ReviewFlag, error) {
	lock := a.eventLock(eventID)
	lock.Lock()
	defer lock.Unlock()

	start := time.Now()
	defer func() {
		metrics.RecordAnalysisDuration("integrity", float64(time.Since(start).Milliseconds()))
	}()

	reviews, err := a.reviews.ReviewsByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("load reviews: %w", err)
	}

	now := time.Now().UTC()
	next := make([]model.ReviewFlag, 0)
	next = append(next, a.detectOutliers(ctx, eventID, reviews, now)...)
	next = append(next, a.detectInvalidUsers(ctx, eventID, reviews, now)...)
	next = append(next, a.detectSuspiciousPatterns(ctx, eventID, reviews, now)...)

	// At most one active flag per (review, reason): first detector wins.
	deduped := make([]model.ReviewFlag, 0, len(next))
	seen := make(map[string]struct{}, len(next))
	for _, f := range next {
		key := f.ReviewID + "|" + string(f.Reason)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		deduped = append(deduped, f)
	}

	// Reconfirmed flags keep their original detection time.
	prior, err := a.flags.FlagsByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("load prior flags: %w", err)
	}
	priorAt := make(map[string]time.Time, len(prior))
	for _, f := range prior {
		priorAt[f.ReviewID+"|"+string(f.Reason)] = f.FlaggedAt
	}
	for i := range deduped {
		if at, ok := priorAt[deduped[i].ReviewID+"|"+string(deduped[i].Reason)]; ok {
			deduped[i].FlaggedAt = at
		}
	}

	if err := a.flags.ReplaceFlags(ctx, eventID, deduped); err != nil {
		return nil, fmt.Errorf("persist flags: %w", err)
	}

	metrics.RecordAnalysisRun("integrity")
	for _, f := range deduped {
		metrics.RecordReviewFlag(string(f.Reason))
	}
	a.log.Info(ctx, "integrity analysis complete",
		logger.String("eventID", eventID),
		logger.Int("reviews", len(reviews)),
		logger.Int("flags", len(deduped)),
	)

	return deduped, nil
}

// detectOutliers flags ratings with a modified z-score beyond the
// threshold. When MAD is zero the event is skipped outright: a
// documented limitation, not a silent approximation.
func (a *Analyzer) detectOutliers(ctx context.Context, eventID string, reviews []model.Review, now time.Time) []model.ReviewFlag {
	if len(reviews) == 0 {
		return nil
	}

	ratings := make([]float64, len(reviews))
	for i, rev := range reviews {
		ratings[i] = float64(rev.Rating)
	}
	med := median(ratings)
	m := mad(ratings, med)
	avg := mean(ratings)

	if m == 0 {
		metrics.RecordZeroMADSkip()
		a.log.Info(ctx, "MAD is zero; outlier-rating detection skipped for event",
			logger.String("eventID", eventID),
			logger.Float64("median", med),
		)
		return nil
	}

	var flags []model.ReviewFlag
	for _, rev := range reviews {
		z := modifiedZ(float64(rev.Rating), med, m)
		if z > -a.zThreshold && z < a.zThreshold {
			continue
		}
		flags = append(flags, model.ReviewFlag{
			ReviewID: rev.ID,
			EventID:  eventID,
			Reason:   model.ReasonOutlierRating,
			Score:    z,
			Metadata: model.FlagMetadata{
				MADScore:           z,
				EventAverageRating: avg,
				DetectionMethod:    methodModifiedZ,
			},
			FlaggedAt: now,
		})
	}
	return flags
}

// detectInvalidUsers flags reviews whose author cannot be confirmed for
// the event. Independent of rating statistics.
func (a *Analyzer) detectInvalidUsers(ctx context.Context, eventID string, reviews []model.Review, now time.Time) []model.ReviewFlag {
	var flags []model.ReviewFlag
	for _, rev := range reviews {
		_, verified, err := a.verifier.Verify(ctx, eventID, rev.AuthorID)
		if err != nil {
			a.log.Warn(ctx, "participation lookup failed; review skipped",
				logger.String("reviewID", rev.ID),
				logger.Error(err),
			)
			continue
		}
		if verified {
			continue
		}
		flags = append(flags, model.ReviewFlag{
			ReviewID:  rev.ID,
			EventID:   eventID,
			Reason:    model.ReasonInvalidUser,
			Metadata:  model.FlagMetadata{DetectionMethod: methodMembership},
			FlaggedAt: now,
		})
	}
	return flags
}

// detectSuspiciousPatterns runs the configured heuristics.
func (a *Analyzer) detectSuspiciousPatterns(ctx context.Context, eventID string, reviews []model.Review, now time.Time) []model.ReviewFlag {
	var flags []model.ReviewFlag
	for _, h := range a.heuristics {
		for _, finding := range h.Detect(ctx, reviews) {
			flags = append(flags, model.ReviewFlag{
				ReviewID:  finding.ReviewID,
				EventID:   eventID,
				Reason:    model.ReasonSuspiciousPattern,
				Score:     finding.Score,
				Metadata:  model.FlagMetadata{DetectionMethod: finding.Method},
				FlaggedAt: now,
			})
		}
	}
	return flags
}

// Flags returns the last persisted flag set joined with its reviews.
// A deleted review yields a nil review reference, never a dropped flag.
func (a *Analyzer) Flags(ctx context.Context, eventID string) ([]model.FlaggedReview, error) {
	flags, err := a.flags.FlagsByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("load flags: %w", err)
	}

	out := make([]model.FlaggedReview, 0, len(flags))
	for _, f := range flags {
		joined := model.FlaggedReview{Flag: f}
		rev, err := a.reviews.Review(ctx, eventID, f.ReviewID)
		switch {
		case err == nil:
			joined.Review = &rev
		case errors.Is(err, repository.ErrNotFound):
			// Review deleted since the flag was raised; keep the flag.
		default:
			return nil, fmt.Errorf("join review %s: %w", f.ReviewID, err)
		}
		out = append(out, joined)
	}
	return out, nil
}
