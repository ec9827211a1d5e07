// Package rounds folds per-judge evaluation scores into ranked,
// live-updating leaderboards with a one-way finalize gate per
// (event, round).
package rounds

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rajstories/Nexus-hackathon-platform-sub001/internal/adapters/repository"
	"github.com/rajstories/Nexus-hackathon-platform-sub001/internal/domain/judging"
	"github.com/rajstories/Nexus-hackathon-platform-sub001/internal/domain/model"
	"github.com/rajstories/Nexus-hackathon-platform-sub001/pkg/logger"
	"github.com/rajstories/Nexus-hackathon-platform-sub001/pkg/metrics"
)

// Notifier receives committed aggregation results. Implemented by the
// broadcast gateway; nil disables notification.
type Notifier interface {
	LeaderboardUpdated(ctx context.Context, eventID string, round int, entries []model.LeaderboardEntry)
	RoundFinalized(ctx context.Context, status model.RoundStatus)
}

// roundState is the last committed recomputation for one round key.
type roundState struct {
	entries []model.LeaderboardEntry
	ranks   map[string]int // submissionID -> rank at last commit
}

// Aggregator serializes score writes, recomputation and finalization
// per (event, round). The score store stays the single source of
// truth: every recompute re-reads current scores, so a restarted
// aggregator regains consistency by recomputing, not by restoring a
// cache.
type Aggregator struct {
	store    repository.ScoreStore
	subs     repository.SubmissionStore
	panel    judging.Panel
	notifier Notifier

	mu    sync.Mutex
	locks map[string]*sync.Mutex // exactly one lock per "event|round"

	stateMu sync.RWMutex
	state   map[string]*roundState

	log logger.Logger
}

// NewAggregator constructs an Aggregator with configuration options.
func NewAggregator(store repository.ScoreStore, subs repository.SubmissionStore, panel judging.Panel, opts ...Option) *Aggregator {
	a := &Aggregator{
		store: store,
		subs:  subs,
		panel: panel,
		locks: make(map[string]*sync.Mutex),
		state: make(map[string]*roundState),
		log:   logger.Get().Named("rounds"),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

func key(eventID string, round int) string {
	return fmt.Sprintf("%s|%d", eventID, round)
}

// roundLock returns the serialization mutex for one round key. Writers
// for different rounds or events never contend.
func (a *Aggregator) roundLock(k string) *sync.Mutex {
	a.mu.Lock()
	defer a.mu.Unlock()

	l, ok := a.locks[k]
	if !ok {
		l = &sync.Mutex{}
		a.locks[k] = l
	}
	return l
}

// SubmitScore upserts an evaluation score and synchronously recomputes
// the round's leaderboard. Concurrent submissions for the same round
// queue behind the in-flight recompute; submissions for other rounds
// proceed in parallel. Returns ErrAlreadyFinalized after Finalize, with
// the leaderboard provably unchanged.
func (a *Aggregator) SubmitScore(ctx context.Context, score model.EvaluationScore) error {
	if score.Round < 1 {
		return ErrInvalidRound
	}

	k := key(score.EventID, score.Round)
	lock := a.roundLock(k)
	lock.Lock()
	defer lock.Unlock()

	status, err := a.store.RoundStatus(ctx, score.EventID, score.Round)
	if err != nil {
		return fmt.Errorf("read round status: %w", err)
	}
	if status.IsFinalized {
		metrics.RecordScoreRejectedFinalized()
		return ErrAlreadyFinalized
	}

	if score.SubmittedAt.IsZero() {
		score.SubmittedAt = time.Now().UTC()
	}
	if err := a.store.UpsertScore(ctx, score); err != nil {
		return fmt.Errorf("upsert score: %w", err)
	}
	metrics.RecordScoreSubmission()

	entries, err := a.recomputeLocked(ctx, score.EventID, score.Round)
	if err != nil {
		return err
	}
	if a.notifier != nil {
		a.notifier.LeaderboardUpdated(ctx, score.EventID, score.Round, entries)
	}
	return nil
}

// Finalize transitions OPEN -> FINALIZED exactly once. The finalize
// decision is recorded under the same per-round serialization point as
// score writes, so no score can commit after it. A second call returns
// ErrAlreadyFinalized and leaves state unchanged.
func (a *Aggregator) Finalize(ctx context.Context, eventID string, round int, actorID string) (model.RoundStatus, error) {
	if round < 1 {
		return model.RoundStatus{}, ErrInvalidRound
	}

	k := key(eventID, round)
	lock := a.roundLock(k)
	lock.Lock()
	defer lock.Unlock()

	status, err := a.store.RoundStatus(ctx, eventID, round)
	if err != nil {
		return model.RoundStatus{}, fmt.Errorf("read round status: %w", err)
	}
	if status.IsFinalized {
		return status, ErrAlreadyFinalized
	}

	status = model.RoundStatus{
		EventID:     eventID,
		Round:       round,
		IsFinalized: true,
		FinalizedAt: time.Now().UTC(),
		FinalizedBy: actorID,
	}
	if err := a.store.SetRoundStatus(ctx, status); err != nil {
		return model.RoundStatus{}, fmt.Errorf("record finalize: %w", err)
	}

	// Commit the final standing so snapshots after the lock reflect it.
	if _, err := a.recomputeLocked(ctx, eventID, round); err != nil {
		return model.RoundStatus{}, err
	}

	metrics.RecordRoundFinalized()
	a.log.Info(ctx, "round finalized",
		logger.String("eventID", eventID),
		logger.Int("round", round),
		logger.String("finalizedBy", actorID),
	)
	if a.notifier != nil {
		a.notifier.RoundFinalized(ctx, status)
	}
	return status, nil
}

// Status returns the round's OPEN/FINALIZED state.
func (a *Aggregator) Status(ctx context.Context, eventID string, round int) (model.RoundStatus, error) {
	if round < 1 {
		return model.RoundStatus{}, ErrInvalidRound
	}
	return a.store.RoundStatus(ctx, eventID, round)
}

// Snapshot returns the last committed leaderboard for the round. Reads
// never block behind an in-flight recompute for a different round; a
// round that has never committed is computed once on demand.
func (a *Aggregator) Snapshot(ctx context.Context, eventID string, round int) ([]model.LeaderboardEntry, error) {
	if round < 1 {
		return nil, ErrInvalidRound
	}

	k := key(eventID, round)
	a.stateMu.RLock()
	st, ok := a.state[k]
	a.stateMu.RUnlock()
	if ok {
		return copyEntries(st.entries), nil
	}

	lock := a.roundLock(k)
	lock.Lock()
	defer lock.Unlock()

	entries, err := a.recomputeLocked(ctx, eventID, round)
	if err != nil {
		return nil, err
	}
	return copyEntries(entries), nil
}

// recomputeLocked re-reads the round's scores and commits a new ranked
// snapshot. Caller must hold the round lock.
func (a *Aggregator) recomputeLocked(ctx context.Context, eventID string, round int) ([]model.LeaderboardEntry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRecomputeLatency(float64(time.Since(start).Milliseconds()))
	}()

	scores, err := a.store.ScoresByRound(ctx, eventID, round)
	if err != nil {
		return nil, fmt.Errorf("snapshot scores: %w", err)
	}

	weights, err := a.panel.CriteriaWeights(ctx, eventID, round)
	if err != nil {
		return nil, fmt.Errorf("load criteria weights: %w", err)
	}

	type agg struct {
		sum    float64
		judges int
	}
	totals := make(map[string]*agg)
	for _, sc := range scores {
		t, ok := totals[sc.SubmissionID]
		if !ok {
			t = &agg{}
			totals[sc.SubmissionID] = t
		}
		t.sum += judgeTotal(sc, weights)
		t.judges++
	}

	entries := make([]model.LeaderboardEntry, 0, len(totals))
	submittedAt := make(map[string]time.Time, len(totals))
	for subID, t := range totals {
		entry := model.LeaderboardEntry{
			SubmissionID:    subID,
			Round:           round,
			AggregateScore:  t.sum / float64(t.judges),
			JudgesCompleted: t.judges,
		}

		sub, err := a.subs.Submission(ctx, eventID, subID)
		switch {
		case err == nil:
			entry.TeamID = sub.TeamID
			entry.TrackID = sub.TrackID
			submittedAt[subID] = sub.SubmittedAt
		case errors.Is(err, repository.ErrNotFound):
			// Scored before the submission record arrived; rank it anyway.
		default:
			return nil, fmt.Errorf("load submission %s: %w", subID, err)
		}

		assigned, err := a.panel.AssignedJudges(ctx, eventID, round, subID)
		if err != nil {
			return nil, fmt.Errorf("load judge assignment: %w", err)
		}
		entry.TotalJudges = assigned
		if entry.TotalJudges < entry.JudgesCompleted {
			entry.TotalJudges = entry.JudgesCompleted
		}

		entries = append(entries, entry)
	}

	// Descending by aggregate; ties by judge completion, then earlier
	// submission, then id for a total order.
	sort.Slice(entries, func(i, j int) bool {
		ei, ej := entries[i], entries[j]
		if ei.AggregateScore != ej.AggregateScore {
			return ei.AggregateScore > ej.AggregateScore
		}
		if ei.JudgesCompleted != ej.JudgesCompleted {
			return ei.JudgesCompleted > ej.JudgesCompleted
		}
		ti, tj := submittedAt[ei.SubmissionID], submittedAt[ej.SubmissionID]
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		return ei.SubmissionID < ej.SubmissionID
	})

	k := key(eventID, round)
	a.stateMu.Lock()
	prev := a.state[k]
	ranks := make(map[string]int, len(entries))
	for i := range entries {
		entries[i].Rank = i + 1
		if prev != nil {
			entries[i].PreviousRank = prev.ranks[entries[i].SubmissionID]
		}
		ranks[entries[i].SubmissionID] = entries[i].Rank
	}
	a.state[k] = &roundState{entries: entries, ranks: ranks}
	a.stateMu.Unlock()

	return entries, nil
}

// judgeTotal returns one judge's effective total. With configured
// criteria weights the total is the weighted mean over the criteria
// both sides know; otherwise the judge-submitted total is used as-is.
func judgeTotal(sc model.EvaluationScore, weights map[string]float64) float64 {
	if len(weights) == 0 || len(sc.CriteriaScores) == 0 {
		return sc.TotalScore
	}

	var num, den float64
	for criterion, value := range sc.CriteriaScores {
		if w, ok := weights[criterion]; ok {
			num += value * w
			den += w
		}
	}
	if den == 0 {
		return sc.TotalScore
	}
	return num / den
}

func copyEntries(entries []model.LeaderboardEntry) []model.LeaderboardEntry {
	out := make([]model.LeaderboardEntry, len(entries))
	copy(out, entries)
	return out
}
