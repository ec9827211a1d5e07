package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/rajstories/Nexus-hackathon-platform-sub001/internal/domain/model"
)

// MemStore is the in-memory reference Store. All collections are keyed
// by event id; list reads return deterministically ordered copies so a
// leaderboard or pair listing never depends on map iteration order.
type MemStore struct {
	mu sync.RWMutex

	submissions map[string]map[string]model.Submission      // eventID -> subID
	reviews     map[string]map[string]model.Review          // eventID -> reviewID
	pairs       map[string]map[string]model.SimilarityPair  // eventID -> "id1|id2"
	flags       map[string]map[string]model.ReviewFlag      // eventID -> "reviewID|reason"
	scores      map[string]map[string]model.EvaluationScore // "eventID|round" -> score key
	rounds      map[string]model.RoundStatus                // "eventID|round"
}

var _ Store = (*MemStore)(nil)

// NewMemStore constructs an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{
		submissions: make(map[string]map[string]model.Submission),
		reviews:     make(map[string]map[string]model.Review),
		pairs:       make(map[string]map[string]model.SimilarityPair),
		flags:       make(map[string]map[string]model.ReviewFlag),
		scores:      make(map[string]map[string]model.EvaluationScore),
		rounds:      make(map[string]model.RoundStatus),
	}
}

func roundKey(eventID string, round int) string {
	return fmt.Sprintf("%s|%d", eventID, round)
}

func pairMapKey(id1, id2 string) string {
	a, b := model.PairKey(id1, id2)
	return a + "|" + b
}

func flagMapKey(reviewID string, reason model.FlagReason) string {
	return reviewID + "|" + string(reason)
}

// PutSubmission inserts or replaces a submission by id.
func (s *MemStore) PutSubmission(ctx context.Context, sub model.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	byID, ok := s.submissions[sub.EventID]
	if !ok {
		byID = make(map[string]model.Submission)
		s.submissions[sub.EventID] = byID
	}
	byID[sub.ID] = sub
	return nil
}

// Submission returns one submission.
func (s *MemStore) Submission(ctx context.Context, eventID, id string) (model.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sub, ok := s.submissions[eventID][id]
	if !ok {
		return model.Submission{}, ErrNotFound
	}
	return sub, nil
}

// SubmissionsByEvent returns an event's submissions ordered by id.
func (s *MemStore) SubmissionsByEvent(ctx context.Context, eventID string) ([]model.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Submission, 0, len(s.submissions[eventID]))
	for _, sub := range s.submissions[eventID] {
		out = append(out, sub)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// PutReview inserts or replaces a review by id.
func (s *MemStore) PutReview(ctx context.Context, rev model.Review) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	byID, ok := s.reviews[rev.EventID]
	if !ok {
		byID = make(map[string]model.Review)
		s.reviews[rev.EventID] = byID
	}
	_, existed := byID[rev.ID]
	byID[rev.ID] = rev
	return !existed, nil
}

// DeleteReview removes a review and returns the deleted record.
func (s *MemStore) DeleteReview(ctx context.Context, eventID, id string) (model.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rev, ok := s.reviews[eventID][id]
	if !ok {
		return model.Review{}, ErrNotFound
	}
	delete(s.reviews[eventID], id)
	return rev, nil
}

// Review returns one review.
func (s *MemStore) Review(ctx context.Context, eventID, id string) (model.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rev, ok := s.reviews[eventID][id]
	if !ok {
		return model.Review{}, ErrNotFound
	}
	return rev, nil
}

// ReviewsByEvent returns an event's reviews ordered by creation time, then id.
func (s *MemStore) ReviewsByEvent(ctx context.Context, eventID string) ([]model.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Review, 0, len(s.reviews[eventID]))
	for _, rev := range s.reviews[eventID] {
		out = append(out, rev)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// ReplacePairs atomically swaps the event's pair set.
func (s *MemStore) ReplacePairs(ctx context.Context, eventID string, pairs []model.SimilarityPair) error {
	byKey := make(map[string]model.SimilarityPair, len(pairs))
	for _, p := range pairs {
		byKey[pairMapKey(p.Submission1ID, p.Submission2ID)] = p
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pairs[eventID] = byKey
	return nil
}

// PutPair inserts or replaces a single canonical pair.
func (s *MemStore) PutPair(ctx context.Context, pair model.SimilarityPair) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	byKey, ok := s.pairs[pair.EventID]
	if !ok {
		byKey = make(map[string]model.SimilarityPair)
		s.pairs[pair.EventID] = byKey
	}
	byKey[pairMapKey(pair.Submission1ID, pair.Submission2ID)] = pair
	return nil
}

// Pair returns the canonical pair record for an unordered id pair.
func (s *MemStore) Pair(ctx context.Context, eventID, id1, id2 string) (model.SimilarityPair, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pair, ok := s.pairs[eventID][pairMapKey(id1, id2)]
	if !ok {
		return model.SimilarityPair{}, ErrNotFound
	}
	return pair, nil
}

// PairsByEvent returns an event's pairs ordered by score descending, then canonical ids.
func (s *MemStore) PairsByEvent(ctx context.Context, eventID string) ([]model.SimilarityPair, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.SimilarityPair, 0, len(s.pairs[eventID]))
	for _, p := range s.pairs[eventID] {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		if out[i].Submission1ID != out[j].Submission1ID {
			return out[i].Submission1ID < out[j].Submission1ID
		}
		return out[i].Submission2ID < out[j].Submission2ID
	})
	return out, nil
}

// ReplaceFlags atomically swaps the event's flag set.
func (s *MemStore) ReplaceFlags(ctx context.Context, eventID string, flags []model.ReviewFlag) error {
	byKey := make(map[string]model.ReviewFlag, len(flags))
	for _, f := range flags {
		byKey[flagMapKey(f.ReviewID, f.Reason)] = f
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.flags[eventID] = byKey
	return nil
}

// FlagsByEvent returns an event's flags ordered by flag time, then review id and reason.
func (s *MemStore) FlagsByEvent(ctx context.Context, eventID string) ([]model.ReviewFlag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.ReviewFlag, 0, len(s.flags[eventID]))
	for _, f := range s.flags[eventID] {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].FlaggedAt.Equal(out[j].FlaggedAt) {
			return out[i].FlaggedAt.Before(out[j].FlaggedAt)
		}
		if out[i].ReviewID != out[j].ReviewID {
			return out[i].ReviewID < out[j].ReviewID
		}
		return out[i].Reason < out[j].Reason
	})
	return out, nil
}

// UpsertScore writes a score keyed by (submissionID, judgeID, round).
func (s *MemStore) UpsertScore(ctx context.Context, score model.EvaluationScore) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := roundKey(score.EventID, score.Round)
	byKey, ok := s.scores[key]
	if !ok {
		byKey = make(map[string]model.EvaluationScore)
		s.scores[key] = byKey
	}
	byKey[score.Key()] = score
	return nil
}

// ScoresByRound snapshots all scores for an (event, round).
func (s *MemStore) ScoresByRound(ctx context.Context, eventID string, round int) ([]model.EvaluationScore, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byKey := s.scores[roundKey(eventID, round)]
	out := make([]model.EvaluationScore, 0, len(byKey))
	for _, sc := range byKey {
		out = append(out, sc)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SubmissionID != out[j].SubmissionID {
			return out[i].SubmissionID < out[j].SubmissionID
		}
		return out[i].JudgeID < out[j].JudgeID
	})
	return out, nil
}

// RoundStatus returns the status for an (event, round).
func (s *MemStore) RoundStatus(ctx context.Context, eventID string, round int) (model.RoundStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if status, ok := s.rounds[roundKey(eventID, round)]; ok {
		return status, nil
	}
	// No transition recorded yet: the round is open.
	return model.RoundStatus{EventID: eventID, Round: round}, nil
}

// SetRoundStatus records a status transition.
func (s *MemStore) SetRoundStatus(ctx context.Context, status model.RoundStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rounds[roundKey(status.EventID, status.Round)] = status
	return nil
}
