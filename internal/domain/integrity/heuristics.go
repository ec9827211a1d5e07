package integrity

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/agnivade/levenshtein"

	"github.com/rajstories/Nexus-hackathon-platform-sub001/internal/domain/model"
)

// Default heuristic configuration constants.
const (
	defaultBurstWindow        = 5 * time.Minute
	defaultBurstCount         = 3
	defaultBurstMaxAuthors    = 10000
	defaultDuplicateThreshold = 0.90
	duplicateMinBodyLen       = 20
)

// Finding is one suspicious-pattern hit produced by a heuristic.
type Finding struct {
	ReviewID string
	Score    float64
	Method   string
}

// Heuristic is a pluggable suspicious-pattern detector. The engine
// defines the flag shape; the detection policy is swappable.
type Heuristic interface {
	Name() string
	Detect(ctx context.Context, reviews []model.Review) []Finding
}

// BurstHeuristic flags authors who post an implausible number of
// reviews inside a short window.
type BurstHeuristic struct {
	window     time.Duration
	count      int
	maxAuthors int
}

var _ Heuristic = (*BurstHeuristic)(nil)

// NewBurstHeuristic creates a burst detector flagging the count-th and
// later reviews by one author within the window.
func NewBurstHeuristic(window time.Duration, count int) *BurstHeuristic {
	h := &BurstHeuristic{
		window:     defaultBurstWindow,
		count:      defaultBurstCount,
		maxAuthors: defaultBurstMaxAuthors,
	}
	if window > 0 {
		h.window = window
	}
	if count > 1 {
		h.count = count
	}
	return h
}

// Name implements Heuristic.
func (h *BurstHeuristic) Name() string { return "burst_window" }

// Detect implements Heuristic. Reviews are replayed in creation order
// through a bounded activity log; a review that brings its author to
// the configured count inside the window is flagged.
func (h *BurstHeuristic) Detect(ctx context.Context, reviews []model.Review) []Finding {
	ordered := make([]model.Review, len(reviews))
	copy(ordered, reviews)
	sort.Slice(ordered, func(i, j int) bool {
		if !ordered[i].CreatedAt.Equal(ordered[j].CreatedAt) {
			return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
		}
		return ordered[i].ID < ordered[j].ID
	})

	log := newActivityLog(h.maxAuthors)
	var findings []Finding
	for _, rev := range ordered {
		log.record(rev.AuthorID, rev.CreatedAt)
		n := log.countWithin(rev.AuthorID, h.window, rev.CreatedAt)
		if n >= h.count {
			findings = append(findings, Finding{
				ReviewID: rev.ID,
				Score:    float64(n),
				Method:   h.Name(),
			})
		}
	}
	return findings
}

// DuplicateBodyHeuristic flags reviews whose body text is a near
// duplicate of an earlier review, measured by Levenshtein similarity.
type DuplicateBodyHeuristic struct {
	threshold  float64
	minBodyLen int
}

var _ Heuristic = (*DuplicateBodyHeuristic)(nil)

// NewDuplicateBodyHeuristic creates a near-duplicate detector. The
// threshold is the minimum similarity (0..1) treated as a duplicate.
func NewDuplicateBodyHeuristic(threshold float64) *DuplicateBodyHeuristic {
	h := &DuplicateBodyHeuristic{
		threshold:  defaultDuplicateThreshold,
		minBodyLen: duplicateMinBodyLen,
	}
	if threshold > 0 && threshold <= 1 {
		h.threshold = threshold
	}
	return h
}

// Name implements Heuristic.
func (h *DuplicateBodyHeuristic) Name() string { return "near_duplicate_body" }

// Detect implements Heuristic. The later review of each near-duplicate
// pair is flagged; bodies shorter than the minimum are skipped since
// short greetings collide legitimately.
func (h *DuplicateBodyHeuristic) Detect(ctx context.Context, reviews []model.Review) []Finding {
	ordered := make([]model.Review, 0, len(reviews))
	for _, rev := range reviews {
		if len(strings.TrimSpace(rev.Body)) >= h.minBodyLen {
			ordered = append(ordered, rev)
		}
	}
	sort.Slice(ordered, func(i, j int) bool {
		if !ordered[i].CreatedAt.Equal(ordered[j].CreatedAt) {
			return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
		}
		return ordered[i].ID < ordered[j].ID
	})

	var findings []Finding
	flagged := make(map[string]struct{})
	for i := range ordered {
		for j := i + 1; j < len(ordered); j++ {
			score := bodySimilarity(ordered[i].Body, ordered[j].Body)
			if score < h.threshold {
				continue
			}
			if _, done := flagged[ordered[j].ID]; done {
				continue
			}
			flagged[ordered[j].ID] = struct{}{}
			findings = append(findings, Finding{
				ReviewID: ordered[j].ID,
				Score:    score,
				Method:   h.Name(),
			})
		}
	}
	return findings
}

// bodySimilarity converts Levenshtein edit distance into a 0..1
// similarity over the longer of the two strings.
func bodySimilarity(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == b {
		return 1
	}

	longest := len([]rune(a))
	if l := len([]rune(b)); l > longest {
		longest = l
	}
	if longest == 0 {
		return 0
	}

	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(longest)
}
