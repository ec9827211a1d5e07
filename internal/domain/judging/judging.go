// Package judging defines the contract for externally configured
// judging panels: criteria weights and judge assignments per round.
package judging

import (
	"context"
	"fmt"
	"sync"
)

// Panel exposes the judging configuration the aggregator folds over.
type Panel interface {
	// CriteriaWeights returns criterion -> weight for an (event, round).
	// An empty map means totals submitted by judges are used as-is.
	CriteriaWeights(ctx context.Context, eventID string, round int) (map[string]float64, error)

	// AssignedJudges returns how many judges are assigned to score the
	// submission in the round. Zero means assignment data is unknown.
	AssignedJudges(ctx context.Context, eventID string, round int, submissionID string) (int, error)
}

// roundConfig holds one (event, round) panel configuration.
type roundConfig struct {
	weights       map[string]float64
	defaultJudges int
	perSubmission map[string]int
}

// StaticPanel is an in-memory Panel fed through Configure. It stands in
// for the platform's judging-criteria service.
type StaticPanel struct {
	mu     sync.RWMutex
	rounds map[string]roundConfig // "eventID|round"
}

var _ Panel = (*StaticPanel)(nil)

// NewStaticPanel constructs an empty StaticPanel.
func NewStaticPanel() *StaticPanel {
	return &StaticPanel{rounds: make(map[string]roundConfig)}
}

func key(eventID string, round int) string {
	return fmt.Sprintf("%s|%d", eventID, round)
}

// Configure sets criteria weights and the default judge count for an
// (event, round). Weights may be nil.
func (p *StaticPanel) Configure(ctx context.Context, eventID string, round int, weights map[string]float64, totalJudges int) {
	copied := make(map[string]float64, len(weights))
	for c, w := range weights {
		if w > 0 {
			copied[c] = w
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	cfg := p.rounds[key(eventID, round)]
	cfg.weights = copied
	cfg.defaultJudges = totalJudges
	if cfg.perSubmission == nil {
		cfg.perSubmission = make(map[string]int)
	}
	p.rounds[key(eventID, round)] = cfg
}

// AssignJudges overrides the judge count for a single submission.
func (p *StaticPanel) AssignJudges(ctx context.Context, eventID string, round int, submissionID string, judges int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	cfg := p.rounds[key(eventID, round)]
	if cfg.perSubmission == nil {
		cfg.perSubmission = make(map[string]int)
	}
	cfg.perSubmission[submissionID] = judges
	p.rounds[key(eventID, round)] = cfg
}

// CriteriaWeights implements Panel.
func (p *StaticPanel) CriteriaWeights(ctx context.Context, eventID string, round int) (map[string]float64, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	cfg := p.rounds[key(eventID, round)]
	out := make(map[string]float64, len(cfg.weights))
	for c, w := range cfg.weights {
		out[c] = w
	}
	return out, nil
}

// AssignedJudges implements Panel.
func (p *StaticPanel) AssignedJudges(ctx context.Context, eventID string, round int, submissionID string) (int, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	cfg := p.rounds[key(eventID, round)]
	if n, ok := cfg.perSubmission[submissionID]; ok {
		return n, nil
	}
	return cfg.defaultJudges, nil
}
