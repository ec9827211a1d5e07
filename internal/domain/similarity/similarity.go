// Package similarity detects likely plagiarism between an event's
// submissions via TF-IDF cosine similarity.
package similarity

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rajstories/Nexus-hackathon-platform-sub001/internal/adapters/repository"
	"github.com/rajstories/Nexus-hackathon-platform-sub001/internal/domain/corpus"
	"github.com/rajstories/Nexus-hackathon-platform-sub001/internal/domain/model"
	"github.com/rajstories/Nexus-hackathon-platform-sub001/pkg/logger"
	"github.com/rajstories/Nexus-hackathon-platform-sub001/pkg/metrics"
)

// Default engine configuration constants.
const (
	defaultThreshold     = 0.80
	defaultMinTokenCount = 15
	defaultParallelism   = 4
	percentScale         = 100
)

// Report summarizes one analysis run.
type Report struct {
	Analyzed int `json:"analyzed"`
	Flagged  int `json:"flagged"`
}

// Engine computes pairwise submission similarity for an event and
// persists flagged pairs. Analysis runs are serialized per event and
// never touch round aggregation state.
type Engine struct {
	subs    repository.SubmissionStore
	pairs   repository.PairStore
	builder *corpus.Builder

	threshold   float64
	minTokens   int
	parallelism int

	mu       sync.Mutex
	inflight map[string]*sync.Mutex // per-event analysis serialization

	log logger.Logger
}

// NewEngine constructs a similarity Engine with configuration options.
func NewEngine(subs repository.SubmissionStore, pairs repository.PairStore, opts ...Option) *Engine {
	e := &Engine{
		subs:        subs,
		pairs:       pairs,
		builder:     corpus.NewBuilder(),
		threshold:   defaultThreshold,
		minTokens:   defaultMinTokenCount,
		parallelism: defaultParallelism,
		inflight:    make(map[string]*sync.Mutex),
		log:         logger.Get().Named("similarity"),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// eventLock returns the serialization mutex for one event's analysis.
func (e *Engine) eventLock(eventID string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()

	l, ok := e.inflight[eventID]
	if !ok {
		l = &sync.Mutex{}
		e.inflight[eventID] = l
	}
	return l
}

// Analyze builds a TF-IDF vector space over the event's submissions and
// persists a SimilarityPair for every unordered pair at or above the
// threshold. Prior reviewed state is preserved per pair; reviewed pairs
// that fall below the threshold are retained rather than dropped. A
// second Analyze for the same event waits behind an in-flight one.
func (e *Engine) Analyze(ctx context.Context, eventID string) (Report, error) {
	lock := e.eventLock(eventID)
	lock.Lock()
	defer lock.Unlock()

	start := time.Now()
	defer func() {
		metrics.RecordAnalysisDuration("similarity", float64(time.Since(start).Milliseconds()))
	}()

	subs, err := e.subs.SubmissionsByEvent(ctx, eventID)
	if err != nil {
		return Report{}, fmt.Errorf("load submissions: %w", err)
	}

	eligible := e.buildEligibleDocs(ctx, subs)
	vectors := e.builder.Vectorize(docsOf(eligible))

	prior, err := e.pairs.PairsByEvent(ctx, eventID)
	if err != nil {
		return Report{}, fmt.Errorf("load prior pairs: %w", err)
	}
	priorByKey := make(map[string]model.SimilarityPair, len(prior))
	for _, p := range prior {
		priorByKey[p.Submission1ID+"|"+p.Submission2ID] = p
	}

	flagged := e.comparePairs(ctx, eventID, eligible, vectors)

	// Carry reviewed state across runs, keyed by the exact pair.
	now := time.Now().UTC()
	next := make([]model.SimilarityPair, 0, len(flagged))
	seen := make(map[string]struct{}, len(flagged))
	for _, p := range flagged {
		key := p.Submission1ID + "|" + p.Submission2ID
		if old, ok := priorByKey[key]; ok {
			p.Reviewed = old.Reviewed
			p.ReviewedBy = old.ReviewedBy
			p.ReviewNotes = old.ReviewNotes
		}
		p.DetectedAt = now
		next = append(next, p)
		seen[key] = struct{}{}
	}

	// Reviewed pairs are sticky even when a re-run no longer flags them.
	for key, old := range priorByKey {
		if _, ok := seen[key]; ok {
			continue
		}
		if old.Reviewed {
			next = append(next, old)
		}
	}

	if err := e.pairs.ReplacePairs(ctx, eventID, next); err != nil {
		return Report{}, fmt.Errorf("persist pairs: %w", err)
	}

	metrics.RecordAnalysisRun("similarity")
	metrics.RecordPairsFlagged(len(flagged))
	e.log.Info(ctx, "similarity analysis complete",
		logger.String("eventID", eventID),
		logger.Int("analyzed", len(eligible)),
		logger.Int("flagged", len(flagged)),
	)

	return Report{Analyzed: len(eligible), Flagged: len(flagged)}, nil
}

// eligibleDoc pairs a submission with its tokenized corpus.
type eligibleDoc struct {
	sub model.Submission
	doc corpus.Document
}

// buildEligibleDocs tokenizes every submission's corpus and drops those
// below the minimum token count. A submission with no corpus text at
// all still gets its title analyzed (degraded, never excluded for a
// fetch failure upstream).
func (e *Engine) buildEligibleDocs(ctx context.Context, subs []model.Submission) []eligibleDoc {
	eligible := make([]eligibleDoc, 0, len(subs))
	for _, sub := range subs {
		text := sub.CorpusText
		if strings.TrimSpace(text) == "" {
			text = sub.Title
			metrics.RecordDegradedCorpus()
			e.log.Warn(ctx, "submission has no corpus text; analyzing title only",
				logger.String("submissionID", sub.ID),
			)
		}

		doc := e.builder.Build(sub.ID, text)
		if doc.TokenCount() < e.minTokens {
			// Near-empty text produces degenerate 100% matches.
			e.log.Debug(ctx, "submission below minimum token count; excluded",
				logger.String("submissionID", sub.ID),
				logger.Int("tokens", doc.TokenCount()),
			)
			continue
		}
		eligible = append(eligible, eligibleDoc{sub: sub, doc: doc})
	}
	return eligible
}

func docsOf(eligible []eligibleDoc) []corpus.Document {
	docs := make([]corpus.Document, len(eligible))
	for i, e := range eligible {
		docs[i] = e.doc
	}
	return docs
}

// comparePairs scores every unordered pair of eligible submissions in
// parallel and returns the canonical pairs at or above the threshold,
// deterministically ordered.
func (e *Engine) comparePairs(ctx context.Context, eventID string, eligible []eligibleDoc, vectors map[string]corpus.Vector) []model.SimilarityPair {
	var (
		mu      sync.Mutex
		flagged []model.SimilarityPair
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.parallelism)
	for i := range eligible {
		for j := i + 1; j < len(eligible); j++ {
			a, b := eligible[i].sub, eligible[j].sub
			g.Go(func() error {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}

				score := corpus.Cosine(vectors[a.ID], vectors[b.ID])
				if score < e.threshold {
					return nil
				}

				id1, id2 := model.PairKey(a.ID, b.ID)
				pair := model.SimilarityPair{
					EventID:         eventID,
					Submission1ID:   id1,
					Submission2ID:   id2,
					Score:           score,
					PercentageMatch: int(math.Round(score * percentScale)),
				}
				mu.Lock()
				flagged = append(flagged, pair)
				mu.Unlock()
				return nil
			})
		}
	}
	// Individual comparisons cannot fail; Wait only reports cancellation.
	_ = g.Wait()

	sort.Slice(flagged, func(i, j int) bool {
		if flagged[i].Submission1ID != flagged[j].Submission1ID {
			return flagged[i].Submission1ID < flagged[j].Submission1ID
		}
		return flagged[i].Submission2ID < flagged[j].Submission2ID
	})
	return flagged
}

// Pairs returns the last successfully persisted pair set for the event.
func (e *Engine) Pairs(ctx context.Context, eventID string) ([]model.SimilarityPair, error) {
	return e.pairs.PairsByEvent(ctx, eventID)
}

// MarkReviewed marks a flagged pair as manually reviewed. The reviewed
// state is terminal for the pair; re-invoking overwrites the reviewer
// and notes but never clears the mark.
func (e *Engine) MarkReviewed(ctx context.Context, eventID, sub1ID, sub2ID, reviewerID, notes string) (model.SimilarityPair, error) {
	lock := e.eventLock(eventID)
	lock.Lock()
	defer lock.Unlock()

	pair, err := e.pairs.Pair(ctx, eventID, sub1ID, sub2ID)
	if err != nil {
		return model.SimilarityPair{}, ErrPairNotFound
	}

	pair.Reviewed = true
	pair.ReviewedBy = reviewerID
	pair.ReviewNotes = notes
	if err := e.pairs.PutPair(ctx, pair); err != nil {
		return model.SimilarityPair{}, fmt.Errorf("persist pair review: %w", err)
	}
	return pair, nil
}
