// Package broadcast fans computed results out to subscribed clients,
// scoped by event id. Delivery is best-effort/at-most-once; clients
// that disconnect re-fetch via snapshot reads on reconnect.
package broadcast

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rajstories/Nexus-hackathon-platform-sub001/internal/adapters/mq/queue"
	"github.com/rajstories/Nexus-hackathon-platform-sub001/internal/adapters/mq/worker"
	"github.com/rajstories/Nexus-hackathon-platform-sub001/internal/domain/model"
	"github.com/rajstories/Nexus-hackathon-platform-sub001/pkg/logger"
	"github.com/rajstories/Nexus-hackathon-platform-sub001/pkg/metrics"
)

// Event types pushed over event-keyed channels.
const (
	TypeLeaderboardUpdate = "leaderboard-update"
	TypeRoundFinalized    = "round-finalized"
	TypeReviewNew         = "review:new"
	TypeReviewDeleted     = "review:deleted"
)

// Default gateway configuration constants.
const (
	defaultDebounce     = 2 * time.Second
	defaultQueueSize    = 10000
	defaultFanoutCount  = 2
	defaultClientBuffer = 16
)

// Message is the wire shape delivered to subscribers.
type Message struct {
	Type    string    `json:"type"`
	EventID string    `json:"event_id"`
	Payload any       `json:"payload"`
	SentAt  time.Time `json:"sent_at"`
}

// LeaderboardUpdate is the payload for leaderboard-update messages.
type LeaderboardUpdate struct {
	Round   int                      `json:"round"`
	Entries []model.LeaderboardEntry `json:"entries"`
}

// RoundFinalized is the payload for round-finalized messages.
type RoundFinalized struct {
	Round       int       `json:"round"`
	FinalizedBy string    `json:"finalized_by"`
	FinalizedAt time.Time `json:"finalized_at"`
}

// ReviewNew is the payload for review:new messages.
type ReviewNew struct {
	Review   model.Review `json:"review"`
	IsUpdate bool         `json:"is_update"`
}

// ReviewDeleted is the payload for review:deleted messages.
type ReviewDeleted struct {
	ReviewID string `json:"review_id"`
	Rating   int    `json:"rating"`
}

// coalesced is one open debounce window for a (event, round) key.
type coalesced struct {
	timer  *time.Timer
	latest LeaderboardUpdate
}

// Gateway routes published envelopes through a bounded outbox and a
// fan-out worker pool to per-client channels.
type Gateway struct {
	mu   sync.RWMutex
	subs map[string]map[string]chan Message // eventID -> clientID

	q    *queue.InMemoryQueue
	pool *worker.Pool

	debounce     time.Duration
	queueSize    int
	fanoutCount  int
	clientBuffer int

	pendingMu sync.Mutex
	pending   map[string]*coalesced

	started bool
	log     logger.Logger
}

// New constructs a Gateway with configuration options.
func New(opts ...Option) *Gateway {
	g := &Gateway{
		subs:         make(map[string]map[string]chan Message),
		debounce:     defaultDebounce,
		queueSize:    defaultQueueSize,
		fanoutCount:  defaultFanoutCount,
		clientBuffer: defaultClientBuffer,
		pending:      make(map[string]*coalesced),
		log:          logger.Get().Named("broadcast"),
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// Start spins up the outbox and fan-out workers.
func (g *Gateway) Start(ctx context.Context) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.started {
		return
	}
	g.q = queue.NewInMemoryQueue(queue.WithCapacity(g.queueSize))
	g.pool = worker.NewPool(g.fanoutCount, g.q, g)
	g.pool.Start(ctx)
	g.started = true
}

// Stop drains and shuts down the gateway. All subscriber channels are
// closed.
func (g *Gateway) Stop() {
	g.pendingMu.Lock()
	for k, c := range g.pending {
		c.timer.Stop()
		delete(g.pending, k)
	}
	g.pendingMu.Unlock()

	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.started {
		return
	}
	_ = g.q.Close()
	g.pool.Stop()
	for eventID, clients := range g.subs {
		for clientID, ch := range clients {
			close(ch)
			delete(clients, clientID)
		}
		delete(g.subs, eventID)
	}
	metrics.UpdateSubscriberCount(0)
	g.started = false
}

// Subscribe registers a client on the event's channel and returns its
// receive channel. The channel is closed on Unsubscribe or Stop.
func (g *Gateway) Subscribe(ctx context.Context, eventID, clientID string) <-chan Message {
	ch := make(chan Message, g.clientBuffer)

	g.mu.Lock()
	clients, ok := g.subs[eventID]
	if !ok {
		clients = make(map[string]chan Message)
		g.subs[eventID] = clients
	}
	if old, ok := clients[clientID]; ok {
		close(old)
	}
	clients[clientID] = ch
	total := g.subscriberCountLocked()
	g.mu.Unlock()

	metrics.UpdateSubscriberCount(total)
	g.log.Debug(ctx, "client subscribed",
		logger.String("eventID", eventID),
		logger.String("clientID", clientID),
	)
	return ch
}

// Unsubscribe removes a client and closes its channel.
func (g *Gateway) Unsubscribe(ctx context.Context, eventID, clientID string) {
	g.mu.Lock()
	if ch, ok := g.subs[eventID][clientID]; ok {
		close(ch)
		delete(g.subs[eventID], clientID)
		if len(g.subs[eventID]) == 0 {
			delete(g.subs, eventID)
		}
	}
	total := g.subscriberCountLocked()
	g.mu.Unlock()

	metrics.UpdateSubscriberCount(total)
}

func (g *Gateway) subscriberCountLocked() int {
	total := 0
	for _, clients := range g.subs {
		total += len(clients)
	}
	return total
}

// Publish enqueues one envelope for fan-out. Returns false when the
// outbox is full or closed (the envelope is dropped, not retried).
func (g *Gateway) Publish(ctx context.Context, eventID, eventType string, payload any) bool {
	g.mu.RLock()
	started := g.started
	g.mu.RUnlock()
	if !started {
		return false
	}

	return g.q.Enqueue(ctx, queue.Envelope{
		EventID: eventID,
		Type:    eventType,
		Payload: payload,
	})
}

// LeaderboardUpdated implements the aggregator's notifier contract.
// Publishes are debounced per (event, round): a burst of judge
// submissions inside the window produces one broadcast carrying the
// latest snapshot.
func (g *Gateway) LeaderboardUpdated(ctx context.Context, eventID string, round int, entries []model.LeaderboardEntry) {
	payload := LeaderboardUpdate{Round: round, Entries: entries}
	if g.debounce <= 0 {
		g.Publish(ctx, eventID, TypeLeaderboardUpdate, payload)
		return
	}

	k := fmt.Sprintf("%s|%d", eventID, round)
	g.pendingMu.Lock()
	c, open := g.pending[k]
	if !open {
		c = &coalesced{}
		c.timer = time.AfterFunc(g.debounce, func() { g.flush(eventID, k) })
		g.pending[k] = c
	}
	c.latest = payload
	g.pendingMu.Unlock()
}

// flush closes a debounce window and publishes its latest snapshot.
func (g *Gateway) flush(eventID, k string) {
	g.pendingMu.Lock()
	c, ok := g.pending[k]
	delete(g.pending, k)
	g.pendingMu.Unlock()

	if ok {
		g.Publish(context.Background(), eventID, TypeLeaderboardUpdate, c.latest)
	}
}

// RoundFinalized implements the aggregator's notifier contract. Not
// debounced: finalize happens once and clients must see it promptly.
func (g *Gateway) RoundFinalized(ctx context.Context, status model.RoundStatus) {
	g.Publish(ctx, status.EventID, TypeRoundFinalized, RoundFinalized{
		Round:       status.Round,
		FinalizedBy: status.FinalizedBy,
		FinalizedAt: status.FinalizedAt,
	})
}

// Deliver fans one envelope out to the event's subscribers with a
// non-blocking send per client: slow clients are skipped, never block
// the pool.
func (g *Gateway) Deliver(ctx context.Context, e queue.Envelope) int {
	msg := Message{
		Type:    e.Type,
		EventID: e.EventID,
		Payload: e.Payload,
		SentAt:  e.Enqueued,
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	delivered := 0
	for _, ch := range g.subs[e.EventID] {
		select {
		case ch <- msg:
			delivered++
		default:
			metrics.RecordBroadcastSkipped()
		}
	}
	return delivered
}
