// Package queue defines the contract for the broadcast outbox: a
// bounded, in-memory envelope queue between publishers and the fan-out
// workers.
package queue

import (
	"context"
	"sync"
	"time"

	"github.com/rajstories/Nexus-hackathon-platform-sub001/pkg/metrics"
)

// Default queue configuration constants.
const (
	defaultCapacity = 10000
)

// Envelope is one broadcast message scoped to an event channel.
type Envelope struct {
	EventID  string
	Type     string
	Payload  any
	Enqueued time.Time
}

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds an envelope to the queue.
	// Returns false if the queue is full and the envelope was dropped.
	Enqueue(ctx context.Context, e Envelope) bool

	// Dequeue returns a channel that yields envelopes as they become
	// available. The channel is closed when the queue is closed.
	Dequeue(ctx context.Context) <-chan Envelope

	// Len returns the current number of queued envelopes.
	Len(ctx context.Context) int

	// Close gracefully shuts down the queue. After closing, no new
	// envelopes can be enqueued and the dequeue channel is closed.
	Close() error

	// IsClosed returns true if the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	envelopes chan Envelope
	capacity  int

	mu     sync.RWMutex
	closed bool
}

var _ Queue = (*InMemoryQueue)(nil)

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity: defaultCapacity,
	}

	for _, opt := range opts {
		opt(q)
	}

	q.envelopes = make(chan Envelope, q.capacity)

	metrics.UpdateBroadcastQueueCapacity(q.capacity)
	metrics.UpdateBroadcastQueueSize(0)

	return q
}

// Enqueue adds an envelope to the queue. Delivery is best-effort: a
// full queue drops the envelope rather than blocking the publisher.
func (q *InMemoryQueue) Enqueue(ctx context.Context, e Envelope) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordBroadcastDrop()
		return false
	}

	if e.Enqueued.IsZero() {
		e.Enqueued = time.Now().UTC()
	}

	select {
	case q.envelopes <- e:
		metrics.UpdateBroadcastQueueSize(len(q.envelopes))
		return true
	case <-ctx.Done():
		metrics.RecordBroadcastDrop()
		return false
	default:
		metrics.RecordBroadcastDrop()
		return false
	}
}

// Dequeue returns a channel that yields envelopes as they become available.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Envelope {
	out := make(chan Envelope)
	go func() {
		defer close(out)
		for e := range q.envelopes {
			select {
			case out <- e:
				metrics.UpdateBroadcastQueueSize(len(q.envelopes))
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len returns the current number of queued envelopes.
func (q *InMemoryQueue) Len(ctx context.Context) int {
	return len(q.envelopes)
}

// Close gracefully shuts down the queue.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}

	close(q.envelopes)
	q.closed = true
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
