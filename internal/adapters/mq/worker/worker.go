// Package worker drains the broadcast outbox and fans envelopes out to
// subscribers.
package worker

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/rajstories/Nexus-hackathon-platform-sub001/internal/adapters/mq/queue"
	"github.com/rajstories/Nexus-hackathon-platform-sub001/pkg/logger"
	"github.com/rajstories/Nexus-hackathon-platform-sub001/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerCount    = 2
	workerShutdownTimeout = 5 * time.Second
)

// Deliverer fans one envelope out to the subscribers of its event
// channel and reports how many clients received it.
type Deliverer interface {
	Deliver(ctx context.Context, e queue.Envelope) int
}

// Queue defines how workers receive envelopes.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Envelope
}

// FanoutWorker drains envelopes and hands them to the deliverer.
type FanoutWorker struct {
	queue     Queue
	deliverer Deliverer
	name      string

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	log logger.Logger
}

// NewFanoutWorker creates a worker with configuration options.
func NewFanoutWorker(q Queue, d Deliverer, opts ...Option) *FanoutWorker {
	w := &FanoutWorker{
		queue:     q,
		deliverer: d,
		name:      "fanout",
		shutdown:  make(chan struct{}),
		done:      make(chan struct{}),
		log:       logger.Get().Named("fanout"),
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.name != "fanout" {
		w.log = w.log.Named(w.name)
	}

	return w
}

// Run starts the worker loop until ctx is canceled or the queue closes.
func (w *FanoutWorker) Run(ctx context.Context) {
	defer close(w.done)

	envelopes := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case e, ok := <-envelopes:
			if !ok {
				return
			}
			delivered := w.deliverer.Deliver(ctx, e)
			metrics.RecordBroadcastDelivered(delivered)
			w.log.Debug(ctx, "envelope delivered",
				logger.String("eventID", e.EventID),
				logger.String("type", e.Type),
				logger.Int("clients", delivered),
			)
		}
	}
}

// Shutdown gracefully stops the worker. Safe to call more than once.
func (w *FanoutWorker) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() { close(w.shutdown) })

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.log.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Pool manages multiple fan-out workers.
type Pool struct {
	workers []*FanoutWorker

	log logger.Logger
}

// NewPool creates a worker pool draining the queue into the deliverer.
func NewPool(workerCount int, q Queue, d Deliverer) *Pool {
	if workerCount < 1 {
		workerCount = defaultWorkerCount
	}

	pool := &Pool{
		workers: make([]*FanoutWorker, workerCount),
		log:     logger.Get().Named("fanout-pool"),
	}
	for i := 0; i < workerCount; i++ {
		pool.workers[i] = NewFanoutWorker(q, d, WithName("fanout-"+strconv.Itoa(i)))
	}
	return pool
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Stop signals all workers and waits for them to finish, bounded per
// worker.
func (p *Pool) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), workerShutdownTimeout)
	defer cancel()

	for _, w := range p.workers {
		if err := w.Shutdown(ctx); err != nil {
			p.log.Warn(ctx, "worker did not stop in time", logger.String("worker", w.name))
		}
	}
}
