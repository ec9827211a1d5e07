package broadcast

import (
	"time"

	"github.com/rajstories/Nexus-hackathon-platform-sub001/pkg/logger"
)

// Option configures a Gateway.
type Option func(*Gateway)

// WithDebounce sets the leaderboard coalescing window. Zero disables
// debouncing entirely.
func WithDebounce(d time.Duration) Option {
	return func(g *Gateway) {
		if d >= 0 {
			g.debounce = d
		}
	}
}

// WithQueueSize bounds the outbox.
func WithQueueSize(n int) Option {
	return func(g *Gateway) {
		if n > 0 {
			g.queueSize = n
		}
	}
}

// WithFanoutWorkers sets the number of delivery workers.
func WithFanoutWorkers(n int) Option {
	return func(g *Gateway) {
		if n > 0 {
			g.fanoutCount = n
		}
	}
}

// WithClientBuffer sets the per-subscriber channel depth.
func WithClientBuffer(n int) Option {
	return func(g *Gateway) {
		if n > 0 {
			g.clientBuffer = n
		}
	}
}

// WithLogger overrides the gateway logger.
func WithLogger(l logger.Logger) Option {
	return func(g *Gateway) {
		if l != nil {
			g.log = l
		}
	}
}
