package similarity

import (
	"github.com/rajstories/Nexus-hackathon-platform-sub001/internal/domain/corpus"
	"github.com/rajstories/Nexus-hackathon-platform-sub001/pkg/logger"
)

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithThreshold sets the similarity score at or above which a pair is
// flagged. Values outside (0, 1] are ignored.
func WithThreshold(t float64) Option {
	return func(e *Engine) {
		if t > 0 && t <= 1 {
			e.threshold = t
		}
	}
}

// WithMinTokenCount sets the minimum normalized token count below which
// a submission is excluded from comparison.
func WithMinTokenCount(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.minTokens = n
		}
	}
}

// WithParallelism bounds the number of concurrent pair comparisons.
func WithParallelism(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.parallelism = n
		}
	}
}

// WithBuilder sets a custom corpus builder.
func WithBuilder(b *corpus.Builder) Option {
	return func(e *Engine) {
		if b != nil {
			e.builder = b
		}
	}
}

// WithLogger sets a custom logger for the engine.
func WithLogger(log logger.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}
