package rounds

import "github.com/rajstories/Nexus-hackathon-platform-sub001/pkg/logger"

// Option applies a configuration option to the Aggregator.
type Option func(*Aggregator)

// WithNotifier sets the sink for committed aggregation results.
func WithNotifier(n Notifier) Option {
	return func(a *Aggregator) {
		a.notifier = n
	}
}

// WithLogger sets a custom logger for the aggregator.
func WithLogger(log logger.Logger) Option {
	return func(a *Aggregator) {
		if log != nil {
			a.log = log
		}
	}
}
