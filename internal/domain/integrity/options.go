package integrity

import "github.com/rajstories/Nexus-hackathon-platform-sub001/pkg/logger"

// Option applies a configuration option to the Analyzer.
type Option func(*Analyzer)

// WithZThreshold sets the absolute modified z-score beyond which a
// rating is flagged as an outlier.
func WithZThreshold(t float64) Option {
	return func(a *Analyzer) {
		if t > 0 {
			a.zThreshold = t
		}
	}
}

// WithHeuristics replaces the suspicious-pattern heuristics. Passing
// none disables suspicious-pattern detection entirely.
func WithHeuristics(hs ...Heuristic) Option {
	return func(a *Analyzer) {
		a.heuristics = hs
	}
}

// WithLogger sets a custom logger for the analyzer.
func WithLogger(log logger.Logger) Option {
	return func(a *Analyzer) {
		if log != nil {
			a.log = log
		}
	}
}
