package worker

// Option applies a configuration option to the FanoutWorker.
type Option func(*FanoutWorker)

// WithName sets the worker's name for logging.
func WithName(name string) Option {
	return func(w *FanoutWorker) {
		if name != "" {
			w.name = name
		}
	}
}
