package corpus

// Option applies a configuration option to the Builder.
type Option func(*Builder)

// WithTopTerms bounds per-document vocabulary to the k highest-weighted
// terms. Zero or negative disables pruning.
func WithTopTerms(k int) Option {
	return func(b *Builder) {
		b.topTerms = k
	}
}

// WithExtraStopWords adds words to the default stop-word set.
func WithExtraStopWords(words ...string) Option {
	return func(b *Builder) {
		for _, w := range words {
			b.stopWords[w] = struct{}{}
		}
	}
}
