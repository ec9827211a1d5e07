package corpus

// defaultStopWords returns the fixed English stop-word set removed
// during normalization.
func defaultStopWords() map[string]struct{} {
	words := []string{
		"a", "an", "and", "are", "as", "at", "be", "been", "but", "by",
		"for", "from", "had", "has", "have", "he", "her", "his", "i",
		"if", "in", "into", "is", "it", "its", "my", "no", "not", "of",
		"on", "or", "our", "she", "so", "that", "the", "their", "them",
		"then", "there", "these", "they", "this", "to", "up", "was",
		"we", "were", "what", "when", "which", "who", "will", "with",
		"you", "your",
	}

	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
