// Package corpus normalizes submission text into token streams and
// builds TF-IDF vector spaces over an event's submissions.
package corpus

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

// Default corpus configuration constants.
const (
	defaultTopTerms = 200

	// minIDF keeps corpus-wide terms down-weighted without discarding
	// them outright, so tiny corpora still separate on shared vocabulary.
	minIDF = 1e-3
)

// foldCaser is a package-level Unicode case folder; building one per
// document is measurably slower.
var foldCaser = cases.Fold() //nolint:gochecknoglobals // shared immutable caser

// Document is a tokenized submission ready for vectorization.
type Document struct {
	ID     string
	Tokens []string
	counts map[string]int
}

// TokenCount returns the number of tokens that survived normalization.
func (d Document) TokenCount() int { return len(d.Tokens) }

// Vector is a sparse, L2-normalized TF-IDF vector.
type Vector map[string]float64

// Builder tokenizes raw text and computes TF-IDF vectors.
type Builder struct {
	stopWords map[string]struct{}
	topTerms  int
}

// NewBuilder creates a Builder with configuration options.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		stopWords: defaultStopWords(),
		topTerms:  defaultTopTerms,
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// Build normalizes raw text into a Document: case-fold, strip
// punctuation, whitespace-split, drop stop words.
func (b *Builder) Build(id, text string) Document {
	folded := foldCaser.String(text)

	var sb strings.Builder
	sb.Grow(len(folded))
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
		} else {
			sb.WriteRune(' ')
		}
	}

	raw := strings.Fields(sb.String())
	tokens := make([]string, 0, len(raw))
	counts := make(map[string]int, len(raw))
	for _, tok := range raw {
		if _, stop := b.stopWords[tok]; stop {
			continue
		}
		tokens = append(tokens, tok)
		counts[tok]++
	}

	return Document{ID: id, Tokens: tokens, counts: counts}
}

// Vectorize computes L2-normalized TF-IDF vectors for the documents,
// pruned to the top-K weighted terms per document. IDF uses the
// smoothed form 1 + ln(N / (1 + df)), floored at minIDF, so terms
// shared by a few documents keep weight even in a corpus of two or
// three submissions.
func (b *Builder) Vectorize(docs []Document) map[string]Vector {
	n := float64(len(docs))

	// Document frequency per term across the corpus.
	df := make(map[string]int)
	for _, doc := range docs {
		for term := range doc.counts {
			df[term]++
		}
	}

	vectors := make(map[string]Vector, len(docs))
	for _, doc := range docs {
		vec := make(Vector, len(doc.counts))
		for term, tf := range doc.counts {
			idf := 1 + math.Log(n/(1+float64(df[term])))
			if idf < minIDF {
				idf = minIDF
			}
			vec[term] = float64(tf) * idf
		}

		vec = pruneTopTerms(vec, b.topTerms)
		normalize(vec)
		vectors[doc.ID] = vec
	}

	return vectors
}

// Cosine returns the cosine similarity of two L2-normalized vectors,
// which reduces to their dot product. Iterates the smaller vector.
func Cosine(a, b Vector) float64 {
	if len(b) < len(a) {
		a, b = b, a
	}
	var dot float64
	for term, wa := range a {
		if wb, ok := b[term]; ok {
			dot += wa * wb
		}
	}
	// Guard against float drift pushing the product past 1.
	return math.Min(dot, 1.0)
}

// pruneTopTerms keeps the k highest-weighted terms of vec, breaking
// weight ties by term for determinism.
func pruneTopTerms(vec Vector, k int) Vector {
	if k <= 0 || len(vec) <= k {
		return vec
	}

	type weighted struct {
		term   string
		weight float64
	}
	terms := make([]weighted, 0, len(vec))
	for term, w := range vec {
		terms = append(terms, weighted{term: term, weight: w})
	}
	sort.Slice(terms, func(i, j int) bool {
		if terms[i].weight != terms[j].weight {
			return terms[i].weight > terms[j].weight
		}
		return terms[i].term < terms[j].term
	})

	pruned := make(Vector, k)
	for _, t := range terms[:k] {
		pruned[t.term] = t.weight
	}
	return pruned
}

// normalize scales vec to unit L2 length in place.
func normalize(vec Vector) {
	var sum float64
	for _, w := range vec {
		sum += w * w
	}
	if sum == 0 {
		return
	}
	norm := math.Sqrt(sum)
	for term, w := range vec {
		vec[term] = w / norm
	}
}
