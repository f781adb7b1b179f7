package embedding

import (
	"context"
	"hash/fnv"
	"strings"
	"unicode"
)

// HashingModelName identifies vectors produced by HashingProvider.
const HashingModelName = "hashing-bow-v1"

// HashingProvider is an offline Provider that projects word unigrams and
// bigrams into a fixed number of signed buckets (the hashing trick).
// Texts sharing vocabulary get similar vectors; it needs no model server.
type HashingProvider struct {
	dimensions int
}

// NewHashingProvider returns a HashingProvider producing vectors of the given size.
func NewHashingProvider(dimensions int) *HashingProvider {
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	return &HashingProvider{dimensions: dimensions}
}

// Embed implements Provider.
func (h *HashingProvider) Embed(_ context.Context, text string) (Embedding, error) {
	vec := make([]float32, h.dimensions)
	tokens := tokenize(text)
	for i, tok := range tokens {
		h.add(vec, tok, 1)
		if i > 0 {
			h.add(vec, tokens[i-1]+" "+tok, 0.5)
		}
	}
	return Embedding{Vector: Normalize(vec)}, nil
}

// ModelName implements Provider.
func (h *HashingProvider) ModelName() string {
	return HashingModelName
}

// Dimensions implements Provider.
func (h *HashingProvider) Dimensions() int {
	return h.dimensions
}

func (h *HashingProvider) add(vec []float32, feature string, weight float32) {
	hasher := fnv.New64a()
	hasher.Write([]byte(feature))
	sum := hasher.Sum64()
	bucket := int(sum % uint64(h.dimensions))
	if sum&(1<<63) != 0 {
		weight = -weight
	}
	vec[bucket] += weight
}

// tokenize lowercases text and splits it on anything that is not a letter or digit.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
