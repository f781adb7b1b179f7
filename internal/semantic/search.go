package semantic

import (
	"math"
	"sort"

	"github.com/mediscribe/mediscribe/internal/embedding"
)

// CosineSimilarity computes the cosine similarity between two vectors.
// Returns a value between -1 and 1, where 1 means identical direction.
func CosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float32
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	denominator := float32(math.Sqrt(float64(normA))) * float32(math.Sqrt(float64(normB)))
	if denominator == 0 {
		return 0
	}

	return dot / denominator
}

// Search returns the k passages with the highest inner product against query,
// best first. Ties keep passage order. k is clamped to the passage count; a
// nil index, k <= 0, or a query of the wrong size gives an empty result.
func (idx *Index) Search(query []float32, k int) []Hit {
	n := idx.Len()
	if n == 0 || k <= 0 || len(query) != idx.Dimensions {
		return []Hit{}
	}

	hits := make([]Hit, n)
	for i, vec := range idx.vectors {
		hits[i] = Hit{
			Passage: idx.passages[i],
			Score:   embedding.Dot(query, vec),
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})

	if k < len(hits) {
		hits = hits[:k]
	}
	return hits
}
