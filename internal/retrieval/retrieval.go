// Package retrieval finds the knowledge base passages most similar to a note.
package retrieval

import (
	"context"
	"fmt"

	"github.com/mediscribe/mediscribe/internal/clinical"
	"github.com/mediscribe/mediscribe/internal/embedding"
	"github.com/mediscribe/mediscribe/internal/semantic"
)

// DefaultTopK is the number of passages retrieved when the caller does not say.
const DefaultTopK = 4

// Retriever embeds a note and searches the passage index with it.
type Retriever struct {
	provider embedding.Provider
	index    *semantic.Index
}

// New creates a Retriever. A nil index behaves as an empty knowledge base.
func New(provider embedding.Provider, index *semantic.Index) *Retriever {
	return &Retriever{provider: provider, index: index}
}

// Len returns the number of searchable passages.
func (r *Retriever) Len() int {
	return r.index.Len()
}

// Retrieve returns up to k evidence items ranked 1..k by descending
// similarity to the whole note. An empty index or k <= 0 yields no evidence
// without calling the embedding provider.
func (r *Retriever) Retrieve(ctx context.Context, note string, k int) ([]clinical.EvidenceItem, error) {
	if r.index.Len() == 0 || k <= 0 {
		return []clinical.EvidenceItem{}, nil
	}

	query, err := r.provider.Embed(ctx, note)
	if err != nil {
		return nil, fmt.Errorf("embedding note: %w", err)
	}

	hits := r.index.Search(query.Vector, k)
	evidence := make([]clinical.EvidenceItem, len(hits))
	for i, h := range hits {
		evidence[i] = clinical.EvidenceItem{
			Rank:             i + 1,
			Passage:          h.Passage.Text,
			Source:           h.Passage.Source,
			ChunkIndex:       h.Passage.ChunkIndex,
			Score:            float64(h.Score),
			MatchingFindings: []clinical.MatchedFinding{},
		}
	}
	return evidence, nil
}
