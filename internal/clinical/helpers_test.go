package clinical

import (
	"context"
	"errors"
	"sync"

	"github.com/mediscribe/mediscribe/internal/embedding"
)

// keyedProvider returns fixed vectors per text and a zero vector otherwise.
type keyedProvider struct {
	dims    int
	vectors map[string][]float32
	fail    bool

	mu    sync.Mutex
	calls int
}

func newKeyedProvider(dims int, vectors map[string][]float32) *keyedProvider {
	return &keyedProvider{dims: dims, vectors: vectors}
}

func (k *keyedProvider) Embed(_ context.Context, text string) (embedding.Embedding, error) {
	k.mu.Lock()
	k.calls++
	k.mu.Unlock()
	if k.fail {
		return embedding.Embedding{}, errors.New("embedder offline")
	}
	if v, ok := k.vectors[text]; ok {
		return embedding.Embedding{Vector: v}, nil
	}
	return embedding.Embedding{Vector: make([]float32, k.dims)}, nil
}

func (k *keyedProvider) ModelName() string { return "keyed" }
func (k *keyedProvider) Dimensions() int   { return k.dims }

func evidenceWith(passage, source string, relevances ...float64) EvidenceItem {
	ev := EvidenceItem{Passage: passage, Source: source, MatchingFindings: []MatchedFinding{}}
	for i, r := range relevances {
		ev.MatchingFindings = append(ev.MatchingFindings, MatchedFinding{
			Text:      "finding " + string(rune('a'+i)),
			Category:  "Symptoms",
			Relevance: r,
		})
	}
	return ev
}
