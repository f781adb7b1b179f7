package embedding

import (
	"context"
	"fmt"
)

// Provider generates embeddings from text.
// Implementations must be deterministic for identical input and model version
// and safe for concurrent use.
type Provider interface {
	// Embed generates a normalized embedding for the given text.
	Embed(ctx context.Context, text string) (Embedding, error)

	// ModelName returns the name of the embedding model.
	ModelName() string

	// Dimensions returns the expected vector dimensions.
	Dimensions() int
}

// BatchProvider is implemented by providers that can embed many texts in one call.
type BatchProvider interface {
	Provider
	EmbedBatch(ctx context.Context, texts []string) ([]Embedding, error)
}

// EmbedAll embeds texts in order, batching when the provider supports it.
func EmbedAll(ctx context.Context, p Provider, texts []string) ([]Embedding, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if bp, ok := p.(BatchProvider); ok {
		embs, err := bp.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, err
		}
		if len(embs) != len(texts) {
			return nil, fmt.Errorf("batch returned %d embeddings for %d texts", len(embs), len(texts))
		}
		return embs, nil
	}

	out := make([]Embedding, len(texts))
	for i, text := range texts {
		emb, err := p.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = emb
	}
	return out, nil
}
