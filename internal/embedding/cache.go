package embedding

import (
	"context"
	"sync"

	"golang.org/x/crypto/blake2b"
)

// CachedProvider memoizes embeddings of an underlying Provider in memory.
// Keys are BLAKE2b digests of the model name and text, so long passages do
// not bloat the map. Entries live for the lifetime of the process.
type CachedProvider struct {
	inner Provider

	mu      sync.RWMutex
	entries map[[blake2b.Size256]byte][]float32
	hits    int
	misses  int
}

// NewCachedProvider wraps inner with an in-memory cache.
func NewCachedProvider(inner Provider) *CachedProvider {
	return &CachedProvider{
		inner:   inner,
		entries: make(map[[blake2b.Size256]byte][]float32),
	}
}

// Embed implements Provider.
func (c *CachedProvider) Embed(ctx context.Context, text string) (Embedding, error) {
	key := c.key(text)

	c.mu.RLock()
	vec, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		c.mu.Lock()
		c.hits++
		c.mu.Unlock()
		return Embedding{Vector: cloneVector(vec)}, nil
	}

	emb, err := c.inner.Embed(ctx, text)
	if err != nil {
		return Embedding{}, err
	}

	c.mu.Lock()
	c.misses++
	c.entries[key] = cloneVector(emb.Vector)
	c.mu.Unlock()
	return emb, nil
}

// EmbedBatch implements BatchProvider, sending only uncached texts to the inner provider.
func (c *CachedProvider) EmbedBatch(ctx context.Context, texts []string) ([]Embedding, error) {
	out := make([]Embedding, len(texts))
	var missing []string
	var missingIdx []int

	c.mu.RLock()
	for i, text := range texts {
		if vec, ok := c.entries[c.key(text)]; ok {
			out[i] = Embedding{Vector: cloneVector(vec)}
			continue
		}
		missing = append(missing, text)
		missingIdx = append(missingIdx, i)
	}
	c.mu.RUnlock()

	if len(missing) > 0 {
		embs, err := EmbedAll(ctx, c.inner, missing)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		for j, emb := range embs {
			out[missingIdx[j]] = emb
			c.entries[c.key(missing[j])] = cloneVector(emb.Vector)
		}
		c.mu.Unlock()
	}

	c.mu.Lock()
	c.hits += len(texts) - len(missing)
	c.misses += len(missing)
	c.mu.Unlock()
	return out, nil
}

// ModelName implements Provider.
func (c *CachedProvider) ModelName() string {
	return c.inner.ModelName()
}

// Dimensions implements Provider.
func (c *CachedProvider) Dimensions() int {
	return c.inner.Dimensions()
}

// Stats returns the number of cache hits and misses so far.
func (c *CachedProvider) Stats() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}

func (c *CachedProvider) key(text string) [blake2b.Size256]byte {
	return blake2b.Sum256([]byte(c.inner.ModelName() + "\x00" + text))
}

func cloneVector(vec []float32) []float32 {
	out := make([]float32, len(vec))
	copy(out, vec)
	return out
}
