package semantic

import (
	"context"
	"fmt"
	"time"

	"github.com/mediscribe/mediscribe/internal/embedding"
	"github.com/mediscribe/mediscribe/internal/kb"
)

// DefaultBatchSize is the number of passages sent to the provider per call.
const DefaultBatchSize = 32

// ProgressReporter receives progress updates during index building.
type ProgressReporter interface {
	// OnProgress is called with the current progress.
	OnProgress(current, total int)
}

// ProgressFunc is a function adapter for ProgressReporter.
type ProgressFunc func(current, total int)

// OnProgress implements ProgressReporter.
func (f ProgressFunc) OnProgress(current, total int) {
	f(current, total)
}

// Builder embeds knowledge base passages into an Index.
type Builder struct {
	provider  embedding.Provider
	progress  ProgressReporter
	batchSize int
}

// NewBuilder creates a new index builder.
func NewBuilder(provider embedding.Provider) *Builder {
	return &Builder{
		provider:  provider,
		batchSize: DefaultBatchSize,
	}
}

// SetProgressReporter sets the progress reporter for the builder.
func (b *Builder) SetProgressReporter(reporter ProgressReporter) {
	b.progress = reporter
}

// SetBatchSize sets how many passages are embedded per provider call.
func (b *Builder) SetBatchSize(n int) {
	if n > 0 {
		b.batchSize = n
	}
}

// Build embeds all passages in order. With no passages it returns a nil
// index, which searches as empty.
func (b *Builder) Build(ctx context.Context, passages []kb.Passage) (*Index, *BuildStats, error) {
	startTime := time.Now()
	stats := &BuildStats{
		ModelName:  b.provider.ModelName(),
		Dimensions: b.provider.Dimensions(),
	}

	if len(passages) == 0 {
		stats.Duration = time.Since(startTime)
		return nil, stats, nil
	}

	idx := NewIndex(b.provider.ModelName(), b.provider.Dimensions())
	total := len(passages)

	for start := 0; start < total; start += b.batchSize {
		// Check for cancellation
		select {
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		default:
		}

		end := min(start+b.batchSize, total)
		batch := passages[start:end]

		texts := make([]string, len(batch))
		for i, p := range batch {
			texts[i] = p.Text
		}

		embs, err := embedding.EmbedAll(ctx, b.provider, texts)
		if err != nil {
			return nil, nil, fmt.Errorf("embedding passages %d-%d: %w", start, end-1, err)
		}

		for i, emb := range embs {
			if err := idx.Add(batch[i], emb.Vector); err != nil {
				return nil, nil, fmt.Errorf("adding passage %d (%s): %w", batch[i].Index, batch[i].Source, err)
			}
		}

		stats.Batches++
		stats.PassagesIndexed = idx.Len()

		if b.progress != nil {
			b.progress.OnProgress(end, total)
		}
	}

	idx.BuildDurationMs = time.Since(startTime).Milliseconds()
	stats.Duration = time.Since(startTime)

	return idx, stats, nil
}
