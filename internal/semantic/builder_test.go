package semantic

import (
	"context"
	"errors"
	"testing"

	"github.com/mediscribe/mediscribe/internal/embedding"
	"github.com/mediscribe/mediscribe/internal/kb"
)

type fixedProvider struct {
	dims int
	err  error
}

func (f fixedProvider) Embed(_ context.Context, text string) (embedding.Embedding, error) {
	if f.err != nil {
		return embedding.Embedding{}, f.err
	}
	vec := make([]float32, f.dims)
	vec[len(text)%f.dims] = 1
	return embedding.Embedding{Vector: vec}, nil
}

func (f fixedProvider) ModelName() string { return "fixed" }
func (f fixedProvider) Dimensions() int   { return f.dims }

func samplePassages(n int) []kb.Passage {
	out := make([]kb.Passage, n)
	for i := range out {
		out[i] = kb.Passage{Index: i, Text: string(rune('a' + i)), Source: "s.txt", ChunkIndex: i}
	}
	return out
}

func TestBuilder_Build(t *testing.T) {
	b := NewBuilder(fixedProvider{dims: 4})
	b.SetBatchSize(2)

	var calls [][2]int
	b.SetProgressReporter(ProgressFunc(func(current, total int) {
		calls = append(calls, [2]int{current, total})
	}))

	idx, stats, err := b.Build(context.Background(), samplePassages(5))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if idx.Len() != 5 {
		t.Errorf("index has %d passages, want 5", idx.Len())
	}
	if stats.PassagesIndexed != 5 {
		t.Errorf("PassagesIndexed = %d, want 5", stats.PassagesIndexed)
	}
	if stats.Batches != 3 {
		t.Errorf("Batches = %d, want 3", stats.Batches)
	}
	if stats.ModelName != "fixed" || stats.Dimensions != 4 {
		t.Errorf("stats model = %s/%d", stats.ModelName, stats.Dimensions)
	}

	want := [][2]int{{2, 5}, {4, 5}, {5, 5}}
	if len(calls) != len(want) {
		t.Fatalf("progress calls = %v, want %v", calls, want)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Errorf("progress call %d = %v, want %v", i, calls[i], want[i])
		}
	}
}

func TestBuilder_EmptyPassagesGiveNilIndex(t *testing.T) {
	idx, stats, err := NewBuilder(fixedProvider{dims: 4}).Build(context.Background(), nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if idx != nil {
		t.Error("expected nil index for empty knowledge base")
	}
	if stats.PassagesIndexed != 0 {
		t.Errorf("PassagesIndexed = %d, want 0", stats.PassagesIndexed)
	}
}

func TestBuilder_ProviderError(t *testing.T) {
	boom := errors.New("boom")
	_, _, err := NewBuilder(fixedProvider{dims: 4, err: boom}).Build(context.Background(), samplePassages(2))
	if !errors.Is(err, boom) {
		t.Errorf("expected wrapped provider error, got %v", err)
	}
}

func TestBuilder_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := NewBuilder(fixedProvider{dims: 4}).Build(ctx, samplePassages(3))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestBuilder_DimensionMismatch(t *testing.T) {
	b := NewBuilder(mismatchedProvider{})
	_, _, err := b.Build(context.Background(), samplePassages(1))
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}

type mismatchedProvider struct{}

func (mismatchedProvider) Embed(context.Context, string) (embedding.Embedding, error) {
	return embedding.Embedding{Vector: []float32{1, 0}}, nil
}
func (mismatchedProvider) ModelName() string { return "mismatched" }
func (mismatchedProvider) Dimensions() int   { return 3 }
