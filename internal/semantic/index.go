package semantic

import (
	"errors"
	"fmt"
	"time"

	"github.com/mediscribe/mediscribe/internal/kb"
)

// Errors returned by index operations.
var (
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
	ErrOutOfOrder        = errors.New("passage added out of order")
)

// NewIndex creates a new empty index.
func NewIndex(modelName string, dimensions int) *Index {
	return &Index{
		ModelName:  modelName,
		Dimensions: dimensions,
		CreatedAt:  time.Now(),
	}
}

// Add appends a passage embedding. Passages must be added in KB order so that
// a passage's Index equals its position in the index.
func (idx *Index) Add(p kb.Passage, vector []float32) error {
	if len(vector) != idx.Dimensions {
		return fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(vector), idx.Dimensions)
	}
	if p.Index != len(idx.passages) {
		return fmt.Errorf("%w: passage %d at position %d", ErrOutOfOrder, p.Index, len(idx.passages))
	}
	idx.passages = append(idx.passages, p)
	idx.vectors = append(idx.vectors, vector)
	idx.PassageCount = len(idx.passages)
	return nil
}

// Len returns the number of indexed passages; a nil index has none.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.passages)
}
