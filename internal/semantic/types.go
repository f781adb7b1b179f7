// Package semantic provides embedding similarity search over knowledge base passages.
package semantic

import (
	"time"

	"github.com/mediscribe/mediscribe/internal/kb"
)

// Index holds one embedding per knowledge base passage, in passage order.
// A nil *Index stands for an empty knowledge base.
type Index struct {
	ModelName       string    `json:"model_name"`        // e.g., "all-minilm:l6-v2"
	Dimensions      int       `json:"dimensions"`        // 384 for all-minilm
	CreatedAt       time.Time `json:"created_at"`        // When index was built
	PassageCount    int       `json:"passage_count"`     // Number of passages indexed
	BuildDurationMs int64     `json:"build_duration_ms"` // Time to build in milliseconds

	passages []kb.Passage
	vectors  [][]float32
}

// Hit is one passage returned by a similarity search.
type Hit struct {
	Passage kb.Passage `json:"passage"`
	Score   float32    `json:"score"`
}

// BuildStats contains statistics from index building.
type BuildStats struct {
	PassagesIndexed int           `json:"passages_indexed"`
	Batches         int           `json:"batches"`
	ModelName       string        `json:"model_name"`
	Dimensions      int           `json:"dimensions"`
	Duration        time.Duration `json:"duration"`
}
