package clinical

import (
	"context"
	"fmt"
	"sort"

	"github.com/mediscribe/mediscribe/internal/embedding"
	"github.com/mediscribe/mediscribe/internal/semantic"
)

const (
	// MatchThreshold is the relevance a finding must exceed to be linked to a passage.
	MatchThreshold = 0.3

	// MaxMatchesPerEvidence caps the findings linked to one passage.
	MaxMatchesPerEvidence = 3
)

// Matcher links extracted findings to retrieved evidence by embedding similarity.
type Matcher struct {
	provider embedding.Provider
}

// NewMatcher creates a Matcher using provider for both findings and passages.
func NewMatcher(provider embedding.Provider) *Matcher {
	return &Matcher{provider: provider}
}

// Match returns a copy of evidence where each item carries its most relevant
// findings. With no findings the evidence is returned as is and the provider
// is not called.
func (m *Matcher) Match(ctx context.Context, findings []Finding, evidence []EvidenceItem) ([]EvidenceItem, error) {
	if len(findings) == 0 || len(evidence) == 0 {
		return evidence, nil
	}

	findingTexts := make([]string, len(findings))
	for i, f := range findings {
		findingTexts[i] = f.Text
	}
	findingVecs, err := embedding.EmbedAll(ctx, m.provider, findingTexts)
	if err != nil {
		return nil, fmt.Errorf("embedding findings: %w", err)
	}

	passageTexts := make([]string, len(evidence))
	for i, ev := range evidence {
		passageTexts[i] = ev.Passage
	}
	passageVecs, err := embedding.EmbedAll(ctx, m.provider, passageTexts)
	if err != nil {
		return nil, fmt.Errorf("embedding evidence: %w", err)
	}

	out := make([]EvidenceItem, len(evidence))
	for i, ev := range evidence {
		ev.MatchingFindings = topMatches(findings, findingVecs, passageVecs[i].Vector)
		out[i] = ev
	}
	return out, nil
}

// topMatches ranks findings against one passage vector. Ties keep finding order.
func topMatches(findings []Finding, findingVecs []embedding.Embedding, passage []float32) []MatchedFinding {
	type scored struct {
		idx int
		sim float64
	}
	scores := make([]scored, len(findings))
	for i := range findings {
		scores[i] = scored{idx: i, sim: float64(semantic.CosineSimilarity(findingVecs[i].Vector, passage))}
	}
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].sim > scores[j].sim
	})

	matches := []MatchedFinding{}
	for _, s := range scores[:min(MaxMatchesPerEvidence, len(scores))] {
		if s.sim <= MatchThreshold {
			continue
		}
		f := findings[s.idx]
		matches = append(matches, MatchedFinding{
			Text:      f.Text,
			Category:  f.Category,
			Relevance: min(s.sim, 1),
		})
	}
	return matches
}
