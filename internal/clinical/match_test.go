package clinical

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func matcherFixture() (*keyedProvider, []Finding, []EvidenceItem) {
	p := newKeyedProvider(2, map[string][]float32{
		"crushing chest pain":    {1, 0},
		"diaphoresis and nausea": {0.8, 0.6},
		"history of smoking":     {0.6, 0.8},
		"productive cough":       {0, 1},
		"MI passage":             {1, 0},
		"pneumonia passage":      {0, 1},
	})
	findings := []Finding{
		{Category: "Symptoms", Text: "crushing chest pain"},
		{Category: "Symptoms", Text: "diaphoresis and nausea"},
		{Category: "History", Text: "history of smoking"},
		{Category: "Symptoms", Text: "productive cough"},
	}
	evidence := []EvidenceItem{
		{Rank: 1, Passage: "MI passage", Source: "mi.txt", MatchingFindings: []MatchedFinding{}},
		{Rank: 2, Passage: "pneumonia passage", Source: "pneumonia.txt", MatchingFindings: []MatchedFinding{}},
	}
	return p, findings, evidence
}

func TestMatcher_TopThreeAboveThreshold(t *testing.T) {
	p, findings, evidence := matcherFixture()
	out, err := NewMatcher(p).Match(context.Background(), findings, evidence)
	require.NoError(t, err)
	require.Len(t, out, 2)

	mi := out[0].MatchingFindings
	require.Len(t, mi, 3)
	assert.Equal(t, "crushing chest pain", mi[0].Text)
	assert.InDelta(t, 1.0, mi[0].Relevance, 1e-6)
	assert.Equal(t, "diaphoresis and nausea", mi[1].Text)
	assert.InDelta(t, 0.8, mi[1].Relevance, 1e-6)
	assert.Equal(t, "history of smoking", mi[2].Text)
	assert.Equal(t, "History", mi[2].Category)

	pneu := out[1].MatchingFindings
	require.Len(t, pneu, 3)
	assert.Equal(t, "productive cough", pneu[0].Text)
	assert.Equal(t, "history of smoking", pneu[1].Text)
	assert.Equal(t, "diaphoresis and nausea", pneu[2].Text)

	for _, ev := range out {
		assert.LessOrEqual(t, len(ev.MatchingFindings), MaxMatchesPerEvidence)
		for _, mf := range ev.MatchingFindings {
			assert.Greater(t, mf.Relevance, MatchThreshold)
			assert.LessOrEqual(t, mf.Relevance, 1.0)
		}
	}
}

func TestMatcher_Threshold(t *testing.T) {
	p := newKeyedProvider(2, map[string][]float32{
		"weak":    {0.25, 0.9682458},
		"strong":  {0.35, 0.9367497},
		"orthog":  {0, 1},
		"passage": {1, 0},
	})
	findings := []Finding{{Text: "weak"}, {Text: "strong"}, {Text: "orthog"}}
	evidence := []EvidenceItem{{Rank: 1, Passage: "passage"}}

	out, err := NewMatcher(p).Match(context.Background(), findings, evidence)
	require.NoError(t, err)
	require.Len(t, out[0].MatchingFindings, 1)
	assert.Equal(t, "strong", out[0].MatchingFindings[0].Text)
}

func TestMatcher_NoFindingsPassThrough(t *testing.T) {
	p, _, evidence := matcherFixture()
	out, err := NewMatcher(p).Match(context.Background(), nil, evidence)
	require.NoError(t, err)
	assert.Equal(t, evidence, out)
	assert.Zero(t, p.calls, "no embedding calls expected without findings")
}

func TestMatcher_NoEvidence(t *testing.T) {
	p, findings, _ := matcherFixture()
	out, err := NewMatcher(p).Match(context.Background(), findings, []EvidenceItem{})
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestMatcher_TiesKeepFindingOrder(t *testing.T) {
	p := newKeyedProvider(2, map[string][]float32{
		"second": {1, 0},
		"first":  {1, 0},
		"third":  {1, 0},
		"fourth": {1, 0},
		"P":      {1, 0},
	})
	findings := []Finding{{Text: "first"}, {Text: "second"}, {Text: "third"}, {Text: "fourth"}}
	out, err := NewMatcher(p).Match(context.Background(), findings, []EvidenceItem{{Passage: "P"}})
	require.NoError(t, err)

	var got []string
	for _, mf := range out[0].MatchingFindings {
		got = append(got, mf.Text)
	}
	assert.Equal(t, []string{"first", "second", "third"}, got)
}

func TestMatcher_DoesNotMutateInput(t *testing.T) {
	p, findings, evidence := matcherFixture()
	_, err := NewMatcher(p).Match(context.Background(), findings, evidence)
	require.NoError(t, err)
	assert.Empty(t, evidence[0].MatchingFindings)
}

func TestMatcher_ProviderError(t *testing.T) {
	p, findings, evidence := matcherFixture()
	p.fail = true
	_, err := NewMatcher(p).Match(context.Background(), findings, evidence)
	assert.ErrorContains(t, err, "embedding findings")
}
