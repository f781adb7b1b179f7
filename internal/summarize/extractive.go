package summarize

import (
	"context"
	"sort"
	"strings"
	"unicode"
)

// ExtractiveModelName identifies summaries produced by ExtractiveSummarizer.
const ExtractiveModelName = "extractive-frequency-v1"

// ExtractiveSummarizer picks the highest-scoring sentences of the input by
// content-word frequency and returns them in their original order. It runs
// offline and is fully deterministic; maxLen and minLen are word counts.
type ExtractiveSummarizer struct{}

// NewExtractiveSummarizer returns an ExtractiveSummarizer.
func NewExtractiveSummarizer() *ExtractiveSummarizer {
	return &ExtractiveSummarizer{}
}

// ModelName implements Summarizer.
func (e *ExtractiveSummarizer) ModelName() string {
	return ExtractiveModelName
}

// Summarize implements Summarizer.
func (e *ExtractiveSummarizer) Summarize(ctx context.Context, text string, maxLen, minLen int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return "", nil
	}

	freq := make(map[string]int)
	for _, s := range sentences {
		for _, w := range contentWords(s) {
			freq[w]++
		}
	}

	type scored struct {
		idx   int
		score float64
		words int
	}
	ranked := make([]scored, len(sentences))
	for i, s := range sentences {
		words := contentWords(s)
		var total int
		for _, w := range words {
			total += freq[w]
		}
		score := 0.0
		if len(words) > 0 {
			score = float64(total) / float64(len(words))
		}
		ranked[i] = scored{idx: i, score: score, words: len(strings.Fields(s))}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	chosen := make([]int, 0, len(ranked))
	wordCount := 0
	for _, r := range ranked {
		if maxLen > 0 && wordCount >= minLen && wordCount+r.words > maxLen {
			continue
		}
		chosen = append(chosen, r.idx)
		wordCount += r.words
		if maxLen > 0 && wordCount >= maxLen {
			break
		}
	}
	sort.Ints(chosen)

	parts := make([]string, len(chosen))
	for i, idx := range chosen {
		parts[i] = sentences[idx]
	}
	out := strings.Join(parts, " ")
	if maxLen > 0 {
		if words := strings.Fields(out); len(words) > maxLen {
			out = strings.Join(words[:maxLen], " ")
		}
	}
	return out, nil
}

// splitSentences breaks text after sentence punctuation and at line ends.
func splitSentences(text string) []string {
	var out []string
	var b strings.Builder
	flush := func() {
		if s := strings.TrimSpace(b.String()); s != "" {
			out = append(out, strings.Join(strings.Fields(s), " "))
		}
		b.Reset()
	}
	for _, r := range text {
		b.WriteRune(r)
		switch r {
		case '.', '!', '?', '\n':
			flush()
		}
	}
	flush()
	return out
}

var stopWords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "by": true, "for": true, "from": true, "has": true, "he": true,
	"her": true, "his": true, "in": true, "is": true, "it": true, "of": true,
	"on": true, "or": true, "she": true, "the": true, "this": true, "to": true,
	"was": true, "were": true, "with": true, "patient": true,
}

func contentWords(s string) []string {
	words := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := words[:0]
	for _, w := range words {
		if len(w) > 1 && !stopWords[w] {
			out = append(out, w)
		}
	}
	return out
}
