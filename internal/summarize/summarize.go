// Package summarize produces short abstractive or extractive summaries of text.
package summarize

import "context"

// Summarizer condenses text. maxLen and minLen bound the summary length in
// model tokens for generative backends and in words for the extractive one.
// Implementations must be safe for concurrent use.
type Summarizer interface {
	Summarize(ctx context.Context, text string, maxLen, minLen int) (string, error)

	// ModelName returns the name of the backing model.
	ModelName() string
}

// TruncateRunes returns at most n runes of text without splitting a multi-byte
// character. Unlike an ellipsis-style clip, nothing is appended.
func TruncateRunes(text string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(text) <= n {
		return text
	}
	count := 0
	for i := range text {
		if count == n {
			return text[:i]
		}
		count++
	}
	return text
}
