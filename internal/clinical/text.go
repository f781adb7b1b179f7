package clinical

import (
	"math"
	"strings"
)

// clip returns s unchanged if it has at most n runes, otherwise its first n
// runes followed by "...".
func clip(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i] + "..."
		}
		count++
	}
	return s
}

// runeLen counts runes without allocating.
func runeLen(s string) int {
	n := 0
	for range s {
		n++
	}
	return n
}

// firstSentence returns the text before the first '.', or all of s.
func firstSentence(s string) string {
	if i := strings.IndexByte(s, '.'); i >= 0 {
		return s[:i]
	}
	return s
}

// containsAny reports whether lower contains any of terms.
func containsAny(lower string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(lower, t) {
			return true
		}
	}
	return false
}

func round(x float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(x*p) / p
}
