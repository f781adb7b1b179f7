package clinical

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// conditionKeywords mark a passage as describing a diagnosable condition.
var conditionKeywords = []string{
	"anemia", "failure", "pneumonia", "tuberculosis", "infection", "disease",
	"syndrome", "disorder", "condition", "diagnosis",
}

var conditionNamePatterns = []*regexp.Regexp{
	regexp.MustCompile(`([A-Z][a-z]+(?:\s+[a-z]+)*)\s+is\s+a`),
	regexp.MustCompile(`([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*)\s+occurs`),
	regexp.MustCompile(`([A-Z][a-z]+(?:\s+[a-z]+)*)\s+presents`),
	regexp.MustCompile(`([A-Z][a-z]+(?:\s+[a-z]+)*)\s+characterized`),
}

const (
	maxSourceNameRunes    = 50
	maxFirstSentenceRunes = 80
	firstSentenceClip     = 75
)

// DescribesCondition reports whether passage mentions a condition keyword.
func DescribesCondition(passage string) bool {
	return containsAny(strings.ToLower(passage), conditionKeywords)
}

// ConditionName derives a display name for the condition a passage describes:
// a leading "X is a" style phrase, else the title-cased source file name, else
// the passage's first sentence.
func ConditionName(passage, source string) string {
	for _, re := range conditionNamePatterns {
		if m := re.FindStringSubmatch(passage); m != nil {
			return strings.TrimSpace(m[1])
		}
	}

	if name := SourceTitle(source); name != "" && runeLen(name) < maxSourceNameRunes {
		return name
	}

	first := strings.TrimSpace(firstSentence(passage))
	if runeLen(first) < maxFirstSentenceRunes {
		return first
	}
	return clip(first, firstSentenceClip)
}

// SourceTitle turns "heart_failure.txt" into "Heart Failure".
func SourceTitle(source string) string {
	name := strings.ReplaceAll(strings.ReplaceAll(source, ".txt", ""), "_", " ")
	return cases.Title(language.Und).String(name)
}
