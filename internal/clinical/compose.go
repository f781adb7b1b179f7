package clinical

import (
	"fmt"
	"strings"
)

const (
	composedEvidenceWindow = 4
	maxComposedFindings    = 2
	supportingFindingRunes = 60
	minConditionLineRunes  = 10
	maxConditionLineRunes  = 150
)

var recommendedWorkup = []string{
	"• Complete blood count (CBC) with differential",
	"• Comprehensive metabolic panel (CMP)",
	"• Chest X-ray if respiratory symptoms present",
	"• Additional testing based on clinical suspicion",
}

var clinicalPlan = []string{
	"• Review all laboratory results",
	"• Monitor vital signs and symptom progression",
	"• Consider specialist consultation if indicated",
	"• Follow up within 48-72 hours or sooner if symptoms worsen",
}

// Likelihood labels how strongly matched findings support a condition.
func Likelihood(matched int) string {
	switch {
	case matched >= 2:
		return "High"
	case matched == 1:
		return "Moderate"
	default:
		return "Consider"
	}
}

// ComposeAssessment renders the differential, recommended workup and plan
// sections from the leading evidence items. The narrative produced by the
// summarizer is accepted but not folded into the text.
func ComposeAssessment(narrative string, findings []Finding, evidence []EvidenceItem) string {
	lines := []string{"DIFFERENTIAL DIAGNOSES:\n"}

	n := 0
	for _, ev := range evidence[:min(composedEvidenceWindow, len(evidence))] {
		if !DescribesCondition(ev.Passage) {
			continue
		}
		name := strings.TrimSpace(firstSentence(ev.Passage))
		if l := runeLen(name); l <= minConditionLineRunes || l >= maxConditionLineRunes {
			continue
		}

		n++
		lines = append(lines, fmt.Sprintf("%d. %s - %s likelihood", n, name, Likelihood(len(ev.MatchingFindings))))

		matched := ev.MatchingFindings[:min(maxComposedFindings, len(ev.MatchingFindings))]
		if len(matched) > 0 {
			texts := make([]string, len(matched))
			for i, mf := range matched {
				texts[i] = clip(mf.Text, supportingFindingRunes)
			}
			lines = append(lines, "   Supporting: "+strings.Join(texts, ", "))
		}
		lines = append(lines, "")
	}

	lines = append(lines, "\nRECOMMENDED WORKUP:")
	lines = append(lines, recommendedWorkup...)
	lines = append(lines, "\nCLINICAL PLAN:")
	lines = append(lines, clinicalPlan...)

	return strings.Join(lines, "\n")
}
