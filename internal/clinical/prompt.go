package clinical

import (
	"fmt"
	"strings"
)

const promptEvidenceWindow = 3

var promptContextTerms = []string{"diagnosis", "condition", "disease", "syndrome"}

// ComposeDxPrompt builds the narrative prompt from the note summary and the
// first sentence of each leading passage that names a condition.
func ComposeDxPrompt(summary string, evidence []EvidenceItem) string {
	var concepts []string
	for _, ev := range evidence[:min(promptEvidenceWindow, len(evidence))] {
		if containsAny(strings.ToLower(ev.Passage), promptContextTerms) {
			concepts = append(concepts, firstSentence(ev.Passage))
		}
	}

	return fmt.Sprintf("Patient Summary: %s\n\n", summary) +
		fmt.Sprintf("Medical Context: %s\n\n", strings.Join(concepts, " ")) +
		"Generate a clinical assessment with:\n" +
		"1. DIFFERENTIAL DIAGNOSES: List 3-4 conditions with likelihood (High/Moderate/Low) and key supporting findings\n" +
		"2. RECOMMENDED WORKUP: List specific tests needed\n" +
		"3. CLINICAL PLAN: Brief next steps\n\n" +
		"Format each diagnosis as: [Condition] (Likelihood) - Key findings\n" +
		"Be concise, clinical, and evidence-based."
}
