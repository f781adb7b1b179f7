package clinical

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComposeAssessment(t *testing.T) {
	long := strings.Repeat("z", 70)
	evidence := []EvidenceItem{
		evidenceWith("Pneumonia is an infection of the lungs. It causes fever", "pneumonia.txt"),
		evidenceWith("Heart failure reduces cardiac output", "hf.txt"),
		evidenceWith("The heart pumps blood", "cardio.txt"),
		evidenceWith("Anemia. Too short name", "anemia.txt"),
		evidenceWith("Tuberculosis disease of the lungs", "tb.txt"),
	}
	evidence[0].MatchingFindings = []MatchedFinding{
		{Text: "fever and productive cough", Relevance: 0.8},
		{Text: long, Relevance: 0.6},
		{Text: "ignored third", Relevance: 0.5},
	}
	evidence[1].MatchingFindings = []MatchedFinding{{Text: "bilateral edema", Relevance: 0.7}}

	got := ComposeAssessment("model narrative text", nil, evidence)

	want := strings.Join([]string{
		"DIFFERENTIAL DIAGNOSES:\n",
		"1. Pneumonia is an infection of the lungs - High likelihood",
		"   Supporting: fever and productive cough, " + strings.Repeat("z", 60) + "...",
		"",
		"2. Heart failure reduces cardiac output - Moderate likelihood",
		"   Supporting: bilateral edema",
		"",
		"\nRECOMMENDED WORKUP:",
		"• Complete blood count (CBC) with differential",
		"• Comprehensive metabolic panel (CMP)",
		"• Chest X-ray if respiratory symptoms present",
		"• Additional testing based on clinical suspicion",
		"\nCLINICAL PLAN:",
		"• Review all laboratory results",
		"• Monitor vital signs and symptom progression",
		"• Consider specialist consultation if indicated",
		"• Follow up within 48-72 hours or sooner if symptoms worsen",
	}, "\n")
	assert.Equal(t, want, got)
	assert.NotContains(t, got, "model narrative text")
	assert.NotContains(t, got, "Tuberculosis", "only the first four evidence items are considered")
}

func TestComposeAssessment_ConsiderLikelihood(t *testing.T) {
	got := ComposeAssessment("", nil, []EvidenceItem{evidenceWith("Chronic kidney disease stage three", "ckd.txt")})
	assert.Contains(t, got, "1. Chronic kidney disease stage three - Consider likelihood\n\n")
	assert.NotContains(t, got, "Supporting:")
}

func TestComposeAssessment_NoEvidence(t *testing.T) {
	got := ComposeAssessment("", nil, nil)
	lines := strings.Split(got, "\n")
	require.GreaterOrEqual(t, len(lines), 3)
	assert.Equal(t, "DIFFERENTIAL DIAGNOSES:", lines[0])
	assert.True(t, strings.HasPrefix(got, "DIFFERENTIAL DIAGNOSES:\n\n\nRECOMMENDED WORKUP:"))
	assert.True(t, strings.HasSuffix(got, "• Follow up within 48-72 hours or sooner if symptoms worsen"))
}

func TestComposeAssessment_ConditionLineBounds(t *testing.T) {
	tooLong := "Chronic disease " + strings.Repeat("w", 140)
	got := ComposeAssessment("", nil, []EvidenceItem{
		evidenceWith(tooLong, "a.txt"),
		evidenceWith("Infection", "b.txt"),
	})
	assert.NotContains(t, got, "1.")
}

func TestLikelihood(t *testing.T) {
	assert.Equal(t, "Consider", Likelihood(0))
	assert.Equal(t, "Moderate", Likelihood(1))
	assert.Equal(t, "High", Likelihood(2))
	assert.Equal(t, "High", Likelihood(3))
}

func TestComposeDxPrompt(t *testing.T) {
	evidence := []EvidenceItem{
		{Passage: "Pneumonia is a lung disease. It spreads"},
		{Passage: "Plain anatomy text. Nothing else"},
		{Passage: "Anemia is a blood condition"},
		{Passage: "Tuberculosis syndrome. Fourth item ignored"},
	}
	got := ComposeDxPrompt("58M with cough", evidence)

	assert.True(t, strings.HasPrefix(got, "Patient Summary: 58M with cough\n\nMedical Context: Pneumonia is a lung disease Anemia is a blood condition\n\n"))
	assert.Contains(t, got, "1. DIFFERENTIAL DIAGNOSES: List 3-4 conditions with likelihood (High/Moderate/Low) and key supporting findings\n")
	assert.True(t, strings.HasSuffix(got, "Format each diagnosis as: [Condition] (Likelihood) - Key findings\nBe concise, clinical, and evidence-based."))
	assert.NotContains(t, got, "Tuberculosis")
}

func TestComposeDxPrompt_NoEvidence(t *testing.T) {
	got := ComposeDxPrompt("summary", nil)
	assert.Contains(t, got, "Medical Context: \n\n")
}
