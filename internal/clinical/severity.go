package clinical

import "strings"

type severityTier struct {
	level    Severity
	keywords []string
}

// severityTiers are checked most urgent first; the first tier with a keyword
// in the passage wins.
var severityTiers = []severityTier{
	{SeverityCritical, []string{"sepsis", "myocardial infarction", "stroke", "aneurysm", "hemorrhage", "respiratory failure", "cardiac arrest"}},
	{SeverityHigh, []string{"pneumonia", "heart failure", "tuberculosis", "acute", "severe", "emergency"}},
	{SeverityMedium, []string{"chronic", "stable", "moderate", "infection"}},
	{SeverityLow, []string{"mild", "benign", "uncomplicated", "simple"}},
}

// ClassifySeverity assigns an urgency tier from keywords in passage,
// defaulting to Medium.
func ClassifySeverity(passage string) Severity {
	lower := strings.ToLower(passage)
	for _, tier := range severityTiers {
		if containsAny(lower, tier.keywords) {
			return tier.level
		}
	}
	return SeverityMedium
}
