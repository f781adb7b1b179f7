package clinical

import "sort"

const (
	// rankedEvidenceWindow is how many leading evidence items are considered.
	rankedEvidenceWindow = 6

	// MaxDiagnoses caps the ranked differential.
	MaxDiagnoses = 5

	maxSupportingFindings = 3
	descriptionRunes      = 200
)

// Confidence is the score assigned to one evidence item.
type Confidence struct {
	Score        float64
	Severity     Severity
	Breakdown    ConfidenceBreakdown
	Findings     int
	AvgRelevance float64
}

// ScoreConfidence scores the evidence item at 1-based position rank. The score
// combines a rank component (40, 30, 20, 10, 0...), a matched-findings
// component (12 per finding, at most 35) and a relevance component (mean
// relevance scaled to 25), capped at 100. Critical and High conditions with
// at least two matched findings get a 10 point bump, still capped at 100.
func ScoreConfidence(passage string, matches []MatchedFinding, rank int) Confidence {
	rankScore := float64(max(0, 40-(rank-1)*10))

	n := len(matches)
	findingsScore := float64(min(35, n*12))

	var avg float64
	if n > 0 {
		var sum float64
		for _, mf := range matches {
			sum += mf.Relevance
		}
		avg = sum / float64(n)
	}
	relevanceScore := avg * 25

	total := min(100, rankScore+findingsScore+relevanceScore)

	severity := ClassifySeverity(passage)
	if (severity == SeverityCritical || severity == SeverityHigh) && n >= 2 {
		total = min(100, total+10)
	}

	return Confidence{
		Score:    round(total, 1),
		Severity: severity,
		Breakdown: ConfidenceBreakdown{
			RankScore:      rankScore,
			FindingsScore:  findingsScore,
			RelevanceScore: round(relevanceScore, 1),
		},
		Findings:     n,
		AvgRelevance: round(avg, 3),
	}
}

// RankDiagnoses builds the ranked differential from the leading evidence
// items that describe a condition. At most MaxDiagnoses hypotheses are
// returned, ordered by confidence with ranks 1..N. Scores come from the
// matches carried on each evidence item; findings itself is not consulted.
func RankDiagnoses(findings []Finding, evidence []EvidenceItem) []DiagnosisHypothesis {
	diagnoses := []DiagnosisHypothesis{}
	for i, ev := range evidence[:min(rankedEvidenceWindow, len(evidence))] {
		if !DescribesCondition(ev.Passage) {
			continue
		}

		conf := ScoreConfidence(ev.Passage, ev.MatchingFindings, i+1)

		supporting := []MatchedFinding{}
		for _, mf := range ev.MatchingFindings[:min(maxSupportingFindings, len(ev.MatchingFindings))] {
			category := mf.Category
			if category == "" {
				category = CategoryClinicalFinding
			}
			supporting = append(supporting, MatchedFinding{
				Text:      mf.Text,
				Category:  category,
				Relevance: round(mf.Relevance, 3),
			})
		}

		diagnoses = append(diagnoses, DiagnosisHypothesis{
			Rank:               i + 1,
			Condition:          ConditionName(ev.Passage, ev.Source),
			Confidence:         conf.Score,
			Severity:           conf.Severity,
			Description:        clip(ev.Passage, descriptionRunes),
			Source:             ev.Source,
			SupportingFindings: supporting,
			Metrics: Metrics{
				TotalFindings:       conf.Findings,
				AvgRelevance:        conf.AvgRelevance,
				ConfidenceBreakdown: conf.Breakdown,
			},
		})
	}

	sort.SliceStable(diagnoses, func(i, j int) bool {
		return diagnoses[i].Confidence > diagnoses[j].Confidence
	})

	if len(diagnoses) > MaxDiagnoses {
		diagnoses = diagnoses[:MaxDiagnoses]
	}
	for i := range diagnoses {
		diagnoses[i].Rank = i + 1
	}
	return diagnoses
}
