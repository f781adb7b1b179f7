// Package clinical implements the reasoning core: finding extraction,
// finding-to-evidence matching, differential ranking and assessment text.
package clinical

// Finding is a span of the note recognised as clinically relevant.
// Text is always note[Start:End] with byte offsets into the original note.
type Finding struct {
	Category string `json:"category"`
	Text     string `json:"text"`
	Start    int    `json:"start"`
	End      int    `json:"end"`
}

// MatchedFinding links a finding to an evidence passage.
type MatchedFinding struct {
	Text      string  `json:"text"`
	Category  string  `json:"category"`
	Relevance float64 `json:"relevance"` // cosine similarity in [0,1]
}

// EvidenceItem is a retrieved knowledge base passage.
type EvidenceItem struct {
	Rank             int              `json:"rank"`
	Passage          string           `json:"passage"`
	Source           string           `json:"source"`
	ChunkIndex       int              `json:"chunk_index"`
	Score            float64          `json:"score"`
	MatchingFindings []MatchedFinding `json:"matching_findings"`
}

// Severity is the urgency tier of a condition.
type Severity string

// Severity tiers, most urgent first.
const (
	SeverityCritical Severity = "Critical"
	SeverityHigh     Severity = "High"
	SeverityMedium   Severity = "Medium"
	SeverityLow      Severity = "Low"
)

// ConfidenceBreakdown shows how a confidence score was assembled.
type ConfidenceBreakdown struct {
	RankScore      float64 `json:"rank_score"`
	FindingsScore  float64 `json:"findings_score"`
	RelevanceScore float64 `json:"relevance_score"`
}

// Metrics summarises the evidence behind a hypothesis.
type Metrics struct {
	TotalFindings       int                 `json:"total_findings"`
	AvgRelevance        float64             `json:"avg_relevance"`
	ConfidenceBreakdown ConfidenceBreakdown `json:"confidence_breakdown"`
}

// DiagnosisHypothesis is one ranked entry of the differential.
type DiagnosisHypothesis struct {
	Rank               int              `json:"rank"`
	Condition          string           `json:"condition"`
	Confidence         float64          `json:"confidence"`
	Severity           Severity         `json:"severity"`
	Description        string           `json:"description"`
	Source             string           `json:"source"`
	SupportingFindings []MatchedFinding `json:"supporting_findings"`
	Metrics            Metrics          `json:"metrics"`
}
