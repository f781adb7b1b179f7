package clinical

import (
	"regexp"
	"strings"
	"unicode"
)

const (
	// MaxFindings caps the number of findings extracted from one note.
	MaxFindings = 10

	// minFindingRunes is the length a captured span must exceed to be kept.
	minFindingRunes = 10

	// fallbackSentences is how many leading sentences the keyword fallback inspects.
	fallbackSentences = 5

	// CategoryClinicalFinding labels findings produced by the keyword fallback.
	CategoryClinicalFinding = "Clinical Finding"
)

type findingPattern struct {
	category string
	re       *regexp.Regexp
}

// findingPatterns are tried in order; every match of every pattern is kept.
// Separators also accept Unicode spaces such as U+00A0.
var findingPatterns = []findingPattern{
	{"Symptoms", regexp.MustCompile(`(?i)(?:complains? of|reports?|presents? with|experiencing|symptoms? of|suffering from)[\s\p{Z}]+([^.;]+)`)},
	{"Vitals", regexp.MustCompile(`(?i)(?:BP|blood pressure|HR|heart rate|temp|temperature|SpO2|oxygen saturation)[:\s\p{Z}]+([^.;,]+)`)},
	{"Physical Exam", regexp.MustCompile(`(?i)(?:on examination|physical exam|exam reveals?|findings?)[:\s\p{Z}]+([^.;]+)`)},
	{"History", regexp.MustCompile(`(?i)(?:history of|previous|past medical history|PMH)[:\s\p{Z}]+([^.;]+)`)},
	{"Labs", regexp.MustCompile(`(?i)(?:lab|laboratory|test|results?|showed?|revealed?)[:\s\p{Z}]+([^.;]+)`)},
	{"Diagnosis", regexp.MustCompile(`(?i)(?:diagnosed with|diagnosis of|impression)[:\s\p{Z}]+([^.;]+)`)},
}

var medicalTerms = []string{
	"pain", "fever", "cough", "fatigue", "nausea", "vomiting",
	"headache", "dizziness", "chest", "abdomen", "shortness of breath",
	"swelling", "weakness", "confusion", "hypertension", "diabetes",
	"elevated", "decreased", "abnormal", "positive", "negative",
}

var sentenceSplit = regexp.MustCompile(`[.;]`)

// ExtractFindings returns up to MaxFindings findings from note, grouped by
// pattern category in table order. When no pattern matches it falls back to
// the first few sentences that mention a common clinical term.
func ExtractFindings(note string) []Finding {
	findings := []Finding{}

	for _, p := range findingPatterns {
		for _, m := range p.re.FindAllStringSubmatchIndex(note, -1) {
			start, end := trimSpan(note, m[2], m[3])
			if runeLen(note[start:end]) <= minFindingRunes {
				continue
			}
			findings = append(findings, Finding{
				Category: p.category,
				Text:     note[start:end],
				Start:    start,
				End:      end,
			})
		}
	}

	if len(findings) == 0 {
		findings = fallbackFindings(note)
	}

	if len(findings) > MaxFindings {
		findings = findings[:MaxFindings]
	}
	return findings
}

// fallbackFindings locates sentences by first occurrence, so a sentence that
// repeats earlier in the note reports the earlier offsets.
func fallbackFindings(note string) []Finding {
	findings := []Finding{}
	inspected := 0
	for _, raw := range sentenceSplit.Split(note, -1) {
		sentence := strings.TrimSpace(raw)
		if sentence == "" {
			continue
		}
		if inspected == fallbackSentences {
			break
		}
		inspected++

		if !containsAny(strings.ToLower(sentence), medicalTerms) {
			continue
		}
		start := strings.Index(note, sentence)
		findings = append(findings, Finding{
			Category: CategoryClinicalFinding,
			Text:     sentence,
			Start:    start,
			End:      start + len(sentence),
		})
	}
	return findings
}

// trimSpan narrows [start, end) of s past leading and trailing whitespace.
func trimSpan(s string, start, end int) (int, int) {
	span := s[start:end]
	trimmedLeft := strings.TrimLeftFunc(span, unicode.IsSpace)
	start += len(span) - len(trimmedLeft)
	trimmed := strings.TrimRightFunc(trimmedLeft, unicode.IsSpace)
	return start, start + len(trimmed)
}
