// Package assess runs the note-to-assessment pipeline.
package assess

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/mediscribe/mediscribe/internal/clinical"
	"github.com/mediscribe/mediscribe/internal/embedding"
	"github.com/mediscribe/mediscribe/internal/kb"
	"github.com/mediscribe/mediscribe/internal/modelerr"
	"github.com/mediscribe/mediscribe/internal/retrieval"
	"github.com/mediscribe/mediscribe/internal/semantic"
	"github.com/mediscribe/mediscribe/internal/summarize"
)

// Errors returned by the service.
var (
	// ErrModelUnavailable marks a failed or timed-out model call; callers may retry.
	ErrModelUnavailable = modelerr.ErrUnavailable

	ErrEmptyNote          = errors.New("note is empty")
	ErrCatalogUnavailable = errors.New("keyword catalog not configured")
)

const (
	// MaxNoteRunes bounds the note fed into the pipeline.
	MaxNoteRunes = 4000

	// MaxSummaryPromptRunes bounds the summary prompt.
	MaxSummaryPromptRunes = 1000

	// MaxNarrativePromptRunes bounds the differential narrative prompt.
	MaxNarrativePromptRunes = 2500

	// DefaultModelTimeout bounds each external model call.
	DefaultModelTimeout = 60 * time.Second

	// MaxCitations caps the evidence returned with an assessment.
	MaxCitations = 3

	// MaxInputFindings caps the findings returned with an assessment.
	MaxInputFindings = 8

	summaryPromptPrefix = "Summarize this medical note focusing on chief complaint, key findings, and vital signs:\n\n"
)

// Summary length bounds for each summarizer call.
var (
	PlainSummaryLength     = Length{Max: 160, Min: 40}
	NoteSummaryLength      = Length{Max: 120, Min: 30}
	NarrativeSummaryLength = Length{Max: 200, Min: 80}
)

// Length is a (max, min) pair handed to the summarizer.
type Length struct {
	Max int
	Min int
}

// Result is the full assessment of one note.
type Result struct {
	Summary             string                         `json:"summary"`
	DifferentialAndPlan string                         `json:"differential_and_plan"`
	RankedDiagnoses     []clinical.DiagnosisHypothesis `json:"ranked_diagnoses"`
	Citations           []clinical.EvidenceItem        `json:"citations"`
	InputFindings       []clinical.Finding             `json:"input_findings"`
}

// Health describes the loaded knowledge base and models.
type Health struct {
	OK       bool   `json:"ok"`
	KBDocs   int    `json:"kb_docs"`
	KBFiles  int    `json:"kb_files"`
	Model    string `json:"model"`
	Embedder string `json:"embedder"`
}

// Service wires the summarizer, embedder and knowledge base into the pipeline.
// It holds no per-request state and is safe for concurrent use.
type Service struct {
	summarizer summarize.Summarizer
	embedder   embedding.Provider
	kb         *kb.KnowledgeBase
	retriever  *retrieval.Retriever
	matcher    *clinical.Matcher
	catalog    *kb.Catalog
	timeout    time.Duration
	logger     zerolog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithModelTimeout sets the per-call model timeout.
func WithModelTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithCatalog enables keyword search over passages.
func WithCatalog(c *kb.Catalog) Option {
	return func(s *Service) {
		s.catalog = c
	}
}

// NewService creates the pipeline service. index may be nil for an empty
// knowledge base.
func NewService(summarizer summarize.Summarizer, embedder embedding.Provider, knowledge *kb.KnowledgeBase, index *semantic.Index, opts ...Option) *Service {
	s := &Service{
		summarizer: summarizer,
		embedder:   embedder,
		kb:         knowledge,
		retriever:  retrieval.New(embedder, index),
		matcher:    clinical.NewMatcher(embedder),
		timeout:    DefaultModelTimeout,
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Health reports the knowledge base size and model names.
func (s *Service) Health() Health {
	files := 0
	if s.kb != nil {
		files = len(s.kb.Files)
	}
	return Health{
		OK:       true,
		KBDocs:   s.retriever.Len(),
		KBFiles:  files,
		Model:    s.summarizer.ModelName(),
		Embedder: s.embedder.ModelName(),
	}
}

// Findings extracts findings from a note without calling any model.
func (s *Service) Findings(note string) []clinical.Finding {
	return clinical.ExtractFindings(summarize.TruncateRunes(note, MaxNoteRunes))
}

// Summarize returns a plain summary of note.
func (s *Service) Summarize(ctx context.Context, note string) (string, error) {
	if strings.TrimSpace(note) == "" {
		return "", ErrEmptyNote
	}
	return s.summarize(ctx, "summarize", note, PlainSummaryLength)
}

// SearchKB runs a keyword query against the passage catalog.
func (s *Service) SearchKB(query string, limit int) ([]kb.Passage, error) {
	if s.catalog == nil {
		return nil, ErrCatalogUnavailable
	}
	return s.catalog.Search(query, limit)
}

// Analyze runs the full pipeline on note, retrieving topK passages.
func (s *Service) Analyze(ctx context.Context, note string, topK int) (*Result, error) {
	if strings.TrimSpace(note) == "" {
		return nil, ErrEmptyNote
	}
	start := time.Now()

	note = summarize.TruncateRunes(note, MaxNoteRunes)

	summaryPrompt := summarize.TruncateRunes(summaryPromptPrefix+note, MaxSummaryPromptRunes)
	summary, err := s.summarize(ctx, "summarize note", summaryPrompt, NoteSummaryLength)
	if err != nil {
		return nil, err
	}

	findings := clinical.ExtractFindings(note)

	var evidence []clinical.EvidenceItem
	err = s.withTimeout(ctx, "retrieve evidence", func(ctx context.Context) error {
		var err error
		evidence, err = s.retriever.Retrieve(ctx, note, topK)
		return err
	})
	if err != nil {
		return nil, err
	}

	var enriched []clinical.EvidenceItem
	err = s.withTimeout(ctx, "match findings", func(ctx context.Context) error {
		var err error
		enriched, err = s.matcher.Match(ctx, findings, evidence)
		return err
	})
	if err != nil {
		return nil, err
	}

	ranked := clinical.RankDiagnoses(findings, enriched)

	prompt := summarize.TruncateRunes(clinical.ComposeDxPrompt(summary, enriched), MaxNarrativePromptRunes)
	narrative, err := s.summarize(ctx, "differential narrative", prompt, NarrativeSummaryLength)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Summary:             summary,
		DifferentialAndPlan: clinical.ComposeAssessment(narrative, findings, enriched),
		RankedDiagnoses:     ranked,
		Citations:           enriched[:min(MaxCitations, len(enriched))],
		InputFindings:       findings[:min(MaxInputFindings, len(findings))],
	}

	s.logger.Info().
		Int("note_runes", utf8.RuneCountInString(note)).
		Int("findings", len(findings)).
		Int("evidence", len(enriched)).
		Int("diagnoses", len(ranked)).
		Dur("elapsed", time.Since(start)).
		Msg("assessment complete")

	return result, nil
}

func (s *Service) summarize(ctx context.Context, op, text string, length Length) (string, error) {
	var out string
	err := s.withTimeout(ctx, op, func(ctx context.Context) error {
		var err error
		out, err = s.summarizer.Summarize(ctx, text, length.Max, length.Min)
		return err
	})
	return out, err
}

// withTimeout runs fn under the model timeout. Failures other than the
// caller's own cancellation are reported as ErrModelUnavailable.
func (s *Service) withTimeout(ctx context.Context, op string, fn func(context.Context) error) error {
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	err := fn(callCtx)
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	s.logger.Warn().Err(err).Str("op", op).Dur("timeout", s.timeout).Msg("model call failed")
	if errors.Is(err, ErrModelUnavailable) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrModelUnavailable, err)
}
