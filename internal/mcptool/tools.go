// Package mcptool serves the assessment pipeline as Model Context Protocol tools.
package mcptool

import (
	"context"
	"errors"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mediscribe/mediscribe/internal/assess"
	"github.com/mediscribe/mediscribe/internal/clinical"
)

// ServerName identifies the MCP server to clients.
const ServerName = "mediscribe"

// Analyzer is the part of the assessment service exposed as tools.
type Analyzer interface {
	Analyze(ctx context.Context, note string, topK int) (*assess.Result, error)
	Findings(note string) []clinical.Finding
}

// MetadataSummarizeHypothesize describes the summarize_hypothesize tool.
var MetadataSummarizeHypothesize = &mcp.Tool{
	Name: "summarize_hypothesize",
	Description: "Summarize a clinical note and produce a ranked differential diagnosis. " +
		"Returns the note summary, a formatted assessment, up to five ranked diagnoses with " +
		"confidence and severity, the knowledge base passages cited, and the findings extracted from the note. " +
		"Decision support only; not a diagnosis.",
	InputSchema: map[string]interface{}{
		"type":     "object",
		"required": []string{"note"},
		"properties": map[string]interface{}{
			"note": map[string]interface{}{
				"type":        "string",
				"description": "Free-text clinical note",
			},
			"top_k": map[string]interface{}{
				"type":        "integer",
				"description": "Number of knowledge base passages to retrieve. Defaults to 4.",
				"minimum":     0,
			},
		},
	},
}

// InputSummarizeHypothesize is the input for the summarize_hypothesize tool.
type InputSummarizeHypothesize struct {
	Note string `json:"note"`
	TopK *int   `json:"top_k,omitempty"`
}

// OutputSummarizeHypothesize is the output for the summarize_hypothesize tool.
type OutputSummarizeHypothesize struct {
	Summary             string                         `json:"summary"`
	DifferentialAndPlan string                         `json:"differential_and_plan"`
	RankedDiagnoses     []clinical.DiagnosisHypothesis `json:"ranked_diagnoses"`
	Citations           []clinical.EvidenceItem        `json:"citations"`
	InputFindings       []clinical.Finding             `json:"input_findings"`
}

// MetadataExtractFindings describes the extract_findings tool.
var MetadataExtractFindings = &mcp.Tool{
	Name: "extract_findings",
	Description: "Extract categorized clinical findings (symptoms, vitals, exam, history, labs, diagnoses) " +
		"from a clinical note with character offsets. Runs locally without calling any model.",
	InputSchema: map[string]interface{}{
		"type":     "object",
		"required": []string{"note"},
		"properties": map[string]interface{}{
			"note": map[string]interface{}{
				"type":        "string",
				"description": "Free-text clinical note",
			},
		},
	},
}

// InputExtractFindings is the input for the extract_findings tool.
type InputExtractFindings struct {
	Note string `json:"note"`
}

// OutputExtractFindings is the output for the extract_findings tool.
type OutputExtractFindings struct {
	Findings []clinical.Finding `json:"findings"`
}

// Tools binds tool handlers to an Analyzer.
type Tools struct {
	analyzer    Analyzer
	defaultTopK int
}

// NewTools creates tool handlers. defaultTopK applies when a call omits top_k.
func NewTools(analyzer Analyzer, defaultTopK int) *Tools {
	return &Tools{analyzer: analyzer, defaultTopK: defaultTopK}
}

// SummarizeHypothesize runs the full assessment pipeline.
func (t *Tools) SummarizeHypothesize(ctx context.Context, _ *mcp.CallToolRequest, input InputSummarizeHypothesize) (*mcp.CallToolResult, OutputSummarizeHypothesize, error) {
	if strings.TrimSpace(input.Note) == "" {
		return nil, OutputSummarizeHypothesize{}, errors.New("note is required")
	}

	topK := t.defaultTopK
	if input.TopK != nil {
		topK = *input.TopK
	}
	if topK < 0 {
		return nil, OutputSummarizeHypothesize{}, errors.New("top_k must not be negative")
	}

	result, err := t.analyzer.Analyze(ctx, input.Note, topK)
	if err != nil {
		return nil, OutputSummarizeHypothesize{}, err
	}

	return nil, OutputSummarizeHypothesize{
		Summary:             result.Summary,
		DifferentialAndPlan: result.DifferentialAndPlan,
		RankedDiagnoses:     result.RankedDiagnoses,
		Citations:           result.Citations,
		InputFindings:       result.InputFindings,
	}, nil
}

// ExtractFindings returns the findings of a note.
func (t *Tools) ExtractFindings(_ context.Context, _ *mcp.CallToolRequest, input InputExtractFindings) (*mcp.CallToolResult, OutputExtractFindings, error) {
	if strings.TrimSpace(input.Note) == "" {
		return nil, OutputExtractFindings{}, errors.New("note is required")
	}
	findings := t.analyzer.Findings(input.Note)
	if findings == nil {
		findings = []clinical.Finding{}
	}
	return nil, OutputExtractFindings{Findings: findings}, nil
}

// NewServer creates an MCP server with every tool registered.
func NewServer(analyzer Analyzer, version string, defaultTopK int) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: ServerName, Version: version}, nil)

	tools := NewTools(analyzer, defaultTopK)
	mcp.AddTool(server, MetadataSummarizeHypothesize, tools.SummarizeHypothesize)
	mcp.AddTool(server, MetadataExtractFindings, tools.ExtractFindings)

	return server
}

// ServeStdio runs server over stdin/stdout until ctx is done or the client disconnects.
func ServeStdio(ctx context.Context, server *mcp.Server) error {
	return server.Run(ctx, &mcp.StdioTransport{})
}
