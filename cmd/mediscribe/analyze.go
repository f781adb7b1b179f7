package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mediscribe/mediscribe/internal/assess"
	"github.com/mediscribe/mediscribe/internal/clinical"
	"github.com/mediscribe/mediscribe/internal/summarize"
)

var (
	analyzePDF  bool
	analyzeTopK int
	findingsPDF bool
	summaryPDF  bool
)

func init() {
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(findingsCmd)
	rootCmd.AddCommand(summarizeCmd)

	analyzeCmd.Flags().BoolVar(&analyzePDF, "pdf", false, "Read the note from a PDF")
	analyzeCmd.Flags().IntVarP(&analyzeTopK, "top-k", "k", -1, "Passages to retrieve (default from config)")
	findingsCmd.Flags().BoolVar(&findingsPDF, "pdf", false, "Read the note from a PDF")
	summarizeCmd.Flags().BoolVar(&summaryPDF, "pdf", false, "Read the note from a PDF")
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file|-]",
	Short: "Summarize a note and rank a differential diagnosis",
	Long: `Summarize a note and rank a differential diagnosis.

Reads the note from the named file, or from stdin when the argument is "-" or
omitted. Exits with code 4 when a model call fails or times out.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	logger := mustNewLogger(cfg)
	note := mustReadNote(args, analyzePDF)

	topK := cfg.DefaultTopK
	if analyzeTopK >= 0 {
		topK = analyzeTopK
	}

	ctx := context.Background()
	a := mustStartApp(ctx, cfg, logger)
	defer a.Close()

	result, err := a.service.Analyze(ctx, note, topK)
	if err != nil {
		exitWithError(exitCodeFor(err), "analyzing note: %v", err)
	}

	if humanOutput {
		printResultHuman(result)
		return nil
	}
	return outputJSON(result)
}

func printResultHuman(r *assess.Result) {
	outputHuman("Summary:\n  %s\n\n", r.Summary)
	outputHuman("%s\n\n", r.DifferentialAndPlan)

	outputHuman("Ranked diagnoses:\n")
	if len(r.RankedDiagnoses) == 0 {
		outputHuman("  (none)\n")
	}
	for _, d := range r.RankedDiagnoses {
		outputHuman("  %d. %s [%s, confidence %.2f] (%s)\n", d.Rank, d.Condition, d.Severity, d.Confidence, d.Source)
		for _, f := range d.SupportingFindings {
			outputHuman("     - %s (%s, %.2f)\n", f.Text, f.Category, f.Relevance)
		}
	}

	outputHuman("\nCitations:\n")
	if len(r.Citations) == 0 {
		outputHuman("  (none)\n")
	}
	for _, c := range r.Citations {
		outputHuman("  %d. [%.2f] %s#%d: %s\n", c.Rank, c.Score, c.Source, c.ChunkIndex, truncateString(c.Passage, PassageMaxLen))
	}

	outputHuman("\nDecision support only; not a diagnosis.\n")
}

var findingsCmd = &cobra.Command{
	Use:   "findings [file|-]",
	Short: "Extract clinical findings from a note",
	Long: `Extract clinical findings from a note.

Runs locally without a knowledge base or any model call.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFindings,
}

// FindingsResponse is the response for the findings command.
type FindingsResponse struct {
	Findings []clinical.Finding `json:"findings"`
	Count    int                `json:"count"`
}

func runFindings(cmd *cobra.Command, args []string) error {
	note := mustReadNote(args, findingsPDF)
	if strings.TrimSpace(note) == "" {
		exitWithError(ExitDataError, "%v", assess.ErrEmptyNote)
	}

	findings := clinical.ExtractFindings(summarize.TruncateRunes(note, assess.MaxNoteRunes))

	if humanOutput {
		if len(findings) == 0 {
			outputHuman("No findings.\n")
			return nil
		}
		for i, f := range findings {
			outputHuman("%d. [%s] %s (%d-%d)\n", i+1, f.Category, f.Text, f.Start, f.End)
		}
		return nil
	}
	return outputJSON(FindingsResponse{Findings: findings, Count: len(findings)})
}

var summarizeCmd = &cobra.Command{
	Use:   "summarize [file|-]",
	Short: "Summarize a note",
	Long:  `Summarize a note with the configured summarizer. No knowledge base is loaded.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSummarize,
}

// SummaryResponse is the response for the summarize command.
type SummaryResponse struct {
	Summary string `json:"summary"`
	Model   string `json:"model"`
}

func runSummarize(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	logger := mustNewLogger(cfg)
	note := mustReadNote(args, summaryPDF)

	summarizer := newSummarizer(cfg)
	service := assess.NewService(summarizer, newEmbedder(cfg), nil, nil,
		assess.WithModelTimeout(cfg.ModelTimeout),
		assess.WithLogger(logger),
	)

	summary, err := service.Summarize(context.Background(), note)
	if err != nil {
		exitWithError(exitCodeFor(err), "summarizing note: %v", err)
	}

	if humanOutput {
		fmt.Println(summary)
		return nil
	}
	return outputJSON(SummaryResponse{Summary: summary, Model: summarizer.ModelName()})
}
