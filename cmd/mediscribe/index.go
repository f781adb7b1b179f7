package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mediscribe/mediscribe/internal/modelerr"
)

var noProgress bool

func init() {
	rootCmd.AddCommand(indexCmd)
	indexCmd.AddCommand(indexBuildCmd)

	indexBuildCmd.Flags().BoolVar(&noProgress, "no-progress", false, "Suppress progress output")
}

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage the passage embedding index",
	Long:  `Commands for the in-memory passage embedding index.`,
}

// IndexBuildResult is the response for index build command.
type IndexBuildResult struct {
	Status          string  `json:"status"`
	Files           int     `json:"files"`
	PassagesIndexed int     `json:"passages_indexed"`
	Batches         int     `json:"batches"`
	DurationSeconds float64 `json:"duration_seconds"`
	Model           string  `json:"model"`
	Dimensions      int     `json:"dimensions"`
}

var indexBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Embed every knowledge base passage and report statistics",
	Long: `Embed every knowledge base passage and report statistics.

The index lives in memory, so serve and analyze rebuild it at startup. This
command checks that the embedding backend works against the current
knowledge base and reports how long a build takes.

With the ollama backend, run 'ollama pull all-minilm:l6-v2' first.`,
	Args: cobra.NoArgs,
	RunE: runIndexBuild,
}

func runIndexBuild(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	knowledge := mustLoadKB(cfg)
	provider := newEmbedder(cfg)

	showProgress := humanOutput && !noProgress
	if showProgress {
		fmt.Fprintf(os.Stderr, "Embedding %d passages...\n", knowledge.Len())
	}

	_, stats, err := buildIndex(context.Background(), provider, knowledge, showProgress)
	if err != nil {
		code := ExitError
		if errors.Is(err, modelerr.ErrUnavailable) {
			code = ExitModelUnavailable
		}
		exitWithError(code, "building index: %v", err)
	}

	if humanOutput {
		fmt.Printf("Build complete:\n")
		fmt.Printf("  Files: %d\n", len(knowledge.Files))
		fmt.Printf("  Passages indexed: %d\n", stats.PassagesIndexed)
		fmt.Printf("  Batches: %d\n", stats.Batches)
		fmt.Printf("  Time elapsed: %s\n", formatDuration(stats.Duration))
		fmt.Printf("  Model: %s (%d dims)\n", stats.ModelName, stats.Dimensions)
		return nil
	}
	return outputJSON(IndexBuildResult{
		Status:          "complete",
		Files:           len(knowledge.Files),
		PassagesIndexed: stats.PassagesIndexed,
		Batches:         stats.Batches,
		DurationSeconds: stats.Duration.Seconds(),
		Model:           stats.ModelName,
		Dimensions:      stats.Dimensions,
	})
}
