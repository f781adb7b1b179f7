// Package main provides the mediscribe CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	// humanOutput controls whether to use human-readable output
	humanOutput bool

	configPath string
	kbDirFlag  string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "mediscribe",
	Short: "Clinical note summarization and differential diagnosis support",
	Long: `mediscribe turns a free-text clinical note into a summary, extracted findings,
knowledge base evidence and a ranked differential diagnosis.

Core features:
  - Rule-based extraction of symptoms, vitals, exam, history, labs and diagnoses
  - Semantic retrieval over a directory of plain-text knowledge base files
  - Confidence and severity scoring of candidate conditions
  - HTTP API (serve) and MCP stdio server (mcp)

Output is decision support only, not a diagnosis.
All commands output JSON by default; use --human for readable text.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/mediscribe/config.yml)")
	rootCmd.PersistentFlags().StringVar(&kbDirFlag, "kb", "", "Knowledge base directory (overrides kb_dir)")
	rootCmd.Version = Version
}
