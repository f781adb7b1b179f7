package main

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mediscribe/mediscribe/internal/config"
	"github.com/mediscribe/mediscribe/internal/embedding"
	"github.com/mediscribe/mediscribe/internal/summarize"
)

const healthCheckTimeout = 5 * time.Second

// Backend check statuses.
const (
	StatusOK           = "ok"
	StatusLocal        = "local"
	StatusUnreachable  = "unreachable"
	StatusModelMissing = "model_missing"
)

func init() {
	rootCmd.AddCommand(healthCmd)
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the knowledge base and model backends",
	Long: `Check the knowledge base and model backends without embedding anything.

Exits with code 4 when a configured Ollama backend is unreachable or its model
has not been pulled.`,
	Args: cobra.NoArgs,
	RunE: runHealth,
}

// BackendCheck is the status of one model backend.
type BackendCheck struct {
	Backend string `json:"backend"`
	Model   string `json:"model"`
	Status  string `json:"status"`
	Detail  string `json:"detail,omitempty"`
}

// HealthResponse is the response for the health command.
type HealthResponse struct {
	OK         bool         `json:"ok"`
	KBDocs     int          `json:"kb_docs"`
	KBFiles    int          `json:"kb_files"`
	Embedder   BackendCheck `json:"embedder"`
	Summarizer BackendCheck `json:"summarizer"`
}

func runHealth(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	knowledge := mustLoadKB(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), healthCheckTimeout)
	defer cancel()

	resp := HealthResponse{
		KBDocs:     knowledge.Len(),
		KBFiles:    len(knowledge.Files),
		Embedder:   checkEmbedder(ctx, cfg),
		Summarizer: checkSummarizer(ctx, cfg),
	}
	resp.OK = healthy(resp.Embedder) && healthy(resp.Summarizer)

	if humanOutput {
		outputHuman("Knowledge base: %d passages in %d files (%s)\n", resp.KBDocs, resp.KBFiles, cfg.KBDir)
		printCheckHuman("Embedder", resp.Embedder)
		printCheckHuman("Summarizer", resp.Summarizer)
	} else {
		outputJSON(resp)
	}

	if !resp.OK {
		os.Exit(ExitModelUnavailable)
	}
	return nil
}

func printCheckHuman(label string, c BackendCheck) {
	outputHuman("%s: %s %s [%s]", label, c.Backend, c.Model, c.Status)
	if c.Detail != "" {
		outputHuman(" %s", c.Detail)
	}
	outputHuman("\n")
}

func healthy(c BackendCheck) bool {
	return c.Status == StatusOK || c.Status == StatusLocal
}

// modelChecker is implemented by the Ollama-backed clients.
type modelChecker interface {
	HasModel(ctx context.Context) (bool, error)
}

func checkModel(ctx context.Context, checker modelChecker, check BackendCheck) BackendCheck {
	ok, err := checker.HasModel(ctx)
	switch {
	case err != nil:
		check.Status = StatusUnreachable
		check.Detail = err.Error()
	case !ok:
		check.Status = StatusModelMissing
		check.Detail = "run 'ollama pull " + check.Model + "'"
	default:
		check.Status = StatusOK
	}
	return check
}

func checkEmbedder(ctx context.Context, cfg *config.Config) BackendCheck {
	if cfg.Embedder.Backend == config.BackendHashing {
		return BackendCheck{Backend: cfg.Embedder.Backend, Model: embedding.HashingModelName, Status: StatusLocal}
	}
	provider := embedding.NewOllamaProvider(
		embedding.WithBaseURL(cfg.Embedder.URL),
		embedding.WithModel(cfg.Embedder.Model),
		embedding.WithTimeout(healthCheckTimeout),
	)
	return checkModel(ctx, provider, BackendCheck{Backend: cfg.Embedder.Backend, Model: cfg.Embedder.Model})
}

func checkSummarizer(ctx context.Context, cfg *config.Config) BackendCheck {
	if cfg.Summarizer.Backend == config.BackendExtractive {
		return BackendCheck{Backend: cfg.Summarizer.Backend, Model: summarize.ExtractiveModelName, Status: StatusLocal}
	}
	summarizer := summarize.NewOllamaSummarizer(
		summarize.WithBaseURL(cfg.Summarizer.URL),
		summarize.WithModel(cfg.Summarizer.Model),
		summarize.WithTimeout(healthCheckTimeout),
	)
	return checkModel(ctx, summarizer, BackendCheck{Backend: cfg.Summarizer.Backend, Model: cfg.Summarizer.Model})
}
