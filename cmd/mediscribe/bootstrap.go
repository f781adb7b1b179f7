package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/mediscribe/mediscribe/internal/assess"
	"github.com/mediscribe/mediscribe/internal/config"
	"github.com/mediscribe/mediscribe/internal/embedding"
	"github.com/mediscribe/mediscribe/internal/kb"
	"github.com/mediscribe/mediscribe/internal/logging"
	"github.com/mediscribe/mediscribe/internal/modelerr"
	"github.com/mediscribe/mediscribe/internal/pdf"
	"github.com/mediscribe/mediscribe/internal/semantic"
	"github.com/mediscribe/mediscribe/internal/summarize"
)

// mustLoadConfig loads and validates configuration, exits on error.
func mustLoadConfig() *config.Config {
	cfg, err := config.Load(configPath)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	if kbDirFlag != "" {
		cfg.KBDir = config.ExpandPath(kbDirFlag)
	}
	if err := cfg.Validate(); err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	return cfg
}

// mustNewLogger builds the stderr logger, exits on error.
func mustNewLogger(cfg *config.Config) zerolog.Logger {
	logger, err := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	return logger
}

// newEmbedder builds the configured embedding provider.
func newEmbedder(cfg *config.Config) embedding.Provider {
	var provider embedding.Provider
	switch cfg.Embedder.Backend {
	case config.BackendHashing:
		provider = embedding.NewHashingProvider(cfg.Embedder.Dimensions)
	default:
		opts := []embedding.OllamaOption{
			embedding.WithBaseURL(cfg.Embedder.URL),
			embedding.WithModel(cfg.Embedder.Model),
			embedding.WithTimeout(cfg.ModelTimeout),
			embedding.WithRateLimit(cfg.Embedder.RateLimit),
		}
		if cfg.Embedder.Dimensions > 0 {
			opts = append(opts, embedding.WithDimensions(cfg.Embedder.Dimensions))
		}
		provider = embedding.NewOllamaProvider(opts...)
	}

	if cfg.Embedder.Cache {
		return embedding.NewCachedProvider(provider)
	}
	return provider
}

// newSummarizer builds the configured summarizer.
func newSummarizer(cfg *config.Config) summarize.Summarizer {
	if cfg.Summarizer.Backend == config.BackendExtractive {
		return summarize.NewExtractiveSummarizer()
	}
	return summarize.NewOllamaSummarizer(
		summarize.WithBaseURL(cfg.Summarizer.URL),
		summarize.WithModel(cfg.Summarizer.Model),
		summarize.WithTimeout(cfg.ModelTimeout),
		summarize.WithRateLimit(cfg.Summarizer.RateLimit),
	)
}

// mustLoadKB loads the knowledge base directory, exits on error.
func mustLoadKB(cfg *config.Config) *kb.KnowledgeBase {
	knowledge, err := kb.LoadDir(cfg.KBDir)
	if err != nil {
		exitWithError(ExitDataError, "loading knowledge base: %v", err)
	}
	return knowledge
}

// mustOpenCatalog opens the keyword catalog and indexes every passage, exits on error.
// The caller is responsible for calling Close() on the returned catalog.
func mustOpenCatalog(cfg *config.Config, knowledge *kb.KnowledgeBase) *kb.Catalog {
	catalog, err := kb.OpenCatalog(cfg.CatalogPath)
	if err != nil {
		exitWithError(ExitError, "opening catalog: %v", err)
	}
	if _, err := catalog.Rebuild(knowledge.Passages); err != nil {
		catalog.Close()
		exitWithError(ExitError, "indexing catalog: %v", err)
	}
	return catalog
}

// buildIndex embeds every passage of the knowledge base.
func buildIndex(ctx context.Context, provider embedding.Provider, knowledge *kb.KnowledgeBase, showProgress bool) (*semantic.Index, *semantic.BuildStats, error) {
	builder := semantic.NewBuilder(provider)
	if showProgress {
		builder.SetProgressReporter(semantic.ProgressFunc(printProgress))
		defer clearProgress()
	}
	return builder.Build(ctx, knowledge.Passages)
}

// app is everything a pipeline command needs.
type app struct {
	embedder   embedding.Provider
	summarizer summarize.Summarizer
	kb         *kb.KnowledgeBase
	catalog    *kb.Catalog
	service    *assess.Service
}

// Close releases the catalog.
func (a *app) Close() {
	if a.catalog != nil {
		a.catalog.Close()
	}
}

// mustStartApp loads the knowledge base, builds the index and wires the
// assessment service, exits on error.
func mustStartApp(ctx context.Context, cfg *config.Config, logger zerolog.Logger) *app {
	a := &app{
		embedder:   newEmbedder(cfg),
		summarizer: newSummarizer(cfg),
	}

	a.kb = mustLoadKB(cfg)
	logger.Info().
		Str("kb_dir", cfg.KBDir).
		Int("files", len(a.kb.Files)).
		Int("passages", a.kb.Len()).
		Msg("knowledge base loaded")

	idx, stats, err := buildIndex(ctx, a.embedder, a.kb, humanOutput)
	if err != nil {
		code := ExitError
		if errors.Is(err, modelerr.ErrUnavailable) {
			code = ExitModelUnavailable
		}
		exitWithError(code, "building index: %v", err)
	}
	logger.Info().
		Str("model", stats.ModelName).
		Int("passages", stats.PassagesIndexed).
		Dur("elapsed", stats.Duration).
		Msg("index built")

	a.catalog = mustOpenCatalog(cfg, a.kb)

	a.service = assess.NewService(a.summarizer, a.embedder, a.kb, idx,
		assess.WithModelTimeout(cfg.ModelTimeout),
		assess.WithLogger(logger),
		assess.WithCatalog(a.catalog),
	)
	return a
}

// readNote reads a note from the file named by args[0], or from stdin when
// args is empty or "-". With asPDF the input is decoded as a PDF.
func readNote(args []string, asPDF bool, stdin io.Reader) (string, error) {
	fromStdin := len(args) == 0 || args[0] == "-"

	if asPDF {
		if !fromStdin {
			return pdf.ExtractText(args[0])
		}
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return pdf.ExtractBytes(data)
	}

	var data []byte
	var err error
	if fromStdin {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return "", fmt.Errorf("reading note: %w", err)
	}
	if !utf8.Valid(data) {
		return "", errors.New("note is not valid UTF-8")
	}
	return string(data), nil
}

// mustReadNote reads the note argument, exits on error.
func mustReadNote(args []string, asPDF bool) string {
	note, err := readNote(args, asPDF, os.Stdin)
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}
	return note
}
