package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mediscribe/mediscribe/internal/mcptool"
)

func init() {
	rootCmd.AddCommand(mcpCmd)
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the pipeline as MCP tools over stdio",
	Long: `Serve the pipeline as Model Context Protocol tools over stdin/stdout.

Tools:
  summarize_hypothesize  full assessment of a note
  extract_findings       categorized findings with offsets

Logs go to stderr; stdout carries only protocol messages.`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	logger := mustNewLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := mustStartApp(ctx, cfg, logger)
	defer a.Close()

	server := mcptool.NewServer(a.service, Version, cfg.DefaultTopK)
	logger.Info().Msg("serving MCP over stdio")
	if err := mcptool.ServeStdio(ctx, server); err != nil && ctx.Err() == nil {
		exitWithError(ExitError, "mcp server: %v", err)
	}
	return nil
}
