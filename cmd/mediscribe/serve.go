package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/mediscribe/mediscribe/internal/api"
)

var serveAddr string

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides listen_addr)")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Run the HTTP API.

Endpoints:
  GET  /health                 knowledge base size and model names
  POST /summarize              {"note"} -> {"summary"}
  POST /summarize_hypothesize  {"note", "top_k"} -> full assessment
  POST /findings               {"note"} -> {"findings"}
  POST /extract_pdf            multipart "file" -> {"text"}
  GET  /kb/search?q=&limit=    keyword search over passages

The knowledge base is embedded once at startup. SIGINT or SIGTERM shuts the
server down gracefully.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	if serveAddr != "" {
		cfg.ListenAddr = serveAddr
	}
	logger := mustNewLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := mustStartApp(ctx, cfg, logger)
	defer a.Close()

	if !strings.EqualFold(cfg.Log.Level, "debug") {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(a.service,
		api.WithLogger(logger),
		api.WithCORSOrigins(cfg.CORSOrigins),
		api.WithDefaultTopK(cfg.DefaultTopK),
	)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := api.Serve(ctx, srv, logger); err != nil {
		exitWithError(ExitError, "server: %v", err)
	}
	return nil
}
