// Package api exposes the assessment pipeline over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/mediscribe/mediscribe/internal/assess"
	"github.com/mediscribe/mediscribe/internal/clinical"
	"github.com/mediscribe/mediscribe/internal/kb"
)

const (
	// DefaultMaxBodyBytes bounds request bodies, PDF uploads included.
	DefaultMaxBodyBytes = 10 << 20

	// DefaultSearchLimit is used when /kb/search has no limit parameter.
	DefaultSearchLimit = 10

	// MaxSearchLimit caps the limit parameter of /kb/search.
	MaxSearchLimit = 100
)

// Pipeline is the subset of the assessment service the HTTP layer needs.
type Pipeline interface {
	Health() assess.Health
	Findings(note string) []clinical.Finding
	Summarize(ctx context.Context, note string) (string, error)
	Analyze(ctx context.Context, note string, topK int) (*assess.Result, error)
	SearchKB(query string, limit int) ([]kb.Passage, error)
}

type server struct {
	pipeline     Pipeline
	logger       zerolog.Logger
	origins      []string
	defaultTopK  int
	maxBodyBytes int64
}

// Option configures the router.
type Option func(*server)

// WithLogger sets the request logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *server) {
		s.logger = logger
	}
}

// WithCORSOrigins sets the browser origins allowed to call the API with
// credentials. "*" allows any origin without credentials. An empty list
// disables CORS headers.
func WithCORSOrigins(origins []string) Option {
	return func(s *server) {
		s.origins = origins
	}
}

// WithDefaultTopK sets the evidence count used when a request omits top_k.
func WithDefaultTopK(k int) Option {
	return func(s *server) {
		if k >= 0 {
			s.defaultTopK = k
		}
	}
}

// WithMaxBodyBytes sets the request body limit.
func WithMaxBodyBytes(n int64) Option {
	return func(s *server) {
		if n > 0 {
			s.maxBodyBytes = n
		}
	}
}

// NewRouter builds the gin engine serving the pipeline.
func NewRouter(pipeline Pipeline, opts ...Option) *gin.Engine {
	s := &server{
		pipeline:     pipeline,
		logger:       zerolog.Nop(),
		defaultTopK:  4,
		maxBodyBytes: DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(s)
	}

	router := gin.New()
	router.Use(
		requestID(),
		requestLogger(s.logger),
		gin.Recovery(),
		limitBodySize(s.maxBodyBytes),
	)
	if len(s.origins) > 0 {
		router.Use(cors.New(corsConfig(s.origins)))
	}

	router.GET("/health", s.handleHealth)
	router.POST("/summarize", s.handleSummarize)
	router.POST("/summarize_hypothesize", s.handleSummarizeHypothesize)
	router.POST("/findings", s.handleFindings)
	router.POST("/extract_pdf", s.handleExtractPDF)
	router.GET("/kb/search", s.handleSearch)

	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", RequestIDHeader},
		ExposeHeaders: []string{RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	for _, origin := range origins {
		if origin == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

func limitBodySize(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
