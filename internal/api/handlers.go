package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mediscribe/mediscribe/internal/assess"
	"github.com/mediscribe/mediscribe/internal/clinical"
	"github.com/mediscribe/mediscribe/internal/pdf"
)

type noteRequest struct {
	Note string `json:"note"`
}

type analyzeRequest struct {
	Note string `json:"note"`
	TopK *int   `json:"top_k"`
}

func (s *server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, s.pipeline.Health())
}

func (s *server) handleSummarize(c *gin.Context) {
	var req noteRequest
	if !s.bind(c, &req) {
		return
	}

	summary, err := s.pipeline.Summarize(c.Request.Context(), req.Note)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

func (s *server) handleSummarizeHypothesize(c *gin.Context) {
	var req analyzeRequest
	if !s.bind(c, &req) {
		return
	}

	topK := s.defaultTopK
	if req.TopK != nil {
		topK = *req.TopK
	}
	if topK < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "top_k must not be negative"})
		return
	}

	result, err := s.pipeline.Analyze(c.Request.Context(), req.Note, topK)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *server) handleFindings(c *gin.Context) {
	var req noteRequest
	if !s.bind(c, &req) {
		return
	}
	if strings.TrimSpace(req.Note) == "" {
		s.fail(c, assess.ErrEmptyNote)
		return
	}

	findings := s.pipeline.Findings(req.Note)
	if findings == nil {
		findings = []clinical.Finding{}
	}
	c.JSON(http.StatusOK, gin.H{"findings": findings})
}

func (s *server) handleExtractPDF(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		if tooLarge(err) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "upload too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart field \"file\" is required"})
		return
	}

	f, err := header.Open()
	if err != nil {
		s.fail(c, err)
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		s.fail(c, err)
		return
	}

	text, err := pdf.ExtractBytes(data)
	if err != nil {
		s.logger.Warn().Err(err).Str("request_id", c.GetString(requestIDKey)).Str("filename", header.Filename).Msg("pdf extraction failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read PDF"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"text": text})
}

func (s *server) handleSearch(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter q is required"})
		return
	}

	limit := DefaultSearchLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = min(n, MaxSearchLimit)
	}

	results, err := s.pipeline.SearchKB(query, limit)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"query": query, "results": results})
}

// bind decodes a JSON body, writing a 400 on failure.
func (s *server) bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		if tooLarge(err) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "request body too large"})
			return false
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return false
	}
	return true
}

// fail maps a pipeline error to a status code and JSON body.
func (s *server) fail(c *gin.Context, err error) {
	log := s.logger.With().Str("request_id", c.GetString(requestIDKey)).Logger()

	switch {
	case errors.Is(err, assess.ErrEmptyNote):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, assess.ErrCatalogUnavailable):
		c.JSON(http.StatusNotImplemented, gin.H{"error": err.Error()})
	case errors.Is(err, assess.ErrModelUnavailable), errors.Is(err, context.DeadlineExceeded):
		log.Warn().Err(err).Msg("model unavailable")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error(), "retriable": true})
	case errors.Is(err, context.Canceled):
		log.Info().Msg("client cancelled request")
		c.Status(499)
	default:
		log.Error().Err(err).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func tooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}
