package summarize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mediscribe/mediscribe/internal/modelerr"
	"golang.org/x/time/rate"
)

const (
	// DefaultOllamaURL is the default Ollama API endpoint.
	DefaultOllamaURL = "http://localhost:11434"

	// DefaultModel is the default generation model used for summaries.
	DefaultModel = "llama3.2:3b"

	// DefaultTimeout is the HTTP client timeout for generate requests.
	DefaultTimeout = 120 * time.Second

	// DefaultRateLimit is the maximum number of generate requests per second.
	DefaultRateLimit = 4.0

	apiPathGenerate = "/api/generate"

	apiPathTags = "/api/tags"

	opSummarize = "summarize"
)

// OllamaSummarizer summarizes text with an Ollama generation model.
type OllamaSummarizer struct {
	baseURL string
	model   string
	client  *http.Client
	limiter *rate.Limiter
}

// Option configures an OllamaSummarizer.
type Option func(*OllamaSummarizer)

// WithBaseURL sets the Ollama API base URL.
func WithBaseURL(url string) Option {
	return func(s *OllamaSummarizer) {
		s.baseURL = strings.TrimRight(url, "/")
	}
}

// WithModel sets the generation model.
func WithModel(model string) Option {
	return func(s *OllamaSummarizer) {
		s.model = model
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(s *OllamaSummarizer) {
		s.client.Timeout = timeout
	}
}

// WithRateLimit caps outbound requests per second. Zero or less disables limiting.
func WithRateLimit(perSecond float64) Option {
	return func(s *OllamaSummarizer) {
		if perSecond <= 0 {
			s.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		s.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

// NewOllamaSummarizer creates a summarizer backed by the Ollama generate API.
func NewOllamaSummarizer(opts ...Option) *OllamaSummarizer {
	s := &OllamaSummarizer{
		baseURL: DefaultOllamaURL,
		model:   DefaultModel,
		client:  &http.Client{Timeout: DefaultTimeout},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ModelName returns the generation model name.
func (s *OllamaSummarizer) ModelName() string {
	return s.model
}

// Summarize asks the model for a summary of text. Sampling is greedy so the
// same input yields the same output for a given model build.
func (s *OllamaSummarizer) Summarize(ctx context.Context, text string, maxLen, minLen int) (string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return "", modelerr.Wrap(opSummarize, s.model, err)
	}

	body, err := json.Marshal(generateRequest{
		Model:  s.model,
		System: systemPrompt(maxLen, minLen),
		Prompt: text,
		Stream: false,
		Options: generateOptions{
			Temperature: 0,
			NumPredict:  maxLen,
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+apiPathGenerate, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", modelerr.Wrap(opSummarize, s.model, fmt.Errorf("sending request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", modelerr.FromStatus(opSummarize, s.model, resp.StatusCode, string(respBody))
	}

	var result generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", modelerr.Wrap(opSummarize, s.model, fmt.Errorf("decoding response: %w", err))
	}
	if result.Error != "" {
		return "", modelerr.Wrap(opSummarize, s.model, fmt.Errorf("%s", result.Error))
	}

	return strings.TrimSpace(result.Response), nil
}

// HasModel reports whether the generation model has been pulled into Ollama.
// A model configured without a tag also matches its ":latest" tag.
func (s *OllamaSummarizer) HasModel(ctx context.Context) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+apiPathTags, nil)
	if err != nil {
		return false, fmt.Errorf("creating request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return false, modelerr.Wrap("list models", s.model, fmt.Errorf("sending request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return false, modelerr.FromStatus("list models", s.model, resp.StatusCode, string(respBody))
	}

	var result tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false, fmt.Errorf("decoding response: %w", err)
	}

	for _, m := range result.Models {
		if m.Name == s.model || m.Name == s.model+":latest" {
			return true, nil
		}
	}
	return false, nil
}

func systemPrompt(maxLen, minLen int) string {
	return fmt.Sprintf(
		"You are a clinical summarization model. Reply with the summary only, "+
			"between %d and %d tokens, no preamble.", minLen, maxLen)
}

type generateRequest struct {
	Model   string          `json:"model"`
	System  string          `json:"system,omitempty"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type generateResponse struct {
	Response string `json:"response"`
	Error    string `json:"error,omitempty"`
}

type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}
