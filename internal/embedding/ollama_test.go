package embedding

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mediscribe/mediscribe/internal/modelerr"
)

func TestNewOllamaProvider_Defaults(t *testing.T) {
	provider := NewOllamaProvider()

	if provider.baseURL != DefaultOllamaURL {
		t.Errorf("baseURL = %s, want %s", provider.baseURL, DefaultOllamaURL)
	}
	if provider.model != DefaultModel {
		t.Errorf("model = %s, want %s", provider.model, DefaultModel)
	}
	if provider.dimensions != DefaultDimensions {
		t.Errorf("dimensions = %d, want %d", provider.dimensions, DefaultDimensions)
	}
	if provider.client == nil {
		t.Error("client should not be nil")
	}
}

func TestNewOllamaProvider_WithOptions(t *testing.T) {
	customURL := "http://custom:8080"
	customModel := "custom-model"
	customDimensions := 768
	customTimeout := 60 * time.Second

	provider := NewOllamaProvider(
		WithBaseURL(customURL),
		WithModel(customModel),
		WithDimensions(customDimensions),
		WithTimeout(customTimeout),
	)

	if provider.baseURL != customURL {
		t.Errorf("baseURL = %s, want %s", provider.baseURL, customURL)
	}
	if provider.model != customModel {
		t.Errorf("model = %s, want %s", provider.model, customModel)
	}
	if provider.dimensions != customDimensions {
		t.Errorf("dimensions = %d, want %d", provider.dimensions, customDimensions)
	}
	if provider.client.Timeout != customTimeout {
		t.Errorf("timeout = %v, want %v", provider.client.Timeout, customTimeout)
	}
}

func TestOllamaProvider_ModelName(t *testing.T) {
	provider := NewOllamaProvider()
	if provider.ModelName() != DefaultModel {
		t.Errorf("ModelName() = %s, want %s", provider.ModelName(), DefaultModel)
	}

	customModel := "custom-model"
	provider2 := NewOllamaProvider(WithModel(customModel))
	if provider2.ModelName() != customModel {
		t.Errorf("ModelName() = %s, want %s", provider2.ModelName(), customModel)
	}
}

func TestOllamaProvider_Dimensions(t *testing.T) {
	provider := NewOllamaProvider()
	if provider.Dimensions() != DefaultDimensions {
		t.Errorf("Dimensions() = %d, want %d", provider.Dimensions(), DefaultDimensions)
	}

	customDimensions := 768
	provider2 := NewOllamaProvider(WithDimensions(customDimensions))
	if provider2.Dimensions() != customDimensions {
		t.Errorf("Dimensions() = %d, want %d", provider2.Dimensions(), customDimensions)
	}
}

func TestFormatErrorBody(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "simple error message",
			input:    "error occurred",
			expected: "error occurred",
		},
		{
			name:     "empty body",
			input:    "",
			expected: "",
		},
		{
			name:     "json error",
			input:    `{"error": "not found"}`,
			expected: `{"error": "not found"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := formatErrorBody(strings.NewReader(tt.input))
			if result != tt.expected {
				t.Errorf("formatErrorBody() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestOllamaProvider_ImplementsProvider(t *testing.T) {
	// Compile-time check that OllamaProvider implements Provider interface
	var _ Provider = (*OllamaProvider)(nil)
}

func TestOllamaProvider_EmbedBatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != apiPathEmbed {
			t.Errorf("path = %s, want %s", r.URL.Path, apiPathEmbed)
		}
		var req ollamaEmbedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if req.Model != "test-model" {
			t.Errorf("model = %s, want test-model", req.Model)
		}
		resp := ollamaEmbedResponse{}
		for range req.Input {
			resp.Embeddings = append(resp.Embeddings, []float32{3, 4})
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	provider := NewOllamaProvider(
		WithBaseURL(server.URL),
		WithModel("test-model"),
		WithDimensions(2),
		WithRateLimit(0),
	)

	embs, err := provider.EmbedBatch(context.Background(), []string{"fever", "cough"})
	if err != nil {
		t.Fatalf("EmbedBatch() error = %v", err)
	}
	if len(embs) != 2 {
		t.Fatalf("len(embs) = %d, want 2", len(embs))
	}
	if embs[1].Vector[0] != 0.6 || embs[1].Vector[1] != 0.8 {
		t.Errorf("vector = %v, want normalized [0.6 0.8]", embs[1].Vector)
	}
}

func TestOllamaProvider_EmbedDimensionMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ollamaEmbedResponse{Embeddings: [][]float32{{1, 2, 3}}})
	}))
	defer server.Close()

	provider := NewOllamaProvider(WithBaseURL(server.URL), WithDimensions(2), WithRateLimit(0))
	if _, err := provider.Embed(context.Background(), "fever"); err == nil {
		t.Error("expected dimension mismatch error")
	}
}

func TestOllamaProvider_EmbedServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("loading model"))
	}))
	defer server.Close()

	provider := NewOllamaProvider(WithBaseURL(server.URL), WithRateLimit(0))
	_, err := provider.Embed(context.Background(), "fever")
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, modelerr.ErrUnavailable) {
		t.Errorf("error %v should match modelerr.ErrUnavailable", err)
	}
	if !strings.Contains(err.Error(), "loading model") {
		t.Errorf("error %q should include response body", err.Error())
	}
}

func TestOllamaProvider_Unreachable(t *testing.T) {
	provider := NewOllamaProvider(WithBaseURL("http://127.0.0.1:1"), WithRateLimit(0), WithTimeout(time.Second))
	_, err := provider.Embed(context.Background(), "fever")
	if !modelerr.IsRetriable(err) {
		t.Errorf("connection failure should be retriable, got %v", err)
	}
}

func TestOllamaProvider_HasModel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			t.Errorf("path = %q, want /api/tags", r.URL.Path)
		}
		w.Write([]byte(`{"models":[{"name":"all-minilm:l6-v2"},{"name":"nomic-embed-text:latest"}]}`))
	}))
	defer server.Close()

	tests := []struct {
		model string
		want  bool
	}{
		{"all-minilm:l6-v2", true},
		{"nomic-embed-text", true},
		{"nomic-embed-text:latest", true},
		{"all-minilm", false},
		{"mxbai-embed-large", false},
	}

	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			provider := NewOllamaProvider(WithBaseURL(server.URL), WithModel(tt.model))
			got, err := provider.HasModel(context.Background())
			if err != nil {
				t.Fatalf("HasModel() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("HasModel() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOllamaProvider_HasModelUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	provider := NewOllamaProvider(WithBaseURL(url))
	_, err := provider.HasModel(context.Background())
	if !errors.Is(err, modelerr.ErrUnavailable) {
		t.Errorf("HasModel() error = %v, want ErrUnavailable", err)
	}
}

func TestWithRateLimit(t *testing.T) {
	provider := NewOllamaProvider(WithRateLimit(5))
	if provider.limiter.Limit() != 5 {
		t.Errorf("limit = %v, want 5", provider.limiter.Limit())
	}

	unlimited := NewOllamaProvider(WithRateLimit(0))
	if !unlimited.limiter.Allow() || !unlimited.limiter.Allow() {
		t.Error("disabled limiter should always allow")
	}
}

func TestOllamaProvider_ImplementsBatchProvider(t *testing.T) {
	var _ BatchProvider = (*OllamaProvider)(nil)
}
