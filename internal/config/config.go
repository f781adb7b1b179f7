// Package config loads service configuration from YAML, .env and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Backend names.
const (
	BackendOllama     = "ollama"
	BackendHashing    = "hashing"
	BackendExtractive = "extractive"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "MEDISCRIBE_"

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config is the full service configuration.
type Config struct {
	KBDir        string           `yaml:"kb_dir"`
	ListenAddr   string           `yaml:"listen_addr"`
	CORSOrigins  []string         `yaml:"cors_origins"`
	DefaultTopK  int              `yaml:"default_top_k"`
	ModelTimeout time.Duration    `yaml:"model_timeout"`
	CatalogPath  string           `yaml:"catalog_path"`
	Embedder     EmbedderConfig   `yaml:"embedder"`
	Summarizer   SummarizerConfig `yaml:"summarizer"`
	Log          LogConfig        `yaml:"log"`
}

// EmbedderConfig selects and tunes the embedding backend.
type EmbedderConfig struct {
	Backend    string  `yaml:"backend"`
	URL        string  `yaml:"url"`
	Model      string  `yaml:"model"`
	Dimensions int     `yaml:"dimensions"`
	RateLimit  float64 `yaml:"rate_limit"`
	Cache      bool    `yaml:"cache"`
}

// SummarizerConfig selects and tunes the summarization backend.
type SummarizerConfig struct {
	Backend   string  `yaml:"backend"`
	URL       string  `yaml:"url"`
	Model     string  `yaml:"model"`
	RateLimit float64 `yaml:"rate_limit"`
}

// LogConfig controls the service logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		KBDir:      "kb",
		ListenAddr: ":8000",
		CORSOrigins: []string{
			"http://localhost:3000",
			"http://localhost:3001",
			"http://127.0.0.1:3000",
			"http://127.0.0.1:3001",
		},
		DefaultTopK:  4,
		ModelTimeout: 60 * time.Second,
		CatalogPath:  ":memory:",
		Embedder: EmbedderConfig{
			Backend:    BackendOllama,
			URL:        "http://localhost:11434",
			Model:      "all-minilm:l6-v2",
			Dimensions: 384,
			RateLimit:  20,
			Cache:      true,
		},
		Summarizer: SummarizerConfig{
			Backend:   BackendOllama,
			URL:       "http://localhost:11434",
			Model:     "llama3.2:3b",
			RateLimit: 4,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds the configuration from defaults, the YAML file at path (or
// DefaultPath when empty), a .env file in the working directory and
// MEDISCRIBE_* environment variables, in increasing precedence.
// A missing file at the default path is not an error; an explicit path must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	if path != "" {
		data, err := os.ReadFile(ExpandPath(path))
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config %s: %w", path, err)
			}
		case os.IsNotExist(err) && !explicit:
		default:
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	_ = godotenv.Load()

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	cfg.KBDir = ExpandPath(cfg.KBDir)
	cfg.CatalogPath = ExpandPath(cfg.CatalogPath)

	return cfg, nil
}

type lookupFunc func(key string) (string, bool)

func (c *Config) applyEnv(lookup lookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(EnvPrefix + key); ok {
			*dst = v
		}
	}
	integer := func(key string, dst *int) error {
		v, ok := lookup(EnvPrefix + key)
		if !ok {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
		}
		*dst = n
		return nil
	}
	float := func(key string, dst *float64) error {
		v, ok := lookup(EnvPrefix + key)
		if !ok {
			return nil
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
		}
		*dst = f
		return nil
	}

	str("KB_DIR", &c.KBDir)
	str("LISTEN_ADDR", &c.ListenAddr)
	str("CATALOG_PATH", &c.CatalogPath)
	str("EMBEDDER_BACKEND", &c.Embedder.Backend)
	str("EMBEDDER_URL", &c.Embedder.URL)
	str("EMBEDDER_MODEL", &c.Embedder.Model)
	str("SUMMARIZER_BACKEND", &c.Summarizer.Backend)
	str("SUMMARIZER_URL", &c.Summarizer.URL)
	str("SUMMARIZER_MODEL", &c.Summarizer.Model)
	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)

	if v, ok := lookup(EnvPrefix + "CORS_ORIGINS"); ok {
		c.CORSOrigins = splitList(v)
	}

	if v, ok := lookup(EnvPrefix + "MODEL_TIMEOUT"); ok {
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%sMODEL_TIMEOUT: %w", EnvPrefix, err)
		}
		c.ModelTimeout = d
	}

	if v, ok := lookup(EnvPrefix + "EMBEDDER_CACHE"); ok {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%sEMBEDDER_CACHE: %w", EnvPrefix, err)
		}
		c.Embedder.Cache = b
	}

	if err := integer("DEFAULT_TOP_K", &c.DefaultTopK); err != nil {
		return err
	}
	if err := integer("EMBEDDER_DIMENSIONS", &c.Embedder.Dimensions); err != nil {
		return err
	}
	if err := float("EMBEDDER_RATE_LIMIT", &c.Embedder.RateLimit); err != nil {
		return err
	}
	return float("SUMMARIZER_RATE_LIMIT", &c.Summarizer.RateLimit)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate checks that the configuration can start the service.
func (c *Config) Validate() error {
	switch c.Embedder.Backend {
	case BackendOllama, BackendHashing:
	default:
		return fmt.Errorf("%w: embedder.backend %q (valid: %s, %s)", ErrInvalid, c.Embedder.Backend, BackendOllama, BackendHashing)
	}
	switch c.Summarizer.Backend {
	case BackendOllama, BackendExtractive:
	default:
		return fmt.Errorf("%w: summarizer.backend %q (valid: %s, %s)", ErrInvalid, c.Summarizer.Backend, BackendOllama, BackendExtractive)
	}
	if c.Embedder.Dimensions < 0 {
		return fmt.Errorf("%w: embedder.dimensions must not be negative", ErrInvalid)
	}
	if c.Embedder.Backend == BackendOllama && c.Embedder.URL == "" {
		return fmt.Errorf("%w: embedder.url is required for the %s backend", ErrInvalid, BackendOllama)
	}
	if c.Summarizer.Backend == BackendOllama && c.Summarizer.URL == "" {
		return fmt.Errorf("%w: summarizer.url is required for the %s backend", ErrInvalid, BackendOllama)
	}
	if c.DefaultTopK < 0 {
		return fmt.Errorf("%w: default_top_k must not be negative", ErrInvalid)
	}
	if c.ModelTimeout <= 0 {
		return fmt.Errorf("%w: model_timeout must be positive", ErrInvalid)
	}
	if c.KBDir == "" {
		return fmt.Errorf("%w: kb_dir is required", ErrInvalid)
	}
	for _, origin := range c.CORSOrigins {
		if origin != "*" && !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			return fmt.Errorf("%w: cors origin %q must start with http:// or https://", ErrInvalid, origin)
		}
	}
	return nil
}
