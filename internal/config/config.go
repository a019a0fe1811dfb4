// Package config provides configuration loading and validation for the
// matching service.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"

	"github.com/mertksaa/career-app/internal/match"
)

// Config holds the service configuration. Values can come from a JSON file;
// secrets (database URL, API key) are usually supplied via environment
// variables and override the file.
type Config struct {
	// Connections
	DatabaseURL string `json:"database_url,omitempty"`
	APIKey      string `json:"api_key,omitempty"` // Gemini API key

	// Analysis
	EmbeddingModel string `json:"embedding_model,omitempty"`
	LexiconPath    string `json:"lexicon_path,omitempty"` // Path to skills lexicon JSON

	// Recommendation
	TopK         int `json:"top_k,omitempty" validate:"gte=0"`
	QueueWorkers int `json:"queue_workers,omitempty" validate:"gte=0"`
	QueueDepth   int `json:"queue_depth,omitempty" validate:"gte=0"`

	// Scoring weights; zero value means "use defaults".
	Weights *match.Weights `json:"weights,omitempty" validate:"omitempty"`

	// Behavior
	Verbose bool `json:"verbose,omitempty"`
	LogJSON bool `json:"log_json,omitempty"`
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	cfg.ApplyEnv()
	return &cfg, nil
}

// FromEnv builds a configuration from environment variables alone.
func FromEnv() *Config {
	cfg := &Config{}
	cfg.ApplyEnv()
	return cfg
}

// ApplyEnv overrides file-provided values with environment variables.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.DatabaseURL = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv("SKILLS_LEXICON"); v != "" {
		c.LexiconPath = v
	}
}

// ScoringWeights returns the configured weights, falling back to the tuned
// defaults when the config carries none.
func (c *Config) ScoringWeights() match.Weights {
	if c.Weights == nil {
		return match.DefaultWeights()
	}
	return *c.Weights
}

// Validate checks numeric ranges and referenced file paths.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	if c.LexiconPath != "" {
		if _, err := os.Stat(c.LexiconPath); os.IsNotExist(err) {
			return fmt.Errorf("config error: lexicon file not found: %s", c.LexiconPath)
		}
	}
	return nil
}
