// Package config provides configuration loading and validation for the CLI and server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"

	"github.com/jonathan/cv-consolidator/internal/budget"
	"github.com/jonathan/cv-consolidator/internal/dedupe"
	"github.com/jonathan/cv-consolidator/internal/extraction"
	"github.com/jonathan/cv-consolidator/internal/llm"
)

// Config represents the configuration that can be loaded from a JSON or YAML file.
// All fields are optional; missing values use defaults or come from CLI flags.
type Config struct {
	// Extraction service
	APIKey         string  `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	LiteModel      string  `json:"lite_model,omitempty" yaml:"lite_model,omitempty"`
	StandardModel  string  `json:"standard_model,omitempty" yaml:"standard_model,omitempty"`
	EmbeddingModel string  `json:"embedding_model,omitempty" yaml:"embedding_model,omitempty"`
	Temperature    float64 `json:"temperature,omitempty" yaml:"temperature,omitempty" validate:"gte=0,lte=2"`

	// Throughput
	RequestsPerSecond     float64 `json:"requests_per_second,omitempty" yaml:"requests_per_second,omitempty" validate:"gte=0"`
	MaxRetries            int     `json:"max_retries,omitempty" yaml:"max_retries,omitempty" validate:"gte=0,lte=10"`
	MaxConcurrency        int     `json:"max_concurrency,omitempty" yaml:"max_concurrency,omitempty" validate:"gte=0"`
	RequestTimeoutSeconds int     `json:"request_timeout_seconds,omitempty" yaml:"request_timeout_seconds,omitempty" validate:"gte=0"`
	OverallTimeoutSeconds int     `json:"overall_timeout_seconds,omitempty" yaml:"overall_timeout_seconds,omitempty" validate:"gte=0"`

	// Calibration
	SimilarityThreshold float64 `json:"similarity_threshold,omitempty" yaml:"similarity_threshold,omitempty" validate:"gte=0,lte=1"`
	CharsPerPage        int     `json:"chars_per_page,omitempty" yaml:"chars_per_page,omitempty" validate:"gte=0"`
	MaxPages            int     `json:"max_pages,omitempty" yaml:"max_pages,omitempty" validate:"gte=0"`
	RetainRatio         float64 `json:"retain_ratio,omitempty" yaml:"retain_ratio,omitempty" validate:"gte=0,lte=1"`
	MinTextChars        int     `json:"min_text_chars,omitempty" yaml:"min_text_chars,omitempty" validate:"gte=0"`

	// Storage
	DatabaseURL string `json:"database_url,omitempty" yaml:"database_url,omitempty"` // PostgreSQL connection URL
	SQLitePath  string `json:"sqlite_path,omitempty" yaml:"sqlite_path,omitempty"`

	// Behavior
	Port    int  `json:"port,omitempty" yaml:"port,omitempty" validate:"gte=0,lte=65535"`
	Verbose bool `json:"verbose,omitempty" yaml:"verbose,omitempty"` // Print detailed debug information
}

// Default returns the built-in configuration
func Default() Config {
	llmDefaults := llm.DefaultGeminiConfig()
	extractionDefaults := extraction.DefaultConfig()
	return Config{
		LiteModel:             llmDefaults.GetModel(llm.TierLite),
		StandardModel:         llmDefaults.GetModel(llm.TierStandard),
		EmbeddingModel:        llmDefaults.EmbeddingModel,
		Temperature:           float64(llm.DefaultTemperature),
		RequestsPerSecond:     llmDefaults.RequestsPerSecond,
		MaxRetries:            llmDefaults.Retry.MaxRetries,
		RequestTimeoutSeconds: int(extractionDefaults.RequestTimeout / time.Second),
		OverallTimeoutSeconds: int(extractionDefaults.OverallTimeout / time.Second),
		SimilarityThreshold:   dedupe.DefaultThreshold,
		CharsPerPage:          budget.DefaultCharsPerPage,
		MaxPages:              budget.DefaultMaxPages,
		RetainRatio:           budget.DefaultRetainRatio,
		MinTextChars:          50,
		Port:                  8080,
	}
}

// LoadConfig loads configuration from a JSON or YAML file, chosen by extension.
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
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Required fields are not checked here since flags may still supply them.
func (c *Config) Validate() error {
	if c.DatabaseURL != "" && c.SQLitePath != "" {
		return fmt.Errorf("config error: 'database_url' and 'sqlite_path' are mutually exclusive")
	}

	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.LiteModel == "" {
		result.LiteModel = defaults.LiteModel
	}
	if result.StandardModel == "" {
		result.StandardModel = defaults.StandardModel
	}
	if result.EmbeddingModel == "" {
		result.EmbeddingModel = defaults.EmbeddingModel
	}
	if result.DatabaseURL == "" && result.SQLitePath == "" {
		result.DatabaseURL = defaults.DatabaseURL
		result.SQLitePath = defaults.SQLitePath
	}

	// Numeric fields: use default if zero
	if result.Temperature == 0 {
		result.Temperature = defaults.Temperature
	}
	if result.RequestsPerSecond == 0 {
		result.RequestsPerSecond = defaults.RequestsPerSecond
	}
	if result.MaxRetries == 0 {
		result.MaxRetries = defaults.MaxRetries
	}
	if result.MaxConcurrency == 0 {
		result.MaxConcurrency = defaults.MaxConcurrency
	}
	if result.RequestTimeoutSeconds == 0 {
		result.RequestTimeoutSeconds = defaults.RequestTimeoutSeconds
	}
	if result.OverallTimeoutSeconds == 0 {
		result.OverallTimeoutSeconds = defaults.OverallTimeoutSeconds
	}
	if result.SimilarityThreshold == 0 {
		result.SimilarityThreshold = defaults.SimilarityThreshold
	}
	if result.CharsPerPage == 0 {
		result.CharsPerPage = defaults.CharsPerPage
	}
	if result.MaxPages == 0 {
		result.MaxPages = defaults.MaxPages
	}
	if result.RetainRatio == 0 {
		result.RetainRatio = defaults.RetainRatio
	}
	if result.MinTextChars == 0 {
		result.MinTextChars = defaults.MinTextChars
	}
	if result.Port == 0 {
		result.Port = defaults.Port
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// LLMConfig builds the extraction service configuration
func (c *Config) LLMConfig() *llm.Config {
	cfg := llm.DefaultGeminiConfig()
	if c.LiteModel != "" {
		cfg = cfg.WithModel(llm.TierLite, c.LiteModel)
	}
	if c.StandardModel != "" {
		cfg = cfg.WithModel(llm.TierStandard, c.StandardModel)
	}
	if c.EmbeddingModel != "" {
		cfg.EmbeddingModel = c.EmbeddingModel
	}
	if c.Temperature > 0 {
		cfg.Temperature = float32(c.Temperature)
	}
	if c.RequestsPerSecond > 0 {
		cfg.RequestsPerSecond = c.RequestsPerSecond
		cfg.Burst = max(1, int(c.RequestsPerSecond))
	}
	if c.MaxRetries > 0 {
		cfg.Retry.MaxRetries = c.MaxRetries
	}
	return cfg
}

// ExtractionConfig builds the orchestrator configuration
func (c *Config) ExtractionConfig() extraction.Config {
	cfg := extraction.DefaultConfig()
	if c.RequestTimeoutSeconds > 0 {
		cfg.RequestTimeout = time.Duration(c.RequestTimeoutSeconds) * time.Second
	}
	if c.OverallTimeoutSeconds > 0 {
		cfg.OverallTimeout = time.Duration(c.OverallTimeoutSeconds) * time.Second
	}
	cfg.MaxConcurrency = c.MaxConcurrency
	return cfg
}

// Planner builds the length budget planner
func (c *Config) Planner() budget.Planner {
	p := budget.NewPlanner()
	if c.CharsPerPage > 0 {
		p.CharsPerPage = c.CharsPerPage
	}
	if c.MaxPages > 0 {
		p.MaxPages = c.MaxPages
	}
	if c.RetainRatio > 0 {
		p.RetainRatio = c.RetainRatio
	}
	return p
}

// Threshold returns the duplicate similarity threshold
func (c *Config) Threshold() float64 {
	if c.SimilarityThreshold > 0 {
		return c.SimilarityThreshold
	}
	return dedupe.DefaultThreshold
}
