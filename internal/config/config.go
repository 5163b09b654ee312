//-------------------------------------------------------------------------
//
// pgEdge Model Discovery
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package config handles configuration loading and validation for
// pgEdge Model Discovery.
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration structure.
type Config struct {
	Logging       LoggingConfig             `yaml:"logging"`
	APIKeys       APIKeysConfig             `yaml:"api_keys"`
	Database      DatabaseConfig            `yaml:"database"`
	Pipeline      PipelineConfig            `yaml:"pipeline"`
	Generation    GenerationConfig          `yaml:"generation"`
	Strategies    map[string]StrategyConfig `yaml:"strategies"` // keyed by intent name
	KnowledgeBase KnowledgeBaseConfig       `yaml:"knowledge_base"`
	Catalog       CatalogConfig             `yaml:"catalog"`
	Ranking       RankingConfig             `yaml:"ranking"`
	Cache         CacheConfig               `yaml:"cache"`
}

// LoggingConfig selects the slog handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// APIKeysConfig contains paths to files containing API keys.
// If not specified, keys are loaded from environment variables or default
// file locations (~/.anthropic-api-key, ~/.openai-api-key,
// ~/.artificialanalysis-api-key).
type APIKeysConfig struct {
	Anthropic          string `yaml:"anthropic"`
	OpenAI             string `yaml:"openai"`
	ArtificialAnalysis string `yaml:"artificialanalysis"`
}

// DatabaseConfig contains PostgreSQL connection settings, used when the
// knowledge base or catalog is backed by PostgreSQL.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int32  `yaml:"max_conns"` // pool size, 0 uses the pgx default

	// Certificate-based authentication
	SSLCert   string `yaml:"ssl_cert"`
	SSLKey    string `yaml:"ssl_key"`
	SSLRootCA string `yaml:"ssl_root_ca"`
}

// PipelineConfig controls the query pipeline stages.
type PipelineConfig struct {
	ContextWindow          int           `yaml:"context_window"` // bytes
	TopN                   int           `yaml:"top_n"`
	RetrievalLimit         int           `yaml:"retrieval_limit"`
	SimilarityThreshold    float64       `yaml:"similarity_threshold"`
	MaxRewrites            int           `yaml:"max_rewrites"`
	RewriteLimit           int           `yaml:"rewrite_limit"`
	RewriteThresholdFactor float64       `yaml:"rewrite_threshold_factor"`
	GenerateRewrites       *bool         `yaml:"generate_rewrites"`
	Rerank                 *bool         `yaml:"rerank"`
	Validate               *bool         `yaml:"validate"`
	Citations              *bool         `yaml:"citations"`
	SystemPrompt           string        `yaml:"system_prompt"`
	Timeouts               StageTimeouts `yaml:"timeouts"`
}

// StageTimeouts bounds each pipeline stage.
type StageTimeouts struct {
	Retrieve time.Duration `yaml:"retrieve"`
	Rerank   time.Duration `yaml:"rerank"`
	Assemble time.Duration `yaml:"assemble"`
	Generate time.Duration `yaml:"generate"`
	Validate time.Duration `yaml:"validate"`
}

// GenerationConfig is the ordered chain of generation backends.
type GenerationConfig struct {
	Timeout   time.Duration   `yaml:"timeout"` // per-backend default
	MaxTokens int             `yaml:"max_tokens"`
	Backends  []BackendConfig `yaml:"backends"`
}

// BackendConfig describes one generation backend.
type BackendConfig struct {
	Name        string        `yaml:"name"`
	Provider    string        `yaml:"provider"` // openai, anthropic, ollama, extractive
	Model       string        `yaml:"model"`
	BaseURL     string        `yaml:"base_url"`
	Temperature *float64      `yaml:"temperature"`
	MaxTokens   int           `yaml:"max_tokens"`
	Priority    int           `yaml:"priority"` // lower is tried first
	Timeout     time.Duration `yaml:"timeout"`
}

// StrategyConfig overrides the weights of an intent's strategy.
type StrategyConfig struct {
	RetrievalWeight  float64 `yaml:"retrieval_weight"`
	GenerationWeight float64 `yaml:"generation_weight"`
}

// Knowledge base and catalog backends.
const (
	SourceMemory             = "memory"
	SourceFile               = "file"
	SourcePostgres           = "postgres"
	SourceArtificialAnalysis = "artificialanalysis"
)

// KnowledgeBaseConfig selects the knowledge base backend.
type KnowledgeBaseConfig struct {
	Type  string      `yaml:"type"` // memory or postgres
	Path  string      `yaml:"path"` // document file for memory
	Table TableSource `yaml:"table"`
}

// TableSource defines a PostgreSQL table searched with full-text search.
type TableSource struct {
	Table          string        `yaml:"table"`
	IDColumn       string        `yaml:"id_column"`
	TextColumn     string        `yaml:"text_column"`
	MetadataColumn string        `yaml:"metadata_column"` // optional jsonb column
	Language       string        `yaml:"language"`        // text search configuration
	Filter         *ConfigFilter `yaml:"filter"`          // optional filter (raw SQL or structured)
}

// CatalogConfig selects where model metrics come from.
type CatalogConfig struct {
	Type  string `yaml:"type"` // memory, file, artificialanalysis or postgres
	Path  string `yaml:"path"` // YAML catalog or ArtificialAnalysis JSON payload
	URL   string `yaml:"url"`  // ArtificialAnalysis API base URL, fetched when path is empty
	Table string `yaml:"table"`
}

// RankingConfig holds the criterion registry and ranking defaults.
type RankingConfig struct {
	DefaultAlgorithm string            `yaml:"default_algorithm"`
	WeightTolerance  float64           `yaml:"weight_tolerance"`
	Criteria         []CriterionConfig `yaml:"criteria"`
}

// CriterionConfig registers a ranking criterion.
type CriterionConfig struct {
	Name      string  `yaml:"name"`      // catalog metric name
	Direction string  `yaml:"direction"` // benefit or cost
	Weight    float64 `yaml:"weight"`    // default weight
}

// CacheConfig controls the response and ranking cache.
type CacheConfig struct {
	Enabled         *bool         `yaml:"enabled"`
	TTL             time.Duration `yaml:"ttl"`
	CleanupInterval time.Duration `yaml:"cleanup_interval"`
}

// FilterCondition represents a single filter condition.
type FilterCondition struct {
	Column   string `json:"column" yaml:"column"`
	Operator string `json:"operator" yaml:"operator"`
	Value    any    `json:"value" yaml:"value"`
}

// Filter represents a collection of conditions with logical operators.
type Filter struct {
	Conditions []FilterCondition `json:"conditions" yaml:"conditions"`
	Logic      string            `json:"logic,omitempty" yaml:"logic,omitempty"` // "AND" or "OR", default "AND"
}

// ConfigFilter restricts a table. It can be either a raw SQL string (for
// admin use) or a structured Filter.
type ConfigFilter struct {
	RawSQL     string
	Structured *Filter
}

// UnmarshalYAML allows a filter to be specified as either a string or a
// structured object.
func (cf *ConfigFilter) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err == nil {
		cf.RawSQL = s
		return nil
	}

	var f Filter
	if err := unmarshal(&f); err == nil {
		cf.Structured = &f
		return nil
	}

	return fmt.Errorf("filter must be a string or structured filter object")
}

// Enabled reports the value of an optional toggle, or def when unset.
func Enabled(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Pipeline: PipelineConfig{
			ContextWindow:          8000,
			TopN:                   5,
			RetrievalLimit:         10,
			SimilarityThreshold:    0.2,
			MaxRewrites:            3,
			RewriteThresholdFactor: 1.1,
			Timeouts: StageTimeouts{
				Retrieve: 10 * time.Second,
				Rerank:   5 * time.Second,
				Assemble: 2 * time.Second,
				Generate: 90 * time.Second,
				Validate: 5 * time.Second,
			},
		},
		Generation: GenerationConfig{
			Timeout:   30 * time.Second,
			MaxTokens: 1024,
		},
		KnowledgeBase: KnowledgeBaseConfig{Type: SourceMemory},
		Catalog:       CatalogConfig{Type: SourceMemory},
		Ranking: RankingConfig{
			DefaultAlgorithm: "weighted_score",
			WeightTolerance:  1e-6,
		},
		Cache: CacheConfig{
			TTL:             15 * time.Minute,
			CleanupInterval: 5 * time.Minute,
		},
	}
}
