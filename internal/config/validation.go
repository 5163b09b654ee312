//-------------------------------------------------------------------------
//
// pgEdge Model Discovery
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pgEdge/pgedge-discovery/internal/intent"
)

// Valid option values.
var (
	validProviders  = []string{"anthropic", "openai", "ollama", "extractive"}
	validAlgorithms = []string{"weighted_score", "topsis", "pareto", "ahp", "consensus"}
	validLogLevels  = []string{"debug", "info", "warn", "error"}
	validLogFormats = []string{"text", "json"}
)

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(homeDir, path[2:])
	}
	return path
}

// ValidationError represents a single configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}

	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

func (e *ValidationErrors) add(field, format string, args ...any) {
	*e = append(*e, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
}

// Validate checks the configuration for errors and returns all validation
// errors found.
func (c *Config) Validate() error {
	var errs ValidationErrors

	c.validateLogging(&errs)
	c.validatePipeline(&errs)
	c.validateGeneration(&errs)
	c.validateStrategies(&errs)
	c.validateSources(&errs)
	c.validateRanking(&errs)
	c.validateCache(&errs)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (c *Config) validateLogging(errs *ValidationErrors) {
	if c.Logging.Level != "" && !slices.Contains(validLogLevels, strings.ToLower(c.Logging.Level)) {
		errs.add("logging.level", "must be one of: %s", strings.Join(validLogLevels, ", "))
	}
	if c.Logging.Format != "" && !slices.Contains(validLogFormats, strings.ToLower(c.Logging.Format)) {
		errs.add("logging.format", "must be one of: %s", strings.Join(validLogFormats, ", "))
	}
}

func (c *Config) validatePipeline(errs *ValidationErrors) {
	p := c.Pipeline
	if p.ContextWindow < 64 {
		errs.add("pipeline.context_window", "must be at least 64")
	}
	if p.TopN < 1 {
		errs.add("pipeline.top_n", "must be positive")
	}
	if p.RetrievalLimit < 1 {
		errs.add("pipeline.retrieval_limit", "must be positive")
	}
	if p.SimilarityThreshold < 0 || p.SimilarityThreshold > 1 {
		errs.add("pipeline.similarity_threshold", "must be between 0 and 1")
	}
	if p.MaxRewrites < 0 || p.MaxRewrites > 3 {
		errs.add("pipeline.max_rewrites", "must be between 0 and 3")
	}
	if p.RewriteLimit < 0 {
		errs.add("pipeline.rewrite_limit", "must be non-negative")
	}
	if p.RewriteThresholdFactor <= 0 {
		errs.add("pipeline.rewrite_threshold_factor", "must be positive")
	}

	timeouts := map[string]int64{
		"retrieve": int64(p.Timeouts.Retrieve),
		"rerank":   int64(p.Timeouts.Rerank),
		"assemble": int64(p.Timeouts.Assemble),
		"generate": int64(p.Timeouts.Generate),
		"validate": int64(p.Timeouts.Validate),
	}
	for _, stage := range []string{"retrieve", "rerank", "assemble", "generate", "validate"} {
		if timeouts[stage] <= 0 {
			errs.add("pipeline.timeouts."+stage, "must be positive")
		}
	}
}

func (c *Config) validateGeneration(errs *ValidationErrors) {
	if c.Generation.Timeout <= 0 {
		errs.add("generation.timeout", "must be positive")
	}

	names := make(map[string]bool)
	for i, b := range c.Generation.Backends {
		prefix := fmt.Sprintf("generation.backends[%d]", i)
		if names[b.Name] {
			errs.add(prefix+".name", "duplicate backend name: %s", b.Name)
		}
		names[b.Name] = true

		if !slices.Contains(validProviders, b.Provider) {
			errs.add(prefix+".provider", "must be one of: %s", strings.Join(validProviders, ", "))
		} else if b.Provider != "extractive" && b.Model == "" {
			errs.add(prefix+".model", "required")
		}
		if b.Temperature != nil && (*b.Temperature < 0 || *b.Temperature > 2) {
			errs.add(prefix+".temperature", "must be between 0 and 2")
		}
		if b.MaxTokens < 0 {
			errs.add(prefix+".max_tokens", "must be non-negative")
		}
		if b.Timeout <= 0 {
			errs.add(prefix+".timeout", "must be positive")
		}
	}
}

func (c *Config) validateStrategies(errs *ValidationErrors) {
	for name, s := range c.Strategies {
		prefix := "strategies." + name
		if _, err := intent.Parse(name); err != nil {
			errs.add(prefix, "unknown intent")
			continue
		}
		if s.RetrievalWeight < 0 || s.RetrievalWeight > 1 {
			errs.add(prefix+".retrieval_weight", "must be between 0 and 1")
		}
		if s.GenerationWeight < 0 || s.GenerationWeight > 1 {
			errs.add(prefix+".generation_weight", "must be between 0 and 1")
		}
		if s.RetrievalWeight+s.GenerationWeight == 0 {
			errs.add(prefix, "weights must not both be zero")
		}
	}
}

func (c *Config) validateSources(errs *ValidationErrors) {
	usesDatabase := false

	switch c.KnowledgeBase.Type {
	case SourceMemory:
	case SourcePostgres:
		usesDatabase = true
		if c.KnowledgeBase.Table.Table == "" {
			errs.add("knowledge_base.table.table", "required")
		}
		if c.KnowledgeBase.Table.TextColumn == "" {
			errs.add("knowledge_base.table.text_column", "required")
		}
	default:
		errs.add("knowledge_base.type", "must be one of: memory, postgres")
	}

	switch c.Catalog.Type {
	case SourceMemory:
	case SourceFile:
		if c.Catalog.Path == "" {
			errs.add("catalog.path", "required for file catalogs")
		}
	case SourceArtificialAnalysis:
	case SourcePostgres:
		usesDatabase = true
		if c.Catalog.Table == "" {
			errs.add("catalog.table", "required")
		}
	default:
		errs.add("catalog.type", "must be one of: memory, file, artificialanalysis, postgres")
	}

	if usesDatabase {
		c.validateDatabase(errs)
	}
}

func (c *Config) validateDatabase(errs *ValidationErrors) {
	db := c.Database
	if db.Host == "" {
		errs.add("database.host", "required")
	}
	if db.Database == "" {
		errs.add("database.database", "required")
	}
	if db.Port < 1 || db.Port > 65535 {
		errs.add("database.port", "must be between 1 and 65535")
	}
	if db.MaxConns < 0 {
		errs.add("database.max_conns", "must not be negative")
	}

	validSSLModes := []string{"disable", "allow", "prefer", "require", "verify-ca", "verify-full"}
	if db.SSLMode != "" && !slices.Contains(validSSLModes, db.SSLMode) {
		errs.add("database.ssl_mode", "must be one of: %s", strings.Join(validSSLModes, ", "))
	}
}

func (c *Config) validateRanking(errs *ValidationErrors) {
	r := c.Ranking
	if !slices.Contains(validAlgorithms, r.DefaultAlgorithm) {
		errs.add("ranking.default_algorithm", "must be one of: %s", strings.Join(validAlgorithms, ", "))
	}
	if r.WeightTolerance <= 0 || r.WeightTolerance >= 0.5 {
		errs.add("ranking.weight_tolerance", "must be between 0 and 0.5")
	}

	names := make(map[string]bool)
	sum := 0.0
	for i, cr := range r.Criteria {
		prefix := fmt.Sprintf("ranking.criteria[%d]", i)
		if cr.Name == "" {
			errs.add(prefix+".name", "required")
		} else if names[cr.Name] {
			errs.add(prefix+".name", "duplicate criterion: %s", cr.Name)
		}
		names[cr.Name] = true
		if cr.Direction != "benefit" && cr.Direction != "cost" {
			errs.add(prefix+".direction", "must be one of: benefit, cost")
		}
		if cr.Weight < 0 {
			errs.add(prefix+".weight", "must be non-negative")
		}
		sum += cr.Weight
	}
	if math.Abs(sum-1) > r.WeightTolerance {
		errs.add("ranking.criteria", "weights must sum to 1 (got %g)", sum)
	}
}

func (c *Config) validateCache(errs *ValidationErrors) {
	if !Enabled(c.Cache.Enabled, true) {
		return
	}
	if c.Cache.TTL <= 0 {
		errs.add("cache.ttl", "must be positive")
	}
	if c.Cache.CleanupInterval < 0 {
		errs.add("cache.cleanup_interval", "must be non-negative")
	}
}
