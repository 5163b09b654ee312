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
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// ConfigFileName is the default configuration file name.
	ConfigFileName = "pgedge-discovery.yaml"

	// SystemConfigPath is the system-wide configuration path.
	SystemConfigPath = "/etc/pgedge/" + ConfigFileName
)

// Load loads the configuration from the specified path, or searches
// default locations if path is empty.
//
// Search order:
//  1. Explicit path (if provided)
//  2. /etc/pgedge/pgedge-discovery.yaml
//  3. pgedge-discovery.yaml in the binary's directory
func Load(path string) (*Config, error) {
	configPath, err := findConfigFile(path)
	if err != nil {
		return nil, err
	}

	return loadFromFile(configPath)
}

// findConfigFile finds the configuration file using the search order.
func findConfigFile(explicitPath string) (string, error) {
	if explicitPath != "" {
		if _, err := os.Stat(explicitPath); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicitPath)
		}
		return explicitPath, nil
	}

	searchPaths := []string{
		SystemConfigPath,
		getBinaryDirConfigPath(),
	}

	for _, p := range searchPaths {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	return "", fmt.Errorf("no configuration file found; searched: %v", searchPaths)
}

// getBinaryDirConfigPath returns the path to config file in the binary's
// directory.
func getBinaryDirConfigPath() string {
	executable, err := os.Executable()
	if err != nil {
		return ""
	}

	// Resolve symlinks to get the actual binary location
	executable, err = filepath.EvalSymlinks(executable)
	if err != nil {
		return ""
	}

	return filepath.Join(filepath.Dir(executable), ConfigFileName)
}

// loadFromFile loads and parses the configuration from a YAML file.
// Relative data file paths are resolved against the file's directory.
func loadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	cfg.resolvePaths(filepath.Dir(path))
	return cfg, nil
}

// Parse builds a validated configuration from YAML on top of the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) resolvePaths(dir string) {
	resolve := func(p string) string {
		if p == "" || filepath.IsAbs(p) || strings.HasPrefix(p, "~/") {
			return p
		}
		return filepath.Join(dir, p)
	}
	c.KnowledgeBase.Path = resolve(c.KnowledgeBase.Path)
	c.Catalog.Path = resolve(c.Catalog.Path)
}

// DefaultCriteria is the criterion registry used when none is configured.
// Names match the catalog's metric names.
func DefaultCriteria() []CriterionConfig {
	return []CriterionConfig{
		{Name: "intelligence_index", Direction: "benefit", Weight: 0.3},
		{Name: "coding_index", Direction: "benefit", Weight: 0.2},
		{Name: "math_index", Direction: "benefit", Weight: 0.1},
		{Name: "price_blended", Direction: "cost", Weight: 0.2},
		{Name: "output_speed", Direction: "benefit", Weight: 0.1},
		{Name: "time_to_first_token", Direction: "cost", Weight: 0.1},
	}
}

// applyDefaults fills values the file left unset.
func applyDefaults(cfg *Config) {
	gen := &cfg.Generation
	if len(gen.Backends) == 0 {
		gen.Backends = []BackendConfig{{Name: "extractive", Provider: "extractive"}}
	}
	for i := range gen.Backends {
		b := &gen.Backends[i]
		b.Provider = strings.ToLower(b.Provider)
		if b.Name == "" {
			b.Name = b.Provider
			if b.Model != "" {
				b.Name += "/" + b.Model
			}
		}
		if b.Timeout == 0 {
			b.Timeout = gen.Timeout
		}
		if b.MaxTokens == 0 {
			b.MaxTokens = gen.MaxTokens
		}
	}

	kb := &cfg.KnowledgeBase
	kb.Type = strings.ToLower(kb.Type)
	if kb.Table.IDColumn == "" {
		kb.Table.IDColumn = "id"
	}
	if kb.Table.Language == "" {
		kb.Table.Language = "english"
	}

	cfg.Catalog.Type = strings.ToLower(cfg.Catalog.Type)
	if cfg.Catalog.Type == SourceArtificialAnalysis && cfg.Catalog.Path == "" && cfg.Catalog.URL == "" {
		cfg.Catalog.URL = "https://artificialanalysis.ai/api/v2"
	}

	if len(cfg.Ranking.Criteria) == 0 {
		cfg.Ranking.Criteria = DefaultCriteria()
	}
	for i := range cfg.Ranking.Criteria {
		c := &cfg.Ranking.Criteria[i]
		c.Direction = strings.ToLower(c.Direction)
		if c.Direction == "" {
			c.Direction = "benefit"
		}
	}

	if cfg.Cache.Enabled == nil {
		enabled := true
		cfg.Cache.Enabled = &enabled
	}

	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "prefer"
	}
}
