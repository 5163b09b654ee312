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
)

// Environment variable names for API keys.
const (
	EnvAnthropicAPIKey          = "ANTHROPIC_API_KEY"
	EnvOpenAIAPIKey             = "OPENAI_API_KEY"
	EnvArtificialAnalysisAPIKey = "ARTIFICIALANALYSIS_API_KEY"
)

// Default API key file paths (relative to home directory).
const (
	DefaultAnthropicKeyFile          = ".anthropic-api-key"
	DefaultOpenAIKeyFile             = ".openai-api-key"
	DefaultArtificialAnalysisKeyFile = ".artificialanalysis-api-key"
)

// LoadedKeys holds all loaded API keys.
type LoadedKeys struct {
	Anthropic          string
	OpenAI             string
	ArtificialAnalysis string
}

// APIKeyLoader handles loading API keys from configured paths, environment
// variables, or default file locations.
type APIKeyLoader struct {
	config  APIKeysConfig
	homeDir func() (string, error)
}

// NewAPIKeyLoader creates a new API key loader with the given configuration.
func NewAPIKeyLoader(cfg APIKeysConfig) *APIKeyLoader {
	return &APIKeyLoader{config: cfg, homeDir: os.UserHomeDir}
}

// LoadAnthropicKey loads the Anthropic API key.
func (l *APIKeyLoader) LoadAnthropicKey() (string, error) {
	return l.loadKey(l.config.Anthropic, EnvAnthropicAPIKey, DefaultAnthropicKeyFile, "Anthropic")
}

// LoadOpenAIKey loads the OpenAI API key.
func (l *APIKeyLoader) LoadOpenAIKey() (string, error) {
	return l.loadKey(l.config.OpenAI, EnvOpenAIAPIKey, DefaultOpenAIKeyFile, "OpenAI")
}

// LoadArtificialAnalysisKey loads the ArtificialAnalysis API key.
func (l *APIKeyLoader) LoadArtificialAnalysisKey() (string, error) {
	return l.loadKey(l.config.ArtificialAnalysis, EnvArtificialAnalysisAPIKey,
		DefaultArtificialAnalysisKeyFile, "ArtificialAnalysis")
}

// loadKey loads an API key with the following priority:
// 1. Configured file path (if specified in config)
// 2. Environment variable
// 3. Default file location (~/.provider-api-key)
func (l *APIKeyLoader) loadKey(configPath, envVar, defaultFile, providerName string) (string, error) {
	if configPath != "" {
		return readKeyFile(expandPath(configPath), providerName)
	}

	if key := os.Getenv(envVar); key != "" {
		return key, nil
	}

	homeDir, err := l.homeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	path := filepath.Join(homeDir, defaultFile)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return "", fmt.Errorf(
			"%s API key not found: set %s environment variable or create %s",
			providerName, envVar, path)
	}

	return readKeyFile(path, providerName)
}

// readKeyFile reads an API key from a file.
func readKeyFile(path, providerName string) (string, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", fmt.Errorf("%s API key file not found: %s", providerName, path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s API key: %w", providerName, err)
	}

	key := strings.TrimSpace(string(data))
	if key == "" {
		return "", fmt.Errorf("%s API key file is empty: %s", providerName, path)
	}

	return key, nil
}

// LoadRequiredKeys loads only the API keys the configuration needs: those
// of the generation backends in use, and ArtificialAnalysis when the
// catalog is fetched from its API.
func (l *APIKeyLoader) LoadRequiredKeys(cfg *Config) (*LoadedKeys, error) {
	keys := &LoadedKeys{}
	needed := make(map[string]bool)
	for _, b := range cfg.Generation.Backends {
		needed[b.Provider] = true
	}

	if needed["anthropic"] {
		key, err := l.LoadAnthropicKey()
		if err != nil {
			return nil, err
		}
		keys.Anthropic = key
	}

	if needed["openai"] {
		key, err := l.LoadOpenAIKey()
		if err != nil {
			return nil, err
		}
		keys.OpenAI = key
	}

	if cfg.Catalog.Type == SourceArtificialAnalysis && cfg.Catalog.Path == "" {
		key, err := l.LoadArtificialAnalysisKey()
		if err != nil {
			return nil, err
		}
		keys.ArtificialAnalysis = key
	}

	// Ollama and the extractive backend don't require an API key

	return keys, nil
}
