//-------------------------------------------------------------------------
//
// pgEdge Model Discovery
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package factory creates LLM providers from backend configuration.
package factory

import (
	"fmt"
	"strings"

	"github.com/pgEdge/pgedge-discovery/internal/config"
	"github.com/pgEdge/pgedge-discovery/internal/llm"
	"github.com/pgEdge/pgedge-discovery/internal/llm/anthropic"
	"github.com/pgEdge/pgedge-discovery/internal/llm/ollama"
	"github.com/pgEdge/pgedge-discovery/internal/llm/openai"
)

// Provider constants for matching configuration values.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderOllama    = "ollama"
)

// NewCompletionProvider creates a completion provider for a backend.
func NewCompletionProvider(b config.BackendConfig, apiKeys *config.LoadedKeys) (llm.CompletionProvider, error) {
	if apiKeys == nil {
		apiKeys = &config.LoadedKeys{}
	}

	switch strings.ToLower(b.Provider) {
	case ProviderOpenAI:
		if apiKeys.OpenAI == "" {
			return nil, fmt.Errorf("OpenAI API key not configured")
		}
		opts := []openai.Option{}
		if b.Model != "" {
			opts = append(opts, openai.WithModel(b.Model))
		}
		if b.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(b.BaseURL))
		}
		if b.MaxTokens > 0 {
			opts = append(opts, openai.WithMaxTokens(b.MaxTokens))
		}
		if b.Temperature != nil {
			opts = append(opts, openai.WithTemperature(*b.Temperature))
		}
		return openai.New(apiKeys.OpenAI, opts...), nil

	case ProviderAnthropic:
		if apiKeys.Anthropic == "" {
			return nil, fmt.Errorf("Anthropic API key not configured")
		}
		opts := []anthropic.Option{}
		if b.Model != "" {
			opts = append(opts, anthropic.WithModel(b.Model))
		}
		if b.BaseURL != "" {
			opts = append(opts, anthropic.WithBaseURL(b.BaseURL))
		}
		if b.MaxTokens > 0 {
			opts = append(opts, anthropic.WithMaxTokens(b.MaxTokens))
		}
		if b.Temperature != nil {
			opts = append(opts, anthropic.WithTemperature(*b.Temperature))
		}
		return anthropic.New(apiKeys.Anthropic, opts...), nil

	case ProviderOllama:
		opts := []ollama.Option{}
		if b.Model != "" {
			opts = append(opts, ollama.WithModel(b.Model))
		}
		if b.BaseURL != "" {
			opts = append(opts, ollama.WithBaseURL(b.BaseURL))
		}
		if b.MaxTokens > 0 {
			opts = append(opts, ollama.WithMaxTokens(b.MaxTokens))
		}
		if b.Temperature != nil {
			opts = append(opts, ollama.WithTemperature(*b.Temperature))
		}
		return ollama.New(opts...), nil

	default:
		return nil, fmt.Errorf("unknown completion provider: %s", b.Provider)
	}
}
