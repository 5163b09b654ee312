//-------------------------------------------------------------------------
//
// pgEdge Model Discovery
//
// Copyright (c) 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestLoader(cfg APIKeysConfig, home string) *APIKeyLoader {
	l := NewAPIKeyLoader(cfg)
	l.homeDir = func() (string, error) { return home, nil }
	return l
}

func TestAPIKeyLoader_ConfiguredPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "anthropic.key")
	if err := os.WriteFile(path, []byte("  sk-ant-test\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvAnthropicAPIKey, "from-env")

	key, err := newTestLoader(APIKeysConfig{Anthropic: path}, dir).LoadAnthropicKey()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if key != "sk-ant-test" {
		t.Errorf("expected key from file, got %q", key)
	}
}

func TestAPIKeyLoader_EnvThenHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv(EnvOpenAIAPIKey, "sk-env")

	l := newTestLoader(APIKeysConfig{}, home)
	key, err := l.LoadOpenAIKey()
	if err != nil || key != "sk-env" {
		t.Fatalf("expected env key, got %q (%v)", key, err)
	}

	t.Setenv(EnvOpenAIAPIKey, "")
	if err := os.WriteFile(filepath.Join(home, DefaultOpenAIKeyFile), []byte("sk-home"), 0o600); err != nil {
		t.Fatal(err)
	}
	key, err = l.LoadOpenAIKey()
	if err != nil || key != "sk-home" {
		t.Fatalf("expected home file key, got %q (%v)", key, err)
	}
}

func TestAPIKeyLoader_Missing(t *testing.T) {
	t.Setenv(EnvArtificialAnalysisAPIKey, "")

	_, err := newTestLoader(APIKeysConfig{}, t.TempDir()).LoadArtificialAnalysisKey()
	if err == nil || !strings.Contains(err.Error(), EnvArtificialAnalysisAPIKey) {
		t.Fatalf("expected missing key error naming the env var, got %v", err)
	}
}

func TestAPIKeyLoader_EmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.key")
	if err := os.WriteFile(path, []byte("\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := newTestLoader(APIKeysConfig{OpenAI: path}, dir).LoadOpenAIKey()
	if err == nil || !strings.Contains(err.Error(), "empty") {
		t.Fatalf("expected empty file error, got %v", err)
	}
}

func TestAPIKeyLoader_LoadRequiredKeys(t *testing.T) {
	t.Setenv(EnvAnthropicAPIKey, "sk-ant")
	t.Setenv(EnvOpenAIAPIKey, "")

	cfg := DefaultConfig()
	cfg.Generation.Backends = []BackendConfig{
		{Name: "claude", Provider: "anthropic", Model: "claude-sonnet-4-20250514"},
		{Name: "local", Provider: "ollama", Model: "llama3.2"},
	}

	keys, err := newTestLoader(APIKeysConfig{}, t.TempDir()).LoadRequiredKeys(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if keys.Anthropic != "sk-ant" || keys.OpenAI != "" {
		t.Errorf("unexpected keys: %+v", keys)
	}

	cfg.Generation.Backends = append(cfg.Generation.Backends, BackendConfig{Name: "gpt", Provider: "openai", Model: "gpt-4o"})
	if _, err := newTestLoader(APIKeysConfig{}, t.TempDir()).LoadRequiredKeys(cfg); err == nil {
		t.Error("expected an error for the missing OpenAI key")
	}
}
