//-------------------------------------------------------------------------
//
// pgEdge Model Discovery
//
// Copyright (c) 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package generation produces answers from assembled context by walking an
// ordered chain of generation backends.
package generation

import (
	"context"
	"time"

	"github.com/pgEdge/pgedge-discovery/internal/llm"
)

// Descriptor identifies a backend and the parameters it is invoked with.
type Descriptor struct {
	Name        string        `json:"name"`
	Provider    string        `json:"provider"`
	Model       string        `json:"model"`
	Temperature float64       `json:"temperature"` // negative uses the backend default
	MaxTokens   int           `json:"max_tokens"`
	Priority    int           `json:"priority"` // ascending, lower is tried first
	Timeout     time.Duration `json:"timeout"`
}

// Prompt is everything a backend needs to answer.
type Prompt struct {
	System  string
	Context string
	Query   string
	History []llm.Message
}

// Backend turns a prompt into answer text.
type Backend interface {
	Invoke(ctx context.Context, prompt Prompt, d Descriptor) (string, error)
}

// BackendFunc adapts a plain function to the Backend interface.
type BackendFunc func(ctx context.Context, prompt Prompt, d Descriptor) (string, error)

// Invoke calls f.
func (f BackendFunc) Invoke(ctx context.Context, prompt Prompt, d Descriptor) (string, error) {
	return f(ctx, prompt, d)
}

// ProviderBackend invokes an LLM completion provider.
type ProviderBackend struct {
	Provider llm.CompletionProvider
}

// Invoke sends the prompt as a completion request.
func (b ProviderBackend) Invoke(ctx context.Context, prompt Prompt, d Descriptor) (string, error) {
	messages := make([]llm.Message, 0, len(prompt.History)+1)
	messages = append(messages, prompt.History...)
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: prompt.Query})

	resp, err := b.Provider.Complete(ctx, llm.CompletionRequest{
		SystemPrompt: prompt.System,
		Context:      prompt.Context,
		Messages:     messages,
		MaxTokens:    d.MaxTokens,
		Temperature:  d.Temperature,
	})
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}
