//-------------------------------------------------------------------------
//
// pgEdge Model Discovery
//
// Copyright (c) 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package generation

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgEdge/pgedge-discovery/internal/intent"
	"github.com/pgEdge/pgedge-discovery/internal/llm"
)

// MockCompletionProvider is a mock implementation of llm.CompletionProvider.
type MockCompletionProvider struct {
	CompleteFunc func(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error)
}

func (m *MockCompletionProvider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	return m.CompleteFunc(ctx, req)
}

func (m *MockCompletionProvider) ModelName() string {
	return "mock-model"
}

func TestProviderBackend_Invoke(t *testing.T) {
	var got llm.CompletionRequest
	b := ProviderBackend{Provider: &MockCompletionProvider{
		CompleteFunc: func(_ context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
			got = req
			return &llm.CompletionResponse{Content: "answer"}, nil
		},
	}}

	text, err := b.Invoke(context.Background(), Prompt{
		System:  "sys",
		Context: "ctx",
		Query:   "which model?",
		History: []llm.Message{{Role: llm.RoleUser, Content: "hi"}, {Role: llm.RoleAssistant, Content: "hello"}},
	}, Descriptor{MaxTokens: 300, Temperature: 0.2})
	require.NoError(t, err)
	assert.Equal(t, "answer", text)

	assert.Equal(t, "sys", got.SystemPrompt)
	assert.Equal(t, "ctx", got.Context)
	assert.Equal(t, 300, got.MaxTokens)
	assert.Equal(t, 0.2, got.Temperature)
	require.Len(t, got.Messages, 3)
	assert.Equal(t, llm.Message{Role: llm.RoleUser, Content: "which model?"}, got.Messages[2])
}

func TestProviderBackend_Error(t *testing.T) {
	b := ProviderBackend{Provider: &MockCompletionProvider{
		CompleteFunc: func(context.Context, llm.CompletionRequest) (*llm.CompletionResponse, error) {
			return nil, llm.StatusError(429, "rate limited")
		},
	}}
	_, err := b.Invoke(context.Background(), Prompt{}, Descriptor{})
	assert.Equal(t, ReasonRateLimited, Classify(err))
}

func TestExtractive(t *testing.T) {
	e := NewExtractive()
	context := "--- Document 1 (Source: claude) ---\n" +
		"Claude Sonnet has a 200k context window. It is popular for coding. Pricing is per token.\n\n" +
		"--- Document 2 (Source: llama) ---\n" +
		"Llama runs locally.\n" +
		"\n...[truncated]"

	text, err := e.Invoke(t.Context(), Prompt{Query: "How large is the Claude context window?", Context: context}, Descriptor{})
	require.NoError(t, err)
	assert.Equal(t, "Claude Sonnet has a 200k context window.", text)

	text, err = e.Invoke(t.Context(), Prompt{Query: "postgres replication", Context: context}, Descriptor{})
	require.NoError(t, err)
	assert.Equal(t, NoAnswer, text)

	text, err = e.Invoke(t.Context(), Prompt{Query: "anything", Context: ""}, Descriptor{})
	require.NoError(t, err)
	assert.Equal(t, NoAnswer, text)
}

func TestSplitSentences(t *testing.T) {
	got := splitSentences("--- Document 1 ---\nVersion 3.5 is fast. Is it cheap? Yes!\n=== gpt-4o ===\ntrailing")
	assert.Equal(t, []string{"Version 3.5 is fast.", "Is it cheap?", "Yes!", "trailing"}, got)
}

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt("q", "ctx", intent.StyleStepByStep, nil, "")
	assert.True(t, strings.HasPrefix(p.System, baseSystemPrompt))
	assert.Contains(t, p.System, "numbered steps")
	assert.NotContains(t, p.System, InsufficientContext)
	assert.Equal(t, "ctx", p.Context)

	p = BuildPrompt("q", " ", intent.StyleConcise, nil, "Custom system.")
	assert.True(t, strings.HasPrefix(p.System, "Custom system."))
	assert.Contains(t, p.System, InsufficientContext)
}
