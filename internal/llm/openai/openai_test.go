//-------------------------------------------------------------------------
//
// pgEdge Model Discovery
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pgEdge/pgedge-discovery/internal/llm"
)

func TestProvider_Complete(t *testing.T) {
	var received chatRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("expected path /chat/completions, got %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("unexpected authorization header %q", r.Header.Get("Authorization"))
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"choices": [{"message": {"content": "GPT-4o is multimodal."}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15}
		}`))
	}))
	defer server.Close()

	provider := New("test-key", WithBaseURL(server.URL), WithModel("gpt-4o"))

	resp, err := provider.Complete(context.Background(), llm.CompletionRequest{
		SystemPrompt: "Be brief.",
		Context:      "--- Document 1 (Source: gpt-4o) ---\nGPT-4o reads images.",
		Messages:     []llm.Message{{Role: llm.RoleUser, Content: "What is GPT-4o?"}},
		MaxTokens:    256,
		Temperature:  0,
	})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	if resp.Content != "GPT-4o is multimodal." {
		t.Errorf("unexpected content %q", resp.Content)
	}
	if resp.Usage.TotalTokens != 15 {
		t.Errorf("expected 15 total tokens, got %d", resp.Usage.TotalTokens)
	}
	if received.Model != "gpt-4o" || received.MaxTokens != 256 || received.Temperature != 0 {
		t.Errorf("unexpected request parameters: %+v", received)
	}
	if len(received.Messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(received.Messages))
	}
	if received.Messages[0].Role != "system" || received.Messages[0].Content != "Be brief." {
		t.Errorf("unexpected system message: %+v", received.Messages[0])
	}
	if received.Messages[1].Role != "system" {
		t.Errorf("expected context as a system message, got %s", received.Messages[1].Role)
	}
	if received.Messages[2].Role != "user" {
		t.Errorf("expected user message last, got %s", received.Messages[2].Role)
	}
}

func TestProvider_Complete_Defaults(t *testing.T) {
	var received chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&received)
		_, _ = w.Write([]byte(`{"choices": [{"message": {"content": "ok"}}]}`))
	}))
	defer server.Close()

	provider := New("k", WithBaseURL(server.URL), WithTemperature(0.3), WithMaxTokens(99))
	if _, err := provider.Complete(context.Background(), llm.CompletionRequest{Temperature: -1}); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if received.Temperature != 0.3 || received.MaxTokens != 99 {
		t.Errorf("expected provider defaults, got %+v", received)
	}
	if provider.ModelName() != defaultModel {
		t.Errorf("expected default model, got %s", provider.ModelName())
	}
}

func TestProvider_Complete_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"message": "Rate limit reached", "type": "requests"}}`))
	}))
	defer server.Close()

	_, err := New("k", WithBaseURL(server.URL)).Complete(context.Background(), llm.CompletionRequest{})

	var llmErr *llm.Error
	if !errors.As(err, &llmErr) {
		t.Fatalf("expected *llm.Error, got %v", err)
	}
	if llmErr.Code != llm.ErrCodeRateLimit || llmErr.Message != "Rate limit reached" {
		t.Errorf("unexpected error: %+v", llmErr)
	}
}

func TestProvider_Complete_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices": []}`))
	}))
	defer server.Close()

	_, err := New("k", WithBaseURL(server.URL)).Complete(context.Background(), llm.CompletionRequest{})
	var llmErr *llm.Error
	if !errors.As(err, &llmErr) || llmErr.Code != llm.ErrCodeModelError {
		t.Fatalf("expected model_error, got %v", err)
	}
}
