//-------------------------------------------------------------------------
//
// pgEdge Model Discovery
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package openai provides an OpenAI chat completions backend. It also
// serves any OpenAI-compatible endpoint via WithBaseURL.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/pgEdge/pgedge-discovery/internal/llm"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "gpt-4o-mini"
	defaultTimeout = 60 * time.Second
)

// Provider implements llm.CompletionProvider against /chat/completions.
type Provider struct {
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	model       string
	maxTokens   int
	temperature float64
}

// Option configures the provider.
type Option func(*Provider)

// WithBaseURL sets a custom base URL.
func WithBaseURL(url string) Option {
	return func(p *Provider) { p.baseURL = url }
}

// WithModel sets the chat model.
func WithModel(model string) Option {
	return func(p *Provider) { p.model = model }
}

// WithMaxTokens sets the default max tokens.
func WithMaxTokens(tokens int) Option {
	return func(p *Provider) { p.maxTokens = tokens }
}

// WithTemperature sets the default temperature.
func WithTemperature(temp float64) Option {
	return func(p *Provider) { p.temperature = temp }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(p *Provider) { p.httpClient = client }
}

// New creates an OpenAI provider.
func New(apiKey string, opts ...Option) *Provider {
	p := &Provider{
		httpClient:  &http.Client{Timeout: defaultTimeout},
		baseURL:     defaultBaseURL,
		apiKey:      apiKey,
		model:       defaultModel,
		maxTokens:   1024,
		temperature: 0.7,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func errorMessage(body []byte) string {
	var e errorResponse
	if json.Unmarshal(body, &e) != nil {
		return ""
	}
	return e.Error.Message
}

// Complete generates a completion.
func (p *Provider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	chatReq := chatRequest{
		Model:       p.model,
		Messages:    buildMessages(req),
		MaxTokens:   p.maxTokens,
		Temperature: p.temperature,
	}
	if req.MaxTokens > 0 {
		chatReq.MaxTokens = req.MaxTokens
	}
	if req.Temperature >= 0 {
		chatReq.Temperature = req.Temperature
	}

	headers := map[string]string{"Authorization": "Bearer " + p.apiKey}
	var resp chatResponse
	if err := llm.PostJSON(ctx, p.httpClient, p.baseURL+"/chat/completions", headers, chatReq, &resp, errorMessage); err != nil {
		return nil, err
	}

	if len(resp.Choices) == 0 {
		return nil, &llm.Error{Code: llm.ErrCodeModelError, Message: "no completion returned", Err: errors.New("empty choices")}
	}

	return &llm.CompletionResponse{
		Content:      resp.Choices[0].Message.Content,
		FinishReason: resp.Choices[0].FinishReason,
		Usage: llm.TokenUsage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}

// buildMessages puts the system prompt and context first as system
// messages, followed by the conversation.
func buildMessages(req llm.CompletionRequest) []chatMessage {
	messages := make([]chatMessage, 0, len(req.Messages)+2)
	if req.SystemPrompt != "" {
		messages = append(messages, chatMessage{Role: llm.RoleSystem, Content: req.SystemPrompt})
	}
	if ctxText := llm.FormatContext(req.Context); ctxText != "" {
		messages = append(messages, chatMessage{Role: llm.RoleSystem, Content: ctxText})
	}
	for _, msg := range req.Messages {
		messages = append(messages, chatMessage{Role: msg.Role, Content: msg.Content})
	}
	return messages
}

// ModelName returns the model name.
func (p *Provider) ModelName() string {
	return p.model
}

var _ llm.CompletionProvider = (*Provider)(nil)
