//-------------------------------------------------------------------------
//
// pgEdge Model Discovery
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package anthropic provides an Anthropic Messages API backend.
package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/pgEdge/pgedge-discovery/internal/llm"
)

const (
	defaultBaseURL = "https://api.anthropic.com/v1"
	defaultModel   = "claude-sonnet-4-20250514"
	defaultTimeout = 60 * time.Second
	apiVersion     = "2023-06-01"
)

// Provider implements llm.CompletionProvider against /messages.
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

// WithModel sets the model.
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

// New creates an Anthropic provider.
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

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	System      string    `json:"system,omitempty"`
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

type errorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
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
	msgReq := messagesRequest{
		Model:       p.model,
		MaxTokens:   p.maxTokens,
		System:      buildSystem(req),
		Messages:    buildMessages(req),
		Temperature: p.temperature,
	}
	if req.MaxTokens > 0 {
		msgReq.MaxTokens = req.MaxTokens
	}
	if req.Temperature >= 0 {
		msgReq.Temperature = req.Temperature
	}

	headers := map[string]string{
		"x-api-key":         p.apiKey,
		"anthropic-version": apiVersion,
	}
	var resp messagesResponse
	if err := llm.PostJSON(ctx, p.httpClient, p.baseURL+"/messages", headers, msgReq, &resp, errorMessage); err != nil {
		return nil, err
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return nil, &llm.Error{Code: llm.ErrCodeModelError, Message: "no text content returned"}
	}

	return &llm.CompletionResponse{
		Content:      sb.String(),
		FinishReason: resp.StopReason,
		Usage: llm.TokenUsage{
			PromptTokens:     resp.Usage.InputTokens,
			CompletionTokens: resp.Usage.OutputTokens,
			TotalTokens:      resp.Usage.InputTokens + resp.Usage.OutputTokens,
		},
	}, nil
}

// buildSystem joins the system prompt, context and any system-role
// messages, since the Messages API takes system text out of band.
func buildSystem(req llm.CompletionRequest) string {
	var parts []string
	if req.SystemPrompt != "" {
		parts = append(parts, req.SystemPrompt)
	}
	if ctxText := llm.FormatContext(req.Context); ctxText != "" {
		parts = append(parts, ctxText)
	}
	for _, msg := range req.Messages {
		if msg.Role == llm.RoleSystem {
			parts = append(parts, msg.Content)
		}
	}
	return strings.Join(parts, "\n\n")
}

func buildMessages(req llm.CompletionRequest) []message {
	messages := make([]message, 0, len(req.Messages))
	for _, msg := range req.Messages {
		if msg.Role == llm.RoleSystem {
			continue
		}
		messages = append(messages, message{Role: msg.Role, Content: msg.Content})
	}
	return messages
}

// ModelName returns the model name.
func (p *Provider) ModelName() string {
	return p.model
}

var _ llm.CompletionProvider = (*Provider)(nil)
