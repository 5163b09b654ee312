//-------------------------------------------------------------------------
//
// pgEdge Model Discovery
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package ollama provides an Ollama backend for local inference.
package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/pgEdge/pgedge-discovery/internal/llm"
)

const (
	defaultBaseURL = "http://localhost:11434"
	defaultModel   = "llama3.2"
	defaultTimeout = 120 * time.Second // Ollama can be slower for large models
)

// Provider implements llm.CompletionProvider against /api/chat.
type Provider struct {
	httpClient  *http.Client
	baseURL     string
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

// WithMaxTokens sets the default number of tokens to predict.
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

// New creates an Ollama provider.
func New(opts ...Option) *Provider {
	p := &Provider{
		httpClient:  &http.Client{Timeout: defaultTimeout},
		baseURL:     defaultBaseURL,
		model:       defaultModel,
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
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Options  chatOptions   `json:"options"`
}

type chatOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type chatResponse struct {
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	Done            bool   `json:"done"`
	DoneReason      string `json:"done_reason"`
	PromptEvalCount int    `json:"prompt_eval_count"`
	EvalCount       int    `json:"eval_count"`
}

func errorMessage(body []byte) string {
	var e struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &e) != nil {
		return ""
	}
	return e.Error
}

// Complete generates a completion.
func (p *Provider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	chatReq := chatRequest{
		Model:    p.model,
		Messages: buildMessages(req),
		Options: chatOptions{
			Temperature: p.temperature,
			NumPredict:  p.maxTokens,
		},
	}
	if req.MaxTokens > 0 {
		chatReq.Options.NumPredict = req.MaxTokens
	}
	if req.Temperature >= 0 {
		chatReq.Options.Temperature = req.Temperature
	}

	var resp chatResponse
	if err := llm.PostJSON(ctx, p.httpClient, p.baseURL+"/api/chat", nil, chatReq, &resp, errorMessage); err != nil {
		return nil, err
	}

	return &llm.CompletionResponse{
		Content:      resp.Message.Content,
		FinishReason: resp.DoneReason,
		Usage: llm.TokenUsage{
			PromptTokens:     resp.PromptEvalCount,
			CompletionTokens: resp.EvalCount,
			TotalTokens:      resp.PromptEvalCount + resp.EvalCount,
		},
	}, nil
}

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
