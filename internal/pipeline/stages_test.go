//-------------------------------------------------------------------------
//
// pgEdge Model Discovery
//
// Copyright (c) 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgEdge/pgedge-discovery/internal/assembly"
	"github.com/pgEdge/pgedge-discovery/internal/generation"
	"github.com/pgEdge/pgedge-discovery/internal/intent"
	"github.com/pgEdge/pgedge-discovery/internal/knowledge"
	"github.com/pgEdge/pgedge-discovery/internal/llm"
	"github.com/pgEdge/pgedge-discovery/internal/rerank"
	"github.com/pgEdge/pgedge-discovery/internal/retrieval"
	"github.com/pgEdge/pgedge-discovery/internal/validation"
)

func corpus() *knowledge.Memory {
	return knowledge.NewMemory(
		knowledge.Document{ID: "gpt-4o", Content: "GPT-4o is a multimodal model from OpenAI. It supports vision and audio input.",
			Metadata: map[string]any{"model": "gpt-4o"}},
		knowledge.Document{ID: "claude-sonnet", Content: "Claude Sonnet has a 200k token context window and strong coding results.",
			Metadata: map[string]any{"model": "claude-sonnet"}},
		knowledge.Document{ID: "llama", Content: "Llama 3 is an open weights model that runs locally.",
			Metadata: map[string]any{"model": "llama-3"}},
	)
}

// recorder is a generation backend that captures the prompts it sees.
type recorder struct {
	mu      sync.Mutex
	prompts []generation.Prompt
	reply   string
	err     error
}

func (r *recorder) Invoke(_ context.Context, p generation.Prompt, _ generation.Descriptor) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prompts = append(r.prompts, p)
	return r.reply, r.err
}

func (r *recorder) calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.prompts)
}

func standardExecutor(t *testing.T, members ...generation.Member) *Executor {
	t.Helper()
	chain, err := generation.NewChain(nil, members...)
	require.NoError(t, err)

	stages, err := StandardStages(Components{
		Retriever: retrieval.New(corpus(), retrieval.Config{Threshold: 0, MaxRewrites: 3, GenerateRewrites: true}),
		Reranker:  rerank.New(rerank.Config{Limit: 5}),
		Assembler: assembly.New(assembly.Config{ContextWindow: 2000}),
		Generator: chain,
		Validator: validation.New(validation.Config{Citations: true}),
		Timeouts: Timeouts{
			Retrieve: time.Second,
			Rerank:   time.Second,
			Assemble: time.Second,
			Generate: 5 * time.Second,
			Validate: time.Second,
		},
	})
	require.NoError(t, err)
	return newExecutor(t, stages...)
}

func member(name string, priority int, b generation.Backend) generation.Member {
	return generation.Member{
		Descriptor: generation.Descriptor{Name: name, Provider: "test", Priority: priority, Timeout: time.Second},
		Backend:    b,
	}
}

func TestStandardStages_RequiresCore(t *testing.T) {
	_, err := StandardStages(Components{})
	assert.Error(t, err)
}

func TestStandard_FallbackChain(t *testing.T) {
	p1 := &recorder{err: &llm.Error{Code: llm.ErrCodeUnavailable, Message: "down"}}
	p2 := &recorder{reply: "GPT-4o supports vision and audio input."}
	e := standardExecutor(t, member("P2", 2, p2), member("P1", 1, p1))

	resp := e.Run(context.Background(), Query{Text: "Which model supports vision input?"}, generalResolution())
	require.Nil(t, resp.Error)
	assert.Equal(t, "P2", resp.Metadata.GenerationModel)
	assert.Equal(t, 1, p1.calls())
	assert.Equal(t, 1, p2.calls())
	assert.Equal(t, []string{StageRetrieve, StageRerank, StageAssemble, StageGenerate, StageValidate},
		resp.Metadata.StagesCompleted)
	assert.Contains(t, resp.Sources, "gpt-4o")
	assert.Contains(t, resp.Answer, "[gpt-4o]")
	assert.Greater(t, resp.Confidence, 0.0)
	assert.LessOrEqual(t, resp.Confidence, 1.0)
	require.NotNil(t, resp.Metadata.Quality)
	require.NotNil(t, resp.Metadata.Risk)
}

func TestStandard_AllBackendsFail(t *testing.T) {
	p1 := &recorder{err: errors.New("no")}
	p2 := &recorder{err: &llm.Error{Code: llm.ErrCodeRateLimit, Message: "slow down"}}
	e := standardExecutor(t, member("P1", 1, p1), member("P2", 2, p2))

	resp := e.Run(context.Background(), Query{Text: "Which model supports vision input?"}, generalResolution())
	require.NotNil(t, resp.Error)
	assert.Equal(t, StageGenerate, resp.Error.Stage)
	assert.Equal(t, CodeAllBackendsFailed, resp.Error.Code)
	assert.Equal(t, Apology, resp.Answer)
	assert.Equal(t, 0.0, resp.Confidence)
	assert.NotContains(t, resp.Metadata.StagesCompleted, StageValidate)
}

func TestStandard_EmptyRetrievalDegrades(t *testing.T) {
	backend := &recorder{reply: generation.NoAnswer}
	e := standardExecutor(t, member("only", 1, backend))

	resp := e.Run(context.Background(), Query{Text: "postgres replication lag"}, generalResolution())
	require.Nil(t, resp.Error)
	assert.NotEmpty(t, resp.Metadata.Warnings)
	require.Equal(t, 1, backend.calls())
	assert.Contains(t, backend.prompts[0].System, generation.InsufficientContext)
	assert.Empty(t, backend.prompts[0].Context)
	assert.GreaterOrEqual(t, resp.Confidence, 0.0)
	assert.LessOrEqual(t, resp.Confidence, 1.0)
}

func TestStandard_SkipOptional(t *testing.T) {
	e := standardExecutor(t, member("only", 1, &recorder{reply: "Claude Sonnet has a 200k context window."}))

	resp := e.Run(context.Background(), Query{
		Text:    "claude context window",
		Options: Options{SkipOptional: true, Limit: 1},
	}, generalResolution())
	require.Nil(t, resp.Error)
	assert.Equal(t, []string{StageRetrieve, StageAssemble, StageGenerate}, resp.Metadata.StagesCompleted)
	assert.Nil(t, resp.Metadata.Quality)
	assert.Equal(t, []string{"claude-sonnet"}, resp.Sources)
}

func TestStandard_HistoryReachesBackend(t *testing.T) {
	backend := &recorder{reply: "Llama 3 runs locally."}
	e := standardExecutor(t, member("only", 1, backend))
	history := []llm.Message{
		{Role: llm.RoleUser, Content: "Tell me about open weights models"},
		{Role: llm.RoleAssistant, Content: "Llama 3 is one."},
	}

	resp := e.Run(context.Background(), Query{Text: "Can it run locally?", History: history}, generalResolution())
	require.Nil(t, resp.Error)
	require.Equal(t, 1, backend.calls())
	assert.Equal(t, history, backend.prompts[0].History)
	assert.Equal(t, "Can it run locally?", backend.prompts[0].Query)
}

func TestStandard_ConfidenceAlwaysBounded(t *testing.T) {
	e := standardExecutor(t,
		member("flaky", 1, &recorder{err: errors.New("flaky")}),
		member("extractive", 2, generation.NewExtractive()),
	)
	queries := []string{
		"",
		"Which model supports vision input?",
		"compare claude and gpt-4o",
		"something entirely unrelated",
	}
	for _, name := range intent.All {
		res := intent.Resolution{Intent: name, Strategy: intent.Default(name)}
		for _, q := range queries {
			resp := e.Run(context.Background(), Query{Text: q}, res)
			assert.GreaterOrEqual(t, resp.Confidence, 0.0, q)
			assert.LessOrEqual(t, resp.Confidence, 1.0, q)
		}
	}
}
