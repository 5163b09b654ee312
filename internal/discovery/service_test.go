//-------------------------------------------------------------------------
//
// pgEdge Model Discovery
//
// Copyright (c) 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package discovery

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgEdge/pgedge-discovery/internal/catalog"
	"github.com/pgEdge/pgedge-discovery/internal/config"
	"github.com/pgEdge/pgedge-discovery/internal/generation"
	"github.com/pgEdge/pgedge-discovery/internal/pipeline"
	"github.com/pgEdge/pgedge-discovery/internal/ranking"
)

func testdata(name string) string {
	return filepath.Join("..", "..", "testdata", name)
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.KnowledgeBase.Path = testdata("knowledge.yaml")
	cfg.Catalog = config.CatalogConfig{Type: config.SourceFile, Path: testdata("catalog.yaml")}
	cfg.Pipeline.SimilarityThreshold = 0
	return cfg
}

// countingBackend answers with a fixed text, or fails when err is set.
func countingBackend(calls *atomic.Int32, text string, err error) generation.Member {
	return generation.Member{
		Descriptor: generation.Descriptor{Name: "counting", Provider: "test", Temperature: -1},
		Backend: generation.BackendFunc(func(context.Context, generation.Prompt, generation.Descriptor) (string, error) {
			calls.Add(1)
			return text, err
		}),
	}
}

// countingCatalog counts catalog lookups.
type countingCatalog struct {
	catalog.Catalog
	gets atomic.Int32
}

func (c *countingCatalog) Get(ctx context.Context, ids []string) ([]catalog.Model, error) {
	c.gets.Add(1)
	return c.Catalog.Get(ctx, ids)
}

func newService(t *testing.T, opts Options) *Service {
	t.Helper()
	if opts.Config == nil {
		opts.Config = testConfig()
	}
	s, err := New(context.Background(), opts)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func TestNew_RequiresConfig(t *testing.T) {
	_, err := New(context.Background(), Options{})
	require.Error(t, err)
}

func TestNew_InvalidStrategy(t *testing.T) {
	cfg := testConfig()
	cfg.Strategies = map[string]config.StrategyConfig{"gossip": {RetrievalWeight: 0.5, GenerationWeight: 0.5}}
	_, err := New(context.Background(), Options{Config: cfg})
	require.Error(t, err)
}

func TestNew_InvalidCriterion(t *testing.T) {
	cfg := testConfig()
	cfg.Ranking.Criteria = []config.CriterionConfig{{Name: "price_blended", Direction: "sideways", Weight: 1}}
	_, err := New(context.Background(), Options{Config: cfg})
	require.Error(t, err)
}

func TestResolve_UsesOverrides(t *testing.T) {
	cfg := testConfig()
	cfg.Strategies = map[string]config.StrategyConfig{"comparison": {RetrievalWeight: 0.3, GenerationWeight: 0.7}}
	s := newService(t, Options{Config: cfg})

	res, err := s.Resolve("comparison", 1.5)
	require.NoError(t, err)
	assert.InDelta(t, 0.3, res.Strategy.RetrievalWeight, 1e-9)
	assert.InDelta(t, 0.7, res.Strategy.GenerationWeight, 1e-9)
	assert.Equal(t, 1.0, res.Confidence)

	_, err = s.Resolve("gossip", 0.5)
	require.Error(t, err)
}

func TestProcessQuery_ExtractiveDefault(t *testing.T) {
	s := newService(t, Options{})
	res, err := s.Resolve("model_info", 0.9)
	require.NoError(t, err)

	resp := s.ProcessQuery(context.Background(), pipeline.Query{Text: "What context window does Claude Sonnet offer?"}, res)
	require.Nil(t, resp.Error)
	assert.Equal(t, generation.ProviderExtractive, resp.Metadata.GenerationModel)
	assert.Contains(t, resp.Answer, "200k")
	assert.NotEmpty(t, resp.Sources)
	assert.GreaterOrEqual(t, resp.Confidence, 0.0)
	assert.LessOrEqual(t, resp.Confidence, 1.0)
}

func TestProcessQuery_Cached(t *testing.T) {
	var calls atomic.Int32
	s := newService(t, Options{Backends: []generation.Member{countingBackend(&calls, "Claude Sonnet offers a 200k token context window.", nil)}})
	res, err := s.Resolve("model_info", 0.8)
	require.NoError(t, err)
	q := pipeline.Query{Text: "What context window does Claude Sonnet offer?"}

	first := s.ProcessQuery(context.Background(), q, res)
	second := s.ProcessQuery(context.Background(), q, res)
	require.Nil(t, first.Error)
	assert.Equal(t, int32(1), calls.Load())

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))

	// A different intent is a different request.
	other, err := s.Resolve("technical", 0.8)
	require.NoError(t, err)
	s.ProcessQuery(context.Background(), q, other)
	assert.Equal(t, int32(2), calls.Load())
}

func TestProcessQuery_CacheDisabled(t *testing.T) {
	cfg := testConfig()
	disabled := false
	cfg.Cache.Enabled = &disabled

	var calls atomic.Int32
	s := newService(t, Options{Config: cfg, Backends: []generation.Member{countingBackend(&calls, "An answer.", nil)}})
	res, err := s.Resolve("general", 0.5)
	require.NoError(t, err)
	q := pipeline.Query{Text: "Which model supports tool use?"}

	s.ProcessQuery(context.Background(), q, res)
	s.ProcessQuery(context.Background(), q, res)
	assert.Equal(t, int32(2), calls.Load())
}

func TestProcessQuery_FailuresNotCached(t *testing.T) {
	var calls atomic.Int32
	s := newService(t, Options{Backends: []generation.Member{countingBackend(&calls, "", errors.New("backend down"))}})
	res, err := s.Resolve("general", 0.5)
	require.NoError(t, err)
	q := pipeline.Query{Text: "Which model supports tool use?"}

	first := s.ProcessQuery(context.Background(), q, res)
	require.NotNil(t, first.Error)
	assert.Equal(t, pipeline.CodeAllBackendsFailed, first.Error.Code)
	assert.Equal(t, pipeline.Apology, first.Answer)

	s.ProcessQuery(context.Background(), q, res)
	assert.Equal(t, int32(2), calls.Load())
}

func TestRankModels_Cached(t *testing.T) {
	base, err := catalog.LoadFile(testdata("catalog.yaml"))
	require.NoError(t, err)
	cat := &countingCatalog{Catalog: base}
	s := newService(t, Options{Catalog: cat})

	req := ranking.Request{
		Models:    []string{"gpt-4o", "claude-sonnet", "llama-3-70b", "gemini-flash"},
		Algorithm: ranking.TOPSISAlgorithm,
	}
	first := s.RankModels(context.Background(), req)
	second := s.RankModels(context.Background(), req)
	require.Nil(t, first.Error)
	assert.Equal(t, int32(1), cat.gets.Load())
	assert.Equal(t, first.Order(), second.Order())
	assert.Len(t, first.Entries, 4)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.JSONEq(t, string(a), string(b))
}

func TestRankModels_FailuresNotCached(t *testing.T) {
	base, err := catalog.LoadFile(testdata("catalog.yaml"))
	require.NoError(t, err)
	cat := &countingCatalog{Catalog: base}
	s := newService(t, Options{Catalog: cat})

	req := ranking.Request{Models: []string{"gpt-4o", "mystery"}}
	first := s.RankModels(context.Background(), req)
	require.NotNil(t, first.Error)
	assert.Equal(t, ranking.CodeInvalidInput, first.Error.Code)
	assert.Zero(t, first.Confidence)

	s.RankModels(context.Background(), req)
	assert.Equal(t, int32(2), cat.gets.Load())
}

func TestCompareModels(t *testing.T) {
	s := newService(t, Options{})

	res := s.CompareModels(context.Background(), []string{"gpt-4o", "gemini-flash"}, []string{"price_blended", "output_speed"})
	require.Nil(t, res.Error)
	assert.Equal(t, []string{"gemini-flash", "gpt-4o"}, res.Order())

	bad := s.CompareModels(context.Background(), []string{"gpt-4o"}, nil)
	require.NotNil(t, bad.Error)
	assert.Equal(t, ranking.CodeMalformedRequest, bad.Error.Code)
}

func TestCriteria_DefaultRegistry(t *testing.T) {
	s := newService(t, Options{})
	criteria := s.Criteria()
	require.Len(t, criteria, len(config.DefaultCriteria()))
	assert.Equal(t, "intelligence_index", criteria[0].Name)
}
