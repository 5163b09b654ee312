//-------------------------------------------------------------------------
//
// pgEdge Model Discovery
//
// Copyright (c) 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package rerank

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgEdge/pgedge-discovery/internal/knowledge"
)

func TestRerank_Empty(t *testing.T) {
	r := New(Config{})

	out, err := r.Rerank(context.Background(), nil, "anything")
	require.NoError(t, err)
	assert.Nil(t, out)

	empty := []knowledge.Document{}
	out, err = r.Rerank(context.Background(), empty, "anything")
	require.NoError(t, err)
	assert.Equal(t, empty, out)
}

func TestRerank_LexicalOverlapReorders(t *testing.T) {
	docs := []knowledge.Document{
		{ID: "pricing", Content: "Token pricing for hosted models varies by region.", Similarity: 0.62},
		{ID: "vision", Content: "Multimodal vision models read images and charts.", Similarity: 0.60},
	}
	r := New(Config{})

	out, err := r.Rerank(context.Background(), docs, "multimodal vision models")
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, "vision", out[0].ID)
	require.NotNil(t, out[0].RerankingScore)
	assert.InDelta(t, 1.0, *out[0].RerankingScore, 1e-9)
	assert.InDelta(t, 0.6*0.60+0.4*1.0, out[0].FinalScore, 1e-9)

	// Input is left untouched.
	assert.Nil(t, docs[0].RerankingScore)
	assert.Equal(t, "pricing", docs[0].ID)
}

func TestRerank_ScoresWithinRange(t *testing.T) {
	docs := []knowledge.Document{
		{ID: "a", Content: "fast inference latency", Similarity: 0.9},
		{ID: "b", Content: "unrelated text here", Similarity: 0.1},
		{ID: "c", Content: "latency benchmarks for inference servers", Similarity: 0.5},
	}
	out, err := New(Config{}).Rerank(context.Background(), docs, "inference latency")
	require.NoError(t, err)

	for i, d := range out {
		require.NotNil(t, d.RerankingScore)
		assert.GreaterOrEqual(t, *d.RerankingScore, 0.0)
		assert.LessOrEqual(t, *d.RerankingScore, 1.0)
		if i > 0 {
			assert.LessOrEqual(t, d.FinalScore, out[i-1].FinalScore)
		}
	}
	assert.Equal(t, 0.0, *out[2].RerankingScore)
	assert.Equal(t, "b", out[2].ID)
}

func TestRerank_Truncates(t *testing.T) {
	docs := []knowledge.Document{
		{ID: "a", Content: "alpha", Similarity: 0.3},
		{ID: "b", Content: "beta", Similarity: 0.2},
		{ID: "c", Content: "gamma", Similarity: 0.1},
	}
	out, err := New(Config{Limit: 2}).Rerank(context.Background(), docs, "alpha")
	require.NoError(t, err)
	assert.Len(t, out, 2)
	assert.Equal(t, "a", out[0].ID)
}
