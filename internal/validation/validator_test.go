//-------------------------------------------------------------------------
//
// pgEdge Model Discovery
//
// Copyright (c) 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package validation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgEdge/pgedge-discovery/internal/knowledge"
)

var docs = []knowledge.Document{
	{ID: "claude", Content: "Claude Sonnet offers a 200k token context window and strong coding performance."},
	{ID: "pricing", Content: "Hosted model pricing is billed per million tokens."},
}

func inRange(t *testing.T, s Scores) {
	t.Helper()
	for _, v := range []float64{s.Quality, s.Consistency, s.HallucinationRisk, s.Confidence} {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
	}
}

func TestValidate_GroundedAnswer(t *testing.T) {
	v := New(Config{Citations: true})
	answer := "Claude Sonnet offers a 200k token context window with strong coding performance."

	out, s, err := v.Validate(context.Background(), answer, docs, "What context window does Claude Sonnet offer?")
	require.NoError(t, err)
	inRange(t, s)

	assert.Equal(t, 1.0, s.Consistency)
	assert.InDelta(t, 0.0, s.HallucinationRisk, 1e-9)
	assert.Equal(t, []string{"claude"}, s.Citations)
	assert.Equal(t, answer+"\n\nSources: [claude]", out)
	assert.InDelta(t, (s.Quality+s.Consistency+1-s.HallucinationRisk)/3, s.Confidence, 1e-9)
}

func TestValidate_UngroundedAnswer(t *testing.T) {
	v := New(Config{})
	grounded := "Claude Sonnet offers a 200k token context window."
	invented := "Zephyr Ultra scored 97 on Mars benchmarks in 2031."

	_, good, err := v.Validate(context.Background(), grounded, docs, "claude context")
	require.NoError(t, err)
	out, bad, err := v.Validate(context.Background(), invented, docs, "claude context")
	require.NoError(t, err)
	inRange(t, bad)

	assert.Equal(t, invented, out)
	assert.Greater(t, bad.HallucinationRisk, good.HallucinationRisk)
	assert.Less(t, bad.Consistency, good.Consistency)
	assert.Less(t, bad.Confidence, good.Confidence)
	assert.Empty(t, bad.Citations)
}

func TestValidate_NoDocuments(t *testing.T) {
	_, s, err := New(Config{Citations: true}).Validate(context.Background(), "Some answer text here.", nil, "q")
	require.NoError(t, err)
	assert.Equal(t, 0.0, s.Consistency)
	assert.Equal(t, 1.0, s.HallucinationRisk)
	inRange(t, s)
}

func TestValidate_EmptyAnswer(t *testing.T) {
	out, s, err := New(Config{}).Validate(context.Background(), "  ", docs, "q")
	require.NoError(t, err)
	assert.Equal(t, "  ", out)
	assert.Equal(t, Scores{HallucinationRisk: 1}, s)
}

func TestValidate_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := New(Config{}).Validate(ctx, "answer", docs, "q")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEntities(t *testing.T) {
	got := entities("Models like GPT-4o differ. Claude is from Anthropic, not OpenAI.")
	assert.Equal(t, []string{"gpt-4o", "anthropic", "openai"}, got)
}
