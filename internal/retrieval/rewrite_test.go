//-------------------------------------------------------------------------
//
// pgEdge Model Discovery
//
// Copyright (c) 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pgEdge/pgedge-discovery/internal/intent"
)

func TestRewrites(t *testing.T) {
	assert.Equal(t,
		[]string{"claude context window", "claude context window api documentation"},
		Rewrites("What is the Claude context window?", intent.FocusTechnicalDetail, nil))

	assert.Nil(t, Rewrites("what is the", intent.FocusExactMatch, nil))
}

func TestDedupeQueries(t *testing.T) {
	got := dedupeQueries("Coding Model", []string{
		"coding model", " ", "fast models", "FAST MODELS", "cheap models", "local models",
	}, 2)
	assert.Equal(t, []string{"fast models", "cheap models"}, got)
	assert.Empty(t, dedupeQueries("q", []string{"a"}, 0))
}
