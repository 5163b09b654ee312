//-------------------------------------------------------------------------
//
// pgEdge Model Discovery
//
// Copyright (c) 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package rerank rescores retrieved documents with a lexical relevance
// measure and reorders them.
package rerank

import (
	"context"
	"log/slog"
	"sort"

	"github.com/pgEdge/pgedge-discovery/internal/bm25"
	"github.com/pgEdge/pgedge-discovery/internal/knowledge"
)

// Blend weights for the final score.
const (
	SimilarityWeight = 0.6
	RerankWeight     = 0.4
)

// Config configures a Reranker.
type Config struct {
	Limit  int // results kept after reordering; 0 keeps all
	Logger *slog.Logger
}

// Reranker combines BM25 over the candidate set with query term coverage.
type Reranker struct {
	limit     int
	tokenizer *bm25.Tokenizer
	logger    *slog.Logger
}

// New creates a Reranker.
func New(cfg Config) *Reranker {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Reranker{
		limit:     cfg.Limit,
		tokenizer: bm25.NewTokenizer(),
		logger:    logger.With("component", "reranker"),
	}
}

// Rerank sets RerankingScore and FinalScore on each document and returns
// them sorted by FinalScore, truncated to the configured limit. The input
// slice is not modified.
func (r *Reranker) Rerank(ctx context.Context, docs []knowledge.Document, query string) ([]knowledge.Document, error) {
	if len(docs) == 0 {
		return docs, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Score against the candidate set as its own corpus.
	idx := bm25.NewIndex()
	for _, d := range docs {
		idx.AddDocument(d.ID, d.Content, nil)
	}
	lexical := make(map[string]float64, len(docs))
	maxScore := 0.0
	for _, res := range idx.Search(query, len(docs)) {
		lexical[res.ID] = res.Score
		maxScore = max(maxScore, res.Score)
	}

	queryTerms := r.tokenizer.Terms(query)
	out := make([]knowledge.Document, len(docs))
	for i, d := range docs {
		d = d.Clone()
		normalized := 0.0
		if maxScore > 0 {
			normalized = lexical[d.ID] / maxScore
		}
		coverage := bm25.Coverage(queryTerms, r.tokenizer.Terms(d.Content))
		score := 0.5*coverage + 0.5*normalized
		d.RerankingScore = &score
		d.FinalScore = SimilarityWeight*d.Similarity + RerankWeight*score
		out[i] = d
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].FinalScore > out[j].FinalScore
	})
	if r.limit > 0 && len(out) > r.limit {
		out = out[:r.limit]
	}

	r.logger.Debug("reranked documents", "input", len(docs), "output", len(out))
	return out, nil
}
