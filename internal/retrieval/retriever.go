//-------------------------------------------------------------------------
//
// pgEdge Model Discovery
//
// Copyright (c) 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package retrieval fetches candidate documents for a query from a
// knowledge base, fanning out over query rewrites and merging the results.
package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/pgEdge/pgedge-discovery/internal/intent"
	"github.com/pgEdge/pgedge-discovery/internal/knowledge"
)

// Defaults applied to a zero Config.
const (
	DefaultLimit                  = 10
	DefaultThreshold              = 0.2
	DefaultMaxRewrites            = 3
	DefaultRewriteThresholdFactor = 1.1

	// rewriteOnlyOrigin is the origin score of documents that only a
	// rewrite found.
	rewriteOnlyOrigin = 0.5
)

// EmptyWarning reports that no query returned any document. The pipeline
// continues with an empty context.
type EmptyWarning struct {
	Query   string
	Queries int
}

func (w *EmptyWarning) Error() string {
	return fmt.Sprintf("no documents retrieved for %q across %d queries", w.Query, w.Queries)
}

// Config configures a Retriever.
type Config struct {
	Limit                  int
	Threshold              float64
	RewriteLimit           int     // 0 means half of Limit
	RewriteThresholdFactor float64 // multiplier on Threshold for rewrites
	MaxRewrites            int
	GenerateRewrites       bool
	Logger                 *slog.Logger
}

// Request is a single retrieval.
type Request struct {
	Text     string
	Rewrites []string // caller-supplied rewrites, tried before derived ones
	History  []string // prior-turn text, newest last
	Limit    int      // overrides Config.Limit when positive
	Strategy intent.Strategy
}

// Result is the merged, deduplicated and weighted output of a retrieval.
type Result struct {
	Documents []knowledge.Document
	Queries   []string
	Warning   *EmptyWarning
}

// Retriever queries a knowledge base for a query and its rewrites.
type Retriever struct {
	kb     knowledge.KnowledgeBase
	cfg    Config
	logger *slog.Logger
}

// New creates a Retriever.
func New(kb knowledge.KnowledgeBase, cfg Config) *Retriever {
	if cfg.Limit <= 0 {
		cfg.Limit = DefaultLimit
	}
	if cfg.Threshold < 0 {
		cfg.Threshold = 0
	}
	if cfg.RewriteThresholdFactor <= 0 {
		cfg.RewriteThresholdFactor = DefaultRewriteThresholdFactor
	}
	if cfg.MaxRewrites < 0 {
		cfg.MaxRewrites = 0
	}
	if cfg.MaxRewrites > DefaultMaxRewrites {
		cfg.MaxRewrites = DefaultMaxRewrites
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Retriever{kb: kb, cfg: cfg, logger: logger.With("component", "retriever")}
}

// Limit returns the configured primary result limit.
func (r *Retriever) Limit() int {
	return r.cfg.Limit
}

// Retrieve runs the primary query and up to MaxRewrites rewrites. A
// failing primary query is an error; failing rewrites are logged and
// skipped.
func (r *Retriever) Retrieve(ctx context.Context, req Request) (Result, error) {
	limit := r.cfg.Limit
	if req.Limit > 0 {
		limit = req.Limit
	}

	primary, err := r.kb.Query(ctx, req.Text, knowledge.QueryOptions{
		Limit:     limit,
		Threshold: r.cfg.Threshold,
	})
	if err != nil {
		return Result{}, fmt.Errorf("primary query failed: %w", err)
	}

	queries := []string{req.Text}
	m := newMerger()
	m.add(primary, true)

	rewrites := r.rewrites(req)
	rewriteOpts := knowledge.QueryOptions{
		Limit:     r.rewriteLimit(limit),
		Threshold: math.Min(1, r.cfg.Threshold*r.cfg.RewriteThresholdFactor),
	}
	for _, rw := range rewrites {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		docs, err := r.kb.Query(ctx, rw, rewriteOpts)
		if err != nil {
			r.logger.Warn("rewrite query failed", "rewrite", rw, "error", err)
			continue
		}
		queries = append(queries, rw)
		m.add(docs, false)
	}

	docs := m.weighted(req.Strategy.RetrievalWeight)
	res := Result{Documents: docs, Queries: queries}
	if len(docs) == 0 {
		res.Warning = &EmptyWarning{Query: req.Text, Queries: len(queries)}
		r.logger.Warn("retrieval returned no documents", "queries", len(queries))
	}
	r.logger.Debug("retrieval complete", "documents", len(docs), "queries", len(queries))
	return res, nil
}

func (r *Retriever) rewriteLimit(limit int) int {
	if r.cfg.RewriteLimit > 0 {
		return r.cfg.RewriteLimit
	}
	return max(1, limit/2)
}

func (r *Retriever) rewrites(req Request) []string {
	candidates := append([]string(nil), req.Rewrites...)
	if r.cfg.GenerateRewrites {
		candidates = append(candidates, Rewrites(req.Text, req.Strategy.Focus, req.History)...)
	}
	return dedupeQueries(req.Text, candidates, r.cfg.MaxRewrites)
}

// merger keeps one entry per document ID with the highest similarity seen.
type merger struct {
	docs    []knowledge.Document
	index   map[string]int
	primary map[string]bool
}

func newMerger() *merger {
	return &merger{index: make(map[string]int), primary: make(map[string]bool)}
}

func (m *merger) add(docs []knowledge.Document, fromPrimary bool) {
	for _, d := range docs {
		if fromPrimary {
			m.primary[d.ID] = true
		}
		if i, ok := m.index[d.ID]; ok {
			if d.Similarity > m.docs[i].Similarity {
				m.docs[i] = d.Clone()
			}
			continue
		}
		m.index[d.ID] = len(m.docs)
		m.docs = append(m.docs, d.Clone())
	}
}

// weighted scores each document as a blend of its similarity and whether
// the primary query found it, then sorts best first.
func (m *merger) weighted(retrievalWeight float64) []knowledge.Document {
	w := math.Max(0, math.Min(1, retrievalWeight))
	for i := range m.docs {
		origin := rewriteOnlyOrigin
		if m.primary[m.docs[i].ID] {
			origin = 1
		}
		m.docs[i].FinalScore = w*m.docs[i].Similarity + (1-w)*origin
	}
	sort.SliceStable(m.docs, func(i, j int) bool {
		return m.docs[i].FinalScore > m.docs[j].FinalScore
	})
	return m.docs
}
