//-------------------------------------------------------------------------
//
// pgEdge Model Discovery
//
// Copyright (c) 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package knowledge

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pgEdge/pgedge-discovery/internal/bm25"
)

// Memory is a BM25-ranked knowledge base held in memory.
type Memory struct {
	index *bm25.Index
}

// NewMemory creates a knowledge base seeded with docs.
func NewMemory(docs ...Document) *Memory {
	m := &Memory{index: bm25.NewIndex()}
	m.Add(docs...)
	return m
}

// Add indexes docs, replacing any existing entries with the same ID.
func (m *Memory) Add(docs ...Document) {
	for _, d := range docs {
		m.index.AddDocument(d.ID, d.Content, d.Metadata)
	}
}

// Size returns the number of indexed documents.
func (m *Memory) Size() int {
	return m.index.Size()
}

// Query returns up to opts.Limit documents whose similarity is at least
// opts.Threshold, best first.
func (m *Memory) Query(ctx context.Context, text string, opts QueryOptions) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	results := m.index.Search(text, opts.Limit)
	docs := make([]Document, 0, len(results))
	for _, r := range results {
		if r.Similarity < opts.Threshold {
			continue
		}
		docs = append(docs, Document{
			ID:         r.ID,
			Content:    r.Content,
			Metadata:   r.Metadata,
			Similarity: r.Similarity,
			FinalScore: r.Similarity,
		})
	}
	return docs, nil
}

type documentFile struct {
	Documents []Document `yaml:"documents"`
}

// LoadFile reads documents from a YAML (or JSON) file of the form
// {documents: [{id, content, metadata}]}.
func LoadFile(path string) ([]Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read knowledge base file: %w", err)
	}

	var f documentFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse knowledge base file: %w", err)
	}

	seen := make(map[string]bool, len(f.Documents))
	for i, d := range f.Documents {
		if d.ID == "" {
			return nil, fmt.Errorf("document %d: missing id", i)
		}
		if seen[d.ID] {
			return nil, fmt.Errorf("document %d: duplicate id %q", i, d.ID)
		}
		seen[d.ID] = true
	}
	return f.Documents, nil
}
