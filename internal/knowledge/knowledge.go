//-------------------------------------------------------------------------
//
// pgEdge Model Discovery
//
// Copyright (c) 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package knowledge defines the knowledge base the query pipeline retrieves
// from, along with an in-memory implementation.
package knowledge

import (
	"context"
	"fmt"
	"strings"
)

// Metadata keys with a meaning to the assembly and validation stages.
const (
	MetaModel    = "model"
	MetaType     = "type"
	MetaTags     = "tags"
	MetaTitle    = "title"
	MetaProvider = "provider"
)

// Document is a single retrieved knowledge-base entry.
type Document struct {
	ID             string         `json:"id" yaml:"id"`
	Content        string         `json:"content" yaml:"content"`
	Metadata       map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	Similarity     float64        `json:"similarity" yaml:"-"`
	RerankingScore *float64       `json:"reranking_score,omitempty" yaml:"-"`
	FinalScore     float64        `json:"final_score" yaml:"-"`
}

// QueryOptions bounds a knowledge-base query.
type QueryOptions struct {
	Limit     int
	Threshold float64
}

// KnowledgeBase answers similarity queries. An empty result is not an
// error; errors are reserved for a failing backend.
type KnowledgeBase interface {
	Query(ctx context.Context, text string, opts QueryOptions) ([]Document, error)
}

// Func adapts a plain function to the KnowledgeBase interface.
type Func func(ctx context.Context, text string, opts QueryOptions) ([]Document, error)

// Query calls f.
func (f Func) Query(ctx context.Context, text string, opts QueryOptions) ([]Document, error) {
	return f(ctx, text, opts)
}

// MetaString returns a metadata value as a string, or "" when absent.
func (d Document) MetaString(key string) string {
	v, ok := d.Metadata[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Tags returns the document's type and tags metadata, lower-cased.
func (d Document) Tags() []string {
	var tags []string
	if t := d.MetaString(MetaType); t != "" {
		tags = append(tags, strings.ToLower(t))
	}
	switch v := d.Metadata[MetaTags].(type) {
	case []string:
		for _, t := range v {
			tags = append(tags, strings.ToLower(t))
		}
	case []any:
		for _, t := range v {
			tags = append(tags, strings.ToLower(fmt.Sprint(t)))
		}
	case string:
		for _, t := range strings.Split(v, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tags = append(tags, strings.ToLower(t))
			}
		}
	}
	return tags
}

// HasTag reports whether any of the document's tags equals one of want.
func (d Document) HasTag(want ...string) bool {
	for _, tag := range d.Tags() {
		for _, w := range want {
			if tag == w {
				return true
			}
		}
	}
	return false
}

// Clone returns a copy of d that shares no mutable score state.
func (d Document) Clone() Document {
	if d.RerankingScore != nil {
		v := *d.RerankingScore
		d.RerankingScore = &v
	}
	return d
}
