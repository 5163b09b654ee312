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
	"strings"

	"github.com/pgEdge/pgedge-discovery/internal/bm25"
	"github.com/pgEdge/pgedge-discovery/internal/intent"
)

var tokenizer = bm25.NewTokenizer()

// focusExpansion wraps the keyword form of a query with terms that pull in
// the kind of document a context focus prefers.
func focusExpansion(focus intent.ContextFocus, keywords string) string {
	switch focus {
	case intent.FocusMultiEntity:
		return "compare " + keywords + " versus"
	case intent.FocusUseCaseMatch:
		return keywords + " use cases"
	case intent.FocusTechnicalDetail:
		return keywords + " api documentation"
	case intent.FocusCapabilityMatch:
		return keywords + " capabilities features"
	case intent.FocusProblemSolution:
		return keywords + " fix solution"
	default:
		return keywords + " specifications"
	}
}

// Rewrites derives alternative phrasings of text: its keyword form, a
// focus-specific expansion, and a blend with the latest history entry.
func Rewrites(text string, focus intent.ContextFocus, history []string) []string {
	keywords := strings.Join(tokenizer.Tokenize(text), " ")
	if keywords == "" {
		return nil
	}

	out := []string{keywords, focusExpansion(focus, keywords)}
	if len(history) > 0 {
		prior := strings.Join(tokenizer.Tokenize(history[len(history)-1]), " ")
		if prior != "" {
			out = append(out, prior+" "+keywords)
		}
	}
	return out
}

// dedupeQueries drops blanks, case-insensitive duplicates and anything
// equal to the primary text, keeping at most limit entries.
func dedupeQueries(primary string, candidates []string, limit int) []string {
	seen := map[string]bool{strings.ToLower(strings.TrimSpace(primary)): true}
	var out []string
	for _, c := range candidates {
		if len(out) >= limit {
			break
		}
		c = strings.TrimSpace(c)
		key := strings.ToLower(c)
		if c == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c)
	}
	return out
}
