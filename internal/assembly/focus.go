//-------------------------------------------------------------------------
//
// pgEdge Model Discovery
//
// Copyright (c) 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package assembly

import (
	"strings"
	"unicode"

	"github.com/pgEdge/pgedge-discovery/internal/bm25"
	"github.com/pgEdge/pgedge-discovery/internal/knowledge"
)

const otherEntity = "Other"

var (
	tokenizer = bm25.NewTokenizer()

	capabilityTerms = []string{
		"capability", "capabilities", "feature", "features", "supports",
		"multimodal", "vision", "audio", "tools", "function", "reasoning",
	}
	solutionTerms = []string{
		"solution", "solve", "solves", "fix", "fixes", "fixed", "resolve",
		"resolved", "resolves", "workaround", "troubleshoot", "troubleshooting",
	}
	technicalTerms = []string{
		"api", "endpoint", "parameter", "parameters", "sdk", "latency",
		"tokens", "architecture",
	}
)

// prioritize returns docs matching first, then the rest, each group in
// its original order.
func prioritize(docs []knowledge.Document, match func(knowledge.Document) bool) []knowledge.Document {
	out := make([]knowledge.Document, 0, len(docs))
	var rest []knowledge.Document
	for _, d := range docs {
		if match(d) {
			out = append(out, d)
		} else {
			rest = append(rest, d)
		}
	}
	return append(out, rest...)
}

func mentionsAny(terms []string) func(knowledge.Document) bool {
	return func(d knowledge.Document) bool {
		have := tokenizer.Terms(d.Content)
		for _, t := range terms {
			if _, ok := have[t]; ok {
				return true
			}
		}
		return false
	}
}

func isUseCase(d knowledge.Document) bool {
	return d.HasTag("use_case", "use-case", "usecase", "use case") ||
		strings.Contains(strings.ToLower(d.Content), "use case")
}

func isTechnical(d knowledge.Document) bool {
	return d.HasTag("technical", "api", "documentation", "docs") ||
		mentionsAny(technicalTerms)(d)
}

type entityGroup struct {
	name string
	docs []knowledge.Document
}

// groupByEntity groups docs by model, keeping groups in order of first
// appearance. Documents without a detectable entity go last.
func groupByEntity(docs []knowledge.Document) []entityGroup {
	var groups []entityGroup
	index := make(map[string]int)
	var other []knowledge.Document
	for _, d := range docs {
		name := Entity(d)
		if name == "" {
			other = append(other, d)
			continue
		}
		key := strings.ToLower(name)
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, entityGroup{name: name})
		}
		groups[i].docs = append(groups[i].docs, d)
	}
	if len(other) > 0 {
		groups = append(groups, entityGroup{name: otherEntity, docs: other})
	}
	return groups
}

// Entity returns the model a document is about: its model, title or
// provider metadata, else the first model-like identifier in its content
// (a word mixing letters and digits joined by a hyphen, such as gpt-4o).
func Entity(d knowledge.Document) string {
	for _, key := range []string{knowledge.MetaModel, knowledge.MetaTitle, knowledge.MetaProvider} {
		if v := strings.TrimSpace(d.MetaString(key)); v != "" {
			return v
		}
	}
	for _, word := range strings.Fields(d.Content) {
		word = strings.TrimFunc(word, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if looksLikeModel(word) {
			return word
		}
	}
	return ""
}

func looksLikeModel(word string) bool {
	if !strings.Contains(word, "-") {
		return false
	}
	var letter, digit bool
	for _, r := range word {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		case r != '-' && r != '.':
			return false
		}
	}
	return letter && digit
}
