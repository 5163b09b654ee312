//-------------------------------------------------------------------------
//
// pgEdge Model Discovery
//
// Copyright (c) 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package generation

import (
	"context"
	"sort"
	"strings"
	"unicode"

	"github.com/pgEdge/pgedge-discovery/internal/bm25"
)

// ProviderExtractive names the backend that needs no model.
const ProviderExtractive = "extractive"

// NoAnswer is returned by the extractive backend when the context holds
// nothing relevant.
const NoAnswer = "There is not enough information available to answer this question."

const maxExtractSentences = 3

// Extractive answers by quoting the context sentences that best cover the
// query terms. It never calls out to a model.
type Extractive struct {
	tokenizer *bm25.Tokenizer
}

// NewExtractive creates an extractive backend.
func NewExtractive() *Extractive {
	return &Extractive{tokenizer: bm25.NewTokenizer()}
}

type scoredSentence struct {
	text  string
	pos   int
	score float64
}

// Invoke picks up to three context sentences with the highest query term
// coverage and returns them in their original order.
func (e *Extractive) Invoke(ctx context.Context, prompt Prompt, _ Descriptor) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	queryTerms := e.tokenizer.Terms(prompt.Query)
	var picked []scoredSentence
	for i, s := range splitSentences(prompt.Context) {
		score := bm25.Coverage(queryTerms, e.tokenizer.Terms(s))
		if score > 0 {
			picked = append(picked, scoredSentence{text: s, pos: i, score: score})
		}
	}
	if len(picked) == 0 {
		return NoAnswer, nil
	}

	sort.SliceStable(picked, func(i, j int) bool { return picked[i].score > picked[j].score })
	picked = picked[:min(len(picked), maxExtractSentences)]
	sort.Slice(picked, func(i, j int) bool { return picked[i].pos < picked[j].pos })

	texts := make([]string, len(picked))
	for i, p := range picked {
		texts[i] = p.text
	}
	return strings.Join(texts, " "), nil
}

// splitSentences breaks context into sentences, dropping document header
// lines and the truncation marker.
func splitSentences(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "---") || strings.HasPrefix(line, "===") ||
			strings.HasPrefix(line, "...") {
			continue
		}
		start := 0
		runes := []rune(line)
		for i, r := range runes {
			if r != '.' && r != '!' && r != '?' {
				continue
			}
			if i+1 < len(runes) && !unicode.IsSpace(runes[i+1]) {
				continue
			}
			if s := strings.TrimSpace(string(runes[start : i+1])); s != "" {
				out = append(out, s)
			}
			start = i + 1
		}
		if s := strings.TrimSpace(string(runes[start:])); s != "" {
			out = append(out, s)
		}
	}
	return out
}
