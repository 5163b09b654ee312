//-------------------------------------------------------------------------
//
// pgEdge Model Discovery
//
// Copyright (c) 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package validation scores a generated answer against the documents it
// was generated from.
package validation

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"unicode"

	"github.com/pgEdge/pgedge-discovery/internal/bm25"
	"github.com/pgEdge/pgedge-discovery/internal/knowledge"
)

const (
	// citationShare is the fraction of the answer's terms a document must
	// contain to be cited.
	citationShare = 0.2
	maxCitations  = 5

	// Answers with fewer tokens than this are penalised as too thin.
	minUsefulTokens = 15
	maxUsefulTokens = 400
)

// Scores are the validator's measurements, each in [0, 1].
type Scores struct {
	Quality           float64  `json:"quality"`
	Consistency       float64  `json:"consistency"`
	HallucinationRisk float64  `json:"hallucination_risk"`
	Confidence        float64  `json:"confidence"`
	Citations         []string `json:"citations,omitempty"`
}

// Config configures a Validator.
type Config struct {
	Citations bool // append source markers to the answer
	Logger    *slog.Logger
}

// Validator measures answer quality and grounding.
type Validator struct {
	citations bool
	tokenizer *bm25.Tokenizer
	logger    *slog.Logger
}

// New creates a Validator.
func New(cfg Config) *Validator {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{
		citations: cfg.Citations,
		tokenizer: bm25.NewTokenizer(),
		logger:    logger.With("component", "validator"),
	}
}

// Validate scores answer and, when citations are enabled, returns it with
// source markers appended. The answer text itself is never altered.
func (v *Validator) Validate(ctx context.Context, answer string, docs []knowledge.Document, query string) (string, Scores, error) {
	if err := ctx.Err(); err != nil {
		return "", Scores{}, err
	}
	if strings.TrimSpace(answer) == "" {
		return answer, Scores{HallucinationRisk: 1}, nil
	}

	answerTerms := v.tokenizer.Terms(answer)
	docTerms := make([]map[string]struct{}, len(docs))
	corpus := make(map[string]struct{})
	var contents []string
	for i, d := range docs {
		docTerms[i] = v.tokenizer.Terms(d.Content)
		for t := range docTerms[i] {
			corpus[t] = struct{}{}
		}
		contents = append(contents, strings.ToLower(d.Content))
	}

	s := Scores{
		Quality:     v.quality(answer, answerTerms, query),
		Consistency: bm25.Coverage(answerTerms, corpus),
	}
	unsupported := unsupportedShare(entities(answer), strings.Join(contents, "\n"))
	s.HallucinationRisk = clamp(1 - s.Consistency*(1-0.5*unsupported))
	s.Confidence = clamp((s.Quality + s.Consistency + (1 - s.HallucinationRisk)) / 3)

	for i, d := range docs {
		if len(s.Citations) == maxCitations {
			break
		}
		if len(answerTerms) > 0 && bm25.Coverage(answerTerms, docTerms[i]) >= citationShare {
			s.Citations = append(s.Citations, d.ID)
		}
	}

	out := answer
	if v.citations && len(s.Citations) > 0 {
		out = answer + "\n\nSources: " + formatCitations(s.Citations)
	}

	v.logger.Debug("answer validated", "quality", s.Quality, "consistency", s.Consistency,
		"hallucination_risk", s.HallucinationRisk, "citations", len(s.Citations))
	return out, s, nil
}

// quality blends query relevance, answer length and lexical variety.
func (v *Validator) quality(answer string, answerTerms map[string]struct{}, query string) float64 {
	relevance := 0.5
	if queryTerms := v.tokenizer.Terms(query); len(queryTerms) > 0 {
		relevance = bm25.Coverage(queryTerms, answerTerms)
	}

	tokens := v.tokenizer.TokenCount(answer)
	length := 1.0
	switch {
	case tokens < minUsefulTokens:
		length = float64(tokens) / minUsefulTokens
	case tokens > maxUsefulTokens:
		length = 0.8
	}

	variety := 0.0
	if tokens > 0 {
		variety = math.Min(1, float64(len(answerTerms))/float64(tokens)/0.4)
	}

	return clamp(0.5*relevance + 0.25*length + 0.25*variety)
}

// entities returns the lower-cased words that look like names or figures:
// capitalised words that do not open a sentence, and words mixing letters
// with digits.
func entities(text string) []string {
	var out []string
	sentenceStart := true
	for _, raw := range strings.Fields(text) {
		word := strings.TrimFunc(raw, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if word != "" {
			var letter, digit bool
			for _, r := range word {
				letter = letter || unicode.IsLetter(r)
				digit = digit || unicode.IsDigit(r)
			}
			first := []rune(word)[0]
			if (letter && digit) || (!sentenceStart && unicode.IsUpper(first)) {
				out = append(out, strings.ToLower(word))
			}
		}
		sentenceStart = strings.HasSuffix(raw, ".") || strings.HasSuffix(raw, "!") ||
			strings.HasSuffix(raw, "?") || strings.HasSuffix(raw, ":")
	}
	return out
}

func unsupportedShare(names []string, corpus string) float64 {
	if len(names) == 0 {
		return 0
	}
	missing := 0
	for _, n := range names {
		if !strings.Contains(corpus, n) {
			missing++
		}
	}
	return float64(missing) / float64(len(names))
}

func formatCitations(ids []string) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("[%s]", id)
	}
	return strings.Join(parts, ", ")
}

func clamp(x float64) float64 {
	if math.IsNaN(x) {
		return 0
	}
	return math.Max(0, math.Min(1, x))
}
