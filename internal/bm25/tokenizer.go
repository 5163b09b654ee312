//-------------------------------------------------------------------------
//
// pgEdge Model Discovery
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package bm25

import (
	"strings"
	"unicode"
)

// Tokenizer handles text tokenization for lexical scoring.
type Tokenizer struct {
	stopWords map[string]bool
	lowercase bool
}

// DefaultStopWords contains common English stop words.
var DefaultStopWords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true,
	"at": true, "be": true, "by": true, "for": true, "from": true,
	"has": true, "he": true, "in": true, "is": true, "it": true,
	"its": true, "of": true, "on": true, "or": true, "that": true,
	"the": true, "to": true, "was": true, "were": true, "will": true,
	"with": true, "this": true, "but": true, "they": true, "have": true,
	"had": true, "what": true, "when": true, "where": true, "who": true,
	"which": true, "why": true, "how": true, "all": true, "each": true,
	"every": true, "both": true, "few": true, "more": true, "most": true,
	"other": true, "some": true, "such": true, "no": true, "not": true,
	"only": true, "same": true, "so": true, "than": true, "too": true,
	"very": true, "can": true, "just": true, "should": true, "now": true,
	"i": true, "you": true, "we": true, "me": true, "my": true,
	"your": true, "our": true, "their": true, "him": true, "her": true,
	"does": true, "do": true, "did": true, "there": true, "about": true,
	"into": true, "would": true, "could": true, "any": true, "best": true,
}

// NewTokenizer creates a new tokenizer with default settings.
func NewTokenizer() *Tokenizer {
	return NewTokenizerWithStopWords(DefaultStopWords)
}

// NewTokenizerWithStopWords creates a tokenizer with custom stop words.
func NewTokenizerWithStopWords(stopWords map[string]bool) *Tokenizer {
	return &Tokenizer{
		stopWords: stopWords,
		lowercase: true,
	}
}

// Tokenize splits text into tokens, applying normalization.
func (t *Tokenizer) Tokenize(text string) []string {
	if t.lowercase {
		text = strings.ToLower(text)
	}

	var tokens []string
	var current strings.Builder

	flush := func() {
		if current.Len() == 0 {
			return
		}
		token := current.String()
		if t.isValidToken(token) {
			tokens = append(tokens, token)
		}
		current.Reset()
	}

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			current.WriteRune(r)
			continue
		}
		flush()
	}
	flush()

	return tokens
}

// isValidToken checks if a token should be included.
func (t *Tokenizer) isValidToken(token string) bool {
	if len(token) < 2 {
		return false
	}

	if t.stopWords != nil && t.stopWords[token] {
		return false
	}

	return true
}

// TokenFrequencies returns a map of token to frequency count.
func (t *Tokenizer) TokenFrequencies(text string) map[string]int {
	freqs := make(map[string]int)
	for _, token := range t.Tokenize(text) {
		freqs[token]++
	}
	return freqs
}

// Terms returns the distinct tokens of text.
func (t *Tokenizer) Terms(text string) map[string]struct{} {
	terms := make(map[string]struct{})
	for _, token := range t.Tokenize(text) {
		terms[token] = struct{}{}
	}
	return terms
}

// TokenCount returns the total number of tokens in text.
func (t *Tokenizer) TokenCount(text string) int {
	return len(t.Tokenize(text))
}

// Coverage returns the fraction of the distinct terms in want that also
// appear in have. An empty want set has zero coverage.
func Coverage(want, have map[string]struct{}) float64 {
	if len(want) == 0 {
		return 0
	}
	hits := 0
	for term := range want {
		if _, ok := have[term]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(want))
}
