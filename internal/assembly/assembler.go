//-------------------------------------------------------------------------
//
// pgEdge Model Discovery
//
// Copyright (c) 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package assembly builds the bounded text context handed to generation
// from a set of retrieved documents.
package assembly

import (
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/pgEdge/pgedge-discovery/internal/intent"
	"github.com/pgEdge/pgedge-discovery/internal/knowledge"
)

// TruncationMarker ends any context cut to fit the window.
const TruncationMarker = "\n...[truncated]"

// MinContextWindow is the smallest window that still fits one byte of
// context before the marker. Smaller windows are raised to it.
const MinContextWindow = len(TruncationMarker) + 1

// Defaults applied to a zero Config.
const (
	DefaultContextWindow = 8000
	DefaultTopN          = 5
)

// Config configures an Assembler.
type Config struct {
	ContextWindow int // maximum context size in bytes
	TopN          int // documents used by exact_match
	Logger        *slog.Logger
}

// Assembler selects and formats documents according to a context focus.
type Assembler struct {
	window int
	topN   int
	logger *slog.Logger
}

// New creates an Assembler.
func New(cfg Config) *Assembler {
	if cfg.ContextWindow <= 0 {
		cfg.ContextWindow = DefaultContextWindow
	}
	cfg.ContextWindow = max(cfg.ContextWindow, MinContextWindow)
	if cfg.TopN <= 0 {
		cfg.TopN = DefaultTopN
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Assembler{
		window: cfg.ContextWindow,
		topN:   cfg.TopN,
		logger: logger.With("component", "assembler"),
	}
}

// Window returns the context window in bytes.
func (a *Assembler) Window() int {
	return a.window
}

// Assemble builds the context for docs, which are expected best first.
// The result never exceeds the context window.
func (a *Assembler) Assemble(docs []knowledge.Document, strategy intent.Strategy) string {
	if len(docs) == 0 {
		return ""
	}

	var text string
	switch strategy.Focus {
	case intent.FocusMultiEntity:
		text = formatEntities(groupByEntity(docs))
	case intent.FocusUseCaseMatch:
		text = formatDocuments(prioritize(docs, isUseCase))
	case intent.FocusTechnicalDetail:
		text = formatDocuments(prioritize(docs, isTechnical))
	case intent.FocusCapabilityMatch:
		text = formatDocuments(prioritize(docs, mentionsAny(capabilityTerms)))
	case intent.FocusProblemSolution:
		text = formatDocuments(prioritize(docs, mentionsAny(solutionTerms)))
	default:
		text = formatDocuments(docs[:min(len(docs), a.topN)])
	}

	out := Truncate(text, a.window)
	if len(out) < len(text) {
		a.logger.Debug("context truncated", "focus", strategy.Focus.String(),
			"size", len(text), "window", a.window)
	}
	return out
}

// Truncate cuts text to at most window bytes, ending it with
// TruncationMarker when anything was removed. Cuts fall on rune
// boundaries. A window below MinContextWindow has no room for the
// marker and yields only its prefix.
func Truncate(text string, window int) string {
	if len(text) <= window {
		return text
	}
	if window <= len(TruncationMarker) {
		return TruncationMarker[:max(window, 0)]
	}
	cut := window - len(TruncationMarker)
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + TruncationMarker
}

func formatDocuments(docs []knowledge.Document) string {
	var sb strings.Builder
	for i, d := range docs {
		writeDocument(&sb, i+1, d)
	}
	return sb.String()
}

func writeDocument(sb *strings.Builder, n int, d knowledge.Document) {
	fmt.Fprintf(sb, "--- Document %d (Source: %s) ---\n", n, d.ID)
	sb.WriteString(d.Content)
	sb.WriteString("\n\n")
}

func formatEntities(groups []entityGroup) string {
	var sb strings.Builder
	n := 0
	for _, g := range groups {
		fmt.Fprintf(&sb, "=== %s ===\n", g.name)
		for _, d := range g.docs {
			n++
			writeDocument(&sb, n, d)
		}
	}
	return sb.String()
}
