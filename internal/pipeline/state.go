//-------------------------------------------------------------------------
//
// pgEdge Model Discovery
//
// Copyright (c) 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package pipeline

import (
	"slices"

	"github.com/pgEdge/pgedge-discovery/internal/intent"
	"github.com/pgEdge/pgedge-discovery/internal/knowledge"
	"github.com/pgEdge/pgedge-discovery/internal/validation"
)

// State is the accumulated result of the stages run so far. It is a value:
// the With methods return a modified copy and never touch the receiver, so
// a failed stage's partial work is simply dropped.
type State struct {
	query      Query
	resolution intent.Resolution
	documents  []knowledge.Document
	context    string
	answer     string
	model      string
	scores     *validation.Scores
	warnings   []string
	records    []StageRecord
}

// NewState starts the state for one query.
func NewState(q Query, res intent.Resolution) State {
	return State{query: q, resolution: res}
}

func (s State) Query() Query                    { return s.query }
func (s State) Resolution() intent.Resolution   { return s.resolution }
func (s State) Strategy() intent.Strategy       { return s.resolution.Strategy }
func (s State) Documents() []knowledge.Document { return slices.Clone(s.documents) }
func (s State) Context() string                 { return s.context }
func (s State) Answer() string                  { return s.answer }
func (s State) GenerationModel() string         { return s.model }
func (s State) Warnings() []string              { return slices.Clone(s.warnings) }
func (s State) Records() []StageRecord          { return slices.Clone(s.records) }

// Scores returns the validation scores, if the validate stage completed.
func (s State) Scores() (validation.Scores, bool) {
	if s.scores == nil {
		return validation.Scores{}, false
	}
	return *s.scores, true
}

// WithDocuments replaces the document list.
func (s State) WithDocuments(docs []knowledge.Document) State {
	s.documents = slices.Clone(docs)
	return s
}

// WithContext sets the assembled context text.
func (s State) WithContext(text string) State {
	s.context = text
	return s
}

// WithAnswer records generated text and the backend that produced it.
func (s State) WithAnswer(text, model string) State {
	s.answer = text
	s.model = model
	return s
}

// WithValidation replaces the answer with its validated form.
func (s State) WithValidation(text string, scores validation.Scores) State {
	s.answer = text
	scores.Citations = slices.Clone(scores.Citations)
	s.scores = &scores
	return s
}

// WithWarning appends a non-fatal warning.
func (s State) WithWarning(msg string) State {
	s.warnings = append(slices.Clip(s.warnings), msg)
	return s
}

func (s State) withRecord(r StageRecord) State {
	s.records = append(slices.Clip(s.records), r)
	return s
}
