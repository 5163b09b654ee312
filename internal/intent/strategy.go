//-------------------------------------------------------------------------
//
// pgEdge Model Discovery
//
// Copyright (c) 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package intent

import (
	"fmt"
	"math"
)

// Strategy is the scoring and assembly recipe attached to an intent.
type Strategy struct {
	Intent           Intent        `json:"intent"`
	RetrievalWeight  float64       `json:"retrieval_weight"`
	GenerationWeight float64       `json:"generation_weight"`
	Focus            ContextFocus  `json:"context_focus"`
	Style            ResponseStyle `json:"response_style"`
}

// Resolution is an already-classified intent together with its strategy.
// It is immutable once built.
type Resolution struct {
	Intent     Intent   `json:"intent"`
	Confidence float64  `json:"confidence"`
	Strategy   Strategy `json:"strategy"`
}

// Default returns the built-in strategy for an intent.
func Default(i Intent) Strategy {
	switch i {
	case ModelInfo:
		return Strategy{Intent: i, RetrievalWeight: 0.8, GenerationWeight: 0.2, Focus: FocusExactMatch, Style: StyleDirect}
	case Comparison:
		return Strategy{Intent: i, RetrievalWeight: 0.6, GenerationWeight: 0.4, Focus: FocusMultiEntity, Style: StyleComparative}
	case UseCase:
		return Strategy{Intent: i, RetrievalWeight: 0.5, GenerationWeight: 0.5, Focus: FocusUseCaseMatch, Style: StyleAdvisory}
	case Technical:
		return Strategy{Intent: i, RetrievalWeight: 0.7, GenerationWeight: 0.3, Focus: FocusTechnicalDetail, Style: StyleTechnical}
	case Capability:
		return Strategy{Intent: i, RetrievalWeight: 0.6, GenerationWeight: 0.4, Focus: FocusCapabilityMatch, Style: StyleDescriptive}
	case Troubleshooting:
		return Strategy{Intent: i, RetrievalWeight: 0.6, GenerationWeight: 0.4, Focus: FocusProblemSolution, Style: StyleStepByStep}
	default:
		return Strategy{Intent: General, RetrievalWeight: 0.5, GenerationWeight: 0.5, Focus: FocusExactMatch, Style: StyleConcise}
	}
}

// Override replaces the weights of one intent's default strategy.
type Override struct {
	Intent           Intent
	RetrievalWeight  float64
	GenerationWeight float64
}

// Table resolves intents to strategies. The zero value serves the
// built-in defaults.
type Table struct {
	overrides map[Intent]Override
}

// NewTable builds a table with per-intent weight overrides.
func NewTable(overrides ...Override) (*Table, error) {
	t := &Table{overrides: make(map[Intent]Override, len(overrides))}
	for _, o := range overrides {
		if !validWeight(o.RetrievalWeight) || !validWeight(o.GenerationWeight) {
			return nil, fmt.Errorf("strategy %s: weights must be within [0, 1]", o.Intent)
		}
		if o.RetrievalWeight+o.GenerationWeight == 0 {
			return nil, fmt.Errorf("strategy %s: weights must not both be zero", o.Intent)
		}
		t.overrides[o.Intent] = o
	}
	return t, nil
}

// Lookup returns the strategy for an intent.
func (t *Table) Lookup(i Intent) Strategy {
	s := Default(i)
	if t == nil {
		return s
	}
	if o, ok := t.overrides[i]; ok {
		s.RetrievalWeight = o.RetrievalWeight
		s.GenerationWeight = o.GenerationWeight
	}
	return s
}

// Resolve turns an externally classified {intent, confidence} pair into a
// Resolution. Confidence is clamped to [0, 1].
func (t *Table) Resolve(name string, confidence float64) (Resolution, error) {
	i, err := Parse(name)
	if err != nil {
		return Resolution{}, err
	}
	if math.IsNaN(confidence) {
		confidence = 0
	}
	return Resolution{
		Intent:     i,
		Confidence: math.Max(0, math.Min(1, confidence)),
		Strategy:   t.Lookup(i),
	}, nil
}

func validWeight(w float64) bool {
	return !math.IsNaN(w) && w >= 0 && w <= 1
}
