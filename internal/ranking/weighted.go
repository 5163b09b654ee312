//-------------------------------------------------------------------------
//
// pgEdge Model Discovery
//
// Copyright (c) 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package ranking

import "context"

// WeightedScore min-max normalizes every criterion, orienting cost
// criteria so that 1 is always best, and sums the weighted values.
func WeightedScore(ctx context.Context, m *Matrix, _ Options) (Result, error) {
	if err := checkContext(ctx, WeightedScoreAlgorithm); err != nil {
		return Result{}, err
	}

	norm := m.normalized()
	weights := m.weights()
	entries := make([]Entry, m.Rows())
	for i, model := range m.models {
		e := Entry{Model: model, Reasoning: reasoning(m, i, norm[i], weights)}
		for _, c := range e.Reasoning {
			e.Score += c.Contribution
		}
		e.Score = clamp(e.Score)
		entries[i] = e
	}

	entries = finish(entries)
	return Result{
		Algorithm:  WeightedScoreAlgorithm,
		Entries:    entries,
		Confidence: spreadConfidence(entries),
	}, nil
}
