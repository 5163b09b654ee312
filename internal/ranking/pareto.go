//-------------------------------------------------------------------------
//
// pgEdge Model Discovery
//
// Copyright (c) 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package ranking

import (
	"context"
	"math"
)

// dominatedCeiling keeps every dominated score below the frontier's 1.
const dominatedCeiling = 1 - 1e-6

// Pareto scores frontier models 1. A dominated model scores one minus its
// weighted distance, in normalized criterion space, to the nearest
// frontier model, and always less than 1. When the weighted distance is 0,
// because the model only loses on zero-weight criteria, the unweighted
// distance is used instead.
func Pareto(ctx context.Context, m *Matrix, _ Options) (Result, error) {
	if err := checkContext(ctx, ParetoAlgorithm); err != nil {
		return Result{}, err
	}

	rows := m.Rows()
	oriented := make([][]float64, rows)
	for i := range rows {
		oriented[i] = make([]float64, m.Cols())
		for j, c := range m.criteria {
			oriented[i][j] = m.values[i][j]
			if c.Direction == Cost {
				oriented[i][j] = -oriented[i][j]
			}
		}
	}

	dominatedBy := make([][]string, rows)
	var frontier []int
	for i := range rows {
		for k := range rows {
			if k != i && dominates(oriented[k], oriented[i]) {
				dominatedBy[i] = append(dominatedBy[i], m.models[k])
			}
		}
		if len(dominatedBy[i]) == 0 {
			frontier = append(frontier, i)
		}
	}

	norm := m.normalized()
	weights := m.weights()
	equal := make([]float64, m.Cols())
	for j := range equal {
		equal[j] = 1 / float64(m.Cols())
	}
	entries := make([]Entry, rows)
	for i, model := range m.models {
		score := 1.0
		if len(dominatedBy[i]) > 0 {
			nearest := math.Inf(1)
			for _, f := range frontier {
				d := distance(norm[i], norm[f], weights)
				if d == 0 {
					d = distance(norm[i], norm[f], equal)
				}
				nearest = math.Min(nearest, d)
			}
			score = math.Min(clamp(1-nearest), dominatedCeiling)
		}
		entries[i] = Entry{
			Model:       model,
			Score:       score,
			Reasoning:   reasoning(m, i, norm[i], weights),
			DominatedBy: dominatedBy[i],
		}
	}

	names := make([]string, len(frontier))
	for n, f := range frontier {
		names[n] = m.models[f]
	}

	entries = finish(entries)
	return Result{
		Algorithm:  ParetoAlgorithm,
		Entries:    entries,
		Confidence: float64(rows-len(frontier)+1) / float64(rows),
		Frontier:   names,
	}, nil
}

// dominates reports whether a is at least as good as b everywhere and
// strictly better somewhere. Values are oriented so larger is better.
func dominates(a, b []float64) bool {
	better := false
	for j := range a {
		if a[j] < b[j] {
			return false
		}
		if a[j] > b[j] {
			better = true
		}
	}
	return better
}

// distance is the weighted Euclidean distance between normalized rows.
// With weights summing to 1 it never exceeds 1.
func distance(a, b, weights []float64) float64 {
	sum := 0.0
	for j := range a {
		d := a[j] - b[j]
		sum += weights[j] * d * d
	}
	return math.Sqrt(sum)
}
