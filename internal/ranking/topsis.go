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

// TOPSIS ranks by relative closeness to the ideal solution. Columns are
// vector normalized and weighted; the ideal takes each criterion's best
// value and the negative ideal its worst.
func TOPSIS(ctx context.Context, m *Matrix, _ Options) (Result, error) {
	if err := checkContext(ctx, TOPSISAlgorithm); err != nil {
		return Result{}, err
	}

	rows, cols := m.Rows(), m.Cols()
	weights := m.weights()
	norm := make([][]float64, rows)
	weighted := make([][]float64, rows)
	for i := range rows {
		norm[i] = make([]float64, cols)
		weighted[i] = make([]float64, cols)
	}

	ideal := make([]float64, cols)
	worst := make([]float64, cols)
	for j, c := range m.criteria {
		length := 0.0
		for i := range rows {
			length += m.values[i][j] * m.values[i][j]
		}
		length = math.Sqrt(length)

		for i := range rows {
			if length > 0 {
				norm[i][j] = m.values[i][j] / length
			}
			weighted[i][j] = norm[i][j] * weights[j]
		}

		col := make([]float64, rows)
		for i := range rows {
			col[i] = weighted[i][j]
		}
		hi, lo := maxOf(col), minOf(col)
		if c.Direction == Cost {
			ideal[j], worst[j] = lo, hi
		} else {
			ideal[j], worst[j] = hi, lo
		}
	}

	entries := make([]Entry, rows)
	for i, model := range m.models {
		dPos, dNeg := 0.0, 0.0
		for j := range cols {
			dPos += (weighted[i][j] - ideal[j]) * (weighted[i][j] - ideal[j])
			dNeg += (weighted[i][j] - worst[j]) * (weighted[i][j] - worst[j])
		}
		dPos, dNeg = math.Sqrt(dPos), math.Sqrt(dNeg)

		closeness := 0.5
		if dPos+dNeg > 0 {
			closeness = dNeg / (dPos + dNeg)
		}
		entries[i] = Entry{
			Model:     model,
			Score:     clamp(closeness),
			Reasoning: reasoning(m, i, norm[i], weights),
		}
	}

	entries = finish(entries)
	return Result{
		Algorithm:  TOPSISAlgorithm,
		Entries:    entries,
		Confidence: spreadConfidence(entries),
	}, nil
}

func maxOf(xs []float64) float64 {
	out := math.Inf(-1)
	for _, x := range xs {
		out = math.Max(out, x)
	}
	return out
}

func minOf(xs []float64) float64 {
	out := math.Inf(1)
	for _, x := range xs {
		out = math.Min(out, x)
	}
	return out
}
