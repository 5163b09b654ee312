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
	"errors"
	"math"
)

// randomIndex holds Saaty's random consistency index for n = 1..10.
var randomIndex = []float64{0, 0, 0.58, 0.90, 1.12, 1.24, 1.32, 1.41, 1.45, 1.49}

// consistencyLimit is the ratio above which judgements are considered
// inconsistent.
const consistencyLimit = 0.1

// minWeight stands in for zero weights when deriving weight ratios.
const minWeight = 1e-9

// AHP combines a criteria priority vector with per-criterion alternative
// priorities. Alternatives are compared on a 1 to 9 scale derived from
// their normalized values. The consistency ratio of the criteria matrix
// is reported when there are at least three criteria.
func AHP(ctx context.Context, m *Matrix, opts Options) (Result, error) {
	if err := checkContext(ctx, AHPAlgorithm); err != nil {
		return Result{}, err
	}

	criteriaMatrix := opts.Preferences
	if criteriaMatrix == nil {
		criteriaMatrix = ratioMatrix(m.weights())
	}
	if err := checkPairwise(criteriaMatrix, m.Cols()); err != nil {
		return Result{}, err
	}
	criteriaWeights, err := Priority(criteriaMatrix)
	if err != nil {
		return Result{}, err
	}

	norm := m.normalized()
	local := make([][]float64, m.Rows())
	for i := range local {
		local[i] = make([]float64, m.Cols())
	}
	for j := range m.Cols() {
		scale := make([]float64, m.Rows())
		for i := range scale {
			scale[i] = 1 + 8*norm[i][j]
		}
		p, err := Priority(ratioMatrix(scale))
		if err != nil {
			return Result{}, err
		}
		for i := range p {
			local[i][j] = p[i]
		}
	}

	entries := make([]Entry, m.Rows())
	for i, model := range m.models {
		e := Entry{Model: model, Reasoning: reasoning(m, i, local[i], criteriaWeights)}
		for _, c := range e.Reasoning {
			e.Score += c.Contribution
		}
		entries[i] = e
	}

	entries = finish(entries)
	res := Result{
		Algorithm:  AHPAlgorithm,
		Entries:    entries,
		Confidence: spreadConfidence(entries),
	}
	if m.Cols() >= 3 {
		cr := ConsistencyRatio(criteriaMatrix, criteriaWeights)
		res.ConsistencyRatio = &cr
		if cr > consistencyLimit {
			res.Confidence = clamp(res.Confidence * (1 - cr))
		}
	}
	return res, nil
}

// Priority approximates the principal eigenvector of a pairwise
// comparison matrix: each column is divided by its sum and the rows are
// averaged. The result is non-negative and sums to 1.
func Priority(matrix [][]float64) ([]float64, error) {
	n := len(matrix)
	if n == 0 {
		return nil, errors.New("empty comparison matrix")
	}

	colSums := make([]float64, n)
	for _, row := range matrix {
		if len(row) != n {
			return nil, inputErrorf("comparison matrix is not square")
		}
		for j, v := range row {
			colSums[j] += v
		}
	}

	p := make([]float64, n)
	for i, row := range matrix {
		for j, v := range row {
			if colSums[j] > 0 {
				p[i] += v / colSums[j]
			}
		}
		p[i] /= float64(n)
	}

	// Re-normalize to absorb floating point drift.
	sum := 0.0
	for _, v := range p {
		sum += v
	}
	if sum <= 0 {
		return nil, inputErrorf("comparison matrix has no positive entries")
	}
	for i := range p {
		p[i] /= sum
	}
	return p, nil
}

// ConsistencyRatio returns Saaty's consistency ratio for matrix given its
// priority vector. Matrices smaller than 3x3 are always consistent.
func ConsistencyRatio(matrix [][]float64, priority []float64) float64 {
	n := len(matrix)
	if n < 3 {
		return 0
	}

	lambda := 0.0
	for i, row := range matrix {
		weighted := 0.0
		for j, v := range row {
			weighted += v * priority[j]
		}
		if priority[i] > 0 {
			lambda += weighted / priority[i]
		}
	}
	lambda /= float64(n)

	ci := (lambda - float64(n)) / float64(n-1)
	ri := randomIndex[min(n, len(randomIndex))-1]
	return math.Max(0, ci/ri)
}

// ratioMatrix builds the perfectly consistent matrix a[i][j] = v[i]/v[j].
func ratioMatrix(v []float64) [][]float64 {
	out := make([][]float64, len(v))
	for i := range v {
		out[i] = make([]float64, len(v))
		for j := range v {
			out[i][j] = math.Max(v[i], minWeight) / math.Max(v[j], minWeight)
		}
	}
	return out
}

// checkPairwise validates a caller-supplied criteria matrix: square,
// positive, unit diagonal and reciprocal.
func checkPairwise(matrix [][]float64, n int) error {
	if len(matrix) != n {
		return inputErrorf("preference matrix has %d rows for %d criteria", len(matrix), n)
	}
	for i, row := range matrix {
		if len(row) != n {
			return inputErrorf("preference matrix row %d has %d entries, want %d", i, len(row), n)
		}
	}
	for i, row := range matrix {
		for j, v := range row {
			if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
				return inputErrorf("preference matrix entry [%d][%d] must be positive", i, j)
			}
			if i == j && math.Abs(v-1) > 1e-9 {
				return inputErrorf("preference matrix diagonal must be 1")
			}
			if math.Abs(v*matrix[j][i]-1) > 1e-3 {
				return inputErrorf("preference matrix entries [%d][%d] and [%d][%d] are not reciprocal", i, j, j, i)
			}
		}
	}
	return nil
}
