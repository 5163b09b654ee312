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
	"fmt"
	"math"
	"sort"
	"strings"
)

// Algorithm names a ranking algorithm.
type Algorithm string

const (
	WeightedScoreAlgorithm Algorithm = "weighted_score"
	TOPSISAlgorithm        Algorithm = "topsis"
	ParetoAlgorithm        Algorithm = "pareto"
	AHPAlgorithm           Algorithm = "ahp"
	ConsensusAlgorithm     Algorithm = "consensus"
)

// Algorithms lists every algorithm.
var Algorithms = []Algorithm{
	WeightedScoreAlgorithm, TOPSISAlgorithm, ParetoAlgorithm, AHPAlgorithm, ConsensusAlgorithm,
}

// ParseAlgorithm accepts an algorithm name case-insensitively, with "-"
// and "_" interchangeable.
func ParseAlgorithm(s string) (Algorithm, error) {
	a := Algorithm(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	for _, known := range Algorithms {
		if a == known {
			return a, nil
		}
	}
	return "", inputErrorf("unknown algorithm %q", s)
}

// Options tune individual algorithms.
type Options struct {
	// Preferences is the AHP criteria pairwise comparison matrix, in
	// criterion order. Nil derives it from the criterion weights.
	Preferences [][]float64 `json:"preferences,omitempty"`
}

// Func is the signature shared by every algorithm. Algorithms only read m.
type Func func(ctx context.Context, m *Matrix, opts Options) (Result, error)

// Lookup returns the implementation of a.
func Lookup(a Algorithm) (Func, error) {
	switch a {
	case WeightedScoreAlgorithm:
		return WeightedScore, nil
	case TOPSISAlgorithm:
		return TOPSIS, nil
	case ParetoAlgorithm:
		return Pareto, nil
	case AHPAlgorithm:
		return AHP, nil
	case ConsensusAlgorithm:
		return Consensus, nil
	}
	return nil, inputErrorf("unknown algorithm %q", a)
}

// Contribution is one criterion's share of an entry's score.
type Contribution struct {
	Criterion    string  `json:"criterion"`
	Value        float64 `json:"value"`
	Normalized   float64 `json:"normalized"`
	Weight       float64 `json:"weight"`
	Contribution float64 `json:"contribution"`
}

// Entry is one ranked model.
type Entry struct {
	Model       string            `json:"model"`
	Score       float64           `json:"score"`
	Rank        int               `json:"rank"`
	Reasoning   []Contribution    `json:"reasoning"`
	DominatedBy []string          `json:"dominated_by,omitempty"`
	Ranks       map[Algorithm]int `json:"ranks,omitempty"`
}

// Agreement measures how closely the consensus constituents agree.
type Agreement struct {
	// Overall is the mean fraction of model pairs that two algorithms
	// order the same way.
	Overall float64            `json:"overall"`
	Pairs   map[string]float64 `json:"pairs"`
}

// Error codes carried by ResultError.
const (
	CodeInvalidInput     = "invalid_input"
	CodeMalformedRequest = "malformed_request"
	CodeInternal         = "internal"
)

// ResultError explains why no ranking was produced.
type ResultError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Result is an ordered ranking. When Error is set, Entries is empty and
// Confidence is zero.
type Result struct {
	Algorithm        Algorithm    `json:"algorithm"`
	Entries          []Entry      `json:"entries"`
	Confidence       float64      `json:"confidence"`
	Frontier         []string     `json:"frontier,omitempty"`
	ConsistencyRatio *float64     `json:"consistency_ratio,omitempty"`
	Agreement        *Agreement   `json:"agreement,omitempty"`
	Error            *ResultError `json:"error,omitempty"`
}

// Entry returns the entry for model.
func (r Result) Entry(model string) (Entry, bool) {
	for _, e := range r.Entries {
		if e.Model == model {
			return e, true
		}
	}
	return Entry{}, false
}

// Order returns the model ids from best to worst.
func (r Result) Order() []string {
	ids := make([]string, len(r.Entries))
	for i, e := range r.Entries {
		ids[i] = e.Model
	}
	return ids
}

// tieEpsilon is the score difference below which two models share a rank.
const tieEpsilon = 1e-12

// finish sorts entries by descending score, keeping matrix order on ties,
// and assigns competition ranks (1, 2, 2, 4).
func finish(entries []Entry) []Entry {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score+tieEpsilon
	})
	for i := range entries {
		if i > 0 && math.Abs(entries[i].Score-entries[i-1].Score) <= tieEpsilon {
			entries[i].Rank = entries[i-1].Rank
		} else {
			entries[i].Rank = i + 1
		}
	}
	return entries
}

// spreadConfidence rates how decisively the winner leads: 1 when the
// runner-up is as far behind as the last model, 0.5 on a tie for first.
func spreadConfidence(entries []Entry) float64 {
	if len(entries) < 2 {
		return 0
	}
	first, second, last := entries[0].Score, entries[1].Score, entries[len(entries)-1].Score
	if first-last <= tieEpsilon {
		return 0.5
	}
	return clamp(0.5 + 0.5*(first-second)/(first-last))
}

// reasoning breaks a row down by criterion using the given per-criterion
// normalized values and weights.
func reasoning(m *Matrix, i int, normalized []float64, weights []float64) []Contribution {
	out := make([]Contribution, m.Cols())
	for j, c := range m.criteria {
		out[j] = Contribution{
			Criterion:    c.Name,
			Value:        m.values[i][j],
			Normalized:   normalized[j],
			Weight:       weights[j],
			Contribution: normalized[j] * weights[j],
		}
	}
	return out
}

func (m *Matrix) weights() []float64 {
	w := make([]float64, m.Cols())
	for j, c := range m.criteria {
		w[j] = c.Weight
	}
	return w
}

func clamp(x float64) float64 {
	if math.IsNaN(x) {
		return 0
	}
	return math.Max(0, math.Min(1, x))
}

func checkContext(ctx context.Context, a Algorithm) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", a, err)
	}
	return nil
}
