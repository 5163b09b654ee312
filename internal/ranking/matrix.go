//-------------------------------------------------------------------------
//
// pgEdge Model Discovery
//
// Copyright (c) 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package ranking orders models against weighted criteria with several
// multi-criteria decision algorithms.
package ranking

import (
	"context"
	"errors"
	"math"
	"slices"
	"strings"

	"github.com/pgEdge/pgedge-discovery/internal/catalog"
)

// DefaultTolerance is the allowed deviation of the weight sum from 1.
const DefaultTolerance = 1e-6

// Direction says whether larger criterion values are better.
type Direction string

const (
	Benefit Direction = "benefit"
	Cost    Direction = "cost"
)

// ParseDirection accepts benefit or cost, case-insensitively.
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(strings.ToLower(strings.TrimSpace(s))); d {
	case Benefit, Cost:
		return d, nil
	}
	return "", inputErrorf("unknown direction %q", s)
}

// Criterion is one column of a decision matrix.
type Criterion struct {
	Name      string    `json:"name"`
	Direction Direction `json:"direction"`
	Weight    float64   `json:"weight"`
}

// Matrix is an immutable models by criteria table of values.
type Matrix struct {
	models   []string
	criteria []Criterion
	values   [][]float64
}

// NewMatrix validates and copies its inputs. values[i][j] is the value of
// model i on criterion j. A tolerance of zero uses DefaultTolerance.
func NewMatrix(models []string, criteria []Criterion, values [][]float64, tolerance float64) (*Matrix, error) {
	if err := checkShape(models, criteria, tolerance); err != nil {
		return nil, err
	}
	if len(values) != len(models) {
		return nil, inputErrorf("expected %d rows of values, got %d", len(models), len(values))
	}

	rows := make([][]float64, len(values))
	for i, row := range values {
		if len(row) != len(criteria) {
			return nil, inputErrorf("model %s has %d values for %d criteria", models[i], len(row), len(criteria))
		}
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, inputErrorf("model %s has a non-finite %s value", models[i], criteria[j].Name)
			}
		}
		rows[i] = slices.Clone(row)
	}

	return &Matrix{
		models:   slices.Clone(models),
		criteria: slices.Clone(criteria),
		values:   rows,
	}, nil
}

// checkShape validates everything that does not depend on the values.
func checkShape(models []string, criteria []Criterion, tolerance float64) error {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	if len(models) < 2 {
		return inputErrorf("at least 2 models are required, got %d", len(models))
	}
	if len(criteria) < 1 {
		return inputErrorf("at least 1 criterion is required")
	}

	seen := make(map[string]bool, len(models))
	for _, m := range models {
		if m == "" {
			return inputErrorf("empty model id")
		}
		if seen[m] {
			return inputErrorf("duplicate model %q", m)
		}
		seen[m] = true
	}

	names := make(map[string]bool, len(criteria))
	sum := 0.0
	for _, c := range criteria {
		if c.Name == "" {
			return inputErrorf("empty criterion name")
		}
		if names[c.Name] {
			return inputErrorf("duplicate criterion %q", c.Name)
		}
		names[c.Name] = true
		if c.Direction != Benefit && c.Direction != Cost {
			return inputErrorf("criterion %s has unknown direction %q", c.Name, c.Direction)
		}
		if c.Weight < 0 || math.IsNaN(c.Weight) || math.IsInf(c.Weight, 0) {
			return inputErrorf("criterion %s has invalid weight %v", c.Name, c.Weight)
		}
		sum += c.Weight
	}
	if math.Abs(sum-1) > tolerance {
		return inputErrorf("criterion weights sum to %.6g, not 1", sum)
	}
	return nil
}

// Models returns the model ids in row order.
func (m *Matrix) Models() []string { return slices.Clone(m.models) }

// Criteria returns the criteria in column order.
func (m *Matrix) Criteria() []Criterion { return slices.Clone(m.criteria) }

// Rows returns the number of models.
func (m *Matrix) Rows() int { return len(m.models) }

// Cols returns the number of criteria.
func (m *Matrix) Cols() int { return len(m.criteria) }

// Value returns the value of model i on criterion j.
func (m *Matrix) Value(i, j int) float64 { return m.values[i][j] }

// Column returns a copy of criterion j's values.
func (m *Matrix) Column(j int) []float64 {
	col := make([]float64, len(m.values))
	for i := range m.values {
		col[i] = m.values[i][j]
	}
	return col
}

// normalized scales every column to [0, 1] with 1 the best value for the
// criterion's direction. A constant column is 1 throughout.
func (m *Matrix) normalized() [][]float64 {
	out := make([][]float64, m.Rows())
	for i := range out {
		out[i] = make([]float64, m.Cols())
	}
	for j, c := range m.criteria {
		col := m.Column(j)
		lo, hi := slices.Min(col), slices.Max(col)
		for i, v := range col {
			switch {
			case hi == lo:
				out[i][j] = 1
			case c.Direction == Cost:
				out[i][j] = (hi - v) / (hi - lo)
			default:
				out[i][j] = (v - lo) / (hi - lo)
			}
		}
	}
	return out
}

// BuildMatrix reads the criteria values of ids from cat. The request shape
// is checked before the catalog is consulted.
func BuildMatrix(ctx context.Context, cat catalog.Catalog, ids []string, criteria []Criterion, tolerance float64) (*Matrix, error) {
	if err := checkShape(ids, criteria, tolerance); err != nil {
		return nil, err
	}
	if cat == nil {
		return nil, errors.New("no model catalog configured")
	}

	models, err := cat.Get(ctx, ids)
	if err != nil {
		var nf *catalog.NotFoundError
		if errors.As(err, &nf) {
			return nil, &InputError{Reason: nf.Error()}
		}
		return nil, err
	}

	values := make([][]float64, len(models))
	for i, model := range models {
		values[i] = make([]float64, len(criteria))
		for j, c := range criteria {
			v, ok := model.Metric(c.Name)
			if !ok {
				return nil, inputErrorf("model %s has no value for %s", model.ID, c.Name)
			}
			values[i][j] = v
		}
	}
	return NewMatrix(ids, criteria, values, tolerance)
}
