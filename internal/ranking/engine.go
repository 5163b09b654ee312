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
	"fmt"
	"log/slog"
	"slices"

	"github.com/pgEdge/pgedge-discovery/internal/catalog"
)

// Request asks for a ranking of catalog models.
type Request struct {
	Models []string `json:"models"`
	// Criteria names registered criteria. Empty uses the keys of Weights,
	// or every registered criterion when Weights is empty too.
	Criteria []string `json:"criteria,omitempty"`
	// Weights by criterion name. Empty uses the registered default weights
	// when Criteria is empty and equal weights otherwise.
	Weights     map[string]float64 `json:"weights,omitempty"`
	Algorithm   Algorithm          `json:"algorithm,omitempty"`
	Preferences [][]float64        `json:"preferences,omitempty"`
}

// EngineConfig configures an Engine.
type EngineConfig struct {
	Criteria         []Criterion // registry of known criteria with default weights
	DefaultAlgorithm Algorithm
	Tolerance        float64
	Catalog          catalog.Catalog
	Logger           *slog.Logger
}

// Engine resolves requests against the criterion registry and catalog and
// runs the requested algorithm. Its methods never return errors: failures
// come back as a Result with Error set and zero confidence.
type Engine struct {
	registry    []Criterion
	defaultAlgo Algorithm
	tolerance   float64
	catalog     catalog.Catalog
	logger      *slog.Logger
}

// NewEngine validates the registry and creates an engine.
func NewEngine(cfg EngineConfig) (*Engine, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.DefaultAlgorithm == "" {
		cfg.DefaultAlgorithm = WeightedScoreAlgorithm
	}
	if _, err := Lookup(cfg.DefaultAlgorithm); err != nil {
		return nil, err
	}
	if cfg.Tolerance <= 0 {
		cfg.Tolerance = DefaultTolerance
	}

	seen := make(map[string]bool, len(cfg.Criteria))
	for _, c := range cfg.Criteria {
		if c.Name == "" || seen[c.Name] {
			return nil, fmt.Errorf("invalid or duplicate criterion %q", c.Name)
		}
		if c.Direction != Benefit && c.Direction != Cost {
			return nil, fmt.Errorf("criterion %s has unknown direction %q", c.Name, c.Direction)
		}
		seen[c.Name] = true
	}

	return &Engine{
		registry:    slices.Clone(cfg.Criteria),
		defaultAlgo: cfg.DefaultAlgorithm,
		tolerance:   cfg.Tolerance,
		catalog:     cfg.Catalog,
		logger:      logger.With("component", "ranking"),
	}, nil
}

// Criteria returns the criterion registry.
func (e *Engine) Criteria() []Criterion {
	return slices.Clone(e.registry)
}

// Rank ranks req.Models with req.Algorithm, or the default algorithm.
func (e *Engine) Rank(ctx context.Context, req Request) (res Result) {
	algo := req.Algorithm
	if algo == "" {
		algo = e.defaultAlgo
	}
	defer func() {
		if r := recover(); r != nil {
			res = e.failed(algo, fmt.Errorf("panic: %v", r))
		}
	}()

	fn, err := Lookup(algo)
	if err != nil {
		return e.failed(algo, err)
	}
	criteria, err := e.resolve(req)
	if err != nil {
		return e.failed(algo, err)
	}
	m, err := BuildMatrix(ctx, e.catalog, req.Models, criteria, e.tolerance)
	if err != nil {
		return e.failed(algo, err)
	}
	res, err = fn(ctx, m, Options{Preferences: req.Preferences})
	if err != nil {
		return e.failed(algo, err)
	}

	e.logger.Debug("ranking complete", "algorithm", algo, "models", m.Rows(),
		"criteria", m.Cols(), "confidence", res.Confidence)
	return res
}

// Compare ranks exactly two models head to head on dimensions with equal
// weights. Empty dimensions compares on every registered criterion.
func (e *Engine) Compare(ctx context.Context, modelIDs []string, dimensions []string) Result {
	distinct := slices.Compact(slices.Sorted(slices.Values(modelIDs)))
	if len(modelIDs) != 2 || len(distinct) != 2 {
		return e.failed(WeightedScoreAlgorithm, &MalformedRequestError{Want: 2, Got: len(distinct)})
	}

	if len(dimensions) == 0 {
		for _, c := range e.registry {
			dimensions = append(dimensions, c.Name)
		}
	}
	return e.Rank(ctx, Request{
		Models:    modelIDs,
		Criteria:  dimensions,
		Algorithm: WeightedScoreAlgorithm,
	})
}

// resolve turns the request's criterion names and weights into matrix
// columns, in registry order when no explicit order is given.
func (e *Engine) resolve(req Request) ([]Criterion, error) {
	names := req.Criteria
	if len(names) == 0 {
		for _, c := range e.registry {
			if len(req.Weights) == 0 {
				names = append(names, c.Name)
			} else if _, ok := req.Weights[c.Name]; ok {
				names = append(names, c.Name)
			}
		}
		for name := range req.Weights {
			if !slices.Contains(names, name) {
				return nil, inputErrorf("unknown criterion %q", name)
			}
		}
	}

	out := make([]Criterion, 0, len(names))
	for _, name := range names {
		i := slices.IndexFunc(e.registry, func(c Criterion) bool { return c.Name == name })
		if i < 0 {
			return nil, inputErrorf("unknown criterion %q", name)
		}
		c := e.registry[i]
		switch {
		case len(req.Weights) > 0:
			w, ok := req.Weights[name]
			if !ok {
				return nil, inputErrorf("no weight given for criterion %q", name)
			}
			c.Weight = w
		case len(req.Criteria) > 0:
			c.Weight = 1 / float64(len(names))
		}
		out = append(out, c)
	}

	if len(req.Weights) > 0 {
		for name := range req.Weights {
			if !slices.Contains(names, name) {
				return nil, inputErrorf("weight given for unselected criterion %q", name)
			}
		}
	}
	return out, nil
}

func (e *Engine) failed(algo Algorithm, err error) Result {
	code := CodeInternal
	var input *InputError
	var malformed *MalformedRequestError
	switch {
	case errors.As(err, &input):
		code = CodeInvalidInput
	case errors.As(err, &malformed):
		code = CodeMalformedRequest
	}
	e.logger.Warn("ranking failed", "algorithm", algo, "code", code, "error", err)

	return Result{
		Algorithm: algo,
		Entries:   []Entry{},
		Error:     &ResultError{Code: code, Message: err.Error()},
	}
}
