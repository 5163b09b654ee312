//-------------------------------------------------------------------------
//
// pgEdge Model Discovery
//
// Copyright (c) 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package catalog provides the per-model metrics that ranking reads.
package catalog

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
)

// Metric names produced by the ArtificialAnalysis import. Catalogs may
// carry any other metric names as well.
const (
	MetricIntelligence     = "intelligence_index"
	MetricCoding           = "coding_index"
	MetricMath             = "math_index"
	MetricPriceBlended     = "price_blended"
	MetricOutputSpeed      = "output_speed"
	MetricTimeToFirstToken = "time_to_first_token"
)

// Model is a catalog entry.
type Model struct {
	ID       string             `json:"id" yaml:"id"`
	Name     string             `json:"name,omitempty" yaml:"name"`
	Provider string             `json:"provider,omitempty" yaml:"provider"`
	Metrics  map[string]float64 `json:"metrics" yaml:"metrics"`
}

// Metric returns the named metric and whether the model has it.
func (m Model) Metric(name string) (float64, bool) {
	v, ok := m.Metrics[name]
	return v, ok
}

// Catalog looks up models by id.
type Catalog interface {
	// Get returns the models in the order of ids. Unknown ids produce a
	// *NotFoundError.
	Get(ctx context.Context, ids []string) ([]Model, error)
	// List returns every model, ordered by id.
	List(ctx context.Context) ([]Model, error)
}

// NotFoundError lists ids that the catalog does not know.
type NotFoundError struct {
	IDs []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("unknown model(s): %s", strings.Join(e.IDs, ", "))
}

// Memory is an in-memory Catalog, safe for concurrent use.
type Memory struct {
	mu     sync.RWMutex
	models map[string]Model
}

// NewMemory creates a catalog holding models. Later duplicates replace
// earlier ones.
func NewMemory(models ...Model) *Memory {
	m := &Memory{models: make(map[string]Model, len(models))}
	m.Put(models...)
	return m
}

// Put adds or replaces models.
func (m *Memory) Put(models ...Model) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, model := range models {
		m.models[model.ID] = clone(model)
	}
}

// Len returns the number of models.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.models)
}

// Get implements Catalog.
func (m *Memory) Get(ctx context.Context, ids []string) ([]Model, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Model, 0, len(ids))
	var missing []string
	for _, id := range ids {
		model, ok := m.models[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		out = append(out, clone(model))
	}
	if len(missing) > 0 {
		return nil, &NotFoundError{IDs: missing}
	}
	return out, nil
}

// List implements Catalog.
func (m *Memory) List(ctx context.Context) ([]Model, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Model, 0, len(m.models))
	for _, model := range m.models {
		out = append(out, clone(model))
	}
	slices.SortFunc(out, func(a, b Model) int { return strings.Compare(a.ID, b.ID) })
	return out, nil
}

func clone(m Model) Model {
	metrics := make(map[string]float64, len(m.Metrics))
	for k, v := range m.Metrics {
		metrics[k] = v
	}
	m.Metrics = metrics
	return m
}
