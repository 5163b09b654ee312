//-------------------------------------------------------------------------
//
// pgEdge Model Discovery
//
// Copyright (c) 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/pgEdge/pgedge-discovery/internal/catalog"
)

// Catalog reads model metrics from a long-format table with the columns
// model_id, model_name, provider, metric and value. Rows with a NULL value
// are ignored.
type Catalog struct {
	db    querier
	table string
}

// NewCatalog creates a catalog over table ("table" or "schema.table").
func NewCatalog(db querier, table string) (*Catalog, error) {
	if table == "" {
		return nil, errors.New("catalog table is required")
	}
	return &Catalog{db: db, table: table}, nil
}

type metricRow struct {
	id       string
	name     string
	provider string
	metric   string
	value    *float64
}

func buildMetricsQuery(table string, byID bool) string {
	query := fmt.Sprintf(`
		SELECT model_id, coalesce(model_name, ''), coalesce(provider, ''), metric, value
		FROM %s`, parseTableIdentifier(table).Sanitize())
	if byID {
		query += `
		WHERE model_id = ANY($1)`
	}
	return query + `
		ORDER BY model_id, metric`
}

// Get implements catalog.Catalog.
func (c *Catalog) Get(ctx context.Context, ids []string) ([]catalog.Model, error) {
	rows, err := c.fetch(ctx, buildMetricsQuery(c.table, true), ids)
	if err != nil {
		return nil, err
	}
	return selectModels(ids, collectModels(rows))
}

// List implements catalog.Catalog.
func (c *Catalog) List(ctx context.Context) ([]catalog.Model, error) {
	rows, err := c.fetch(ctx, buildMetricsQuery(c.table, false))
	if err != nil {
		return nil, err
	}
	return collectModels(rows), nil
}

func (c *Catalog) fetch(ctx context.Context, query string, args ...any) ([]metricRow, error) {
	rows, err := c.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query model metrics: %w", err)
	}
	defer rows.Close()

	var out []metricRow
	for rows.Next() {
		var r metricRow
		if err := rows.Scan(&r.id, &r.name, &r.provider, &r.metric, &r.value); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return out, nil
}

// collectModels folds metric rows into models, keeping row order.
func collectModels(rows []metricRow) []catalog.Model {
	var models []catalog.Model
	index := make(map[string]int)
	for _, r := range rows {
		i, ok := index[r.id]
		if !ok {
			i = len(models)
			index[r.id] = i
			models = append(models, catalog.Model{ID: r.id, Metrics: make(map[string]float64)})
		}
		m := &models[i]
		if m.Name == "" {
			m.Name = r.name
		}
		if m.Provider == "" {
			m.Provider = r.provider
		}
		if r.value != nil {
			m.Metrics[r.metric] = *r.value
		}
	}
	return models
}

// selectModels orders models by ids and reports the ids not found.
func selectModels(ids []string, models []catalog.Model) ([]catalog.Model, error) {
	byID := make(map[string]catalog.Model, len(models))
	for _, m := range models {
		byID[m.ID] = m
	}

	out := make([]catalog.Model, 0, len(ids))
	var missing []string
	for _, id := range ids {
		m, ok := byID[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		out = append(out, m)
	}
	if len(missing) > 0 {
		return nil, &catalog.NotFoundError{IDs: missing}
	}
	return out, nil
}
