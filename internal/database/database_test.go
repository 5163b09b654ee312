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
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/pgEdge/pgedge-discovery/internal/catalog"
	"github.com/pgEdge/pgedge-discovery/internal/config"
)

func TestBuildConnectionString(t *testing.T) {
	t.Setenv("PGUSER", "")
	t.Setenv("USER", "fallback")

	got := buildConnectionString(config.DatabaseConfig{
		Host:      "db.example.com",
		Port:      5433,
		Database:  "models",
		SSLMode:   "verify-full",
		SSLRootCA: "/etc/ssl/root.crt",
	})
	want := "host=db.example.com port=5433 dbname=models user=fallback sslmode=verify-full sslrootcert=/etc/ssl/root.crt"
	if got != want {
		t.Errorf("connection string mismatch:\nexpected: %q\ngot:      %q", want, got)
	}

	t.Setenv("PGUSER", "pguser")
	got = buildConnectionString(config.DatabaseConfig{Host: "h", Port: 5432, Database: "d", Username: "explicit"})
	if !strings.Contains(got, "user=explicit") {
		t.Errorf("expected configured username to win: %s", got)
	}
	got = buildConnectionString(config.DatabaseConfig{Host: "h", Port: 5432, Database: "d"})
	if !strings.Contains(got, "user=pguser") {
		t.Errorf("expected PGUSER fallback: %s", got)
	}
}

func TestNewKnowledgeBase(t *testing.T) {
	if _, err := NewKnowledgeBase(nil, config.TableSource{Table: "docs"}); err == nil {
		t.Error("expected error without a text column")
	}

	kb, err := NewKnowledgeBase(nil, config.TableSource{Table: "public.docs", TextColumn: "body"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if kb.src.IDColumn != "id" || kb.src.Language != "english" {
		t.Errorf("defaults not applied: %+v", kb.src)
	}

	_, err = NewKnowledgeBase(nil, config.TableSource{
		Table:      "docs",
		TextColumn: "body",
		Filter:     structured("", config.FilterCondition{Column: "a", Operator: "BETWEEN", Value: 1}),
	})
	if err == nil {
		t.Error("expected error for invalid filter")
	}
}

func TestBuildSearchQuery(t *testing.T) {
	sql, args, err := buildSearchQuery(config.TableSource{
		Table:          "kb.documents",
		IDColumn:       "doc_id",
		TextColumn:     "body",
		MetadataColumn: "meta",
		Language:       "english",
		Filter: structured("", config.FilterCondition{
			Column: "kind", Operator: "IN", Value: []any{"model_card", "guide"},
		}),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{
		`"doc_id"::text AS id`,
		`"meta"::jsonb AS metadata`,
		`ts_rank_cd(to_tsvector($1::regconfig, "body"), query, 32) AS similarity`,
		`FROM "kb"."documents", websearch_to_tsquery($1::regconfig, $2) AS query`,
		`WHERE to_tsvector($1::regconfig, "body") @@ query AND ("kind" IN ($4, $5))`,
		`LIMIT $3`,
	} {
		if !strings.Contains(sql, want) {
			t.Errorf("query missing %q:\n%s", want, sql)
		}
	}
	if !reflect.DeepEqual(args, []any{"model_card", "guide"}) {
		t.Errorf("unexpected filter args: %v", args)
	}

	sql, args, err = buildSearchQuery(config.TableSource{Table: "docs", IDColumn: "id", TextColumn: "body"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(sql, "NULL::jsonb AS metadata") {
		t.Errorf("expected NULL metadata without a metadata column:\n%s", sql)
	}
	if len(args) != 0 {
		t.Errorf("expected no filter args, got %v", args)
	}
}

func TestBuildMetricsQuery(t *testing.T) {
	sql := buildMetricsQuery("analytics.model_metrics", true)
	if !strings.Contains(sql, `FROM "analytics"."model_metrics"`) {
		t.Errorf("table not sanitized:\n%s", sql)
	}
	if !strings.Contains(sql, "WHERE model_id = ANY($1)") {
		t.Errorf("missing id filter:\n%s", sql)
	}
	if strings.Contains(buildMetricsQuery("m", false), "WHERE") {
		t.Error("list query should not filter")
	}
}

func ptr(v float64) *float64 { return &v }

func TestCollectModels(t *testing.T) {
	rows := []metricRow{
		{id: "gpt-4o", name: "GPT-4o", provider: "OpenAI", metric: "coding_index", value: ptr(27)},
		{id: "gpt-4o", metric: "price_blended", value: ptr(4.38)},
		{id: "llama", name: "Llama", metric: "coding_index", value: nil},
	}
	models := collectModels(rows)
	if len(models) != 2 {
		t.Fatalf("expected 2 models, got %d", len(models))
	}
	if models[0].Name != "GPT-4o" || models[0].Provider != "OpenAI" {
		t.Errorf("unexpected model header: %+v", models[0])
	}
	if models[0].Metrics["price_blended"] != 4.38 || len(models[0].Metrics) != 2 {
		t.Errorf("unexpected metrics: %v", models[0].Metrics)
	}
	if len(models[1].Metrics) != 0 {
		t.Errorf("NULL values should be skipped: %v", models[1].Metrics)
	}

	got, err := selectModels([]string{"llama", "gpt-4o"}, models)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got[0].ID != "llama" || got[1].ID != "gpt-4o" {
		t.Errorf("models not in request order: %v, %v", got[0].ID, got[1].ID)
	}

	_, err = selectModels([]string{"gpt-4o", "mystery"}, models)
	var nf *catalog.NotFoundError
	if !errors.As(err, &nf) || !reflect.DeepEqual(nf.IDs, []string{"mystery"}) {
		t.Errorf("expected NotFoundError for mystery, got %v", err)
	}
}

func TestNewCatalog(t *testing.T) {
	if _, err := NewCatalog(nil, ""); err == nil {
		t.Error("expected error without a table")
	}
}
