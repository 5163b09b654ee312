//-------------------------------------------------------------------------
//
// pgEdge Model Discovery
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/pgEdge/pgedge-discovery/internal/config"
	"github.com/pgEdge/pgedge-discovery/internal/knowledge"
)

const defaultSearchLimit = 10

// KnowledgeBase answers knowledge queries with PostgreSQL full-text
// search. Similarity is ts_rank_cd with normalization 32, which maps the
// rank into [0, 1).
type KnowledgeBase struct {
	db    querier
	src   config.TableSource
	query string
	args  []any // filter arguments, bound after the fixed parameters
}

// NewKnowledgeBase prepares a search over src.
func NewKnowledgeBase(db querier, src config.TableSource) (*KnowledgeBase, error) {
	if src.Table == "" || src.TextColumn == "" {
		return nil, errors.New("knowledge base table and text column are required")
	}
	if src.IDColumn == "" {
		src.IDColumn = "id"
	}
	if src.Language == "" {
		src.Language = "english"
	}

	query, args, err := buildSearchQuery(src)
	if err != nil {
		return nil, err
	}
	return &KnowledgeBase{db: db, src: src, query: query, args: args}, nil
}

// buildSearchQuery renders the search statement. $1 is the text search
// configuration, $2 the query text and $3 the limit; filter parameters
// follow.
func buildSearchQuery(src config.TableSource) (string, []any, error) {
	text := pgx.Identifier{src.TextColumn}.Sanitize()
	metadata := "NULL::jsonb"
	if src.MetadataColumn != "" {
		metadata = pgx.Identifier{src.MetadataColumn}.Sanitize() + "::jsonb"
	}

	paramIndex := 4
	filter, args, err := filterCondition(src.Filter, &paramIndex)
	if err != nil {
		return "", nil, fmt.Errorf("invalid knowledge base filter: %w", err)
	}
	where := fmt.Sprintf("to_tsvector($1::regconfig, %s) @@ query", text)
	if filter != "" {
		where += " AND " + filter
	}

	query := fmt.Sprintf(`
		SELECT
			%s::text AS id,
			%s AS content,
			%s AS metadata,
			ts_rank_cd(to_tsvector($1::regconfig, %s), query, 32) AS similarity
		FROM %s, websearch_to_tsquery($1::regconfig, $2) AS query
		WHERE %s
		ORDER BY similarity DESC
		LIMIT $3`,
		pgx.Identifier{src.IDColumn}.Sanitize(),
		text,
		metadata,
		text,
		parseTableIdentifier(src.Table).Sanitize(),
		where,
	)
	return query, args, nil
}

// Query implements knowledge.KnowledgeBase. No matches is an empty result,
// not an error.
func (kb *KnowledgeBase) Query(ctx context.Context, text string, opts knowledge.QueryOptions) ([]knowledge.Document, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	args := append([]any{kb.src.Language, text, limit}, kb.args...)
	rows, err := kb.db.Query(ctx, kb.query, args...)
	if err != nil {
		return nil, fmt.Errorf("full-text search failed: %w", err)
	}
	defer rows.Close()

	var docs []knowledge.Document
	for rows.Next() {
		var d knowledge.Document
		if err := rows.Scan(&d.ID, &d.Content, &d.Metadata, &d.Similarity); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		if d.Similarity < opts.Threshold {
			continue
		}
		d.FinalScore = d.Similarity
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return docs, nil
}
