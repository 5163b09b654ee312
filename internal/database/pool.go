//-------------------------------------------------------------------------
//
// pgEdge Model Discovery
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package database provides the PostgreSQL backed knowledge base and model
// catalog.
package database

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pgEdge/pgedge-discovery/internal/config"
)

// querier is the subset of pgxpool.Pool used by the adapters.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Pool wraps a pgxpool connection pool.
type Pool struct {
	pool *pgxpool.Pool
}

// NewPool connects to the configured database and verifies the
// connection.
func NewPool(ctx context.Context, cfg config.DatabaseConfig) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(buildConnectionString(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Pool{pool: pool}, nil
}

// buildConnectionString constructs a keyword/value connection string.
// The user falls back to PGUSER, then USER.
func buildConnectionString(cfg config.DatabaseConfig) string {
	parts := []string{
		fmt.Sprintf("host=%s", cfg.Host),
		fmt.Sprintf("port=%d", cfg.Port),
		fmt.Sprintf("dbname=%s", cfg.Database),
	}

	username := cfg.Username
	if username == "" {
		username = os.Getenv("PGUSER")
	}
	if username == "" {
		username = os.Getenv("USER")
	}

	for _, kv := range [][2]string{
		{"user", username},
		{"password", cfg.Password},
		{"sslmode", cfg.SSLMode},
		{"sslcert", cfg.SSLCert},
		{"sslkey", cfg.SSLKey},
		{"sslrootcert", cfg.SSLRootCA},
	} {
		if kv[1] != "" {
			parts = append(parts, kv[0]+"="+kv[1])
		}
	}
	return strings.Join(parts, " ")
}

// KnowledgeBase returns a full-text knowledge base over src.
func (p *Pool) KnowledgeBase(src config.TableSource) (*KnowledgeBase, error) {
	return NewKnowledgeBase(p.pool, src)
}

// Catalog returns a model catalog over a long-format metrics table.
func (p *Pool) Catalog(table string) (*Catalog, error) {
	return NewCatalog(p.pool, table)
}

// Ping verifies the database connection.
func (p *Pool) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Close closes the connection pool.
func (p *Pool) Close() {
	if p.pool != nil {
		p.pool.Close()
	}
}

// parseTableIdentifier splits "table" or "schema.table" into an
// identifier.
func parseTableIdentifier(table string) pgx.Identifier {
	return pgx.Identifier(strings.Split(table, "."))
}
