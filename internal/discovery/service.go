//-------------------------------------------------------------------------
//
// pgEdge Model Discovery
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package discovery assembles the query pipeline and ranking engine from
// configuration and exposes them behind a response cache.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pgEdge/pgedge-discovery/internal/assembly"
	"github.com/pgEdge/pgedge-discovery/internal/cache"
	"github.com/pgEdge/pgedge-discovery/internal/catalog"
	"github.com/pgEdge/pgedge-discovery/internal/config"
	"github.com/pgEdge/pgedge-discovery/internal/database"
	"github.com/pgEdge/pgedge-discovery/internal/generation"
	"github.com/pgEdge/pgedge-discovery/internal/intent"
	"github.com/pgEdge/pgedge-discovery/internal/knowledge"
	"github.com/pgEdge/pgedge-discovery/internal/llm/factory"
	"github.com/pgEdge/pgedge-discovery/internal/pipeline"
	"github.com/pgEdge/pgedge-discovery/internal/ranking"
	"github.com/pgEdge/pgedge-discovery/internal/rerank"
	"github.com/pgEdge/pgedge-discovery/internal/retrieval"
	"github.com/pgEdge/pgedge-discovery/internal/validation"
)

// Cache namespaces.
const (
	queryNamespace   = "query"
	rankNamespace    = "rank"
	compareNamespace = "compare"
)

// Options contains everything needed to create a Service. Only Config is
// required; the other fields replace the component the configuration
// would otherwise build.
type Options struct {
	Config *config.Config
	Keys   *config.LoadedKeys
	Logger *slog.Logger

	KnowledgeBase knowledge.KnowledgeBase
	Catalog       catalog.Catalog
	Backends      []generation.Member
	Cache         cache.Cache
}

// Service answers model questions and ranks models.
type Service struct {
	executor   *pipeline.Executor
	strategies *intent.Table
	engine     *ranking.Engine
	cache      cache.Cache // nil when caching is disabled
	ttl        time.Duration
	db         *database.Pool
	logger     *slog.Logger
}

// New builds a Service. Any database pool it opens is released by Close.
func New(ctx context.Context, opts Options) (*Service, error) {
	if opts.Config == nil {
		return nil, errors.New("configuration is required")
	}
	cfg := opts.Config
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Service{logger: logger.With("component", "discovery"), ttl: cfg.Cache.TTL}
	if err := s.build(ctx, opts, logger); err != nil {
		s.Close()
		return nil, err
	}

	s.logger.Info("discovery service ready",
		"stages", s.executor.Stages(),
		"criteria", len(s.engine.Criteria()),
		"cache", s.cache != nil,
	)
	return s, nil
}

func (s *Service) build(ctx context.Context, opts Options, logger *slog.Logger) error {
	cfg := opts.Config

	kb := opts.KnowledgeBase
	if kb == nil {
		var err error
		if kb, err = s.knowledgeBase(ctx, cfg); err != nil {
			return fmt.Errorf("failed to create knowledge base: %w", err)
		}
	}

	members := opts.Backends
	if len(members) == 0 {
		var err error
		if members, err = backends(cfg.Generation, opts.Keys); err != nil {
			return err
		}
	}
	chain, err := generation.NewChain(logger, members...)
	if err != nil {
		return fmt.Errorf("failed to create generation chain: %w", err)
	}

	p := cfg.Pipeline
	components := pipeline.Components{
		Retriever: retrieval.New(kb, retrieval.Config{
			Limit:                  p.RetrievalLimit,
			Threshold:              p.SimilarityThreshold,
			RewriteLimit:           p.RewriteLimit,
			RewriteThresholdFactor: p.RewriteThresholdFactor,
			MaxRewrites:            p.MaxRewrites,
			GenerateRewrites:       config.Enabled(p.GenerateRewrites, true),
			Logger:                 logger,
		}),
		Assembler: assembly.New(assembly.Config{
			ContextWindow: p.ContextWindow,
			TopN:          p.TopN,
			Logger:        logger,
		}),
		Generator:    chain,
		SystemPrompt: p.SystemPrompt,
		Timeouts: pipeline.Timeouts{
			Retrieve: p.Timeouts.Retrieve,
			Rerank:   p.Timeouts.Rerank,
			Assemble: p.Timeouts.Assemble,
			Generate: p.Timeouts.Generate,
			Validate: p.Timeouts.Validate,
		},
	}
	if config.Enabled(p.Rerank, true) {
		components.Reranker = rerank.New(rerank.Config{Limit: p.RetrievalLimit, Logger: logger})
	}
	if config.Enabled(p.Validate, true) {
		components.Validator = validation.New(validation.Config{
			Citations: config.Enabled(p.Citations, true),
			Logger:    logger,
		})
	}

	stages, err := pipeline.StandardStages(components)
	if err != nil {
		return err
	}
	if s.executor, err = pipeline.NewExecutor(logger, stages...); err != nil {
		return err
	}

	if s.strategies, err = strategyTable(cfg.Strategies); err != nil {
		return err
	}

	cat := opts.Catalog
	if cat == nil {
		if cat, err = s.catalog(ctx, cfg, opts.Keys); err != nil {
			return fmt.Errorf("failed to create model catalog: %w", err)
		}
	}
	if s.engine, err = rankingEngine(cfg.Ranking, cat, logger); err != nil {
		return fmt.Errorf("failed to create ranking engine: %w", err)
	}

	s.cache = opts.Cache
	if s.cache == nil && config.Enabled(cfg.Cache.Enabled, true) {
		s.cache = cache.NewMemory(cfg.Cache.TTL, cfg.Cache.CleanupInterval)
	}
	return nil
}

// pool opens the shared database pool on first use.
func (s *Service) pool(ctx context.Context, cfg *config.Config) (*database.Pool, error) {
	if s.db != nil {
		return s.db, nil
	}
	db, err := database.NewPool(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	s.db = db
	return db, nil
}

func (s *Service) knowledgeBase(ctx context.Context, cfg *config.Config) (knowledge.KnowledgeBase, error) {
	kbc := cfg.KnowledgeBase
	if kbc.Type == config.SourcePostgres {
		db, err := s.pool(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return db.KnowledgeBase(kbc.Table)
	}

	mem := knowledge.NewMemory()
	if kbc.Path != "" {
		docs, err := knowledge.LoadFile(kbc.Path)
		if err != nil {
			return nil, err
		}
		mem.Add(docs...)
	}
	s.logger.Debug("loaded knowledge base", "documents", mem.Size())
	return mem, nil
}

func (s *Service) catalog(ctx context.Context, cfg *config.Config, keys *config.LoadedKeys) (catalog.Catalog, error) {
	cc := cfg.Catalog
	switch cc.Type {
	case config.SourceFile:
		return catalog.LoadFile(cc.Path)
	case config.SourceArtificialAnalysis:
		if cc.Path != "" {
			return catalog.LoadArtificialAnalysisFile(cc.Path)
		}
		var key string
		if keys != nil {
			key = keys.ArtificialAnalysis
		}
		return catalog.NewArtificialAnalysisClient(cc.URL, key, nil).Load(ctx)
	case config.SourcePostgres:
		db, err := s.pool(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return db.Catalog(cc.Table)
	}
	return catalog.NewMemory(), nil
}

// backends creates a chain member per configured backend.
func backends(gen config.GenerationConfig, keys *config.LoadedKeys) ([]generation.Member, error) {
	configured := gen.Backends
	if len(configured) == 0 {
		configured = []config.BackendConfig{{Name: generation.ProviderExtractive, Provider: generation.ProviderExtractive}}
	}

	members := make([]generation.Member, 0, len(configured))
	for _, b := range configured {
		d := generation.Descriptor{
			Name:        b.Name,
			Provider:    b.Provider,
			Model:       b.Model,
			Temperature: -1,
			MaxTokens:   b.MaxTokens,
			Priority:    b.Priority,
			Timeout:     b.Timeout,
		}
		if b.Temperature != nil {
			d.Temperature = *b.Temperature
		}
		if d.Timeout <= 0 {
			d.Timeout = gen.Timeout
		}

		if b.Provider == generation.ProviderExtractive {
			members = append(members, generation.Member{Descriptor: d, Backend: generation.NewExtractive()})
			continue
		}
		provider, err := factory.NewCompletionProvider(b, keys)
		if err != nil {
			return nil, fmt.Errorf("failed to create backend %s: %w", b.Name, err)
		}
		members = append(members, generation.Member{Descriptor: d, Backend: generation.ProviderBackend{Provider: provider}})
	}
	return members, nil
}

func strategyTable(strategies map[string]config.StrategyConfig) (*intent.Table, error) {
	overrides := make([]intent.Override, 0, len(strategies))
	for name, sc := range strategies {
		i, err := intent.Parse(name)
		if err != nil {
			return nil, fmt.Errorf("strategy %q: %w", name, err)
		}
		overrides = append(overrides, intent.Override{
			Intent:           i,
			RetrievalWeight:  sc.RetrievalWeight,
			GenerationWeight: sc.GenerationWeight,
		})
	}
	return intent.NewTable(overrides...)
}

func rankingEngine(rc config.RankingConfig, cat catalog.Catalog, logger *slog.Logger) (*ranking.Engine, error) {
	registered := rc.Criteria
	if len(registered) == 0 {
		registered = config.DefaultCriteria()
	}
	criteria := make([]ranking.Criterion, 0, len(registered))
	for _, c := range registered {
		dir, err := ranking.ParseDirection(c.Direction)
		if err != nil {
			return nil, fmt.Errorf("criterion %s: %w", c.Name, err)
		}
		criteria = append(criteria, ranking.Criterion{Name: c.Name, Direction: dir, Weight: c.Weight})
	}

	var algo ranking.Algorithm
	if rc.DefaultAlgorithm != "" {
		var err error
		if algo, err = ranking.ParseAlgorithm(rc.DefaultAlgorithm); err != nil {
			return nil, err
		}
	}

	return ranking.NewEngine(ranking.EngineConfig{
		Criteria:         criteria,
		DefaultAlgorithm: algo,
		Tolerance:        rc.WeightTolerance,
		Catalog:          cat,
		Logger:           logger,
	})
}

// Resolve turns an externally classified intent into a Resolution using
// the configured strategies.
func (s *Service) Resolve(name string, confidence float64) (intent.Resolution, error) {
	return s.strategies.Resolve(name, confidence)
}

// Criteria returns the registered ranking criteria.
func (s *Service) Criteria() []ranking.Criterion {
	return s.engine.Criteria()
}

type queryKey struct {
	Query      pipeline.Query    `json:"query"`
	Resolution intent.Resolution `json:"resolution"`
}

// ProcessQuery answers q. Successful responses are cached; an identical
// query within the cache TTL returns the stored response without running
// the pipeline.
func (s *Service) ProcessQuery(ctx context.Context, q pipeline.Query, res intent.Resolution) pipeline.Response {
	key := s.key(queryNamespace, queryKey{Query: q, Resolution: res})
	if resp, ok := lookup[pipeline.Response](s, key); ok {
		s.logger.Debug("query served from cache", "intent", res.Intent)
		return resp
	}

	resp := s.executor.Run(ctx, q, res)
	if resp.Error == nil {
		s.store(key, resp)
	}
	return resp
}

// RankModels ranks models. Failed rankings are not cached.
func (s *Service) RankModels(ctx context.Context, req ranking.Request) ranking.Result {
	key := s.key(rankNamespace, req)
	if res, ok := lookup[ranking.Result](s, key); ok {
		return res
	}

	res := s.engine.Rank(ctx, req)
	if res.Error == nil {
		s.store(key, res)
	}
	return res
}

type compareKey struct {
	Models     []string `json:"models"`
	Dimensions []string `json:"dimensions"`
}

// CompareModels compares exactly two models on dimensions.
func (s *Service) CompareModels(ctx context.Context, modelIDs, dimensions []string) ranking.Result {
	key := s.key(compareNamespace, compareKey{Models: modelIDs, Dimensions: dimensions})
	if res, ok := lookup[ranking.Result](s, key); ok {
		return res
	}

	res := s.engine.Compare(ctx, modelIDs, dimensions)
	if res.Error == nil {
		s.store(key, res)
	}
	return res
}

// key returns "" when caching is off or the request cannot be keyed.
func (s *Service) key(namespace string, v any) string {
	if s.cache == nil {
		return ""
	}
	key, err := cache.Key(namespace, v)
	if err != nil {
		s.logger.Warn("request not cacheable", "namespace", namespace, "error", err)
		return ""
	}
	return key
}

func lookup[T any](s *Service, key string) (T, bool) {
	if key == "" {
		var zero T
		return zero, false
	}
	return cache.GetJSON[T](s.cache, key)
}

func (s *Service) store(key string, v any) {
	if key == "" {
		return
	}
	if err := cache.SetJSON(s.cache, key, v, s.ttl); err != nil {
		s.logger.Warn("failed to cache result", "error", err)
	}
}

// Close releases the database pool, if one was opened.
func (s *Service) Close() {
	if s.db != nil {
		s.db.Close()
		s.db = nil
	}
}
