//-------------------------------------------------------------------------
//
// pgEdge Model Discovery
//
// Copyright (c) 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/pgEdge/pgedge-discovery/internal/assembly"
	"github.com/pgEdge/pgedge-discovery/internal/generation"
	"github.com/pgEdge/pgedge-discovery/internal/llm"
	"github.com/pgEdge/pgedge-discovery/internal/rerank"
	"github.com/pgEdge/pgedge-discovery/internal/retrieval"
	"github.com/pgEdge/pgedge-discovery/internal/validation"
)

// Timeouts are the per-stage deadlines of the standard pipeline.
type Timeouts struct {
	Retrieve time.Duration
	Rerank   time.Duration
	Assemble time.Duration
	Generate time.Duration
	Validate time.Duration
}

// Components are the collaborators of the standard pipeline. Reranker and
// Validator are optional; a nil value leaves the stage out.
type Components struct {
	Retriever    *retrieval.Retriever
	Reranker     *rerank.Reranker
	Assembler    *assembly.Assembler
	Generator    *generation.Chain
	Validator    *validation.Validator
	SystemPrompt string
	Timeouts     Timeouts
}

// StandardStages returns retrieve, rerank, assemble, generate and validate
// in that order.
func StandardStages(c Components) ([]Stage, error) {
	if c.Retriever == nil || c.Assembler == nil || c.Generator == nil {
		return nil, errors.New("retriever, assembler and generator are required")
	}

	stages := []Stage{{
		Name:     StageRetrieve,
		Required: true,
		Timeout:  c.Timeouts.Retrieve,
		Run:      retrieveStage(c.Retriever),
	}}
	if c.Reranker != nil {
		stages = append(stages, Stage{
			Name:    StageRerank,
			Timeout: c.Timeouts.Rerank,
			Run:     rerankStage(c.Reranker),
		})
	}
	stages = append(stages,
		Stage{
			Name:     StageAssemble,
			Required: true,
			Timeout:  c.Timeouts.Assemble,
			Run:      assembleStage(c.Assembler),
		},
		Stage{
			Name:     StageGenerate,
			Required: true,
			Timeout:  c.Timeouts.Generate,
			Run:      generateStage(c.Generator, c.SystemPrompt),
		},
	)
	if c.Validator != nil {
		stages = append(stages, Stage{
			Name:    StageValidate,
			Timeout: c.Timeouts.Validate,
			Run:     validateStage(c.Validator),
		})
	}
	return stages, nil
}

func retrieveStage(r *retrieval.Retriever) StageFunc {
	return func(ctx context.Context, s State) (State, error) {
		q := s.Query()
		var history []string
		for _, m := range q.History {
			if m.Role == llm.RoleUser {
				history = append(history, m.Content)
			}
		}

		res, err := r.Retrieve(ctx, retrieval.Request{
			Text:     q.Text,
			Rewrites: q.Options.Rewrites,
			History:  history,
			Limit:    q.Options.Limit,
			Strategy: s.Strategy(),
		})
		if err != nil {
			return s, err
		}
		docs := res.Documents
		if limit := q.Options.Limit; limit > 0 && len(docs) > limit {
			docs = docs[:limit]
		}
		s = s.WithDocuments(docs)
		if res.Warning != nil {
			s = s.WithWarning(res.Warning.Error())
		}
		return s, nil
	}
}

func rerankStage(r *rerank.Reranker) StageFunc {
	return func(ctx context.Context, s State) (State, error) {
		docs, err := r.Rerank(ctx, s.Documents(), s.Query().Text)
		if err != nil {
			return s, err
		}
		if limit := s.Query().Options.Limit; limit > 0 && len(docs) > limit {
			docs = docs[:limit]
		}
		return s.WithDocuments(docs), nil
	}
}

func assembleStage(a *assembly.Assembler) StageFunc {
	return func(ctx context.Context, s State) (State, error) {
		if err := ctx.Err(); err != nil {
			return s, err
		}
		return s.WithContext(a.Assemble(s.Documents(), s.Strategy())), nil
	}
}

func generateStage(chain *generation.Chain, system string) StageFunc {
	return func(ctx context.Context, s State) (State, error) {
		q := s.Query()
		prompt := generation.BuildPrompt(q.Text, s.Context(), s.Strategy().Style, q.History, system)
		res, err := chain.Generate(ctx, prompt)
		if err != nil {
			return s, err
		}
		return s.WithAnswer(res.Text, res.Backend.Name), nil
	}
}

func validateStage(v *validation.Validator) StageFunc {
	return func(ctx context.Context, s State) (State, error) {
		text, scores, err := v.Validate(ctx, s.Answer(), s.Documents(), s.Query().Text)
		if err != nil {
			return s, err
		}
		return s.WithValidation(text, scores), nil
	}
}
