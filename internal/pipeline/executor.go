//-------------------------------------------------------------------------
//
// pgEdge Model Discovery
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/pgEdge/pgedge-discovery/internal/generation"
	"github.com/pgEdge/pgedge-discovery/internal/intent"
)

// StageFunc runs one stage and returns the state with its contribution
// added.
type StageFunc func(ctx context.Context, s State) (State, error)

// Stage is one step of the pipeline.
type Stage struct {
	Name     string
	Required bool          // a failure aborts the query
	Timeout  time.Duration // zero means no stage deadline
	Run      StageFunc
}

// Executor runs stages strictly in order.
type Executor struct {
	stages []Stage
	logger *slog.Logger
}

// NewExecutor creates an executor over stages.
func NewExecutor(logger *slog.Logger, stages ...Stage) (*Executor, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if len(stages) == 0 {
		return nil, errors.New("pipeline has no stages")
	}
	seen := make(map[string]bool, len(stages))
	for _, st := range stages {
		if st.Name == "" || st.Run == nil {
			return nil, fmt.Errorf("stage %q is incomplete", st.Name)
		}
		if seen[st.Name] {
			return nil, fmt.Errorf("duplicate stage %q", st.Name)
		}
		seen[st.Name] = true
	}
	return &Executor{
		stages: stages,
		logger: logger.With("component", "pipeline"),
	}, nil
}

// Stages returns the stage names in execution order.
func (e *Executor) Stages() []string {
	names := make([]string, len(e.stages))
	for i, st := range e.stages {
		names[i] = st.Name
	}
	return names
}

// Run answers q. It never returns an error: a failed required stage or a
// cancelled context yields an apology Response with zero confidence.
func (e *Executor) Run(ctx context.Context, q Query, res intent.Resolution) Response {
	logger := e.logger.With("run_id", uuid.NewString(), "intent", res.Intent.String())
	logger.Debug("pipeline started", "query", q.Text)

	s := NewState(q, res)
	for _, st := range e.stages {
		if !st.Required && q.Options.SkipOptional {
			s = s.withRecord(StageRecord{Name: st.Name, Status: StatusSkipped})
			continue
		}

		start := time.Now()
		next, err := e.runStage(ctx, st, s)
		rec := StageRecord{Name: st.Name, Duration: time.Since(start)}
		if err == nil {
			rec.Status = StatusCompleted
			s = next.withRecord(rec)
			continue
		}

		rec.Status = StatusFailed
		rec.Error = err.Error()
		s = s.withRecord(rec)

		if ctx.Err() != nil {
			logger.Warn("pipeline cancelled", "stage", st.Name, "error", ctx.Err())
			return failure(s, st.Name, ctx.Err())
		}
		if st.Required {
			logger.Error("required stage failed", "stage", st.Name, "error", err)
			return failure(s, st.Name, err)
		}
		logger.Warn("optional stage failed", "stage", st.Name, "error", err)
	}

	resp := success(s)
	logger.Debug("pipeline complete", "confidence", resp.Confidence,
		"generation_model", resp.Metadata.GenerationModel)
	return resp
}

type stageOutcome struct {
	state State
	err   error
}

// runStage runs st under its deadline. A stage that ignores its context is
// abandoned when the deadline passes.
func (e *Executor) runStage(ctx context.Context, st Stage, s State) (State, error) {
	if err := ctx.Err(); err != nil {
		return s, err
	}

	var (
		sctx   context.Context
		cancel context.CancelFunc
	)
	if st.Timeout > 0 {
		sctx, cancel = context.WithTimeout(ctx, st.Timeout)
	} else {
		sctx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	done := make(chan stageOutcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- stageOutcome{err: fmt.Errorf("panic: %v", r)}
			}
		}()
		next, err := st.Run(sctx, s)
		done <- stageOutcome{state: next, err: err}
	}()

	select {
	case out := <-done:
		if out.err == nil {
			return out.state, nil
		}
		if ctx.Err() == nil && errors.Is(sctx.Err(), context.DeadlineExceeded) {
			return s, &StageTimeoutError{Stage: st.Name, Timeout: st.Timeout}
		}
		return s, &StageExecutionError{Stage: st.Name, Err: out.err}
	case <-sctx.Done():
		if ctx.Err() != nil {
			return s, ctx.Err()
		}
		return s, &StageTimeoutError{Stage: st.Name, Timeout: st.Timeout}
	}
}

func failure(s State, stage string, err error) Response {
	code := CodeStageFailed
	var timeout *StageTimeoutError
	var chain *generation.AllBackendsFailedError
	var failed *StageExecutionError
	switch {
	case errors.As(err, &timeout):
		code = CodeStageTimeout
	case errors.As(err, &chain):
		code = CodeAllBackendsFailed
	case errors.As(err, &failed):
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		code = CodeCancelled
	}

	return Response{
		Query:    s.Query().Text,
		Answer:   Apology,
		Sources:  []string{},
		Metadata: metadata(s),
		Error: &ResponseError{
			Stage:   stage,
			Code:    code,
			Message: err.Error(),
		},
	}
}

func success(s State) Response {
	docs := s.Documents()
	meanFinal := 0.0
	for _, d := range docs {
		meanFinal += d.FinalScore
	}
	if len(docs) > 0 {
		meanFinal /= float64(len(docs))
	}

	md := metadata(s)
	sources := []string{}
	confidence := meanFinal
	if scores, ok := s.Scores(); ok {
		strategy := s.Strategy()
		rw, gw := strategy.RetrievalWeight, strategy.GenerationWeight
		if rw+gw > 0 {
			confidence = (rw*meanFinal + gw*scores.Confidence) / (rw + gw)
		} else {
			confidence = scores.Confidence
		}
		sources = append(sources, scores.Citations...)
		md.Quality = &scores.Quality
		md.Consistency = &scores.Consistency
		md.Risk = &scores.HallucinationRisk
	}
	if len(sources) == 0 {
		for _, d := range docs {
			sources = append(sources, d.ID)
		}
	}

	return Response{
		Query:      s.Query().Text,
		Answer:     s.Answer(),
		Confidence: clamp(confidence),
		Sources:    sources,
		Metadata:   md,
	}
}

func metadata(s State) Metadata {
	md := Metadata{
		QueryType:       s.Resolution().Intent.String(),
		StagesCompleted: []string{},
		GenerationModel: s.GenerationModel(),
		Stages:          s.Records(),
		Warnings:        s.Warnings(),
	}
	for _, r := range md.Stages {
		if r.Status == StatusCompleted {
			md.StagesCompleted = append(md.StagesCompleted, r.Name)
		}
	}
	return md
}

func clamp(x float64) float64 {
	if math.IsNaN(x) {
		return 0
	}
	return math.Max(0, math.Min(1, x))
}
