//-------------------------------------------------------------------------
//
// pgEdge Model Discovery
//
// Copyright (c) 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"
)

// Member is one link of the fallback chain.
type Member struct {
	Descriptor Descriptor
	Backend    Backend
}

// Result is the output of a successful generation.
type Result struct {
	Text     string
	Backend  Descriptor
	Failures []*BackendError // attempts that failed before the winner
}

// Chain tries backends in ascending priority until one succeeds. The order
// is fixed when the chain is built.
type Chain struct {
	members []Member
	logger  *slog.Logger
}

// NewChain builds a chain. Members with equal priority keep their given
// order.
func NewChain(logger *slog.Logger, members ...Member) (*Chain, error) {
	if len(members) == 0 {
		return nil, errors.New("generation chain needs at least one backend")
	}
	seen := make(map[string]bool, len(members))
	for _, m := range members {
		if m.Backend == nil {
			return nil, fmt.Errorf("backend %q has no implementation", m.Descriptor.Name)
		}
		if seen[m.Descriptor.Name] {
			return nil, fmt.Errorf("duplicate backend name %q", m.Descriptor.Name)
		}
		seen[m.Descriptor.Name] = true
	}

	sorted := append([]Member(nil), members...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Descriptor.Priority < sorted[j].Descriptor.Priority
	})

	if logger == nil {
		logger = slog.Default()
	}
	return &Chain{members: sorted, logger: logger.With("component", "generator")}, nil
}

// Descriptors returns the backends in the order they are tried.
func (c *Chain) Descriptors() []Descriptor {
	out := make([]Descriptor, len(c.members))
	for i, m := range c.members {
		out[i] = m.Descriptor
	}
	return out
}

// Generate invokes backends one at a time, each bounded by its own
// timeout, and returns the first non-empty answer. Cancelling ctx stops
// the chain without trying further backends.
func (c *Chain) Generate(ctx context.Context, prompt Prompt) (Result, error) {
	var failures []*BackendError
	for _, m := range c.members {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		start := time.Now()
		text, err := c.invoke(ctx, m, prompt)
		if err == nil {
			c.logger.Debug("generation succeeded", "backend", m.Descriptor.Name,
				"duration", time.Since(start))
			return Result{Text: text, Backend: m.Descriptor, Failures: failures}, nil
		}

		// A cancelled request is not a backend failure.
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}

		var be *BackendError
		if !errors.As(err, &be) {
			be = &BackendError{Backend: m.Descriptor.Name, Reason: Classify(err), Err: err}
		}
		failures = append(failures, be)
		c.logger.Warn("generation backend failed, falling back",
			"backend", m.Descriptor.Name, "reason", be.Reason, "error", err,
			"duration", time.Since(start))
	}
	return Result{}, &AllBackendsFailedError{Attempts: failures}
}

type outcome struct {
	text string
	err  error
}

// invoke bounds one attempt by the member's timeout, returning as soon as
// the deadline passes even if the backend ignores its context.
func (c *Chain) invoke(ctx context.Context, m Member, prompt Prompt) (string, error) {
	if m.Descriptor.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.Descriptor.Timeout)
		defer cancel()
	}

	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("backend panicked: %v", r)}
			}
		}()
		text, err := m.Backend.Invoke(ctx, prompt, m.Descriptor)
		done <- outcome{text: text, err: err}
	}()

	var out outcome
	select {
	case out = <-done:
	case <-ctx.Done():
		return "", ctx.Err()
	}

	if out.err != nil {
		return "", out.err
	}
	if strings.TrimSpace(out.text) == "" {
		return "", &BackendError{Backend: m.Descriptor.Name, Reason: ReasonUnavailable, Err: errors.New("empty output")}
	}
	return out.text, nil
}
