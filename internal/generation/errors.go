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
	"strings"

	"github.com/pgEdge/pgedge-discovery/internal/llm"
)

// Reason classifies a backend failure.
type Reason string

const (
	ReasonTimeout        Reason = "timeout"
	ReasonRateLimited    Reason = "rate_limited"
	ReasonInvalidRequest Reason = "invalid_request"
	ReasonUnavailable    Reason = "unavailable"
)

// BackendError is a failed attempt against one backend.
type BackendError struct {
	Backend string
	Reason  Reason
	Err     error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend %s: %s: %v", e.Backend, e.Reason, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// AllBackendsFailedError reports that every backend in the chain failed.
type AllBackendsFailedError struct {
	Attempts []*BackendError
}

func (e *AllBackendsFailedError) Error() string {
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, a.Backend+": "+string(a.Reason))
	}
	return fmt.Sprintf("all %d generation backends failed (%s)", len(e.Attempts), strings.Join(parts, ", "))
}

func (e *AllBackendsFailedError) Unwrap() []error {
	errs := make([]error, len(e.Attempts))
	for i, a := range e.Attempts {
		errs[i] = a
	}
	return errs
}

// Classify maps an arbitrary backend failure onto a Reason.
func Classify(err error) Reason {
	var be *BackendError
	if errors.As(err, &be) {
		return be.Reason
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ReasonTimeout
	}
	var le *llm.Error
	if errors.As(err, &le) {
		switch le.Code {
		case llm.ErrCodeTimeout:
			return ReasonTimeout
		case llm.ErrCodeRateLimit:
			return ReasonRateLimited
		case llm.ErrCodeInvalidRequest, llm.ErrCodeInvalidKey:
			return ReasonInvalidRequest
		}
	}
	return ReasonUnavailable
}
