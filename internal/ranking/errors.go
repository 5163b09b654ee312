//-------------------------------------------------------------------------
//
// pgEdge Model Discovery
//
// Copyright (c) 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package ranking

import "fmt"

// InputError reports a decision matrix or request that cannot be ranked.
// No partial ranking is ever produced alongside it.
type InputError struct {
	Reason string
}

func (e *InputError) Error() string {
	return "invalid ranking input: " + e.Reason
}

func inputErrorf(format string, args ...any) error {
	return &InputError{Reason: fmt.Sprintf(format, args...)}
}

// MalformedRequestError reports a model count that does not suit the
// requested comparison.
type MalformedRequestError struct {
	Want int
	Got  int
}

func (e *MalformedRequestError) Error() string {
	return fmt.Sprintf("malformed request: expected exactly %d distinct models, got %d", e.Want, e.Got)
}
