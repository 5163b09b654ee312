//-------------------------------------------------------------------------
//
// pgEdge Model Discovery
//
// Copyright (c) 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package intent maps a classified query intent onto the retrieval and
// generation strategy used to answer it.
package intent

import (
	"errors"
	"fmt"
	"strings"
)

// Intent is the closed set of query intents the discovery core understands.
type Intent int

const (
	General Intent = iota
	ModelInfo
	Comparison
	UseCase
	Technical
	Capability
	Troubleshooting
)

// All lists every intent in declaration order.
var All = []Intent{General, ModelInfo, Comparison, UseCase, Technical, Capability, Troubleshooting}

// ErrUnknownIntent is returned when an intent name cannot be parsed.
var ErrUnknownIntent = errors.New("unknown intent")

// String returns the wire name of the intent.
func (i Intent) String() string {
	switch i {
	case General:
		return "general"
	case ModelInfo:
		return "model_info"
	case Comparison:
		return "comparison"
	case UseCase:
		return "use_case"
	case Technical:
		return "technical"
	case Capability:
		return "capability"
	case Troubleshooting:
		return "troubleshooting"
	default:
		return fmt.Sprintf("intent(%d)", int(i))
	}
}

// Parse converts a wire name into an Intent. Matching ignores case and
// surrounding whitespace, and accepts '-' in place of '_'.
func Parse(name string) (Intent, error) {
	key := normalizeName(name)
	for _, i := range All {
		if i.String() == key {
			return i, nil
		}
	}
	return General, fmt.Errorf("%w: %q", ErrUnknownIntent, name)
}

// MarshalText implements encoding.TextMarshaler.
func (i Intent) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (i *Intent) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*i = parsed
	return nil
}

// Errors returned when a focus or style name cannot be parsed.
var (
	ErrUnknownFocus = errors.New("unknown context focus")
	ErrUnknownStyle = errors.New("unknown response style")
)

func normalizeName(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_")
}

// ContextFocus selects the context assembly strategy.
type ContextFocus int

const (
	FocusExactMatch ContextFocus = iota
	FocusMultiEntity
	FocusUseCaseMatch
	FocusTechnicalDetail
	FocusCapabilityMatch
	FocusProblemSolution
)

func (f ContextFocus) String() string {
	switch f {
	case FocusExactMatch:
		return "exact_match"
	case FocusMultiEntity:
		return "multi_entity"
	case FocusUseCaseMatch:
		return "use_case_match"
	case FocusTechnicalDetail:
		return "technical_detail"
	case FocusCapabilityMatch:
		return "capability_match"
	case FocusProblemSolution:
		return "problem_solution"
	default:
		return fmt.Sprintf("focus(%d)", int(f))
	}
}

// ParseFocus converts a wire name into a ContextFocus, matching names the
// way Parse does.
func ParseFocus(name string) (ContextFocus, error) {
	key := normalizeName(name)
	for f := FocusExactMatch; f <= FocusProblemSolution; f++ {
		if f.String() == key {
			return f, nil
		}
	}
	return FocusExactMatch, fmt.Errorf("%w: %q", ErrUnknownFocus, name)
}

// MarshalText implements encoding.TextMarshaler.
func (f ContextFocus) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *ContextFocus) UnmarshalText(text []byte) error {
	parsed, err := ParseFocus(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// ResponseStyle shapes the generation prompt.
type ResponseStyle int

const (
	StyleConcise ResponseStyle = iota
	StyleDirect
	StyleComparative
	StyleAdvisory
	StyleTechnical
	StyleDescriptive
	StyleStepByStep
)

func (s ResponseStyle) String() string {
	switch s {
	case StyleConcise:
		return "concise"
	case StyleDirect:
		return "direct"
	case StyleComparative:
		return "comparative"
	case StyleAdvisory:
		return "advisory"
	case StyleTechnical:
		return "technical"
	case StyleDescriptive:
		return "descriptive"
	case StyleStepByStep:
		return "step_by_step"
	default:
		return fmt.Sprintf("style(%d)", int(s))
	}
}

// ParseStyle converts a wire name into a ResponseStyle.
func ParseStyle(name string) (ResponseStyle, error) {
	key := normalizeName(name)
	for s := StyleConcise; s <= StyleStepByStep; s++ {
		if s.String() == key {
			return s, nil
		}
	}
	return StyleConcise, fmt.Errorf("%w: %q", ErrUnknownStyle, name)
}

// MarshalText implements encoding.TextMarshaler.
func (s ResponseStyle) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *ResponseStyle) UnmarshalText(text []byte) error {
	parsed, err := ParseStyle(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
