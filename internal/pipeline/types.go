//-------------------------------------------------------------------------
//
// pgEdge Model Discovery
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package pipeline sequences the query answering stages and converts every
// failure into a structured Response.
package pipeline

import (
	"time"

	"github.com/pgEdge/pgedge-discovery/internal/llm"
)

// Stage names used by the standard pipeline.
const (
	StageRetrieve = "retrieve"
	StageRerank   = "rerank"
	StageAssemble = "assemble"
	StageGenerate = "generate"
	StageValidate = "validate"
)

// Apology is the answer returned when a required stage fails.
const Apology = "I'm sorry, I was unable to answer that question right now. Please try again later."

// Options are caller-supplied switches for a single query.
type Options struct {
	SkipOptional bool     `json:"skip_optional,omitempty"` // skip rerank and validation
	Limit        int      `json:"limit,omitempty"`         // result limit override
	Rewrites     []string `json:"rewrites,omitempty"`      // caller-supplied query rewrites
}

// Query is a question entering the pipeline.
type Query struct {
	Text    string        `json:"text"`
	History []llm.Message `json:"history,omitempty"` // prior turns, oldest first
	Options Options       `json:"options"`
}

// Status is the outcome of one stage.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
)

// StageRecord describes how a stage ran.
type StageRecord struct {
	Name     string        `json:"name"`
	Status   Status        `json:"status"`
	Duration time.Duration `json:"duration"`
	Error    string        `json:"error,omitempty"`
}

// Metadata describes how a Response was produced.
type Metadata struct {
	QueryType       string        `json:"query_type"`
	StagesCompleted []string      `json:"stages_completed"`
	GenerationModel string        `json:"generation_model,omitempty"`
	Stages          []StageRecord `json:"stages"`
	Warnings        []string      `json:"warnings,omitempty"`
	Quality         *float64      `json:"quality,omitempty"`
	Consistency     *float64      `json:"consistency,omitempty"`
	Risk            *float64      `json:"hallucination_risk,omitempty"`
}

// Error codes carried by ResponseError.
const (
	CodeStageTimeout      = "stage_timeout"
	CodeStageFailed       = "stage_failed"
	CodeAllBackendsFailed = "all_backends_failed"
	CodeCancelled         = "cancelled"
)

// ResponseError identifies the stage that aborted a query.
type ResponseError struct {
	Stage   string `json:"stage"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Response is the result of a query. Confidence is always in [0, 1].
type Response struct {
	Query      string         `json:"query"`
	Answer     string         `json:"answer"`
	Confidence float64        `json:"confidence"`
	Sources    []string       `json:"sources"`
	Metadata   Metadata       `json:"metadata"`
	Error      *ResponseError `json:"error,omitempty"`
}
