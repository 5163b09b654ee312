//-------------------------------------------------------------------------
//
// pgEdge Model Discovery
//
// Copyright (c) 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/pgEdge/pgedge-discovery/internal/pipeline"
	"github.com/pgEdge/pgedge-discovery/internal/ranking"
)

var (
	headerColor  = color.New(color.Bold)
	winnerColor  = color.New(color.FgGreen, color.Bold)
	warningColor = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed, color.Bold)
	dimColor     = color.New(color.Faint)
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printResponse(w io.Writer, resp pipeline.Response) {
	if resp.Error != nil {
		errorColor.Fprintf(w, "%s failed (%s): %s\n\n", resp.Error.Stage, resp.Error.Code, resp.Error.Message)
	}
	fmt.Fprintln(w, resp.Answer)
	fmt.Fprintln(w)

	for _, warning := range resp.Metadata.Warnings {
		warningColor.Fprintf(w, "warning: %s\n", warning)
	}
	if len(resp.Sources) > 0 {
		dimColor.Fprintf(w, "sources:    %s\n", strings.Join(resp.Sources, ", "))
	}
	if resp.Metadata.GenerationModel != "" {
		dimColor.Fprintf(w, "model:      %s\n", resp.Metadata.GenerationModel)
	}
	dimColor.Fprintf(w, "confidence: %.2f\n", resp.Confidence)
}

func printRanking(w io.Writer, res ranking.Result) {
	if res.Error != nil {
		errorColor.Fprintf(w, "ranking failed (%s): %s\n", res.Error.Code, res.Error.Message)
		return
	}

	width := len("MODEL")
	for _, e := range res.Entries {
		width = max(width, len(e.Model))
	}

	headerColor.Fprintf(w, "%-4s  %-*s  %7s  %s\n", "RANK", width, "MODEL", "SCORE", "TOP CRITERION")
	for _, e := range res.Entries {
		line := fmt.Sprintf("%-4d  %-*s  %7.3f  %s", e.Rank, width, e.Model, e.Score, topCriterion(e))
		switch {
		case e.Rank == 1:
			winnerColor.Fprintln(w, line)
		case len(e.DominatedBy) > 0:
			dimColor.Fprintf(w, "%s  (dominated by %s)\n", line, strings.Join(e.DominatedBy, ", "))
		default:
			fmt.Fprintln(w, line)
		}
	}

	fmt.Fprintln(w)
	dimColor.Fprintf(w, "algorithm:  %s\n", res.Algorithm)
	dimColor.Fprintf(w, "confidence: %.2f\n", res.Confidence)
	if len(res.Frontier) > 0 {
		dimColor.Fprintf(w, "frontier:   %s\n", strings.Join(res.Frontier, ", "))
	}
	if res.ConsistencyRatio != nil {
		line := fmt.Sprintf("consistency ratio: %.3f", *res.ConsistencyRatio)
		if *res.ConsistencyRatio > 0.1 {
			warningColor.Fprintln(w, line+" (inconsistent preferences)")
		} else {
			dimColor.Fprintln(w, line)
		}
	}
	if res.Agreement != nil {
		dimColor.Fprintf(w, "agreement:  %.2f\n", res.Agreement.Overall)
	}
}

// topCriterion names the criterion contributing most to an entry's score.
func topCriterion(e ranking.Entry) string {
	best := -1
	for i, c := range e.Reasoning {
		if best < 0 || c.Contribution > e.Reasoning[best].Contribution {
			best = i
		}
	}
	if best < 0 {
		return ""
	}
	return e.Reasoning[best].Criterion
}
