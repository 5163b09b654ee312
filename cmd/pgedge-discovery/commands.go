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
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-discovery/internal/llm"
	"github.com/pgEdge/pgedge-discovery/internal/pipeline"
	"github.com/pgEdge/pgedge-discovery/internal/ranking"
)

func newQueryCommand(root *rootOptions) *cobra.Command {
	var (
		intentName string
		confidence float64
		history    []string
		rewrites   []string
		limit      int
		skip       bool
	)

	cmd := &cobra.Command{
		Use:   "query [flags] <question>",
		Short: "Answer a question about AI models",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := openService(cmd.Context(), root)
			if err != nil {
				return err
			}
			defer svc.Close()

			res, err := svc.Resolve(intentName, confidence)
			if err != nil {
				return err
			}

			q := pipeline.Query{
				Text: strings.Join(args, " "),
				Options: pipeline.Options{
					SkipOptional: skip,
					Limit:        limit,
					Rewrites:     rewrites,
				},
			}
			for _, h := range history {
				q.History = append(q.History, llm.Message{Role: llm.RoleUser, Content: h})
			}

			resp := svc.ProcessQuery(cmd.Context(), q, res)
			if root.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), resp)
			}
			printResponse(cmd.OutOrStdout(), resp)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&intentName, "intent", "general", "classified intent of the question")
	f.Float64Var(&confidence, "confidence", 1, "classifier confidence for the intent")
	f.StringArrayVar(&history, "history", nil, "earlier question in the conversation (repeatable, oldest first)")
	f.StringArrayVar(&rewrites, "rewrite", nil, "alternative phrasing of the question (repeatable)")
	f.IntVar(&limit, "limit", 0, "maximum number of documents to use")
	f.BoolVar(&skip, "skip-optional", false, "skip reranking and validation")
	return cmd
}

func newRankCommand(root *rootOptions) *cobra.Command {
	var (
		algorithm   string
		criteria    []string
		weights     []string
		preferences string
	)

	cmd := &cobra.Command{
		Use:   "rank [flags] <model> <model> [model...]",
		Short: "Rank models on weighted criteria",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := ranking.Request{Models: args, Criteria: criteria}
			if algorithm != "" {
				algo, err := ranking.ParseAlgorithm(algorithm)
				if err != nil {
					return err
				}
				req.Algorithm = algo
			}
			var err error
			if req.Weights, err = parseWeights(weights); err != nil {
				return err
			}
			if req.Preferences, err = parseMatrix(preferences); err != nil {
				return err
			}

			svc, err := openService(cmd.Context(), root)
			if err != nil {
				return err
			}
			defer svc.Close()

			res := svc.RankModels(cmd.Context(), req)
			if root.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			printRanking(cmd.OutOrStdout(), res)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&algorithm, "algorithm", "", "weighted_score, topsis, pareto, ahp or consensus")
	f.StringSliceVar(&criteria, "criteria", nil, "criteria to rank on (default: all registered)")
	f.StringSliceVar(&weights, "weight", nil, "criterion weight as name=value (repeatable)")
	f.StringVar(&preferences, "preferences", "", "AHP pairwise criteria matrix, rows separated by ';' (e.g. \"1,3;0.333,1\")")
	return cmd
}

func newCompareCommand(root *rootOptions) *cobra.Command {
	var dimensions []string

	cmd := &cobra.Command{
		Use:   "compare [flags] <model> <model>",
		Short: "Compare two models head to head",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := openService(cmd.Context(), root)
			if err != nil {
				return err
			}
			defer svc.Close()

			res := svc.CompareModels(cmd.Context(), args, dimensions)
			if root.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			printRanking(cmd.OutOrStdout(), res)
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&dimensions, "dimensions", nil, "criteria to compare on (default: all registered)")
	return cmd
}

// parseWeights turns name=value pairs into a weight map.
func parseWeights(pairs []string) (map[string]float64, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	weights := make(map[string]float64, len(pairs))
	for _, p := range pairs {
		name, value, ok := strings.Cut(p, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid weight %q: expected name=value", p)
		}
		w, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid weight %q: %w", p, err)
		}
		if _, dup := weights[name]; dup {
			return nil, fmt.Errorf("duplicate weight for %s", name)
		}
		weights[name] = w
	}
	return weights, nil
}

// parseMatrix reads "a,b;c,d" into rows.
func parseMatrix(s string) ([][]float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var matrix [][]float64
	for _, row := range strings.Split(s, ";") {
		var values []float64
		for _, cell := range strings.Split(row, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				return nil, fmt.Errorf("invalid preference %q: %w", cell, err)
			}
			values = append(values, v)
		}
		matrix = append(matrix, values)
	}
	return matrix, nil
}
