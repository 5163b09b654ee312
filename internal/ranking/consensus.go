//-------------------------------------------------------------------------
//
// pgEdge Model Discovery
//
// Copyright (c) 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package ranking

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// consensusMembers are the algorithms combined by Consensus.
var consensusMembers = []Algorithm{WeightedScoreAlgorithm, TOPSISAlgorithm, ParetoAlgorithm}

// Consensus runs weighted score, TOPSIS and Pareto concurrently and
// averages their ranks (Borda style). Confidence is the fraction of model
// pairs on which the constituents agree.
func Consensus(ctx context.Context, m *Matrix, opts Options) (Result, error) {
	if err := checkContext(ctx, ConsensusAlgorithm); err != nil {
		return Result{}, err
	}

	results := make([]Result, len(consensusMembers))
	g, gctx := errgroup.WithContext(ctx)
	for n, a := range consensusMembers {
		fn, err := Lookup(a)
		if err != nil {
			return Result{}, err
		}
		g.Go(func() error {
			r, err := fn(gctx, m, opts)
			if err != nil {
				return fmt.Errorf("consensus member %s: %w", a, err)
			}
			results[n] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	// ranks[n][i] is the rank that algorithm n gives model i.
	ranks := make([][]int, len(results))
	for n, r := range results {
		ranks[n] = make([]int, m.Rows())
		for i, model := range m.models {
			e, _ := r.Entry(model)
			ranks[n][i] = e.Rank
		}
	}

	rows := m.Rows()
	entries := make([]Entry, rows)
	for i, model := range m.models {
		e, _ := results[0].Entry(model)
		entry := Entry{
			Model:     model,
			Reasoning: e.Reasoning,
			Ranks:     make(map[Algorithm]int, len(results)),
		}
		sum := 0
		for n, a := range consensusMembers {
			entry.Ranks[a] = ranks[n][i]
			sum += ranks[n][i]
		}
		avg := float64(sum) / float64(len(results))
		entry.Score = clamp((float64(rows) - avg) / float64(rows-1))
		entries[i] = entry
	}

	agreement := &Agreement{Pairs: make(map[string]float64)}
	pairs := 0
	for a := range results {
		for b := a + 1; b < len(results); b++ {
			f := pairwiseAgreement(ranks[a], ranks[b])
			agreement.Pairs[string(consensusMembers[a])+"/"+string(consensusMembers[b])] = f
			agreement.Overall += f
			pairs++
		}
	}
	agreement.Overall /= float64(pairs)

	entries = finish(entries)
	return Result{
		Algorithm:  ConsensusAlgorithm,
		Entries:    entries,
		Confidence: clamp(agreement.Overall),
		Frontier:   results[2].Frontier,
		Agreement:  agreement,
	}, nil
}

// pairwiseAgreement is the fraction of model pairs that two rankings
// order the same way, counting a shared tie as agreement.
func pairwiseAgreement(a, b []int) float64 {
	agree, total := 0, 0
	for i := range a {
		for k := i + 1; k < len(a); k++ {
			total++
			if sign(a[i]-a[k]) == sign(b[i]-b[k]) {
				agree++
			}
		}
	}
	if total == 0 {
		return 1
	}
	return float64(agree) / float64(total)
}

func sign(x int) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}
