//-------------------------------------------------------------------------
//
// pgEdge Model Discovery
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package bm25

import (
	"math"
	"testing"
)

func TestBM25_IDF(t *testing.T) {
	bm := New()
	bm.SetCorpusStats(100, 50)

	tests := []struct {
		name    string
		docFreq int
		wantGT  float64
		wantLT  float64
	}{
		{"rare term", 1, 4.0, 4.5},        // log(1 + 99.5/1.5) ≈ 4.21
		{"common term", 50, 0.5, 0.8},     // log(2) ≈ 0.69
		{"very common term", 99, 0, 0.02}, // log(1 + 1.5/99.5) ≈ 0.015
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idf := bm.IDF(tt.docFreq)
			if idf <= tt.wantGT || idf >= tt.wantLT {
				t.Errorf("IDF(%d) = %f, want between %f and %f",
					tt.docFreq, idf, tt.wantGT, tt.wantLT)
			}
		})
	}
}

func TestBM25_IDF_EdgeCases(t *testing.T) {
	bm := New()

	if idf := bm.IDF(10); idf != 0 {
		t.Errorf("expected 0 for no corpus stats, got %f", idf)
	}

	bm.SetCorpusStats(100, 50)
	if idf := bm.IDF(0); idf != 0 {
		t.Errorf("expected 0 for zero doc frequency, got %f", idf)
	}
}

func TestBM25_Score(t *testing.T) {
	bm := New()
	bm.SetCorpusStats(100, 50)

	if bm.Score(5, 10, 50) <= bm.Score(1, 10, 50) {
		t.Error("score should increase with term frequency")
	}
	if bm.Score(5, 10, 100) >= bm.Score(5, 10, 25) {
		t.Error("score should decrease with document length")
	}
	if bm.Score(1, 50, 50) >= bm.Score(1, 5, 50) {
		t.Error("rare terms should score higher than common terms")
	}
}

func TestBM25_Score_ZeroAverageLength(t *testing.T) {
	bm := New()
	bm.SetCorpusStats(3, 0)

	score := bm.Score(1, 1, 4)
	if math.IsNaN(score) || math.IsInf(score, 0) {
		t.Fatalf("expected finite score, got %f", score)
	}
}

func TestBM25_ScoreDocument(t *testing.T) {
	bm := New()
	bm.SetCorpusStats(100, 50)

	queryTerms := map[string]int{"latency": 1, "claude": 1}
	docFreqs := map[string]int{"latency": 10, "claude": 50, "pricing": 80}

	match := bm.ScoreDocument(queryTerms,
		map[string]int{"latency": 2, "claude": 1, "pricing": 5}, docFreqs, 50)
	if match <= 0 {
		t.Error("expected positive score")
	}

	miss := bm.ScoreDocument(map[string]int{"vision": 1},
		map[string]int{"pricing": 5}, docFreqs, 50)
	if miss != 0 {
		t.Errorf("expected 0 for no matching terms, got %f", miss)
	}
}

func TestSimilarity(t *testing.T) {
	if s := Similarity(0); s != 0 {
		t.Errorf("expected 0 for zero score, got %f", s)
	}
	if s := Similarity(DefaultSaturation); math.Abs(s-0.5) > 1e-9 {
		t.Errorf("expected 0.5 at the saturation point, got %f", s)
	}
	if s := Similarity(1e9); s >= 1 {
		t.Errorf("similarity must stay below 1, got %f", s)
	}
	if Similarity(3) <= Similarity(1) {
		t.Error("similarity should be monotonic in score")
	}
}
