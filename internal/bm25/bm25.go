//-------------------------------------------------------------------------
//
// pgEdge Model Discovery
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package bm25 provides BM25 lexical scoring used by the in-memory knowledge
// base, the reranker and the response validator.
package bm25

import (
	"math"
)

// DefaultK1 is the default term frequency saturation parameter.
// Higher values mean term frequency has more impact.
const DefaultK1 = 1.2

// DefaultB is the default document length normalization parameter.
// B=0 means no normalization, B=1 means full normalization.
const DefaultB = 0.75

// DefaultSaturation is the half-point used by Similarity: a raw BM25 score
// equal to it maps to a similarity of 0.5.
const DefaultSaturation = 2.0

// BM25 implements the BM25 (Best Matching 25) ranking function.
type BM25 struct {
	K1       float64 // Term frequency saturation (default 1.2)
	B        float64 // Document length normalization (default 0.75)
	AvgDL    float64 // Average document length
	DocCount int     // Total number of documents
}

// New creates a new BM25 scorer with default parameters.
func New() *BM25 {
	return NewWithParams(DefaultK1, DefaultB)
}

// NewWithParams creates a BM25 scorer with custom parameters.
func NewWithParams(k1, b float64) *BM25 {
	return &BM25{
		K1: k1,
		B:  b,
	}
}

// SetCorpusStats sets the corpus statistics needed for scoring.
func (bm *BM25) SetCorpusStats(docCount int, avgDocLength float64) {
	bm.DocCount = docCount
	bm.AvgDL = avgDocLength
}

// IDF calculates the Inverse Document Frequency for a term using the
// Lucene variant, which never goes negative for common terms:
//
//	IDF(t) = log(1 + (N - df(t) + 0.5) / (df(t) + 0.5))
func (bm *BM25) IDF(docFreq int) float64 {
	if bm.DocCount == 0 || docFreq == 0 {
		return 0
	}

	n := float64(bm.DocCount)
	df := float64(docFreq)

	return math.Log(1 + (n-df+0.5)/(df+0.5))
}

// Score calculates the BM25 score component of one term in a document.
//
// Parameters:
//   - tf: term frequency in the document
//   - docFreq: number of documents containing the term
//   - docLen: length of the document (in terms)
func (bm *BM25) Score(tf, docFreq, docLen int) float64 {
	if tf == 0 || docFreq == 0 || bm.DocCount == 0 {
		return 0
	}

	avgDL := bm.AvgDL
	if avgDL <= 0 {
		avgDL = 1
	}

	tfFloat := float64(tf)
	lengthNorm := 1 - bm.B + bm.B*(float64(docLen)/avgDL)
	tfScore := (tfFloat * (bm.K1 + 1)) / (tfFloat + bm.K1*lengthNorm)

	return bm.IDF(docFreq) * tfScore
}

// ScoreDocument sums the per-term scores of every query term for one
// document.
func (bm *BM25) ScoreDocument(
	queryTerms map[string]int,
	docTermFreqs map[string]int,
	docFreqs map[string]int,
	docLen int,
) float64 {
	var score float64

	for term := range queryTerms {
		score += bm.Score(docTermFreqs[term], docFreqs[term], docLen)
	}

	return score
}

// Similarity maps an unbounded BM25 score onto [0, 1) with a hyperbolic
// saturation curve so it can be compared against similarity thresholds.
func Similarity(score float64) float64 {
	if score <= 0 {
		return 0
	}
	return score / (score + DefaultSaturation)
}
