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
	"sort"
	"sync"
)

// Document represents an indexed document.
type Document struct {
	ID        string
	Content   string
	Metadata  map[string]any
	Length    int            // Number of tokens
	TermFreqs map[string]int // Term frequencies
}

// SearchResult represents a BM25 search result.
type SearchResult struct {
	ID         string
	Content    string
	Metadata   map[string]any
	Score      float64 // Raw BM25 score
	Similarity float64 // Score mapped onto [0, 1)
}

// Index is an in-memory BM25 index. It is safe for concurrent use.
type Index struct {
	mu        sync.RWMutex
	tokenizer *Tokenizer
	scorer    *BM25
	docs      map[string]*Document // docID -> Document
	order     []string             // insertion order, for stable ties
	docFreqs  map[string]int       // term -> document frequency
	totalLen  int
}

// NewIndex creates a new BM25 index.
func NewIndex() *Index {
	return NewIndexWithParams(DefaultK1, DefaultB)
}

// NewIndexWithParams creates a new BM25 index with custom parameters.
func NewIndexWithParams(k1, b float64) *Index {
	return &Index{
		tokenizer: NewTokenizer(),
		scorer:    NewWithParams(k1, b),
		docs:      make(map[string]*Document),
		docFreqs:  make(map[string]int),
	}
}

// AddDocument adds a document to the index. Adding an ID that is already
// present replaces the earlier document.
func (idx *Index) AddDocument(id, content string, metadata map[string]any) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if _, exists := idx.docs[id]; exists {
		idx.removeLocked(id)
	}

	termFreqs := idx.tokenizer.TokenFrequencies(content)
	docLen := 0
	for term, freq := range termFreqs {
		docLen += freq
		idx.docFreqs[term]++
	}

	idx.docs[id] = &Document{
		ID:        id,
		Content:   content,
		Metadata:  metadata,
		Length:    docLen,
		TermFreqs: termFreqs,
	}
	idx.order = append(idx.order, id)
	idx.totalLen += docLen

	idx.updateScorerStats()
}

// removeLocked drops a document and its statistics. Callers hold mu.
func (idx *Index) removeLocked(id string) {
	doc := idx.docs[id]
	for term := range doc.TermFreqs {
		idx.docFreqs[term]--
		if idx.docFreqs[term] <= 0 {
			delete(idx.docFreqs, term)
		}
	}
	idx.totalLen -= doc.Length
	delete(idx.docs, id)
	for i, existing := range idx.order {
		if existing == id {
			idx.order = append(idx.order[:i], idx.order[i+1:]...)
			break
		}
	}
}

// updateScorerStats updates the BM25 scorer with current corpus statistics.
func (idx *Index) updateScorerStats() {
	avgDL := 0.0
	if len(idx.docs) > 0 {
		avgDL = float64(idx.totalLen) / float64(len(idx.docs))
	}
	idx.scorer.SetCorpusStats(len(idx.docs), avgDL)
}

// Search performs a BM25 search and returns the top-N results with a
// positive score, best first.
func (idx *Index) Search(query string, topN int) []SearchResult {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if len(idx.docs) == 0 || topN <= 0 {
		return nil
	}

	queryTermFreqs := idx.tokenizer.TokenFrequencies(query)
	if len(queryTermFreqs) == 0 {
		return nil
	}

	var results []SearchResult
	for _, id := range idx.order {
		doc := idx.docs[id]
		score := idx.scorer.ScoreDocument(
			queryTermFreqs,
			doc.TermFreqs,
			idx.docFreqs,
			doc.Length,
		)
		if score <= 0 {
			continue
		}
		results = append(results, SearchResult{
			ID:         doc.ID,
			Content:    doc.Content,
			Metadata:   doc.Metadata,
			Score:      score,
			Similarity: Similarity(score),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > topN {
		results = results[:topN]
	}
	return results
}

// Clear removes all documents from the index.
func (idx *Index) Clear() {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.docs = make(map[string]*Document)
	idx.docFreqs = make(map[string]int)
	idx.order = nil
	idx.totalLen = 0
	idx.updateScorerStats()
}

// Size returns the number of documents in the index.
func (idx *Index) Size() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.docs)
}

// GetDocument returns a document by ID.
func (idx *Index) GetDocument(id string) (*Document, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	doc, ok := idx.docs[id]
	return doc, ok
}
