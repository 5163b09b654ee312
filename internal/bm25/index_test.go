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
	"fmt"
	"testing"
)

func newModelIndex() *Index {
	idx := NewIndex()
	idx.AddDocument("gpt", "GPT-4o supports vision and function calling", map[string]any{"model": "GPT-4o"})
	idx.AddDocument("claude", "Claude handles long context documents and coding", map[string]any{"model": "Claude"})
	idx.AddDocument("llama", "Llama is an open weights model for local coding", nil)
	idx.AddDocument("whisper", "Whisper transcribes audio", nil)
	return idx
}

func TestIndex_AddDocument(t *testing.T) {
	idx := newModelIndex()

	if idx.Size() != 4 {
		t.Errorf("expected size 4, got %d", idx.Size())
	}

	doc, ok := idx.GetDocument("gpt")
	if !ok {
		t.Fatal("expected to find document gpt")
	}
	if doc.Metadata["model"] != "GPT-4o" {
		t.Errorf("expected metadata to be kept, got %v", doc.Metadata)
	}
}

func TestIndex_AddDocument_Replaces(t *testing.T) {
	idx := NewIndex()
	idx.AddDocument("1", "pricing per token", nil)
	idx.AddDocument("1", "latency in milliseconds", nil)

	if idx.Size() != 1 {
		t.Fatalf("expected size 1 after replace, got %d", idx.Size())
	}
	if results := idx.Search("pricing", 10); len(results) != 0 {
		t.Errorf("expected replaced content to be gone, got %d results", len(results))
	}
	if results := idx.Search("latency", 10); len(results) != 1 {
		t.Errorf("expected new content to match, got %d results", len(results))
	}
}

func TestIndex_Search(t *testing.T) {
	idx := newModelIndex()

	results := idx.Search("coding context", 10)
	if len(results) == 0 {
		t.Fatal("expected at least one result")
	}
	if results[0].ID != "claude" {
		t.Errorf("expected claude first, got %s", results[0].ID)
	}
	for _, r := range results {
		if r.Similarity <= 0 || r.Similarity >= 1 {
			t.Errorf("similarity out of range for %s: %f", r.ID, r.Similarity)
		}
	}
}

func TestIndex_Search_NoResults(t *testing.T) {
	idx := newModelIndex()

	if results := idx.Search("postgresql replication", 10); len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}

func TestIndex_Search_EmptyInputs(t *testing.T) {
	if results := NewIndex().Search("vision", 10); len(results) != 0 {
		t.Error("expected no results for empty index")
	}

	idx := newModelIndex()
	if results := idx.Search("", 10); len(results) != 0 {
		t.Errorf("expected no results for empty query, got %d", len(results))
	}
	if results := idx.Search("vision", 0); len(results) != 0 {
		t.Errorf("expected no results for topN 0, got %d", len(results))
	}
}

func TestIndex_Search_TopN(t *testing.T) {
	idx := NewIndex()
	for i := 1; i <= 10; i++ {
		idx.AddDocument(fmt.Sprintf("doc-%d", i), "benchmark report", nil)
	}

	if results := idx.Search("benchmark", 3); len(results) != 3 {
		t.Errorf("expected 3 results, got %d", len(results))
	}
}

func TestIndex_ScoresAreSorted(t *testing.T) {
	idx := NewIndex()
	idx.AddDocument("1", "latency latency latency", nil)
	idx.AddDocument("2", "latency latency", nil)
	idx.AddDocument("3", "latency", nil)
	idx.AddDocument("4", "unrelated content", nil)

	results := idx.Search("latency", 10)
	for i := 0; i < len(results)-1; i++ {
		if results[i].Score < results[i+1].Score {
			t.Errorf("results not sorted: score[%d]=%f < score[%d]=%f",
				i, results[i].Score, i+1, results[i+1].Score)
		}
	}
}

func TestIndex_Clear(t *testing.T) {
	idx := newModelIndex()
	idx.Clear()

	if idx.Size() != 0 {
		t.Errorf("expected size 0 after clear, got %d", idx.Size())
	}
	if _, ok := idx.GetDocument("gpt"); ok {
		t.Error("expected document to be gone after clear")
	}
}

func TestIndex_NewIndexWithParams(t *testing.T) {
	idx := NewIndexWithParams(1.5, 0.5)

	if idx.scorer.K1 != 1.5 || idx.scorer.B != 0.5 {
		t.Errorf("expected K1 1.5 and B 0.5, got %f and %f", idx.scorer.K1, idx.scorer.B)
	}
}
