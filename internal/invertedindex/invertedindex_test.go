package invertedindex

import (
	"testing"

	"github.com/scisearch/engine/internal/forwardindex"
)

func TestCountFrequencies(t *testing.T) {
	freq := CountFrequencies([]int32{1, 2, 1, 1, 3})
	want := map[int32]int32{1: 3, 2: 1, 3: 1}
	if len(freq) != len(want) {
		t.Fatalf("got %d distinct lemmas, want %d", len(freq), len(want))
	}
	for k, v := range want {
		if freq[k] != v {
			t.Errorf("freq[%d] = %d, want %d", k, freq[k], v)
		}
	}
}

func TestBuildFoldsDuplicateLemmasIntoOnePosting(t *testing.T) {
	fwd := &forwardindex.Index{}
	fwd.Add(&forwardindex.Record{DocID: "doc1", TotalTerms: 3, TitleLemmas: []int32{1, 1, 1}})

	idx := Build(fwd)
	list := idx.Get(1)
	if list == nil {
		t.Fatal("no posting list for lemma 1")
	}
	if len(list.Postings) != 1 {
		t.Fatalf("got %d postings for a single document, want 1 (folded)", len(list.Postings))
	}
	if list.Postings[0].TF != 3 {
		t.Errorf("TF = %d, want 3", list.Postings[0].TF)
	}
}

func TestBuildPreservesInsertionOrderAcrossDocuments(t *testing.T) {
	fwd := &forwardindex.Index{}
	fwd.Add(&forwardindex.Record{DocID: "docA", TotalTerms: 1, TitleLemmas: []int32{1}})
	fwd.Add(&forwardindex.Record{DocID: "docB", TotalTerms: 1, TitleLemmas: []int32{1}})
	fwd.Add(&forwardindex.Record{DocID: "docC", TotalTerms: 1, TitleLemmas: []int32{1}})

	idx := Build(fwd)
	list := idx.Get(1)
	if list == nil || len(list.Postings) != 3 {
		t.Fatalf("expected 3 postings, got %+v", list)
	}
	wantOrder := []string{"docA", "docB", "docC"}
	for i, p := range list.Postings {
		if p.DocID != wantOrder[i] {
			t.Errorf("posting %d docID = %q, want %q (insertion order must be preserved)", i, p.DocID, wantOrder[i])
		}
	}
}

func TestDFMatchesPostingListLength(t *testing.T) {
	list := &PostingList{LemmaID: 1, Postings: []Posting{{DocID: "a"}, {DocID: "b"}}}
	if list.DF() != 2 {
		t.Errorf("DF = %d, want 2", list.DF())
	}
}

func TestAppendCreatesNewListOnFirstUse(t *testing.T) {
	idx := New()
	idx.Append(7, "doc1", 5)
	idx.Append(7, "doc2", 2)
	list := idx.Get(7)
	if list == nil || len(list.Postings) != 2 {
		t.Fatalf("expected 2 postings after two Append calls, got %+v", list)
	}
	if idx.LemmaCount() != 1 {
		t.Errorf("LemmaCount = %d, want 1", idx.LemmaCount())
	}
}
