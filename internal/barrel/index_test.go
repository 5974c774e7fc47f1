package barrel

import (
	"path/filepath"
	"testing"

	"github.com/scisearch/engine/internal/forwardindex"
	"github.com/scisearch/engine/internal/invertedindex"
)

func buildTestBarrels(t *testing.T) (string, *invertedindex.Index) {
	t.Helper()
	fwd := &forwardindex.Index{}
	fwd.Add(&forwardindex.Record{DocID: "doc1", TotalTerms: 2, TitleLemmas: []int32{1, 2}})
	fwd.Add(&forwardindex.Record{DocID: "doc2", TotalTerms: 1, TitleLemmas: []int32{1}})

	inv := invertedindex.Build(fwd)
	dir := t.TempDir()
	if _, err := Build(inv, dir, DefaultThresholds); err != nil {
		t.Fatalf("Build: %v", err)
	}
	return dir, inv
}

func TestBuildOpenLookupRoundTrip(t *testing.T) {
	dir, _ := buildTestBarrels(t)

	idx, err := Open(dir, "delta", DefaultThresholds)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer idx.Close()

	block, err := idx.Lookup(1)
	if err != nil {
		t.Fatalf("Lookup(1): %v", err)
	}
	if block == nil {
		t.Fatal("Lookup(1) returned nil block, want postings for doc1 and doc2")
	}
	if len(block.Postings) != 2 {
		t.Errorf("got %d postings for lemma 1, want 2", len(block.Postings))
	}
}

func TestLookupUnknownLemmaReturnsNilNotError(t *testing.T) {
	dir, _ := buildTestBarrels(t)
	idx, err := Open(dir, "delta", DefaultThresholds)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer idx.Close()

	block, err := idx.Lookup(9999)
	if err != nil {
		t.Fatalf("Lookup(unknown): %v", err)
	}
	if block != nil {
		t.Errorf("Lookup(unknown) = %+v, want nil", block)
	}
}

func TestDeltaMergeDedupesAndUnions(t *testing.T) {
	primary := &Block{LemmaID: 1, DF: 1, Postings: []invertedindex.Posting{{DocID: "doc1", TF: 3}}}
	delta := &Block{LemmaID: 1, DF: 2, Postings: []invertedindex.Posting{
		{DocID: "doc1", TF: 99}, // duplicate: primary wins, delta contributes nothing new
		{DocID: "doc2", TF: 1},
	}}

	merged := mergeBlocks(1, primary, delta)
	if merged == nil {
		t.Fatal("mergeBlocks returned nil")
	}
	if len(merged.Postings) != 2 {
		t.Fatalf("got %d postings, want 2 (deduped)", len(merged.Postings))
	}
	if merged.DF != 2 {
		t.Errorf("DF = %d, want 2 (primary DF + 1 new delta doc)", merged.DF)
	}
	for _, p := range merged.Postings {
		if p.DocID == "doc1" && p.TF != 3 {
			t.Errorf("doc1 TF = %d, want 3 (primary value preserved over duplicate delta entry)", p.TF)
		}
	}
}

func TestDeltaMergeIsIdempotent(t *testing.T) {
	primary := &Block{LemmaID: 1, DF: 1, Postings: []invertedindex.Posting{{DocID: "doc1", TF: 1}}}
	delta := &Block{LemmaID: 1, DF: 1, Postings: []invertedindex.Posting{{DocID: "doc2", TF: 1}}}

	first := mergeBlocks(1, primary, delta)
	second := mergeBlocks(1, primary, delta)

	if len(first.Postings) != len(second.Postings) || first.DF != second.DF {
		t.Fatalf("repeated merges diverged: %+v vs %+v", first, second)
	}
}

func TestDeltaMergeNilCases(t *testing.T) {
	if mergeBlocks(1, nil, nil) != nil {
		t.Error("mergeBlocks(nil, nil) should be nil")
	}
	primary := &Block{LemmaID: 1, DF: 1, Postings: []invertedindex.Posting{{DocID: "doc1"}}}
	if got := mergeBlocks(1, primary, nil); got != primary {
		t.Error("mergeBlocks(primary, nil) should return primary unchanged")
	}
}

func TestAppendBlockAndRefreshDelta(t *testing.T) {
	dir, _ := buildTestBarrels(t)
	idx, err := Open(dir, "delta", DefaultThresholds)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer idx.Close()

	deltaBin := filepath.Join(dir, "delta.bin")
	deltaIdx := filepath.Join(dir, "delta.idx")

	newList := &invertedindex.PostingList{LemmaID: 1, Postings: []invertedindex.Posting{{DocID: "doc3", TF: 5}}}
	if _, err := AppendBlock(deltaBin, deltaIdx, newList); err != nil {
		t.Fatalf("AppendBlock: %v", err)
	}
	if err := idx.RefreshDelta(deltaBin, deltaIdx); err != nil {
		t.Fatalf("RefreshDelta: %v", err)
	}

	block, err := idx.Lookup(1)
	if err != nil {
		t.Fatalf("Lookup(1) after delta append: %v", err)
	}
	found := false
	for _, p := range block.Postings {
		if p.DocID == "doc3" {
			found = true
		}
	}
	if !found {
		t.Error("doc3 not visible via Lookup after AppendBlock + RefreshDelta")
	}
}
