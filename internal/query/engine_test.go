package query

import (
	"testing"

	"github.com/scisearch/engine/internal/forwardindex"
	"github.com/scisearch/engine/internal/tokenizer"
)

func emptyForwardIndex() *forwardindex.Index {
	return &forwardindex.Index{}
}

func TestDedupeByLemmaCollapsesRepeatedWord(t *testing.T) {
	resolved := []tokenizer.Resolved{
		{Word: "covid", LemmaID: 7, Position: 0},
		{Word: "covid", LemmaID: 7, Position: 1},
	}
	got := dedupeByLemma(resolved)
	if len(got) != 1 {
		t.Fatalf("dedupeByLemma = %+v, want a single entry for the repeated lemma", got)
	}
}

func TestDedupeByLemmaKeepsDistinctLemmas(t *testing.T) {
	resolved := []tokenizer.Resolved{
		{Word: "covid", LemmaID: 7, Position: 0},
		{Word: "vaccine", LemmaID: 9, Position: 1},
	}
	got := dedupeByLemma(resolved)
	if len(got) != 2 {
		t.Fatalf("dedupeByLemma = %+v, want both distinct lemmas kept", got)
	}
}

func TestSortResultsOrdersByScoreThenMatchedThenDocID(t *testing.T) {
	results := []Result{
		{DocID: "b", Score: 1.0, MatchedTerms: 1},
		{DocID: "a", Score: 2.0, MatchedTerms: 1},
		{DocID: "c", Score: 2.0, MatchedTerms: 2},
		{DocID: "d", Score: 1.0, MatchedTerms: 1},
	}
	sortResults(results)

	want := []string{"c", "a", "b", "d"}
	for i, docID := range want {
		if results[i].DocID != docID {
			t.Errorf("position %d = %q, want %q (order: %+v)", i, results[i].DocID, docID, results)
		}
	}
}

func TestSortResultsDeterministicOnTies(t *testing.T) {
	results := []Result{
		{DocID: "z", Score: 1.0, MatchedTerms: 1},
		{DocID: "a", Score: 1.0, MatchedTerms: 1},
		{DocID: "m", Score: 1.0, MatchedTerms: 1},
	}
	sortResults(results)
	want := []string{"a", "m", "z"}
	for i, docID := range want {
		if results[i].DocID != docID {
			t.Errorf("tie-break position %d = %q, want %q", i, results[i].DocID, docID)
		}
	}
}

func TestHasExplicitOperator(t *testing.T) {
	cases := map[string]bool{
		"covid vaccine":     false,
		"covid AND vaccine": true,
		"covid or vaccine":  true,
		"covid NOT vaccine": true,
		"android phone":     false, // must not match "and" as a substring of "android"
	}
	for q, want := range cases {
		if got := hasExplicitOperator(q); got != want {
			t.Errorf("hasExplicitOperator(%q) = %v, want %v", q, got, want)
		}
	}
}

func TestCorpusStatsFromForwardIndexNeverHardcodesN(t *testing.T) {
	corpus := CorpusStatsFromForwardIndex(emptyForwardIndex())
	if corpus.N != 0 {
		t.Errorf("N = %d, want 0 for an empty corpus", corpus.N)
	}
}
