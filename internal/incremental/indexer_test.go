package incremental

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/scisearch/engine/internal/autocomplete"
	"github.com/scisearch/engine/internal/barrel"
	"github.com/scisearch/engine/internal/forwardindex"
	"github.com/scisearch/engine/internal/invertedindex"
	"github.com/scisearch/engine/internal/lexicon"
	"github.com/scisearch/engine/internal/tokenizer"
)

func newTestIndexer(t *testing.T) *Indexer {
	t.Helper()
	lex := lexicon.New()

	fwd := &forwardindex.Index{}
	fwd.Add(&forwardindex.Record{DocID: "seed", TotalTerms: 1, TitleLemmas: []int32{1}})
	inv := invertedindex.Build(fwd)

	dir := t.TempDir()
	if _, err := barrel.Build(inv, dir, barrel.DefaultThresholds); err != nil {
		t.Fatalf("barrel.Build: %v", err)
	}
	barrels, err := barrel.Open(dir, "delta", barrel.DefaultThresholds)
	if err != nil {
		t.Fatalf("barrel.Open: %v", err)
	}
	t.Cleanup(func() { barrels.Close() })

	resolver := tokenizer.NewResolver(lex)
	builder := forwardindex.NewBuilder(resolver, forwardindex.MaxBodyTerms)
	ac := autocomplete.NewStore(50, 50, 50)

	lexPath := filepath.Join(dir, "lexicon.bin")
	if err := lexicon.SaveBinary(lex, lexPath); err != nil {
		t.Fatalf("lexicon.SaveBinary: %v", err)
	}

	return New(lex, builder, barrels, ac, dir, "delta", lexPath, 5*time.Second)
}

func TestAddDocumentMakesTermsSearchableImmediately(t *testing.T) {
	ix := newTestIndexer(t)

	result, err := ix.AddDocument(context.Background(), Payload{
		DocID: "doc-1",
		Title: "quantum computing",
	})
	if err != nil {
		t.Fatalf("AddDocument: %v", err)
	}
	if result.DocID != "doc-1" {
		t.Errorf("DocID = %q, want doc-1", result.DocID)
	}
	if result.UniqueTerms == 0 {
		t.Error("UniqueTerms = 0, want at least one lemma from the title")
	}

	lemmaID, ok := ix.lex.LemmaForWord("quantum")
	if !ok {
		t.Fatal("lexicon should have learned 'quantum' during AddDocument")
	}
	block, err := ix.barrels.Lookup(lemmaID)
	if err != nil {
		t.Fatalf("Lookup after AddDocument: %v", err)
	}
	if block == nil {
		t.Fatal("Lookup returned nil, want the just-added posting to be visible")
	}
	found := false
	for _, p := range block.Postings {
		if p.DocID == "doc-1" {
			found = true
		}
	}
	if !found {
		t.Error("doc-1 not visible in the barrel lookup immediately after AddDocument")
	}
}

func TestAddDocumentRejectsDuplicateDocID(t *testing.T) {
	ix := newTestIndexer(t)
	ctx := context.Background()

	if _, err := ix.AddDocument(ctx, Payload{DocID: "dup", Title: "first version"}); err != nil {
		t.Fatalf("first AddDocument: %v", err)
	}
	if _, err := ix.AddDocument(ctx, Payload{DocID: "dup", Title: "second version"}); err == nil {
		t.Error("AddDocument with a duplicate ID should fail")
	}
}

func TestAddDocumentRejectsOverlongDocID(t *testing.T) {
	ix := newTestIndexer(t)
	longID := ""
	for i := 0; i < 25; i++ {
		longID += "x"
	}
	if _, err := ix.AddDocument(context.Background(), Payload{DocID: longID, Title: "text"}); err == nil {
		t.Error("AddDocument with an over-19-byte document-ID should fail")
	}
}

func TestAddDocumentAutoDerivesIDWhenEmpty(t *testing.T) {
	ix := newTestIndexer(t)
	result, err := ix.AddDocument(context.Background(), Payload{Title: "some text"})
	if err != nil {
		t.Fatalf("AddDocument: %v", err)
	}
	if result.DocID == "" {
		t.Error("auto-derived DocID should not be empty")
	}
}

func TestAddDocumentRejectsZeroTermDocument(t *testing.T) {
	ix := newTestIndexer(t)
	if _, err := ix.AddDocument(context.Background(), Payload{DocID: "empty-doc"}); err == nil {
		t.Error("AddDocument with no extractable terms should fail")
	}
}

func TestSeedKnownDocIDsPreventsCollisionWithPriorBuild(t *testing.T) {
	ix := newTestIndexer(t)
	ix.SeedKnownDocIDs([]string{"already-indexed"})

	if _, err := ix.AddDocument(context.Background(), Payload{DocID: "already-indexed", Title: "text"}); err == nil {
		t.Error("AddDocument should reject a document-ID seeded from a prior offline build")
	}
}

func TestAddDocumentUnionsSharedLemmaAcrossDeltaAppends(t *testing.T) {
	ix := newTestIndexer(t)
	ctx := context.Background()

	if _, err := ix.AddDocument(ctx, Payload{DocID: "shared-1", Title: "vaccine research"}); err != nil {
		t.Fatalf("first AddDocument: %v", err)
	}
	if _, err := ix.AddDocument(ctx, Payload{DocID: "shared-2", Title: "vaccine trial"}); err != nil {
		t.Fatalf("second AddDocument: %v", err)
	}

	lemmaID, ok := ix.lex.LemmaForWord("vaccine")
	if !ok {
		t.Fatal("lexicon should have learned 'vaccine'")
	}
	block, err := ix.barrels.Lookup(lemmaID)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if block == nil {
		t.Fatal("Lookup returned nil, want postings for both documents")
	}

	seen := map[string]bool{}
	for _, p := range block.Postings {
		seen[p.DocID] = true
	}
	if !seen["shared-1"] {
		t.Error("shared-1's posting for 'vaccine' became unreachable after the second document was added")
	}
	if !seen["shared-2"] {
		t.Error("shared-2's posting for 'vaccine' is missing")
	}
}

func TestAddDocumentPersistsNewLexiconEntriesToDisk(t *testing.T) {
	ix := newTestIndexer(t)

	if _, err := ix.AddDocument(context.Background(), Payload{DocID: "doc-3", Title: "quantum computing"}); err != nil {
		t.Fatalf("AddDocument: %v", err)
	}

	reloaded, err := lexicon.LoadBinary(ix.lexiconPath)
	if err != nil {
		t.Fatalf("LoadBinary: %v", err)
	}
	if _, ok := reloaded.WordID("quantum"); !ok {
		t.Error("on-disk lexicon should carry the new word learned during AddDocument")
	}
}

func TestAddDocumentPatchesAutocomplete(t *testing.T) {
	ix := newTestIndexer(t)
	if _, err := ix.AddDocument(context.Background(), Payload{DocID: "doc-2", Title: "vaccine research"}); err != nil {
		t.Fatalf("AddDocument: %v", err)
	}
	got := ix.ac.Suggest("vac", 5)
	if len(got) == 0 {
		t.Error("autocomplete should surface 'vaccine' after AddDocument")
	}
}
