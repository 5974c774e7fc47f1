package forwardindex

import (
	"testing"

	"github.com/scisearch/engine/internal/lexicon"
	"github.com/scisearch/engine/internal/tokenizer"
)

func newBuilder(maxBodyTerms int) *Builder {
	lex := lexicon.New()
	resolver := tokenizer.NewResolver(lex)
	return NewBuilder(resolver, maxBodyTerms)
}

func TestBuildRejectsEmptyDocID(t *testing.T) {
	b := newBuilder(0)
	if _, _, err := b.Build(RawDocument{Title: "hello"}); err == nil {
		t.Fatal("Build with empty doc-ID should error")
	}
}

func TestBuildRejectsOverlongDocID(t *testing.T) {
	b := newBuilder(0)
	longID := "this-doc-id-is-far-too-long-for-the-limit"
	if _, _, err := b.Build(RawDocument{DocID: longID, Title: "hello"}); err == nil {
		t.Fatal("Build with overlong doc-ID should error")
	}
}

func TestBuildSkipsZeroTermDocuments(t *testing.T) {
	b := newBuilder(0)
	record, _, err := b.Build(RawDocument{DocID: "doc1", Title: "", Abstract: "", Body: ""})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if record != nil {
		t.Errorf("Build with no text returned a non-nil record: %+v", record)
	}
}

func TestBuildProducesLemmaSequences(t *testing.T) {
	b := newBuilder(0)
	record, newEntries, err := b.Build(RawDocument{
		DocID:    "doc1",
		Title:    "machine learning",
		Abstract: "an abstract about models",
		Body:     "the body text has more words",
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if record == nil {
		t.Fatal("Build returned nil record for non-empty document")
	}
	if record.DocID != "doc1" {
		t.Errorf("DocID = %q, want doc1", record.DocID)
	}
	if len(record.TitleLemmas) != 2 {
		t.Errorf("TitleLemmas len = %d, want 2", len(record.TitleLemmas))
	}
	if record.TotalTerms != len(record.TitleLemmas)+len(record.AbstractLemmas)+len(record.BodyLemmas) {
		t.Error("TotalTerms does not match the sum of lemma sequence lengths")
	}
	if newEntries == 0 {
		t.Error("expected new lexicon entries for a fresh vocabulary")
	}

	all := record.AllLemmas()
	if len(all) != record.TotalTerms {
		t.Errorf("AllLemmas len = %d, want %d", len(all), record.TotalTerms)
	}
}

func TestBuildTruncatesBodyLemmas(t *testing.T) {
	b := newBuilder(3)
	record, _, err := b.Build(RawDocument{
		DocID: "doc1",
		Body:  "one two three four five six seven",
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if record == nil {
		t.Fatal("expected non-nil record")
	}
	if len(record.BodyLemmas) != 3 {
		t.Errorf("BodyLemmas len = %d, want 3 (truncated)", len(record.BodyLemmas))
	}
}

func TestDocumentCountAndAverageDocLength(t *testing.T) {
	idx := &Index{}
	idx.Add(&Record{DocID: "a", TotalTerms: 10})
	idx.Add(&Record{DocID: "b", TotalTerms: 20})
	idx.Add(nil) // ignored

	if idx.DocumentCount() != 2 {
		t.Errorf("DocumentCount = %d, want 2", idx.DocumentCount())
	}
	if got := idx.AverageDocLength(); got != 15 {
		t.Errorf("AverageDocLength = %v, want 15", got)
	}
}

func TestAverageDocLengthEmptyIndex(t *testing.T) {
	idx := &Index{}
	if got := idx.AverageDocLength(); got != 0 {
		t.Errorf("AverageDocLength of empty index = %v, want 0", got)
	}
}
