package invertedindex

import (
	"path/filepath"
	"testing"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	idx := New()
	idx.Append(1, "doc1", 2)
	idx.Append(1, "doc2", 1)
	idx.Append(2, "doc1", 4)

	path := filepath.Join(t.TempDir(), "inverted.json")
	if err := Save(idx, path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.LemmaCount() != idx.LemmaCount() {
		t.Fatalf("LemmaCount = %d, want %d", loaded.LemmaCount(), idx.LemmaCount())
	}
	list := loaded.Get(1)
	if list == nil || len(list.Postings) != 2 {
		t.Fatalf("lemma 1 postings = %+v, want 2 entries", list)
	}
	if list.Postings[0].DocID != "doc1" || list.Postings[0].TF != 2 {
		t.Errorf("posting 0 = %+v, want doc1/tf=2", list.Postings[0])
	}
}
