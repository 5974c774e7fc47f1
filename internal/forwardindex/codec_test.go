package forwardindex

import (
	"path/filepath"
	"testing"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	idx := &Index{}
	idx.Add(&Record{DocID: "doc1", TotalTerms: 3, TitleLemmas: []int32{1, 2}, AbstractLemmas: []int32{3}})
	idx.Add(&Record{DocID: "doc2", TotalTerms: 2, BodyLemmas: []int32{4, 5}})

	path := filepath.Join(t.TempDir(), "forward.json")
	if err := Save(idx, path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.DocumentCount() != idx.DocumentCount() {
		t.Fatalf("DocumentCount = %d, want %d", loaded.DocumentCount(), idx.DocumentCount())
	}
	for i, r := range idx.Records {
		got := loaded.Records[i]
		if got.DocID != r.DocID || got.TotalTerms != r.TotalTerms {
			t.Errorf("record %d = %+v, want %+v", i, got, r)
		}
	}
}
