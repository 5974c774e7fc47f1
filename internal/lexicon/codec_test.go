package lexicon

import (
	"path/filepath"
	"testing"
)

func TestSaveLoadBinaryRoundTrip(t *testing.T) {
	l, err := LoadSeed(
		[]string{"running", "runs", "walked", "walk"},
		[]string{"run", "run", "walk", "walk"},
	)
	if err != nil {
		t.Fatalf("LoadSeed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "lexicon.bin")
	if err := SaveBinary(l, path); err != nil {
		t.Fatalf("SaveBinary: %v", err)
	}

	loaded, err := LoadBinary(path)
	if err != nil {
		t.Fatalf("LoadBinary: %v", err)
	}

	if loaded.Size() != l.Size() {
		t.Errorf("Size = %d, want %d", loaded.Size(), l.Size())
	}
	if loaded.LemmaCount() != l.LemmaCount() {
		t.Errorf("LemmaCount = %d, want %d", loaded.LemmaCount(), l.LemmaCount())
	}

	runningLemma, ok := loaded.LemmaForWord("running")
	if !ok {
		t.Fatal("running not found after reload")
	}
	runsLemma, ok := loaded.LemmaForWord("runs")
	if !ok {
		t.Fatal("runs not found after reload")
	}
	if runningLemma != runsLemma {
		t.Errorf("running and runs no longer share a lemma after round trip: %d vs %d", runningLemma, runsLemma)
	}

	walkedLemma, _ := loaded.LemmaForWord("walked")
	if walkedLemma == runningLemma {
		t.Error("walked incorrectly shares a lemma with running after round trip")
	}
}

func TestSaveLoadTextRoundTrip(t *testing.T) {
	l, err := LoadSeed([]string{"cat", "cats"}, []string{"cat", "cat"})
	if err != nil {
		t.Fatalf("LoadSeed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "lexicon.json")
	if err := SaveText(l, path); err != nil {
		t.Fatalf("SaveText: %v", err)
	}

	loaded, err := LoadText(path)
	if err != nil {
		t.Fatalf("LoadText: %v", err)
	}

	lemmaID, ok := loaded.LemmaForWord("cats")
	if !ok {
		t.Fatal("cats not found after reload")
	}
	name, ok := loaded.LemmaName(lemmaID)
	if !ok || name != "cat" {
		t.Errorf("LemmaName = %q, %v, want %q, true", name, ok, "cat")
	}
}
