package lexicon

import "testing"

func TestExtendIsIdempotentOnRepeatedWord(t *testing.T) {
	l := New()
	wordID1, lemmaID1 := l.Extend("running", "run")
	wordID2, lemmaID2 := l.Extend("running", "run")
	if wordID1 != wordID2 || lemmaID1 != lemmaID2 {
		t.Fatalf("Extend not idempotent: got (%d,%d) then (%d,%d)", wordID1, lemmaID1, wordID2, lemmaID2)
	}
	if l.Size() != 1 {
		t.Errorf("Size = %d, want 1", l.Size())
	}
}

func TestExtendSharesLemmaAcrossWords(t *testing.T) {
	l := New()
	_, lemmaID1 := l.Extend("running", "run")
	_, lemmaID2 := l.Extend("runs", "run")
	if lemmaID1 != lemmaID2 {
		t.Errorf("expected shared lemma id, got %d and %d", lemmaID1, lemmaID2)
	}
	if l.LemmaCount() != 1 {
		t.Errorf("LemmaCount = %d, want 1", l.LemmaCount())
	}
	words := l.WordsForLemma(lemmaID1)
	if len(words) != 2 {
		t.Errorf("WordsForLemma returned %d words, want 2", len(words))
	}
}

func TestLemmaForWordUnknown(t *testing.T) {
	l := New()
	if _, ok := l.LemmaForWord("nope"); ok {
		t.Error("LemmaForWord found an entry for an unregistered word")
	}
}

func TestLoadSeedMismatchedLengths(t *testing.T) {
	_, err := LoadSeed([]string{"a", "b"}, []string{"lemma"})
	if err == nil {
		t.Fatal("LoadSeed with mismatched slice lengths should error")
	}
}

func TestLoadSeedBuildsLookups(t *testing.T) {
	l, err := LoadSeed([]string{"running", "runs", "walk"}, []string{"run", "run", "walk"})
	if err != nil {
		t.Fatalf("LoadSeed: %v", err)
	}
	lemmaID, ok := l.LemmaForWord("runs")
	if !ok {
		t.Fatal("LemmaForWord(runs) not found")
	}
	name, ok := l.LemmaName(lemmaID)
	if !ok || name != "run" {
		t.Errorf("LemmaName(%d) = %q, %v, want %q, true", lemmaID, name, ok, "run")
	}
}
