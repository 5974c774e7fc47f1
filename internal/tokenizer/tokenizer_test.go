package tokenizer

import (
	"testing"

	"github.com/scisearch/engine/internal/lexicon"
)

func TestSplitLowercasesAndSplitsOnPunctuation(t *testing.T) {
	tokens := Split("Machine-Learning, and NLP!")
	want := []string{"machine", "learning", "and", "nlp"}
	if len(tokens) != len(want) {
		t.Fatalf("got %d tokens, want %d: %+v", len(tokens), len(want), tokens)
	}
	for i, tok := range tokens {
		if tok.Word != want[i] {
			t.Errorf("token %d = %q, want %q", i, tok.Word, want[i])
		}
		if tok.Position != i {
			t.Errorf("token %d position = %d, want %d", i, tok.Position, i)
		}
	}
}

func TestSplitEmptyString(t *testing.T) {
	if tokens := Split(""); len(tokens) != 0 {
		t.Errorf("Split(\"\") = %v, want empty", tokens)
	}
}

func TestResolveQueryDropsUnknownWords(t *testing.T) {
	lex := newTestLexicon()
	r := NewResolver(lex)
	resolved := r.ResolveQuery("known unknownword")
	if len(resolved) != 1 || resolved[0].Word != "known" {
		t.Fatalf("ResolveQuery = %+v, want only 'known'", resolved)
	}
}

func TestResolveAndExtendGrowsLexicon(t *testing.T) {
	lex := newTestLexicon()
	r := NewResolver(lex)
	sizeBefore := lex.Size()

	resolved, newEntries := r.ResolveAndExtend("brand new word")
	if newEntries == 0 {
		t.Error("expected at least one new lexicon entry")
	}
	if lex.Size() <= sizeBefore {
		t.Error("lexicon did not grow after ResolveAndExtend")
	}
	if len(resolved) != 3 {
		t.Errorf("got %d resolved tokens, want 3", len(resolved))
	}
}

func TestResolveAndExtendIsIdempotentForRepeatedWords(t *testing.T) {
	lex := newTestLexicon()
	r := NewResolver(lex)

	_, firstNew := r.ResolveAndExtend("repeated repeated repeated")
	sizeAfterFirst := lex.Size()
	_, secondNew := r.ResolveAndExtend("repeated repeated repeated")

	if firstNew == 0 {
		t.Error("expected new entries on first pass")
	}
	if secondNew != 0 {
		t.Errorf("second pass over identical text minted %d new entries, want 0", secondNew)
	}
	if lex.Size() != sizeAfterFirst {
		t.Errorf("lexicon size changed on repeated resolution: %d != %d", lex.Size(), sizeAfterFirst)
	}
}

func newTestLexicon() *lexicon.Lexicon {
	lex := lexicon.New()
	lex.Extend("known", "known")
	return lex
}
