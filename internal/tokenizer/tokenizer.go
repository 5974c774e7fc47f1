// Package tokenizer normalizes free text into lemma IDs. It case-folds,
// splits on non-alphanumeric boundaries, and resolves each surface word
// against the lexicon, optionally stemming unknown words before giving up
// on them. It performs no stop-word filtering beyond what the lexicon's
// lemma assignment already absorbs.
package tokenizer

import (
	"strings"
	"unicode"

	"github.com/kljensen/snowball"

	"github.com/scisearch/engine/internal/lexicon"
)

// Token is a single normalized surface word and its position in the
// original text, before lexicon resolution.
type Token struct {
	Word     string
	Position int
}

// Resolved is a token that has been looked up (or extended) in the
// lexicon and carries its lemma ID.
type Resolved struct {
	Word     string
	LemmaID  int32
	Position int
}

// Split breaks text into lowercased, alphanumeric Tokens in document
// order. It performs no lexicon lookups.
func Split(text string) []Token {
	text = strings.ToLower(text)
	words := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	tokens := make([]Token, 0, len(words))
	pos := 0
	for _, w := range words {
		if w == "" {
			continue
		}
		tokens = append(tokens, Token{Word: w, Position: pos})
		pos++
	}
	return tokens
}

// Resolver tokenizes text and resolves each token against a lexicon. At
// query time unknown words are dropped; at index time they are used to
// extend the lexicon.
type Resolver struct {
	lex *lexicon.Lexicon
}

// NewResolver returns a Resolver bound to lex.
func NewResolver(lex *lexicon.Lexicon) *Resolver {
	return &Resolver{lex: lex}
}

// ResolveQuery tokenizes text and resolves each token to a lemma ID using
// only the existing lexicon (4.A query-time path). Unknown words are
// silently dropped.
func (r *Resolver) ResolveQuery(text string) []Resolved {
	tokens := Split(text)
	out := make([]Resolved, 0, len(tokens))
	for _, t := range tokens {
		lemmaID, ok := r.lex.LemmaForWord(t.Word)
		if !ok {
			continue
		}
		out = append(out, Resolved{Word: t.Word, LemmaID: lemmaID, Position: t.Position})
	}
	return out
}

// ResolveAndExtend tokenizes text and resolves each token to a lemma ID,
// extending the lexicon for any unrecognized surface word (4.A index-time
// path). The stem is tried first as the lemma key: if the stemmed form is
// already a known lemma, the surface word is mapped onto it instead of
// minting a new lemma, which keeps morphological variants converging on a
// shared posting list.
func (r *Resolver) ResolveAndExtend(text string) ([]Resolved, int) {
	tokens := Split(text)
	out := make([]Resolved, 0, len(tokens))
	newEntries := 0
	for _, t := range tokens {
		lemmaID, ok := r.lex.LemmaForWord(t.Word)
		if !ok {
			lemma := stem(t.Word)
			_, lemmaID = r.lex.Extend(t.Word, lemma)
			newEntries++
		}
		out = append(out, Resolved{Word: t.Word, LemmaID: lemmaID, Position: t.Position})
	}
	return out, newEntries
}

// stem reduces a surface word to its canonical lemma form using the
// Snowball English stemmer, falling back to the original word if stemming
// fails (the algorithm only errors on unsupported languages).
func stem(word string) string {
	stemmed, err := snowball.Stem(word, "english", true)
	if err != nil || stemmed == "" {
		return word
	}
	return stemmed
}
