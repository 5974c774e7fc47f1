// Package lexicon implements the bidirectional surface-word / lemma-ID map
// described in spec component B. Word IDs are dense and equal a word's
// 0-based position in the underlying slice; lemma IDs are dense,
// monotonically assigned, and never reused.
package lexicon

import (
	"fmt"
	"sync"
)

// Lexicon maps surface words to word IDs and word IDs to lemma IDs. It is
// read-mostly: built once by the offline pipeline, then extended in place
// by the incremental indexer under a write lock.
type Lexicon struct {
	mu sync.RWMutex

	words        []string       // word-ID -> surface word
	wordToID     map[string]int32
	wordToLemma  []int32        // word-ID -> lemma-ID
	lemmaToWords map[int32][]int32

	lemmaNames []string // lemma-ID -> canonical lemma text, for logging/debug
	lemmaIDs   map[string]int32
}

// New returns an empty Lexicon.
func New() *Lexicon {
	return &Lexicon{
		wordToID:     make(map[string]int32),
		lemmaToWords: make(map[int32][]int32),
		lemmaIDs:     make(map[string]int32),
	}
}

// LemmaForWord returns the lemma-ID for a known surface word.
func (l *Lexicon) LemmaForWord(word string) (int32, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	id, ok := l.wordToID[word]
	if !ok {
		return 0, false
	}
	return l.wordToLemma[id], true
}

// WordID returns the word-ID for a known surface word.
func (l *Lexicon) WordID(word string) (int32, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	id, ok := l.wordToID[word]
	return id, ok
}

// Word returns the surface word for a word-ID, if present.
func (l *Lexicon) Word(wordID int32) (string, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if wordID < 0 || int(wordID) >= len(l.words) {
		return "", false
	}
	return l.words[wordID], true
}

// LemmaName returns the canonical text for a lemma-ID, if known.
func (l *Lexicon) LemmaName(lemmaID int32) (string, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if lemmaID < 0 || int(lemmaID) >= len(l.lemmaNames) {
		return "", false
	}
	return l.lemmaNames[lemmaID], true
}

// LemmaID returns the lemma-ID assigned to a canonical lemma string, if any.
func (l *Lexicon) LemmaID(lemma string) (int32, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	id, ok := l.lemmaIDs[lemma]
	return id, ok
}

// WordsForLemma returns every word-ID that maps to the given lemma-ID.
func (l *Lexicon) WordsForLemma(lemmaID int32) []int32 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]int32(nil), l.lemmaToWords[lemmaID]...)
}

// Size returns the number of registered words.
func (l *Lexicon) Size() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.words)
}

// LemmaCount returns the number of distinct lemmas.
func (l *Lexicon) LemmaCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.lemmaNames)
}

// Extend registers a new surface word mapped to the given lemma text,
// minting a new lemma-ID if the lemma has not been seen before. If the
// word is already known, its existing (word-ID, lemma-ID) pair is
// returned unchanged — Extend is idempotent on repeated words.
func (l *Lexicon) Extend(word, lemma string) (wordID int32, lemmaID int32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.extendLocked(word, lemma)
}

func (l *Lexicon) extendLocked(word, lemma string) (int32, int32) {
	if id, ok := l.wordToID[word]; ok {
		return id, l.wordToLemma[id]
	}

	lemmaID, ok := l.lemmaIDs[lemma]
	if !ok {
		lemmaID = int32(len(l.lemmaNames))
		l.lemmaNames = append(l.lemmaNames, lemma)
		l.lemmaIDs[lemma] = lemmaID
	}

	wordID := int32(len(l.words))
	l.words = append(l.words, word)
	l.wordToID[word] = wordID
	l.wordToLemma = append(l.wordToLemma, lemmaID)
	l.lemmaToWords[lemmaID] = append(l.lemmaToWords[lemmaID], wordID)

	return wordID, lemmaID
}

// LoadSeed builds a Lexicon directly from parallel slices, used by
// forward-index and test construction when words and lemmas are already
// known in bulk (avoids the per-word locking overhead of Extend).
func LoadSeed(words []string, lemmas []string) (*Lexicon, error) {
	if len(words) != len(lemmas) {
		return nil, fmt.Errorf("lexicon: words and lemmas length mismatch: %d vs %d", len(words), len(lemmas))
	}
	l := New()
	for i, w := range words {
		l.extendLocked(w, lemmas[i])
	}
	return l, nil
}
