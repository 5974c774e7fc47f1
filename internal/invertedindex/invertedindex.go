// Package invertedindex builds the lemma-ID → posting-list mapping from a
// forward index in a single pass (spec component D). Posting lists are
// kept in insertion order — the order documents were ingested — never
// sorted by document-ID, per spec.md §4.D.
package invertedindex

import (
	"github.com/scisearch/engine/internal/forwardindex"
)

// Posting is one (document, term-frequency) pair within a lemma's posting
// list.
type Posting struct {
	DocID string
	TF    int32
}

// PostingList is the set of postings for a single lemma, unique by
// document-ID, in insertion order.
type PostingList struct {
	LemmaID  int32
	Postings []Posting
}

// DF returns the document frequency: the length of the posting list.
func (p *PostingList) DF() int {
	return len(p.Postings)
}

// Index maps lemma-ID to its PostingList.
type Index struct {
	Lists map[int32]*PostingList
	Order []int32 // lemma-IDs in first-seen order, for deterministic iteration
}

// New returns an empty Index.
func New() *Index {
	return &Index{Lists: make(map[int32]*PostingList)}
}

// Build reads a forward index in a single pass and produces lemma-ID ->
// posting-list. Per document it computes lemma frequencies with a local
// map, then appends one (doc-ID, tf) posting per distinct lemma —
// duplicates within a document are folded into a single posting with the
// summed term frequency, never appended twice. Lemmas are visited in the
// order of their first occurrence in the document.
func Build(fwd *forwardindex.Index) *Index {
	idx := New()
	for _, rec := range fwd.Records {
		lemmas := rec.AllLemmas()
		freq := CountFrequencies(lemmas)
		for _, lemmaID := range lemmas {
			tf, pending := freq[lemmaID]
			if !pending {
				continue
			}
			idx.append(lemmaID, rec.DocID, tf)
			delete(freq, lemmaID)
		}
	}
	return idx
}

// CountFrequencies folds a document's lemma sequence into a per-lemma
// term-frequency map, shared by the offline build pipeline and the
// incremental indexer so both compute postings the same way.
func CountFrequencies(lemmas []int32) map[int32]int32 {
	freq := make(map[int32]int32, len(lemmas))
	for _, lemmaID := range lemmas {
		freq[lemmaID]++
	}
	return freq
}

// Append adds one posting to lemmaID's list. The incremental indexer does
// not call it; it builds each delta PostingList directly.
func (idx *Index) Append(lemmaID int32, docID string, tf int32) {
	idx.append(lemmaID, docID, tf)
}

func (idx *Index) append(lemmaID int32, docID string, tf int32) {
	list, ok := idx.Lists[lemmaID]
	if !ok {
		list = &PostingList{LemmaID: lemmaID}
		idx.Lists[lemmaID] = list
		idx.Order = append(idx.Order, lemmaID)
	}
	list.Postings = append(list.Postings, Posting{DocID: docID, TF: tf})
}

// Get returns the posting list for a lemma-ID, or nil if absent.
func (idx *Index) Get(lemmaID int32) *PostingList {
	return idx.Lists[lemmaID]
}

// LemmaCount returns the number of distinct lemmas with a non-empty
// posting list.
func (idx *Index) LemmaCount() int {
	return len(idx.Lists)
}
