package invertedindex

import (
	"encoding/json"
	"fmt"
	"os"
)

type jsonPosting struct {
	DocID string `json:"docID"`
	TF    int32  `json:"tf"`
}

type jsonEntry struct {
	LemmaID  int32         `json:"lemmaID"`
	DF       int           `json:"df"`
	Postings []jsonPosting `json:"postings"`
}

// Save writes the inverted index as JSON to path, one entry per lemma in
// first-seen order.
func Save(idx *Index, path string) error {
	entries := make([]jsonEntry, 0, len(idx.Order))
	for _, lemmaID := range idx.Order {
		list := idx.Lists[lemmaID]
		postings := make([]jsonPosting, len(list.Postings))
		for i, p := range list.Postings {
			postings[i] = jsonPosting{DocID: p.DocID, TF: p.TF}
		}
		entries = append(entries, jsonEntry{
			LemmaID:  lemmaID,
			DF:       list.DF(),
			Postings: postings,
		})
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("invertedindex: marshaling: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("invertedindex: writing %s: %w", path, err)
	}
	return nil
}

// Load reads an inverted index from JSON at path.
func Load(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("invertedindex: reading %s: %w", path, err)
	}
	var entries []jsonEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("invertedindex: parsing %s: %w", path, err)
	}
	idx := New()
	for _, e := range entries {
		list := &PostingList{LemmaID: e.LemmaID, Postings: make([]Posting, len(e.Postings))}
		for i, p := range e.Postings {
			list.Postings[i] = Posting{DocID: p.DocID, TF: p.TF}
		}
		idx.Lists[e.LemmaID] = list
		idx.Order = append(idx.Order, e.LemmaID)
	}
	return idx, nil
}
