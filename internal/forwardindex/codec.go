package forwardindex

import (
	"encoding/json"
	"fmt"
	"os"
)

// jsonRecord is the on-disk JSON shape of a single forward-index entry.
type jsonRecord struct {
	DocID          string  `json:"docID"`
	TotalTerms     int     `json:"totalTerms"`
	TitleLemmas    []int32 `json:"titleLemmas"`
	AbstractLemmas []int32 `json:"abstractLemmas"`
	BodyLemmas     []int32 `json:"bodyLemmas"`
}

// Index is an ordered collection of forward-index Records, preserving
// ingestion order (needed by the inverted-index builder for insertion-order
// posting lists).
type Index struct {
	Records []*Record
}

// Add appends a record, ignoring nil (zero-term documents already skipped
// by Builder.Build).
func (idx *Index) Add(r *Record) {
	if r == nil {
		return
	}
	idx.Records = append(idx.Records, r)
}

// Save writes the forward index as JSON to path.
func Save(idx *Index, path string) error {
	docs := make([]jsonRecord, len(idx.Records))
	for i, r := range idx.Records {
		docs[i] = jsonRecord{
			DocID:          r.DocID,
			TotalTerms:     r.TotalTerms,
			TitleLemmas:    r.TitleLemmas,
			AbstractLemmas: r.AbstractLemmas,
			BodyLemmas:     r.BodyLemmas,
		}
	}
	data, err := json.Marshal(docs)
	if err != nil {
		return fmt.Errorf("forwardindex: marshaling: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("forwardindex: writing %s: %w", path, err)
	}
	return nil
}

// Load reads a forward index from JSON at path.
func Load(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("forwardindex: reading %s: %w", path, err)
	}
	var docs []jsonRecord
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("forwardindex: parsing %s: %w", path, err)
	}
	idx := &Index{Records: make([]*Record, len(docs))}
	for i, d := range docs {
		idx.Records[i] = &Record{
			DocID:          d.DocID,
			TotalTerms:     d.TotalTerms,
			TitleLemmas:    d.TitleLemmas,
			AbstractLemmas: d.AbstractLemmas,
			BodyLemmas:     d.BodyLemmas,
		}
	}
	return idx, nil
}

// DocumentCount returns the number of documents in the forward index,
// which is the corpus size N used by BM25 and must never be hardcoded
// (spec.md §9 open question #3).
func (idx *Index) DocumentCount() int {
	return len(idx.Records)
}

// AverageDocLength returns the mean TotalTerms across all records, used
// as avgDocLen in BM25 scoring.
func (idx *Index) AverageDocLength() float64 {
	if len(idx.Records) == 0 {
		return 0
	}
	var sum int
	for _, r := range idx.Records {
		sum += r.TotalTerms
	}
	return float64(sum) / float64(len(idx.Records))
}
