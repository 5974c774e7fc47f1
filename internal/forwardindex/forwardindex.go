// Package forwardindex builds per-document lemma-ID sequences from raw
// document text (spec component C). It is the single pass over the raw
// corpus that everything downstream — the inverted index, barrels, and
// autocomplete buckets — is derived from.
package forwardindex

import (
	"fmt"
	"log/slog"

	"github.com/scisearch/engine/internal/docid"
	"github.com/scisearch/engine/internal/tokenizer"
)

// RawDocument is an input document before tokenization. Title, Abstract,
// and Body are plain text; author/dataset-specific metadata extraction is
// out of scope here and lives in internal/docstore.
type RawDocument struct {
	DocID    string
	Title    string
	Abstract string
	Body     string
}

// Record is a single forward-index entry: a document's title/abstract/body
// lemma sequences plus its total term count.
type Record struct {
	DocID         string
	TotalTerms    int
	TitleLemmas   []int32
	AbstractLemmas []int32
	BodyLemmas    []int32
}

// MaxBodyTerms bounds how many body lemmas are retained per document
// (spec.md §3, recommended N=5000).
const MaxBodyTerms = 5000

// Builder tokenizes raw documents into forward-index Records, extending
// the lexicon for unknown surface words as it goes.
type Builder struct {
	resolver     *tokenizer.Resolver
	maxBodyTerms int
	logger       *slog.Logger
}

// NewBuilder returns a Builder that resolves words against resolver and
// truncates body lemmas to maxBodyTerms (0 uses MaxBodyTerms).
func NewBuilder(resolver *tokenizer.Resolver, maxBodyTerms int) *Builder {
	if maxBodyTerms <= 0 {
		maxBodyTerms = MaxBodyTerms
	}
	return &Builder{
		resolver:     resolver,
		maxBodyTerms: maxBodyTerms,
		logger:       slog.Default().With("component", "forwardindex"),
	}
}

// Build converts a RawDocument into a Record. It returns a nil record with
// a nil error (plus the new-lexicon-entry count) when the document has zero
// total terms,
// per spec.md §4.C's "documents with zero total terms are omitted" rule;
// callers must check for a nil Record rather than treat every non-error
// return as indexable.
func (b *Builder) Build(doc RawDocument) (*Record, int, error) {
	if len(doc.DocID) == 0 {
		return nil, 0, fmt.Errorf("forwardindex: document has empty doc-ID")
	}
	if len(doc.DocID) > docid.MaxLen {
		return nil, 0, fmt.Errorf("forwardindex: doc-ID %q exceeds %d bytes", doc.DocID, docid.MaxLen)
	}

	titleResolved, titleNew := b.resolver.ResolveAndExtend(doc.Title)
	abstractResolved, abstractNew := b.resolver.ResolveAndExtend(doc.Abstract)
	bodyResolved, bodyNew := b.resolver.ResolveAndExtend(doc.Body)

	titleLemmas := lemmaIDs(titleResolved)
	abstractLemmas := lemmaIDs(abstractResolved)
	bodyLemmas := lemmaIDs(bodyResolved)
	if len(bodyLemmas) > b.maxBodyTerms {
		bodyLemmas = bodyLemmas[:b.maxBodyTerms]
	}

	total := len(titleLemmas) + len(abstractLemmas) + len(bodyLemmas)
	newEntries := titleNew + abstractNew + bodyNew

	if total == 0 {
		b.logger.Warn("skipping document with zero total terms", "doc_id", doc.DocID)
		return nil, newEntries, nil
	}

	return &Record{
		DocID:          doc.DocID,
		TotalTerms:     total,
		TitleLemmas:    titleLemmas,
		AbstractLemmas: abstractLemmas,
		BodyLemmas:     bodyLemmas,
	}, newEntries, nil
}

func lemmaIDs(resolved []tokenizer.Resolved) []int32 {
	ids := make([]int32, len(resolved))
	for i, r := range resolved {
		ids[i] = r.LemmaID
	}
	return ids
}

// AllLemmas concatenates a Record's title, abstract, and body lemma
// sequences in that order, the input the inverted-index builder consumes.
func (r *Record) AllLemmas() []int32 {
	out := make([]int32, 0, len(r.TitleLemmas)+len(r.AbstractLemmas)+len(r.BodyLemmas))
	out = append(out, r.TitleLemmas...)
	out = append(out, r.AbstractLemmas...)
	out = append(out, r.BodyLemmas...)
	return out
}
