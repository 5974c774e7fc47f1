// Package incremental implements the Incremental Indexer (spec component
// J): it makes a single new document searchable by appending to a delta
// barrel and patching the lexicon and autocomplete buckets in place,
// without touching the primary barrels the offline build pipeline produces.
package incremental

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/scisearch/engine/internal/autocomplete"
	"github.com/scisearch/engine/internal/barrel"
	"github.com/scisearch/engine/internal/docid"
	"github.com/scisearch/engine/internal/forwardindex"
	"github.com/scisearch/engine/internal/invertedindex"
	"github.com/scisearch/engine/internal/lexicon"
	bcerrors "github.com/scisearch/engine/pkg/errors"
	"github.com/scisearch/engine/pkg/resilience"
)

// Payload is a new document as submitted to add-document.
type Payload struct {
	DocID    string // empty to auto-derive
	Title    string
	Abstract string
	Body     string
}

// Result reports what add-document did (spec.md §4.J's operation shape).
type Result struct {
	DocID             string
	ElapsedMs         int64
	TotalTerms        int
	UniqueTerms       int
	NewLexiconEntries int
}

// Indexer owns the single-writer path that appends to the delta barrel
// (spec.md §5: "Writes from the Incremental Indexer require mutual
// exclusion: at most one writer at a time"). Readers go through
// barrels.Lookup and observe either the pre-write or post-write delta
// snapshot via Index.RefreshDelta's atomic pointer swap.
type Indexer struct {
	writeMu sync.Mutex

	lex     *lexicon.Lexicon
	builder *forwardindex.Builder
	barrels *barrel.Index
	ac      *autocomplete.Store

	deltaBinPath string
	deltaIdxPath string
	lexiconPath  string

	seenDocIDs map[string]struct{}
	seq        int64

	timeout time.Duration
	logger  *slog.Logger
}

// New builds an Indexer writing to the delta barrel under dir, named by
// deltaBaseName (spec.md §6's delta_barrel_base_name). lexiconPath is the
// on-disk binary lexicon file lex was loaded from; AddDocument rewrites it
// whenever a document introduces new words, so a restart reloads the same
// lemma-IDs the delta barrel's postings were written against.
func New(lex *lexicon.Lexicon, builder *forwardindex.Builder, barrels *barrel.Index, ac *autocomplete.Store, dir, deltaBaseName, lexiconPath string, timeout time.Duration) *Indexer {
	return &Indexer{
		lex:          lex,
		builder:      builder,
		barrels:      barrels,
		ac:           ac,
		deltaBinPath: filepath.Join(dir, deltaBaseName+".bin"),
		deltaIdxPath: filepath.Join(dir, deltaBaseName+".idx"),
		lexiconPath:  lexiconPath,
		seenDocIDs:   make(map[string]struct{}),
		timeout:      timeout,
		logger:       slog.Default().With("component", "incremental-indexer"),
	}
}

// SeedKnownDocIDs registers document-IDs already present on disk so
// AddDocument's collision check and auto-derivation scheme see them too.
func (ix *Indexer) SeedKnownDocIDs(ids []string) {
	ix.writeMu.Lock()
	defer ix.writeMu.Unlock()
	for _, id := range ids {
		ix.seenDocIDs[id] = struct{}{}
	}
}

// AddDocument runs spec.md §4.J's algorithm end to end: derive/validate the
// document-ID, tokenize and extend the lexicon, compute lemma frequencies,
// append one block per lemma to the delta barrel, patch autocomplete
// buckets, and publish the refreshed delta snapshot so concurrent readers
// see the document immediately. Only one AddDocument runs at a time.
func (ix *Indexer) AddDocument(ctx context.Context, payload Payload) (*Result, error) {
	start := time.Now()

	deadline := ix.timeout
	if deadline <= 0 {
		deadline = 60 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	ix.writeMu.Lock()
	defer ix.writeMu.Unlock()

	docID, err := ix.resolveDocID(payload.DocID)
	if err != nil {
		return nil, err
	}

	rec, newEntries, err := ix.builder.Build(forwardindex.RawDocument{
		DocID:    docID,
		Title:    payload.Title,
		Abstract: payload.Abstract,
		Body:     payload.Body,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: tokenizing document %s: %v", bcerrors.ErrIncrementalWriteFailed, docID, err)
	}
	if rec == nil {
		return nil, fmt.Errorf("%w: document %s has zero terms", bcerrors.ErrInvalidInput, docID)
	}

	if newEntries > 0 {
		if err := lexicon.SaveBinary(ix.lex, ix.lexiconPath); err != nil {
			return nil, fmt.Errorf("%w: persisting %d new lexicon entries for document %s: %v", bcerrors.ErrIncrementalWriteFailed, newEntries, docID, err)
		}
	}

	lemmas := rec.AllLemmas()
	freq := invertedindex.CountFrequencies(lemmas)

	if err := ix.appendPostings(ctx, docID, freq); err != nil {
		return nil, err
	}

	if err := ix.barrels.RefreshDelta(ix.deltaBinPath, ix.deltaIdxPath); err != nil {
		return nil, fmt.Errorf("%w: publishing delta snapshot for %s: %v", bcerrors.ErrIncrementalWriteFailed, docID, err)
	}

	ix.patchAutocomplete(freq)
	ix.seenDocIDs[docID] = struct{}{}

	return &Result{
		DocID:             docID,
		ElapsedMs:         time.Since(start).Milliseconds(),
		TotalTerms:        rec.TotalTerms,
		UniqueTerms:       len(freq),
		NewLexiconEntries: newEntries,
	}, nil
}

// resolveDocID validates a caller-supplied ID or derives a fresh one from a
// monotonic sequence, enforcing spec.md §3's ≤19-byte limit and collision
// freedom against every document-ID observed so far.
func (ix *Indexer) resolveDocID(requested string) (string, error) {
	if requested != "" {
		if len(requested) > docid.MaxLen {
			return "", fmt.Errorf("%w: document-ID %q exceeds %d bytes", bcerrors.ErrInvalidInput, requested, docid.MaxLen)
		}
		if _, exists := ix.seenDocIDs[requested]; exists {
			return "", fmt.Errorf("%w: document-ID %q already indexed", bcerrors.ErrInvalidInput, requested)
		}
		return requested, nil
	}
	for {
		ix.seq++
		candidate := fmt.Sprintf("delta-%d", ix.seq)
		if len(candidate) > docid.MaxLen {
			return "", fmt.Errorf("%w: generated document-ID %q exceeds %d bytes", bcerrors.ErrInternal, candidate, docid.MaxLen)
		}
		if _, exists := ix.seenDocIDs[candidate]; !exists {
			return candidate, nil
		}
	}
}

// appendPostings writes one block per lemma to the delta barrel, retrying
// transient fsync failures with exponential backoff before giving up
// (spec.md §4.J step 7: persist sufficiently to survive a crash).
//
// AppendBlock's idx entries are last-write-wins per lemma-ID, so a lemma
// already carrying earlier delta postings must have its full posting list
// re-read and unioned with the new document's posting before the block is
// appended; otherwise the new idx entry would shadow the earlier postings
// and make them unreachable through Lookup (spec.md P1, delta merges may
// only add).
func (ix *Indexer) appendPostings(ctx context.Context, docID string, freq map[int32]int32) error {
	for lemmaID, tf := range freq {
		existing, err := barrel.ReadLatestBlock(ix.deltaBinPath, ix.deltaIdxPath, lemmaID)
		if err != nil {
			return fmt.Errorf("%w: reading existing delta block for lemma %d: %v", bcerrors.ErrIncrementalWriteFailed, lemmaID, err)
		}

		list := &invertedindex.PostingList{LemmaID: lemmaID}
		if existing != nil {
			list.Postings = append(list.Postings, existing.Postings...)
		}
		list.Postings = append(list.Postings, invertedindex.Posting{DocID: docID, TF: tf})

		err = resilience.Retry(ctx, "incremental-append", resilience.RetryConfig{MaxAttempts: 3}, func() error {
			_, err := barrel.AppendBlock(ix.deltaBinPath, ix.deltaIdxPath, list)
			return err
		})
		if err != nil {
			return fmt.Errorf("%w: appending lemma %d for document %s: %v", bcerrors.ErrIncrementalWriteFailed, lemmaID, docID, err)
		}
	}
	return nil
}

// patchAutocomplete adds the document's surface words to the autocomplete
// store's prefix buckets (spec.md §4.J step 6). Each lemma-ID is resolved
// back to every surface word the lexicon maps to it, since the prefix
// buckets index surface words.
func (ix *Indexer) patchAutocomplete(freq map[int32]int32) {
	for lemmaID, tf := range freq {
		words := ix.lex.WordsForLemma(lemmaID)
		for _, wordID := range words {
			word, ok := ix.lex.Word(wordID)
			if !ok {
				continue
			}
			ix.ac.AddWord(word, int(tf))
		}
	}
}
