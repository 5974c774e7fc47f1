// Package query implements the query engine (spec component I): it
// orchestrates tokenization, lemma resolution, semantic expansion, BM25
// scoring, AND/OR merging, and top-K ranking.
package query

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/scisearch/engine/internal/autocomplete"
	"github.com/scisearch/engine/internal/barrel"
	"github.com/scisearch/engine/internal/docstore"
	"github.com/scisearch/engine/internal/embeddings"
	"github.com/scisearch/engine/internal/forwardindex"
	"github.com/scisearch/engine/internal/lexicon"
	"github.com/scisearch/engine/internal/tokenizer"
	bcerrors "github.com/scisearch/engine/pkg/errors"
	"github.com/scisearch/engine/pkg/tracing"
)

// Mode selects how matched terms combine across a multi-word query.
type Mode string

const (
	ModeAND Mode = "and"
	ModeOR  Mode = "or"
)

// Params holds the scoring constants and limits spec.md §9 lists as
// configurable with defaults.
type Params struct {
	BM25            BM25Params
	TopK            int
	SemanticThreshold float64
	ExpansionWeight   float64
	TopSimilarWords   int
	WeightBM25        float64
	WeightSemantic    float64
	WeightAuthority   float64
}

// DefaultParams mirrors config.QueryConfig's defaults.
var DefaultParams = Params{
	BM25:              DefaultBM25Params,
	TopK:              20,
	SemanticThreshold: 0.5,
	ExpansionWeight:   0.5,
	TopSimilarWords:   3,
	WeightBM25:        0.5,
	WeightSemantic:    0.3,
	WeightAuthority:   0.2,
}

// CorpusStats holds the corpus-level statistics BM25 needs, derived from
// the forward index at load time (spec.md §9 open question #3: never
// hardcode N).
type CorpusStats struct {
	N         int
	AvgDocLen float64
	DocLen    map[string]float64
}

// CorpusStatsFromForwardIndex derives CorpusStats from a loaded forward
// index: N is the document count, AvgDocLen its mean TotalTerms, and DocLen
// each document's own TotalTerms, per spec.md §9 open question #3 ("never
// hardcode N").
func CorpusStatsFromForwardIndex(fwd *forwardindex.Index) CorpusStats {
	docLen := make(map[string]float64, len(fwd.Records))
	for _, r := range fwd.Records {
		docLen[r.DocID] = float64(r.TotalTerms)
	}
	return CorpusStats{
		N:         fwd.DocumentCount(),
		AvgDocLen: fwd.AverageDocLength(),
		DocLen:    docLen,
	}
}

// Engine orchestrates a single logical search service. Its dependencies
// (lexicon, barrel index, embeddings, authority store) are built once and
// read-only thereafter, consistent with spec.md §5's shared immutable
// snapshot model.
type Engine struct {
	lexicon      *lexicon.Lexicon
	barrels      *barrel.Index
	embeddings   *embeddings.Store
	autocomplete *autocomplete.Store
	docScores    *docstore.Store
	corpus       CorpusStats
	params       Params
	logger       *slog.Logger
}

// New builds an Engine from its dependencies.
func New(lex *lexicon.Lexicon, barrels *barrel.Index, emb *embeddings.Store, ac *autocomplete.Store, docScores *docstore.Store, corpus CorpusStats, params Params) *Engine {
	return &Engine{
		lexicon:      lex,
		barrels:      barrels,
		embeddings:   emb,
		autocomplete: ac,
		docScores:    docScores,
		corpus:       corpus,
		params:       params,
		logger:       slog.Default().With("component", "query-engine"),
	}
}

// ExpandedTerm records a semantically expanded query term and its weight,
// returned alongside search results for transparency (spec.md §6).
type ExpandedTerm struct {
	Word   string
	Weight float64
}

// Result is a single scored, ranked document.
type Result struct {
	DocID        string
	Score        float64
	TFIDFScore   float64 // always carries the BM25 value (spec.md §9 decision #1)
	SemanticScore float64
	Authority    float64
	MatchedTerms int
}

// SearchResponse is the full output of Search.
type SearchResponse struct {
	Results       []Result
	ExpandedTerms []ExpandedTerm
	ElapsedMs     int64
}

// weightedTerm is a lemma-ID with its scoring weight and whether it
// counts toward the AND-mode matched-terms requirement.
type weightedTerm struct {
	lemmaID    int32
	word       string
	weight     float64
	isOriginal bool
}

// accumulator holds the in-progress per-document score components while a
// query is being scored (spec.md §4.I step 4).
type accumulator struct {
	tfidfSum      float64
	semanticSum   float64
	matchedOriginal int
}

// Run parses q for an explicit AND/OR/NOT grammar, then executes Search
// against the remaining terms and filters out documents containing any
// excluded lemma. mode is used only when Parse finds no explicit operator
// in q; an explicit "OR" or "AND" in the query text overrides it.
func (e *Engine) Run(ctx context.Context, q string, mode Mode, semantic bool) (*SearchResponse, error) {
	plan := Parse(q)
	effectiveMode := mode
	if hasExplicitOperator(q) {
		effectiveMode = plan.Mode
	}

	resp, err := e.Search(ctx, plan.RawQuery, effectiveMode, semantic)
	if err != nil || len(plan.ExcludeWords) == 0 || resp == nil {
		return resp, err
	}

	excludeDocs := e.excludedDocuments(plan.ExcludeWords)
	if len(excludeDocs) == 0 {
		return resp, nil
	}
	filtered := resp.Results[:0]
	for _, r := range resp.Results {
		if _, excluded := excludeDocs[r.DocID]; excluded {
			continue
		}
		filtered = append(filtered, r)
	}
	resp.Results = filtered
	return resp, nil
}

func hasExplicitOperator(q string) bool {
	upper := strings.ToUpper(q)
	for _, op := range []string{" AND ", " OR ", " NOT "} {
		if strings.Contains(upper, op) {
			return true
		}
	}
	return false
}

// dedupeByLemma collapses repeated resolved terms sharing a lemma-ID (e.g.
// the query "covid covid", or two surface words that stem to the same
// lemma) down to their first occurrence, so a repeated word contributes its
// tfidf score and AND-mode match count once rather than once per occurrence.
func dedupeByLemma(resolved []tokenizer.Resolved) []tokenizer.Resolved {
	seen := make(map[int32]struct{}, len(resolved))
	out := make([]tokenizer.Resolved, 0, len(resolved))
	for _, r := range resolved {
		if _, dup := seen[r.LemmaID]; dup {
			continue
		}
		seen[r.LemmaID] = struct{}{}
		out = append(out, r)
	}
	return out
}

// excludedDocuments resolves every exclude word to a lemma and returns the
// union of document-IDs appearing in any of their posting lists.
func (e *Engine) excludedDocuments(words []string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, w := range words {
		lemmaID, ok := e.lexicon.LemmaForWord(w)
		if !ok {
			continue
		}
		block, err := e.barrels.Lookup(lemmaID)
		if err != nil || block == nil {
			continue
		}
		for _, p := range block.Postings {
			out[p.DocID] = struct{}{}
		}
	}
	return out
}

// Search runs the full pipeline of spec.md §4.I for a single query.
func (e *Engine) Search(ctx context.Context, q string, mode Mode, semantic bool) (*SearchResponse, error) {
	start := time.Now()

	ctx, span := tracing.StartSpan(ctx, "query.Search", q)
	span.SetAttr("mode", string(mode))
	span.SetAttr("semantic", semantic)
	defer func() {
		span.End()
		span.Log()
	}()

	_, resolveSpan := tracing.StartChildSpan(ctx, "resolve_terms")
	queryResolver := tokenizer.NewResolver(e.lexicon)
	originalTerms := dedupeByLemma(queryResolver.ResolveQuery(q))
	resolveSpan.End()

	terms := make([]weightedTerm, 0, len(originalTerms)*2)
	seenLemmas := make(map[int32]struct{}, len(originalTerms))
	for _, t := range originalTerms {
		terms = append(terms, weightedTerm{lemmaID: t.LemmaID, word: t.Word, weight: 1.0, isOriginal: true})
		seenLemmas[t.LemmaID] = struct{}{}
	}

	var expanded []ExpandedTerm
	if semantic && e.embeddings.Enabled() {
		_, expandSpan := tracing.StartChildSpan(ctx, "semantic_expansion")
		defer expandSpan.End()
		for _, t := range originalTerms {
			matches, ok := e.embeddings.FindSimilar(t.Word, e.params.TopSimilarWords)
			if !ok {
				continue
			}
			for _, m := range matches {
				if m.Similarity <= e.params.SemanticThreshold {
					continue
				}
				lemmaID, ok := e.lexicon.LemmaForWord(m.Word)
				if !ok {
					continue
				}
				if _, dup := seenLemmas[lemmaID]; dup {
					continue
				}
				seenLemmas[lemmaID] = struct{}{}
				weight := m.Similarity * e.params.ExpansionWeight
				terms = append(terms, weightedTerm{lemmaID: lemmaID, word: m.Word, weight: weight, isOriginal: false})
				expanded = append(expanded, ExpandedTerm{Word: m.Word, Weight: weight})
			}
		}
	}

	if len(terms) == 0 {
		return &SearchResponse{ElapsedMs: time.Since(start).Milliseconds()}, nil
	}

	totalOriginal := len(originalTerms)
	accumulators := make(map[string]*accumulator)

	_, scoreSpan := tracing.StartChildSpan(ctx, "bm25_scoring")
	defer scoreSpan.End()
	for _, term := range terms {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", bcerrors.ErrQueryTimeout, ctx.Err())
		default:
		}

		block, err := e.barrels.Lookup(term.lemmaID)
		if err != nil {
			e.logger.Warn("posting lookup failed, skipping term", "lemma_id", term.lemmaID, "error", err)
			continue
		}
		if block == nil {
			continue
		}

		for _, posting := range block.Postings {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %v", bcerrors.ErrQueryTimeout, ctx.Err())
			default:
			}

			docLen := e.corpus.DocLen[posting.DocID]
			var raw float64
			if docLen > 0 && e.corpus.AvgDocLen > 0 {
				raw = Score(posting.TF, int(block.DF), e.corpus.N, docLen, e.corpus.AvgDocLen, e.params.BM25)
			} else {
				raw = ScoreDegraded(posting.TF, int(block.DF), e.corpus.N)
			}
			weighted := raw * term.weight

			acc, ok := accumulators[posting.DocID]
			if !ok {
				acc = &accumulator{}
				accumulators[posting.DocID] = acc
			}
			if term.isOriginal {
				acc.tfidfSum += weighted
				acc.matchedOriginal++
			} else {
				acc.semanticSum += weighted
			}
		}
	}

	docIDs := make([]string, 0, len(accumulators))
	for docID := range accumulators {
		docIDs = append(docIDs, docID)
	}
	authorities, err := e.docScores.AuthorityBatch(ctx, docIDs)
	if err != nil {
		e.logger.Warn("authority batch lookup failed, using defaults", "error", err)
		authorities = make(map[string]float64, len(docIDs))
		for _, id := range docIDs {
			authorities[id] = docstore.DefaultAuthority
		}
	}

	results := make([]Result, 0, len(accumulators))
	for docID, acc := range accumulators {
		if mode == ModeAND && acc.matchedOriginal < totalOriginal {
			continue
		}
		authority := authorities[docID]
		total := e.params.WeightBM25*acc.tfidfSum + e.params.WeightSemantic*acc.semanticSum + e.params.WeightAuthority*authority
		results = append(results, Result{
			DocID:         docID,
			Score:         total,
			TFIDFScore:    acc.tfidfSum,
			SemanticScore: acc.semanticSum,
			Authority:     authority,
			MatchedTerms:  acc.matchedOriginal,
		})
	}

	sortResults(results)
	if len(results) > e.params.TopK {
		results = results[:e.params.TopK]
	}
	span.SetAttr("results", len(results))
	span.SetAttr("expanded_terms", len(expanded))

	return &SearchResponse{
		Results:       results,
		ExpandedTerms: expanded,
		ElapsedMs:     time.Since(start).Milliseconds(),
	}, nil
}

// sortResults orders by score desc, then matched-terms desc, then
// document-ID asc (spec.md §4.I step 7), giving deterministic,
// idempotent output for repeated identical queries (P3).
func sortResults(results []Result) {
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		if results[i].MatchedTerms != results[j].MatchedTerms {
			return results[i].MatchedTerms > results[j].MatchedTerms
		}
		return results[i].DocID < results[j].DocID
	})
}

// Autocomplete serves prefix completions (spec component H via spec
// component I's public operation).
func (e *Engine) Autocomplete(prefix string, maxItems int) []autocomplete.Entry {
	return e.autocomplete.Suggest(prefix, maxItems)
}

// Similar returns the top-K words most similar to word by embedding cosine
// similarity, with no threshold filter applied (the threshold is only
// enforced during query expansion, not this debug/explore operation).
func (e *Engine) Similar(word string, k int) ([]embeddings.Match, bool) {
	return e.embeddings.FindSimilar(word, k)
}
