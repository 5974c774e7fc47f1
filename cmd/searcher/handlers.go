package main

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/scisearch/engine/internal/analytics"
	"github.com/scisearch/engine/internal/query"
	apperrors "github.com/scisearch/engine/pkg/errors"
	"github.com/scisearch/engine/pkg/logger"
	"github.com/scisearch/engine/pkg/metrics"
	"github.com/scisearch/engine/pkg/middleware"
	"github.com/scisearch/engine/pkg/proto"
)

// httpHandler serves the HTTP facade over the query engine: search,
// autocomplete, similarity, and cache introspection.
type httpHandler struct {
	engine    *query.Engine
	cache     *query.Cache
	collector *analytics.Collector
	metrics   *metrics.Metrics
}

// newHTTPHandler wires the query engine, query cache, analytics collector,
// and Prometheus metrics registry into a set of HTTP handlers.
func newHTTPHandler(engine *query.Engine, cache *query.Cache, collector *analytics.Collector, m *metrics.Metrics) *httpHandler {
	return &httpHandler{engine: engine, cache: cache, collector: collector, metrics: m}
}

// Search serves GET /api/v1/search?q=...&mode=... Semantic expansion is
// always on: a semantic parameter is parsed but has no effect, since
// executeSearch runs every query with semantic set to true.
func (h *httpHandler) Search(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	q := r.URL.Query().Get("q")
	if q == "" {
		h.writeError(w, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}
	mode := query.ModeOR
	if r.URL.Query().Get("mode") == "and" {
		mode = query.ModeAND
	}
	semantic := r.URL.Query().Get("semantic") != "false"

	req := proto.SearchRequest{Query: q, Mode: string(mode)}
	resp, err := executeSearch(ctx, h.engine, h.cache, h.collector, req)
	if err != nil {
		log.Error("search failed", "query", q, "error", err)
		h.writeError(w, apperrors.HTTPStatusCode(err), "search failed")
		return
	}
	_ = semantic
	h.writeJSON(w, http.StatusOK, resp)
}

// Autocomplete serves GET /api/v1/autocomplete?prefix=...&max_items=...
func (h *httpHandler) Autocomplete(w http.ResponseWriter, r *http.Request) {
	prefix := r.URL.Query().Get("prefix")
	if prefix == "" {
		h.writeError(w, http.StatusBadRequest, "query parameter 'prefix' is required")
		return
	}
	maxItems := int32(10)
	if raw := r.URL.Query().Get("max_items"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			maxItems = int32(parsed)
		}
	}
	resp := autocompleteResponse(h.engine, proto.AutocompleteRequest{Prefix: prefix, MaxItems: maxItems})
	h.writeJSON(w, http.StatusOK, resp)
}

// Similar serves GET /api/v1/similar?word=...&top_k=...
func (h *httpHandler) Similar(w http.ResponseWriter, r *http.Request) {
	word := r.URL.Query().Get("word")
	if word == "" {
		h.writeError(w, http.StatusBadRequest, "query parameter 'word' is required")
		return
	}
	topK := int32(10)
	if raw := r.URL.Query().Get("top_k"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			topK = int32(parsed)
		}
	}
	resp := similarResponse(h.engine, proto.SimilarRequest{Word: word, TopK: topK})
	h.writeJSON(w, http.StatusOK, resp)
}

// CacheStats serves GET /api/v1/cache/stats
func (h *httpHandler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}
	hits, misses := h.cache.Stats()
	h.writeJSON(w, http.StatusOK, map[string]int64{"hits": hits, "misses": misses})
}

// CacheInvalidate serves POST /api/v1/cache/invalidate
func (h *httpHandler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeError(w, http.StatusServiceUnavailable, "caching is disabled")
		return
	}
	if err := h.cache.Invalidate(r.Context()); err != nil {
		h.writeError(w, http.StatusInternalServerError, "cache invalidation failed")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "invalidated"})
}

func (h *httpHandler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (h *httpHandler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}

// executeSearch runs a search through the query cache (when enabled),
// converts the result to the wire format, and tracks a SearchEvent for
// analytics. Shared by the HTTP facade and the internal RPC layer so both
// surfaces cache, score, and log identically.
func executeSearch(ctx context.Context, engine *query.Engine, cache *query.Cache, collector *analytics.Collector, req proto.SearchRequest) (*proto.SearchResponse, error) {
	start := time.Now()
	mode := query.ModeOR
	if req.Mode == "and" {
		mode = query.ModeAND
	}
	const semantic = true

	var resp *query.SearchResponse
	var err error
	fromCache := false
	if cache != nil {
		resp, fromCache, err = cache.GetOrCompute(ctx, req.Query, mode, semantic, func() (*query.SearchResponse, error) {
			return engine.Run(ctx, req.Query, mode, semantic)
		})
	} else {
		resp, err = engine.Run(ctx, req.Query, mode, semantic)
	}
	if err != nil {
		return nil, err
	}

	latencyMs := time.Since(start).Milliseconds()
	if collector != nil {
		eventType := analytics.EventCacheMiss
		if fromCache {
			eventType = analytics.EventCacheHit
		}
		if len(resp.Results) == 0 {
			eventType = analytics.EventZeroResult
		}
		collector.Track(analytics.SearchEvent{
			Type:          eventType,
			Query:         req.Query,
			Mode:          string(mode),
			Semantic:      semantic,
			TotalHits:     len(resp.Results),
			ExpandedTerms: len(resp.ExpandedTerms),
			LatencyMs:     latencyMs,
			CacheHit:      fromCache,
			Timestamp:     time.Now().UTC(),
			RequestID:     middleware.GetRequestID(ctx),
		})
	}

	out := &proto.SearchResponse{
		Query:     req.Query,
		Mode:      string(mode),
		TotalHits: int32(len(resp.Results)),
		Results:   make([]proto.SearchResult, 0, len(resp.Results)),
		LatencyMs: latencyMs,
		FromCache: fromCache,
	}
	for _, t := range resp.ExpandedTerms {
		out.ExpandedOn = append(out.ExpandedOn, t.Word)
	}
	for _, r := range resp.Results {
		out.Results = append(out.Results, proto.SearchResult{
			DocID:         r.DocID,
			Score:         r.Score,
			TFIDFScore:    r.TFIDFScore,
			SemanticScore: r.SemanticScore,
			Authority:     r.Authority,
			MatchedTerms:  int32(r.MatchedTerms),
		})
	}
	return out, nil
}

// autocompleteResponse converts an AutocompleteRequest into a wire response,
// shared by the HTTP facade and the internal RPC layer.
func autocompleteResponse(engine *query.Engine, req proto.AutocompleteRequest) *proto.AutocompleteResponse {
	maxItems := int(req.MaxItems)
	if maxItems <= 0 {
		maxItems = 10
	}
	entries := engine.Autocomplete(req.Prefix, maxItems)
	suggestions := make([]string, 0, len(entries))
	for _, e := range entries {
		suggestions = append(suggestions, e.Phrase)
	}
	return &proto.AutocompleteResponse{Prefix: req.Prefix, Suggestions: suggestions}
}

// similarResponse converts a SimilarRequest into a wire response, shared by
// the HTTP facade and the internal RPC layer.
func similarResponse(engine *query.Engine, req proto.SimilarRequest) *proto.SimilarResponse {
	topK := int(req.TopK)
	if topK <= 0 {
		topK = 10
	}
	matches, _ := engine.Similar(req.Word, topK)
	out := &proto.SimilarResponse{Word: req.Word, Matches: make([]proto.SimilarMatch, 0, len(matches))}
	for _, m := range matches {
		out.Matches = append(out.Matches, proto.SimilarMatch{Word: m.Word, Similarity: m.Similarity})
	}
	return out
}
