// Package metrics defines the Prometheus metric collectors used across the
// search engine's services and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for the search engine.
type Metrics struct {
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	SearchQueriesTotal  *prometheus.CounterVec
	SearchLatency       *prometheus.HistogramVec
	SearchResultsCount  prometheus.Histogram
	BM25ScoreDuration   prometheus.Histogram
	QueryCacheHits      prometheus.Counter
	QueryCacheMisses    prometheus.Counter

	BarrelLookupsTotal     *prometheus.CounterVec
	CodecDecodeErrorsTotal *prometheus.CounterVec
	BarrelBytesRead        prometheus.Counter

	EmbeddingsSimilarityDuration prometheus.Histogram
	SemanticExpansionsTotal      prometheus.Counter

	AutocompleteLatency prometheus.Histogram
	AutocompleteMisses  prometheus.Counter

	IncrementalInsertsTotal    *prometheus.CounterVec
	IncrementalInsertDuration  prometheus.Histogram
	IncrementalVisibilityLag   prometheus.Histogram

	LexiconSize    prometheus.Gauge
	ForwardDocs    prometheus.Gauge
	PostingCount   *prometheus.GaugeVec

	CircuitBreakerState *prometheus.GaugeVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed.",
			},
		),
		SearchQueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "search_queries_total",
				Help: "Total search queries by outcome (hit, zero_result, timeout, error).",
			},
			[]string{"outcome", "mode"},
		),
		SearchLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "search_latency_seconds",
				Help:    "End-to-end query latency in seconds, from parse to top-K.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2},
			},
			[]string{"cache_status"},
		),
		SearchResultsCount: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "search_results_count",
				Help:    "Number of results returned per search query.",
				Buckets: []float64{0, 1, 5, 10, 20, 50},
			},
		),
		BM25ScoreDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "bm25_score_seconds",
				Help:    "Time spent scoring a single term's posting list with BM25.",
				Buckets: prometheus.ExponentialBuckets(0.00001, 4, 8),
			},
		),
		QueryCacheHits: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "query_cache_hits_total",
				Help: "Total query result cache hits.",
			},
		),
		QueryCacheMisses: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "query_cache_misses_total",
				Help: "Total query result cache misses.",
			},
		),
		BarrelLookupsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "barrel_lookups_total",
				Help: "Total barrel postings lookups by tier (hot, warm, cold, delta).",
			},
			[]string{"tier"},
		),
		CodecDecodeErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "codec_decode_errors_total",
				Help: "Total barrel block decode failures by barrel file.",
			},
			[]string{"barrel"},
		),
		BarrelBytesRead: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "barrel_bytes_read_total",
				Help: "Total bytes read from barrel .bin files.",
			},
		),
		EmbeddingsSimilarityDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "embeddings_similarity_seconds",
				Help:    "Time spent computing top-K cosine similarity for semantic expansion.",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
			},
		),
		SemanticExpansionsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "semantic_expansions_total",
				Help: "Total query terms expanded via embeddings similarity.",
			},
		),
		AutocompleteLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "autocomplete_latency_seconds",
				Help:    "Autocomplete suggestion lookup latency in seconds.",
				Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005},
			},
		),
		AutocompleteMisses: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "autocomplete_misses_total",
				Help: "Total autocomplete lookups with no bucket match.",
			},
		),
		IncrementalInsertsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "incremental_inserts_total",
				Help: "Total incremental document inserts by outcome (success, collision, error).",
			},
			[]string{"outcome"},
		),
		IncrementalInsertDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "incremental_insert_duration_seconds",
				Help:    "Time to make a newly added document queryable.",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 30, 60},
			},
		),
		IncrementalVisibilityLag: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "incremental_visibility_lag_seconds",
				Help:    "Lag between AddDocument call and the document becoming queryable.",
				Buckets: []float64{0.01, 0.1, 1, 5, 10, 30, 60},
			},
		),
		LexiconSize: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "lexicon_size",
				Help: "Number of distinct lemmas in the lexicon.",
			},
		),
		ForwardDocs: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "forward_index_documents",
				Help: "Number of documents present in the forward index.",
			},
		),
		PostingCount: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "barrel_postings_count",
				Help: "Number of postings per barrel.",
			},
			[]string{"barrel_id"},
		),
		CircuitBreakerState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "circuit_breaker_state",
				Help: "Circuit breaker state (0=closed, 1=open, 2=half-open).",
			},
			[]string{"name"},
		),
	}

	prometheus.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.SearchQueriesTotal,
		m.SearchLatency,
		m.SearchResultsCount,
		m.BM25ScoreDuration,
		m.QueryCacheHits,
		m.QueryCacheMisses,
		m.BarrelLookupsTotal,
		m.CodecDecodeErrorsTotal,
		m.BarrelBytesRead,
		m.EmbeddingsSimilarityDuration,
		m.SemanticExpansionsTotal,
		m.AutocompleteLatency,
		m.AutocompleteMisses,
		m.IncrementalInsertsTotal,
		m.IncrementalInsertDuration,
		m.IncrementalVisibilityLag,
		m.LexiconSize,
		m.ForwardDocs,
		m.PostingCount,
		m.CircuitBreakerState,
	)

	return m
}

// Handler returns the Prometheus scrape HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
