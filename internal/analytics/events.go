// Package analytics defines query and indexing telemetry events and the
// collector/aggregator pipeline that turns them into dashboards (spec.md
// §7's supplemented query analytics feature).
package analytics

import "time"

// EventType discriminates the two event schemas published to the analytics
// topic.
type EventType string

const (
	EventSearch     EventType = "search"
	EventCacheHit   EventType = "cache_hit"
	EventCacheMiss  EventType = "cache_miss"
	EventZeroResult EventType = "zero_result"
	EventIndexDoc   EventType = "index_document"
)

// SearchEvent records one query's execution for analytics aggregation.
type SearchEvent struct {
	Type          EventType `json:"type"`
	Query         string    `json:"query"`
	Mode          string    `json:"mode"`
	Semantic      bool      `json:"semantic"`
	TotalHits     int       `json:"total_hits"`
	ExpandedTerms int       `json:"expanded_terms"`
	LatencyMs     int64     `json:"latency_ms"`
	CacheHit      bool      `json:"cache_hit"`
	Timestamp     time.Time `json:"timestamp"`
	RequestID     string    `json:"request_id"`
}

// IndexEvent records one document's incremental indexing outcome.
type IndexEvent struct {
	Type              EventType `json:"type"`
	DocID             string    `json:"doc_id"`
	TotalTerms        int       `json:"total_terms"`
	UniqueTerms       int       `json:"unique_terms"`
	NewLexiconEntries int       `json:"new_lexicon_entries"`
	LatencyMs         int64     `json:"latency_ms"`
	Timestamp         time.Time `json:"timestamp"`
}
