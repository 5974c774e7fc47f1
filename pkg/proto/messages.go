// Package proto defines the shared message types exchanged over the search
// engine's internal RPC layer (see pkg/grpc), which carries JSON payloads
// over TCP rather than Protocol Buffers. The type names and method shapes
// mirror what a generated gRPC client/server pair would look like, which
// keeps the call sites unsurprising to anyone used to working against one.
package proto

// ---------- Common ----------

// DocumentRef identifies a document by its 20-byte document identifier.
type DocumentRef struct {
	DocID string `json:"doc_id"`
	Title string `json:"title,omitempty"`
}

// HealthCheckResponse mirrors the gRPC health check spec.
type HealthCheckResponse struct {
	Status string `json:"status"` // SERVING, NOT_SERVING, UNKNOWN
}

// ---------- Search ----------

// SearchRequest is the input to the Search RPC.
type SearchRequest struct {
	Query string `json:"query"`
	Mode  string `json:"mode"` // "and" or "or"
	TopK  int32  `json:"top_k,omitempty"`
}

// SearchResponse is the output of the Search RPC.
type SearchResponse struct {
	Query       string         `json:"query"`
	Mode        string         `json:"mode"`
	TotalHits   int32          `json:"total_hits"`
	Results     []SearchResult `json:"results"`
	LatencyMs   int64          `json:"latency_ms"`
	FromCache   bool           `json:"from_cache"`
	ExpandedOn  []string       `json:"expanded_terms,omitempty"`
}

// SearchResult is a single scored document in the result set.
type SearchResult struct {
	DocID         string  `json:"doc_id"`
	Title         string  `json:"title"`
	Score         float64 `json:"score"`
	TFIDFScore    float64 `json:"tfidf_score"`
	SemanticScore float64 `json:"semantic_score"`
	Authority     float64 `json:"authority_score"`
	MatchedTerms  int32   `json:"matched_terms"`
}

// AutocompleteRequest is the input to the Autocomplete RPC.
type AutocompleteRequest struct {
	Prefix   string `json:"prefix"`
	MaxItems int32  `json:"max_items,omitempty"`
}

// AutocompleteResponse is the output of the Autocomplete RPC.
type AutocompleteResponse struct {
	Prefix      string   `json:"prefix"`
	Suggestions []string `json:"suggestions"`
}

// SimilarRequest is the input to the SimilarWords RPC, used by the semantic
// expansion stage of the query engine and exposed directly for debugging.
type SimilarRequest struct {
	Word  string `json:"word"`
	TopK  int32  `json:"top_k,omitempty"`
}

// SimilarResponse is the output of the SimilarWords RPC.
type SimilarResponse struct {
	Word    string          `json:"word"`
	Matches []SimilarMatch  `json:"matches"`
}

// SimilarMatch is a single word/similarity pair.
type SimilarMatch struct {
	Word       string  `json:"word"`
	Similarity float64 `json:"similarity"`
}

// ---------- Ingestion ----------

// UploadRequest is the input to the AddDocument RPC.
type UploadRequest struct {
	DocID          string `json:"doc_id"`
	Title          string `json:"title"`
	Abstract       string `json:"abstract"`
	Body           string `json:"body"`
	IdempotencyKey string `json:"idempotency_key,omitempty"`
}

// UploadResponse is the output of the AddDocument RPC.
type UploadResponse struct {
	DocID     string `json:"doc_id"`
	Accepted  bool   `json:"accepted"`
	Duplicate bool   `json:"duplicate"`
	Message   string `json:"message,omitempty"`
}

// StatsRequest requests index-level statistics.
type StatsRequest struct{}

// StatsResponse contains index-level statistics.
type StatsResponse struct {
	TotalDocuments int64            `json:"total_documents"`
	LexiconSize    int64            `json:"lexicon_size"`
	BarrelCounts   map[string]int64 `json:"barrel_counts"`
	DeltaDocuments int64            `json:"delta_documents"`
}
