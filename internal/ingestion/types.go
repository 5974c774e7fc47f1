// Package ingestion defines the request/response types and Kafka event
// schema for the document upload pipeline (spec.md §7's supplemented
// idempotent upload feature, feeding the Incremental Indexer, component J).
package ingestion

import "time"

// UploadRequest is the JSON body accepted by the gateway's upload endpoint.
// DocID is optional; for an empty value the publisher derives one from the
// body's content hash.
type UploadRequest struct {
	DocID          string `json:"doc_id,omitempty"`
	Title          string `json:"title"`
	Abstract       string `json:"abstract"`
	Body           string `json:"body"`
	IdempotencyKey string `json:"idempotency_key,omitempty"`
}

// UploadResponse is returned to the caller after a document is accepted.
type UploadResponse struct {
	DocID     string `json:"doc_id"`
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

// IngestEvent is the Kafka message payload produced after a document is
// persisted and queued for incremental indexing.
type IngestEvent struct {
	DocID          string    `json:"doc_id"`
	Title          string    `json:"title"`
	Abstract       string    `json:"abstract"`
	Body           string    `json:"body"`
	IdempotencyKey string    `json:"idempotency_key,omitempty"`
	QueuedAt       time.Time `json:"queued_at"`
}
