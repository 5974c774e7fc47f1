// Package publisher records upload idempotency keys in PostgreSQL and
// publishes accepted documents to Kafka for the ingestion consumer to feed
// into the Incremental Indexer. It has no shard-assignment step: this
// engine's partitioning unit is the barrel (internal/barrel), not a
// document shard, so every accepted document queues onto the same topic.
package publisher

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/scisearch/engine/internal/docid"
	"github.com/scisearch/engine/internal/ingestion"
	apperrors "github.com/scisearch/engine/pkg/errors"
	"github.com/scisearch/engine/pkg/kafka"
	"github.com/scisearch/engine/pkg/postgres"
)

// Publisher coordinates idempotency bookkeeping and Kafka event production.
type Publisher struct {
	db       *postgres.Client
	producer *kafka.Producer
	logger   *slog.Logger
}

// New creates a Publisher with the given database and Kafka producer.
func New(db *postgres.Client, producer *kafka.Producer) *Publisher {
	return &Publisher{
		db:       db,
		producer: producer,
		logger:   slog.Default().With("component", "ingestion-publisher"),
	}
}

// EnsureSchema creates the idempotency-tracking table if absent.
func (p *Publisher) EnsureSchema(ctx context.Context) error {
	_, err := p.db.DB.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS upload_idempotency (
		idempotency_key TEXT PRIMARY KEY,
		doc_id TEXT NOT NULL,
		content_hash TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`)
	if err != nil {
		return fmt.Errorf("ingestion: creating idempotency schema: %w", err)
	}
	return nil
}

// Upload records the idempotency key (if any), assigns a document-ID when
// the caller did not supply one, and publishes an IngestEvent to Kafka for
// the ingestion consumer to hand to the Incremental Indexer. A repeated
// idempotency key returns the previously assigned doc-ID with Duplicate set,
// without publishing a second event (spec.md §7's idempotent upload).
func (p *Publisher) Upload(ctx context.Context, req *ingestion.UploadRequest) (*ingestion.UploadResponse, error) {
	contentHash := fmt.Sprintf("%x", sha256.Sum256([]byte(req.Body)))

	if req.IdempotencyKey != "" {
		existing, err := p.findByIdempotencyKey(ctx, req.IdempotencyKey)
		if err != nil {
			return nil, fmt.Errorf("ingestion: checking idempotency key: %w", err)
		}
		if existing != "" {
			p.logger.Info("duplicate upload detected", "idempotency_key", req.IdempotencyKey, "doc_id", existing)
			return &ingestion.UploadResponse{DocID: existing, Status: "queued", Duplicate: true}, nil
		}
	}

	docID := req.DocID
	if docID == "" {
		// The caller needs a doc-ID back immediately, and the Incremental
		// Indexer keeps whatever ID the event carries, so derive a stable
		// ID from the content hash here. Re-uploading identical content
		// without an idempotency key yields the same doc-ID.
		docID = "d" + contentHash[:docid.MaxLen-1]
	}
	if req.IdempotencyKey != "" {
		if err := p.recordIdempotencyKey(ctx, req.IdempotencyKey, docID, contentHash); err != nil {
			return nil, err
		}
	}

	event := kafka.Event{
		Key: req.IdempotencyKey,
		Value: ingestion.IngestEvent{
			DocID:          docID,
			Title:          req.Title,
			Abstract:       req.Abstract,
			Body:           req.Body,
			IdempotencyKey: req.IdempotencyKey,
			QueuedAt:       time.Now().UTC(),
		},
	}
	if err := p.producer.Publish(ctx, event); err != nil {
		p.logger.Error("failed to publish ingest event", "doc_id", docID, "error", err)
		return nil, fmt.Errorf("%w: publishing ingest event: %v", apperrors.ErrInternal, err)
	}

	return &ingestion.UploadResponse{DocID: docID, Status: "queued"}, nil
}

func (p *Publisher) findByIdempotencyKey(ctx context.Context, key string) (string, error) {
	var docID string
	err := p.db.DB.QueryRowContext(ctx,
		`SELECT doc_id FROM upload_idempotency WHERE idempotency_key = $1`, key,
	).Scan(&docID)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return docID, nil
}

func (p *Publisher) recordIdempotencyKey(ctx context.Context, key, docID, contentHash string) error {
	_, err := p.db.DB.ExecContext(ctx,
		`INSERT INTO upload_idempotency (idempotency_key, doc_id, content_hash) VALUES ($1, $2, $3)
		 ON CONFLICT (idempotency_key) DO NOTHING`,
		key, docID, contentHash,
	)
	if err != nil {
		return fmt.Errorf("%w: recording idempotency key: %v", apperrors.ErrIdempotencyConflict, err)
	}
	return nil
}
