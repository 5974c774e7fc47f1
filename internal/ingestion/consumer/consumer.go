// Package consumer reads queued ingest events from Kafka and hands each one
// to the Incremental Indexer, making it searchable (spec.md §4.J).
package consumer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/scisearch/engine/internal/analytics"
	"github.com/scisearch/engine/internal/incremental"
	"github.com/scisearch/engine/internal/ingestion"
	"github.com/scisearch/engine/pkg/kafka"
)

// HandleMessage returns a kafka.MessageHandler that decodes each message as
// an IngestEvent and indexes it. A decode failure is logged and the message
// is dropped rather than retried forever; an indexing failure is returned
// so the caller's consumer loop skips committing the offset and retries.
//
// track, when non-nil, receives one IndexEvent per successfully indexed
// document, letting the caller fold indexing telemetry into its own
// analytics pipeline (batched, since this consumer runs in bursts).
func HandleMessage(indexer *incremental.Indexer, track func(analytics.IndexEvent)) kafka.MessageHandler {
	logger := slog.Default().With("component", "ingestion-consumer")
	return func(ctx context.Context, key []byte, value []byte) error {
		event, err := kafka.DecodeJSON[ingestion.IngestEvent](value)
		if err != nil {
			logger.Error("failed to decode ingest event", "error", err, "key", string(key))
			return nil
		}

		logger.Debug("processing ingest event", "doc_id", event.DocID)

		result, err := indexer.AddDocument(ctx, incremental.Payload{
			DocID:    event.DocID,
			Title:    event.Title,
			Abstract: event.Abstract,
			Body:     event.Body,
		})
		if err != nil {
			return fmt.Errorf("indexing document %s: %w", event.DocID, err)
		}

		logger.Info("document indexed",
			"doc_id", result.DocID,
			"elapsed_ms", result.ElapsedMs,
			"total_terms", result.TotalTerms,
			"new_lexicon_entries", result.NewLexiconEntries,
		)

		if track != nil {
			track(analytics.IndexEvent{
				Type:              analytics.EventIndexDoc,
				DocID:             result.DocID,
				TotalTerms:        result.TotalTerms,
				UniqueTerms:       result.UniqueTerms,
				NewLexiconEntries: result.NewLexiconEntries,
				LatencyMs:         result.ElapsedMs,
				Timestamp:         time.Now().UTC(),
			})
		}
		return nil
	}
}
