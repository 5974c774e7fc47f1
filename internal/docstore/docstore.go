// Package docstore persists document authority scores and descriptive
// metadata in PostgreSQL. It supplements spec.md's flat-file
// embeddings/doc_scores.json and document_metadata.json (produced offline
// by original_source/backend/py/embeddings_setup.py's compute_document_scores)
// with a store the incremental indexer can update per-document without
// rewriting a JSON blob.
package docstore

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/lib/pq"

	"github.com/scisearch/engine/pkg/postgres"
)

// DefaultAuthority is the prior used for documents with no recorded score
// (spec.md §3).
const DefaultAuthority = 0.5

// Metadata holds the dataset-specific fields spec.md §1 marks out of core
// scope but the original pipeline still tracks per document.
type Metadata struct {
	DocID    string
	Title    string
	Authors  []string
	Abstract string
}

// Store reads and writes document authority scores and metadata against
// PostgreSQL.
type Store struct {
	db     *postgres.Client
	logger *slog.Logger
}

// New wraps an existing Postgres client.
func New(db *postgres.Client) *Store {
	return &Store{db: db, logger: slog.Default().With("component", "docstore")}
}

// EnsureSchema creates the document_scores and document_metadata tables if
// they do not already exist. Called once at service startup.
func (s *Store) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS document_scores (
			doc_id TEXT PRIMARY KEY,
			authority DOUBLE PRECISION NOT NULL DEFAULT 0.5
		)`,
		`CREATE TABLE IF NOT EXISTS document_metadata (
			doc_id TEXT PRIMARY KEY,
			title TEXT NOT NULL DEFAULT '',
			authors TEXT[] NOT NULL DEFAULT '{}',
			abstract TEXT NOT NULL DEFAULT ''
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("docstore: creating schema: %w", err)
		}
	}
	return nil
}

// Authority returns the authority score for docID, defaulting to
// DefaultAuthority when no row exists.
func (s *Store) Authority(ctx context.Context, docID string) (float64, error) {
	var score float64
	err := s.db.DB.QueryRowContext(ctx,
		`SELECT authority FROM document_scores WHERE doc_id = $1`, docID,
	).Scan(&score)
	if err == sql.ErrNoRows {
		return DefaultAuthority, nil
	}
	if err != nil {
		return DefaultAuthority, fmt.Errorf("docstore: querying authority for %s: %w", docID, err)
	}
	return score, nil
}

// AuthorityBatch returns authority scores for multiple document-IDs in one
// round trip, used by the query engine's per-document score accumulation
// so it does not issue one query per matched document.
func (s *Store) AuthorityBatch(ctx context.Context, docIDs []string) (map[string]float64, error) {
	result := make(map[string]float64, len(docIDs))
	for _, id := range docIDs {
		result[id] = DefaultAuthority
	}
	if len(docIDs) == 0 {
		return result, nil
	}

	rows, err := s.db.DB.QueryContext(ctx,
		`SELECT doc_id, authority FROM document_scores WHERE doc_id = ANY($1)`,
		pq.Array(docIDs),
	)
	if err != nil {
		return nil, fmt.Errorf("docstore: querying authority batch: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var score float64
		if err := rows.Scan(&id, &score); err != nil {
			return nil, fmt.Errorf("docstore: scanning authority row: %w", err)
		}
		result[id] = score
	}
	return result, rows.Err()
}

// SetAuthority upserts the authority score for docID, used by the offline
// pipeline's PageRank-style computation and by any incremental re-scoring.
func (s *Store) SetAuthority(ctx context.Context, docID string, score float64) error {
	_, err := s.db.DB.ExecContext(ctx,
		`INSERT INTO document_scores (doc_id, authority) VALUES ($1, $2)
		 ON CONFLICT (doc_id) DO UPDATE SET authority = EXCLUDED.authority`,
		docID, score,
	)
	if err != nil {
		return fmt.Errorf("docstore: setting authority for %s: %w", docID, err)
	}
	return nil
}

// SaveMetadata upserts a document's descriptive metadata.
func (s *Store) SaveMetadata(ctx context.Context, m Metadata) error {
	_, err := s.db.DB.ExecContext(ctx,
		`INSERT INTO document_metadata (doc_id, title, authors, abstract) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (doc_id) DO UPDATE SET title = EXCLUDED.title, authors = EXCLUDED.authors, abstract = EXCLUDED.abstract`,
		m.DocID, m.Title, pq.Array(m.Authors), m.Abstract,
	)
	if err != nil {
		return fmt.Errorf("docstore: saving metadata for %s: %w", m.DocID, err)
	}
	return nil
}

// Metadata returns a document's descriptive metadata, if present.
func (s *Store) Metadata(ctx context.Context, docID string) (*Metadata, error) {
	var m Metadata
	m.DocID = docID
	var authors []string
	err := s.db.DB.QueryRowContext(ctx,
		`SELECT title, authors, abstract FROM document_metadata WHERE doc_id = $1`, docID,
	).Scan(&m.Title, pq.Array(&authors), &m.Abstract)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("docstore: querying metadata for %s: %w", docID, err)
	}
	m.Authors = authors
	return &m, nil
}
