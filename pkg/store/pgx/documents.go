// Package pgx persists source documents and knowledge traces in PostgreSQL.
// The graph itself lives in Neo4j; Postgres holds the durable provenance
// side: what was ingested, from where, and which spans produced which
// knowledge.
package pgx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	pgxv5 "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/graphein/backend/pkg/model"
)

type pgxIConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, optionsAndArgs ...any) (pgxv5.Rows, error)
	QueryRow(ctx context.Context, sql string, optionsAndArgs ...any) pgxv5.Row
	SendBatch(ctx context.Context, b *pgxv5.Batch) pgxv5.BatchResults
}

// Storage implements store.DocumentStore and store.TraceStore on a pgx
// connection or pool.
type Storage struct {
	conn pgxIConn
}

func NewStorage(conn pgxIConn) *Storage {
	return &Storage{conn: conn}
}

const listLimitCap = 100

func (s *Storage) SaveDocument(ctx context.Context, doc *model.SourceDocument) error {
	if doc == nil {
		return fmt.Errorf("pgx: document required")
	}
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	now := time.Now().UTC()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now

	metadata, err := json.Marshal(doc.Metadata)
	if err != nil {
		return fmt.Errorf("pgx: marshal document metadata: %w", err)
	}

	_, err = s.conn.Exec(ctx, `
		INSERT INTO source_documents
			(id, title, type, content_hash, file_path, url, archived_path, metadata, accessed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			file_path = EXCLUDED.file_path,
			archived_path = EXCLUDED.archived_path,
			metadata = EXCLUDED.metadata,
			accessed_at = EXCLUDED.accessed_at,
			updated_at = EXCLUDED.updated_at`,
		doc.ID, doc.Title, doc.Type, doc.ContentHash, doc.FilePath, doc.URL,
		doc.ArchivedPath, metadata, doc.AccessedAt, doc.CreatedAt, doc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("pgx: save document: %w", err)
	}
	return nil
}

func (s *Storage) GetDocument(ctx context.Context, id uuid.UUID) (*model.SourceDocument, error) {
	row := s.conn.QueryRow(ctx, `
		SELECT id, title, type, content_hash, file_path, url, archived_path, metadata, accessed_at, created_at, updated_at
		FROM source_documents WHERE id = $1`, id)
	return scanDocument(row)
}

// FindDocumentByHash looks up a document by its content hash. Used for
// duplicate detection before re-ingesting identical content.
func (s *Storage) FindDocumentByHash(ctx context.Context, contentHash string) (*model.SourceDocument, error) {
	row := s.conn.QueryRow(ctx, `
		SELECT id, title, type, content_hash, file_path, url, archived_path, metadata, accessed_at, created_at, updated_at
		FROM source_documents WHERE content_hash = $1
		ORDER BY created_at LIMIT 1`, contentHash)
	return scanDocument(row)
}

func (s *Storage) ListDocuments(ctx context.Context, limit int) ([]model.SourceDocument, error) {
	if limit <= 0 || limit > listLimitCap {
		limit = listLimitCap
	}
	rows, err := s.conn.Query(ctx, `
		SELECT id, title, type, content_hash, file_path, url, archived_path, metadata, accessed_at, created_at, updated_at
		FROM source_documents ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("pgx: list documents: %w", err)
	}
	defer rows.Close()

	var docs []model.SourceDocument
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgx: list documents: %w", err)
	}
	return docs, nil
}

func scanDocument(row pgxv5.Row) (*model.SourceDocument, error) {
	var doc model.SourceDocument
	var metadata []byte
	err := row.Scan(&doc.ID, &doc.Title, &doc.Type, &doc.ContentHash, &doc.FilePath,
		&doc.URL, &doc.ArchivedPath, &metadata, &doc.AccessedAt, &doc.CreatedAt, &doc.UpdatedAt)
	if errors.Is(err, pgxv5.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("pgx: scan document: %w", err)
	}
	if len(metadata) > 0 {
		_ = json.Unmarshal(metadata, &doc.Metadata)
	}
	return &doc, nil
}
