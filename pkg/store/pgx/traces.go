package pgx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	pgxv5 "github.com/jackc/pgx/v5"

	"github.com/graphein/backend/pkg/model"
	"github.com/graphein/backend/pkg/store"
)

const traceBatchSize = 500

// SaveTraces inserts a batch of knowledge traces. Traces failing the
// exclusivity rule (exactly one of entity/relationship) are rejected before
// anything is written.
func (s *Storage) SaveTraces(ctx context.Context, traces []model.KnowledgeTrace) error {
	if len(traces) == 0 {
		return nil
	}
	for i, trace := range traces {
		if !trace.Valid() {
			return fmt.Errorf("pgx: trace %d must reference exactly one of entity or relationship", i)
		}
	}

	return store.ChunkRange(len(traces), traceBatchSize, func(start, end int) error {
		return s.saveTraceBatch(ctx, traces[start:end])
	})
}

func (s *Storage) saveTraceBatch(ctx context.Context, traces []model.KnowledgeTrace) error {
	batch := &pgxv5.Batch{}
	for _, trace := range traces {
		if trace.ID == uuid.Nil {
			trace.ID = uuid.New()
		}
		now := time.Now().UTC()
		if trace.CreatedAt.IsZero() {
			trace.CreatedAt = now
		}
		if trace.UpdatedAt.IsZero() {
			trace.UpdatedAt = now
		}

		location, err := json.Marshal(trace.LocationData)
		if err != nil {
			return fmt.Errorf("pgx: marshal trace location: %w", err)
		}
		contextRange, err := json.Marshal(trace.ContextRange)
		if err != nil {
			return fmt.Errorf("pgx: marshal trace context range: %w", err)
		}
		anchor, err := json.Marshal(trace.AnchorData)
		if err != nil {
			return fmt.Errorf("pgx: marshal trace anchor: %w", err)
		}

		batch.Queue(`
			INSERT INTO knowledge_traces
				(id, entity_id, relationship_id, document_id, location_data, context_range, excerpt, anchor_type, anchor_data, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			trace.ID, trace.EntityID, trace.RelationshipID, trace.DocumentID,
			location, contextRange, trace.Excerpt, trace.AnchorType, anchor,
			trace.CreatedAt, trace.UpdatedAt)
	}

	results := s.conn.SendBatch(ctx, batch)
	defer results.Close()
	for range traces {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("pgx: save traces: %w", err)
		}
	}
	return nil
}

func (s *Storage) GetTrace(ctx context.Context, id uuid.UUID) (*model.KnowledgeTrace, error) {
	row := s.conn.QueryRow(ctx, `
		SELECT id, entity_id, relationship_id, document_id, location_data, context_range, excerpt, anchor_type, anchor_data, created_at, updated_at
		FROM knowledge_traces WHERE id = $1`, id)

	var trace model.KnowledgeTrace
	var location, contextRange, anchor []byte
	err := row.Scan(&trace.ID, &trace.EntityID, &trace.RelationshipID, &trace.DocumentID,
		&location, &contextRange, &trace.Excerpt, &trace.AnchorType, &anchor,
		&trace.CreatedAt, &trace.UpdatedAt)
	if errors.Is(err, pgxv5.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("pgx: get trace: %w", err)
	}
	if len(location) > 0 {
		_ = json.Unmarshal(location, &trace.LocationData)
	}
	if len(contextRange) > 0 {
		_ = json.Unmarshal(contextRange, &trace.ContextRange)
	}
	if len(anchor) > 0 {
		_ = json.Unmarshal(anchor, &trace.AnchorData)
	}
	return &trace, nil
}

func (s *Storage) FindTraces(ctx context.Context, query store.TraceQuery) ([]model.KnowledgeTrace, error) {
	where := " WHERE 1=1"
	args := []any{}
	if query.EntityID != nil {
		args = append(args, *query.EntityID)
		where += fmt.Sprintf(" AND entity_id = $%d", len(args))
	}
	if query.RelationshipID != nil {
		args = append(args, *query.RelationshipID)
		where += fmt.Sprintf(" AND relationship_id = $%d", len(args))
	}
	if query.DocumentID != nil {
		args = append(args, *query.DocumentID)
		where += fmt.Sprintf(" AND document_id = $%d", len(args))
	}

	limit := query.Limit
	if limit <= 0 || limit > listLimitCap {
		limit = listLimitCap
	}
	args = append(args, limit)

	rows, err := s.conn.Query(ctx, `
		SELECT id, entity_id, relationship_id, document_id, location_data, context_range, excerpt, anchor_type, anchor_data, created_at, updated_at
		FROM knowledge_traces`+where+fmt.Sprintf(" ORDER BY created_at LIMIT $%d", len(args)), args...)
	if err != nil {
		return nil, fmt.Errorf("pgx: find traces: %w", err)
	}
	defer rows.Close()

	var traces []model.KnowledgeTrace
	for rows.Next() {
		var trace model.KnowledgeTrace
		var location, contextRange, anchor []byte
		err := rows.Scan(&trace.ID, &trace.EntityID, &trace.RelationshipID, &trace.DocumentID,
			&location, &contextRange, &trace.Excerpt, &trace.AnchorType, &anchor,
			&trace.CreatedAt, &trace.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("pgx: scan trace: %w", err)
		}
		if len(location) > 0 {
			_ = json.Unmarshal(location, &trace.LocationData)
		}
		if len(contextRange) > 0 {
			_ = json.Unmarshal(contextRange, &trace.ContextRange)
		}
		if len(anchor) > 0 {
			_ = json.Unmarshal(anchor, &trace.AnchorData)
		}
		traces = append(traces, trace)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgx: find traces: %w", err)
	}
	return traces, nil
}
