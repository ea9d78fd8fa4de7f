// Package pipeline orchestrates the full extraction flow: ingest a
// document, recognize entities, infer relationships, and record
// provenance traces. Extraction failures after a successful ingest do not
// lose the document; the summary carries the error instead.
package pipeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/graphein/backend/pkg/ingest"
	"github.com/graphein/backend/pkg/logger"
	"github.com/graphein/backend/pkg/model"
	"github.com/graphein/backend/pkg/ner"
	"github.com/graphein/backend/pkg/provenance"
	"github.com/graphein/backend/pkg/relation"
	"github.com/graphein/backend/pkg/store"
)

// Processing outcomes reported in Summary.Status.
const (
	StatusCompleted = "completed"
	StatusPartial   = "completed_with_errors"
	StatusDuplicate = "duplicate"
	StatusFailed    = "failed"
)

// Summary is the result of processing one document end to end.
type Summary struct {
	DocumentID         uuid.UUID `json:"document_id"`
	Title              string    `json:"title"`
	Status             string    `json:"status"`
	EntitiesCount      int       `json:"entities_count"`
	RelationshipsCount int       `json:"relationships_count"`
	TracesCount        int       `json:"traces_count"`
	ExtractionError    string    `json:"extraction_error,omitempty"`
}

// Pipeline wires the extraction stages together.
type Pipeline struct {
	ingestor   *ingest.Processor
	recognizer *ner.Recognizer
	inferrer   *relation.Inferrer
	tracer     *provenance.Tracer
	documents  store.DocumentStore
	traces     store.TraceStore
}

// Params configures a Pipeline. Ingestor and Recognizer are required;
// the rest degrade gracefully when nil.
type Params struct {
	Ingestor   *ingest.Processor
	Recognizer *ner.Recognizer
	Inferrer   *relation.Inferrer
	Tracer     *provenance.Tracer
	Documents  store.DocumentStore
	Traces     store.TraceStore
}

func New(params Params) (*Pipeline, error) {
	if params.Ingestor == nil {
		return nil, fmt.Errorf("pipeline: ingestor required")
	}
	if params.Recognizer == nil {
		return nil, fmt.Errorf("pipeline: recognizer required")
	}
	return &Pipeline{
		ingestor:   params.Ingestor,
		recognizer: params.Recognizer,
		inferrer:   params.Inferrer,
		tracer:     params.Tracer,
		documents:  params.Documents,
		traces:     params.Traces,
	}, nil
}

// ProcessFile runs the full pipeline on uploaded file content.
func (p *Pipeline) ProcessFile(ctx context.Context, content []byte, filename string) (*Summary, error) {
	return p.run(ctx, p.ingestor.ProcessFile(ctx, content, filename))
}

// ProcessURL runs the full pipeline on a web page.
func (p *Pipeline) ProcessURL(ctx context.Context, rawURL string) (*Summary, error) {
	return p.run(ctx, p.ingestor.ProcessURL(ctx, rawURL))
}

func (p *Pipeline) run(ctx context.Context, result ingest.Result) (*Summary, error) {
	if result.Err != "" {
		return &Summary{Status: StatusFailed, ExtractionError: result.Err}, nil
	}
	doc := result.Document
	if doc == nil {
		return &Summary{Status: StatusFailed, ExtractionError: "ingest produced no document"}, nil
	}

	if p.documents != nil {
		existing, err := p.documents.FindDocumentByHash(ctx, doc.ContentHash)
		if err != nil {
			return nil, fmt.Errorf("pipeline: duplicate check: %w", err)
		}
		if existing != nil {
			logger.Info("[Pipeline] Skipping duplicate document",
				"document_id", existing.ID, "content_hash", doc.ContentHash)
			// The ingestor already wrote copies for the discarded document.
			if err := p.ingestor.Discard(ctx, doc); err != nil {
				logger.Warn("[Pipeline] Failed to remove duplicate copies",
					"document_id", doc.ID, "err", err)
			}
			return &Summary{
				DocumentID: existing.ID,
				Title:      existing.Title,
				Status:     StatusDuplicate,
			}, nil
		}
		if err := p.documents.SaveDocument(ctx, doc); err != nil {
			return nil, fmt.Errorf("pipeline: save document: %w", err)
		}
	}

	summary := &Summary{
		DocumentID: doc.ID,
		Title:      doc.Title,
		Status:     StatusCompleted,
	}

	entities, err := p.recognizer.ExtractEntities(ctx, doc, result.Text)
	if err != nil {
		// The document is already saved; record the failure rather
		// than rolling back the ingest.
		logger.Error("[Pipeline] Entity extraction failed", "document_id", doc.ID, "err", err)
		summary.Status = StatusPartial
		summary.ExtractionError = err.Error()
		return summary, nil
	}
	summary.EntitiesCount = len(entities)

	var relationships []model.Relationship
	if p.inferrer != nil {
		relationships, err = p.inferrer.ExtractRelationships(ctx, doc, entities, result.Text)
		if err != nil {
			logger.Error("[Pipeline] Relationship inference failed", "document_id", doc.ID, "err", err)
			summary.Status = StatusPartial
			summary.ExtractionError = err.Error()
		}
		summary.RelationshipsCount = len(relationships)
	}

	if p.tracer != nil && p.traces != nil {
		traces := p.tracer.CreateTraces(doc, entities, relationships, result.Text)
		if err := p.traces.SaveTraces(ctx, traces); err != nil {
			logger.Error("[Pipeline] Failed to save traces", "document_id", doc.ID, "err", err)
			summary.Status = StatusPartial
			summary.ExtractionError = err.Error()
		} else {
			summary.TracesCount = len(traces)
		}
	}

	logger.Info("[Pipeline] Document processed",
		"document_id", doc.ID,
		"status", summary.Status,
		"entities", summary.EntitiesCount,
		"relationships", summary.RelationshipsCount,
		"traces", summary.TracesCount)
	return summary, nil
}
