package store

import (
	"context"
	"errors"

	"github.com/graphein/backend/pkg/model"

	"github.com/google/uuid"
)

var (
	// ErrNotFound marks a missing endpoint on relationship creation.
	// Plain reads return nil for missing ids instead of this error.
	ErrNotFound = errors.New("store: not found")

	// ErrUnavailable marks connectivity loss. Operations failing with it
	// are safe to retry.
	ErrUnavailable = errors.New("store: unavailable")
)

// EntityQuery filters FindEntities. Zero fields are ignored. Name matches
// as a case-insensitive substring; Tag matches set membership.
type EntityQuery struct {
	Type  string
	Name  string
	Tag   string
	Limit int
}

// RelationshipQuery filters FindRelationships.
type RelationshipQuery struct {
	Type     string
	EntityID uuid.UUID
	Limit    int
}

// GraphStore persists entities and relationships as labeled nodes and typed
// edges. Reads of missing ids return nil with no error; deletes report
// whether anything was removed. All methods are safe to retry.
type GraphStore interface {
	CreateEntity(ctx context.Context, entity model.Entity) error
	ReadEntity(ctx context.Context, id uuid.UUID) (*model.Entity, error)
	UpdateEntity(ctx context.Context, id uuid.UUID, entity model.Entity) (*model.Entity, error)

	CreateRelationship(ctx context.Context, rel model.Relationship) error
	ReadRelationship(ctx context.Context, id uuid.UUID) (*model.Relationship, error)
	UpdateRelationship(ctx context.Context, id uuid.UUID, rel model.Relationship) (*model.Relationship, error)

	// Delete removes a node or edge by id. Node deletion detaches all
	// connected edges. Returns false when the id did not exist.
	Delete(ctx context.Context, id uuid.UUID) (bool, error)

	FindEntities(ctx context.Context, query EntityQuery) ([]model.Entity, error)
	FindRelationships(ctx context.Context, query RelationshipQuery) ([]model.Relationship, error)
}

// DocumentStore persists source document records.
type DocumentStore interface {
	SaveDocument(ctx context.Context, doc *model.SourceDocument) error
	GetDocument(ctx context.Context, id uuid.UUID) (*model.SourceDocument, error)
	FindDocumentByHash(ctx context.Context, contentHash string) (*model.SourceDocument, error)
	ListDocuments(ctx context.Context, limit int) ([]model.SourceDocument, error)
}

// TraceQuery filters trace listings. Exactly one of EntityID/RelationshipID
// is normally set; both unset lists by document.
type TraceQuery struct {
	EntityID       *uuid.UUID
	RelationshipID *uuid.UUID
	DocumentID     *uuid.UUID
	Limit          int
}

// TraceStore persists knowledge traces. Traces are independent audit
// records: deleting the entity or relationship they point at does not
// delete them.
type TraceStore interface {
	SaveTraces(ctx context.Context, traces []model.KnowledgeTrace) error
	GetTrace(ctx context.Context, id uuid.UUID) (*model.KnowledgeTrace, error)
	FindTraces(ctx context.Context, query TraceQuery) ([]model.KnowledgeTrace, error)
}
