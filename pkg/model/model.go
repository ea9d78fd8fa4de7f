package model

import (
	"time"

	"github.com/google/uuid"
)

// MaxTextLength bounds the text, in bytes, that the extraction stages
// process per document. Longer text is truncated at a rune boundary before
// tagging and relation inference, keeping the two stages anchored to the
// same span of the document.
const MaxTextLength = 100_000

// SourceLocation pinpoints where inside a source document a piece of
// knowledge was found. CharOffset and CharLength are byte offsets into the
// document's UTF-8 text; Page and Paragraph are set when the ingestor can
// provide them.
type SourceLocation struct {
	CharOffset int `json:"char_offset"`
	CharLength int `json:"char_length"`
	Page       int `json:"page,omitempty"`
	Paragraph  int `json:"paragraph,omitempty"`
	SentenceID int `json:"sentence_id,omitempty"`
}

// SourceRef is the provenance summary carried by every entity and
// relationship: which document produced it, where, how, and with what
// confidence.
type SourceRef struct {
	SourceID         uuid.UUID       `json:"source_id,omitempty"`
	SourceType       string          `json:"source_type,omitempty"`
	SourceLocation   *SourceLocation `json:"source_location,omitempty"`
	ExtractionMethod string          `json:"extraction_method,omitempty"`
	Confidence       float64         `json:"confidence,omitempty"`
}

// Entity represents a node in the knowledge graph. An entity can be a
// person, organization, location, or any other concept from the type
// vocabulary. The Version/PreviousVersion pair forms a singly linked
// revision chain.
type Entity struct {
	ID                 uuid.UUID      `json:"id"`
	Type               string         `json:"type"`
	Name               string         `json:"name"`
	Description        string         `json:"description,omitempty"`
	Properties         map[string]any `json:"properties,omitempty"`
	Tags               []string       `json:"tags,omitempty"`
	Importance         int            `json:"importance,omitempty"`
	UnderstandingLevel int            `json:"understanding_level,omitempty"`
	PersonalNotes      string         `json:"personal_notes,omitempty"`
	Category           string         `json:"category,omitempty"`

	SourceRef

	Version         int        `json:"version"`
	PreviousVersion *uuid.UUID `json:"previous_version,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewEntity creates an entity with a fresh ID, version 1 and current
// timestamps.
func NewEntity(entityType, name string) Entity {
	now := time.Now().UTC()
	return Entity{
		ID:        uuid.New(),
		Type:      entityType,
		Name:      name,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Relationship represents a directed edge between two entities. Bidirectional
// marks edges whose semantics hold in both directions; the stored direction
// is still source to target.
type Relationship struct {
	ID             uuid.UUID      `json:"id"`
	Type           string         `json:"type"`
	EntitySourceID uuid.UUID      `json:"source_id"`
	EntityTargetID uuid.UUID      `json:"target_id"`
	Properties     map[string]any `json:"properties,omitempty"`
	Bidirectional  bool           `json:"bidirectional"`
	StartTime      *time.Time     `json:"start_time,omitempty"`
	EndTime        *time.Time     `json:"end_time,omitempty"`
	Certainty      float64        `json:"certainty"`
	Evidence       string         `json:"evidence,omitempty"`

	SourceRef

	Version         int        `json:"version"`
	PreviousVersion *uuid.UUID `json:"previous_version,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewRelationship creates a directed edge with a fresh ID, version 1 and
// current timestamps.
func NewRelationship(relType string, source, target uuid.UUID) Relationship {
	now := time.Now().UTC()
	return Relationship{
		ID:             uuid.New(),
		Type:           relType,
		EntitySourceID: source,
		EntityTargetID: target,
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// Document types accepted by the ingestor.
const (
	DocumentTypePDF        = "pdf"
	DocumentTypeDocx       = "docx"
	DocumentTypeText       = "txt"
	DocumentTypeWebpage    = "webpage"
	DocumentTypeStructured = "structured_data"
)

// SourceDocument is the original ingested artifact. ContentHash is computed
// from the raw bytes before any parsing and is prefixed with the digest
// algorithm ("sha256:..."). ArchivedPath points at the frozen copy, distinct
// from the working FilePath, and never changes once set.
type SourceDocument struct {
	ID           uuid.UUID      `json:"id"`
	Title        string         `json:"title"`
	Type         string         `json:"type"`
	ContentHash  string         `json:"content_hash"`
	FilePath     string         `json:"file_path,omitempty"`
	URL          string         `json:"url,omitempty"`
	ArchivedPath string         `json:"archived_path,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	AccessedAt   time.Time      `json:"accessed_at"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// Trace anchor types.
const (
	AnchorTypeCharOffset = "char_offset"
	AnchorTypeXPath      = "xpath"
	AnchorTypeSemantic   = "semantic"
)

// ContextRange records how many characters of surrounding context were
// captured on each side of the excerpt.
type ContextRange struct {
	BeforeChars int `json:"before_chars"`
	AfterChars  int `json:"after_chars"`
}

// AnchorData is the anchor-type specific payload of a trace. For
// char_offset anchors the offsets are byte offsets into the document text
// and ContentFingerprint is a digest of the excerpt used for change
// detection, not for security.
type AnchorData struct {
	StartOffset        int    `json:"start_offset"`
	EndOffset          int    `json:"end_offset"`
	ContentFingerprint string `json:"content_fingerprint,omitempty"`
	XPath              string `json:"xpath,omitempty"`
}

// KnowledgeTrace links an entity or a relationship back to the exact
// document span that produced it. Exactly one of EntityID/RelationshipID is
// set. Traces reference but do not own their targets: deleting the entity
// leaves its traces behind as audit records.
type KnowledgeTrace struct {
	ID             uuid.UUID       `json:"id"`
	EntityID       *uuid.UUID      `json:"entity_id,omitempty"`
	RelationshipID *uuid.UUID      `json:"relationship_id,omitempty"`
	DocumentID     uuid.UUID       `json:"document_id"`
	LocationData   *SourceLocation `json:"location_data"`
	ContextRange   ContextRange    `json:"context_range"`
	Excerpt        string          `json:"excerpt,omitempty"`
	AnchorType     string          `json:"anchor_type"`
	AnchorData     AnchorData      `json:"anchor_data"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// Valid reports whether the trace satisfies the exclusivity invariant:
// it belongs to exactly one of an entity or a relationship.
func (t KnowledgeTrace) Valid() bool {
	return (t.EntityID != nil) != (t.RelationshipID != nil)
}
