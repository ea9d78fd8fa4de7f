// Package provenance builds and verifies knowledge traces: the per-item
// records that tie an entity or relationship back to the exact span of the
// source document it was extracted from.
package provenance

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/graphein/backend/internal/util"
	"github.com/graphein/backend/pkg/model"

	"github.com/google/uuid"
)

// contextChars is how many bytes of surrounding text are captured on each
// side of an excerpt, snapped outward to rune boundaries.
const contextChars = 100

// Tracer turns extracted entities and relationships into knowledge traces.
type Tracer struct{}

func NewTracer() *Tracer {
	return &Tracer{}
}

// CreateTraces builds one trace per entity and relationship that carries a
// source location inside doc. Items without a location are skipped, they
// cannot be anchored.
func (t *Tracer) CreateTraces(doc *model.SourceDocument, entities []model.Entity, relationships []model.Relationship, text string) []model.KnowledgeTrace {
	if doc == nil {
		return nil
	}

	traces := make([]model.KnowledgeTrace, 0, len(entities)+len(relationships))

	for i := range entities {
		e := &entities[i]
		if e.SourceLocation == nil {
			continue
		}
		trace := t.buildTrace(doc.ID, *e.SourceLocation, text)
		id := e.ID
		trace.EntityID = &id
		traces = append(traces, trace)
	}

	for i := range relationships {
		r := &relationships[i]
		if r.SourceLocation == nil {
			continue
		}
		trace := t.buildTrace(doc.ID, *r.SourceLocation, text)
		id := r.ID
		trace.RelationshipID = &id
		traces = append(traces, trace)
	}

	return traces
}

func (t *Tracer) buildTrace(documentID uuid.UUID, loc model.SourceLocation, text string) model.KnowledgeTrace {
	start := util.SnapToRuneStart(text, loc.CharOffset)
	end := util.SnapToRuneEnd(text, loc.CharOffset+loc.CharLength)
	if end < start {
		end = start
	}
	excerpt := text[start:end]

	ctxStart := util.SnapToRuneStart(text, start-contextChars)
	ctxEnd := util.SnapToRuneEnd(text, end+contextChars)

	now := time.Now().UTC()
	locCopy := loc
	return model.KnowledgeTrace{
		ID:           uuid.New(),
		DocumentID:   documentID,
		LocationData: &locCopy,
		ContextRange: model.ContextRange{
			BeforeChars: start - ctxStart,
			AfterChars:  ctxEnd - end,
		},
		Excerpt:    util.SanitizeText(excerpt),
		AnchorType: model.AnchorTypeCharOffset,
		AnchorData: model.AnchorData{
			StartOffset:        start,
			EndOffset:          end,
			ContentFingerprint: Fingerprint(excerpt),
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Fingerprint returns the hex sha256 digest of the excerpt. It detects
// drift between a stored trace and the current document text.
func Fingerprint(excerpt string) string {
	sum := sha256.Sum256([]byte(excerpt))
	return hex.EncodeToString(sum[:])
}

// VerifyResult is the outcome of re-checking one trace against the current
// text of its document.
type VerifyResult struct {
	TraceID   uuid.UUID `json:"trace_id"`
	Valid     bool      `json:"valid"`
	Reason    string    `json:"reason,omitempty"`
	Excerpt   string    `json:"excerpt,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

// Verify re-anchors trace against text and reports whether the recorded
// span still carries the content it was created from.
func Verify(trace model.KnowledgeTrace, text string) VerifyResult {
	result := VerifyResult{TraceID: trace.ID, CheckedAt: time.Now().UTC()}

	if trace.AnchorType != model.AnchorTypeCharOffset {
		result.Reason = "unsupported anchor type"
		return result
	}
	start, end := trace.AnchorData.StartOffset, trace.AnchorData.EndOffset
	if start < 0 || end < start || end > len(text) {
		result.Reason = "anchor out of range"
		return result
	}

	excerpt := text[start:end]
	result.Excerpt = excerpt
	if trace.AnchorData.ContentFingerprint != "" && Fingerprint(excerpt) != trace.AnchorData.ContentFingerprint {
		result.Reason = "content changed"
		return result
	}

	result.Valid = true
	return result
}
