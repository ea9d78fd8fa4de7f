package ner

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/graphein/backend/internal/util"
	"github.com/graphein/backend/pkg/logger"
	"github.com/graphein/backend/pkg/model"
	"github.com/graphein/backend/pkg/store"
)

// description expansion stops after this many bytes in each direction.
const descriptionWindow = 200

// sentenceTerminals end a sentence for description expansion.
const sentenceTerminals = ".!?。！？"

// Recognizer runs a tagger over document text, maps tagger labels onto the
// entity type vocabulary and emits candidate entities anchored to byte
// spans. Accepted entities are persisted immediately; a persistence failure
// for one entity is logged and extraction continues.
type Recognizer struct {
	tagger Tagger
	graph  store.GraphStore
}

// NewRecognizer creates a recognizer persisting through graph. A nil graph
// store disables persistence, which is useful for dry runs.
func NewRecognizer(tagger Tagger, graph store.GraphStore) *Recognizer {
	return &Recognizer{tagger: tagger, graph: graph}
}

// ExtractEntities tags the document text and returns the persisted
// entities. Text beyond model.MaxTextLength bytes is ignored.
func (r *Recognizer) ExtractEntities(ctx context.Context, doc *model.SourceDocument, text string) ([]model.Entity, error) {
	if doc == nil {
		return nil, fmt.Errorf("ner: document required")
	}

	text = util.TruncateRunes(text, model.MaxTextLength)
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	spans, err := r.tagger.Tag(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("ner: tagging failed: %w", err)
	}

	entities := make([]model.Entity, 0, len(spans))
	for _, span := range spans {
		confidence := span.Confidence
		if confidence == 0 {
			confidence = model.Score(model.MethodNERModel, "default")
		}

		entity := model.NewEntity(MapLabel(span.Label), span.Text)
		entity.Description = sentenceWindow(text, span.Start)
		entity.Category = model.EntityTypeCategory(entity.Type)
		entity.SourceRef = model.SourceRef{
			SourceID:   doc.ID,
			SourceType: doc.Type,
			SourceLocation: &model.SourceLocation{
				CharOffset: span.Start,
				CharLength: span.End - span.Start,
			},
			ExtractionMethod: model.MethodNERModel,
			Confidence:       confidence,
		}

		if r.graph != nil {
			if err := r.graph.CreateEntity(ctx, entity); err != nil {
				logger.Error("[NER] Failed to persist entity", "name", entity.Name, "err", err)
				continue
			}
		}
		entities = append(entities, entity)
	}

	return entities, nil
}

// sentenceWindow expands from start outward to the nearest sentence
// terminals, capped at descriptionWindow bytes in each direction.
func sentenceWindow(text string, start int) string {
	if start < 0 || start > len(text) {
		return ""
	}

	lo := util.SnapToRuneStart(text, max(0, start-descriptionWindow))
	sentenceStart := lo
	for i := start; i > lo; {
		r, size := utf8.DecodeLastRuneInString(text[:i])
		if size == 0 {
			break
		}
		i -= size
		if strings.ContainsRune(sentenceTerminals, r) {
			sentenceStart = i + size
			break
		}
	}

	hi := util.SnapToRuneEnd(text, min(len(text), start+descriptionWindow))
	sentenceEnd := hi
	for i := start; i < hi; {
		r, size := utf8.DecodeRuneInString(text[i:])
		if size == 0 {
			break
		}
		if strings.ContainsRune(sentenceTerminals, r) {
			sentenceEnd = i + size
			break
		}
		i += size
	}

	return strings.TrimSpace(text[sentenceStart:sentenceEnd])
}
