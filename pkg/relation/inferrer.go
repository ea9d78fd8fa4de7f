package relation

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/graphein/backend/internal/util"
	"github.com/graphein/backend/pkg/logger"
	"github.com/graphein/backend/pkg/model"
	"github.com/graphein/backend/pkg/store"

	"github.com/google/uuid"
)

// Inferrer derives relationships between entities that co-occur within one
// sentence. Typing is pattern-first with a type-pair co-occurrence
// fallback, so every co-occurring pair produces an edge.
type Inferrer struct {
	graph store.GraphStore
}

// NewInferrer creates an inferrer persisting through graph. A nil graph
// store disables persistence.
func NewInferrer(graph store.GraphStore) *Inferrer {
	return &Inferrer{graph: graph}
}

type anchored struct {
	entity model.Entity
	start  int
	end    int
}

// ExtractRelationships infers relationships among the given entities using
// their character anchors in text. Fewer than two entities always yields an
// empty result. Each unordered pair is considered at most once per
// document.
func (inf *Inferrer) ExtractRelationships(ctx context.Context, doc *model.SourceDocument, entities []model.Entity, text string) ([]model.Relationship, error) {
	if doc == nil {
		return nil, fmt.Errorf("relation: document required")
	}
	if len(entities) < 2 {
		return nil, nil
	}

	text = util.TruncateRunes(text, model.MaxTextLength)

	anchors := make([]anchored, 0, len(entities))
	for _, e := range entities {
		loc := e.SourceLocation
		if loc == nil {
			continue
		}
		anchors = append(anchors, anchored{
			entity: e,
			start:  loc.CharOffset,
			end:    loc.CharOffset + loc.CharLength,
		})
	}
	if len(anchors) < 2 {
		return nil, nil
	}

	seen := make(map[[2]uuid.UUID]struct{})
	var relationships []model.Relationship

	for _, sentence := range SplitSentences(text) {
		var inSentence []anchored
		for _, a := range anchors {
			if sentence.contains(a.start, a.end) {
				inSentence = append(inSentence, a)
			}
		}
		if len(inSentence) < 2 {
			continue
		}

		sort.Slice(inSentence, func(i, j int) bool {
			return inSentence[i].start < inSentence[j].start
		})

		for i := 0; i < len(inSentence)-1; i++ {
			for j := i + 1; j < len(inSentence); j++ {
				src, tgt := inSentence[i], inSentence[j]
				if src.entity.ID == tgt.entity.ID {
					continue
				}
				if _, ok := seen[[2]uuid.UUID{src.entity.ID, tgt.entity.ID}]; ok {
					continue
				}
				if _, ok := seen[[2]uuid.UUID{tgt.entity.ID, src.entity.ID}]; ok {
					continue
				}
				seen[[2]uuid.UUID{src.entity.ID, tgt.entity.ID}] = struct{}{}

				rel := inf.buildRelationship(doc, src, tgt, sentence, text)

				if inf.graph != nil {
					if err := inf.graph.CreateRelationship(ctx, rel); err != nil {
						logger.Error("[Relation] Failed to persist relationship",
							"type", rel.Type, "source", src.entity.Name, "target", tgt.entity.Name, "err", err)
						continue
					}
				}
				relationships = append(relationships, rel)
			}
		}
	}

	return relationships, nil
}

func (inf *Inferrer) buildRelationship(doc *model.SourceDocument, src, tgt anchored, sentence Sentence, text string) model.Relationship {
	between := ""
	if src.end <= tgt.start {
		between = text[src.end:tgt.start]
	}

	relType, method, certainty := identify(between, src.entity.Type, tgt.entity.Type)

	rel := model.NewRelationship(relType, src.entity.ID, tgt.entity.ID)
	rel.Certainty = certainty
	rel.Evidence = strings.TrimSpace(between)
	rel.Properties = map[string]any{"context": sentence.Text}
	rel.SourceRef = model.SourceRef{
		SourceID:   doc.ID,
		SourceType: doc.Type,
		SourceLocation: &model.SourceLocation{
			CharOffset: src.start,
			CharLength: tgt.end - src.start,
		},
		ExtractionMethod: method,
		Confidence:       certainty,
	}
	return rel
}
