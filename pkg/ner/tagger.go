package ner

import (
	"context"

	"github.com/graphein/backend/pkg/model"
)

// Span is one tagged region of text. Start and End are byte offsets into
// the tagged text. Confidence is the tagger's own score for the span, or 0
// when the tagger does not score, in which case the recognizer applies the
// configured default.
type Span struct {
	Text       string
	Label      string
	Start      int
	End        int
	Confidence float64
}

// Tagger is a sequence tagger producing labeled spans over plain text.
// Implementations wrap pretrained NER models or, for offline and test use,
// the rule-based LexiconTagger.
type Tagger interface {
	Tag(ctx context.Context, text string) ([]Span, error)
}

// labelMapping maps tagger labels onto the entity type vocabulary. The
// mapping is many-to-one; labels without an entry map to "concept" so that
// no tagged span is silently dropped.
var labelMapping = map[string]string{
	"PERSON":      model.EntityTypePerson,
	"ORG":         model.EntityTypeOrganization,
	"GPE":         model.EntityTypeLocation,
	"LOC":         model.EntityTypeLocation,
	"DATE":        model.EntityTypeTime,
	"TIME":        model.EntityTypeTime,
	"EVENT":       model.EntityTypeEvent,
	"MONEY":       model.EntityTypeConcept,
	"PERCENT":     model.EntityTypeConcept,
	"PRODUCT":     model.EntityTypeConcept,
	"WORK_OF_ART": model.EntityTypeConcept,
	"LAW":         model.EntityTypeConcept,
	"LANGUAGE":    model.EntityTypeConcept,
}

// MapLabel translates a tagger label to an entity type. Unmapped labels
// default to "concept".
func MapLabel(label string) string {
	if t, ok := labelMapping[label]; ok {
		return t
	}
	return model.EntityTypeConcept
}
