package relation

import (
	"testing"

	"github.com/graphein/backend/pkg/model"
)

func TestIdentify(t *testing.T) {
	tests := []struct {
		name          string
		between       string
		sourceType    string
		targetType    string
		wantType      string
		wantMethod    string
		wantCertainty float64
	}{
		{
			name:          "is a pattern",
			between:       " is a ",
			sourceType:    model.EntityTypeConcept,
			targetType:    model.EntityTypeConcept,
			wantType:      model.RelationTypeIsA,
			wantMethod:    model.MethodPattern,
			wantCertainty: 0.8,
		},
		{
			name:          "is a kind of",
			between:       " is a kind of ",
			sourceType:    model.EntityTypeConcept,
			targetType:    model.EntityTypeConcept,
			wantType:      model.RelationTypeIsA,
			wantMethod:    model.MethodPattern,
			wantCertainty: 0.8,
		},
		{
			name:          "part of pattern",
			between:       " is part of ",
			sourceType:    model.EntityTypeConcept,
			targetType:    model.EntityTypeConcept,
			wantType:      model.RelationTypePartOf,
			wantMethod:    model.MethodPattern,
			wantCertainty: 0.7,
		},
		{
			name:          "depends on pattern",
			between:       " depends on ",
			sourceType:    model.EntityTypeConcept,
			targetType:    model.EntityTypeConcept,
			wantType:      model.RelationTypeDependsOn,
			wantMethod:    model.MethodPattern,
			wantCertainty: 0.7,
		},
		{
			name:          "located in pattern",
			between:       " is located in ",
			sourceType:    model.EntityTypeOrganization,
			targetType:    model.EntityTypeLocation,
			wantType:      model.RelationTypeLocatedIn,
			wantMethod:    model.MethodPattern,
			wantCertainty: 0.7,
		},
		{
			name:          "created by pattern",
			between:       " was founded by ",
			sourceType:    model.EntityTypeOrganization,
			targetType:    model.EntityTypePerson,
			wantType:      model.RelationTypeCreatedBy,
			wantMethod:    model.MethodPattern,
			wantCertainty: 0.7,
		},
		{
			name:          "chinese is a",
			between:       "是一种",
			sourceType:    model.EntityTypeConcept,
			targetType:    model.EntityTypeConcept,
			wantType:      model.RelationTypeIsA,
			wantMethod:    model.MethodPattern,
			wantCertainty: 0.8,
		},
		{
			name:          "chinese located in",
			between:       "位于",
			sourceType:    model.EntityTypeOrganization,
			targetType:    model.EntityTypeLocation,
			wantType:      model.RelationTypeLocatedIn,
			wantMethod:    model.MethodPattern,
			wantCertainty: 0.7,
		},
		{
			name:          "person org pair falls back to works for",
			between:       "在",
			sourceType:    model.EntityTypePerson,
			targetType:    model.EntityTypeOrganization,
			wantType:      model.RelationTypeWorksFor,
			wantMethod:    model.MethodCoOccurrence,
			wantCertainty: 0.5,
		},
		{
			name:          "person location pair",
			between:       " lives near ",
			sourceType:    model.EntityTypePerson,
			targetType:    model.EntityTypeLocation,
			wantType:      model.RelationTypeLocatedIn,
			wantMethod:    model.MethodCoOccurrence,
			wantCertainty: 0.5,
		},
		{
			name:          "same type pair",
			between:       " and ",
			sourceType:    model.EntityTypeConcept,
			targetType:    model.EntityTypeConcept,
			wantType:      model.RelationTypeRelatedTo,
			wantMethod:    model.MethodCoOccurrence,
			wantCertainty: 0.4,
		},
		{
			name:          "untyped pair",
			between:       " near ",
			sourceType:    model.EntityTypeEvent,
			targetType:    model.EntityTypeTime,
			wantType:      model.RelationTypeHasRelation,
			wantMethod:    model.MethodCoOccurrence,
			wantCertainty: 0.4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			relType, method, certainty := identify(tt.between, tt.sourceType, tt.targetType)
			if relType != tt.wantType {
				t.Errorf("identify(%q) type = %q, want %q", tt.between, relType, tt.wantType)
			}
			if method != tt.wantMethod {
				t.Errorf("identify(%q) method = %q, want %q", tt.between, method, tt.wantMethod)
			}
			if certainty != tt.wantCertainty {
				t.Errorf("identify(%q) certainty = %v, want %v", tt.between, certainty, tt.wantCertainty)
			}
		})
	}
}
