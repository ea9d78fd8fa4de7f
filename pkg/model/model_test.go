package model

import (
	"testing"

	"github.com/google/uuid"
)

func TestNewEntity(t *testing.T) {
	e := NewEntity(EntityTypePerson, "张三")

	if e.ID == uuid.Nil {
		t.Error("entity has no id")
	}
	if e.Type != EntityTypePerson || e.Name != "张三" {
		t.Errorf("entity = %s/%s, want person/张三", e.Type, e.Name)
	}
	if e.Version != 1 {
		t.Errorf("version = %d, want 1", e.Version)
	}
	if e.PreviousVersion != nil {
		t.Error("new entity has a previous version")
	}
	if e.CreatedAt.IsZero() || !e.CreatedAt.Equal(e.UpdatedAt) {
		t.Error("timestamps not initialized together")
	}
}

func TestNewRelationship(t *testing.T) {
	src, tgt := uuid.New(), uuid.New()
	r := NewRelationship(RelationTypeWorksFor, src, tgt)

	if r.ID == uuid.Nil {
		t.Error("relationship has no id")
	}
	if r.Type != RelationTypeWorksFor {
		t.Errorf("type = %q, want %q", r.Type, RelationTypeWorksFor)
	}
	if r.EntitySourceID != src || r.EntityTargetID != tgt {
		t.Error("endpoints not recorded")
	}
	if r.Version != 1 {
		t.Errorf("version = %d, want 1", r.Version)
	}
}

func TestKnowledgeTraceValid(t *testing.T) {
	entityID := uuid.New()
	relationshipID := uuid.New()

	tests := []struct {
		name  string
		trace KnowledgeTrace
		want  bool
	}{
		{"entity only", KnowledgeTrace{EntityID: &entityID}, true},
		{"relationship only", KnowledgeTrace{RelationshipID: &relationshipID}, true},
		{"neither", KnowledgeTrace{}, false},
		{"both", KnowledgeTrace{EntityID: &entityID, RelationshipID: &relationshipID}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.trace.Valid(); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}
