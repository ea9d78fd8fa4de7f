package inference

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/graphein/backend/pkg/model"
	"github.com/graphein/backend/pkg/store"
)

// memoryGraph implements store.GraphStore over slices for engine tests.
type memoryGraph struct {
	rels      []model.Relationship
	createErr error
}

func (m *memoryGraph) CreateEntity(context.Context, model.Entity) error { return nil }

func (m *memoryGraph) ReadEntity(context.Context, uuid.UUID) (*model.Entity, error) {
	return nil, nil
}

func (m *memoryGraph) UpdateEntity(context.Context, uuid.UUID, model.Entity) (*model.Entity, error) {
	return nil, nil
}

func (m *memoryGraph) CreateRelationship(_ context.Context, rel model.Relationship) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.rels = append(m.rels, rel)
	return nil
}

func (m *memoryGraph) ReadRelationship(context.Context, uuid.UUID) (*model.Relationship, error) {
	return nil, nil
}

func (m *memoryGraph) UpdateRelationship(context.Context, uuid.UUID, model.Relationship) (*model.Relationship, error) {
	return nil, nil
}

func (m *memoryGraph) Delete(context.Context, uuid.UUID) (bool, error) { return false, nil }

func (m *memoryGraph) FindEntities(context.Context, store.EntityQuery) ([]model.Entity, error) {
	return nil, nil
}

func (m *memoryGraph) FindRelationships(_ context.Context, query store.RelationshipQuery) ([]model.Relationship, error) {
	var out []model.Relationship
	for _, r := range m.rels {
		if query.Type == "" || r.Type == query.Type {
			out = append(out, r)
		}
	}
	return out, nil
}

func edge(relType string, source, target uuid.UUID, certainty float64) model.Relationship {
	rel := model.NewRelationship(relType, source, target)
	rel.Certainty = certainty
	return rel
}

func find(rels []model.Relationship, source, target uuid.UUID) *model.Relationship {
	for i, r := range rels {
		if r.EntitySourceID == source && r.EntityTargetID == target {
			return &rels[i]
		}
	}
	return nil
}

func TestApplyDerivesTransitiveEdge(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	graph := &memoryGraph{rels: []model.Relationship{
		edge("is_a", a, b, 0.8),
		edge("is_a", b, c, 0.6),
	}}
	engine := NewEngine(graph)

	created, err := engine.Apply(context.Background(), Rule{Name: "transitive_is_a", Type: "is_a", Confidence: 1.0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created != 1 {
		t.Fatalf("created = %d, want 1", created)
	}

	derived := find(graph.rels, a, c)
	if derived == nil {
		t.Fatal("no derived a->c edge")
	}
	if derived.Type != "is_a" {
		t.Errorf("derived type = %q, want %q", derived.Type, "is_a")
	}
	if derived.Certainty != 0.6 {
		t.Errorf("derived certainty = %v, want the weaker link 0.6", derived.Certainty)
	}
	if inferred, _ := derived.Properties["inferred"].(bool); !inferred {
		t.Error("derived edge not marked as inferred")
	}
	if rule, _ := derived.Properties["rule"].(string); rule != "transitive_is_a" {
		t.Errorf("derived rule = %q, want %q", rule, "transitive_is_a")
	}
}

func TestApplySkipsExistingAndSelfEdges(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	graph := &memoryGraph{rels: []model.Relationship{
		// A two-node cycle: the only transitive closures would be self
		// edges, which must not be created.
		edge("part_of", a, b, 1.0),
		edge("part_of", b, a, 1.0),
	}}
	engine := NewEngine(graph)

	created, err := engine.Apply(context.Background(), Rule{Name: "transitive_part_of", Type: "part_of", Confidence: 1.0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created != 0 {
		t.Errorf("created = %d, want 0 for a two-node cycle", created)
	}
	if len(graph.rels) != 2 {
		t.Errorf("graph has %d edges, want the original 2", len(graph.rels))
	}
}

func TestApplyDoesNotDuplicate(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	graph := &memoryGraph{rels: []model.Relationship{
		edge("is_a", a, b, 1.0),
		edge("is_a", b, c, 1.0),
		edge("is_a", a, c, 1.0),
	}}
	engine := NewEngine(graph)

	created, err := engine.Apply(context.Background(), Rule{Name: "transitive_is_a", Type: "is_a", Confidence: 1.0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created != 0 {
		t.Errorf("created = %d, want 0 when the closure already exists", created)
	}
}

func TestApplyIgnoresOtherTypes(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	graph := &memoryGraph{rels: []model.Relationship{
		edge("is_a", a, b, 1.0),
		edge("located_in", b, c, 1.0),
	}}
	engine := NewEngine(graph)

	report := engine.ApplyAll(context.Background())
	if report.TotalCreated != 0 {
		t.Errorf("created = %d, want 0 across mixed types", report.TotalCreated)
	}
	if report.RulesApplied != len(DefaultRules()) {
		t.Errorf("rules applied = %d, want %d", report.RulesApplied, len(DefaultRules()))
	}
}

func TestApplyAllReportsPerRuleFailure(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	graph := &memoryGraph{
		rels: []model.Relationship{
			edge("is_a", a, b, 1.0),
			edge("is_a", b, c, 1.0),
		},
		createErr: errors.New("graph down"),
	}
	engine := NewEngine(graph)

	report := engine.ApplyAll(context.Background())
	if report.RulesApplied != 2 {
		t.Fatalf("rules applied = %d, want 2", report.RulesApplied)
	}

	var failed, succeeded int
	for _, r := range report.RuleResults {
		switch r.Status {
		case "error":
			failed++
		case "success":
			succeeded++
		}
	}
	if failed != 1 || succeeded != 1 {
		t.Errorf("results = %d failed / %d succeeded, want 1 / 1", failed, succeeded)
	}
}

func TestRuleSetManagement(t *testing.T) {
	engine := NewEngine(&memoryGraph{})

	if err := engine.AddRule(Rule{Name: "transitive_located_in", Type: "located_in", Confidence: 0.9}); err != nil {
		t.Fatalf("add rule: %v", err)
	}
	if len(engine.Rules()) != 3 {
		t.Errorf("rule count = %d, want 3", len(engine.Rules()))
	}

	if err := engine.AddRule(Rule{Name: "bad", Type: "x", Confidence: 2}); err == nil {
		t.Error("out-of-range confidence was accepted")
	}
	if err := engine.AddRule(Rule{Type: "x", Confidence: 1}); err == nil {
		t.Error("nameless rule was accepted")
	}

	if !engine.RemoveRule("transitive_located_in") {
		t.Error("removing an existing rule reported false")
	}
	if engine.RemoveRule("transitive_located_in") {
		t.Error("removing a missing rule reported true")
	}
	if len(engine.Rules()) != 2 {
		t.Errorf("rule count = %d, want 2 after removal", len(engine.Rules()))
	}
}
