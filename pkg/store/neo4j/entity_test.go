package neo4jstore

import (
	"context"
	"os"
	"slices"
	"testing"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/graphein/backend/pkg/model"
)

func TestRelabelClause(t *testing.T) {
	tests := []struct {
		name     string
		labels   []string
		newLabel string
		want     string
	}{
		{
			name:     "single stale type label",
			labels:   []string{"Entity", "concept"},
			newLabel: "time",
			want:     " REMOVE e:`concept`",
		},
		{
			name:     "multiple stale type labels",
			labels:   []string{"Entity", "concept", "person"},
			newLabel: "time",
			want:     " REMOVE e:`concept`, e:`person`",
		},
		{
			name:     "type unchanged",
			labels:   []string{"Entity", "time"},
			newLabel: "time",
			want:     "",
		},
		{
			name:     "new label kept while others go",
			labels:   []string{"Entity", "time", "person"},
			newLabel: "time",
			want:     " REMOVE e:`person`",
		},
		{
			name:     "no type label yet",
			labels:   []string{"Entity"},
			newLabel: "person",
			want:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := relabelClause(tt.labels, tt.newLabel)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("relabelClause(%v, %q) = %q, want %q", tt.labels, tt.newLabel, got, tt.want)
			}
		})
	}
}

func TestRelabelClauseRejectsInvalidLabel(t *testing.T) {
	if _, err := relabelClause([]string{"Entity", "bad-label"}, "time"); err == nil {
		t.Error("expected error for a label that is not a plain identifier")
	}
}

// newIntegrationStore connects to the Neo4j instance named by NEO4J_TEST_URI
// and skips the test when none is configured.
func newIntegrationStore(t *testing.T) *Store {
	t.Helper()

	uri := os.Getenv("NEO4J_TEST_URI")
	if uri == "" {
		t.Skip("NEO4J_TEST_URI not set")
	}

	ctx := context.Background()
	s, err := New(ctx, Config{
		URI:      uri,
		Username: os.Getenv("NEO4J_TEST_USER"),
		Password: os.Getenv("NEO4J_TEST_PASSWORD"),
		Database: os.Getenv("NEO4J_TEST_DATABASE"),
	})
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	t.Cleanup(func() { s.Close(context.Background()) })
	return s
}

func TestDeleteIdempotent(t *testing.T) {
	s := newIntegrationStore(t)
	ctx := context.Background()

	entity := model.NewEntity("concept", "delete target")
	if err := s.CreateEntity(ctx, entity); err != nil {
		t.Fatalf("create entity: %v", err)
	}

	removed, err := s.Delete(ctx, entity.ID)
	if err != nil {
		t.Fatalf("first delete: %v", err)
	}
	if !removed {
		t.Error("first delete reported nothing removed")
	}

	removed, err = s.Delete(ctx, entity.ID)
	if err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if removed {
		t.Error("second delete reported a removal for an already deleted id")
	}
}

func TestDeleteRelationshipIdempotent(t *testing.T) {
	s := newIntegrationStore(t)
	ctx := context.Background()

	source := model.NewEntity("person", "rel source")
	target := model.NewEntity("organization", "rel target")
	for _, e := range []model.Entity{source, target} {
		if err := s.CreateEntity(ctx, e); err != nil {
			t.Fatalf("create entity: %v", err)
		}
	}
	t.Cleanup(func() {
		s.Delete(context.Background(), source.ID)
		s.Delete(context.Background(), target.ID)
	})

	rel := model.NewRelationship("works_for", source.ID, target.ID)
	if err := s.CreateRelationship(ctx, rel); err != nil {
		t.Fatalf("create relationship: %v", err)
	}

	removed, err := s.Delete(ctx, rel.ID)
	if err != nil {
		t.Fatalf("first delete: %v", err)
	}
	if !removed {
		t.Error("first delete reported nothing removed")
	}

	removed, err = s.Delete(ctx, rel.ID)
	if err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if removed {
		t.Error("second delete reported a removal for an already deleted id")
	}
}

func TestUpdateEntityLabelConsistency(t *testing.T) {
	s := newIntegrationStore(t)
	ctx := context.Background()

	entity := model.NewEntity("concept", "relabel target")
	if err := s.CreateEntity(ctx, entity); err != nil {
		t.Fatalf("create entity: %v", err)
	}
	t.Cleanup(func() { s.Delete(context.Background(), entity.ID) })

	// Simulate a node that accumulated an extra type label.
	session := s.session(ctx, neo4j.AccessModeWrite)
	res, err := session.Run(ctx,
		"MATCH (e:Entity {id: $id}) SET e:person",
		map[string]any{"id": entity.ID.String()})
	if err == nil {
		_, err = res.Consume(ctx)
	}
	session.Close(ctx)
	if err != nil {
		t.Fatalf("add extra label: %v", err)
	}

	updated := entity
	updated.Type = "time"
	if _, err := s.UpdateEntity(ctx, entity.ID, updated); err != nil {
		t.Fatalf("update entity: %v", err)
	}

	labels := entityLabels(t, s, entity.ID)
	slices.Sort(labels)
	want := []string{"Entity", "time"}
	if !slices.Equal(labels, want) {
		t.Errorf("labels after type change = %v, want %v", labels, want)
	}
}

func entityLabels(t *testing.T, s *Store, id uuid.UUID) []string {
	t.Helper()

	ctx := context.Background()
	session := s.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	records, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx,
			"MATCH (e:Entity {id: $id}) RETURN labels(e) AS labels",
			map[string]any{"id": id.String()})
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		t.Fatalf("read labels: %v", err)
	}

	recs := records.([]*neo4j.Record)
	if len(recs) != 1 {
		t.Fatalf("got %d nodes for id %s, want 1", len(recs), id.String())
	}
	raw, _ := recs[0].Get("labels")
	return toStringSlice(raw)
}
