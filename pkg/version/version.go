// Package version maintains the revision chain of entities. Every update
// creates a new node whose previous_version points at the superseded one,
// so the full edit history of an entity stays queryable.
package version

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/google/uuid"

	"github.com/graphein/backend/pkg/model"
	"github.com/graphein/backend/pkg/store"
)

// maxChainLength bounds history walks so a corrupted previous_version
// cycle cannot loop forever.
const maxChainLength = 1000

// Service creates and inspects entity revisions on top of a graph store.
type Service struct {
	graph store.GraphStore
}

func NewService(graph store.GraphStore) *Service {
	return &Service{graph: graph}
}

// NewRevision persists updated as a new revision of the entity with the
// given id. The new node gets a fresh id, version+1 and previous_version
// pointing at the superseded node, which is left in place. Returns the
// stored revision, or store.ErrNotFound when id does not exist.
func (s *Service) NewRevision(ctx context.Context, id uuid.UUID, updated model.Entity) (*model.Entity, error) {
	current, err := s.graph.ReadEntity(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, fmt.Errorf("version: entity %s: %w", id, store.ErrNotFound)
	}

	now := time.Now().UTC()
	revision := updated
	revision.ID = uuid.New()
	revision.Version = current.Version + 1
	prev := current.ID
	revision.PreviousVersion = &prev
	revision.CreatedAt = current.CreatedAt
	revision.UpdatedAt = now

	if err := s.graph.CreateEntity(ctx, revision); err != nil {
		return nil, fmt.Errorf("version: persist revision: %w", err)
	}
	return &revision, nil
}

// History returns the revision chain starting at id, newest first, by
// following previous_version links. The walk stops at the first revision,
// at a broken link, or at the chain length bound.
func (s *Service) History(ctx context.Context, id uuid.UUID) ([]model.Entity, error) {
	var chain []model.Entity
	visited := make(map[uuid.UUID]struct{})

	next := &id
	for next != nil && len(chain) < maxChainLength {
		if _, seen := visited[*next]; seen {
			return nil, fmt.Errorf("version: revision cycle at %s", *next)
		}
		visited[*next] = struct{}{}

		entity, err := s.graph.ReadEntity(ctx, *next)
		if err != nil {
			return nil, err
		}
		if entity == nil {
			// Broken link: the rest of the chain was deleted.
			break
		}
		chain = append(chain, *entity)
		next = entity.PreviousVersion
	}

	if len(chain) == 0 {
		return nil, fmt.Errorf("version: entity %s: %w", id, store.ErrNotFound)
	}
	return chain, nil
}

// FieldChange records one differing field between two revisions.
type FieldChange struct {
	Field string `json:"field"`
	From  any    `json:"from"`
	To    any    `json:"to"`
}

// Diff lists the fields that changed between two revisions of an entity.
type Diff struct {
	FromID      uuid.UUID     `json:"from_id"`
	ToID        uuid.UUID     `json:"to_id"`
	FromVersion int           `json:"from_version"`
	ToVersion   int           `json:"to_version"`
	Changes     []FieldChange `json:"changes"`
}

// Compare diffs two revisions by id. Both must exist.
func (s *Service) Compare(ctx context.Context, fromID, toID uuid.UUID) (*Diff, error) {
	from, err := s.graph.ReadEntity(ctx, fromID)
	if err != nil {
		return nil, err
	}
	if from == nil {
		return nil, fmt.Errorf("version: entity %s: %w", fromID, store.ErrNotFound)
	}
	to, err := s.graph.ReadEntity(ctx, toID)
	if err != nil {
		return nil, err
	}
	if to == nil {
		return nil, fmt.Errorf("version: entity %s: %w", toID, store.ErrNotFound)
	}

	diff := &Diff{
		FromID:      from.ID,
		ToID:        to.ID,
		FromVersion: from.Version,
		ToVersion:   to.Version,
		Changes:     CompareEntities(*from, *to),
	}
	return diff, nil
}

// CompareEntities lists the content fields differing between two entity
// snapshots. Identity and bookkeeping fields (id, version links,
// timestamps) are not part of the diff.
func CompareEntities(from, to model.Entity) []FieldChange {
	var changes []FieldChange

	add := func(field string, a, b any) {
		if !reflect.DeepEqual(a, b) {
			changes = append(changes, FieldChange{Field: field, From: a, To: b})
		}
	}

	add("type", from.Type, to.Type)
	add("name", from.Name, to.Name)
	add("description", from.Description, to.Description)
	add("properties", from.Properties, to.Properties)
	add("tags", from.Tags, to.Tags)
	add("importance", from.Importance, to.Importance)
	add("understanding_level", from.UnderstandingLevel, to.UnderstandingLevel)
	add("personal_notes", from.PersonalNotes, to.PersonalNotes)
	add("category", from.Category, to.Category)

	return changes
}
