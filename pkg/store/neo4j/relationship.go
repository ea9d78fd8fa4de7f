package neo4jstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/graphein/backend/pkg/model"
	"github.com/graphein/backend/pkg/store"
)

// CreateRelationship creates a typed edge between two existing entities.
// Returns store.ErrNotFound when either endpoint is missing. Self-loops are
// rejected.
func (s *Store) CreateRelationship(ctx context.Context, rel model.Relationship) error {
	if rel.EntitySourceID == rel.EntityTargetID {
		return fmt.Errorf("neo4j: relationship source and target are the same entity")
	}
	relType, err := cypherIdent(rel.Type)
	if err != nil {
		return err
	}

	session := s.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	_, err = session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx,
			"MATCH (s:Entity {id: $source_id}), (t:Entity {id: $target_id}) "+
				"CREATE (s)-[r:`"+relType+"`]->(t) SET r = $props",
			map[string]any{
				"source_id": rel.EntitySourceID.String(),
				"target_id": rel.EntityTargetID.String(),
				"props":     relationshipProps(rel),
			})
		if err != nil {
			return nil, err
		}
		summary, err := res.Consume(ctx)
		if err != nil {
			return nil, err
		}
		if summary.Counters().RelationshipsCreated() == 0 {
			return nil, store.ErrNotFound
		}
		return nil, nil
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("neo4j: create relationship: endpoint missing: %w", store.ErrNotFound)
		}
		return fmt.Errorf("neo4j: create relationship: %w", err)
	}
	return nil
}

func (s *Store) ReadRelationship(ctx context.Context, id uuid.UUID) (*model.Relationship, error) {
	session := s.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	record, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx,
			"MATCH (s:Entity)-[r {id: $id}]->(t:Entity) "+
				"RETURN r{.*} AS props, type(r) AS rel_type, s.id AS source_id, t.id AS target_id",
			map[string]any{"id": id.String()})
		if err != nil {
			return nil, err
		}
		rec, err := singleRecord(ctx, res)
		if err != nil || rec == nil {
			return nil, err
		}
		return rec, nil
	})
	if err != nil {
		return nil, fmt.Errorf("neo4j: read relationship: %w", err)
	}
	rec, ok := record.(*neo4j.Record)
	if !ok {
		return nil, nil
	}
	return relationshipFromRecord(rec)
}

// UpdateRelationship replaces the edge's properties. A type change
// recreates the edge between the same endpoints under its new type while
// keeping the id stable.
func (s *Store) UpdateRelationship(ctx context.Context, id uuid.UUID, rel model.Relationship) (*model.Relationship, error) {
	newType, err := cypherIdent(rel.Type)
	if err != nil {
		return nil, err
	}

	rel.ID = id
	rel.UpdatedAt = time.Now().UTC()

	session := s.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	result, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx,
			"MATCH (s:Entity)-[r {id: $id}]->(t:Entity) "+
				"RETURN type(r) AS rel_type, s.id AS source_id, t.id AS target_id",
			map[string]any{"id": id.String()})
		if err != nil {
			return nil, err
		}
		rec, err := singleRecord(ctx, res)
		if err != nil || rec == nil {
			return nil, err
		}

		oldType := recordString(rec, "rel_type")
		sourceID := recordString(rec, "source_id")
		targetID := recordString(rec, "target_id")

		if oldType == rel.Type {
			upd, err := tx.Run(ctx,
				"MATCH ()-[r {id: $id}]->() SET r = $props",
				map[string]any{"id": id.String(), "props": relationshipProps(rel)})
			if err != nil {
				return nil, err
			}
			if err := consume(ctx, upd); err != nil {
				return nil, err
			}
		} else {
			upd, err := tx.Run(ctx,
				"MATCH (s:Entity {id: $source_id})-[r {id: $id}]->(t:Entity {id: $target_id}) "+
					"DELETE r CREATE (s)-[n:`"+newType+"`]->(t) SET n = $props",
				map[string]any{
					"id":        id.String(),
					"source_id": sourceID,
					"target_id": targetID,
					"props":     relationshipProps(rel),
				})
			if err != nil {
				return nil, err
			}
			if err := consume(ctx, upd); err != nil {
				return nil, err
			}
		}

		src, err := uuid.Parse(sourceID)
		if err != nil {
			return nil, fmt.Errorf("source id: %w", err)
		}
		tgt, err := uuid.Parse(targetID)
		if err != nil {
			return nil, fmt.Errorf("target id: %w", err)
		}
		rel.EntitySourceID = src
		rel.EntityTargetID = tgt
		return &rel, nil
	})
	if err != nil {
		return nil, fmt.Errorf("neo4j: update relationship: %w", err)
	}
	updated, ok := result.(*model.Relationship)
	if !ok {
		return nil, nil
	}
	return updated, nil
}

func (s *Store) FindRelationships(ctx context.Context, query store.RelationshipQuery) ([]model.Relationship, error) {
	match := "MATCH (s:Entity)-[r]->(t:Entity)"
	if query.Type != "" {
		relType, err := cypherIdent(query.Type)
		if err != nil {
			return nil, err
		}
		match = "MATCH (s:Entity)-[r:`" + relType + "`]->(t:Entity)"
	}

	where := ""
	params := map[string]any{}
	if query.EntityID != uuid.Nil {
		where = " WHERE s.id = $entity_id OR t.id = $entity_id"
		params["entity_id"] = query.EntityID.String()
	}

	limit := query.Limit
	if limit <= 0 || limit > findLimitCap {
		limit = findLimitCap
	}
	params["limit"] = limit

	cypher := match + where +
		" RETURN r{.*} AS props, type(r) AS rel_type, s.id AS source_id, t.id AS target_id" +
		" ORDER BY r.created_at LIMIT $limit"

	session := s.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	records, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("neo4j: find relationships: %w", err)
	}

	var relationships []model.Relationship
	for _, rec := range records.([]*neo4j.Record) {
		rel, err := relationshipFromRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("neo4j: find relationships: %w", err)
		}
		relationships = append(relationships, *rel)
	}
	return relationships, nil
}

func relationshipFromRecord(rec *neo4j.Record) (*model.Relationship, error) {
	propsRaw, _ := rec.Get("props")
	props, _ := propsRaw.(map[string]any)
	return relationshipFromProps(props,
		recordString(rec, "rel_type"),
		recordString(rec, "source_id"),
		recordString(rec, "target_id"))
}

func recordString(rec *neo4j.Record, key string) string {
	v, _ := rec.Get(key)
	s, _ := v.(string)
	return s
}
