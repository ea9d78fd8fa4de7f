package neo4jstore

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/graphein/backend/pkg/model"
	"github.com/graphein/backend/pkg/store"
)

const findLimitCap = 100

// Labels and relationship types cannot be parameterized in Cypher, so any
// value interpolated into a query must be a plain identifier.
var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func cypherIdent(name string) (string, error) {
	if !identPattern.MatchString(name) {
		return "", fmt.Errorf("neo4j: invalid identifier %q", name)
	}
	return name, nil
}

func (s *Store) CreateEntity(ctx context.Context, entity model.Entity) error {
	label, err := cypherIdent(entity.Type)
	if err != nil {
		return err
	}

	session := s.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	_, err = session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx,
			"CREATE (e:Entity:`"+label+"`) SET e = $props",
			map[string]any{"props": entityProps(entity)})
		if err != nil {
			return nil, err
		}
		return nil, consume(ctx, res)
	})
	if err != nil {
		return fmt.Errorf("neo4j: create entity: %w", err)
	}
	return nil
}

func (s *Store) ReadEntity(ctx context.Context, id uuid.UUID) (*model.Entity, error) {
	session := s.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	record, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx,
			"MATCH (e:Entity {id: $id}) RETURN e{.*} AS props, labels(e) AS labels",
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
		return nil, fmt.Errorf("neo4j: read entity: %w", err)
	}
	rec, ok := record.(*neo4j.Record)
	if !ok {
		return nil, nil
	}

	props, labels := recordNode(rec)
	return entityFromProps(props, labels)
}

// relabelClause builds the REMOVE clause stripping every type label except
// newLabel from a node bound as e. Nodes carry the generic Entity label
// plus exactly one type label, so all other labels are stale and go.
// Returns "" when there is nothing to remove.
func relabelClause(labels []string, newLabel string) (string, error) {
	var removes []string
	for _, label := range labels {
		if label == "Entity" || label == newLabel {
			continue
		}
		ident, err := cypherIdent(label)
		if err != nil {
			return "", err
		}
		removes = append(removes, "e:`"+ident+"`")
	}
	if len(removes) == 0 {
		return "", nil
	}
	return " REMOVE " + strings.Join(removes, ", "), nil
}

// UpdateEntity replaces the node's properties and relabels it when the type
// changed. Every prior type label is removed before the new one is added so
// the node ends up with exactly one type label.
func (s *Store) UpdateEntity(ctx context.Context, id uuid.UUID, entity model.Entity) (*model.Entity, error) {
	newLabel, err := cypherIdent(entity.Type)
	if err != nil {
		return nil, err
	}

	entity.ID = id
	entity.UpdatedAt = time.Now().UTC()

	session := s.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	found, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx,
			"MATCH (e:Entity {id: $id}) RETURN labels(e) AS labels",
			map[string]any{"id": id.String()})
		if err != nil {
			return nil, err
		}
		rec, err := singleRecord(ctx, res)
		if err != nil || rec == nil {
			return false, err
		}

		var labels []string
		if raw, ok := rec.Get("labels"); ok {
			labels = toStringSlice(raw)
		}
		remove, err := relabelClause(labels, newLabel)
		if err != nil {
			return nil, err
		}

		query := "MATCH (e:Entity {id: $id})" + remove +
			" SET e = $props SET e:Entity:`" + newLabel + "`"

		upd, err := tx.Run(ctx, query, map[string]any{
			"id":    id.String(),
			"props": entityProps(entity),
		})
		if err != nil {
			return nil, err
		}
		return true, consume(ctx, upd)
	})
	if err != nil {
		return nil, fmt.Errorf("neo4j: update entity: %w", err)
	}
	if ok, _ := found.(bool); !ok {
		return nil, nil
	}
	return &entity, nil
}

// Delete removes the entity node or relationship with the given id. Node
// deletion detaches all connected edges first.
func (s *Store) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	session := s.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	deleted, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx,
			"MATCH (e:Entity {id: $id}) DETACH DELETE e",
			map[string]any{"id": id.String()})
		if err != nil {
			return nil, err
		}
		summary, err := res.Consume(ctx)
		if err != nil {
			return nil, err
		}
		if summary.Counters().NodesDeleted() > 0 {
			return true, nil
		}

		res, err = tx.Run(ctx,
			"MATCH ()-[r {id: $id}]->() DELETE r",
			map[string]any{"id": id.String()})
		if err != nil {
			return nil, err
		}
		summary, err = res.Consume(ctx)
		if err != nil {
			return nil, err
		}
		return summary.Counters().RelationshipsDeleted() > 0, nil
	})
	if err != nil {
		return false, fmt.Errorf("neo4j: delete: %w", err)
	}
	removed, _ := deleted.(bool)
	return removed, nil
}

func (s *Store) FindEntities(ctx context.Context, query store.EntityQuery) ([]model.Entity, error) {
	match := "MATCH (e:Entity)"
	if query.Type != "" {
		label, err := cypherIdent(query.Type)
		if err != nil {
			return nil, err
		}
		match = "MATCH (e:Entity:`" + label + "`)"
	}

	where := ""
	params := map[string]any{}
	if query.Name != "" {
		where += " WHERE toLower(e.name) CONTAINS toLower($name)"
		params["name"] = query.Name
	}
	if query.Tag != "" {
		if where == "" {
			where = " WHERE"
		} else {
			where += " AND"
		}
		where += " $tag IN e.tags"
		params["tag"] = query.Tag
	}

	limit := query.Limit
	if limit <= 0 || limit > findLimitCap {
		limit = findLimitCap
	}
	params["limit"] = limit

	cypher := match + where + " RETURN e{.*} AS props, labels(e) AS labels ORDER BY e.name LIMIT $limit"

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
		return nil, fmt.Errorf("neo4j: find entities: %w", err)
	}

	var entities []model.Entity
	for _, rec := range records.([]*neo4j.Record) {
		props, labels := recordNode(rec)
		entity, err := entityFromProps(props, labels)
		if err != nil {
			return nil, fmt.Errorf("neo4j: find entities: %w", err)
		}
		entities = append(entities, *entity)
	}
	return entities, nil
}

func recordNode(rec *neo4j.Record) (map[string]any, []string) {
	props, _ := rec.Get("props")
	labelsRaw, _ := rec.Get("labels")
	m, _ := props.(map[string]any)
	return m, toStringSlice(labelsRaw)
}

func singleRecord(ctx context.Context, res neo4j.ResultWithContext) (*neo4j.Record, error) {
	if !res.Next(ctx) {
		return nil, res.Err()
	}
	return res.Record(), nil
}

func consume(ctx context.Context, res neo4j.ResultWithContext) error {
	_, err := res.Consume(ctx)
	return err
}
