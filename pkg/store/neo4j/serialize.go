package neo4jstore

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/graphein/backend/pkg/logger"
	"github.com/graphein/backend/pkg/model"
	"github.com/graphein/backend/pkg/store"
)

// Neo4j properties hold scalars and flat lists only, so nested structures
// travel as JSON strings (properties_json, source_location_json). Reads
// repair unparseable JSON by nulling the field rather than failing the
// whole record.

func entityProps(e model.Entity) map[string]any {
	props := map[string]any{
		"id":      e.ID.String(),
		"type":    e.Type,
		"name":    e.Name,
		"version": e.Version,
	}
	setIfNotZero(props, "description", e.Description)
	setIfNotZero(props, "personal_notes", e.PersonalNotes)
	setIfNotZero(props, "category", e.Category)
	if e.Importance != 0 {
		props["importance"] = e.Importance
	}
	if e.UnderstandingLevel != 0 {
		props["understanding_level"] = e.UnderstandingLevel
	}
	if tags := store.DedupeStrings(e.Tags); len(tags) > 0 {
		props["tags"] = toAnySlice(tags)
	}
	if len(e.Properties) > 0 {
		props["properties_json"] = marshalJSON(e.Properties)
	}
	if e.PreviousVersion != nil {
		props["previous_version"] = e.PreviousVersion.String()
	}
	sourceRefProps(props, e.SourceRef)
	props["created_at"] = e.CreatedAt.UTC().Format(time.RFC3339Nano)
	props["updated_at"] = e.UpdatedAt.UTC().Format(time.RFC3339Nano)
	return props
}

func entityFromProps(props map[string]any, labels []string) (*model.Entity, error) {
	id, err := uuid.Parse(getString(props, "id"))
	if err != nil {
		return nil, fmt.Errorf("neo4j: entity id: %w", err)
	}

	e := model.Entity{
		ID:                 id,
		Type:               getString(props, "type"),
		Name:               getString(props, "name"),
		Description:        getString(props, "description"),
		PersonalNotes:      getString(props, "personal_notes"),
		Category:           getString(props, "category"),
		Importance:         getInt(props, "importance"),
		UnderstandingLevel: getInt(props, "understanding_level"),
		Version:            getInt(props, "version"),
		CreatedAt:          getTime(props, "created_at"),
		UpdatedAt:          getTime(props, "updated_at"),
	}
	if e.Type == "" {
		e.Type = typeFromLabels(labels)
	}
	e.Tags = toStringSlice(props["tags"])
	e.Properties = unmarshalMap(props, "properties_json")
	if raw := getString(props, "previous_version"); raw != "" {
		if prev, err := uuid.Parse(raw); err == nil {
			e.PreviousVersion = &prev
		}
	}
	e.SourceRef = sourceRefFromProps(props)
	return &e, nil
}

func relationshipProps(r model.Relationship) map[string]any {
	props := map[string]any{
		"id":        r.ID.String(),
		"certainty": r.Certainty,
		"version":   r.Version,
	}
	if r.Bidirectional {
		props["bidirectional"] = true
	}
	setIfNotZero(props, "evidence", r.Evidence)
	if len(r.Properties) > 0 {
		props["properties_json"] = marshalJSON(r.Properties)
	}
	if r.StartTime != nil {
		props["start_time"] = r.StartTime.UTC().Format(time.RFC3339Nano)
	}
	if r.EndTime != nil {
		props["end_time"] = r.EndTime.UTC().Format(time.RFC3339Nano)
	}
	if r.PreviousVersion != nil {
		props["previous_version"] = r.PreviousVersion.String()
	}
	sourceRefProps(props, r.SourceRef)
	props["created_at"] = r.CreatedAt.UTC().Format(time.RFC3339Nano)
	props["updated_at"] = r.UpdatedAt.UTC().Format(time.RFC3339Nano)
	return props
}

func relationshipFromProps(props map[string]any, relType, sourceID, targetID string) (*model.Relationship, error) {
	id, err := uuid.Parse(getString(props, "id"))
	if err != nil {
		return nil, fmt.Errorf("neo4j: relationship id: %w", err)
	}
	src, err := uuid.Parse(sourceID)
	if err != nil {
		return nil, fmt.Errorf("neo4j: relationship source id: %w", err)
	}
	tgt, err := uuid.Parse(targetID)
	if err != nil {
		return nil, fmt.Errorf("neo4j: relationship target id: %w", err)
	}

	r := model.Relationship{
		ID:             id,
		Type:           relType,
		EntitySourceID: src,
		EntityTargetID: tgt,
		Bidirectional:  getBool(props, "bidirectional"),
		Certainty:      getFloat(props, "certainty"),
		Evidence:       getString(props, "evidence"),
		Version:        getInt(props, "version"),
		CreatedAt:      getTime(props, "created_at"),
		UpdatedAt:      getTime(props, "updated_at"),
	}
	r.Properties = unmarshalMap(props, "properties_json")
	if t := getTimePtr(props, "start_time"); t != nil {
		r.StartTime = t
	}
	if t := getTimePtr(props, "end_time"); t != nil {
		r.EndTime = t
	}
	if raw := getString(props, "previous_version"); raw != "" {
		if prev, err := uuid.Parse(raw); err == nil {
			r.PreviousVersion = &prev
		}
	}
	r.SourceRef = sourceRefFromProps(props)
	return &r, nil
}

func sourceRefProps(props map[string]any, ref model.SourceRef) {
	if ref.SourceID != uuid.Nil {
		props["source_id"] = ref.SourceID.String()
	}
	setIfNotZero(props, "source_type", ref.SourceType)
	setIfNotZero(props, "extraction_method", ref.ExtractionMethod)
	if ref.Confidence != 0 {
		props["confidence"] = ref.Confidence
	}
	if ref.SourceLocation != nil {
		props["source_location_json"] = marshalJSON(ref.SourceLocation)
	}
}

func sourceRefFromProps(props map[string]any) model.SourceRef {
	ref := model.SourceRef{
		SourceType:       getString(props, "source_type"),
		ExtractionMethod: getString(props, "extraction_method"),
		Confidence:       getFloat(props, "confidence"),
	}
	if raw := getString(props, "source_id"); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			ref.SourceID = id
		}
	}
	if raw := getString(props, "source_location_json"); raw != "" {
		var loc model.SourceLocation
		if err := json.Unmarshal([]byte(raw), &loc); err != nil {
			logger.Warn("[Neo4j] Dropping unparseable source location", "err", err)
		} else {
			ref.SourceLocation = &loc
		}
	}
	return ref
}

func typeFromLabels(labels []string) string {
	for _, l := range labels {
		if l != "Entity" {
			return l
		}
	}
	return ""
}

func marshalJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		logger.Warn("[Neo4j] Failed to serialize nested value", "err", err)
		return ""
	}
	return string(data)
}

func unmarshalMap(props map[string]any, key string) map[string]any {
	raw := getString(props, key)
	if raw == "" {
		return nil
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		logger.Warn("[Neo4j] Dropping unparseable nested value", "key", key, "err", err)
		return nil
	}
	return out
}

func setIfNotZero(props map[string]any, key, value string) {
	if value != "" {
		props[key] = value
	}
}

func toAnySlice(in []string) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}

func toStringSlice(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func getString(props map[string]any, key string) string {
	s, _ := props[key].(string)
	return s
}

func getBool(props map[string]any, key string) bool {
	b, _ := props[key].(bool)
	return b
}

func getInt(props map[string]any, key string) int {
	switch v := props[key].(type) {
	case int64:
		return int(v)
	case int:
		return v
	case float64:
		return int(v)
	}
	return 0
}

func getFloat(props map[string]any, key string) float64 {
	switch v := props[key].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	}
	return 0
}

func getTime(props map[string]any, key string) time.Time {
	if t := getTimePtr(props, key); t != nil {
		return *t
	}
	return time.Time{}
}

func getTimePtr(props map[string]any, key string) *time.Time {
	raw := getString(props, key)
	if raw == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return nil
	}
	return &t
}
