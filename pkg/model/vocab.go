package model

// Entity type vocabulary. The list is open: stores accept any type string,
// but the recognizer and the API validate against this catalog, which can be
// extended at runtime via RegisterEntityType.

// Vocabulary categories.
const (
	CategoryBasic    = "basic"
	CategoryDomain   = "domain"
	CategoryPersonal = "personal"
)

// Basic entity types. The recognizer's label mapping always yields a type
// from this set.
const (
	EntityTypePerson       = "person"
	EntityTypeOrganization = "organization"
	EntityTypeLocation     = "location"
	EntityTypeConcept      = "concept"
	EntityTypeTime         = "time"
	EntityTypeEvent        = "event"
)

var entityTypeCategories = map[string]string{
	EntityTypePerson:       CategoryBasic,
	EntityTypeOrganization: CategoryBasic,
	EntityTypeLocation:     CategoryBasic,
	EntityTypeConcept:      CategoryBasic,
	EntityTypeTime:         CategoryBasic,
	EntityTypeEvent:        CategoryBasic,

	"technology": CategoryDomain,
	"theory":     CategoryDomain,
	"method":     CategoryDomain,
	"problem":    CategoryDomain,
	"tool":       CategoryDomain,
	"solution":   CategoryDomain,

	"note":     CategoryPersonal,
	"question": CategoryPersonal,
	"idea":     CategoryPersonal,
	"goal":     CategoryPersonal,
	"plan":     CategoryPersonal,
}

// RegisterEntityType adds a type to the vocabulary under the given category.
// Registering an existing type moves it to the new category.
func RegisterEntityType(entityType, category string) {
	entityTypeCategories[entityType] = category
}

// KnownEntityType reports whether the type is part of the vocabulary.
func KnownEntityType(entityType string) bool {
	_, ok := entityTypeCategories[entityType]
	return ok
}

// EntityTypeCategory returns the category bucket for a type, or "" for
// unknown types.
func EntityTypeCategory(entityType string) string {
	return entityTypeCategories[entityType]
}

// EntityTypes returns all vocabulary types in the given category, or every
// type when category is empty.
func EntityTypes(category string) []string {
	types := make([]string, 0, len(entityTypeCategories))
	for t, c := range entityTypeCategories {
		if category == "" || c == category {
			types = append(types, t)
		}
	}
	return types
}

// Common relationship types. The edge vocabulary is open; these are the
// types the inferrer emits.
const (
	RelationTypeIsA         = "is_a"
	RelationTypePartOf      = "part_of"
	RelationTypeAttributeOf = "attribute_of"
	RelationTypeDependsOn   = "depends_on"
	RelationTypeLocatedIn   = "located_in"
	RelationTypeCreatedBy   = "created_by"
	RelationTypeWorksFor    = "works_for"
	RelationTypeRelatedTo   = "related_to"
	RelationTypeHasRelation = "has_relation"
)
