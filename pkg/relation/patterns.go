package relation

import (
	"regexp"
	"strings"

	"github.com/graphein/backend/pkg/model"
)

// patternGroup is one ordered rule group: the substring between two entity
// mentions is matched against the group's expressions and the first group
// with a hit determines the relation type.
type patternGroup struct {
	relType  string
	patterns []*regexp.Regexp
}

func compile(exprs ...string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		compiled[i] = regexp.MustCompile(e)
	}
	return compiled
}

// Rule groups are ordered: more specific constructions before generic ones.
var patternGroups = []patternGroup{
	{model.RelationTypeIsA, compile(
		`\bis\s+(a|an|a\s+(kind|type)\s+of)\b`,
		`\bwas\s+(a|an)\b`,
		`是(一种|一个|一名)?`,
		`属于`,
	)},
	{model.RelationTypePartOf, compile(
		`\b(is\s+)?part\s+of\b`,
		`\bbelongs\s+to\b`,
		`的一部分`,
		`(包含|组成)`,
	)},
	{model.RelationTypeAttributeOf, compile(
		`\bis\s+(an\s+attribute|a\s+property)\s+of\b`,
		`的(属性|特征|特性)`,
	)},
	{model.RelationTypeDependsOn, compile(
		`\b(depends|relies)\s+(on|upon)\b`,
		`\brequires\b`,
		`依赖于?`,
		`取决于`,
	)},
	{model.RelationTypeLocatedIn, compile(
		`\b(is\s+)?(located|based|situated)\s+(in|at)\b`,
		`位于`,
	)},
	{model.RelationTypeCreatedBy, compile(
		`\b(created|founded|invented|developed)\s+by\b`,
		`(创建|发明|创立|开发)`,
	)},
}

// typePairTable types relations from the ordered pair of entity types when
// no pattern matches.
var typePairTable = map[[2]string]string{
	{model.EntityTypePerson, model.EntityTypeOrganization}:       model.RelationTypeWorksFor,
	{model.EntityTypePerson, model.EntityTypeLocation}:           model.RelationTypeLocatedIn,
	{model.EntityTypeOrganization, model.EntityTypeLocation}:     model.RelationTypeLocatedIn,
	{model.EntityTypeOrganization, model.EntityTypeOrganization}: model.RelationTypeRelatedTo,
}

// identify determines the relation type and scoring for the text strictly
// between two entity mentions. Pattern hits win; otherwise the type-pair
// table supplies a co-occurrence typing, so every co-occurring pair yields
// some relation.
func identify(between, sourceType, targetType string) (relType, method string, certainty float64) {
	normalized := strings.ToLower(strings.TrimSpace(between))

	for _, group := range patternGroups {
		for _, p := range group.patterns {
			if p.MatchString(normalized) {
				return group.relType, model.MethodPattern, model.Score(model.MethodPattern, group.relType)
			}
		}
	}

	if t, ok := typePairTable[[2]string{sourceType, targetType}]; ok {
		return t, model.MethodCoOccurrence, model.Score(model.MethodCoOccurrence, t)
	}
	if sourceType == targetType {
		return model.RelationTypeRelatedTo, model.MethodCoOccurrence,
			model.Score(model.MethodCoOccurrence, model.RelationTypeRelatedTo)
	}
	return model.RelationTypeHasRelation, model.MethodCoOccurrence,
		model.Score(model.MethodCoOccurrence, model.RelationTypeHasRelation)
}
