package model

// Extraction methods recorded on entities, relationships and traces.
const (
	MethodNERModel     = "ner_model"
	MethodPattern      = "pattern"
	MethodCoOccurrence = "co_occurrence"
	MethodManual       = "manual"
)

// scoreKey identifies one scoring rule: the extraction method plus the rule
// that fired within it.
type scoreKey struct {
	method string
	rule   string
}

// scoreTable centralizes every confidence/certainty default so scoring
// policy is auditable in one place instead of scattered magic numbers.
var scoreTable = map[scoreKey]float64{
	{MethodNERModel, "default"}: 0.85,

	{MethodPattern, RelationTypeIsA}:         0.8,
	{MethodPattern, RelationTypePartOf}:      0.7,
	{MethodPattern, RelationTypeAttributeOf}: 0.7,
	{MethodPattern, RelationTypeDependsOn}:   0.7,
	{MethodPattern, RelationTypeLocatedIn}:   0.7,
	{MethodPattern, RelationTypeCreatedBy}:   0.7,

	{MethodCoOccurrence, RelationTypeWorksFor}:    0.5,
	{MethodCoOccurrence, RelationTypeLocatedIn}:   0.5,
	{MethodCoOccurrence, RelationTypeRelatedTo}:   0.4,
	{MethodCoOccurrence, RelationTypeHasRelation}: 0.4,

	{MethodManual, "default"}: 1.0,
}

// Score returns the configured confidence for an extraction method and rule.
// Unknown combinations fall back to the method's "default" row, then to 0.5.
func Score(method, rule string) float64 {
	if s, ok := scoreTable[scoreKey{method, rule}]; ok {
		return s
	}
	if s, ok := scoreTable[scoreKey{method, "default"}]; ok {
		return s
	}
	return 0.5
}

// SetScore overrides a scoring rule. Intended for configuration loading and
// tests.
func SetScore(method, rule string, score float64) {
	scoreTable[scoreKey{method, rule}] = score
}
