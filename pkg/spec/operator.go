package spec

type (
	Operator       string
	OperatorFamily int
)

const (
	OpEq    Operator = "eq"
	OpNotEq Operator = "neq"
	OpGt    Operator = "gt"
	OpGte   Operator = "gte"
	OpLt    Operator = "lt"
	OpLte   Operator = "lte"

	OpLike     Operator = "like"
	OpNotLike  Operator = "not_like"
	OpILike    Operator = "ilike"
	OpNotILike Operator = "not_ilike"

	OpIn    Operator = "in"
	OpNotIn Operator = "not_in"

	OpBetween    Operator = "between"
	OpNotBetween Operator = "not_between"

	OpIsNull    Operator = "is_null"
	OpIsNotNull Operator = "not_null"

	OpArrayContains    Operator = "array_contains"
	OpArrayContainedBy Operator = "array_contained_by"
	OpArrayOverlaps    Operator = "array_overlaps"
	OpSetContains      Operator = "set_contains"
	OpSetContainedBy   Operator = "set_contained_by"
	OpSetOverlaps      Operator = "set_overlaps"

	OpJSONContains    Operator = "json_contains"
	OpJSONContainedBy Operator = "json_contained_by"
	OpJSONEquals      Operator = "json_equals"
)

const (
	FamilyUnknown OperatorFamily = iota
	FamilyComparison
	FamilyPattern
	FamilyMembership
	FamilyRange
	FamilyNullCheck
	FamilyCollection
	FamilyDocument
)

var operatorFamilies = map[Operator]OperatorFamily{
	OpEq:               FamilyComparison,
	OpNotEq:            FamilyComparison,
	OpGt:               FamilyComparison,
	OpGte:              FamilyComparison,
	OpLt:               FamilyComparison,
	OpLte:              FamilyComparison,
	OpLike:             FamilyPattern,
	OpNotLike:          FamilyPattern,
	OpILike:            FamilyPattern,
	OpNotILike:         FamilyPattern,
	OpIn:               FamilyMembership,
	OpNotIn:            FamilyMembership,
	OpBetween:          FamilyRange,
	OpNotBetween:       FamilyRange,
	OpIsNull:           FamilyNullCheck,
	OpIsNotNull:        FamilyNullCheck,
	OpArrayContains:    FamilyCollection,
	OpArrayContainedBy: FamilyCollection,
	OpArrayOverlaps:    FamilyCollection,
	OpSetContains:      FamilyCollection,
	OpSetContainedBy:   FamilyCollection,
	OpSetOverlaps:      FamilyCollection,
	OpJSONContains:     FamilyDocument,
	OpJSONContainedBy:  FamilyDocument,
	OpJSONEquals:       FamilyDocument,
}

func (o Operator) Family() OperatorFamily { return operatorFamilies[o] }

func (o Operator) IsValid() bool { return o.Family() != FamilyUnknown }

func (o Operator) String() string { return string(o) }

// Operators lists every supported operator.
func Operators() []Operator {
	return []Operator{
		OpEq, OpNotEq, OpGt, OpGte, OpLt, OpLte,
		OpLike, OpNotLike, OpILike, OpNotILike,
		OpIn, OpNotIn,
		OpBetween, OpNotBetween,
		OpIsNull, OpIsNotNull,
		OpArrayContains, OpArrayContainedBy, OpArrayOverlaps,
		OpSetContains, OpSetContainedBy, OpSetOverlaps,
		OpJSONContains, OpJSONContainedBy, OpJSONEquals,
	}
}

func (f OperatorFamily) expectation() string {
	switch f {
	case FamilyComparison:
		return "a scalar (string, number, boolean, time or nil)"
	case FamilyPattern:
		return "a string pattern"
	case FamilyMembership:
		return "an array of scalars"
	case FamilyRange:
		return "a pair of non-nil scalars"
	case FamilyNullCheck:
		return "no value"
	case FamilyCollection:
		return "an array of scalars or a single-key map from a path to an array of scalars"
	case FamilyDocument:
		return "a map of JSON-shaped values"
	default:
		return "a supported operator"
	}
}
