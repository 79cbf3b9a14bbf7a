package spec

// Condition is either a Filter or a FilterGroup. The set is closed.
type Condition interface {
	condition()
}

// Filter is one atomic, immutable condition on a field.
type Filter struct {
	field string
	op    Operator
	value any
	err   error
}

func (Filter) condition() {}

// NewFilter validates the value shape required by op.
func NewFilter(field string, op Operator, value any) (Filter, error) {
	f := newFilter(field, op, value)
	if f.err != nil {
		return Filter{}, f.err
	}

	return f, nil
}

func newFilter(field string, op Operator, value any) Filter {
	if field == "" {
		return Filter{op: op, err: &FilterValueError{Operator: op, Expected: "a field name"}}
	}

	if !op.IsValid() {
		return Filter{field: field, op: op, err: &FilterValueError{Field: field, Operator: op, Expected: FamilyUnknown.expectation()}}
	}

	normalized, ok := normalizeValue(op, value)
	if !ok {
		return Filter{field: field, op: op, err: &FilterValueError{Field: field, Operator: op, Expected: op.Family().expectation()}}
	}

	return Filter{field: field, op: op, value: normalized}
}

func (f Filter) Field() string      { return f.field }
func (f Filter) Operator() Operator { return f.op }

// Value returns the normalized value: a scalar, []any, Range, PathValues,
// a JSON-shaped map, or Undefined for the null checks.
func (f Filter) Value() any { return f.value }

// Err returns the shape error captured by the shorthand constructors.
func (f Filter) Err() error { return f.err }

func Eq(field string, value any) Filter    { return newFilter(field, OpEq, value) }
func NotEq(field string, value any) Filter { return newFilter(field, OpNotEq, value) }
func Gt(field string, value any) Filter    { return newFilter(field, OpGt, value) }
func Gte(field string, value any) Filter   { return newFilter(field, OpGte, value) }
func Lt(field string, value any) Filter    { return newFilter(field, OpLt, value) }
func Lte(field string, value any) Filter   { return newFilter(field, OpLte, value) }

func Like(field, pattern string) Filter     { return newFilter(field, OpLike, pattern) }
func NotLike(field, pattern string) Filter  { return newFilter(field, OpNotLike, pattern) }
func ILike(field, pattern string) Filter    { return newFilter(field, OpILike, pattern) }
func NotILike(field, pattern string) Filter { return newFilter(field, OpNotILike, pattern) }

func In(field string, values ...any) Filter    { return newFilter(field, OpIn, values) }
func NotIn(field string, values ...any) Filter { return newFilter(field, OpNotIn, values) }

func Between(field string, from, to any) Filter {
	return newFilter(field, OpBetween, Range{From: from, To: to})
}

func NotBetween(field string, from, to any) Filter {
	return newFilter(field, OpNotBetween, Range{From: from, To: to})
}

func IsNull(field string) Filter    { return newFilter(field, OpIsNull, Undefined) }
func IsNotNull(field string) Filter { return newFilter(field, OpIsNotNull, Undefined) }

func ArrayContains(field string, value any) Filter {
	return newFilter(field, OpArrayContains, value)
}

func ArrayContainedBy(field string, value any) Filter {
	return newFilter(field, OpArrayContainedBy, value)
}

func ArrayOverlaps(field string, value any) Filter {
	return newFilter(field, OpArrayOverlaps, value)
}

func SetContains(field string, value any) Filter {
	return newFilter(field, OpSetContains, value)
}

func SetContainedBy(field string, value any) Filter {
	return newFilter(field, OpSetContainedBy, value)
}

func SetOverlaps(field string, value any) Filter {
	return newFilter(field, OpSetOverlaps, value)
}

func JSONContains(field string, doc map[string]any) Filter {
	return newFilter(field, OpJSONContains, doc)
}

func JSONContainedBy(field string, doc map[string]any) Filter {
	return newFilter(field, OpJSONContainedBy, doc)
}

func JSONEquals(field string, doc map[string]any) Filter {
	return newFilter(field, OpJSONEquals, doc)
}
