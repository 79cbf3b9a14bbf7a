package spec

import (
	"reflect"
	"time"
)

type undefinedValue struct{}

func (undefinedValue) String() string { return "undefined" }

// Undefined marks a value that was never given. It is distinct from nil,
// which stands for a null comparison value.
var Undefined = undefinedValue{}

func IsUndefined(v any) bool {
	_, ok := v.(undefinedValue)

	return ok
}

// Range is the value shape of the between operators.
type Range struct {
	From any
	To   any
}

// PathValues is the map form of a collection operator value: the single key
// is a nested path, the values are compared against the collection at it.
type PathValues struct {
	Path   string
	Values []any
}

func isScalar(v any) bool {
	if v == nil {
		return true
	}

	switch v.(type) {
	case time.Time, *time.Time:
		return true
	case undefinedValue:
		return false
	}

	switch reflect.ValueOf(v).Kind() {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}

func scalarSlice(v any) ([]any, bool) {
	if v == nil {
		return nil, false
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}

	out := make([]any, rv.Len())
	for i := range rv.Len() {
		item := rv.Index(i).Interface()
		if !isScalar(item) {
			return nil, false
		}

		out[i] = item
	}

	return out, true
}

func toRange(v any) (Range, bool) {
	var from, to any

	switch r := v.(type) {
	case Range:
		from, to = r.From, r.To
	case *Range:
		if r == nil {
			return Range{}, false
		}

		from, to = r.From, r.To
	default:
		items, ok := scalarSlice(v)
		if !ok || len(items) != 2 {
			return Range{}, false
		}

		from, to = items[0], items[1]
	}

	if from == nil || to == nil || !isScalar(from) || !isScalar(to) {
		return Range{}, false
	}

	return Range{From: from, To: to}, true
}

func toCollection(v any) (any, bool) {
	if items, ok := scalarSlice(v); ok {
		return items, true
	}

	if pv, ok := v.(PathValues); ok {
		if pv.Path == "" {
			return nil, false
		}

		items, ok := scalarSlice(pv.Values)
		if !ok {
			return nil, false
		}

		return PathValues{Path: pv.Path, Values: items}, true
	}

	rv := reflect.ValueOf(v)
	if v == nil || rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String || rv.Len() != 1 {
		return nil, false
	}

	iter := rv.MapRange()
	iter.Next()

	path := iter.Key().String()
	items, ok := scalarSlice(iter.Value().Interface())

	if path == "" || !ok {
		return nil, false
	}

	return PathValues{Path: path, Values: items}, true
}

// isDocument reports whether v is a string-keyed map whose values are
// themselves JSON-shaped.
func isDocument(v any) bool {
	if v == nil {
		return false
	}

	rv := reflect.ValueOf(v)

	return rv.Kind() == reflect.Map && isJSONShaped(rv, 0)
}

const maxDocumentDepth = 64

func isJSONShaped(rv reflect.Value, depth int) bool {
	if depth > maxDocumentDepth {
		return false
	}

	if rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return true
		}

		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Invalid:
		return true
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	case reflect.Slice, reflect.Array:
		for i := range rv.Len() {
			if !isJSONShaped(rv.Index(i), depth+1) {
				return false
			}
		}

		return true
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return false
		}

		iter := rv.MapRange()
		for iter.Next() {
			if !isJSONShaped(iter.Value(), depth+1) {
				return false
			}
		}

		return true
	default:
		return false
	}
}

// normalizeValue checks value against the operator contract and returns the
// stored representation.
func normalizeValue(op Operator, value any) (any, bool) {
	switch op.Family() {
	case FamilyComparison:
		if !isScalar(value) {
			return nil, false
		}

		if t, ok := value.(*time.Time); ok {
			if t == nil {
				return nil, true
			}

			return *t, true
		}

		return value, true
	case FamilyPattern:
		s, ok := value.(string)

		return s, ok
	case FamilyMembership:
		return scalarSlice(value)
	case FamilyRange:
		return toRange(value)
	case FamilyNullCheck:
		return Undefined, IsUndefined(value)
	case FamilyCollection:
		return toCollection(value)
	case FamilyDocument:
		return value, isDocument(value)
	default:
		return nil, false
	}
}
