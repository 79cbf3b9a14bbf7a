package spec

import (
	"fmt"
	"slices"
)

const maxCursorFields = 2

// CursorField is one key of a keyset boundary. A nil Value is a legitimate
// null comparison value; Undefined is rejected.
type CursorField struct {
	Field string
	Value any
}

func At(field string, value any) CursorField {
	return CursorField{Field: field, Value: value}
}

// Cursor is a keyset pagination boundary on one or two distinct fields.
type Cursor struct {
	fields    []CursorField
	op        Operator
	direction SortDirection
	sequence  int64
}

func newCursor(schema *Schema, fields []CursorField, op Operator, direction SortDirection) (Cursor, error) {
	if len(fields) == 0 || len(fields) > maxCursorFields {
		return Cursor{}, &CursorError{Message: fmt.Sprintf("expected 1 or %d fields, got %d", maxCursorFields, len(fields))}
	}

	if op != OpGt && op != OpLt {
		return Cursor{}, &CursorError{Message: fmt.Sprintf("operator must be %s or %s, got %q", OpGt, OpLt, op)}
	}

	if !direction.IsValid() {
		return Cursor{}, &CursorError{Message: fmt.Sprintf("unknown direction %q", direction)}
	}

	for i, f := range fields {
		if err := schema.checkField(f.Field); err != nil {
			return Cursor{}, &CursorError{Message: fmt.Sprintf("field #%d", i+1), Err: err}
		}

		if IsUndefined(f.Value) {
			return Cursor{}, &CursorError{Message: fmt.Sprintf("value of field %q is not specified", f.Field)}
		}

		if !isScalar(f.Value) {
			return Cursor{}, &CursorError{Message: fmt.Sprintf("value of field %q must be a scalar", f.Field)}
		}
	}

	if len(fields) == 2 && fields[0].Field == fields[1].Field {
		return Cursor{}, &CursorError{Message: fmt.Sprintf("fields must be distinct, %q given twice", fields[0].Field)}
	}

	return Cursor{
		fields:    slices.Clone(fields),
		op:        op,
		direction: direction,
	}, nil
}

func (c Cursor) Fields() []CursorField    { return slices.Clone(c.fields) }
func (c Cursor) Operator() Operator       { return c.op }
func (c Cursor) Direction() SortDirection { return c.direction }
func (c Cursor) Sequence() int64          { return c.sequence }

// Covers reports whether field is one of the cursor keys.
func (c Cursor) Covers(field string) bool {
	return slices.ContainsFunc(c.fields, func(f CursorField) bool { return f.Field == field })
}

// Boundary returns the normalized condition selecting rows past the cursor:
//
//	(f1 op v1)                               one field
//	(f1 op v1) OR (f1 = v1 AND f2 op v2)     two fields
func (c Cursor) Boundary() FilterGroup {
	switch len(c.fields) {
	case 0:
		return FilterGroup{op: LogicalAnd}
	case 1:
		f := c.fields[0]

		return And(newFilter(f.Field, c.op, f.Value))
	default:
		primary, secondary := c.fields[0], c.fields[1]

		return Or(
			And(newFilter(primary.Field, c.op, primary.Value)),
			And(
				newFilter(primary.Field, OpEq, primary.Value),
				newFilter(secondary.Field, c.op, secondary.Value),
			),
		)
	}
}
