package sqlbuilder

import (
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/architeacher/queryspec/pkg/spec"
	"github.com/goccy/go-json"
)

// conditionVisitor renders the filters of one node. Array operators target
// native array columns; set operators and path values target JSONB arrays.
type conditionVisitor struct {
	v    *visitor
	node *spec.Node
}

func (c conditionVisitor) VisitFilterGroup(g spec.FilterGroup, _ sq.Sqlizer) (sq.Sqlizer, error) {
	parts := make([]sq.Sqlizer, 0, g.Len())

	for _, item := range g.Items() {
		part, err := spec.AcceptCondition[sq.Sqlizer](item, c, nil)
		if err != nil {
			return nil, err
		}

		if part != nil {
			parts = append(parts, part)
		}
	}

	if g.IsOr() {
		return sq.Or(parts), nil
	}

	return sq.And(parts), nil
}

func (c conditionVisitor) VisitFilter(f spec.Filter, _ sq.Sqlizer) (sq.Sqlizer, error) {
	col := c.v.column(c.node, f.Field())
	value := f.Value()

	switch f.Operator() {
	case spec.OpGt, spec.OpGte, spec.OpLt, spec.OpLte:
		if value == nil {
			return nil, fmt.Errorf("%w: %s against null on field %q", ErrNullComparison, f.Operator(), f.Field())
		}
	}

	switch f.Operator() {
	case spec.OpEq:
		return sq.Eq{col: value}, nil
	case spec.OpNotEq:
		return sq.NotEq{col: value}, nil
	case spec.OpGt:
		return sq.Gt{col: value}, nil
	case spec.OpGte:
		return sq.GtOrEq{col: value}, nil
	case spec.OpLt:
		return sq.Lt{col: value}, nil
	case spec.OpLte:
		return sq.LtOrEq{col: value}, nil
	case spec.OpLike:
		return sq.Like{col: value}, nil
	case spec.OpNotLike:
		return sq.NotLike{col: value}, nil
	case spec.OpILike:
		return sq.ILike{col: value}, nil
	case spec.OpNotILike:
		return sq.NotILike{col: value}, nil
	case spec.OpIn:
		return sq.Eq{col: value}, nil
	case spec.OpNotIn:
		return sq.NotEq{col: value}, nil
	case spec.OpBetween, spec.OpNotBetween:
		r, ok := value.(spec.Range)
		if !ok {
			return nil, shapeError(f)
		}

		keyword := "BETWEEN"
		if f.Operator() == spec.OpNotBetween {
			keyword = "NOT BETWEEN"
		}

		return sq.Expr(col+" "+keyword+" ? AND ?", r.From, r.To), nil
	case spec.OpIsNull:
		return sq.Eq{col: nil}, nil
	case spec.OpIsNotNull:
		return sq.NotEq{col: nil}, nil
	case spec.OpArrayContains, spec.OpArrayContainedBy, spec.OpArrayOverlaps,
		spec.OpSetContains, spec.OpSetContainedBy, spec.OpSetOverlaps:
		return collection(col, f)
	case spec.OpJSONContains, spec.OpJSONContainedBy, spec.OpJSONEquals:
		return document(col, f)
	default:
		return nil, fmt.Errorf("%w: %s on field %q", ErrUnsupportedOperator, f.Operator(), f.Field())
	}
}

var arrayOperators = map[spec.Operator]string{
	spec.OpArrayContains:    "@>",
	spec.OpArrayContainedBy: "<@",
	spec.OpArrayOverlaps:    "&&",
}

func collection(col string, f spec.Filter) (sq.Sqlizer, error) {
	op := f.Operator()
	jsonb := op == spec.OpSetContains || op == spec.OpSetContainedBy || op == spec.OpSetOverlaps

	var (
		target = col
		args   []any
		values []any
	)

	switch v := f.Value().(type) {
	case []any:
		values = v
	case spec.PathValues:
		target = "(" + col + " #> ?::text[])"
		args = append(args, strings.Split(v.Path, "."))
		values = v.Values
		jsonb = true
	default:
		return nil, shapeError(f)
	}

	if !jsonb {
		array := "'{}'"
		if len(values) > 0 {
			array = "ARRAY[" + strings.TrimSuffix(strings.Repeat("?,", len(values)), ",") + "]"
		}

		return sq.Expr(fmt.Sprintf("%s %s %s", target, arrayOperators[op], array), values...), nil
	}

	doc, err := json.Marshal(values)
	if err != nil {
		return nil, fmt.Errorf("encoding %s value of %q: %w", op, f.Field(), err)
	}

	args = append(args, string(doc))

	switch op {
	case spec.OpArrayContains, spec.OpSetContains:
		return sq.Expr(target+" @> ?::jsonb", args...), nil
	case spec.OpArrayContainedBy, spec.OpSetContainedBy:
		return sq.Expr(target+" <@ ?::jsonb", args...), nil
	default:
		return sq.Expr("EXISTS (SELECT 1 FROM jsonb_array_elements("+target+") AS elem WHERE elem <@ ?::jsonb)", args...), nil
	}
}

func document(col string, f spec.Filter) (sq.Sqlizer, error) {
	doc, err := json.Marshal(f.Value())
	if err != nil {
		return nil, fmt.Errorf("encoding %s value of %q: %w", f.Operator(), f.Field(), err)
	}

	switch f.Operator() {
	case spec.OpJSONContains:
		return sq.Expr(col+" @> ?::jsonb", string(doc)), nil
	case spec.OpJSONContainedBy:
		return sq.Expr(col+" <@ ?::jsonb", string(doc)), nil
	default:
		return sq.Expr(col+" = ?::jsonb", string(doc)), nil
	}
}

func shapeError(f spec.Filter) error {
	return &spec.FilterValueError{Field: f.Field(), Operator: f.Operator(), Expected: "a normalized value"}
}
