package querydoc

import (
	"fmt"
	"strings"

	"github.com/architeacher/queryspec/pkg/spec"
	"gopkg.in/yaml.v3"
)

const (
	JoinInner = "inner"
	JoinLeft  = "left"
	JoinOuter = "outer"
)

// Apply builds the graph described by doc with b. Shape errors of conditions
// are returned directly; every other failure is recorded on the nodes and
// reported through GraphErr.
func (doc *Document) Apply(registry *spec.Registry, b *spec.Builder) (*spec.Node, error) {
	schema, ok := registry.Schema(doc.From)
	if !ok {
		return nil, fmt.Errorf("%w: unknown schema %q", ErrInvalidDocument, doc.From)
	}

	root := b.Root(schema)

	if doc.Fields != nil {
		root.SetSelect(doc.Fields...)
	}

	if err := doc.NodeBody.apply(registry, b, root, "root"); err != nil {
		return nil, err
	}

	if c := doc.Cursor; c != nil {
		direction := spec.SortDirection(strings.ToUpper(c.Direction))
		if c.Direction == "" {
			direction = spec.SortAsc
		}

		fields := make([]spec.CursorField, 0, len(c.Fields))
		for i, f := range c.Fields {
			v, err := value(f.Value)
			if err != nil {
				return nil, fmt.Errorf("root.cursor.fields[%d]: %w", i, err)
			}

			fields = append(fields, spec.At(f.Field, v))
		}

		root.SetCursor(spec.Operator(strings.ToLower(c.Op)), direction, fields...)
	}

	root.SetTake(doc.Take).SetSkip(doc.Skip)

	if err := root.GraphErr(); err != nil {
		return nil, err
	}

	return root, nil
}

func (body NodeBody) apply(registry *spec.Registry, b *spec.Builder, n *spec.Node, path string) error {
	for i, step := range body.Filters {
		if err := applyStep(n, step, fmt.Sprintf("%s.filters[%d]", path, i)); err != nil {
			return err
		}
	}

	for _, o := range body.Order {
		direction := spec.SortDirection(strings.ToUpper(o.Direction))
		if o.Direction == "" {
			direction = spec.SortAsc
		}

		n.OrderByNulls(o.Field, direction, strings.EqualFold(o.Nulls, "first"))
	}

	for i, j := range body.Joins {
		if err := applyJoin(registry, b, n, j, fmt.Sprintf("%s.joins[%d]", path, i)); err != nil {
			return err
		}
	}

	return nil
}

func applyJoin(registry *spec.Registry, b *spec.Builder, parent *spec.Node, j Join, path string) error {
	rel, ok := parent.Schema().Relation(j.Relation)
	if !ok {
		return fmt.Errorf("%s: %w", path, &spec.RelationNotFoundError{Schema: parent.Source(), Alias: j.Relation})
	}

	target, ok := registry.Schema(rel.Target)
	if !ok {
		return fmt.Errorf("%s: %w: unknown schema %q", path, ErrInvalidDocument, rel.Target)
	}

	var child *spec.Node

	switch strings.ToLower(j.Type) {
	case "", JoinInner:
		child = b.InnerJoin(target)
	case JoinLeft:
		child = b.LeftJoin(target)
	case JoinOuter:
		child = b.OuterJoin(target)
	default:
		return fmt.Errorf("%s: %w: unknown join type %q", path, ErrInvalidDocument, j.Type)
	}

	if j.Fields != nil {
		child.SetSelect(j.Fields...)
	}

	if err := j.NodeBody.apply(registry, b, child, path); err != nil {
		return err
	}

	var opts []spec.JoinOption

	if j.Select != nil {
		opts = append(opts, spec.WithSelect(*j.Select))
	}

	if s := j.Simple; s != nil {
		opts = append(opts, spec.WithSimpleLinkage(s.LocalField, s.RelationField))
	}

	if p := j.Pivot; p != nil {
		opts = append(opts, spec.WithPivotLinkage(p.Table, p.Local, p.Relation))
	}

	parent.Join(j.Relation, child, opts...)

	return nil
}

func applyStep(n *spec.Node, step Step, path string) error {
	var (
		apply func(spec.Condition) *spec.Node
		cond  *Condition
		set   int
	)

	if step.Where != nil {
		apply, cond = n.Where, step.Where
		set++
	}

	if step.And != nil {
		apply, cond = n.AndWhere, step.And
		set++
	}

	if step.Or != nil {
		apply, cond = n.OrWhere, step.Or
		set++
	}

	if set != 1 {
		return fmt.Errorf("%s: %w: exactly one of where, and, or is required", path, ErrInvalidDocument)
	}

	c, err := cond.build(path)
	if err != nil {
		return err
	}

	apply(c)

	return nil
}

func (c Condition) build(path string) (spec.Condition, error) {
	isFilter := c.Field != "" || c.Op != ""

	switch {
	case isFilter && (c.All != nil || c.Any != nil), c.All != nil && c.Any != nil:
		return nil, fmt.Errorf("%s: %w: a condition is either a filter, all or any", path, ErrInvalidDocument)
	case isFilter:
		v, err := value(c.Value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}

		f, err := spec.NewFilter(c.Field, spec.Operator(strings.ToLower(c.Op)), v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}

		return f, nil
	case c.All != nil:
		items, err := buildAll(c.All, path+".all")
		if err != nil {
			return nil, err
		}

		return spec.And(items...), nil
	case c.Any != nil:
		items, err := buildAll(c.Any, path+".any")
		if err != nil {
			return nil, err
		}

		return spec.Or(items...), nil
	default:
		return nil, fmt.Errorf("%s: %w: empty condition", path, ErrInvalidDocument)
	}
}

func buildAll(conds []Condition, path string) ([]spec.Condition, error) {
	items := make([]spec.Condition, 0, len(conds))

	for i, c := range conds {
		item, err := c.build(fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return nil, err
		}

		items = append(items, item)
	}

	return items, nil
}

// value decodes a YAML value; an absent key yields spec.Undefined and an
// explicit null yields nil.
func value(node yaml.Node) (any, error) {
	if node.Kind == 0 {
		return spec.Undefined, nil
	}

	var v any
	if err := node.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	return v, nil
}
