// Package jsontree renders specification graphs as indented JSON documents
// for inspection and debugging.
package jsontree

import (
	"context"
	"fmt"

	"github.com/architeacher/queryspec/pkg/spec"
	"github.com/goccy/go-json"
)

const defaultIndent = "  "

type (
	Node struct {
		Kind     string     `json:"kind"`
		Alias    string     `json:"alias"`
		Source   string     `json:"source"`
		Relation *Relation  `json:"relation,omitempty"`
		Select   []string   `json:"select,omitempty"`
		Where    *Condition `json:"where,omitempty"`
		Cursor   *Cursor    `json:"cursor,omitempty"`
		Order    []Order    `json:"order,omitempty"`
		Take     int        `json:"take,omitempty"`
		Skip     int        `json:"skip,omitempty"`
		Joins    []*Node    `json:"joins,omitempty"`
	}

	Relation struct {
		Kind   string              `json:"kind"`
		Parent string              `json:"parent"`
		Simple *spec.SimpleLinkage `json:"simple,omitempty"`
		Pivot  *spec.PivotLinkage  `json:"pivot,omitempty"`
	}

	// Condition is either a group (Items set) or a filter (Field set).
	Condition struct {
		Operator string      `json:"operator"`
		Field    string      `json:"field,omitempty"`
		Value    any         `json:"value,omitempty"`
		Items    []Condition `json:"items,omitempty"`
	}

	Cursor struct {
		Operator  string        `json:"operator"`
		Direction string        `json:"direction"`
		Fields    []CursorField `json:"fields"`
		Boundary  Condition     `json:"boundary"`
	}

	CursorField struct {
		Field string `json:"field"`
		Value any    `json:"value"`
	}

	Order struct {
		Alias      string `json:"alias"`
		Field      string `json:"field"`
		Direction  string `json:"direction"`
		Nulls      string `json:"nulls"`
		FromCursor bool   `json:"from_cursor,omitempty"`
	}

	Translator struct {
		indent string
	}

	Option func(*Translator)
)

// WithIndent sets the indentation unit; an empty string renders compact JSON.
func WithIndent(indent string) Option {
	return func(t *Translator) { t.indent = indent }
}

func New(opts ...Option) *Translator {
	t := &Translator{indent: defaultIndent}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

func (t *Translator) Name() string { return "jsontree" }

func (t *Translator) Translate(_ context.Context, root *spec.Node) ([]byte, error) {
	doc, err := Build(root)
	if err != nil {
		return nil, err
	}

	if t.indent == "" {
		return json.Marshal(doc)
	}

	return json.MarshalIndent(doc, "", t.indent)
}

// Build walks root and returns its document tree.
func Build(root *spec.Node) (*Node, error) {
	s := &state{nodes: make(map[string]*Node)}

	if _, err := spec.Accept[*state](root, s, s); err != nil {
		return nil, fmt.Errorf("rendering %s: %w", root, err)
	}

	return s.root, nil
}

type state struct {
	root  *Node
	nodes map[string]*Node
}

func (s *state) VisitRoot(n *spec.Node, ctx *state) (*state, error) {
	s.root = newNode(n)
	s.nodes[n.Alias()] = s.root

	return ctx, nil
}

func (s *state) VisitSelection(n *spec.Node, ctx *state) (*state, error) {
	doc, err := s.node(n.Alias())
	if err != nil {
		return ctx, err
	}

	doc.Select = n.Selection()

	return ctx, nil
}

func (s *state) VisitInnerJoin(jc spec.JoinClause, ctx *state) (*state, error) {
	return ctx, s.join(jc)
}

func (s *state) VisitLeftJoin(jc spec.JoinClause, ctx *state) (*state, error) {
	return ctx, s.join(jc)
}

func (s *state) VisitOuterJoin(jc spec.JoinClause, ctx *state) (*state, error) {
	return ctx, s.join(jc)
}

func (s *state) join(jc spec.JoinClause) error {
	parent, err := s.node(jc.Join.ParentAlias)
	if err != nil {
		return err
	}

	child := newNode(jc.Node)
	child.Relation = &Relation{
		Kind:   string(jc.Join.Kind),
		Parent: jc.Join.ParentAlias,
		Simple: jc.Join.Simple,
		Pivot:  jc.Join.Pivot,
	}

	parent.Joins = append(parent.Joins, child)
	s.nodes[child.Alias] = child

	return nil
}

func (s *state) VisitWhere(n *spec.Node, g spec.FilterGroup, ctx *state) (*state, error) {
	doc, err := s.node(n.Alias())
	if err != nil {
		return ctx, err
	}

	if !g.IsEmpty() {
		where := condition(g)
		doc.Where = &where
	}

	if c, ok := n.Cursor(); ok {
		fields := make([]CursorField, 0, len(c.Fields()))
		for _, f := range c.Fields() {
			fields = append(fields, CursorField{Field: f.Field, Value: f.Value})
		}

		doc.Cursor = &Cursor{
			Operator:  string(c.Operator()),
			Direction: string(c.Direction()),
			Fields:    fields,
			Boundary:  condition(c.Boundary()),
		}
	}

	return ctx, nil
}

func (s *state) VisitOrdering(n *spec.Node, o spec.Ordering, ctx *state) (*state, error) {
	doc, err := s.node(n.Alias())
	if err != nil {
		return ctx, err
	}

	for _, key := range o.Keys {
		nulls := "last"
		if key.NullsFirst {
			nulls = "first"
		}

		doc.Order = append(doc.Order, Order{
			Alias:      key.Alias,
			Field:      key.Field,
			Direction:  string(key.Direction),
			Nulls:      nulls,
			FromCursor: key.FromCursor,
		})
	}

	return ctx, nil
}

func (s *state) VisitPagination(n *spec.Node, ctx *state) (*state, error) {
	doc, err := s.node(n.Alias())
	if err != nil {
		return ctx, err
	}

	doc.Take = n.Take()
	doc.Skip = n.Skip()

	return ctx, nil
}

func (s *state) node(alias string) (*Node, error) {
	doc, ok := s.nodes[alias]
	if !ok {
		return nil, fmt.Errorf("%w: alias %q was not visited", spec.ErrTraversal, alias)
	}

	return doc, nil
}

func newNode(n *spec.Node) *Node {
	return &Node{
		Kind:   n.Kind().String(),
		Alias:  n.Alias(),
		Source: n.Source(),
	}
}

func condition(c spec.Condition) Condition {
	switch v := c.(type) {
	case spec.FilterGroup:
		items := make([]Condition, 0, v.Len())
		for _, item := range v.Items() {
			items = append(items, condition(item))
		}

		return Condition{Operator: string(v.Operator()), Items: items}
	case spec.Filter:
		return Condition{Operator: string(v.Operator()), Field: v.Field(), Value: value(v.Value())}
	default:
		return Condition{}
	}
}

// value maps the normalized filter values to JSON-friendly shapes. A null
// comparison value is kept as an explicit null, Undefined is dropped.
func value(v any) any {
	switch val := v.(type) {
	case nil:
		return json.RawMessage("null")
	case spec.Range:
		return map[string]any{"from": val.From, "to": val.To}
	case spec.PathValues:
		return map[string]any{"path": val.Path, "values": val.Values}
	default:
		if spec.IsUndefined(v) {
			return nil
		}

		return v
	}
}
