package spec

import (
	"errors"
	"fmt"
	"slices"
)

type NodeKind int

const (
	KindRoot NodeKind = iota
	KindInnerJoin
	KindLeftJoin
	KindOuterJoin
)

func (k NodeKind) String() string {
	switch k {
	case KindRoot:
		return "root"
	case KindInnerJoin:
		return "inner_join"
	case KindLeftJoin:
		return "left_join"
	case KindOuterJoin:
		return "outer_join"
	default:
		return fmt.Sprintf("NodeKind(%d)", int(k))
	}
}

// Node describes one entity of the query graph: its selection, filters,
// orders, cursor, pagination and joined children. It is built by a Builder
// and mutated in place by the fluent methods, which are not safe for
// concurrent use.
//
// A fluent call that fails leaves the node untouched and records its error;
// Err reports every recorded error.
//
// Nodes form a tree: a joined node has exactly one owner.
type Node struct {
	kind   NodeKind
	schema *Schema
	seq    *Sequence
	alias  string
	owner  *Node

	filters   FilterGroup
	selectAll bool
	selection []string
	orders    []Order
	cursor    *Cursor
	take      int
	skip      int
	joins     []JoinClause

	errs []error
}

func newNode(kind NodeKind, schema *Schema, seq *Sequence) *Node {
	if schema == nil {
		panic("spec: nil schema")
	}

	n := &Node{
		kind:   kind,
		schema: schema,
		seq:    seq,
		alias:  schema.Alias(),
	}
	n.init()

	return n
}

func (n *Node) init() {
	n.filters = FilterGroup{op: LogicalAnd}
	n.selectAll = true
	n.selection = nil
	n.orders = nil
	n.cursor = nil
	n.take = 0
	n.skip = 0
	n.joins = nil
	n.errs = nil
}

// Reset returns the node to its just-created state. Only the schema binding,
// the alias and the owner survive; joined children are released.
func (n *Node) Reset() *Node {
	for _, jc := range n.joins {
		jc.Node.owner = nil
	}

	n.init()

	return n
}

func (n *Node) fail(err error) *Node {
	n.errs = append(n.errs, err)

	return n
}

// Err joins every error recorded by failed fluent calls, nil if none.
func (n *Node) Err() error { return errors.Join(n.errs...) }

func (n *Node) Errors() []error { return slices.Clone(n.errs) }

func (n *Node) Kind() NodeKind            { return n.kind }
func (n *Node) Schema() *Schema           { return n.schema }
func (n *Node) Alias() string             { return n.alias }
func (n *Node) Source() string            { return n.schema.Source() }
func (n *Node) Identifier() string        { return n.schema.Identifier() }
func (n *Node) Metadata() map[string]any  { return n.schema.Metadata() }
func (n *Node) Filters() FilterGroup      { return n.filters }
func (n *Node) SelectsAll() bool          { return n.selectAll }
func (n *Node) Take() int                 { return n.take }
func (n *Node) Skip() int                 { return n.skip }
func (n *Node) Orders() []Order           { return slices.Clone(n.orders) }
func (n *Node) Joins() []JoinClause       { return slices.Clone(n.joins) }
func (n *Node) Sequence() *Sequence       { return n.seq }
func (n *Node) String() string            { return n.kind.String() + ":" + n.alias }
func (n *Node) checkField(f string) error { return n.schema.checkField(f) }

// Selection returns the selected fields, every schema field when nothing was
// selected explicitly.
func (n *Node) Selection() []string {
	if n.selectAll {
		return n.schema.Fields()
	}

	return slices.Clone(n.selection)
}

func (n *Node) Cursor() (Cursor, bool) {
	if n.cursor == nil {
		return Cursor{}, false
	}

	return *n.cursor, true
}

// Joined returns the clause of the given relation alias.
func (n *Node) Joined(alias string) (JoinClause, bool) {
	for _, jc := range n.joins {
		if jc.Join.Alias == alias {
			return jc, true
		}
	}

	return JoinClause{}, false
}

// Where replaces the filter state with an AND group holding c.
func (n *Node) Where(c Condition) *Node {
	if err := n.validateCondition(c); err != nil {
		return n.fail(err)
	}

	n.filters = n.filters.where(c)

	return n
}

// AndWhere adds c to the AND branch currently being built.
func (n *Node) AndWhere(c Condition) *Node {
	if err := n.validateCondition(c); err != nil {
		return n.fail(err)
	}

	n.filters = n.filters.andWhere(c)

	return n
}

// OrWhere opens a new OR branch holding c.
func (n *Node) OrWhere(c Condition) *Node {
	if err := n.validateCondition(c); err != nil {
		return n.fail(err)
	}

	n.filters = n.filters.orWhere(c)

	return n
}

func (n *Node) validateCondition(c Condition) error {
	switch v := c.(type) {
	case Filter:
		if v.err != nil {
			return v.err
		}

		if !v.op.IsValid() {
			return &FilterValueError{Field: v.field, Operator: v.op, Expected: FamilyUnknown.expectation()}
		}

		return n.checkField(v.field)
	case FilterGroup:
		for _, item := range v.items {
			if err := n.validateCondition(item); err != nil {
				return err
			}
		}

		return nil
	default:
		return &FilterValueError{Expected: "a filter or a filter group"}
	}
}

// Join resolves relationAlias on the node's schema and attaches child under
// it. Joining an alias again replaces the previous child in place.
func (n *Node) Join(relationAlias string, child *Node, opts ...JoinOption) *Node {
	j, err := resolveJoin(n, relationAlias, child, opts)
	if err != nil {
		return n.fail(err)
	}

	child.rename(relationAlias)
	child.owner = n
	clause := JoinClause{Join: j, Node: child}

	for i := range n.joins {
		if n.joins[i].Join.Alias == relationAlias {
			if previous := n.joins[i].Node; previous != child {
				previous.owner = nil
			}

			n.joins[i] = clause

			return n
		}
	}

	n.joins = append(n.joins, clause)

	return n
}

// rename sets the alias and keeps the descriptors of already joined children
// pointing at it.
func (n *Node) rename(alias string) {
	n.alias = alias

	for i := range n.joins {
		n.joins[i].Join.ParentAlias = alias
	}
}

// contains reports whether target is n or one of its descendants.
func (n *Node) contains(target *Node) bool {
	found := false

	n.Walk(func(node *Node) {
		if node == target {
			found = true
		}
	})

	return found
}

func (n *Node) OrderBy(field string, direction SortDirection) *Node {
	return n.OrderByNulls(field, direction, false)
}

func (n *Node) OrderByNulls(field string, direction SortDirection, nullsFirst bool) *Node {
	if err := n.checkField(field); err != nil {
		return n.fail(err)
	}

	if !direction.IsValid() {
		return n.fail(&SortDirectionError{Field: field, Direction: direction})
	}

	n.orders = append(n.orders, Order{
		Field:      field,
		Direction:  direction,
		NullsFirst: nullsFirst,
		Sequence:   n.seq.Next(),
	})

	return n
}

// SetSelect switches to an explicit selection. The identifier field is
// always part of it; an empty call selects the identifier only.
func (n *Node) SetSelect(fields ...string) *Node {
	selection := make([]string, 0, len(fields)+1)

	for _, f := range fields {
		if err := n.checkField(f); err != nil {
			return n.fail(err)
		}

		if !slices.Contains(selection, f) {
			selection = append(selection, f)
		}
	}

	if id := n.schema.Identifier(); !slices.Contains(selection, id) {
		selection = append(selection, id)
	}

	n.selectAll = false
	n.selection = selection

	return n
}

func (n *Node) ResetSelect() *Node {
	n.selectAll = true
	n.selection = nil

	return n
}

// SetTake limits the number of rows, 0 meaning unbounded.
func (n *Node) SetTake(take int) *Node {
	if take < 0 {
		return n.fail(&PaginationError{Name: "take", Value: take})
	}

	n.take = take

	return n
}

func (n *Node) SetSkip(skip int) *Node {
	if skip < 0 {
		return n.fail(&PaginationError{Name: "skip", Value: skip})
	}

	n.skip = skip

	return n
}

// SetCursor sets the keyset boundary of the root node. op is OpGt or OpLt.
func (n *Node) SetCursor(op Operator, direction SortDirection, fields ...CursorField) *Node {
	if n.kind != KindRoot {
		return n.fail(&CursorError{Message: "only the root node accepts a cursor"})
	}

	c, err := newCursor(n.schema, fields, op, direction)
	if err != nil {
		return n.fail(err)
	}

	c.sequence = n.seq.Next()
	n.cursor = &c

	return n
}

func (n *Node) ClearCursor() *Node {
	n.cursor = nil

	return n
}

// Walk calls fn on n and its descendants, depth first in join-declaration
// order.
func (n *Node) Walk(fn func(*Node)) {
	fn(n)

	for _, jc := range n.joins {
		jc.Node.Walk(fn)
	}
}

// GraphErr joins the errors recorded on n and on every joined descendant.
func (n *Node) GraphErr() error {
	var errs []error

	n.Walk(func(node *Node) {
		if err := node.Err(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", node, err))
		}
	})

	return errors.Join(errs...)
}
