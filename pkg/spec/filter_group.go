package spec

import (
	"fmt"
	"slices"
	"strings"
)

type LogicalOperator string

const (
	LogicalAnd LogicalOperator = "AND"
	LogicalOr  LogicalOperator = "OR"
)

// FilterGroup is a normalized AND/OR tree. Normalized groups hold two
// invariants: an AND group never directly contains another AND group, and
// every child of an OR group is an AND group. Groups are values; every
// logical change builds a new group.
type FilterGroup struct {
	op    LogicalOperator
	items []Condition
}

func (FilterGroup) condition() {}

// Operator returns the logical operator. The zero group is an empty AND.
func (g FilterGroup) Operator() LogicalOperator {
	if g.op == "" {
		return LogicalAnd
	}

	return g.op
}

func (g FilterGroup) Items() []Condition { return slices.Clone(g.items) }
func (g FilterGroup) Len() int           { return len(g.items) }
func (g FilterGroup) IsEmpty() bool      { return len(g.items) == 0 }
func (g FilterGroup) IsOr() bool         { return g.Operator() == LogicalOr }

// Filters lists the leaf filters depth first.
func (g FilterGroup) Filters() []Filter {
	var out []Filter

	for _, item := range g.items {
		switch c := item.(type) {
		case Filter:
			out = append(out, c)
		case FilterGroup:
			out = append(out, c.Filters()...)
		}
	}

	return out
}

func (g FilterGroup) String() string {
	parts := make([]string, 0, len(g.items))
	for _, item := range g.items {
		parts = append(parts, conditionString(item))
	}

	return fmt.Sprintf("%s(%s)", g.Operator(), strings.Join(parts, ", "))
}

func (f Filter) String() string {
	switch f.op.Family() {
	case FamilyNullCheck:
		return fmt.Sprintf("%s %s", f.field, f.op)
	case FamilyRange:
		r, _ := f.value.(Range)

		return fmt.Sprintf("%s %s [%v, %v]", f.field, f.op, r.From, r.To)
	default:
		return fmt.Sprintf("%s %s %v", f.field, f.op, f.value)
	}
}

func conditionString(c Condition) string {
	switch v := c.(type) {
	case Filter:
		return v.String()
	case FilterGroup:
		return v.String()
	default:
		return fmt.Sprintf("%v", c)
	}
}

// And builds a normalized AND group. Nested AND groups are spliced into it
// and single-branch OR groups collapse to their branch.
func And(conds ...Condition) FilterGroup {
	items := make([]Condition, 0, len(conds))

	for _, c := range conds {
		switch v := c.(type) {
		case Filter:
			items = append(items, v)
		case FilterGroup:
			n := normalize(v)

			switch {
			case n.IsEmpty():
			case !n.IsOr():
				items = append(items, n.items...)
			case len(n.items) == 1:
				items = append(items, n.items[0].(FilterGroup).items...)
			default:
				items = append(items, n)
			}
		}
	}

	return FilterGroup{op: LogicalAnd, items: items}
}

// Or builds a normalized OR group in which every branch is an AND group.
// Nested OR groups are spliced and empty branches dropped; with no branch
// left the result is the empty AND group.
func Or(conds ...Condition) FilterGroup {
	branches := make([]Condition, 0, len(conds))

	for _, c := range conds {
		switch v := c.(type) {
		case Filter:
			branches = append(branches, FilterGroup{op: LogicalAnd, items: []Condition{v}})
		case FilterGroup:
			n := normalize(v)

			switch {
			case n.IsEmpty():
			case n.IsOr():
				branches = append(branches, n.items...)
			default:
				branches = append(branches, n)
			}
		}
	}

	if len(branches) == 0 {
		return FilterGroup{op: LogicalAnd}
	}

	return FilterGroup{op: LogicalOr, items: branches}
}

func normalize(g FilterGroup) FilterGroup {
	if g.IsOr() {
		return Or(g.items...)
	}

	return And(g.items...)
}

// where discards the current state.
func (g FilterGroup) where(c Condition) FilterGroup {
	return And(c)
}

// andWhere extends the AND branch currently being built: the root itself
// when it is an AND group, the last OR branch otherwise.
func (g FilterGroup) andWhere(c Condition) FilterGroup {
	if !g.IsOr() {
		return And(append(slices.Clone(g.items), c)...)
	}

	branches := slices.Clone(g.items)
	last := branches[len(branches)-1].(FilterGroup)
	branches[len(branches)-1] = And(append(slices.Clone(last.items), c)...)

	return FilterGroup{op: LogicalOr, items: branches}
}

// orWhere opens a new OR branch holding c. The current root becomes the
// first branch when it is not an OR group yet. On an empty root it behaves
// like where.
func (g FilterGroup) orWhere(c Condition) FilterGroup {
	if g.IsEmpty() {
		return And(c)
	}

	if And(c).IsEmpty() {
		return g
	}

	return Or(g, c)
}
