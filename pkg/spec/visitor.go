package spec

import (
	"errors"
	"fmt"
)

var ErrTraversal = errors.New("invalid traversal")

// Visitor turns a specification graph into a target representation. C is the
// translator-defined context threaded through every call; each method returns
// the context the next call receives.
//
// Accept drives the traversal of a root node in this order: VisitRoot,
// VisitSelection, the joins depth first in declaration order, VisitWhere,
// VisitOrdering, VisitPagination. Each join is visited as VisitInnerJoin,
// VisitLeftJoin or VisitOuterJoin, then VisitWhere and VisitSelection on the
// child, then its own joins. VisitSelection is skipped for joins declared
// without selection.
type Visitor[C any] interface {
	VisitRoot(n *Node, ctx C) (C, error)
	VisitSelection(n *Node, ctx C) (C, error)
	VisitInnerJoin(jc JoinClause, ctx C) (C, error)
	VisitLeftJoin(jc JoinClause, ctx C) (C, error)
	VisitOuterJoin(jc JoinClause, ctx C) (C, error)
	VisitWhere(n *Node, g FilterGroup, ctx C) (C, error)
	VisitOrdering(n *Node, o Ordering, ctx C) (C, error)
	VisitPagination(n *Node, ctx C) (C, error)
}

// ConditionVisitor renders filters and groups. Groups are handed over whole;
// implementations recurse through AcceptCondition.
type ConditionVisitor[C any] interface {
	VisitFilter(f Filter, ctx C) (C, error)
	VisitFilterGroup(g FilterGroup, ctx C) (C, error)
}

// Accept walks root with v. It refuses graphs carrying recorded errors and
// never mutates them.
func Accept[C any](root *Node, v Visitor[C], ctx C) (C, error) {
	if root == nil {
		return ctx, fmt.Errorf("%w: nil node", ErrTraversal)
	}

	if root.kind != KindRoot {
		return ctx, fmt.Errorf("%w: %s is not a root node", ErrTraversal, root)
	}

	if err := root.GraphErr(); err != nil {
		return ctx, err
	}

	var err error

	if ctx, err = v.VisitRoot(root, ctx); err != nil {
		return ctx, err
	}

	if ctx, err = v.VisitSelection(root, ctx); err != nil {
		return ctx, err
	}

	for _, jc := range root.joins {
		if ctx, err = AcceptJoin(jc, v, ctx); err != nil {
			return ctx, err
		}
	}

	if ctx, err = v.VisitWhere(root, root.filters, ctx); err != nil {
		return ctx, err
	}

	if ctx, err = v.VisitOrdering(root, ConsolidateOrdering(root), ctx); err != nil {
		return ctx, err
	}

	return v.VisitPagination(root, ctx)
}

// AcceptJoin walks one join clause and the joins below it.
func AcceptJoin[C any](jc JoinClause, v Visitor[C], ctx C) (C, error) {
	var err error

	switch jc.Node.kind {
	case KindInnerJoin:
		ctx, err = v.VisitInnerJoin(jc, ctx)
	case KindLeftJoin:
		ctx, err = v.VisitLeftJoin(jc, ctx)
	case KindOuterJoin:
		ctx, err = v.VisitOuterJoin(jc, ctx)
	default:
		err = fmt.Errorf("%w: %s cannot be visited as a join", ErrTraversal, jc.Node)
	}

	if err != nil {
		return ctx, err
	}

	if ctx, err = v.VisitWhere(jc.Node, jc.Node.filters, ctx); err != nil {
		return ctx, err
	}

	if jc.Join.WithSelect {
		if ctx, err = v.VisitSelection(jc.Node, ctx); err != nil {
			return ctx, err
		}
	}

	for _, child := range jc.Node.joins {
		if ctx, err = AcceptJoin(child, v, ctx); err != nil {
			return ctx, err
		}
	}

	return ctx, nil
}

func AcceptCondition[C any](c Condition, v ConditionVisitor[C], ctx C) (C, error) {
	switch cond := c.(type) {
	case Filter:
		return v.VisitFilter(cond, ctx)
	case FilterGroup:
		return v.VisitFilterGroup(cond, ctx)
	default:
		return ctx, fmt.Errorf("%w: unsupported condition %T", ErrTraversal, c)
	}
}
