package sqlbuilder

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/architeacher/queryspec/pkg/spec"
	"github.com/rs/zerolog"
)

// visitor carries the per-translation lookups; the statement itself travels
// as the immutable squirrel builder.
type visitor struct {
	t     *Translator
	log   zerolog.Logger
	nodes map[string]*spec.Node
}

func (v *visitor) VisitRoot(n *spec.Node, b sq.SelectBuilder) (sq.SelectBuilder, error) {
	v.nodes[n.Alias()] = n

	return b.From(v.t.tableRef(n)), nil
}

func (v *visitor) VisitSelection(n *spec.Node, b sq.SelectBuilder) (sq.SelectBuilder, error) {
	fields := n.Selection()
	columns := make([]string, 0, len(fields))

	for _, field := range fields {
		column := v.column(n, field)

		if n.Kind() != spec.KindRoot {
			column += " AS " + v.t.ident(n.Alias()+"__"+field)
		}

		columns = append(columns, column)
	}

	return b.Columns(columns...), nil
}

func (v *visitor) VisitInnerJoin(jc spec.JoinClause, b sq.SelectBuilder) (sq.SelectBuilder, error) {
	return v.join("JOIN", jc, b)
}

func (v *visitor) VisitLeftJoin(jc spec.JoinClause, b sq.SelectBuilder) (sq.SelectBuilder, error) {
	return v.join("LEFT JOIN", jc, b)
}

func (v *visitor) VisitOuterJoin(jc spec.JoinClause, b sq.SelectBuilder) (sq.SelectBuilder, error) {
	return v.join("FULL OUTER JOIN", jc, b)
}

// join emits the join clause, expanded to two clauses through the pivot
// table for many-to-many relations. Filters of the joined node go to its ON
// clause so that outer joins keep unmatched parent rows.
func (v *visitor) join(keyword string, jc spec.JoinClause, b sq.SelectBuilder) (sq.SelectBuilder, error) {
	parent, ok := v.nodes[jc.Join.ParentAlias]
	if !ok {
		return b, fmt.Errorf("join %q: parent %q was not visited", jc.Join.Alias, jc.Join.ParentAlias)
	}

	child := jc.Node
	if _, dup := v.nodes[child.Alias()]; dup {
		return b, fmt.Errorf("join %q: alias is already in use", child.Alias())
	}

	v.nodes[child.Alias()] = child

	var on sq.Sqlizer

	if p := jc.Join.Pivot; p != nil {
		pivotAlias := child.Alias() + "_pivot"

		b = b.JoinClause(fmt.Sprintf("%s %s AS %s ON %s = %s",
			keyword,
			v.t.ident(p.Table), v.t.ident(pivotAlias),
			v.column(parent, p.Local.ReferenceField),
			v.t.ident(pivotAlias)+"."+v.t.ident(p.Local.PivotField),
		))

		on = sq.Expr(fmt.Sprintf("%s = %s",
			v.t.ident(pivotAlias)+"."+v.t.ident(p.Relation.PivotField),
			v.column(child, p.Relation.ReferenceField),
		))
	} else {
		on = sq.Expr(fmt.Sprintf("%s = %s",
			v.column(parent, jc.Join.Simple.LocalField),
			v.column(child, jc.Join.Simple.RelationField),
		))
	}

	filters, err := v.condition(child, child.Filters())
	if err != nil {
		return b, err
	}

	if filters != nil {
		on = sq.And{on, filters}
	}

	onSQL, args, err := on.ToSql()
	if err != nil {
		return b, fmt.Errorf("join %q: %w", jc.Join.Alias, err)
	}

	v.log.Debug().
		Str("relation", jc.Join.Alias).
		Str("kind", string(jc.Join.Kind)).
		Bool("pivot", jc.Join.IsPivot()).
		Msg("join resolved")

	return b.JoinClause(fmt.Sprintf("%s %s ON %s", keyword, v.t.tableRef(child), onSQL), args...), nil
}

// VisitWhere renders the root group and the cursor boundary. Join-local
// groups were already rendered into their ON clause.
func (v *visitor) VisitWhere(n *spec.Node, g spec.FilterGroup, b sq.SelectBuilder) (sq.SelectBuilder, error) {
	if n.Kind() != spec.KindRoot {
		return b, nil
	}

	where, err := v.condition(n, g)
	if err != nil {
		return b, err
	}

	if where != nil {
		b = b.Where(where)
	}

	if cursor, ok := n.Cursor(); ok {
		boundary, err := v.condition(n, cursor.Boundary())
		if err != nil {
			return b, err
		}

		b = b.Where(boundary)
	}

	return b, nil
}

func (v *visitor) VisitOrdering(_ *spec.Node, o spec.Ordering, b sq.SelectBuilder) (sq.SelectBuilder, error) {
	clauses := make([]string, 0, len(o.Keys))

	for _, key := range o.Keys {
		n, ok := v.nodes[key.Alias]
		if !ok {
			return b, fmt.Errorf("order on %s.%s: alias was not visited", key.Alias, key.Field)
		}

		nulls := "NULLS LAST"
		if key.NullsFirst {
			nulls = "NULLS FIRST"
		}

		clauses = append(clauses, fmt.Sprintf("%s %s %s", v.column(n, key.Field), key.Direction, nulls))
	}

	return b.OrderBy(clauses...), nil
}

func (v *visitor) VisitPagination(n *spec.Node, b sq.SelectBuilder) (sq.SelectBuilder, error) {
	if take := n.Take(); take > 0 {
		b = b.Limit(uint64(take))
	}

	if skip := n.Skip(); skip > 0 {
		b = b.Offset(uint64(skip))
	}

	return b, nil
}

func (v *visitor) condition(n *spec.Node, g spec.FilterGroup) (sq.Sqlizer, error) {
	if g.IsEmpty() {
		return nil, nil
	}

	return spec.AcceptCondition[sq.Sqlizer](g, conditionVisitor{v: v, node: n}, nil)
}

// column resolves field to its qualified column, honoring the column
// mapping in the schema metadata.
func (v *visitor) column(n *spec.Node, field string) string {
	name := field

	if raw, ok := n.Metadata()[MetadataColumns]; ok {
		switch columns := raw.(type) {
		case map[string]string:
			if c, ok := columns[field]; ok && c != "" {
				name = c
			}
		case map[string]any:
			switch c := columns[field].(type) {
			case nil:
			case string:
				if c != "" {
					name = c
				}
			default:
				v.log.Warn().
					Str("schema", n.Source()).
					Str("field", field).
					Msg("column mapping is not a string, falling back to the field name")
			}
		}
	}

	return v.t.ident(n.Alias()) + "." + v.t.ident(name)
}
