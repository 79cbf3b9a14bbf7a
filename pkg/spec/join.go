package spec

import "fmt"

type (
	// Join is the fully resolved descriptor of one relation joined on a node.
	// Exactly one of Simple and Pivot is set, according to Kind.
	Join struct {
		Alias            string
		Kind             RelationKind
		Target           string
		ParentAlias      string
		ParentSource     string
		ParentIdentifier string
		WithSelect       bool
		Simple           *SimpleLinkage
		Pivot            *PivotLinkage
		SchemaMetadata   map[string]any
		RelationMetadata map[string]any
	}

	// JoinClause pairs a descriptor with the child node it joins.
	JoinClause struct {
		Join Join
		Node *Node
	}

	JoinOption func(*joinOptions)

	joinOptions struct {
		withSelect *bool
		simple     *SimpleLinkage
		pivot      *PivotLinkage
	}
)

func (j Join) IsPivot() bool { return j.Pivot != nil }

// WithSelect controls whether the child's selection is projected. Without it
// the relation's declared default applies, and true when none is declared.
func WithSelect(selected bool) JoinOption {
	return func(o *joinOptions) { o.withSelect = &selected }
}

// WithSimpleLinkage supplies the two-field linkage of a non many-to-many join.
func WithSimpleLinkage(localField, relationField string) JoinOption {
	return func(o *joinOptions) {
		o.simple = &SimpleLinkage{LocalField: localField, RelationField: relationField}
	}
}

// WithPivotLinkage supplies the pivot-table linkage of a many-to-many join.
func WithPivotLinkage(table string, local, relation PivotPair) JoinOption {
	return func(o *joinOptions) {
		o.pivot = &PivotLinkage{Table: table, Local: local, Relation: relation}
	}
}

func resolveJoin(parent *Node, alias string, child *Node, opts []JoinOption) (Join, error) {
	parentSchema := parent.schema

	rel, ok := parentSchema.Relation(alias)
	if !ok {
		return Join{}, &RelationNotFoundError{Schema: parentSchema.Source(), Alias: alias}
	}

	shapeErr := func(format string, args ...any) error {
		return &RelationShapeError{
			Schema:  parentSchema.Source(),
			Alias:   alias,
			Kind:    rel.Kind,
			Message: fmt.Sprintf(format, args...),
		}
	}

	switch {
	case child == nil:
		return Join{}, shapeErr("child node is required")
	case child == parent:
		return Join{}, shapeErr("a node cannot be joined to itself")
	case child.owner != nil && !rejoins(parent, alias, child):
		return Join{}, shapeErr("child node is already joined on %s", child.owner)
	case child.contains(parent):
		return Join{}, shapeErr("child node is an ancestor of the parent")
	case child.kind == KindRoot:
		return Join{}, shapeErr("a root node cannot be joined")
	case child.seq != parent.seq:
		return Join{}, shapeErr("child node was built from a different sequence")
	case child.schema.Source() != rel.Target:
		return Join{}, shapeErr("child schema %q does not match relation target %q", child.schema.Source(), rel.Target)
	}

	var o joinOptions
	for _, opt := range opts {
		opt(&o)
	}

	simple, pivot := rel.Simple, rel.Pivot

	switch {
	case o.simple != nil && o.pivot != nil:
		return Join{}, shapeErr("both simple and pivot linkage given")
	case o.simple != nil && rel.Kind.IsPivot():
		return Join{}, shapeErr("simple linkage given, pivot linkage required")
	case o.pivot != nil && !rel.Kind.IsPivot():
		return Join{}, shapeErr("pivot linkage given, simple linkage required")
	case o.simple != nil:
		simple = o.simple
	case o.pivot != nil:
		pivot = o.pivot
	}

	j := Join{
		Alias:            alias,
		Kind:             rel.Kind,
		Target:           rel.Target,
		ParentAlias:      parent.alias,
		ParentSource:     parentSchema.Source(),
		ParentIdentifier: parentSchema.Identifier(),
		WithSelect:       true,
		SchemaMetadata:   parentSchema.Metadata(),
		RelationMetadata: cloneMetadata(rel.Metadata),
	}

	if rel.Select != nil {
		j.WithSelect = *rel.Select
	}

	if o.withSelect != nil {
		j.WithSelect = *o.withSelect
	}

	if rel.Kind.IsPivot() {
		if pivot == nil {
			return Join{}, shapeErr("pivot linkage is neither declared nor given")
		}

		if pivot.Table == "" || pivot.Local.PivotField == "" || pivot.Relation.PivotField == "" {
			return Join{}, shapeErr("pivot table and pivot fields are required")
		}

		if err := linkFields(parentSchema, child.schema, pivot.Local.ReferenceField, pivot.Relation.ReferenceField); err != nil {
			return Join{}, err
		}

		p := *pivot
		j.Pivot = &p

		return j, nil
	}

	if simple == nil {
		return Join{}, shapeErr("simple linkage is neither declared nor given")
	}

	if err := linkFields(parentSchema, child.schema, simple.LocalField, simple.RelationField); err != nil {
		return Join{}, err
	}

	s := *simple
	j.Simple = &s

	return j, nil
}

// rejoins reports whether child is already joined on parent under alias.
func rejoins(parent *Node, alias string, child *Node) bool {
	jc, ok := parent.Joined(alias)

	return ok && jc.Node == child
}

func linkFields(parent, child *Schema, local, relation string) error {
	if err := parent.checkField(local); err != nil {
		return err
	}

	return child.checkField(relation)
}
