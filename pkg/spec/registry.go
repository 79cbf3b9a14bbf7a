package spec

import "fmt"

// Registry holds a closed set of schemas whose relations only target
// schemas of the same set.
type Registry struct {
	schemas map[string]*Schema
	order   []string
}

func NewRegistry(defs ...SchemaDefinition) (*Registry, error) {
	r := &Registry{
		schemas: make(map[string]*Schema, len(defs)),
		order:   make([]string, 0, len(defs)),
	}

	for _, def := range defs {
		s, err := NewSchema(def)
		if err != nil {
			return nil, err
		}

		if _, dup := r.schemas[s.Source()]; dup {
			return nil, &SchemaDefinitionError{Schema: s.Source(), Message: "schema is registered more than once"}
		}

		r.schemas[s.Source()] = s
		r.order = append(r.order, s.Source())
	}

	for _, source := range r.order {
		s := r.schemas[source]

		for _, rel := range s.Relations() {
			target, ok := r.schemas[rel.Target]
			if !ok {
				return nil, &SchemaDefinitionError{
					Schema:  source,
					Message: fmt.Sprintf("relation %q targets unknown schema %q", rel.Alias, rel.Target),
				}
			}

			if err := checkTargetFields(s, rel, target); err != nil {
				return nil, err
			}
		}
	}

	return r, nil
}

func checkTargetFields(s *Schema, rel Relation, target *Schema) error {
	var field string

	switch {
	case rel.Simple != nil:
		field = rel.Simple.RelationField
	case rel.Pivot != nil:
		field = rel.Pivot.Relation.ReferenceField
	}

	if field != "" && !target.HasField(field) {
		return &SchemaDefinitionError{
			Schema:  s.Source(),
			Message: fmt.Sprintf("relation %q references unknown field %q on %q", rel.Alias, field, target.Source()),
		}
	}

	return nil
}

func (r *Registry) Schema(source string) (*Schema, bool) {
	s, ok := r.schemas[source]

	return s, ok
}

// Schemas lists the registered schemas in registration order.
func (r *Registry) Schemas() []*Schema {
	out := make([]*Schema, 0, len(r.order))
	for _, source := range r.order {
		out = append(out, r.schemas[source])
	}

	return out
}
