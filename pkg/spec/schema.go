package spec

import (
	"fmt"
	"maps"
	"slices"
)

type RelationKind string

const (
	OneToOne   RelationKind = "one_to_one"
	OneToMany  RelationKind = "one_to_many"
	ManyToOne  RelationKind = "many_to_one"
	ManyToMany RelationKind = "many_to_many"
)

func (k RelationKind) IsValid() bool {
	switch k {
	case OneToOne, OneToMany, ManyToOne, ManyToMany:
		return true
	default:
		return false
	}
}

// IsPivot reports whether the relation is resolved through a pivot table.
func (k RelationKind) IsPivot() bool { return k == ManyToMany }

type (
	// SimpleLinkage joins parent.LocalField to child.RelationField.
	SimpleLinkage struct {
		LocalField    string `yaml:"local_field" json:"local_field"`
		RelationField string `yaml:"relation_field" json:"relation_field"`
	}

	// PivotPair links a column of the pivot table to a column of one side.
	PivotPair struct {
		PivotField     string `yaml:"pivot_field" json:"pivot_field"`
		ReferenceField string `yaml:"reference_field" json:"reference_field"`
	}

	// PivotLinkage joins parent and child through Table. Local references the
	// parent schema, Relation references the child schema.
	PivotLinkage struct {
		Table    string    `yaml:"table" json:"table"`
		Local    PivotPair `yaml:"local" json:"local"`
		Relation PivotPair `yaml:"relation" json:"relation"`
	}

	// Relation is the declarative description of a link from one schema to another.
	// Linkage is optional at declaration time; it can be supplied when joining.
	Relation struct {
		Alias    string         `yaml:"alias" json:"alias"`
		Target   string         `yaml:"target" json:"target"`
		Kind     RelationKind   `yaml:"kind" json:"kind"`
		Simple   *SimpleLinkage `yaml:"simple,omitempty" json:"simple,omitempty"`
		Pivot    *PivotLinkage  `yaml:"pivot,omitempty" json:"pivot,omitempty"`
		Select   *bool          `yaml:"select,omitempty" json:"select,omitempty"`
		Metadata map[string]any `yaml:"metadata,omitempty" json:"metadata,omitempty"`
	}

	SchemaDefinition struct {
		Source     string         `yaml:"source" json:"source"`
		Alias      string         `yaml:"alias,omitempty" json:"alias,omitempty"`
		Fields     []string       `yaml:"fields" json:"fields"`
		Identifier string         `yaml:"identifier" json:"identifier"`
		Relations  []Relation     `yaml:"relations,omitempty" json:"relations,omitempty"`
		Metadata   map[string]any `yaml:"metadata,omitempty" json:"metadata,omitempty"`
	}

	// Schema is the validated, immutable descriptor of one entity. It is shared
	// read-only by every node built from it.
	Schema struct {
		source     string
		alias      string
		fields     []string
		fieldSet   map[string]struct{}
		identifier string
		relations  map[string]Relation
		order      []string
		metadata   map[string]any
	}
)

// NewSchema validates def and builds the schema descriptor.
func NewSchema(def SchemaDefinition) (*Schema, error) {
	if def.Source == "" {
		return nil, &SchemaDefinitionError{Message: "source name is required"}
	}

	fail := func(format string, args ...any) (*Schema, error) {
		return nil, &SchemaDefinitionError{Schema: def.Source, Message: fmt.Sprintf(format, args...)}
	}

	if len(def.Fields) == 0 {
		return fail("at least one field is required")
	}

	fieldSet := make(map[string]struct{}, len(def.Fields))
	for _, field := range def.Fields {
		if field == "" {
			return fail("field names must not be empty")
		}

		if _, dup := fieldSet[field]; dup {
			return fail("field %q is declared more than once", field)
		}

		fieldSet[field] = struct{}{}
	}

	if _, ok := fieldSet[def.Identifier]; !ok {
		return fail("identifier field %q is not one of the schema fields", def.Identifier)
	}

	s := &Schema{
		source:     def.Source,
		alias:      def.Alias,
		fields:     slices.Clone(def.Fields),
		fieldSet:   fieldSet,
		identifier: def.Identifier,
		relations:  make(map[string]Relation, len(def.Relations)),
		order:      make([]string, 0, len(def.Relations)),
		metadata:   cloneMetadata(def.Metadata),
	}

	if s.alias == "" {
		s.alias = s.source
	}

	for _, rel := range def.Relations {
		if err := s.validateRelation(rel); err != nil {
			return nil, err
		}

		if _, dup := s.relations[rel.Alias]; dup {
			return fail("relation %q is declared more than once", rel.Alias)
		}

		s.relations[rel.Alias] = cloneRelation(rel)
		s.order = append(s.order, rel.Alias)
	}

	return s, nil
}

// MustNewSchema is like NewSchema but panics on an invalid definition.
// Intended for package-level schema declarations.
func MustNewSchema(def SchemaDefinition) *Schema {
	s, err := NewSchema(def)
	if err != nil {
		panic(err)
	}

	return s
}

func (s *Schema) validateRelation(rel Relation) error {
	fail := func(format string, args ...any) error {
		return &SchemaDefinitionError{
			Schema:  s.source,
			Message: fmt.Sprintf("relation %q: ", rel.Alias) + fmt.Sprintf(format, args...),
		}
	}

	switch {
	case rel.Alias == "":
		return &SchemaDefinitionError{Schema: s.source, Message: "relation alias is required"}
	case rel.Target == "":
		return fail("target source name is required")
	case !rel.Kind.IsValid():
		return fail("unknown relation kind %q", rel.Kind)
	case rel.Simple != nil && rel.Pivot != nil:
		return fail("declares both simple and pivot linkage")
	case rel.Kind.IsPivot() && rel.Simple != nil:
		return fail("%s requires pivot linkage", rel.Kind)
	case !rel.Kind.IsPivot() && rel.Pivot != nil:
		return fail("%s requires simple linkage", rel.Kind)
	}

	if rel.Simple != nil && rel.Simple.LocalField != "" && !s.HasField(rel.Simple.LocalField) {
		return &SchemaFieldError{Schema: s.source, Field: rel.Simple.LocalField}
	}

	if rel.Pivot != nil {
		if rel.Pivot.Table == "" {
			return fail("pivot table is required")
		}

		if ref := rel.Pivot.Local.ReferenceField; ref != "" && !s.HasField(ref) {
			return &SchemaFieldError{Schema: s.source, Field: ref}
		}
	}

	return nil
}

func (s *Schema) Source() string     { return s.source }
func (s *Schema) Alias() string      { return s.alias }
func (s *Schema) Identifier() string { return s.identifier }
func (s *Schema) Fields() []string   { return slices.Clone(s.fields) }

func (s *Schema) HasField(field string) bool {
	_, ok := s.fieldSet[field]

	return ok
}

// Metadata returns a copy of the schema metadata, never nil.
func (s *Schema) Metadata() map[string]any { return cloneMetadata(s.metadata) }

func (s *Schema) Relation(alias string) (Relation, bool) {
	rel, ok := s.relations[alias]
	if !ok {
		return Relation{}, false
	}

	return cloneRelation(rel), true
}

// Relations lists relations in declaration order.
func (s *Schema) Relations() []Relation {
	out := make([]Relation, 0, len(s.order))
	for _, alias := range s.order {
		out = append(out, cloneRelation(s.relations[alias]))
	}

	return out
}

func (s *Schema) checkField(field string) error {
	if !s.HasField(field) {
		return &SchemaFieldError{Schema: s.source, Field: field}
	}

	return nil
}

func cloneMetadata(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}

	return maps.Clone(m)
}

func cloneRelation(rel Relation) Relation {
	out := rel
	out.Metadata = cloneMetadata(rel.Metadata)

	if rel.Simple != nil {
		simple := *rel.Simple
		out.Simple = &simple
	}

	if rel.Pivot != nil {
		pivot := *rel.Pivot
		out.Pivot = &pivot
	}

	if rel.Select != nil {
		sel := *rel.Select
		out.Select = &sel
	}

	return out
}
