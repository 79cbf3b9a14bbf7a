// Package querydoc decodes YAML query documents and applies them to a schema
// registry through the fluent specification API.
package querydoc

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/architeacher/queryspec/pkg/spec"
	"gopkg.in/yaml.v3"
)

var ErrInvalidDocument = errors.New("invalid query document")

type (
	// Document describes the root node of a query.
	Document struct {
		NodeBody `yaml:",inline"`

		From   string   `yaml:"from"`
		Fields []string `yaml:"fields,omitempty"`
		Cursor *Cursor  `yaml:"cursor,omitempty"`
		Take   int      `yaml:"take,omitempty"`
		Skip   int      `yaml:"skip,omitempty"`
	}

	// NodeBody is shared by the root and the joined nodes.
	NodeBody struct {
		Filters []Step  `yaml:"filters,omitempty"`
		Order   []Order `yaml:"order,omitempty"`
		Joins   []Join  `yaml:"joins,omitempty"`
	}

	// Join attaches the target of Relation. Type is inner, left or outer.
	Join struct {
		NodeBody `yaml:",inline"`

		Relation string              `yaml:"relation"`
		Type     string              `yaml:"type,omitempty"`
		Select   *bool               `yaml:"select,omitempty"`
		Fields   []string            `yaml:"fields,omitempty"`
		Simple   *spec.SimpleLinkage `yaml:"simple,omitempty"`
		Pivot    *spec.PivotLinkage  `yaml:"pivot,omitempty"`
	}

	// Step is one call of the where/and/or chain; exactly one key is set.
	Step struct {
		Where *Condition `yaml:"where,omitempty"`
		And   *Condition `yaml:"and,omitempty"`
		Or    *Condition `yaml:"or,omitempty"`
	}

	// Condition is a filter (field and op) or a group (all or any).
	Condition struct {
		Field string      `yaml:"field,omitempty"`
		Op    string      `yaml:"op,omitempty"`
		Value yaml.Node   `yaml:"value,omitempty"`
		All   []Condition `yaml:"all,omitempty"`
		Any   []Condition `yaml:"any,omitempty"`
	}

	Order struct {
		Field     string `yaml:"field"`
		Direction string `yaml:"direction,omitempty"`
		Nulls     string `yaml:"nulls,omitempty"`
	}

	Cursor struct {
		Op        string        `yaml:"op"`
		Direction string        `yaml:"direction,omitempty"`
		Fields    []CursorField `yaml:"fields"`
	}

	CursorField struct {
		Field string    `yaml:"field"`
		Value yaml.Node `yaml:"value"`
	}
)

func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read query document: %w", err)
	}

	return Decode(data)
}

// Decode rejects unknown keys so that misspelled options surface.
func Decode(data []byte) (*Document, error) {
	var doc Document

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML query document: %w", err)
	}

	if doc.From == "" {
		return nil, fmt.Errorf("%w: from is required", ErrInvalidDocument)
	}

	return &doc, nil
}
