package spec

import (
	"errors"
	"fmt"
)

var (
	ErrSchemaDefinition = errors.New("invalid schema definition")
	ErrSchemaField      = errors.New("unknown schema field")
	ErrFilterValue      = errors.New("invalid filter value")
	ErrRelationNotFound = errors.New("relation not found")
	ErrRelationShape    = errors.New("invalid relation shape")
	ErrCursor           = errors.New("invalid cursor")
	ErrPagination       = errors.New("invalid pagination")
	ErrSortDirection    = errors.New("invalid sort direction")
)

type (
	// SchemaDefinitionError reports a malformed schema descriptor.
	SchemaDefinitionError struct {
		Schema  string
		Message string
	}

	// SchemaFieldError reports a field that is not declared on the schema.
	SchemaFieldError struct {
		Schema string
		Field  string
	}

	// FilterValueError reports a value whose shape does not satisfy the operator.
	FilterValueError struct {
		Field    string
		Operator Operator
		Expected string
	}

	// RelationNotFoundError reports a relation alias the schema does not declare.
	RelationNotFoundError struct {
		Schema string
		Alias  string
	}

	// RelationShapeError reports join parameters that contradict the declared relation.
	RelationShapeError struct {
		Schema  string
		Alias   string
		Kind    RelationKind
		Message string
	}

	// CursorError reports a malformed cursor. Err carries the underlying
	// field error, if any.
	CursorError struct {
		Message string
		Err     error
	}

	// PaginationError reports a negative take or skip.
	PaginationError struct {
		Name  string
		Value int
	}

	// SortDirectionError reports an order direction other than ASC or DESC.
	SortDirectionError struct {
		Field     string
		Direction SortDirection
	}
)

func (e *SchemaDefinitionError) Error() string {
	return fmt.Sprintf("schema %q: %s", e.Schema, e.Message)
}

func (e *SchemaDefinitionError) Unwrap() error { return ErrSchemaDefinition }

func (e *SchemaFieldError) Error() string {
	return fmt.Sprintf("field %q is not defined on schema %q", e.Field, e.Schema)
}

func (e *SchemaFieldError) Unwrap() error { return ErrSchemaField }

func (e *FilterValueError) Error() string {
	return fmt.Sprintf("operator %s on field %q expects %s", e.Operator, e.Field, e.Expected)
}

func (e *FilterValueError) Unwrap() error { return ErrFilterValue }

func (e *RelationNotFoundError) Error() string {
	return fmt.Sprintf("relation %q is not defined on schema %q", e.Alias, e.Schema)
}

func (e *RelationNotFoundError) Unwrap() error { return ErrRelationNotFound }

func (e *RelationShapeError) Error() string {
	if e.Kind != "" {
		return fmt.Sprintf("relation %q (%s) on schema %q: %s", e.Alias, e.Kind, e.Schema, e.Message)
	}

	return fmt.Sprintf("relation %q on schema %q: %s", e.Alias, e.Schema, e.Message)
}

func (e *RelationShapeError) Unwrap() error { return ErrRelationShape }

func (e *CursorError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cursor: %s: %v", e.Message, e.Err)
	}

	return "cursor: " + e.Message
}

func (e *CursorError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrCursor, e.Err}
	}

	return []error{ErrCursor}
}

func (e *PaginationError) Error() string {
	return fmt.Sprintf("%s must be zero or positive, got %d", e.Name, e.Value)
}

func (e *PaginationError) Unwrap() error { return ErrPagination }

func (e *SortDirectionError) Error() string {
	return fmt.Sprintf("order on field %q: sort direction must be %s or %s, got %q", e.Field, SortAsc, SortDesc, e.Direction)
}

func (e *SortDirectionError) Unwrap() error { return ErrSortDirection }
