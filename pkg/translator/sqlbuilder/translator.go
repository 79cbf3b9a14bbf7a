// Package sqlbuilder renders specification graphs as parameterized SQL
// SELECT statements with squirrel.
package sqlbuilder

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/architeacher/queryspec/pkg/logger"
	"github.com/architeacher/queryspec/pkg/spec"
)

const (
	// MetadataTable overrides the source name as table name.
	MetadataTable = "table"
	// MetadataColumns maps field names to column names.
	MetadataColumns = "columns"

	PlaceholderDollar   = "dollar"
	PlaceholderQuestion = "question"
	PlaceholderColon    = "colon"
	PlaceholderAt       = "at"
)

var (
	ErrUnsupportedOperator = errors.New("unsupported operator")
	ErrUnknownPlaceholder  = errors.New("unknown placeholder format")
	ErrNullComparison      = errors.New("ordering comparison with null")
)

type (
	Query struct {
		SQL  string `json:"sql"`
		Args []any  `json:"args"`
	}

	Translator struct {
		logger      logger.Logger
		placeholder sq.PlaceholderFormat
		quote       bool
	}

	Option func(*Translator)
)

func WithLogger(log logger.Logger) Option {
	return func(t *Translator) { t.logger = log }
}

func WithPlaceholder(format sq.PlaceholderFormat) Option {
	return func(t *Translator) { t.placeholder = format }
}

// WithQuotedIdentifiers wraps table, alias and column names in double quotes.
func WithQuotedIdentifiers(quote bool) Option {
	return func(t *Translator) { t.quote = quote }
}

// PlaceholderByName resolves one of the Placeholder* names.
func PlaceholderByName(name string) (sq.PlaceholderFormat, error) {
	switch strings.ToLower(name) {
	case PlaceholderDollar:
		return sq.Dollar, nil
	case PlaceholderQuestion:
		return sq.Question, nil
	case PlaceholderColon:
		return sq.Colon, nil
	case PlaceholderAt:
		return sq.AtP, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPlaceholder, name)
	}
}

func New(opts ...Option) *Translator {
	t := &Translator{
		logger:      logger.NewTestLogger(),
		placeholder: sq.Dollar,
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

func (t *Translator) Name() string { return "sql" }

// Translate builds the SELECT statement of root. Root and join filters, the
// cursor boundary, the consolidated ordering and pagination all end up in
// the single statement.
func (t *Translator) Translate(ctx context.Context, root *spec.Node) (Query, error) {
	v := &visitor{
		t:     t,
		log:   t.logger.WithContext(ctx),
		nodes: make(map[string]*spec.Node),
	}

	b, err := spec.Accept[sq.SelectBuilder](root, v, sq.Select().PlaceholderFormat(t.placeholder))
	if err != nil {
		return Query{}, fmt.Errorf("translating %s: %w", root, err)
	}

	query, args, err := b.ToSql()
	if err != nil {
		return Query{}, fmt.Errorf("building SQL for %s: %w", root, err)
	}

	if args == nil {
		args = []any{}
	}

	return Query{SQL: query, Args: args}, nil
}

func (t *Translator) ident(name string) string {
	if !t.quote {
		return name
	}

	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (t *Translator) tableRef(n *spec.Node) string {
	return t.ident(tableName(n)) + " AS " + t.ident(n.Alias())
}

func tableName(n *spec.Node) string {
	if table, ok := n.Metadata()[MetadataTable].(string); ok && table != "" {
		return table
	}

	return n.Source()
}
