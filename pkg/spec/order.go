package spec

import "strings"

type SortDirection string

const (
	SortAsc  SortDirection = "ASC"
	SortDesc SortDirection = "DESC"
)

func (d SortDirection) IsValid() bool { return d == SortAsc || d == SortDesc }

// ParseSortDirection accepts asc/desc in any case.
func ParseSortDirection(s string) (SortDirection, bool) {
	switch strings.ToUpper(s) {
	case string(SortAsc):
		return SortAsc, true
	case string(SortDesc):
		return SortDesc, true
	default:
		return "", false
	}
}

// Order is one sort rule. Sequence only serves the global merge of orders
// declared across the graph; it is not an identity.
type Order struct {
	Field      string
	Direction  SortDirection
	NullsFirst bool
	Sequence   int64
}
