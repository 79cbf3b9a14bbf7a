package spec

import (
	"cmp"
	"slices"
)

// OrderKey is one entry of the consolidated ordering of a graph.
type OrderKey struct {
	Alias      string
	Field      string
	Direction  SortDirection
	NullsFirst bool
	Sequence   int64
	FromCursor bool
}

type Ordering struct {
	Keys []OrderKey
}

func (o Ordering) IsEmpty() bool { return len(o.Keys) == 0 }

// ConsolidateOrdering merges the orders declared anywhere in the graph below
// root into one list. Cursor keys of root come first, in the cursor
// direction; the remaining orders follow by ascending sequence, skipping root
// fields the cursor already covers.
func ConsolidateOrdering(root *Node) Ordering {
	var declared []OrderKey

	root.Walk(func(n *Node) {
		for _, o := range n.orders {
			declared = append(declared, OrderKey{
				Alias:      n.alias,
				Field:      o.Field,
				Direction:  o.Direction,
				NullsFirst: o.NullsFirst,
				Sequence:   o.Sequence,
			})
		}
	})

	slices.SortStableFunc(declared, func(a, b OrderKey) int {
		return cmp.Compare(a.Sequence, b.Sequence)
	})

	cursor, ok := root.Cursor()
	if !ok {
		return Ordering{Keys: declared}
	}

	keys := make([]OrderKey, 0, len(declared)+len(cursor.fields))

	for _, f := range cursor.fields {
		key := OrderKey{
			Alias:      root.alias,
			Field:      f.Field,
			Direction:  cursor.direction,
			Sequence:   cursor.sequence,
			FromCursor: true,
		}

		if i := slices.IndexFunc(declared, func(k OrderKey) bool {
			return k.Alias == root.alias && k.Field == f.Field
		}); i >= 0 {
			key.NullsFirst = declared[i].NullsFirst
		}

		keys = append(keys, key)
	}

	for _, k := range declared {
		if k.Alias == root.alias && cursor.Covers(k.Field) {
			continue
		}

		keys = append(keys, k)
	}

	return Ordering{Keys: keys}
}
