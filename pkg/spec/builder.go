package spec

import "sync"

// Builder creates nodes bound to one Sequence. Nodes can only be joined to
// nodes created from the same sequence.
type Builder struct {
	seq *Sequence
}

type BuilderOption func(*Builder)

func WithSequence(seq *Sequence) BuilderOption {
	return func(b *Builder) {
		if seq != nil {
			b.seq = seq
		}
	}
}

func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{seq: NewSequence()}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

var (
	defaultBuilder     *Builder
	defaultBuilderOnce sync.Once
)

// DefaultBuilder returns the process-wide builder. Its sequence is created
// once and never reset.
func DefaultBuilder() *Builder {
	defaultBuilderOnce.Do(func() {
		defaultBuilder = NewBuilder()
	})

	return defaultBuilder
}

func (b *Builder) Sequence() *Sequence { return b.seq }

// Root panics on a nil schema.
func (b *Builder) Root(schema *Schema) *Node { return newNode(KindRoot, schema, b.seq) }

func (b *Builder) InnerJoin(schema *Schema) *Node { return newNode(KindInnerJoin, schema, b.seq) }

func (b *Builder) LeftJoin(schema *Schema) *Node { return newNode(KindLeftJoin, schema, b.seq) }

func (b *Builder) OuterJoin(schema *Schema) *Node { return newNode(KindOuterJoin, schema, b.seq) }

// Root, InnerJoin, LeftJoin and OuterJoin build on DefaultBuilder.

func Root(schema *Schema) *Node      { return DefaultBuilder().Root(schema) }
func InnerJoin(schema *Schema) *Node { return DefaultBuilder().InnerJoin(schema) }
func LeftJoin(schema *Schema) *Node  { return DefaultBuilder().LeftJoin(schema) }
func OuterJoin(schema *Schema) *Node { return DefaultBuilder().OuterJoin(schema) }
