package spec_test

import (
	"testing"

	"github.com/architeacher/queryspec/pkg/spec"
	"github.com/stretchr/testify/require"
)

func TestJoinSimpleRelation(t *testing.T) {
	t.Parallel()

	f := newFixtures(t)
	b := spec.NewBuilder()
	child := b.LeftJoin(f.posts)
	root := b.Root(f.users).Join("posts", child)

	require.NoError(t, root.Err())

	jc, ok := root.Joined("posts")
	require.True(t, ok)
	require.Same(t, child, jc.Node)
	require.Equal(t, "posts", child.Alias())

	j := jc.Join
	require.Equal(t, "posts", j.Alias)
	require.Equal(t, spec.OneToMany, j.Kind)
	require.Equal(t, "posts", j.Target)
	require.Equal(t, "users", j.ParentAlias)
	require.Equal(t, "users", j.ParentSource)
	require.Equal(t, "id", j.ParentIdentifier)
	require.True(t, j.WithSelect)
	require.False(t, j.IsPivot())
	require.Nil(t, j.Pivot)
	require.Equal(t, &spec.SimpleLinkage{LocalField: "id", RelationField: "authorId"}, j.Simple)
	require.Equal(t, map[string]any{"table": "app_users"}, j.SchemaMetadata)
	require.Empty(t, j.RelationMetadata)
}

func TestJoinPivotRelation(t *testing.T) {
	t.Parallel()

	f := newFixtures(t)
	b := spec.NewBuilder()
	tags := b.InnerJoin(f.tags)
	posts := b.LeftJoin(f.posts).Join("tags", tags)
	root := b.Root(f.users).Join("posts", posts)

	require.NoError(t, root.GraphErr())

	jc, ok := posts.Joined("tags")
	require.True(t, ok)
	require.True(t, jc.Join.IsPivot())
	require.Nil(t, jc.Join.Simple)
	require.Equal(t, "posts", jc.Join.ParentAlias)
	require.Equal(t, "post_tags", jc.Join.Pivot.Table)
	require.Equal(t, spec.PivotPair{PivotField: "tag_id", ReferenceField: "id"}, jc.Join.Pivot.Relation)
}

func TestJoinOptions(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name        string
		parent      func(f fixtures) *spec.Schema
		alias       string
		child       func(f fixtures, b *spec.Builder) *spec.Node
		opts        []spec.JoinOption
		expectedErr error
		check       func(t *testing.T, j spec.Join)
	}{
		{
			name:   "linkage supplied at join time",
			parent: func(f fixtures) *spec.Schema { return f.users },
			alias:  "drafts",
			child:  func(f fixtures, b *spec.Builder) *spec.Node { return b.LeftJoin(f.posts) },
			opts:   []spec.JoinOption{spec.WithSimpleLinkage("id", "authorId")},
			check: func(t *testing.T, j spec.Join) {
				t.Helper()
				require.Equal(t, "authorId", j.Simple.RelationField)
				require.False(t, j.WithSelect, "declared relation default applies")
				require.Equal(t, map[string]any{"note": "unpublished"}, j.RelationMetadata)
			},
		},
		{
			name:   "select option overrides relation default",
			parent: func(f fixtures) *spec.Schema { return f.users },
			alias:  "drafts",
			child:  func(f fixtures, b *spec.Builder) *spec.Node { return b.LeftJoin(f.posts) },
			opts:   []spec.JoinOption{spec.WithSimpleLinkage("id", "authorId"), spec.WithSelect(true)},
			check: func(t *testing.T, j spec.Join) {
				t.Helper()
				require.True(t, j.WithSelect)
			},
		},
		{
			name:   "select option disables projection",
			parent: func(f fixtures) *spec.Schema { return f.users },
			alias:  "posts",
			child:  func(f fixtures, b *spec.Builder) *spec.Node { return b.InnerJoin(f.posts) },
			opts:   []spec.JoinOption{spec.WithSelect(false)},
			check: func(t *testing.T, j spec.Join) {
				t.Helper()
				require.False(t, j.WithSelect)
			},
		},
		{
			name:   "pivot linkage supplied at join time",
			parent: func(f fixtures) *spec.Schema { return f.posts },
			alias:  "labels",
			child:  func(f fixtures, b *spec.Builder) *spec.Node { return b.InnerJoin(f.tags) },
			opts: []spec.JoinOption{spec.WithPivotLinkage("post_labels",
				spec.PivotPair{PivotField: "post_id", ReferenceField: "id"},
				spec.PivotPair{PivotField: "label_id", ReferenceField: "id"},
			)},
			check: func(t *testing.T, j spec.Join) {
				t.Helper()
				require.Equal(t, "post_labels", j.Pivot.Table)
				require.Equal(t, "label_id", j.Pivot.Relation.PivotField)
			},
		},
		{
			name:        "pivot linkage on one to many",
			parent:      func(f fixtures) *spec.Schema { return f.users },
			alias:       "posts",
			child:       func(f fixtures, b *spec.Builder) *spec.Node { return b.LeftJoin(f.posts) },
			opts:        []spec.JoinOption{spec.WithPivotLinkage("x", spec.PivotPair{PivotField: "a", ReferenceField: "id"}, spec.PivotPair{PivotField: "b", ReferenceField: "id"})},
			expectedErr: spec.ErrRelationShape,
		},
		{
			name:        "simple linkage on many to many",
			parent:      func(f fixtures) *spec.Schema { return f.posts },
			alias:       "tags",
			child:       func(f fixtures, b *spec.Builder) *spec.Node { return b.InnerJoin(f.tags) },
			opts:        []spec.JoinOption{spec.WithSimpleLinkage("id", "id")},
			expectedErr: spec.ErrRelationShape,
		},
		{
			name:        "missing linkage",
			parent:      func(f fixtures) *spec.Schema { return f.users },
			alias:       "drafts",
			child:       func(f fixtures, b *spec.Builder) *spec.Node { return b.LeftJoin(f.posts) },
			expectedErr: spec.ErrRelationShape,
		},
		{
			name:        "missing pivot linkage",
			parent:      func(f fixtures) *spec.Schema { return f.posts },
			alias:       "labels",
			child:       func(f fixtures, b *spec.Builder) *spec.Node { return b.InnerJoin(f.tags) },
			expectedErr: spec.ErrRelationShape,
		},
		{
			name:        "linkage field unknown on child",
			parent:      func(f fixtures) *spec.Schema { return f.users },
			alias:       "drafts",
			child:       func(f fixtures, b *spec.Builder) *spec.Node { return b.LeftJoin(f.posts) },
			opts:        []spec.JoinOption{spec.WithSimpleLinkage("id", "ownerId")},
			expectedErr: spec.ErrSchemaField,
		},
		{
			name:        "unknown relation",
			parent:      func(f fixtures) *spec.Schema { return f.users },
			alias:       "comments",
			child:       func(f fixtures, b *spec.Builder) *spec.Node { return b.LeftJoin(f.posts) },
			expectedErr: spec.ErrRelationNotFound,
		},
		{
			name:        "child schema differs from target",
			parent:      func(f fixtures) *spec.Schema { return f.users },
			alias:       "posts",
			child:       func(f fixtures, b *spec.Builder) *spec.Node { return b.LeftJoin(f.tags) },
			expectedErr: spec.ErrRelationShape,
		},
		{
			name:        "root child",
			parent:      func(f fixtures) *spec.Schema { return f.users },
			alias:       "posts",
			child:       func(f fixtures, b *spec.Builder) *spec.Node { return b.Root(f.posts) },
			expectedErr: spec.ErrRelationShape,
		},
		{
			name:        "child from another sequence",
			parent:      func(f fixtures) *spec.Schema { return f.users },
			alias:       "posts",
			child:       func(f fixtures, _ *spec.Builder) *spec.Node { return spec.NewBuilder().LeftJoin(f.posts) },
			expectedErr: spec.ErrRelationShape,
		},
		{
			name:        "nil child",
			parent:      func(f fixtures) *spec.Schema { return f.users },
			alias:       "posts",
			child:       func(fixtures, *spec.Builder) *spec.Node { return nil },
			expectedErr: spec.ErrRelationShape,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			f := newFixtures(t)
			b := spec.NewBuilder()
			root := b.Root(tc.parent(f))

			root.Join(tc.alias, tc.child(f, b), tc.opts...)

			if tc.expectedErr != nil {
				require.ErrorIs(t, root.Err(), tc.expectedErr)
				require.Empty(t, root.Joins())

				return
			}

			require.NoError(t, root.Err())

			jc, ok := root.Joined(tc.alias)
			require.True(t, ok)
			tc.check(t, jc.Join)
		})
	}
}

func TestJoinSameAliasReplacesInPlace(t *testing.T) {
	t.Parallel()

	f := newFixtures(t)
	b := spec.NewBuilder()
	first := b.LeftJoin(f.posts)
	replacement := b.InnerJoin(f.posts)

	root := b.Root(f.users).
		Join("posts", first).
		Join("profile", b.LeftJoin(f.profiles)).
		Join("posts", replacement, spec.WithSelect(false))

	require.NoError(t, root.Err())

	joins := root.Joins()
	require.Len(t, joins, 2)
	require.Equal(t, "posts", joins[0].Join.Alias)
	require.Same(t, replacement, joins[0].Node)
	require.False(t, joins[0].Join.WithSelect)
	require.Equal(t, "profile", joins[1].Join.Alias)
}

func TestJoinSelfIsRejected(t *testing.T) {
	t.Parallel()

	self := spec.MustNewSchema(spec.SchemaDefinition{
		Source: "employees", Fields: []string{"id", "managerId"}, Identifier: "id",
		Relations: []spec.Relation{{
			Alias: "manager", Target: "employees", Kind: spec.ManyToOne,
			Simple: &spec.SimpleLinkage{LocalField: "managerId", RelationField: "id"},
		}},
	})

	b := spec.NewBuilder()
	child := b.LeftJoin(self)
	child.Join("manager", child)

	require.ErrorIs(t, child.Err(), spec.ErrRelationShape)

	root := b.Root(self).Join("manager", b.LeftJoin(self))
	require.NoError(t, root.Err())
}

func TestJoinRenamesNestedParentAlias(t *testing.T) {
	t.Parallel()

	f := newFixtures(t)
	b := spec.NewBuilder()
	tags := b.InnerJoin(f.tags)
	drafts := b.LeftJoin(f.posts).Join("tags", tags)

	nested, ok := drafts.Joined("tags")
	require.True(t, ok)
	require.Equal(t, "posts", nested.Join.ParentAlias)

	root := b.Root(f.users).
		Join("posts", b.InnerJoin(f.posts)).
		Join("drafts", drafts, spec.WithSimpleLinkage("id", "authorId"))

	require.NoError(t, root.GraphErr())
	require.Equal(t, "drafts", drafts.Alias())

	nested, ok = drafts.Joined("tags")
	require.True(t, ok)
	require.Equal(t, "drafts", nested.Join.ParentAlias)
	require.Same(t, tags, nested.Node)

	var aliases []string
	root.Walk(func(n *spec.Node) { aliases = append(aliases, n.Alias()) })
	require.Equal(t, []string{"users", "posts", "drafts", "tags"}, aliases)
}

func TestJoinKeepsTreeOwnership(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		build func(f fixtures, b *spec.Builder) (*spec.Node, *spec.Node)
	}{
		{
			name: "child joined twice under different aliases",
			build: func(f fixtures, b *spec.Builder) (*spec.Node, *spec.Node) {
				posts := b.LeftJoin(f.posts)
				root := b.Root(f.users).
					Join("posts", posts).
					Join("drafts", posts, spec.WithSimpleLinkage("id", "authorId"))

				return root, posts
			},
		},
		{
			name: "child owned by another parent",
			build: func(f fixtures, b *spec.Builder) (*spec.Node, *spec.Node) {
				posts := b.LeftJoin(f.posts)
				b.Root(f.users).Join("posts", posts)
				other := b.Root(f.users).Join("posts", posts)

				return other, posts
			},
		},
		{
			name: "child is an ancestor of the parent",
			build: func(f fixtures, b *spec.Builder) (*spec.Node, *spec.Node) {
				posts := b.LeftJoin(f.posts)
				author := b.InnerJoin(f.users)
				posts.Join("author", author)
				author.Join("posts", posts)

				return author, posts
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			parent, child := tc.build(newFixtures(t), spec.NewBuilder())

			require.ErrorIs(t, parent.Err(), spec.ErrRelationShape)
			require.Equal(t, "posts", child.Alias())

			count := 0
			parent.Walk(func(*spec.Node) { count++ })
			require.LessOrEqual(t, count, 2)
			require.ErrorIs(t, parent.GraphErr(), spec.ErrRelationShape)
		})
	}
}

func TestJoinReleasesReplacedChild(t *testing.T) {
	t.Parallel()

	f := newFixtures(t)
	b := spec.NewBuilder()
	first := b.LeftJoin(f.posts)

	root := b.Root(f.users).
		Join("posts", first).
		Join("posts", b.InnerJoin(f.posts)).
		Join("posts", b.InnerJoin(f.posts))
	require.NoError(t, root.Err())

	other := b.Root(f.users).Join("posts", first)
	require.NoError(t, other.Err())

	posts, ok := other.Joined("posts")
	require.True(t, ok)
	require.Same(t, first, posts.Node)

	other.Reset()
	require.Empty(t, other.Joins())

	again := b.Root(f.users).Join("posts", first)
	require.NoError(t, again.Err())

	rejoined := again.Join("posts", first, spec.WithSelect(false))
	require.NoError(t, rejoined.Err())
	require.Len(t, rejoined.Joins(), 1)
}
