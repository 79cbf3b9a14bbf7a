package spec_test

import (
	"testing"

	"github.com/architeacher/queryspec/pkg/spec"
	"github.com/stretchr/testify/require"
)

func TestNewSchema(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name        string
		def         spec.SchemaDefinition
		expectedErr error
	}{
		{
			name:        "valid definition",
			def:         usersDefinition(),
			expectedErr: nil,
		},
		{
			name:        "missing source",
			def:         spec.SchemaDefinition{Fields: []string{"id"}, Identifier: "id"},
			expectedErr: spec.ErrSchemaDefinition,
		},
		{
			name:        "no fields",
			def:         spec.SchemaDefinition{Source: "users", Identifier: "id"},
			expectedErr: spec.ErrSchemaDefinition,
		},
		{
			name:        "duplicate field",
			def:         spec.SchemaDefinition{Source: "users", Fields: []string{"id", "id"}, Identifier: "id"},
			expectedErr: spec.ErrSchemaDefinition,
		},
		{
			name:        "identifier outside fields",
			def:         spec.SchemaDefinition{Source: "users", Fields: []string{"name"}, Identifier: "id"},
			expectedErr: spec.ErrSchemaDefinition,
		},
		{
			name: "many to many with simple linkage",
			def: spec.SchemaDefinition{
				Source: "posts", Fields: []string{"id"}, Identifier: "id",
				Relations: []spec.Relation{{
					Alias: "tags", Target: "tags", Kind: spec.ManyToMany,
					Simple: &spec.SimpleLinkage{LocalField: "id", RelationField: "postId"},
				}},
			},
			expectedErr: spec.ErrSchemaDefinition,
		},
		{
			name: "one to many with pivot linkage",
			def: spec.SchemaDefinition{
				Source: "users", Fields: []string{"id"}, Identifier: "id",
				Relations: []spec.Relation{{
					Alias: "posts", Target: "posts", Kind: spec.OneToMany,
					Pivot: &spec.PivotLinkage{Table: "user_posts"},
				}},
			},
			expectedErr: spec.ErrSchemaDefinition,
		},
		{
			name: "unknown relation kind",
			def: spec.SchemaDefinition{
				Source: "users", Fields: []string{"id"}, Identifier: "id",
				Relations: []spec.Relation{{Alias: "posts", Target: "posts", Kind: "some_to_some"}},
			},
			expectedErr: spec.ErrSchemaDefinition,
		},
		{
			name: "duplicate relation alias",
			def: spec.SchemaDefinition{
				Source: "users", Fields: []string{"id"}, Identifier: "id",
				Relations: []spec.Relation{
					{Alias: "posts", Target: "posts", Kind: spec.OneToMany},
					{Alias: "posts", Target: "posts", Kind: spec.OneToMany},
				},
			},
			expectedErr: spec.ErrSchemaDefinition,
		},
		{
			name: "local linkage field outside fields",
			def: spec.SchemaDefinition{
				Source: "users", Fields: []string{"id"}, Identifier: "id",
				Relations: []spec.Relation{{
					Alias: "posts", Target: "posts", Kind: spec.OneToMany,
					Simple: &spec.SimpleLinkage{LocalField: "uuid", RelationField: "authorId"},
				}},
			},
			expectedErr: spec.ErrSchemaField,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			schema, err := spec.NewSchema(tc.def)
			if tc.expectedErr != nil {
				require.ErrorIs(t, err, tc.expectedErr)
				require.Nil(t, schema)

				return
			}

			require.NoError(t, err)
			require.NotNil(t, schema)
		})
	}
}

func TestSchemaAccessors(t *testing.T) {
	t.Parallel()

	schema := spec.MustNewSchema(usersDefinition())

	require.Equal(t, "users", schema.Source())
	require.Equal(t, "users", schema.Alias())
	require.Equal(t, "id", schema.Identifier())
	require.True(t, schema.HasField("email"))
	require.False(t, schema.HasField("password"))
	require.Equal(t, map[string]any{"table": "app_users"}, schema.Metadata())

	fields := schema.Fields()
	fields[0] = "mutated"
	require.Equal(t, "id", schema.Fields()[0])

	rel, ok := schema.Relation("posts")
	require.True(t, ok)
	require.Equal(t, spec.OneToMany, rel.Kind)
	require.Equal(t, "authorId", rel.Simple.RelationField)

	rel.Simple.RelationField = "mutated"
	again, _ := schema.Relation("posts")
	require.Equal(t, "authorId", again.Simple.RelationField)

	_, ok = schema.Relation("comments")
	require.False(t, ok)

	aliases := make([]string, 0)
	for _, r := range schema.Relations() {
		aliases = append(aliases, r.Alias)
	}

	require.Equal(t, []string{"posts", "profile", "drafts"}, aliases)
}

func TestSchemaAliasDefaultsToSource(t *testing.T) {
	t.Parallel()

	aliased := spec.MustNewSchema(spec.SchemaDefinition{
		Source: "users", Alias: "u", Fields: []string{"id"}, Identifier: "id",
	})
	plain := spec.MustNewSchema(tagsDefinition())

	require.Equal(t, "u", aliased.Alias())
	require.Equal(t, "tags", plain.Alias())
	require.NotNil(t, plain.Metadata())
}

func TestMustNewSchemaPanics(t *testing.T) {
	t.Parallel()

	require.Panics(t, func() {
		spec.MustNewSchema(spec.SchemaDefinition{Source: "users"})
	})
}

func TestNewRegistry(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name        string
		defs        []spec.SchemaDefinition
		expectedErr error
	}{
		{
			name:        "closed set",
			defs:        []spec.SchemaDefinition{usersDefinition(), postsDefinition(), tagsDefinition(), profilesDefinition()},
			expectedErr: nil,
		},
		{
			name:        "unknown relation target",
			defs:        []spec.SchemaDefinition{usersDefinition(), postsDefinition(), tagsDefinition()},
			expectedErr: spec.ErrSchemaDefinition,
		},
		{
			name:        "duplicate source",
			defs:        []spec.SchemaDefinition{tagsDefinition(), tagsDefinition()},
			expectedErr: spec.ErrSchemaDefinition,
		},
		{
			name: "relation field missing on target",
			defs: []spec.SchemaDefinition{
				{
					Source: "users", Fields: []string{"id"}, Identifier: "id",
					Relations: []spec.Relation{{
						Alias: "tags", Target: "tags", Kind: spec.OneToMany,
						Simple: &spec.SimpleLinkage{LocalField: "id", RelationField: "ownerId"},
					}},
				},
				tagsDefinition(),
			},
			expectedErr: spec.ErrSchemaDefinition,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			registry, err := spec.NewRegistry(tc.defs...)
			if tc.expectedErr != nil {
				require.ErrorIs(t, err, tc.expectedErr)

				return
			}

			require.NoError(t, err)
			require.Len(t, registry.Schemas(), len(tc.defs))
		})
	}
}
