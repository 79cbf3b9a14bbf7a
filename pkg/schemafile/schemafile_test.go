package schemafile_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/architeacher/queryspec/pkg/schemafile"
	"github.com/architeacher/queryspec/pkg/spec"
	"github.com/stretchr/testify/require"
)

func requireBlogRegistry(t *testing.T, registry *spec.Registry) {
	t.Helper()

	sources := make([]string, 0, 3)
	for _, s := range registry.Schemas() {
		sources = append(sources, s.Source())
	}

	require.Equal(t, []string{"users", "posts", "tags"}, sources)

	users, ok := registry.Schema("users")
	require.True(t, ok)
	require.Equal(t, []string{"id", "name", "status", "createdAt"}, users.Fields())
	require.Equal(t, "app_users", users.Metadata()["table"])

	columns, ok := users.Metadata()["columns"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "created_at", columns["createdAt"])

	posts, ok := users.Relation("posts")
	require.True(t, ok)
	require.Equal(t, spec.OneToMany, posts.Kind)
	require.Equal(t, &spec.SimpleLinkage{LocalField: "id", RelationField: "authorId"}, posts.Simple)

	postSchema, ok := registry.Schema("posts")
	require.True(t, ok)

	tags, ok := postSchema.Relation("tags")
	require.True(t, ok)
	require.Equal(t, spec.ManyToMany, tags.Kind)
	require.NotNil(t, tags.Select)
	require.False(t, *tags.Select)
	require.Equal(t, &spec.PivotLinkage{
		Table:    "post_tags",
		Local:    spec.PivotPair{PivotField: "post_id", ReferenceField: "id"},
		Relation: spec.PivotPair{PivotField: "tag_id", ReferenceField: "id"},
	}, tags.Pivot)
}

func TestLoad(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		path string
	}{
		{name: "yaml", path: "testdata/blog.yaml"},
		{name: "cue", path: "testdata/blog.cue"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			registry, err := schemafile.Load(tc.path)
			require.NoError(t, err)
			requireBlogRegistry(t, registry)
		})
	}
}

func TestLoadErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		return path
	}

	cases := []struct {
		name        string
		path        string
		expectedErr error
		expectedMsg string
	}{
		{
			name:        "unsupported extension",
			path:        write("schemas.toml", ""),
			expectedErr: schemafile.ErrUnsupportedFormat,
		},
		{
			name:        "missing file",
			path:        filepath.Join(dir, "absent.yaml"),
			expectedErr: os.ErrNotExist,
		},
		{
			name:        "unknown yaml key",
			path:        write("typo.yaml", "schemas:\n  - source: users\n    feilds: [id]\n    identifier: id\n"),
			expectedMsg: "field feilds not found",
		},
		{
			name:        "empty yaml document",
			path:        write("empty.yml", "schemas: []\n"),
			expectedErr: schemafile.ErrNoSchemas,
		},
		{
			name:        "cue without schemas",
			path:        write("other.cue", "tables: []\n"),
			expectedErr: schemafile.ErrNoSchemas,
		},
		{
			name:        "invalid cue",
			path:        write("broken.cue", "schemas: [\n"),
			expectedMsg: "failed to compile CUE schema document",
		},
		{
			name:        "invalid schema",
			path:        write("invalid.yaml", "schemas:\n  - source: users\n    fields: [name]\n    identifier: id\n"),
			expectedErr: spec.ErrSchemaDefinition,
		},
		{
			name: "dangling relation target",
			path: write("dangling.cue", `schemas: [{
	source: "users"
	fields: ["id"]
	identifier: "id"
	relations: [{alias: "posts", target: "posts", kind: "one_to_many"}]
}]
`),
			expectedErr: spec.ErrSchemaDefinition,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := schemafile.Load(tc.path)
			require.Error(t, err)

			if tc.expectedErr != nil {
				require.ErrorIs(t, err, tc.expectedErr)
			}

			if tc.expectedMsg != "" {
				require.ErrorContains(t, err, tc.expectedMsg)
			}
		})
	}
}

func TestFormatOf(t *testing.T) {
	t.Parallel()

	cases := []struct {
		path     string
		expected string
	}{
		{path: "a.yaml", expected: schemafile.FormatYAML},
		{path: "a.YML", expected: schemafile.FormatYAML},
		{path: "a.json", expected: schemafile.FormatYAML},
		{path: "dir/a.cue", expected: schemafile.FormatCUE},
	}

	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			t.Parallel()

			format, err := schemafile.FormatOf(tc.path)
			require.NoError(t, err)
			require.Equal(t, tc.expected, format)
		})
	}
}
