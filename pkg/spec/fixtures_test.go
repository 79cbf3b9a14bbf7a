package spec_test

import (
	"testing"

	"github.com/architeacher/queryspec/pkg/spec"
	"github.com/stretchr/testify/require"
)

func usersDefinition() spec.SchemaDefinition {
	hidden := false

	return spec.SchemaDefinition{
		Source:     "users",
		Fields:     []string{"id", "name", "email", "status", "createdAt", "deletedAt"},
		Identifier: "id",
		Metadata:   map[string]any{"table": "app_users"},
		Relations: []spec.Relation{
			{
				Alias:  "posts",
				Target: "posts",
				Kind:   spec.OneToMany,
				Simple: &spec.SimpleLinkage{LocalField: "id", RelationField: "authorId"},
			},
			{
				Alias:  "profile",
				Target: "profiles",
				Kind:   spec.OneToOne,
				Simple: &spec.SimpleLinkage{LocalField: "id", RelationField: "userId"},
			},
			{
				Alias:    "drafts",
				Target:   "posts",
				Kind:     spec.OneToMany,
				Select:   &hidden,
				Metadata: map[string]any{"note": "unpublished"},
			},
		},
	}
}

func postsDefinition() spec.SchemaDefinition {
	return spec.SchemaDefinition{
		Source:     "posts",
		Fields:     []string{"id", "authorId", "title", "createdAt"},
		Identifier: "id",
		Relations: []spec.Relation{
			{
				Alias:  "author",
				Target: "users",
				Kind:   spec.ManyToOne,
				Simple: &spec.SimpleLinkage{LocalField: "authorId", RelationField: "id"},
			},
			{
				Alias:  "tags",
				Target: "tags",
				Kind:   spec.ManyToMany,
				Pivot: &spec.PivotLinkage{
					Table:    "post_tags",
					Local:    spec.PivotPair{PivotField: "post_id", ReferenceField: "id"},
					Relation: spec.PivotPair{PivotField: "tag_id", ReferenceField: "id"},
				},
			},
			{
				Alias:  "labels",
				Target: "tags",
				Kind:   spec.ManyToMany,
			},
		},
	}
}

func tagsDefinition() spec.SchemaDefinition {
	return spec.SchemaDefinition{
		Source:     "tags",
		Fields:     []string{"id", "label"},
		Identifier: "id",
	}
}

func profilesDefinition() spec.SchemaDefinition {
	return spec.SchemaDefinition{
		Source:     "profiles",
		Fields:     []string{"id", "userId", "bio"},
		Identifier: "id",
	}
}

type fixtures struct {
	users    *spec.Schema
	posts    *spec.Schema
	tags     *spec.Schema
	profiles *spec.Schema
}

func newFixtures(t *testing.T) fixtures {
	t.Helper()

	registry, err := spec.NewRegistry(usersDefinition(), postsDefinition(), tagsDefinition(), profilesDefinition())
	require.NoError(t, err)

	get := func(source string) *spec.Schema {
		s, ok := registry.Schema(source)
		require.True(t, ok)

		return s
	}

	return fixtures{
		users:    get("users"),
		posts:    get("posts"),
		tags:     get("tags"),
		profiles: get("profiles"),
	}
}
