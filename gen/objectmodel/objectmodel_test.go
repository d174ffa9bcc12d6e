package objectmodel_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jplflyer/persist/catalog"
	"github.com/jplflyer/persist/gen/objectmodel"
	"github.com/jplflyer/persist/model"
	"github.com/jplflyer/persist/resolve"
)

func buildModel(t *testing.T) *model.Model {
	m := model.New("Demo")
	member := m.CreateTable("Member")
	member.CreateColumn("id", catalog.Serial).IsPrimaryKey = true
	member.CreateColumn("username", catalog.VarChar)

	post := m.CreateTable("Post")
	post.CreateColumn("id", catalog.Serial).IsPrimaryKey = true
	memberID := post.CreateColumn("memberId", catalog.Integer)
	memberID.ReferenceStr = "Member.id"

	errs := resolve.ResolveReferences(m)
	require.Empty(t, errs)
	return m
}

func TestBaseFilesAlwaysOverwritten(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	m := buildModel(t)
	cfg := &model.Generator{Name: "C++", OutputBasePath: dir, OutputClassPath: "model"}

	require.NoError(t, os.WriteFile(filepath.Join(dir, "Member_Base.h"), []byte("stale"), 0o644))

	g := &objectmodel.Generator{}
	require.NoError(t, g.Generate(m, cfg))

	content, err := os.ReadFile(filepath.Join(dir, "Member_Base.h"))
	require.NoError(t, err)
	assert.NotEqual(t, "stale", string(content))
	assert.Contains(t, string(content), "class Member_Base")
	assert.Contains(t, string(content), "class Post;")
}

func TestConcreteFilesWriteIfAbsent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	m := buildModel(t)
	cfg := &model.Generator{Name: "C++", OutputBasePath: dir, OutputClassPath: "model"}

	edited := []byte("// hand-edited Post.cpp")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Post.cpp"), edited, 0o644))

	g := &objectmodel.Generator{}
	require.NoError(t, g.Generate(m, cfg))
	require.NoError(t, g.Generate(m, cfg))

	content, err := os.ReadFile(filepath.Join(dir, "Post.cpp"))
	require.NoError(t, err)
	assert.Equal(t, edited, content)
}

func TestAllIncludesListsEveryTable(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	m := buildModel(t)
	cfg := &model.Generator{Name: "C++", OutputBasePath: dir, OutputClassPath: "model"}

	g := &objectmodel.Generator{}
	require.NoError(t, g.Generate(m, cfg))

	content, err := os.ReadFile(filepath.Join(dir, "AllIncludes.h"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "Member.h")
	assert.Contains(t, string(content), "Post.h")
}
