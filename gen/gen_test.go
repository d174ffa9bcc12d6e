package gen_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jplflyer/persist/catalog"
	"github.com/jplflyer/persist/gen"
	"github.com/jplflyer/persist/model"
)

func TestWriteAlwaysOverwrites(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	w := gen.NewWriter(dir)

	require.NoError(t, w.WriteAlways("a/b.txt", []byte("first")))
	require.NoError(t, w.WriteAlways("a/b.txt", []byte("second")))

	content, err := os.ReadFile(filepath.Join(dir, "a", "b.txt"))
	require.NoError(t, err)
	assert.Equal(t, "second", string(content))
}

func TestWriteIfAbsentSkipsExisting(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	w := gen.NewWriter(dir)

	wrote, err := w.WriteIfAbsent("Post.cpp", []byte("generated"))
	require.NoError(t, err)
	assert.True(t, wrote)

	wrote, err = w.WriteIfAbsent("Post.cpp", []byte("would overwrite the user's edits"))
	require.NoError(t, err)
	assert.False(t, wrote)

	content, err := os.ReadFile(filepath.Join(dir, "Post.cpp"))
	require.NoError(t, err)
	assert.Equal(t, "generated", string(content))
}

func TestForwardPointerNameDefaultsToParentTable(t *testing.T) {
	t.Parallel()

	m := model.New("Demo")
	member := m.CreateTable("Member")
	id := member.CreateColumn("id", catalog.Serial)
	id.IsPrimaryKey = true

	post := m.CreateTable("Post")
	memberID := post.CreateColumn("memberId", catalog.Integer)
	memberID.References = id

	assert.Equal(t, "member", gen.ForwardPointerName(memberID))

	memberID.RefPtrName = "author"
	assert.Equal(t, "author", gen.ForwardPointerName(memberID))
}

func TestReverseCollectionNameDefaultSuffix(t *testing.T) {
	t.Parallel()

	m := model.New("Demo")
	post := m.CreateTable("Post")
	id := post.CreateColumn("id", catalog.Serial)
	id.IsPrimaryKey = true

	assert.Equal(t, "postVector", gen.ReverseCollectionName(id, "Vector"))

	id.ReversePtrName = "posts"
	assert.Equal(t, "posts", gen.ReverseCollectionName(id, "Vector"))
}

func TestClassPathToSlashed(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "com/example/app", gen.ClassPathToSlashed("com.example.app"))
}
