package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jplflyer/persist/catalog"
	"github.com/jplflyer/persist/model"
)

func TestCamelToLowerRoundTrip(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"id":          "id",
		"ForumThread": "forum_thread",
		"URLParser":   "url_parser",
		"Member":      "member",
		"DbName":      "db_name",
	}
	for in, want := range cases {
		assert.Equal(t, want, model.CamelToLower(in), "input %q", in)
	}
}

func TestFirstUpperFirstLower(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Member", model.FirstUpper("member"))
	assert.Equal(t, "member", model.FirstLower("Member"))
	assert.Equal(t, "", model.FirstUpper(""))
	assert.Equal(t, "", model.FirstLower(""))
}

func buildDemoModel() *model.Model {
	m := model.New("Demo")
	member := m.CreateTable("Member")
	member.DbName = "member"

	id := member.CreateColumn("id", catalog.Serial)
	id.DbName = "id"
	id.IsPrimaryKey = true
	id.Nullable = false

	username := member.CreateColumn("username", catalog.VarChar)
	username.DbName = "username"
	username.Length = 64

	return m
}

// TestRoundTrip is the literal S1 scenario from the spec: a minimal model
// serializes then reloads to a deep-equal model.
func TestRoundTrip(t *testing.T) {
	t.Parallel()

	m := buildDemoModel()
	buf, err := m.ToJSON()
	require.NoError(t, err)

	reloaded, err := model.Load(buf)
	require.NoError(t, err)

	assert.True(t, m.DeepEquals(reloaded), "expected round-tripped model to be deep-equal")

	member := reloaded.FindTable("Member")
	require.NotNil(t, member)
	assert.Equal(t, "member", member.DbName)

	idCol := member.FindColumn("id")
	require.NotNil(t, idCol)
	assert.Equal(t, catalog.Serial, idCol.DataType)
	assert.True(t, idCol.IsPrimaryKey)
	assert.False(t, idCol.Nullable)

	usernameCol := member.FindColumn("username")
	require.NotNil(t, usernameCol)
	assert.Equal(t, catalog.VarChar, usernameCol.DataType)
	assert.Equal(t, 64, usernameCol.Length)
	assert.True(t, usernameCol.Nullable, "nullable defaults to true")
	assert.True(t, usernameCol.Serialize, "serialize defaults to true")
}

func TestDefaultsOmittedWhenAtDefaultValue(t *testing.T) {
	t.Parallel()

	m := model.New("Demo")
	tbl := m.CreateTable("Widget")
	tbl.DbName = "widget"
	tbl.CreateColumn("name", catalog.Text)

	buf, err := m.ToJSON()
	require.NoError(t, err)

	assert.NotContains(t, string(buf), `"nullable"`)
	assert.NotContains(t, string(buf), `"serialize"`)
}

func TestUnknownDataTypeFailsToLoad(t *testing.T) {
	t.Parallel()

	_, err := model.Load([]byte(`{"name":"Bad","tables":[{"name":"T","dbName":"t","columns":[{"name":"x","dbName":"x","dataType":"Cobol"}]}]}`))
	assert.Error(t, err)
}

func TestReferenceStrRoundTripsUnresolved(t *testing.T) {
	t.Parallel()

	m := model.New("Demo")
	post := m.CreateTable("Post")
	post.DbName = "post"
	memberID := post.CreateColumn("memberId", catalog.Integer)
	memberID.DbName = "member_id"
	memberID.ReferenceStr = "Member.id"

	buf, err := m.ToJSON()
	require.NoError(t, err)

	reloaded, err := model.Load(buf)
	require.NoError(t, err)

	col := reloaded.FindTable("Post").FindColumn("memberId")
	require.NotNil(t, col)
	assert.Equal(t, "Member.id", col.ReferenceStr)
	assert.Nil(t, col.References, "resolution is the resolver's job, not the loader's")
}

func TestDeepEqualsIgnoresMigrationBookkeeping(t *testing.T) {
	t.Parallel()

	a := buildDemoModel()
	b := buildDemoModel()

	// Bookkeeping-only differences must not affect DeepEquals.
	a.GeneratedVersion = 3
	a.FindTable("Member").DbNameGenerated = "member_old"
	a.FindTable("Member").DeletedColumns = append(a.FindTable("Member").DeletedColumns, &model.Column{Name: "ghost"})

	assert.True(t, a.DeepEquals(b))
}

func TestDeepEqualsDetectsRealDifference(t *testing.T) {
	t.Parallel()

	a := buildDemoModel()
	b := buildDemoModel()
	b.FindTable("Member").FindColumn("username").Length = 128

	assert.False(t, a.DeepEquals(b))
}

func TestSortTablesAndColumns(t *testing.T) {
	t.Parallel()

	m := model.New("Demo")
	m.CreateTable("Zebra")
	m.CreateTable("Alpha")
	m.SortTables()
	assert.Equal(t, "Alpha", m.Tables[0].Name)
	assert.Equal(t, "Zebra", m.Tables[1].Name)

	tbl := m.CreateTable("Thing")
	tbl.CreateColumn("zzz", catalog.Text)
	pk := tbl.CreateColumn("id", catalog.Serial)
	pk.IsPrimaryKey = true
	tbl.SortColumns()
	assert.True(t, tbl.Columns[0].IsPrimaryKey)
}

func TestDirtyFlag(t *testing.T) {
	t.Parallel()

	m := model.New("Demo")
	assert.False(t, m.IsDirty())
	m.CreateTable("Thing")
	assert.True(t, m.IsDirty())
	m.MarkClean()
	assert.False(t, m.IsDirty())
}
