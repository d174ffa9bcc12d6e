package sqlgen_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jplflyer/persist/catalog"
	"github.com/jplflyer/persist/gen/sqlgen"
	"github.com/jplflyer/persist/model"
	"github.com/jplflyer/persist/resolve"
)

func s2Model(t *testing.T) *model.Model {
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

	post := m.CreateTable("Post")
	post.DbName = "post"
	memberID := post.CreateColumn("memberId", catalog.Integer)
	memberID.DbName = "member_id"
	memberID.ReferenceStr = "Member.id"

	errs := resolve.ResolveReferences(m)
	require.Empty(t, errs)
	return m
}

// TestFirstEmissionOrdering is the literal S3 scenario.
func TestFirstEmissionOrdering(t *testing.T) {
	t.Parallel()

	script := sqlgen.GenerateFullSchema(s2Model(t))

	expectedInOrder := []string{
		"DROP TABLE IF EXISTS member CASCADE;",
		"DROP TABLE IF EXISTS post CASCADE;",
		"CREATE TABLE member(",
		"CREATE TABLE post(",
		"ALTER TABLE post ADD CONSTRAINT post_member_id FOREIGN KEY (member_id) REFERENCES member (id) ON DELETE CASCADE;",
	}

	lastIdx := -1
	for _, needle := range expectedInOrder {
		idx := strings.Index(script, needle)
		require.GreaterOrEqualf(t, idx, 0, "expected to find %q", needle)
		require.Greaterf(t, idx, lastIdx, "expected %q to come after the previous fragment", needle)
		lastIdx = idx
	}
}

func TestFormatColumnDefinitionSerialPrimaryKeyHasNoDefault(t *testing.T) {
	t.Parallel()

	tbl := model.NewTable("Member")
	tbl.DbName = "member"
	id := tbl.CreateColumn("id", catalog.Serial)
	id.DbName = "id"
	id.IsPrimaryKey = true
	id.Nullable = false

	def := sqlgen.FormatColumnDefinition(id)
	assert.Contains(t, def, "PRIMARY KEY")
	assert.Contains(t, def, "NOT NULL")
	assert.NotContains(t, def, "DEFAULT nextval")
}

func TestFormatColumnDefinitionNonSerialPrimaryKeyHasSequenceDefault(t *testing.T) {
	t.Parallel()

	tbl := model.NewTable("Widget")
	tbl.DbName = "widget"
	id := tbl.CreateColumn("id", catalog.Integer)
	id.DbName = "id"
	id.IsPrimaryKey = true

	def := sqlgen.FormatColumnDefinition(id)
	assert.Contains(t, def, "DEFAULT nextval('widget_id_seq')")
}

func TestFormatColumnDefinitionLengthAndPrecision(t *testing.T) {
	t.Parallel()

	tbl := model.NewTable("Widget")
	name := tbl.CreateColumn("name", catalog.VarChar)
	name.Length = 64
	assert.Contains(t, sqlgen.FormatColumnDefinition(name), "(64)")

	amount := tbl.CreateColumn("amount", catalog.Numeric)
	amount.PrecisionP = 10
	amount.PrecisionS = 2
	assert.Contains(t, sqlgen.FormatColumnDefinition(amount), "(10, 2)")
}

func TestGenerateIndexesSkipsPrimaryKey(t *testing.T) {
	t.Parallel()

	tbl := model.NewTable("Widget")
	tbl.DbName = "widget"
	id := tbl.CreateColumn("id", catalog.Serial)
	id.DbName = "id"
	id.IsPrimaryKey = true
	id.WantIndex = true
	name := tbl.CreateColumn("name", catalog.VarChar)
	name.DbName = "name"
	name.WantIndex = true

	out := sqlgen.GenerateIndexes(tbl)
	assert.NotContains(t, out, "(id)")
	assert.Contains(t, out, "CREATE INDEX ON widget (name);")
}
