package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jplflyer/persist/catalog"
	"github.com/jplflyer/persist/model"
)

func TestParseTypeSpecBareName(t *testing.T) {
	name, nums, err := parseTypeSpec("integer")
	require.NoError(t, err)
	assert.Equal(t, "integer", name)
	assert.Nil(t, nums)
}

func TestParseTypeSpecLength(t *testing.T) {
	name, nums, err := parseTypeSpec("varchar(40)")
	require.NoError(t, err)
	assert.Equal(t, "varchar", name)
	assert.Equal(t, []int{40}, nums)
}

func TestParseTypeSpecPrecisionAndScale(t *testing.T) {
	name, nums, err := parseTypeSpec("numeric(10,2)")
	require.NoError(t, err)
	assert.Equal(t, "numeric", name)
	assert.Equal(t, []int{10, 2}, nums)
}

func TestParseTypeSpecMalformed(t *testing.T) {
	_, _, err := parseTypeSpec("varchar(abc)")
	assert.Error(t, err)
}

func TestSpecifyColumnCreatesNewColumnWithLength(t *testing.T) {
	m := model.New("Demo")
	tbl := m.CreateTable("Member")

	require.NoError(t, specifyColumn(tbl, "username:varchar(40)"))

	col := tbl.FindColumn("username")
	require.NotNil(t, col)
	assert.Equal(t, catalog.VarChar, col.DataType)
	assert.Equal(t, 40, col.Length)
}

func TestSpecifyColumnWithoutTypeRequiresExistingColumn(t *testing.T) {
	m := model.New("Demo")
	tbl := m.CreateTable("Member")

	err := specifyColumn(tbl, "username")
	assert.Error(t, err)
}

func TestSpecifyColumnUnknownTypeErrors(t *testing.T) {
	m := model.New("Demo")
	tbl := m.CreateTable("Member")

	err := specifyColumn(tbl, "username:NotARealType")
	assert.ErrorIs(t, err, errUnknownType)
}

func TestSpecifyColumnNumericSetsPrecisionAndScale(t *testing.T) {
	m := model.New("Demo")
	tbl := m.CreateTable("Invoice")

	require.NoError(t, specifyColumn(tbl, "amount:numeric(10,2)"))

	col := tbl.FindColumn("amount")
	require.NotNil(t, col)
	assert.Equal(t, 10, col.PrecisionP)
	assert.Equal(t, 2, col.PrecisionS)
}

func TestInterleaveFromArgsGroupsColumnsUnderTheirTable(t *testing.T) {
	args := []string{
		"--model", "x.json",
		"--table", "Member",
		"--column", "id:serial",
		"--column", "username:varchar(40)",
		"--table", "Post",
		"--column", "title:varchar(200)",
	}

	pairs := interleaveFromArgs(args)
	require.Len(t, pairs, 2)
	assert.Equal(t, "Member", pairs[0].table)
	assert.Equal(t, []string{"id:serial", "username:varchar(40)"}, pairs[0].columns)
	assert.Equal(t, "Post", pairs[1].table)
	assert.Equal(t, []string{"title:varchar(200)"}, pairs[1].columns)
}

func TestInterleaveFromArgsHandlesEqualsForm(t *testing.T) {
	args := []string{"--table=Member", "--column=id:serial"}

	pairs := interleaveFromArgs(args)
	require.Len(t, pairs, 1)
	assert.Equal(t, "Member", pairs[0].table)
	assert.Equal(t, []string{"id:serial"}, pairs[0].columns)
}

func TestFilterFromFlagsMergesShorthandsWithExplicitNames(t *testing.T) {
	flags := &rootFlags{generate: []string{"C++"}, flyway: true}
	filter := filterFromFlags(flags)
	assert.True(t, filter["C++"])
	assert.True(t, filter["Flyway"])
	assert.False(t, filter["SQL"])
}

func TestCreateModelWritesEmptyModelNamedFromPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "demo.json")

	require.NoError(t, createModel(path))

	contents, err := os.ReadFile(path)
	require.NoError(t, err)

	loaded, err := model.Load(contents)
	require.NoError(t, err)
	assert.Equal(t, "demo", loaded.Name)
	assert.Empty(t, loaded.Tables)
}
