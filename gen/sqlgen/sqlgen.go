// Package sqlgen is the SQL emitter (§4.6.1): it formats Columns into
// DDL definitions and renders the full-schema rebuild script. The
// column formatter and the per-table CREATE TABLE, foreign-key and
// index renderers are shared with the migration differ's
// first-emission path (§4.4) and its incremental ALTER statements.
package sqlgen

import (
	"fmt"
	"strings"

	"github.com/jplflyer/persist/catalog"
	"github.com/jplflyer/persist/gen"
	"github.com/jplflyer/persist/model"
)

// Generator emits the full-schema rebuild script. Unlike the Flyway
// emitter, this is a standalone DROP-then-CREATE script meant for
// building a fresh database from nothing (§4.6.1), so it's always
// overwritten rather than diffed against a prior snapshot.
type Generator struct{}

// Generate implements gen.Generator.
func (g *Generator) Generate(m *model.Model, cfg *model.Generator) error {
	fileName := cfg.Options["fileName"]
	if fileName == "" {
		fileName = "schema.sql"
	}

	w := gen.NewWriter(cfg.OutputBasePath)
	return w.WriteAlways(fileName, []byte(GenerateFullSchema(m)))
}

// SequenceName returns the name of the manually-created sequence backing
// a non-serial primary key, e.g. "member_id_seq".
func SequenceName(t *model.Table, c *model.Column) string {
	return t.DbName + "_" + c.DbName + "_seq"
}

// FormatColumnDefinition renders a column the way both CREATE TABLE and
// ALTER TABLE ... ADD/ALTER COLUMN want it:
//
//	<dbName> <typeName>[(length)][(p[,s])] [PRIMARY KEY] [NOT NULL] [DEFAULT nextval('<seq>')]
func FormatColumnDefinition(c *model.Column) string {
	var b strings.Builder
	b.WriteString(c.DbName)
	b.WriteByte(' ')
	b.WriteString(catalog.PostgresType(c.DataType))

	if catalog.HasLength(c.DataType) && c.Length > 0 {
		fmt.Fprintf(&b, "(%d)", c.Length)
	}
	if catalog.HasPrecision(c.DataType) && c.PrecisionP > 0 {
		if c.PrecisionS > 0 {
			fmt.Fprintf(&b, "(%d, %d)", c.PrecisionP, c.PrecisionS)
		} else {
			fmt.Fprintf(&b, "(%d)", c.PrecisionP)
		}
	}
	if c.IsPrimaryKey {
		b.WriteString(" PRIMARY KEY")
	}
	if !c.Nullable {
		b.WriteString(" NOT NULL")
	}
	if c.IsPrimaryKey && !catalog.IsSerial(c.DataType) {
		fmt.Fprintf(&b, " DEFAULT nextval('%s')", SequenceName(c.OurTable(), c))
	}
	return b.String()
}

// GenerateCreateTable renders the CREATE TABLE body for t, preceded by a
// manually-created sequence when its primary key is not a serial type.
func GenerateCreateTable(t *model.Table) string {
	var b strings.Builder
	pk := t.FindPrimaryKey()
	needSequence := pk != nil && !catalog.IsSerial(pk.DataType)
	seqName := ""
	if needSequence {
		seqName = SequenceName(t, pk)
		fmt.Fprintf(&b, "    CREATE SEQUENCE %s;\n", seqName)
	}

	fmt.Fprintf(&b, "    CREATE TABLE %s(\n", t.DbName)
	for i, c := range t.Columns {
		if i > 0 {
			b.WriteString(",\n")
		}
		b.WriteString("        ")
		b.WriteString(FormatColumnDefinition(c))
	}
	b.WriteString("\n    );\n")

	if needSequence {
		fmt.Fprintf(&b, "    ALTER SEQUENCE %s OWNED BY %s.%s;\n", seqName, t.DbName, pk.DbName)
	}
	return b.String()
}

// ForeignKeyConstraintName returns the conventional constraint name for
// a Column's foreign key: "<table>_<column>".
func ForeignKeyConstraintName(t *model.Table, c *model.Column) string {
	return t.DbName + "_" + c.DbName
}

// GenerateForeignKeys renders one ALTER TABLE ... ADD CONSTRAINT ...
// FOREIGN KEY line per resolved reference on t.
func GenerateForeignKeys(t *model.Table) string {
	var b strings.Builder
	for _, c := range t.Columns {
		if c.References == nil {
			continue
		}
		fmt.Fprintf(&b, "ALTER TABLE %s ADD CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s (%s) ON DELETE CASCADE;\n",
			t.DbName, ForeignKeyConstraintName(t, c), c.DbName,
			c.References.OurTable().DbName, c.References.DbName)
	}
	return b.String()
}

// GenerateIndexes renders one CREATE INDEX line per non-PK Column with
// WantIndex set.
func GenerateIndexes(t *model.Table) string {
	var b strings.Builder
	for _, c := range t.Columns {
		if !c.IsPrimaryKey && c.WantIndex {
			fmt.Fprintf(&b, "   CREATE INDEX ON %s (%s);\n", t.DbName, c.DbName)
		}
	}
	return b.String()
}

// GenerateFullSchema renders the complete rebuild script for m: a
// transactional DROP-then-CREATE of every table, followed by foreign
// keys and indexes. This is the SQL emitter's top-level output; the
// migration differ's first emission uses the same per-table renderers
// but emits no DROP TABLE statements.
func GenerateFullSchema(m *model.Model) string {
	var b strings.Builder
	b.WriteString("BEGIN;\n")

	for _, t := range m.Tables {
		fmt.Fprintf(&b, "   DROP TABLE IF EXISTS %s CASCADE;\n", t.DbName)
	}
	b.WriteString("\n")

	for _, t := range m.Tables {
		b.WriteString(GenerateCreateTable(t))
	}

	b.WriteString("\n")
	for _, t := range m.Tables {
		b.WriteString(GenerateForeignKeys(t))
	}

	b.WriteString("\n")
	for _, t := range m.Tables {
		b.WriteString(GenerateIndexes(t))
	}

	b.WriteString("\nCOMMIT;\n")
	return b.String()
}
