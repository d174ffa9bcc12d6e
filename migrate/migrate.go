// Package migrate is the Flyway-path migration differ (C4, §4.4): it
// compares the live Model against the snapshot embedded in it from the
// last emission and produces the minimal ordered sequence of
// schema-alteration statements, or reports that nothing changed.
package migrate

import (
	"strings"

	"github.com/jplflyer/persist/catalog"
	"github.com/jplflyer/persist/gen/sqlgen"
	"github.com/jplflyer/persist/model"
)

// Migration accumulates the ordered SQL statements for a single
// emission. Mirrors the "ordered operation accumulator" shape used
// elsewhere in the ecosystem for schema diffs, trimmed to this system's
// single operation kind: a SQL statement.
type Migration struct {
	Statements []string
}

// AddStatement appends stmt, trimmed, unless it is blank.
func (m *Migration) AddStatement(stmt string) {
	stmt = strings.TrimSpace(stmt)
	if stmt == "" {
		return
	}
	m.Statements = append(m.Statements, stmt)
}

// IsEmpty reports whether no statements were accumulated — the
// "nothing to do" case (§4.4: delete the file, report no changes).
func (m *Migration) IsEmpty() bool {
	return len(m.Statements) == 0
}

// Body renders the migration as a transactional script: BEGIN;, each
// statement in order, COMMIT;.
func (m *Migration) Body() string {
	var b strings.Builder
	b.WriteString("BEGIN;\n")
	for _, s := range m.Statements {
		b.WriteString(s)
		if !strings.HasSuffix(s, "\n") {
			b.WriteByte('\n')
		}
	}
	b.WriteString("COMMIT;\n")
	return b.String()
}

// Diff compares m's live state against its embedded generatedVersion
// snapshot and returns the ordered Migration to emit. v is
// m.GeneratedVersion as observed before this call. Tables are visited in
// current model order; per §4.4 step 3, each live column with
// version > v is checked for add, rename, then retype, in that order.
func Diff(m *model.Model) *Migration {
	v := m.GeneratedVersion
	mig := &Migration{}

	if v == 0 {
		for _, t := range m.Tables {
			mig.AddStatement(sqlgen.GenerateCreateTable(t))
		}
		for _, t := range m.Tables {
			mig.AddStatement(sqlgen.GenerateForeignKeys(t))
		}
		for _, t := range m.Tables {
			mig.AddStatement(sqlgen.GenerateIndexes(t))
		}
		return mig
	}

	for _, t := range m.Tables {
		diffTable(mig, t, v)
	}
	return mig
}

func diffTable(mig *Migration, t *model.Table, v int) {
	// 1. Table rename.
	if t.DbNameGenerated != "" && t.DbNameGenerated != t.DbName {
		mig.AddStatement("ALTER TABLE " + t.DbNameGenerated + " RENAME TO " + t.DbName + ";")
	}

	// 2. New table.
	if t.Version == 0 {
		mig.AddStatement(sqlgen.GenerateCreateTable(t))
		mig.AddStatement(sqlgen.GenerateForeignKeys(t))
		mig.AddStatement(sqlgen.GenerateIndexes(t))
		return
	}

	// After a rename above, subsequent ALTERs in this migration address
	// the table by its new name (the RENAME TO statement already landed).
	tableOldName := t.DbName

	// 3. Live columns with version > v.
	for _, c := range t.Columns {
		if c.Version <= v {
			continue
		}
		diffColumn(mig, tableOldName, c)
	}

	// 4. Tombstoned columns. A column that was added and deleted again
	// with no intermediate emission never actually reached the schema
	// (empty DbNameGenerated): the ADD and the DROP cancel out (§8).
	for _, c := range t.DeletedColumns {
		if c.DbNameGenerated != "" {
			mig.AddStatement("ALTER TABLE " + tableOldName + " DROP COLUMN " + c.DbNameGenerated + ";")
		}
	}
	t.DeletedColumns = nil
}

func diffColumn(mig *Migration, tableOldName string, c *model.Column) {
	switch {
	case c.DbNameGenerated == "":
		mig.AddStatement("ALTER TABLE " + tableOldName + " ADD COLUMN " + sqlgen.FormatColumnDefinition(c) + ";")
	case c.DbName != c.DbNameGenerated:
		mig.AddStatement("ALTER TABLE " + tableOldName + " RENAME COLUMN " + c.DbNameGenerated + " TO " + c.DbName + ";")
	}

	if c.DbNameGenerated != "" && typeChanged(c) {
		mig.AddStatement("ALTER TABLE " + tableOldName + " ALTER COLUMN " + sqlgen.FormatColumnDefinition(c) + ";")
	}
}

func typeChanged(c *model.Column) bool {
	return c.DataTypeGenerated != catalog.None && (c.DataType != c.DataTypeGenerated ||
		c.Length != c.LengthGenerated ||
		c.PrecisionP != c.PrecisionPGenerated ||
		c.PrecisionS != c.PrecisionSGenerated)
}

// Stamp applies the post-emission snapshot (§4.4): advances
// GeneratedVersion, stamps any never-emitted Table/Column to v+1, and
// snapshots the *Generated fields used by the next Diff call. Call only
// after a non-empty Migration has actually been written — an emission
// with no statements makes no schema change and therefore advances no
// version (§8's "emitting twice with no model changes produces no
// migration file on the second run" implies no version churn either).
func Stamp(m *model.Model) {
	next := m.GeneratedVersion + 1
	m.GeneratedVersion = next

	for _, t := range m.Tables {
		if t.Version == 0 {
			t.Version = next
		}
		t.DbNameGenerated = t.DbName

		for _, c := range t.Columns {
			if c.Version == 0 {
				c.Version = next
			}
			c.DbNameGenerated = c.DbName
			c.DataTypeGenerated = c.DataType
			c.LengthGenerated = c.Length
			c.PrecisionPGenerated = c.PrecisionP
			c.PrecisionSGenerated = c.PrecisionS
		}
	}
}
