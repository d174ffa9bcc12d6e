// Package model is the in-memory data model (C2): Model, Table, Column,
// Generator, and Database. It supports JSON load/store, deep-equality,
// deterministic sorting, and the dirty flag the Processor checks before
// persisting (§3, §4.2).
package model

import (
	"sort"
	"strings"
	"unicode"

	"github.com/jplflyer/persist/catalog"
)

// Column belongs to exactly one Table (back-reference, never owning).
// ourTable is a non-owning pointer to the owning Table
// (§9: back-references from Column to Table are non-owning).
type Column struct {
	Name             string
	DbName           string
	DbNameGenerated  string
	DataType         catalog.DataType

	// The *Generated fields are the differ's snapshot of this column as
	// of the last emission (§4.4, "Generated snapshot"). DataTypeGenerated
	// is catalog.None until the column has been emitted once.
	DataTypeGenerated catalog.DataType
	Length              int
	LengthGenerated     int
	PrecisionP          int
	PrecisionS           int
	PrecisionPGenerated int
	PrecisionSGenerated int
	Nullable         bool
	IsPrimaryKey     bool
	WantIndex        bool
	WantFinder       bool
	Serialize        bool
	Version          int

	// ReferenceStr is the string-encoded foreign key, e.g. "Member.id".
	// It round-trips through JSON unchanged until References is resolved.
	ReferenceStr string

	// References is the resolved reference, populated by the resolver
	// (package resolve). Nil until resolved or if ReferenceStr is empty.
	References *Column

	// RefPtrName overrides the default forward-pointer field name
	// emitted for this foreign key (§4.5).
	RefPtrName string

	// ReversePtrName overrides the default reverse-collection field
	// name on the parent side of this foreign key (§4.5).
	ReversePtrName string

	// ourTable is the owning Table; set by Table.CreateColumn/PushColumn.
	ourTable *Table
}

// Table holds its owning Model back-reference is implicit: identity is
// by pointer, found through Model.Tables.
type Table struct {
	Name            string
	DbName          string
	DbNameGenerated string
	IsMap           bool
	Version         int

	Columns        []*Column
	DeletedColumns []*Column
}

// Generator is a named emitter configuration attached to a Model (§3).
type Generator struct {
	Name            string
	Description     string
	OutputBasePath  string
	OutputClassPath string
	Options         map[string]string
}

// Database is a connection descriptor (§3). It is inert configuration:
// the system never connects with it (§1 Non-goals); the Flyway emitter
// serializes it into flyway.toml (§4.6.5).
type Database struct {
	EnvName  string
	Driver   string
	Host     string
	Port     int
	DbName   string
	Username string
	Password string
}

// Model is a named container owning ordered Tables, Generators, and
// Databases, plus the generatedVersion counter the Flyway differ
// advances (§3).
type Model struct {
	Name             string
	Tables           []*Table
	Generators       []*Generator
	Databases        []*Database
	GeneratedVersion int

	dirty bool
}

// New returns an empty, clean Model with the given name.
func New(name string) *Model {
	return &Model{Name: name}
}

// OurTable returns the Table that owns this Column.
func (c *Column) OurTable() *Table {
	return c.ourTable
}

// IsForeignKey reports whether this column has a resolved reference.
func (c *Column) IsForeignKey() bool {
	return c.References != nil
}

// FullName returns "<table>.<column>" using logical names, or database
// names when useDbName is true.
func (c *Column) FullName(useDbName bool) string {
	if c.ourTable == nil {
		return c.Name
	}
	if useDbName {
		return c.ourTable.DbName + "." + c.DbName
	}
	return c.ourTable.Name + "." + c.Name
}

// NewTable constructs a standalone Table, deriving its database name via
// CamelToLower. Model.CreateTable uses it and is the usual entry point
// for callers building a model programmatically.
func NewTable(name string) *Table {
	return &Table{Name: name, DbName: CamelToLower(name)}
}

// CreateColumn creates and appends a new live Column with the given
// datatype, auto-deriving its database name via CamelToLower (§4.2).
func (t *Table) CreateColumn(name string, dt catalog.DataType) *Column {
	col := &Column{
		Name:              name,
		DbName:            CamelToLower(name),
		DataType:          dt,
		DataTypeGenerated: catalog.None,
		Nullable:          true,
		Serialize:         true,
		ourTable:          t,
	}
	t.Columns = append(t.Columns, col)
	return col
}

// PushColumn appends an already-constructed Column, taking ownership
// (setting its back-reference to this Table).
func (t *Table) PushColumn(c *Column) {
	c.ourTable = t
	t.Columns = append(t.Columns, c)
}

// FindColumn finds a live Column by logical name.
func (t *Table) FindColumn(name string) *Column {
	for _, c := range t.Columns {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// FindPrimaryKey returns the Table's primary-key Column, or nil.
func (t *Table) FindPrimaryKey() *Column {
	for _, c := range t.Columns {
		if c.IsPrimaryKey {
			return c
		}
	}
	return nil
}

// SortColumns sorts Columns with the primary key first, then by logical
// name (§4.2).
func (t *Table) SortColumns() {
	sort.SliceStable(t.Columns, func(i, j int) bool {
		a, b := t.Columns[i], t.Columns[j]
		if a.IsPrimaryKey != b.IsPrimaryKey {
			return a.IsPrimaryKey
		}
		return a.Name < b.Name
	})
}

// CreateTable creates a new Table owned by this Model, auto-deriving its
// database name via CamelToLower, and appends it.
func (m *Model) CreateTable(name string) *Table {
	t := NewTable(name)
	m.Tables = append(m.Tables, t)
	m.MarkDirty()
	return t
}

// PushTable appends an already-constructed Table.
func (m *Model) PushTable(t *Table) {
	m.Tables = append(m.Tables, t)
	m.MarkDirty()
}

// FindTable finds a live Table by logical name.
func (m *Model) FindTable(name string) *Table {
	for _, t := range m.Tables {
		if t.Name == name {
			return t
		}
	}
	return nil
}

// Clear removes all tables and marks the model clean.
func (m *Model) Clear() {
	m.Tables = nil
	m.dirty = false
}

// SortTables sorts Tables by logical name (§4.2).
func (m *Model) SortTables() {
	sort.SliceStable(m.Tables, func(i, j int) bool {
		return m.Tables[i].Name < m.Tables[j].Name
	})
}

// SortAllColumns sorts every Table's Columns (primary key first, then
// name) (§4.2).
func (m *Model) SortAllColumns() {
	for _, t := range m.Tables {
		t.SortColumns()
	}
}

// MarkDirty flags the model as having unpersisted changes.
func (m *Model) MarkDirty() { m.dirty = true }

// MarkClean clears the dirty flag, e.g. immediately after persisting.
func (m *Model) MarkClean() { m.dirty = false }

// IsDirty reports whether the model has unpersisted changes.
func (m *Model) IsDirty() bool { return m.dirty }

// PushGenerator appends a Generator configuration.
func (m *Model) PushGenerator(g *Generator) {
	m.Generators = append(m.Generators, g)
	m.MarkDirty()
}

// PushDatabase appends a Database descriptor.
func (m *Model) PushDatabase(d *Database) {
	m.Databases = append(m.Databases, d)
	m.MarkDirty()
}

// CamelToLower turns a CamelCase identifier into a snake_case one,
// treating a leading run of capitals as a single word
// ("URLParser" -> "url_parser", "ForumThread" -> "forum_thread",
// "id" -> "id") (§8 round-trip laws).
func CamelToLower(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	var b strings.Builder
	n := len(runes)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			startsWord := i > 0 &&
				!unicode.IsUpper(runes[i-1]) ||
				(i > 0 && unicode.IsUpper(runes[i-1]) && i+1 < n && !unicode.IsUpper(runes[i+1]) && unicode.IsLetter(runes[i+1]))
			if i > 0 && startsWord {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FirstUpper returns s with its first character upper-cased.
func FirstUpper(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// FirstLower returns s with its first character lower-cased.
func FirstLower(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}
