package model

import (
	"encoding/json"
	"fmt"

	"github.com/jplflyer/persist"
	"github.com/jplflyer/persist/catalog"
)

// jsonColumn mirrors §4.2's JSON shape for a Column. Absent keys use the
// documented defaults: Serialize defaults to true, Nullable defaults to
// true, counters default to 0.
type jsonColumn struct {
	Name            string `json:"name"`
	DbName          string `json:"dbName"`
	DbNameGenerated string `json:"dbNameGenerated,omitempty"`
	DataType        string `json:"dataType"`
	Length          int    `json:"length,omitempty"`
	PrecisionP      int    `json:"precisionP,omitempty"`
	PrecisionS      int    `json:"precisionS,omitempty"`
	Nullable        *bool  `json:"nullable,omitempty"`
	IsPrimaryKey    bool   `json:"isPrimaryKey,omitempty"`
	WantIndex       bool   `json:"wantIndex,omitempty"`
	WantFinder      bool   `json:"wantFinder,omitempty"`
	Serialize       *bool  `json:"serialize,omitempty"`
	Version         int    `json:"version,omitempty"`
	ReferenceStr    string `json:"referenceStr,omitempty"`
	References      string `json:"references,omitempty"`
	RefPtrName      string `json:"refPtrName,omitempty"`
	ReversePtrName  string `json:"reversePtrName,omitempty"`

	// *Generated snapshot fields, used by the migration differ (§4.4).
	DataTypeGenerated   string `json:"dataTypeGenerated,omitempty"`
	LengthGenerated     int    `json:"dataLengthGenerated,omitempty"`
	PrecisionPGenerated int    `json:"precisionPGenerated,omitempty"`
	PrecisionSGenerated int    `json:"precisionSGenerated,omitempty"`
}

type jsonTable struct {
	Name            string       `json:"name"`
	DbName          string       `json:"dbName"`
	DbNameGenerated string       `json:"dbNameGenerated,omitempty"`
	Version         int          `json:"version,omitempty"`
	Columns         []jsonColumn `json:"columns"`
	DeletedColumns  []jsonColumn `json:"deletedColumns,omitempty"`
}

type jsonGenerator struct {
	Name            string            `json:"name"`
	Description     string            `json:"description,omitempty"`
	OutputBasePath  string            `json:"outputBasePath,omitempty"`
	OutputClassPath string            `json:"outputClassPath,omitempty"`
	Options         map[string]string `json:"options,omitempty"`
}

type jsonDatabase struct {
	EnvName  string `json:"envName,omitempty"`
	Driver   string `json:"driver,omitempty"`
	Host     string `json:"host,omitempty"`
	Port     int    `json:"port,omitempty"`
	DbName   string `json:"dbName,omitempty"`
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
}

type jsonModel struct {
	Name             string          `json:"name,omitempty"`
	Tables           []jsonTable     `json:"tables,omitempty"`
	Generators       []jsonGenerator `json:"generators,omitempty"`
	Databases        []jsonDatabase  `json:"databases,omitempty"`
	GeneratedVersion int             `json:"generatedVersion,omitempty"`
}

func boolPtr(b bool) *bool { return &b }

func colToJSON(c *Column) jsonColumn {
	jc := jsonColumn{
		Name:                c.Name,
		DbName:              c.DbName,
		DbNameGenerated:     c.DbNameGenerated,
		DataType:            catalog.ToName(c.DataType),
		Length:              c.Length,
		PrecisionP:          c.PrecisionP,
		PrecisionS:          c.PrecisionS,
		IsPrimaryKey:        c.IsPrimaryKey,
		WantIndex:           c.WantIndex,
		WantFinder:          c.WantFinder,
		Version:             c.Version,
		ReferenceStr:        c.ReferenceStr,
		RefPtrName:          c.RefPtrName,
		ReversePtrName:      c.ReversePtrName,
		LengthGenerated:     c.LengthGenerated,
		PrecisionPGenerated: c.PrecisionPGenerated,
		PrecisionSGenerated: c.PrecisionSGenerated,
	}
	if !c.Nullable {
		jc.Nullable = boolPtr(false)
	}
	if !c.Serialize {
		jc.Serialize = boolPtr(false)
	}
	// References is emitted only when resolved (§4.2 invariant 4);
	// otherwise the raw referenceStr round-trips unchanged.
	if c.References != nil {
		jc.References = c.References.FullName(false)
	}
	if c.DataTypeGenerated != catalog.None {
		jc.DataTypeGenerated = catalog.ToName(c.DataTypeGenerated)
	}
	return jc
}

func colFromJSON(jc jsonColumn) (*Column, error) {
	dt, ok := catalog.FromName(jc.DataType)
	if !ok {
		return nil, fmt.Errorf("%w: %q", errUnknownDataType, jc.DataType)
	}
	c := &Column{
		Name:                jc.Name,
		DbName:              jc.DbName,
		DbNameGenerated:     jc.DbNameGenerated,
		DataType:            dt,
		DataTypeGenerated:   catalog.None,
		Length:              jc.Length,
		PrecisionP:          jc.PrecisionP,
		PrecisionS:          jc.PrecisionS,
		Nullable:            true,
		IsPrimaryKey:        jc.IsPrimaryKey,
		WantIndex:           jc.WantIndex,
		WantFinder:          jc.WantFinder,
		Serialize:           true,
		Version:             jc.Version,
		ReferenceStr:        jc.ReferenceStr,
		RefPtrName:          jc.RefPtrName,
		ReversePtrName:      jc.ReversePtrName,
		LengthGenerated:     jc.LengthGenerated,
		PrecisionPGenerated: jc.PrecisionPGenerated,
		PrecisionSGenerated: jc.PrecisionSGenerated,
	}
	if jc.Nullable != nil {
		c.Nullable = *jc.Nullable
	}
	if jc.Serialize != nil {
		c.Serialize = *jc.Serialize
	}
	if jc.DataTypeGenerated != "" {
		if gdt, ok := catalog.FromName(jc.DataTypeGenerated); ok {
			c.DataTypeGenerated = gdt
		}
	}
	// References (the resolved pointer) is never read back directly: it
	// is recomputed by the reference resolver from ReferenceStr. If the
	// JSON carried a resolved "references" value but no referenceStr
	// (possible after hand-editing), fall back to it as the string form.
	if c.ReferenceStr == "" && jc.References != "" {
		c.ReferenceStr = jc.References
	}
	return c, nil
}

var errUnknownDataType = persist.ErrUnknownDataType

// ToJSON serializes the Model to the §4.2/§6 JSON document shape.
func (m *Model) ToJSON() ([]byte, error) {
	jm := jsonModel{
		Name:             m.Name,
		GeneratedVersion: m.GeneratedVersion,
	}
	for _, t := range m.Tables {
		jt := jsonTable{
			Name:            t.Name,
			DbName:          t.DbName,
			DbNameGenerated: t.DbNameGenerated,
			Version:         t.Version,
		}
		for _, c := range t.Columns {
			jt.Columns = append(jt.Columns, colToJSON(c))
		}
		for _, c := range t.DeletedColumns {
			jt.DeletedColumns = append(jt.DeletedColumns, colToJSON(c))
		}
		jm.Tables = append(jm.Tables, jt)
	}
	for _, g := range m.Generators {
		jm.Generators = append(jm.Generators, jsonGenerator{
			Name:            g.Name,
			Description:     g.Description,
			OutputBasePath:  g.OutputBasePath,
			OutputClassPath: g.OutputClassPath,
			Options:         g.Options,
		})
	}
	for _, d := range m.Databases {
		jm.Databases = append(jm.Databases, jsonDatabase{
			EnvName:  d.EnvName,
			Driver:   d.Driver,
			Host:     d.Host,
			Port:     d.Port,
			DbName:   d.DbName,
			Username: d.Username,
			Password: d.Password,
		})
	}
	return json.MarshalIndent(jm, "", "  ")
}

// Load parses buf into a new Model (§4.2, §6). Unknown JSON keys are
// ignored (encoding/json's default behavior); unknown datatype names
// are a parse error (§7.2), since the model cannot represent them.
func Load(buf []byte) (*Model, error) {
	var jm jsonModel
	if err := json.Unmarshal(buf, &jm); err != nil {
		return nil, fmt.Errorf("model: parse: %w", err)
	}
	m := &Model{Name: jm.Name, GeneratedVersion: jm.GeneratedVersion}
	for _, jt := range jm.Tables {
		t := &Table{
			Name:            jt.Name,
			DbName:          jt.DbName,
			DbNameGenerated: jt.DbNameGenerated,
			Version:         jt.Version,
		}
		for _, jc := range jt.Columns {
			c, err := colFromJSON(jc)
			if err != nil {
				return nil, fmt.Errorf("model: table %q: %w", t.Name, err)
			}
			t.PushColumn(c)
		}
		for _, jc := range jt.DeletedColumns {
			c, err := colFromJSON(jc)
			if err != nil {
				return nil, fmt.Errorf("model: table %q (deleted): %w", t.Name, err)
			}
			c.ourTable = t
			t.DeletedColumns = append(t.DeletedColumns, c)
		}
		m.Tables = append(m.Tables, t)
	}
	for _, jg := range jm.Generators {
		m.Generators = append(m.Generators, &Generator{
			Name:            jg.Name,
			Description:     jg.Description,
			OutputBasePath:  jg.OutputBasePath,
			OutputClassPath: jg.OutputClassPath,
			Options:         jg.Options,
		})
	}
	for _, jd := range jm.Databases {
		m.Databases = append(m.Databases, &Database{
			EnvName:  jd.EnvName,
			Driver:   jd.Driver,
			Host:     jd.Host,
			Port:     jd.Port,
			DbName:   jd.DbName,
			Username: jd.Username,
			Password: jd.Password,
		})
	}
	return m, nil
}

// DeepEquals is a structural comparison: order-insensitive on Tables,
// identity of every Column attribute, excluding GeneratedVersion,
// DbNameGenerated, and DeletedColumns (migration bookkeeping, not model
// identity) (§4.2).
func (m *Model) DeepEquals(other *Model) bool {
	if other == nil || len(m.Tables) != len(other.Tables) {
		return false
	}
	for _, t := range m.Tables {
		ot := other.FindTable(t.Name)
		if ot == nil || !t.DeepEquals(ot) {
			return false
		}
	}
	return true
}

// DeepEquals compares two Tables structurally, excluding DbNameGenerated
// and DeletedColumns.
func (t *Table) DeepEquals(other *Table) bool {
	if other == nil || t.DbName != other.DbName || len(t.Columns) != len(other.Columns) {
		return false
	}
	for _, c := range t.Columns {
		oc := other.FindColumn(c.Name)
		if oc == nil || !c.DeepEquals(oc) {
			return false
		}
	}
	return true
}

// DeepEquals compares two Columns by every attribute except
// DbNameGenerated, the *Generated snapshots, and Version (migration
// bookkeeping).
func (c *Column) DeepEquals(other *Column) bool {
	if other == nil {
		return false
	}
	return c.Name == other.Name &&
		c.DbName == other.DbName &&
		c.DataType == other.DataType &&
		c.Length == other.Length &&
		c.PrecisionP == other.PrecisionP &&
		c.PrecisionS == other.PrecisionS &&
		c.Nullable == other.Nullable &&
		c.IsPrimaryKey == other.IsPrimaryKey &&
		c.WantIndex == other.WantIndex &&
		c.WantFinder == other.WantFinder &&
		c.Serialize == other.Serialize &&
		c.ReferenceStr == other.ReferenceStr &&
		c.RefPtrName == other.RefPtrName &&
		c.ReversePtrName == other.ReversePtrName
}
