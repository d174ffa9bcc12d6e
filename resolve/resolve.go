// Package resolve is the reference resolver (C3): it turns Columns'
// string-encoded foreign keys into a live graph of resolved pointers,
// answers reverse-reference queries, and classifies map tables (§4.3).
package resolve

import (
	"strings"

	"github.com/jplflyer/persist"
	"github.com/jplflyer/persist/model"
)

// ResolveReferences resolves every Column's referenceStr into a live
// References pointer. For each Column with a non-empty referenceStr and
// a nil References: split on ".", look up the Table by the first part,
// then the Column by logical name if a second part is given, else that
// Table's primary key. Resolution failures are collected and returned
// together so the caller can log them and continue (§4.3, §7.1); the
// pass still resolves every column it can.
func ResolveReferences(m *model.Model) []error {
	var errs []error
	for _, t := range m.Tables {
		for _, c := range t.Columns {
			if c.ReferenceStr == "" || c.References != nil {
				continue
			}
			target, err := resolveOne(m, t, c)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			c.References = target
		}
	}
	return errs
}

func resolveOne(m *model.Model, t *model.Table, c *model.Column) (*model.Column, error) {
	parts := strings.SplitN(c.ReferenceStr, ".", 2)
	targetTable := m.FindTable(parts[0])
	if targetTable == nil {
		return nil, persist.NewResolutionError(t.Name, c.Name, c.ReferenceStr, persist.ErrTableNotFound)
	}

	if len(parts) == 2 && parts[1] != "" {
		targetCol := targetTable.FindColumn(parts[1])
		if targetCol == nil {
			return nil, persist.NewResolutionError(t.Name, c.Name, c.ReferenceStr, persist.ErrColumnNotFound)
		}
		return targetCol, nil
	}

	pk := targetTable.FindPrimaryKey()
	if pk == nil {
		return nil, persist.NewResolutionError(t.Name, c.Name, c.ReferenceStr, persist.ErrColumnNotFound)
	}
	return pk, nil
}

// FindReferencesTo returns every Column across the model whose resolved
// References points into t, in model/table/column declaration order.
func FindReferencesTo(m *model.Model, t *model.Table) []*model.Column {
	var out []*model.Column
	for _, other := range m.Tables {
		for _, c := range other.Columns {
			if c.References != nil && c.References.OurTable() == t {
				out = append(out, c)
			}
		}
	}
	return out
}

// LooksLikeMapTableFor reports whether candidate "looks like a map
// table for" t (§4.3): candidate must satisfy the shape test (explicit
// IsMap flag, a "_Map" name suffix, or exactly three columns with
// exactly one primary key and two foreign keys), and at least one of
// its foreign keys must resolve to t's primary key.
func LooksLikeMapTableFor(candidate *model.Table, t *model.Table) bool {
	if !hasMapShape(candidate) {
		return false
	}
	pk := t.FindPrimaryKey()
	if pk == nil {
		return false
	}
	for _, c := range candidate.Columns {
		if c.References == pk {
			return true
		}
	}
	return false
}

func hasMapShape(candidate *model.Table) bool {
	if candidate.IsMap {
		return true
	}
	if strings.HasSuffix(candidate.Name, "_Map") {
		return true
	}
	if len(candidate.Columns) != 3 {
		return false
	}
	pkCount, fkCount := 0, 0
	for _, c := range candidate.Columns {
		if c.IsPrimaryKey {
			pkCount++
		}
		if c.References != nil {
			fkCount++
		}
	}
	return pkCount == 1 && fkCount == 2
}

// OurMapTableReference returns the Column in m that points at t's
// primary key — the "our" side of the inferred many-to-many link.
func OurMapTableReference(m *model.Table, t *model.Table) *model.Column {
	pk := t.FindPrimaryKey()
	if pk == nil {
		return nil
	}
	for _, c := range m.Columns {
		if c.References == pk {
			return c
		}
	}
	return nil
}

// OtherMapTableReference returns the first Column in m (in declaration
// order) whose resolved reference is not t's primary key — the "other"
// side of the inferred many-to-many link. When m has multiple such
// columns, the first in declaration order wins (§9 open question).
func OtherMapTableReference(m *model.Table, t *model.Table) *model.Column {
	pk := t.FindPrimaryKey()
	for _, c := range m.Columns {
		if c.References != nil && c.References != pk {
			return c
		}
	}
	return nil
}
