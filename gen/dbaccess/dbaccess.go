// Package dbaccess is the DB-access emitter (§4.6.3): a base class
// (always overwritten) and a concrete subclass (write-if-absent) per
// Table, wrapping CRUD and map-table join accessors.
package dbaccess

import (
	"fmt"
	"strings"

	"github.com/jplflyer/persist/catalog"
	"github.com/jplflyer/persist/gen"
	"github.com/jplflyer/persist/model"
	"github.com/jplflyer/persist/resolve"
)

// Generator emits C++ DB-access base/concrete classes.
type Generator struct{}

// Generate implements gen.Generator.
func (g *Generator) Generate(m *model.Model, cfg *model.Generator) error {
	w := gen.NewWriter(cfg.OutputBasePath)

	for _, t := range m.Tables {
		base := generateBase(m, t)
		if err := w.WriteAlways("DB_"+t.Name+"_Base.h", []byte(base)); err != nil {
			return err
		}
		concrete := fmt.Sprintf("#pragma once\n\n#include \"DB_%s_Base.h\"\n\nclass DB_%s : public DB_%s_Base {\npublic:\n};\n", t.Name, t.Name, t.Name)
		if _, err := w.WriteIfAbsent("DB_"+t.Name+".h", []byte(concrete)); err != nil {
			return err
		}
	}
	return nil
}

func generateBase(m *model.Model, t *model.Table) string {
	var b strings.Builder
	fmt.Fprintf(&b, "#pragma once\n\n#include <vector>\n#include <memory>\n#include <string>\n\n#include \"%s.h\"\n\nclass DB_%s_Base {\npublic:\n", t.Name, t.Name)

	fmt.Fprintf(&b, "    static std::vector<std::shared_ptr<%s>> readAll(Connection &conn, const std::string &whereClause = \"\");\n", t.Name)

	for _, c := range t.Columns {
		if c.IsForeignKey() {
			parent := c.References.OurTable().Name
			fmt.Fprintf(&b, "    static std::vector<std::shared_ptr<%s>> readAll_For%s(Connection &conn, int fkValue);\n", t.Name, parent)
		}
	}

	for _, other := range m.Tables {
		if other == t {
			continue
		}
		if resolve.LooksLikeMapTableFor(other, t) {
			fmt.Fprintf(&b, "    static std::vector<std::shared_ptr<%s>> readAll_FromMap_%s(Connection &conn, int otherKey);\n", t.Name, other.Name)
		}
	}

	fmt.Fprintf(&b, "    static void update(Connection &conn, %s &entity);\n", t.Name)
	fmt.Fprintf(&b, "    static void deleteWithId(Connection &conn, int id);\n\n")
	fmt.Fprintf(&b, "private:\n    static void doInsert(Connection &conn, %s &entity);\n    static void doUpdate(Connection &conn, %s &entity);\n", t.Name, t.Name)
	fmt.Fprintf(&b, "    static std::vector<std::shared_ptr<%s>> parseAll(Result &result);\n", t.Name)
	fmt.Fprintf(&b, "    static std::shared_ptr<%s> parseOne(Row &row);\n\n", t.Name)

	b.WriteString("    static const std::string SELECT_LIST;\n")
	b.WriteString("    static const std::string INSERT_LIST;\n")
	b.WriteString("    static const std::string QUALIFIED_SELECT_LIST;\n")
	b.WriteString("};\n\n")

	selectCols := make([]string, len(t.Columns))
	qualifiedCols := make([]string, len(t.Columns))
	var insertCols []string
	for i, c := range t.Columns {
		selectCols[i] = c.DbName
		qualifiedCols[i] = t.DbName + "." + c.DbName
		if !c.IsPrimaryKey {
			insertCols = append(insertCols, c.DbName)
		}
	}
	fmt.Fprintf(&b, "const std::string DB_%s_Base::SELECT_LIST = \"%s\";\n", t.Name, strings.Join(selectCols, ", "))
	fmt.Fprintf(&b, "const std::string DB_%s_Base::INSERT_LIST = \"%s\";\n", t.Name, strings.Join(insertCols, ", "))
	fmt.Fprintf(&b, "const std::string DB_%s_Base::QUALIFIED_SELECT_LIST = \"%s\";\n", t.Name, strings.Join(qualifiedCols, ", "))

	fmt.Fprintf(&b, "\nvoid DB_%s_Base::update(Connection &conn, %s &entity) {\n    if (entity.id() == 0) { doInsert(conn, entity); } else { doUpdate(conn, entity); }\n}\n", t.Name, t.Name)

	pk := t.FindPrimaryKey()
	pkName := "id"
	if pk != nil {
		pkName = pk.DbName
	}
	fmt.Fprintf(&b, "\nvoid DB_%s_Base::doInsert(Connection &conn, %s &entity) {\n    // INSERT INTO %s (%s) VALUES (...) RETURNING %s;\n}\n",
		t.Name, t.Name, t.DbName, strings.Join(insertCols, ", "), pkName)
	fmt.Fprintf(&b, "\nvoid DB_%s_Base::doUpdate(Connection &conn, %s &entity) {\n    // UPDATE %s SET ... WHERE %s = entity.id();\n}\n", t.Name, t.Name, t.DbName, pkName)
	fmt.Fprintf(&b, "\nvoid DB_%s_Base::deleteWithId(Connection &conn, int id) {\n    // DELETE FROM %s WHERE %s = $1;\n}\n", t.Name, t.DbName, pkName)

	b.WriteString(generateParse(t))

	return b.String()
}

func generateParse(t *model.Table) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\nstd::shared_ptr<%s> DB_%s_Base::parseOne(Row &row) {\n    auto entity = std::make_shared<%s>();\n", t.Name, t.Name, t.Name)
	for i, c := range t.Columns {
		if catalog.IsString(c.DataType) || catalog.IsTemporal(c.DataType) {
			fmt.Fprintf(&b, "    entity->%s(row.isNull(%d) ? \"\" : row.getString(%d));\n", model.FirstLower(c.Name), i, i)
		} else {
			fmt.Fprintf(&b, "    entity->%s(row.getNumeric(%d));\n", model.FirstLower(c.Name), i)
		}
	}
	b.WriteString("    return entity;\n}\n")
	return b.String()
}
