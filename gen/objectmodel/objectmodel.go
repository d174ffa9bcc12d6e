// Package objectmodel is the C++ object-model emitter (§4.6.2): a
// base class (always overwritten) and a concrete subclass
// (write-if-absent) per Table, plus a once-per-run aggregate include
// header.
package objectmodel

import (
	"fmt"
	"strings"

	"github.com/jplflyer/persist/catalog"
	"github.com/jplflyer/persist/gen"
	"github.com/jplflyer/persist/model"
	"github.com/jplflyer/persist/resolve"
)

// Generator emits C++ entity base/concrete classes.
type Generator struct{}

// Generate implements gen.Generator.
func (g *Generator) Generate(m *model.Model, cfg *model.Generator) error {
	w := gen.NewWriter(cfg.OutputBasePath)

	for _, t := range m.Tables {
		base := generateBase(m, t, cfg)
		if err := w.WriteAlways(t.Name+"_Base.h", []byte(base.header)); err != nil {
			return err
		}
		if err := w.WriteAlways(t.Name+"_Base.cpp", []byte(base.impl)); err != nil {
			return err
		}

		concreteH := generateConcreteHeader(t, cfg)
		if _, err := w.WriteIfAbsent(t.Name+".h", []byte(concreteH)); err != nil {
			return err
		}
		concreteCPP := generateConcreteImpl(t, cfg)
		if _, err := w.WriteIfAbsent(t.Name+".cpp", []byte(concreteCPP)); err != nil {
			return err
		}
	}

	return w.WriteAlways("AllIncludes.h", []byte(generateAllIncludes(m, cfg)))
}

type baseFiles struct {
	header string
	impl   string
}

func generateBase(m *model.Model, t *model.Table, cfg *model.Generator) baseFiles {
	var h, c strings.Builder

	// Forward declarations for FK targets and inbound-reference tables,
	// to break cycles among tables with mutual references (§4.6.2).
	fwd := map[string]bool{}
	for _, col := range t.Columns {
		if col.IsForeignKey() {
			fwd[col.References.OurTable().Name] = true
		}
	}
	for _, inbound := range resolve.FindReferencesTo(m, t) {
		fwd[inbound.OurTable().Name] = true
	}

	fmt.Fprintf(&h, "#pragma once\n\n#include <string>\n#include <vector>\n#include <memory>\n\n")
	for _, name := range sortedKeys(fwd) {
		fmt.Fprintf(&h, "class %s;\n", name)
	}
	fmt.Fprintf(&h, "\nclass %s_Base {\npublic:\n    using self = %s_Base;\n\n", t.Name, t.Name)

	for _, col := range t.Columns {
		fmt.Fprintf(&h, "    %s %s() const;\n", cppReturnType(col), model.FirstLower(col.Name))
		fmt.Fprintf(&h, "    self& %s(%s value);\n", model.FirstLower(col.Name), cppType(col))
	}
	h.WriteString("\n    void fromJSON(const std::string &json);\n    std::string toJSON() const;\n\n")

	for _, col := range t.Columns {
		if col.IsForeignKey() {
			ptr := gen.ForwardPointerName(col)
			fmt.Fprintf(&h, "    std::shared_ptr<%s> %s;\n", col.References.OurTable().Name, ptr)
		}
	}
	for _, inbound := range resolve.FindReferencesTo(m, t) {
		coll := gen.ReverseCollectionName(inbound, "Vector")
		fmt.Fprintf(&h, "    std::vector<std::shared_ptr<%s>> %s;\n", inbound.OurTable().Name, coll)
		fmt.Fprintf(&h, "    void add%s(std::shared_ptr<%s> child);\n", inbound.OurTable().Name, inbound.OurTable().Name)
		fmt.Fprintf(&h, "    void remove%s(std::shared_ptr<%s> child);\n", inbound.OurTable().Name, inbound.OurTable().Name)
		fmt.Fprintf(&h, "    void removeAll%s();\n", inbound.OurTable().Name)
	}

	for _, col := range t.Columns {
		fmt.Fprintf(&h, "\n private:\n    %s %s_ {};\n", cppType(col), model.FirstLower(col.Name))
	}
	h.WriteString("};\n")

	fmt.Fprintf(&c, "#include \"%s_Base.h\"\n\n", t.Name)
	for _, col := range t.Columns {
		fmt.Fprintf(&c, "%s %s_Base::%s() const { return %s_; }\n", cppReturnType(col), t.Name, model.FirstLower(col.Name), model.FirstLower(col.Name))
		fmt.Fprintf(&c, "%s_Base::self& %s_Base::%s(%s value) { %s_ = value; return *this; }\n", t.Name, t.Name, model.FirstLower(col.Name), cppType(col), model.FirstLower(col.Name))
	}
	fmt.Fprintf(&c, "\nvoid %s_Base::fromJSON(const std::string &json) {\n", t.Name)
	for _, col := range t.Columns {
		if !col.Serialize {
			continue
		}
		fmt.Fprintf(&c, "    // decode \"%s\"\n", col.DbName)
	}
	c.WriteString("}\n\n")
	fmt.Fprintf(&c, "std::string %s_Base::toJSON() const {\n    std::string out;\n", t.Name)
	for _, col := range t.Columns {
		if !col.Serialize {
			continue
		}
		fmt.Fprintf(&c, "    // encode \"%s\"\n", col.DbName)
	}
	c.WriteString("    return out;\n}\n")

	for _, inbound := range resolve.FindReferencesTo(m, t) {
		child := inbound.OurTable().Name
		coll := gen.ReverseCollectionName(inbound, "Vector")
		fmt.Fprintf(&c, "\nvoid %s_Base::add%s(std::shared_ptr<%s> child) { %s.push_back(child); }\n", t.Name, child, child, coll)
		fmt.Fprintf(&c, "void %s_Base::remove%s(std::shared_ptr<%s> child) {\n    %s.erase(std::remove_if(%s.begin(), %s.end(),\n        [&](const auto &e) { return e->id() == child->id(); }), %s.end());\n}\n",
			t.Name, child, child, coll, coll, coll, coll)
		fmt.Fprintf(&c, "void %s_Base::removeAll%s() { %s.clear(); }\n", t.Name, child, coll)
	}

	for _, col := range t.Columns {
		if col.WantFinder {
			fmt.Fprintf(&c, "\nstd::shared_ptr<%s> find_By%s(const %s &value);\n", t.Name, model.FirstUpper(col.Name), cppType(col))
		}
	}

	return baseFiles{header: h.String(), impl: c.String()}
}

func generateConcreteHeader(t *model.Table, cfg *model.Generator) string {
	return fmt.Sprintf("#pragma once\n\n#include \"%s_Base.h\"\n\nclass %s : public %s_Base {\npublic:\n};\n", t.Name, t.Name, t.Name)
}

func generateConcreteImpl(t *model.Table, cfg *model.Generator) string {
	return fmt.Sprintf("#include \"%s.h\"\n", t.Name)
}

func generateAllIncludes(m *model.Model, cfg *model.Generator) string {
	var b strings.Builder
	b.WriteString("#pragma once\n\n")
	for _, t := range m.Tables {
		fmt.Fprintf(&b, "#include \"%s/%s.h\"\n", cfg.OutputClassPath, t.Name)
	}
	return b.String()
}

func cppType(c *model.Column) string {
	return catalog.CPPType(c.DataType)
}

func cppReturnType(c *model.Column) string {
	if catalog.IsString(c.DataType) {
		return "const " + cppType(c) + "&"
	}
	return cppType(c)
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}
