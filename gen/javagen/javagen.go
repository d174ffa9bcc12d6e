// Package javagen is the Java emitter (§4.6.4): a POJO per Table
// (always overwritten) plus a Spring Data repository interface
// (write-if-absent).
package javagen

import (
	"fmt"
	"strings"

	"github.com/jplflyer/persist/catalog"
	"github.com/jplflyer/persist/gen"
	"github.com/jplflyer/persist/model"
	"github.com/jplflyer/persist/resolve"
)

// Generator emits Java POJOs and Spring Data repositories.
type Generator struct{}

// Generate implements gen.Generator.
func (g *Generator) Generate(m *model.Model, cfg *model.Generator) error {
	slashed := gen.ClassPathToSlashed(cfg.OutputClassPath)
	w := gen.NewWriter(cfg.OutputBasePath)
	userTable := cfg.Options["userTable"]

	for _, t := range m.Tables {
		pojo := generatePOJO(m, t, cfg, userTable)
		if err := w.WriteAlways(slashed+"/dbmodel/"+t.Name+".java", []byte(pojo)); err != nil {
			return err
		}

		repo := generateRepository(t, cfg)
		if _, err := w.WriteIfAbsent(slashed+"/repository/"+t.Name+"Repository.java", []byte(repo)); err != nil {
			return err
		}
	}
	return nil
}

func generatePOJO(m *model.Model, t *model.Table, cfg *model.Generator, userTable string) string {
	isUserTable := userTable != "" && t.Name == userTable

	var b strings.Builder
	fmt.Fprintf(&b, "package %s.dbmodel;\n\n", cfg.OutputClassPath)
	b.WriteString("import jakarta.persistence.*;\n")
	b.WriteString("import lombok.AllArgsConstructor;\n")
	b.WriteString("import lombok.Builder;\n")
	b.WriteString("import lombok.Data;\n")
	b.WriteString("import lombok.NoArgsConstructor;\n")

	for _, c := range t.Columns {
		if catalog.JavaType(c.DataType) == "java.time.LocalDateTime" {
			b.WriteString("import java.time.LocalDateTime;\n")
			break
		}
	}

	implementsPortion := parseTypeList(cfg.Options["implements"], t.Name)
	if isUserTable {
		b.WriteString("import org.springframework.security.core.userdetails.UserDetails;\n")
		b.WriteString("import org.springframework.security.core.GrantedAuthority;\n")
		b.WriteString("import org.springframework.security.core.authority.SimpleGrantedAuthority;\n")
		b.WriteString("import java.util.Collection;\n")
		b.WriteString("import java.util.List;\n")
		implementsPortion = append(implementsPortion, "UserDetails")
	}

	extendsPortion := parseTypeList(cfg.Options["extends"], t.Name)
	classDecl := "public class " + t.Name
	if len(extendsPortion) > 0 {
		classDecl += " extends " + strings.Join(extendsPortion, ", ")
	}
	if len(implementsPortion) > 0 {
		classDecl += " implements " + strings.Join(implementsPortion, ", ")
	}
	if cfg.Options["withSpringTags"] != "false" {
		b.WriteString("\n@Entity\n@Data\n@NoArgsConstructor\n@AllArgsConstructor\n@Builder\n")
	}
	fmt.Fprintf(&b, "%s {\n", classDecl)

	for _, c := range t.Columns {
		if c.IsPrimaryKey {
			seqName := t.DbName + "_" + c.DbName + "_seq"
			fmt.Fprintf(&b, "    @Id\n    @GeneratedValue(strategy=GenerationType.AUTO, generator=\"%s\")\n    @SequenceGenerator(name=\"%s\", sequenceName=\"%s\", allocationSize = 1)\n", seqName, seqName, seqName)
		}
		if c.IsForeignKey() {
			fmt.Fprintf(&b, "    @ManyToOne(fetch = FetchType.LAZY)\n    @JoinColumn(name = \"%s\")\n    %s %s;\n\n", c.DbName, c.References.OurTable().Name, gen.ForwardPointerName(c))
			fmt.Fprintf(&b, "    @Column(name = \"%s\", insertable = false, updatable = false)\n    %s %s;\n", c.DbName, catalog.JavaType(c.DataType), c.Name)
			continue
		}
		fmt.Fprintf(&b, "    %s %s;\n", catalog.JavaType(c.DataType), c.Name)
	}

	for _, inbound := range resolve.FindReferencesTo(m, t) {
		fmt.Fprintf(&b, "\n    @OneToMany(mappedBy = \"%s\")\n    java.util.List<%s> %s;\n", gen.ForwardPointerName(inbound), inbound.OurTable().Name, gen.ReverseCollectionName(inbound, "s"))
	}

	if isUserTable {
		b.WriteString("\n    @Override\n    public Collection<? extends GrantedAuthority> getAuthorities() {\n        return List.of(new SimpleGrantedAuthority(isAdmin ? \"ADMIN\" : \"MEMBER\"));\n    }\n")
		for _, method := range []string{"isAccountNonExpired", "isAccountNonLocked", "isCredentialsNonExpired", "isEnabled"} {
			fmt.Fprintf(&b, "\n    @Override\n    public boolean %s() {\n        return true;\n    }\n", method)
		}
	}

	b.WriteString("}\n")
	return b.String()
}

func generateRepository(t *model.Table, cfg *model.Generator) string {
	wantOptional := false
	for _, c := range t.Columns {
		if c.WantFinder && !c.IsForeignKey() {
			wantOptional = true
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "package %s.repository;\n\n", cfg.OutputClassPath)
	b.WriteString("import org.springframework.data.jpa.repository.JpaRepository;\n")
	fmt.Fprintf(&b, "import %s.dbmodel.%s;\n", cfg.OutputClassPath, t.Name)
	if wantOptional {
		b.WriteString("import java.util.Optional;\n")
	}
	for _, c := range t.Columns {
		if c.WantFinder && c.IsForeignKey() {
			b.WriteString("import java.util.List;\n")
			break
		}
	}

	fmt.Fprintf(&b, "\npublic interface %sRepository extends JpaRepository<%s, Integer> {\n", t.Name, t.Name)
	for _, c := range t.Columns {
		if !c.WantFinder {
			continue
		}
		if c.IsForeignKey() {
			fmt.Fprintf(&b, "    List<%s> findBy%s(%s %s);\n", t.Name, model.FirstUpper(c.Name), catalog.JavaType(c.DataType), c.Name)
		} else {
			fmt.Fprintf(&b, "    Optional<%s> findBy%s(%s %s);\n", t.Name, model.FirstUpper(c.Name), catalog.JavaType(c.DataType), c.Name)
		}
	}
	b.WriteString("}\n")
	return b.String()
}

// parseTypeList splits a comma-separated Generator option such as
// "AbstractEntity<?>" into its components, substituting "<?>" with the
// current Table's name for generic-base parameterisation (§4.6.4).
func parseTypeList(raw, tableName string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, strings.ReplaceAll(p, "<?>", "<"+tableName+">"))
	}
	return out
}
