// Command persist is the CLI front-end (§6): load/create a model,
// define tables and columns from the command line, and dispatch the
// configured generators.
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jplflyer/persist/catalog"
	"github.com/jplflyer/persist/model"
	"github.com/jplflyer/persist/process"
)

var errLog = log.New(os.Stderr, "", 0)

type rootFlags struct {
	modelPath string
	create    bool
	generate  []string
	listGen   bool
	flyway    bool
	sql       bool
	java      bool
	tables    []string
	columns   []string
}

func main() {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:   "persist",
		Short: "A schema-driven code and migration generator",
		RunE: func(_ *cobra.Command, _ []string) error {
			return run(flags)
		},
	}

	cmd.Flags().StringVar(&flags.modelPath, "model", "", "path to the model JSON file (required)")
	cmd.Flags().BoolVar(&flags.create, "create", false, "write a brand-new empty model to --model and exit")
	cmd.Flags().StringSliceVar(&flags.generate, "generate", nil, "generator names to run (repeatable); empty runs all configured generators")
	cmd.Flags().StringSliceVar(&flags.generate, "gen", nil, "alias for --generate")
	cmd.Flags().BoolVar(&flags.listGen, "listgen", false, "list the generators configured on the model and exit")
	cmd.Flags().BoolVar(&flags.flyway, "flyway", false, "shorthand for --generate Flyway")
	cmd.Flags().BoolVar(&flags.sql, "sql", false, "shorthand for --generate SQL")
	cmd.Flags().BoolVar(&flags.java, "java", false, "shorthand for --generate Java")
	cmd.Flags().StringSliceVar(&flags.tables, "table", nil, "table name to create/update (repeatable)")
	cmd.Flags().StringSliceVar(&flags.columns, "column", nil, "name[:type[(length|precision[,scale])]] applied to the most recently named --table (repeatable)")

	if err := cmd.MarkFlagRequired("model"); err != nil {
		errLog.Fatal(err)
	}

	if err := cmd.Execute(); err != nil {
		errLog.Fatal(err)
	}
}

func run(flags *rootFlags) error {
	if flags.create {
		return createModel(flags.modelPath)
	}

	p, err := process.Load(flags.modelPath)
	if err != nil {
		return err
	}

	if err := applyTableColumnFlags(p.Model, flags.tables, flags.columns); err != nil {
		return err
	}

	if flags.listGen {
		for _, g := range p.Model.Generators {
			fmt.Printf("%s\t%s\n", g.Name, g.Description)
		}
		return nil
	}

	filter := filterFromFlags(flags)
	if err := p.Generate(filter); err != nil {
		return err
	}

	return p.Save()
}

// createModel implements Open Question Decision #1: --create always
// writes a brand-new empty model, overwriting anything already at
// modelPath, and never merges with an existing model.
func createModel(modelPath string) error {
	name := strings.TrimSuffix(filepath.Base(modelPath), filepath.Ext(modelPath))
	m := model.New(name)

	buf, err := m.ToJSON()
	if err != nil {
		return err
	}

	return os.WriteFile(modelPath, buf, 0o644)
}

// filterFromFlags merges --generate/--gen with the --flyway/--sql/--java
// shorthands into the single named-generator filter set Processor.Generate
// expects. An entirely empty result means "run everything configured".
func filterFromFlags(flags *rootFlags) map[string]bool {
	filter := map[string]bool{}
	for _, name := range flags.generate {
		filter[name] = true
	}
	if flags.flyway {
		filter["Flyway"] = true
	}
	if flags.sql {
		filter["SQL"] = true
	}
	if flags.java {
		filter["Java"] = true
	}
	return filter
}

// applyTableColumnFlags implements the supplemented CLI shorthand
// (original Processor::specifyTable / specifyColumn): each --table
// flag opens a table (creating it if new), and every --column flag
// that follows it, up to the next --table, is applied to that table.
// cobra parses StringSlice flags in argument order, so we replay the
// raw argv order rather than trusting flags.tables/flags.columns
// independently, since cobra stores each slice flag's own values in
// order but loses the interleaving between the two flags.
func applyTableColumnFlags(m *model.Model, tables, columns []string) error {
	if len(tables) == 0 {
		return nil
	}

	pairs := interleaveFromArgs(os.Args[1:])
	if len(pairs) == 0 {
		// No interleaving info (e.g. a programmatic call in tests): apply
		// every column to every named table.
		for _, name := range tables {
			t := findOrCreateTable(m, name)
			for _, col := range columns {
				if err := specifyColumn(t, col); err != nil {
					return err
				}
			}
		}
		return nil
	}

	for _, tc := range pairs {
		t := findOrCreateTable(m, tc.table)
		for _, col := range tc.columns {
			if err := specifyColumn(t, col); err != nil {
				return err
			}
		}
	}
	return nil
}

func findOrCreateTable(m *model.Model, name string) *model.Table {
	if t := m.FindTable(name); t != nil {
		return t
	}
	return m.CreateTable(name)
}

type tableColumns struct {
	table   string
	columns []string
}

// interleaveFromArgs walks raw CLI args to recover which --column
// flags followed which --table flag, since cobra's StringSliceVar
// flattens repeated flags into independent slices.
func interleaveFromArgs(args []string) []tableColumns {
	var out []tableColumns
	var current *tableColumns

	for i := 0; i < len(args); i++ {
		arg := args[i]
		name, value, hasValue := splitFlag(arg)

		switch name {
		case "--table":
			if !hasValue && i+1 < len(args) {
				value = args[i+1]
				i++
			}
			out = append(out, tableColumns{table: value})
			current = &out[len(out)-1]
		case "--column":
			if !hasValue && i+1 < len(args) {
				value = args[i+1]
				i++
			}
			if current != nil {
				current.columns = append(current.columns, value)
			}
		}
	}
	return out
}

func splitFlag(arg string) (name, value string, hasValue bool) {
	if idx := strings.Index(arg, "="); idx >= 0 && strings.HasPrefix(arg, "--") {
		return arg[:idx], arg[idx+1:], true
	}
	return arg, "", false
}

// specifyColumn implements the Processor::specifyColumn shorthand
// grammar: name[:type[(length|precision[,scale])]]. A column named
// without a type must already exist on the table.
func specifyColumn(t *model.Table, spec string) error {
	name, typePart, hasType := strings.Cut(spec, ":")
	if name == "" {
		return fmt.Errorf("--column requires a name: %q", spec)
	}

	col := t.FindColumn(name)

	if !hasType {
		if col == nil {
			return fmt.Errorf("column %q not known and no data type provided", name)
		}
		return nil
	}

	typeName, nums, err := parseTypeSpec(typePart)
	if err != nil {
		return err
	}

	dt, ok := catalog.FromName(typeName)
	if !ok {
		return fmt.Errorf("%w: %q", errUnknownType, typeName)
	}

	if col == nil {
		col = t.CreateColumn(name, dt)
	}
	col.DataType = dt

	switch {
	case catalog.HasLength(dt) && len(nums) >= 1:
		col.Length = nums[0]
	case catalog.HasPrecision(dt) && len(nums) >= 1:
		col.PrecisionP = nums[0]
		if len(nums) >= 2 {
			col.PrecisionS = nums[1]
		}
	}
	return nil
}

var errUnknownType = fmt.Errorf("persist: unknown data type")

// parseTypeSpec parses "varchar(40)" or "numeric(10,2)" or a bare
// "integer" into its name and its parenthesized numeric arguments.
func parseTypeSpec(spec string) (name string, nums []int, err error) {
	open := strings.IndexByte(spec, '(')
	if open < 0 {
		return spec, nil, nil
	}
	if !strings.HasSuffix(spec, ")") {
		return "", nil, fmt.Errorf("malformed type spec: %q", spec)
	}

	name = spec[:open]
	inner := spec[open+1 : len(spec)-1]
	for _, p := range strings.Split(inner, ",") {
		n, convErr := strconv.Atoi(strings.TrimSpace(p))
		if convErr != nil {
			return "", nil, fmt.Errorf("malformed type spec: %q", spec)
		}
		nums = append(nums, n)
	}
	return name, nums, nil
}
