// Package flywaygen is the Flyway emitter (§4.6.5): it writes the
// timestamped migration file produced by the migration differ (C4),
// ensures the conventional directory layout exists, and regenerates
// flyway.toml from the model's Database descriptors.
package flywaygen

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/jplflyer/persist/migrate"
	"github.com/jplflyer/persist/model"
)

// Generator emits Flyway migrations and configuration. Now is injected
// so callers can supply a fixed clock in tests; production code passes
// time.Now.
type Generator struct {
	Now func() time.Time
}

// New returns a Generator using the real wall clock.
func New() *Generator {
	return &Generator{Now: time.Now}
}

var sequence int

// Generate implements gen.Generator. It runs the differ, writes the
// migration file (or deletes it / reports no changes), and, on every
// run where Database descriptors are present, regenerates flyway.toml.
func (g *Generator) Generate(m *model.Model, cfg *model.Generator) error {
	migrationsDir := filepath.Join(cfg.OutputBasePath, "migrations")
	schemaModelDir := filepath.Join(cfg.OutputBasePath, "schema-model")
	if err := os.MkdirAll(migrationsDir, 0o755); err != nil {
		return err
	}
	if err := os.MkdirAll(schemaModelDir, 0o755); err != nil {
		return err
	}

	if err := g.writeConfig(cfg, m); err != nil {
		return err
	}

	return g.writeMigration(m, migrationsDir)
}

func (g *Generator) writeMigration(m *model.Model, migrationsDir string) error {
	wasFirst := m.GeneratedVersion == 0
	mig := migrate.Diff(m)

	comment := "CreateDatabase"
	if !wasFirst {
		comment = migrationComment(m)
	}

	name := MigrationFileName(g.now(), comment)
	path := filepath.Join(migrationsDir, name)

	if mig.IsEmpty() {
		os.Remove(path)
		fmt.Fprintln(os.Stderr, "flyway: no changes")
		return nil
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteString(mig.Body()); err != nil {
		return err
	}

	migrate.Stamp(m)
	m.MarkDirty()
	return nil
}

func (g *Generator) now() time.Time {
	if g.Now != nil {
		return g.Now()
	}
	return time.Now()
}

// migrationComment pulls the model's configured migration comment from
// its own generator's options, if any, defaulting to "Update".
func migrationComment(m *model.Model) string {
	for _, gtor := range m.Generators {
		if gtor.Name == "Flyway" {
			if c, ok := gtor.Options["migrationComment"]; ok && c != "" {
				return c
			}
		}
	}
	return "Update"
}

// MigrationFileName renders the filename contract (§4.4):
// V001__YYYYMMDDHHMMSS_NNNN_<comment>.sql, where NNNN is a 4-digit
// per-process-run sequence starting at 0001.
func MigrationFileName(now time.Time, comment string) string {
	sequence++
	return fmt.Sprintf("V001__%s_%04d_%s.sql", now.Format("20060102150405"), sequence, comment)
}

type tomlEnvironment struct {
	URL      string   `toml:"url"`
	User     string   `toml:"user"`
	Password string   `toml:"password,omitempty"`
	Schemas  []string `toml:"schemas"`
}

type tomlFlywaySection struct {
	Mixed                bool     `toml:"mixed"`
	OutOfOrder           bool     `toml:"outOfOrder"`
	Locations            []string `toml:"locations"`
	ValidateMigrationNaming bool  `toml:"validateMigrationNaming"`
}

type tomlConfig struct {
	DatabaseType string                     `toml:"databaseType"`
	Name         string                     `toml:"name"`
	Flyway       tomlFlywaySection          `toml:"flyway"`
	Environments map[string]tomlEnvironment `toml:"environments"`
}

func (g *Generator) writeConfig(cfg *model.Generator, m *model.Model) error {
	if len(m.Databases) == 0 {
		return nil
	}

	tc := tomlConfig{
		DatabaseType: "PostgreSQL",
		Name:         m.Name,
		Flyway: tomlFlywaySection{
			Mixed:                   true,
			OutOfOrder:              false,
			Locations:               []string{"filesystem:migrations"},
			ValidateMigrationNaming: true,
		},
		Environments: make(map[string]tomlEnvironment, len(m.Databases)),
	}

	for _, d := range m.Databases {
		tc.Environments[d.EnvName] = tomlEnvironment{
			URL:      fmt.Sprintf("jdbc:%s://%s:%d/%s", strings.ToLower(d.Driver), d.Host, d.Port, d.DbName),
			User:     d.Username,
			Password: d.Password,
			Schemas:  []string{"public"},
		}
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(tc); err != nil {
		return err
	}

	return moveIfDifferent(filepath.Join(cfg.OutputBasePath, "flyway.toml"), buf.Bytes())
}

// moveIfDifferent writes content to a .tmp sibling of path and
// atomically renames it into place only if the content differs from
// what's already there, so successful no-op runs don't churn
// flyway.toml's mtime (§5 resource discipline).
func moveIfDifferent(path string, content []byte) error {
	existing, err := os.ReadFile(path)
	if err == nil && bytes.Equal(existing, content) {
		return nil
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, content, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
