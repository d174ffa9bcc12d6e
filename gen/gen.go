// Package gen is the emitter contract (C5): the single-method
// Generator interface every concrete emitter satisfies, the
// write-if-absent vs. always-regenerated file writer, and the naming
// conventions for foreign-key pointer and reverse-collection fields.
package gen

import (
	"os"
	"path/filepath"

	"github.com/jplflyer/persist/model"
)

// Generator is the abstract interface every concrete emitter (§4.6)
// satisfies. Generate receives the resolved Model IR and this emitter's
// own configuration; its only side effects are writing files under
// paths derived from cfg.OutputBasePath/OutputClassPath and, for the
// Flyway emitter alone, mutating m's version/snapshot fields (§4.5).
type Generator interface {
	Generate(m *model.Model, cfg *model.Generator) error
}

// Writer writes generated files, tracking the §4.5 idempotence classes:
// always-regenerated files are overwritten unconditionally, while
// write-if-absent files are skipped when the target already exists.
type Writer struct {
	// BasePath roots every file this Writer produces.
	BasePath string
}

// NewWriter returns a Writer rooted at basePath.
func NewWriter(basePath string) *Writer {
	return &Writer{BasePath: basePath}
}

// WriteAlways writes content to relPath (relative to BasePath),
// creating parent directories as needed, overwriting any existing file.
func (w *Writer) WriteAlways(relPath string, content []byte) error {
	full := filepath.Join(w.BasePath, relPath)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return err
	}
	return os.WriteFile(full, content, 0o644)
}

// WriteIfAbsent writes content to relPath only if no file is already
// there; an existing file — presumed hand-edited — is left untouched.
// Returns wrote=false when the file was skipped.
func (w *Writer) WriteIfAbsent(relPath string, content []byte) (wrote bool, err error) {
	full := filepath.Join(w.BasePath, relPath)
	if _, statErr := os.Stat(full); statErr == nil {
		return false, nil
	} else if !os.IsNotExist(statErr) {
		return false, statErr
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return false, err
	}
	if err := os.WriteFile(full, content, 0o644); err != nil {
		return false, err
	}
	return true, nil
}

// ForwardPointerName returns the field name used for a Column's
// outbound foreign-key pointer: RefPtrName when set, otherwise
// FirstLower(parentTableName) (§4.5).
func ForwardPointerName(c *model.Column) string {
	if c.RefPtrName != "" {
		return c.RefPtrName
	}
	return model.FirstLower(c.References.OurTable().Name)
}

// ReverseCollectionName returns the field name for the reverse
// collection on the parent side of a foreign key: ReversePtrName when
// set, otherwise FirstLower(childTableName) + a language-specific
// plural suffix ("Vector" for C++, "s" for Java) (§4.5).
func ReverseCollectionName(c *model.Column, suffix string) string {
	if c.ReversePtrName != "" {
		return c.ReversePtrName
	}
	return model.FirstLower(c.OurTable().Name) + suffix
}

// ClassPathToSlashed converts a Java outputClassPath ("com.example.app")
// to its on-disk/package-import form ("com/example/app") (§4.6).
func ClassPathToSlashed(classPath string) string {
	out := make([]byte, 0, len(classPath))
	for i := 0; i < len(classPath); i++ {
		if classPath[i] == '.' {
			out = append(out, '/')
		} else {
			out = append(out, classPath[i])
		}
	}
	return string(out)
}
