// Package persist holds the shared error vocabulary used across the
// model, resolver, differ, and generator packages.
package persist

import (
	"errors"
	"fmt"
)

// Sentinel errors for common model and resolution failures.
var (
	// ErrTableNotFound is returned when a table lookup by logical name fails.
	ErrTableNotFound = errors.New("persist: table not found")

	// ErrColumnNotFound is returned when a column lookup by logical name fails.
	ErrColumnNotFound = errors.New("persist: column not found")

	// ErrUnknownDataType is returned when a datatype name is not in the catalogue.
	ErrUnknownDataType = errors.New("persist: unknown data type")

	// ErrUnknownGenerator identifies a Generator whose name selects no
	// emitter the dispatch pipeline recognizes. The Processor itself
	// reports that case as a ConfigError and skips the Generator.
	ErrUnknownGenerator = errors.New("persist: unknown generator")
)

// ResolutionError describes a single failed reference resolution: a
// Column whose referenceStr names a Table or Column that does not exist.
// Resolution errors are soft: the Processor logs them and continues (§7.1).
type ResolutionError struct {
	Table        string
	Column       string
	ReferenceStr string
	err          error
}

// Error implements the error interface.
func (e *ResolutionError) Error() string {
	return fmt.Sprintf("persist: %s.%s: cannot resolve reference %q: %v", e.Table, e.Column, e.ReferenceStr, e.err)
}

// Unwrap exposes the underlying sentinel so callers can errors.Is against
// ErrTableNotFound or ErrColumnNotFound.
func (e *ResolutionError) Unwrap() error {
	return e.err
}

// NewResolutionError returns a *ResolutionError wrapping one of the
// sentinel lookup errors above.
func NewResolutionError(table, column, referenceStr string, err error) *ResolutionError {
	return &ResolutionError{Table: table, Column: column, ReferenceStr: referenceStr, err: err}
}

// ConfigError describes a Generator configuration problem (§7.4): an
// unknown generator name, or a required path left empty. The Processor
// logs a ConfigError and skips the offending Generator; it never aborts
// the run.
type ConfigError struct {
	Generator string
	Reason    string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("persist: generator %q: %s", e.Generator, e.Reason)
}
