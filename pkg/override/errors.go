package override

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidDocument indicates the manifest text is not valid TOML
	ErrInvalidDocument = errors.New("manifest contains invalid toml")

	// ErrUnparseableGeneratedValue indicates a generated source did not parse
	// as an inline table. Inputs are not escaped, so quotes or backslashes in
	// a path or URL end up here.
	ErrUnparseableGeneratedValue = errors.New("generated source is not a valid inline table")

	// ErrPathDiffInvariant indicates no relative path could be computed
	// between two absolute paths
	ErrPathDiffInvariant = errors.New("no relative path between absolute paths")
)

// SchemaConflictError indicates a key that must hold a table holds something
// else, such as a string, an inline table or an array of tables.
type SchemaConflictError struct {
	Name string
}

func (e *SchemaConflictError) Error() string {
	return fmt.Sprintf("%s already exists but is not a table", e.Name)
}

// IsSchemaConflict checks if an error is a schema conflict
func IsSchemaConflict(err error) bool {
	var conflict *SchemaConflictError
	return errors.As(err, &conflict)
}

// IsInternal reports whether err is an internal invariant violation rather
// than a problem with the user's manifest or arguments.
func IsInternal(err error) bool {
	return errors.Is(err, ErrUnparseableGeneratedValue) || errors.Is(err, ErrPathDiffInvariant)
}
