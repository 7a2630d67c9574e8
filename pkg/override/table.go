package override

import "github.com/fulmenhq/cargo-override/pkg/tomledit"

// GetOrCreateSubtable returns the table stored under name in parent,
// creating it when absent, and applies the layout style. A dotted table
// never gets a header of its own; its sub-tables are written as
// [parent.name.child] headers.
func GetOrCreateSubtable(parent *tomledit.Table, name string, dotted bool) (*tomledit.Table, error) {
	switch parent.Get(name) {
	case tomledit.KindNone, tomledit.KindTable:
	default:
		return nil, &SchemaConflictError{Name: name}
	}

	sub := parent.Subtable(name)
	sub.SetDotted(dotted)
	return sub, nil
}
