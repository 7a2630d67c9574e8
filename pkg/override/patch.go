package override

import (
	"fmt"

	"github.com/fulmenhq/cargo-override/pkg/tomledit"
)

const patchKey = "patch"

// Patch applies op to the manifest text and returns the edited text.
//
// workingDir is the directory a PathMode target is relative to and
// manifestDir is the directory holding the manifest; the two differ when
// the tool runs from a workspace member.
func Patch(workingDir, manifest, manifestDir string, op Operation) (string, error) {
	doc, err := tomledit.Parse(manifest)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	root := doc.Root()

	switch o := op.(type) {
	case Add:
		err = addOverride(workingDir, manifestDir, root, o)
	case Remove:
		err = removeOverride(root, o.Name)
	default:
		err = fmt.Errorf("unsupported operation %T", op)
	}
	if err != nil {
		return "", err
	}

	return doc.String(), nil
}

func addOverride(workingDir, manifestDir string, root *tomledit.Table, op Add) error {
	patch, err := GetOrCreateSubtable(root, patchKey, true)
	if err != nil {
		return err
	}
	registry, err := GetOrCreateSubtable(patch, op.Registry, false)
	if err != nil {
		return err
	}

	source, err := BuildSource(workingDir, manifestDir, op.Mode)
	if err != nil {
		return err
	}

	if err := registry.Insert(op.Name, source); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrUnparseableGeneratedValue, source, err)
	}
	return nil
}

// removeOverride drops name from every registry and then deletes the
// registries it left empty. A registry header goes together with the
// comments directly above it. Registries that were already empty stay.
func removeOverride(root *tomledit.Table, name string) error {
	switch root.Get(patchKey) {
	case tomledit.KindNone:
		return nil
	case tomledit.KindTable:
	default:
		return &SchemaConflictError{Name: patchKey}
	}
	patch := root.Subtable(patchKey)

	var emptied []string
	for _, registryName := range patch.Names() {
		if patch.Get(registryName) != tomledit.KindTable {
			return &SchemaConflictError{Name: registryName}
		}

		registry := patch.Subtable(registryName)
		// Only registries emptied by this call go. One that was already
		// empty stays, so removing an absent name returns the input as is.
		if registry.Remove(name) && registry.IsEmpty() {
			emptied = append(emptied, registryName)
		}
	}

	for _, registryName := range emptied {
		patch.Remove(registryName)
	}
	return nil
}
