// Package cargo reads just enough of Cargo manifests to find the one that
// owns [patch] and to describe the overrides it holds.
package cargo

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// ManifestName is the file name cargo looks for.
const ManifestName = "Cargo.toml"

var (
	// ErrManifestNotFound is returned when no Cargo.toml is within reach.
	ErrManifestNotFound = errors.New("could not find Cargo.toml")
	// ErrInvalidManifest is returned for manifests that cannot be decoded
	// or lack a field the caller needs.
	ErrInvalidManifest = errors.New("invalid Cargo manifest")
)

// Manifest is the subset of Cargo.toml used for locating workspaces.
type Manifest struct {
	Package   *Package   `toml:"package"`
	Workspace *Workspace `toml:"workspace"`
}

// Package is the [package] table.
type Package struct {
	Name string `toml:"name"`
	// Workspace is the explicit path to the workspace root.
	Workspace string `toml:"workspace"`
}

// Workspace is the [workspace] table.
type Workspace struct {
	Members []string `toml:"members"`
	Exclude []string `toml:"exclude"`
}

// IsWorkspaceRoot reports whether the manifest declares a workspace.
func (m *Manifest) IsWorkspaceRoot() bool {
	return m.Workspace != nil
}

// ParseManifest decodes the fields of a Cargo.toml that matter here.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidManifest, err)
	}
	return &m, nil
}

// Override is one entry of a [patch.<registry>] table.
type Override struct {
	Registry string `json:"registry" yaml:"registry"`
	Name     string `json:"name" yaml:"name"`
	Path     string `json:"path,omitempty" yaml:"path,omitempty"`
	Git      string `json:"git,omitempty" yaml:"git,omitempty"`
	Tag      string `json:"tag,omitempty" yaml:"tag,omitempty"`
	Rev      string `json:"rev,omitempty" yaml:"rev,omitempty"`
	Branch   string `json:"branch,omitempty" yaml:"branch,omitempty"`
	// Other holds any remaining string fields, such as version or package.
	Other map[string]string `json:"other,omitempty" yaml:"other,omitempty"`
}

// Source renders the override the way it would be written by add.
func (o Override) Source() string {
	switch {
	case o.Path != "":
		return fmt.Sprintf("path = %q", o.Path)
	case o.Git != "":
		s := fmt.Sprintf("git = %q", o.Git)
		switch {
		case o.Tag != "":
			s += fmt.Sprintf(", tag = %q", o.Tag)
		case o.Rev != "":
			s += fmt.Sprintf(", rev = %q", o.Rev)
		case o.Branch != "":
			s += fmt.Sprintf(", branch = %q", o.Branch)
		}
		return s
	}
	keys := make([]string, 0, len(o.Other))
	for k := range o.Other {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s = %q", k, o.Other[k])
	}
	return strings.Join(parts, ", ")
}

// Overrides lists every patch entry in the manifest, sorted by registry and
// then by name. Entries that are not tables are reported as errors.
func Overrides(data []byte) ([]Override, error) {
	var doc struct {
		Patch map[string]map[string]interface{} `toml:"patch"`
	}
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidManifest, err)
	}

	var out []Override
	for registry, entries := range doc.Patch {
		for name, raw := range entries {
			fields, ok := raw.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("%w: patch.%s.%s is not a table", ErrInvalidManifest, registry, name)
			}
			out = append(out, newOverride(registry, name, fields))
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Registry != out[j].Registry {
			return out[i].Registry < out[j].Registry
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func newOverride(registry, name string, fields map[string]interface{}) Override {
	o := Override{Registry: registry, Name: name}
	for k, v := range fields {
		s, ok := v.(string)
		if !ok {
			s = fmt.Sprint(v)
		}
		switch k {
		case "path":
			o.Path = s
		case "git":
			o.Git = s
		case "tag":
			o.Tag = s
		case "rev":
			o.Rev = s
		case "branch":
			o.Branch = s
		default:
			if o.Other == nil {
				o.Other = make(map[string]string)
			}
			o.Other[k] = s
		}
	}
	return o
}
