package override

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const workDir = "/path/to/working/dir/"

const referenceManifest = `[package]
name = "package-name"
version = "0.1.0"
edition = "2021"

# See more keys and their definitions at https://doc.rust-lang.org/cargo/reference/manifest.html

[patch.crates-io]
test = { git = "https://github.com/test/test.git" }

[patch.github]
test1 = { git = "https://github.com/test/test1.git" }
`

func structure(t *testing.T, manifest string) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, toml.Unmarshal([]byte(manifest), &m))
	return m
}

func TestPatch_AddToExistingRegistry(t *testing.T) {
	got, err := Patch(workDir, referenceManifest, workDir, Add{
		Registry: "crates-io",
		Name:     "test2",
		Mode:     PathMode{Path: "/path/to/local/crate/test2"},
	})
	require.NoError(t, err)

	assert.Equal(t, `[package]
name = "package-name"
version = "0.1.0"
edition = "2021"

# See more keys and their definitions at https://doc.rust-lang.org/cargo/reference/manifest.html

[patch.crates-io]
test = { git = "https://github.com/test/test.git" }
test2 = { path = "/path/to/local/crate/test2" }

[patch.github]
test1 = { git = "https://github.com/test/test1.git" }
`, got)
}

// The comment above [patch.crates-io] is owned by that header, so it is
// deleted together with the emptied registry.
func TestPatch_RemoveEmptiedRegistryDropsLeadingComment(t *testing.T) {
	got, err := Patch(workDir, referenceManifest, workDir, Remove{Name: "test"})
	require.NoError(t, err)

	assert.Equal(t, `[package]
name = "package-name"
version = "0.1.0"
edition = "2021"

[patch.github]
test1 = { git = "https://github.com/test/test1.git" }
`, got)
	assert.NotContains(t, got, "# See more keys")
	assert.NotContains(t, got, "[patch.crates-io]")
}

func TestPatch_RemoveAfterAddKeepsOtherEntries(t *testing.T) {
	added, err := Patch(workDir, referenceManifest, workDir, Add{
		Registry: "crates-io",
		Name:     "test2",
		Mode:     PathMode{Path: "/path/to/local/crate/test2"},
	})
	require.NoError(t, err)

	got, err := Patch(workDir, added, workDir, Remove{Name: "test"})
	require.NoError(t, err)

	assert.Contains(t, got, "[patch.crates-io]\ntest2 = { path = \"/path/to/local/crate/test2\" }\n")
	assert.Contains(t, got, "# See more keys")
	assert.Contains(t, got, "[patch.github]\ntest1 = { git = \"https://github.com/test/test1.git\" }\n")
	assert.NotContains(t, got, "test = {")
}

func TestPatch_AddCreatesPatchSection(t *testing.T) {
	manifest := "[package]\nname = \"demo\"\n\n[dependencies]\nserde = \"1\"\n"

	got, err := Patch(workDir, manifest, workDir, Add{
		Registry: "crates-io",
		Name:     "serde",
		Mode:     GitMode{URL: "https://github.com/serde-rs/serde", Reference: Branch("main")},
	})
	require.NoError(t, err)

	assert.Equal(t, manifest+"\n[patch.crates-io]\nserde = { git = \"https://github.com/serde-rs/serde\", branch = \"main\" }\n", got)
}

func TestPatch_AddNewRegistryNextToSiblings(t *testing.T) {
	manifest := "[patch.github]\na = { path = \"a\" }\n\n[dependencies]\nb = \"1\"\n"

	got, err := Patch(workDir, manifest, workDir, Add{
		Registry: "crates-io",
		Name:     "c",
		Mode:     PathMode{Path: "c"},
	})
	require.NoError(t, err)

	assert.Equal(t, "[patch.github]\na = { path = \"a\" }\n\n[patch.crates-io]\nc = { path = \"c\" }\n\n[dependencies]\nb = \"1\"\n", got)
}

func TestPatch_AddOmitsEmptyPatchHeader(t *testing.T) {
	manifest := "[patch]\n\n[patch.github]\na = { path = \"a\" }\n"

	got, err := Patch(workDir, manifest, workDir, Add{
		Registry: "github",
		Name:     "b",
		Mode:     PathMode{Path: "b"},
	})
	require.NoError(t, err)

	assert.Equal(t, "\n[patch.github]\na = { path = \"a\" }\nb = { path = \"b\" }\n", got)
}

func TestPatch_IdempotentOverwrite(t *testing.T) {
	manifests := []string{
		referenceManifest,
		"[package]\nname = \"demo\"\n",
		"[patch.crates-io]\n# pinned for a fix\nfoo = { git = \"https://example.com/foo.git\" }\n",
	}
	first := Add{Registry: "crates-io", Name: "foo", Mode: PathMode{Path: "../foo"}}
	second := Add{Registry: "crates-io", Name: "foo", Mode: GitMode{URL: "https://example.com/foo.git", Reference: Tag("v1.2.3")}}

	for _, manifest := range manifests {
		once, err := Patch(workDir, manifest, workDir, first)
		require.NoError(t, err)
		twice, err := Patch(workDir, once, workDir, second)
		require.NoError(t, err)
		direct, err := Patch(workDir, manifest, workDir, second)
		require.NoError(t, err)

		assert.Equal(t, direct, twice)
		assert.NotContains(t, twice, "../foo")
	}
}

func TestPatch_AddThenRemoveRoundTrip(t *testing.T) {
	manifests := map[string]string{
		"reference":      referenceManifest,
		"no patch":       "[package]\nname = \"demo\"\n\n[dependencies]\nserde = \"1\"\n",
		"empty":          "",
		"no newline":     "[package]\nname = \"demo\"",
		"other registry": "[patch.github]\nx = { path = \"x\" }\n",
		"dotted":         "[patch]\ncrates-io.x = { path = \"x\" }\n",
		"root dotted":    "patch.crates-io.x = { path = \"x\" }\n[package]\nname = \"demo\"\n",
	}
	modes := []Mode{
		PathMode{Path: "../local"},
		GitMode{URL: "https://example.com/r.git", Reference: DefaultBranch{}},
		GitMode{URL: "https://example.com/r.git", Reference: Rev("0a1b2c3")},
	}

	for name, manifest := range manifests {
		for _, mode := range modes {
			t.Run(name, func(t *testing.T) {
				added, err := Patch(workDir, manifest, workDir, Add{Registry: "crates-io", Name: "fresh", Mode: mode})
				require.NoError(t, err)
				removed, err := Patch(workDir, added, workDir, Remove{Name: "fresh"})
				require.NoError(t, err)

				if diff := cmp.Diff(structure(t, manifest), structure(t, removed)); diff != "" {
					t.Errorf("structure changed after add+remove (-want +got):\n%s", diff)
				}
			})
		}
	}
}

func TestPatch_RemoveIsNoOpWhenAbsent(t *testing.T) {
	manifests := []string{
		referenceManifest,
		"[package]\nname = \"demo\"\n# no patches here\n",
		"",
	}

	for _, manifest := range manifests {
		got, err := Patch(workDir, manifest, workDir, Remove{Name: "missing"})
		require.NoError(t, err)
		assert.Equal(t, manifest, got)
	}
}

func TestPatch_RemoveKeepsRegistriesThatWereAlreadyEmpty(t *testing.T) {
	manifest := "[patch.crates-io]\n\n[patch.github]\nx = { path = \"x\" }\n"

	got, err := Patch(workDir, manifest, workDir, Remove{Name: "x"})
	require.NoError(t, err)
	assert.Equal(t, "[patch.crates-io]\n", got)

	got, err = Patch(workDir, manifest, workDir, Remove{Name: "missing"})
	require.NoError(t, err)
	assert.Equal(t, manifest, got)
}

func TestPatch_RemoveFromAllRegistries(t *testing.T) {
	manifest := `[patch.crates-io]
shared = { path = "../shared" }
keep = { path = "../keep" }

[patch.github]
shared = { git = "https://github.com/o/shared.git" }

[patch."https://example.com/index"]
shared = { path = "../shared" }
other = { path = "../other" }
`

	got, err := Patch(workDir, manifest, workDir, Remove{Name: "shared"})
	require.NoError(t, err)

	assert.Equal(t, `[patch.crates-io]
keep = { path = "../keep" }

[patch."https://example.com/index"]
other = { path = "../other" }
`, got)
}

func TestPatch_RemoveDottedRegistry(t *testing.T) {
	manifest := "[package]\nname = \"demo\"\n\n[patch]\ncrates-io.x = { path = \"x\" }\n"

	got, err := Patch(workDir, manifest, workDir, Remove{Name: "x"})
	require.NoError(t, err)

	assert.Equal(t, "[package]\nname = \"demo\"\n\n[patch]\n", got)
	assert.Equal(t, map[string]any{}, structure(t, got)["patch"])
}

func TestPatch_ResolvesPathAgainstManifestDir(t *testing.T) {
	root := t.TempDir()
	member := mkdir(t, root, "crates", "app")

	got, err := Patch(member, "", root, Add{
		Registry: "crates-io",
		Name:     "dep",
		Mode:     PathMode{Path: "../../vendor/dep"},
	})
	require.NoError(t, err)

	assert.Equal(t, "[patch.crates-io]\ndep = { path = \"vendor/dep\" }\n", got)
}

func TestPatch_InvalidDocument(t *testing.T) {
	_, err := Patch(workDir, "[package\nname = 1\n", workDir, Remove{Name: "x"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidDocument))
	var decodeErr *toml.DecodeError
	assert.True(t, errors.As(err, &decodeErr), "parser error should stay reachable: %v", err)
}

func TestPatch_SchemaConflicts(t *testing.T) {
	add := Add{Registry: "crates-io", Name: "x", Mode: PathMode{Path: "x"}}

	tests := []struct {
		name     string
		manifest string
		op       Operation
		conflict string
	}{
		{"patch is a string", "patch = \"nope\"\n", add, "patch"},
		{"patch is an inline table", "patch = { crates-io = {} }\n", add, "patch"},
		{"patch is an array of tables", "[[patch]]\nx = 1\n", add, "patch"},
		{"registry is a value", "[patch]\ncrates-io = 1\n", add, "crates-io"},
		{"registry is an inline table", "[patch]\ncrates-io = { x = { path = \"x\" } }\n", add, "crates-io"},
		{"remove with patch value", "patch = 1\n", Remove{Name: "x"}, "patch"},
		{"remove with registry value", "[patch]\ncrates-io = 1\n", Remove{Name: "x"}, "crates-io"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Patch(workDir, tt.manifest, workDir, tt.op)
			require.Error(t, err)

			var conflict *SchemaConflictError
			require.True(t, errors.As(err, &conflict), "expected schema conflict, got %v", err)
			assert.Equal(t, tt.conflict, conflict.Name)
			assert.Equal(t, tt.conflict+" already exists but is not a table", err.Error())
			assert.True(t, IsSchemaConflict(err))
		})
	}
}

func TestPatch_UnparseableGeneratedValue(t *testing.T) {
	_, err := Patch(workDir, "", workDir, Add{
		Registry: "crates-io",
		Name:     "x",
		Mode:     GitMode{URL: `https://example.com/"quoted"`},
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnparseableGeneratedValue))
	assert.True(t, IsInternal(err))
}

type unknownOperation struct{ Operation }

func TestPatch_UnsupportedOperation(t *testing.T) {
	_, err := Patch(workDir, "", workDir, unknownOperation{})
	assert.Error(t, err)
}
