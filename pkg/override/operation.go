// Package override adds and removes [patch.<registry>] entries in a Cargo
// manifest while keeping every comment and layout choice the edit does not
// touch.
//
// The package is a pure text transformation. Patch takes the manifest text
// and one Operation and returns the new text; locating, reading and writing
// the manifest is left to the caller.
package override

// Operation is one edit of the override section. It is either Add or Remove.
type Operation interface {
	isOperation()
}

// Add redirects Name in the Registry sub-table of [patch] to the source
// described by Mode. An existing entry with the same name is replaced.
type Add struct {
	Registry string
	Name     string
	Mode     Mode
}

// Remove drops Name from every registry sub-table it appears in.
type Remove struct {
	Name string
}

func (Add) isOperation()    {}
func (Remove) isOperation() {}

// Mode describes the source an override points to. It is either PathMode or
// GitMode.
type Mode interface {
	isMode()
}

// PathMode points to a crate on the local filesystem. Path is relative to
// the working directory or absolute.
type PathMode struct {
	Path string
}

// GitMode points to a crate in a git repository.
type GitMode struct {
	URL       string
	Reference GitReference
}

func (PathMode) isMode() {}
func (GitMode) isMode()  {}

// GitReference selects what to check out of a GitMode repository:
// DefaultBranch, Tag, Rev or Branch.
type GitReference interface {
	isGitReference()
}

// DefaultBranch uses whatever the repository's HEAD points to.
type DefaultBranch struct{}

type (
	Tag    string
	Rev    string
	Branch string
)

func (DefaultBranch) isGitReference() {}
func (Tag) isGitReference()           {}
func (Rev) isGitReference()           {}
func (Branch) isGitReference()        {}
