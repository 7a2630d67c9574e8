package override

import (
	"fmt"
	"path/filepath"
)

// ResolvePath returns the path to write into the manifest for a crate at
// target, given relative to workingDir.
//
// Both directories are canonicalized when they exist. When they are the same
// directory target is returned untouched; otherwise the result is relative to
// manifestDir. Nothing is escaped.
func ResolvePath(workingDir, manifestDir, target string) (string, error) {
	workingDir = canonicalize(workingDir)
	manifestDir = canonicalize(manifestDir)

	if filepath.Clean(workingDir) == filepath.Clean(manifestDir) {
		return target, nil
	}

	joined := target
	if !filepath.IsAbs(target) {
		joined = filepath.Join(workingDir, target)
	}

	to, err := filepath.Abs(joined)
	if err != nil {
		return "", fmt.Errorf("failed to make %s absolute: %w", joined, err)
	}
	from, err := filepath.Abs(manifestDir)
	if err != nil {
		return "", fmt.Errorf("failed to make %s absolute: %w", manifestDir, err)
	}

	rel, err := filepath.Rel(from, to)
	if err != nil {
		return "", fmt.Errorf("%w: from %s to %s: %v", ErrPathDiffInvariant, from, to, err)
	}
	return rel, nil
}

// canonicalize resolves symlinks in an absolute form of dir, falling back
// to dir as given when it does not exist.
func canonicalize(dir string) string {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return dir
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return dir
	}
	return resolved
}
