package cargo

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fulmenhq/cargo-override/pkg/logger"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
)

// Location is the manifest an operation should edit.
type Location struct {
	// Path is the Cargo.toml to edit.
	Path string
	// Dir is the directory holding Path.
	Dir string
	// Nearest is the closest Cargo.toml to the starting directory. It
	// differs from Path when that manifest is a workspace member.
	Nearest string
}

// InWorkspace reports whether the nearest manifest was redirected to its
// workspace root.
func (l *Location) InWorkspace() bool {
	return l.Nearest != l.Path
}

// Locator finds the manifest that owns [patch] for a directory. Paths are
// absolute and resolved against FS.
type Locator struct {
	FS billy.Filesystem
	// MaxDepth bounds how many parent directories each upward walk visits.
	MaxDepth int
	// Boundary, when set, is the highest directory searched.
	Boundary string
}

// NewLocator returns a Locator over the host filesystem.
func NewLocator(maxDepth int, boundary string) *Locator {
	return &Locator{FS: osfs.New("/"), MaxDepth: maxDepth, Boundary: boundary}
}

// Locate walks up from start to the nearest Cargo.toml and, when that
// manifest is a workspace member, returns the workspace root instead.
func (l *Locator) Locate(start string) (*Location, error) {
	nearestDir, ok := l.findUp(filepath.Clean(start), nil)
	if !ok {
		return nil, fmt.Errorf("%w in %s or any parent directory", ErrManifestNotFound, start)
	}
	nearestPath := filepath.Join(nearestDir, ManifestName)

	nearest, err := l.read(nearestPath)
	if err != nil {
		return nil, err
	}
	loc := &Location{Path: nearestPath, Dir: nearestDir, Nearest: nearestPath}

	if nearest.IsWorkspaceRoot() {
		return loc, nil
	}

	if nearest.Package != nil && nearest.Package.Workspace != "" {
		rootDir := filepath.Clean(filepath.Join(nearestDir, nearest.Package.Workspace))
		rootPath := filepath.Join(rootDir, ManifestName)
		root, err := l.read(rootPath)
		if err != nil {
			return nil, err
		}
		if !root.IsWorkspaceRoot() {
			return nil, fmt.Errorf("%w: %s points to %s, which has no [workspace]", ErrInvalidManifest, nearestPath, rootPath)
		}
		logger.Debug("package names its workspace", logger.String("member", nearestPath), logger.String("root", rootPath))
		loc.Path, loc.Dir = rootPath, rootDir
		return loc, nil
	}

	parent := filepath.Dir(nearestDir)
	if parent == nearestDir || nearestDir == l.Boundary {
		return loc, nil
	}
	rootDir, ok := l.findUp(parent, (*Manifest).IsWorkspaceRoot)
	if !ok {
		return loc, nil
	}
	rootPath := filepath.Join(rootDir, ManifestName)
	root, err := l.read(rootPath)
	if err != nil {
		return nil, err
	}
	if !IsMember(root.Workspace, rootDir, nearestDir) {
		logger.Debug("manifest is not a member of the enclosing workspace",
			logger.String("manifest", nearestPath),
			logger.String("workspace", rootPath),
			logger.Strings("members", root.Workspace.Members),
			logger.Strings("exclude", root.Workspace.Exclude))
		return loc, nil
	}

	logger.Debug("using workspace root manifest",
		logger.String("member", nearestPath),
		logger.String("root", rootPath),
		logger.Strings("members", root.Workspace.Members),
		logger.Strings("exclude", root.Workspace.Exclude))
	loc.Path, loc.Dir = rootPath, rootDir
	return loc, nil
}

// findUp visits dir and its parents, within MaxDepth and Boundary, and
// returns the first directory whose manifest satisfies match. A nil match
// accepts any existing manifest without parsing it; otherwise manifests
// that fail to parse never match.
func (l *Locator) findUp(dir string, match func(*Manifest) bool) (string, bool) {
	for depth := 0; depth <= l.MaxDepth; depth++ {
		candidate := filepath.Join(dir, ManifestName)
		if l.exists(candidate) {
			if match == nil {
				return dir, true
			}
			m, err := l.read(candidate)
			if err != nil {
				logger.Debug("skipping unreadable manifest", logger.String("path", candidate), logger.Err(err))
			} else if match(m) {
				return dir, true
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir || dir == l.Boundary {
			break
		}
		dir = parent
	}
	return "", false
}

func (l *Locator) exists(p string) bool {
	fi, err := l.FS.Stat(p)
	return err == nil && !fi.IsDir()
}

func (l *Locator) read(p string) (*Manifest, error) {
	data, err := util.ReadFile(l.FS, p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrManifestNotFound, p)
		}
		return nil, err
	}
	m, err := ParseManifest(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p, err)
	}
	return m, nil
}

// CrateName reads [package].name from the manifest in dir.
func (l *Locator) CrateName(dir string) (string, error) {
	p := filepath.Join(dir, ManifestName)
	m, err := l.read(p)
	if err != nil {
		return "", err
	}
	if m.Package == nil || strings.TrimSpace(m.Package.Name) == "" {
		return "", fmt.Errorf("%w: %s has no [package].name", ErrInvalidManifest, p)
	}
	return m.Package.Name, nil
}

// IsMember reports whether memberDir belongs to the workspace rooted at
// rootDir: it must match a members glob and not sit under an exclude path.
func IsMember(ws *Workspace, rootDir, memberDir string) bool {
	if ws == nil {
		return false
	}
	rel, err := filepath.Rel(rootDir, memberDir)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	if rel == "." {
		return true
	}
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return false
	}

	for _, ex := range ws.Exclude {
		ex = path.Clean(filepath.ToSlash(ex))
		if rel == ex || strings.HasPrefix(rel, ex+"/") {
			return false
		}
	}

	for _, pattern := range ws.Members {
		pattern = path.Clean(filepath.ToSlash(pattern))
		matched, err := doublestar.Match(pattern, rel)
		if err != nil {
			logger.Warn("invalid workspace member pattern", logger.String("pattern", pattern), logger.Err(err))
			continue
		}
		if matched {
			return true
		}
	}
	return false
}
