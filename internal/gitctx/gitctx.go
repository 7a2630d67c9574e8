// Package gitctx gives the CLI the little it needs to know about the git
// repository around a manifest.
package gitctx

import (
	"errors"
	"path/filepath"

	git "github.com/go-git/go-git/v5"
)

// Repo is an opened git work tree.
type Repo struct {
	root string
	repo *git.Repository
}

// Open finds the repository containing target. It returns nil without an
// error when target is not inside a work tree.
func Open(target string) (*Repo, error) {
	repo, err := git.PlainOpenWithOptions(target, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, nil
		}
		return nil, err
	}
	wt, err := repo.Worktree()
	if err != nil {
		if errors.Is(err, git.ErrIsBareRepository) {
			return nil, nil
		}
		return nil, err
	}
	return &Repo{root: filepath.Clean(wt.Filesystem.Root()), repo: repo}, nil
}

// Root is the top directory of the work tree.
func (r *Repo) Root() string {
	return r.root
}

// HasChanges reports whether path differs from HEAD, staged or not.
// Untracked files count as changed.
func (r *Repo) HasChanges(path string) (bool, error) {
	rel, err := filepath.Rel(r.root, path)
	if err != nil {
		return false, err
	}
	wt, err := r.repo.Worktree()
	if err != nil {
		return false, err
	}
	st, err := wt.Status()
	if err != nil {
		return false, err
	}
	s, ok := st[filepath.ToSlash(rel)]
	if !ok {
		return false, nil
	}
	return s.Staging != git.Unmodified || s.Worktree != git.Unmodified, nil
}
