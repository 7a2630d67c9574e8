package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fulmenhq/cargo-override/internal/gitctx"
	"github.com/fulmenhq/cargo-override/pkg/cargo"
	"github.com/fulmenhq/cargo-override/pkg/config"
	"github.com/fulmenhq/cargo-override/pkg/logger"
	"github.com/fulmenhq/cargo-override/pkg/safeio"
	"github.com/spf13/cobra"
)

// manifestContext is the manifest a command operates on, together with
// the configuration that applies to it.
type manifestContext struct {
	workingDir string
	location   *cargo.Location
	locator    *cargo.Locator
	config     *config.Config
	repo       *gitctx.Repo
	original   string
	noOp       bool
}

// openManifest locates and reads the manifest for cmd.
func openManifest(cmd *cobra.Command) (*manifestContext, error) {
	workingDir, err := workingDirectory()
	if err != nil {
		return nil, err
	}
	manifestPath, _ := cmd.Flags().GetString("manifest-path")
	noOp, _ := cmd.Flags().GetBool("no-op")

	var explicitDir string
	if manifestPath != "" {
		if !filepath.IsAbs(manifestPath) {
			manifestPath = filepath.Join(workingDir, manifestPath)
		}
		manifestPath = filepath.Clean(manifestPath)
		explicitDir = filepath.Dir(manifestPath)
	}

	cfg, err := config.LoadConfig(configSearchDirs(explicitDir, workingDir)...)
	if err != nil {
		return nil, err
	}

	repo, err := gitctx.Open(workingDir)
	if err != nil {
		logger.Debug("git repository detection failed", logger.Err(err))
		repo = nil
	}
	boundary := ""
	if repo != nil && cfg.Manifest.StopAtGitRoot {
		boundary = repo.Root()
	}
	locator := cargo.NewLocator(cfg.Manifest.SearchDepth, boundary)

	var loc *cargo.Location
	if manifestPath != "" {
		if fi, statErr := os.Stat(manifestPath); statErr != nil || fi.IsDir() {
			return nil, fmt.Errorf("%w: %s", cargo.ErrManifestNotFound, manifestPath)
		}
		loc = &cargo.Location{Path: manifestPath, Dir: explicitDir, Nearest: manifestPath}
	} else {
		if loc, err = locator.Locate(workingDir); err != nil {
			return nil, err
		}
		if cfg.Source == "" && loc.Dir != workingDir {
			if cfg, err = config.LoadConfig(configSearchDirs(loc.Dir, workingDir)...); err != nil {
				return nil, err
			}
		}
	}

	if loc.InWorkspace() {
		logger.Info("editing workspace root manifest", logger.String("manifest", loc.Path), logger.String("member", loc.Nearest))
	}
	if cfg.Source != "" {
		logger.Debug("loaded configuration", logger.String("file", cfg.Source))
	}

	data, err := safeio.ReadFileLimited(loc.Path, safeio.MaxManifestSize)
	if err != nil {
		return nil, err
	}

	return &manifestContext{
		workingDir: workingDir,
		location:   loc,
		locator:    locator,
		config:     cfg,
		repo:       repo,
		original:   string(data),
		noOp:       noOp,
	}, nil
}

// write stores the edited manifest, or prints it in no-op mode.
func (m *manifestContext) write(cmd *cobra.Command, updated string) error {
	if m.noOp {
		_, err := fmt.Fprint(cmd.OutOrStdout(), updated)
		return err
	}
	if updated == m.original {
		logger.Info("manifest unchanged", logger.String("manifest", m.location.Path))
		return nil
	}
	if m.repo != nil && !m.config.Write.Backup {
		if dirty, err := m.repo.HasChanges(m.location.Path); err == nil && dirty {
			logger.Warn("manifest has uncommitted changes", logger.String("manifest", m.location.Path))
		}
	}
	return safeio.WriteFileAtomic(m.location.Path, []byte(updated), safeio.WriteOptions{Backup: m.config.Write.Backup})
}

func workingDirectory() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	// Git reports the resolved work tree, so the walk must use resolved paths too.
	if resolved, err := filepath.EvalSymlinks(dir); err == nil {
		dir = resolved
	}
	return dir, nil
}

// configSearchDirs lists where .cargo-override.yaml is looked for, most
// specific first.
func configSearchDirs(dirs ...string) []string {
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, home)
	}
	seen := make(map[string]bool, len(dirs))
	out := make([]string, 0, len(dirs))
	for _, d := range dirs {
		if d == "" || seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	return out
}
