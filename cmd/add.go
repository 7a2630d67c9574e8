package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/fulmenhq/cargo-override/pkg/exitcode"
	"github.com/fulmenhq/cargo-override/pkg/logger"
	"github.com/fulmenhq/cargo-override/pkg/override"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/spf13/cobra"
)

func newAddCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add (--path PATH | --git URL [--tag TAG | --rev REV | --branch BRANCH])",
		Short: "Add or replace a [patch] override",
		Long: `Add an override for a crate to [patch.<registry>] of the manifest.

With --path the crate name is read from PATH/Cargo.toml unless --name is
given, and PATH is rewritten relative to the manifest directory. With --git
the crate name must be given with --name.`,
		Args: cobra.NoArgs,
		RunE: runAdd,
	}

	cmd.Flags().String("path", "", "Local directory of the crate to patch in")
	cmd.Flags().String("git", "", "Git repository URL of the crate to patch in")
	cmd.Flags().String("tag", "", "Git tag to use")
	cmd.Flags().String("rev", "", "Git revision to use")
	cmd.Flags().String("branch", "", "Git branch to use")
	cmd.Flags().String("name", "", "Crate name (required with --git)")
	cmd.Flags().String("registry", "", "Registry to patch (default from config, usually crates-io)")

	cmd.MarkFlagsOneRequired("path", "git")
	cmd.MarkFlagsMutuallyExclusive("path", "git")
	cmd.MarkFlagsMutuallyExclusive("tag", "rev", "branch")
	return cmd
}

func runAdd(cmd *cobra.Command, _ []string) error {
	pathFlag, _ := cmd.Flags().GetString("path")
	gitFlag, _ := cmd.Flags().GetString("git")
	name, _ := cmd.Flags().GetString("name")
	registry, _ := cmd.Flags().GetString("registry")

	ref, err := gitReference(cmd)
	if err != nil {
		return err
	}
	if pathFlag != "" && ref != nil {
		return fmt.Errorf("%w: --tag, --rev and --branch require --git", exitcode.ErrUsage)
	}

	mc, err := openManifest(cmd)
	if err != nil {
		return err
	}
	if registry == "" {
		registry = mc.config.Registry
	}

	var mode override.Mode
	switch {
	case pathFlag != "":
		if name == "" {
			target := pathFlag
			if !filepath.IsAbs(target) {
				target = filepath.Join(mc.workingDir, target)
			}
			if name, err = mc.locator.CrateName(filepath.Clean(target)); err != nil {
				return fmt.Errorf("reading crate name from %s: %w", pathFlag, err)
			}
		}
		mode = override.PathMode{Path: pathFlag}
	default:
		if name == "" {
			return fmt.Errorf("%w: --name is required with --git", exitcode.ErrUsage)
		}
		if err := validateGitURL(gitFlag); err != nil {
			return err
		}
		if ref == nil {
			ref = override.DefaultBranch{}
		}
		mode = override.GitMode{URL: gitFlag, Reference: ref}
	}

	updated, err := override.Patch(mc.workingDir, mc.original, mc.location.Dir, override.Add{
		Registry: registry,
		Name:     name,
		Mode:     mode,
	})
	if err != nil {
		return err
	}
	if err := mc.write(cmd, updated); err != nil {
		return err
	}

	logger.Info("override added",
		logger.String("name", name),
		logger.String("registry", registry),
		logger.String("manifest", mc.location.Path))
	return nil
}

// gitReference returns the reference selected by --tag, --rev or --branch,
// or nil when none was given.
func gitReference(cmd *cobra.Command) (override.GitReference, error) {
	tag, _ := cmd.Flags().GetString("tag")
	rev, _ := cmd.Flags().GetString("rev")
	branch, _ := cmd.Flags().GetString("branch")

	switch {
	case cmd.Flags().Changed("tag"):
		if tag == "" {
			return nil, fmt.Errorf("%w: --tag must not be empty", exitcode.ErrUsage)
		}
		return override.Tag(tag), nil
	case cmd.Flags().Changed("rev"):
		if rev == "" {
			return nil, fmt.Errorf("%w: --rev must not be empty", exitcode.ErrUsage)
		}
		return override.Rev(rev), nil
	case cmd.Flags().Changed("branch"):
		if branch == "" {
			return nil, fmt.Errorf("%w: --branch must not be empty", exitcode.ErrUsage)
		}
		return override.Branch(branch), nil
	}
	return nil, nil
}

var gitProtocols = map[string]bool{"https": true, "http": true, "ssh": true, "git": true, "file": true}

// validateGitURL rejects URLs cargo could not clone from.
func validateGitURL(raw string) error {
	ep, err := transport.NewEndpoint(raw)
	if err != nil {
		return fmt.Errorf("%w: invalid --git url %q: %v", exitcode.ErrUsage, raw, err)
	}
	if !gitProtocols[ep.Protocol] {
		return fmt.Errorf("%w: unsupported --git protocol %q", exitcode.ErrUsage, ep.Protocol)
	}
	return nil
}
