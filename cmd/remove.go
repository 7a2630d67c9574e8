package cmd

import (
	"github.com/fulmenhq/cargo-override/pkg/logger"
	"github.com/fulmenhq/cargo-override/pkg/override"
	"github.com/spf13/cobra"
)

func newRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "remove NAME",
		Aliases: []string{"rm"},
		Short:   "Remove a crate's overrides from every registry",
		Long: `Remove NAME from every [patch.<registry>] table of the manifest. Registry
tables left empty are removed together with the comments directly above
them. Removing a name that is not overridden leaves the manifest unchanged.`,
		Args: cobra.ExactArgs(1),
		RunE: runRemove,
	}
}

func runRemove(cmd *cobra.Command, args []string) error {
	name := args[0]

	mc, err := openManifest(cmd)
	if err != nil {
		return err
	}

	updated, err := override.Patch(mc.workingDir, mc.original, mc.location.Dir, override.Remove{Name: name})
	if err != nil {
		return err
	}

	if updated == mc.original {
		logger.Warn("no override found", logger.String("name", name), logger.String("manifest", mc.location.Path))
	} else {
		logger.Info("override removed", logger.String("name", name), logger.String("manifest", mc.location.Path))
	}
	return mc.write(cmd, updated)
}
