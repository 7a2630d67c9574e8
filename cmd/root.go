/*
Copyright © 2025 3 Leaps <info@3leaps.com>
*/
package cmd

import (
	"os"

	"github.com/fulmenhq/cargo-override/pkg/buildinfo"
	"github.com/fulmenhq/cargo-override/pkg/exitcode"
	"github.com/fulmenhq/cargo-override/pkg/logger"
	"github.com/spf13/cobra"
)

// cargoSubcommand is the first argument cargo passes to an external
// subcommand binary named cargo-override.
const cargoSubcommand = "override"

// newRootCommand creates a fresh root command instance with all
// subcommands, so tests get isolated flag state.
func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cargo-override",
		Short: "Manage [patch] overrides in Cargo manifests",
		Long: `cargo-override edits the [patch] section of a Cargo manifest while keeping
its formatting and comments intact.

Examples:
   cargo override add --path ../serde                  # patch serde with a local checkout
   cargo override add --git https://github.com/o/r --name r --tag v1.2.0
   cargo override remove serde                        # drop serde from every registry
   cargo override list --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			initializeLogger(cmd)
		},
	}

	cmd.PersistentFlags().String("log-level", "info", "Set log level (trace|debug|info|warn|error)")
	cmd.PersistentFlags().Bool("json", false, "Output logs in JSON format")
	cmd.PersistentFlags().Bool("no-color", false, "Disable colored output")
	cmd.PersistentFlags().Bool("no-op", false, "Print the edited manifest instead of writing it")
	cmd.PersistentFlags().String("manifest-path", "", "Path to Cargo.toml (default: located from the working directory)")

	cmd.Version = buildinfo.BinaryVersion
	cmd.SetVersionTemplate("cargo-override {{.Version}}\n")

	registerSubcommands(cmd)
	return cmd
}

// registerSubcommands adds all subcommands to the root command.
func registerSubcommands(cmd *cobra.Command) {
	cmd.AddCommand(newAddCommand())
	cmd.AddCommand(newRemoveCommand())
	cmd.AddCommand(newListCommand())
	cmd.AddCommand(newVersionCommand())
}

// stripCargoSubcommand drops the leading "override" argument cargo adds
// when the binary runs as `cargo override`.
func stripCargoSubcommand(args []string) []string {
	if len(args) > 0 && args[0] == cargoSubcommand {
		return args[1:]
	}
	return args
}

// Execute runs the command line and returns the process exit code.
// This is called by main.main().
func Execute(args []string) int {
	root := newRootCommand()
	root.SetArgs(stripCargoSubcommand(args))

	err := root.Execute()
	if err == nil {
		return exitcode.Success
	}

	code := exitcode.FromError(err)
	logger.Error(err.Error(), logger.String("kind", exitcode.String(code)))
	return code
}

// initializeLogger sets up the logger based on command flags
func initializeLogger(cmd *cobra.Command) {
	logLevelStr, _ := cmd.Flags().GetString("log-level")
	jsonLogs, _ := cmd.Flags().GetBool("json")
	noColor, _ := cmd.Flags().GetBool("no-color")
	noOp, _ := cmd.Flags().GetBool("no-op")

	logLevel, levelErr := logger.ParseLevel(logLevelStr)

	config := logger.Config{
		Level:     logLevel,
		UseColor:  !noColor && os.Getenv("NO_COLOR") == "",
		JSON:      jsonLogs,
		Component: "cargo-override",
		NoOp:      noOp,
		Output:    cmd.ErrOrStderr(),
	}

	if err := logger.Initialize(config); err != nil {
		_, _ = os.Stderr.WriteString("Failed to initialize logger: " + err.Error() + "\n")
		os.Exit(exitcode.ConfigError)
	}
	if levelErr != nil {
		logger.Warn("falling back to info level", logger.Err(levelErr))
	}
}
