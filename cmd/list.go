package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fulmenhq/cargo-override/pkg/ascii"
	"github.com/fulmenhq/cargo-override/pkg/cargo"
	"github.com/fulmenhq/cargo-override/pkg/exitcode"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the overrides in the manifest",
		Args:    cobra.NoArgs,
		RunE:    runList,
	}
	cmd.Flags().String("format", "text", "Output format (text|json|yaml)")
	return cmd
}

func runList(cmd *cobra.Command, _ []string) error {
	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "text", "json", "yaml":
	default:
		return fmt.Errorf("%w: unknown --format %q", exitcode.ErrUsage, format)
	}

	mc, err := openManifest(cmd)
	if err != nil {
		return err
	}
	overrides, err := cargo.Overrides([]byte(mc.original))
	if err != nil {
		return err
	}
	if overrides == nil {
		overrides = []cargo.Override{}
	}

	out := cmd.OutOrStdout()
	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(overrides)
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(overrides); err != nil {
			return err
		}
		return enc.Close()
	}

	if len(overrides) == 0 {
		_, err := fmt.Fprintf(out, "No overrides in %s\n", mc.location.Path)
		return err
	}
	return writeOverrideTable(out, overrides)
}

// sourceColumnWidth caps the SOURCE column of the text table. Structured
// formats always carry the full source.
const sourceColumnWidth = 72

// writeOverrideTable prints overrides as aligned columns.
func writeOverrideTable(w io.Writer, overrides []cargo.Override) error {
	rows := make([][]string, 0, len(overrides))
	for _, o := range overrides {
		rows = append(rows, []string{o.Registry, o.Name, ascii.Truncate(o.Source(), sourceColumnWidth)})
	}
	_, err := io.WriteString(w, ascii.Table([]string{"REGISTRY", "NAME", "SOURCE"}, rows))
	return err
}
