package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/turtacn/patentlake/internal/agent/schemadoc"
)

// newSchemaCmd creates the "schema" subcommand: export the curated schema
// documentation as JSON, to stdout or a file.
func newSchemaCmd() *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Export the database schema documentation as JSON",
		Long:  "Writes the curated per-table documentation (table comments and column\ndescriptions) used by the ask command's schema search, in JSON form.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := schemadoc.ExportJSON()
			if err != nil {
				return err
			}

			if outPath == "" {
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}

			if dir := filepath.Dir(outPath); dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return fmt.Errorf("failed to create output directory: %w", err)
				}
			}
			if err := os.WriteFile(outPath, data, 0o644); err != nil {
				return fmt.Errorf("failed to write schema docs: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote schema docs to %s\n", outPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default: stdout)")

	return cmd
}
