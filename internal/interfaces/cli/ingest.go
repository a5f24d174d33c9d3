package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/turtacn/patentlake/internal/ingest"
	apperrors "github.com/turtacn/patentlake/pkg/errors"
)

// newIngestCmd creates the "ingest" subcommand: parse a JSONL source file and
// load every record into the relational SQLite store.
func newIngestCmd() *cobra.Command {
	var sourcePath string

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Ingest a JSONL patent file into the SQLite store",
		Long:  "Reads newline-delimited JSON patent records (as produced by the fetch\ncommand), creates the relational schema if needed, and inserts each record\natomically. Malformed lines and failed records are written to the\nerror_logs table without stopping the run.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}

			src := sourcePath
			if src == "" {
				src = cliCtx.Config.Ingest.SourcePath
			}

			// Checked up front so a missing source aborts before any table
			// is created.
			if _, err := os.Stat(src); err != nil {
				return apperrors.Wrap(err, apperrors.CodeIngestSourceMissing, "source file not found: "+src)
			}

			svc := ingest.NewService(cliCtx.Config.Storage.Path, cliCtx.Logger, cliCtx.Metrics)
			if err := svc.SetupDatabase(cmd.Context()); err != nil {
				return err
			}

			stats, err := svc.ParseAndInsert(cmd.Context(), src)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Ingested %d of %d records (%d decode errors, %d write errors)\n",
				stats.Inserted, stats.Records, stats.DecodeErrors, stats.WriteErrors)
			return nil
		},
	}

	cmd.Flags().StringVar(&sourcePath, "source", "", "JSONL source file (overrides ingest.source_path)")

	return cmd
}
