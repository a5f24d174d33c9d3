package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/turtacn/patentlake/internal/fetch"
)

// newFetchCmd creates the "fetch" subcommand: read patent IDs from CSV
// exports and pull full records from the search API into a JSONL file.
func newFetchCmd() *cobra.Command {
	var (
		inputFolder string
		outputJSONL string
		filter      string
		limit       int
	)

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch patent details from the search API into a JSONL file",
		Long:  "Merges every CSV file in the input folder, optionally filters and limits\nthe rows, then fetches full patent details for each document ID and\nappends them to the output JSONL file. Patents whose existing record\nalready has a PDF link are skipped when skip_if_has_pdf is set.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}

			fetchCfg := cliCtx.Config.Fetch
			if inputFolder != "" {
				fetchCfg.InputFolder = inputFolder
			}
			if outputJSONL != "" {
				fetchCfg.OutputJSONL = outputJSONL
			}
			if filter != "" {
				fetchCfg.FilterCondition = filter
			}
			if limit > 0 {
				fetchCfg.Limit = limit
			}

			client, err := fetch.NewClient(fetchCfg.BaseURL, fetchCfg.APIKey, fetchCfg.RequestTimeout)
			if err != nil {
				return err
			}

			svc := fetch.NewService(fetchCfg, client, cliCtx.Logger, cliCtx.Metrics)
			stats, err := svc.Run(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Fetched %d of %d patents (%d skipped, %d failed)\n",
				stats.Fetched, stats.Total, stats.Skipped, stats.Failed)
			return nil
		},
	}

	cmd.Flags().StringVar(&inputFolder, "input", "", "CSV input folder (overrides fetch.input_folder)")
	cmd.Flags().StringVar(&outputJSONL, "output", "", "output JSONL file (overrides fetch.output_jsonl)")
	cmd.Flags().StringVar(&filter, "filter", "", "substring filter applied across filter columns")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of patents to fetch")

	return cmd
}
