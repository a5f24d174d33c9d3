package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/patentlake/internal/agent"
	"github.com/turtacn/patentlake/internal/agent/llm"
)

// newAskCmd creates the "ask" subcommand: answer a natural-language question
// about the stored patent data through the SQL agent.
func newAskCmd() *cobra.Command {
	var (
		model     string
		maxRounds int
	)

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a natural-language question about the patent database",
		Long:  "Runs an LLM-driven agent that inspects the database schema, searches the\nschema documentation index, and issues read-only SQL queries to answer\nthe question. Requires PATENTLAKE_AGENT_API_KEY (or OPENAI_API_KEY) in\nthe environment.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}

			agentCfg := cliCtx.Config.Agent
			if model != "" {
				agentCfg.Model = model
			}
			if maxRounds > 0 {
				agentCfg.MaxRounds = maxRounds
			}

			provider, err := llm.NewOpenAICompat(llm.Config{
				BaseURL:        agentCfg.BaseURL,
				Model:          agentCfg.Model,
				EmbeddingModel: agentCfg.EmbeddingModel,
				APIKey:         agentCfg.APIKey,
				Timeout:        agentCfg.RequestTimeout,
			}, cliCtx.Logger)
			if err != nil {
				return err
			}

			index, err := agent.BuildSchemaIndex(cmd.Context(), agentCfg, provider)
			if err != nil {
				return err
			}
			defer index.Close()

			question := strings.Join(args, " ")
			a := agent.New(agentCfg, cliCtx.Config.Storage.Path, provider, index, cliCtx.Logger, cliCtx.Metrics)
			answer, err := a.Ask(cmd.Context(), question)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), answer)
			return nil
		},
	}

	cmd.Flags().StringVar(&model, "model", "", "chat model (overrides agent.model)")
	cmd.Flags().IntVar(&maxRounds, "rounds", 0, "maximum tool-calling rounds (overrides agent.max_rounds)")

	return cmd
}
