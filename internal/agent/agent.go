// Package agent answers natural-language questions about the patent store by
// letting an LLM drive read-only SQL tools through a bounded tool-calling
// loop.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/turtacn/patentlake/internal/agent/llm"
	"github.com/turtacn/patentlake/internal/agent/schemadoc"
	"github.com/turtacn/patentlake/internal/agent/vectorindex"
	"github.com/turtacn/patentlake/internal/config"
	"github.com/turtacn/patentlake/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/patentlake/internal/infrastructure/monitoring/metrics"
	apperrors "github.com/turtacn/patentlake/pkg/errors"
)

const systemPromptTemplate = `You are a SQL analyst for a local SQLite database containing patent data.
You answer questions by calling tools. Available tools:
%s

Respond with a single JSON object, nothing else. To call a tool:
  {"action": "<tool name>", "input": "<tool input>"}
To give the final answer:
  {"action": "final", "answer": "<your answer>"}

Whenever the user asks about patents, inventors, claims, citations or anything
that might be in the database, use the tools to look it up. Never claim you
cannot access the data.`

// Agent wires the LLM provider, the schema-doc vector index and the SQL
// tools into a question-answering loop.
type Agent struct {
	cfg      config.AgentConfig
	provider llm.Provider
	tools    map[string]Tool
	order    []string
	log      logging.Logger
	metrics  *metrics.AppMetrics
}

// BuildSchemaIndex embeds every schema-doc chunk into a fresh vector index.
func BuildSchemaIndex(ctx context.Context, cfg config.AgentConfig, provider llm.Provider) (*vectorindex.Index, error) {
	index, err := vectorindex.Open(cfg.IndexPath, cfg.EmbeddingDim)
	if err != nil {
		return nil, err
	}
	var entries []vectorindex.Entry
	for _, d := range schemadoc.All() {
		entries = append(entries, vectorindex.Entry{TableName: d.Name, Content: d.Chunk()})
	}
	if err := index.Build(ctx, entries, provider); err != nil {
		index.Close()
		return nil, err
	}
	return index, nil
}

func New(cfg config.AgentConfig, dbPath string, provider llm.Provider, index *vectorindex.Index, log logging.Logger, m *metrics.AppMetrics) *Agent {
	if log == nil {
		log = logging.NewNopLogger()
	}
	a := &Agent{
		cfg:      cfg,
		provider: provider,
		tools:    map[string]Tool{},
		log:      log.Named("agent"),
		metrics:  m,
	}
	for _, t := range buildTools(dbPath, provider, index, cfg.TopK) {
		a.tools[t.Name] = t
		a.order = append(a.order, t.Name)
	}
	return a
}

func (a *Agent) systemPrompt() string {
	var lines []string
	for _, name := range a.order {
		lines = append(lines, fmt.Sprintf("- %s: %s", name, a.tools[name].Description))
	}
	return fmt.Sprintf(systemPromptTemplate, strings.Join(lines, "\n"))
}

type modelAction struct {
	Action string `json:"action"`
	Input  string `json:"input"`
	Answer string `json:"answer"`
}

// Ask runs the tool loop for one question and returns the model's final
// answer.  The loop is bounded by max_rounds; hitting the bound is an error
// rather than a silent truncation.
func (a *Agent) Ask(ctx context.Context, question string) (string, error) {
	messages := []llm.Message{
		{Role: "system", Content: a.systemPrompt()},
		{Role: "user", Content: question},
	}

	var promptTokens, completionTokens int
	defer func() {
		a.log.Info("query token usage",
			logging.Int("prompt_tokens", promptTokens),
			logging.Int("completion_tokens", completionTokens),
			logging.Int("total_tokens", promptTokens+completionTokens))
	}()

	for round := 1; round <= a.cfg.MaxRounds; round++ {
		start := time.Now()
		resp, err := a.provider.Chat(ctx, llm.ChatRequest{
			Model:          a.cfg.Model,
			Messages:       messages,
			Temperature:    a.cfg.Temperature,
			ResponseFormat: "json_object",
		})
		if err != nil {
			a.metrics.ObserveLLM("chat", "failed", time.Since(start), 0, 0)
			return "", err
		}
		a.metrics.ObserveLLM("chat", "ok", time.Since(start), resp.PromptTokens, resp.CompletionTokens)
		promptTokens += resp.PromptTokens
		completionTokens += resp.CompletionTokens

		messages = append(messages, llm.Message{Role: "assistant", Content: resp.Content})

		var action modelAction
		if err := json.Unmarshal([]byte(resp.Content), &action); err != nil {
			a.log.Warn("model reply was not valid JSON", logging.Int("round", round))
			messages = append(messages, llm.Message{
				Role:    "user",
				Content: "Your reply was not a valid JSON action object. Respond with exactly one JSON object as instructed.",
			})
			continue
		}

		if action.Action == "final" {
			a.log.Debug("final answer produced", logging.Int("rounds", round))
			return action.Answer, nil
		}

		tool, ok := a.tools[action.Action]
		if !ok {
			messages = append(messages, llm.Message{
				Role:    "user",
				Content: fmt.Sprintf("Unknown tool %q. Available tools: %s.", action.Action, strings.Join(a.order, ", ")),
			})
			continue
		}

		if a.metrics != nil {
			a.metrics.AgentToolCalls.WithLabelValues(tool.Name).Inc()
		}
		a.log.Debug("calling tool",
			logging.Int("round", round),
			logging.String("tool", tool.Name),
			logging.String("input", action.Input))

		observation, err := tool.Run(ctx, action.Input)
		if err != nil {
			// Tool failures go back to the model so it can adjust its
			// approach; only the loop budget limits how often.
			observation = "Tool error: " + err.Error()
			a.log.Warn("tool call failed", logging.String("tool", tool.Name), logging.Err(err))
		}
		messages = append(messages, llm.Message{
			Role:    "user",
			Content: fmt.Sprintf("Observation from %s:\n%s", tool.Name, observation),
		})
	}

	return "", apperrors.New(apperrors.CodeAgentRoundsExhausted,
		fmt.Sprintf("no final answer after %d rounds", a.cfg.MaxRounds))
}
