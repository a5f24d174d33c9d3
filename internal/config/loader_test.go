package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validConfigYAML = `
storage:
  path: "data/patent.db"
ingest:
  source_path: "data/serpapi/patent_data.jsonl"
fetch:
  input_folder: "data/csv"
  output_jsonl: "data/serpapi/patent_data.jsonl"
  filter_condition: "Merck"
  filter_columns: ["Assignee", "Title"]
  sort_by: "Priority Date"
  limit: 100
  remove_spaces_column: "Document ID"
  max_retries: 5
  retry_backoff: 3s
  skip_if_has_pdf: true
agent:
  model: "gpt-4o-mini"
  embedding_model: "text-embedding-3-small"
  embedding_dim: 1536
  max_rounds: 6
  top_k: 4
log:
  level: "debug"
  format: "console"
metrics:
  enabled: true
  namespace: "patentlake"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_ValidFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfigYAML))
	require.NoError(t, err)

	assert.Equal(t, "data/patent.db", cfg.Storage.Path)
	assert.Equal(t, "Merck", cfg.Fetch.FilterCondition)
	assert.Equal(t, []string{"Assignee", "Title"}, cfg.Fetch.FilterColumns)
	assert.Equal(t, 5, cfg.Fetch.MaxRetries)
	assert.True(t, cfg.Fetch.SkipIfHasPDF)
	assert.Equal(t, 6, cfg.Agent.MaxRounds)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_DefaultsApplied(t *testing.T) {
	cfg, err := Load(writeConfig(t, "storage:\n  path: \"x.db\"\n"))
	require.NoError(t, err)

	assert.Equal(t, DefaultFetchMaxRetries, cfg.Fetch.MaxRetries)
	assert.Equal(t, DefaultAgentModel, cfg.Agent.Model)
	assert.Equal(t, DefaultAgentEmbeddingDim, cfg.Agent.EmbeddingDim)
	assert.Equal(t, DefaultLogLevel, cfg.Log.Level)
	assert.Equal(t, DefaultMetricsNamespace, cfg.Metrics.Namespace)
}

func TestLoad_InvalidLogLevel(t *testing.T) {
	_, err := Load(writeConfig(t, "storage:\n  path: \"x.db\"\nlog:\n  level: \"loud\"\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log.level")
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PATENTLAKE_STORAGE_PATH", "/tmp/env.db")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/env.db", cfg.Storage.Path)
}

func TestResolveSecrets_FallbackNames(t *testing.T) {
	t.Setenv("PATENTLAKE_FETCH_API_KEY", "")
	t.Setenv("SERPAPI_KEY", "serp-secret")
	t.Setenv("PATENTLAKE_AGENT_API_KEY", "agent-secret")
	t.Setenv("OPENAI_API_KEY", "openai-secret")

	cfg := &Config{}
	ApplyDefaults(cfg)
	resolveSecrets(cfg)

	assert.Equal(t, "serp-secret", cfg.Fetch.APIKey)
	// The PATENTLAKE_ name wins over the fallback.
	assert.Equal(t, "agent-secret", cfg.Agent.APIKey)
}

func TestMustLoad_PanicsOnError(t *testing.T) {
	assert.Panics(t, func() {
		MustLoad(filepath.Join(t.TempDir(), "missing.yaml"))
	})
}
