// Package config defines all configuration structures for patentlake.
// No I/O or parsing logic lives here, only plain data types and validation.
package config

import (
	"fmt"
	"time"

	"github.com/turtacn/patentlake/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/patentlake/internal/infrastructure/monitoring/metrics"
)

// StorageConfig holds the embedded SQLite store parameters.
type StorageConfig struct {
	// Path is the SQLite database file.  The parent directory is created on
	// first open.
	Path string `mapstructure:"path"`
}

// IngestConfig holds ingestion-run parameters.
type IngestConfig struct {
	// SourcePath is the newline-delimited JSON file produced by the fetch
	// stage.
	SourcePath string `mapstructure:"source_path"`
}

// FetchConfig holds the SerpAPI fetch-stage parameters.  The API key is never
// stored here; it is read from the PATENTLAKE_FETCH_API_KEY (or SERPAPI_KEY)
// environment variable.
type FetchConfig struct {
	// InputFolder contains the CSV exports whose Document ID column drives
	// the fetch.
	InputFolder string `mapstructure:"input_folder"`

	// OutputJSONL is the append-only JSONL file fetched records are written
	// to.
	OutputJSONL string `mapstructure:"output_jsonl"`

	// FilterCondition is a case-insensitive substring applied across
	// FilterColumns (OR).  Empty disables filtering.
	FilterCondition string   `mapstructure:"filter_condition"`
	FilterColumns   []string `mapstructure:"filter_columns"`

	// SortBy names a column to sort on descending before applying Limit.
	SortBy string `mapstructure:"sort_by"`
	Limit  int    `mapstructure:"limit"`

	// RemoveSpacesColumn names a column whose cell values have all spaces
	// stripped (typically the Document ID column).
	RemoveSpacesColumn string `mapstructure:"remove_spaces_column"`

	// IDColumn is the column holding the patent document identifiers.
	IDColumn string `mapstructure:"id_column"`

	MaxRetries   int           `mapstructure:"max_retries"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`

	// SkipIfHasPDF skips re-fetching a patent whose existing JSONL record
	// already carries a "pdf" key.
	SkipIfHasPDF bool `mapstructure:"skip_if_has_pdf"`

	// BaseURL is the search API endpoint.
	BaseURL string `mapstructure:"base_url"`

	// RequestTimeout bounds a single API call.
	RequestTimeout time.Duration `mapstructure:"request_timeout"`

	// APIKey is populated from the environment by the loader; it is never
	// read from the config file.
	APIKey string `mapstructure:"api_key"`
}

// AgentConfig holds the NL-to-SQL agent parameters.
type AgentConfig struct {
	// BaseURL is an OpenAI-compatible API endpoint.
	BaseURL string `mapstructure:"base_url"`

	// Model is the chat model used for the query loop.
	Model string `mapstructure:"model"`

	// EmbeddingModel is used for the schema-doc vector index.
	EmbeddingModel string `mapstructure:"embedding_model"`

	// EmbeddingDim must match the embedding model's output dimension.
	EmbeddingDim int `mapstructure:"embedding_dim"`

	Temperature float64 `mapstructure:"temperature"`

	// MaxRounds bounds the tool-calling loop per query.
	MaxRounds int `mapstructure:"max_rounds"`

	// TopK is the number of schema-doc chunks retrieved per search.
	TopK int `mapstructure:"top_k"`

	// IndexPath is the SQLite file holding the schema-doc vector index.
	// Empty means in-memory.
	IndexPath string `mapstructure:"index_path"`

	// RequestTimeout bounds a single LLM call.
	RequestTimeout time.Duration `mapstructure:"request_timeout"`

	// APIKey is populated from the environment by the loader.
	APIKey string `mapstructure:"api_key"`
}

// MetricsConfig controls the Prometheus collector.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
}

// Config is the root configuration for every patentlake command.
type Config struct {
	Storage StorageConfig  `mapstructure:"storage"`
	Ingest  IngestConfig   `mapstructure:"ingest"`
	Fetch   FetchConfig    `mapstructure:"fetch"`
	Agent   AgentConfig    `mapstructure:"agent"`
	Log     logging.Config `mapstructure:"log"`
	Metrics MetricsConfig  `mapstructure:"metrics"`
}

// MetricsCollectorConfig converts the metrics section into the collector's
// own config type.
func (c *Config) MetricsCollectorConfig() metrics.Config {
	return metrics.Config{Namespace: c.Metrics.Namespace}
}

// Validate checks invariants that ApplyDefaults cannot repair.  It must be
// called after ApplyDefaults.
func (c *Config) Validate() error {
	if c.Storage.Path == "" {
		return fmt.Errorf("config: storage.path is required")
	}

	if c.Fetch.MaxRetries < 1 {
		return fmt.Errorf("config: fetch.max_retries must be >= 1, got %d", c.Fetch.MaxRetries)
	}
	if c.Fetch.RetryBackoff < 0 {
		return fmt.Errorf("config: fetch.retry_backoff must not be negative")
	}

	if c.Agent.EmbeddingDim < 1 {
		return fmt.Errorf("config: agent.embedding_dim must be >= 1, got %d", c.Agent.EmbeddingDim)
	}
	if c.Agent.MaxRounds < 1 {
		return fmt.Errorf("config: agent.max_rounds must be >= 1, got %d", c.Agent.MaxRounds)
	}
	if c.Agent.TopK < 1 {
		return fmt.Errorf("config: agent.top_k must be >= 1, got %d", c.Agent.TopK)
	}
	if c.Agent.Temperature < 0 || c.Agent.Temperature > 2 {
		return fmt.Errorf("config: agent.temperature %v is out of range [0, 2]", c.Agent.Temperature)
	}

	switch c.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "", "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	if c.Metrics.Enabled && c.Metrics.Namespace == "" {
		return fmt.Errorf("config: metrics.namespace is required when metrics are enabled")
	}

	return nil
}
