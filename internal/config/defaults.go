package config

import "time"

const (
	DefaultStoragePath = "data/patent.db"
	DefaultSourcePath  = "data/serpapi/patent_data.jsonl"

	DefaultFetchInputFolder  = "data/csv"
	DefaultFetchIDColumn     = "Document ID"
	DefaultFetchMaxRetries   = 3
	DefaultFetchRetryBackoff = 2 * time.Second
	DefaultFetchBaseURL      = "https://serpapi.com/search.json"
	DefaultFetchTimeout      = 60 * time.Second

	DefaultAgentBaseURL        = "https://api.openai.com"
	DefaultAgentModel          = "gpt-4o-mini"
	DefaultAgentEmbeddingModel = "text-embedding-3-small"
	DefaultAgentEmbeddingDim   = 1536
	DefaultAgentMaxRounds      = 8
	DefaultAgentTopK           = 3
	DefaultAgentTimeout        = 120 * time.Second

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultMetricsNamespace = "patentlake"
)

// ApplyDefaults fills every zero-value field in cfg with its default.  Fields
// already set by the caller are left unchanged so explicit configuration
// always wins.  Call after unmarshalling and before Validate.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.Storage.Path == "" {
		cfg.Storage.Path = DefaultStoragePath
	}
	if cfg.Ingest.SourcePath == "" {
		cfg.Ingest.SourcePath = DefaultSourcePath
	}

	if cfg.Fetch.InputFolder == "" {
		cfg.Fetch.InputFolder = DefaultFetchInputFolder
	}
	if cfg.Fetch.OutputJSONL == "" {
		cfg.Fetch.OutputJSONL = DefaultSourcePath
	}
	if cfg.Fetch.IDColumn == "" {
		cfg.Fetch.IDColumn = DefaultFetchIDColumn
	}
	if cfg.Fetch.MaxRetries == 0 {
		cfg.Fetch.MaxRetries = DefaultFetchMaxRetries
	}
	if cfg.Fetch.RetryBackoff == 0 {
		cfg.Fetch.RetryBackoff = DefaultFetchRetryBackoff
	}
	if cfg.Fetch.BaseURL == "" {
		cfg.Fetch.BaseURL = DefaultFetchBaseURL
	}
	if cfg.Fetch.RequestTimeout == 0 {
		cfg.Fetch.RequestTimeout = DefaultFetchTimeout
	}

	if cfg.Agent.BaseURL == "" {
		cfg.Agent.BaseURL = DefaultAgentBaseURL
	}
	if cfg.Agent.Model == "" {
		cfg.Agent.Model = DefaultAgentModel
	}
	if cfg.Agent.EmbeddingModel == "" {
		cfg.Agent.EmbeddingModel = DefaultAgentEmbeddingModel
	}
	if cfg.Agent.EmbeddingDim == 0 {
		cfg.Agent.EmbeddingDim = DefaultAgentEmbeddingDim
	}
	if cfg.Agent.MaxRounds == 0 {
		cfg.Agent.MaxRounds = DefaultAgentMaxRounds
	}
	if cfg.Agent.TopK == 0 {
		cfg.Agent.TopK = DefaultAgentTopK
	}
	if cfg.Agent.RequestTimeout == 0 {
		cfg.Agent.RequestTimeout = DefaultAgentTimeout
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}

	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
}
