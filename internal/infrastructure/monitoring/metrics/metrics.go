package metrics

import "time"

// AppMetrics holds the metric families for the patentlake pipeline.
type AppMetrics struct {
	// Ingestion
	RecordsIngestedTotal CounterVec // result: "ok" | "decode_error" | "write_error"
	RecordDuration       HistogramVec
	IngestRunsTotal      CounterVec // result: "completed" | "source_missing"
	ErrorLogWritesTotal  CounterVec // result: "ok" | "degraded"

	// Storage
	SessionDuration HistogramVec // operation: "schema" | "record" | "error_log"

	// Fetch stage
	FetchRequestsTotal CounterVec // result: "ok" | "failed" | "skipped"
	FetchDuration      HistogramVec

	// Agent / LLM
	LLMRequestsTotal CounterVec // operation: "chat" | "embed"; result: "ok" | "failed"
	LLMDuration      HistogramVec
	LLMTokensTotal   CounterVec // kind: "prompt" | "completion"
	AgentToolCalls   CounterVec // tool name
}

var (
	recordDurationBuckets  = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 5}
	fetchDurationBuckets   = []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60}
	llmDurationBuckets     = []float64{.5, 1, 2, 5, 10, 30, 60, 120}
	sessionDurationBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 5}
)

// NewAppMetrics registers every pipeline metric with the collector.
func NewAppMetrics(c Collector) *AppMetrics {
	return &AppMetrics{
		RecordsIngestedTotal: c.RegisterCounter("ingest_records_total", "Processed JSONL records by result", "result"),
		RecordDuration:       c.RegisterHistogram("ingest_record_duration_seconds", "Per-record ingestion duration", recordDurationBuckets),
		IngestRunsTotal:      c.RegisterCounter("ingest_runs_total", "Ingestion runs by result", "result"),
		ErrorLogWritesTotal:  c.RegisterCounter("ingest_error_log_writes_total", "Failure-recorder writes by result", "result"),

		SessionDuration: c.RegisterHistogram("storage_session_duration_seconds", "Scoped session duration", sessionDurationBuckets, "operation"),

		FetchRequestsTotal: c.RegisterCounter("fetch_requests_total", "Patent fetch attempts by result", "result"),
		FetchDuration:      c.RegisterHistogram("fetch_request_duration_seconds", "Per-patent fetch duration", fetchDurationBuckets),

		LLMRequestsTotal: c.RegisterCounter("llm_requests_total", "LLM API calls by operation and result", "operation", "result"),
		LLMDuration:      c.RegisterHistogram("llm_request_duration_seconds", "LLM API call duration", llmDurationBuckets, "operation"),
		LLMTokensTotal:   c.RegisterCounter("llm_tokens_total", "LLM tokens consumed by kind", "kind"),
		AgentToolCalls:   c.RegisterCounter("agent_tool_calls_total", "Agent tool invocations", "tool"),
	}
}

// ObserveRecord records the outcome and duration of one ingested record.
func (m *AppMetrics) ObserveRecord(result string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.RecordsIngestedTotal.WithLabelValues(result).Inc()
	m.RecordDuration.WithLabelValues().Observe(elapsed.Seconds())
}

// ObserveFetch records the outcome and duration of one patent fetch.
func (m *AppMetrics) ObserveFetch(result string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.FetchRequestsTotal.WithLabelValues(result).Inc()
	if result != "skipped" {
		m.FetchDuration.WithLabelValues().Observe(elapsed.Seconds())
	}
}

// ObserveLLM records one LLM API call.
func (m *AppMetrics) ObserveLLM(operation, result string, elapsed time.Duration, promptTokens, completionTokens int) {
	if m == nil {
		return
	}
	m.LLMRequestsTotal.WithLabelValues(operation, result).Inc()
	m.LLMDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
	if promptTokens > 0 {
		m.LLMTokensTotal.WithLabelValues("prompt").Add(float64(promptTokens))
	}
	if completionTokens > 0 {
		m.LLMTokensTotal.WithLabelValues("completion").Add(float64(completionTokens))
	}
}
