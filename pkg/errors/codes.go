package errors

// ErrorCode identifies a specific failure category.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes.
const (
	CodeUnknown         ErrorCode = "COMMON_000"
	CodeInternal        ErrorCode = "COMMON_001"
	CodeInvalidParam    ErrorCode = "COMMON_002"
	CodeNotFound        ErrorCode = "COMMON_003"
	CodeConflict        ErrorCode = "COMMON_004"
	CodeSerialization   ErrorCode = "COMMON_005"
	CodeExternalService ErrorCode = "COMMON_006"
	CodeValidation      ErrorCode = "COMMON_007"
)

// Storage error codes.
const (
	CodeStorageOpenFailed  ErrorCode = "STORE_001"
	CodeStorageTxFailed    ErrorCode = "STORE_002"
	CodeStorageQueryFailed ErrorCode = "STORE_003"
	CodeStorageWriteFailed ErrorCode = "STORE_004"
	CodeStorageConstraint  ErrorCode = "STORE_005"
)

// Ingestion error codes.
const (
	CodeIngestSourceMissing ErrorCode = "INGEST_001"
	CodeIngestDecodeFailed  ErrorCode = "INGEST_002"
	CodeIngestRecordFailed  ErrorCode = "INGEST_003"
	CodeIngestSchemaFailed  ErrorCode = "INGEST_004"
)

// Fetch-stage error codes.
const (
	CodeFetchInputInvalid  ErrorCode = "FETCH_001"
	CodeFetchNoSources     ErrorCode = "FETCH_002"
	CodeFetchColumnMissing ErrorCode = "FETCH_003"
	CodeFetchAPIFailed     ErrorCode = "FETCH_004"
	CodeFetchKeyMissing    ErrorCode = "FETCH_005"
	CodeFetchOutputFailed  ErrorCode = "FETCH_006"
)

// Agent error codes.
const (
	CodeAgentLLMFailed       ErrorCode = "AGENT_001"
	CodeAgentToolFailed      ErrorCode = "AGENT_002"
	CodeAgentQueryRejected   ErrorCode = "AGENT_003"
	CodeAgentIndexFailed     ErrorCode = "AGENT_004"
	CodeAgentRoundsExhausted ErrorCode = "AGENT_005"
)
