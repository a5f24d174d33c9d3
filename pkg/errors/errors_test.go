package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New(CodeIngestSourceMissing, "source file not found")
	require.NotNil(t, err)
	assert.Equal(t, CodeIngestSourceMissing, err.Code)
	assert.Equal(t, "[INGEST_001] source file not found", err.Error())
	assert.NotEmpty(t, err.Stack)
}

func TestNewf(t *testing.T) {
	err := Newf(CodeFetchAPIFailed, "fetch %s failed after %d attempts", "US123", 3)
	assert.Equal(t, "[FETCH_004] fetch US123 failed after 3 attempts", err.Error())
}

func TestWithDetail(t *testing.T) {
	base := New(CodeStorageWriteFailed, "insert failed")
	detailed := base.WithDetail("line 42")

	assert.Equal(t, "[STORE_004] insert failed: line 42", detailed.Error())
	// The original must not be mutated.
	assert.Empty(t, base.Detail)
}

func TestWrap(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := Wrap(cause, CodeStorageTxFailed, "commit record")

	require.NotNil(t, err)
	assert.Equal(t, CodeStorageTxFailed, err.Code)
	assert.ErrorIs(t, err, cause)
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, CodeStorageTxFailed, "commit record"))
}

func TestWrapPreservesCodeForUnknown(t *testing.T) {
	inner := New(CodeAgentLLMFailed, "model unreachable")
	outer := Wrap(inner, CodeUnknown, "query failed")
	assert.Equal(t, CodeAgentLLMFailed, outer.Code)
}

func TestIsCode(t *testing.T) {
	inner := New(CodeStorageConstraint, "foreign key violation")
	outer := Wrap(inner, CodeIngestRecordFailed, "record 5")

	assert.True(t, IsCode(outer, CodeIngestRecordFailed))
	assert.True(t, IsCode(outer, CodeStorageConstraint))
	assert.False(t, IsCode(outer, CodeFetchAPIFailed))
	assert.False(t, IsCode(nil, CodeIngestRecordFailed))
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, CodeAgentToolFailed, GetCode(New(CodeAgentToolFailed, "boom")))
	assert.Equal(t, CodeUnknown, GetCode(fmt.Errorf("plain")))
	assert.Equal(t, CodeUnknown, GetCode(nil))
}

func TestGetStack(t *testing.T) {
	err := New(CodeInternal, "boom")
	assert.NotEmpty(t, GetStack(err))
	assert.Empty(t, GetStack(fmt.Errorf("plain")))
}
