package fetch

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/patentlake/internal/config"
	"github.com/turtacn/patentlake/internal/infrastructure/monitoring/logging"
	apperrors "github.com/turtacn/patentlake/pkg/errors"
)

// fakeAPI scripts per-identifier behavior: a positive count fails that many
// attempts before succeeding.
type fakeAPI struct {
	failures map[string]int
	calls    map[string]int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{failures: map[string]int{}, calls: map[string]int{}}
}

func (f *fakeAPI) FetchDetails(_ context.Context, rawID string) (map[string]interface{}, error) {
	f.calls[rawID]++
	if f.failures[rawID] > 0 {
		f.failures[rawID]--
		return nil, apperrors.New(apperrors.CodeFetchAPIFailed, "simulated API failure")
	}
	return map[string]interface{}{"title": "T-" + rawID, "pdf": "https://p/" + rawID}, nil
}

func fetchTestConfig(t *testing.T, csvContent string) config.FetchConfig {
	t.Helper()
	inDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(inDir, "in.csv"), []byte(csvContent), 0o644))
	return config.FetchConfig{
		InputFolder:  inDir,
		OutputJSONL:  filepath.Join(t.TempDir(), "out.jsonl"),
		IDColumn:     "Document ID",
		MaxRetries:   3,
		RetryBackoff: 0,
		SkipIfHasPDF: true,
	}
}

func TestRun_FetchesAndAppends(t *testing.T) {
	cfg := fetchTestConfig(t, "Document ID\nUS1\nUS2\n")
	api := newFakeAPI()
	svc := NewService(cfg, api, logging.NewNopLogger(), nil)

	stats, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Stats{Total: 2, Fetched: 2}, stats)

	existing := LoadExistingRecords(cfg.OutputJSONL, logging.NewNopLogger())
	require.Len(t, existing, 2)
	assert.Equal(t, "T-US1", existing["US1"]["title"])
}

func TestRun_SkipsWhenPDFPresent(t *testing.T) {
	cfg := fetchTestConfig(t, "Document ID\nUS1\nUS2\n")
	require.NoError(t, os.WriteFile(cfg.OutputJSONL,
		[]byte(`{"patent_id":"US1","data":{"pdf":"https://p/US1"}}`+"\n"), 0o644))

	api := newFakeAPI()
	svc := NewService(cfg, api, logging.NewNopLogger(), nil)

	stats, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Stats{Total: 2, Fetched: 1, Skipped: 1}, stats)
	assert.Zero(t, api.calls["US1"])
	assert.Equal(t, 1, api.calls["US2"])
}

func TestRun_RefetchesWhenNoPDF(t *testing.T) {
	cfg := fetchTestConfig(t, "Document ID\nUS1\n")
	require.NoError(t, os.WriteFile(cfg.OutputJSONL,
		[]byte(`{"patent_id":"US1","data":{"title":"partial"}}`+"\n"), 0o644))

	api := newFakeAPI()
	svc := NewService(cfg, api, logging.NewNopLogger(), nil)

	stats, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Stats{Total: 1, Fetched: 1}, stats)
	assert.Equal(t, 1, api.calls["US1"])
}

func TestRun_RetriesThenSucceeds(t *testing.T) {
	cfg := fetchTestConfig(t, "Document ID\nUS1\n")
	api := newFakeAPI()
	api.failures["US1"] = 2

	svc := NewService(cfg, api, logging.NewNopLogger(), nil)
	stats, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Stats{Total: 1, Fetched: 1}, stats)
	assert.Equal(t, 3, api.calls["US1"])
}

func TestRun_FailureDoesNotStopRun(t *testing.T) {
	cfg := fetchTestConfig(t, "Document ID\nUS1\nUS2\n")
	api := newFakeAPI()
	api.failures["US1"] = 99

	svc := NewService(cfg, api, logging.NewNopLogger(), nil)
	stats, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Stats{Total: 2, Fetched: 1, Failed: 1}, stats)
	assert.Equal(t, cfg.MaxRetries, api.calls["US1"])

	existing := LoadExistingRecords(cfg.OutputJSONL, logging.NewNopLogger())
	require.Len(t, existing, 1)
	assert.Contains(t, existing, "US2")
}

func TestLoadExistingRecords_SkipsBadLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.jsonl")
	content := `{"patent_id":"US1","data":{"title":"ok"}}` + "\nnot json\n" +
		`{"patent_id":"US2","data":{}}` + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	records := LoadExistingRecords(path, logging.NewNopLogger())
	assert.Len(t, records, 2)
}
