package cli

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaCmd_Stdout(t *testing.T) {
	configPath, _ := writeConfigFile(t, "")

	out, err := executeCommand(t, "--config", configPath, "schema")
	require.NoError(t, err)
	assert.Contains(t, out, "patents")
	assert.Contains(t, out, "table_comment")
}

func TestSchemaCmd_WritesFile(t *testing.T) {
	configPath, _ := writeConfigFile(t, "")
	outPath := filepath.Join(t.TempDir(), "docs", "schema.json")

	out, err := executeCommand(t, "--config", configPath, "schema", "--out", outPath)
	require.NoError(t, err)
	assert.Contains(t, out, outPath)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)

	var docs map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &docs))
	assert.Contains(t, docs, "patents")
	assert.Contains(t, docs, "error_logs")
}

func TestIngestCmd_LoadsRecords(t *testing.T) {
	configPath, dbPath := writeConfigFile(t, "")

	source := filepath.Join(t.TempDir(), "patents.jsonl")
	lines := `{"patent_id":"US111A","data":{"title":"First widget","inventors":[{"name":"Ada"}]}}` + "\n" +
		`{"patent_id":"US222B","data":{"title":"Second widget"}}` + "\n"
	require.NoError(t, os.WriteFile(source, []byte(lines), 0o644))

	out, err := executeCommand(t, "--config", configPath, "ingest", "--source", source)
	require.NoError(t, err)
	assert.Contains(t, out, "Ingested 2 of 2 records")

	_, err = os.Stat(dbPath)
	assert.NoError(t, err, "database file should exist after ingest")
}

func TestIngestCmd_MissingSource(t *testing.T) {
	configPath, dbPath := writeConfigFile(t, "")

	_, err := executeCommand(t, "--config", configPath, "ingest",
		"--source", filepath.Join(t.TempDir(), "absent.jsonl"))
	assert.Error(t, err)

	_, statErr := os.Stat(dbPath)
	assert.True(t, os.IsNotExist(statErr), "no database file is created when the source is missing")
}

func TestFetchCmd_FetchesFromAPI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"title": "Widget",
			"pdf":   "https://example.com/doc.pdf",
		})
	}))
	defer srv.Close()

	inputDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(inputDir, "export.csv"),
		[]byte("Document ID\nUS-111-A\n"), 0o644))
	output := filepath.Join(t.TempDir(), "out.jsonl")

	extra := "fetch:\n" +
		"  input_folder: " + inputDir + "\n" +
		"  output_jsonl: " + output + "\n" +
		"  base_url: " + srv.URL + "\n"
	configPath, _ := writeConfigFile(t, extra)
	t.Setenv("PATENTLAKE_FETCH_API_KEY", "test-key")

	out, err := executeCommand(t, "--config", configPath, "fetch")
	require.NoError(t, err)
	assert.Contains(t, out, "Fetched 1 of 1 patents")

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(data), "US-111-A")
}

func TestFetchCmd_MissingAPIKey(t *testing.T) {
	configPath, _ := writeConfigFile(t, "")
	t.Setenv("PATENTLAKE_FETCH_API_KEY", "")
	t.Setenv("SERPAPI_KEY", "")

	_, err := executeCommand(t, "--config", configPath, "fetch")
	assert.Error(t, err)
}

func TestAskCmd_RequiresQuestion(t *testing.T) {
	configPath, _ := writeConfigFile(t, "")

	_, err := executeCommand(t, "--config", configPath, "ask")
	assert.Error(t, err)
}

func TestAskCmd_MissingAPIKey(t *testing.T) {
	configPath, _ := writeConfigFile(t, "")
	t.Setenv("PATENTLAKE_AGENT_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")

	_, err := executeCommand(t, "--config", configPath, "ask", "how many patents are there")
	assert.Error(t, err)
}
