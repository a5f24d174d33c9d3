package fetch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/patentlake/internal/config"
	apperrors "github.com/turtacn/patentlake/pkg/errors"
)

func writeCSV(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func baseFetchConfig(dir string) config.FetchConfig {
	return config.FetchConfig{
		InputFolder: dir,
		IDColumn:    "Document ID",
	}
}

func TestLoadPatentIDs_MergesFiles(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "a.csv", "Document ID,Title\nUS1,First\nUS2,Second\n")
	writeCSV(t, dir, "b.csv", "Document ID,Assignee\nUS3,Acme\n")

	ids, err := LoadPatentIDs(baseFetchConfig(dir))
	require.NoError(t, err)
	assert.Equal(t, []string{"US1", "US2", "US3"}, ids)
}

func TestLoadPatentIDs_FilterAcrossColumns(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "a.csv",
		"Document ID,Title,Abstract\nUS1,Gear assembly,none\nUS2,Motor,a GEAR inside\nUS3,Pump,none\n")

	cfg := baseFetchConfig(dir)
	cfg.FilterCondition = "gear"
	cfg.FilterColumns = []string{"Title", "Abstract"}

	ids, err := LoadPatentIDs(cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"US1", "US2"}, ids, "matching is case-insensitive OR across columns")
}

func TestLoadPatentIDs_SortDescendingAndLimit(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "a.csv", "Document ID,Date\nUS1,2019\nUS2,2021\nUS3,2020\n")

	cfg := baseFetchConfig(dir)
	cfg.SortBy = "Date"
	cfg.Limit = 2

	ids, err := LoadPatentIDs(cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"US2", "US3"}, ids)
}

func TestLoadPatentIDs_UnknownSortColumnIgnored(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "a.csv", "Document ID\nUS1\nUS2\n")

	cfg := baseFetchConfig(dir)
	cfg.SortBy = "No Such Column"

	ids, err := LoadPatentIDs(cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"US1", "US2"}, ids)
}

func TestLoadPatentIDs_RemoveSpaces(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "a.csv", "Document ID\nUS 123 456\n")

	cfg := baseFetchConfig(dir)
	cfg.RemoveSpacesColumn = "Document ID"

	ids, err := LoadPatentIDs(cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"US123456"}, ids)
}

func TestLoadPatentIDs_MissingIDColumn(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "a.csv", "Other\nvalue\n")

	_, err := LoadPatentIDs(baseFetchConfig(dir))
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeFetchColumnMissing))
}

func TestLoadPatentIDs_NoCSVFiles(t *testing.T) {
	_, err := LoadPatentIDs(baseFetchConfig(t.TempDir()))
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeFetchNoSources))
}

func TestLoadPatentIDs_InvalidFolder(t *testing.T) {
	_, err := LoadPatentIDs(baseFetchConfig(filepath.Join(t.TempDir(), "missing")))
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeFetchInputInvalid))
}
