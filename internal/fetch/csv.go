// Package fetch implements the patent acquisition stage: CSV exports are
// merged and filtered down to a list of document identifiers, each identifier
// is fetched from the search API with retries, and results are appended to
// the JSONL file the ingestion stage consumes.
package fetch

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/turtacn/patentlake/internal/config"
	apperrors "github.com/turtacn/patentlake/pkg/errors"
)

// table is a merged view over every input CSV: a union of all headers plus
// rows keyed by column name.  Cells for columns a source file lacks are
// simply absent.
type table struct {
	columns []string
	rows    []map[string]string
}

func (t *table) hasColumn(name string) bool {
	for _, c := range t.columns {
		if c == name {
			return true
		}
	}
	return false
}

// readCSVFolder merges every *.csv file under folder into one table.
func readCSVFolder(folder string) (*table, error) {
	info, err := os.Stat(folder)
	if err != nil || !info.IsDir() {
		return nil, apperrors.New(apperrors.CodeFetchInputInvalid, "input folder is not a valid directory: "+folder)
	}

	files, err := filepath.Glob(filepath.Join(folder, "*.csv"))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeFetchInputInvalid, "scan input folder")
	}
	if len(files) == 0 {
		return nil, apperrors.New(apperrors.CodeFetchNoSources, "no csv files found in "+folder)
	}
	sort.Strings(files)

	t := &table{}
	seen := map[string]bool{}
	for _, path := range files {
		if err := appendCSVFile(t, seen, path); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func appendCSVFile(t *table, seenCols map[string]bool, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeFetchInputInvalid, "open csv file "+path)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err == io.EOF {
		return nil
	}
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeFetchInputInvalid, "read csv header "+path)
	}
	for _, col := range header {
		if !seenCols[col] {
			seenCols[col] = true
			t.columns = append(t.columns, col)
		}
	}

	for {
		fields, err := r.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return apperrors.Wrap(err, apperrors.CodeFetchInputInvalid, "read csv row "+path)
		}
		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(fields) {
				row[col] = fields[i]
			}
		}
		t.rows = append(t.rows, row)
	}
}

// applyFilters runs the condition filter, descending sort, limit and
// space-stripping steps in that order.
func applyFilters(t *table, cfg config.FetchConfig) {
	if cfg.FilterCondition != "" && len(cfg.FilterColumns) > 0 {
		needle := strings.ToLower(cfg.FilterCondition)
		kept := t.rows[:0]
		for _, row := range t.rows {
			for _, col := range cfg.FilterColumns {
				if v, ok := row[col]; ok && strings.Contains(strings.ToLower(v), needle) {
					kept = append(kept, row)
					break
				}
			}
		}
		t.rows = kept
	}

	if cfg.SortBy != "" && t.hasColumn(cfg.SortBy) {
		col := cfg.SortBy
		sort.SliceStable(t.rows, func(i, j int) bool {
			return t.rows[i][col] > t.rows[j][col]
		})
	}

	if cfg.Limit > 0 && len(t.rows) > cfg.Limit {
		t.rows = t.rows[:cfg.Limit]
	}

	if cfg.RemoveSpacesColumn != "" && t.hasColumn(cfg.RemoveSpacesColumn) {
		col := cfg.RemoveSpacesColumn
		for _, row := range t.rows {
			if v, ok := row[col]; ok {
				row[col] = strings.ReplaceAll(v, " ", "")
			}
		}
	}
}

// LoadPatentIDs merges the CSV exports and returns the identifier column
// after filtering, sorting and limiting.
func LoadPatentIDs(cfg config.FetchConfig) ([]string, error) {
	t, err := readCSVFolder(cfg.InputFolder)
	if err != nil {
		return nil, err
	}
	applyFilters(t, cfg)

	if !t.hasColumn(cfg.IDColumn) {
		return nil, apperrors.New(apperrors.CodeFetchColumnMissing,
			"no "+cfg.IDColumn+" column found in the merged csv data")
	}
	ids := make([]string, 0, len(t.rows))
	for _, row := range t.rows {
		ids = append(ids, row[cfg.IDColumn])
	}
	return ids, nil
}
