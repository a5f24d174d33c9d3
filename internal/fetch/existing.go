package fetch

import (
	"bufio"
	"encoding/json"
	"os"
	"strings"

	"github.com/turtacn/patentlake/internal/infrastructure/monitoring/logging"
)

// LoadExistingRecords indexes the output JSONL by patent identifier so
// already-fetched patents can be skipped.  A missing file means nothing was
// fetched yet; unparseable lines are logged and ignored.
func LoadExistingRecords(path string, log logging.Logger) map[string]map[string]interface{} {
	records := map[string]map[string]interface{}{}

	f, err := os.Open(path)
	if err != nil {
		return records
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 1024*1024), 64*1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var rec struct {
			PatentID string                 `json:"patent_id"`
			Data     map[string]interface{} `json:"data"`
		}
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			log.Error("failed to parse existing jsonl line",
				logging.Int("line", lineNo), logging.Err(err))
			continue
		}
		records[rec.PatentID] = rec.Data
	}
	if err := sc.Err(); err != nil {
		log.Error("failed to read existing jsonl file", logging.Err(err))
	}
	return records
}
