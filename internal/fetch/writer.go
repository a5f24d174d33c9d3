package fetch

import (
	"encoding/json"
	"os"
	"path/filepath"

	apperrors "github.com/turtacn/patentlake/pkg/errors"
)

// Appender writes fetched records to the output JSONL file, one JSON object
// per line, always in append mode so partial runs never clobber earlier
// results.
type Appender struct {
	f *os.File
}

func OpenAppender(path string) (*Appender, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeFetchOutputFailed, "create output directory")
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeFetchOutputFailed, "open output file "+path)
	}
	return &Appender{f: f}, nil
}

// Append writes one {"patent_id": ..., "data": ...} line.
func (a *Appender) Append(patentID string, data map[string]interface{}) error {
	line, err := json.Marshal(map[string]interface{}{
		"patent_id": patentID,
		"data":      data,
	})
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeFetchOutputFailed, "encode record for "+patentID)
	}
	if _, err := a.f.Write(append(line, '\n')); err != nil {
		return apperrors.Wrap(err, apperrors.CodeFetchOutputFailed, "write record for "+patentID)
	}
	return nil
}

func (a *Appender) Close() error {
	return a.f.Close()
}
