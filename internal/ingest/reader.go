package ingest

import (
	"bufio"
	"encoding/json"
	"io"
	"os"
	"strings"

	apperrors "github.com/turtacn/patentlake/pkg/errors"
)

// maxLineBytes bounds a single JSONL line.  Patent records carry full claim
// and citation sets and routinely exceed the bufio default of 64KB.
const maxLineBytes = 64 * 1024 * 1024

// Line is one non-blank line of the source file.  Exactly one of Record and
// Err is meaningful: a decode failure yields Err and a nil Record, and never
// stops iteration.
type Line struct {
	Ordinal int
	Raw     string
	Record  Record
	Err     error
}

// Reader streams records off a JSONL source one line at a time.  Blank lines
// are skipped without being yielded but still advance the ordinal, so the
// ordinal is always the 1-based physical line number.
type Reader struct {
	scanner *bufio.Scanner
	ordinal int
}

func NewReader(r io.Reader) *Reader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 1024*1024), maxLineBytes)
	return &Reader{scanner: sc}
}

// Next returns the next non-blank line, or false once the source is
// exhausted.
func (r *Reader) Next() (Line, bool) {
	for r.scanner.Scan() {
		r.ordinal++
		raw := r.scanner.Text()
		if strings.TrimSpace(raw) == "" {
			continue
		}
		line := Line{Ordinal: r.ordinal, Raw: raw}
		var rec Record
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			line.Err = apperrors.Wrap(err, apperrors.CodeIngestDecodeFailed, "decode jsonl line")
		} else {
			line.Record = rec
		}
		return line, true
	}
	return Line{}, false
}

// Err reports any scanner-level failure after Next has returned false.
func (r *Reader) Err() error {
	if err := r.scanner.Err(); err != nil {
		return apperrors.Wrap(err, apperrors.CodeIngestDecodeFailed, "read jsonl source")
	}
	return nil
}

// FileReader couples a Reader to the file it reads.
type FileReader struct {
	*Reader
	f *os.File
}

// OpenSource opens the JSONL input.  A missing file is the one fatal
// ingestion condition and is reported as CodeIngestSourceMissing.
func OpenSource(path string) (*FileReader, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.Wrap(err, apperrors.CodeIngestSourceMissing, "source file not found: "+path)
		}
		return nil, apperrors.Wrap(err, apperrors.CodeIngestSourceMissing, "open source file: "+path)
	}
	return &FileReader{Reader: NewReader(f), f: f}, nil
}

func (r *FileReader) Close() error {
	return r.f.Close()
}
