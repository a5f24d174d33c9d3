package ingest

import (
	"fmt"
	"strings"
	"time"
)

const (
	dateLayout      = "2006-01-02"
	timestampLayout = "2006-01-02 15:04:05"
)

// normalizeDate converts a bare "YYYY-MM-DD" string into the canonical
// "YYYY-MM-DD 00:00:00" timestamp stored in the database.  Anything else,
// including missing values and strings in other formats, becomes NULL.
func normalizeDate(v interface{}) interface{} {
	s, ok := v.(string)
	if !ok || s == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil
	}
	return t.Format(timestampLayout)
}

// boolFlag collapses a decoded JSON value into the 0/1 integers stored in
// flag columns.  The rules follow general truthiness: nil, false, zero, the
// empty string and empty containers are 0, everything else is 1.
func boolFlag(v interface{}) int {
	switch x := v.(type) {
	case nil:
		return 0
	case bool:
		if x {
			return 1
		}
		return 0
	case float64:
		if x != 0 {
			return 1
		}
		return 0
	case string:
		if x != "" {
			return 1
		}
		return 0
	case []interface{}:
		if len(x) > 0 {
			return 1
		}
		return 0
	case map[string]interface{}:
		if len(x) > 0 {
			return 1
		}
		return 0
	default:
		return 1
	}
}

// joinList flattens a list value into a single sep-separated string.  A plain
// string passes through unchanged and anything else becomes NULL.  Non-string
// list elements are stringified rather than dropped so one odd element cannot
// sink the whole row.
func joinList(v interface{}, sep string) interface{} {
	switch x := v.(type) {
	case string:
		return x
	case []interface{}:
		parts := make([]string, 0, len(x))
		for _, e := range x {
			if s, ok := e.(string); ok {
				parts = append(parts, s)
			} else if e != nil {
				parts = append(parts, fmt.Sprint(e))
			}
		}
		return strings.Join(parts, sep)
	default:
		return nil
	}
}
