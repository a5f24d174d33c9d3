// Package ingest implements the patentlake ingestion core: a streaming JSONL
// reader, field normalizers, one table mapper per target table, and the
// coordinator that fans each decoded record out across all mappers inside one
// atomic session per record.
package ingest

// Record is one decoded JSONL line from the fetch stage:
// {"patent_id": "...", "data": {...}}.  The data object is deeply nested and
// semi-structured; accessors below absorb missing keys and shape surprises so
// mappers never have to guard against them individually.
type Record map[string]interface{}

// PatentID returns the externally assigned patent identifier, or the empty
// string when absent.
func (r Record) PatentID() string {
	s, _ := r["patent_id"].(string)
	return s
}

// Data returns the nested data object, or an empty map when absent or of an
// unexpected shape.
func (r Record) Data() map[string]interface{} {
	if m, ok := r["data"].(map[string]interface{}); ok {
		return m
	}
	return map[string]interface{}{}
}

// strOr returns m[key] when it is a string, otherwise nil.  The nil is passed
// straight through to the SQL layer as NULL.
func strOr(m map[string]interface{}, key string) interface{} {
	if s, ok := m[key].(string); ok {
		return s
	}
	return nil
}

// numOr returns m[key] when it is a JSON number, otherwise nil.
func numOr(m map[string]interface{}, key string) interface{} {
	if f, ok := m[key].(float64); ok {
		return f
	}
	return nil
}

// intOr returns m[key] truncated to an int64 when it is a JSON number,
// otherwise nil.
func intOr(m map[string]interface{}, key string) interface{} {
	if f, ok := m[key].(float64); ok {
		return int64(f)
	}
	return nil
}

// listOr returns m[key] when it is a list, otherwise nil.
func listOr(m map[string]interface{}, key string) []interface{} {
	l, _ := m[key].([]interface{})
	return l
}

// mapOr returns m[key] when it is an object, otherwise an empty map.
func mapOr(m map[string]interface{}, key string) map[string]interface{} {
	if mm, ok := m[key].(map[string]interface{}); ok {
		return mm
	}
	return map[string]interface{}{}
}

// objList iterates the object elements of m[key], skipping anything that is
// not an object.
func objList(m map[string]interface{}, key string) []map[string]interface{} {
	raw := listOr(m, key)
	out := make([]map[string]interface{}, 0, len(raw))
	for _, v := range raw {
		if obj, ok := v.(map[string]interface{}); ok {
			out = append(out, obj)
		}
	}
	return out
}
