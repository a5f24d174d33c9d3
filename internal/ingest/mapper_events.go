package ingest

import (
	"encoding/json"

	"github.com/turtacn/patentlake/internal/infrastructure/database/sqlite"
)

// EventMapper stores prosecution-timeline events.  A list-valued description
// is flattened into one "; "-separated string.
type EventMapper struct{}

func (m *EventMapper) Table() string { return "events" }

func (m *EventMapper) CreateTable(s *sqlite.Session) error {
	return createTable(s, m.Table(), `
	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		patent_id TEXT NOT NULL,
		event_date DATETIME,
		title TEXT,
		type TEXT,
		critical INTEGER,
		assignee_search TEXT,
		description TEXT,
		FOREIGN KEY (patent_id) REFERENCES patents (patent_id) ON DELETE CASCADE
	);`)
}

func (m *EventMapper) Insert(s *sqlite.Session, patentID string, rec Record) error {
	for _, ev := range objList(rec.Data(), "events") {
		err := execInsert(s, m.Table(), `
		INSERT INTO events (
			patent_id, event_date, title, type, critical, assignee_search, description
		) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			patentID,
			normalizeDate(ev["date"]),
			strOr(ev, "title"),
			strOr(ev, "type"),
			boolFlag(ev["critical"]),
			strOr(ev, "assignee_search"),
			joinList(ev["description"], "; "),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// LegalEventMapper stores legal status changes.  The free-form attributes
// payload, whatever its shape, is kept verbatim as JSON text; an absent or
// empty payload is NULL.
type LegalEventMapper struct{}

func (m *LegalEventMapper) Table() string { return "legal_events" }

func (m *LegalEventMapper) CreateTable(s *sqlite.Session) error {
	return createTable(s, m.Table(), `
	CREATE TABLE IF NOT EXISTS legal_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		patent_id TEXT NOT NULL,
		date DATETIME,
		code TEXT,
		title TEXT,
		attributes_json TEXT,
		FOREIGN KEY (patent_id) REFERENCES patents (patent_id) ON DELETE CASCADE
	);`)
}

func (m *LegalEventMapper) Insert(s *sqlite.Session, patentID string, rec Record) error {
	for _, le := range objList(rec.Data(), "legal_events") {
		var attrsJSON interface{}
		if attrs := le["attributes"]; boolFlag(attrs) == 1 {
			b, err := json.Marshal(attrs)
			if err == nil {
				attrsJSON = string(b)
			}
		}
		err := execInsert(s, m.Table(), `
		INSERT INTO legal_events (
			patent_id, date, code, title, attributes_json
		) VALUES (?, ?, ?, ?, ?)`,
			patentID,
			normalizeDate(le["date"]),
			strOr(le, "code"),
			strOr(le, "title"),
			attrsJSON,
		)
		if err != nil {
			return err
		}
	}
	return nil
}
