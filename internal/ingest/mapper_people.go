package ingest

import (
	"github.com/turtacn/patentlake/internal/infrastructure/database/sqlite"
)

// InventorMapper stores the inventors array, one row per inventor.
type InventorMapper struct{}

func (m *InventorMapper) Table() string { return "inventors" }

func (m *InventorMapper) CreateTable(s *sqlite.Session) error {
	return createTable(s, m.Table(), `
	CREATE TABLE IF NOT EXISTS inventors (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		patent_id TEXT NOT NULL,
		inventor_name TEXT,
		link TEXT,
		serpapi_link TEXT,
		FOREIGN KEY (patent_id) REFERENCES patents (patent_id) ON DELETE CASCADE
	);`)
}

func (m *InventorMapper) Insert(s *sqlite.Session, patentID string, rec Record) error {
	for _, inv := range objList(rec.Data(), "inventors") {
		err := execInsert(s, m.Table(), `
		INSERT INTO inventors (patent_id, inventor_name, link, serpapi_link)
		VALUES (?, ?, ?, ?)`,
			patentID, strOr(inv, "name"), strOr(inv, "link"), strOr(inv, "serpapi_link"))
		if err != nil {
			return err
		}
	}
	return nil
}

// AssigneeMapper stores the assignees array.  Elements arrive either as
// objects with a name field or as bare strings; empty names are skipped.
type AssigneeMapper struct{}

func (m *AssigneeMapper) Table() string { return "assignees" }

func (m *AssigneeMapper) CreateTable(s *sqlite.Session) error {
	return createTable(s, m.Table(), `
	CREATE TABLE IF NOT EXISTS assignees (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		patent_id TEXT NOT NULL,
		name TEXT,
		FOREIGN KEY (patent_id) REFERENCES patents (patent_id) ON DELETE CASCADE
	);`)
}

func (m *AssigneeMapper) Insert(s *sqlite.Session, patentID string, rec Record) error {
	for _, a := range listOr(rec.Data(), "assignees") {
		var name string
		switch x := a.(type) {
		case map[string]interface{}:
			name, _ = x["name"].(string)
		case string:
			name = x
		}
		if name == "" {
			continue
		}
		if err := execInsert(s, m.Table(),
			`INSERT INTO assignees (patent_id, name) VALUES (?, ?)`, patentID, name); err != nil {
			return err
		}
	}
	return nil
}

// PriorArtKeywordMapper stores the prior_art_keywords string array.
type PriorArtKeywordMapper struct{}

func (m *PriorArtKeywordMapper) Table() string { return "prior_art_keywords" }

func (m *PriorArtKeywordMapper) CreateTable(s *sqlite.Session) error {
	return createTable(s, m.Table(), `
	CREATE TABLE IF NOT EXISTS prior_art_keywords (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		patent_id TEXT NOT NULL,
		keyword TEXT,
		FOREIGN KEY (patent_id) REFERENCES patents (patent_id) ON DELETE CASCADE
	);`)
}

func (m *PriorArtKeywordMapper) Insert(s *sqlite.Session, patentID string, rec Record) error {
	for _, kw := range listOr(rec.Data(), "prior_art_keywords") {
		if err := execInsert(s, m.Table(),
			`INSERT INTO prior_art_keywords (patent_id, keyword) VALUES (?, ?)`, patentID, kw); err != nil {
			return err
		}
	}
	return nil
}

// ExternalLinkMapper stores external_links entries (display text plus URL).
type ExternalLinkMapper struct{}

func (m *ExternalLinkMapper) Table() string { return "external_links" }

func (m *ExternalLinkMapper) CreateTable(s *sqlite.Session) error {
	return createTable(s, m.Table(), `
	CREATE TABLE IF NOT EXISTS external_links (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		patent_id TEXT NOT NULL,
		text TEXT,
		link TEXT,
		FOREIGN KEY (patent_id) REFERENCES patents (patent_id) ON DELETE CASCADE
	);`)
}

func (m *ExternalLinkMapper) Insert(s *sqlite.Session, patentID string, rec Record) error {
	for _, e := range objList(rec.Data(), "external_links") {
		if err := execInsert(s, m.Table(),
			`INSERT INTO external_links (patent_id, text, link) VALUES (?, ?, ?)`,
			patentID, strOr(e, "text"), strOr(e, "link")); err != nil {
			return err
		}
	}
	return nil
}

// ImageMapper stores the images URL array.
type ImageMapper struct{}

func (m *ImageMapper) Table() string { return "images" }

func (m *ImageMapper) CreateTable(s *sqlite.Session) error {
	return createTable(s, m.Table(), `
	CREATE TABLE IF NOT EXISTS images (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		patent_id TEXT NOT NULL,
		image_url TEXT,
		FOREIGN KEY (patent_id) REFERENCES patents (patent_id) ON DELETE CASCADE
	);`)
}

func (m *ImageMapper) Insert(s *sqlite.Session, patentID string, rec Record) error {
	for _, url := range listOr(rec.Data(), "images") {
		if err := execInsert(s, m.Table(),
			`INSERT INTO images (patent_id, image_url) VALUES (?, ?)`, patentID, url); err != nil {
			return err
		}
	}
	return nil
}
