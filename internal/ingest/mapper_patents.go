package ingest

import (
	"github.com/turtacn/patentlake/internal/infrastructure/database/sqlite"
)

// PatentMapper owns the root patents table.  patent_id is the natural primary
// key and inserts use OR IGNORE, so the first write of an identifier wins and
// re-ingesting the same file leaves the table unchanged.
type PatentMapper struct{}

func (m *PatentMapper) Table() string { return "patents" }

func (m *PatentMapper) CreateTable(s *sqlite.Session) error {
	return createTable(s, m.Table(), `
	CREATE TABLE IF NOT EXISTS patents (
		patent_id TEXT PRIMARY KEY,
		title TEXT,
		type TEXT,
		pdf_link TEXT,
		publication_number TEXT,
		country TEXT,
		application_number TEXT,
		priority_date DATETIME,
		filing_date DATETIME,
		publication_date DATETIME,
		prior_art_date DATETIME,
		family_id TEXT,
		abstract TEXT,
		description_link TEXT
	);`)
}

// Insert writes the root row and returns the patent identifier the child
// mappers key their rows on.
func (m *PatentMapper) Insert(s *sqlite.Session, rec Record) (string, error) {
	patentID := rec.PatentID()
	data := rec.Data()
	err := execInsert(s, m.Table(), `
	INSERT OR IGNORE INTO patents (
		patent_id, title, type, pdf_link, publication_number, country,
		application_number, priority_date, filing_date, publication_date,
		prior_art_date, family_id, abstract, description_link
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		patentID,
		strOr(data, "title"),
		strOr(data, "type"),
		strOr(data, "pdf"),
		strOr(data, "publication_number"),
		strOr(data, "country"),
		strOr(data, "application_number"),
		normalizeDate(data["priority_date"]),
		normalizeDate(data["filing_date"]),
		normalizeDate(data["publication_date"]),
		normalizeDate(data["prior_art_date"]),
		strOr(data, "family_id"),
		strOr(data, "abstract"),
		strOr(data, "description_link"),
	)
	if err != nil {
		return "", err
	}
	return patentID, nil
}
