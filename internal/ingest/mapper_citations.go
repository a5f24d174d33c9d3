package ingest

import (
	"github.com/turtacn/patentlake/internal/infrastructure/database/sqlite"
)

// citationGroups orders the two citation buckets found under patent_citations
// and cited_by.  Rows from the second bucket carry is_family_to_family = 1.
var citationGroups = []string{"original", "family_to_family"}

// PatentCitationMapper stores patents this patent cites.
type PatentCitationMapper struct{}

func (m *PatentCitationMapper) Table() string { return "patent_citations" }

func (m *PatentCitationMapper) CreateTable(s *sqlite.Session) error {
	return createCitationTable(s, m.Table())
}

func (m *PatentCitationMapper) Insert(s *sqlite.Session, patentID string, rec Record) error {
	return insertCitations(s, m.Table(), patentID, mapOr(rec.Data(), "patent_citations"))
}

// CitedByMapper stores the inverse relation: patents citing this one.
type CitedByMapper struct{}

func (m *CitedByMapper) Table() string { return "cited_by" }

func (m *CitedByMapper) CreateTable(s *sqlite.Session) error {
	return createCitationTable(s, m.Table())
}

func (m *CitedByMapper) Insert(s *sqlite.Session, patentID string, rec Record) error {
	return insertCitations(s, m.Table(), patentID, mapOr(rec.Data(), "cited_by"))
}

func createCitationTable(s *sqlite.Session, table string) error {
	return createTable(s, table, `
	CREATE TABLE IF NOT EXISTS `+table+` (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		patent_id TEXT NOT NULL,
		is_family_to_family INTEGER,
		publication_number TEXT,
		primary_language TEXT,
		examiner_cited INTEGER,
		priority_date DATETIME,
		publication_date DATETIME,
		assignee_original TEXT,
		title TEXT,
		serpapi_link TEXT,
		patent_id_ref TEXT,
		FOREIGN KEY (patent_id) REFERENCES patents (patent_id) ON DELETE CASCADE
	);`)
}

func insertCitations(s *sqlite.Session, table, patentID string, groups map[string]interface{}) error {
	for _, key := range citationGroups {
		isFTF := 0
		if key == "family_to_family" {
			isFTF = 1
		}
		for _, c := range objList(groups, key) {
			err := execInsert(s, table, `
			INSERT INTO `+table+` (
				patent_id, is_family_to_family, publication_number, primary_language, examiner_cited,
				priority_date, publication_date, assignee_original, title, serpapi_link, patent_id_ref
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				patentID,
				isFTF,
				strOr(c, "publication_number"),
				strOr(c, "primary_language"),
				boolFlag(c["examiner_cited"]),
				normalizeDate(c["priority_date"]),
				normalizeDate(c["publication_date"]),
				strOr(c, "assignee_original"),
				strOr(c, "title"),
				strOr(c, "serpapi_link"),
				strOr(c, "patent_id"),
			)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// NonPatentCitationMapper stores cited non-patent literature.
type NonPatentCitationMapper struct{}

func (m *NonPatentCitationMapper) Table() string { return "non_patent_citations" }

func (m *NonPatentCitationMapper) CreateTable(s *sqlite.Session) error {
	return createTable(s, m.Table(), `
	CREATE TABLE IF NOT EXISTS non_patent_citations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		patent_id TEXT NOT NULL,
		citation_title TEXT,
		examiner_cited INTEGER,
		FOREIGN KEY (patent_id) REFERENCES patents (patent_id) ON DELETE CASCADE
	);`)
}

func (m *NonPatentCitationMapper) Insert(s *sqlite.Session, patentID string, rec Record) error {
	for _, c := range objList(rec.Data(), "non_patent_citations") {
		err := execInsert(s, m.Table(), `
		INSERT INTO non_patent_citations (
			patent_id, citation_title, examiner_cited
		) VALUES (?, ?, ?)`,
			patentID, strOr(c, "title"), boolFlag(c["examiner_cited"]))
		if err != nil {
			return err
		}
	}
	return nil
}

// SimilarDocumentMapper stores search-engine neighbors of the patent, which
// may be patents or plain documents.
type SimilarDocumentMapper struct{}

func (m *SimilarDocumentMapper) Table() string { return "similar_documents" }

func (m *SimilarDocumentMapper) CreateTable(s *sqlite.Session) error {
	return createTable(s, m.Table(), `
	CREATE TABLE IF NOT EXISTS similar_documents (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		patent_id TEXT NOT NULL,
		is_patent INTEGER,
		doc_patent_id TEXT,
		serpapi_link TEXT,
		publication_number TEXT,
		primary_language TEXT,
		publication_date DATETIME,
		title TEXT,
		FOREIGN KEY (patent_id) REFERENCES patents (patent_id) ON DELETE CASCADE
	);`)
}

func (m *SimilarDocumentMapper) Insert(s *sqlite.Session, patentID string, rec Record) error {
	for _, sd := range objList(rec.Data(), "similar_documents") {
		err := execInsert(s, m.Table(), `
		INSERT INTO similar_documents (
			patent_id, is_patent, doc_patent_id, serpapi_link,
			publication_number, primary_language, publication_date, title
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			patentID,
			boolFlag(sd["is_patent"]),
			strOr(sd, "patent_id"),
			strOr(sd, "serpapi_link"),
			strOr(sd, "publication_number"),
			strOr(sd, "primary_language"),
			normalizeDate(sd["publication_date"]),
			strOr(sd, "title"),
		)
		if err != nil {
			return err
		}
	}
	return nil
}
