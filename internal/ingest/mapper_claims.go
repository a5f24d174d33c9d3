package ingest

import (
	"github.com/turtacn/patentlake/internal/infrastructure/database/sqlite"
)

// ClassificationMapper stores CPC-style classification codes with their four
// boolean qualifiers collapsed to 0/1.
type ClassificationMapper struct{}

func (m *ClassificationMapper) Table() string { return "classifications" }

func (m *ClassificationMapper) CreateTable(s *sqlite.Session) error {
	return createTable(s, m.Table(), `
	CREATE TABLE IF NOT EXISTS classifications (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		patent_id TEXT NOT NULL,
		code TEXT,
		description TEXT,
		leaf INTEGER,
		first_code INTEGER,
		is_cpc INTEGER,
		additional INTEGER,
		FOREIGN KEY (patent_id) REFERENCES patents (patent_id) ON DELETE CASCADE
	);`)
}

func (m *ClassificationMapper) Insert(s *sqlite.Session, patentID string, rec Record) error {
	for _, c := range objList(rec.Data(), "classifications") {
		err := execInsert(s, m.Table(), `
		INSERT INTO classifications (
			patent_id, code, description, leaf, first_code, is_cpc, additional
		) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			patentID,
			strOr(c, "code"),
			strOr(c, "description"),
			boolFlag(c["leaf"]),
			boolFlag(c["first_code"]),
			boolFlag(c["is_cpc"]),
			boolFlag(c["additional"]),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// ClaimMapper stores claim texts.  Claim numbers are assigned from the
// 1-based position in the source array, not parsed out of the text.
type ClaimMapper struct{}

func (m *ClaimMapper) Table() string { return "claims" }

func (m *ClaimMapper) CreateTable(s *sqlite.Session) error {
	return createTable(s, m.Table(), `
	CREATE TABLE IF NOT EXISTS claims (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		patent_id TEXT NOT NULL,
		claim_no INTEGER,
		claim_txt TEXT,
		FOREIGN KEY (patent_id) REFERENCES patents (patent_id) ON DELETE CASCADE
	);`)
}

func (m *ClaimMapper) Insert(s *sqlite.Session, patentID string, rec Record) error {
	for i, txt := range listOr(rec.Data(), "claims") {
		if err := execInsert(s, m.Table(),
			`INSERT INTO claims (patent_id, claim_no, claim_txt) VALUES (?, ?, ?)`,
			patentID, i+1, txt); err != nil {
			return err
		}
	}
	return nil
}

// ConceptMapper stores extracted concept matches.  The source nests them
// under concepts.match, which is usually a list but occasionally a single
// object; a lone object is treated as a one-element list.
type ConceptMapper struct{}

func (m *ConceptMapper) Table() string { return "concepts" }

func (m *ConceptMapper) CreateTable(s *sqlite.Session) error {
	return createTable(s, m.Table(), `
	CREATE TABLE IF NOT EXISTS concepts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		patent_id TEXT NOT NULL,
		concept_id TEXT,
		domain TEXT,
		name TEXT,
		similarity REAL,
		sections TEXT,
		count INTEGER,
		inchi_key TEXT,
		smiles TEXT,
		FOREIGN KEY (patent_id) REFERENCES patents (patent_id) ON DELETE CASCADE
	);`)
}

func (m *ConceptMapper) Insert(s *sqlite.Session, patentID string, rec Record) error {
	concepts := mapOr(rec.Data(), "concepts")
	var matches []map[string]interface{}
	switch x := concepts["match"].(type) {
	case []interface{}:
		matches = objList(concepts, "match")
	case map[string]interface{}:
		matches = []map[string]interface{}{x}
	}
	for _, c := range matches {
		var sections interface{}
		if _, ok := c["sections"].([]interface{}); ok {
			sections = joinList(c["sections"], ";")
		}
		err := execInsert(s, m.Table(), `
		INSERT INTO concepts (
			patent_id, concept_id, domain, name, similarity, sections,
			count, inchi_key, smiles
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			patentID,
			strOr(c, "id"),
			strOr(c, "domain"),
			strOr(c, "name"),
			numOr(c, "similarity"),
			sections,
			intOr(c, "count"),
			strOr(c, "inchi_key"),
			strOr(c, "smiles"),
		)
		if err != nil {
			return err
		}
	}
	return nil
}
