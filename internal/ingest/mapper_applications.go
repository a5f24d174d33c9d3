package ingest

import (
	"strconv"

	"github.com/turtacn/patentlake/internal/infrastructure/database/sqlite"
)

// ApplicationClaimingPriorityMapper stores later applications that claim
// priority from this patent.
type ApplicationClaimingPriorityMapper struct{}

func (m *ApplicationClaimingPriorityMapper) Table() string {
	return "applications_claiming_priority"
}

func (m *ApplicationClaimingPriorityMapper) CreateTable(s *sqlite.Session) error {
	return createTable(s, m.Table(), `
	CREATE TABLE IF NOT EXISTS applications_claiming_priority (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		patent_id TEXT NOT NULL,
		application_number TEXT,
		priority_date DATETIME,
		filing_date DATETIME,
		representative_publication TEXT,
		primary_language TEXT,
		title TEXT,
		FOREIGN KEY (patent_id) REFERENCES patents (patent_id) ON DELETE CASCADE
	);`)
}

func (m *ApplicationClaimingPriorityMapper) Insert(s *sqlite.Session, patentID string, rec Record) error {
	for _, acp := range objList(rec.Data(), "applications_claiming_priority") {
		err := execInsert(s, m.Table(), `
		INSERT INTO applications_claiming_priority (
			patent_id, application_number, priority_date, filing_date,
			representative_publication, primary_language, title
		) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			patentID,
			strOr(acp, "application_number"),
			normalizeDate(acp["priority_date"]),
			normalizeDate(acp["filing_date"]),
			strOr(acp, "representative_publication"),
			strOr(acp, "primary_language"),
			strOr(acp, "title"),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// WorldwideApplicationMapper flattens the year-keyed worldwide_applications
// object into one row per application.  Keys that do not parse as integers
// leave the year column NULL; values that are not lists are skipped.
type WorldwideApplicationMapper struct{}

func (m *WorldwideApplicationMapper) Table() string { return "worldwide_applications" }

func (m *WorldwideApplicationMapper) CreateTable(s *sqlite.Session) error {
	return createTable(s, m.Table(), `
	CREATE TABLE IF NOT EXISTS worldwide_applications (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		patent_id TEXT NOT NULL,
		year INTEGER,
		application_number TEXT,
		country_code TEXT,
		document_id TEXT,
		filing_date DATETIME,
		legal_status TEXT,
		legal_status_cat TEXT,
		this_app INTEGER,
		FOREIGN KEY (patent_id) REFERENCES patents (patent_id) ON DELETE CASCADE
	);`)
}

func (m *WorldwideApplicationMapper) Insert(s *sqlite.Session, patentID string, rec Record) error {
	for yearStr, raw := range mapOr(rec.Data(), "worldwide_applications") {
		var year interface{}
		if y, err := strconv.Atoi(yearStr); err == nil {
			year = y
		}
		apps, ok := raw.([]interface{})
		if !ok {
			continue
		}
		for _, v := range apps {
			wapp, ok := v.(map[string]interface{})
			if !ok {
				continue
			}
			err := execInsert(s, m.Table(), `
			INSERT INTO worldwide_applications (
				patent_id, year, application_number, country_code, document_id,
				filing_date, legal_status, legal_status_cat, this_app
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				patentID,
				year,
				strOr(wapp, "application_number"),
				strOr(wapp, "country_code"),
				strOr(wapp, "document_id"),
				normalizeDate(wapp["filing_date"]),
				strOr(wapp, "legal_status"),
				strOr(wapp, "legal_status_cat"),
				boolFlag(wapp["this_app"]),
			)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// ChildApplicationMapper stores continuations derived from this patent.
type ChildApplicationMapper struct{}

func (m *ChildApplicationMapper) Table() string { return "child_applications" }

func (m *ChildApplicationMapper) CreateTable(s *sqlite.Session) error {
	return createTable(s, m.Table(), `
	CREATE TABLE IF NOT EXISTS child_applications (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		patent_id TEXT NOT NULL,
		application_number TEXT,
		relation_type TEXT,
		representative_publication TEXT,
		primary_language TEXT,
		priority_date DATETIME,
		filing_date DATETIME,
		title TEXT,
		FOREIGN KEY (patent_id) REFERENCES patents (patent_id) ON DELETE CASCADE
	);`)
}

func (m *ChildApplicationMapper) Insert(s *sqlite.Session, patentID string, rec Record) error {
	return insertRelatedApplications(s, m.Table(), patentID, objList(rec.Data(), "child_applications"))
}

// ParentApplicationMapper stores applications this patent derives from.
type ParentApplicationMapper struct{}

func (m *ParentApplicationMapper) Table() string { return "parent_applications" }

func (m *ParentApplicationMapper) CreateTable(s *sqlite.Session) error {
	return createTable(s, m.Table(), `
	CREATE TABLE IF NOT EXISTS parent_applications (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		patent_id TEXT NOT NULL,
		application_number TEXT,
		relation_type TEXT,
		representative_publication TEXT,
		primary_language TEXT,
		priority_date DATETIME,
		filing_date DATETIME,
		title TEXT,
		FOREIGN KEY (patent_id) REFERENCES patents (patent_id) ON DELETE CASCADE
	);`)
}

func (m *ParentApplicationMapper) Insert(s *sqlite.Session, patentID string, rec Record) error {
	return insertRelatedApplications(s, m.Table(), patentID, objList(rec.Data(), "parent_applications"))
}

// child_applications and parent_applications share one row shape.
func insertRelatedApplications(s *sqlite.Session, table, patentID string, apps []map[string]interface{}) error {
	for _, app := range apps {
		err := execInsert(s, table, `
		INSERT INTO `+table+` (
			patent_id, application_number, relation_type,
			representative_publication, primary_language,
			priority_date, filing_date, title
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			patentID,
			strOr(app, "application_number"),
			strOr(app, "relation_type"),
			strOr(app, "representative_publication"),
			strOr(app, "primary_language"),
			normalizeDate(app["priority_date"]),
			normalizeDate(app["filing_date"]),
			strOr(app, "title"),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// PriorityApplicationMapper stores the applications that established the
// earliest priority date.
type PriorityApplicationMapper struct{}

func (m *PriorityApplicationMapper) Table() string { return "priority_applications" }

func (m *PriorityApplicationMapper) CreateTable(s *sqlite.Session) error {
	return createTable(s, m.Table(), `
	CREATE TABLE IF NOT EXISTS priority_applications (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		patent_id TEXT NOT NULL,
		application_number TEXT,
		representative_publication TEXT,
		primary_language TEXT,
		priority_date DATETIME,
		filing_date DATETIME,
		title TEXT,
		FOREIGN KEY (patent_id) REFERENCES patents (patent_id) ON DELETE CASCADE
	);`)
}

func (m *PriorityApplicationMapper) Insert(s *sqlite.Session, patentID string, rec Record) error {
	for _, pa := range objList(rec.Data(), "priority_applications") {
		err := execInsert(s, m.Table(), `
		INSERT INTO priority_applications (
			patent_id, application_number, representative_publication, primary_language,
			priority_date, filing_date, title
		) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			patentID,
			strOr(pa, "application_number"),
			strOr(pa, "representative_publication"),
			strOr(pa, "primary_language"),
			normalizeDate(pa["priority_date"]),
			normalizeDate(pa["filing_date"]),
			strOr(pa, "title"),
		)
		if err != nil {
			return err
		}
	}
	return nil
}
