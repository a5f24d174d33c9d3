package ingest

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/patentlake/internal/infrastructure/database/sqlite"
	apperrors "github.com/turtacn/patentlake/pkg/errors"
)

// fullRecord exercises every child table, including the shape quirks: string
// and object assignees, list and string event descriptions, a malformed
// worldwide_applications year key, a non-list year value and a single-object
// concepts match.
const fullRecord = `{"patent_id":"patent/US1234567B2/en","data":{"title":"Widget","type":"patent","pdf":"https://p/x.pdf","publication_number":"US1234567B2","country":"United States","application_number":"US16/000001","priority_date":"2019-01-15","filing_date":"2019-06-01","publication_date":"2021-03-10","prior_art_date":"2019-01-15","family_id":"FAM1","abstract":"An abstract.","description_link":"https://d","inventors":[{"name":"Alice","link":"l1","serpapi_link":"s1"},{"name":"Bob"}],"assignees":["Acme Corp",{"name":"Beta LLC"},""],"prior_art_keywords":["gears","sprockets"],"events":[{"date":"2019-06-01","title":"Filed","type":"legal-status","critical":true,"description":["a","b"]},{"title":"Published","critical":false,"description":"plain"}],"external_links":[{"text":"USPTO","link":"https://u"}],"images":["https://img/1.png"],"classifications":[{"code":"F16H","description":"Gearing","leaf":true,"first_code":false,"is_cpc":true,"additional":false}],"claims":["claim one","claim two","claim three"],"applications_claiming_priority":[{"application_number":"US17/1","priority_date":"2019-01-15","filing_date":"2020-02-02","title":"Cont"}],"worldwide_applications":{"2019":[{"application_number":"EP19","country_code":"EP","this_app":true,"filing_date":"2019-06-01"}],"not_a_year":[{"application_number":"XX"}],"2020":"bogus"},"patent_citations":{"original":[{"publication_number":"US111","examiner_cited":true,"patent_id":"patent/US111/en"}],"family_to_family":[{"publication_number":"US222"}]},"cited_by":{"original":[{"publication_number":"US333"}]},"legal_events":[{"date":"2021-03-10","code":"AS","title":"Assignment","attributes":[{"k":"v"}]}],"concepts":{"match":{"id":"c1","domain":"chem","name":"steel","similarity":0.9,"sections":["claims","abstract"],"count":3}},"child_applications":[{"application_number":"US18/2","relation_type":"Continuation"}],"parent_applications":[{"application_number":"US15/9","relation_type":"Division"}],"priority_applications":[{"application_number":"US16/000001","priority_date":"2019-01-15"}],"non_patent_citations":[{"title":"Some paper","examiner_cited":false}],"similar_documents":[{"is_patent":true,"patent_id":"patent/US444/en","publication_date":"2020-05-05"}]}}`

func newTestService(t *testing.T) (*Service, string) {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "patent.db")
	svc := NewService(dbPath, nil, nil)
	require.NoError(t, svc.SetupDatabase(context.Background()))
	return svc, dbPath
}

func writeSource(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "in.jsonl")
	var content string
	for _, l := range lines {
		content += l + "\n"
	}
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func countRows(t *testing.T, dbPath, table string) int {
	t.Helper()
	var n int
	err := sqlite.WithReadOnlySession(dbPath, func(s *sqlite.Session) error {
		return s.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n)
	})
	require.NoError(t, err)
	return n
}

func queryNullString(t *testing.T, dbPath, query string, args ...interface{}) sql.NullString {
	t.Helper()
	var v sql.NullString
	err := sqlite.WithReadOnlySession(dbPath, func(s *sqlite.Session) error {
		return s.QueryRow(query, args...).Scan(&v)
	})
	require.NoError(t, err)
	return v
}

func queryInt(t *testing.T, dbPath, query string, args ...interface{}) int {
	t.Helper()
	var v int
	err := sqlite.WithReadOnlySession(dbPath, func(s *sqlite.Session) error {
		return s.QueryRow(query, args...).Scan(&v)
	})
	require.NoError(t, err)
	return v
}

func TestParseAndInsert_FullRecord(t *testing.T) {
	svc, dbPath := newTestService(t)
	src := writeSource(t, fullRecord)

	stats, err := svc.ParseAndInsert(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, RunStats{Records: 1, Inserted: 1}, stats)

	assert.Equal(t, 1, countRows(t, dbPath, "patents"))
	assert.Equal(t, 2, countRows(t, dbPath, "inventors"))
	assert.Equal(t, 2, countRows(t, dbPath, "assignees"), "empty assignee name must be skipped")
	assert.Equal(t, 2, countRows(t, dbPath, "prior_art_keywords"))
	assert.Equal(t, 2, countRows(t, dbPath, "events"))
	assert.Equal(t, 1, countRows(t, dbPath, "external_links"))
	assert.Equal(t, 1, countRows(t, dbPath, "images"))
	assert.Equal(t, 1, countRows(t, dbPath, "classifications"))
	assert.Equal(t, 3, countRows(t, dbPath, "claims"))
	assert.Equal(t, 1, countRows(t, dbPath, "applications_claiming_priority"))
	assert.Equal(t, 2, countRows(t, dbPath, "patent_citations"))
	assert.Equal(t, 1, countRows(t, dbPath, "cited_by"))
	assert.Equal(t, 1, countRows(t, dbPath, "legal_events"))
	assert.Equal(t, 1, countRows(t, dbPath, "concepts"))
	assert.Equal(t, 1, countRows(t, dbPath, "child_applications"))
	assert.Equal(t, 1, countRows(t, dbPath, "parent_applications"))
	assert.Equal(t, 1, countRows(t, dbPath, "priority_applications"))
	assert.Equal(t, 1, countRows(t, dbPath, "non_patent_citations"))
	assert.Equal(t, 1, countRows(t, dbPath, "similar_documents"))
	assert.Equal(t, 0, countRows(t, dbPath, "error_logs"))
}

func TestParseAndInsert_DateNormalization(t *testing.T) {
	svc, dbPath := newTestService(t)
	src := writeSource(t, fullRecord)
	_, err := svc.ParseAndInsert(context.Background(), src)
	require.NoError(t, err)

	priority := queryNullString(t, dbPath, "SELECT priority_date FROM patents WHERE patent_id = ?", "patent/US1234567B2/en")
	require.True(t, priority.Valid)
	assert.Equal(t, "2019-01-15 00:00:00", priority.String)

	pubDate := queryNullString(t, dbPath, "SELECT publication_date FROM similar_documents LIMIT 1")
	require.True(t, pubDate.Valid)
	assert.Equal(t, "2020-05-05 00:00:00", pubDate.String)
}

func TestParseAndInsert_ClaimsNumberedByPosition(t *testing.T) {
	svc, dbPath := newTestService(t)
	src := writeSource(t, fullRecord)
	_, err := svc.ParseAndInsert(context.Background(), src)
	require.NoError(t, err)

	second := queryNullString(t, dbPath, "SELECT claim_txt FROM claims WHERE claim_no = 2")
	require.True(t, second.Valid)
	assert.Equal(t, "claim two", second.String)
	assert.Equal(t, 1, queryInt(t, dbPath, "SELECT MIN(claim_no) FROM claims"))
	assert.Equal(t, 3, queryInt(t, dbPath, "SELECT MAX(claim_no) FROM claims"))
}

func TestParseAndInsert_CitationGroupsTagged(t *testing.T) {
	svc, dbPath := newTestService(t)
	src := writeSource(t, fullRecord)
	_, err := svc.ParseAndInsert(context.Background(), src)
	require.NoError(t, err)

	assert.Equal(t, 0, queryInt(t, dbPath,
		"SELECT is_family_to_family FROM patent_citations WHERE publication_number = ?", "US111"))
	assert.Equal(t, 1, queryInt(t, dbPath,
		"SELECT is_family_to_family FROM patent_citations WHERE publication_number = ?", "US222"))
	assert.Equal(t, 1, queryInt(t, dbPath,
		"SELECT examiner_cited FROM patent_citations WHERE publication_number = ?", "US111"))
}

func TestParseAndInsert_EventDescriptionAndFlags(t *testing.T) {
	svc, dbPath := newTestService(t)
	src := writeSource(t, fullRecord)
	_, err := svc.ParseAndInsert(context.Background(), src)
	require.NoError(t, err)

	filed := queryNullString(t, dbPath, "SELECT description FROM events WHERE title = ?", "Filed")
	require.True(t, filed.Valid)
	assert.Equal(t, "a; b", filed.String)
	assert.Equal(t, 1, queryInt(t, dbPath, "SELECT critical FROM events WHERE title = ?", "Filed"))

	published := queryNullString(t, dbPath, "SELECT description FROM events WHERE title = ?", "Published")
	require.True(t, published.Valid)
	assert.Equal(t, "plain", published.String)
	assert.Equal(t, 0, queryInt(t, dbPath, "SELECT critical FROM events WHERE title = ?", "Published"))
}

func TestParseAndInsert_WorldwideApplicationYears(t *testing.T) {
	svc, dbPath := newTestService(t)
	src := writeSource(t, fullRecord)
	_, err := svc.ParseAndInsert(context.Background(), src)
	require.NoError(t, err)

	// "2019" parses, "not_a_year" keeps the row with NULL year, the
	// non-list "2020" value is skipped entirely.
	assert.Equal(t, 2, countRows(t, dbPath, "worldwide_applications"))
	assert.Equal(t, 2019, queryInt(t, dbPath,
		"SELECT year FROM worldwide_applications WHERE application_number = ?", "EP19"))
	assert.Equal(t, 1, queryInt(t, dbPath,
		"SELECT COUNT(*) FROM worldwide_applications WHERE application_number = ? AND year IS NULL", "XX"))
}

func TestParseAndInsert_ConceptMatchObjectAndSections(t *testing.T) {
	svc, dbPath := newTestService(t)
	src := writeSource(t, fullRecord)
	_, err := svc.ParseAndInsert(context.Background(), src)
	require.NoError(t, err)

	sections := queryNullString(t, dbPath, "SELECT sections FROM concepts WHERE concept_id = ?", "c1")
	require.True(t, sections.Valid)
	assert.Equal(t, "claims;abstract", sections.String)
	assert.Equal(t, 3, queryInt(t, dbPath, "SELECT count FROM concepts WHERE concept_id = ?", "c1"))
}

func TestParseAndInsert_LegalEventAttributesJSON(t *testing.T) {
	svc, dbPath := newTestService(t)
	src := writeSource(t, fullRecord)
	_, err := svc.ParseAndInsert(context.Background(), src)
	require.NoError(t, err)

	attrs := queryNullString(t, dbPath, "SELECT attributes_json FROM legal_events WHERE code = ?", "AS")
	require.True(t, attrs.Valid)
	assert.JSONEq(t, `[{"k":"v"}]`, attrs.String)
}

func TestParseAndInsert_LegalEventAttributesObjectSerialized(t *testing.T) {
	svc, dbPath := newTestService(t)
	src := writeSource(t,
		`{"patent_id":"patent/US8/en","data":{"legal_events":[`+
			`{"code":"OBJ","attributes":{"k":"v"}},`+
			`{"code":"EMPTY","attributes":[]}]}}`,
	)
	_, err := svc.ParseAndInsert(context.Background(), src)
	require.NoError(t, err)

	obj := queryNullString(t, dbPath, "SELECT attributes_json FROM legal_events WHERE code = ?", "OBJ")
	require.True(t, obj.Valid, "non-list attributes are serialized, not dropped")
	assert.JSONEq(t, `{"k":"v"}`, obj.String)

	empty := queryNullString(t, dbPath, "SELECT attributes_json FROM legal_events WHERE code = ?", "EMPTY")
	assert.False(t, empty.Valid)
}

func TestParseAndInsert_RootIdempotentChildrenAppended(t *testing.T) {
	svc, dbPath := newTestService(t)
	src := writeSource(t, fullRecord)

	_, err := svc.ParseAndInsert(context.Background(), src)
	require.NoError(t, err)
	_, err = svc.ParseAndInsert(context.Background(), src)
	require.NoError(t, err)

	// The root insert is OR IGNORE, so the parent row stays unique while
	// a re-run appends a second copy of every child row.
	assert.Equal(t, 1, countRows(t, dbPath, "patents"))
	assert.Equal(t, 4, countRows(t, dbPath, "inventors"))
	assert.Equal(t, 6, countRows(t, dbPath, "claims"))
}

func TestParseAndInsert_FirstTitleWinsOnDuplicateID(t *testing.T) {
	svc, dbPath := newTestService(t)
	src := writeSource(t,
		`{"patent_id":"patent/US9/en","data":{"title":"Original title"}}`,
		`{"patent_id":"patent/US9/en","data":{"title":"Replacement title"}}`,
	)

	stats, err := svc.ParseAndInsert(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Inserted)

	assert.Equal(t, 1, countRows(t, dbPath, "patents"))
	title := queryNullString(t, dbPath,
		"SELECT title FROM patents WHERE patent_id = ?", "patent/US9/en")
	require.True(t, title.Valid)
	assert.Equal(t, "Original title", title.String)
}

func TestParseAndInsert_DecodeFailureIsolated(t *testing.T) {
	svc, dbPath := newTestService(t)
	src := writeSource(t,
		`{"patent_id":"patent/US1/en","data":{"title":"One"}}`,
		`{this is not json`,
		`{"patent_id":"patent/US2/en","data":{"title":"Two"}}`,
	)

	stats, err := svc.ParseAndInsert(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Records)
	assert.Equal(t, 2, stats.Inserted)
	assert.Equal(t, 1, stats.DecodeErrors)

	assert.Equal(t, 2, countRows(t, dbPath, "patents"))
	assert.Equal(t, 1, countRows(t, dbPath, "error_logs"))

	msg := queryNullString(t, dbPath, "SELECT error_message FROM error_logs LIMIT 1")
	require.True(t, msg.Valid)
	assert.Contains(t, msg.String, "line 2")
}

func TestParseAndInsert_MissingSourceIsFatal(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.ParseAndInsert(context.Background(), filepath.Join(t.TempDir(), "absent.jsonl"))
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeIngestSourceMissing))
}

// failingMapper aborts the fan-out after some tables already wrote rows.
type failingMapper struct{}

func (failingMapper) Table() string                          { return "boom" }
func (failingMapper) CreateTable(_ *sqlite.Session) error    { return nil }
func (failingMapper) Insert(_ *sqlite.Session, _ string, _ Record) error {
	return apperrors.New(apperrors.CodeStorageWriteFailed, "simulated mapper failure")
}

func TestInsertRecord_RollsBackWholeRecord(t *testing.T) {
	svc, dbPath := newTestService(t)

	// Fail midway so the root row and several child tables have pending
	// writes when the transaction aborts.
	svc.children = append(svc.children[:4:4], failingMapper{})

	src := writeSource(t, fullRecord)
	stats, err := svc.ParseAndInsert(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.WriteErrors)
	assert.Equal(t, 0, stats.Inserted)

	assert.Equal(t, 0, countRows(t, dbPath, "patents"))
	assert.Equal(t, 0, countRows(t, dbPath, "inventors"))
	assert.Equal(t, 0, countRows(t, dbPath, "events"))
	assert.Equal(t, 1, countRows(t, dbPath, "error_logs"))
}

func TestCascadeDelete_RemovesChildRows(t *testing.T) {
	svc, dbPath := newTestService(t)
	src := writeSource(t, fullRecord)
	_, err := svc.ParseAndInsert(context.Background(), src)
	require.NoError(t, err)

	err = sqlite.WithSession(dbPath, func(s *sqlite.Session) error {
		_, derr := s.Exec("DELETE FROM patents WHERE patent_id = ?", "patent/US1234567B2/en")
		return derr
	})
	require.NoError(t, err)

	assert.Equal(t, 0, countRows(t, dbPath, "patents"))
	assert.Equal(t, 0, countRows(t, dbPath, "inventors"))
	assert.Equal(t, 0, countRows(t, dbPath, "claims"))
	assert.Equal(t, 0, countRows(t, dbPath, "patent_citations"))
}

func TestSetupDatabase_Idempotent(t *testing.T) {
	svc, dbPath := newTestService(t)
	require.NoError(t, svc.SetupDatabase(context.Background()))
	assert.Equal(t, 0, countRows(t, dbPath, "patents"))
}
