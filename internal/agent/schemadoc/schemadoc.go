// Package schemadoc carries the curated documentation for every table in the
// patent store.  The agent uses it two ways: rendered to text chunks for the
// vector index, and looked up directly when merging live schema output with
// business commentary.
package schemadoc

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Column documents one column of a table.
type Column struct {
	Name        string
	Description string
}

// TableDoc documents one table: a one-line purpose statement plus per-column
// descriptions in declaration order.
type TableDoc struct {
	Name    string
	Comment string
	Columns []Column
}

// Lookup returns the doc for a table, if documented.
func Lookup(table string) (TableDoc, bool) {
	for _, d := range docs {
		if d.Name == table {
			return d, true
		}
	}
	return TableDoc{}, false
}

// All returns every table doc in declaration order.
func All() []TableDoc {
	out := make([]TableDoc, len(docs))
	copy(out, docs)
	return out
}

// TableNames lists documented tables, sorted.
func TableNames() []string {
	names := make([]string, 0, len(docs))
	for _, d := range docs {
		names = append(names, d.Name)
	}
	sort.Strings(names)
	return names
}

// Chunk renders a table doc into the text block that gets embedded for
// semantic search.
func (d TableDoc) Chunk() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Table: %s\nComment: %s\nColumns:\n", d.Name, d.Comment)
	for _, c := range d.Columns {
		fmt.Fprintf(&b, "%s: %s\n", c.Name, c.Description)
	}
	return strings.TrimRight(b.String(), "\n")
}

// CommentaryFor renders the business commentary block the extended schema
// tool appends to live DDL output.
func CommentaryFor(table string) string {
	d, ok := Lookup(table)
	if !ok {
		return fmt.Sprintf("(No extended doc found for table '%s').", table)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Table explanation for %s: %s\n", d.Name, d.Comment)
	b.WriteString("Column meanings:\n")
	for _, c := range d.Columns {
		fmt.Fprintf(&b, " - %s: %s\n", c.Name, c.Description)
	}
	return strings.TrimRight(b.String(), "\n")
}

type exportEntry struct {
	TableComment string            `json:"table_comment"`
	Columns      map[string]string `json:"columns"`
}

// ExportJSON serializes all docs as {table: {table_comment, columns}} for
// external consumers.
func ExportJSON() ([]byte, error) {
	out := make(map[string]exportEntry, len(docs))
	for _, d := range docs {
		cols := make(map[string]string, len(d.Columns))
		for _, c := range d.Columns {
			cols[c.Name] = c.Description
		}
		out[d.Name] = exportEntry{TableComment: d.Comment, Columns: cols}
	}
	return json.MarshalIndent(out, "", "  ")
}

var childKey = Column{"patent_id", "Foreign key referencing patents.patent_id; deleted together with the parent patent."}
var rowID = Column{"id", "Surrogate auto-increment row identifier."}

var docs = []TableDoc{
	{
		Name:    "patents",
		Comment: "Root table with one row per patent document; every other table (except error_logs) hangs off its patent_id.",
		Columns: []Column{
			{"patent_id", "Primary key, the full document identifier such as 'patent/US1234567B2/en'."},
			{"title", "Patent title."},
			{"type", "Document kind reported by the source, usually 'patent'."},
			{"pdf_link", "URL of the patent PDF."},
			{"publication_number", "Publication number, e.g. 'US1234567B2'."},
			{"country", "Publishing country name."},
			{"application_number", "Application number the patent issued from."},
			{"priority_date", "Earliest priority date, stored as 'YYYY-MM-DD 00:00:00'."},
			{"filing_date", "Filing date of the application, same timestamp format."},
			{"publication_date", "Publication or grant date, same timestamp format."},
			{"prior_art_date", "Cut-off date for prior art, same timestamp format."},
			{"family_id", "Identifier shared by all members of the patent family."},
			{"abstract", "Abstract text."},
			{"description_link", "URL of the full description document."},
		},
	},
	{
		Name:    "inventors",
		Comment: "Inventors named on the patent, one row each.",
		Columns: []Column{
			rowID, childKey,
			{"inventor_name", "Inventor full name."},
			{"link", "Public profile or search link for the inventor."},
			{"serpapi_link", "API link for follow-up queries about the inventor."},
		},
	},
	{
		Name:    "assignees",
		Comment: "Current assignees (owners) of the patent.",
		Columns: []Column{
			rowID, childKey,
			{"name", "Assignee name, person or organization."},
		},
	},
	{
		Name:    "prior_art_keywords",
		Comment: "Keywords the source engine associates with the patent's prior art.",
		Columns: []Column{
			rowID, childKey,
			{"keyword", "One prior-art keyword."},
		},
	},
	{
		Name:    "events",
		Comment: "Prosecution and lifecycle timeline events (filing, publication, status changes).",
		Columns: []Column{
			rowID, childKey,
			{"event_date", "When the event occurred, 'YYYY-MM-DD 00:00:00'."},
			{"title", "Event headline."},
			{"type", "Event category, e.g. 'legal-status'."},
			{"critical", "1 when the source marks the event critical, else 0."},
			{"assignee_search", "Assignee search hint attached to the event."},
			{"description", "Event description; multi-part descriptions joined with '; '."},
		},
	},
	{
		Name:    "external_links",
		Comment: "Outbound links for the patent (official registers, full-text sources).",
		Columns: []Column{
			rowID, childKey,
			{"text", "Display text of the link."},
			{"link", "Target URL."},
		},
	},
	{
		Name:    "images",
		Comment: "Drawing and figure image URLs.",
		Columns: []Column{
			rowID, childKey,
			{"image_url", "URL of one image."},
		},
	},
	{
		Name:    "classifications",
		Comment: "Patent classification codes (CPC and related schemes).",
		Columns: []Column{
			rowID, childKey,
			{"code", "Classification code, e.g. 'F16H 57/04'."},
			{"description", "Human-readable meaning of the code."},
			{"leaf", "1 when the code is a leaf node of the scheme, else 0."},
			{"first_code", "1 when this is the primary code for the patent, else 0."},
			{"is_cpc", "1 for CPC codes, 0 for other schemes."},
			{"additional", "1 when the code is supplementary, else 0."},
		},
	},
	{
		Name:    "claims",
		Comment: "Claim texts; claim_no reflects the position in the published claim list.",
		Columns: []Column{
			rowID, childKey,
			{"claim_no", "1-based claim number."},
			{"claim_txt", "Full text of the claim."},
		},
	},
	{
		Name:    "applications_claiming_priority",
		Comment: "Later applications that claim priority from this patent.",
		Columns: []Column{
			rowID, childKey,
			{"application_number", "Application number of the claiming application."},
			{"priority_date", "Its priority date, 'YYYY-MM-DD 00:00:00'."},
			{"filing_date", "Its filing date, same format."},
			{"representative_publication", "Publication number representing the application."},
			{"primary_language", "Primary language of the application."},
			{"title", "Title of the claiming application."},
		},
	},
	{
		Name:    "worldwide_applications",
		Comment: "Family applications filed around the world, flattened from a by-year grouping.",
		Columns: []Column{
			rowID, childKey,
			{"year", "Filing year group from the source; NULL when the source key was not a number."},
			{"application_number", "Application number in the foreign jurisdiction."},
			{"country_code", "Two-letter jurisdiction code, e.g. 'EP'."},
			{"document_id", "Canonical document identifier of the family member."},
			{"filing_date", "Filing date, 'YYYY-MM-DD 00:00:00'."},
			{"legal_status", "Free-form legal status, e.g. 'Active'."},
			{"legal_status_cat", "Coarse status category, e.g. 'active'."},
			{"this_app", "1 when the row refers to this patent's own application, else 0."},
		},
	},
	{
		Name:    "patent_citations",
		Comment: "Patents cited by this patent, both direct and family-to-family citations.",
		Columns: []Column{
			rowID, childKey,
			{"is_family_to_family", "0 for direct citations, 1 for family-to-family citations."},
			{"publication_number", "Publication number of the cited patent."},
			{"primary_language", "Language of the cited document."},
			{"examiner_cited", "1 when the examiner added the citation, else 0."},
			{"priority_date", "Priority date of the cited patent, 'YYYY-MM-DD 00:00:00'."},
			{"publication_date", "Publication date of the cited patent, same format."},
			{"assignee_original", "Original assignee of the cited patent."},
			{"title", "Title of the cited patent."},
			{"serpapi_link", "API link to the cited patent's details."},
			{"patent_id_ref", "Full document identifier of the cited patent."},
		},
	},
	{
		Name:    "cited_by",
		Comment: "Inverse of patent_citations: patents that cite this one.",
		Columns: []Column{
			rowID, childKey,
			{"is_family_to_family", "0 for direct citations, 1 for family-to-family citations."},
			{"publication_number", "Publication number of the citing patent."},
			{"primary_language", "Language of the citing document."},
			{"examiner_cited", "1 when the examiner added the citation, else 0."},
			{"priority_date", "Priority date of the citing patent, 'YYYY-MM-DD 00:00:00'."},
			{"publication_date", "Publication date of the citing patent, same format."},
			{"assignee_original", "Original assignee of the citing patent."},
			{"title", "Title of the citing patent."},
			{"serpapi_link", "API link to the citing patent's details."},
			{"patent_id_ref", "Full document identifier of the citing patent."},
		},
	},
	{
		Name:    "legal_events",
		Comment: "Formal legal register events such as assignments and status changes.",
		Columns: []Column{
			rowID, childKey,
			{"date", "Event date, 'YYYY-MM-DD 00:00:00'."},
			{"code", "Register event code, e.g. 'AS' for assignment."},
			{"title", "Event title."},
			{"attributes_json", "Raw event attributes serialized as a JSON array; NULL when absent."},
		},
	},
	{
		Name:    "concepts",
		Comment: "Extracted domain concepts (chemical entities, technical terms) matched to the patent text.",
		Columns: []Column{
			rowID, childKey,
			{"concept_id", "Stable concept identifier from the extraction engine."},
			{"domain", "Concept domain, e.g. 'chem'."},
			{"name", "Concept display name."},
			{"similarity", "Match confidence between 0 and 1."},
			{"sections", "Patent sections the concept appears in, ';'-separated."},
			{"count", "Number of occurrences in the patent text."},
			{"inchi_key", "InChIKey for chemical concepts."},
			{"smiles", "SMILES string for chemical concepts."},
		},
	},
	{
		Name:    "child_applications",
		Comment: "Continuations and divisionals derived from this patent.",
		Columns: []Column{
			rowID, childKey,
			{"application_number", "Application number of the child."},
			{"relation_type", "Relationship, e.g. 'Continuation'."},
			{"representative_publication", "Publication number representing the child."},
			{"primary_language", "Primary language of the child application."},
			{"priority_date", "Priority date, 'YYYY-MM-DD 00:00:00'."},
			{"filing_date", "Filing date, same format."},
			{"title", "Title of the child application."},
		},
	},
	{
		Name:    "parent_applications",
		Comment: "Applications this patent is derived from.",
		Columns: []Column{
			rowID, childKey,
			{"application_number", "Application number of the parent."},
			{"relation_type", "Relationship, e.g. 'Division'."},
			{"representative_publication", "Publication number representing the parent."},
			{"primary_language", "Primary language of the parent application."},
			{"priority_date", "Priority date, 'YYYY-MM-DD 00:00:00'."},
			{"filing_date", "Filing date, same format."},
			{"title", "Title of the parent application."},
		},
	},
	{
		Name:    "priority_applications",
		Comment: "Applications that established the earliest priority date.",
		Columns: []Column{
			rowID, childKey,
			{"application_number", "Application number of the priority application."},
			{"representative_publication", "Publication number representing it."},
			{"primary_language", "Primary language of the application."},
			{"priority_date", "Priority date, 'YYYY-MM-DD 00:00:00'."},
			{"filing_date", "Filing date, same format."},
			{"title", "Title of the priority application."},
		},
	},
	{
		Name:    "non_patent_citations",
		Comment: "Non-patent literature cited during examination (papers, manuals, standards).",
		Columns: []Column{
			rowID, childKey,
			{"citation_title", "Bibliographic citation text."},
			{"examiner_cited", "1 when the examiner added the citation, else 0."},
		},
	},
	{
		Name:    "similar_documents",
		Comment: "Documents the search engine considers similar; not necessarily citations.",
		Columns: []Column{
			rowID, childKey,
			{"is_patent", "1 when the similar document is itself a patent, else 0."},
			{"doc_patent_id", "Document identifier of the similar patent, when applicable."},
			{"serpapi_link", "API link to the similar document."},
			{"publication_number", "Publication number, when the document is a patent."},
			{"primary_language", "Language of the similar document."},
			{"publication_date", "Publication date, 'YYYY-MM-DD 00:00:00'."},
			{"title", "Title of the similar document."},
		},
	},
	{
		Name:    "error_logs",
		Comment: "Ingestion failure journal; rows are independent of any patent and survive rollbacks.",
		Columns: []Column{
			rowID,
			{"error_message", "Human-readable failure description, prefixed with the source line."},
			{"stack_trace", "Stack trace captured at the failure site."},
			{"created_at", "UTC timestamp of the failure, 'YYYY-MM-DD HH:MM:SS'."},
		},
	},
}
