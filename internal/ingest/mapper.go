package ingest

import (
	"github.com/turtacn/patentlake/internal/infrastructure/database/sqlite"
	apperrors "github.com/turtacn/patentlake/pkg/errors"
)

// TableMapper owns exactly one child table: its DDL and the projection of a
// record into rows of that table.  Mappers never open sessions themselves;
// the coordinator hands them an active one so all tables of a record share a
// single transaction.
type TableMapper interface {
	Table() string
	CreateTable(s *sqlite.Session) error
	Insert(s *sqlite.Session, patentID string, rec Record) error
}

// ChildMappers returns every child-table mapper in registration order.  The
// coordinator runs them after the root patents insert so foreign keys always
// have their parent row in place.
func ChildMappers() []TableMapper {
	return []TableMapper{
		&InventorMapper{},
		&AssigneeMapper{},
		&PriorArtKeywordMapper{},
		&EventMapper{},
		&ExternalLinkMapper{},
		&ImageMapper{},
		&ClassificationMapper{},
		&ClaimMapper{},
		&ApplicationClaimingPriorityMapper{},
		&WorldwideApplicationMapper{},
		&PatentCitationMapper{},
		&CitedByMapper{},
		&LegalEventMapper{},
		&ConceptMapper{},
		&ChildApplicationMapper{},
		&ParentApplicationMapper{},
		&PriorityApplicationMapper{},
		&NonPatentCitationMapper{},
		&SimilarDocumentMapper{},
	}
}

func createTable(s *sqlite.Session, table, ddl string) error {
	if _, err := s.Exec(ddl); err != nil {
		return apperrors.Wrap(err, apperrors.CodeIngestSchemaFailed, "create table "+table)
	}
	return nil
}

func execInsert(s *sqlite.Session, table, query string, args ...interface{}) error {
	if _, err := s.Exec(query, args...); err != nil {
		return apperrors.Wrap(err, apperrors.CodeStorageWriteFailed, "insert into "+table)
	}
	return nil
}
