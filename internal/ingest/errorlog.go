package ingest

import (
	"time"

	"github.com/turtacn/patentlake/internal/infrastructure/database/sqlite"
)

// ErrorLogMapper owns the error_logs table.  It has no foreign key on
// purpose: failure rows must survive even when no patent row was written.
type ErrorLogMapper struct{}

func (m *ErrorLogMapper) Table() string { return "error_logs" }

func (m *ErrorLogMapper) CreateTable(s *sqlite.Session) error {
	return createTable(s, m.Table(), `
	CREATE TABLE IF NOT EXISTS error_logs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		error_message TEXT,
		stack_trace TEXT,
		created_at DATETIME
	);`)
}

// Insert records one failure with a UTC timestamp.
func (m *ErrorLogMapper) Insert(s *sqlite.Session, message, stack string) error {
	createdAt := time.Now().UTC().Format(timestampLayout)
	return execInsert(s, m.Table(), `
	INSERT INTO error_logs (error_message, stack_trace, created_at)
	VALUES (?, ?, ?)`,
		message, stack, createdAt)
}
