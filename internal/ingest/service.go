package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/patentlake/internal/infrastructure/database/sqlite"
	"github.com/turtacn/patentlake/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/patentlake/internal/infrastructure/monitoring/metrics"
	apperrors "github.com/turtacn/patentlake/pkg/errors"
)

// Service coordinates an ingestion run: schema setup across every mapper,
// then one atomic session per record fanned out over all tables.  A failed
// record rolls back completely and lands in error_logs; the run itself only
// aborts when the source file cannot be opened.
type Service struct {
	dbPath   string
	root     *PatentMapper
	children []TableMapper
	errorLog *ErrorLogMapper
	log      logging.Logger
	metrics  *metrics.AppMetrics
}

// RunStats summarizes one ParseAndInsert run.
type RunStats struct {
	Records      int
	Inserted     int
	DecodeErrors int
	WriteErrors  int
}

func NewService(dbPath string, log logging.Logger, m *metrics.AppMetrics) *Service {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Service{
		dbPath:   dbPath,
		root:     &PatentMapper{},
		children: ChildMappers(),
		errorLog: &ErrorLogMapper{},
		log:      log.Named("ingest"),
		metrics:  m,
	}
}

// SetupDatabase creates all tables in one session.  Every DDL statement is
// idempotent, so repeat runs against an existing database are no-ops.
func (s *Service) SetupDatabase(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.log.Info("setting up database schema", logging.String("db_path", s.dbPath))
	start := time.Now()
	err := sqlite.WithSession(s.dbPath, func(sess *sqlite.Session) error {
		if err := s.root.CreateTable(sess); err != nil {
			return err
		}
		for _, m := range s.children {
			if err := m.CreateTable(sess); err != nil {
				return err
			}
		}
		return s.errorLog.CreateTable(sess)
	})
	s.observeSession("schema", start)
	if err != nil {
		return err
	}
	s.log.Info("database schema ready", logging.Int("tables", len(s.children)+2))
	return nil
}

// ParseAndInsert streams the JSONL source and ingests every record.  Decode
// and write failures are logged, recorded in error_logs and skipped; the
// remaining lines are still processed.  A missing source file is fatal.
func (s *Service) ParseAndInsert(ctx context.Context, sourcePath string) (RunStats, error) {
	var stats RunStats

	runLog := s.log.With(
		logging.String("run_id", uuid.NewString()),
		logging.String("source", sourcePath),
	)

	reader, err := OpenSource(sourcePath)
	if err != nil {
		runLog.Error("cannot open source file", logging.Err(err))
		if s.metrics != nil {
			s.metrics.IngestRunsTotal.WithLabelValues("source_missing").Inc()
		}
		return stats, err
	}
	defer reader.Close()

	runLog.Info("ingestion run started")
	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		line, ok := reader.Next()
		if !ok {
			break
		}
		stats.Records++

		if line.Err != nil {
			stats.DecodeErrors++
			runLog.Error("json decode error", logging.Int("line", line.Ordinal), logging.Err(line.Err))
			s.recordFailure(runLog,
				fmt.Sprintf("JSON decode error at line %d", line.Ordinal),
				apperrors.GetStack(line.Err))
			s.metrics.ObserveRecord("decode_error", 0)
			continue
		}

		start := time.Now()
		if err := s.insertRecord(line.Record); err != nil {
			stats.WriteErrors++
			s.observeSession("record", start)
			runLog.Error("record insert failed",
				logging.Int("line", line.Ordinal),
				logging.String("patent_id", line.Record.PatentID()),
				logging.Err(err))
			s.recordFailure(runLog,
				fmt.Sprintf("[Line %d] %s", line.Ordinal, err.Error()),
				apperrors.GetStack(err))
			s.metrics.ObserveRecord("write_error", time.Since(start))
			continue
		}
		s.observeSession("record", start)
		s.metrics.ObserveRecord("ok", time.Since(start))
		stats.Inserted++
	}

	if err := reader.Err(); err != nil {
		runLog.Error("source read failed", logging.Err(err))
		return stats, err
	}

	if s.metrics != nil {
		s.metrics.IngestRunsTotal.WithLabelValues("completed").Inc()
	}
	runLog.Info("ingestion run finished",
		logging.Int("records", stats.Records),
		logging.Int("inserted", stats.Inserted),
		logging.Int("decode_errors", stats.DecodeErrors),
		logging.Int("write_errors", stats.WriteErrors),
	)
	return stats, nil
}

// insertRecord writes one record across every table inside a single
// transaction.  The root row goes first so child foreign keys resolve; any
// mapper error rolls the whole record back.
func (s *Service) insertRecord(rec Record) error {
	return sqlite.WithSession(s.dbPath, func(sess *sqlite.Session) error {
		patentID, err := s.root.Insert(sess, rec)
		if err != nil {
			return err
		}
		for _, m := range s.children {
			if err := m.Insert(sess, patentID, rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// recordFailure writes one error_logs row in its own session, after the
// failed record's transaction has already been rolled back.  When even that
// write fails the failure is kept in the log stream only.
func (s *Service) recordFailure(log logging.Logger, message, stack string) {
	start := time.Now()
	err := sqlite.WithSession(s.dbPath, func(sess *sqlite.Session) error {
		return s.errorLog.Insert(sess, message, stack)
	})
	s.observeSession("error_log", start)
	result := "ok"
	if err != nil {
		result = "degraded"
		log.Error("failed to persist error log entry", logging.Err(err), logging.String("original_error", message))
	}
	if s.metrics != nil {
		s.metrics.ErrorLogWritesTotal.WithLabelValues(result).Inc()
	}
}

func (s *Service) observeSession(operation string, start time.Time) {
	if s.metrics == nil {
		return
	}
	s.metrics.SessionDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
