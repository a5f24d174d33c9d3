package fetch

import (
	"context"
	"time"

	"github.com/turtacn/patentlake/internal/config"
	"github.com/turtacn/patentlake/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/patentlake/internal/infrastructure/monitoring/metrics"
)

// detailsAPI abstracts the details endpoint so the service can be exercised
// without network access.
type detailsAPI interface {
	FetchDetails(ctx context.Context, rawID string) (map[string]interface{}, error)
}

// Service orchestrates one fetch run: identifiers come out of the CSV
// exports, already-complete patents are skipped, the rest are fetched with
// retries and appended to the output JSONL.
type Service struct {
	cfg     config.FetchConfig
	client  detailsAPI
	log     logging.Logger
	metrics *metrics.AppMetrics
}

// Stats summarizes one fetch run.
type Stats struct {
	Total   int
	Fetched int
	Skipped int
	Failed  int
}

func NewService(cfg config.FetchConfig, client detailsAPI, log logging.Logger, m *metrics.AppMetrics) *Service {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Service{cfg: cfg, client: client, log: log.Named("fetch"), metrics: m}
}

// Run executes the full fetch flow.  Per-patent failures are logged and
// counted but do not stop the run; only input problems abort it.
func (s *Service) Run(ctx context.Context) (Stats, error) {
	var stats Stats

	ids, err := LoadPatentIDs(s.cfg)
	if err != nil {
		return stats, err
	}
	stats.Total = len(ids)
	existing := LoadExistingRecords(s.cfg.OutputJSONL, s.log)

	out, err := OpenAppender(s.cfg.OutputJSONL)
	if err != nil {
		return stats, err
	}
	defer out.Close()

	s.log.Info("fetch run started",
		logging.Int("patents", len(ids)),
		logging.Int("existing", len(existing)))

	for _, rawID := range ids {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		if data, ok := existing[rawID]; ok && s.cfg.SkipIfHasPDF {
			if _, hasPDF := data["pdf"]; hasPDF {
				s.log.Debug("skipping already fetched patent", logging.String("patent_id", rawID))
				stats.Skipped++
				s.metrics.ObserveFetch("skipped", 0)
				continue
			}
		}

		start := time.Now()
		data, err := s.fetchWithRetries(ctx, rawID)
		if err != nil {
			stats.Failed++
			s.metrics.ObserveFetch("failed", time.Since(start))
			continue
		}
		if err := out.Append(rawID, data); err != nil {
			return stats, err
		}
		stats.Fetched++
		s.metrics.ObserveFetch("ok", time.Since(start))
		s.log.Debug("fetched patent",
			logging.String("patent_id", rawID),
			logging.Duration("elapsed", time.Since(start)))
	}

	s.log.Info("fetch run finished",
		logging.Int("total", stats.Total),
		logging.Int("fetched", stats.Fetched),
		logging.Int("skipped", stats.Skipped),
		logging.Int("failed", stats.Failed))
	return stats, nil
}

func (s *Service) fetchWithRetries(ctx context.Context, rawID string) (map[string]interface{}, error) {
	var lastErr error
	for attempt := 1; attempt <= s.cfg.MaxRetries; attempt++ {
		data, err := s.client.FetchDetails(ctx, rawID)
		if err == nil {
			return data, nil
		}
		lastErr = err
		s.log.Error("fetch attempt failed",
			logging.String("patent_id", rawID),
			logging.Int("attempt", attempt),
			logging.Int("max_retries", s.cfg.MaxRetries),
			logging.Err(err))
		if attempt < s.cfg.MaxRetries {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(s.cfg.RetryBackoff):
			}
		}
	}
	return nil, lastErr
}
