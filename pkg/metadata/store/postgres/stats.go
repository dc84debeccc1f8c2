package postgres

import (
	"context"
	"time"

	"github.com/badgehub/badgehub/internal/logger"
	"github.com/badgehub/badgehub/pkg/metadata"
)

// ============================================================================
// Stats
// ============================================================================

// GetStats counts projects, authors and badges live. Event totals come from
// the event_report_totals materialized view and lag until RefreshReports.
func (s *Store) GetStats(ctx context.Context) (*metadata.Stats, error) {
	var stats metadata.Stats
	err := s.pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM projects WHERE deleted_at IS NULL),
			(SELECT COUNT(DISTINCT owner_id) FROM projects WHERE deleted_at IS NULL AND owner_id IS NOT NULL),
			(SELECT COUNT(*) FROM registered_badges)`).
		Scan(&stats.Projects, &stats.Authors, &stats.Badges)
	if err != nil {
		return nil, mapPgError(err, "GetStats", "")
	}

	rows, err := s.pool.Query(ctx, `SELECT event_type, total, projects FROM event_report_totals`)
	if err != nil {
		return nil, mapPgError(err, "GetStats", "")
	}
	defer rows.Close()

	totals := make(map[metadata.EventType]metadata.EventTotals)
	for rows.Next() {
		var et string
		var t metadata.EventTotals
		if err := rows.Scan(&et, &t.Total, &t.Projects); err != nil {
			return nil, mapPgError(err, "GetStats", "")
		}
		totals[metadata.EventType(et)] = t
	}
	if err := rows.Err(); err != nil {
		return nil, mapPgError(err, "GetStats", "")
	}

	stats.ApplyEventTotals(totals)
	return &stats, nil
}

// RefreshReports rebuilds event_report_totals without blocking readers.
func (s *Store) RefreshReports(ctx context.Context) error {
	start := time.Now()
	if _, err := s.pool.Exec(ctx, `REFRESH MATERIALIZED VIEW CONCURRENTLY event_report_totals`); err != nil {
		return mapPgError(err, "RefreshReports", "")
	}
	logger.DebugCtx(ctx, "Event report totals refreshed", logger.Elapsed(start))
	return nil
}
