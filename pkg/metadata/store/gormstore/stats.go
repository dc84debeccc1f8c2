package gormstore

import (
	"context"
	"fmt"

	"github.com/badgehub/badgehub/pkg/metadata"
	"github.com/badgehub/badgehub/pkg/metadata/models"
)

// ============================================
// STATS
// ============================================

// GetStats computes every count live from the base tables. Event counts
// include projects that have since been deleted.
func (s *GORMStore) GetStats(ctx context.Context) (*metadata.Stats, error) {
	db := s.db.WithContext(ctx)
	var stats metadata.Stats

	if err := db.Model(&models.Project{}).Where("deleted_at IS NULL").Count(&stats.Projects).Error; err != nil {
		return nil, fmt.Errorf("count projects: %w", err)
	}
	if err := db.Model(&models.Project{}).
		Where("deleted_at IS NULL AND owner_id IS NOT NULL").
		Distinct("owner_id").
		Count(&stats.Authors).Error; err != nil {
		return nil, fmt.Errorf("count authors: %w", err)
	}
	if err := db.Model(&models.RegisteredBadge{}).Count(&stats.Badges).Error; err != nil {
		return nil, fmt.Errorf("count badges: %w", err)
	}

	var rows []struct {
		EventType string
		Total     int64
		Projects  int64
	}
	if err := db.Model(&models.EventReport{}).
		Select("event_type, COUNT(*) AS total, COUNT(DISTINCT project_slug) AS projects").
		Group("event_type").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("count events: %w", err)
	}

	totals := make(map[metadata.EventType]metadata.EventTotals, len(rows))
	for _, r := range rows {
		totals[metadata.EventType(r.EventType)] = metadata.EventTotals{Total: r.Total, Projects: r.Projects}
	}
	stats.ApplyEventTotals(totals)

	return &stats, nil
}

// RefreshReports is a no-op: GetStats reads the base tables directly.
func (s *GORMStore) RefreshReports(context.Context) error {
	return nil
}
