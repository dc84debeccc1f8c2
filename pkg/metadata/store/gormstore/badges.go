package gormstore

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/badgehub/badgehub/pkg/metadata"
	"github.com/badgehub/badgehub/pkg/metadata/models"
)

// ============================================
// BADGES & EVENTS
// ============================================

// RegisterBadge upserts by id. The first non-null mac sticks.
func (s *GORMStore) RegisterBadge(ctx context.Context, id string, mac *string) error {
	at := now()
	row := models.RegisteredBadge{ID: id, Mac: mac, CreatedAt: at, LastSeenAt: at}

	return s.write(ctx, func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"mac":          gorm.Expr("COALESCE(registered_badges.mac, excluded.mac)"),
				"last_seen_at": at,
			}),
		}).Create(&row).Error
	})
}

func (s *GORMStore) GetRegisteredBadge(ctx context.Context, id string) (*metadata.RegisteredBadge, error) {
	row, err := findOne[models.RegisteredBadge](s.db, ctx, "id = ?", id)
	if err != nil || row == nil {
		return nil, err
	}
	b := row.ToDomain()
	return &b, nil
}

func (s *GORMStore) ReportEvent(ctx context.Context, report metadata.EventReport) error {
	if !report.EventType.Valid() {
		return metadata.ErrInvalidInput
	}
	row := models.EventReport{
		ID:          uuid.New().String(),
		ProjectSlug: report.ProjectSlug,
		Revision:    report.Revision,
		BadgeID:     report.BadgeID,
		EventType:   string(report.EventType),
		CreatedAt:   now(),
	}
	return s.write(ctx, func(tx *gorm.DB) error {
		return tx.Create(&row).Error
	})
}
