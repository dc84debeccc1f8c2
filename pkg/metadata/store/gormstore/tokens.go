package gormstore

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/badgehub/badgehub/pkg/metadata"
	"github.com/badgehub/badgehub/pkg/metadata/models"
)

// ============================================
// API TOKENS
// ============================================

// CreateProjectAPIToken replaces any existing token of the project. The
// project row must exist; a soft-deleted project still counts.
func (s *GORMStore) CreateProjectAPIToken(ctx context.Context, slug, keyHash string) error {
	at := now()
	row := models.ProjectAPIToken{ProjectSlug: slug, KeyHash: keyHash, CreatedAt: at, LastUsedAt: &at}

	return s.write(ctx, func(tx *gorm.DB) error {
		p, err := findOne[models.Project](s.forUpdate(tx), ctx, "slug = ?", slug)
		if err != nil {
			return err
		}
		if p == nil {
			return metadata.NewProjectNotFoundError(slug)
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "project_slug"}},
			DoUpdates: clause.AssignmentColumns([]string{"key_hash", "created_at", "last_used_at"}),
		}).Create(&row).Error
	})
}

func (s *GORMStore) GetProjectAPITokenHash(ctx context.Context, slug string) (string, bool, error) {
	row, err := findOne[models.ProjectAPIToken](s.db, ctx, "project_slug = ?", slug)
	if err != nil || row == nil {
		return "", false, err
	}
	return row.KeyHash, true, nil
}

func (s *GORMStore) GetProjectAPITokenMetadata(ctx context.Context, slug string) (*metadata.APITokenMetadata, error) {
	row, err := findOne[models.ProjectAPIToken](s.db, ctx, "project_slug = ?", slug)
	if err != nil || row == nil {
		return nil, err
	}
	return row.ToMetadata(), nil
}

func (s *GORMStore) RevokeProjectAPIToken(ctx context.Context, slug string) error {
	return s.write(ctx, func(tx *gorm.DB) error {
		return tx.Where("project_slug = ?", slug).Delete(&models.ProjectAPIToken{}).Error
	})
}

func (s *GORMStore) MarkProjectAPITokenUsed(ctx context.Context, slug string, at time.Time) error {
	return s.write(ctx, func(tx *gorm.DB) error {
		return tx.Model(&models.ProjectAPIToken{}).
			Where("project_slug = ?", slug).
			Update("last_used_at", at.UTC()).Error
	})
}
