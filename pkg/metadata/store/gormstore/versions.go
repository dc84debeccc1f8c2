package gormstore

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/badgehub/badgehub/internal/logger"
	"github.com/badgehub/badgehub/pkg/metadata"
	"github.com/badgehub/badgehub/pkg/metadata/models"
)

// ============================================
// VERSIONS
// ============================================

// PublishVersion freezes the draft and opens the next revision in one
// transaction. The project row is locked first, so concurrent publishes of
// the same slug queue behind each other and each sees the previous result.
// Files are not carried over to the new draft.
func (s *GORMStore) PublishVersion(ctx context.Context, slug string) (int, error) {
	var published int

	err := s.write(ctx, func(tx *gorm.DB) error {
		var p models.Project
		if err := s.forUpdate(tx).Where("slug = ? AND deleted_at IS NULL", slug).Take(&p).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return metadata.NewNoDraftError(slug)
			}
			return err
		}
		if p.DraftRevision == nil {
			return metadata.NewNoDraftError(slug)
		}

		draft, err := findOne[models.Version](tx, ctx,
			"project_slug = ? AND revision = ? AND published_at IS NULL", slug, *p.DraftRevision)
		if err != nil {
			return err
		}
		if draft == nil {
			return metadata.NewNoDraftError(slug)
		}

		at := now()
		if err := tx.Model(draft).Updates(map[string]any{"published_at": at, "updated_at": at}).Error; err != nil {
			return fmt.Errorf("stamp draft: %w", err)
		}

		next := models.Version{
			ProjectSlug: slug,
			Revision:    draft.Revision + 1,
			AppMetadata: datatypes.NewJSONType(draft.AppMetadata.Data().Clone()),
			CreatedAt:   at,
			UpdatedAt:   at,
		}
		if err := tx.Create(&next).Error; err != nil {
			if isUniqueConstraintError(err) {
				return metadata.NewNoDraftError(slug)
			}
			return fmt.Errorf("open next draft: %w", err)
		}

		if err := tx.Model(&models.Project{}).Where("slug = ?", slug).Updates(map[string]any{
			"latest_revision": draft.Revision,
			"draft_revision":  next.Revision,
			"updated_at":      at,
		}).Error; err != nil {
			return fmt.Errorf("advance revisions: %w", err)
		}

		published = draft.Revision
		return nil
	})
	if err != nil {
		return 0, err
	}

	logger.InfoCtx(ctx, "Version published", logger.KeySlug, slug, logger.KeyRevision, published)
	return published, nil
}

func (s *GORMStore) UpdateDraftMetadata(ctx context.Context, slug string, md metadata.AppMetadata) error {
	return s.write(ctx, func(tx *gorm.DB) error {
		_, draft, err := draftVersion(s.forUpdate(tx), ctx, slug)
		if err != nil || draft == nil {
			return err
		}

		at := now()
		if err := tx.Model(draft).Updates(map[string]any{
			"app_metadata": datatypes.NewJSONType(md),
			"updated_at":   at,
		}).Error; err != nil {
			return err
		}
		return touchProject(tx, slug, at)
	})
}
