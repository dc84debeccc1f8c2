package gormstore

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/badgehub/badgehub/pkg/metadata"
	"github.com/badgehub/badgehub/pkg/metadata/models"
)

// ============================================
// FILES
// ============================================

func (s *GORMStore) WriteDraftFileMetadata(ctx context.Context, slug string, pathParts []string, file metadata.UploadedFile, sha256 string) error {
	fp, err := metadata.ParseFilePath(pathParts)
	if err != nil {
		return err
	}
	mimetype := file.Mimetype
	if mimetype == "" {
		mimetype = metadata.DetectMimeType(fp.FullPath(), "")
	}

	return s.write(ctx, func(tx *gorm.DB) error {
		_, draft, err := draftVersion(s.forUpdate(tx), ctx, slug)
		if err != nil {
			return err
		}
		if draft == nil {
			return metadata.NewNoDraftError(slug)
		}

		at := now()
		row := models.File{
			VersionID:     draft.ID,
			Dir:           fp.Dir,
			Name:          fp.Name,
			Ext:           fp.Ext,
			Mimetype:      mimetype,
			SizeOfContent: file.Size,
			SHA256:        sha256,
			ImageWidth:    file.ImageWidth,
			ImageHeight:   file.ImageHeight,
			CreatedAt:     at,
			UpdatedAt:     at,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "version_id"}, {Name: "dir"}, {Name: "name"}, {Name: "ext"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"mimetype", "size_of_content", "sha256", "image_width", "image_height", "updated_at", "deleted_at",
			}),
		}).Create(&row).Error; err != nil {
			return err
		}
		return touchProject(tx, slug, at)
	})
}

func (s *GORMStore) DeleteDraftFile(ctx context.Context, slug string, path string) error {
	fp, err := metadata.ParsePathString(path)
	if err != nil {
		return err
	}

	return s.write(ctx, func(tx *gorm.DB) error {
		_, draft, err := draftVersion(s.forUpdate(tx), ctx, slug)
		if err != nil {
			return err
		}
		if draft == nil {
			return metadata.NewNoDraftError(slug)
		}

		at := now()
		res := tx.Model(&models.File{}).
			Where("version_id = ? AND dir = ? AND name = ? AND ext = ? AND deleted_at IS NULL", draft.ID, fp.Dir, fp.Name, fp.Ext).
			Updates(map[string]any{"deleted_at": at, "updated_at": at})
		if res.Error != nil || res.RowsAffected == 0 {
			return res.Error
		}
		return touchProject(tx, slug, at)
	})
}

func (s *GORMStore) GetFileMetadata(ctx context.Context, slug string, sel metadata.RevisionSelector, path string) (*metadata.FileMetadata, error) {
	fp, err := metadata.ParsePathString(path)
	if err != nil {
		return nil, nil
	}

	p, v, err := resolveVersion(s.db, ctx, slug, sel)
	if err != nil || v == nil {
		return nil, err
	}

	row, err := findOne[models.File](s.db, ctx,
		"version_id = ? AND dir = ? AND name = ? AND ext = ? AND deleted_at IS NULL", v.ID, fp.Dir, fp.Name, fp.Ext)
	if err != nil || row == nil {
		return nil, err
	}

	f := row.ToDomain()
	f.Hydrate(p.Slug, v.Revision, v.PublishedAt != nil)
	return &f, nil
}
