package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/badgehub/badgehub/pkg/metadata"
)

// ============================================================================
// Files
// ============================================================================

// WriteDraftFileMetadata upserts a file of the open draft. Rewriting a
// deleted path brings it back.
func (s *Store) WriteDraftFileMetadata(ctx context.Context, slug string, pathParts []string, file metadata.UploadedFile, sha256 string) error {
	fp, err := metadata.ParseFilePath(pathParts)
	if err != nil {
		return err
	}
	mimetype := file.Mimetype
	if mimetype == "" {
		mimetype = metadata.DetectMimeType(fp.FullPath(), "")
	}

	err = s.withTx(ctx, func(tx pgx.Tx) error {
		_, draft, err := draftVersion(ctx, tx, slug)
		if err != nil {
			return err
		}
		if draft == nil {
			return metadata.NewNoDraftError(slug)
		}

		at := now()
		if _, err := tx.Exec(ctx, `
			INSERT INTO files (version_id, dir, name, ext, mimetype, size_of_content, sha256,
			                   image_width, image_height, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
			ON CONFLICT (version_id, dir, name, ext) DO UPDATE SET
				mimetype        = EXCLUDED.mimetype,
				size_of_content = EXCLUDED.size_of_content,
				sha256          = EXCLUDED.sha256,
				image_width     = EXCLUDED.image_width,
				image_height    = EXCLUDED.image_height,
				updated_at      = EXCLUDED.updated_at,
				deleted_at      = NULL`,
			draft.ID, fp.Dir, fp.Name, fp.Ext, mimetype, file.Size, sha256,
			file.ImageWidth, file.ImageHeight, at); err != nil {
			return err
		}
		return touchProject(ctx, tx, slug, at)
	})
	return mapPgError(err, "WriteDraftFileMetadata", slug)
}

// DeleteDraftFile tombstones a file of the open draft. A missing path is
// not an error; a missing draft is.
func (s *Store) DeleteDraftFile(ctx context.Context, slug string, path string) error {
	fp, err := metadata.ParsePathString(path)
	if err != nil {
		return err
	}

	err = s.withTx(ctx, func(tx pgx.Tx) error {
		_, draft, err := draftVersion(ctx, tx, slug)
		if err != nil {
			return err
		}
		if draft == nil {
			return metadata.NewNoDraftError(slug)
		}

		at := now()
		tag, err := tx.Exec(ctx, `
			UPDATE files SET deleted_at = $5, updated_at = $5
			WHERE version_id = $1 AND dir = $2 AND name = $3 AND ext = $4 AND deleted_at IS NULL`,
			draft.ID, fp.Dir, fp.Name, fp.Ext, at)
		if err != nil || tag.RowsAffected() == 0 {
			return err
		}
		return touchProject(ctx, tx, slug, at)
	})
	return mapPgError(err, "DeleteDraftFile", slug)
}

func (s *Store) GetFileMetadata(ctx context.Context, slug string, sel metadata.RevisionSelector, path string) (*metadata.FileMetadata, error) {
	fp, err := metadata.ParsePathString(path)
	if err != nil {
		return nil, nil
	}

	p, v, err := resolveVersion(ctx, s.pool, slug, sel)
	if err != nil {
		return nil, mapPgError(err, "GetFileMetadata", slug)
	}
	if v == nil {
		return nil, nil
	}

	rows, err := s.pool.Query(ctx, `
		SELECT `+fileColumns+` FROM files
		WHERE version_id = $1 AND dir = $2 AND name = $3 AND ext = $4 AND deleted_at IS NULL`,
		v.ID, fp.Dir, fp.Name, fp.Ext)
	if err != nil {
		return nil, mapPgError(err, "GetFileMetadata", slug)
	}
	f, err := pgx.CollectExactlyOneRow(rows, scanFile)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, mapPgError(err, "GetFileMetadata", slug)
	}

	f.Hydrate(p.Slug, v.Revision, v.PublishedAt != nil)
	return &f, nil
}
