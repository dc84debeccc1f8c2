package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/badgehub/badgehub/internal/logger"
	"github.com/badgehub/badgehub/pkg/metadata"
)

// ============================================================================
// Versions
// ============================================================================

// PublishVersion stamps the draft and opens the next revision. The project
// row is locked FOR UPDATE, so concurrent publishes of one slug serialize
// behind each other and behind in-flight draft writers.
func (s *Store) PublishVersion(ctx context.Context, slug string) (int, error) {
	var published int

	err := s.withTx(ctx, func(tx pgx.Tx) error {
		p, err := liveProject(ctx, tx, slug, " FOR UPDATE")
		if err != nil {
			return err
		}
		if p == nil || p.DraftRevision == nil {
			return metadata.NewNoDraftError(slug)
		}

		draft, err := noRows(scanVersion(tx.QueryRow(ctx,
			`SELECT `+versionColumns+` FROM versions WHERE project_slug = $1 AND revision = $2 AND published_at IS NULL`,
			slug, *p.DraftRevision)))
		if err != nil {
			return err
		}
		if draft == nil {
			return metadata.NewNoDraftError(slug)
		}

		at := now()
		if _, err := tx.Exec(ctx,
			`UPDATE versions SET published_at = $2, updated_at = $2 WHERE id = $1`, draft.ID, at); err != nil {
			return fmt.Errorf("stamp draft: %w", err)
		}

		raw, err := encodeAppMetadata(draft.AppMetadata.Clone())
		if err != nil {
			return err
		}
		next := draft.Revision + 1
		if _, err := tx.Exec(ctx, `
			INSERT INTO versions (project_slug, revision, app_metadata, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $4)`, slug, next, raw, at); err != nil {
			return fmt.Errorf("open next draft: %w", err)
		}

		if _, err := tx.Exec(ctx, `
			UPDATE projects SET latest_revision = $2, draft_revision = $3, updated_at = $4
			WHERE slug = $1`, slug, draft.Revision, next, at); err != nil {
			return fmt.Errorf("advance revisions: %w", err)
		}

		published = draft.Revision
		return nil
	})
	if err != nil {
		return 0, mapPgError(err, "PublishVersion", slug)
	}

	logger.InfoCtx(ctx, "Version published", logger.KeySlug, slug, logger.KeyRevision, published)
	return published, nil
}

// UpdateDraftMetadata replaces the draft's metadata. A project without an
// open draft is left untouched.
func (s *Store) UpdateDraftMetadata(ctx context.Context, slug string, md metadata.AppMetadata) error {
	raw, err := encodeAppMetadata(md)
	if err != nil {
		return err
	}

	err = s.withTx(ctx, func(tx pgx.Tx) error {
		_, draft, err := draftVersion(ctx, tx, slug)
		if err != nil || draft == nil {
			return err
		}

		at := now()
		if _, err := tx.Exec(ctx,
			`UPDATE versions SET app_metadata = $2, updated_at = $3 WHERE id = $1`, draft.ID, raw, at); err != nil {
			return err
		}
		return touchProject(ctx, tx, slug, at)
	})
	return mapPgError(err, "UpdateDraftMetadata", slug)
}
