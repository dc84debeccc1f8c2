package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/badgehub/badgehub/pkg/metadata"
)

// ============================================================================
// Row scanning
// ============================================================================

const projectColumns = `slug, git, owner_id, latest_revision, draft_revision, created_at, updated_at, deleted_at`

func scanProject(row pgx.Row) (*metadata.Project, error) {
	var p metadata.Project
	if err := row.Scan(&p.Slug, &p.Git, &p.OwnerID, &p.LatestRevision, &p.DraftRevision,
		&p.CreatedAt, &p.UpdatedAt, &p.DeletedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// versionRow is a version with its surrogate key.
type versionRow struct {
	ID          int64
	Revision    int
	AppMetadata metadata.AppMetadata
	PublishedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

const versionColumns = `id, revision, app_metadata, published_at, created_at, updated_at`

func scanVersion(row pgx.Row) (*versionRow, error) {
	var v versionRow
	var raw []byte
	if err := row.Scan(&v.ID, &v.Revision, &raw, &v.PublishedAt, &v.CreatedAt, &v.UpdatedAt); err != nil {
		return nil, err
	}
	if err := decodeAppMetadata(raw, &v.AppMetadata); err != nil {
		return nil, err
	}
	return &v, nil
}

func (v *versionRow) toDomain(slug string) metadata.VersionDetails {
	return metadata.VersionDetails{
		ProjectSlug: slug,
		Revision:    v.Revision,
		AppMetadata: v.AppMetadata,
		PublishedAt: v.PublishedAt,
		CreatedAt:   v.CreatedAt,
		UpdatedAt:   v.UpdatedAt,
	}
}

const fileColumns = `dir, name, ext, mimetype, size_of_content, sha256, image_width, image_height, created_at, updated_at`

func scanFile(row pgx.CollectableRow) (metadata.FileMetadata, error) {
	var f metadata.FileMetadata
	err := row.Scan(&f.Dir, &f.Name, &f.Ext, &f.Mimetype, &f.SizeOfContent, &f.SHA256,
		&f.ImageWidth, &f.ImageHeight, &f.CreatedAt, &f.UpdatedAt)
	return f, err
}

func encodeAppMetadata(md metadata.AppMetadata) ([]byte, error) {
	raw, err := json.Marshal(md)
	if err != nil {
		return nil, fmt.Errorf("encode app metadata: %w", err)
	}
	return raw, nil
}

func decodeAppMetadata(raw []byte, md *metadata.AppMetadata) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, md); err != nil {
		return fmt.Errorf("decode app metadata: %w", err)
	}
	return nil
}

// ============================================================================
// Lookups
// ============================================================================

// noRows turns pgx.ErrNoRows into (nil, nil).
func noRows[T any](v *T, err error) (*T, error) {
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

// liveProject loads a non-deleted project. lock appends a row lock clause.
func liveProject(ctx context.Context, q querier, slug, lock string) (*metadata.Project, error) {
	sql := `SELECT ` + projectColumns + ` FROM projects WHERE slug = $1 AND deleted_at IS NULL` + lock
	return noRows(scanProject(q.QueryRow(ctx, sql, slug)))
}

// draftVersion loads the open draft of a live project. The project row stays
// locked until tx ends, so a concurrent publish cannot stamp the draft
// underneath a writer.
func draftVersion(ctx context.Context, tx pgx.Tx, slug string) (*metadata.Project, *versionRow, error) {
	p, err := liveProject(ctx, tx, slug, " FOR NO KEY UPDATE")
	if err != nil || p == nil || p.DraftRevision == nil {
		return p, nil, err
	}
	v, err := noRows(scanVersion(tx.QueryRow(ctx,
		`SELECT `+versionColumns+` FROM versions WHERE project_slug = $1 AND revision = $2 AND published_at IS NULL`,
		slug, *p.DraftRevision)))
	return p, v, err
}

// resolveVersion resolves sel against a live project. Latest only resolves
// to a published version.
func resolveVersion(ctx context.Context, q querier, slug string, sel metadata.RevisionSelector) (*metadata.Project, *versionRow, error) {
	p, err := liveProject(ctx, q, slug, "")
	if err != nil || p == nil {
		return nil, nil, err
	}
	rev, ok := sel.Resolve(p.LatestRevision, p.DraftRevision)
	if !ok {
		return nil, nil, nil
	}
	v, err := noRows(scanVersion(q.QueryRow(ctx,
		`SELECT `+versionColumns+` FROM versions WHERE project_slug = $1 AND revision = $2`, slug, rev)))
	if err != nil || v == nil {
		return nil, nil, err
	}
	if sel.Kind() == metadata.RevisionLatest && v.PublishedAt == nil {
		return nil, nil, nil
	}
	return p, v, nil
}

func touchProject(ctx context.Context, tx pgx.Tx, slug string, at time.Time) error {
	_, err := tx.Exec(ctx, `UPDATE projects SET updated_at = $2 WHERE slug = $1`, slug, at)
	return err
}
