package postgres

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/badgehub/badgehub/internal/logger"
	"github.com/badgehub/badgehub/pkg/metadata"
)

// ============================================================================
// Projects
// ============================================================================

// InsertProject upserts the project row and opens its revision-0 draft if
// the project never had one. Re-inserting a tombstoned slug resurrects it.
func (s *Store) InsertProject(ctx context.Context, project metadata.NewProject, ts *metadata.ProjectTimestamps) error {
	at := now()
	createdAt, updatedAt := at, at
	keepCreated := true
	if ts != nil {
		if !ts.CreatedAt.IsZero() {
			createdAt = ts.CreatedAt.UTC()
			keepCreated = false
		}
		if !ts.UpdatedAt.IsZero() {
			updatedAt = ts.UpdatedAt.UTC()
		}
	}

	initial, err := encodeAppMetadata(metadata.AppMetadata{})
	if err != nil {
		return err
	}

	err = s.withTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
			INSERT INTO projects (slug, git, owner_id, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (slug) DO UPDATE SET
				git        = EXCLUDED.git,
				owner_id   = EXCLUDED.owner_id,
				deleted_at = NULL,
				updated_at = EXCLUDED.updated_at,
				created_at = CASE WHEN $6 THEN projects.created_at ELSE EXCLUDED.created_at END`,
			project.Slug, project.Git, project.OwnerID, createdAt, updatedAt, keepCreated); err != nil {
			return fmt.Errorf("upsert project: %w", err)
		}

		if _, err := tx.Exec(ctx, `
			INSERT INTO versions (project_slug, revision, app_metadata, created_at, updated_at)
			VALUES ($1, 0, $2, $3, $4)
			ON CONFLICT DO NOTHING`,
			project.Slug, initial, createdAt, updatedAt); err != nil {
			return fmt.Errorf("create initial version: %w", err)
		}

		_, err := tx.Exec(ctx, `
			UPDATE projects SET
				draft_revision  = COALESCE(draft_revision, 0),
				latest_revision = COALESCE(latest_revision, 0)
			WHERE slug = $1`, project.Slug)
		return err
	})
	if err != nil {
		return mapPgError(err, "InsertProject", project.Slug)
	}

	logger.DebugCtx(ctx, "Project inserted", logger.KeySlug, project.Slug)
	return nil
}

// UpdateProject applies the allow-listed subset of changes. Column names
// come from metadata.UpdatableProjectColumns, never from the caller.
func (s *Store) UpdateProject(ctx context.Context, slug string, changes metadata.ProjectChanges) error {
	allowed := changes.Allowed()
	if len(allowed) == 0 {
		return nil
	}

	cols := make([]string, 0, len(allowed))
	for col := range allowed {
		cols = append(cols, col)
	}
	sort.Strings(cols)

	sets := make([]string, 0, len(cols)+1)
	args := []any{slug}
	for _, col := range cols {
		args = append(args, allowed[col])
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	args = append(args, now())
	sets = append(sets, fmt.Sprintf("updated_at = $%d", len(args)))

	_, err := s.pool.Exec(ctx, `UPDATE projects SET `+strings.Join(sets, ", ")+` WHERE slug = $1`, args...)
	return mapPgError(err, "UpdateProject", slug)
}

// DeleteProject tombstones the project. Versions, files and event history
// are retained.
func (s *Store) DeleteProject(ctx context.Context, slug string) error {
	at := now()
	_, err := s.pool.Exec(ctx,
		`UPDATE projects SET deleted_at = $2, updated_at = $2 WHERE slug = $1 AND deleted_at IS NULL`, slug, at)
	return mapPgError(err, "DeleteProject", slug)
}

func (s *Store) GetProject(ctx context.Context, slug string, sel metadata.RevisionSelector) (*metadata.ProjectDetails, error) {
	p, v, err := resolveVersion(ctx, s.pool, slug, sel)
	if err != nil {
		return nil, mapPgError(err, "GetProject", slug)
	}
	if v == nil {
		return nil, nil
	}

	rows, err := s.pool.Query(ctx,
		`SELECT `+fileColumns+` FROM files WHERE version_id = $1 AND deleted_at IS NULL ORDER BY dir, name, ext`, v.ID)
	if err != nil {
		return nil, mapPgError(err, "GetProject", slug)
	}
	files, err := pgx.CollectRows(rows, scanFile)
	if err != nil {
		return nil, mapPgError(err, "GetProject", slug)
	}

	published := v.PublishedAt != nil
	for i := range files {
		files[i].Hydrate(p.Slug, v.Revision, published)
	}

	details := &metadata.ProjectDetails{
		Slug:           p.Slug,
		Git:            p.Git,
		OwnerID:        p.OwnerID,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
		LatestRevision: p.LatestRevision,
		DraftRevision:  p.DraftRevision,
		Version:        v.toDomain(p.Slug),
	}
	details.Version.Files = files
	if details.Version.Files == nil {
		details.Version.Files = []metadata.FileMetadata{}
	}
	return details, nil
}

// GetProjectSummaries joins each live project to its latest (or draft)
// version and filters in metadata.BuildProjectSummaries.
func (s *Store) GetProjectSummaries(ctx context.Context, q metadata.ProjectQuery) ([]metadata.ProjectSummary, error) {
	revisionColumn := "p.latest_revision"
	published := " AND v.published_at IS NOT NULL"
	if q.Draft {
		revisionColumn, published = "p.draft_revision", ""
	}

	args := []any{}
	owner := ""
	if q.OwnerID != "" {
		args = append(args, q.OwnerID)
		owner = " AND p.owner_id = $1"
	}

	rows, err := s.pool.Query(ctx, `
		SELECT p.slug, p.git, p.owner_id, p.created_at, p.updated_at,
		       v.revision, v.published_at, v.app_metadata
		FROM projects p
		JOIN versions v ON v.project_slug = p.slug AND v.revision = `+revisionColumn+`
		WHERE p.deleted_at IS NULL`+published+owner, args...)
	if err != nil {
		return nil, mapPgError(err, "GetProjectSummaries", "")
	}
	candidates, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (metadata.SummaryCandidate, error) {
		var c metadata.SummaryCandidate
		var raw []byte
		if err := row.Scan(&c.Project.Slug, &c.Project.Git, &c.Project.OwnerID, &c.Project.CreatedAt,
			&c.Project.UpdatedAt, &c.Revision, &c.PublishedAt, &raw); err != nil {
			return c, err
		}
		return c, decodeAppMetadata(raw, &c.AppMetadata)
	})
	if err != nil {
		return nil, mapPgError(err, "GetProjectSummaries", "")
	}

	installs, err := s.distinctInstalls(ctx)
	if err != nil {
		return nil, mapPgError(err, "GetProjectSummaries", "")
	}
	for i := range candidates {
		candidates[i].Installs = installs[candidates[i].Project.Slug]
	}
	return metadata.BuildProjectSummaries(candidates, q), nil
}

// distinctInstalls counts distinct installing badges per project.
func (s *Store) distinctInstalls(ctx context.Context) (map[string]int64, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT project_slug, COUNT(DISTINCT badge_id)
		FROM event_reports
		WHERE event_type = $1
		GROUP BY project_slug`, string(metadata.EventInstall))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int64)
	for rows.Next() {
		var slug string
		var n int64
		if err := rows.Scan(&slug, &n); err != nil {
			return nil, err
		}
		out[slug] = n
	}
	return out, rows.Err()
}
