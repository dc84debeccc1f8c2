package gormstore

import (
	"context"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/badgehub/badgehub/internal/logger"
	"github.com/badgehub/badgehub/pkg/metadata"
	"github.com/badgehub/badgehub/pkg/metadata/models"
)

// ============================================
// PROJECTS
// ============================================

func (s *GORMStore) InsertProject(ctx context.Context, project metadata.NewProject, ts *metadata.ProjectTimestamps) error {
	at := now()
	row := models.Project{
		Slug:      project.Slug,
		Git:       project.Git,
		OwnerID:   project.OwnerID,
		CreatedAt: at,
		UpdatedAt: at,
	}
	updates := []string{"git", "owner_id", "deleted_at", "updated_at"}
	if ts != nil {
		if !ts.CreatedAt.IsZero() {
			row.CreatedAt = ts.CreatedAt.UTC()
			updates = append(updates, "created_at")
		}
		if !ts.UpdatedAt.IsZero() {
			row.UpdatedAt = ts.UpdatedAt.UTC()
		}
	}

	err := s.write(ctx, func(tx *gorm.DB) error {
		// Resurrects a tombstoned project: deleted_at takes the inserted NULL.
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "slug"}},
			DoUpdates: clause.AssignmentColumns(updates),
		}).Create(&row).Error; err != nil {
			return fmt.Errorf("upsert project: %w", err)
		}

		initial := models.Version{
			ProjectSlug: project.Slug,
			Revision:    0,
			AppMetadata: datatypes.NewJSONType(metadata.AppMetadata{}),
			CreatedAt:   row.CreatedAt,
			UpdatedAt:   row.UpdatedAt,
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&initial).Error; err != nil {
			return fmt.Errorf("create initial version: %w", err)
		}

		return tx.Model(&models.Project{}).Where("slug = ?", project.Slug).UpdateColumns(map[string]any{
			"draft_revision":  gorm.Expr("COALESCE(draft_revision, 0)"),
			"latest_revision": gorm.Expr("COALESCE(latest_revision, 0)"),
		}).Error
	})
	if err != nil {
		return err
	}

	logger.DebugCtx(ctx, "Project inserted", logger.KeySlug, project.Slug)
	return nil
}

func (s *GORMStore) UpdateProject(ctx context.Context, slug string, changes metadata.ProjectChanges) error {
	allowed := changes.Allowed()
	if len(allowed) == 0 {
		return nil
	}
	allowed["updated_at"] = now()

	return s.write(ctx, func(tx *gorm.DB) error {
		return tx.Model(&models.Project{}).Where("slug = ?", slug).Updates(allowed).Error
	})
}

func (s *GORMStore) DeleteProject(ctx context.Context, slug string) error {
	at := now()
	return s.write(ctx, func(tx *gorm.DB) error {
		return tx.Model(&models.Project{}).
			Where("slug = ? AND deleted_at IS NULL", slug).
			Updates(map[string]any{"deleted_at": at, "updated_at": at}).Error
	})
}

func (s *GORMStore) GetProject(ctx context.Context, slug string, sel metadata.RevisionSelector) (*metadata.ProjectDetails, error) {
	p, v, err := resolveVersion(s.db, ctx, slug, sel)
	if err != nil || v == nil {
		return nil, err
	}

	var files []models.File
	if err := s.db.WithContext(ctx).
		Where("version_id = ? AND deleted_at IS NULL", v.ID).
		Order("dir, name, ext").
		Find(&files).Error; err != nil {
		return nil, err
	}

	details := &metadata.ProjectDetails{
		Slug:           p.Slug,
		Git:            p.Git,
		OwnerID:        p.OwnerID,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
		LatestRevision: p.LatestRevision,
		DraftRevision:  p.DraftRevision,
		Version:        v.ToDomain(),
	}
	details.Version.Files = make([]metadata.FileMetadata, 0, len(files))
	for i := range files {
		f := files[i].ToDomain()
		f.Hydrate(p.Slug, v.Revision, v.PublishedAt != nil)
		details.Version.Files = append(details.Version.Files, f)
	}
	return details, nil
}

// summaryRow is one project joined to its selected version.
type summaryRow struct {
	Slug        string
	Git         *string
	OwnerID     *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Revision    int
	PublishedAt *time.Time
	AppMetadata datatypes.JSONType[metadata.AppMetadata]
}

func (s *GORMStore) GetProjectSummaries(ctx context.Context, q metadata.ProjectQuery) ([]metadata.ProjectSummary, error) {
	revisionColumn := "p.latest_revision"
	if q.Draft {
		revisionColumn = "p.draft_revision"
	}

	query := s.db.WithContext(ctx).
		Table("projects AS p").
		Select("p.slug, p.git, p.owner_id, p.created_at, p.updated_at, v.revision, v.published_at, v.app_metadata").
		Joins("JOIN versions v ON v.project_slug = p.slug AND v.revision = " + revisionColumn).
		Where("p.deleted_at IS NULL")
	if !q.Draft {
		query = query.Where("v.published_at IS NOT NULL")
	}
	if q.OwnerID != "" {
		query = query.Where("p.owner_id = ?", q.OwnerID)
	}

	var rows []summaryRow
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}

	installs, err := s.distinctInstalls(ctx)
	if err != nil {
		return nil, err
	}

	candidates := make([]metadata.SummaryCandidate, 0, len(rows))
	for _, r := range rows {
		candidates = append(candidates, metadata.SummaryCandidate{
			Project: metadata.Project{
				Slug:      r.Slug,
				Git:       r.Git,
				OwnerID:   r.OwnerID,
				CreatedAt: r.CreatedAt,
				UpdatedAt: r.UpdatedAt,
			},
			Revision:    r.Revision,
			PublishedAt: r.PublishedAt,
			AppMetadata: r.AppMetadata.Data(),
			Installs:    installs[r.Slug],
		})
	}
	return metadata.BuildProjectSummaries(candidates, q), nil
}

// distinctInstalls counts distinct installing badges per project.
func (s *GORMStore) distinctInstalls(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		ProjectSlug string
		Installs    int64
	}
	if err := s.db.WithContext(ctx).Model(&models.EventReport{}).
		Select("project_slug, COUNT(DISTINCT badge_id) AS installs").
		Where("event_type = ?", string(metadata.EventInstall)).
		Group("project_slug").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.ProjectSlug] = r.Installs
	}
	return out, nil
}
