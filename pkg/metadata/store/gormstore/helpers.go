package gormstore

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/badgehub/badgehub/pkg/metadata"
	"github.com/badgehub/badgehub/pkg/metadata/models"
)

// ============================================================================
// Generic GORM Helpers
// ============================================================================
//
// These helpers operate on the raw *gorm.DB so they work both on the store
// handle and inside a transaction.

// findOne retrieves the first record of type T matching query/args.
// A missing row is reported as (nil, nil): absence is not an error here.
//
// Example:
//
//	p, err := findOne[models.Project](db, ctx, "slug = ? AND deleted_at IS NULL", slug)
func findOne[T any](db *gorm.DB, ctx context.Context, query string, args ...any) (*T, error) {
	var result T
	if err := db.WithContext(ctx).Where(query, args...).Take(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

// now returns the store clock, truncated to microseconds so values survive
// a round trip through PostgreSQL unchanged.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// liveProject loads a non-deleted project.
func liveProject(db *gorm.DB, ctx context.Context, slug string) (*models.Project, error) {
	return findOne[models.Project](db, ctx, "slug = ? AND deleted_at IS NULL", slug)
}

// draftVersion loads the open draft of a live project, or nil if it has none.
// Writers pass a locking db so a concurrent publish waits for them.
func draftVersion(db *gorm.DB, ctx context.Context, slug string) (*models.Project, *models.Version, error) {
	p, err := liveProject(db, ctx, slug)
	if err != nil || p == nil || p.DraftRevision == nil {
		return p, nil, err
	}
	v, err := findOne[models.Version](db, ctx,
		"project_slug = ? AND revision = ? AND published_at IS NULL", slug, *p.DraftRevision)
	return p, v, err
}

// resolveVersion resolves sel against a live project. Latest only resolves
// to a published version.
func resolveVersion(db *gorm.DB, ctx context.Context, slug string, sel metadata.RevisionSelector) (*models.Project, *models.Version, error) {
	p, err := liveProject(db, ctx, slug)
	if err != nil || p == nil {
		return nil, nil, err
	}
	rev, ok := sel.Resolve(p.LatestRevision, p.DraftRevision)
	if !ok {
		return nil, nil, nil
	}
	v, err := findOne[models.Version](db, ctx, "project_slug = ? AND revision = ?", slug, rev)
	if err != nil || v == nil {
		return nil, nil, err
	}
	if sel.Kind() == metadata.RevisionLatest && v.PublishedAt == nil {
		return nil, nil, nil
	}
	return p, v, nil
}

// touchProject bumps updated_at after a change below the project.
func touchProject(tx *gorm.DB, slug string, at time.Time) error {
	return tx.Model(&models.Project{}).Where("slug = ?", slug).Update("updated_at", at).Error
}
