package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/badgehub/badgehub/pkg/metadata"
)

// ============================================================================
// Badges & Events
// ============================================================================

// RegisterBadge upserts by id and refreshes last_seen_at. The first
// non-null mac is kept.
func (s *Store) RegisterBadge(ctx context.Context, id string, mac *string) error {
	at := now()
	_, err := s.pool.Exec(ctx, `
		INSERT INTO registered_badges (id, mac, created_at, last_seen_at)
		VALUES ($1, $2, $3, $3)
		ON CONFLICT (id) DO UPDATE SET
			mac          = COALESCE(registered_badges.mac, EXCLUDED.mac),
			last_seen_at = EXCLUDED.last_seen_at`, id, mac, at)
	return mapPgError(err, "RegisterBadge", "")
}

func (s *Store) GetRegisteredBadge(ctx context.Context, id string) (*metadata.RegisteredBadge, error) {
	var b metadata.RegisteredBadge
	err := s.pool.QueryRow(ctx,
		`SELECT id, mac, created_at, last_seen_at FROM registered_badges WHERE id = $1`, id).
		Scan(&b.ID, &b.Mac, &b.CreatedAt, &b.LastSeenAt)
	found, err := noRows(&b, err)
	return found, mapPgError(err, "GetRegisteredBadge", "")
}

// ReportEvent appends a usage fact. Reports are not checked against
// existing projects or badges.
func (s *Store) ReportEvent(ctx context.Context, report metadata.EventReport) error {
	if !report.EventType.Valid() {
		return metadata.ErrInvalidInput
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO event_reports (id, project_slug, revision, badge_id, event_type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		uuid.New(), report.ProjectSlug, report.Revision, report.BadgeID, string(report.EventType), now())
	return mapPgError(err, "ReportEvent", report.ProjectSlug)
}
