package postgres

import (
	"context"
	"time"

	"github.com/badgehub/badgehub/pkg/metadata"
)

// ============================================================================
// API Tokens
// ============================================================================

// CreateProjectAPIToken replaces any existing token of the project.
func (s *Store) CreateProjectAPIToken(ctx context.Context, slug, keyHash string) error {
	at := now()
	_, err := s.pool.Exec(ctx, `
		INSERT INTO project_api_tokens (project_slug, key_hash, created_at, last_used_at)
		VALUES ($1, $2, $3, $3)
		ON CONFLICT (project_slug) DO UPDATE SET
			key_hash     = EXCLUDED.key_hash,
			created_at   = EXCLUDED.created_at,
			last_used_at = EXCLUDED.last_used_at`, slug, keyHash, at)
	return mapPgError(err, "CreateProjectAPIToken", slug)
}

func (s *Store) GetProjectAPITokenHash(ctx context.Context, slug string) (string, bool, error) {
	var hash string
	err := s.pool.QueryRow(ctx, `SELECT key_hash FROM project_api_tokens WHERE project_slug = $1`, slug).Scan(&hash)
	found, err := noRows(&hash, err)
	if err != nil {
		return "", false, mapPgError(err, "GetProjectAPITokenHash", slug)
	}
	if found == nil {
		return "", false, nil
	}
	return hash, true, nil
}

func (s *Store) GetProjectAPITokenMetadata(ctx context.Context, slug string) (*metadata.APITokenMetadata, error) {
	md := metadata.APITokenMetadata{ProjectSlug: slug}
	err := s.pool.QueryRow(ctx,
		`SELECT created_at, last_used_at FROM project_api_tokens WHERE project_slug = $1`, slug).
		Scan(&md.CreatedAt, &md.LastUsedAt)
	found, err := noRows(&md, err)
	return found, mapPgError(err, "GetProjectAPITokenMetadata", slug)
}

func (s *Store) RevokeProjectAPIToken(ctx context.Context, slug string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM project_api_tokens WHERE project_slug = $1`, slug)
	return mapPgError(err, "RevokeProjectAPIToken", slug)
}

func (s *Store) MarkProjectAPITokenUsed(ctx context.Context, slug string, at time.Time) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE project_api_tokens SET last_used_at = $2 WHERE project_slug = $1`, slug, at.UTC())
	return mapPgError(err, "MarkProjectAPITokenUsed", slug)
}
