package metadata

import (
	"context"
	"time"
)

// ============================================================================
// Component contracts
// ============================================================================
//
// Reads report absence with a nil result and a nil error. Errors are reserved
// for invalid state transitions and engine failures.

// ProjectRepository manages the project aggregate root.
type ProjectRepository interface {
	// InsertProject creates the project, or resurrects and updates it when
	// the slug exists. Afterwards the project always has an open draft.
	InsertProject(ctx context.Context, project NewProject, ts *ProjectTimestamps) error

	// UpdateProject applies the allowed columns in changes and ignores the rest.
	UpdateProject(ctx context.Context, slug string, changes ProjectChanges) error

	// DeleteProject tombstones the project. Versions and files are retained.
	DeleteProject(ctx context.Context, slug string) error

	// GetProject resolves sel and returns the hydrated project, or nil.
	GetProject(ctx context.Context, slug string, sel RevisionSelector) (*ProjectDetails, error)

	// GetProjectSummaries lists non-deleted projects matching q.
	GetProjectSummaries(ctx context.Context, q ProjectQuery) ([]ProjectSummary, error)
}

// VersionManager drives the draft/published state machine.
type VersionManager interface {
	// PublishVersion freezes the draft and opens the next one. It returns
	// the revision that was published, or ErrNoDraft.
	PublishVersion(ctx context.Context, slug string) (int, error)

	// UpdateDraftMetadata replaces the draft's app metadata.
	UpdateDraftMetadata(ctx context.Context, slug string, md AppMetadata) error
}

// FileCatalog stores per-version file metadata.
type FileCatalog interface {
	WriteDraftFileMetadata(ctx context.Context, slug string, pathParts []string, file UploadedFile, sha256 string) error
	DeleteDraftFile(ctx context.Context, slug string, path string) error
	GetFileMetadata(ctx context.Context, slug string, sel RevisionSelector, path string) (*FileMetadata, error)
}

// BadgeRegistry records physical devices and their usage events.
type BadgeRegistry interface {
	// RegisterBadge upserts the badge. A known mac is never overwritten.
	RegisterBadge(ctx context.Context, id string, mac *string) error

	// GetRegisteredBadge returns the badge, or nil.
	GetRegisteredBadge(ctx context.Context, id string) (*RegisteredBadge, error)

	// ReportEvent appends an event to the history.
	ReportEvent(ctx context.Context, report EventReport) error
}

// TokenVault holds the single API token of each project.
type TokenVault interface {
	CreateProjectAPIToken(ctx context.Context, slug, keyHash string) error
	GetProjectAPITokenHash(ctx context.Context, slug string) (hash string, found bool, err error)
	GetProjectAPITokenMetadata(ctx context.Context, slug string) (*APITokenMetadata, error)
	RevokeProjectAPIToken(ctx context.Context, slug string) error

	// MarkProjectAPITokenUsed records a successful authentication.
	MarkProjectAPITokenUsed(ctx context.Context, slug string, at time.Time) error
}

// StatsAggregator computes hub-wide counts.
type StatsAggregator interface {
	GetStats(ctx context.Context) (*Stats, error)

	// RefreshReports recomputes pre-aggregated report data. It is safe to
	// call at any time and may be a no-op.
	RefreshReports(ctx context.Context) error
}

// MetadataStore is the full contract every engine implements.
type MetadataStore interface {
	ProjectRepository
	VersionManager
	FileCatalog
	BadgeRegistry
	TokenVault
	StatsAggregator

	// Healthcheck verifies the engine can serve requests.
	Healthcheck(ctx context.Context) error

	// Close releases the engine's handle.
	Close() error
}
