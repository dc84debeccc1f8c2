package metadata

import (
	"fmt"
	"time"
)

// ============================================================================
// Projects
// ============================================================================

// NewProject is the input to InsertProject.
type NewProject struct {
	Slug    string
	Git     *string
	OwnerID *string
}

// ProjectTimestamps optionally overrides the timestamps InsertProject writes.
// Zero fields are left to the store.
type ProjectTimestamps struct {
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Project is the stored project row.
type Project struct {
	Slug           string
	Git            *string
	OwnerID        *string
	LatestRevision *int
	DraftRevision  *int
	CreatedAt      time.Time
	UpdatedAt      time.Time
	DeletedAt      *time.Time
}

// ProjectChanges is the loosely-typed patch accepted by UpdateProject.
// Only the keys listed in UpdatableProjectColumns are applied; the rest are dropped.
type ProjectChanges map[string]any

// UpdatableProjectColumns is the allow-list UpdateProject filters against.
var UpdatableProjectColumns = []string{
	"git",
	"latest_revision",
	"draft_revision",
	"owner_id",
	"deleted_at",
}

// Allowed returns the subset of c whose keys are updatable columns.
func (c ProjectChanges) Allowed() map[string]any {
	out := make(map[string]any, len(c))
	for _, col := range UpdatableProjectColumns {
		if v, ok := c[col]; ok {
			out[col] = v
		}
	}
	return out
}

// ProjectDetails is the hydrated read model returned by GetProject.
type ProjectDetails struct {
	Slug      string
	Git       *string
	OwnerID   *string
	CreatedAt time.Time
	UpdatedAt time.Time

	LatestRevision *int
	DraftRevision  *int

	Version VersionDetails
}

// VersionDetails is one resolved revision with its live files.
type VersionDetails struct {
	ProjectSlug string
	Revision    int
	AppMetadata AppMetadata
	PublishedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Files       []FileMetadata
}

// Published reports whether the version is immutable history.
func (v VersionDetails) Published() bool { return v.PublishedAt != nil }

// ============================================================================
// Files
// ============================================================================

// UploadedFile describes an upload whose bytes were stored elsewhere.
type UploadedFile struct {
	Mimetype    string
	Size        int64
	ImageWidth  *int
	ImageHeight *int
}

// FileMetadata is the hydrated read model of one file.
type FileMetadata struct {
	Dir           string
	Name          string
	Ext           string
	Mimetype      string
	SizeOfContent int64
	SHA256        string
	ImageWidth    *int
	ImageHeight   *int
	CreatedAt     time.Time
	UpdatedAt     time.Time

	FullPath      string
	SizeFormatted string
	URL           string
}

// ============================================================================
// Badges and events
// ============================================================================

// RegisteredBadge is a physical device known to the hub.
type RegisteredBadge struct {
	ID         string
	Mac        *string
	CreatedAt  time.Time
	LastSeenAt time.Time
}

// EventType is the wire-visible kind of an EventReport.
type EventType string

const (
	EventInstall EventType = "install_count"
	EventLaunch  EventType = "launch_count"
	EventCrash   EventType = "crash_count"
)

// EventTypes lists every valid EventType.
var EventTypes = []EventType{EventInstall, EventLaunch, EventCrash}

// Valid reports whether t is one of EventTypes.
func (t EventType) Valid() bool {
	switch t {
	case EventInstall, EventLaunch, EventCrash:
		return true
	}
	return false
}

// ParseEventType validates s as an EventType.
func ParseEventType(s string) (EventType, error) {
	t := EventType(s)
	if !t.Valid() {
		return "", fmt.Errorf("%w: event type %q", ErrInvalidInput, s)
	}
	return t, nil
}

// EventReport is one append-only usage fact.
type EventReport struct {
	ProjectSlug string
	Revision    int
	BadgeID     string
	EventType   EventType
}

// ============================================================================
// Tokens
// ============================================================================

// APITokenMetadata exposes a token's lifecycle timestamps without its hash.
type APITokenMetadata struct {
	ProjectSlug string
	CreatedAt   time.Time
	LastUsedAt  *time.Time
}

// ============================================================================
// Stats
// ============================================================================

// Stats are hub-wide aggregate counts.
type Stats struct {
	Projects          int64 `json:"projects" yaml:"projects"`
	Authors           int64 `json:"authors" yaml:"authors"`
	Badges            int64 `json:"badges" yaml:"badges"`
	Installs          int64 `json:"installs" yaml:"installs"`
	InstalledProjects int64 `json:"installed_projects" yaml:"installed_projects"`
	Launches          int64 `json:"launches" yaml:"launches"`
	LaunchedProjects  int64 `json:"launched_projects" yaml:"launched_projects"`
	Crashes           int64 `json:"crashes" yaml:"crashes"`
	CrashedProjects   int64 `json:"crashed_projects" yaml:"crashed_projects"`
}

// EventTotals is the per-type aggregate of the event history.
type EventTotals struct {
	Total    int64
	Projects int64
}

// ApplyEventTotals copies per-type totals into the matching Stats fields.
func (s *Stats) ApplyEventTotals(totals map[EventType]EventTotals) {
	s.Installs, s.InstalledProjects = totals[EventInstall].Total, totals[EventInstall].Projects
	s.Launches, s.LaunchedProjects = totals[EventLaunch].Total, totals[EventLaunch].Projects
	s.Crashes, s.CrashedProjects = totals[EventCrash].Total, totals[EventCrash].Projects
}
