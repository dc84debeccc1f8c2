package models

import (
	"time"

	"github.com/badgehub/badgehub/pkg/metadata"
)

// RegisteredBadge is a physical device identity.
type RegisteredBadge struct {
	ID         string    `gorm:"primaryKey;size:255" json:"id"`
	Mac        *string   `gorm:"size:64" json:"mac,omitempty"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
	LastSeenAt time.Time `gorm:"not null" json:"last_seen_at"`
}

// TableName returns the table name for RegisteredBadge.
func (RegisteredBadge) TableName() string {
	return "registered_badges"
}

// ToDomain converts the row to the contract type.
func (b *RegisteredBadge) ToDomain() metadata.RegisteredBadge {
	return metadata.RegisteredBadge{ID: b.ID, Mac: b.Mac, CreatedAt: b.CreatedAt, LastSeenAt: b.LastSeenAt}
}

// EventReport is an append-only usage fact. Rows are never updated.
type EventReport struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	ProjectSlug string    `gorm:"not null;size:255;index" json:"project_slug"`
	Revision    int       `gorm:"not null" json:"revision"`
	BadgeID     string    `gorm:"not null;size:255" json:"badge_id"`
	EventType   string    `gorm:"not null;size:32" json:"event_type"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
}

// TableName returns the table name for EventReport.
func (EventReport) TableName() string {
	return "event_reports"
}
