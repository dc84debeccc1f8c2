package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/badgehub/badgehub/pkg/metadata"
)

// Version is one revision of a project. A nil PublishedAt marks the draft.
type Version struct {
	ID          uint                                     `gorm:"primaryKey" json:"id"`
	ProjectSlug string                                   `gorm:"not null;size:255;uniqueIndex:idx_versions_slug_revision,priority:1" json:"project_slug"`
	Revision    int                                      `gorm:"not null;uniqueIndex:idx_versions_slug_revision,priority:2" json:"revision"`
	AppMetadata datatypes.JSONType[metadata.AppMetadata] `json:"app_metadata"`
	PublishedAt *time.Time                               `json:"published_at,omitempty"`
	CreatedAt   time.Time                                `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time                                `gorm:"not null" json:"updated_at"`
}

// TableName returns the table name for Version.
func (Version) TableName() string {
	return "versions"
}

// ToDomain converts the row to the contract type without files.
func (v *Version) ToDomain() metadata.VersionDetails {
	return metadata.VersionDetails{
		ProjectSlug: v.ProjectSlug,
		Revision:    v.Revision,
		AppMetadata: v.AppMetadata.Data(),
		PublishedAt: v.PublishedAt,
		CreatedAt:   v.CreatedAt,
		UpdatedAt:   v.UpdatedAt,
	}
}
