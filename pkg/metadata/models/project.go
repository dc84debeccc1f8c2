package models

import (
	"time"

	"github.com/badgehub/badgehub/pkg/metadata"
)

// Project is the aggregate root row. DeletedAt is a plain nullable column
// rather than gorm.DeletedAt: every query filters it explicitly.
type Project struct {
	Slug           string     `gorm:"primaryKey;size:255" json:"slug"`
	Git            *string    `gorm:"type:text" json:"git,omitempty"`
	OwnerID        *string    `gorm:"column:owner_id;size:255;index" json:"owner_id,omitempty"`
	LatestRevision *int       `json:"latest_revision,omitempty"`
	DraftRevision  *int       `json:"draft_revision,omitempty"`
	CreatedAt      time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"not null" json:"updated_at"`
	DeletedAt      *time.Time `gorm:"index" json:"deleted_at,omitempty"`
}

// TableName returns the table name for Project.
func (Project) TableName() string {
	return "projects"
}

// ToDomain converts the row to the contract type.
func (p *Project) ToDomain() metadata.Project {
	return metadata.Project{
		Slug:           p.Slug,
		Git:            p.Git,
		OwnerID:        p.OwnerID,
		LatestRevision: p.LatestRevision,
		DraftRevision:  p.DraftRevision,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
		DeletedAt:      p.DeletedAt,
	}
}
