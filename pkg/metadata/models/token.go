package models

import (
	"time"

	"github.com/badgehub/badgehub/pkg/metadata"
)

// ProjectAPIToken is the single live API credential of a project.
type ProjectAPIToken struct {
	ProjectSlug string     `gorm:"primaryKey;size:255" json:"project_slug"`
	KeyHash     string     `gorm:"not null" json:"-"`
	CreatedAt   time.Time  `gorm:"not null" json:"created_at"`
	LastUsedAt  *time.Time `json:"last_used_at,omitempty"`
}

// TableName returns the table name for ProjectAPIToken.
func (ProjectAPIToken) TableName() string {
	return "project_api_tokens"
}

// ToMetadata returns the token's timestamps without its hash.
func (t *ProjectAPIToken) ToMetadata() *metadata.APITokenMetadata {
	return &metadata.APITokenMetadata{
		ProjectSlug: t.ProjectSlug,
		CreatedAt:   t.CreatedAt,
		LastUsedAt:  t.LastUsedAt,
	}
}
