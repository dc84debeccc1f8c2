package models

import (
	"time"

	"github.com/badgehub/badgehub/pkg/metadata"
)

// File is the metadata of one file in a version. Its identity is
// (version_id, dir, name, ext); the bytes live in the object store.
type File struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	VersionID     uint       `gorm:"not null;uniqueIndex:idx_files_version_path,priority:1" json:"version_id"`
	Dir           string     `gorm:"not null;default:'';uniqueIndex:idx_files_version_path,priority:2" json:"dir"`
	Name          string     `gorm:"not null;uniqueIndex:idx_files_version_path,priority:3" json:"name"`
	Ext           string     `gorm:"not null;default:'';uniqueIndex:idx_files_version_path,priority:4" json:"ext"`
	Mimetype      string     `gorm:"not null;size:255" json:"mimetype"`
	SizeOfContent int64      `gorm:"not null" json:"size_of_content"`
	SHA256        string     `gorm:"column:sha256;not null;size:64" json:"sha256"`
	ImageWidth    *int       `json:"image_width,omitempty"`
	ImageHeight   *int       `json:"image_height,omitempty"`
	CreatedAt     time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"not null" json:"updated_at"`
	DeletedAt     *time.Time `json:"deleted_at,omitempty"`
}

// TableName returns the table name for File.
func (File) TableName() string {
	return "files"
}

// ToDomain converts the row to the contract type. Computed fields are not
// filled; call Hydrate on the result.
func (f *File) ToDomain() metadata.FileMetadata {
	return metadata.FileMetadata{
		Dir:           f.Dir,
		Name:          f.Name,
		Ext:           f.Ext,
		Mimetype:      f.Mimetype,
		SizeOfContent: f.SizeOfContent,
		SHA256:        f.SHA256,
		ImageWidth:    f.ImageWidth,
		ImageHeight:   f.ImageHeight,
		CreatedAt:     f.CreatedAt,
		UpdatedAt:     f.UpdatedAt,
	}
}
