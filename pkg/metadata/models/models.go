// Package models holds the GORM row types of the metadata schema.
package models

// AllModels returns all GORM models for auto-migration.
func AllModels() []any {
	return []any{
		&Project{},
		&Version{},
		&File{},
		&RegisteredBadge{},
		&EventReport{},
		&ProjectAPIToken{},
	}
}

// PostMigrationStatements are executed after AutoMigrate. Struct tags cannot
// express a partial unique index portably, so it is created here.
var PostMigrationStatements = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_versions_one_draft ON versions (project_slug) WHERE published_at IS NULL`,
	`CREATE INDEX IF NOT EXISTS idx_event_reports_type_slug ON event_reports (event_type, project_slug)`,
}
