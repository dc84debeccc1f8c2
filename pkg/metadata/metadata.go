// Package metadata is the revisioned metadata store of BadgeHub.
//
// This package contains:
//   - The data model: projects, versions, files, badges, events, API tokens
//   - The component contracts, composed into MetadataStore
//   - Service, the validating and instrumented facade over any MetadataStore
//   - Pure helpers shared by every engine: revision selectors, file paths,
//     summary filtering, mimetype detection
//
// Engines are in subpackages:
//   - pkg/metadata/store/gormstore - GORM over SQLite (embedded) or PostgreSQL
//   - pkg/metadata/store/postgres - native PostgreSQL with pgx and SQL migrations
//
// pkg/metadata/store.Open picks one from configuration.
package metadata
