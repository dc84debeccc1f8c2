package storetest

import (
	"testing"

	"github.com/badgehub/badgehub/pkg/metadata"
)

// StoreFactory creates a fresh, empty MetadataStore for each test.
type StoreFactory func(t *testing.T) metadata.MetadataStore

// RunConformanceSuite runs the full conformance test suite against the
// provided store factory. Each test gets a fresh store instance.
func RunConformanceSuite(t *testing.T, factory StoreFactory) {
	t.Helper()

	t.Run("Projects", func(t *testing.T) { runProjectTests(t, factory) })
	t.Run("Versions", func(t *testing.T) { runVersionTests(t, factory) })
	t.Run("Files", func(t *testing.T) { runFileTests(t, factory) })
	t.Run("Badges", func(t *testing.T) { runBadgeTests(t, factory) })
	t.Run("Tokens", func(t *testing.T) { runTokenTests(t, factory) })
	t.Run("Stats", func(t *testing.T) { runStatsTests(t, factory) })
	t.Run("Summaries", func(t *testing.T) { runSummaryTests(t, factory) })
	t.Run("Concurrency", func(t *testing.T) { runConcurrencyTests(t, factory) })
}

// createProject inserts a project owned by owner (empty for none).
func createProject(t *testing.T, store metadata.MetadataStore, slug, owner string) {
	t.Helper()

	p := metadata.NewProject{Slug: slug}
	if owner != "" {
		p.OwnerID = metadata.StringPtr(owner)
	}
	if err := store.InsertProject(t.Context(), p, nil); err != nil {
		t.Fatalf("InsertProject(%q) failed: %v", slug, err)
	}
}

// getProject fetches a project and fails the test on error.
func getProject(t *testing.T, store metadata.MetadataStore, slug string, sel metadata.RevisionSelector) *metadata.ProjectDetails {
	t.Helper()

	p, err := store.GetProject(t.Context(), slug, sel)
	if err != nil {
		t.Fatalf("GetProject(%q, %s) failed: %v", slug, sel, err)
	}
	return p
}

// writeFile stores draft file metadata at path.
func writeFile(t *testing.T, store metadata.MetadataStore, slug, path, mimetype, sha string, size int64) {
	t.Helper()

	err := store.WriteDraftFileMetadata(t.Context(), slug, []string{path},
		metadata.UploadedFile{Mimetype: mimetype, Size: size}, sha)
	if err != nil {
		t.Fatalf("WriteDraftFileMetadata(%q, %q) failed: %v", slug, path, err)
	}
}

// publish publishes the draft of slug and returns the published revision.
func publish(t *testing.T, store metadata.MetadataStore, slug string) int {
	t.Helper()

	rev, err := store.PublishVersion(t.Context(), slug)
	if err != nil {
		t.Fatalf("PublishVersion(%q) failed: %v", slug, err)
	}
	return rev
}

func intValue(p *int) int {
	if p == nil {
		return -1
	}
	return *p
}
