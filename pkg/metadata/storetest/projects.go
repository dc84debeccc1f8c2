package storetest

import (
	"testing"
	"time"

	"github.com/badgehub/badgehub/pkg/metadata"
)

// runProjectTests runs all ProjectRepository conformance tests.
func runProjectTests(t *testing.T, factory StoreFactory) {
	t.Run("InsertOpensDraft", func(t *testing.T) { testInsertOpensDraft(t, factory) })
	t.Run("LatestBeforePublishIsNotFound", func(t *testing.T) { testLatestBeforePublish(t, factory) })
	t.Run("InsertUpsertsExisting", func(t *testing.T) { testInsertUpsertsExisting(t, factory) })
	t.Run("InsertOverridesCreatedAt", func(t *testing.T) { testInsertOverridesCreatedAt(t, factory) })
	t.Run("UpdateFiltersUnknownKeys", func(t *testing.T) { testUpdateFiltersUnknownKeys(t, factory) })
	t.Run("UpdateWithoutAllowedKeysIsNoop", func(t *testing.T) { testUpdateNoop(t, factory) })
	t.Run("DeleteHidesProject", func(t *testing.T) { testDeleteHidesProject(t, factory) })
	t.Run("InsertResurrectsDeleted", func(t *testing.T) { testInsertResurrects(t, factory) })
	t.Run("GetMissingProject", func(t *testing.T) { testGetMissingProject(t, factory) })
	t.Run("NumericSelector", func(t *testing.T) { testNumericSelector(t, factory) })
}

// testInsertOpensDraft verifies a new project has an empty revision-0 draft.
func testInsertOpensDraft(t *testing.T, factory StoreFactory) {
	store := factory(t)
	createProject(t, store, "snake", "user-1")

	p := getProject(t, store, "snake", metadata.Draft())
	if p == nil {
		t.Fatal("GetProject(draft) returned nil after InsertProject")
	}
	if p.Version.Revision != 0 {
		t.Errorf("draft Revision = %d, want 0", p.Version.Revision)
	}
	if p.Version.PublishedAt != nil {
		t.Error("draft PublishedAt should be nil")
	}
	if intValue(p.DraftRevision) != 0 || intValue(p.LatestRevision) != 0 {
		t.Errorf("revisions = (draft %d, latest %d), want (0, 0)", intValue(p.DraftRevision), intValue(p.LatestRevision))
	}
	if len(p.Version.Files) != 0 {
		t.Errorf("new draft has %d files, want 0", len(p.Version.Files))
	}
	if p.OwnerID == nil || *p.OwnerID != "user-1" {
		t.Errorf("OwnerID = %v, want user-1", p.OwnerID)
	}
}

// testLatestBeforePublish verifies latest does not resolve to an unpublished version.
func testLatestBeforePublish(t *testing.T, factory StoreFactory) {
	store := factory(t)
	createProject(t, store, "snake", "")

	if p := getProject(t, store, "snake", metadata.Latest()); p != nil {
		t.Errorf("GetProject(latest) = revision %d, want nil before first publish", p.Version.Revision)
	}
	if p := getProject(t, store, "snake", metadata.Draft()); p == nil {
		t.Error("GetProject(draft) returned nil")
	}
}

// testInsertUpsertsExisting verifies re-inserting updates identity fields and keeps created_at.
func testInsertUpsertsExisting(t *testing.T, factory StoreFactory) {
	store := factory(t)
	ctx := t.Context()

	if err := store.InsertProject(ctx, metadata.NewProject{Slug: "snake", Git: metadata.StringPtr("https://a.example/snake.git")}, nil); err != nil {
		t.Fatalf("InsertProject() failed: %v", err)
	}
	before := getProject(t, store, "snake", metadata.Draft())

	time.Sleep(5 * time.Millisecond)
	err := store.InsertProject(ctx, metadata.NewProject{
		Slug:    "snake",
		Git:     metadata.StringPtr("https://b.example/snake.git"),
		OwnerID: metadata.StringPtr("user-2"),
	}, nil)
	if err != nil {
		t.Fatalf("second InsertProject() failed: %v", err)
	}

	after := getProject(t, store, "snake", metadata.Draft())
	if after.Git == nil || *after.Git != "https://b.example/snake.git" {
		t.Errorf("Git = %v, want updated url", after.Git)
	}
	if after.OwnerID == nil || *after.OwnerID != "user-2" {
		t.Errorf("OwnerID = %v, want user-2", after.OwnerID)
	}
	if !after.CreatedAt.Equal(before.CreatedAt) {
		t.Errorf("CreatedAt changed from %v to %v", before.CreatedAt, after.CreatedAt)
	}
	if after.Version.Revision != 0 {
		t.Errorf("draft Revision = %d, want 0", after.Version.Revision)
	}
}

// testInsertOverridesCreatedAt verifies explicit timestamps are honored.
func testInsertOverridesCreatedAt(t *testing.T, factory StoreFactory) {
	store := factory(t)
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	err := store.InsertProject(t.Context(), metadata.NewProject{Slug: "legacy"}, &metadata.ProjectTimestamps{CreatedAt: created})
	if err != nil {
		t.Fatalf("InsertProject() failed: %v", err)
	}

	p := getProject(t, store, "legacy", metadata.Draft())
	if !p.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt = %v, want %v", p.CreatedAt, created)
	}
}

// testUpdateFiltersUnknownKeys verifies only allow-listed columns are written.
func testUpdateFiltersUnknownKeys(t *testing.T, factory StoreFactory) {
	store := factory(t)
	createProject(t, store, "snake", "user-1")

	err := store.UpdateProject(t.Context(), "snake", metadata.ProjectChanges{
		"unknownField": "x",
		"slug":         "hijacked",
		"git":          "y",
	})
	if err != nil {
		t.Fatalf("UpdateProject() failed: %v", err)
	}

	p := getProject(t, store, "snake", metadata.Draft())
	if p == nil {
		t.Fatal("project disappeared after UpdateProject")
	}
	if p.Git == nil || *p.Git != "y" {
		t.Errorf("Git = %v, want y", p.Git)
	}
	if p.OwnerID == nil || *p.OwnerID != "user-1" {
		t.Errorf("OwnerID = %v, want unchanged user-1", p.OwnerID)
	}
	if hijacked := getProject(t, store, "hijacked", metadata.Draft()); hijacked != nil {
		t.Error("slug was changed through UpdateProject")
	}
}

// testUpdateNoop verifies a patch without allowed keys writes nothing.
func testUpdateNoop(t *testing.T, factory StoreFactory) {
	store := factory(t)
	createProject(t, store, "snake", "")
	before := getProject(t, store, "snake", metadata.Draft())

	time.Sleep(5 * time.Millisecond)
	if err := store.UpdateProject(t.Context(), "snake", metadata.ProjectChanges{"name": "nope"}); err != nil {
		t.Fatalf("UpdateProject() failed: %v", err)
	}

	after := getProject(t, store, "snake", metadata.Draft())
	if !after.UpdatedAt.Equal(before.UpdatedAt) {
		t.Errorf("UpdatedAt changed from %v to %v on a no-op update", before.UpdatedAt, after.UpdatedAt)
	}
}

// testDeleteHidesProject verifies tombstoned projects are not found by any selector.
func testDeleteHidesProject(t *testing.T, factory StoreFactory) {
	store := factory(t)
	createProject(t, store, "snake", "")
	writeFile(t, store, "snake", "main.py", "text/x-python", "aa", 10)
	publish(t, store, "snake")

	if err := store.DeleteProject(t.Context(), "snake"); err != nil {
		t.Fatalf("DeleteProject() failed: %v", err)
	}

	for _, sel := range []metadata.RevisionSelector{metadata.Latest(), metadata.Draft(), metadata.Revision(0)} {
		if p := getProject(t, store, "snake", sel); p != nil {
			t.Errorf("GetProject(%s) returned a deleted project", sel)
		}
	}
	f, err := store.GetFileMetadata(t.Context(), "snake", metadata.Revision(0), "main.py")
	if err != nil {
		t.Fatalf("GetFileMetadata() failed: %v", err)
	}
	if f != nil {
		t.Error("GetFileMetadata() returned a file of a deleted project")
	}
}

// testInsertResurrects verifies re-inserting a deleted project restores it with its history.
func testInsertResurrects(t *testing.T, factory StoreFactory) {
	store := factory(t)
	createProject(t, store, "snake", "")
	publish(t, store, "snake")

	if err := store.DeleteProject(t.Context(), "snake"); err != nil {
		t.Fatalf("DeleteProject() failed: %v", err)
	}
	createProject(t, store, "snake", "user-9")

	p := getProject(t, store, "snake", metadata.Latest())
	if p == nil {
		t.Fatal("GetProject(latest) returned nil after resurrection")
	}
	if p.Version.Revision != 0 {
		t.Errorf("latest Revision = %d, want 0", p.Version.Revision)
	}
	draft := getProject(t, store, "snake", metadata.Draft())
	if draft == nil || draft.Version.Revision != 1 {
		t.Errorf("draft after resurrection = %v, want revision 1", draft)
	}
}

// testGetMissingProject verifies unknown slugs yield nil without error.
func testGetMissingProject(t *testing.T, factory StoreFactory) {
	store := factory(t)

	if p := getProject(t, store, "ghost", metadata.Draft()); p != nil {
		t.Errorf("GetProject(ghost) = %v, want nil", p)
	}
	createProject(t, store, "snake", "")
	if p := getProject(t, store, "snake", metadata.Revision(42)); p != nil {
		t.Errorf("GetProject(snake, 42) = %v, want nil", p)
	}
}

// testNumericSelector verifies exact revisions resolve regardless of which is latest.
func testNumericSelector(t *testing.T, factory StoreFactory) {
	store := factory(t)
	createProject(t, store, "snake", "")
	publish(t, store, "snake")
	publish(t, store, "snake")

	p := getProject(t, store, "snake", metadata.Revision(0))
	if p == nil || p.Version.Revision != 0 || p.Version.PublishedAt == nil {
		t.Fatalf("GetProject(0) = %+v, want published revision 0", p)
	}
	p = getProject(t, store, "snake", metadata.Revision(2))
	if p == nil || p.Version.PublishedAt != nil {
		t.Fatalf("GetProject(2) = %+v, want the open draft", p)
	}
}
