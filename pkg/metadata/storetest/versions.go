package storetest

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/badgehub/badgehub/pkg/metadata"
)

// runVersionTests runs all VersionManager conformance tests.
func runVersionTests(t *testing.T, factory StoreFactory) {
	t.Run("PublishAdvancesRevisions", func(t *testing.T) { testPublishAdvancesRevisions(t, factory) })
	t.Run("PublishMissingProject", func(t *testing.T) { testPublishMissingProject(t, factory) })
	t.Run("PublishDeletedProject", func(t *testing.T) { testPublishDeletedProject(t, factory) })
	t.Run("RevisionsAreContiguous", func(t *testing.T) { testRevisionsContiguous(t, factory) })
	t.Run("UpdateDraftMetadata", func(t *testing.T) { testUpdateDraftMetadata(t, factory) })
	t.Run("UpdateDraftMetadataMissingProject", func(t *testing.T) { testUpdateDraftMetadataMissing(t, factory) })
}

// testPublishAdvancesRevisions verifies the publish transition end to end.
func testPublishAdvancesRevisions(t *testing.T, factory StoreFactory) {
	store := factory(t)
	ctx := t.Context()
	createProject(t, store, "snake", "")
	writeFile(t, store, "snake", "main.py", "text/x-python", "abc123", 2048)
	if err := store.UpdateDraftMetadata(ctx, "snake", metadata.AppMetadata{Name: "Snake", Badges: []string{"mch2022"}}); err != nil {
		t.Fatalf("UpdateDraftMetadata() failed: %v", err)
	}

	if rev := publish(t, store, "snake"); rev != 0 {
		t.Errorf("PublishVersion() = %d, want 0", rev)
	}

	latest := getProject(t, store, "snake", metadata.Latest())
	if latest == nil {
		t.Fatal("GetProject(latest) returned nil after publish")
	}
	if latest.Version.Revision != 0 {
		t.Errorf("latest Revision = %d, want 0", latest.Version.Revision)
	}
	if latest.Version.PublishedAt == nil {
		t.Error("latest PublishedAt is nil")
	}
	if len(latest.Version.Files) != 1 {
		t.Fatalf("latest has %d files, want 1", len(latest.Version.Files))
	}
	if url := latest.Version.Files[0].URL; !strings.Contains(url, "/rev0/") {
		t.Errorf("published file URL = %q, want rev0 segment", url)
	}

	draft := getProject(t, store, "snake", metadata.Draft())
	if draft == nil {
		t.Fatal("GetProject(draft) returned nil after publish")
	}
	if draft.Version.Revision != 1 {
		t.Errorf("draft Revision = %d, want 1", draft.Version.Revision)
	}
	if draft.Version.PublishedAt != nil {
		t.Error("new draft is already published")
	}
	if len(draft.Version.Files) != 0 {
		t.Errorf("new draft has %d files, want 0", len(draft.Version.Files))
	}
	if draft.Version.AppMetadata.Name != "Snake" {
		t.Errorf("draft metadata Name = %q, want copied value Snake", draft.Version.AppMetadata.Name)
	}
	if intValue(draft.DraftRevision) <= intValue(draft.LatestRevision) {
		t.Errorf("draft_revision %d not greater than latest_revision %d",
			intValue(draft.DraftRevision), intValue(draft.LatestRevision))
	}
}

// testPublishMissingProject verifies publishing an unknown slug is an invalid-state error.
func testPublishMissingProject(t *testing.T, factory StoreFactory) {
	store := factory(t)

	_, err := store.PublishVersion(t.Context(), "ghost")
	if !errors.Is(err, metadata.ErrNoDraft) {
		t.Errorf("PublishVersion(ghost) error = %v, want ErrNoDraft", err)
	}
}

// testPublishDeletedProject verifies deleted projects cannot be published.
func testPublishDeletedProject(t *testing.T, factory StoreFactory) {
	store := factory(t)
	createProject(t, store, "snake", "")
	if err := store.DeleteProject(t.Context(), "snake"); err != nil {
		t.Fatalf("DeleteProject() failed: %v", err)
	}

	_, err := store.PublishVersion(t.Context(), "snake")
	if !errors.Is(err, metadata.ErrNoDraft) {
		t.Errorf("PublishVersion() on deleted project error = %v, want ErrNoDraft", err)
	}
}

// testRevisionsContiguous verifies repeated publishes allocate 0, 1, 2, ...
func testRevisionsContiguous(t *testing.T, factory StoreFactory) {
	store := factory(t)
	createProject(t, store, "snake", "")

	for want := 0; want < 4; want++ {
		if got := publish(t, store, "snake"); got != want {
			t.Fatalf("publish #%d returned revision %d", want, got)
		}
	}
	for rev := 0; rev < 4; rev++ {
		p := getProject(t, store, "snake", metadata.Revision(rev))
		if p == nil || p.Version.PublishedAt == nil {
			t.Errorf("revision %d missing or unpublished", rev)
		}
	}
	p := getProject(t, store, "snake", metadata.Draft())
	if p == nil || p.Version.Revision != 4 {
		t.Errorf("draft = %+v, want revision 4", p)
	}
}

// testUpdateDraftMetadata verifies the draft's metadata is replaced and unknown fields survive.
func testUpdateDraftMetadata(t *testing.T, factory StoreFactory) {
	store := factory(t)
	ctx := t.Context()
	createProject(t, store, "snake", "")

	md := metadata.AppMetadata{
		Name:       "Snake",
		Categories: []string{"Games"},
		IconMap:    map[string]string{"64x64": "icon.png"},
		Extra:      map[string]json.RawMessage{"future": json.RawMessage(`{"x":1}`)},
	}
	if err := store.UpdateDraftMetadata(ctx, "snake", md); err != nil {
		t.Fatalf("UpdateDraftMetadata() failed: %v", err)
	}

	got := getProject(t, store, "snake", metadata.Draft()).Version.AppMetadata
	if got.Name != "Snake" || len(got.Categories) != 1 || got.IconMap["64x64"] != "icon.png" {
		t.Errorf("AppMetadata = %+v, want stored values", got)
	}
	raw, ok := got.Extra["future"]
	if !ok {
		t.Fatal("unknown field was dropped")
	}
	var future map[string]int
	if err := json.Unmarshal(raw, &future); err != nil || future["x"] != 1 {
		t.Errorf("Extra[future] = %s, want {\"x\":1}", raw)
	}

	publish(t, store, "snake")
	if err := store.UpdateDraftMetadata(ctx, "snake", metadata.AppMetadata{Name: "Snake 2"}); err != nil {
		t.Fatalf("UpdateDraftMetadata() failed: %v", err)
	}
	if name := getProject(t, store, "snake", metadata.Latest()).Version.AppMetadata.Name; name != "Snake" {
		t.Errorf("published metadata changed to %q", name)
	}
}

// testUpdateDraftMetadataMissing verifies a missing project is a silent no-op.
func testUpdateDraftMetadataMissing(t *testing.T, factory StoreFactory) {
	store := factory(t)

	if err := store.UpdateDraftMetadata(t.Context(), "ghost", metadata.AppMetadata{Name: "x"}); err != nil {
		t.Errorf("UpdateDraftMetadata(ghost) error = %v, want nil", err)
	}
}
