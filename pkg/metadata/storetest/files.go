package storetest

import (
	"errors"
	"strings"
	"testing"

	"github.com/badgehub/badgehub/pkg/metadata"
)

// runFileTests runs all FileCatalog conformance tests.
func runFileTests(t *testing.T, factory StoreFactory) {
	t.Run("WriteAndGet", func(t *testing.T) { testWriteAndGetFile(t, factory) })
	t.Run("NestedPath", func(t *testing.T) { testNestedPath(t, factory) })
	t.Run("RewriteReplacesAndUndeletes", func(t *testing.T) { testRewriteUndeletes(t, factory) })
	t.Run("DeleteScopedToDraft", func(t *testing.T) { testDeleteScopedToDraft(t, factory) })
	t.Run("DeleteMissingFileIsNoop", func(t *testing.T) { testDeleteMissingFile(t, factory) })
	t.Run("SamePathAcrossVersions", func(t *testing.T) { testSamePathAcrossVersions(t, factory) })
	t.Run("WriteWithoutDraft", func(t *testing.T) { testWriteWithoutDraft(t, factory) })
	t.Run("InvalidPath", func(t *testing.T) { testInvalidPath(t, factory) })
}

// testWriteAndGetFile verifies a draft file round trip including derived fields.
func testWriteAndGetFile(t *testing.T, factory StoreFactory) {
	store := factory(t)
	createProject(t, store, "snake", "")
	writeFile(t, store, "snake", "main.py", "text/x-python", "abc123", 2048)

	f, err := store.GetFileMetadata(t.Context(), "snake", metadata.Draft(), "main.py")
	if err != nil {
		t.Fatalf("GetFileMetadata() failed: %v", err)
	}
	if f == nil {
		t.Fatal("GetFileMetadata() returned nil")
	}
	if f.Name != "main" || f.Ext != ".py" || f.Dir != "" {
		t.Errorf("path parts = (%q, %q, %q), want (\"\", main, .py)", f.Dir, f.Name, f.Ext)
	}
	if f.SHA256 != "abc123" || f.SizeOfContent != 2048 || f.Mimetype != "text/x-python" {
		t.Errorf("stored fields = %+v", f)
	}
	if f.FullPath != "main.py" {
		t.Errorf("FullPath = %q, want main.py", f.FullPath)
	}
	if f.SizeFormatted != "2.00KB" {
		t.Errorf("SizeFormatted = %q, want 2.00KB", f.SizeFormatted)
	}
	if !strings.Contains(f.URL, "/draft/") || !strings.HasSuffix(f.URL, "main.py") {
		t.Errorf("URL = %q, want draft url ending in main.py", f.URL)
	}

	p := getProject(t, store, "snake", metadata.Draft())
	if len(p.Version.Files) != 1 {
		t.Errorf("draft lists %d files, want 1", len(p.Version.Files))
	}
}

// testNestedPath verifies directory components are kept.
func testNestedPath(t *testing.T, factory StoreFactory) {
	store := factory(t)
	createProject(t, store, "snake", "")

	err := store.WriteDraftFileMetadata(t.Context(), "snake", []string{"assets", "img/icon.png"},
		metadata.UploadedFile{Mimetype: "image/png", Size: 10, ImageWidth: metadata.IntPtr(64), ImageHeight: metadata.IntPtr(64)}, "ff")
	if err != nil {
		t.Fatalf("WriteDraftFileMetadata() failed: %v", err)
	}

	f, err := store.GetFileMetadata(t.Context(), "snake", metadata.Draft(), "assets/img/icon.png")
	if err != nil {
		t.Fatalf("GetFileMetadata() failed: %v", err)
	}
	if f == nil {
		t.Fatal("GetFileMetadata() returned nil")
	}
	if f.Dir != "assets/img" {
		t.Errorf("Dir = %q, want assets/img", f.Dir)
	}
	if f.ImageWidth == nil || *f.ImageWidth != 64 {
		t.Errorf("ImageWidth = %v, want 64", f.ImageWidth)
	}
}

// testRewriteUndeletes verifies writing a deleted path brings it back with the new content.
func testRewriteUndeletes(t *testing.T, factory StoreFactory) {
	store := factory(t)
	ctx := t.Context()
	createProject(t, store, "snake", "")
	writeFile(t, store, "snake", "main.py", "text/x-python", "v1", 10)

	if err := store.DeleteDraftFile(ctx, "snake", "main.py"); err != nil {
		t.Fatalf("DeleteDraftFile() failed: %v", err)
	}
	if f, _ := store.GetFileMetadata(ctx, "snake", metadata.Draft(), "main.py"); f != nil {
		t.Fatal("deleted file is still visible")
	}

	writeFile(t, store, "snake", "main.py", "text/x-python", "v2", 20)
	f, err := store.GetFileMetadata(ctx, "snake", metadata.Draft(), "main.py")
	if err != nil {
		t.Fatalf("GetFileMetadata() failed: %v", err)
	}
	if f == nil {
		t.Fatal("rewritten file is not visible")
	}
	if f.SHA256 != "v2" || f.SizeOfContent != 20 {
		t.Errorf("rewritten file = (%q, %d), want (v2, 20)", f.SHA256, f.SizeOfContent)
	}
	if n := len(getProject(t, store, "snake", metadata.Draft()).Version.Files); n != 1 {
		t.Errorf("draft lists %d files, want 1", n)
	}
}

// testDeleteScopedToDraft verifies deleting a draft file leaves published copies alone.
func testDeleteScopedToDraft(t *testing.T, factory StoreFactory) {
	store := factory(t)
	ctx := t.Context()
	createProject(t, store, "snake", "")
	writeFile(t, store, "snake", "main.py", "text/x-python", "v1", 10)
	publish(t, store, "snake")
	writeFile(t, store, "snake", "main.py", "text/x-python", "v2", 10)

	if err := store.DeleteDraftFile(ctx, "snake", "main.py"); err != nil {
		t.Fatalf("DeleteDraftFile() failed: %v", err)
	}

	published, err := store.GetFileMetadata(ctx, "snake", metadata.Latest(), "main.py")
	if err != nil {
		t.Fatalf("GetFileMetadata(latest) failed: %v", err)
	}
	if published == nil || published.SHA256 != "v1" {
		t.Errorf("published file = %+v, want sha v1", published)
	}
	if draft, _ := store.GetFileMetadata(ctx, "snake", metadata.Draft(), "main.py"); draft != nil {
		t.Error("draft file still visible after delete")
	}
}

// testDeleteMissingFile verifies deleting an absent path succeeds.
func testDeleteMissingFile(t *testing.T, factory StoreFactory) {
	store := factory(t)
	createProject(t, store, "snake", "")

	if err := store.DeleteDraftFile(t.Context(), "snake", "nope.txt"); err != nil {
		t.Errorf("DeleteDraftFile(missing) error = %v, want nil", err)
	}
}

// testSamePathAcrossVersions verifies a path is unique per version, not per project.
func testSamePathAcrossVersions(t *testing.T, factory StoreFactory) {
	store := factory(t)
	ctx := t.Context()
	createProject(t, store, "snake", "")
	writeFile(t, store, "snake", "main.py", "text/x-python", "r0", 10)
	publish(t, store, "snake")
	writeFile(t, store, "snake", "main.py", "text/x-python", "r1", 10)
	publish(t, store, "snake")

	for rev, want := range []string{"r0", "r1"} {
		f, err := store.GetFileMetadata(ctx, "snake", metadata.Revision(rev), "main.py")
		if err != nil {
			t.Fatalf("GetFileMetadata(rev %d) failed: %v", rev, err)
		}
		if f == nil || f.SHA256 != want {
			t.Errorf("rev %d file = %+v, want sha %s", rev, f, want)
		}
	}
}

// testWriteWithoutDraft verifies writes against a missing or deleted project fail.
func testWriteWithoutDraft(t *testing.T, factory StoreFactory) {
	store := factory(t)
	ctx := t.Context()

	err := store.WriteDraftFileMetadata(ctx, "ghost", []string{"main.py"}, metadata.UploadedFile{Size: 1}, "x")
	if !errors.Is(err, metadata.ErrNoDraft) {
		t.Errorf("WriteDraftFileMetadata(ghost) error = %v, want ErrNoDraft", err)
	}

	createProject(t, store, "snake", "")
	if err := store.DeleteProject(ctx, "snake"); err != nil {
		t.Fatalf("DeleteProject() failed: %v", err)
	}
	err = store.DeleteDraftFile(ctx, "snake", "main.py")
	if !errors.Is(err, metadata.ErrNoDraft) {
		t.Errorf("DeleteDraftFile(deleted project) error = %v, want ErrNoDraft", err)
	}
}

// testInvalidPath verifies traversal components are rejected.
func testInvalidPath(t *testing.T, factory StoreFactory) {
	store := factory(t)
	createProject(t, store, "snake", "")

	err := store.WriteDraftFileMetadata(t.Context(), "snake", []string{"../etc/passwd"}, metadata.UploadedFile{Size: 1}, "x")
	if !errors.Is(err, metadata.ErrInvalidInput) {
		t.Errorf("WriteDraftFileMetadata(..) error = %v, want ErrInvalidInput", err)
	}
}
