package storetest

import (
	"testing"
	"time"

	"github.com/badgehub/badgehub/pkg/metadata"
)

// runTokenTests runs all TokenVault conformance tests.
func runTokenTests(t *testing.T, factory StoreFactory) {
	t.Run("CreateAndGetHash", func(t *testing.T) { testCreateAndGetHash(t, factory) })
	t.Run("CreateReplaces", func(t *testing.T) { testCreateReplaces(t, factory) })
	t.Run("MetadataAndRevoke", func(t *testing.T) { testTokenMetadataAndRevoke(t, factory) })
	t.Run("MarkUsed", func(t *testing.T) { testMarkTokenUsed(t, factory) })
	t.Run("MissingToken", func(t *testing.T) { testMissingToken(t, factory) })
	t.Run("UnknownProjectRejected", func(t *testing.T) { testTokenForUnknownProject(t, factory) })
	t.Run("SurvivesProjectDelete", func(t *testing.T) { testTokenSurvivesProjectDelete(t, factory) })
}

func testCreateAndGetHash(t *testing.T, factory StoreFactory) {
	store := factory(t)
	createProject(t, store, "snake", "")

	if err := store.CreateProjectAPIToken(t.Context(), "snake", "hash-1"); err != nil {
		t.Fatalf("CreateProjectAPIToken() failed: %v", err)
	}
	hash, found, err := store.GetProjectAPITokenHash(t.Context(), "snake")
	if err != nil {
		t.Fatalf("GetProjectAPITokenHash() failed: %v", err)
	}
	if !found || hash != "hash-1" {
		t.Errorf("GetProjectAPITokenHash() = (%q, %v), want (hash-1, true)", hash, found)
	}
}

// testCreateReplaces verifies a project holds at most one token.
func testCreateReplaces(t *testing.T, factory StoreFactory) {
	store := factory(t)
	ctx := t.Context()
	createProject(t, store, "snake", "")

	if err := store.CreateProjectAPIToken(ctx, "snake", "hash-1"); err != nil {
		t.Fatalf("CreateProjectAPIToken() failed: %v", err)
	}
	if err := store.CreateProjectAPIToken(ctx, "snake", "hash-2"); err != nil {
		t.Fatalf("second CreateProjectAPIToken() failed: %v", err)
	}
	hash, found, err := store.GetProjectAPITokenHash(ctx, "snake")
	if err != nil {
		t.Fatalf("GetProjectAPITokenHash() failed: %v", err)
	}
	if !found || hash != "hash-2" {
		t.Errorf("GetProjectAPITokenHash() = (%q, %v), want (hash-2, true)", hash, found)
	}
}

func testTokenMetadataAndRevoke(t *testing.T, factory StoreFactory) {
	store := factory(t)
	ctx := t.Context()
	createProject(t, store, "snake", "")

	if err := store.CreateProjectAPIToken(ctx, "snake", "hash-1"); err != nil {
		t.Fatalf("CreateProjectAPIToken() failed: %v", err)
	}
	md, err := store.GetProjectAPITokenMetadata(ctx, "snake")
	if err != nil {
		t.Fatalf("GetProjectAPITokenMetadata() failed: %v", err)
	}
	if md == nil {
		t.Fatal("GetProjectAPITokenMetadata() returned nil")
	}
	if md.ProjectSlug != "snake" || md.CreatedAt.IsZero() || md.LastUsedAt == nil {
		t.Errorf("metadata = %+v, want slug, created_at and last_used_at set", md)
	}

	if err := store.RevokeProjectAPIToken(ctx, "snake"); err != nil {
		t.Fatalf("RevokeProjectAPIToken() failed: %v", err)
	}
	if _, found, _ := store.GetProjectAPITokenHash(ctx, "snake"); found {
		t.Error("token still found after revoke")
	}
	if err := store.RevokeProjectAPIToken(ctx, "snake"); err != nil {
		t.Errorf("second RevokeProjectAPIToken() error = %v, want nil", err)
	}
}

func testMarkTokenUsed(t *testing.T, factory StoreFactory) {
	store := factory(t)
	ctx := t.Context()
	createProject(t, store, "snake", "")
	if err := store.CreateProjectAPIToken(ctx, "snake", "hash-1"); err != nil {
		t.Fatalf("CreateProjectAPIToken() failed: %v", err)
	}

	used := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	if err := store.MarkProjectAPITokenUsed(ctx, "snake", used); err != nil {
		t.Fatalf("MarkProjectAPITokenUsed() failed: %v", err)
	}
	md, err := store.GetProjectAPITokenMetadata(ctx, "snake")
	if err != nil {
		t.Fatalf("GetProjectAPITokenMetadata() failed: %v", err)
	}
	if md.LastUsedAt == nil || !md.LastUsedAt.Equal(used) {
		t.Errorf("LastUsedAt = %v, want %v", md.LastUsedAt, used)
	}
}

func testMissingToken(t *testing.T, factory StoreFactory) {
	store := factory(t)

	hash, found, err := store.GetProjectAPITokenHash(t.Context(), "ghost")
	if err != nil || found || hash != "" {
		t.Errorf("GetProjectAPITokenHash(ghost) = (%q, %v, %v), want (\"\", false, nil)", hash, found, err)
	}
	md, err := store.GetProjectAPITokenMetadata(t.Context(), "ghost")
	if err != nil || md != nil {
		t.Errorf("GetProjectAPITokenMetadata(ghost) = (%+v, %v), want (nil, nil)", md, err)
	}
}

func testTokenForUnknownProject(t *testing.T, factory StoreFactory) {
	store := factory(t)
	ctx := t.Context()

	err := store.CreateProjectAPIToken(ctx, "never-created", "hash-1")
	if !metadata.IsNotFoundError(err) {
		t.Fatalf("CreateProjectAPIToken(never-created) error = %v, want NotFound", err)
	}
	if _, found, _ := store.GetProjectAPITokenHash(ctx, "never-created"); found {
		t.Error("token stored for a project that does not exist")
	}
}

// testTokenSurvivesProjectDelete verifies tombstoning a project keeps its token.
func testTokenSurvivesProjectDelete(t *testing.T, factory StoreFactory) {
	store := factory(t)
	ctx := t.Context()
	createProject(t, store, "snake", "")
	if err := store.CreateProjectAPIToken(ctx, "snake", "hash-1"); err != nil {
		t.Fatalf("CreateProjectAPIToken() failed: %v", err)
	}

	if err := store.DeleteProject(ctx, "snake"); err != nil {
		t.Fatalf("DeleteProject() failed: %v", err)
	}
	hash, found, err := store.GetProjectAPITokenHash(ctx, "snake")
	if err != nil {
		t.Fatalf("GetProjectAPITokenHash() failed: %v", err)
	}
	if !found || hash != "hash-1" {
		t.Errorf("GetProjectAPITokenHash() after delete = (%q, %v), want (hash-1, true)", hash, found)
	}
}
