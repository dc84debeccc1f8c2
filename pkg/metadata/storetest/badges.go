package storetest

import (
	"errors"
	"testing"
	"time"

	"github.com/badgehub/badgehub/pkg/metadata"
)

// runBadgeTests runs all BadgeRegistry conformance tests.
func runBadgeTests(t *testing.T, factory StoreFactory) {
	t.Run("RegisterNewBadge", func(t *testing.T) { testRegisterNewBadge(t, factory) })
	t.Run("FirstMacWins", func(t *testing.T) { testFirstMacWins(t, factory) })
	t.Run("MacFilledLater", func(t *testing.T) { testMacFilledLater(t, factory) })
	t.Run("GetMissingBadge", func(t *testing.T) { testGetMissingBadge(t, factory) })
	t.Run("ReportInvalidEvent", func(t *testing.T) { testReportInvalidEvent(t, factory) })
	t.Run("SurvivesProjectDelete", func(t *testing.T) { testBadgeSurvivesProjectDelete(t, factory) })
}

func testRegisterNewBadge(t *testing.T, factory StoreFactory) {
	store := factory(t)

	if err := store.RegisterBadge(t.Context(), "badge-1", metadata.StringPtr("aa:bb")); err != nil {
		t.Fatalf("RegisterBadge() failed: %v", err)
	}
	b, err := store.GetRegisteredBadge(t.Context(), "badge-1")
	if err != nil {
		t.Fatalf("GetRegisteredBadge() failed: %v", err)
	}
	if b == nil {
		t.Fatal("GetRegisteredBadge() returned nil")
	}
	if b.Mac == nil || *b.Mac != "aa:bb" {
		t.Errorf("Mac = %v, want aa:bb", b.Mac)
	}
	if b.LastSeenAt.Before(b.CreatedAt) {
		t.Errorf("LastSeenAt %v before CreatedAt %v", b.LastSeenAt, b.CreatedAt)
	}
}

// testFirstMacWins verifies re-registration keeps the mac and advances last_seen_at.
func testFirstMacWins(t *testing.T, factory StoreFactory) {
	store := factory(t)
	ctx := t.Context()

	if err := store.RegisterBadge(ctx, "badge-1", metadata.StringPtr("aa:bb")); err != nil {
		t.Fatalf("RegisterBadge() failed: %v", err)
	}
	first, _ := store.GetRegisteredBadge(ctx, "badge-1")

	time.Sleep(5 * time.Millisecond)
	if err := store.RegisterBadge(ctx, "badge-1", metadata.StringPtr("cc:dd")); err != nil {
		t.Fatalf("second RegisterBadge() failed: %v", err)
	}
	second, err := store.GetRegisteredBadge(ctx, "badge-1")
	if err != nil {
		t.Fatalf("GetRegisteredBadge() failed: %v", err)
	}
	if second.Mac == nil || *second.Mac != "aa:bb" {
		t.Errorf("Mac = %v, want first value aa:bb", second.Mac)
	}
	if !second.LastSeenAt.After(first.LastSeenAt) {
		t.Errorf("LastSeenAt did not advance: %v -> %v", first.LastSeenAt, second.LastSeenAt)
	}
	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Errorf("CreatedAt changed: %v -> %v", first.CreatedAt, second.CreatedAt)
	}
}

// testMacFilledLater verifies a null mac is filled by a later registration.
func testMacFilledLater(t *testing.T, factory StoreFactory) {
	store := factory(t)
	ctx := t.Context()

	if err := store.RegisterBadge(ctx, "badge-1", nil); err != nil {
		t.Fatalf("RegisterBadge(nil) failed: %v", err)
	}
	if err := store.RegisterBadge(ctx, "badge-1", metadata.StringPtr("ee:ff")); err != nil {
		t.Fatalf("RegisterBadge() failed: %v", err)
	}
	b, err := store.GetRegisteredBadge(ctx, "badge-1")
	if err != nil {
		t.Fatalf("GetRegisteredBadge() failed: %v", err)
	}
	if b.Mac == nil || *b.Mac != "ee:ff" {
		t.Errorf("Mac = %v, want ee:ff", b.Mac)
	}
}

func testGetMissingBadge(t *testing.T, factory StoreFactory) {
	store := factory(t)

	b, err := store.GetRegisteredBadge(t.Context(), "ghost")
	if err != nil {
		t.Fatalf("GetRegisteredBadge() failed: %v", err)
	}
	if b != nil {
		t.Errorf("GetRegisteredBadge(ghost) = %+v, want nil", b)
	}
}

func testReportInvalidEvent(t *testing.T, factory StoreFactory) {
	store := factory(t)

	err := store.ReportEvent(t.Context(), metadata.EventReport{ProjectSlug: "snake", BadgeID: "b", EventType: "uninstall_count"})
	if !errors.Is(err, metadata.ErrInvalidInput) {
		t.Errorf("ReportEvent(invalid type) error = %v, want ErrInvalidInput", err)
	}
}

func testBadgeSurvivesProjectDelete(t *testing.T, factory StoreFactory) {
	store := factory(t)
	ctx := t.Context()
	createProject(t, store, "snake", "")
	if err := store.RegisterBadge(ctx, "badge-1", nil); err != nil {
		t.Fatalf("RegisterBadge() failed: %v", err)
	}
	reportEvent(t, store, "snake", "badge-1", metadata.EventInstall)

	if err := store.DeleteProject(ctx, "snake"); err != nil {
		t.Fatalf("DeleteProject() failed: %v", err)
	}
	b, err := store.GetRegisteredBadge(ctx, "badge-1")
	if err != nil {
		t.Fatalf("GetRegisteredBadge() failed: %v", err)
	}
	if b == nil || b.ID != "badge-1" {
		t.Errorf("GetRegisteredBadge() after project delete = %+v, want badge-1", b)
	}
}
