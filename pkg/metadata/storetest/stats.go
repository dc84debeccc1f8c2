package storetest

import (
	"testing"

	"github.com/badgehub/badgehub/pkg/metadata"
)

// runStatsTests runs all StatsAggregator conformance tests.
func runStatsTests(t *testing.T, factory StoreFactory) {
	t.Run("EmptyStore", func(t *testing.T) { testEmptyStats(t, factory) })
	t.Run("EventTotals", func(t *testing.T) { testEventTotals(t, factory) })
	t.Run("ProjectsAuthorsBadges", func(t *testing.T) { testProjectsAuthorsBadges(t, factory) })
	t.Run("DeletedProjectEventsCount", func(t *testing.T) { testDeletedProjectEvents(t, factory) })
}

// refreshedStats refreshes aggregates and reads them back.
func refreshedStats(t *testing.T, store metadata.MetadataStore) *metadata.Stats {
	t.Helper()

	if err := store.RefreshReports(t.Context()); err != nil {
		t.Fatalf("RefreshReports() failed: %v", err)
	}
	stats, err := store.GetStats(t.Context())
	if err != nil {
		t.Fatalf("GetStats() failed: %v", err)
	}
	return stats
}

func reportEvent(t *testing.T, store metadata.MetadataStore, slug, badge string, et metadata.EventType) {
	t.Helper()

	err := store.ReportEvent(t.Context(), metadata.EventReport{ProjectSlug: slug, Revision: 0, BadgeID: badge, EventType: et})
	if err != nil {
		t.Fatalf("ReportEvent(%s, %s, %s) failed: %v", slug, badge, et, err)
	}
}

func testEmptyStats(t *testing.T, factory StoreFactory) {
	store := factory(t)

	stats := refreshedStats(t, store)
	if *stats != (metadata.Stats{}) {
		t.Errorf("GetStats() on empty store = %+v, want zeros", stats)
	}
}

// testEventTotals verifies per-type totals and distinct project counts.
func testEventTotals(t *testing.T, factory StoreFactory) {
	store := factory(t)
	createProject(t, store, "a", "")
	createProject(t, store, "b", "")

	reportEvent(t, store, "a", "badge-1", metadata.EventInstall)
	reportEvent(t, store, "a", "badge-2", metadata.EventInstall)
	reportEvent(t, store, "a", "badge-1", metadata.EventLaunch)
	reportEvent(t, store, "b", "badge-1", metadata.EventInstall)

	stats := refreshedStats(t, store)
	if stats.Installs != 3 || stats.InstalledProjects != 2 {
		t.Errorf("installs = (%d, %d), want (3, 2)", stats.Installs, stats.InstalledProjects)
	}
	if stats.Launches != 1 || stats.LaunchedProjects != 1 {
		t.Errorf("launches = (%d, %d), want (1, 1)", stats.Launches, stats.LaunchedProjects)
	}
	if stats.Crashes != 0 || stats.CrashedProjects != 0 {
		t.Errorf("crashes = (%d, %d), want (0, 0)", stats.Crashes, stats.CrashedProjects)
	}
}

func testProjectsAuthorsBadges(t *testing.T, factory StoreFactory) {
	store := factory(t)
	ctx := t.Context()
	createProject(t, store, "a", "alice")
	createProject(t, store, "b", "alice")
	createProject(t, store, "c", "bob")
	createProject(t, store, "d", "")
	createProject(t, store, "gone", "carol")
	if err := store.DeleteProject(ctx, "gone"); err != nil {
		t.Fatalf("DeleteProject() failed: %v", err)
	}
	for _, id := range []string{"badge-1", "badge-2"} {
		if err := store.RegisterBadge(ctx, id, nil); err != nil {
			t.Fatalf("RegisterBadge(%s) failed: %v", id, err)
		}
	}

	stats := refreshedStats(t, store)
	if stats.Projects != 4 {
		t.Errorf("Projects = %d, want 4", stats.Projects)
	}
	if stats.Authors != 2 {
		t.Errorf("Authors = %d, want 2", stats.Authors)
	}
	if stats.Badges != 2 {
		t.Errorf("Badges = %d, want 2", stats.Badges)
	}
}

// testDeletedProjectEvents verifies history survives project deletion.
func testDeletedProjectEvents(t *testing.T, factory StoreFactory) {
	store := factory(t)
	createProject(t, store, "a", "")
	reportEvent(t, store, "a", "badge-1", metadata.EventCrash)
	if err := store.DeleteProject(t.Context(), "a"); err != nil {
		t.Fatalf("DeleteProject() failed: %v", err)
	}

	stats := refreshedStats(t, store)
	if stats.Crashes != 1 || stats.CrashedProjects != 1 {
		t.Errorf("crashes = (%d, %d), want (1, 1)", stats.Crashes, stats.CrashedProjects)
	}
	if stats.Projects != 0 {
		t.Errorf("Projects = %d, want 0", stats.Projects)
	}
}
