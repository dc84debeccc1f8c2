package storetest

import (
	"testing"

	"github.com/badgehub/badgehub/pkg/metadata"
)

// runSummaryTests runs the project listing conformance tests.
func runSummaryTests(t *testing.T, factory StoreFactory) {
	t.Run("PublishedOnlyByDefault", func(t *testing.T) { testSummariesPublishedOnly(t, factory) })
	t.Run("DraftListing", func(t *testing.T) { testSummariesDraftListing(t, factory) })
	t.Run("Filters", func(t *testing.T) { testSummariesFilters(t, factory) })
	t.Run("DistinctInstalls", func(t *testing.T) { testSummariesDistinctInstalls(t, factory) })
}

func listSummaries(t *testing.T, store metadata.MetadataStore, q metadata.ProjectQuery) []metadata.ProjectSummary {
	t.Helper()

	out, err := store.GetProjectSummaries(t.Context(), q)
	if err != nil {
		t.Fatalf("GetProjectSummaries(%+v) failed: %v", q, err)
	}
	return out
}

func setMetadata(t *testing.T, store metadata.MetadataStore, slug string, md metadata.AppMetadata) {
	t.Helper()

	if err := store.UpdateDraftMetadata(t.Context(), slug, md); err != nil {
		t.Fatalf("UpdateDraftMetadata(%q) failed: %v", slug, err)
	}
}

func testSummariesPublishedOnly(t *testing.T, factory StoreFactory) {
	store := factory(t)
	createProject(t, store, "live", "")
	setMetadata(t, store, "live", metadata.AppMetadata{Name: "Live"})
	publish(t, store, "live")
	createProject(t, store, "unpublished", "")

	got := listSummaries(t, store, metadata.ProjectQuery{})
	if len(got) != 1 || got[0].Slug != "live" {
		t.Fatalf("GetProjectSummaries() = %+v, want only live", got)
	}
	if got[0].Name != "Live" || got[0].Revision != 0 || got[0].PublishedAt == nil {
		t.Errorf("summary = %+v, want published revision 0 named Live", got[0])
	}
}

func testSummariesDraftListing(t *testing.T, factory StoreFactory) {
	store := factory(t)
	createProject(t, store, "live", "")
	publish(t, store, "live")
	createProject(t, store, "unpublished", "")

	got := listSummaries(t, store, metadata.ProjectQuery{Draft: true})
	if len(got) != 2 {
		t.Fatalf("draft listing has %d entries, want 2", len(got))
	}
	for _, s := range got {
		if s.PublishedAt != nil {
			t.Errorf("draft listing entry %s is published", s.Slug)
		}
		if s.Slug == "live" && s.Revision != 1 {
			t.Errorf("live draft revision = %d, want 1", s.Revision)
		}
	}
}

func testSummariesFilters(t *testing.T, factory StoreFactory) {
	store := factory(t)
	createProject(t, store, "snake", "alice")
	setMetadata(t, store, "snake", metadata.AppMetadata{Name: "Snake", Badges: []string{"mch2022"}, Categories: []string{"Games"}})
	publish(t, store, "snake")
	createProject(t, store, "clock", "bob")
	setMetadata(t, store, "clock", metadata.AppMetadata{Name: "Clock", Badges: []string{"why2025"}, Categories: []string{"Utility"}})
	publish(t, store, "clock")
	createProject(t, store, "secret", "bob")
	setMetadata(t, store, "secret", metadata.AppMetadata{Name: "Secret", Hidden: true})
	publish(t, store, "secret")

	if got := listSummaries(t, store, metadata.ProjectQuery{}); len(got) != 2 {
		t.Errorf("unfiltered listing has %d entries, want 2 (hidden excluded)", len(got))
	}
	if got := listSummaries(t, store, metadata.ProjectQuery{Badge: "mch2022"}); len(got) != 1 || got[0].Slug != "snake" {
		t.Errorf("badge filter = %+v, want snake", got)
	}
	if got := listSummaries(t, store, metadata.ProjectQuery{Category: "Utility"}); len(got) != 1 || got[0].Slug != "clock" {
		t.Errorf("category filter = %+v, want clock", got)
	}
	if got := listSummaries(t, store, metadata.ProjectQuery{OwnerID: "bob"}); len(got) != 2 {
		t.Errorf("owner filter returned %d entries, want 2 (hidden included)", len(got))
	}
	if got := listSummaries(t, store, metadata.ProjectQuery{Search: "sna"}); len(got) != 1 || got[0].Slug != "snake" {
		t.Errorf("search = %+v, want snake", got)
	}
	if got := listSummaries(t, store, metadata.ProjectQuery{PageLength: 1}); len(got) != 1 {
		t.Errorf("page of 1 returned %d entries", len(got))
	}
}

// testSummariesDistinctInstalls verifies installs count badges, not reports.
func testSummariesDistinctInstalls(t *testing.T, factory StoreFactory) {
	store := factory(t)
	createProject(t, store, "snake", "")
	publish(t, store, "snake")

	reportEvent(t, store, "snake", "badge-1", metadata.EventInstall)
	reportEvent(t, store, "snake", "badge-1", metadata.EventInstall)
	reportEvent(t, store, "snake", "badge-2", metadata.EventInstall)
	reportEvent(t, store, "snake", "badge-3", metadata.EventLaunch)

	got := listSummaries(t, store, metadata.ProjectQuery{})
	if len(got) != 1 {
		t.Fatalf("listing has %d entries, want 1", len(got))
	}
	if got[0].Installs != 2 {
		t.Errorf("Installs = %d, want 2", got[0].Installs)
	}
}
