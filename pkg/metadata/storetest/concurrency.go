package storetest

import (
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/badgehub/badgehub/pkg/metadata"
)

// runConcurrencyTests verifies the store serializes conflicting writers.
func runConcurrencyTests(t *testing.T, factory StoreFactory) {
	t.Run("ConcurrentPublish", func(t *testing.T) { testConcurrentPublish(t, factory) })
	t.Run("ConcurrentFileWrites", func(t *testing.T) { testConcurrentFileWrites(t, factory) })
}

// testConcurrentPublish verifies parallel publishes each get a distinct revision.
func testConcurrentPublish(t *testing.T, factory StoreFactory) {
	store := factory(t)
	createProject(t, store, "snake", "")

	const workers = 8
	revs := make([]int, workers)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			revs[i], errs[i] = store.PublishVersion(t.Context(), "snake")
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("publish %d failed: %v", i, err)
		}
	}
	sort.Ints(revs)
	for i, rev := range revs {
		if rev != i {
			t.Fatalf("published revisions = %v, want 0..%d", revs, workers-1)
		}
	}

	p := getProject(t, store, "snake", metadata.Draft())
	if p == nil || p.Version.Revision != workers {
		t.Errorf("draft = %+v, want revision %d", p, workers)
	}
	if intValue(p.LatestRevision) != workers-1 {
		t.Errorf("latest_revision = %d, want %d", intValue(p.LatestRevision), workers-1)
	}
}

// testConcurrentFileWrites verifies writes to distinct paths are all kept.
func testConcurrentFileWrites(t *testing.T, factory StoreFactory) {
	store := factory(t)
	createProject(t, store, "snake", "")

	const workers = 8
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = store.WriteDraftFileMetadata(t.Context(), "snake", []string{fmt.Sprintf("file%d.txt", i)},
				metadata.UploadedFile{Mimetype: "text/plain", Size: int64(i)}, fmt.Sprintf("sha%d", i))
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("write %d failed: %v", i, err)
		}
	}
	if n := len(getProject(t, store, "snake", metadata.Draft()).Version.Files); n != workers {
		t.Errorf("draft lists %d files, want %d", n, workers)
	}
}
