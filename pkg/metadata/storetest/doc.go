// Package storetest provides a conformance test suite for metadata store implementations.
//
// Every engine (gormstore on SQLite or PostgreSQL, the native postgres store)
// must pass it. The suite pins the behavioral contract of
// metadata.MetadataStore: revision bookkeeping, publish atomicity, upsert
// conflict rules, tombstone filtering and stats.
//
// Usage:
//
//	func TestConformance(t *testing.T) {
//	    storetest.RunConformanceSuite(t, func(t *testing.T) metadata.MetadataStore {
//	        store, err := gormstore.New(t.Context(), &gormstore.Config{
//	            Type:   gormstore.DatabaseTypeSQLite,
//	            SQLite: gormstore.SQLiteConfig{Path: filepath.Join(t.TempDir(), "metadata.db")},
//	        })
//	        ...
//	    })
//	}
//
// The factory receives *testing.T so it can call t.TempDir() and register
// teardown with t.Cleanup. Each test gets a fresh, empty store.
package storetest
