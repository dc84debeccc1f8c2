package gormstore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/badgehub/badgehub/pkg/metadata"
	"github.com/badgehub/badgehub/pkg/metadata/models"
	"github.com/badgehub/badgehub/pkg/metadata/storetest"
)

// newSQLiteStore opens a store on a fresh database file in a temp dir.
func newSQLiteStore(t *testing.T) *GORMStore {
	t.Helper()

	store, err := New(t.Context(), &Config{
		Type:   DatabaseTypeSQLite,
		SQLite: SQLiteConfig{Path: filepath.Join(t.TempDir(), "metadata.db")},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestConformanceSQLite(t *testing.T) {
	storetest.RunConformanceSuite(t, func(t *testing.T) metadata.MetadataStore {
		return newSQLiteStore(t)
	})
}

func TestConfigApplyDefaults(t *testing.T) {
	t.Run("SQLite", func(t *testing.T) {
		t.Setenv("XDG_DATA_HOME", "/data")
		cfg := &Config{}
		cfg.ApplyDefaults()

		assert.Equal(t, DatabaseTypeSQLite, cfg.Type)
		assert.Equal(t, "/data/badgehub/metadata.db", cfg.SQLite.Path)
		assert.Equal(t, 5000, cfg.SQLite.BusyTimeoutMs)
	})

	t.Run("Postgres", func(t *testing.T) {
		cfg := &Config{Type: DatabaseTypePostgres}
		cfg.ApplyDefaults()

		assert.Equal(t, 5432, cfg.Postgres.Port)
		assert.Equal(t, "disable", cfg.Postgres.SSLMode)
		assert.Equal(t, 25, cfg.Postgres.MaxOpenConns)
		assert.Equal(t, 5, cfg.Postgres.MaxIdleConns)
		assert.Empty(t, cfg.SQLite.Path)
	})
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"sqlite ok", Config{Type: DatabaseTypeSQLite, SQLite: SQLiteConfig{Path: "x.db"}}, ""},
		{"sqlite no path", Config{Type: DatabaseTypeSQLite}, "sqlite path"},
		{"postgres ok", Config{Type: DatabaseTypePostgres, Postgres: PostgresConfig{Host: "h", Database: "d", User: "u"}}, ""},
		{"postgres no host", Config{Type: DatabaseTypePostgres, Postgres: PostgresConfig{Database: "d", User: "u"}}, "host"},
		{"postgres no user", Config{Type: DatabaseTypePostgres, Postgres: PostgresConfig{Host: "h", Database: "d"}}, "user"},
		{"unknown", Config{Type: "mysql"}, "unsupported"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSQLiteDSN(t *testing.T) {
	c := SQLiteConfig{Path: "/tmp/m.db", BusyTimeoutMs: 100}
	assert.Equal(t, "/tmp/m.db?_pragma=journal_mode(WAL)&_pragma=busy_timeout(100)", c.DSN())
}

func TestPostgresDSN(t *testing.T) {
	c := PostgresConfig{Host: "h", Port: 5433, User: "u", Password: "p", Database: "d", SSLMode: "require"}
	assert.Equal(t, "host=h port=5433 user=u password=p dbname=d sslmode=require", c.DSN())
}

func TestNewCreatesDatabaseDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "metadata.db")

	store, err := New(t.Context(), &Config{SQLite: SQLiteConfig{Path: path}})
	require.NoError(t, err)
	defer store.Close()

	assert.FileExists(t, path)
	require.NoError(t, store.Healthcheck(t.Context()))
}

func TestMigrateIsIdempotent(t *testing.T) {
	store := newSQLiteStore(t)

	require.NoError(t, migrate(t.Context(), store.DB()))
	require.NoError(t, migrate(t.Context(), store.DB()))
}

// The partial unique index keeps a project at one open draft.
func TestSecondDraftRejected(t *testing.T) {
	store := newSQLiteStore(t)
	require.NoError(t, store.InsertProject(t.Context(), metadata.NewProject{Slug: "snake"}, nil))

	err := store.DB().Create(&models.Version{ProjectSlug: "snake", Revision: 5}).Error
	require.Error(t, err)
	assert.True(t, isUniqueConstraintError(err))
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metadata.db")
	cfg := &Config{SQLite: SQLiteConfig{Path: path}}

	store, err := New(t.Context(), cfg)
	require.NoError(t, err)
	require.NoError(t, store.InsertProject(t.Context(), metadata.NewProject{Slug: "snake"}, nil))
	_, err = store.PublishVersion(t.Context(), "snake")
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := New(t.Context(), &Config{SQLite: SQLiteConfig{Path: path}})
	require.NoError(t, err)
	defer reopened.Close()

	p, err := reopened.GetProject(t.Context(), "snake", metadata.Latest())
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, 0, p.Version.Revision)
}
