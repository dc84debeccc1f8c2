//go:build integration

package gormstore

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/badgehub/badgehub/pkg/metadata"
	"github.com/badgehub/badgehub/pkg/metadata/storetest"
)

// TestConformancePostgres runs the suite through GORM against PostgreSQL.
func TestConformancePostgres(t *testing.T) {
	ctx := t.Context()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("badgehub_gorm"),
		tcpostgres.WithUsername("badgehub"),
		tcpostgres.WithPassword("badgehub"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(container) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)
	portNum, err := strconv.Atoi(port.Port())
	require.NoError(t, err)

	cfg := Config{
		Type: DatabaseTypePostgres,
		Postgres: PostgresConfig{
			Host:     host,
			Port:     portNum,
			Database: "badgehub_gorm",
			User:     "badgehub",
			Password: "badgehub",
		},
	}

	storetest.RunConformanceSuite(t, func(t *testing.T) metadata.MetadataStore {
		c := cfg
		store, err := New(t.Context(), &c)
		require.NoError(t, err)
		t.Cleanup(func() { _ = store.Close() })

		require.NoError(t, store.DB().Exec(
			`TRUNCATE project_api_tokens, event_reports, registered_badges, files, versions, projects RESTART IDENTITY CASCADE`).Error)
		return store
	})
}
