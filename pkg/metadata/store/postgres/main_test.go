//go:build integration

package postgres

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// sharedConfig points at the PostgreSQL container shared by all tests.
var sharedConfig *Config

func TestMain(m *testing.M) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_DB":       "badgehub_test",
			"POSTGRES_USER":     "badgehub_test",
			"POSTGRES_PASSWORD": "badgehub_test",
		},
		WaitingFor: wait.ForAll(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
			wait.ForListeningPort("5432/tcp"),
		),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start postgres container: %v\n", err)
		os.Exit(1)
	}

	host, err := container.Host(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		fmt.Fprintf(os.Stderr, "failed to get container host: %v\n", err)
		os.Exit(1)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		_ = container.Terminate(ctx)
		fmt.Fprintf(os.Stderr, "failed to get container port: %v\n", err)
		os.Exit(1)
	}
	portNum, _ := strconv.Atoi(port.Port())

	sharedConfig = &Config{
		Host:        host,
		Port:        portNum,
		Database:    "badgehub_test",
		User:        "badgehub_test",
		Password:    "badgehub_test",
		SSLMode:     "disable",
		AutoMigrate: true,
	}

	exitCode := m.Run()

	if err := container.Terminate(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "failed to terminate container: %v\n", err)
	}
	os.Exit(exitCode)
}

// newTestStore opens a store on the shared container with every table
// emptied. Tests using it must not run in parallel.
func newTestStore(t *testing.T) *Store {
	t.Helper()

	cfg := *sharedConfig
	store, err := New(t.Context(), &cfg)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	_, err = store.Pool().Exec(t.Context(), `
		TRUNCATE project_api_tokens, event_reports, registered_badges, files, versions, projects RESTART IDENTITY CASCADE`)
	if err != nil {
		t.Fatalf("truncate failed: %v", err)
	}
	if err := store.RefreshReports(t.Context()); err != nil {
		t.Fatalf("RefreshReports() failed: %v", err)
	}
	return store
}
