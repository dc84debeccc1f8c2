//go:build integration

package statscache

import (
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/badgehub/badgehub/pkg/metadata"
)

// startRedis runs a throwaway Redis and returns its address.
func startRedis(t *testing.T) string {
	t.Helper()
	ctx := t.Context()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor: wait.ForAll(
				wait.ForLog("Ready to accept connections"),
				wait.ForListeningPort("6379/tcp"),
			).WithDeadline(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(container) })

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)
	return endpoint
}

func TestRedisReadThrough(t *testing.T) {
	addr := startRedis(t)
	next := &countingStore{stats: metadata.Stats{Projects: 4, Installs: 3}}
	m := &recordingMetrics{}

	s, err := New(t.Context(), next, Config{Addr: addr, Key: "test:stats"}, m)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	first, err := s.GetStats(t.Context())
	require.NoError(t, err)
	next.stats.Projects = 99
	second, err := s.GetStats(t.Context())
	require.NoError(t, err)

	assert.Equal(t, int64(4), first.Projects)
	assert.Equal(t, *first, *second)
	assert.Equal(t, 1, next.getCount())
	assert.Equal(t, 1, m.hits)
	assert.Equal(t, 1, m.misses)

	require.NoError(t, s.RefreshReports(t.Context()))
	third, err := s.GetStats(t.Context())
	require.NoError(t, err)
	assert.Equal(t, int64(99), third.Projects)
	assert.Equal(t, 1, m.invalidated)
}

func TestRedisEntryExpires(t *testing.T) {
	addr := startRedis(t)
	next := &countingStore{}

	s, err := New(t.Context(), next, Config{Addr: addr, TTL: time.Second}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	_, err = s.GetStats(t.Context())
	require.NoError(t, err)

	ttl, err := s.client.TTL(t.Context(), DefaultKey).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	time.Sleep(1500 * time.Millisecond)
	_, err = s.client.Get(t.Context(), DefaultKey).Result()
	assert.ErrorIs(t, err, redis.Nil)

	_, err = s.GetStats(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 2, next.getCount())
}
