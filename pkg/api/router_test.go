package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/badgehub/badgehub/pkg/metrics"
)

type checkerFunc func(ctx context.Context) error

func (f checkerFunc) Healthcheck(ctx context.Context) error { return f(ctx) }

func get(t *testing.T, h http.Handler, path string) (*httptest.ResponseRecorder, response) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	var body response
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func TestLiveness(t *testing.T) {
	rec, body := get(t, NewRouter(nil), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", body.Status)
}

func TestReadiness(t *testing.T) {
	t.Run("Healthy", func(t *testing.T) {
		r := NewRouter(checkerFunc(func(context.Context) error { return nil }))
		rec, body := get(t, r, "/healthz/ready")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "healthy", body.Status)
	})

	t.Run("StoreDown", func(t *testing.T) {
		r := NewRouter(checkerFunc(func(context.Context) error { return errors.New("connection refused") }))
		rec, body := get(t, r, "/healthz/ready")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, "unhealthy", body.Status)
		assert.Contains(t, body.Error, "connection refused")
	})

	t.Run("NoStore", func(t *testing.T) {
		rec, _ := get(t, NewRouter(nil), "/healthz/ready")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestMetricsEndpoint(t *testing.T) {
	t.Run("Disabled", func(t *testing.T) {
		metrics.Reset()
		rec, _ := get(t, NewRouter(nil), "/metrics")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("Enabled", func(t *testing.T) {
		metrics.InitRegistry()
		t.Cleanup(metrics.Reset)

		rec, _ := get(t, NewRouter(nil), "/metrics")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "go_goroutines")
	})
}

func TestServerDefaults(t *testing.T) {
	s := NewServer(Config{}, nil)
	assert.Equal(t, 9090, s.Port())
	assert.Equal(t, ":9090", s.server.Addr)
}
