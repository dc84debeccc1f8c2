package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// useRecorder routes spans into an in-memory recorder for the test.
func useRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	state.RLock()
	prevTracer, prevEnabled := state.tracer, state.enabled
	state.RUnlock()

	sr := tracetest.NewSpanRecorder()
	UseTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr)))

	t.Cleanup(func() {
		state.Lock()
		state.tracer, state.enabled = prevTracer, prevEnabled
		state.Unlock()
	})
	return sr
}

func attrMap(attrs []attribute.KeyValue) map[string]attribute.Value {
	m := make(map[string]attribute.Value, len(attrs))
	for _, a := range attrs {
		m[string(a.Key)] = a.Value
	}
	return m
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.False(t, cfg.Enabled)
	assert.Equal(t, "badgehub", cfg.ServiceName)
	assert.Equal(t, "dev", cfg.ServiceVersion)
	assert.Equal(t, "localhost:4317", cfg.Endpoint)
	assert.True(t, cfg.Insecure)
	assert.Equal(t, 1.0, cfg.SampleRate)
}

func TestSampleRatio(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{-1, 0},
		{0, 0},
		{0.25, 0.25},
		{1, 1},
		{7, 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Config{SampleRate: tt.in}.sampleRatio(), "rate %v", tt.in)
	}
}

func TestInitDisabled(t *testing.T) {
	ctx := context.Background()
	cfg := DefaultConfig()

	shutdown, err := Init(ctx, cfg)
	require.NoError(t, err)
	require.NotNil(t, shutdown)

	assert.NoError(t, shutdown(ctx))
	assert.False(t, IsEnabled())
}

func TestNewExporter(t *testing.T) {
	ctx := context.Background()
	cfg := DefaultConfig()
	cfg.Endpoint = "127.0.0.1:4317"

	exporter, err := newExporter(ctx, cfg)
	require.NoError(t, err)
	require.NotNil(t, exporter)

	var _ sdktrace.SpanExporter = exporter
	assert.NoError(t, exporter.Shutdown(ctx))
}

func TestNewSampler(t *testing.T) {
	assert.Equal(t, sdktrace.AlwaysSample().Description(), newSampler(1).Description())
	assert.Equal(t, sdktrace.NeverSample().Description(), newSampler(0).Description())
	assert.Contains(t, newSampler(0.5).Description(), "ParentBased")
}

func TestNoopHelpers(t *testing.T) {
	ctx := context.Background()

	newCtx, span := StartSpan(ctx, "test.operation")
	require.NotNil(t, newCtx)
	span.End()

	require.NotPanics(t, func() {
		RecordError(ctx, nil)
		RecordError(ctx, errors.New("boom"))
		SetAttributes(ctx, Slug("snake"))
	})

	assert.Empty(t, TraceID(ctx))
	assert.Empty(t, SpanID(ctx))
}

func TestAttributeHelpers(t *testing.T) {
	tests := []struct {
		attr attribute.KeyValue
		key  string
		want any
	}{
		{Slug("snake"), AttrSlug, "snake"},
		{Revision(3), AttrRevision, int64(3)},
		{Selector("latest"), AttrSelector, "latest"},
		{Path("assets/icon.png"), AttrPath, "assets/icon.png"},
		{Mimetype("image/png"), AttrMimetype, "image/png"},
		{Size(2048), AttrSize, int64(2048)},
		{BadgeID("badge-1"), AttrBadgeID, "badge-1"},
		{EventType("install_count"), AttrEventType, "install_count"},
		{Engine("sqlite"), AttrEngine, "sqlite"},
		{CacheHit(true), AttrCacheHit, true},
		{CacheName("stats"), AttrCacheName, "stats"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.key, string(tt.attr.Key))
			assert.Equal(t, tt.want, tt.attr.Value.AsInterface())
		})
	}
}

func TestStartMetadataSpan(t *testing.T) {
	sr := useRecorder(t)

	ctx, span := StartMetadataSpan(context.Background(), "PublishVersion", Slug("snake"))
	assert.NotEmpty(t, TraceID(ctx))
	assert.NotEmpty(t, SpanID(ctx))
	RecordError(ctx, errors.New("no draft"))
	span.End()

	ended := sr.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "metadata.PublishVersion", ended[0].Name())
	assert.Equal(t, codes.Error, ended[0].Status().Code)

	attrs := attrMap(ended[0].Attributes())
	assert.Equal(t, "snake", attrs[AttrSlug].AsString())
	assert.Equal(t, "PublishVersion", attrs[AttrOperation].AsString())
}

func TestStartCacheSpan(t *testing.T) {
	sr := useRecorder(t)

	_, span := StartCacheSpan(context.Background(), "get", CacheHit(false))
	span.End()

	ended := sr.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "statscache.get", ended[0].Name())
	assert.False(t, attrMap(ended[0].Attributes())[AttrCacheHit].AsBool())
}

func TestStartCLISpan(t *testing.T) {
	sr := useRecorder(t)

	_, span := StartCLISpan(context.Background(), "migrate")
	span.End()

	require.Len(t, sr.Ended(), 1)
	assert.Equal(t, "cli.migrate", sr.Ended()[0].Name())
}

func TestParseProfileType(t *testing.T) {
	for _, name := range DefaultProfileTypes {
		_, err := parseProfileType(name)
		assert.NoError(t, err, name)
	}

	_, err := parseProfileType("heap")
	assert.Error(t, err)
}

func TestInitProfilingDisabled(t *testing.T) {
	shutdown, err := InitProfiling(ProfilingConfig{})
	require.NoError(t, err)
	assert.NoError(t, shutdown())
	assert.False(t, IsProfilingEnabled())
}

func TestInitProfilingRejectsUnknownType(t *testing.T) {
	_, err := InitProfiling(ProfilingConfig{Enabled: true, ProfileTypes: []string{"cpu", "bogus"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bogus")
}
