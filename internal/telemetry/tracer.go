package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys recorded on metadata spans.
const (
	AttrSlug      = "badgehub.slug"
	AttrRevision  = "badgehub.revision"
	AttrSelector  = "badgehub.selector"
	AttrPath      = "badgehub.file.path"
	AttrMimetype  = "badgehub.file.mimetype"
	AttrSize      = "badgehub.file.size"
	AttrBadgeID   = "badgehub.badge_id"
	AttrEventType = "badgehub.event_type"
	AttrOperation = "badgehub.operation"

	AttrEngine    = "db.system"
	AttrCacheHit  = "cache.hit"
	AttrCacheName = "cache.name"
)

// Span name prefixes. Spans are named <component>.<Operation>.
const (
	SpanPrefixMetadata  = "metadata."
	SpanPrefixStatCache = "statscache."
	SpanPrefixCLI       = "cli."
)

// Slug returns an attribute for the project slug
func Slug(slug string) attribute.KeyValue {
	return attribute.String(AttrSlug, slug)
}

// Revision returns an attribute for a concrete revision number
func Revision(rev int) attribute.KeyValue {
	return attribute.Int(AttrRevision, rev)
}

// Selector returns an attribute for an unresolved revision selector
func Selector(sel string) attribute.KeyValue {
	return attribute.String(AttrSelector, sel)
}

// Path returns an attribute for a file's full path within a version
func Path(p string) attribute.KeyValue {
	return attribute.String(AttrPath, p)
}

// Mimetype returns an attribute for a file mimetype
func Mimetype(m string) attribute.KeyValue {
	return attribute.String(AttrMimetype, m)
}

// Size returns an attribute for a file size in bytes
func Size(n int64) attribute.KeyValue {
	return attribute.Int64(AttrSize, n)
}

// BadgeID returns an attribute for a registered badge id
func BadgeID(id string) attribute.KeyValue {
	return attribute.String(AttrBadgeID, id)
}

// EventType returns an attribute for a usage event type
func EventType(t string) attribute.KeyValue {
	return attribute.String(AttrEventType, t)
}

// Engine returns an attribute naming the backing database
func Engine(name string) attribute.KeyValue {
	return attribute.String(AttrEngine, name)
}

// CacheHit returns an attribute for cache hit indicator
func CacheHit(hit bool) attribute.KeyValue {
	return attribute.Bool(AttrCacheHit, hit)
}

// CacheName returns an attribute naming a cache
func CacheName(name string) attribute.KeyValue {
	return attribute.String(AttrCacheName, name)
}

// StartMetadataSpan starts a span for a metadata store operation.
func StartMetadataSpan(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, attribute.String(AttrOperation, operation))
	return StartSpan(ctx, SpanPrefixMetadata+operation,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
}

// StartCacheSpan starts a span for a stats cache lookup or write.
func StartCacheSpan(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return StartSpan(ctx, SpanPrefixStatCache+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)
}

// StartCLISpan starts the root span of a CLI command.
func StartCLISpan(ctx context.Context, command string) (context.Context, trace.Span) {
	return StartSpan(ctx, SpanPrefixCLI+command, trace.WithSpanKind(trace.SpanKindInternal))
}
