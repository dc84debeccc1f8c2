package logger

import (
	"log/slog"
	"time"
)

// Standard field keys. Use these consistently so log lines from both
// engines, the service layer and the CLI can be queried the same way.
const (
	// ========================================================================
	// Distributed Tracing
	// ========================================================================
	KeyTraceID = "trace_id"
	KeySpanID  = "span_id"

	// ========================================================================
	// Hub Entities
	// ========================================================================
	KeySlug      = "slug"       // project slug
	KeyRevision  = "revision"   // version revision number
	KeySelector  = "selector"   // revision selector as given: draft, latest, N
	KeyPath      = "path"       // file path within a version
	KeyMimetype  = "mimetype"   // file mime type
	KeySize      = "size"       // file size in bytes
	KeyBadgeID   = "badge_id"   // registered badge id
	KeyEventType = "event_type" // install_count, launch_count, crash_count
	KeyOwnerID   = "owner_id"   // project owner
	KeyActor     = "actor"      // principal performing the call

	// ========================================================================
	// Storage
	// ========================================================================
	KeyEngine   = "engine"   // sqlite, gorm-postgres, postgres
	KeyDatabase = "database" // database name or file
	KeyHost     = "host"
	KeyVersion  = "version" // schema or binary version
	KeyDirty    = "dirty"   // schema migration left dirty
	KeyCache    = "cache"   // cache backend name
	KeyHit      = "hit"     // cache hit

	// ========================================================================
	// Operation Metadata
	// ========================================================================
	KeyOperation  = "operation"
	KeyDurationMs = "duration_ms"
	KeyError      = "error"
	KeyErrorCode  = "error_code"
	KeyAttempt    = "attempt"
	KeyInterval   = "interval"
	KeyAddress    = "address"
	KeyComponent  = "component"
)

// ============================================================================
// Typed attribute helpers
// ============================================================================

func TraceID(id string) slog.Attr { return slog.String(KeyTraceID, id) }

func SpanID(id string) slog.Attr { return slog.String(KeySpanID, id) }

// Slug returns a project slug attribute.
func Slug(slug string) slog.Attr { return slog.String(KeySlug, slug) }

// Revision returns a revision attribute.
func Revision(rev int) slog.Attr { return slog.Int(KeyRevision, rev) }

func Selector(sel string) slog.Attr { return slog.String(KeySelector, sel) }

func Path(p string) slog.Attr { return slog.String(KeyPath, p) }

func Mimetype(m string) slog.Attr { return slog.String(KeyMimetype, m) }

func Size(n int64) slog.Attr { return slog.Int64(KeySize, n) }

func BadgeID(id string) slog.Attr { return slog.String(KeyBadgeID, id) }

func EventType(t string) slog.Attr { return slog.String(KeyEventType, t) }

func Engine(name string) slog.Attr { return slog.String(KeyEngine, name) }

func Operation(op string) slog.Attr { return slog.String(KeyOperation, op) }

func Component(name string) slog.Attr { return slog.String(KeyComponent, name) }

// DurationMs returns a duration attribute in milliseconds.
func DurationMs(ms float64) slog.Attr { return slog.Float64(KeyDurationMs, ms) }

// Elapsed returns the time since start as a duration_ms attribute.
func Elapsed(start time.Time) slog.Attr { return DurationMs(Duration(start)) }

// Err returns an error attribute, or an empty attribute for nil (dropped by handlers).
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

func ErrorCode(code string) slog.Attr { return slog.String(KeyErrorCode, code) }

func Attempt(n int) slog.Attr { return slog.Int(KeyAttempt, n) }
