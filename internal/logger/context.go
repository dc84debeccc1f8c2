package logger

import (
	"context"
	"time"
)

type logContextKey struct{}

// LogContext carries per-call fields that the *Ctx functions put in front
// of every record. Values are treated as immutable: the With methods
// return modified copies and a nil receiver stays nil.
type LogContext struct {
	TraceID   string
	SpanID    string
	Operation string // e.g. publish_version
	Slug      string
	Revision  *int
	Actor     string // owner or token subject
	StartTime time.Time
}

// NewLogContext starts a LogContext for operation, timed from now.
func NewLogContext(operation string) *LogContext {
	return &LogContext{Operation: operation, StartTime: time.Now()}
}

// WithContext attaches lc to ctx.
func WithContext(ctx context.Context, lc *LogContext) context.Context {
	return context.WithValue(ctx, logContextKey{}, lc)
}

// FromContext returns the LogContext attached to ctx, if any. A nil ctx
// is allowed.
func FromContext(ctx context.Context) *LogContext {
	if ctx == nil {
		return nil
	}
	lc, _ := ctx.Value(logContextKey{}).(*LogContext)
	return lc
}

// Clone returns a deep copy.
func (lc *LogContext) Clone() *LogContext {
	if lc == nil {
		return nil
	}
	c := *lc
	if lc.Revision != nil {
		c.Revision = new(int)
		*c.Revision = *lc.Revision
	}
	return &c
}

func (lc *LogContext) derive(set func(*LogContext)) *LogContext {
	c := lc.Clone()
	if c != nil {
		set(c)
	}
	return c
}

func (lc *LogContext) WithSlug(slug string) *LogContext {
	return lc.derive(func(c *LogContext) { c.Slug = slug })
}

func (lc *LogContext) WithRevision(revision int) *LogContext {
	return lc.derive(func(c *LogContext) { c.Revision = &revision })
}

func (lc *LogContext) WithActor(actor string) *LogContext {
	return lc.derive(func(c *LogContext) { c.Actor = actor })
}

// WithTrace records the active span so log lines can be joined to traces.
func (lc *LogContext) WithTrace(traceID, spanID string) *LogContext {
	return lc.derive(func(c *LogContext) { c.TraceID, c.SpanID = traceID, spanID })
}

// DurationMs is the time since StartTime in milliseconds, or 0 when unset.
func (lc *LogContext) DurationMs() float64 {
	if lc == nil || lc.StartTime.IsZero() {
		return 0
	}
	return Duration(lc.StartTime)
}
