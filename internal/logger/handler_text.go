package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
)

const textTimeFormat = "2006-01-02 15:04:05.000"

// ColorTextHandler writes one human-readable line per record:
//
//	[2026-01-02 15:04:05.000] [INFO] Version published slug=snake revision=3
//
// Group names prefix attribute keys with a dot. Values containing spaces,
// quotes or '=' are quoted so lines stay splittable.
type ColorTextHandler struct {
	opts     *slog.HandlerOptions
	w        io.Writer
	mu       *sync.Mutex
	prefix   string // dotted group path, with trailing dot
	preAttrs []byte // attrs from WithAttrs, already rendered
	useColor bool
}

// NewColorTextHandler creates a handler writing to w.
func NewColorTextHandler(w io.Writer, opts *slog.HandlerOptions, useColor bool) *ColorTextHandler {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}
	return &ColorTextHandler{
		opts:     opts,
		w:        w,
		mu:       &sync.Mutex{},
		useColor: useColor,
	}
}

func (h *ColorTextHandler) Enabled(_ context.Context, level slog.Level) bool {
	minLevel := slog.LevelInfo
	if h.opts.Level != nil {
		minLevel = h.opts.Level.Level()
	}
	return level >= minLevel
}

func (h *ColorTextHandler) Handle(_ context.Context, r slog.Record) error {
	buf := make([]byte, 0, 256)
	buf = append(buf, '[')
	buf = r.Time.AppendFormat(buf, textTimeFormat)
	buf = append(buf, "] ["...)
	buf = h.appendLevel(buf, r.Level)
	buf = append(buf, "] "...)
	buf = append(buf, r.Message...)

	buf = append(buf, h.preAttrs...)
	r.Attrs(func(a slog.Attr) bool {
		buf = h.appendAttr(buf, h.prefix, a)
		return true
	})
	buf = append(buf, '\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(buf)
	return err
}

func (h *ColorTextHandler) appendLevel(buf []byte, level slog.Level) []byte {
	name, color := "ERROR", colorRed
	switch {
	case level < slog.LevelInfo:
		name, color = "DEBUG", colorGray
	case level < slog.LevelWarn:
		name, color = "INFO", colorGreen
	case level < slog.LevelError:
		name, color = "WARN", colorYellow
	}

	if !h.useColor {
		return append(buf, name...)
	}
	buf = append(buf, color...)
	buf = append(buf, name...)
	return append(buf, colorReset...)
}

func (h *ColorTextHandler) appendAttr(buf []byte, prefix string, a slog.Attr) []byte {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return buf
	}

	if a.Value.Kind() == slog.KindGroup {
		group := a.Value.Group()
		if len(group) == 0 {
			return buf
		}
		// An inline group (empty key) keeps the current prefix.
		if a.Key != "" {
			prefix += a.Key + "."
		}
		for _, ga := range group {
			buf = h.appendAttr(buf, prefix, ga)
		}
		return buf
	}

	buf = append(buf, ' ')
	if h.useColor {
		buf = append(buf, colorCyan...)
	}
	buf = append(buf, prefix...)
	buf = append(buf, a.Key...)
	if h.useColor {
		buf = append(buf, colorReset...)
	}
	buf = append(buf, '=')
	return appendValue(buf, a.Value)
}

func appendValue(buf []byte, v slog.Value) []byte {
	switch v.Kind() {
	case slog.KindString:
		return appendMaybeQuoted(buf, v.String())
	case slog.KindInt64:
		return strconv.AppendInt(buf, v.Int64(), 10)
	case slog.KindUint64:
		return strconv.AppendUint(buf, v.Uint64(), 10)
	case slog.KindFloat64:
		return strconv.AppendFloat(buf, v.Float64(), 'f', 3, 64)
	case slog.KindBool:
		return strconv.AppendBool(buf, v.Bool())
	case slog.KindDuration:
		return append(buf, v.Duration().String()...)
	case slog.KindTime:
		return v.Time().AppendFormat(buf, time.RFC3339)
	default:
		return appendMaybeQuoted(buf, fmt.Sprint(v.Any()))
	}
}

func appendMaybeQuoted(buf []byte, s string) []byte {
	if s == "" || strings.ContainsAny(s, " \t\n\"=") {
		return strconv.AppendQuote(buf, s)
	}
	return append(buf, s...)
}

func (h *ColorTextHandler) clone() *ColorTextHandler {
	c := *h
	c.preAttrs = append([]byte(nil), h.preAttrs...)
	return &c
}

// WithAttrs renders attrs once so records only append their own.
func (h *ColorTextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	c := h.clone()
	for _, a := range attrs {
		c.preAttrs = c.appendAttr(c.preAttrs, c.prefix, a)
	}
	return c
}

func (h *ColorTextHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	c := h.clone()
	c.prefix += name + "."
	return c
}
