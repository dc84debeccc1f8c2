package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Level is the minimum severity that is written.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = [...]string{"DEBUG", "INFO", "WARN", "ERROR"}

var slogLevels = [...]slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError}

func (l Level) String() string {
	if l < LevelDebug || l > LevelError {
		return "UNKNOWN"
	}
	return levelNames[l]
}

func (l Level) toSlog() slog.Level {
	if l < LevelDebug || l > LevelError {
		return slog.LevelInfo
	}
	return slogLevels[l]
}

// parseLevel accepts any casing of the level names.
func parseLevel(s string) (Level, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for i, name := range levelNames {
		if name == s {
			return Level(i), true
		}
	}
	return 0, false
}

// Config mirrors the logging section of the badgehub configuration.
type Config struct {
	Level  string // DEBUG, INFO, WARN, ERROR
	Format string // text, json
	Output string // stdout, stderr, or file path
}

const (
	formatText = "text"
	formatJSON = "json"
)

var (
	currentLevel  atomic.Int32
	currentFormat atomic.Value // string: formatText or formatJSON

	// mu guards output, useColor and slogger.
	mu       sync.RWMutex
	output   io.Writer = os.Stdout
	useColor bool      = isTerminal(os.Stdout.Fd())
	slogger  *slog.Logger
)

func init() {
	currentLevel.Store(int32(LevelInfo))
	currentFormat.Store(formatText)
	reconfigure()
}

// reconfigure swaps in a handler built from the current level, format and output.
func reconfigure() {
	opts := &slog.HandlerOptions{Level: Level(currentLevel.Load()).toSlog()}
	format, _ := currentFormat.Load().(string)

	mu.Lock()
	defer mu.Unlock()
	if format == formatJSON {
		slogger = slog.New(slog.NewJSONHandler(output, opts))
		return
	}
	slogger = slog.New(NewColorTextHandler(output, opts, useColor))
}

// openOutput resolves "stdout", "stderr" or a file path to a writer and
// reports whether it can render colors.
func openOutput(dest string) (io.Writer, bool, error) {
	switch strings.ToLower(dest) {
	case "", "stdout":
		return os.Stdout, isTerminal(os.Stdout.Fd()), nil
	case "stderr":
		return os.Stderr, isTerminal(os.Stderr.Fd()), nil
	}
	f, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, false, fmt.Errorf("open log file %q: %w", dest, err)
	}
	return f, false, nil
}

func setOutput(w io.Writer, color bool) {
	mu.Lock()
	output, useColor = w, color
	mu.Unlock()
}

// Init applies cfg. Empty fields keep their current setting.
func Init(cfg Config) error {
	if cfg.Output != "" {
		w, color, err := openOutput(cfg.Output)
		if err != nil {
			return err
		}
		setOutput(w, color)
	}
	applyLevelAndFormat(cfg.Level, cfg.Format)
	return nil
}

// InitWithWriter sends log output to w. Used by tests and embedders.
func InitWithWriter(w io.Writer, level, format string, enableColor bool) {
	setOutput(w, enableColor)
	applyLevelAndFormat(level, format)
}

func applyLevelAndFormat(level, format string) {
	if level != "" {
		SetLevel(level)
	}
	if format != "" {
		SetFormat(format)
	}
	// Output may have changed even when level and format did not.
	reconfigure()
}

// SetLevel changes the minimum level. Unknown names are ignored.
func SetLevel(level string) {
	l, ok := parseLevel(level)
	if !ok {
		return
	}
	currentLevel.Store(int32(l))
	reconfigure()
}

// SetFormat switches between "text" and "json". Anything else is ignored.
func SetFormat(format string) {
	format = strings.ToLower(format)
	if format != formatText && format != formatJSON {
		return
	}
	currentFormat.Store(format)
	reconfigure()
}

func current() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return slogger
}

func enabled(l Level) bool {
	return l >= Level(currentLevel.Load())
}

func emit(ctx context.Context, l Level, msg string, args []any) {
	if !enabled(l) {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	args = withContextFields(ctx, args)
	current().Log(ctx, l.toSlog(), msg, args...)
}

// Debug logs msg with key/value pairs or slog.Attr values.
func Debug(msg string, args ...any) { emit(context.Background(), LevelDebug, msg, args) }

func Info(msg string, args ...any) { emit(context.Background(), LevelInfo, msg, args) }

func Warn(msg string, args ...any) { emit(context.Background(), LevelWarn, msg, args) }

func Error(msg string, args ...any) { emit(context.Background(), LevelError, msg, args) }

// DebugCtx is Debug with the LogContext fields of ctx placed first.
func DebugCtx(ctx context.Context, msg string, args ...any) { emit(ctx, LevelDebug, msg, args) }

func InfoCtx(ctx context.Context, msg string, args ...any) { emit(ctx, LevelInfo, msg, args) }

func WarnCtx(ctx context.Context, msg string, args ...any) { emit(ctx, LevelWarn, msg, args) }

func ErrorCtx(ctx context.Context, msg string, args ...any) { emit(ctx, LevelError, msg, args) }

func withContextFields(ctx context.Context, args []any) []any {
	lc := FromContext(ctx)
	if lc == nil {
		return args
	}

	fields := make([]any, 0, 12+len(args))
	for _, kv := range [...]struct{ key, val string }{
		{KeyTraceID, lc.TraceID},
		{KeySpanID, lc.SpanID},
		{KeyOperation, lc.Operation},
		{KeySlug, lc.Slug},
	} {
		if kv.val != "" {
			fields = append(fields, kv.key, kv.val)
		}
	}
	if lc.Revision != nil {
		fields = append(fields, KeyRevision, *lc.Revision)
	}
	if lc.Actor != "" {
		fields = append(fields, KeyActor, lc.Actor)
	}
	return append(fields, args...)
}

// With returns a logger that carries args on every record. It is bound
// to the handler active at call time.
func With(args ...any) *slog.Logger {
	return current().With(args...)
}

// Duration returns the milliseconds elapsed since start.
func Duration(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000
}
