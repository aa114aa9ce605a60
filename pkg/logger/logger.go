// Package logger provides structured logging for the recruitment dashboard.
// It keeps a small Field-based API on top of zap so call sites never import zap directly.
package logger

import (
	"context"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ══════════════════════════════════════════════════════════════════════════════
// LEVELS
// ══════════════════════════════════════════════════════════════════════════════

// Level is the minimum severity that gets written.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levels = [...]struct {
	name string
	zap  zapcore.Level
}{
	LevelDebug: {"DEBUG", zapcore.DebugLevel},
	LevelInfo:  {"INFO", zapcore.InfoLevel},
	LevelWarn:  {"WARN", zapcore.WarnLevel},
	LevelError: {"ERROR", zapcore.ErrorLevel},
}

func (l Level) String() string {
	if l < LevelDebug || l > LevelError {
		return "UNKNOWN"
	}
	return levels[l].name
}

// ParseLevel accepts the level names case-insensitively plus "warning".
// Anything else is LevelInfo.
func ParseLevel(s string) Level {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "WARNING" {
		return LevelWarn
	}
	for l, def := range levels {
		if def.name == s {
			return Level(l)
		}
	}
	return LevelInfo
}

func (l Level) zapLevel() zapcore.Level {
	if l < LevelDebug || l > LevelError {
		return zapcore.InfoLevel
	}
	return levels[l].zap
}

// ══════════════════════════════════════════════════════════════════════════════
// FIELDS
// ══════════════════════════════════════════════════════════════════════════════

// Field is one key-value pair of a log entry.
type Field struct {
	Key   string
	Value any
}

func String(key, value string) Field    { return Field{key, value} }
func Int(key string, value int) Field   { return Field{key, value} }
func Bool(key string, value bool) Field { return Field{key, value} }
func Any(key string, value any) Field   { return Field{key, value} }

// Err logs the error text under "error". A nil error is omitted.
func Err(err error) Field {
	if err == nil {
		return Field{"error", nil}
	}
	return Field{"error", err.Error()}
}

// Duration renders d with time.Duration.String.
func Duration(key string, d time.Duration) Field { return Field{key, d.String()} }

// Domain fields.
func School(name string) Field      { return String("school", name) }
func Program(name string) Field     { return String("program", name) }
func StudentID(id string) Field     { return String("student_id", id) }
func Component(name string) Field   { return String("component", name) }
func Latency(d time.Duration) Field { return Duration("latency", d) }

func (f Field) zap() zap.Field {
	switch v := f.Value.(type) {
	case nil:
		return zap.Skip()
	case string:
		return zap.String(f.Key, v)
	case int:
		return zap.Int(f.Key, v)
	case bool:
		return zap.Bool(f.Key, v)
	}
	return zap.Any(f.Key, f.Value)
}

func toZap(fields []Field) []zap.Field {
	out := make([]zap.Field, len(fields))
	for i, f := range fields {
		out[i] = f.zap()
	}
	return out
}

// ══════════════════════════════════════════════════════════════════════════════
// LOGGER
// ══════════════════════════════════════════════════════════════════════════════

// Options configures New.
type Options struct {
	Output    io.Writer // stdout when nil
	Level     Level
	Format    string // "json", or "console"/"text"
	AddCaller bool
}

// DefaultOptions writes JSON at info level to stdout.
func DefaultOptions() Options {
	return Options{Output: os.Stdout, Level: LevelInfo, Format: "json", AddCaller: true}
}

// Logger wraps a zap logger.
type Logger struct {
	z *zap.Logger
}

func New(opts Options) *Logger {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	enc := zap.NewProductionEncoderConfig()
	enc.TimeKey = "timestamp"
	enc.MessageKey = "message"
	enc.EncodeTime = zapcore.RFC3339NanoTimeEncoder
	enc.EncodeLevel = zapcore.CapitalLevelEncoder

	encoder := zapcore.NewJSONEncoder(enc)
	switch strings.ToLower(opts.Format) {
	case "console", "text":
		encoder = zapcore.NewConsoleEncoder(enc)
	}

	var zopts []zap.Option
	if opts.AddCaller {
		zopts = append(zopts, zap.AddCaller(), zap.AddCallerSkip(1))
	}
	core := zapcore.NewCore(encoder, zapcore.AddSync(out), opts.Level.zapLevel())
	return &Logger{z: zap.New(core, zopts...)}
}

// Default is New(DefaultOptions()).
func Default() *Logger {
	return New(DefaultOptions())
}

// Nop discards everything.
func Nop() *Logger {
	return &Logger{z: zap.NewNop()}
}

func (l *Logger) With(fields ...Field) *Logger {
	return &Logger{z: l.z.With(toZap(fields)...)}
}

// WithRequestID tags every entry with request_id.
func (l *Logger) WithRequestID(id string) *Logger {
	return l.With(String("request_id", id))
}

func (l *Logger) Debug(msg string, fields ...Field) { l.z.Debug(msg, toZap(fields)...) }
func (l *Logger) Info(msg string, fields ...Field)  { l.z.Info(msg, toZap(fields)...) }
func (l *Logger) Warn(msg string, fields ...Field)  { l.z.Warn(msg, toZap(fields)...) }
func (l *Logger) Error(msg string, fields ...Field) { l.z.Error(msg, toZap(fields)...) }

// StdLogger adapts l for APIs that want a *log.Logger, such as
// http.Server.ErrorLog. Entries are written at warn level.
func (l *Logger) StdLogger() *log.Logger {
	std, err := zap.NewStdLogAt(l.z, zapcore.WarnLevel)
	if err != nil {
		return zap.NewStdLog(l.z)
	}
	return std
}

// Sync flushes buffered entries.
func (l *Logger) Sync() error {
	return l.z.Sync()
}

// ══════════════════════════════════════════════════════════════════════════════
// CONTEXT
// ══════════════════════════════════════════════════════════════════════════════

type ctxKey struct{}

func WithContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the request logger, or Default when there is none.
func FromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(ctxKey{}).(*Logger); ok {
		return l
	}
	return Default()
}
