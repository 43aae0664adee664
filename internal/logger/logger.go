// Package logger provides structured logging on top of log/slog with
// context-first methods and optional trace ID enrichment.
package logger

import (
	"context"
	"io"
	"log/slog"
	"time"
)

// Level represents a logging level.
type Level slog.Level

// Logging levels.
const (
	LevelDebug = Level(slog.LevelDebug)
	LevelInfo  = Level(slog.LevelInfo)
	LevelWarn  = Level(slog.LevelWarn)
	LevelError = Level(slog.LevelError)
)

// TraceIDFn extracts a trace ID from the context for log correlation.
type TraceIDFn func(ctx context.Context) string

// LoggerInterface is the logging contract used throughout the application.
type LoggerInterface interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)
	With(args ...any) LoggerInterface
}

// Logger wraps slog with service metadata and trace correlation.
type Logger struct {
	handler   slog.Handler
	traceIDFn TraceIDFn
}

// Ensure Logger implements LoggerInterface.
var _ LoggerInterface = (*Logger)(nil)

// New creates a Logger writing JSON records to w at the given minimum level.
// traceIDFn may be nil.
func New(w io.Writer, minLevel Level, serviceName string, traceIDFn TraceIDFn) *Logger {
	var handler slog.Handler = slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: slog.Level(minLevel),
	})

	if serviceName != "" {
		handler = handler.WithAttrs([]slog.Attr{
			slog.String("service", serviceName),
		})
	}

	return &Logger{
		handler:   handler,
		traceIDFn: traceIDFn,
	}
}

// Debug logs at debug level.
func (l *Logger) Debug(ctx context.Context, msg string, args ...any) {
	l.write(ctx, slog.LevelDebug, msg, args...)
}

// Info logs at info level.
func (l *Logger) Info(ctx context.Context, msg string, args ...any) {
	l.write(ctx, slog.LevelInfo, msg, args...)
}

// Warn logs at warn level.
func (l *Logger) Warn(ctx context.Context, msg string, args ...any) {
	l.write(ctx, slog.LevelWarn, msg, args...)
}

// Error logs at error level.
func (l *Logger) Error(ctx context.Context, msg string, args ...any) {
	l.write(ctx, slog.LevelError, msg, args...)
}

// With returns a Logger that includes the given attributes in every record.
func (l *Logger) With(args ...any) LoggerInterface {
	return &Logger{
		handler:   l.handler.WithAttrs(argsToAttrs(args)),
		traceIDFn: l.traceIDFn,
	}
}

func (l *Logger) write(ctx context.Context, level slog.Level, msg string, args ...any) {
	if !l.handler.Enabled(ctx, level) {
		return
	}

	r := slog.NewRecord(time.Now(), level, msg, 0)
	r.Add(args...)

	if l.traceIDFn != nil {
		if traceID := l.traceIDFn(ctx); traceID != "" {
			r.Add("trace_id", traceID)
		}
	}

	_ = l.handler.Handle(ctx, r)
}

func argsToAttrs(args []any) []slog.Attr {
	var attrs []slog.Attr
	for i := 0; i+1 < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			continue
		}
		attrs = append(attrs, slog.Any(key, args[i+1]))
	}
	return attrs
}
