package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// ParseLogLevel converts a string log level to slog.Level. Unknown levels
// map to info.
func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// InitLogger creates a logger with the specified log level.
// Uses colourised text on stderr for dev, JSON on stderr otherwise, so
// command output on stdout stays machine readable.
func InitLogger(logLevel slog.Level, environment string) *slog.Logger {
	return New(os.Stderr, logLevel, environment)
}

// New is InitLogger with an explicit writer.
func New(w io.Writer, logLevel slog.Level, environment string) *slog.Logger {
	if environment == "dev" {
		return slog.New(
			tint.NewHandler(w, &tint.Options{
				Level:      logLevel,
				TimeFormat: time.Kitchen,
			}),
		)
	}
	return slog.New(
		slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level: logLevel,
		}))
}

// SDKLogger adapts a *slog.Logger to the printf-style Logger interface the
// rest and auth packages accept.
type SDKLogger struct {
	l *slog.Logger
}

// SDK wraps l. A nil l uses slog.Default().
func SDK(l *slog.Logger) *SDKLogger {
	if l == nil {
		l = slog.Default()
	}
	return &SDKLogger{l: l}
}

func (s *SDKLogger) Debugf(format string, args ...any) {
	s.logf(slog.LevelDebug, format, args...)
}

func (s *SDKLogger) Errorf(format string, args ...any) {
	s.logf(slog.LevelError, format, args...)
}

func (s *SDKLogger) logf(level slog.Level, format string, args ...any) {
	ctx := context.Background()
	if !s.l.Enabled(ctx, level) {
		return
	}
	s.l.Log(ctx, level, fmt.Sprintf(format, args...))
}
