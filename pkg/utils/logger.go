package utils

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// LogLevel represents the verbosity level of logging
type LogLevel int

const (
	ErrorLevel LogLevel = iota
	WarningLevel
	InfoLevel
	DebugLevel
	TraceLevel
)

// LevelTrace is a slog level below Debug used for per-tick detail
const LevelTrace = slog.LevelDebug - 4

// String returns a string representation of the log level
func (l LogLevel) String() string {
	switch l {
	case ErrorLevel:
		return "ERROR"
	case WarningLevel:
		return "WARNING"
	case InfoLevel:
		return "INFO"
	case DebugLevel:
		return "DEBUG"
	case TraceLevel:
		return "TRACE"
	default:
		return "UNKNOWN"
	}
}

// slogLevel maps the level onto slog's scale
func (l LogLevel) slogLevel() slog.Level {
	switch l {
	case ErrorLevel:
		return slog.LevelError
	case WarningLevel:
		return slog.LevelWarn
	case InfoLevel:
		return slog.LevelInfo
	case DebugLevel:
		return slog.LevelDebug
	default:
		return LevelTrace
	}
}

// ParseLevel maps a level name to a LogLevel. Unknown names give InfoLevel.
func ParseLevel(s string) LogLevel {
	switch strings.ToLower(s) {
	case "error":
		return ErrorLevel
	case "warn", "warning":
		return WarningLevel
	case "debug":
		return DebugLevel
	case "trace":
		return TraceLevel
	default:
		return InfoLevel
	}
}

// Logger is a leveled logger with helpers for each engine subsystem.
// Messages take slog-style key/value pairs.
type Logger struct {
	Level LogLevel
	slog  *slog.Logger
}

// NewLogger creates a logger writing text or JSON records to w
func NewLogger(level LogLevel, format string, w io.Writer) *Logger {
	opts := &slog.HandlerOptions{
		Level: level.slogLevel(),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Label the custom trace level
			if a.Key == slog.LevelKey {
				if lvl, ok := a.Value.Any().(slog.Level); ok && lvl == LevelTrace {
					a.Value = slog.StringValue("TRACE")
				}
			}
			return a
		},
	}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return &Logger{Level: level, slog: slog.New(handler)}
}

// NewFileLogger creates a logger that appends to a file
func NewFileLogger(level LogLevel, format, filename string) (*Logger, error) {
	file, err := os.OpenFile(filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	return NewLogger(level, format, file), nil
}

// Discard returns a logger that drops everything
func Discard() *Logger {
	return NewLogger(ErrorLevel, "text", io.Discard)
}

// With returns a logger that adds the given attributes to every record
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Level: l.Level, slog: l.slog.With(args...)}
}

// Slog exposes the underlying slog.Logger
func (l *Logger) Slog() *slog.Logger {
	return l.slog
}

// Enabled reports whether records at level would be written
func (l *Logger) Enabled(level LogLevel) bool {
	return l != nil && level <= l.Level
}

// log logs a message at the specified level
func (l *Logger) log(level LogLevel, msg string, args ...any) {
	if !l.Enabled(level) {
		return
	}
	l.slog.Log(context.Background(), level.slogLevel(), msg, args...)
}

// Error logs an error message
func (l *Logger) Error(msg string, args ...any) {
	l.log(ErrorLevel, msg, args...)
}

// Warning logs a warning message
func (l *Logger) Warning(msg string, args ...any) {
	l.log(WarningLevel, msg, args...)
}

// Info logs an informational message
func (l *Logger) Info(msg string, args ...any) {
	l.log(InfoLevel, msg, args...)
}

// Debug logs a debug message
func (l *Logger) Debug(msg string, args ...any) {
	l.log(DebugLevel, msg, args...)
}

// Trace logs a trace message (highest verbosity)
func (l *Logger) Trace(msg string, args ...any) {
	l.log(TraceLevel, msg, args...)
}

// Circuit logs graph mutations
func (l *Logger) Circuit(msg string, args ...any) {
	l.log(DebugLevel, "CIRCUIT: "+msg, args...)
}

// Interaction logs gesture transitions
func (l *Logger) Interaction(msg string, args ...any) {
	l.log(DebugLevel, "INTERACTION: "+msg, args...)
}

// Sweep logs consistency sweep results
func (l *Logger) Sweep(msg string, args ...any) {
	l.log(DebugLevel, "SWEEP: "+msg, args...)
}

// Propagation logs per-tick signal movement
func (l *Logger) Propagation(msg string, args ...any) {
	l.log(TraceLevel, "PROPAGATION: "+msg, args...)
}

// DefaultLogger is the default logger instance
var DefaultLogger = NewLogger(InfoLevel, "text", os.Stderr)

// SetDefaultLogLevel replaces the default logger with one at the given level
func SetDefaultLogLevel(level LogLevel) {
	DefaultLogger = NewLogger(level, "text", os.Stderr)
}
