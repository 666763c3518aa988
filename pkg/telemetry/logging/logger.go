package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Format is the output format for log entries.
type Format string

const (
	// FormatJSON outputs logs as JSON objects, one per line.
	FormatJSON Format = "json"
	// FormatText outputs logs in slog's key=value text format.
	FormatText Format = "text"
)

// Config contains configuration for the Logger.
type Config struct {
	// Level is the minimum log level ("debug", "info", "warn", "error").
	// Default: "info"
	Level string

	// Format is the output format ("json", "text").
	// Default: "json"
	Format string

	// AddSource includes file and line number in log entries.
	AddSource bool

	// Redact enables credential redaction on string attribute values.
	// Default: true when constructed via New with a zero Config.
	Redact bool

	// Writer is the output writer (defaults to os.Stdout).
	Writer io.Writer
}

// Logger provides structured logging with credential redaction.
type Logger struct {
	slog     *slog.Logger
	redactor *Redactor
	level    slog.Level
}

// New creates a Logger with the given configuration.
func New(cfg Config) (*Logger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	writer := cfg.Writer
	if writer == nil {
		writer = os.Stdout
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: cfg.AddSource,
	}

	var handler slog.Handler
	switch Format(strings.ToLower(cfg.Format)) {
	case FormatText:
		handler = slog.NewTextHandler(writer, opts)
	case FormatJSON, Format(""):
		handler = slog.NewJSONHandler(writer, opts)
	default:
		return nil, fmt.Errorf("invalid log format: %q", cfg.Format)
	}

	var redactor *Redactor
	if cfg.Redact {
		redactor = NewRedactor()
	}

	return &Logger{
		slog:     slog.New(handler),
		redactor: redactor,
		level:    level,
	}, nil
}

// NewNop returns a Logger that discards all output. Intended for tests.
func NewNop() *Logger {
	return &Logger{
		slog:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		level: slog.LevelError,
	}
}

// Debug logs at debug level with alternating key/value attributes.
func (l *Logger) Debug(msg string, args ...any) {
	l.slog.Debug(msg, l.redactArgs(args)...)
}

// Info logs at info level with alternating key/value attributes.
func (l *Logger) Info(msg string, args ...any) {
	l.slog.Info(msg, l.redactArgs(args)...)
}

// Warn logs at warn level with alternating key/value attributes.
func (l *Logger) Warn(msg string, args ...any) {
	l.slog.Warn(msg, l.redactArgs(args)...)
}

// Error logs at error level with alternating key/value attributes.
func (l *Logger) Error(msg string, args ...any) {
	l.slog.Error(msg, l.redactArgs(args)...)
}

// With returns a Logger with the given attributes attached to every entry.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		slog:     l.slog.With(l.redactArgs(args)...),
		redactor: l.redactor,
		level:    l.level,
	}
}

// redactArgs applies the redactor to string values in an alternating
// key/value argument list. Keys are never redacted.
func (l *Logger) redactArgs(args []any) []any {
	if l.redactor == nil {
		return args
	}

	out := make([]any, len(args))
	copy(out, args)
	for i := 1; i < len(out); i += 2 {
		if s, ok := out[i].(string); ok {
			out[i] = l.redactor.Redact(s)
		}
	}
	return out
}

// parseLevel converts a level string to a slog.Level.
func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown level %q", s)
	}
}
