// Package logger provides the structured logging used by the tacc compiler
// and its command-line tool.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// defaultLogger is nil until Init runs; Default then hands out a logger that
// drops every record.
var defaultLogger *slog.Logger

// LogLevel represents the logging level
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = map[string]LogLevel{
	"debug": LevelDebug,
	"info":  LevelInfo,
	"warn":  LevelWarn,
	"error": LevelError,
}

// ParseLevel maps "debug", "info", "warn" or "error" to a LogLevel.
func ParseLevel(s string) (LogLevel, error) {
	lvl, ok := levelNames[strings.ToLower(s)]
	if !ok {
		return LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
	return lvl, nil
}

// Config holds logger configuration
type Config struct {
	Level     LogLevel
	Format    string // "text" or "json"
	Output    io.Writer
	AddSource bool
}

// DefaultConfig returns the default logger configuration
func DefaultConfig() Config {
	return Config{
		Level:  LevelWarn,
		Format: "text",
		Output: os.Stderr,
	}
}

// New builds a logger from cfg without touching the global one.
func New(cfg Config) (*slog.Logger, error) {
	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}
	opts := &slog.HandlerOptions{
		Level:     toSlogLevel(cfg.Level),
		AddSource: cfg.AddSource,
	}

	var handler slog.Handler
	switch cfg.Format {
	case "", "text":
		handler = slog.NewTextHandler(output, opts)
	case "json":
		handler = slog.NewJSONHandler(output, opts)
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}
	return slog.New(handler), nil
}

// Init initializes the global logger with the given configuration
func Init(cfg Config) error {
	l, err := New(cfg)
	if err != nil {
		return err
	}
	defaultLogger = l
	return nil
}

// Default returns the logger set by Init, or a discarding logger.
func Default() *slog.Logger {
	if defaultLogger != nil {
		return defaultLogger
	}
	return Discard()
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func toSlogLevel(level LogLevel) slog.Level {
	switch level {
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// With returns a new logger with the given attributes
func With(args ...any) *slog.Logger {
	return Default().With(args...)
}

// Compiler-specific logging helpers

// LogLexing logs lexing activity
func LogLexing(l *slog.Logger, tokenCount, diagCount int) {
	l.Debug("Lexing complete", "tokens", tokenCount, "diagnostics", diagCount)
}

// LogParsing logs a finished parse
func LogParsing(l *slog.Logger, instrCount, symbolCount int) {
	l.Debug("Parsing complete", "instructions", instrCount, "symbols", symbolCount)
}

// LogWarning logs a recoverable compilation problem
func LogWarning(l *slog.Logger, phase string, line int, msg string) {
	l.Warn("Compilation warning", "phase", phase, "line", line, "message", msg)
}

// LogError logs a compilation error
func LogError(l *slog.Logger, phase string, line int, msg string) {
	l.Error("Compilation error", "phase", phase, "line", line, "message", msg)
}
