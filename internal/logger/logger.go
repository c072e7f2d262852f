// Package logger provides the structured logging used by the converter and
// the nuc command.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"
)

// Logging is silent until Init is called.
var defaultLogger = slog.New(slog.DiscardHandler)

// Level is the minimum severity that gets written.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel parses debug, info, warn or error.
func ParseLevel(s string) (Level, error) {
	switch s {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level: %s", s)
	}
}

// Config holds logger configuration
type Config struct {
	Level   Level
	Format  string // "text" or "json"
	Output  io.Writer
	LogFile string // appended to instead of Output when set
}

// DefaultConfig returns warnings and errors as text on stderr.
func DefaultConfig() Config {
	return Config{
		Level:  LevelWarn,
		Format: "text",
		Output: os.Stderr,
	}
}

// Init replaces the package logger. The returned function closes the log
// file, if one was opened.
func Init(cfg Config) (func() error, error) {
	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}
	closer := func() error { return nil }
	if cfg.LogFile != "" {
		file, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return closer, fmt.Errorf("open log file: %w", err)
		}
		output = file
		closer = file.Close
	}

	opts := &slog.HandlerOptions{Level: cfg.Level.toSlog()}
	var handler slog.Handler
	switch cfg.Format {
	case "json":
		handler = slog.NewJSONHandler(output, opts)
	case "", "text":
		handler = slog.NewTextHandler(output, opts)
	default:
		return closer, fmt.Errorf("unknown log format: %s", cfg.Format)
	}

	defaultLogger = slog.New(handler)
	return closer, nil
}

func (l Level) toSlog() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Debug logs a debug message
func Debug(msg string, args ...any) { defaultLogger.Debug(msg, args...) }

// Info logs an info message
func Info(msg string, args ...any) { defaultLogger.Info(msg, args...) }

// Warn logs a warning message
func Warn(msg string, args ...any) { defaultLogger.Warn(msg, args...) }

// Error logs an error message
func Error(msg string, args ...any) { defaultLogger.Error(msg, args...) }

// With returns the package logger with the given attributes
func With(args ...any) *slog.Logger { return defaultLogger.With(args...) }

// Converter-specific helpers

// LogPhase logs a finished conversion phase and how long it took.
func LogPhase(phase, file string, took time.Duration) {
	Debug("phase complete", "phase", phase, "file", file, "took", took)
}

// LogParsing logs the size of a parsed file.
func LogParsing(file string, items, passthrough int) {
	Debug("parsing complete", "file", file, "items", items, "passthrough", passthrough)
}

// LogCodeGen logs generated output for one target.
func LogCodeGen(target, dialect, file string, size int) {
	Debug("code generation complete", "target", target, "dialect", dialect, "file", file, "bytes", size)
}

// LogFileProcessing logs the start of a file's conversion.
func LogFileProcessing(file string) {
	Info("processing file", "file", file)
}

// LogWarning logs a diagnostic warning for a source position.
func LogWarning(phase, file string, line int, msg string) {
	Warn("conversion warning", "phase", phase, "file", file, "line", line, "message", msg)
}
