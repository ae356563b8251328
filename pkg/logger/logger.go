// Package logger provides standardized logging utilities for the bril-ssa middle-end.
//
// The default logger is nil until Init is called, so the analysis packages
// stay silent when used as a library.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

var (
	defaultLogger *slog.Logger
	logFile       *os.File
)

// LogLevel represents the logging level
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

// Config holds logger configuration
type Config struct {
	Level     LogLevel
	Format    string // "text" or "json"
	Output    io.Writer
	AddSource bool
	LogFile   string
}

// DefaultConfig returns the default logger configuration
func DefaultConfig() Config {
	return Config{
		Level:  LevelWarn,
		Format: "text",
		Output: os.Stderr,
	}
}

// ParseLevel maps a flag value such as "debug" to a LogLevel
func ParseLevel(s string) (LogLevel, error) {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// Init initializes the global logger with the given configuration
func Init(cfg Config) error {
	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}
	if cfg.LogFile != "" {
		file, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		Close()
		logFile = file
		output = file
	}

	opts := &slog.HandlerOptions{
		Level:     toSlogLevel(cfg.Level),
		AddSource: cfg.AddSource,
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(output, opts)
	} else {
		handler = slog.NewTextHandler(output, opts)
	}

	defaultLogger = slog.New(handler)
	slog.SetDefault(defaultLogger)
	return nil
}

// InitDev initializes logging for development (debug level, text format)
func InitDev() {
	_ = Init(Config{
		Level:     LevelDebug,
		Format:    "text",
		Output:    os.Stderr,
		AddSource: true,
	})
}

// Close releases the log file opened by Init, if any
func Close() {
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
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

// Debug logs a debug message
func Debug(msg string, args ...any) {
	if defaultLogger != nil {
		defaultLogger.Debug(msg, args...)
	}
}

// Info logs an info message
func Info(msg string, args ...any) {
	if defaultLogger != nil {
		defaultLogger.Info(msg, args...)
	}
}

// Warn logs a warning message
func Warn(msg string, args ...any) {
	if defaultLogger != nil {
		defaultLogger.Warn(msg, args...)
	}
}

// Error logs an error message
func Error(msg string, args ...any) {
	if defaultLogger != nil {
		defaultLogger.Error(msg, args...)
	}
}

// With returns a logger with the given attributes. Before Init it discards everything.
func With(args ...any) *slog.Logger {
	if defaultLogger != nil {
		return defaultLogger.With(args...)
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil)).With(args...)
}

// Middle-end logging helpers

// LogPhase logs the start of a pipeline phase
func LogPhase(phase string) {
	Info("Starting phase", "phase", phase)
}

// LogPhaseComplete logs the completion of a pipeline phase
func LogPhaseComplete(phase string) {
	Info("Completed phase", "phase", phase)
}

// LogFixpoint logs how many steps an iterative analysis needed
func LogFixpoint(analysis string, funcName string, iterations int) {
	Debug("Fixpoint reached",
		"analysis", analysis,
		"function", funcName,
		"iterations", iterations)
}

// LogPhis logs phi insertion
func LogPhis(funcName string, count int) {
	Debug("Phi insertion complete", "function", funcName, "phis", count)
}

// LogUnresolved logs a use with no reaching definition
func LogUnresolved(funcName string, block string, variable string) {
	Warn("Unresolved definition",
		"function", funcName,
		"block", block,
		"variable", variable)
}

// LogSSAGeneration logs SSA construction
func LogSSAGeneration(funcName string, blockCount int) {
	Debug("SSA generation complete", "function", funcName, "blocks", blockCount)
}

// LogPass logs an optimizer pass over one function
func LogPass(pass string, funcName string, changeCount int) {
	Info("Pass complete", "pass", pass, "function", funcName, "changes", changeCount)
}

// LogError logs a pipeline failure
func LogError(phase string, funcName string, err error) {
	Error("Pipeline error",
		"phase", phase,
		"function", funcName,
		"error", err)
}

// LogStart logs tool startup
func LogStart(args []string) {
	Info("bril-ssa starting", "args", args)
}

// LogComplete logs tool completion
func LogComplete(success bool, duration string) {
	if success {
		Info("Run successful", "duration", duration)
	} else {
		Error("Run failed", "duration", duration)
	}
}
