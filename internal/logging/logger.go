// Package logging provides structured logging functionality for tablediff
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/tablediff/tablediff/internal/errors"
)

// LogLevel represents the logging level
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// LogFormat represents the log output format
type LogFormat string

const (
	LogFormatText LogFormat = "text"
	LogFormatJSON LogFormat = "json"
)

// LoggerConfig holds configuration for the logger
type LoggerConfig struct {
	Level      LogLevel  `json:"level" yaml:"level" mapstructure:"level"`
	Format     LogFormat `json:"format" yaml:"format" mapstructure:"format"`
	Output     string    `json:"output" yaml:"output" mapstructure:"output"` // "stdout", "stderr", or file path
	TimeFormat string    `json:"time_format" yaml:"time_format" mapstructure:"time_format"`
	AddSource  bool      `json:"add_source" yaml:"add_source" mapstructure:"add_source"`
}

// DefaultLoggerConfig returns a default logger configuration.
// Diagnostics go to stderr; stdout is reserved for the mismatch report.
func DefaultLoggerConfig() LoggerConfig {
	return LoggerConfig{
		Level:      LogLevelInfo,
		Format:     LogFormatText,
		Output:     "stderr",
		TimeFormat: time.RFC3339,
		AddSource:  false,
	}
}

// Logger wraps slog.Logger with tablediff-specific helpers
type Logger struct {
	*slog.Logger
	writer io.Writer
	file   *os.File
	config LoggerConfig
}

func NewLogger(config LoggerConfig) (*Logger, error) {
	var writer io.Writer
	var file *os.File

	switch config.Output {
	case "stdout":
		writer = os.Stdout
	case "stderr", "":
		writer = os.Stderr
	default:
		// File output
		dir := filepath.Dir(config.Output)
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}

		f, err := os.OpenFile(config.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		writer = f
		file = f
	}

	var level slog.Level
	switch config.Level {
	case LogLevelDebug:
		level = slog.LevelDebug
	case LogLevelInfo:
		level = slog.LevelInfo
	case LogLevelWarn:
		level = slog.LevelWarn
	case LogLevelError:
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: config.AddSource,
	}

	var handler slog.Handler
	switch config.Format {
	case LogFormatJSON:
		handler = slog.NewJSONHandler(writer, opts)
	default:
		handler = slog.NewTextHandler(writer, opts)
	}

	return &Logger{
		Logger: slog.New(handler),
		config: config,
		writer: writer,
		file:   file,
	}, nil
}

// Close releases the log file handle if one was opened
func (l *Logger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

// LogError logs a structured tablediff error with its full context
func (l *Logger) LogError(ctx context.Context, err error, msg string) {
	if te, ok := err.(*errors.Error); ok {
		attrs := []slog.Attr{
			slog.String("error_type", string(te.Type)),
			slog.String("error_code", te.Code),
			slog.String("severity", string(te.Severity)),
			slog.Bool("recoverable", te.Recoverable),
		}

		if te.Guidance != "" {
			attrs = append(attrs, slog.String("guidance", te.Guidance))
		}

		for key, value := range te.Context {
			attrs = append(attrs, slog.Any(fmt.Sprintf("ctx_%s", key), value))
		}

		if te.Cause != nil {
			attrs = append(attrs, slog.String("cause", te.Cause.Error()))
		}

		l.LogAttrs(ctx, slog.LevelError, msg, attrs...)
	} else {
		l.Error(msg, "error", err)
	}
}

// LogOperation logs the start of an operation
func (l *Logger) LogOperation(ctx context.Context, operation string, args ...interface{}) {
	l.Info(fmt.Sprintf("Starting %s", operation), args...)
}

// LogOperationSuccess logs successful completion of an operation
func (l *Logger) LogOperationSuccess(ctx context.Context, operation string, duration time.Duration, args ...interface{}) {
	allArgs := append([]interface{}{"duration", duration}, args...)
	l.Info(fmt.Sprintf("Completed %s", operation), allArgs...)
}

// LogOperationFailure logs failed completion of an operation
func (l *Logger) LogOperationFailure(ctx context.Context, operation string, err error, duration time.Duration, args ...interface{}) {
	allArgs := append([]interface{}{"duration", duration, "error", err}, args...)
	l.Error(fmt.Sprintf("Failed %s", operation), allArgs...)
}

// WithComponent returns a logger with component context
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{
		Logger: l.Logger.With("component", component),
		config: l.config,
		writer: l.writer,
	}
}

// GetLevel returns the current log level
func (l *Logger) GetLevel() LogLevel {
	return l.config.Level
}

// IsDebugEnabled returns true if debug logging is enabled
func (l *Logger) IsDebugEnabled() bool {
	return l.config.Level == LogLevelDebug
}

// Global logger instance
var globalLogger *Logger

// InitGlobalLogger initializes the global logger
func InitGlobalLogger(config LoggerConfig) error {
	logger, err := NewLogger(config)
	if err != nil {
		return err
	}
	globalLogger = logger
	return nil
}

// GetGlobalLogger returns the global logger instance
func GetGlobalLogger() *Logger {
	if globalLogger == nil {
		logger, err := NewLogger(DefaultLoggerConfig())
		if err != nil {
			panic(fmt.Sprintf("Failed to create default logger: %v", err))
		}
		globalLogger = logger
	}
	return globalLogger
}

// CloseGlobalLogger closes the global logger
func CloseGlobalLogger() error {
	if globalLogger != nil {
		err := globalLogger.Close()
		globalLogger = nil
		return err
	}
	return nil
}
