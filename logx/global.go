// Package logx is a small leveled logger with console, JSON and CloudWatch
// output formats. The package-level functions write through a default logger
// configured from LOG_LEVEL, LOG_FORMAT, LOG_COLOR and LOG_CALLER.
package logx

import (
	"io"
	"os"
	"strings"
)

var defaultLogger *Logger

func init() {
	defaultLogger = New()
	Configure(Options{
		Level:  os.Getenv("LOG_LEVEL"),
		Format: os.Getenv("LOG_FORMAT"),
		Color:  os.Getenv("LOG_COLOR"),
		Caller: os.Getenv("LOG_CALLER"),
	})
}

// Options carries the raw LOG_* settings. Empty fields leave the current value alone.
type Options struct {
	Level  string
	Format string
	Color  string
	Caller string
}

// Configure applies options to the default logger
func Configure(opts Options) {
	if opts.Level != "" {
		if level, err := ParseLevel(opts.Level); err == nil {
			defaultLogger.SetLevel(level)
		}
	}
	if opts.Format != "" {
		defaultLogger.SetFormat(ParseFormat(opts.Format))
	}
	if opts.Color != "" {
		defaultLogger.SetColored(strings.ToLower(opts.Color) != "false")
	}
	if opts.Caller != "" {
		defaultLogger.SetShowCaller(strings.ToLower(opts.Caller) != "false")
	}
}

// SetLevel sets the global log level
func SetLevel(level Level) {
	defaultLogger.SetLevel(level)
}

// SetPrefix sets the global log prefix
func SetPrefix(prefix string) {
	defaultLogger.SetPrefix(prefix)
}

// SetOutput sets the global output destination
func SetOutput(w io.Writer) {
	defaultLogger.SetOutput(w)
}

// SetFormat sets the global log format
func SetFormat(format OutputFormat) {
	defaultLogger.SetFormat(format)
}

// GetLogger returns the default logger instance
func GetLogger() *Logger {
	return defaultLogger
}

func Trace(msg string, args ...any) {
	defaultLogger.Trace(msg, args...)
}

func Debug(msg string, args ...any) {
	defaultLogger.Debug(msg, args...)
}

func Info(msg string, args ...any) {
	defaultLogger.Info(msg, args...)
}

func Warn(msg string, args ...any) {
	defaultLogger.Warn(msg, args...)
}

func Error(msg string, args ...any) {
	defaultLogger.Error(msg, args...)
}

func Fatal(msg string, args ...any) {
	defaultLogger.Fatal(msg, args...)
}

// IsLevelEnabled checks if a level is enabled globally
func IsLevelEnabled(level Level) bool {
	return defaultLogger.IsLevelEnabled(level)
}
