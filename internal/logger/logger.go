// Package logger provides a simple logging interface for issho components.
// It allows packages to log debug, info, warn, and error messages without
// being coupled to a specific logging implementation.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// Logger defines the interface for logging operations.
// All methods accept a format string and arguments, similar to fmt.Printf.
type Logger interface {
	Debug(format string, args ...interface{})
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})
}

// base is the shared logrus instance every env logger writes through.
// Its level stays at Debug; envLogger gates debug output itself so that
// ISSHO_DEBUG can be flipped without rebuilding loggers.
var base = newBase(os.Stderr)

// verbose is set by the CLI's --verbose flag.
var verbose atomic.Bool

func newBase(w io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(logrus.DebugLevel)
	l.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
	})
	return l
}

// SetOutput redirects all env loggers.
func SetOutput(w io.Writer) {
	base.SetOutput(w)
}

// SetVerbose turns debug output on regardless of ISSHO_DEBUG.
func SetVerbose(v bool) {
	verbose.Store(v)
}

func debugEnabled() bool {
	return verbose.Load() || os.Getenv("ISSHO_DEBUG") != ""
}

// envLogger implements Logger on top of logrus.
// Debug messages are only printed when ISSHO_DEBUG is set or verbose is on.
type envLogger struct {
	prefix string
}

// NewEnvLogger creates a logger that respects the ISSHO_DEBUG environment variable.
// The prefix is prepended to all log messages (e.g., "[session]" or "[sftp]").
func NewEnvLogger(prefix string) Logger {
	return &envLogger{prefix: prefix}
}

func (l *envLogger) line(format string, args ...interface{}) string {
	msg := fmt.Sprintf(format, args...)
	if l.prefix == "" {
		return msg
	}
	return l.prefix + " " + msg
}

func (l *envLogger) Debug(format string, args ...interface{}) {
	if debugEnabled() {
		base.Debug(l.line(format, args...))
	}
}

func (l *envLogger) Info(format string, args ...interface{}) {
	base.Info(l.line(format, args...))
}

func (l *envLogger) Warn(format string, args ...interface{}) {
	base.Warn(l.line(format, args...))
}

func (l *envLogger) Error(format string, args ...interface{}) {
	base.Error(l.line(format, args...))
}

// noopLogger implements Logger but discards all messages.
type noopLogger struct{}

// Noop returns a logger that discards all messages.
func Noop() Logger {
	return &noopLogger{}
}

func (l *noopLogger) Debug(format string, args ...interface{}) {}
func (l *noopLogger) Info(format string, args ...interface{})  {}
func (l *noopLogger) Warn(format string, args ...interface{})  {}
func (l *noopLogger) Error(format string, args ...interface{}) {}

// LogMessage represents a captured log message.
type LogMessage struct {
	Level   string
	Message string
}

// BufferLogger captures log messages for testing.
type BufferLogger struct {
	Messages []LogMessage
}

// NewBufferLogger creates a logger that captures messages for inspection.
func NewBufferLogger() *BufferLogger {
	return &BufferLogger{
		Messages: make([]LogMessage, 0),
	}
}

func (l *BufferLogger) Debug(format string, args ...interface{}) {
	l.Messages = append(l.Messages, LogMessage{Level: "debug", Message: fmt.Sprintf(format, args...)})
}

func (l *BufferLogger) Info(format string, args ...interface{}) {
	l.Messages = append(l.Messages, LogMessage{Level: "info", Message: fmt.Sprintf(format, args...)})
}

func (l *BufferLogger) Warn(format string, args ...interface{}) {
	l.Messages = append(l.Messages, LogMessage{Level: "warn", Message: fmt.Sprintf(format, args...)})
}

func (l *BufferLogger) Error(format string, args ...interface{}) {
	l.Messages = append(l.Messages, LogMessage{Level: "error", Message: fmt.Sprintf(format, args...)})
}

// HasLevel returns true if any message was logged at the given level.
func (l *BufferLogger) HasLevel(level string) bool {
	for _, m := range l.Messages {
		if m.Level == level {
			return true
		}
	}
	return false
}

// Clear removes all captured messages.
func (l *BufferLogger) Clear() {
	l.Messages = l.Messages[:0]
}
