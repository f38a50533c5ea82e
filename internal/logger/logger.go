// Package logger is the logging seam shared by sshdeck components. Output
// goes to stderr so it never interleaves with rendered tables or command
// output on stdout. Debug messages are gated by the SSHDECK_DEBUG
// environment variable.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Logger is the printf-style logging contract components depend on.
type Logger interface {
	Debug(format string, args ...interface{})
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})
}

// DebugEnv is the environment variable that enables debug output.
const DebugEnv = "SSHDECK_DEBUG"

// envLogger writes to stderr, tagging each line with its level. Debug lines
// appear only when DebugEnv is set.
type envLogger struct {
	prefix string
	out    io.Writer
}

// NewEnvLogger creates a logger that respects SSHDECK_DEBUG. The prefix is
// prepended to every line (e.g. "[syncer]" or "[session]").
func NewEnvLogger(prefix string) Logger {
	return &envLogger{prefix: prefix, out: os.Stderr}
}

func (l *envLogger) emit(level, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if l.prefix != "" {
		msg = l.prefix + " " + msg
	}
	if level != "" {
		msg = level + ": " + msg
	}
	fmt.Fprintln(l.out, msg)
}

func (l *envLogger) Debug(format string, args ...interface{}) {
	if os.Getenv(DebugEnv) == "" {
		return
	}
	l.emit("debug", format, args...)
}

func (l *envLogger) Info(format string, args ...interface{}) {
	l.emit("", format, args...)
}

func (l *envLogger) Warn(format string, args ...interface{}) {
	l.emit("WARN", format, args...)
}

func (l *envLogger) Error(format string, args ...interface{}) {
	l.emit("ERROR", format, args...)
}

// noopLogger discards everything. Tests use it to keep output clean.
type noopLogger struct{}

// Noop returns a logger that discards all messages.
func Noop() Logger {
	return noopLogger{}
}

func (noopLogger) Debug(format string, args ...interface{}) {}
func (noopLogger) Info(format string, args ...interface{})  {}
func (noopLogger) Warn(format string, args ...interface{})  {}
func (noopLogger) Error(format string, args ...interface{}) {}

// LogMessage is one captured log line.
type LogMessage struct {
	Level   string
	Message string
}

// BufferLogger captures messages for test assertions. Safe for concurrent
// use; the session timers log from multiple goroutines.
type BufferLogger struct {
	mu       sync.Mutex
	messages []LogMessage
}

// NewBufferLogger creates a logger that captures messages for inspection.
func NewBufferLogger() *BufferLogger {
	return &BufferLogger{}
}

func (l *BufferLogger) append(level, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, LogMessage{Level: level, Message: fmt.Sprintf(format, args...)})
}

func (l *BufferLogger) Debug(format string, args ...interface{}) { l.append("debug", format, args...) }
func (l *BufferLogger) Info(format string, args ...interface{})  { l.append("info", format, args...) }
func (l *BufferLogger) Warn(format string, args ...interface{})  { l.append("warn", format, args...) }
func (l *BufferLogger) Error(format string, args ...interface{}) { l.append("error", format, args...) }

// Messages returns a copy of the captured log lines.
func (l *BufferLogger) Messages() []LogMessage {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]LogMessage, len(l.messages))
	copy(out, l.messages)
	return out
}

// HasLevel reports whether any message was logged at the given level.
func (l *BufferLogger) HasLevel(level string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, m := range l.messages {
		if m.Level == level {
			return true
		}
	}
	return false
}

// Clear removes all captured messages.
func (l *BufferLogger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = l.messages[:0]
}

var (
	defaultMu     sync.RWMutex
	defaultLogger Logger = NewEnvLogger("")
)

// Default returns the package-level logger.
func Default() Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

// SetDefault replaces the package-level logger, for tests or global setup.
func SetDefault(l Logger) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLogger = l
}
