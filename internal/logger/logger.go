// Package logger provides structured JSON logging for hockey-report.
//
// The logger supports multiple log levels (DEBUG, INFO, WARN, ERROR) and writes one
// JSON object per line. Entries carry a timestamp, the message, and arbitrary
// structured fields. Child loggers created with With carry fields such as the
// game id into every entry they write.
//
// Example usage:
//
//	logger.Info("Enriched game", logger.Fields{
//	    "game_id": 25401,
//	    "status":  "Final",
//	})
//
//	log := logger.Default().With(logger.Fields{"game_id": 25401})
//	log.Warn("Goal attributed by fallback", logger.Fields{"team_code": "XYZ"})
package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Level represents log severity
type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

var levelRank = map[Level]int{
	LevelDebug: 0,
	LevelInfo:  1,
	LevelWarn:  2,
	LevelError: 3,
}

// Logger provides structured logging
type Logger struct {
	minLevel Level
	mu       *sync.Mutex
	output   io.Writer
	fields   Fields
}

// Fields represents structured log fields
type Fields map[string]interface{}

// LogEntry represents a single log entry
type LogEntry struct {
	Timestamp string `json:"timestamp"`
	Level     string `json:"level"`
	Message   string `json:"message"`
	Fields    Fields `json:"fields,omitempty"`
	Error     string `json:"error,omitempty"`
}

var defaultLogger = New(LevelInfo, os.Stderr)

// New creates a new logger with the specified minimum log level and output destination.
// Messages below the minimum level will be discarded.
func New(level Level, output io.Writer) *Logger {
	if _, ok := levelRank[level]; !ok {
		level = LevelInfo
	}
	return &Logger{
		minLevel: level,
		mu:       &sync.Mutex{},
		output:   output,
	}
}

// Discard returns a logger that drops everything. Useful as a default in tests.
func Discard() *Logger {
	return New(LevelError, io.Discard)
}

// ParseLevel converts a config string such as "debug" or "WARN" into a Level.
// Unknown values fall back to INFO.
func ParseLevel(s string) Level {
	level := Level(strings.ToUpper(strings.TrimSpace(s)))
	if level == "WARNING" {
		return LevelWarn
	}
	if _, ok := levelRank[level]; ok {
		return level
	}
	return LevelInfo
}

// SetDefault sets the default package-level logger used by the convenience functions.
func SetDefault(logger *Logger) {
	if logger != nil {
		defaultLogger = logger
	}
}

// Default returns the package-level logger.
func Default() *Logger {
	return defaultLogger
}

// With returns a child logger that adds fields to every entry. Fields passed at
// the call site win over inherited ones.
func (l *Logger) With(fields Fields) *Logger {
	merged := make(Fields, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &Logger{
		minLevel: l.minLevel,
		mu:       l.mu,
		output:   l.output,
		fields:   merged,
	}
}

// log writes a structured log entry
func (l *Logger) log(level Level, message string, fields Fields, err error) {
	if l == nil || !l.shouldLog(level) {
		return
	}

	entry := LogEntry{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Level:     string(level),
		Message:   message,
		Fields:    l.merge(fields),
	}

	if err != nil {
		entry.Error = err.Error()
	}

	data, marshalErr := json.Marshal(entry)

	l.mu.Lock()
	defer l.mu.Unlock()

	if marshalErr != nil {
		// Fallback to plain text if JSON marshal fails
		fmt.Fprintf(l.output, "[%s] %s: %s (marshal error: %v)\n",
			entry.Timestamp, entry.Level, entry.Message, marshalErr)
		return
	}

	fmt.Fprintln(l.output, string(data))
}

func (l *Logger) merge(fields Fields) Fields {
	if len(l.fields) == 0 {
		return fields
	}
	merged := make(Fields, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return merged
}

// shouldLog determines if a message should be logged based on level
func (l *Logger) shouldLog(level Level) bool {
	return levelRank[level] >= levelRank[l.minLevel]
}

// Debug logs a debug message with optional structured fields.
func (l *Logger) Debug(message string, fields Fields) {
	l.log(LevelDebug, message, fields, nil)
}

// Info logs an informational message with optional structured fields.
func (l *Logger) Info(message string, fields Fields) {
	l.log(LevelInfo, message, fields, nil)
}

// Warn logs a warning message with optional structured fields.
// Warnings indicate problems with a single game that did not stop the run.
func (l *Logger) Warn(message string, fields Fields) {
	l.log(LevelWarn, message, fields, nil)
}

// Error logs an error message with optional structured fields and an error object.
func (l *Logger) Error(message string, fields Fields, err error) {
	l.log(LevelError, message, fields, err)
}

// Package-level convenience functions using default logger

// Debug logs a debug message with the default logger
func Debug(message string, fields Fields) {
	defaultLogger.Debug(message, fields)
}

// Info logs an info message with the default logger
func Info(message string, fields Fields) {
	defaultLogger.Info(message, fields)
}

// Warn logs a warning message with the default logger
func Warn(message string, fields Fields) {
	defaultLogger.Warn(message, fields)
}

// Error logs an error message with the default logger
func Error(message string, fields Fields, err error) {
	defaultLogger.Error(message, fields, err)
}
