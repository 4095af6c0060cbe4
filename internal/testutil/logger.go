// Package testutil provides shared helpers for MetaNetX resolver tests.
package testutil

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/turtacn/MetaNetX-Resolver/internal/infrastructure/monitoring/logging"
)

// RecordingLogger implements logging.Logger and records every entry.
// Children created with With or Named share the parent's record.
type RecordingLogger struct {
	rec    *record
	name   string
	fields []logging.Field
}

// LogMessage represents a single captured log entry.
type LogMessage struct {
	Level   string
	Logger  string
	Message string
	Fields  []logging.Field
}

type record struct {
	mu       sync.Mutex
	messages []LogMessage
}

// NewRecordingLogger creates an empty RecordingLogger.
func NewRecordingLogger() *RecordingLogger {
	return &RecordingLogger{rec: &record{}}
}

func (l *RecordingLogger) log(level, msg string, fields []logging.Field) {
	all := make([]logging.Field, 0, len(l.fields)+len(fields))
	all = append(all, l.fields...)
	all = append(all, fields...)

	l.rec.mu.Lock()
	defer l.rec.mu.Unlock()
	l.rec.messages = append(l.rec.messages, LogMessage{Level: level, Logger: l.name, Message: msg, Fields: all})
}

func (l *RecordingLogger) Debug(msg string, fields ...logging.Field) { l.log("debug", msg, fields) }
func (l *RecordingLogger) Info(msg string, fields ...logging.Field)  { l.log("info", msg, fields) }
func (l *RecordingLogger) Warn(msg string, fields ...logging.Field)  { l.log("warn", msg, fields) }
func (l *RecordingLogger) Error(msg string, fields ...logging.Field) { l.log("error", msg, fields) }
func (l *RecordingLogger) Fatal(msg string, fields ...logging.Field) { l.log("fatal", msg, fields) }

func (l *RecordingLogger) With(fields ...logging.Field) logging.Logger {
	child := *l
	child.fields = append(append([]logging.Field(nil), l.fields...), fields...)
	return &child
}

func (l *RecordingLogger) Named(name string) logging.Logger {
	child := *l
	if l.name != "" {
		name = l.name + "." + name
	}
	child.name = name
	return &child
}

func (l *RecordingLogger) Sync() error { return nil }

// Messages returns a copy of the recorded entries.
func (l *RecordingLogger) Messages() []LogMessage {
	l.rec.mu.Lock()
	defer l.rec.mu.Unlock()
	out := make([]LogMessage, len(l.rec.messages))
	copy(out, l.rec.messages)
	return out
}

// Find returns the first entry with the given level and message.
func (l *RecordingLogger) Find(level, msg string) (LogMessage, bool) {
	for _, m := range l.Messages() {
		if m.Level == level && m.Message == msg {
			return m, true
		}
	}
	return LogMessage{}, false
}

// HasMessage reports whether an entry with the given level and message was logged.
func (l *RecordingLogger) HasMessage(level, msg string) bool {
	_, ok := l.Find(level, msg)
	return ok
}

// Field returns the value of key in m, searching the most recent first.
func (m LogMessage) Field(key string) (interface{}, bool) {
	for i := len(m.Fields) - 1; i >= 0; i-- {
		if m.Fields[i].Key == key {
			return m.Fields[i].Value, true
		}
	}
	return nil, false
}

// WriteFiles writes name/body pairs into dir and returns dir.
func WriteFiles(t testing.TB, dir string, files map[string]string) string {
	t.Helper()
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

//Personal.AI order the ending
