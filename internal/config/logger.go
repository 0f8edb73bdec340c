package config

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const defaultLogBufferSize = 200

// LogEntry is a captured logrus entry kept for display in the terminal UI.
type LogEntry struct {
	Level   logrus.Level  `json:"level"`
	Time    time.Time     `json:"time"`
	Message string        `json:"message"`
	Fields  logrus.Fields `json:"fields,omitempty"`
}

func newLogEntry(entry *logrus.Entry) *LogEntry {
	fields := make(logrus.Fields, len(entry.Data))
	for k, v := range entry.Data {
		fields[k] = v
	}
	return &LogEntry{
		Level:   entry.Level,
		Time:    entry.Time,
		Message: entry.Message,
		Fields:  fields,
	}
}

// logBuffer is a logrus hook holding the last warnings and errors in a ring.
type logBuffer struct {
	eventBuffer []*LogEntry
	maxSize     int
	currentPos  int
	isFull      bool
	mu          sync.RWMutex
}

func newLogBuffer(size int) *logBuffer {
	if size <= 0 {
		size = defaultLogBufferSize
	}
	return &logBuffer{
		eventBuffer: make([]*LogEntry, size),
		maxSize:     size,
	}
}

func (b *logBuffer) Fire(entry *logrus.Entry) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.eventBuffer[b.currentPos] = newLogEntry(entry)
	b.currentPos = (b.currentPos + 1) % b.maxSize

	if b.currentPos == 0 {
		b.isFull = true
	}

	return nil
}

func (b *logBuffer) Levels() []logrus.Level {
	return []logrus.Level{
		logrus.PanicLevel,
		logrus.FatalLevel,
		logrus.ErrorLevel,
		logrus.WarnLevel,
	}
}

// GetEvents returns the buffered entries oldest first.
func (b *logBuffer) GetEvents() []*LogEntry {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.isFull {
		result := make([]*LogEntry, b.currentPos)
		copy(result, b.eventBuffer[:b.currentPos])
		return result
	}

	result := make([]*LogEntry, b.maxSize)
	copy(result, b.eventBuffer[b.currentPos:])
	copy(result[b.maxSize-b.currentPos:], b.eventBuffer[:b.currentPos])
	return result
}

func (b *logBuffer) GetRecentEvents(count int) []*LogEntry {
	events := b.GetEvents()
	if count <= 0 || len(events) <= count {
		return events
	}
	return events[len(events)-count:]
}
