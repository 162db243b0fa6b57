package tui

import (
	"sync"

	"github.com/handiism/chmirad/internal/download"
)

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   download.ProgressLevel
}

// eventLog keeps the most recent progress events. It is written from
// download workers and read by the UI on every tick.
type eventLog struct {
	mu      sync.Mutex
	entries []LogEntry
	limit   int
}

func newEventLog(limit int) *eventLog {
	return &eventLog{limit: limit}
}

// Add appends an event, dropping the oldest beyond the limit.
func (l *eventLog) Add(e download.ProgressEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, LogEntry{Message: e.Message, Level: e.Level})
	if len(l.entries) > l.limit {
		l.entries = l.entries[len(l.entries)-l.limit:]
	}
}

// Snapshot returns a copy of the retained entries, oldest first.
func (l *eventLog) Snapshot() []LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]LogEntry, len(l.entries))
	copy(out, l.entries)
	return out
}
