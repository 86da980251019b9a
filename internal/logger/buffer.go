package logger

import (
	"encoding/json"
	"sync"
)

// Broadcaster is the interface for broadcasting messages.
type Broadcaster interface {
	Broadcast(msgType string, payload interface{}) error
}

// LogEntry represents a parsed log entry.
type LogEntry struct {
	Timestamp string         `json:"timestamp"`
	Level     string         `json:"level"`
	Component string         `json:"component,omitempty"`
	Message   string         `json:"message"`
	Fields    map[string]any `json:"fields,omitempty"`
}

// Buffer implements io.Writer over zerolog's JSON output and keeps the
// most recent entries, optionally forwarding each one to a hub.
type Buffer struct {
	mu      sync.RWMutex
	entries []LogEntry
	start   int
	size    int
	hub     Broadcaster
}

// NewBuffer creates a buffer holding at most size entries.
func NewBuffer(size int) *Buffer {
	return &Buffer{
		entries: make([]LogEntry, 0, size),
		size:    size,
	}
}

// SetHub sets the broadcaster hub. Hub can be nil.
func (b *Buffer) SetHub(hub Broadcaster) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.hub = hub
}

// Write implements io.Writer.
func (b *Buffer) Write(p []byte) (int, error) {
	entry, err := parseLogEntry(p)
	if err != nil {
		return len(p), nil //nolint:nilerr // malformed entries are dropped
	}

	b.mu.Lock()
	if len(b.entries) < b.size {
		b.entries = append(b.entries, entry)
	} else {
		b.entries[b.start] = entry
		b.start = (b.start + 1) % b.size
	}
	hub := b.hub
	b.mu.Unlock()

	if hub != nil {
		_ = hub.Broadcast("logs:entry", entry)
	}

	return len(p), nil
}

// Entries returns the buffered entries, oldest first.
func (b *Buffer) Entries() []LogEntry {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]LogEntry, 0, len(b.entries))
	out = append(out, b.entries[b.start:]...)
	out = append(out, b.entries[:b.start]...)
	return out
}

func parseLogEntry(data []byte) (LogEntry, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return LogEntry{}, err
	}

	entry := LogEntry{Fields: make(map[string]any)}

	if ts, ok := raw["time"].(string); ok {
		entry.Timestamp = ts
		delete(raw, "time")
	}
	if level, ok := raw["level"].(string); ok {
		entry.Level = level
		delete(raw, "level")
	}
	if component, ok := raw["component"].(string); ok {
		entry.Component = component
		delete(raw, "component")
	}
	if msg, ok := raw["message"].(string); ok {
		entry.Message = msg
		delete(raw, "message")
	}
	for k, v := range raw {
		entry.Fields[k] = v
	}

	return entry, nil
}
