// Package testutil provides helpers shared by package tests.
package testutil

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/imdbplus/imdbplus/internal/database"
)

// TestDB wraps a migrated temporary database.
type TestDB struct {
	DB     *database.DB
	Conn   *sql.DB
	Path   string
	Logger zerolog.Logger
}

// NewTestDB creates a migrated database in a temp directory.
// It is closed and removed automatically when the test ends.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	tmpDir := t.TempDir()
	logger := NewTestLogger(t)

	db, err := database.New(filepath.Join(tmpDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Migrate(); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	return &TestDB{
		DB:     db,
		Conn:   db.Conn(),
		Path:   tmpDir,
		Logger: logger,
	}
}

// NewTestLogger creates a test logger that outputs to t.Log.
func NewTestLogger(t *testing.T) zerolog.Logger {
	t.Helper()
	return zerolog.New(zerolog.NewTestWriter(t)).Level(zerolog.DebugLevel)
}

// NopLogger returns a no-op logger for tests that don't need output.
func NopLogger() zerolog.Logger {
	return zerolog.Nop()
}

// WriteFile writes content below dir, creating parent directories, and returns the full path.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

// ScraperScript returns a minimal ScriptableScraper document. version is major.minor.point.
func ScraperScript(id int, name, version string, year, month, day int) string {
	parts := strings.SplitN(version+".0.0", ".", 4)
	return fmt.Sprintf(`<?xml version="1.0" encoding="utf-8"?>
<ScriptableScraper>
  <details>
    <name>%s</name>
    <author>IMDb+</author>
    <description>Test scraper</description>
    <id>%d</id>
    <version major="%s" minor="%s" point="%s"/>
    <published month="%d" day="%d" year="%d"/>
    <type>MovieDetailsFetcher|MovieCoverFetcher</type>
    <language>en</language>
  </details>
  <action name="get_details">
    <set name="options" value="C:\Options IMDb+ Scraper.xml"/>
    <set name="rename" value="C:\Rename dBase IMDb+ Scraper.xml"/>
    <set name="custom" value="C:\Rename dBase IMDb+ Scraper (Custom).xml"/>
  </action>
</ScriptableScraper>`, name, id, parts[0], parts[1], parts[2], month, day, year)
}

// Event is a message captured by Recorder.
type Event struct {
	Type    string
	Payload interface{}
}

// Recorder is a broadcaster that keeps every message it receives.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Broadcast records the message.
func (r *Recorder) Broadcast(msgType string, payload interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Event{Type: msgType, Payload: payload})
	return nil
}

// Events returns a copy of the recorded messages.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// OfType returns the recorded messages of one type.
func (r *Recorder) OfType(msgType string) []Event {
	var out []Event
	for _, e := range r.Events() {
		if e.Type == msgType {
			out = append(out, e)
		}
	}
	return out
}
