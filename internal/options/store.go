// Package options reads and writes the flat key/value options document shared
// with the IMDb+ scraper script.
//
// The document is a single <imdbplus> root holding <set id name value/> entries.
// Entries are looked up by name; id is a legacy ordering hint only.
package options

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/beevik/etree"
)

const (
	rootTag  = "imdbplus"
	entryTag = "set"
)

// ErrNotExist is returned by Save when the target file has not been created yet.
var ErrNotExist = errors.New("options file does not exist")

// ErrUnusable is returned by writes when no document is loaded.
var ErrUnusable = errors.New("options document not loaded")

// ErrForeignRoot is returned when adding an entry to a document whose root is
// not <imdbplus>.
var ErrForeignRoot = errors.New("options document has a foreign root")

// Store holds one options document in memory.
// A Store is not safe for concurrent use.
type Store struct {
	doc *etree.Document
}

// New returns a Store with no document; reads return their defaults until Load succeeds.
func New() *Store {
	return &Store{}
}

// Load opens and parses the document at path. On failure the store is left
// unusable and subsequent reads fall back to defaults. A well-formed document
// with a foreign root loads, but it holds no entries and rejects writes.
func (s *Store) Load(path string) error {
	s.doc = nil

	if _, err := os.Stat(path); err != nil {
		return err
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromFile(path); err != nil {
		return fmt.Errorf("parse options file: %w", err)
	}
	if doc.Root() == nil {
		return fmt.Errorf("parse options file: no root element")
	}

	s.doc = doc
	return nil
}

// Loaded reports whether a document is available.
func (s *Store) Loaded() bool {
	return s.doc != nil
}

// ReadBool returns the named entry parsed as a boolean, or defaultValue when the
// document is unusable, the entry is absent, or the value is not true/false.
func (s *Store) ReadBool(name string, defaultValue bool) bool {
	el := s.find(name)
	if el == nil {
		return defaultValue
	}
	attr := el.SelectAttr("value")
	if attr == nil {
		return defaultValue
	}
	switch v := strings.TrimSpace(attr.Value); {
	case strings.EqualFold(v, "true"):
		return true
	case strings.EqualFold(v, "false"):
		return false
	default:
		return defaultValue
	}
}

// ReadString returns the raw value of the named entry or defaultValue.
func (s *Store) ReadString(name, defaultValue string) string {
	el := s.find(name)
	if el == nil {
		return defaultValue
	}
	attr := el.SelectAttr("value")
	if attr == nil {
		return defaultValue
	}
	return attr.Value
}

// WriteEntry sets the value of the named entry, appending a new entry carrying
// legacyID when it does not exist yet. Values are stored lowercased.
func (s *Store) WriteEntry(name, legacyID, value string) error {
	if s.doc == nil {
		return ErrUnusable
	}

	value = strings.ToLower(value)

	if el := s.find(name); el != nil {
		el.CreateAttr("value", value)
		return nil
	}

	root := s.doc.Root()
	if root == nil || root.Tag != rootTag {
		return fmt.Errorf("write option %q: %w", name, ErrForeignRoot)
	}

	el := root.CreateElement(entryTag)
	el.CreateAttr("id", legacyID)
	el.CreateAttr("name", name)
	el.CreateAttr("value", value)
	return nil
}

// Save writes the in-memory document to path. The file must already exist;
// CreateEmpty materializes it.
func (s *Store) Save(path string) error {
	if s.doc == nil {
		return ErrUnusable
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return ErrNotExist
		}
		return err
	}

	s.doc.Indent(2)
	if err := s.doc.WriteToFile(path); err != nil {
		return fmt.Errorf("write options file: %w", err)
	}
	return nil
}

// CreateEmpty writes a minimal valid document to path, creating parent
// directories as needed.
func CreateEmpty(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create options directory: %w", err)
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="utf-8"`)
	doc.CreateElement(rootTag)
	doc.Indent(2)

	if err := doc.WriteToFile(path); err != nil {
		return fmt.Errorf("create options file: %w", err)
	}
	return nil
}

// find returns the first entry named name anywhere below the root.
func (s *Store) find(name string) *etree.Element {
	if s.doc == nil {
		return nil
	}
	for _, el := range s.doc.FindElements("/" + rootTag + "//" + entryTag) {
		if el.SelectAttrValue("name", "") == name {
			return el
		}
	}
	return nil
}
