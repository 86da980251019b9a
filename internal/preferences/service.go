package preferences

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/imdbplus/imdbplus/internal/options"
)

// Service owns the in-memory scraper options and their backing document.
type Service struct {
	path   string
	logger zerolog.Logger

	mu        sync.RWMutex
	prefs     Preferences
	listeners []func(Preferences)
}

func NewService(path string, logger *zerolog.Logger) *Service {
	return &Service{
		path:   path,
		logger: logger.With().Str("component", "preferences").Logger(),
		prefs:  DefaultPreferences(),
	}
}

// OnChange registers fn to be called after every Load and Update.
func (s *Service) OnChange(fn func(Preferences)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Path returns the options document location.
func (s *Service) Path() string {
	return s.path
}

// Load reads every option from the document, falling back to defaults, and
// writes the result back so options added since the last run are materialized.
func (s *Service) Load() Preferences {
	s.logger.Debug().Str("path", s.path).Msg("Loading options from file")

	store := options.New()
	if err := store.Load(s.path); err != nil {
		s.logger.Error().Err(err).Str("path", s.path).Msg("Error opening options file, restoring defaults")
	}

	p := read(store)

	s.mu.Lock()
	s.prefs = p
	s.mu.Unlock()

	if err := s.Save(); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to save options")
	}

	s.notify(p)
	return p
}

// Save persists the current options. A document that cannot be parsed is
// deleted and recreated. A parseable document with a foreign root is left
// untouched and the save fails; if the delete fails the save is abandoned and the
// in-memory values are kept for the next attempt.
func (s *Service) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(s.prefs)
}

// Get returns a copy of the current options.
func (s *Service) Get() Preferences {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prefs
}

// Update replaces the current options and persists them. The returned value is
// what was stored after normalization.
func (s *Service) Update(p Preferences) (Preferences, error) {
	p = normalize(p)

	s.mu.Lock()
	s.prefs = p
	err := s.write(p)
	s.mu.Unlock()

	s.notify(p)
	return p, err
}

func (s *Service) write(p Preferences) error {
	s.logger.Debug().Str("path", s.path).Msg("Saving options to file")

	store := options.New()
	if err := store.Load(s.path); err != nil {
		if _, statErr := os.Stat(s.path); statErr == nil {
			if rmErr := os.Remove(s.path); rmErr != nil {
				s.logger.Error().Err(rmErr).Str("path", s.path).Msg("Error deleting options file")
				return fmt.Errorf("delete unreadable options file: %w", rmErr)
			}
		}

		s.logger.Info().Str("path", s.path).Msg("Creating new options file")
		if err := options.CreateEmpty(s.path); err != nil {
			return err
		}
		if err := store.Load(s.path); err != nil {
			return fmt.Errorf("reload options file: %w", err)
		}
	}

	for _, e := range p.Entries() {
		if err := store.WriteEntry(e.Key, e.ID, e.Value); err != nil {
			return fmt.Errorf("write option %s: %w", e.Key, err)
		}
	}

	return store.Save(s.path)
}

func (s *Service) notify(p Preferences) {
	s.mu.RLock()
	listeners := append([]func(Preferences){}, s.listeners...)
	s.mu.RUnlock()

	for _, fn := range listeners {
		fn(p)
	}
}

func read(store *options.Store) Preferences {
	p := DefaultPreferences()
	for _, o := range boolOptions {
		field := o.field(&p)
		*field = store.ReadBool(o.key, *field)
	}
	for _, o := range stringOptions {
		field := o.field(&p)
		*field = store.ReadString(o.key, *field)
	}
	return p
}

// normalize mirrors what a save/load round trip would produce.
func normalize(p Preferences) Preferences {
	d := DefaultPreferences()
	for _, o := range stringOptions {
		field := o.field(&p)
		*field = strings.ToLower(strings.TrimSpace(*field))
		if *field == "" {
			*field = *o.field(&d)
		}
	}
	return p
}
