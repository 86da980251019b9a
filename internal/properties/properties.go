// Package properties holds the #IMDb.* string values exposed to clients.
package properties

import (
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	ScraperIsInstalled     = "#IMDb.Scraper.IsInstalled"
	ScraperVersion         = "#IMDb.Scraper.Version"
	ScraperDescription     = "#IMDb.Scraper.Description"
	ScraperAuthor          = "#IMDb.Scraper.Author"
	ScraperPublished       = "#IMDb.Scraper.Published"
	ScraperDetailsPriority = "#IMDb.Scraper.DetailsPriority"
	ScraperCoverPriority   = "#IMDb.Scraper.CoverPriority"
	ScraperLastUpdated     = "#IMDb.Scraper.LastUpdated"

	ReplacementsCount       = "#IMDb.Replacements.Count"
	ReplacementsCustomCount = "#IMDb.Replacements.Custom.Count"
	ReplacementsVersion     = "#IMDb.Replacements.Version"
	ReplacementsPublished   = "#IMDb.Replacements.Published"

	RefreshActive          = "#IMDb.Movie.Refresh.Active"
	RefreshMovie           = "#IMDb.Movie.Refresh.Movie"
	RefreshProgressPercent = "#IMDb.Movie.Refresh.ProgressPercent"
	RefreshCurrentItem     = "#IMDb.Movie.Refresh.CurrentItem"
	RefreshMovieCount      = "#IMDb.Movie.Refresh.MovieCount"
	RefreshStatus          = "#IMDb.Movie.Refresh.Status"

	ForceIMDbPlusVisible = "#IMDb.ForceIMDbPlus.Visible"
)

// ChangedEvent is the websocket message type sent when a property changes.
const ChangedEvent = "property:changed"

// DateLayout formats dates published as properties.
const DateLayout = "2006-01-02"

// Broadcaster delivers events to clients.
type Broadcaster interface {
	Broadcast(msgType string, payload interface{}) error
}

// Change is the payload of ChangedEvent.
type Change struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Store is a concurrent map of property names to values.
type Store struct {
	mu     sync.RWMutex
	values map[string]string
	hub    Broadcaster
	logger zerolog.Logger
}

// NewStore creates an empty store. hub may be nil.
func NewStore(hub Broadcaster, logger *zerolog.Logger) *Store {
	return &Store{
		values: make(map[string]string),
		hub:    hub,
		logger: logger.With().Str("component", "properties").Logger(),
	}
}

// Set stores value under name and broadcasts the change if the value differs.
func (s *Store) Set(name, value string) {
	s.mu.Lock()
	old, ok := s.values[name]
	s.values[name] = value
	s.mu.Unlock()

	if ok && old == value {
		return
	}

	s.logger.Debug().Str("name", name).Str("value", value).Msg("Property changed")
	if s.hub != nil {
		if err := s.hub.Broadcast(ChangedEvent, Change{Name: name, Value: value}); err != nil {
			s.logger.Warn().Err(err).Str("name", name).Msg("Failed to broadcast property")
		}
	}
}

// SetBool stores "true" or "false".
func (s *Store) SetBool(name string, value bool) {
	s.Set(name, strconv.FormatBool(value))
}

// SetInt stores the decimal form of value.
func (s *Store) SetInt(name string, value int) {
	s.Set(name, strconv.Itoa(value))
}

// SetDate stores t as a date, or an empty string for the zero time.
func (s *Store) SetDate(name string, t time.Time) {
	if t.IsZero() {
		s.Set(name, "")
		return
	}
	s.Set(name, t.Format(DateLayout))
}

// Get returns the value of name.
func (s *Store) Get(name string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[name]
	return v, ok
}

// All returns a copy of every property.
func (s *Store) All() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// Names returns the property names in sorted order.
func (s *Store) Names() []string {
	s.mu.RLock()
	names := make([]string, 0, len(s.values))
	for k := range s.values {
		names = append(names, k)
	}
	s.mu.RUnlock()
	sort.Strings(names)
	return names
}
