// Package notification delivers short user-facing notices to connected
// clients.
package notification

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/imdbplus/imdbplus/internal/translation"
)

// MessageType is the websocket message type of a notice.
const MessageType = "notification"

const title = "IMDb+"

// EventType identifies the type of notification event
type EventType string

const (
	EventScraperUpdated  EventType = "scraper_updated"
	EventRefreshComplete EventType = "refresh_complete"
)

// Broadcaster sends messages to connected clients.
type Broadcaster interface {
	Broadcast(msgType string, payload interface{}) error
}

// Notice is one delivered notification.
type Notice struct {
	Event   EventType `json:"event"`
	Title   string    `json:"title"`
	Message string    `json:"message"`
	SentAt  time.Time `json:"sentAt"`
}

// Service translates and broadcasts notices.
type Service struct {
	hub      Broadcaster
	catalog  *translation.Catalog
	disabled bool
	logger   zerolog.Logger
}

// NewService creates a notification service. catalog may be nil, in which
// case the English defaults are used.
func NewService(hub Broadcaster, catalog *translation.Catalog, disabled bool, logger zerolog.Logger) *Service {
	return &Service{
		hub:      hub,
		catalog:  catalog,
		disabled: disabled,
		logger:   logger.With().Str("component", "notification").Logger(),
	}
}

// Enabled reports whether notices are delivered.
func (s *Service) Enabled() bool {
	return !s.disabled
}

// ScraperUpdated announces a newly installed scraper script.
func (s *Service) ScraperUpdated(version string) {
	s.send(EventScraperUpdated, s.format(translation.UpdatedScraperScript, version))
}

// RefreshComplete announces the end of a bulk refresh.
func (s *Service) RefreshComplete() {
	s.send(EventRefreshComplete, s.format(translation.RefreshMoviesNotification))
}

func (s *Service) send(event EventType, message string) {
	if s.disabled {
		s.logger.Debug().Str("event", string(event)).Msg("Notifications disabled, dropping notice")
		return
	}

	notice := Notice{
		Event:   event,
		Title:   title,
		Message: message,
		SentAt:  time.Now(),
	}
	if err := s.hub.Broadcast(MessageType, notice); err != nil {
		s.logger.Warn().Err(err).Str("event", string(event)).Msg("Failed to send notification")
		return
	}
	s.logger.Info().Str("event", string(event)).Str("message", message).Msg("Sent notification")
}

func (s *Service) format(key translation.Key, args ...interface{}) string {
	if s.catalog == nil {
		return translation.Default(key, args...)
	}
	return s.catalog.Format(key, args...)
}
