//nolint:revive // Package name 'api' is intentionally generic for the HTTP API layer
package api

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/imdbplus/imdbplus/internal/config"
	"github.com/imdbplus/imdbplus/internal/health"
	"github.com/imdbplus/imdbplus/internal/library"
	"github.com/imdbplus/imdbplus/internal/preferences"
	"github.com/imdbplus/imdbplus/internal/progress"
	"github.com/imdbplus/imdbplus/internal/properties"
	"github.com/imdbplus/imdbplus/internal/refresh"
	"github.com/imdbplus/imdbplus/internal/replacements"
	"github.com/imdbplus/imdbplus/internal/scheduler"
	"github.com/imdbplus/imdbplus/internal/scraper"
	"github.com/imdbplus/imdbplus/internal/translation"
	"github.com/imdbplus/imdbplus/internal/update"
	"github.com/imdbplus/imdbplus/internal/websocket"
)

// Services are the components exposed over HTTP. Logs may be nil.
type Services struct {
	Hub          *websocket.Hub
	Logs         LogsProvider
	Preferences  *preferences.Service
	Replacements *replacements.Loader
	Registry     *scraper.Registry
	Library      *library.Service
	Refresh      *refresh.Service
	Update       *update.Service
	Scheduler    *scheduler.Scheduler
	Progress     *progress.Manager
	Properties   *properties.Store
	Translations *translation.Catalog
	Health       *health.Service
}

// Server handles HTTP requests for the IMDb+ API.
type Server struct {
	echo      *echo.Echo
	cfg       *config.Config
	services  Services
	logger    zerolog.Logger
	startedAt time.Time
}

// NewServer creates a new API server instance.
func NewServer(cfg *config.Config, services Services, logger zerolog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:      e,
		cfg:       cfg,
		services:  services,
		logger:    logger.With().Str("component", "api").Logger(),
		startedAt: time.Now(),
	}

	s.setupHub()
	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// setupHub greets new websocket clients with the current properties and lets
// them cancel a running refresh.
func (s *Server) setupHub() {
	hub := s.services.Hub
	if hub == nil {
		return
	}

	hub.OnConnect(func() []websocket.Message {
		values := s.services.Properties.All()
		names := make([]string, 0, len(values))
		for name := range values {
			names = append(names, name)
		}
		sort.Strings(names)

		messages := make([]websocket.Message, 0, len(names)+1)
		for _, name := range names {
			messages = append(messages, websocket.NewMessage(properties.ChangedEvent, properties.Change{Name: name, Value: values[name]}))
		}
		for _, activity := range s.services.Progress.List() {
			messages = append(messages, websocket.NewMessage(string(progress.EventTypeUpdate), activity))
		}
		return messages
	})

	hub.Handle(websocket.RefreshCancelType, func(json.RawMessage) {
		if s.services.Refresh.Cancel() {
			s.logger.Info().Msg("Refresh cancelled by client")
		}
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start(address string) error {
	s.logger.Info().Str("address", address).Msg("starting HTTP server")
	return s.echo.Start(address)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("shutting down HTTP server")
	return s.echo.Shutdown(ctx)
}

// Echo returns the underlying Echo instance.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}
