package api

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	apimw "github.com/imdbplus/imdbplus/internal/api/middleware"
	"github.com/imdbplus/imdbplus/internal/config"
	"github.com/imdbplus/imdbplus/internal/health"
	"github.com/imdbplus/imdbplus/internal/library"
	"github.com/imdbplus/imdbplus/internal/preferences"
	"github.com/imdbplus/imdbplus/internal/properties"
	"github.com/imdbplus/imdbplus/internal/refresh"
	"github.com/imdbplus/imdbplus/internal/replacements"
	"github.com/imdbplus/imdbplus/internal/scheduler"
	"github.com/imdbplus/imdbplus/internal/scraper"
	"github.com/imdbplus/imdbplus/internal/translation"
	"github.com/imdbplus/imdbplus/internal/update"
)

func (s *Server) setupMiddleware() {
	// Recovery middleware
	s.echo.Use(middleware.Recover())

	// Request ID
	s.echo.Use(middleware.RequestID())

	// Security headers
	s.echo.Use(apimw.SecurityHeaders())
	s.echo.Use(apimw.Version(config.Version))

	// Request body size limit (2MB)
	s.echo.Use(middleware.BodyLimit("2M"))

	// Request logging
	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogMethod:   true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error != nil {
				s.logger.Error().
					Str("method", v.Method).
					Str("uri", v.URI).
					Int("status", v.Status).
					Dur("latency", v.Latency).
					Err(v.Error).
					Msg("request error")
			} else {
				s.logger.Debug().
					Str("method", v.Method).
					Str("uri", v.URI).
					Int("status", v.Status).
					Dur("latency", v.Latency).
					Msg("request")
			}
			return nil
		},
	}))

	// Gzip compression
	s.echo.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level: 5,
		Skipper: func(c echo.Context) bool {
			// Skip compression for WebSocket
			return c.Request().Header.Get("Upgrade") == "websocket"
		},
	}))
}

// setupRoutes configures API routes.
func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.healthCheck)
	if s.services.Hub != nil {
		s.echo.GET("/ws", s.services.Hub.HandleWebSocket)
	}

	api := s.echo.Group("/api/v1")
	api.GET("/status", s.getStatus)
	api.GET("/info", s.getInfo)

	preferences.NewHandlers(s.services.Preferences).RegisterRoutes(api.Group("/options"))
	replacements.NewHandlers(s.services.Replacements).RegisterRoutes(api.Group("/replacements"))
	properties.NewHandlers(s.services.Properties).RegisterRoutes(api.Group("/properties"))
	translation.NewHandlers(s.services.Translations).RegisterRoutes(api.Group("/translations"))
	update.NewHandlers(s.services.Update).RegisterRoutes(api.Group("/update"))

	libraryHandlers := library.NewHandlers(s.services.Library, s.imdbPlusSource)
	libraryHandlers.RegisterRoutes(api.Group("/movies"))
	sources := api.Group("/sources")
	libraryHandlers.RegisterSourceRoutes(sources)
	scraper.NewHandlers(s.services.Registry).RegisterRoutes(sources)

	refresh.NewHandlers(s.services.Refresh, s.services.Library).RegisterRoutes(api.Group("/refresh"))

	s.setupSystemRoutes(api.Group("/system"))
}

func (s *Server) setupSystemRoutes(g *echo.Group) {
	scheduler.NewHandlers(s.services.Scheduler).RegisterRoutes(g.Group("/tasks"))
	if s.services.Health != nil {
		health.NewHandlers(s.services.Health).RegisterRoutes(g.Group("/health"))
	}
	if s.services.Logs != nil {
		NewLogsHandlers(s.services.Logs).RegisterRoutes(g.Group("/logs"))
	}
}
