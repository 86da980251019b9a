package refresh

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/imdbplus/imdbplus/internal/library"
)

// Handlers provides HTTP handlers for bulk refreshes.
type Handlers struct {
	service *Service
	movies  *library.Service
}

// NewHandlers creates new refresh handlers.
func NewHandlers(service *Service, movies *library.Service) *Handlers {
	return &Handlers{service: service, movies: movies}
}

// RegisterRoutes registers the refresh routes.
func (h *Handlers) RegisterRoutes(g *echo.Group) {
	g.GET("", h.GetStatus)
	g.POST("", h.Start)
	g.POST("/cancel", h.Cancel)
	g.GET("/alphas", h.Alphas)
}

type statusResponse struct {
	Status
	Pending int `json:"pending"`
}

// GetStatus returns the refresh worker state.
// GET /api/v1/refresh
func (h *Handlers) GetStatus(c echo.Context) error {
	pending, err := h.service.Pending(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, statusResponse{Status: h.service.Status(), Pending: pending})
}

// Start begins a refresh in the background.
// POST /api/v1/refresh
func (h *Handlers) Start(c echo.Context) error {
	var req Request
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Mode == "" {
		req.Mode = ModeAll
	}

	if err := h.service.Start(req); err != nil {
		switch {
		case errors.Is(err, ErrAlreadyRunning):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		case errors.Is(err, ErrInvalidMode), errors.Is(err, ErrNoLetters):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.JSON(http.StatusAccepted, h.service.Status())
}

// Cancel stops a running refresh before its next movie.
// POST /api/v1/refresh/cancel
func (h *Handlers) Cancel(c echo.Context) error {
	if !h.service.Cancel() {
		return echo.NewHTTPError(http.StatusConflict, "no refresh running")
	}
	return c.NoContent(http.StatusNoContent)
}

// Alphas lists the letters that IMDb+ movies can be refreshed by.
// GET /api/v1/refresh/alphas
func (h *Handlers) Alphas(c echo.Context) error {
	ctx := c.Request().Context()
	sourceID, err := h.service.target(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}

	groups, err := h.movies.Alphas(ctx, sourceID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	for i := range groups {
		groups[i].Movies = nil
	}
	return c.JSON(http.StatusOK, groups)
}
