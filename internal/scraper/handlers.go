package scraper

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

type Handlers struct {
	registry *Registry
}

func NewHandlers(registry *Registry) *Handlers {
	return &Handlers{registry: registry}
}

func (h *Handlers) RegisterRoutes(g *echo.Group) {
	g.GET("", h.List)
	g.GET("/:scriptId", h.GetByScriptID)
}

// List returns all registered sources
// GET /api/v1/sources
func (h *Handlers) List(c echo.Context) error {
	sources, err := h.registry.List(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if sources == nil {
		sources = []*Source{}
	}
	return c.JSON(http.StatusOK, sources)
}

// GetByScriptID returns one source
// GET /api/v1/sources/:scriptId
func (h *Handlers) GetByScriptID(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("scriptId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid script id")
	}

	src, err := h.registry.GetByScriptID(c.Request().Context(), id)
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, src)
}
