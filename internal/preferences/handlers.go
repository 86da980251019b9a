package preferences

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type Handlers struct {
	service *Service
}

func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

func (h *Handlers) RegisterRoutes(g *echo.Group) {
	g.GET("", h.GetOptions)
	g.PUT("", h.UpdateOptions)
	g.GET("/entries", h.ListEntries)
}

// GetOptions returns the scraper options
// GET /api/v1/options
func (h *Handlers) GetOptions(c echo.Context) error {
	return c.JSON(http.StatusOK, h.service.Get())
}

// UpdateOptions replaces the scraper options
// PUT /api/v1/options
func (h *Handlers) UpdateOptions(c echo.Context) error {
	prefs := h.service.Get()
	if err := c.Bind(&prefs); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	updated, err := h.service.Update(prefs)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, updated)
}

// ListEntries returns the options as they are written to the document
// GET /api/v1/options/entries
func (h *Handlers) ListEntries(c echo.Context) error {
	return c.JSON(http.StatusOK, h.service.Get().Entries())
}
