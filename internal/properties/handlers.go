package properties

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// Handlers provides HTTP handlers for properties.
type Handlers struct {
	store *Store
}

// NewHandlers creates new property handlers.
func NewHandlers(store *Store) *Handlers {
	return &Handlers{store: store}
}

// RegisterRoutes registers the property routes.
func (h *Handlers) RegisterRoutes(g *echo.Group) {
	g.GET("", h.List)
}

// List returns every property, optionally filtered by name prefix.
// GET /api/v1/properties?prefix=#IMDb.Scraper.
func (h *Handlers) List(c echo.Context) error {
	all := h.store.All()
	prefix := c.QueryParam("prefix")
	if prefix == "" {
		return c.JSON(http.StatusOK, all)
	}

	filtered := make(map[string]string)
	for k, v := range all {
		if strings.HasPrefix(k, prefix) {
			filtered[k] = v
		}
	}
	return c.JSON(http.StatusOK, filtered)
}
