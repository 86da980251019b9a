package translation

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Handlers provides HTTP handlers for translations.
type Handlers struct {
	catalog *Catalog
}

// NewHandlers creates new translation handlers.
func NewHandlers(catalog *Catalog) *Handlers {
	return &Handlers{catalog: catalog}
}

// RegisterRoutes registers the translation routes.
func (h *Handlers) RegisterRoutes(g *echo.Group) {
	g.GET("", h.List)
}

type listResponse struct {
	Language string            `json:"language"`
	Strings  map[string]string `json:"strings"`
}

// List returns the active language and its labels.
// GET /api/v1/translations
func (h *Handlers) List(c echo.Context) error {
	return c.JSON(http.StatusOK, listResponse{
		Language: h.catalog.Language(),
		Strings:  h.catalog.All(),
	})
}
