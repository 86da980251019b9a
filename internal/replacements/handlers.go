package replacements

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
)

// Info summarizes both databases.
type Info struct {
	Version     string     `json:"version"`
	Published   *time.Time `json:"published,omitempty"`
	CoreCount   int        `json:"coreCount"`
	CustomCount int        `json:"customCount"`
	HasCore     bool       `json:"hasCore"`
	HasCustom   bool       `json:"hasCustom"`
}

// Info loads both sets if needed and reports their metadata.
func (l *Loader) Info() Info {
	core := l.GetAll(false)
	custom := l.GetAll(true)

	info := Info{
		Version:     l.Version(),
		CoreCount:   len(core),
		CustomCount: len(custom),
		HasCore:     core != nil,
		HasCustom:   custom != nil,
	}
	if published := l.Published(); !published.IsZero() {
		info.Published = &published
	}
	return info
}

type Handlers struct {
	loader *Loader
}

func NewHandlers(loader *Loader) *Handlers {
	return &Handlers{loader: loader}
}

func (h *Handlers) RegisterRoutes(g *echo.Group) {
	g.GET("", h.List)
	g.GET("/info", h.GetInfo)
	g.POST("/reload", h.Reload)
}

// List returns one rename database
// GET /api/v1/replacements?custom=true
func (h *Handlers) List(c echo.Context) error {
	custom := false
	if v := c.QueryParam("custom"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid custom parameter")
		}
		custom = parsed
	}

	list := h.loader.GetAll(custom)
	if list == nil {
		return echo.NewHTTPError(http.StatusNotFound, "replacement database not available")
	}
	return c.JSON(http.StatusOK, list)
}

// GetInfo returns version and entry counts
// GET /api/v1/replacements/info
func (h *Handlers) GetInfo(c echo.Context) error {
	return c.JSON(http.StatusOK, h.loader.Info())
}

// Reload drops both caches
// POST /api/v1/replacements/reload
func (h *Handlers) Reload(c echo.Context) error {
	h.loader.ClearCache(false)
	h.loader.ClearCache(true)
	return c.JSON(http.StatusOK, h.loader.Info())
}
