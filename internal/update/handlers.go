package update

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type Handlers struct {
	service *Service
}

func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

func (h *Handlers) RegisterRoutes(g *echo.Group) {
	g.GET("", h.GetStatus)
	g.POST("/check", h.CheckForUpdate)
	g.PUT("/settings", h.UpdateSettings)
}

// GetStatus returns the synchronizer state.
// GET /api/v1/update
func (h *Handlers) GetStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, h.service.GetStatus(c.Request().Context()))
}

// CheckForUpdate runs one sync cycle and returns its outcome.
// POST /api/v1/update/check
func (h *Handlers) CheckForUpdate(c echo.Context) error {
	ctx := c.Request().Context()
	result := h.service.CheckForUpdate(ctx)

	if err := h.service.Rearm(ctx); err != nil && !errors.Is(err, ErrNotStarted) {
		h.service.logger.Warn().Err(err).Msg("Failed to rearm sync after manual check")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"result": result,
		"status": h.service.GetStatus(ctx),
	})
}

type settingsRequest struct {
	IntervalHours int  `json:"intervalHours"`
	OnStartup     bool `json:"onStartup"`
}

// UpdateSettings changes the sync cadence until the next restart.
// PUT /api/v1/update/settings
func (h *Handlers) UpdateSettings(c echo.Context) error {
	var req settingsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.IntervalHours <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "intervalHours must be positive")
	}

	ctx := c.Request().Context()
	if err := h.service.SetSchedule(ctx, time.Duration(req.IntervalHours)*time.Hour, req.OnStartup); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, h.service.GetStatus(ctx))
}
