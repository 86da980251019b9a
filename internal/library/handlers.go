package library

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// TargetFunc resolves the source that conversions and alpha listings apply to.
type TargetFunc func(ctx context.Context) (int64, error)

// Handlers provides HTTP handlers for library operations.
type Handlers struct {
	service *Service
	target  TargetFunc
}

// NewHandlers creates new library handlers.
func NewHandlers(service *Service, target TargetFunc) *Handlers {
	return &Handlers{service: service, target: target}
}

// RegisterRoutes registers the movie routes.
func (h *Handlers) RegisterRoutes(g *echo.Group) {
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
}

// RegisterSourceRoutes registers the source conversion routes.
func (h *Handlers) RegisterSourceRoutes(g *echo.Group) {
	g.GET("/summary", h.SourceSummaries)
	g.POST("/convert", h.ConvertSources)
}

// List returns movies with optional filtering.
// GET /api/v1/movies
func (h *Handlers) List(c echo.Context) error {
	opts := ListMoviesOptions{
		Search: c.QueryParam("search"),
	}
	if source := c.QueryParam("sourceId"); source != "" {
		id, err := strconv.ParseInt(source, 10, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid source id")
		}
		if id == NoSourceID {
			opts.NoSource = true
		} else {
			opts.PrimarySourceID = &id
		}
	}

	movies, err := h.service.List(c.Request().Context(), opts)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if movies == nil {
		movies = []*Movie{}
	}
	return c.JSON(http.StatusOK, movies)
}

// Get returns a single movie.
// GET /api/v1/movies/:id
func (h *Handlers) Get(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid movie id")
	}

	movie, err := h.service.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrMovieNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, movie)
}

// Create adds a movie.
// POST /api/v1/movies
func (h *Handlers) Create(c echo.Context) error {
	var input CreateMovieInput
	if err := c.Bind(&input); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	movie, err := h.service.Create(c.Request().Context(), input)
	if err != nil {
		if errors.Is(err, ErrInvalidMovie) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, movie)
}

// SourceSummaries lists the sources whose movies can be converted.
// GET /api/v1/sources/summary
func (h *Handlers) SourceSummaries(c echo.Context) error {
	ctx := c.Request().Context()
	target, err := h.target(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}

	summaries, err := h.service.SourceSummaries(ctx, target)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, summaries)
}

type convertRequest struct {
	SourceIDs []int64 `json:"sourceIds"`
}

type convertResponse struct {
	Converted int `json:"converted"`
	Total     int `json:"total"`
}

// ConvertSources moves movies of the selected sources to the target source.
// POST /api/v1/sources/convert
func (h *Handlers) ConvertSources(c echo.Context) error {
	var req convertRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if len(req.SourceIDs) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "no sources selected")
	}

	ctx := c.Request().Context()
	target, err := h.target(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}

	converted, err := h.service.ConvertSources(ctx, req.SourceIDs, target)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	total, err := h.service.Count(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, convertResponse{Converted: converted, Total: total})
}
