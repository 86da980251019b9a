package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/imdbplus/imdbplus/internal/config"
	"github.com/imdbplus/imdbplus/internal/properties"
	"github.com/imdbplus/imdbplus/internal/scraper"
	"github.com/imdbplus/imdbplus/internal/translation"
)

// --- Handler implementations ---

func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) getStatus(c echo.Context) error {
	ctx := c.Request().Context()

	movieCount, _ := s.services.Library.Count(ctx)

	response := map[string]interface{}{
		"version":    config.Version,
		"startTime":  s.startedAt.Format(time.RFC3339),
		"uptime":     time.Since(s.startedAt).Round(time.Second).String(),
		"movieCount": movieCount,
		"language":   s.services.Translations.Language(),
		"configFile": s.cfg.File,
		"refresh":    s.services.Refresh.Status(),
	}
	if s.services.Hub != nil {
		response["clients"] = s.services.Hub.ClientCount()
	}
	return c.JSON(http.StatusOK, response)
}

// imdbPlusSource resolves the registered IMDb+ source.
func (s *Server) imdbPlusSource(ctx context.Context) (int64, error) {
	source, err := s.services.Registry.GetByScriptID(ctx, scraper.IMDbPlusScriptID)
	if err != nil {
		return 0, err
	}
	return source.ID, nil
}

// Info summarizes the plugin, the installed scraper and the rename databases.
type Info struct {
	PluginVersion            string     `json:"pluginVersion"`
	ScraperInstalled         bool       `json:"scraperInstalled"`
	ScraperAuthor            string     `json:"scraperAuthor,omitempty"`
	ScraperVersion           string     `json:"scraperVersion,omitempty"`
	ScraperPriority          int        `json:"scraperPriority"`
	ScraperPublished         *time.Time `json:"scraperPublished,omitempty"`
	LastUpdateCheck          *time.Time `json:"lastUpdateCheck,omitempty"`
	MoviesIMDbPlusPrimary    int        `json:"moviesImdbPlusPrimary"`
	MoviesOtherPrimary       int        `json:"moviesOtherPrimary"`
	ReplacementsVersion      string     `json:"replacementsVersion"`
	ReplacementsPublished    *time.Time `json:"replacementsPublished,omitempty"`
	ReplacementEntries       int        `json:"replacementEntries"`
	CustomReplacementEntries int        `json:"customReplacementEntries"`

	// Lines are the translated summary lines in display order.
	Lines []string `json:"lines"`
}

// getInfo returns the plugin summary.
// GET /api/v1/info
func (s *Server) getInfo(c echo.Context) error {
	ctx := c.Request().Context()
	info := Info{PluginVersion: config.Version, ScraperPriority: -1}

	source, err := s.services.Registry.GetByScriptID(ctx, scraper.IMDbPlusScriptID)
	switch {
	case err == nil:
		info.ScraperPriority = source.DetailsPriority
		if script := source.SelectedScript; script != nil {
			info.ScraperInstalled = true
			info.ScraperAuthor = script.Author
			info.ScraperVersion = script.Version
			published := script.Published
			info.ScraperPublished = &published
		}
		primary, other, err := s.services.Library.CountByPrimarySource(ctx, source.ID)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		info.MoviesIMDbPlusPrimary = primary
		info.MoviesOtherPrimary = other
	case errors.Is(err, scraper.ErrNotFound):
		count, err := s.services.Library.Count(ctx)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		info.MoviesOtherPrimary = count
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if last, err := s.services.Update.LastSync(ctx); err == nil && !last.IsZero() {
		info.LastUpdateCheck = &last
	}

	loader := s.services.Replacements
	info.ReplacementEntries = len(loader.GetAll(false))
	info.CustomReplacementEntries = len(loader.GetAll(true))
	info.ReplacementsVersion = loader.Version()
	if published := loader.Published(); !published.IsZero() {
		info.ReplacementsPublished = &published
	}

	info.Lines = s.infoLines(info)
	return c.JSON(http.StatusOK, info)
}

func (s *Server) infoLines(info Info) []string {
	catalog := s.services.Translations
	date := func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return t.Format(properties.DateLayout)
	}

	lines := []string{catalog.Format(translation.InfoPluginVersion, info.PluginVersion)}
	if info.ScraperInstalled {
		lines = append(lines,
			catalog.Format(translation.InfoScraperAuthor, info.ScraperAuthor),
			catalog.Format(translation.InfoScraperVersion, info.ScraperVersion),
			catalog.Format(translation.InfoScraperPriority, info.ScraperPriority),
			catalog.Format(translation.InfoScraperPublished, date(info.ScraperPublished)),
		)
	}
	return append(lines,
		catalog.Format(translation.InfoScraperLastUpdateCheck, date(info.LastUpdateCheck)),
		catalog.Format(translation.InfoMoviesIMDbPlusPrimary, info.MoviesIMDbPlusPrimary),
		catalog.Format(translation.InfoMoviesOtherPrimary, info.MoviesOtherPrimary),
		catalog.Format(translation.InfoReplacementsVersion, info.ReplacementsVersion),
		catalog.Format(translation.InfoReplacementsPublished, date(info.ReplacementsPublished)),
		catalog.Format(translation.InfoReplacementEntries, info.ReplacementEntries),
		catalog.Format(translation.InfoCustomReplacementEntries, info.CustomReplacementEntries),
	)
}
