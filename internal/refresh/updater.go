package refresh

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/imdbplus/imdbplus/internal/library"
	"github.com/imdbplus/imdbplus/internal/preferences"
	"github.com/imdbplus/imdbplus/internal/replacements"
)

// Updater refreshes the details of one movie.
type Updater interface {
	UpdateMovie(ctx context.Context, movie *library.Movie) error
}

// UpdaterFunc adapts a function to Updater.
type UpdaterFunc func(ctx context.Context, movie *library.Movie) error

func (f UpdaterFunc) UpdateMovie(ctx context.Context, movie *library.Movie) error {
	return f(ctx, movie)
}

// MovieStore is the part of the library the rename updater writes to.
type MovieStore interface {
	UpdateTitles(ctx context.Context, id int64, title, sortBy string) error
	Touch(ctx context.Context, id int64) error
}

// RenameUpdater applies the rename database to a movie and stamps it as
// refreshed. Renames are skipped when "rename titles" is off or when
// "refresh all fields" is on.
type RenameUpdater struct {
	movies       MovieStore
	replacements *replacements.Loader
	prefs        func() preferences.Preferences
	logger       zerolog.Logger
}

func NewRenameUpdater(movies MovieStore, loader *replacements.Loader, prefs func() preferences.Preferences, logger zerolog.Logger) *RenameUpdater {
	return &RenameUpdater{
		movies:       movies,
		replacements: loader,
		prefs:        prefs,
		logger:       logger.With().Str("component", "refresh").Logger(),
	}
}

func (u *RenameUpdater) UpdateMovie(ctx context.Context, movie *library.Movie) error {
	p := u.prefs()
	if p.RenameTitles && !p.RefreshAllFields {
		if r, ok := u.replacements.Lookup(movie.ImdbID); ok && (r.Title != movie.Title || r.SortBy != movie.SortBy) {
			if err := u.movies.UpdateTitles(ctx, movie.ID, r.Title, r.SortBy); err != nil {
				return err
			}
			u.logger.Info().
				Str("imdbId", movie.ImdbID).
				Str("from", movie.Title).
				Str("to", r.Title).
				Msg("Renamed movie")
		}
	}
	return u.movies.Touch(ctx, movie.ID)
}
