package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

var (
	ErrMovieNotFound = errors.New("movie not found")
	ErrInvalidMovie  = errors.New("invalid movie data")
)

// Service provides movie library operations.
type Service struct {
	db     *sql.DB
	logger zerolog.Logger
}

// NewService creates a new movie service.
func NewService(db *sql.DB, logger zerolog.Logger) *Service {
	return &Service{
		db:     db,
		logger: logger.With().Str("component", "library").Logger(),
	}
}

const movieColumns = `id, title, sort_by, imdb_id, primary_source_id, refreshed_at, created_at`

// Get retrieves a movie by ID.
func (s *Service) Get(ctx context.Context, id int64) (*Movie, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+movieColumns+` FROM movies WHERE id = ?`, id)
	movie, err := scanMovie(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMovieNotFound
		}
		return nil, fmt.Errorf("failed to get movie: %w", err)
	}
	return movie, nil
}

// List returns movies ordered by sort key.
func (s *Service) List(ctx context.Context, opts ListMoviesOptions) ([]*Movie, error) {
	var (
		where []string
		args  []any
	)
	if opts.Search != "" {
		where = append(where, `(title LIKE ? OR sort_by LIKE ?)`)
		term := "%" + opts.Search + "%"
		args = append(args, term, term)
	}
	switch {
	case opts.NoSource:
		where = append(where, `primary_source_id IS NULL`)
	case opts.PrimarySourceID != nil:
		where = append(where, `primary_source_id = ?`)
		args = append(args, *opts.PrimarySourceID)
	}

	query := `SELECT ` + movieColumns + ` FROM movies`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, ` AND `)
	}
	query += ` ORDER BY sort_by COLLATE NOCASE, title COLLATE NOCASE, id`

	return s.query(ctx, query, args...)
}

// ListByPrimarySource returns the movies whose primary source is sourceID,
// ordered by sort key.
func (s *Service) ListByPrimarySource(ctx context.Context, sourceID int64) ([]*Movie, error) {
	return s.List(ctx, ListMoviesOptions{PrimarySourceID: &sourceID})
}

// Create creates a new movie. The sort key defaults to the title without a leading article.
func (s *Service) Create(ctx context.Context, input CreateMovieInput) (*Movie, error) {
	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return nil, ErrInvalidMovie
	}
	if input.SortBy == "" {
		input.SortBy = generateSortTitle(input.Title)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO movies (title, sort_by, imdb_id, primary_source_id) VALUES (?, ?, ?, ?)`,
		input.Title, input.SortBy, strings.TrimSpace(input.ImdbID), nullableID(input.PrimarySourceID))
	if err != nil {
		return nil, fmt.Errorf("failed to create movie: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to create movie: %w", err)
	}

	s.logger.Debug().Int64("movieId", id).Str("title", input.Title).Msg("Added movie")
	return s.Get(ctx, id)
}

// UpdateTitles sets the display title and sort key of a movie.
func (s *Service) UpdateTitles(ctx context.Context, id int64, title, sortBy string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE movies SET title = ?, sort_by = ? WHERE id = ?`, title, sortBy, id)
	if err != nil {
		return fmt.Errorf("failed to update movie: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrMovieNotFound
	}
	return nil
}

// Touch records that a movie's details were refreshed.
func (s *Service) Touch(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `UPDATE movies SET refreshed_at = ? WHERE id = ?`, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to touch movie: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrMovieNotFound
	}
	return nil
}

// Count returns the number of movies in the library.
func (s *Service) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM movies`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count movies: %w", err)
	}
	return n, nil
}

// CountByPrimarySource returns how many movies use sourceID and how many do not.
func (s *Service) CountByPrimarySource(ctx context.Context, sourceID int64) (primary, other int, err error) {
	err = s.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN primary_source_id = ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN primary_source_id IS NULL OR primary_source_id != ? THEN 1 ELSE 0 END), 0)
		FROM movies`, sourceID, sourceID).Scan(&primary, &other)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count movies: %w", err)
	}
	return primary, other, nil
}

func (s *Service) query(ctx context.Context, query string, args ...any) ([]*Movie, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list movies: %w", err)
	}
	defer rows.Close()

	var movies []*Movie
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to list movies: %w", err)
		}
		movies = append(movies, m)
	}
	return movies, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMovie(row rowScanner) (*Movie, error) {
	var (
		m                Movie
		source           sql.NullInt64
		refreshed, added any
	)
	if err := row.Scan(&m.ID, &m.Title, &m.SortBy, &m.ImdbID, &source, &refreshed, &added); err != nil {
		return nil, err
	}
	if source.Valid {
		m.PrimarySourceID = &source.Int64
	}
	if t, ok := toTime(refreshed); ok {
		m.RefreshedAt = &t
	}
	m.AddedAt, _ = toTime(added)
	return &m, nil
}

// toTime accepts either a parsed time or the text form SQLite stores.
func toTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case []byte:
		return toTime(string(t))
	case string:
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05.999999999-07:00", "2006-01-02 15:04:05"} {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed, true
			}
		}
	}
	return time.Time{}, false
}

func nullableID(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}
