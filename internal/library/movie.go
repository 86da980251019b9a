package library

import (
	"strings"
	"time"
)

// Movie is a library item. PrimarySourceID is nil when no scraper source
// provided its details.
type Movie struct {
	ID              int64      `json:"id"`
	Title           string     `json:"title"`
	SortBy          string     `json:"sortBy"`
	ImdbID          string     `json:"imdbId,omitempty"`
	PrimarySourceID *int64     `json:"primarySourceId,omitempty"`
	RefreshedAt     *time.Time `json:"refreshedAt,omitempty"`
	AddedAt         time.Time  `json:"addedAt"`
}

func (m *Movie) String() string {
	return m.Title
}

// CreateMovieInput contains fields for creating a movie.
type CreateMovieInput struct {
	Title           string `json:"title"`
	SortBy          string `json:"sortBy,omitempty"`
	ImdbID          string `json:"imdbId,omitempty"`
	PrimarySourceID *int64 `json:"primarySourceId,omitempty"`
}

// ListMoviesOptions filters List. NoSource selects movies without a primary source.
type ListMoviesOptions struct {
	Search          string
	PrimarySourceID *int64
	NoSource        bool
}

// IsValidIMDb reports whether id looks like an IMDb title id (tt + 7 digits).
func IsValidIMDb(id string) bool {
	if strings.TrimSpace(id) == "" {
		return false
	}
	if !strings.HasPrefix(id, "tt") {
		return false
	}
	return len(id) == 9
}

// generateSortTitle creates a sort-friendly title by removing leading articles.
func generateSortTitle(title string) string {
	prefixes := []string{"The ", "A ", "An "}
	for _, prefix := range prefixes {
		if len(title) > len(prefix) && title[:len(prefix)] == prefix {
			return title[len(prefix):]
		}
	}
	return title
}
