package library

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// NoSourceID selects movies without a primary source in conversions.
const NoSourceID int64 = 0

// SourceSummary describes the movies of one primary source that could be
// converted to another source.
type SourceSummary struct {
	SourceID   int64  `json:"sourceId"`
	Name       string `json:"name"`
	IMDbMovies int    `json:"imdbMovies"`
	Total      int    `json:"total"`
}

// SourceSummaries lists every primary source other than targetID, including
// "no source" as NoSourceID, that has at least one movie with a valid IMDb id.
func (s *Service) SourceSummaries(ctx context.Context, targetID int64) ([]SourceSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT COALESCE(m.primary_source_id, 0), COALESCE(src.name, ''), m.imdb_id
		FROM movies m
		LEFT JOIN sources src ON src.id = m.primary_source_id
		WHERE m.primary_source_id IS NULL OR m.primary_source_id != ?`, targetID)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize sources: %w", err)
	}
	defer rows.Close()

	byID := make(map[int64]*SourceSummary)
	for rows.Next() {
		var (
			id           int64
			name, imdbID string
		)
		if err := rows.Scan(&id, &name, &imdbID); err != nil {
			return nil, fmt.Errorf("failed to summarize sources: %w", err)
		}
		summary, ok := byID[id]
		if !ok {
			summary = &SourceSummary{SourceID: id, Name: name}
			byID[id] = summary
		}
		summary.Total++
		if IsValidIMDb(imdbID) {
			summary.IMDbMovies++
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]SourceSummary, 0, len(byID))
	for _, summary := range byID {
		if summary.IMDbMovies == 0 {
			continue
		}
		out = append(out, *summary)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SourceID < out[j].SourceID })
	return out, nil
}

// ConvertSources makes targetID the primary source of every movie with a
// valid IMDb id whose primary source is one of sourceIDs. NoSourceID matches
// movies without a source. It returns the number of converted movies.
func (s *Service) ConvertSources(ctx context.Context, sourceIDs []int64, targetID int64) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	converted := 0
	for _, sourceID := range sourceIDs {
		if sourceID == targetID {
			continue
		}

		query := `SELECT id, title, imdb_id FROM movies WHERE primary_source_id = ?`
		args := []any{sourceID}
		if sourceID == NoSourceID {
			query = `SELECT id, title, imdb_id FROM movies WHERE primary_source_id IS NULL`
			args = nil
		}

		rows, err := tx.QueryContext(ctx, query, args...)
		if err != nil {
			return 0, fmt.Errorf("failed to list movies: %w", err)
		}

		var ids []int64
		for rows.Next() {
			var (
				id            int64
				title, imdbID string
			)
			if err := rows.Scan(&id, &title, &imdbID); err != nil {
				rows.Close()
				return 0, fmt.Errorf("failed to list movies: %w", err)
			}
			if !IsValidIMDb(imdbID) {
				continue
			}
			s.logger.Info().Int64("sourceId", sourceID).Str("movie", title).Msg("Converting source info")
			ids = append(ids, id)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return 0, err
		}

		for _, id := range ids {
			if _, err := tx.ExecContext(ctx, `UPDATE movies SET primary_source_id = ? WHERE id = ?`, targetID, id); err != nil {
				return 0, fmt.Errorf("failed to convert movie %d: %w", id, err)
			}
			converted++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return converted, nil
}

// AlphaGroup is the set of movies whose sort key starts with Letter.
type AlphaGroup struct {
	Letter string   `json:"letter"`
	Count  int      `json:"count"`
	Movies []*Movie `json:"movies,omitempty"`
}

// DigitGroup is the letter used for sort keys starting with a digit.
const DigitGroup = "#"

// Alphas groups the movies of sourceID by the uppercase first letter of their
// sort key. Digits are grouped under DigitGroup, which sorts first.
func (s *Service) Alphas(ctx context.Context, sourceID int64) ([]AlphaGroup, error) {
	movies, err := s.ListByPrimarySource(ctx, sourceID)
	if err != nil {
		return nil, err
	}

	groups := make(map[string]*AlphaGroup)
	for _, m := range movies {
		letter := AlphaOf(m)
		if letter == "" {
			continue
		}
		g, ok := groups[letter]
		if !ok {
			g = &AlphaGroup{Letter: letter}
			groups[letter] = g
		}
		g.Movies = append(g.Movies, m)
		g.Count++
	}

	out := make([]AlphaGroup, 0, len(groups))
	for _, g := range groups {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Letter == DigitGroup {
			return out[j].Letter != DigitGroup
		}
		if out[j].Letter == DigitGroup {
			return false
		}
		return out[i].Letter < out[j].Letter
	})
	return out, nil
}

// AlphaOf returns the group letter of a movie, or an empty string for a blank title.
func AlphaOf(m *Movie) string {
	key := strings.TrimSpace(m.SortBy)
	if key == "" {
		key = strings.TrimSpace(m.Title)
	}
	if key == "" {
		return ""
	}
	r, _ := utf8.DecodeRuneInString(key)
	if unicode.IsDigit(r) {
		return DigitGroup
	}
	return string(unicode.ToUpper(r))
}
