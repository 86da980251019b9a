package library

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imdbplus/imdbplus/internal/testutil"
)

func newTestService(t *testing.T) (*Service, *sql.DB) {
	t.Helper()
	tdb := testutil.NewTestDB(t)
	return NewService(tdb.Conn, tdb.Logger), tdb.Conn
}

func insertSource(t *testing.T, db *sql.DB, scriptID int, name string) int64 {
	t.Helper()
	res, err := db.Exec(`INSERT INTO sources (script_id, name, details_priority, cover_priority) VALUES (?, ?, 0, 0)`, scriptID, name)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

func createMovie(t *testing.T, s *Service, title, imdbID string, source *int64) *Movie {
	t.Helper()
	m, err := s.Create(context.Background(), CreateMovieInput{Title: title, ImdbID: imdbID, PrimarySourceID: source})
	require.NoError(t, err)
	return m
}

func TestIsValidIMDb(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"tt0133093", true},
		{"", false},
		{"         ", false},
		{"nm0000206", false},
		{"tt013309", false},
		{"tt01330930", false},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidIMDb(tt.id))
		})
	}
}

func TestGenerateSortTitle(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"The Matrix", "Matrix"},
		{"A Beautiful Mind", "Beautiful Mind"},
		{"An American Werewolf", "American Werewolf"},
		{"Inception", "Inception"},
		{"The", "The"},
		{"Theatre", "Theatre"},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.want, generateSortTitle(tt.title))
		})
	}
}

func TestCreateAndGet(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	m := createMovie(t, s, "The Matrix", "tt0133093", nil)
	assert.NotZero(t, m.ID)
	assert.Equal(t, "Matrix", m.SortBy)
	assert.Nil(t, m.PrimarySourceID)
	assert.Nil(t, m.RefreshedAt)

	_, err := s.Create(ctx, CreateMovieInput{Title: "  "})
	assert.ErrorIs(t, err, ErrInvalidMovie)

	_, err = s.Get(ctx, 999)
	assert.ErrorIs(t, err, ErrMovieNotFound)
}

func TestUpdateTitlesAndTouch(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	m := createMovie(t, s, "Fellowship", "tt0120737", nil)

	require.NoError(t, s.UpdateTitles(ctx, m.ID, "The Lord of the Rings 1", "Lord of the Rings 1"))
	require.NoError(t, s.Touch(ctx, m.ID))

	got, err := s.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "The Lord of the Rings 1", got.Title)
	assert.Equal(t, "Lord of the Rings 1", got.SortBy)
	assert.NotNil(t, got.RefreshedAt)

	assert.ErrorIs(t, s.UpdateTitles(ctx, 999, "x", "x"), ErrMovieNotFound)
	assert.ErrorIs(t, s.Touch(ctx, 999), ErrMovieNotFound)
}

func TestListByPrimarySource_SortedBySortKey(t *testing.T) {
	s, db := newTestService(t)
	plus := insertSource(t, db, 314159265, "IMDb+")
	other := insertSource(t, db, 874902, "IMDb")

	createMovie(t, s, "Zodiac", "tt0443706", &plus)
	createMovie(t, s, "The Abyss", "tt0096754", &plus)
	createMovie(t, s, "Brazil", "tt0088846", &other)

	movies, err := s.ListByPrimarySource(context.Background(), plus)
	require.NoError(t, err)
	require.Len(t, movies, 2)
	assert.Equal(t, "The Abyss", movies[0].Title)
	assert.Equal(t, "Zodiac", movies[1].Title)

	primary, rest, err := s.CountByPrimarySource(context.Background(), plus)
	require.NoError(t, err)
	assert.Equal(t, 2, primary)
	assert.Equal(t, 1, rest)
}

func TestSourceSummariesAndConvert(t *testing.T) {
	s, db := newTestService(t)
	ctx := context.Background()
	plus := insertSource(t, db, 314159265, "IMDb+")
	imdb := insertSource(t, db, 874902, "IMDb")
	tmdb := insertSource(t, db, 1000, "TMDb")

	createMovie(t, s, "Already Plus", "tt0000001", &plus)
	createMovie(t, s, "Alien", "tt0078748", &imdb)
	createMovie(t, s, "Aliens", "", &imdb)
	createMovie(t, s, "Orphan", "tt0088846", nil)
	createMovie(t, s, "No Id", "bogus", &tmdb)

	summaries, err := s.SourceSummaries(ctx, plus)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, SourceSummary{SourceID: NoSourceID, Name: "", IMDbMovies: 1, Total: 1}, summaries[0])
	assert.Equal(t, SourceSummary{SourceID: imdb, Name: "IMDb", IMDbMovies: 1, Total: 2}, summaries[1])

	converted, err := s.ConvertSources(ctx, []int64{imdb, NoSourceID, plus}, plus)
	require.NoError(t, err)
	assert.Equal(t, 2, converted)

	movies, err := s.ListByPrimarySource(ctx, plus)
	require.NoError(t, err)
	assert.Len(t, movies, 3)

	summaries, err = s.SourceSummaries(ctx, plus)
	require.NoError(t, err)
	assert.Empty(t, summaries)
}

func TestAlphas(t *testing.T) {
	s, db := newTestService(t)
	plus := insertSource(t, db, 314159265, "IMDb+")

	createMovie(t, s, "21 Grams", "tt0315733", &plus)
	createMovie(t, s, "300", "tt0416449", &plus)
	createMovie(t, s, "The Birds", "tt0056869", &plus)
	createMovie(t, s, "alien", "tt0078748", &plus)
	createMovie(t, s, "Aliens", "tt0090605", &plus)

	groups, err := s.Alphas(context.Background(), plus)
	require.NoError(t, err)
	require.Len(t, groups, 3)
	assert.Equal(t, DigitGroup, groups[0].Letter)
	assert.Equal(t, 2, groups[0].Count)
	assert.Equal(t, "A", groups[1].Letter)
	assert.Equal(t, 2, groups[1].Count)
	assert.Equal(t, "B", groups[2].Letter)
	assert.Equal(t, "The Birds", groups[2].Movies[0].Title)
}
