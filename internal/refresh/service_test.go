package refresh

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imdbplus/imdbplus/internal/library"
	"github.com/imdbplus/imdbplus/internal/preferences"
	"github.com/imdbplus/imdbplus/internal/properties"
	"github.com/imdbplus/imdbplus/internal/replacements"
	"github.com/imdbplus/imdbplus/internal/testutil"
)

type fixture struct {
	db       *sql.DB
	movies   *library.Service
	loader   *replacements.Loader
	props    *properties.Store
	sourceID int64
	dir      string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	tdb := testutil.NewTestDB(t)

	res, err := tdb.Conn.Exec(`INSERT INTO sources (script_id, name, details_priority, cover_priority) VALUES (314159265, 'IMDb+', 0, 0)`)
	require.NoError(t, err)
	sourceID, err := res.LastInsertId()
	require.NoError(t, err)

	dir := t.TempDir()
	logger := tdb.Logger
	return &fixture{
		db:       tdb.Conn,
		movies:   library.NewService(tdb.Conn, tdb.Logger),
		loader:   replacements.NewLoader(filepath.Join(dir, "core.xml"), filepath.Join(dir, "custom.xml"), &logger),
		props:    properties.NewStore(nil, &logger),
		sourceID: sourceID,
		dir:      dir,
	}
}

func (f *fixture) addMovies(t *testing.T, n int) []*library.Movie {
	t.Helper()
	var out []*library.Movie
	for i := 0; i < n; i++ {
		m, err := f.movies.Create(context.Background(), library.CreateMovieInput{
			Title:           fmt.Sprintf("Movie %02d", i),
			ImdbID:          fmt.Sprintf("tt%07d", i+1),
			PrimarySourceID: &f.sourceID,
		})
		require.NoError(t, err)
		out = append(out, m)
	}
	return out
}

func (f *fixture) service(t *testing.T, updater Updater) *Service {
	t.Helper()
	return NewService(Config{
		Movies:       f.movies,
		Target:       func(context.Context) (int64, error) { return f.sourceID, nil },
		Replacements: f.loader,
		Updater:      updater,
		Resume:       NewResumeList(f.db),
		Props:        f.props,
	}, testutil.NewTestLogger(t))
}

type recordingUpdater struct {
	mu     sync.Mutex
	titles []string
	after  func(n int)
}

func (u *recordingUpdater) UpdateMovie(_ context.Context, m *library.Movie) error {
	u.mu.Lock()
	u.titles = append(u.titles, m.Title)
	n := len(u.titles)
	u.mu.Unlock()
	if u.after != nil {
		u.after(n)
	}
	return nil
}

func (u *recordingUpdater) seen() []string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]string(nil), u.titles...)
}

func TestRun_CancelThenResume(t *testing.T) {
	f := newFixture(t)
	f.addMovies(t, 10)
	ctx := context.Background()

	var svc *Service
	first := &recordingUpdater{}
	first.after = func(n int) {
		if n == 4 {
			svc.Cancel()
		}
	}
	svc = f.service(t, first)

	result, err := svc.Run(ctx, Request{Mode: ModeAll})
	require.NoError(t, err)
	assert.Equal(t, OutcomeCancelled, result.Outcome)
	assert.Equal(t, 4, result.Processed)
	assert.Len(t, first.seen(), 4)

	pending, err := svc.Pending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, pending)

	second := &recordingUpdater{}
	svc = f.service(t, second)
	result, err = svc.Run(ctx, Request{Mode: ModeAll})
	require.NoError(t, err)
	assert.Equal(t, OutcomeCompleted, result.Outcome)
	assert.Equal(t, 6, result.Processed)
	assert.Equal(t, 4, result.Skipped)
	assert.Equal(t, []string{"Movie 04", "Movie 05", "Movie 06", "Movie 07", "Movie 08", "Movie 09"}, second.seen())

	pending, err = svc.Pending(ctx)
	require.NoError(t, err)
	assert.Zero(t, pending)
}

func TestRun_PublishesProperties(t *testing.T) {
	f := newFixture(t)
	f.addMovies(t, 4)

	svc := f.service(t, &recordingUpdater{})
	_, err := svc.Run(context.Background(), Request{Mode: ModeAll})
	require.NoError(t, err)

	get := func(name string) string {
		v, _ := f.props.Get(name)
		return v
	}
	assert.Equal(t, "false", get(properties.RefreshActive))
	assert.Equal(t, "4", get(properties.RefreshMovieCount))
	assert.Equal(t, "4", get(properties.RefreshCurrentItem))
	assert.Equal(t, "100", get(properties.RefreshProgressPercent))
	assert.Equal(t, "Movie 03", get(properties.RefreshMovie))
	assert.Equal(t, "IMDb+ movie refresh is now complete.", get(properties.RefreshStatus))

	st := svc.Status()
	assert.False(t, st.Active)
	require.NotNil(t, st.LastResult)
	assert.Equal(t, OutcomeCompleted, st.LastResult.Outcome)
}

func TestRun_ReplacementsMode(t *testing.T) {
	f := newFixture(t)
	f.addMovies(t, 5)
	testutil.WriteFile(t, f.dir, "core.xml", `<imdbplus><rename id="tt0000002" title="B" sortby="B"/></imdbplus>`)
	testutil.WriteFile(t, f.dir, "custom.xml", `<imdbplus><rename id="tt0000004" title="D" sortby="D"/></imdbplus>`)

	u := &recordingUpdater{}
	result, err := f.service(t, u).Run(context.Background(), Request{Mode: ModeReplacements})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Total)
	assert.Equal(t, []string{"Movie 01", "Movie 03"}, u.seen())
}

func TestRun_AlphasMode(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, title := range []string{"Alien", "Brazil", "300", "The Abyss"} {
		_, err := f.movies.Create(ctx, library.CreateMovieInput{Title: title, PrimarySourceID: &f.sourceID})
		require.NoError(t, err)
	}

	u := &recordingUpdater{}
	result, err := f.service(t, u).Run(ctx, Request{Mode: ModeAlphas, Letters: []string{"a", "#"}})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Total)
	assert.Equal(t, []string{"300", "The Abyss", "Alien"}, u.seen())
}

func TestRun_InvalidRequests(t *testing.T) {
	f := newFixture(t)
	svc := f.service(t, &recordingUpdater{})

	_, err := svc.Run(context.Background(), Request{Mode: "bogus"})
	assert.ErrorIs(t, err, ErrInvalidMode)
	_, err = svc.Run(context.Background(), Request{Mode: ModeAlphas})
	assert.ErrorIs(t, err, ErrNoLetters)
}

func TestRun_MissingTargetFails(t *testing.T) {
	f := newFixture(t)
	svc := NewService(Config{
		Movies:  f.movies,
		Target:  func(context.Context) (int64, error) { return 0, errors.New("IMDb+ scraper is not installed") },
		Updater: &recordingUpdater{},
		Resume:  NewResumeList(f.db),
	}, testutil.NopLogger())

	result, err := svc.Run(context.Background(), Request{Mode: ModeAll})
	assert.Error(t, err)
	assert.Equal(t, OutcomeFailed, result.Outcome)
}

func TestStart_RejectsConcurrentRunAndStopWaits(t *testing.T) {
	f := newFixture(t)
	f.addMovies(t, 3)

	release := make(chan struct{})
	started := make(chan struct{}, 3)
	svc := f.service(t, UpdaterFunc(func(ctx context.Context, m *library.Movie) error {
		started <- struct{}{}
		<-release
		return nil
	}))

	require.NoError(t, svc.Start(Request{Mode: ModeAll}))
	<-started
	assert.ErrorIs(t, svc.Start(Request{Mode: ModeAll}), ErrAlreadyRunning)
	assert.True(t, svc.Status().Active)

	stopped := make(chan struct{})
	go func() {
		svc.Stop()
		close(stopped)
	}()
	require.Eventually(t, func() bool { return svc.cancel.Load() }, time.Second, 5*time.Millisecond)
	close(release)

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return")
	}
	assert.False(t, svc.Status().Active)
	assert.Equal(t, OutcomeCancelled, svc.Status().LastResult.Outcome)
	assert.False(t, svc.Cancel())
}

func TestRenameUpdater(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	movies := f.addMovies(t, 2)
	testutil.WriteFile(t, f.dir, "core.xml", `<imdbplus><rename id="tt0000001" title="Renamed" sortby="Renamed 1"/></imdbplus>`)

	prefs := preferences.DefaultPreferences()
	u := NewRenameUpdater(f.movies, f.loader, func() preferences.Preferences { return prefs }, testutil.NopLogger())

	require.NoError(t, u.UpdateMovie(ctx, movies[0]))
	got, err := f.movies.Get(ctx, movies[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)
	assert.Equal(t, "Renamed 1", got.SortBy)
	assert.NotNil(t, got.RefreshedAt)

	prefs.RefreshAllFields = true
	require.NoError(t, u.UpdateMovie(ctx, movies[1]))
	got, err = f.movies.Get(ctx, movies[1].ID)
	require.NoError(t, err)
	assert.Equal(t, "Movie 01", got.Title)
	assert.NotNil(t, got.RefreshedAt)
}

func TestRun_CallsOnFinish(t *testing.T) {
	f := newFixture(t)
	f.addMovies(t, 2)

	var got []Result
	svc := NewService(Config{
		Movies:   f.movies,
		Target:   func(context.Context) (int64, error) { return f.sourceID, nil },
		Updater:  &recordingUpdater{},
		Resume:   NewResumeList(f.db),
		OnFinish: func(r Result) { got = append(got, r) },
	}, testutil.NopLogger())

	_, err := svc.Run(context.Background(), Request{Mode: ModeAll})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, OutcomeCompleted, got[0].Outcome)
	assert.Equal(t, 2, got[0].Processed)
}
