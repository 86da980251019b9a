package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gorillaws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apimw "github.com/imdbplus/imdbplus/internal/api/middleware"
	"github.com/imdbplus/imdbplus/internal/config"
	"github.com/imdbplus/imdbplus/internal/database"
	"github.com/imdbplus/imdbplus/internal/health"
	"github.com/imdbplus/imdbplus/internal/library"
	"github.com/imdbplus/imdbplus/internal/logger"
	"github.com/imdbplus/imdbplus/internal/preferences"
	"github.com/imdbplus/imdbplus/internal/progress"
	"github.com/imdbplus/imdbplus/internal/properties"
	"github.com/imdbplus/imdbplus/internal/refresh"
	"github.com/imdbplus/imdbplus/internal/replacements"
	"github.com/imdbplus/imdbplus/internal/scheduler"
	"github.com/imdbplus/imdbplus/internal/scraper"
	"github.com/imdbplus/imdbplus/internal/testutil"
	"github.com/imdbplus/imdbplus/internal/translation"
	"github.com/imdbplus/imdbplus/internal/update"
	"github.com/imdbplus/imdbplus/internal/websocket"
)

type fakeLogs struct {
	entries []logger.LogEntry
	path    string
}

func (f *fakeLogs) GetRecentLogs() []logger.LogEntry { return f.entries }
func (f *fakeLogs) GetLogFilePath() string           { return f.path }

type testServer struct {
	*Server
	services Services
	dir      string
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	tdb := testutil.NewTestDB(t)
	log := tdb.Logger
	dir := t.TempDir()

	cfg := config.Default()
	cfg.Paths.ConfigDir = dir
	cfg.Paths.DataDir = dir

	hub := websocket.NewHub()
	props := properties.NewStore(hub, &log)
	prog := progress.NewManager(hub, log)
	registry := scraper.NewRegistry(tdb.Conn, &log)
	loader := replacements.NewLoader(cfg.Paths.ReplacementsFile(), cfg.Paths.CustomReplacementsFile(), &log)
	movies := library.NewService(tdb.Conn, log)
	prefs := preferences.NewService(cfg.Paths.OptionsFile(), &log)

	sched, err := scheduler.New(log)
	require.NoError(t, err)

	catalog := translation.New(&log)

	logs := &fakeLogs{entries: []logger.LogEntry{
		{Level: "info", Component: "update", Message: "Checking for scraper updates"},
		{Level: "info", Component: "refresh", Message: "Starting movie refresh"},
	}}
	updateSvc := update.NewService(update.OptionsFromConfig(cfg), registry, loader, database.NewSettings(tdb.Conn), props, prog, &log)
	healthSvc := health.NewService(log)
	updateSvc.SetHealth(healthSvc)

	s := &testServer{dir: dir}
	s.services = Services{
		Hub:          hub,
		Logs:         logs,
		Preferences:  prefs,
		Replacements: loader,
		Registry:     registry,
		Library:      movies,
		Update:       updateSvc,
		Scheduler:    sched,
		Progress:     prog,
		Properties:   props,
		Translations: catalog,
		Health:       healthSvc,
	}
	s.services.Refresh = refresh.NewService(refresh.Config{
		Movies: movies,
		Target: func(ctx context.Context) (int64, error) {
			return s.imdbPlusSource(ctx)
		},
		Replacements: loader,
		Updater:      refresh.UpdaterFunc(func(context.Context, *library.Movie) error { return nil }),
		Resume:       refresh.NewResumeList(tdb.Conn),
		Props:        props,
		Progress:     prog,
		Catalog:      catalog,
	}, log)

	s.Server = NewServer(cfg, s.services, log)
	return s
}

func (s *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	return rec
}

func TestHealthCheck(t *testing.T) {
	ts := setupTestServer(t)

	rec := ts.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.Equal(t, config.Version, rec.Header().Get(apimw.VersionHeader))
}

func TestGetStatus(t *testing.T) {
	ts := setupTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/v1/status", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-store, no-cache, must-revalidate, private", rec.Header().Get("Cache-Control"))

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, config.Version, response["version"])
	assert.EqualValues(t, 0, response["movieCount"])
	assert.Contains(t, response, "refresh")
}

func TestGetInfo_WithoutScraper(t *testing.T) {
	ts := setupTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/v1/info", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var info Info
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.False(t, info.ScraperInstalled)
	assert.Equal(t, -1, info.ScraperPriority)
	assert.Len(t, info.Lines, 8)
	assert.Equal(t, "Plugin Version: v"+config.Version, info.Lines[0])
}

func TestGetInfo_WithScraper(t *testing.T) {
	ts := setupTestServer(t)
	ctx := context.Background()

	_, err := ts.services.Registry.AddSource(ctx, testutil.ScraperScript(scraper.IMDbPlusScriptID, "IMDb+", "5.1.3", 2013, 6, 2), false)
	require.NoError(t, err)
	sourceID, err := ts.imdbPlusSource(ctx)
	require.NoError(t, err)
	_, err = ts.services.Library.Create(ctx, library.CreateMovieInput{Title: "Alien", ImdbID: "tt0078748", PrimarySourceID: &sourceID})
	require.NoError(t, err)
	_, err = ts.services.Library.Create(ctx, library.CreateMovieInput{Title: "Brazil", ImdbID: "tt0088846"})
	require.NoError(t, err)

	renames, err := filepath.Rel(ts.dir, ts.cfg.Paths.ReplacementsFile())
	require.NoError(t, err)
	testutil.WriteFile(t, ts.dir, renames,
		`<imdbplus><details><version major="2" minor="0" point="1"/></details><rename id="tt0078748" title="Alien" sortby="Alien 1"/></imdbplus>`)

	rec := ts.do(t, http.MethodGet, "/api/v1/info", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var info Info
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.True(t, info.ScraperInstalled)
	assert.Equal(t, "5.1.3", info.ScraperVersion)
	assert.Equal(t, 1, info.MoviesIMDbPlusPrimary)
	assert.Equal(t, 1, info.MoviesOtherPrimary)
	assert.Equal(t, 1, info.ReplacementEntries)
	assert.Equal(t, "2.0.1", info.ReplacementsVersion)
	assert.Len(t, info.Lines, 12)
	assert.Contains(t, info.Lines, "Scraper Version: v5.1.3")
	assert.Contains(t, info.Lines, "Movies using IMDb+ as scraper source: 1")
}

func TestRoutesRegistered(t *testing.T) {
	ts := setupTestServer(t)

	for _, path := range []string{
		"/api/v1/options",
		"/api/v1/replacements/info",
		"/api/v1/properties",
		"/api/v1/translations",
		"/api/v1/update",
		"/api/v1/movies",
		"/api/v1/sources",
		"/api/v1/refresh",
		"/api/v1/system/tasks",
	} {
		t.Run(path, func(t *testing.T) {
			rec := ts.do(t, http.MethodGet, path, "")
			assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		})
	}
}

func TestSourcesSummaryRequiresScraper(t *testing.T) {
	ts := setupTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/v1/sources/summary", "")
	assert.NotEqual(t, http.StatusOK, rec.Code)

	_, err := ts.services.Registry.AddSource(context.Background(),
		testutil.ScraperScript(scraper.IMDbPlusScriptID, "IMDb+", "5.1.3", 2013, 6, 2), false)
	require.NoError(t, err)

	rec = ts.do(t, http.MethodGet, "/api/v1/sources/summary", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLogs_FilterByComponent(t *testing.T) {
	ts := setupTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/v1/system/logs?component=refresh", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var entries []logger.LogEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "Starting movie refresh", entries[0].Message)

	rec = ts.do(t, http.MethodGet, "/api/v1/system/logs/download", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWebSocket_GreetsWithProperties(t *testing.T) {
	ts := setupTestServer(t)
	ts.services.Properties.Set(properties.ScraperIsInstalled, "false")

	go ts.services.Hub.Run()
	t.Cleanup(ts.services.Hub.Stop)
	srv := httptest.NewServer(ts.Echo())
	t.Cleanup(srv.Close)

	conn, _, err := gorillaws.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg struct {
		Type    string            `json:"type"`
		Payload properties.Change `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, properties.ChangedEvent, msg.Type)
	assert.Equal(t, properties.ScraperIsInstalled, msg.Payload.Name)
	assert.Equal(t, "false", msg.Payload.Value)
}
