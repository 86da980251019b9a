package preferences

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imdbplus/imdbplus/internal/options"
)

func newTestService(t *testing.T) (*Service, string) {
	t.Helper()
	logger := zerolog.New(zerolog.NewTestWriter(t)).Level(zerolog.DebugLevel)
	path := filepath.Join(t.TempDir(), "IMDb+", "Options IMDb+ Scraper.xml")
	return NewService(path, &logger), path
}

func TestLoad_MissingFileMaterializesDefaults(t *testing.T) {
	svc, path := newTestService(t)

	p := svc.Load()
	assert.Equal(t, DefaultPreferences(), p)

	store := options.New()
	require.NoError(t, store.Load(path))
	for _, e := range DefaultPreferences().Entries() {
		assert.Equal(t, e.Value, store.ReadString(e.Key, "<missing>"), e.Key)
	}
}

func TestLoad_KeepsExistingValues(t *testing.T) {
	svc, path := newTestService(t)
	require.NoError(t, options.CreateEmpty(path))

	store := options.New()
	require.NoError(t, store.Load(path))
	require.NoError(t, store.WriteEntry(KeyIMDbScore, "05", "True"))
	require.NoError(t, store.WriteEntry(KeyRenameTitles, "12", "false"))
	require.NoError(t, store.Save(path))

	p := svc.Load()
	assert.True(t, p.IMDbScore)
	assert.False(t, p.RenameTitles)
	assert.True(t, p.SpecialEdition)
	assert.Equal(t, "en", p.LanguageFilter)
}

func TestLoad_CorruptFileIsRecreated(t *testing.T) {
	svc, path := newTestService(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("<imdbplus><set"), 0o644))

	p := svc.Load()
	assert.Equal(t, DefaultPreferences(), p)

	store := options.New()
	require.NoError(t, store.Load(path))
	assert.Equal(t, "true", store.ReadString(KeySpecialEdition, ""))
}

func TestLoad_ForeignRootIsNotDeleted(t *testing.T) {
	svc, path := newTestService(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	original := []byte(`<settings><user note="keep me"/></settings>`)
	require.NoError(t, os.WriteFile(path, original, 0o644))

	p := svc.Load()
	assert.Equal(t, DefaultPreferences(), p)
	assert.ErrorIs(t, svc.Save(), options.ErrForeignRoot)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, original, data)
}

func TestUpdate_PersistsAndNotifies(t *testing.T) {
	svc, path := newTestService(t)
	svc.Load()

	var seen []Preferences
	svc.OnChange(func(p Preferences) { seen = append(seen, p) })

	p := svc.Get()
	p.LongSummary = true
	p.CountryFilter = " US|GB "
	p.LanguageFilter = ""

	updated, err := svc.Update(p)
	require.NoError(t, err)
	assert.Equal(t, "us|gb", updated.CountryFilter)
	assert.Equal(t, "en", updated.LanguageFilter)
	require.Len(t, seen, 1)
	assert.True(t, seen[0].LongSummary)

	reloaded, _ := newTestService(t)
	reloaded.path = path
	got := reloaded.Load()
	assert.True(t, got.LongSummary)
	assert.Equal(t, "us|gb", got.CountryFilter)
}

func TestSave_DeleteFailureKeepsMemory(t *testing.T) {
	svc, path := newTestService(t)

	// a non-empty directory at the document path can be neither parsed nor removed
	require.NoError(t, os.MkdirAll(filepath.Join(path, "child"), 0o755))

	p := DefaultPreferences()
	p.ForeignTitle = true
	updated, err := svc.Update(p)
	require.Error(t, err)
	assert.True(t, updated.ForeignTitle)
	assert.True(t, svc.Get().ForeignTitle)
}

func TestEntries_Order(t *testing.T) {
	entries := DefaultPreferences().Entries()
	require.Len(t, entries, 20)
	assert.Equal(t, "01", entries[0].ID)
	assert.Equal(t, KeySecondarySummary, entries[16].Key)
	assert.Equal(t, "99", entries[19].ID)
	assert.Equal(t, "us|ca|gb|ie|au|nz", entries[18].Value)
}
