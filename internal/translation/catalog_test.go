package translation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imdbplus/imdbplus/internal/testutil"
)

const germanFile = `<?xml version="1.0" encoding="utf-8"?>
<strings>
  <string Field="Cancel">Abbrechen</string>
  <string Field="RefreshMovieStatus">Aktualisiere {0} Filme: {1}%</string>
  <string Field="NotAKey">ignored</string>
  <string>no field</string>
</strings>`

type mapPublisher map[string]string

func (m mapPublisher) Set(name, value string) { m[name] = value }

func newTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	logger := testutil.NewTestLogger(t)
	return New(&logger)
}

func TestCandidates(t *testing.T) {
	assert.Equal(t, []string{"de-AT", "de", "en"}, Candidates("de-AT"))
	assert.Equal(t, []string{"de", "en"}, Candidates("de"))
	assert.Equal(t, []string{"en-GB", "en"}, Candidates("en-GB"))
	assert.Equal(t, []string{"en"}, Candidates("not a tag!"))
}

func TestLoad_FallsBackToBaseLanguage(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, dir, "de.xml", germanFile)
	c := newTestCatalog(t)

	assert.Equal(t, "de", c.Load(dir, "de-AT"))
	assert.Equal(t, "de", c.Language())
	assert.Equal(t, "Abbrechen", c.Get(Cancel))
	assert.Equal(t, defaults[Yes], c.Get(Yes))
	_, ok := c.All()["NotAKey"]
	assert.False(t, ok)
}

func TestLoad_FallsBackToEnglishThenDefaults(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, dir, "en.xml", `<strings><string Field="Yes">Yep</string></strings>`)
	c := newTestCatalog(t)

	assert.Equal(t, "en", c.Load(dir, "fr"))
	assert.Equal(t, "Yep", c.Get(Yes))

	assert.Empty(t, c.Load(t.TempDir(), "fr"))
	assert.Equal(t, "Yes", c.Get(Yes))
}

func TestLoad_CorruptFileIsSkipped(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, dir, "nl.xml", `<strings><string Field=`)
	testutil.WriteFile(t, dir, "en.xml", `<strings/>`)
	c := newTestCatalog(t)

	assert.Equal(t, "en", c.Load(dir, "nl"))
	assert.Equal(t, "Yes", c.Get(Yes))
}

func TestGetFormatParse(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, dir, "de.xml", germanFile)
	c := newTestCatalog(t)
	c.Load(dir, "de")

	assert.Equal(t, "Unknown", c.Get(Key("Unknown")))
	assert.Equal(t, "Aktualisiere 10 Filme: 40%", c.Format(RefreshMovieStatus, 10, 40))
	assert.Equal(t, "Abbrechen / Missing", c.Parse("${Cancel} / ${Missing}"))
}

func TestPublish(t *testing.T) {
	c := newTestCatalog(t)
	props := mapPublisher{}
	c.Publish(props)

	assert.Len(t, props, len(Keys()))
	require.Contains(t, props, "#IMDb.Translation.RefreshMovies.Label")
	assert.Equal(t, "Refresh Movies", props["#IMDb.Translation.RefreshMovies.Label"])
}
