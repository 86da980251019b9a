package options

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEmptyStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "IMDb+", "Options IMDb+ Scraper.xml")
	require.NoError(t, CreateEmpty(path))

	s := New()
	require.NoError(t, s.Load(path))
	return s, path
}

func TestReadDefaults_EmptyDocument(t *testing.T) {
	s, _ := newEmptyStore(t)

	assert.True(t, s.ReadBool("global_options_rename_titles", true))
	assert.False(t, s.ReadBool("global_options_rename_titles", false))
	assert.Equal(t, "us|ca", s.ReadString("global_options_country_filter", "us|ca"))
	assert.Equal(t, "", s.ReadString("missing", ""))
}

func TestReadDefaults_Unloaded(t *testing.T) {
	s := New()
	assert.True(t, s.ReadBool("anything", true))
	assert.Equal(t, "x", s.ReadString("anything", "x"))
	assert.ErrorIs(t, s.WriteEntry("anything", "01", "true"), ErrUnusable)
}

func TestLoad_Missing(t *testing.T) {
	s := New()
	err := s.Load(filepath.Join(t.TempDir(), "nope.xml"))
	require.Error(t, err)
	assert.False(t, s.Loaded())
}

func TestLoad_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "options.xml")
	require.NoError(t, os.WriteFile(path, []byte("<imdbplus><set name="), 0o644))

	s := New()
	require.Error(t, s.Load(path))
	assert.False(t, s.Loaded())
	assert.True(t, s.ReadBool("global_options_special_edition", true))
}

func TestLoad_ForeignRoot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "options.xml")
	require.NoError(t, os.WriteFile(path, []byte(`<settings><set name="global_options_special_edition" value="false"/></settings>`), 0o644))

	s := New()
	require.NoError(t, s.Load(path))
	assert.True(t, s.Loaded())
	assert.True(t, s.ReadBool("global_options_special_edition", true))
	assert.ErrorIs(t, s.WriteEntry("global_options_special_edition", "02", "true"), ErrForeignRoot)
}

func TestWriteEntry_RoundTripLowercases(t *testing.T) {
	s, path := newEmptyStore(t)

	require.NoError(t, s.WriteEntry("global_options_original_title", "01", "True"))
	require.NoError(t, s.WriteEntry("global_options_country_filter", "98", "US|CA"))
	require.NoError(t, s.Save(path))

	reloaded := New()
	require.NoError(t, reloaded.Load(path))
	assert.True(t, reloaded.ReadBool("global_options_original_title", false))
	assert.Equal(t, "true", reloaded.ReadString("global_options_original_title", ""))
	assert.Equal(t, "us|ca", reloaded.ReadString("global_options_country_filter", ""))
}

func TestWriteEntry_OverwritesInPlace(t *testing.T) {
	s, path := newEmptyStore(t)

	require.NoError(t, s.WriteEntry("global_options_long_summary", "07", "false"))
	require.NoError(t, s.WriteEntry("global_options_long_summary", "99", "true"))
	require.NoError(t, s.Save(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.Equal(t, 1, countOccurrences(content, `name="global_options_long_summary"`))
	assert.Contains(t, content, `id="07"`)
	assert.NotContains(t, content, `id="99"`)
}

func TestReadBool_CaseInsensitiveAndInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "options.xml")
	doc := `<?xml version="1.0" encoding="utf-8"?>
<imdbplus>
  <section>
    <set id="01" name="nested" value="TRUE" />
  </section>
  <set id="02" name="bad" value="yes" />
  <set id="03" name="novalue" />
</imdbplus>`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	s := New()
	require.NoError(t, s.Load(path))
	assert.True(t, s.ReadBool("nested", false))
	assert.True(t, s.ReadBool("bad", true))
	assert.False(t, s.ReadBool("bad", false))
	assert.Equal(t, "dflt", s.ReadString("novalue", "dflt"))
}

func TestSave_RequiresExistingFile(t *testing.T) {
	s, _ := newEmptyStore(t)
	err := s.Save(filepath.Join(t.TempDir(), "other.xml"))
	assert.ErrorIs(t, err, ErrNotExist)
}

func TestScenario_MissingFileThenSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "IMDb+", "Options IMDb+ Scraper.xml")

	s := New()
	require.Error(t, s.Load(path))
	assert.False(t, s.ReadBool("global_options_imdb_score", false))

	require.NoError(t, CreateEmpty(path))
	require.NoError(t, s.Load(path))
	require.NoError(t, s.WriteEntry("global_options_imdb_score", "05", "True"))
	require.NoError(t, s.Save(path))

	again := New()
	require.NoError(t, again.Load(path))
	assert.True(t, again.ReadBool("global_options_imdb_score", false))
}

func countOccurrences(s, sub string) int {
	n := 0
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			n++
		}
	}
	return n
}
