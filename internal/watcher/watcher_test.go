package watcher

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imdbplus/imdbplus/internal/testutil"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	s, err := NewService(Config{DebounceDelay: 50 * time.Millisecond}, testutil.NopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Stop() })
	return s
}

func TestAddFile_TracksFilesAndDirectories(t *testing.T) {
	w, err := New(DefaultConfig(), testutil.NopLogger())
	require.NoError(t, err)
	defer w.Stop()

	dir := t.TempDir()
	a := filepath.Join(dir, "a.yaml")
	b := filepath.Join(dir, "b.yaml")

	require.NoError(t, w.AddFile(a))
	require.NoError(t, w.AddFile(a))
	require.NoError(t, w.AddFile(b))
	assert.Equal(t, []string{a, b}, w.WatchedFiles())
	assert.Equal(t, 2, w.dirs[dir])

	require.NoError(t, w.RemoveFile(a))
	assert.Equal(t, []string{b}, w.WatchedFiles())
	assert.Equal(t, 1, w.dirs[dir])

	require.NoError(t, w.RemoveFile(b))
	assert.Empty(t, w.WatchedFiles())
	assert.NotContains(t, w.dirs, dir)

	assert.Error(t, w.AddFile(filepath.Join(dir, "missing", "c.yaml")))
}

func TestService_DebouncesWritesToWatchedFile(t *testing.T) {
	s := newTestService(t)
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "config.yaml", "a: 1\n")

	var fileCalls, globalCalls atomic.Int32
	require.NoError(t, s.OnChange(path, func() { fileCalls.Add(1) }))
	s.Subscribe(func() { globalCalls.Add(1) })
	s.Start()

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte("a: 2\n"), 0o644))
	}

	require.Eventually(t, func() bool { return fileCalls.Load() >= 1 }, 3*time.Second, 10*time.Millisecond)
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int32(1), fileCalls.Load())
	assert.Equal(t, int32(1), globalCalls.Load())
}

func TestService_IgnoresSiblingFiles(t *testing.T) {
	s := newTestService(t)
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "config.yaml", "a: 1\n")

	var calls atomic.Int32
	require.NoError(t, s.OnChange(path, func() { calls.Add(1) }))
	s.Subscribe(func() { calls.Add(1) })
	s.Start()

	testutil.WriteFile(t, dir, "other.yaml", "b: 1\n")
	time.Sleep(300 * time.Millisecond)
	assert.Zero(t, calls.Load())
}

func TestService_SeesReplaceByRename(t *testing.T) {
	s := newTestService(t)
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "config.yaml", "a: 1\n")

	var calls atomic.Int32
	require.NoError(t, s.OnChange(path, func() { calls.Add(1) }))
	s.Start()

	tmp := testutil.WriteFile(t, dir, ".config.yaml.tmp", "a: 3\n")
	require.NoError(t, os.Rename(tmp, path))

	require.Eventually(t, func() bool { return calls.Load() == 1 }, 3*time.Second, 10*time.Millisecond)
}

func TestService_Unwatch(t *testing.T) {
	s := newTestService(t)
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "config.yaml", "a: 1\n")

	var calls atomic.Int32
	require.NoError(t, s.OnChange(path, func() { calls.Add(1) }))
	require.NoError(t, s.Unwatch(path))
	assert.Empty(t, s.WatchedFiles())
	s.Start()

	require.NoError(t, os.WriteFile(path, []byte("a: 2\n"), 0o644))
	time.Sleep(300 * time.Millisecond)
	assert.Zero(t, calls.Load())
}
