package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imdbplus/imdbplus/internal/testutil"
)

func TestPercent(t *testing.T) {
	assert.Equal(t, -1, Percent(0, 0))
	assert.Equal(t, 0, Percent(0, 10))
	assert.Equal(t, 33, Percent(1, 3))
	assert.Equal(t, 100, Percent(10, 10))
	assert.Equal(t, 100, Percent(11, 10))
}

func TestManager_Lifecycle(t *testing.T) {
	rec := &testutil.Recorder{}
	m := NewManager(rec, testutil.NopLogger())

	m.Start("refresh", ActivityTypeRefresh, "Refreshing movies")
	m.Update("refresh", "Alien", 1, 4)
	m.Complete("refresh", "Done")

	events := rec.Events()
	require.Len(t, events, 3)
	assert.Equal(t, string(EventTypeStarted), events[0].Type)
	assert.Equal(t, string(EventTypeUpdate), events[1].Type)
	assert.Equal(t, string(EventTypeCompleted), events[2].Type)

	update := events[1].Payload.(Activity)
	assert.Equal(t, 25, update.Progress)
	assert.Equal(t, "Alien", update.Subtitle)
	assert.Equal(t, StatusInProgress, update.Status)

	got, ok := m.Get("refresh")
	require.True(t, ok)
	assert.Equal(t, StatusCompleted, got.Status)
	assert.Equal(t, 100, got.Progress)
	assert.NotNil(t, got.CompletedAt)
}

func TestManager_FinishedActivityIgnoresUpdates(t *testing.T) {
	rec := &testutil.Recorder{}
	m := NewManager(rec, testutil.NopLogger())

	m.Start("sync", ActivityTypeSync, "Checking for updates")
	m.Cancel("sync")
	m.Update("sync", "late", 1, 1)
	m.Fail("sync", "late")

	assert.Len(t, rec.Events(), 2)
	assert.Len(t, rec.OfType(string(EventTypeCancelled)), 1)
}

func TestManager_FailRecordsError(t *testing.T) {
	m := NewManager(nil, testutil.NopLogger())

	m.Start("sync", ActivityTypeSync, "Checking for updates")
	m.Fail("sync", "connection refused")

	got, ok := m.Get("sync")
	require.True(t, ok)
	assert.Equal(t, StatusFailed, got.Status)
	assert.Equal(t, "connection refused", got.Metadata["error"])
}

func TestManager_ListByType(t *testing.T) {
	m := NewManager(nil, testutil.NopLogger())
	m.Start("a", ActivityTypeRefresh, "a")
	m.Start("b", ActivityTypeSync, "b")

	assert.Len(t, m.List(), 2)
	refreshes := m.ListByType(ActivityTypeRefresh)
	require.Len(t, refreshes, 1)
	assert.Equal(t, "a", refreshes[0].ID)
}

func TestTracker_NilIsNoop(t *testing.T) {
	var m *Manager
	tr := m.Track("x", ActivityTypeRefresh, "x")
	assert.Nil(t, tr)
	tr.Update("x", 1, 2)
	tr.SetMetadata("k", "v").Complete("done")
	assert.Empty(t, tr.ID())
}
