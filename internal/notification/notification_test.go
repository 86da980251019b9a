package notification

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imdbplus/imdbplus/internal/testutil"
)

func TestScraperUpdated(t *testing.T) {
	hub := &testutil.Recorder{}
	svc := NewService(hub, nil, false, testutil.NopLogger())

	svc.ScraperUpdated("5.1.3")

	events := hub.OfType(MessageType)
	require.Len(t, events, 1)
	notice, ok := events[0].Payload.(Notice)
	require.True(t, ok)
	assert.Equal(t, EventScraperUpdated, notice.Event)
	assert.Equal(t, "IMDb+", notice.Title)
	assert.Equal(t, "MovingPictures has been updated with IMDb+ Scraper script v5.1.3", notice.Message)
	assert.False(t, notice.SentAt.IsZero())
}

func TestRefreshComplete(t *testing.T) {
	hub := &testutil.Recorder{}
	svc := NewService(hub, nil, false, testutil.NopLogger())

	svc.RefreshComplete()

	events := hub.OfType(MessageType)
	require.Len(t, events, 1)
	assert.Equal(t, "IMDb+ movie refresh is now complete.", events[0].Payload.(Notice).Message)
}

func TestDisabledDropsNotices(t *testing.T) {
	hub := &testutil.Recorder{}
	svc := NewService(hub, nil, true, testutil.NopLogger())

	svc.ScraperUpdated("1.0.0")
	svc.RefreshComplete()

	assert.False(t, svc.Enabled())
	assert.Empty(t, hub.Events())
}
