// Package progress tracks long-running jobs such as refreshes and scraper
// syncs and broadcasts their state to connected WebSocket clients.
package progress

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ActivityType identifies the kind of job being tracked.
type ActivityType string

const (
	ActivityTypeRefresh    ActivityType = "refresh"
	ActivityTypeSync       ActivityType = "sync"
	ActivityTypeConversion ActivityType = "conversion"
)

// Status represents the current state of an activity.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusCancelled  Status = "cancelled"
)

// Activity is a snapshot of a tracked job.
type Activity struct {
	ID          string                 `json:"id"`
	Type        ActivityType           `json:"type"`
	Title       string                 `json:"title"`
	Subtitle    string                 `json:"subtitle"`
	Progress    int                    `json:"progress"` // 0-100, -1 for indeterminate
	Current     int                    `json:"current"`
	Total       int                    `json:"total"`
	Status      Status                 `json:"status"`
	StartedAt   time.Time              `json:"startedAt"`
	CompletedAt *time.Time             `json:"completedAt"`
	Metadata    map[string]interface{} `json:"metadata"`
}

func (a *Activity) clone() Activity {
	c := *a
	c.Metadata = make(map[string]interface{}, len(a.Metadata))
	for k, v := range a.Metadata {
		c.Metadata[k] = v
	}
	return c
}

// EventType identifies the type of progress event.
type EventType string

const (
	EventTypeStarted   EventType = "progress:started"
	EventTypeUpdate    EventType = "progress:update"
	EventTypeCompleted EventType = "progress:completed"
	EventTypeError     EventType = "progress:error"
	EventTypeCancelled EventType = "progress:cancelled"
)

// Broadcaster delivers events to clients.
type Broadcaster interface {
	Broadcast(msgType string, payload interface{}) error
}

// Finished activities stay visible for this long.
const retention = 5 * time.Second

// Manager tracks and broadcasts progress for all activities.
type Manager struct {
	hub        Broadcaster
	activities map[string]*Activity
	mu         sync.RWMutex
	logger     zerolog.Logger
}

// NewManager creates a new progress manager. hub may be nil.
func NewManager(hub Broadcaster, logger zerolog.Logger) *Manager {
	return &Manager{
		hub:        hub,
		activities: make(map[string]*Activity),
		logger:     logger.With().Str("component", "progress").Logger(),
	}
}

// Start creates and starts tracking a new activity, replacing any previous
// activity with the same id.
func (m *Manager) Start(id string, activityType ActivityType, title string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	activity := &Activity{
		ID:        id,
		Type:      activityType,
		Title:     title,
		Subtitle:  "Starting...",
		Status:    StatusInProgress,
		StartedAt: time.Now(),
		Metadata:  make(map[string]interface{}),
	}
	m.activities[id] = activity
	m.broadcast(EventTypeStarted, activity)

	m.logger.Debug().
		Str("id", id).
		Str("type", string(activityType)).
		Str("title", title).
		Msg("Activity started")
}

// Update sets the subtitle and item counts of an activity. The percentage is
// derived from current and total; a zero total marks it indeterminate.
func (m *Manager) Update(id, subtitle string, current, total int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	activity, ok := m.activities[id]
	if !ok || activity.Status != StatusInProgress {
		return
	}

	activity.Subtitle = subtitle
	activity.Current = current
	activity.Total = total
	activity.Progress = Percent(current, total)
	m.broadcast(EventTypeUpdate, activity)
}

// SetMetadata stores a key on an activity without broadcasting.
func (m *Manager) SetMetadata(id, key string, value interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if activity, ok := m.activities[id]; ok {
		activity.Metadata[key] = value
	}
}

// Complete marks an activity as completed.
func (m *Manager) Complete(id, subtitle string) {
	m.finish(id, StatusCompleted, subtitle, EventTypeCompleted)
}

// Fail marks an activity as failed.
func (m *Manager) Fail(id, errorMsg string) {
	m.mu.Lock()
	if activity, ok := m.activities[id]; ok {
		activity.Metadata["error"] = errorMsg
	}
	m.mu.Unlock()
	m.finish(id, StatusFailed, errorMsg, EventTypeError)
}

// Cancel marks an activity as cancelled.
func (m *Manager) Cancel(id string) {
	m.finish(id, StatusCancelled, "Cancelled", EventTypeCancelled)
}

func (m *Manager) finish(id string, status Status, subtitle string, event EventType) {
	m.mu.Lock()
	defer m.mu.Unlock()

	activity, ok := m.activities[id]
	if !ok || activity.Status != StatusInProgress {
		return
	}

	now := time.Now()
	activity.Status = status
	activity.Subtitle = subtitle
	activity.CompletedAt = &now
	if status == StatusCompleted {
		activity.Progress = 100
	}
	m.broadcast(event, activity)

	time.AfterFunc(retention, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if current, ok := m.activities[id]; ok && current == activity {
			delete(m.activities, id)
		}
	})

	m.logger.Debug().
		Str("id", id).
		Str("title", activity.Title).
		Str("status", string(status)).
		Msg("Activity finished")
}

// Get returns a snapshot of an activity.
func (m *Manager) Get(id string) (Activity, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	activity, ok := m.activities[id]
	if !ok {
		return Activity{}, false
	}
	return activity.clone(), true
}

// List returns snapshots of all tracked activities.
func (m *Manager) List() []Activity {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]Activity, 0, len(m.activities))
	for _, activity := range m.activities {
		result = append(result, activity.clone())
	}
	return result
}

// ListByType returns snapshots of the activities of one type.
func (m *Manager) ListByType(activityType ActivityType) []Activity {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]Activity, 0)
	for _, activity := range m.activities {
		if activity.Type == activityType {
			result = append(result, activity.clone())
		}
	}
	return result
}

// broadcast sends a snapshot so receivers never observe later mutations.
func (m *Manager) broadcast(eventType EventType, activity *Activity) {
	if m.hub == nil {
		return
	}
	if err := m.hub.Broadcast(string(eventType), activity.clone()); err != nil {
		m.logger.Warn().Err(err).Str("id", activity.ID).Msg("Failed to broadcast progress")
	}
}

// Percent returns current/total as a whole percentage, or -1 when total is zero.
func Percent(current, total int) int {
	if total <= 0 {
		return -1
	}
	if current >= total {
		return 100
	}
	return current * 100 / total
}

// Tracker binds one activity id to a manager. A nil *Tracker is a no-op.
type Tracker struct {
	manager *Manager
	id      string
}

// Track starts an activity and returns a tracker for it.
func (m *Manager) Track(id string, activityType ActivityType, title string) *Tracker {
	if m == nil {
		return nil
	}
	m.Start(id, activityType, title)
	return &Tracker{manager: m, id: id}
}

// Update reports item progress.
func (t *Tracker) Update(subtitle string, current, total int) {
	if t == nil {
		return
	}
	t.manager.Update(t.id, subtitle, current, total)
}

// SetMetadata stores a key on the activity.
func (t *Tracker) SetMetadata(key string, value interface{}) *Tracker {
	if t != nil {
		t.manager.SetMetadata(t.id, key, value)
	}
	return t
}

func (t *Tracker) Complete(subtitle string) {
	if t != nil {
		t.manager.Complete(t.id, subtitle)
	}
}

func (t *Tracker) Fail(errorMsg string) {
	if t != nil {
		t.manager.Fail(t.id, errorMsg)
	}
}

func (t *Tracker) Cancel() {
	if t != nil {
		t.manager.Cancel(t.id)
	}
}

// ID returns the activity's ID.
func (t *Tracker) ID() string {
	if t == nil {
		return ""
	}
	return t.id
}
