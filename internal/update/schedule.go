package update

import (
	"context"
	"errors"
	"time"

	"github.com/imdbplus/imdbplus/internal/scheduler"
)

// StartupDelay is how long after arming a due sync runs.
const StartupDelay = 3 * time.Second

// TaskID identifies the recurring sync task.
const TaskID = "scraper-sync"

var ErrNotStarted = errors.New("synchronizer not started")

// TaskScheduler is the part of the scheduler the synchronizer drives.
type TaskScheduler interface {
	RegisterTask(cfg scheduler.TaskConfig) error
	Reschedule(id string, startAfter, interval time.Duration) error
}

// ChangeNotifier is implemented by components that report external
// configuration changes.
type ChangeNotifier interface {
	Subscribe(fn func())
}

// ScheduleSource reads the current sync interval and on-startup flag.
type ScheduleSource func() (interval time.Duration, onStartup bool, err error)

// NextSyncDelay returns how long to wait before the next sync. A sync that is
// due, or any sync when onStartup is set, waits startupDelay.
func NextSyncDelay(lastSync time.Time, interval time.Duration, onStartup bool, now time.Time, startupDelay time.Duration) time.Duration {
	if startupDelay <= 0 {
		startupDelay = StartupDelay
	}
	if onStartup {
		return startupDelay
	}
	remaining := lastSync.Add(interval).Sub(now)
	if remaining <= startupDelay {
		return startupDelay
	}
	return remaining
}

// Start registers the recurring sync task with sched.
func (s *Service) Start(ctx context.Context, sched TaskScheduler) error {
	delay, interval, err := s.nextDelay(ctx)
	if err != nil {
		return err
	}

	err = sched.RegisterTask(scheduler.TaskConfig{
		ID:          TaskID,
		Name:        "IMDb+ Sync",
		Description: "Downloads the latest IMDb+ scraper script and rename database",
		Interval:    interval,
		StartAfter:  delay,
		Func: func(ctx context.Context) error {
			s.runScheduled(ctx)
			return nil
		},
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.scheduler = sched
	s.mu.Unlock()
	s.setNextSync(delay)

	s.logger.Info().Dur("delay", delay).Dur("interval", interval).Msg("Scheduled scraper sync")
	return nil
}

func (s *Service) runScheduled(ctx context.Context) {
	result := s.CheckForUpdate(ctx)
	s.setNextSync(s.options().Interval)
	if result.Scraper.Error != "" || result.Replacements.Error != "" {
		s.logger.Warn().
			Str("scraper", result.Scraper.Error).
			Str("replacements", result.Replacements.Error).
			Msg("Scheduled sync finished with errors")
	}
}

// Rearm recomputes the delay from the last sync and reschedules the task.
func (s *Service) Rearm(ctx context.Context) error {
	s.mu.RLock()
	sched := s.scheduler
	s.mu.RUnlock()
	if sched == nil {
		return ErrNotStarted
	}

	delay, interval, err := s.nextDelay(ctx)
	if err != nil {
		return err
	}
	if err := sched.Reschedule(TaskID, delay, interval); err != nil {
		return err
	}
	s.setNextSync(delay)

	s.logger.Info().Dur("delay", delay).Dur("interval", interval).Msg("Rescheduled scraper sync")
	return nil
}

// SetSchedule changes the sync cadence and rearms the task when it is running.
func (s *Service) SetSchedule(ctx context.Context, interval time.Duration, onStartup bool) error {
	if interval <= 0 {
		return scheduler.ErrInvalidPeriod
	}

	s.mu.Lock()
	changed := s.opts.Interval != interval || s.opts.OnStartup != onStartup
	s.opts.Interval = interval
	s.opts.OnStartup = onStartup
	started := s.scheduler != nil
	s.mu.Unlock()

	if !changed || !started {
		return nil
	}
	return s.Rearm(ctx)
}

// AttachNotifier subscribes to candidate when it can report configuration
// changes. Each change re-reads the schedule from source. It reports whether
// a subscription was made.
func (s *Service) AttachNotifier(candidate any, source ScheduleSource) bool {
	notifier, ok := candidate.(ChangeNotifier)
	if !ok || notifier == nil {
		s.logger.Debug().Msg("No configuration change notifier available")
		return false
	}

	notifier.Subscribe(func() {
		interval, onStartup, err := source()
		if err != nil {
			s.logger.Warn().Err(err).Msg("Failed to read changed sync settings")
			return
		}
		if err := s.SetSchedule(context.Background(), interval, onStartup); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to apply changed sync settings")
		}
	})
	return true
}

func (s *Service) nextDelay(ctx context.Context) (time.Duration, time.Duration, error) {
	last, err := s.LastSync(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Ignoring unreadable last sync time")
		last = time.Time{}
	}
	opts := s.options()
	if opts.Interval <= 0 {
		return 0, 0, scheduler.ErrInvalidPeriod
	}
	return NextSyncDelay(last, opts.Interval, opts.OnStartup, s.now(), opts.StartupDelay), opts.Interval, nil
}

func (s *Service) setNextSync(delay time.Duration) {
	next := s.now().Add(delay)
	s.mu.Lock()
	s.nextSync = &next
	s.mu.Unlock()
}
