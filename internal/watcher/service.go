package watcher

import (
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
)

// Service dispatches debounced file changes to subscribers.
type Service struct {
	watcher *Watcher
	logger  zerolog.Logger

	mu        sync.RWMutex
	listeners map[string][]func()
	global    []func()
}

// NewService creates a new watcher service.
func NewService(config Config, logger zerolog.Logger) (*Service, error) {
	watcher, err := New(config, logger)
	if err != nil {
		return nil, err
	}

	s := &Service{
		watcher:   watcher,
		logger:    logger.With().Str("component", "watcher-service").Logger(),
		listeners: make(map[string][]func()),
	}

	watcher.SetHandler(s.handleEvents)
	return s, nil
}

// Start begins delivering events.
func (s *Service) Start() {
	s.watcher.Start()
	s.logger.Info().Int("fileCount", len(s.watcher.WatchedFiles())).Msg("Watcher service started")
}

// Stop stops the watcher service.
func (s *Service) Stop() error {
	return s.watcher.Stop()
}

// Watch adds path to the watch list.
func (s *Service) Watch(path string) error {
	return s.watcher.AddFile(path)
}

// Unwatch removes path from the watch list and drops its listeners.
func (s *Service) Unwatch(path string) error {
	if abs, err := filepath.Abs(path); err == nil {
		s.mu.Lock()
		delete(s.listeners, abs)
		s.mu.Unlock()
	}
	return s.watcher.RemoveFile(path)
}

// WatchedFiles returns the watched files.
func (s *Service) WatchedFiles() []string {
	return s.watcher.WatchedFiles()
}

// OnChange registers fn for changes to path, which is also watched.
func (s *Service) OnChange(path string, fn func()) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := s.watcher.AddFile(abs); err != nil {
		return err
	}

	s.mu.Lock()
	s.listeners[abs] = append(s.listeners[abs], fn)
	s.mu.Unlock()
	return nil
}

// Subscribe registers fn for changes to any watched file. A batch of changes
// calls fn once.
func (s *Service) Subscribe(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.global = append(s.global, fn)
}

// handleEvents processes batched file events.
func (s *Service) handleEvents(events []FileEvent) {
	s.mu.RLock()
	var calls []func()
	for _, event := range events {
		s.logger.Debug().
			Str("path", event.Path).
			Str("op", event.Op).
			Msg("File changed")
		calls = append(calls, s.listeners[event.Path]...)
	}
	calls = append(calls, s.global...)
	s.mu.RUnlock()

	for _, fn := range calls {
		fn()
	}
}
