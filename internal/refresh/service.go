// Package refresh runs resumable bulk refreshes over the movies whose
// primary source is IMDb+.
package refresh

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/imdbplus/imdbplus/internal/library"
	"github.com/imdbplus/imdbplus/internal/progress"
	"github.com/imdbplus/imdbplus/internal/properties"
	"github.com/imdbplus/imdbplus/internal/replacements"
	"github.com/imdbplus/imdbplus/internal/translation"
)

var (
	ErrAlreadyRunning = errors.New("refresh already running")
	ErrInvalidMode    = errors.New("invalid refresh mode")
	ErrNoLetters      = errors.New("no letters selected")
)

// Mode selects which movies a refresh covers.
type Mode string

const (
	ModeAll          Mode = "all"
	ModeReplacements Mode = "replacements"
	ModeAlphas       Mode = "alphas"
)

// Request describes one refresh.
type Request struct {
	Mode    Mode     `json:"mode"`
	Letters []string `json:"letters,omitempty"`
}

func (r Request) validate() error {
	switch r.Mode {
	case ModeAll, ModeReplacements:
		return nil
	case ModeAlphas:
		if len(r.Letters) == 0 {
			return ErrNoLetters
		}
		return nil
	default:
		return ErrInvalidMode
	}
}

// Outcome is how a refresh ended.
type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	OutcomeCancelled Outcome = "cancelled"
	OutcomeFailed    Outcome = "failed"
)

// Result summarizes a finished refresh.
type Result struct {
	Outcome   Outcome `json:"outcome"`
	Total     int     `json:"total"`
	Processed int     `json:"processed"`
	Skipped   int     `json:"skipped"`
	Failed    int     `json:"failed"`
	Error     string  `json:"error,omitempty"`
}

// Status is the live state of the refresh worker.
type Status struct {
	Active     bool       `json:"active"`
	Mode       Mode       `json:"mode,omitempty"`
	Current    int        `json:"current"`
	Total      int        `json:"total"`
	Percent    int        `json:"percent"`
	Movie      string     `json:"movie,omitempty"`
	StartedAt  *time.Time `json:"startedAt,omitempty"`
	LastResult *Result    `json:"lastResult,omitempty"`
}

// MovieLister lists the movies of one primary source in sort order.
type MovieLister interface {
	ListByPrimarySource(ctx context.Context, sourceID int64) ([]*library.Movie, error)
}

const activityID = "movie-refresh"

// Service runs one refresh at a time.
type Service struct {
	movies       MovieLister
	target       library.TargetFunc
	replacements *replacements.Loader
	updater      Updater
	resume       *ResumeList
	props        *properties.Store
	progress     *progress.Manager
	catalog      *translation.Catalog
	onFinish     func(Result)
	logger       zerolog.Logger

	cancel atomic.Bool

	mu      sync.Mutex
	running bool
	done    chan struct{}
	status  Status
}

// Config holds the collaborators of a Service. Props, Progress, Catalog and
// OnFinish are optional.
type Config struct {
	Movies       MovieLister
	Target       library.TargetFunc
	Replacements *replacements.Loader
	Updater      Updater
	Resume       *ResumeList
	Props        *properties.Store
	Progress     *progress.Manager
	Catalog      *translation.Catalog
	OnFinish     func(Result)
}

func NewService(cfg Config, logger zerolog.Logger) *Service {
	return &Service{
		movies:       cfg.Movies,
		target:       cfg.Target,
		replacements: cfg.Replacements,
		updater:      cfg.Updater,
		resume:       cfg.Resume,
		props:        cfg.Props,
		progress:     cfg.Progress,
		catalog:      cfg.Catalog,
		onFinish:     cfg.OnFinish,
		logger:       logger.With().Str("component", "refresh").Logger(),
	}
}

// Start runs a refresh on a new goroutine.
func (s *Service) Start(req Request) error {
	if err := req.validate(); err != nil {
		return err
	}
	done, err := s.acquire(req)
	if err != nil {
		return err
	}

	go func() {
		defer s.release(done)
		s.run(context.Background(), req)
	}()
	return nil
}

// Run performs a refresh and blocks until it ends.
func (s *Service) Run(ctx context.Context, req Request) (Result, error) {
	if err := req.validate(); err != nil {
		return Result{}, err
	}
	done, err := s.acquire(req)
	if err != nil {
		return Result{}, err
	}
	defer s.release(done)

	result := s.run(ctx, req)
	if result.Outcome == OutcomeFailed {
		return result, errors.New(result.Error)
	}
	return result, nil
}

// Cancel asks a running refresh to stop before its next movie. It reports
// whether a refresh was running.
func (s *Service) Cancel() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return false
	}
	s.cancel.Store(true)
	s.logger.Info().Msg("Cancelling movie refresh")
	return true
}

// Stop cancels a running refresh and waits for it to end.
func (s *Service) Stop() {
	s.mu.Lock()
	done := s.done
	running := s.running
	s.mu.Unlock()

	if !running {
		return
	}
	s.Cancel()
	<-done
}

// Status returns a snapshot of the worker state.
func (s *Service) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.status
	if st.LastResult != nil {
		r := *st.LastResult
		st.LastResult = &r
	}
	return st
}

// Pending returns how many movies the next refresh will skip.
func (s *Service) Pending(ctx context.Context) (int, error) {
	return s.resume.Count(ctx)
}

func (s *Service) acquire(req Request) (chan struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil, ErrAlreadyRunning
	}
	now := time.Now()
	s.running = true
	s.done = make(chan struct{})
	s.cancel.Store(false)
	s.status = Status{Active: true, Mode: req.Mode, StartedAt: &now, LastResult: s.status.LastResult}
	return s.done, nil
}

func (s *Service) release(done chan struct{}) {
	s.mu.Lock()
	s.running = false
	s.status.Active = false
	s.mu.Unlock()
	close(done)
}

func (s *Service) run(ctx context.Context, req Request) Result {
	tracker := s.progress.Track(activityID, progress.ActivityTypeRefresh, s.text(translation.RefreshingMovies))
	s.setProp(properties.RefreshActive, "true")

	result := s.sweep(ctx, req, tracker)

	s.mu.Lock()
	s.status.LastResult = &result
	s.mu.Unlock()

	s.setProp(properties.RefreshActive, "false")
	switch result.Outcome {
	case OutcomeCompleted:
		s.setProp(properties.RefreshStatus, s.text(translation.RefreshMoviesNotification))
		tracker.Complete(s.text(translation.RefreshMoviesNotification))
	case OutcomeCancelled:
		s.setProp(properties.RefreshStatus, s.text(translation.RefreshMoviesCancelled))
		tracker.Cancel()
	default:
		s.setProp(properties.RefreshStatus, result.Error)
		tracker.Fail(result.Error)
	}

	s.logger.Info().
		Str("mode", string(req.Mode)).
		Str("outcome", string(result.Outcome)).
		Int("total", result.Total).
		Int("processed", result.Processed).
		Int("skipped", result.Skipped).
		Int("failed", result.Failed).
		Msg("Movie refresh finished")

	if s.onFinish != nil {
		s.onFinish(result)
	}
	return result
}

func (s *Service) sweep(ctx context.Context, req Request, tracker *progress.Tracker) Result {
	fail := func(err error) Result {
		s.logger.Error().Err(err).Msg("Movie refresh failed")
		return Result{Outcome: OutcomeFailed, Error: err.Error()}
	}

	movies, err := s.Select(ctx, req)
	if err != nil {
		return fail(err)
	}
	done, err := s.resume.Processed(ctx)
	if err != nil {
		return fail(err)
	}

	total := len(movies)
	result := Result{Total: total}
	s.setProp(properties.RefreshMovieCount, fmt.Sprint(total))
	s.logger.Info().Str("mode", string(req.Mode)).Int("movies", total).Int("resumed", len(done)).Msg("Starting movie refresh")

	for i, movie := range movies {
		if s.cancel.Load() || ctx.Err() != nil {
			result.Outcome = OutcomeCancelled
			return result
		}

		s.report(i+1, total, movie, tracker)

		if done[movie.ID] {
			result.Skipped++
			continue
		}

		if err := s.updater.UpdateMovie(ctx, movie); err != nil {
			result.Failed++
			s.logger.Warn().Err(err).Int64("movieId", movie.ID).Str("title", movie.Title).Msg("Failed to refresh movie")
		}
		if err := s.resume.Mark(ctx, movie.ID); err != nil {
			return fail(err)
		}
		result.Processed++
	}

	if err := s.resume.Clear(ctx); err != nil {
		return fail(err)
	}
	result.Outcome = OutcomeCompleted
	return result
}

// Select returns the movies a request covers, in sort order.
func (s *Service) Select(ctx context.Context, req Request) ([]*library.Movie, error) {
	sourceID, err := s.target(ctx)
	if err != nil {
		return nil, err
	}
	movies, err := s.movies.ListByPrimarySource(ctx, sourceID)
	if err != nil {
		return nil, err
	}

	var keep func(*library.Movie) bool
	switch req.Mode {
	case ModeReplacements:
		ids := make(map[string]bool)
		for _, r := range s.replacements.Merged() {
			ids[r.ID] = true
		}
		keep = func(m *library.Movie) bool { return ids[m.ImdbID] }
	case ModeAlphas:
		letters := make(map[string]bool, len(req.Letters))
		for _, l := range req.Letters {
			letters[strings.ToUpper(strings.TrimSpace(l))] = true
		}
		keep = func(m *library.Movie) bool { return letters[library.AlphaOf(m)] }
	default:
		return movies, nil
	}

	out := movies[:0]
	for _, m := range movies {
		if keep(m) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *Service) report(current, total int, movie *library.Movie, tracker *progress.Tracker) {
	percent := progress.Percent(current, total)

	s.mu.Lock()
	s.status.Current = current
	s.status.Total = total
	s.status.Percent = percent
	s.status.Movie = movie.Title
	s.mu.Unlock()

	s.setProp(properties.RefreshMovie, movie.Title)
	s.setProp(properties.RefreshCurrentItem, fmt.Sprint(current))
	s.setProp(properties.RefreshProgressPercent, fmt.Sprint(percent))
	s.setProp(properties.RefreshStatus, s.format(translation.RefreshMovieStatus, total, percent))
	tracker.Update(movie.Title, current, total)
}

func (s *Service) setProp(name, value string) {
	if s.props != nil {
		s.props.Set(name, value)
	}
}

func (s *Service) text(key translation.Key) string {
	return s.format(key)
}

func (s *Service) format(key translation.Key, args ...interface{}) string {
	if s.catalog == nil {
		return translation.Default(key, args...)
	}
	return s.catalog.Format(key, args...)
}
