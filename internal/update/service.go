// Package update keeps the IMDb+ scraper script and the rename database in
// step with their published copies.
package update

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/imdbplus/imdbplus/internal/config"
	"github.com/imdbplus/imdbplus/internal/database"
	"github.com/imdbplus/imdbplus/internal/progress"
	"github.com/imdbplus/imdbplus/internal/properties"
	"github.com/imdbplus/imdbplus/internal/replacements"
	"github.com/imdbplus/imdbplus/internal/scraper"
)

// SettingLastSync stores the time of the last successful scraper download.
const SettingLastSync = "sync_last_datetime"

// Paths embedded in the published scraper script.
const (
	scriptRenamePath       = `C:\Rename dBase IMDb+ Scraper.xml`
	scriptCustomRenamePath = `C:\Rename dBase IMDb+ Scraper (Custom).xml`
	scriptOptionsPath      = `C:\Options IMDb+ Scraper.xml`
)

const activityID = "scraper-sync"

func userAgent() string {
	return "IMDbPlus/" + config.Version
}

// Installer registers scraper scripts.
type Installer interface {
	AddSource(ctx context.Context, contents string, debugMode bool) (scraper.AddResult, error)
	GetByScriptID(ctx context.Context, scriptID int) (*scraper.Source, error)
	PromoteDetails(ctx context.Context, sourceID int64) error
	ReplaceInScript(ctx context.Context, sourceID int64, replacer *strings.Replacer) (bool, error)
}

// SettingsStore persists small values such as the last sync time.
type SettingsStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// Options configures the synchronizer.
type Options struct {
	ScraperURL             string
	ReplacementsURL        string
	Interval               time.Duration
	OnStartup              bool
	StartupDelay           time.Duration
	DebugMode              bool
	DataDir                string
	OptionsFile            string
	ReplacementsFile       string
	CustomReplacementsFile string
}

// OptionsFromConfig builds Options from the application configuration.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		ScraperURL:             cfg.Sync.ScraperURL,
		ReplacementsURL:        cfg.Sync.ReplacementsURL,
		Interval:               cfg.Sync.Interval(),
		OnStartup:              cfg.Sync.OnStartup,
		StartupDelay:           cfg.Sync.StartupDelay,
		DebugMode:              cfg.Sync.DebugMode,
		DataDir:                cfg.Paths.DataDir,
		OptionsFile:            cfg.Paths.OptionsFile(),
		ReplacementsFile:       cfg.Paths.ReplacementsFile(),
		CustomReplacementsFile: cfg.Paths.CustomReplacementsFile(),
	}
}

type State string

const (
	StateIdle     State = "idle"
	StateChecking State = "checking"
)

// ScraperOutcome describes the scraper half of a cycle.
type ScraperOutcome struct {
	Downloaded bool   `json:"downloaded"`
	Result     string `json:"result,omitempty"`
	Promoted   bool   `json:"promoted"`
	Patched    bool   `json:"patched"`
	Error      string `json:"error,omitempty"`
}

// ReplacementsOutcome describes the rename database half of a cycle.
type ReplacementsOutcome struct {
	Downloaded bool   `json:"downloaded"`
	Updated    bool   `json:"updated"`
	Error      string `json:"error,omitempty"`
}

// CycleResult is the outcome of one CheckForUpdate.
type CycleResult struct {
	StartedAt    time.Time           `json:"startedAt"`
	Scraper      ScraperOutcome      `json:"scraper"`
	Replacements ReplacementsOutcome `json:"replacements"`
}

// Status is the synchronizer state reported to clients.
type Status struct {
	State      State        `json:"state"`
	LastSync   *time.Time   `json:"lastSync,omitempty"`
	NextSync   *time.Time   `json:"nextSync,omitempty"`
	Interval   string       `json:"interval"`
	OnStartup  bool         `json:"onStartup"`
	LastResult *CycleResult `json:"lastResult,omitempty"`
}

// Service runs sync cycles.
type Service struct {
	installer    Installer
	replacements *replacements.Loader
	settings     SettingsStore
	props        *properties.Store
	progress     *progress.Manager
	httpClient   *http.Client
	logger       zerolog.Logger
	tempDir      string
	now          func() time.Time
	onInstalled  func(version string)
	health       HealthReporter

	mu         sync.RWMutex
	opts       Options
	running    int
	nextSync   *time.Time
	lastResult *CycleResult
	scheduler  TaskScheduler
}

// NewService creates a synchronizer. props and progress may be nil.
func NewService(opts Options, installer Installer, loader *replacements.Loader, settings SettingsStore,
	props *properties.Store, prog *progress.Manager, logger *zerolog.Logger) *Service {
	return &Service{
		installer:    installer,
		replacements: loader,
		settings:     settings,
		props:        props,
		progress:     prog,
		httpClient:   newHTTPClient(),
		logger:       logger.With().Str("component", "update").Logger(),
		tempDir:      os.TempDir(),
		now:          time.Now,
		opts:         opts,
	}
}

// OnInstalled registers fn to be called with the version of every newly
// installed scraper script. It must be called before the first cycle.
func (s *Service) OnInstalled(fn func(version string)) {
	s.onInstalled = fn
}

func (s *Service) options() Options {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.opts
}

// GetStatus returns the current synchronizer state.
func (s *Service) GetStatus(ctx context.Context) Status {
	last, err := s.LastSync(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to read last sync time")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	st := Status{
		State:      StateIdle,
		NextSync:   s.nextSync,
		Interval:   s.opts.Interval.String(),
		OnStartup:  s.opts.OnStartup,
		LastResult: s.lastResult,
	}
	if s.running > 0 {
		st.State = StateChecking
	}
	if !last.IsZero() {
		st.LastSync = &last
	}
	return st
}

// LastSync returns the time of the last successful scraper download, or the
// zero time if there has been none.
func (s *Service) LastSync(ctx context.Context) (time.Time, error) {
	value, err := s.settings.Get(ctx, SettingLastSync)
	if errors.Is(err, database.ErrSettingNotFound) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s value %q: %w", SettingLastSync, value, err)
	}
	return t, nil
}

// CheckForUpdate runs one sync cycle. The scraper script and the rename
// database are handled independently; failures are logged and recorded in
// the result and never stop the other half.
func (s *Service) CheckForUpdate(ctx context.Context) CycleResult {
	s.mu.Lock()
	s.running++
	s.mu.Unlock()

	opts := s.options()
	result := CycleResult{StartedAt: s.now()}
	tracker := s.progress.Track(activityID, progress.ActivityTypeSync, "Checking for IMDb+ updates")

	s.logger.Info().Msg("Checking for scraper updates")
	tracker.Update("Scraper script", 0, 2)
	result.Scraper = s.syncScraper(ctx, opts)

	tracker.Update("Rename database", 1, 2)
	result.Replacements = s.syncReplacements(ctx, opts)

	s.PublishProperties(ctx)
	s.reportCycle(result)

	s.mu.Lock()
	s.running--
	s.lastResult = &result
	s.mu.Unlock()

	if result.Scraper.Error != "" && result.Replacements.Error != "" {
		tracker.Fail(result.Scraper.Error)
	} else {
		tracker.Complete("Update check complete")
	}
	return result
}

func (s *Service) syncScraper(ctx context.Context, opts Options) ScraperOutcome {
	var out ScraperOutcome

	path, err := s.download(ctx, opts.ScraperURL)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to download scraper script")
		out.Error = err.Error()
		return out
	}
	defer os.Remove(path)
	out.Downloaded = true

	if err := s.installScraper(ctx, path, opts, &out); err != nil {
		s.logger.Error().Err(err).Msg("Failed to install scraper script")
		out.Error = err.Error()
	}

	if err := s.settings.Set(ctx, SettingLastSync, s.now().UTC().Format(time.RFC3339)); err != nil {
		s.logger.Error().Err(err).Msg("Failed to save last sync time")
	}
	return out
}

func (s *Service) installScraper(ctx context.Context, path string, opts Options, out *ScraperOutcome) error {
	contents, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	wasInstalled := false
	previous := ""
	if existing, err := s.installer.GetByScriptID(ctx, scraper.IMDbPlusScriptID); err == nil {
		if existing.SelectedScript != nil {
			wasInstalled = true
			previous = existing.SelectedScript.Version
		}
	} else if !errors.Is(err, scraper.ErrNotFound) {
		return err
	}

	result, err := s.installer.AddSource(ctx, string(contents), opts.DebugMode)
	out.Result = result.String()
	if err != nil {
		return err
	}

	switch result {
	case scraper.FailedVersion:
		s.logger.Info().Msg("Scraper script is already up to date")
		return nil
	case scraper.FailedDate:
		return errors.New("scraper script publish date is not unique")
	case scraper.Failed:
		return errors.New("scraper script is malformed")
	}

	source, err := s.installer.GetByScriptID(ctx, scraper.IMDbPlusScriptID)
	if err != nil {
		return err
	}
	version := ""
	if source.SelectedScript != nil {
		version = source.SelectedScript.Version
	}
	if result == scraper.Success && wasInstalled && version == previous {
		s.logger.Info().Str("version", version).Msg("Downloaded scraper script is older than the installed one")
		return nil
	}
	s.logger.Info().Str("version", version).Str("result", result.String()).Msg("Updated IMDb+ scraper script")

	if !wasInstalled {
		if err := s.installer.PromoteDetails(ctx, source.ID); err != nil {
			return fmt.Errorf("failed to prioritize scraper: %w", err)
		}
		out.Promoted = true
	}

	patched, err := s.installer.ReplaceInScript(ctx, source.ID, PathReplacer(opts))
	if err != nil {
		return fmt.Errorf("failed to patch scraper paths: %w", err)
	}
	out.Patched = patched

	if s.onInstalled != nil {
		s.onInstalled(version)
	}
	return nil
}

// PathReplacer maps the absolute paths embedded in the published script to
// the local files.
func PathReplacer(opts Options) *strings.Replacer {
	return strings.NewReplacer(
		scriptCustomRenamePath, opts.CustomReplacementsFile,
		scriptRenamePath, opts.ReplacementsFile,
		scriptOptionsPath, opts.OptionsFile,
	)
}

func (s *Service) syncReplacements(ctx context.Context, opts Options) ReplacementsOutcome {
	var out ReplacementsOutcome

	path, err := s.download(ctx, opts.ReplacementsURL)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to download rename database")
		out.Error = err.Error()
		return out
	}
	defer os.Remove(path)
	out.Downloaded = true

	target := s.replacements.CoreFile()
	equal, err := FilesAreEqual(path, target)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.Error().Err(err).Msg("Failed to compare rename databases")
		out.Error = err.Error()
		return out
	}
	if equal {
		s.logger.Info().Msg("Rename database is already current")
		return out
	}

	if err := ReplaceFile(path, target); err != nil {
		s.logger.Error().Err(err).Str("path", target).Msg("Failed to install rename database")
		out.Error = err.Error()
		return out
	}
	s.replacements.ClearCache(false)
	out.Updated = true
	s.logger.Info().Str("path", target).Msg("Installed new rename database")
	return out
}

// PublishProperties refreshes the scraper and rename database properties.
func (s *Service) PublishProperties(ctx context.Context) {
	source, err := s.installer.GetByScriptID(ctx, scraper.IMDbPlusScriptID)
	installed := err == nil && source.SelectedScript != nil
	s.reportScript(installed)
	if s.props == nil {
		return
	}

	s.props.SetBool(properties.ScraperIsInstalled, installed)
	s.props.SetBool(properties.ForceIMDbPlusVisible, err == nil)
	if installed {
		script := source.SelectedScript
		s.props.Set(properties.ScraperVersion, script.Version)
		s.props.Set(properties.ScraperDescription, script.Description)
		s.props.Set(properties.ScraperAuthor, script.Author)
		s.props.SetDate(properties.ScraperPublished, script.Published)
		s.props.SetInt(properties.ScraperDetailsPriority, source.DetailsPriority)
		s.props.SetInt(properties.ScraperCoverPriority, source.CoverPriority)
	}
	if last, err := s.LastSync(ctx); err == nil {
		s.props.SetDate(properties.ScraperLastUpdated, last)
	}

	s.props.Set(properties.ReplacementsCount, strconv.Itoa(len(s.replacements.GetAll(false))))
	s.props.Set(properties.ReplacementsCustomCount, strconv.Itoa(len(s.replacements.GetAll(true))))
	s.props.Set(properties.ReplacementsVersion, s.replacements.Version())
	s.props.SetDate(properties.ReplacementsPublished, s.replacements.Published())
}
