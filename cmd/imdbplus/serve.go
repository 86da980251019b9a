package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/imdbplus/imdbplus/internal/api"
	"github.com/imdbplus/imdbplus/internal/config"
	"github.com/imdbplus/imdbplus/internal/database"
	"github.com/imdbplus/imdbplus/internal/health"
	"github.com/imdbplus/imdbplus/internal/library"
	"github.com/imdbplus/imdbplus/internal/logger"
	"github.com/imdbplus/imdbplus/internal/notification"
	"github.com/imdbplus/imdbplus/internal/preferences"
	"github.com/imdbplus/imdbplus/internal/progress"
	"github.com/imdbplus/imdbplus/internal/properties"
	"github.com/imdbplus/imdbplus/internal/refresh"
	"github.com/imdbplus/imdbplus/internal/replacements"
	"github.com/imdbplus/imdbplus/internal/scheduler"
	"github.com/imdbplus/imdbplus/internal/scraper"
	"github.com/imdbplus/imdbplus/internal/translation"
	"github.com/imdbplus/imdbplus/internal/update"
	"github.com/imdbplus/imdbplus/internal/watcher"
	"github.com/imdbplus/imdbplus/internal/websocket"
)

const (
	shutdownTimeout     = 10 * time.Second
	folderCheckInterval = 6 * time.Hour
)

func newServeCommand(configFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the IMDb+ daemon (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), *configFlag)
		},
	}
}

func runServe(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	lock, err := acquireLock(cfg.Paths.DataDir)
	if err != nil {
		return err
	}
	defer lock.Unlock()

	log := logger.New(logger.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Path:       cfg.Logging.Path,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
		Compress:   cfg.Logging.Compress,
		BufferSize: 1000,
	})
	defer log.Close()

	log.Info().
		Str("version", config.Version).
		Str("config", cfg.File).
		Str("logLevel", cfg.Logging.Level).
		Msg("Starting IMDb+")

	db, err := openDatabase(cfg)
	if err != nil {
		log.Error().Err(err).Msg("Failed to open database")
		return err
	}
	defer db.Close()

	hub := websocket.NewHub()
	go hub.Run()
	log.SetBroadcastHub(hub)

	props := properties.NewStore(hub, &log.Logger)
	prog := progress.NewManager(hub, log.Logger)

	catalog := translation.New(&log.Logger)
	catalog.Load(cfg.Paths.LanguageDir, cfg.Language)
	catalog.Publish(props)

	prefs := preferences.NewService(cfg.Paths.OptionsFile(), &log.Logger)
	prefs.Load()

	loader := replacements.NewLoader(cfg.Paths.ReplacementsFile(), cfg.Paths.CustomReplacementsFile(), &log.Logger)
	registry := scraper.NewRegistry(db.Conn(), &log.Logger)
	movies := library.NewService(db.Conn(), log.Logger)
	notifier := notification.NewService(hub, catalog, cfg.Notifications.Disabled, log.Logger)

	healthSvc := health.NewService(log.Logger)
	healthSvc.SetBroadcaster(hub)
	healthSvc.TrackFolder("plugin", "IMDb+ configuration folder", filepath.Dir(cfg.Paths.OptionsFile()))
	healthSvc.TrackFolder("data", "Data folder", cfg.Paths.DataDir)

	syncer := update.NewService(update.OptionsFromConfig(cfg), registry, loader,
		database.NewSettings(db.Conn()), props, prog, &log.Logger)
	syncer.OnInstalled(notifier.ScraperUpdated)
	syncer.SetHealth(healthSvc)
	syncer.PublishProperties(ctx)

	refresher := refresh.NewService(refresh.Config{
		Movies:       movies,
		Target:       imdbPlusSource(registry),
		Replacements: loader,
		Updater:      refresh.NewRenameUpdater(movies, loader, prefs.Get, log.Logger),
		Resume:       refresh.NewResumeList(db.Conn()),
		Props:        props,
		Progress:     prog,
		Catalog:      catalog,
		OnFinish: func(result refresh.Result) {
			if result.Outcome == refresh.OutcomeCompleted {
				notifier.RefreshComplete()
			}
		},
	}, log.Logger)

	sched, err := scheduler.New(log.Logger)
	if err != nil {
		return fmt.Errorf("create scheduler: %w", err)
	}
	if err := syncer.Start(ctx, sched); err != nil {
		return fmt.Errorf("schedule sync: %w", err)
	}
	if err := sched.RegisterTask(scheduler.TaskConfig{
		ID:          "folder-check",
		Name:        "Folder check",
		Description: "Checks that the scraper files can be written",
		Interval:    folderCheckInterval,
		Func:        healthSvc.CheckFolders,
	}); err != nil {
		return fmt.Errorf("schedule folder check: %w", err)
	}
	if err := sched.Start(); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	configWatcher := watchConfig(cfg, log)
	var changes any
	if configWatcher != nil {
		changes = configWatcher
	}
	syncer.AttachNotifier(changes, func() (time.Duration, bool, error) {
		reloaded, err := config.Load(cfg.File)
		if err != nil {
			return 0, false, err
		}
		return reloaded.Sync.Interval(), reloaded.Sync.OnStartup, nil
	})

	server := api.NewServer(cfg, api.Services{
		Hub:          hub,
		Logs:         log,
		Preferences:  prefs,
		Replacements: loader,
		Registry:     registry,
		Library:      movies,
		Refresh:      refresher,
		Update:       syncer,
		Scheduler:    sched,
		Progress:     prog,
		Properties:   props,
		Translations: catalog,
		Health:       healthSvc,
	}, log.Logger)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.Start(cfg.Server.Address()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		log.Info().Msg("Received shutdown signal")
	case runErr = <-serverErr:
		log.Error().Err(runErr).Msg("HTTP server failed")
	}

	// A running refresh must end before the options file is saved.
	refresher.Stop()
	if err := prefs.Save(); err != nil {
		log.Error().Err(err).Msg("Failed to save options")
	}
	if err := sched.Stop(); err != nil {
		log.Warn().Err(err).Msg("Failed to stop scheduler")
	}
	if configWatcher != nil {
		if err := configWatcher.Stop(); err != nil {
			log.Warn().Err(err).Msg("Failed to stop config watcher")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown error")
	}
	hub.Stop()

	log.Info().Msg("IMDb+ stopped")
	return runErr
}

// watchConfig watches the config file that was read. It returns nil when
// running on defaults or when the watcher cannot be created.
func watchConfig(cfg *config.Config, log *logger.Logger) *watcher.Service {
	if cfg.File == "" {
		return nil
	}

	svc, err := watcher.NewService(watcher.DefaultConfig(), log.Logger)
	if err != nil {
		log.Warn().Err(err).Msg("Config changes will not be picked up")
		return nil
	}
	if err := svc.Watch(cfg.File); err != nil {
		log.Warn().Err(err).Str("path", cfg.File).Msg("Failed to watch config file")
		svc.Stop()
		return nil
	}
	svc.Start()
	return svc
}

func imdbPlusSource(registry *scraper.Registry) library.TargetFunc {
	return func(ctx context.Context) (int64, error) {
		source, err := registry.GetByScriptID(ctx, scraper.IMDbPlusScriptID)
		if err != nil {
			return 0, err
		}
		return source.ID, nil
	}
}
